package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hmoralesr/document-intake/internal/core/domain"
	"github.com/hmoralesr/document-intake/internal/core/ports"
)

type uploaderFake struct {
	rec     *domain.MetadataRecord
	err     error
	lastReq ports.UploadRequest
}

func (f *uploaderFake) Upload(_ context.Context, req ports.UploadRequest) (*domain.MetadataRecord, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.rec, nil
}

type searcherFake struct {
	result  *domain.SearchResult
	err     error
	lastReq ports.SearchRequest
}

func (f *searcherFake) Search(_ context.Context, req ports.SearchRequest) (*domain.SearchResult, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type readerFake struct {
	rec      *domain.MetadataRecord
	records  []domain.MetadataRecord
	versions []domain.MetadataRecord
	stats    *domain.CollectionStats
	err      error
}

func (f *readerFake) GetByID(context.Context, string) (*domain.MetadataRecord, error) {
	return f.rec, f.err
}
func (f *readerFake) List(context.Context, bool) ([]domain.MetadataRecord, error) {
	return f.records, f.err
}
func (f *readerFake) ListVersions(context.Context, string) ([]domain.MetadataRecord, error) {
	return f.versions, f.err
}
func (f *readerFake) Stats(context.Context) (*domain.CollectionStats, error) {
	return f.stats, f.err
}

type downloaderFake struct {
	body string
	rec  *domain.MetadataRecord
	err  error
}

func (f *downloaderFake) Download(context.Context, string) (io.ReadCloser, *domain.MetadataRecord, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return io.NopCloser(strings.NewReader(f.body)), f.rec, nil
}

type deleterFake struct {
	deletedID string
	actor     string
	err       error
}

func (f *deleterFake) Delete(_ context.Context, id, actor string) error {
	f.deletedID = id
	f.actor = actor
	return f.err
}

type verifierFake struct {
	actor string
	err   error
}

func (f *verifierFake) Verify(context.Context, string) (string, error) {
	return f.actor, f.err
}

func newRouterForTest(uploader *uploaderFake, searcher *searcherFake, reader *readerFake, downloader *downloaderFake, deleter *deleterFake, opts Options) http.Handler {
	if uploader == nil {
		uploader = &uploaderFake{}
	}
	if searcher == nil {
		searcher = &searcherFake{}
	}
	if reader == nil {
		reader = &readerFake{}
	}
	if downloader == nil {
		downloader = &downloaderFake{}
	}
	if deleter == nil {
		deleter = &deleterFake{}
	}
	return NewRouter(uploader, searcher, reader, downloader, deleter, opts).Handler()
}

func multipartUpload(t *testing.T, fields map[string]string, filename, fileBody string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(fileBody)); err != nil {
		t.Fatalf("write file body: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestUploadDocumentSuccess(t *testing.T) {
	uploader := &uploaderFake{rec: &domain.MetadataRecord{ID: "plan", Filename: "plan.pdf"}}
	handler := newRouterForTest(uploader, nil, nil, nil, nil, Options{})

	body, contentType := multipartUpload(t, map[string]string{
		"public": "true",
		"track":  "PES",
		"tags":   "plan, anual",
	}, "plan.pdf", "contenido")

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}
	if uploader.lastReq.Filename != "plan.pdf" || !uploader.lastReq.IsPublic {
		t.Fatalf("unexpected upload request %+v", uploader.lastReq)
	}
	if uploader.lastReq.Track != "PES" {
		t.Fatalf("expected track forwarded, got %q", uploader.lastReq.Track)
	}
	if len(uploader.lastReq.ExtraTags) != 2 || uploader.lastReq.ExtraTags[1] != "anual" {
		t.Fatalf("unexpected tags %v", uploader.lastReq.ExtraTags)
	}
}

func TestUploadDocumentMissingFile(t *testing.T) {
	handler := newRouterForTest(nil, nil, nil, nil, nil, Options{})

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", strings.NewReader("no es multipart"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestUploadDocumentDuplicateMapsTo409(t *testing.T) {
	uploader := &uploaderFake{err: domain.WrapError(domain.ErrDuplicateDocument, "check duplicate hash", errors.New("already stored"))}
	handler := newRouterForTest(uploader, nil, nil, nil, nil, Options{})

	body, contentType := multipartUpload(t, nil, "plan.pdf", "contenido")
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", res.Code)
	}
}

func TestUploadDocumentTooLargeMapsTo413(t *testing.T) {
	uploader := &uploaderFake{err: domain.WrapError(domain.ErrPayloadTooLarge, "validate upload", errors.New("too big"))}
	handler := newRouterForTest(uploader, nil, nil, nil, nil, Options{})

	body, contentType := multipartUpload(t, nil, "plan.pdf", "contenido")
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", res.Code)
	}
}

func TestSearchForwardsParameters(t *testing.T) {
	searcher := &searcherFake{result: &domain.SearchResult{Source: domain.SourceSearchEngine}}
	handler := newRouterForTest(nil, searcher, nil, nil, nil, Options{})

	req := httptest.NewRequest(http.MethodGet, "/v1/search?q=plan&limit=5&offset=10&public=true&apartado=PES&extension=.pdf&sort=date:desc,title:asc", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	got := searcher.lastReq
	if got.Query != "plan" || got.Limit != 5 || got.Offset != 10 || !got.PublicOnly {
		t.Fatalf("unexpected search request %+v", got)
	}
	if got.Apartado != "PES" || got.Extension != ".pdf" {
		t.Fatalf("unexpected filters %+v", got)
	}
	if len(got.Sort) != 2 || got.Sort[0] != "date:desc" {
		t.Fatalf("unexpected sort %v", got.Sort)
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	reader := &readerFake{err: domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("plan"))}
	handler := newRouterForTest(nil, nil, reader, nil, nil, Options{})

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/plan", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestListVersionsRoute(t *testing.T) {
	reader := &readerFake{versions: []domain.MetadataRecord{{ID: "plan"}, {ID: "plan_v2"}}}
	handler := newRouterForTest(nil, nil, reader, nil, nil, Options{})

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/plan/versions", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var payload struct {
		Total int `json:"total"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Total != 2 {
		t.Fatalf("expected 2 versions, got %d", payload.Total)
	}
}

func TestDownloadSetsHeaders(t *testing.T) {
	downloader := &downloaderFake{
		body: "contenido",
		rec:  &domain.MetadataRecord{ID: "plan", Filename: "plan.pdf", MediaType: "application/pdf", FileSizeBytes: 9},
	}
	handler := newRouterForTest(nil, nil, nil, downloader, nil, Options{})

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/plan/download", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if got := res.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := res.Header().Get("Content-Disposition"); !strings.Contains(got, "plan.pdf") {
		t.Fatalf("unexpected disposition %q", got)
	}
	if res.Body.String() != "contenido" {
		t.Fatalf("unexpected body %q", res.Body.String())
	}
}

func TestDeleteDocumentRoute(t *testing.T) {
	deleter := &deleterFake{}
	handler := newRouterForTest(nil, nil, nil, nil, deleter, Options{})

	req := httptest.NewRequest(http.MethodDelete, "/v1/documents/plan", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if deleter.deletedID != "plan" {
		t.Fatalf("expected delete of plan, got %q", deleter.deletedID)
	}
}

func TestBearerAuthRequired(t *testing.T) {
	handler := newRouterForTest(nil, nil, nil, nil, nil, Options{Verifier: &verifierFake{actor: "user-1"}})

	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", res.Code)
	}

	reader := &readerFake{stats: &domain.CollectionStats{}}
	handler = newRouterForTest(nil, nil, reader, nil, nil, Options{Verifier: &verifierFake{actor: "user-1"}})
	req = httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	req.Header.Set("Authorization", "Bearer secreto")
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", res.Code)
	}
}

func TestBearerAuthRejectsBadToken(t *testing.T) {
	handler := newRouterForTest(nil, nil, nil, nil, nil, Options{Verifier: &verifierFake{err: errors.New("mismatch")}})

	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	req.Header.Set("Authorization", "Bearer incorrecto")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestHealthzOpen(t *testing.T) {
	handler := newRouterForTest(nil, nil, nil, nil, nil, Options{Verifier: &verifierFake{err: errors.New("never")}})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected open healthz, got %d", res.Code)
	}
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	reader := &readerFake{stats: &domain.CollectionStats{}}
	handler := newRouterForTest(nil, nil, reader, nil, nil, Options{RateLimitRPS: 1, RateLimitBurst: 1})

	req1 := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	res1 := httptest.NewRecorder()
	handler.ServeHTTP(res1, req1)
	if res1.Code != http.StatusOK {
		t.Fatalf("first request expected 200, got %d", res1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	res2 := httptest.NewRecorder()
	handler.ServeHTTP(res2, req2)
	if res2.Code != http.StatusTooManyRequests {
		t.Fatalf("second request expected 429, got %d", res2.Code)
	}
	if res2.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header for 429 response")
	}
}
