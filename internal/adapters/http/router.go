package httpadapter

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hmoralesr/document-intake/internal/core/domain"
	"github.com/hmoralesr/document-intake/internal/core/ports"
)

// Options tunes the transport-level protections around the API.
type Options struct {
	RateLimitRPS    float64
	RateLimitBurst  int
	MaxInFlight     int
	BackpressureMax time.Duration
	Verifier        ports.TokenVerifier
}

type Router struct {
	uploader   ports.DocumentUploader
	searcher   ports.DocumentSearcher
	reader     ports.DocumentReader
	downloader ports.DocumentDownloader
	deleter    ports.DocumentDeleter
	opts       Options
}

func NewRouter(
	uploader ports.DocumentUploader,
	searcher ports.DocumentSearcher,
	reader ports.DocumentReader,
	downloader ports.DocumentDownloader,
	deleter ports.DocumentDeleter,
	opts Options,
) *Router {
	return &Router{
		uploader:   uploader,
		searcher:   searcher,
		reader:     reader,
		downloader: downloader,
		deleter:    deleter,
		opts:       opts,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)

	var api http.Handler = http.HandlerFunc(rt.routeAPI)
	if rt.opts.Verifier != nil {
		api = bearerAuthMiddleware(api, rt.opts.Verifier)
	}
	if rt.opts.RateLimitRPS > 0 {
		api = rateLimitMiddleware(api, rt.opts.RateLimitRPS, rt.opts.RateLimitBurst)
	}
	if rt.opts.MaxInFlight > 0 {
		wait := rt.opts.BackpressureMax
		if wait <= 0 {
			wait = 100 * time.Millisecond
		}
		api = backpressureMiddleware(api, rt.opts.MaxInFlight, wait)
	}
	mux.Handle("/v1/", api)

	return requestIDMiddleware(accessLogMiddleware(mux))
}

func (rt *Router) routeAPI(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/v1/documents":
		rt.documentsCollection(w, r)
	case strings.HasPrefix(path, "/v1/documents/"):
		rt.documentsItem(w, r)
	case path == "/v1/search":
		rt.search(w, r)
	case path == "/v1/stats":
		rt.stats(w, r)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown route"})
	}
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) documentsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.uploadDocument(w, r)
	case http.MethodGet:
		rt.listDocuments(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read uploaded file: " + err.Error()})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType != "" {
		if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
			contentType = parsed
		}
	}

	uploaderID := actorFromContext(r.Context())
	if uploaderID == "" {
		uploaderID = strings.TrimSpace(r.FormValue("uploader_id"))
	}

	req := ports.UploadRequest{
		Content:     content,
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		IsPublic:    parseBool(r.FormValue("public")),
		UploaderID:  uploaderID,
		Track:       strings.TrimSpace(r.FormValue("track")),
		OrgUnit:     strings.TrimSpace(r.FormValue("org_unit")),
		ExtraTags:   splitTags(r.FormValue("tags")),
	}

	rec, err := rt.uploader.Upload(r.Context(), req)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	records, err := rt.reader.List(r.Context(), parseBool(r.URL.Query().Get("public")))
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if records == nil {
		records = []domain.MetadataRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": records, "total": len(records)})
}

func (rt *Router) documentsItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if rest == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	id := rest
	action := ""
	if idx := strings.LastIndex(rest, "/"); idx >= 0 {
		id, action = rest[:idx], rest[idx+1:]
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		rt.getDocument(w, r, id)
	case action == "" && r.Method == http.MethodDelete:
		rt.deleteDocument(w, r, id)
	case action == "versions" && r.Method == http.MethodGet:
		rt.listVersions(w, r, id)
	case action == "download" && r.Method == http.MethodGet:
		rt.downloadDocument(w, r, id)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (rt *Router) listVersions(w http.ResponseWriter, r *http.Request, id string) {
	lineage, err := rt.reader.ListVersions(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"versions": lineage, "total": len(lineage)})
}

func (rt *Router) downloadDocument(w http.ResponseWriter, r *http.Request, id string) {
	blob, rec, err := rt.downloader.Download(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	defer blob.Close()

	contentType := rec.MediaType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+rec.Filename+`"`)
	if rec.FileSizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(rec.FileSizeBytes, 10))
	}
	_, _ = io.Copy(w, blob)
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request, id string) {
	if err := rt.deleter.Delete(r.Context(), id, actorFromContext(r.Context())); err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	q := r.URL.Query()
	req := ports.SearchRequest{
		Query:      q.Get("q"),
		Limit:      parseInt(q.Get("limit")),
		Offset:     parseInt(q.Get("offset")),
		PublicOnly: parseBool(q.Get("public")),
		Apartado:   q.Get("apartado"),
		Extension:  q.Get("extension"),
	}
	if sorts := q.Get("sort"); sorts != "" {
		req.Sort = strings.Split(sorts, ",")
	}

	result, err := rt.searcher.Search(r.Context(), req)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	stats, err := rt.reader.Stats(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return v
}

func parseInt(raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return v
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
