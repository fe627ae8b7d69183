package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/hmoralesr/document-intake/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent api startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	file_extension TEXT NOT NULL,
	file_size_bytes BIGINT NOT NULL DEFAULT 0,
	media_type TEXT NOT NULL DEFAULT '',
	file_hash TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	summary TEXT NOT NULL DEFAULT '',
	keywords JSONB NOT NULL DEFAULT '[]'::jsonb,
	doc_date TEXT NOT NULL DEFAULT '',
	storage_path TEXT NOT NULL,
	public BOOLEAN NOT NULL DEFAULT FALSE,
	uploader_id TEXT NOT NULL DEFAULT '',
	tags JSONB NOT NULL DEFAULT '[]'::jsonb,
	apartado TEXT NOT NULL DEFAULT '',
	track TEXT NOT NULL DEFAULT '',
	org_unit TEXT NOT NULL DEFAULT '',
	estrategia_relacionada TEXT NOT NULL DEFAULT '',
	tipo_documento TEXT NOT NULL DEFAULT '',
	puesto_responsable TEXT NOT NULL DEFAULT '',
	metadatos_especificos JSONB NOT NULL DEFAULT '{}'::jsonb,
	version INTEGER NOT NULL DEFAULT 1,
	parent_id TEXT NOT NULL DEFAULT '',
	versions JSONB NOT NULL DEFAULT '[]'::jsonb,
	uploaded_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	processed_by TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_documents_file_hash ON documents(file_hash);
CREATE INDEX IF NOT EXISTS idx_documents_public ON documents(public);
CREATE INDEX IF NOT EXISTS idx_documents_uploaded_at ON documents(uploaded_at DESC);

CREATE TABLE IF NOT EXISTS audit_events (
	id TEXT PRIMARY KEY,
	actor TEXT NOT NULL DEFAULT '',
	action TEXT NOT NULL,
	document_id TEXT NOT NULL DEFAULT '',
	details JSONB NOT NULL DEFAULT '{}'::jsonb,
	severity TEXT NOT NULL DEFAULT 'info',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_events_created_at ON audit_events(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

const documentColumns = `id, filename, file_extension, file_size_bytes, media_type, file_hash,
	title, summary, keywords, doc_date, storage_path, public, uploader_id, tags,
	apartado, track, org_unit, estrategia_relacionada, tipo_documento, puesto_responsable,
	metadatos_especificos, version, parent_id, versions, uploaded_at, updated_at,
	processed_by, error_message`

func (r *DocumentRepository) Create(ctx context.Context, rec *domain.MetadataRecord) error {
	keywordsJSON, err := marshalList(rec.Keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}
	tagsJSON, err := marshalList(rec.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	versionsJSON, err := marshalList(rec.Versions)
	if err != nil {
		return fmt.Errorf("marshal versions: %w", err)
	}
	metaJSON, err := marshalMap(rec.MetadatosEspecificos)
	if err != nil {
		return fmt.Errorf("marshal metadatos especificos: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO documents (`+documentColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28)
`,
		rec.ID, rec.Filename, rec.FileExtension, rec.FileSizeBytes, rec.MediaType, rec.FileHash,
		rec.Title, rec.Summary, keywordsJSON, rec.Date, rec.StoragePath, rec.Public, rec.UploaderID, tagsJSON,
		rec.Apartado, rec.Track, rec.OrgUnit, rec.EstrategiaRelacionada, rec.TipoDocumento, rec.PuestoResponsable,
		metaJSON, rec.Version, rec.ParentID, versionsJSON, rec.UploadedAt, rec.UpdatedAt,
		rec.ProcessedBy, rec.Error,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.MetadataRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1
`, id)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New(id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return rec, nil
}

// GetByHash returns (nil, nil) when no record carries the hash.
func (r *DocumentRepository) GetByHash(ctx context.Context, hash string) (*domain.MetadataRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE file_hash = $1
LIMIT 1
`, hash)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan document by hash: %w", err)
	}
	return rec, nil
}

func (r *DocumentRepository) ListAll(ctx context.Context, publicOnly bool) ([]domain.MetadataRecord, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	if publicOnly {
		query += ` WHERE public = TRUE`
	}
	query += ` ORDER BY uploaded_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var records []domain.MetadataRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return records, nil
}

// AppendVersion registers childID in the parent's version list. A repeat call
// with the same pair is a no-op.
func (r *DocumentRepository) AppendVersion(ctx context.Context, parentID, childID string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET versions = versions || to_jsonb($2::text), updated_at = $3
WHERE id = $1 AND NOT versions ? $2
`, parentID, childID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("append version: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("append version result: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// No row changed: either the link already exists or the parent is gone.
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM documents WHERE id = $1)`, parentID).Scan(&exists); err != nil {
		return fmt.Errorf("check version parent: %w", err)
	}
	if !exists {
		return domain.WrapError(domain.ErrDocumentNotFound, "append version", errors.New(parentID))
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document result: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "delete document", errors.New(id))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.MetadataRecord, error) {
	var rec domain.MetadataRecord
	var keywordsRaw, tagsRaw, versionsRaw, metaRaw []byte

	err := row.Scan(
		&rec.ID, &rec.Filename, &rec.FileExtension, &rec.FileSizeBytes, &rec.MediaType, &rec.FileHash,
		&rec.Title, &rec.Summary, &keywordsRaw, &rec.Date, &rec.StoragePath, &rec.Public, &rec.UploaderID, &tagsRaw,
		&rec.Apartado, &rec.Track, &rec.OrgUnit, &rec.EstrategiaRelacionada, &rec.TipoDocumento, &rec.PuestoResponsable,
		&metaRaw, &rec.Version, &rec.ParentID, &versionsRaw, &rec.UploadedAt, &rec.UpdatedAt,
		&rec.ProcessedBy, &rec.Error,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(keywordsRaw, &rec.Keywords); err != nil {
		return nil, fmt.Errorf("unmarshal keywords: %w", err)
	}
	if err := json.Unmarshal(tagsRaw, &rec.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	if err := json.Unmarshal(versionsRaw, &rec.Versions); err != nil {
		return nil, fmt.Errorf("unmarshal versions: %w", err)
	}
	if err := json.Unmarshal(metaRaw, &rec.MetadatosEspecificos); err != nil {
		return nil, fmt.Errorf("unmarshal metadatos especificos: %w", err)
	}
	return &rec, nil
}

func marshalList(list []string) ([]byte, error) {
	if list == nil {
		list = []string{}
	}
	return json.Marshal(list)
}

func marshalMap(m map[string]any) ([]byte, error) {
	if m == nil {
		m = map[string]any{}
	}
	return json.Marshal(m)
}
