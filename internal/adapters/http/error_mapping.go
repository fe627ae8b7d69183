package httpadapter

import (
	"net/http"

	"github.com/hmoralesr/document-intake/internal/core/domain"
)

var statusByKind = []struct {
	kind   error
	status int
}{
	{domain.ErrInvalidInput, http.StatusBadRequest},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrDocumentNotFound, http.StatusNotFound},
	{domain.ErrDuplicateDocument, http.StatusConflict},
	{domain.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge},
	{domain.ErrTemporary, http.StatusServiceUnavailable},
}

func mapErrorToHTTPStatus(err error) int {
	for _, m := range statusByKind {
		if domain.IsKind(err, m.kind) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}
