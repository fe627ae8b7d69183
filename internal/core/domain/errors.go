package domain

import (
	"errors"
	"fmt"
)

// Error kinds carried through every layer. Adapters match on them with
// IsKind to pick status codes without inspecting message text.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrDuplicateDocument = errors.New("duplicate document")
	ErrPayloadTooLarge   = errors.New("payload too large")
	ErrTemporary         = errors.New("temporary failure")
)

// WrapError tags err with a kind and the failing operation. The kind stays
// matchable through errors.Is.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err, kind error) bool {
	return errors.Is(err, kind)
}
