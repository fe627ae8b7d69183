// Package auth provides the static bearer-token verifier used when the API
// runs with a single shared credential.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/hmoralesr/document-intake/internal/core/domain"
)

type StaticVerifier struct {
	token string
	actor string
}

func NewStaticVerifier(token, actor string) *StaticVerifier {
	if actor == "" {
		actor = "api-client"
	}
	return &StaticVerifier{token: token, actor: actor}
}

func (v *StaticVerifier) Verify(_ context.Context, token string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(v.token), []byte(token)) != 1 {
		return "", domain.WrapError(domain.ErrUnauthorized, "verify token", errors.New("token mismatch"))
	}
	return v.actor, nil
}
