package handler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/diary-server/internal/model"
)

func TestHandleError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       error
		wantCode codes.Code
		wantMsg  string
	}{
		{"malformed", model.ErrTokenMalformed, codes.Unauthenticated, "authentication failed"},
		{"signature", fmt.Errorf("%w: bad mac", model.ErrTokenSignature), codes.Unauthenticated, "authentication failed"},
		{"expired", model.ErrTokenExpired, codes.Unauthenticated, "authentication failed"},
		{"revoked", model.ErrTokenRevoked, codes.Unauthenticated, "authentication failed"},
		{"unknown subject", model.ErrUnknownSubject, codes.Unauthenticated, "authentication failed"},
		{"wrong kind", model.ErrWrongKind, codes.Unauthenticated, "authentication failed"},
		{"store unavailable", fmt.Errorf("%w: dial tcp", model.ErrStoreUnavailable), codes.Unauthenticated, "authentication failed"},
		{"invalid credentials", model.ErrInvalidCredentials, codes.Unauthenticated, "authentication failed"},
		{"weak password", model.ErrWeakPassword, codes.InvalidArgument, model.ErrWeakPassword.Error()},
		{"invalid email", model.ErrInvalidEmail, codes.InvalidArgument, model.ErrInvalidEmail.Error()},
		{"email taken", fmt.Errorf("failed to create user: %w", model.ErrEmailTaken), codes.AlreadyExists, model.ErrEmailTaken.Error()},
		{"not found", model.ErrNotFound, codes.NotFound, "not found"},
		{"other", errors.New("boom"), codes.Internal, "internal server error"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := handleError(tt.in)
			st, ok := status.FromError(err)
			assert.True(t, ok)
			assert.Equal(t, tt.wantCode, st.Code())
			assert.Equal(t, tt.wantMsg, st.Message())
		})
	}
}
