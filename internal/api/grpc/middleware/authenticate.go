package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dtroode/diary-server/internal/logger"
	"github.com/dtroode/diary-server/internal/model"
)

// TokenVerifier resolves the user an access token was issued to.
type TokenVerifier interface {
	VerifyAccess(ctx context.Context, token string) (model.User, error)
}

var errMissingToken = errors.New("missing bearer token")

// Authenticate validates bearer tokens and injects the user id and token
// into the request context.
type Authenticate struct {
	verifier       TokenVerifier
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(verifier TokenVerifier, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{verifier: verifier, contextManager: contextManager, logger: logger}
}

// AuthFunc reads the authorization metadata, verifies the access token and
// returns a context carrying the user. Every rejection looks the same to the
// client; the specific reason is only logged.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	tokenString := bearerToken(ctx)

	user, err := m.authenticateUser(ctx, tokenString)
	if err != nil {
		if errors.Is(err, model.ErrStoreUnavailable) {
			m.logger.Error("Authenticate middleware: rejected request", "error", err.Error())
		} else {
			m.logger.Info("Authenticate middleware: rejected request", "error", err.Error())
		}
		return nil, status.Error(codes.Unauthenticated, "authentication failed")
	}

	ctx = m.contextManager.SetUserIDToContext(ctx, user.ID)
	ctx = m.contextManager.SetTokenToContext(ctx, tokenString)
	return ctx, nil
}

func (m *Authenticate) authenticateUser(ctx context.Context, tokenString string) (model.User, error) {
	if tokenString == "" {
		return model.User{}, errMissingToken
	}

	user, err := m.verifier.VerifyAccess(ctx, tokenString)
	if err != nil {
		return model.User{}, err
	}
	if user.ID == uuid.Nil {
		return model.User{}, model.ErrUnknownSubject
	}

	return user, nil
}

func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("authorization")
	if len(values) == 0 {
		return ""
	}
	scheme, token, found := strings.Cut(strings.TrimSpace(values[0]), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
