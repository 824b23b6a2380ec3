package router

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"

	"github.com/dtroode/diary-server/internal/api/grpc/authv1"
	"github.com/dtroode/diary-server/internal/api/grpc/handler"
	"github.com/dtroode/diary-server/internal/api/grpc/middleware"
	"github.com/dtroode/diary-server/internal/logger"
	"github.com/dtroode/diary-server/internal/model"
)

// Sessions is what the router needs from the session manager: request
// authentication plus the public refresh and revoke endpoints.
type Sessions interface {
	handler.SessionService
	middleware.TokenVerifier
}

// Router wires handlers and interceptors into a gRPC server.
type Router struct {
	accountService handler.AccountService
	sessions       Sessions
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates new gRPC Router instance.
func New(
	accountService handler.AccountService,
	sessions Sessions,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		accountService: accountService,
		sessions:       sessions,
		contextManager: contextManager,
		logger:         logger,
	}
}

// publicMethods are reachable without an access token.
var publicMethods = map[string]bool{
	authv1.Auth_Register_FullMethodName: true,
	authv1.Auth_Login_FullMethodName:    true,
	authv1.Auth_Refresh_FullMethodName:  true,
	authv1.Auth_Revoke_FullMethodName:   true,
}

// requiresAuth selects the calls the auth interceptor runs for.
func requiresAuth(_ context.Context, c interceptors.CallMeta) bool {
	return !publicMethods[c.FullMethod()]
}

// Register builds the gRPC server with recovery, request logging and
// authentication interceptors and registers the Auth service on it.
func (r *Router) Register(opts ...grpc.ServerOption) *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.sessions, r.contextManager, r.logger)
	recoveryOpt := recovery.WithRecoveryHandler(logging.Recover)

	opts = append(opts,
		grpc.ChainUnaryInterceptor(
			recovery.UnaryServerInterceptor(recoveryOpt),
			logging.HandleGRPC,
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(requiresAuth),
			),
		),
		grpc.ChainStreamInterceptor(
			recovery.StreamServerInterceptor(recoveryOpt),
			selector.StreamServerInterceptor(
				auth.StreamServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(requiresAuth),
			),
		),
	)

	s := grpc.NewServer(opts...)
	r.registerAuthRoutes(s)

	return s
}

func (r *Router) registerAuthRoutes(server *grpc.Server) {
	authHandler := handler.NewAuth(r.accountService, r.sessions, r.contextManager, r.logger)
	authv1.RegisterAuthServer(server, authHandler)
}
