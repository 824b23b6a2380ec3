package handler

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/diary-server/internal/model"
)

// handleError maps service errors onto gRPC statuses. Authentication
// failures of every kind share one status and message.
func handleError(err error) error {
	switch {
	case model.IsAuthError(err):
		return status.Error(codes.Unauthenticated, "authentication failed")
	case errors.Is(err, model.ErrWeakPassword), errors.Is(err, model.ErrInvalidEmail):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, model.ErrEmailTaken):
		return status.Error(codes.AlreadyExists, model.ErrEmailTaken.Error())
	case errors.Is(err, model.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}
