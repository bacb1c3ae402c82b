package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps a service error to a gRPC status. Only validation
// messages reach the caller verbatim; unexpected errors are logged and
// reported as Internal.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrDuplicateEmail):
		return status.Error(codes.AlreadyExists, "email already registered")
	case errors.Is(err, common.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, "invalid credentials")
	case errors.Is(err, common.ErrSessionInvalid):
		return status.Error(codes.Unauthenticated, "session invalid")
	case errors.Is(err, common.ErrChallengeExpired):
		return status.Error(codes.FailedPrecondition, "challenge expired")
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrStoreUnavailable):
		s.logger.Error(ctx, "store unavailable", "error", err)
		return status.Error(codes.Unavailable, "service unavailable")
	}

	s.logger.Error(ctx, "internal error", "error", err)
	return status.Error(codes.Internal, "internal error")
}
