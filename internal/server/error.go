package server

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/smartlands/landregistry/pkg/auth"
	"github.com/smartlands/landregistry/pkg/ledger"
	"github.com/smartlands/landregistry/pkg/orchestrator"
	"github.com/smartlands/landregistry/pkg/repository"
	"go.uber.org/zap"
)

type HttpError struct {
	error
	ResponseCode int
}

var _ error = (*HttpError)(nil)

func NewHttpError(responseCode int, message string) *HttpError {
	return &HttpError{
		error:        errors.New(message),
		ResponseCode: responseCode,
	}
}

// mapError translates domain errors into HTTP responses. Sentinel errors keep
// their message; anything unrecognised is logged and masked as a 500 so that
// internal details never leak to clients.
func (s *Server) mapError(err error) *HttpError {
	switch {
	case errors.Is(err, repository.ErrLandNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrRequestNotFound),
		errors.Is(err, ledger.ErrNotRegistered):
		return &HttpError{error: err, ResponseCode: http.StatusNotFound}

	case errors.Is(err, repository.ErrDuplicateLandId),
		errors.Is(err, repository.ErrDuplicateUser),
		errors.Is(err, repository.ErrAlreadyRequested),
		errors.Is(err, repository.ErrRequestAlreadyAccepted),
		errors.Is(err, repository.ErrStateConflict),
		errors.Is(err, orchestrator.ErrIdMismatch),
		errors.Is(err, orchestrator.ErrTransferMismatch):
		return &HttpError{error: err, ResponseCode: http.StatusConflict}

	case errors.Is(err, auth.ErrUnknownWallet):
		return &HttpError{error: err, ResponseCode: http.StatusUnauthorized}

	case errors.Is(err, ledger.ErrChainRejected):
		return &HttpError{error: err, ResponseCode: http.StatusUnprocessableEntity}

	case errors.Is(err, ledger.ErrChainUnavailable),
		errors.Is(err, ledger.ErrConfirmationPending):
		return &HttpError{error: err, ResponseCode: http.StatusServiceUnavailable}

	default:
		s.logger.Error("unhandled error in request handler", zap.Error(err))
		return NewHttpError(http.StatusInternalServerError, "internal server error")
	}
}
