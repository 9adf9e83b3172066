package rpc

import (
	"context"
	"errors"

	"github.com/hyperleaf/hyperleaf-go/internal/agronomy"
	"github.com/hyperleaf/hyperleaf-go/internal/history"
	"github.com/hyperleaf/hyperleaf-go/internal/predict"
	"github.com/hyperleaf/hyperleaf-go/internal/tensor"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// #region errors
var (
	errBadRequest      = errors.New("bad request")
	errHistoryDisabled = errors.New("prediction history is disabled")
)

// #endregion errors

// #region status-mapping
// toStatus maps domain errors to gRPC status codes.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	code := codes.Internal
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, tensor.ErrShape),
		errors.Is(err, agronomy.ErrInvalidArgument):
		code = codes.InvalidArgument
	case errors.Is(err, predict.ErrModelNotLoaded),
		errors.Is(err, errHistoryDisabled):
		code = codes.FailedPrecondition
	case errors.Is(err, history.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	}
	return status.Error(code, err.Error())
}

// #endregion status-mapping
