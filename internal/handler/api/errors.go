package api

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"

	"MillionaireMaker/internal/domain/models"
	"MillionaireMaker/internal/usecase"
	xhttp "MillionaireMaker/pkg/http"
	"MillionaireMaker/pkg/queue"
)

var registerOnce sync.Once

// registerValidations installs the custom tags used by the request models.
func registerValidations() {
	registerOnce.Do(func() {
		_ = xhttp.RegisterValidation("filter", func(fl validator.FieldLevel) bool {
			_, err := models.ParseFilter(fl.Field().String())
			return err == nil
		})
	})
}

// toAppError maps engine and usecase errors to HTTP errors.
func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, models.ErrUnknownGame):
		return xhttp.BadRequestError(err.Error()).WithCode("ERR_UNKNOWN_GAME").WithField("game").WithError(err)
	case errors.Is(err, models.ErrInvalidConfig):
		return xhttp.BadRequestError(err.Error()).WithCode("ERR_INVALID_CONFIG").WithError(err)
	case errors.Is(err, usecase.ErrInvalidTicket):
		return xhttp.BadRequestError(err.Error()).WithCode("ERR_INVALID_TICKET").WithField("main").WithError(err)
	case errors.Is(err, models.ErrInsufficientHistory):
		return xhttp.UnprocessableError(err.Error()).WithCode("ERR_INSUFFICIENT_HISTORY").WithError(err)
	case errors.Is(err, models.ErrPoolTooSmall):
		return xhttp.UnprocessableError(err.Error()).WithCode("ERR_POOL_TOO_SMALL").WithField("pool_size").WithError(err)
	case errors.Is(err, models.ErrNoValidCombination):
		return xhttp.UnprocessableError(err.Error()).WithCode("ERR_NO_VALID_COMBINATION").WithError(err)
	case errors.Is(err, models.ErrExternalModelUnavailable):
		return xhttp.ServiceUnavailableError("scoring model unavailable").WithCode("ERR_MODEL_UNAVAILABLE").WithError(err)
	case errors.Is(err, queue.ErrJobNotFound), errors.Is(err, usecase.ErrDrawNotFound):
		return xhttp.NotFoundError(err.Error()).WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.ServiceUnavailableError("operation timed out").WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}
