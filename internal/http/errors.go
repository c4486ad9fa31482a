package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/banjito/ampcalibration/internal/provider"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

func ErrInternal(logger *zap.Logger, w http.ResponseWriter, err error) {
	logger.Error("internal server error", zap.Error(err))
	http.Error(
		w,
		"An unexpected internal server error occurred, please try again. If the issue persists, please contact support",
		http.StatusInternalServerError,
	)
}

func ErrUnauthorized(w http.ResponseWriter) {
	http.Error(
		w,
		"Unauthorized; please sign-in to continue.",
		http.StatusUnauthorized,
	)
}

func ErrBadRequest(logger *zap.Logger, w http.ResponseWriter, err error) {
	logger.Warn("bad request", zap.Error(err))

	var valerrors validator.ValidationErrors
	if !errors.As(err, &valerrors) {
		http.Error(
			w,
			"An unknown field is invalid. Please update your request and retry.",
			http.StatusBadRequest,
		)
		return
	}

	errormsgs := make([]string, len(valerrors))
	for i, err := range valerrors {
		errormsgs[i] = fmt.Sprintf("\"%s\" failed \"%s\" validator", err.Field(), err.Tag())
	}

	http.Error(
		w,
		fmt.Sprintf("Field(s) validation failure: %s. Please update your request and retry.", strings.Join(errormsgs, ", ")),
		http.StatusBadRequest,
	)
}

// ErrInvalid responds 400 with err's message. It is meant for errors whose
// message is written for the user, e.g. "PIN must be 6 digits".
func ErrInvalid(logger *zap.Logger, w http.ResponseWriter, err error) {
	logger.Debug("invalid request", zap.Error(err))
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func ErrNotFound(w http.ResponseWriter) {
	http.Error(
		w,
		"Resource not found. If this is unexpected, please contact support.",
		http.StatusNotFound,
	)
}

func ErrServiceUnavailable(w http.ResponseWriter) {
	http.Error(
		w,
		"Service is starting up, please try again shortly.",
		http.StatusServiceUnavailable,
	)
}

// ErrProvider responds to a failed provider request. Requests the provider
// rejected are answered with the provider's status and message; provider
// failures are answered 502. Errors that did not come from the provider are
// internal.
func ErrProvider(logger *zap.Logger, w http.ResponseWriter, err error) {
	perr, ok := provider.AsError(err)
	if !ok {
		ErrInternal(logger, w, err)
		return
	}

	if perr.Status >= http.StatusInternalServerError {
		logger.Error("provider failure", zap.Error(err))
		http.Error(
			w,
			"The account service is unavailable, please try again. If the issue persists, please contact support",
			http.StatusBadGateway,
		)
		return
	}

	logger.Warn("provider rejected request", zap.Error(err))
	http.Error(w, perr.Message, perr.Status)
}
