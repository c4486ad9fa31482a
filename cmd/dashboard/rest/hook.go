package rest

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	ihttp "github.com/banjito/ampcalibration/internal/http"

	"go.uber.org/zap"
)

var errSendEmail = errors.New("Failed to send email")

type hookError struct {
	Error string `json:"error"`
}

type hookSuccess struct {
	Success bool `json:"success"`
}

// SendOTPEmail is called by the provider to deliver login PINs. The provider
// authenticates with the hook secret as a bearer token. Every other failure
// is answered 500 so the provider reports the PIN as undelivered.
type SendOTPEmail struct{ API }

func (ep SendOTPEmail) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	type body struct {
		To      string `json:"to" validate:"required,email"`
		Token   string `json:"token" validate:"required,pin"`
		Subject string `json:"subject"`
	}

	if !ep.authorizedHook(r) {
		ep.requestLogger(r).Warn("send otp email hook; unauthorized caller")
		ihttp.ErrUnauthorized(w)
		return
	}

	var b body
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		ep.fail(w, r, err)
		return
	}
	if err := ep.valid.Struct(b); err != nil {
		ep.fail(w, r, err)
		return
	}

	if err := ep.emailer.SendLoginPIN(r.Context(), b.To, b.Token, b.Subject); err != nil {
		ep.requestLogger(r).Error("send login pin", zap.Error(err))
		ep.write(w, http.StatusInternalServerError, hookError{Error: errSendEmail.Error()})
		return
	}

	ep.write(w, http.StatusOK, hookSuccess{Success: true})
}

func (ep SendOTPEmail) fail(w http.ResponseWriter, r *http.Request, err error) {
	ep.requestLogger(r).Warn("send otp email hook", zap.Error(err))
	ep.write(w, http.StatusInternalServerError, hookError{Error: err.Error()})
}

// authorizedHook checks the request's bearer token against the hook secret.
func (api API) authorizedHook(r *http.Request) bool {
	if api.options.HookSecret == "" {
		return false
	}
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	token := strings.TrimPrefix(header, prefix)
	return subtle.ConstantTimeCompare([]byte(token), []byte(api.options.HookSecret)) == 1
}
