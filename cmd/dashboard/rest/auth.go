package rest

import (
	"net/http"

	ihttp "github.com/banjito/ampcalibration/internal/http"
	"github.com/banjito/ampcalibration/internal/session"
)

type credentialsBody struct {
	Email string `json:"email" validate:"required,email"`
	PIN   string `json:"pin" validate:"required"`
}

type registerResponse struct {
	User session.User `json:"user"`

	// ConfirmationRequired is true if the user must follow the link emailed
	// to them before they can sign in.
	ConfirmationRequired bool `json:"confirmationRequired"`
}

type Register struct{ API }

func (ep Register) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var b credentialsBody
	if err := ep.read(w, r, &b); err != nil {
		return
	}
	if err := ep.valid.Struct(b); err != nil {
		ihttp.ErrBadRequest(ep.logger, w, err)
		return
	}

	pc, ok := ep.page(w, r)
	if !ok {
		return
	}

	res, err := ep.authenticator(r, pc).RegisterWithPIN(r.Context(), b.Email, b.PIN, requestOrigin(r))
	if err != nil {
		ep.authError(w, err)
		return
	}

	ep.write(w, http.StatusCreated, registerResponse{
		User:                 res.User,
		ConfirmationRequired: res.Session == nil,
	})
}

type Login struct{ API }

func (ep Login) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var b credentialsBody
	if err := ep.read(w, r, &b); err != nil {
		return
	}
	if err := ep.valid.Struct(b); err != nil {
		ihttp.ErrBadRequest(ep.logger, w, err)
		return
	}

	pc, ok := ep.page(w, r)
	if !ok {
		return
	}

	sess, err := ep.authenticator(r, pc).LoginWithPIN(r.Context(), b.Email, b.PIN)
	if err != nil {
		ep.authError(w, err)
		return
	}

	ep.write(w, http.StatusOK, sess.User)
}

type RequestOTP struct{ API }

func (ep RequestOTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	type body struct {
		Email string `json:"email" validate:"required,email"`
	}

	var b body
	if err := ep.read(w, r, &b); err != nil {
		return
	}
	if err := ep.valid.Struct(b); err != nil {
		ihttp.ErrBadRequest(ep.logger, w, err)
		return
	}

	pc, ok := ep.page(w, r)
	if !ok {
		return
	}

	if err := ep.authenticator(r, pc).RequestOTP(r.Context(), b.Email); err != nil {
		ep.authError(w, err)
		return
	}

	ep.write(w, http.StatusAccepted, nil)
}

type VerifyOTP struct{ API }

func (ep VerifyOTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	type body struct {
		Email string `json:"email" validate:"required,email"`
		Code  string `json:"code" validate:"required"`
	}

	var b body
	if err := ep.read(w, r, &b); err != nil {
		return
	}
	if err := ep.valid.Struct(b); err != nil {
		ihttp.ErrBadRequest(ep.logger, w, err)
		return
	}

	pc, ok := ep.page(w, r)
	if !ok {
		return
	}

	sess, err := ep.authenticator(r, pc).VerifyOTP(r.Context(), b.Email, b.Code)
	if err != nil {
		ep.authError(w, err)
		return
	}

	ep.write(w, http.StatusOK, sess.User)
}

type Verification struct{ API }

func (ep Verification) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pc, ok := ep.page(w, r)
	if !ok {
		return
	}

	user, err := ep.authenticator(r, pc).HandleEmailVerification(r.Context())
	if err != nil {
		ep.authError(w, err)
		return
	}

	ep.write(w, http.StatusOK, user)
}

type Logout struct{ API }

func (ep Logout) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pc, ok := ep.page(w, r)
	if !ok {
		return
	}

	if err := ep.authenticator(r, pc).Logout(r.Context()); err != nil {
		ep.authError(w, err)
		return
	}

	ep.write(w, http.StatusNoContent, nil)
}
