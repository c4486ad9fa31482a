package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error is a failure reported by the provider, e.g. bad credentials or an
// exceeded storage quota. Message is suitable for display to the user.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("provider error; status: %d, message: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("provider error; status: %d, code: %s, message: %s", e.Status, e.Code, e.Message)
}

// AsError checks if err is an Error and returns it.
func AsError(err error) (*Error, bool) {
	var perr Error
	if errors.As(err, &perr) {
		return &perr, true
	}
	return nil, false
}

// errorBody covers the error shapes of the provider's auth, rest, and storage
// services.
type errorBody struct {
	Msg              string          `json:"msg"`
	Message          string          `json:"message"`
	ErrorDescription string          `json:"error_description"`
	Error            string          `json:"error"`
	ErrorCode        string          `json:"error_code"`
	Code             json.RawMessage `json:"code"`
}

func decodeError(status int, body []byte) Error {
	perr := Error{Status: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		perr.Message = http.StatusText(status)
		return perr
	}

	for _, msg := range []string{eb.Msg, eb.Message, eb.ErrorDescription, eb.Error} {
		if msg != "" {
			perr.Message = msg
			break
		}
	}
	if perr.Message == "" {
		perr.Message = http.StatusText(status)
	}

	perr.Code = eb.ErrorCode
	if perr.Code == "" && len(eb.Code) > 0 {
		// auth reports numeric codes, rest reports string codes
		var code string
		if err := json.Unmarshal(eb.Code, &code); err != nil {
			code = string(eb.Code)
		}
		if code != "null" {
			perr.Code = code
		}
	}
	return perr
}
