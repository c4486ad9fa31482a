package http

import (
	"net/http"
	"time"
)

type CookieOptions struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
	MaxAge   time.Duration
}

const browserKey = "_ampcal-browser"

// SetBrowserCookie identifies the client as the browser with the passed id on
// subsequent requests.
func SetBrowserCookie(
	w http.ResponseWriter,
	id string,
	options CookieOptions,
) {
	http.SetCookie(
		w,
		&http.Cookie{
			Name:     browserKey,
			Value:    id,
			Domain:   options.Domain,
			Path:     "/",
			MaxAge:   int(options.MaxAge.Seconds()),
			Secure:   options.Secure,
			HttpOnly: true,
			SameSite: options.SameSite,
		},
	)
}

func BrowserFromRequest(req *http.Request) string {
	cookie, err := req.Cookie(browserKey)
	if err != nil {
		return ""
	}
	return cookie.Value
}
