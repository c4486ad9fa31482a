package http

import (
	"net/http"

	ilogger "github.com/banjito/ampcalibration/internal/logger"
	"github.com/banjito/ampcalibration/internal/page"
	"github.com/banjito/ampcalibration/internal/rand"

	"go.uber.org/zap"
)

// IPageFactory creates the page.Context of a browser.
type IPageFactory interface {
	New(browserID string) *page.Context
}

// Page identifies the browser making each request, issuing it an identity if
// it has none, and stores the browser's page.Context in the request context
// for the duration of the request.
func Page(logger *zap.Logger, factory IPageFactory, options CookieOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				browserID := BrowserFromRequest(r)
				if browserID == "" {
					id, err := rand.GenerateString(32)
					if err != nil {
						ErrInternal(logger, w, err)
						return
					}
					browserID = id
					SetBrowserCookie(w, browserID, options)
				}

				pc := factory.New(browserID)
				defer pc.Teardown()

				ctx := page.WithContext(r.Context(), pc)
				ctx = ilogger.WithBrowserID(ctx, browserID)
				next.ServeHTTP(w, r.WithContext(ctx))
			},
		)
	}
}
