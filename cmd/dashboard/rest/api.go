package rest

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/banjito/ampcalibration/internal/auth"
	ihttp "github.com/banjito/ampcalibration/internal/http"
	ilogger "github.com/banjito/ampcalibration/internal/logger"
	"github.com/banjito/ampcalibration/internal/menu"
	"github.com/banjito/ampcalibration/internal/validator"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type IEmailer interface {
	SendLoginPIN(ctx context.Context, to, token, subject string) error
}

// Options configures an API.
type Options struct {
	// StaticDir is the directory the dashboard's pages and assets are served
	// from.
	StaticDir string

	Cookie         ihttp.CookieOptions
	AllowedOrigins []string
	Auth           auth.Options

	// HookSecret authorizes provider calls to the hooks. Hooks reject every
	// call while it is empty.
	HookSecret string

	// MinAuthDuration is the least time sign-in and registration requests
	// take to answer.
	MinAuthDuration time.Duration
}

func NewAPI(
	logger *zap.Logger,
	pages ihttp.IPageFactory,
	menu *menu.Menu,
	emailer IEmailer,
	health http.Handler,
	options Options,
) *API {
	api := API{
		Mux:      chi.NewRouter(),
		logger:   logger,
		valid:    validator.New(),
		menu:     menu,
		emailer:  emailer,
		options:  options,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin:      checkOrigin(options.AllowedOrigins),
		},
	}

	api.Mux.Use(
		ilogger.Middleware(),
		middleware.RequestLogger(ihttp.NewLogFormatter(logger)),
		middleware.Recoverer,
	)

	api.Mux.Method(http.MethodGet, "/healthz", health)

	api.Mux.Group(func(router chi.Router) {
		router.Use(ihttp.Page(logger, pages, options.Cookie))

		router.Method(http.MethodGet, "/", Document{API: api, Name: "index.html"})
		router.Method(http.MethodGet, "/contact", Document{API: api, Name: "contact.html"})
		router.Method(http.MethodGet, "/login", Document{API: api, Name: "login.html"})
		router.Method(http.MethodGet, "/verify", Document{API: api, Name: "verify.html"})
		router.Method(http.MethodGet, "/logout", http.RedirectHandler(auth.LoginPath, http.StatusFound))
		router.Method(http.MethodGet, "/dashboard", Dashboard{API: api})

		router.Route("/v1", func(router chi.Router) {
			router.Use(cors.Handler(corsOptions(options.AllowedOrigins)))

			router.Method(http.MethodGet, "/auth/verification", Verification{API: api})
			router.Method(http.MethodPost, "/auth/otp", RequestOTP{API: api})
			router.Method(http.MethodPost, "/auth/logout", Logout{API: api})
			router.Method(http.MethodGet, "/auth/events", SessionEvents{API: api})

			router.Group(func(router chi.Router) {
				router.Use(ihttp.Pace(options.MinAuthDuration))

				router.Method(http.MethodPost, "/auth/register", Register{API: api})
				router.Method(http.MethodPost, "/auth/login", Login{API: api})
				router.Method(http.MethodPost, "/auth/verify", VerifyOTP{API: api})
			})

			router.Method(http.MethodGet, "/user", User{API: api})
			router.Method(http.MethodGet, "/dashboard", DashboardMenu{API: api})

			router.Method(http.MethodGet, "/settings", GetSettings{API: api})
			router.Method(http.MethodPut, "/settings", PutSettings{API: api})

			router.Method(http.MethodGet, "/profile/photo", GetPhoto{API: api})
			router.Method(http.MethodPost, "/profile/photo", UploadPhoto{API: api})
			router.Method(http.MethodDelete, "/profile/photo", RemovePhoto{API: api})

			router.Method(http.MethodPost, "/contact", Contact{API: api})
			router.Method(http.MethodPost, "/jobs", JobApplication{API: api})
		})
	})

	api.Mux.Method(http.MethodPost, "/hooks/send-otp-email", SendOTPEmail{API: api})

	api.Mux.Handle("/*", http.FileServer(http.Dir(options.StaticDir)))

	return &api
}

type API struct {
	Mux *chi.Mux

	logger   *zap.Logger
	valid    *validatorv10.Validate
	menu     *menu.Menu
	emailer  IEmailer
	options  Options
	upgrader websocket.Upgrader
}

// Document serves a page of the dashboard.
type Document struct {
	API
	Name string
}

func (ep Document) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(ep.options.StaticDir, ep.Name))
}

func corsOptions(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// checkOrigin allows websocket upgrades from the dashboard's own origin and
// the passed origins.
func checkOrigin(origins []string) func(*http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		allowed[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || origin == requestOrigin(r) {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
