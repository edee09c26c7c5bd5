package httpx

import (
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	equihire "github.com/equihire/equihire-core"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth          AuthServiceInterface // Optional: without it every visitor is signed out
	Views         ViewResolver
	Organizations OrganizationOnboarding
	Integrations  IntegrationReporter
	Invitations   CandidateInviter
	CookieDomain  string
	// TemplateFS and StaticFS override the embedded assets (tests).
	TemplateFS fs.FS
	StaticFS   fs.FS
	IsDev      bool         // Development mode: templates and static files are read from disk
	Logger     *slog.Logger // Logger for template and HTTP errors (optional)
}

// NewRouter creates and configures the HTTP router.
// Sessions are resolved for every request and state-changing requests must carry a CSRF token.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	renderer := setupRenderer(services, logger)

	var sessions SessionGetter
	if services.Auth != nil {
		sessions = services.Auth
		registerAuthRoutes(mux, &AuthHandlers{
			Svc:          services.Auth,
			CookieDomain: services.CookieDomain,
			Renderer:     renderer,
			Logger:       logger,
		})
	}

	views := &ViewHandlers{
		Views:         services.Views,
		Organizations: services.Organizations,
		Integrations:  services.Integrations,
		Invitations:   services.Invitations,
		Renderer:      renderer,
		Logger:        logger,
	}
	registerViewRoutes(mux, views, RequireAuth(sessions))

	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)
	mux.Handle("GET /static/", staticHandler(services, logger))

	handler := OptionalAuth(sessions)(mux)
	return CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain})(handler)
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
	mux.HandleFunc("GET /auth/signed-out", h.SignedOut)
}

// registerViewRoutes binds the screens. "GET /" matches every path no other pattern claims,
// so unknown paths reach the view selector instead of a 404.
func registerViewRoutes(mux *http.ServeMux, h *ViewHandlers, requireAuth func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /", h.Index)
	mux.HandleFunc("GET /candidate/welcome", h.Index)
	mux.HandleFunc("GET /candidate/interview", h.Index)

	mux.Handle("POST /onboarding/complete", requireAuth(http.HandlerFunc(h.CompleteOnboarding)))
	mux.Handle("GET /dashboard/integrations", requireAuth(http.HandlerFunc(h.IntegrationsPage)))
	mux.Handle("POST /dashboard/invitations", requireAuth(http.HandlerFunc(h.CreateInvitation)))
	mux.Handle("GET /api/integrations", requireAuth(http.HandlerFunc(h.IntegrationsJSON)))
}

// setupRenderer loads templates from disk in dev mode and from the embedded FS otherwise.
// A renderer that fails to load is logged and left nil; handlers then answer with JSON.
func setupRenderer(services RouterServices, logger *slog.Logger) *TemplateRenderer {
	templateFS := services.TemplateFS
	if templateFS == nil {
		if services.IsDev {
			templateFS = os.DirFS(TemplatePathFromRoot)
		} else {
			sub, err := fs.Sub(equihire.TemplateFS, TemplatePathFromRoot)
			if err != nil {
				logger.Error("failed to create sub-filesystem for templates", slog.Any("error", err))
				sub = os.DirFS(TemplatePathFromRoot)
			}
			templateFS = sub
		}
	}

	tr, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: templateFS, Logger: logger})
	if err != nil {
		logger.Error("failed to create template renderer", slog.Any("error", err))
		return nil
	}
	return tr
}

// staticHandler serves /static/* from disk in dev mode and from the embedded FS otherwise.
func staticHandler(services RouterServices, logger *slog.Logger) http.Handler {
	staticFS := services.StaticFS
	switch {
	case staticFS != nil:
	case services.IsDev:
		staticFS = os.DirFS(StaticPathFromRoot)
	default:
		sub, err := fs.Sub(equihire.StaticFS, StaticPathFromRoot)
		if err != nil {
			logger.Error("failed to create sub-filesystem for static assets", slog.Any("error", err))
			sub = os.DirFS(StaticPathFromRoot)
		}
		staticFS = sub
	}
	return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))), services.IsDev)
}

// staticWithCacheHeaders disables caching in dev mode so edits show up on reload.
func staticWithCacheHeaders(handler http.Handler, isDev bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isDev {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		handler.ServeHTTP(w, r)
	})
}
