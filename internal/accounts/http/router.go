package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tubeworks/accounts/internal/accounts/media"
	"github.com/tubeworks/accounts/internal/accounts/service"
	"github.com/tubeworks/accounts/internal/accounts/store"
	"github.com/tubeworks/accounts/pkg/httpx"
	"github.com/tubeworks/accounts/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store        store.Store
	uploader     media.Uploader
	TokenService *service.TokenService
	UserService  *service.UserService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	uploader media.Uploader,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		uploader:     uploader,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerProfile()
	r.registerChannels()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) session() httpx.Middleware {
	return SessionMiddleware(r.TokenService, r.store)
}

func (r *Router) registerAuth() {
	// POST /register - strict rate limit by IP (public signup endpoint)
	registerHandler := &RegisterHandler{UserService: r.UserService, Uploader: r.uploader}
	r.Mux.Handle("POST /api/v1/users/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /login - strict rate limit by IP (authentication attempts)
	loginHandler := &LoginHandler{UserService: r.UserService, TokenService: r.TokenService}
	r.Mux.Handle("POST /api/v1/users/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /refresh-token - strict rate limit by IP (token minting)
	refreshHandler := &RefreshHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /api/v1/users/refresh-token",
		httpx.Chain(refreshHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /logout - authenticated, moderate rate limit by user
	logoutHandler := &LogoutHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /api/v1/users/logout",
		httpx.Chain(logoutHandler,
			r.session(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// POST /change-password - authenticated, moderate rate limit by user
	passwordHandler := &ChangePasswordHandler{UserService: r.UserService}
	r.Mux.Handle("POST /api/v1/users/change-password",
		httpx.Chain(passwordHandler,
			r.session(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerProfile() {
	currentUserHandler := &CurrentUserHandler{}
	r.Mux.Handle("GET /api/v1/users/current-user",
		httpx.Chain(currentUserHandler,
			r.session(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	updateAccountHandler := &UpdateAccountHandler{UserService: r.UserService}
	r.Mux.Handle("PATCH /api/v1/users/update-account",
		httpx.Chain(updateAccountHandler,
			r.session(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	avatarHandler := &AvatarHandler{UserService: r.UserService, Uploader: r.uploader}
	r.Mux.Handle("PATCH /api/v1/users/avatar",
		httpx.Chain(http.HandlerFunc(avatarHandler.HandleAvatar),
			r.session(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PATCH /api/v1/users/cover-image",
		httpx.Chain(http.HandlerFunc(avatarHandler.HandleCoverImage),
			r.session(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerChannels() {
	h := &ChannelHandler{UserService: r.UserService}

	r.Mux.Handle("GET /api/v1/users/c/{username}",
		httpx.Chain(http.HandlerFunc(h.HandleProfile),
			r.session(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /api/v1/users/c/{username}/subscribe",
		httpx.Chain(http.HandlerFunc(h.HandleSubscribe),
			r.session(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /api/v1/users/c/{username}/subscribe",
		httpx.Chain(http.HandlerFunc(h.HandleUnsubscribe),
			r.session(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.store))
}
