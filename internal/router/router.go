package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	appMiddleware "github.com/FACorreiaa/go-simple-crud/app/middleware"
	"github.com/FACorreiaa/go-simple-crud/internal/api/access"
	"github.com/FACorreiaa/go-simple-crud/internal/api/auth"
)

// Config contains dependencies needed for the router setup
type Config struct {
	Handler        *access.Handler
	Cookies        *auth.CookieManager
	AllowedOrigins []string
	LoginRequests  int
	LoginWindow    time.Duration
	SwaggerEnabled bool
}

// SetupRouter initializes and configures the application routes.
// Server-wide middleware (logger, request id, recoverer, timeout) is applied
// in main.go before this router is mounted.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(appMiddleware.CORS(cfg.AllowedOrigins))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	if cfg.SwaggerEnabled {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	}

	// every route below sees the session id from the cookie, or uuid.Nil
	r.Group(func(r chi.Router) {
		r.Use(auth.LoadSession(cfg.Cookies))

		r.With(appMiddleware.LoginRateLimit(cfg.LoginRequests, cfg.LoginWindow)).Post("/login", cfg.Handler.Login)
		r.Post("/logout", cfg.Handler.Logout)

		r.Route("/api/users", func(r chi.Router) {
			r.Post("/register", cfg.Handler.Register)
			r.Get("/me", cfg.Handler.CurrentUser)
		})

		r.Route("/api/posts", func(r chi.Router) {
			r.Get("/", cfg.Handler.ListPosts)
			r.Get("/all", cfg.Handler.ListPosts)
			r.Post("/", cfg.Handler.CreatePost)
			r.Get("/{id}", cfg.Handler.GetPost)
			r.Put("/{id}", cfg.Handler.UpdatePost)
			r.Delete("/{id}", cfg.Handler.DeletePost)
		})
	})

	return r
}
