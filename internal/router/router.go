package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"kongle-express/internal/config"
	"kongle-express/internal/handler"
	"kongle-express/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	kongleHandler *handler.KongleHandler,
	subscriptionHandler *handler.SubscriptionHandler,
	checkoutHandler *handler.CheckoutHandler,
	webhookHandler *handler.WebhookHandler,
	rateLimiter *middleware.RateLimiter,
	static config.StaticConfig,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// API root responds with a liveness banner for frontend probes
	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message": "Kongle API is running!"}`))
	})

	// Kongle route handler dispatching checkout and verify sub-paths
	kongleRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		switch strings.TrimSuffix(r.URL.Path, "/") {
		case "/api/kongles":
			kongleHandler.Handle(w, r)
		case "/api/kongles/checkout":
			checkoutHandler.Checkout(w, r)
		case "/api/kongles/verify":
			checkoutHandler.Verify(w, r)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}

	// Register kongle routes (both with and without trailing slash)
	mux.HandleFunc("/api/kongles", kongleRouteHandler)
	mux.HandleFunc("/api/kongles/", kongleRouteHandler)

	mux.HandleFunc("/api/subscriptions", subscriptionHandler.Handle)
	mux.HandleFunc("/api/subscriptions/", subscriptionHandler.Handle)

	// Payment gateway deliveries; kept outside /api so the raw-body route
	// never collides with the JSON API surface
	mux.HandleFunc("/webhook", webhookHandler.Handle)

	// Frontend bundle with SPA fallback, only when a static dir is set
	if static.Dir != "" {
		mux.Handle("/", spaHandler(static))
	}

	// Apply middleware in order: Recovery -> Logging -> SecurityHeaders -> CORS -> RateLimit
	var h http.Handler = mux
	h = rateLimiter.Middleware(h)
	h = middleware.CORS(h)
	h = middleware.SecurityHeaders(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}

// spaHandler serves the frontend bundle, falling back to the index page for
// client-side routes.
func spaHandler(static config.StaticConfig) http.Handler {
	fileServer := http.FileServer(http.Dir(static.Dir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested := filepath.Join(static.Dir, filepath.Clean("/"+r.URL.Path))

		if info, err := os.Stat(requested); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}

		http.ServeFile(w, r, filepath.Join(static.Dir, static.Index))
	})
}
