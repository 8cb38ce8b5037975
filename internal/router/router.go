package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"liftassist-backend/internal/handlers"
	"liftassist-backend/internal/middleware"
)

func New(chatHandler *handlers.ChatHandler, productsHandler *handlers.ProductsHandler, frontendURL string) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{frontendURL},
		AllowedMethods: []string{"GET", "PUT", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {

		// ──── Chat Routes ────
		r.Route("/chat", func(r chi.Router) {
			r.Post("/start", chatHandler.Start)
			r.Get("/status", chatHandler.Status)
			r.Get("/result", chatHandler.Result)
			r.Get("/thread-messages", chatHandler.ThreadMessages)
			r.Post("/upload", chatHandler.Upload)
		})

		// ──── Product Catalog Routes ────
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productsHandler.List)
			r.Get("/{id}", productsHandler.Get)
		})
	})

	return r
}
