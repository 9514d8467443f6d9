package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler, events *EventHub) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling
	r.Use(apiHandler.LocalOnlyMiddleware)

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		// Active chat session
		r.Route("/chat", func(r chi.Router) {
			r.Get("/", apiHandler.GetChatHandler)
			r.Post("/messages", apiHandler.PostMessageHandler)
			r.Post("/new", apiHandler.NewChatHandler)
			r.Post("/load/{sessionID}", apiHandler.LoadChatHandler)
			r.Post("/voice", apiHandler.StartVoiceHandler)
			r.Delete("/voice", apiHandler.StopVoiceHandler)
		})

		r.Get("/settings", apiHandler.GetSettingsHandler)
		r.Put("/settings", apiHandler.PutSettingsHandler)
		r.Delete("/settings", apiHandler.ResetSettingsHandler)

		r.Get("/moods", apiHandler.ListMoodsHandler)
		r.Post("/moods", apiHandler.LogMoodHandler)

		r.Get("/history", apiHandler.ListHistoryHandler)
		r.Delete("/history", apiHandler.ClearHistoryHandler)
		r.Delete("/history/{sessionID}", apiHandler.DeleteSessionHandler)

		r.Get("/helplines", apiHandler.HelplinesHandler)
		r.Get("/tips", apiHandler.TipsHandler)
		r.Get("/resources", apiHandler.ResourcesHandler)

		r.Get("/events", events.ServeHTTP)
	})

	return r
}
