// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/anragh/medialog/internal/catalog"
	"github.com/anragh/medialog/internal/core"
	"github.com/anragh/medialog/internal/store"
	"github.com/anragh/medialog/internal/websocket"
)

const version = "1.2.0"

// Server holds the dependencies for our API.
type Server struct {
	app     *core.App
	st      *store.Store
	catalog *catalog.Client
	hub     *websocket.Hub
}

// NewServer creates a new Server instance.
func NewServer(app *core.App, hub *websocket.Hub) *Server {
	return &Server{
		app:     app,
		st:      store.New(app.DB()),
		catalog: catalog.New(app.Config.Catalog.BaseURL),
		hub:     hub,
	}
}

// Store returns the store instance.
func (s *Server) Store() *store.Store {
	return s.st
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/api/version", s.handleGetVersion)
	r.Get("/api/ws", s.handleWS)

	r.Route("/api", func(r chi.Router) {
		// Content items
		r.Post("/items", s.handleCreateItem)
		r.Get("/items", s.handleListItems)
		r.Get("/items/count", s.handleCountItems)
		r.Get("/items/find", s.handleFindItem)
		r.Get("/items/{itemID}", s.handleGetItem)
		r.Patch("/items/{itemID}", s.handleUpdateItem)
		r.Delete("/items/{itemID}", s.handleDeleteItem)

		// Consumption records
		r.Post("/records", s.handleCreateRecord)
		r.Get("/records", s.handleListAllRecords)
		r.Get("/records/history", s.handleRecordHistory)
		r.Get("/records/{recordID}", s.handleGetRecord)
		r.Patch("/records/{recordID}", s.handleUpdateRecord)
		r.Delete("/records/{recordID}", s.handleDeleteRecord)
		r.Get("/items/{itemID}/records", s.handleListItemRecords)
		r.Get("/items/{itemID}/records/latest", s.handleLatestItemRecord)

		// Podcast episodes
		r.Get("/items/{itemID}/episodes", s.handleListEpisodes)
		r.Post("/items/{itemID}/episodes", s.handleFindOrCreateEpisode)

		// External catalog
		r.Get("/catalog/search", s.handleCatalogSearch)
		r.Get("/catalog/feed", s.handleCatalogFeed)
	})

	return r
}

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"version": version})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeWS(w, r)
}

// publish emits a data-change event unless the server runs without a hub
// (as it does in most tests).
func (s *Server) publish(entity, action string, id int64) {
	if s.hub != nil {
		s.hub.Publish(websocket.Event{Entity: entity, Action: action, ID: id})
	}
}
