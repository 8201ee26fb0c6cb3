package api

import (
	"log"
	"net/http"
	"strconv"
)

// handleCatalogSearch proxies the external podcast directory. Results are
// opaque candidates; nothing is stored until the UI decides to create an
// item from one of them.
func (s *Server) handleCatalogSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		RespondWithError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := s.catalog.SearchPodcasts(query, limit)
	if err != nil {
		log.Printf("Catalog search failed: %v", err)
		RespondWithError(w, http.StatusBadGateway, "Catalog search failed")
		return
	}
	RespondWithJSON(w, http.StatusOK, results)
}

// handleCatalogFeed fetches and parses an RSS feed into episode candidates.
func (s *Server) handleCatalogFeed(w http.ResponseWriter, r *http.Request) {
	feedURL := r.URL.Query().Get("url")
	if feedURL == "" {
		RespondWithError(w, http.StatusBadRequest, "Query parameter 'url' is required")
		return
	}

	episodes, err := s.catalog.FetchEpisodes(feedURL)
	if err != nil {
		log.Printf("Feed fetch failed for %s: %v", feedURL, err)
		RespondWithError(w, http.StatusBadGateway, "Feed fetch failed")
		return
	}
	RespondWithJSON(w, http.StatusOK, episodes)
}
