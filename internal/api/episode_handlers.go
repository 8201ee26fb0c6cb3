package api

import (
	"encoding/json"
	"net/http"

	"github.com/anragh/medialog/internal/models"
)

func (s *Server) handleListEpisodes(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "itemID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}
	episodes, err := s.st.ListEpisodesByPodcast(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if episodes == nil {
		episodes = []*models.PodcastEpisode{}
	}
	RespondWithJSON(w, http.StatusOK, episodes)
}

// handleFindOrCreateEpisode links an external episode to the local store.
// Calling it twice with the same episode number returns the same row.
func (s *Server) handleFindOrCreateEpisode(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "itemID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}
	var input models.EpisodeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	input.PodcastID = id

	episode, err := s.st.FindOrCreateEpisode(input)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	s.publish("episode", "created", episode.ID)
	RespondWithJSON(w, http.StatusOK, episode)
}
