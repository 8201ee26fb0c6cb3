package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/anragh/medialog/internal/models"
)

func parseID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// parseItemFilters reads the optional status/category query parameters
// shared by the list, search and count endpoints.
func parseItemFilters(r *http.Request) (*models.Status, *models.Category, bool) {
	var status *models.Status
	var category *models.Category
	if v := r.URL.Query().Get("status"); v != "" {
		st := models.Status(v)
		if !st.Valid() {
			return nil, nil, false
		}
		status = &st
	}
	if v := r.URL.Query().Get("category"); v != "" {
		c := models.Category(v)
		if !c.Valid() {
			return nil, nil, false
		}
		category = &c
	}
	return status, category, true
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var input models.CreateContentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	item, err := s.st.CreateContent(input)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	s.publish("item", "created", item.ID)
	RespondWithJSON(w, http.StatusCreated, item)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	status, category, ok := parseItemFilters(r)
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid status or category filter")
		return
	}

	var items []*models.ContentItem
	var err error
	if search := r.URL.Query().Get("search"); search != "" {
		items, err = s.st.SearchContent(search, status, category)
	} else {
		items, err = s.st.ListContent(models.ContentFilter{Status: status, Category: category})
	}
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if items == nil {
		items = []*models.ContentItem{}
	}
	RespondWithJSON(w, http.StatusOK, items)
}

func (s *Server) handleCountItems(w http.ResponseWriter, r *http.Request) {
	status, _, ok := parseItemFilters(r)
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}
	count, err := s.st.CountContent(status)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]int{"count": count})
}

// handleFindItem backs the duplicate check in the external-search flow:
// exact title (case-insensitive) plus category, plus subtype where the
// category requires one.
func (s *Server) handleFindItem(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	category := models.Category(r.URL.Query().Get("category"))
	if title == "" || !category.Valid() {
		RespondWithError(w, http.StatusBadRequest, "title and a valid category are required")
		return
	}
	subtype := models.Subtype(r.URL.Query().Get("subtype"))

	item, err := s.st.FindExistingContent(title, category, subtype)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if item == nil {
		RespondWithError(w, http.StatusNotFound, "No matching item")
		return
	}
	RespondWithJSON(w, http.StatusOK, item)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "itemID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}
	item, err := s.st.GetContentByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if item == nil {
		RespondWithError(w, http.StatusNotFound, "Item not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, item)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "itemID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}
	var patch models.ContentPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	item, err := s.st.UpdateContent(id, patch)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	s.publish("item", "updated", id)
	RespondWithJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "itemID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}
	deleted, err := s.st.DeleteContent(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if !deleted {
		RespondWithError(w, http.StatusNotFound, "Item not found")
		return
	}
	s.publish("item", "deleted", id)
	RespondWithJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
