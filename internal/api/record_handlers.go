package api

import (
	"encoding/json"
	"net/http"

	"github.com/anragh/medialog/internal/models"
)

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var input models.CreateRecordInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	record, err := s.st.CreateRecord(input)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	s.publish("record", "created", record.ID)
	// Record mutations can move the parent's denormalized rating.
	s.publish("item", "updated", record.ContentItemID)
	RespondWithJSON(w, http.StatusCreated, record)
}

func (s *Server) handleListAllRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.st.ListAllRecords()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if records == nil {
		records = []*models.ConsumptionRecord{}
	}
	RespondWithJSON(w, http.StatusOK, records)
}

// handleRecordHistory lists the records of items already marked done.
func (s *Server) handleRecordHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.st.ListRecordsForDoneContent()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if records == nil {
		records = []*models.ConsumptionRecord{}
	}
	RespondWithJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "recordID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid record ID")
		return
	}
	record, err := s.st.GetRecordByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if record == nil {
		RespondWithError(w, http.StatusNotFound, "Record not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, record)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "recordID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid record ID")
		return
	}
	var patch models.RecordPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	record, err := s.st.UpdateRecord(id, patch)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	s.publish("record", "updated", id)
	s.publish("item", "updated", record.ContentItemID)
	RespondWithJSON(w, http.StatusOK, record)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "recordID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid record ID")
		return
	}
	record, err := s.st.GetRecordByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	deleted, err := s.st.DeleteRecord(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if !deleted {
		RespondWithError(w, http.StatusNotFound, "Record not found")
		return
	}
	s.publish("record", "deleted", id)
	if record != nil {
		s.publish("item", "updated", record.ContentItemID)
	}
	RespondWithJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleListItemRecords(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "itemID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}
	records, err := s.st.ListRecordsByContentItem(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if records == nil {
		records = []*models.ConsumptionRecord{}
	}
	RespondWithJSON(w, http.StatusOK, records)
}

func (s *Server) handleLatestItemRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "itemID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}
	record, err := s.st.MostRecentRecord(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if record == nil {
		RespondWithError(w, http.StatusNotFound, "No records for this item")
		return
	}
	RespondWithJSON(w, http.StatusOK, record)
}
