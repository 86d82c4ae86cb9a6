package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/proofpanel/proofpanel/internal/model"
	"github.com/proofpanel/proofpanel/internal/study"
)

func (s *Server) handleCreateStudy(w http.ResponseWriter, r *http.Request) {
	var in study.CreateInput
	if !decodeBody(w, r, &in) {
		return
	}
	created, err := s.studies.Create(r.Context(), accountID(r.Context()), in)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"study":   created,
	})
}

func (s *Server) handleListStudies(w http.ResponseWriter, r *http.Request) {
	studies, err := s.studies.List(r.Context(), accountID(r.Context()))
	if err != nil {
		zap.L().Error("study list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list studies")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"studies": studies,
	})
}

func (s *Server) handleGetStudy(w http.ResponseWriter, r *http.Request) {
	found, err := s.studies.Get(r.Context(), accountID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStudyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"study":   found,
	})
}

func (s *Server) handleUpdateStudy(w http.ResponseWriter, r *http.Request) {
	var in study.CreateInput
	if !decodeBody(w, r, &in) {
		return
	}
	updated, err := s.studies.Update(r.Context(), accountID(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		s.writeStudyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"study":   updated,
	})
}

func (s *Server) handleStudyStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.StudyStatus `json:"status"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	updated, err := s.studies.SetStatus(r.Context(), accountID(r.Context()), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		s.writeStudyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"study":   updated,
	})
}

func (s *Server) handleDeleteStudy(w http.ResponseWriter, r *http.Request) {
	if err := s.studies.Delete(r.Context(), accountID(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeStudyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) writeStudyError(w http.ResponseWriter, err error) {
	if errors.Is(err, study.ErrNotFound) {
		writeError(w, http.StatusNotFound, "study not found")
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}
