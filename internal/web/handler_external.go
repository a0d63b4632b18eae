package web

import (
	"net/http"
	"strings"
)

func (s *Server) handleMealCalories(w http.ResponseWriter, r *http.Request) {
	resp, err := s.calories.ComputeCalories(r.Context(), r.PathValue("externalId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLeastIngredients(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		badRequest(w, "name is required")
		return
	}

	meal, err := s.calories.FindLeastIngredientsMeal(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if meal == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no meals found for " + name})
		return
	}
	writeJSON(w, http.StatusOK, meal)
}

func (s *Server) handleExternalSearch(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		badRequest(w, "name is required")
		return
	}

	meals, err := s.calories.SearchExternal(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meals)
}
