package web

import (
	"encoding/json"
	"net/http"

	"github.com/vbonduro/mealcal/internal/service"
)

func (s *Server) handleListMeals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cards, err := s.meals.ListMeals(r.Context(), service.MealFilter{
		Category:   q.Get("category"),
		Ingredient: q.Get("ingredient"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleGetMeal(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		badRequest(w, "invalid meal id")
		return
	}

	detail, err := s.meals.GetMeal(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleSearchMeals(w http.ResponseWriter, r *http.Request) {
	cards, err := s.meals.SearchMeals(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleCreateMeal(w http.ResponseWriter, r *http.Request) {
	var req service.CreateMealRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	detail, err := s.meals.CreateUserMeal(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

func (s *Server) handleDeleteMeal(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		badRequest(w, "invalid meal id")
		return
	}

	if err := s.meals.DeleteMeal(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImportMeal(w http.ResponseWriter, r *http.Request) {
	detail, created, err := s.meals.ImportExternalMeal(r.Context(), r.PathValue("externalId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, detail)
}
