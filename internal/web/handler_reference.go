package web

import (
	"context"
	"net/http"
)

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.writeNames(w, r, s.meals.Categories)
}

func (s *Server) handleAreas(w http.ResponseWriter, r *http.Request) {
	s.writeNames(w, r, s.meals.Areas)
}

func (s *Server) handleIngredients(w http.ResponseWriter, r *http.Request) {
	s.writeNames(w, r, s.meals.Ingredients)
}

func (s *Server) writeNames(w http.ResponseWriter, r *http.Request, list func(ctx context.Context) ([]string, error)) {
	names, err := list(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}
