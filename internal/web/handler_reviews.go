package web

import (
	"net/http"

	"github.com/vbonduro/hbnb/internal/authz"
	"github.com/vbonduro/hbnb/internal/domain"
)

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request, actor authz.Identity) {
	var in domain.ReviewInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, err)
		return
	}
	review, err := s.facade.CreateReview(r.Context(), in, actor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.facade.GetAllReviews(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	review, err := s.facade.GetReview(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request, actor authz.Identity) {
	var patch domain.ReviewPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, err)
		return
	}
	review, err := s.facade.UpdateReview(r.Context(), r.PathValue("id"), patch, actor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request, actor authz.Identity) {
	if err := s.facade.DeleteReview(r.Context(), r.PathValue("id"), actor); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
