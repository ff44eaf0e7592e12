package web

import (
	"net/http"

	"github.com/vbonduro/hbnb/internal/authz"
	"github.com/vbonduro/hbnb/internal/domain"
)

func (s *Server) handleCreatePlace(w http.ResponseWriter, r *http.Request, actor authz.Identity) {
	var in domain.PlaceInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, err)
		return
	}
	place, err := s.facade.CreatePlace(r.Context(), in, actor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, place)
}

func (s *Server) handleListPlaces(w http.ResponseWriter, r *http.Request) {
	places, err := s.facade.GetAllPlaces(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, places)
}

func (s *Server) handleGetPlace(w http.ResponseWriter, r *http.Request) {
	details, err := s.facade.GetPlaceDetails(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleUpdatePlace(w http.ResponseWriter, r *http.Request, actor authz.Identity) {
	var patch domain.PlacePatch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, err)
		return
	}
	place, err := s.facade.UpdatePlace(r.Context(), r.PathValue("id"), patch, actor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, place)
}

func (s *Server) handleDeletePlace(w http.ResponseWriter, r *http.Request, actor authz.Identity) {
	if err := s.facade.DeletePlace(r.Context(), r.PathValue("id"), actor); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPlaceReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.facade.GetReviewsByPlace(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (s *Server) handleLinkAmenity(w http.ResponseWriter, r *http.Request, actor authz.Identity) {
	place, err := s.facade.AddAmenityToPlace(r.Context(), r.PathValue("id"), r.PathValue("amenityID"), actor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, place)
}

func (s *Server) handleUnlinkAmenity(w http.ResponseWriter, r *http.Request, actor authz.Identity) {
	place, err := s.facade.RemoveAmenityFromPlace(r.Context(), r.PathValue("id"), r.PathValue("amenityID"), actor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, place)
}
