package web

import (
	"net/http"

	"github.com/vbonduro/hbnb/internal/authz"
	"github.com/vbonduro/hbnb/internal/domain"
)

func (s *Server) handleCreateAmenity(w http.ResponseWriter, r *http.Request, _ authz.Identity) {
	var in domain.AmenityInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, err)
		return
	}
	amenity, err := s.facade.CreateAmenity(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, amenity)
}

func (s *Server) handleListAmenities(w http.ResponseWriter, r *http.Request) {
	amenities, err := s.facade.GetAllAmenities(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, amenities)
}

func (s *Server) handleGetAmenity(w http.ResponseWriter, r *http.Request) {
	amenity, err := s.facade.GetAmenity(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, amenity)
}

func (s *Server) handleUpdateAmenity(w http.ResponseWriter, r *http.Request, _ authz.Identity) {
	var patch domain.AmenityPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, err)
		return
	}
	amenity, err := s.facade.UpdateAmenity(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, amenity)
}

func (s *Server) handleDeleteAmenity(w http.ResponseWriter, r *http.Request, _ authz.Identity) {
	if err := s.facade.DeleteAmenity(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
