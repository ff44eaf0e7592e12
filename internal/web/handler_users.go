package web

import (
	"errors"
	"net/http"

	"github.com/vbonduro/hbnb/internal/apperror"
	"github.com/vbonduro/hbnb/internal/authz"
	"github.com/vbonduro/hbnb/internal/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	user, err := s.facade.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, apperror.ErrInvalidLogin) {
		writeMessage(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	token, err := s.tokens.Issue(authz.Identity{ID: user.ID, IsAdmin: user.IsAdmin})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token, TokenType: "Bearer"})
}

// handleCreateUser registers a user. Anyone may register; creating an admin
// requires an admin token.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in domain.UserInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, err)
		return
	}
	if in.IsAdmin {
		id, _ := identityFrom(r.Context())
		if err := authz.RequireAdmin(id, "create an administrator"); err != nil {
			s.writeError(w, err)
			return
		}
	}
	user, err := s.facade.CreateUser(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request, _ authz.Identity) {
	users, err := s.facade.GetAllUsers(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.facade.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request, actor authz.Identity) {
	var patch domain.UserPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, err)
		return
	}
	user, err := s.facade.UpdateUser(r.Context(), r.PathValue("id"), patch, actor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, actor authz.Identity) {
	if err := s.facade.DeleteUser(r.Context(), r.PathValue("id"), actor); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListUserPlaces(w http.ResponseWriter, r *http.Request) {
	places, err := s.facade.GetPlacesByOwner(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, places)
}
