package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"overwatch-tracker/internal/api"
	"overwatch-tracker/internal/repository"
	"overwatch-tracker/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Server exposes the command surface the chat gateway calls into:
// link profile, show profile and a liveness ping.
type Server struct {
	profiles *service.ProfileService
	logger   zerolog.Logger
}

func New(profiles *service.ProfileService, logger zerolog.Logger) *Server {
	return &Server{profiles: profiles, logger: logger}
}

func (s *Server) Register(r chi.Router) {
	r.Post("/v1/link", s.handleLink)
	r.Get("/v1/profile", s.handleProfile)
	r.Get("/v1/ping", s.handlePing)
}

type linkRequest struct {
	DiscordID string `json:"discord_id"`
	BattleTag string `json:"battle_tag"`
}

type linkResponse struct {
	UserID    string `json:"user_id"`
	BattleTag string `json:"battle_tag"`
}

func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DiscordID == "" || req.BattleTag == "" {
		writeError(w, http.StatusBadRequest, "discord_id and battle_tag are required")
		return
	}

	user, err := s.profiles.Link(r.Context(), req.DiscordID, req.BattleTag)
	switch {
	case errors.Is(err, repository.ErrAlreadyLinked):
		writeError(w, http.StatusConflict, "you already have an account linked")
	case errors.Is(err, api.ErrProfilePrivate):
		writeError(w, http.StatusForbidden, "this profile is private, set it to public in your Overwatch settings")
	case errors.Is(err, api.ErrProfileUnavailable):
		writeError(w, http.StatusNotFound, "this profile does not exist, or there was an unexpected error")
	case err != nil:
		s.logger.Error().Err(err).Str("discord_id", req.DiscordID).Msg("link failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusCreated, linkResponse{UserID: user.ID, BattleTag: user.BattleTag})
	}
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	discordID := r.URL.Query().Get("discord_id")
	battleTag := r.URL.Query().Get("battle_tag")
	if discordID == "" && battleTag == "" {
		writeError(w, http.StatusBadRequest, "discord_id or battle_tag is required")
		return
	}

	view, err := s.profiles.Profile(r.Context(), discordID, battleTag)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "no linked account found")
	case errors.Is(err, api.ErrProfilePrivate):
		writeError(w, http.StatusForbidden, "this profile is private")
	case errors.Is(err, service.ErrNoCompetitiveRecords):
		writeError(w, http.StatusNotFound, "this profile has no competitive records for this season")
	case errors.Is(err, api.ErrProfileUnavailable):
		writeError(w, http.StatusNotFound, "this profile does not exist, or there was an unexpected error")
	case err != nil:
		s.logger.Error().Err(err).Str("discord_id", discordID).Msg("profile lookup failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusOK, view)
	}
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "pong"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
