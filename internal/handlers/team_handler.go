package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"imovelBack/internal/models"
	services "imovelBack/internal/services"
)

type TeamHandler struct {
	Service *services.TeamService
}

func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	team, err := h.Service.CreateTeam(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, models.ErrAlreadyInTeam) {
			http.Error(w, "User already belongs to a team", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(team)
}

func (h *TeamHandler) GetTeamByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil || id <= 0 {
		http.Error(w, "Invalid team ID", http.StatusBadRequest)
		return
	}

	team, err := h.Service.GetTeamByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrTeamNotFound) {
			http.Error(w, "Team not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve team", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(team)
}

func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	teamID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil || teamID <= 0 {
		http.Error(w, "Invalid team ID", http.StatusBadRequest)
		return
	}

	var req models.TeamMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	team, err := h.Service.AddMember(r.Context(), userID, teamID, req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrTeamNotFound):
			http.Error(w, "Team not found", http.StatusNotFound)
		case errors.Is(err, models.ErrUserNotFound):
			http.Error(w, "User not found", http.StatusNotFound)
		case errors.Is(err, models.ErrNotTeamOwner):
			http.Error(w, "Only the team owner can add members", http.StatusForbidden)
		case errors.Is(err, models.ErrAlreadyInTeam):
			http.Error(w, "User already belongs to a team", http.StatusConflict)
		default:
			http.Error(w, "Failed to add member", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(team)
}

func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	teamID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil || teamID <= 0 {
		http.Error(w, "Invalid team ID", http.StatusBadRequest)
		return
	}
	memberID, err := strconv.Atoi(r.URL.Query().Get(":member_id"))
	if err != nil || memberID <= 0 {
		http.Error(w, "Invalid member ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.RemoveMember(r.Context(), userID, teamID, memberID); err != nil {
		switch {
		case errors.Is(err, models.ErrTeamNotFound):
			http.Error(w, "Team not found", http.StatusNotFound)
		case errors.Is(err, models.ErrNotTeamOwner):
			http.Error(w, "Only the team owner can remove members", http.StatusForbidden)
		case errors.Is(err, models.ErrNoRecord):
			http.Error(w, "User is not a member of this team", http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TeamHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	teamID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil || teamID <= 0 {
		http.Error(w, "Invalid team ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteTeam(r.Context(), userID, teamID); err != nil {
		switch {
		case errors.Is(err, models.ErrTeamNotFound):
			http.Error(w, "Team not found", http.StatusNotFound)
		case errors.Is(err, models.ErrNotTeamOwner):
			http.Error(w, "Only the team owner can delete the team", http.StatusForbidden)
		default:
			http.Error(w, "Failed to delete team", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
