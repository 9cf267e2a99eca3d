package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/adzap-tech/adzap-backend/internal/service/team_service"
	"github.com/adzap-tech/adzap-backend/internal/storage"
)

type registerTeamResponse struct {
	Success bool         `json:"success"`
	Team    storage.Team `json:"team"`
}

func (a *Api) HandlerRegisterTeam(w http.ResponseWriter, r *http.Request) {
	var registration team_service.TeamRegistration
	if err := decodeJsonBody(w, r, &registration); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	team, err := a.TeamServiceConfig.RegisterTeam(r.Context(), registration)
	if err != nil {
		handlerError(err, w)
		return
	}

	marshalAndRespond(w, http.StatusCreated, registerTeamResponse{Success: true, Team: team})
}

type replaceTeamsRequest struct {
	Teams *[]team_service.IncomingTeam `json:"teams"`
}

type replaceTeamsResponse struct {
	Success bool           `json:"success"`
	Teams   []storage.Team `json:"teams"`
}

func (a *Api) HandlerReplaceTeams(w http.ResponseWriter, r *http.Request) {
	var request replaceTeamsRequest
	if err := decodeJsonBody(w, r, &request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if request.Teams == nil {
		http.Error(w, "teams must be an array", http.StatusBadRequest)
		return
	}

	teams, err := a.TeamServiceConfig.ReplaceAllTeams(r.Context(), *request.Teams)
	if err != nil {
		handlerError(err, w)
		return
	}

	marshalAndRespond(w, http.StatusOK, replaceTeamsResponse{Success: true, Teams: teams})
}

type deleteTeamsRequest struct {
	TeamIDs []int64 `json:"teamIds"`
}

func (a *Api) HandlerDeleteTeams(w http.ResponseWriter, r *http.Request) {
	var request deleteTeamsRequest
	if err := decodeJsonBody(w, r, &request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	deleted, err := a.TeamServiceConfig.DeleteTeams(r.Context(), request.TeamIDs)
	if err != nil {
		handlerError(err, w)
		return
	}

	marshalAndRespond(w, http.StatusOK, map[string]any{"success": true, "deleted": deleted})
}

func teamIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "teamID"), 10, 64)
	return id, err == nil
}

type updateProductNameRequest struct {
	ProductName string `json:"productName"`
}

func (a *Api) HandlerUpdateProductName(w http.ResponseWriter, r *http.Request) {
	teamID, ok := teamIDParam(r)
	if !ok {
		http.Error(w, "invalid team id, id must be an integer", http.StatusBadRequest)
		return
	}
	var request updateProductNameRequest
	if err := decodeJsonBody(w, r, &request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	team, err := a.TeamServiceConfig.UpdateProductName(r.Context(), teamID, request.ProductName)
	if err != nil {
		handlerError(err, w)
		return
	}

	marshalAndRespond(w, http.StatusOK, registerTeamResponse{Success: true, Team: team})
}

type uploadPosterRequest struct {
	Poster any `json:"poster"`
}

func (a *Api) HandlerUploadPoster(w http.ResponseWriter, r *http.Request) {
	teamID, ok := teamIDParam(r)
	if !ok {
		http.Error(w, "invalid team id, id must be an integer", http.StatusBadRequest)
		return
	}
	var request uploadPosterRequest
	if err := decodeJsonBody(w, r, &request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	team, err := a.TeamServiceConfig.UploadPoster(r.Context(), teamID, request.Poster)
	if err != nil {
		handlerError(err, w)
		return
	}

	marshalAndRespond(w, http.StatusOK, registerTeamResponse{Success: true, Team: team})
}
