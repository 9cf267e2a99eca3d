package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type finalizeRoundRequest struct {
	TeamIDs []int64 `json:"teamIds"`
}

func roundParam(r *http.Request) (int, bool) {
	round, err := strconv.Atoi(chi.URLParam(r, "round"))
	if err != nil || (round != 1 && round != 2) {
		return 0, false
	}
	return round, true
}

func (a *Api) HandlerFinalizeRound(w http.ResponseWriter, r *http.Request) {
	round, ok := roundParam(r)
	if !ok {
		http.Error(w, "round must be 1 or 2", http.StatusBadRequest)
		return
	}
	var request finalizeRoundRequest
	if err := decodeJsonBody(w, r, &request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	finalize := a.TeamServiceConfig.FinalizeRound1
	if round == 2 {
		finalize = a.TeamServiceConfig.FinalizeRound2
	}
	teams, err := finalize(r.Context(), request.TeamIDs)
	if err != nil {
		handlerError(err, w)
		return
	}

	marshalAndRespond(w, http.StatusOK, teamsResponse{Success: true, Teams: teams})
}

func (a *Api) HandlerClearRoundSelection(w http.ResponseWriter, r *http.Request) {
	round, ok := roundParam(r)
	if !ok {
		http.Error(w, "round must be 1 or 2", http.StatusBadRequest)
		return
	}

	teams, err := a.TeamServiceConfig.ClearRoundSelection(r.Context(), round)
	if err != nil {
		handlerError(err, w)
		return
	}

	marshalAndRespond(w, http.StatusOK, teamsResponse{Success: true, Teams: teams})
}
