package api

import (
	"net/http"

	"github.com/adzap-tech/adzap-backend/internal/storage"
)

type recordScoreRequest struct {
	JudgeID string  `json:"judgeId"`
	Round   int     `json:"round"`
	Score   float64 `json:"score"`
}

func (a *Api) HandlerRecordScore(w http.ResponseWriter, r *http.Request) {
	teamID, ok := teamIDParam(r)
	if !ok {
		http.Error(w, "invalid team id, id must be an integer", http.StatusBadRequest)
		return
	}
	var request recordScoreRequest
	if err := decodeJsonBody(w, r, &request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	team, err := a.TeamServiceConfig.RecordScore(
		r.Context(),
		teamID,
		request.JudgeID,
		request.Round,
		request.Score,
	)
	if err != nil {
		handlerError(err, w)
		return
	}

	marshalAndRespond(w, http.StatusOK, registerTeamResponse{Success: true, Team: team})
}

type clearScoresRequest struct {
	JudgeID string `json:"judgeId"`
	Round   int    `json:"round"`
	// nil clears the judge's round for every team
	TeamIDs *[]int64 `json:"teamIds"`
}

type teamsResponse struct {
	Success bool           `json:"success"`
	Teams   []storage.Team `json:"teams"`
}

func (a *Api) HandlerClearJudgeScores(w http.ResponseWriter, r *http.Request) {
	var request clearScoresRequest
	if err := decodeJsonBody(w, r, &request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var teamIDs []int64
	if request.TeamIDs != nil {
		teamIDs = *request.TeamIDs
		if teamIDs == nil {
			teamIDs = []int64{}
		}
	}
	teams, err := a.TeamServiceConfig.ClearJudgeScores(
		r.Context(),
		request.JudgeID,
		request.Round,
		teamIDs,
	)
	if err != nil {
		handlerError(err, w)
		return
	}

	marshalAndRespond(w, http.StatusOK, teamsResponse{Success: true, Teams: teams})
}
