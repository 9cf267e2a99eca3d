package api

import (
	"net/http"
	"strconv"
)

// HandlerResults serves the per-round leaderboard, highest average
// first. Teams nobody has scored are left out entirely.
func (a *Api) HandlerResults(w http.ResponseWriter, r *http.Request) {
	round := 1
	if roundStr := r.URL.Query().Get("round"); roundStr != "" {
		parsed, err := strconv.Atoi(roundStr)
		if err != nil {
			http.Error(w, "round must be an integer", http.StatusBadRequest)
			return
		}
		round = parsed
	}

	rankings, err := a.TeamServiceConfig.Rankings(r.Context(), round)
	if err != nil {
		handlerError(err, w)
		return
	}

	marshalAndRespond(w, http.StatusOK, map[string]any{
		"round":    round,
		"rankings": rankings,
	})
}
