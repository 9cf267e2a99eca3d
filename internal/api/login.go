package api

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/adzap-tech/adzap-backend/internal/service/auth_service"
	"github.com/adzap-tech/adzap-backend/internal/storage"
	"github.com/adzap-tech/adzap-backend/middleware"
)

func setSessionCookie(w http.ResponseWriter, token string, expiry time.Time) {
	cookie := &http.Cookie{
		Name:     middleware.KeyJwtSessionCookieName,
		Value:    token,
		Expires:  expiry,
		Path:     "/",                  // Important: Makes the cookie available across the entire site
		HttpOnly: true,                 // Crucial: Prevents JavaScript access
		Secure:   true,                 // Crucial: Only send over HTTPS
		SameSite: http.SameSiteLaxMode, // Recommended: Protects against CSRF
	}
	http.SetCookie(w, cookie)
}

type participantLoginResponse struct {
	User auth_service.SessionUser `json:"user"`
	Team storage.Team             `json:"team"`
}

type staffLoginResponse struct {
	User auth_service.SessionUser `json:"user"`
}

func (a *Api) HandlerParticipantLogin(w http.ResponseWriter, r *http.Request) {
	var request auth_service.LoginRequest
	if err := decodeJsonBody(w, r, &request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, team, token, expiry, err := a.AuthServiceConfig.LoginParticipant(r.Context(), request)
	if err != nil {
		handlerError(err, w)
		return
	}

	setSessionCookie(w, token, expiry)
	log.WithField("team_id", team.ID).Info("participant session issued")
	marshalAndRespond(w, http.StatusOK, participantLoginResponse{User: user, Team: team})
}

func (a *Api) HandlerAdminLogin(w http.ResponseWriter, r *http.Request) {
	a.staffLogin(w, r, a.AuthServiceConfig.LoginAdmin)
}

func (a *Api) HandlerJudgeLogin(w http.ResponseWriter, r *http.Request) {
	a.staffLogin(w, r, a.AuthServiceConfig.LoginJudge)
}

func (a *Api) staffLogin(
	w http.ResponseWriter,
	r *http.Request,
	login func(ctx context.Context, request auth_service.LoginRequest) (auth_service.SessionUser, string, time.Time, error),
) {
	var request auth_service.LoginRequest
	if err := decodeJsonBody(w, r, &request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, token, expiry, err := login(r.Context(), request)
	if err != nil {
		handlerError(err, w)
		return
	}

	setSessionCookie(w, token, expiry)
	marshalAndRespond(w, http.StatusOK, staffLoginResponse{User: user})
}
