package api

import (
	"net/http"

	"github.com/adzap-tech/adzap-backend/internal/service"
	"github.com/adzap-tech/adzap-backend/internal/service/auth_service"
)

func (a *Api) HandlerGetMe(w http.ResponseWriter, r *http.Request) {
	claims, err := service.GetClaimsFromContext(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}

	user := auth_service.SessionUser{
		TeamID: claims.TeamID,
		Name:   claims.Name,
		Email:  claims.Email,
		Role:   claims.Role,
	}
	marshalAndRespond(w, http.StatusOK, user)
}
