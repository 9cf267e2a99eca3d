package api

import (
	"net/http"

	"github.com/adzap-tech/adzap-backend/internal/service/account_service"
	"github.com/adzap-tech/adzap-backend/internal/storage"
)

type registerAdminResponse struct {
	Success bool            `json:"success"`
	Admin   storage.Account `json:"admin"`
}

type registerJudgeResponse struct {
	Success bool            `json:"success"`
	Judge   storage.Account `json:"judge"`
}

func (a *Api) HandlerAdminRegister(w http.ResponseWriter, r *http.Request) {
	var registration account_service.AccountRegistration
	if err := decodeJsonBody(w, r, &registration); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	admin, err := a.AccountServiceConfig.RegisterAdmin(r.Context(), registration)
	if err != nil {
		handlerError(err, w)
		return
	}

	marshalAndRespond(w, http.StatusCreated, registerAdminResponse{Success: true, Admin: admin})
}

func (a *Api) HandlerJudgeRegister(w http.ResponseWriter, r *http.Request) {
	var registration account_service.AccountRegistration
	if err := decodeJsonBody(w, r, &registration); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	judge, err := a.AccountServiceConfig.RegisterJudge(r.Context(), registration)
	if err != nil {
		handlerError(err, w)
		return
	}

	marshalAndRespond(w, http.StatusCreated, registerJudgeResponse{Success: true, Judge: judge})
}
