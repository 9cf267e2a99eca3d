package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/adzap-tech/adzap-backend/internal/service/contact_service"
)

func (a *Api) HandlerSubmitContactMessage(w http.ResponseWriter, r *http.Request) {
	var input contact_service.ContactMessageInput
	if err := decodeJsonBody(w, r, &input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	msg, err := a.ContactServiceConfig.Submit(r.Context(), input)
	if err != nil {
		handlerError(err, w)
		return
	}

	marshalAndRespond(w, http.StatusCreated, msg)
}

func (a *Api) HandlerDeleteContactMessage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "messageID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid message id, id must be an integer", http.StatusBadRequest)
		return
	}

	if err := a.ContactServiceConfig.Delete(r.Context(), id); err != nil {
		handlerError(err, w)
		return
	}

	respondWithJson(w, http.StatusOK, []byte(`{"success": true}`))
}
