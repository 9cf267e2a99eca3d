package api

import (
	"net/http"
)

func (a *Api) HandlerBootstrap(w http.ResponseWriter, r *http.Request) {
	snap, err := a.SyncServiceConfig.Bootstrap(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}
	marshalAndRespond(w, http.StatusOK, snap)
}
