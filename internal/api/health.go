package api

import (
	"net/http"

	"github.com/adzap-tech/adzap-backend/internal/storage"
)

type healthResponse struct {
	Ok        bool   `json:"ok"`
	Service   string `json:"service"`
	Storage   string `json:"storage"`
	Timestamp string `json:"timestamp"`
}

func (a *Api) HandlerHealth(w http.ResponseWriter, r *http.Request) {
	ok := a.Store.Ping(r.Context()) == nil
	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}
	marshalAndRespond(w, status, healthResponse{
		Ok:        ok,
		Service:   "adzap-backend",
		Storage:   a.Store.Mode(),
		Timestamp: storage.NowISO(),
	})
}
