package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/adzap-tech/adzap-backend/internal/adzap_errors"
)

// request bodies may carry poster data URLs, match the old 5mb limit
const maxRequestBodyBytes = 5 << 20

func decodeJsonBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request payload, %s", err.Error())
	}
	return nil
}

func respondWithJson(w http.ResponseWriter, statusCode int, responseBytes []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(responseBytes); err != nil {
		log.Errorf("cannot write response, %v", err)
	}
}

func marshalAndRespond(w http.ResponseWriter, statusCode int, payload any) {
	responseBytes, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("cannot marshal %v, %v", payload, err)
		http.Error(w, adzap_errors.ErrInternal.Error(), http.StatusInternalServerError)
		return
	}
	respondWithJson(w, statusCode, responseBytes)
}

// handlerError maps service errors onto status codes. Anything
// unrecognized collapses to a generic 500 with no detail leakage.
func handlerError(err error, w http.ResponseWriter) {
	switch {
	case errors.Is(err, adzap_errors.ErrInvalidInput),
		errors.Is(err, adzap_errors.ErrInvalidRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, adzap_errors.ErrInvalidUserCredentials):
		// generic message, no account enumeration
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, adzap_errors.ErrUnAuthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, adzap_errors.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, adzap_errors.ErrCapacityFull),
		errors.Is(err, adzap_errors.ErrDuplicateEmail):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, adzap_errors.ErrTooManyAttempts):
		http.Error(w, err.Error(), http.StatusTooManyRequests)
	default:
		http.Error(w, adzap_errors.ErrInternal.Error(), http.StatusInternalServerError)
	}
}
