package task

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

var (
	errEmptyBody = errors.New("request body is empty")
	errInvalidID = errors.New("invalid task id")
)

func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errInvalidID
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, log zerolog.Logger, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to write json response")
	}
}

func writeError(w http.ResponseWriter, log zerolog.Logger, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	writeJSON(w, log, status, map[string]string{"error": message})
}
