package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
)

const DefaultMaxBodyBytes = 25 << 20

// Handler serves POST /api/generate.
func (s *Service) Handler(maxBodyBytes int64) http.Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			WriteJSON(w, http.StatusMethodNotAllowed, Response{Error: "method not allowed"})
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				WriteJSON(w, http.StatusRequestEntityTooLarge, Response{Error: "request body too large"})
				return
			}
			WriteJSON(w, http.StatusBadRequest, Response{Error: "invalid request body"})
			return
		}

		result, err := s.Dispatch(r.Context(), req)
		if err != nil {
			msg := err.Error()
			if msg == "" {
				msg = "An unknown error occurred on the server."
			}
			WriteJSON(w, HTTPStatus(err), Response{Error: msg})
			return
		}

		WriteJSON(w, http.StatusOK, Response{Result: result})
	})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
