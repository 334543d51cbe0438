package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"globetrotter-service/internal/domain"
)

var errAdminRequired = errors.New("admin access required")

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response failed: %v", err)
	}
}

// ok wraps fields into a {"success": true, ...} envelope.
func ok(w http.ResponseWriter, status int, fields map[string]any) {
	body := make(map[string]any, len(fields)+1)
	body["success"] = true
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Message: message})
}

// writeError maps a use-case error onto the HTTP error taxonomy.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", r.Method, r.URL.Path, err)
		writeJSON(w, status, errorBody{Message: "Server Error", Error: err.Error()})
		return
	}
	body := errorBody{Message: messageFor(err)}
	writeJSON(w, status, body)
}

func statusFor(err error) int {
	switch {
	case domain.IsValidation(err),
		errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrAlreadyJoined),
		errors.Is(err, domain.ErrNotParticipant),
		errors.Is(err, domain.ErrDestinationExists),
		errors.Is(err, domain.ErrCatalogSeeded):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, errAdminRequired):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrDestinationNotFound),
		errors.Is(err, domain.ErrCatalogEmpty),
		errors.Is(err, domain.ErrChallengeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrGeneratorUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func messageFor(err error) string {
	var verr domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	for _, known := range []error{
		domain.ErrUserExists,
		domain.ErrInvalidCredentials,
		domain.ErrInvalidToken,
		domain.ErrUserNotFound,
		domain.ErrDestinationNotFound,
		domain.ErrDestinationExists,
		domain.ErrCatalogEmpty,
		domain.ErrCatalogSeeded,
		domain.ErrChallengeNotFound,
		domain.ErrAlreadyJoined,
		domain.ErrNotParticipant,
		domain.ErrGeneratorUnavailable,
		errAdminRequired,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return err.Error()
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return domain.ValidationError{Field: "body", Message: "request body is required"}
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.ValidationError{Field: "body", Message: "invalid JSON payload"}
	}
	return nil
}

// decodeOptionalJSON accepts an empty body and leaves dst untouched.
func decodeOptionalJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return domain.ValidationError{Field: "body", Message: "invalid JSON payload"}
}
