package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"bugtracker/internal/apperr"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes the error envelope with a code derived from status.
func Error(w http.ResponseWriter, status int, msg string) {
	body := apperr.FromStatus(status, msg).Response()
	if status == http.StatusUnauthorized {
		body.Error.Code = "UNAUTHORIZED"
	}
	JSON(w, status, body)
}

// Fail maps an application error onto its HTTP status. Untyped errors are
// reported as 500 without leaking their text.
func Fail(w http.ResponseWriter, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		JSON(w, ae.Kind.Status(), ae.Response())
		return
	}
	JSON(w, http.StatusInternalServerError, apperr.Body{
		Error: apperr.BodyError{Code: apperr.KindUnknown.String(), Message: "internal error"},
	})
}
