package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bugtracker/internal/apperr"
	"bugtracker/internal/models"
	"bugtracker/internal/utils"
)

// actorOf returns the caller. Routes using it sit behind RequireAuth.
func actorOf(r *http.Request) models.Actor {
	a, _ := utils.ActorFrom(r.Context())
	return a
}

// pathID parses the named route parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := utils.ParseID(name, chi.URLParam(r, name))
	if err != nil {
		utils.Fail(w, err)
		return 0, false
	}
	return id, true
}

// decode reads a JSON body into v. Enum rejections keep their message.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			utils.Fail(w, ae)
		} else {
			utils.Error(w, http.StatusBadRequest, "invalid request body")
		}
		return false
	}
	return true
}

// reply writes v with status, or the mapped error.
func reply(w http.ResponseWriter, status int, v any, err error) {
	if err != nil {
		utils.Fail(w, err)
		return
	}
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	utils.JSON(w, status, v)
}
