package middleware

import (
	"net/http"

	"bugtracker/internal/models"
	"bugtracker/internal/utils"

	"github.com/go-chi/chi/v5"
)

// RequireSelfOrRoles allows if the {param} route value is the caller's own id
// OR the caller has any of the given roles.
func RequireSelfOrRoles(param string, roles ...models.Role) func(http.Handler) http.Handler {
	roleSet := map[models.Role]struct{}{}
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a, _ := utils.ActorFrom(r.Context())
			if _, ok := roleSet[a.Role]; ok {
				next.ServeHTTP(w, r)
				return
			}
			id, err := utils.ParseID(param, chi.URLParam(r, param))
			if err != nil {
				utils.Fail(w, err)
				return
			}
			if a.UserID != 0 && id == a.UserID {
				next.ServeHTTP(w, r)
				return
			}
			utils.Error(w, http.StatusForbidden, "forbidden")
		})
	}
}
