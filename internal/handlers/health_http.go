package handlers

import (
	"context"
	"net/http"
	"time"

	"bugtracker/internal/utils"
)

// Pinger is implemented by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports ok, and checks the database when db is non-nil.
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				utils.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "db": err.Error()})
				return
			}
		}
		utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
