package utils

import (
	"context"

	"bugtracker/internal/models"
)

type ctxKey string

const actorKey ctxKey = "actor"

func WithActor(ctx context.Context, a models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFrom returns the authenticated actor, if the auth middleware set one.
func ActorFrom(ctx context.Context) (models.Actor, bool) {
	a, ok := ctx.Value(actorKey).(models.Actor)
	return a, ok && a.UserID > 0
}
