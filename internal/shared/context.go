package shared

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	actorKey    contextKey = "comercia.actor"
	businessKey contextKey = "comercia.business"
)

// ContextWithActor stores the acting user's ID in the context.
func ContextWithActor(ctx context.Context, actorID uuid.UUID) context.Context {
	return context.WithValue(ctx, actorKey, actorID)
}

// ActorFromContext returns the acting user's ID and whether one was set.
func ActorFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(actorKey).(uuid.UUID)
	return id, ok
}

// ContextWithBusiness stores the current business ID in the context.
func ContextWithBusiness(ctx context.Context, businessID uuid.UUID) context.Context {
	return context.WithValue(ctx, businessKey, businessID)
}

// BusinessFromContext returns the current business ID and whether one was
// set.
func BusinessFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(businessKey).(uuid.UUID)
	return id, ok
}
