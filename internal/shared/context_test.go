package shared

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestContextCarriesScope(t *testing.T) {
	actorID := uuid.New()
	businessID := uuid.New()

	ctx := ContextWithActor(context.Background(), actorID)
	ctx = ContextWithBusiness(ctx, businessID)

	got, ok := ActorFromContext(ctx)
	if !ok || got != actorID {
		t.Fatalf("ActorFromContext = %s, %v; want %s, true", got, ok, actorID)
	}
	got, ok = BusinessFromContext(ctx)
	if !ok || got != businessID {
		t.Fatalf("BusinessFromContext = %s, %v; want %s, true", got, ok, businessID)
	}
}

func TestContextWithoutScope(t *testing.T) {
	if _, ok := ActorFromContext(context.Background()); ok {
		t.Fatal("ActorFromContext reported an actor on an empty context")
	}
	if _, ok := BusinessFromContext(context.Background()); ok {
		t.Fatal("BusinessFromContext reported a business on an empty context")
	}
}
