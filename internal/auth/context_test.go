package auth

import (
	"context"
	"testing"
)

func TestAuthContextRoundTrip(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{UserID: 42, Username: "hana"})

	ac, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected auth context")
	}
	if ac.UserID != 42 || ac.Username != "hana" {
		t.Errorf("got %+v, want UserID 42 / hana", ac)
	}
	if UserID(ctx) != 42 {
		t.Errorf("UserID = %d, want 42", UserID(ctx))
	}
}

func TestAuthContextMissing(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Error("expected no auth context on empty context")
	}
	if UserID(context.Background()) != 0 {
		t.Error("UserID on empty context should be 0")
	}
}
