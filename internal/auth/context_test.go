package auth

import (
	"context"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func TestContextInterceptor(t *testing.T) {
	md := metadata.Pairs(TenantHeader, "shelter-1", UserHeader, "user-9")
	ctx := metadata.NewIncomingContext(context.Background(), md)

	var gotTenant, gotActor string
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		gotTenant = GetTenantID(ctx)
		gotActor = GetActorID(ctx)
		return nil, nil
	}

	if _, err := ContextInterceptor()(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/x/Y"}, handler); err != nil {
		t.Fatalf("interceptor error = %v", err)
	}
	if gotTenant != "shelter-1" {
		t.Errorf("tenant = %q, want shelter-1", gotTenant)
	}
	if gotActor != "user-9" {
		t.Errorf("actor = %q, want user-9", gotActor)
	}
}

func TestDefaults(t *testing.T) {
	ctx := context.Background()
	if got := GetTenantID(ctx); got != "" {
		t.Errorf("tenant = %q, want empty", got)
	}
	if got := GetActorID(ctx); got != SystemActor {
		t.Errorf("actor = %q, want %q", got, SystemActor)
	}
	if got := GetActorID(WithActor(ctx, "u1")); got != "u1" {
		t.Errorf("actor = %q, want u1", got)
	}
}
