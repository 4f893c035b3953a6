package auth

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const (
	TenantHeader = "x-tenant-id"
	UserHeader   = "x-user-id"

	// SystemActor is recorded on postings made without a calling user.
	SystemActor = "system"
)

type ctxKey int

const (
	tenantKey ctxKey = iota
	actorKey
)

func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantKey, tenantID)
}

func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey, actorID)
}

// GetTenantID returns the tenant put on ctx by the interceptor, falling back to incoming metadata.
func GetTenantID(ctx context.Context) string {
	if val, ok := ctx.Value(tenantKey).(string); ok {
		return val
	}
	return fromMetadata(ctx, TenantHeader)
}

// GetActorID returns the calling user, or SystemActor when there is none.
func GetActorID(ctx context.Context) string {
	if val, ok := ctx.Value(actorKey).(string); ok && val != "" {
		return val
	}
	if val := fromMetadata(ctx, UserHeader); val != "" {
		return val
	}
	return SystemActor
}

func fromMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if val := md.Get(key); len(val) > 0 {
			return val[0]
		}
	}
	return ""
}

// ContextInterceptor copies the tenant and user metadata into the request context.
func ContextInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if tenant := fromMetadata(ctx, TenantHeader); tenant != "" {
			ctx = WithTenant(ctx, tenant)
		}
		if user := fromMetadata(ctx, UserHeader); user != "" {
			ctx = WithActor(ctx, user)
		}
		return handler(ctx, req)
	}
}
