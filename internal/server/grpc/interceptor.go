package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/entrelibros-auth/internal/common"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const identityKey ctxKey = "identity"

// authenticatedMethods need a valid access_token.
var authenticatedMethods = map[string]bool{
	WhoAmIMethod: true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !authenticatedMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
			accessToken = values[0]
		}
	}
	if accessToken == "" {
		return nil, status.Error(codes.Unauthenticated, common.MsgUnauthorized)
	}

	identity, err := s.auth.Identify(ctx, accessToken)
	if err != nil {
		if errors.Is(err, common.ErrSigningKeyMissing) {
			return nil, status.Error(codes.Internal, common.MsgJWTNotConfigured)
		}
		return nil, status.Error(codes.Unauthenticated, common.MsgUnauthorized)
	}

	return handler(context.WithValue(ctx, identityKey, identity), req)
}

// timeoutInterceptor bounds every call by the configured timeout.
func (s *GRPCServer) timeoutInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if s.timeout <= 0 {
		return handler(ctx, req)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return handler(ctx, req)
}

func identityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok
}
