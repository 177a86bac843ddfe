package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/entrelibros-auth/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func stringField(s *structpb.Struct, name string) string {
	if s == nil {
		return ""
	}
	return s.GetFields()[name].GetStringValue()
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	email := stringField(req, "email")
	password := stringField(req, "password")
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, status.Error(codes.InvalidArgument, common.MsgMissingFields)
	}

	out, err := s.auth.Authenticate(ctx, email, password)
	if err != nil {
		s.logger.Error(ctx, "login failed", "error", err)
		if errors.Is(err, common.ErrSigningKeyMissing) {
			return nil, status.Error(codes.Internal, common.MsgJWTNotConfigured)
		}
		return nil, status.Error(codes.Internal, common.MsgInternal)
	}
	if !out.Succeeded() {
		return nil, status.Error(codes.Unauthenticated, common.MsgInvalidCredentials)
	}

	resp, err := structpb.NewStruct(map[string]any{
		"token":      out.Token,
		"expires_at": out.ExpiresAt.UTC().Format(time.RFC3339),
		"user": map[string]any{
			"id":    out.Identity.ID,
			"email": out.Identity.Email,
			"role":  out.Identity.Role,
		},
		"message": common.MsgLoginSuccess,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, common.MsgInternal)
	}
	return resp, nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	identity, ok := identityFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, common.MsgUnauthorized)
	}

	resp, err := structpb.NewStruct(map[string]any{
		"user": map[string]any{"id": identity.ID, "role": identity.Role},
	})
	if err != nil {
		return nil, status.Error(codes.Internal, common.MsgInternal)
	}
	return resp, nil
}

func (s *GRPCServer) Ping(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"status": "ok"})
}
