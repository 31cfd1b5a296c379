package grpc

import (
	"context"
	"errors"
	"strconv"

	"github.com/dmitrijs2005/otpsteward/internal/common"
	"github.com/dmitrijs2005/otpsteward/internal/rpc"
	"github.com/dmitrijs2005/otpsteward/internal/server/auth"
	"github.com/dmitrijs2005/otpsteward/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// authorize checks the caller of a write-level method. Until the first
// account exists write methods are open so it can be bootstrapped.
func (s *GRPCServer) authorize(ctx context.Context, fullMethod string) (context.Context, error) {
	if rpc.MethodAccess[fullMethod] != rpc.AccessWrite {
		return ctx, nil
	}
	if !s.accounts.HasAccounts() {
		return ctx, nil
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, "token expired")
		}
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}
	if claims.Role != models.RoleMaster {
		return nil, status.Error(codes.PermissionDenied, "master role required")
	}

	return context.WithValue(ctx, claimsKey, claims), nil
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	ctx, err := s.authorize(ctx, info.FullMethod)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

func (s *GRPCServer) accessTokenStreamInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	ctx, err := s.authorize(ss.Context(), info.FullMethod)
	if err != nil {
		return err
	}
	return handler(srv, &authorizedStream{ServerStream: ss, ctx: ctx})
}

type authorizedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authorizedStream) Context() context.Context {
	return s.ctx
}

// callerID names the authenticated caller for logs.
func callerID(ctx context.Context) string {
	if c, ok := ctx.Value(claimsKey).(*auth.Claims); ok {
		return strconv.FormatInt(c.AccountID, 10)
	}
	return "anonymous"
}
