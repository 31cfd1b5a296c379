package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/otpsteward/internal/api"
	"github.com/dmitrijs2005/otpsteward/internal/common"
	"github.com/dmitrijs2005/otpsteward/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Create sends an acknowledgement once the request is accepted and then
// the final envelope. A rejected request gets a single error envelope.
func (s *GRPCServer) Create(req *api.CreateRequest, stream grpc.ServerStream) error {
	ctx := stream.Context()

	uuid, err := api.CreateUUID(req.Path)
	if err != nil {
		return stream.SendMsg(api.Failure(req.RequestID, err))
	}

	s.logger.Info(ctx, "Create request", "requestID", req.RequestID, "uuid", uuid, "by", callerID(ctx))

	res, err := s.accounts.Create(ctx, services.CreateParams{
		UUID:       uuid,
		Name:       req.Name,
		Comments:   req.Comments,
		Role:       req.Role,
		ClientName: req.ClientName,
	}, func() error {
		return stream.SendMsg(api.Ack(req.RequestID))
	})
	if err != nil {
		var re *common.RequestError
		if !errors.As(err, &re) {
			// the acknowledgement could not be delivered
			s.logger.Warn(ctx, "create aborted", "requestID", req.RequestID, "error", err)
			return status.Error(codes.Unavailable, "stream closed")
		}
		return stream.SendMsg(api.Failure(req.RequestID, re))
	}

	return s.reply(ctx, req.RequestID, res, stream.SendMsg)
}

func (s *GRPCServer) List(ctx context.Context, req *api.ListRequest) (*api.Envelope, error) {
	accountID, err := api.ListAccountID(req.Path)
	if err != nil {
		return api.Failure(req.RequestID, err), nil
	}

	res, err := s.accounts.List(ctx, accountID, req.Options.Depth)
	if err != nil {
		return api.Failure(req.RequestID, err), nil
	}

	return s.envelope(ctx, req.RequestID, res), nil
}

func (s *GRPCServer) Authenticate(ctx context.Context, req *api.AuthenticateRequest) (*api.Envelope, error) {
	clientID, err := api.AuthenticateClientID(req.Path)
	if err != nil {
		return api.Failure(req.RequestID, err), nil
	}

	res, err := s.accounts.Authenticate(ctx, clientID, req.Response)
	if err != nil {
		return api.Failure(req.RequestID, err), nil
	}

	return s.envelope(ctx, req.RequestID, res), nil
}

func (s *GRPCServer) envelope(ctx context.Context, requestID string, v any) *api.Envelope {
	env, err := api.Success(requestID, v)
	if err != nil {
		s.logger.Error(ctx, "encode reply", "requestID", requestID, "error", err)
		return api.Failure(requestID, err)
	}
	return env
}

func (s *GRPCServer) reply(ctx context.Context, requestID string, v any, send func(any) error) error {
	if err := send(s.envelope(ctx, requestID, v)); err != nil {
		s.logger.Warn(ctx, "reply not delivered", "requestID", requestID, "error", err)
		return err
	}
	return nil
}
