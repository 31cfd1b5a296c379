package client

import (
	"context"

	"github.com/dmitrijs2005/otpsteward/internal/api"
)

type Client interface {
	Close() error
	// Create calls onAck for the acknowledgement and returns the final
	// envelope.
	Create(ctx context.Context, req *api.CreateRequest, onAck func(*api.Envelope)) (*api.Envelope, error)
	List(ctx context.Context, req *api.ListRequest) (*api.Envelope, error)
	Authenticate(ctx context.Context, req *api.AuthenticateRequest) (*api.Envelope, error)
}
