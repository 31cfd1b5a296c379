package grpc

import (
	"context"

	"github.com/dmitrijs2005/otpsteward/internal/api"
	"github.com/dmitrijs2005/otpsteward/internal/server/services"
	"google.golang.org/grpc"
)

// ---- fakes ----

type fakeAccounts struct {
	hasAccounts bool

	// rejected is returned before ack; createErr after it.
	rejected  error
	createRes *services.CreateResult
	createErr error
	gotCreate services.CreateParams

	listRes    *services.ListResult
	listErr    error
	gotListID  string
	gotDepth   string
	authRes    *services.AuthResult
	authErr    error
	gotAuthID  string
	gotAuthRes string
}

func (f *fakeAccounts) Create(ctx context.Context, p services.CreateParams, ack func() error) (*services.CreateResult, error) {
	f.gotCreate = p
	if f.rejected != nil {
		return nil, f.rejected
	}
	if err := ack(); err != nil {
		return nil, err
	}
	return f.createRes, f.createErr
}

func (f *fakeAccounts) List(ctx context.Context, accountID, depth string) (*services.ListResult, error) {
	f.gotListID, f.gotDepth = accountID, depth
	return f.listRes, f.listErr
}

func (f *fakeAccounts) Authenticate(ctx context.Context, clientID, response string) (*services.AuthResult, error) {
	f.gotAuthID, f.gotAuthRes = clientID, response
	return f.authRes, f.authErr
}

func (f *fakeAccounts) HasAccounts() bool { return f.hasAccounts }

type fakeStream struct {
	grpc.ServerStream
	ctx     context.Context
	sent    []*api.Envelope
	sendErr error
}

func (f *fakeStream) Context() context.Context { return f.ctx }

func (f *fakeStream) SendMsg(m any) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, m.(*api.Envelope))
	return nil
}
