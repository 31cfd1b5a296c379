package rpc

import (
	"context"
	"errors"
	"io"

	"github.com/dmitrijs2005/otpsteward/internal/api"
	"google.golang.org/grpc"
)

const (
	ServiceName = "steward.v1.Manage"

	CreateMethod       = "/steward.v1.Manage/Create"
	ListMethod         = "/steward.v1.Manage/List"
	AuthenticateMethod = "/steward.v1.Manage/Authenticate"
)

// Access is the level a method requires.
type Access int

const (
	AccessRead Access = iota
	AccessWrite
)

// MethodAccess maps full method names to their access level. Methods not
// listed are read-level.
var MethodAccess = map[string]Access{
	CreateMethod:       AccessWrite,
	ListMethod:         AccessRead,
	AuthenticateMethod: AccessRead,
}

// ManageServer is implemented by the steward server. Create replies on
// stream: an acknowledgement, then the final envelope.
type ManageServer interface {
	Create(*api.CreateRequest, grpc.ServerStream) error
	List(context.Context, *api.ListRequest) (*api.Envelope, error)
	Authenticate(context.Context, *api.AuthenticateRequest) (*api.Envelope, error)
}

func RegisterManageServer(s grpc.ServiceRegistrar, srv ManageServer) {
	s.RegisterService(&ManageServiceDesc, srv)
}

var ManageServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ManageServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "List", Handler: listHandler},
		{MethodName: "Authenticate", Handler: authenticateHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Create", Handler: createHandler, ServerStreams: true},
	},
	Metadata: "steward/v1/manage",
}

func createHandler(srv any, stream grpc.ServerStream) error {
	in := new(api.CreateRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ManageServer).Create(in, stream)
}

func listHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(api.ListRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ManageServer).List(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ManageServer).List(ctx, req.(*api.ListRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func authenticateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(api.AuthenticateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ManageServer).Authenticate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AuthenticateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ManageServer).Authenticate(ctx, req.(*api.AuthenticateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ManageClient is the client side of steward.v1.Manage. Every call uses
// the JSON codec.
type ManageClient interface {
	Create(ctx context.Context, in *api.CreateRequest, opts ...grpc.CallOption) (CreateStream, error)
	List(ctx context.Context, in *api.ListRequest, opts ...grpc.CallOption) (*api.Envelope, error)
	Authenticate(ctx context.Context, in *api.AuthenticateRequest, opts ...grpc.CallOption) (*api.Envelope, error)
}

// CreateStream yields the replies to a create request.
type CreateStream interface {
	Recv() (*api.Envelope, error)
}

type manageClient struct {
	cc grpc.ClientConnInterface
}

func NewManageClient(cc grpc.ClientConnInterface) ManageClient {
	return &manageClient{cc: cc}
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func (c *manageClient) Create(ctx context.Context, in *api.CreateRequest, opts ...grpc.CallOption) (CreateStream, error) {
	stream, err := c.cc.NewStream(ctx, &ManageServiceDesc.Streams[0], CreateMethod, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	// io.EOF means the server already ended the call; Recv reports why
	if err := stream.SendMsg(in); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &createStream{stream}, nil
}

type createStream struct {
	grpc.ClientStream
}

func (s *createStream) Recv() (*api.Envelope, error) {
	m := new(api.Envelope)
	if err := s.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *manageClient) List(ctx context.Context, in *api.ListRequest, opts ...grpc.CallOption) (*api.Envelope, error) {
	out := new(api.Envelope)
	if err := c.cc.Invoke(ctx, ListMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *manageClient) Authenticate(ctx context.Context, in *api.AuthenticateRequest, opts ...grpc.CallOption) (*api.Envelope, error) {
	out := new(api.Envelope)
	if err := c.cc.Invoke(ctx, AuthenticateMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}
