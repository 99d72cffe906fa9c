package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// CodecName is the grpc content-subtype the codec registers under.
const CodecName = "freyr"

const ServiceName = "freyr.Engine"

func init() {
	encoding.RegisterCodec(codec{})
}

type codec struct{}

func (codec) Name() string { return CodecName }

func (codec) Marshal(v any) ([]byte, error) { return marshalAny(v) }

func (codec) Unmarshal(data []byte, v any) error { return unmarshalAny(data, v) }

// EngineServer is the server API for the Engine service.
type EngineServer interface {
	SubmitOrder(context.Context, *SubmitOrderRequest) (*SubmitOrderResponse, error)
	CancelOrder(context.Context, *CancelOrderRequest) (*CancelOrderResponse, error)
	CreateBook(context.Context, *CreateBookRequest) (*CreateBookResponse, error)
	GetBook(context.Context, *BookRequest) (*BookResponse, error)
}

func RegisterEngineServer(s grpc.ServiceRegistrar, srv EngineServer) {
	s.RegisterService(&EngineServiceDesc, srv)
}

func unaryHandler[Req any, Resp any](method func(EngineServer, context.Context, *Req) (*Resp, error),
	fullMethod string) grpc.MethodDesc {
	_, name := splitMethod(fullMethod)
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error,
			interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return method(srv.(EngineServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return method(srv.(EngineServer), ctx, req.(*Req))
			})
		},
	}
}

func splitMethod(full string) (service, name string) {
	for i := len(full) - 1; i > 0; i-- {
		if full[i] == '/' {
			return full[1:i], full[i+1:]
		}
	}
	return "", full
}

var EngineServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EngineServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler(EngineServer.SubmitOrder, "/freyr.Engine/SubmitOrder"),
		unaryHandler(EngineServer.CancelOrder, "/freyr.Engine/CancelOrder"),
		unaryHandler(EngineServer.CreateBook, "/freyr.Engine/CreateBook"),
		unaryHandler(EngineServer.GetBook, "/freyr.Engine/GetBook"),
	},
	Metadata: "freyr/engine.proto",
}

// EngineClient is the client API for the Engine service.
type EngineClient interface {
	SubmitOrder(ctx context.Context, in *SubmitOrderRequest, opts ...grpc.CallOption) (*SubmitOrderResponse, error)
	CancelOrder(ctx context.Context, in *CancelOrderRequest, opts ...grpc.CallOption) (*CancelOrderResponse, error)
	CreateBook(ctx context.Context, in *CreateBookRequest, opts ...grpc.CallOption) (*CreateBookResponse, error)
	GetBook(ctx context.Context, in *BookRequest, opts ...grpc.CallOption) (*BookResponse, error)
}

type engineClient struct {
	cc grpc.ClientConnInterface
}

func NewEngineClient(cc grpc.ClientConnInterface) EngineClient {
	return &engineClient{cc: cc}
}

func (c *engineClient) invoke(ctx context.Context, method string, in, out any,
	opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *engineClient) SubmitOrder(ctx context.Context, in *SubmitOrderRequest,
	opts ...grpc.CallOption) (*SubmitOrderResponse, error) {
	out := new(SubmitOrderResponse)
	if err := c.invoke(ctx, "/freyr.Engine/SubmitOrder", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *engineClient) CancelOrder(ctx context.Context, in *CancelOrderRequest,
	opts ...grpc.CallOption) (*CancelOrderResponse, error) {
	out := new(CancelOrderResponse)
	if err := c.invoke(ctx, "/freyr.Engine/CancelOrder", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *engineClient) CreateBook(ctx context.Context, in *CreateBookRequest,
	opts ...grpc.CallOption) (*CreateBookResponse, error) {
	out := new(CreateBookResponse)
	if err := c.invoke(ctx, "/freyr.Engine/CreateBook", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *engineClient) GetBook(ctx context.Context, in *BookRequest,
	opts ...grpc.CallOption) (*BookResponse, error) {
	out := new(BookResponse)
	if err := c.invoke(ctx, "/freyr.Engine/GetBook", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
