package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ColonyServiceName is the fully qualified gRPC service name
const ColonyServiceName = "colonysim.v1.ColonyService"

// Messages travel as google.protobuf.Struct documents carrying the JSON form
// of the colony DTOs, so the service needs no generated code.

// ColonyServiceServer is the daemon side of the colony service
type ColonyServiceServer interface {
	GetColonySummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RefreshSnapshot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	StreamColonySummaries(req *structpb.Struct, stream ColonySummaryStream) error
	Health(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// ColonySummaryStream sends colony results as they complete
type ColonySummaryStream interface {
	Send(*structpb.Struct) error
	Context() context.Context
}

// RegisterColonyServiceServer registers srv with s
func RegisterColonyServiceServer(s grpc.ServiceRegistrar, srv ColonyServiceServer) {
	s.RegisterService(&colonyServiceDesc, srv)
}

var colonyServiceDesc = grpc.ServiceDesc{
	ServiceName: ColonyServiceName,
	HandlerType: (*ColonyServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetColonySummary",
			Handler: unaryHandler("GetColonySummary", func() interface{} { return new(structpb.Struct) },
				func(srv ColonyServiceServer, ctx context.Context, req interface{}) (interface{}, error) {
					return srv.GetColonySummary(ctx, req.(*structpb.Struct))
				}),
		},
		{
			MethodName: "RefreshSnapshot",
			Handler: unaryHandler("RefreshSnapshot", func() interface{} { return new(structpb.Struct) },
				func(srv ColonyServiceServer, ctx context.Context, req interface{}) (interface{}, error) {
					return srv.RefreshSnapshot(ctx, req.(*structpb.Struct))
				}),
		},
		{
			MethodName: "Health",
			Handler: unaryHandler("Health", func() interface{} { return new(emptypb.Empty) },
				func(srv ColonyServiceServer, ctx context.Context, req interface{}) (interface{}, error) {
					return srv.Health(ctx, req.(*emptypb.Empty))
				}),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamColonySummaries",
			Handler:       streamColonySummariesHandler,
			ServerStreams: true,
		},
	},
	Metadata: "colonysim/v1/colony_service.proto",
}

type unaryCall func(srv ColonyServiceServer, ctx context.Context, req interface{}) (interface{}, error)

func unaryHandler(method string, newRequest func() interface{}, call unaryCall) grpc.MethodHandler {
	fullMethod := "/" + ColonyServiceName + "/" + method
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := newRequest()
		if err := dec(in); err != nil {
			return nil, err
		}
		server := srv.(ColonyServiceServer)
		if interceptor == nil {
			return call(server, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(server, ctx, req)
		})
	}
}

func streamColonySummariesHandler(srv interface{}, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ColonyServiceServer).StreamColonySummaries(in, &colonySummaryServerStream{stream})
}

type colonySummaryServerStream struct {
	grpc.ServerStream
}

func (s *colonySummaryServerStream) Send(m *structpb.Struct) error {
	return s.ServerStream.SendMsg(m)
}
