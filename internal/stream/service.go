// Package stream serves playback frames over gRPC. Frames travel as
// google.protobuf.Struct values carrying the same JSON document as the
// viewer's /api/frame endpoint, so no generated code is needed.
package stream

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "scanview.v1.Playback"

const (
	getFrameMethod     = "/" + ServiceName + "/GetFrame"
	streamFramesMethod = "/" + ServiceName + "/StreamFrames"
)

// PlaybackServer is the server API for the Playback service.
type PlaybackServer interface {
	GetFrame(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	StreamFrames(*emptypb.Empty, grpc.ServerStream) error
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PlaybackServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetFrame", Handler: getFrameHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "StreamFrames", Handler: streamFramesHandler, ServerStreams: true},
	},
	Metadata: "scanview/v1/playback.proto",
}

// Register adds srv to a gRPC server.
func Register(reg grpc.ServiceRegistrar, srv PlaybackServer) {
	reg.RegisterService(&serviceDesc, srv)
}

func getFrameHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PlaybackServer).GetFrame(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getFrameMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PlaybackServer).GetFrame(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func streamFramesHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(PlaybackServer).StreamFrames(in, stream)
}
