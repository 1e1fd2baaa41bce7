package wire

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	RelayServiceName     = "relay.v1.RelayService"
	RelayConnectFullName = "/relay.v1.RelayService/Connect"
)

// RelayServiceServer is implemented by the relay. Connect carries one
// client session: envelopes in both directions until either side stops.
type RelayServiceServer interface {
	Connect(grpc.BidiStreamingServer[structpb.Struct, structpb.Struct]) error
}

type RelayService_ConnectServer = grpc.BidiStreamingServer[structpb.Struct, structpb.Struct]

type RelayService_ConnectClient = grpc.BidiStreamingClient[structpb.Struct, structpb.Struct]

// RelayService_ServiceDesc describes the relay service without generated
// message types: every envelope is a google.protobuf.Struct.
var RelayService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: RelayServiceName,
	HandlerType: (*RelayServiceServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Connect",
			Handler:       connectHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "relay/v1/relay.proto",
}

func RegisterRelayServiceServer(s grpc.ServiceRegistrar, srv RelayServiceServer) {
	s.RegisterService(&RelayService_ServiceDesc, srv)
}

func connectHandler(srv any, stream grpc.ServerStream) error {
	return srv.(RelayServiceServer).Connect(&grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

// Connect opens a session stream on conn.
func Connect(ctx context.Context, conn grpc.ClientConnInterface, opts ...grpc.CallOption) (RelayService_ConnectClient, error) {
	stream, err := conn.NewStream(ctx, &RelayService_ServiceDesc.Streams[0], RelayConnectFullName, opts...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: stream}, nil
}
