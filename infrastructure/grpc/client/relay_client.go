package client

import (
	"context"
	"log/slog"
	"room-relay/domain/chat"
	"room-relay/infrastructure/grpc/wire"

	"google.golang.org/grpc"
)

// Envelope is an outbound relay event as seen by a client.
type Envelope struct {
	Event   string
	RoomID  string
	Payload any
}

type RelayClient struct {
	log    *slog.Logger
	stream wire.RelayService_ConnectClient
}

// Open starts a session on conn. Cancelling ctx ends it.
func Open(ctx context.Context, log *slog.Logger, conn grpc.ClientConnInterface) (*RelayClient, error) {
	stream, err := wire.Connect(ctx, conn)
	if err != nil {
		return nil, err
	}
	return &RelayClient{log: log, stream: stream}, nil
}

func (c *RelayClient) Send(cmd chat.Command) error {
	envelope, err := wire.EncodeCommand(cmd)
	if err != nil {
		return err
	}
	c.log.Debug("Sending command", "event", cmd.Name())
	return c.stream.Send(envelope)
}

// Recv blocks until the next event arrives or the stream ends.
func (c *RelayClient) Recv() (Envelope, error) {
	envelope, err := c.stream.Recv()
	if err != nil {
		return Envelope{}, err
	}
	fields := envelope.AsMap()
	name, _ := fields["event"].(string)
	roomID, _ := fields["roomId"].(string)
	return Envelope{Event: name, RoomID: roomID, Payload: fields["payload"]}, nil
}

// Close tells the relay no more commands will follow.
func (c *RelayClient) Close() error {
	return c.stream.CloseSend()
}
