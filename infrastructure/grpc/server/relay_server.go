package server

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"room-relay/infrastructure/grpc/wire"
	"room-relay/services"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type RelayServer struct {
	log                  *slog.Logger
	relayService         services.IRelayService
	connectionBufferSize int
}

var _ wire.RelayServiceServer = (*RelayServer)(nil)

func NewRelayServer(log *slog.Logger, relayService services.IRelayService, connectionBufferSize int) *RelayServer {
	return &RelayServer{log: log, relayService: relayService, connectionBufferSize: connectionBufferSize}
}

// Connect serves one client session for as long as the stream lives.
// Inbound envelopes are read on a separate goroutine and handed to the
// relay service; this goroutine writes outbound events. The session is
// forgotten on return, its room memberships are not.
func (s *RelayServer) Connect(stream wire.RelayService_ConnectServer) error {
	ctx := stream.Context()
	sessionID := uuid.NewString()
	sink := NewSessionSink(s.connectionBufferSize)
	s.relayService.Connect(sessionID, sink)
	defer s.relayService.Disconnect(sessionID)
	s.log.Info("Client connected", "session_id", sessionID)

	readErr := make(chan error, 1)
	go func() { readErr <- s.read(ctx, sessionID, stream) }()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Client disconnected", "session_id", sessionID)
			return nil
		case err := <-readErr:
			if stderrors.Is(err, io.EOF) || status.Code(err) == codes.Canceled {
				s.log.Info("Client closed the stream", "session_id", sessionID)
				return nil
			}
			s.log.Error("Failed to read from stream", "session_id", sessionID, "error", err)
			return err
		case evt := <-sink.Events():
			envelope, err := wire.EncodeEvent(evt)
			if err != nil {
				s.log.Error("Failed to encode event", "session_id", sessionID, "event", evt.Type, "error", err)
				continue
			}
			if err = stream.Send(envelope); err != nil {
				s.log.Error("Failed to push event to stream", "session_id", sessionID, "error", err)
				return err
			}
		}
	}
}

func (s *RelayServer) read(ctx context.Context, sessionID string, stream wire.RelayService_ConnectServer) error {
	for {
		envelope, err := stream.Recv()
		if err != nil {
			return err
		}
		cmd, err := wire.DecodeCommand(envelope)
		if err != nil {
			s.relayService.Reject(ctx, sessionID, err)
			continue
		}
		// Failures already went back to the session as error events.
		_ = s.relayService.Handle(ctx, sessionID, cmd)
	}
}
