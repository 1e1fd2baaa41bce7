package e2e

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"room-relay/infrastructure/grpc/client"
	"strings"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

type BaseGrpcSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseGrpcSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.RelayAddr == "" {
		s.T().Skip("RELAY_ADDR is not set")
	}
}

// GrpcConn initializes a gRPC connection with logging, colors, and JSON debugging
func (s *BaseGrpcSuite) GrpcConn(t *testing.T, name string) *grpc.ClientConn {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)

	marshaler := protojson.MarshalOptions{Multiline: true}

	conn, err := grpc.NewClient(s.Config.RelayAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStreamInterceptor(func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, streamer grpc.Streamer, opts ...grpc.CallOption) (grpc.ClientStream, error) {
			stream, err := streamer(ctx, desc, cc, method, opts...)
			if err != nil {
				return nil, err
			}
			t.Logf("GRPC %s opened by %s", method, name)
			return &loggedStream{ClientStream: stream, t: t, name: name, marshaler: marshaler, dump: s.Config.DebugJSON}, nil
		}),
	)
	s.Require().NoError(err, "Failed to connect to gRPC server at "+s.Config.RelayAddr)
	return conn
}

// Session opens a relay session for userID and registers it. The session
// ends with the test.
func (s *BaseGrpcSuite) Session(t *testing.T, userID string) *client.RelayClient {
	conn := s.GrpcConn(t, "session of "+userID)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	t.Cleanup(func() {
		cancel()
		_ = conn.Close()
	})

	relay, err := client.Open(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)), conn)
	s.Require().NoError(err)
	return relay
}

// Await reads events until one named name arrives.
func (s *BaseGrpcSuite) Await(relay *client.RelayClient, name string) client.Envelope {
	for {
		envelope, err := relay.Recv()
		s.Require().NoError(err, "stream ended while waiting for "+name)
		if envelope.Event == name {
			return envelope
		}
	}
}

type loggedStream struct {
	grpc.ClientStream
	t         *testing.T
	name      string
	marshaler protojson.MarshalOptions
	dump      bool
}

func (l *loggedStream) SendMsg(m any) error {
	err := l.ClientStream.SendMsg(m)
	l.log("SENT", m, err)
	return err
}

func (l *loggedStream) RecvMsg(m any) error {
	err := l.ClientStream.RecvMsg(m)
	l.log("RECEIVED", m, err)
	return err
}

func (l *loggedStream) log(direction string, m any, err error) {
	if !l.dump {
		return
	}
	logBuilder := strings.Builder{}
	fmt.Fprintf(&logBuilder, "%s %s", l.name, direction)
	if err != nil {
		fmt.Fprintln(&logBuilder, " ERROR:", err)
	} else if message, ok := m.(proto.Message); ok {
		fmt.Fprintln(&logBuilder)
		fmt.Fprintln(&logBuilder, l.marshaler.Format(message))
	}
	l.t.Log(logBuilder.String())
}
