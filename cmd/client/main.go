package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"room-relay/domain/chat"
	"room-relay/infrastructure/grpc/client"
	"syscall"

	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	config, err := LoadConfig()
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := grpc.NewClient(config.RelayAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return exitRuntime, fmt.Errorf("unable to reach relay at %s: %w", config.RelayAddr, err)
	}
	defer func() { _ = conn.Close() }()

	relay, err := client.Open(ctx, logger, conn)
	if err != nil {
		return exitRuntime, fmt.Errorf("unable to open session: %w", err)
	}
	if err := relay.Send(chat.RegisterCommand{UserID: config.UserID}); err != nil {
		return exitRuntime, fmt.Errorf("register failed: %w", err)
	}

	out := printer{out: os.Stdout, colours: config.Colours}
	received := make(chan error, 1)
	go func() {
		for {
			envelope, err := relay.Recv()
			if err != nil {
				received <- err
				return
			}
			out.print(envelope)
		}
	}()

	fmt.Println(usage)
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			_ = relay.Close()
			return exitOK, nil
		case err := <-received:
			if errors.Is(err, io.EOF) || status.Code(err) == codes.Canceled {
				return exitOK, nil
			}
			return exitRuntime, fmt.Errorf("session ended: %w", err)
		case line, ok := <-lines:
			if !ok {
				_ = relay.Close()
				return exitOK, nil
			}
			if line == "" {
				continue
			}
			cmd, err := parseLine(config.UserID, line)
			if errors.Is(err, errQuit) {
				_ = relay.Close()
				return exitOK, nil
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			if err := relay.Send(cmd); err != nil {
				return exitRuntime, fmt.Errorf("send failed: %w", err)
			}
		}
	}
}
