package errors

import (
	stderrors "errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrRoomAlreadyExists = fmt.Errorf("room already exists")
	ErrRoomNotFound      = fmt.Errorf("room not found")
	ErrNotMember         = fmt.Errorf("user is not a member of the room")
	ErrInvalidPayload    = fmt.Errorf("invalid payload")
	ErrUnknownEvent      = fmt.Errorf("unknown event")
	ErrSelfDirectRoom    = fmt.Errorf("cannot open a direct room with yourself")
	ErrRoomCodeExhausted = fmt.Errorf("no free room code found")
	ErrDeliveryDropped   = fmt.Errorf("delivery dropped")
)

// Kind is the stable, client-facing classification of an error.
type Kind string

const (
	KindAlreadyExists  Kind = "already_exists"
	KindNotFound       Kind = "not_found"
	KindNotMember      Kind = "not_member"
	KindInvalidRequest Kind = "invalid_request"
	KindUnavailable    Kind = "unavailable"
	KindInternal       Kind = "internal"
)

// KindOf classifies err by walking its wrap chain.
func KindOf(err error) Kind {
	switch {
	case stderrors.Is(err, ErrRoomAlreadyExists):
		return KindAlreadyExists
	case stderrors.Is(err, ErrRoomNotFound):
		return KindNotFound
	case stderrors.Is(err, ErrNotMember):
		return KindNotMember
	case stderrors.Is(err, ErrInvalidPayload),
		stderrors.Is(err, ErrUnknownEvent),
		stderrors.Is(err, ErrSelfDirectRoom):
		return KindInvalidRequest
	case stderrors.Is(err, ErrRoomCodeExhausted),
		stderrors.Is(err, ErrDeliveryDropped):
		return KindUnavailable
	default:
		return KindInternal
	}
}

// MapToGRPCError converts a domain error into a gRPC status error.
func MapToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	switch KindOf(err) {
	case KindAlreadyExists:
		return status.Error(codes.AlreadyExists, err.Error())
	case KindNotFound:
		return status.Error(codes.NotFound, err.Error())
	case KindNotMember:
		return status.Error(codes.PermissionDenied, err.Error())
	case KindInvalidRequest:
		return status.Error(codes.InvalidArgument, err.Error())
	case KindUnavailable:
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
