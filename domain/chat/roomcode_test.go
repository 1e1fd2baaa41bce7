package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRoomCode_Shape(t *testing.T) {
	req := require.New(t)
	for i := 0; i < 500; i++ {
		code, err := NewRoomCode()
		req.NoError(err)
		req.True(IsRoomCode(code), "unexpected code %q", code)
	}
}

func TestNewRoomCode_Spread(t *testing.T) {
	req := require.New(t)
	codes := make(map[RoomID]struct{})
	for i := 0; i < 200; i++ {
		code, err := NewRoomCode()
		req.NoError(err)
		codes[code] = struct{}{}
	}
	// 67600 possible codes, 200 draws should almost never collapse
	req.Greater(len(codes), 150)
}

func TestIsRoomCode(t *testing.T) {
	tests := []struct {
		id   RoomID
		want bool
	}{
		{"AB12", true},
		{"ZZ99", true},
		{"ab12", false},
		{"A112", false},
		{"AB1C", false},
		{"AB123", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			require.Equal(t, tt.want, IsRoomCode(tt.id))
		})
	}
}
