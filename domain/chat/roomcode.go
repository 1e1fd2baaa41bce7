package chat

import (
	"crypto/rand"
	"math/big"
)

const (
	roomCodeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	roomCodeDigits  = "0123456789"
)

// NewRoomCode generates a short shareable id: two letters followed by two
// digits, each drawn uniformly. Uniqueness against live rooms is not
// checked here.
func NewRoomCode() (RoomID, error) {
	code := make([]byte, 0, 4)
	for _, alphabet := range []string{roomCodeLetters, roomCodeLetters, roomCodeDigits, roomCodeDigits} {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		code = append(code, alphabet[n.Int64()])
	}
	return RoomID(code), nil
}

// IsRoomCode reports whether id has the NewRoomCode shape.
func IsRoomCode(id RoomID) bool {
	if len(id) != 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		c := id[i]
		if i < 2 && (c < 'A' || c > 'Z') {
			return false
		}
		if i >= 2 && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
