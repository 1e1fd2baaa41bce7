package repositories

import (
	"fmt"

	"github.com/mama165/sdk-go/database"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// MessageMapper renders a stored message for the badger debug inspector.
func MessageMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	row.Type = "MESSAGE"

	var record structpb.Struct
	if err := proto.Unmarshal(val, &record); err != nil {
		row.Detail = "Error: unmarshal failed"
		return row
	}
	message, err := fromRecord(&record)
	if err != nil {
		row.Detail = fmt.Sprintf("Error: %v", err)
		return row
	}
	row.Detail = fmt.Sprintf("[%s] %s: %s", message.RoomID, message.SenderID, message.Body)
	return row
}
