package main

import (
	"fmt"
	"io"
	"room-relay/infrastructure/grpc/client"
	"strconv"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

type printer struct {
	out     io.Writer
	colours bool
}

func (p printer) paint(style color.Style, s string) string {
	if !p.colours {
		return s
	}
	return style.Render(s)
}

func (p printer) print(envelope client.Envelope) {
	switch envelope.Event {
	case "room_created", "room_joined":
		room := asMap(envelope.Payload)
		verb := "created"
		if envelope.Event == "room_joined" {
			verb = "joined"
		}
		p.line(color.New(color.FgGreen), "room %s %s (%s users)", asString(room["id"]), verb, asCount(room["userCount"]))
	case "room_deleted":
		p.line(color.New(color.FgRed), "room %s deleted", asString(envelope.Payload))
	case "new_message":
		message := asMap(envelope.Payload)
		p.line(color.New(color.FgCyan), "[%s] %s: %s",
			asString(message["roomId"]), asString(message["userId"]), asString(message["message"]))
	case "room_expiration":
		p.line(color.New(color.FgYellow), "room %s expires in %s min", envelope.RoomID, asCount(envelope.Payload))
	case "room_messages":
		history := asMap(envelope.Payload)
		table := p.table("Time", "User", "Message")
		for _, item := range asList(history["messages"]) {
			message := asMap(item)
			table.Append([]string{asString(message["timestamp"]), asString(message["userId"]), asString(message["message"])})
		}
		p.line(color.New(color.FgBlue), "history of %s", asString(history["roomId"]))
		table.Render()
	case "user_rooms":
		table := p.table("Room", "Users")
		for _, item := range asList(envelope.Payload) {
			room := asMap(item)
			table.Append([]string{asString(room["id"]), asCount(room["userCount"])})
		}
		table.Render()
	case "error":
		failure := asMap(envelope.Payload)
		p.line(color.New(color.FgRed, color.OpBold), "error (%s): %s", asString(failure["kind"]), asString(failure["message"]))
	default:
		p.line(color.New(color.FgGray), "%s: %v", envelope.Event, envelope.Payload)
	}
}

func (p printer) line(style color.Style, format string, args ...any) {
	_, _ = fmt.Fprintln(p.out, p.paint(style, fmt.Sprintf(format, args...)))
}

func (p printer) table(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(p.out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	return table
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asList(v any) []any {
	l, _ := v.([]any)
	return l
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asCount prints a JSON number without a fractional part.
func asCount(v any) string {
	f, ok := v.(float64)
	if !ok {
		return "?"
	}
	return strconv.FormatInt(int64(f), 10)
}
