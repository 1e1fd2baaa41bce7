package chat

import (
	"fmt"
	"room-relay/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the structural rules of a command before it reaches the
// registry. Message bodies are opaque and never inspected.
func Validate(cmd Command) error {
	if cmd == nil {
		return fmt.Errorf("%w: empty command", errors.ErrInvalidPayload)
	}
	if err := validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %s: %v", errors.ErrInvalidPayload, cmd.Name(), err)
	}
	return nil
}
