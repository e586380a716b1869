package messaging

import (
	"dm-lab/errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

type participantRef struct {
	ID string `validate:"required,max=128,printascii,excludes=:"`
}

// ValidateParticipant checks that an id can be used as a participant identifier.
// Colons are reserved by the storage key layout.
func ValidateParticipant(id string) error {
	if err := validate.Struct(participantRef{ID: id}); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidParticipant, err)
	}
	return nil
}

// SendMessageCommand is a send intent from an already authenticated participant.
type SendMessageCommand struct {
	ConversationID uuid.UUID
	SenderID       string
	Text           string
	Upload         *Upload
}

type sendMessageRules struct {
	Text string `validate:"max=4000"`
}

// Normalize trims the text and enforces the text rules.
// A message needs non-blank text or an attachment.
func (c SendMessageCommand) Normalize() (SendMessageCommand, error) {
	if err := ValidateParticipant(c.SenderID); err != nil {
		return c, err
	}
	c.Text = strings.TrimSpace(c.Text)
	if err := validate.Struct(sendMessageRules{Text: c.Text}); err != nil {
		return c, errors.ErrMessageTooLong
	}
	if c.Text == "" && c.Upload == nil {
		return c, errors.ErrEmptyMessage
	}
	return c, nil
}
