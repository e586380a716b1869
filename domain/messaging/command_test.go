package messaging

import (
	"dm-lab/errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSendMessageCommand_Normalize(t *testing.T) {
	conversationID := uuid.New()

	t.Run("trims text", func(t *testing.T) {
		req := require.New(t)
		cmd, err := SendMessageCommand{ConversationID: conversationID, SenderID: "1", Text: "  hello \n"}.Normalize()
		req.NoError(err)
		req.Equal("hello", cmd.Text)
	})

	t.Run("blank text without attachment is empty", func(t *testing.T) {
		_, err := SendMessageCommand{ConversationID: conversationID, SenderID: "1", Text: "   "}.Normalize()
		require.ErrorIs(t, err, errors.ErrEmptyMessage)
	})

	t.Run("blank text with attachment is fine", func(t *testing.T) {
		_, err := SendMessageCommand{ConversationID: conversationID, SenderID: "1", Upload: &Upload{}}.Normalize()
		require.NoError(t, err)
	})

	t.Run("text limit counts characters", func(t *testing.T) {
		req := require.New(t)
		_, err := SendMessageCommand{ConversationID: conversationID, SenderID: "1", Text: strings.Repeat("é", MaxTextLength)}.Normalize()
		req.NoError(err)
		_, err = SendMessageCommand{ConversationID: conversationID, SenderID: "1", Text: strings.Repeat("a", MaxTextLength+1)}.Normalize()
		req.ErrorIs(err, errors.ErrMessageTooLong)
	})

	t.Run("sender must be a usable id", func(t *testing.T) {
		_, err := SendMessageCommand{ConversationID: conversationID, SenderID: "a:b", Text: "hi"}.Normalize()
		require.ErrorIs(t, err, errors.ErrInvalidParticipant)
	})
}

func TestPair_IsOrderIndependent(t *testing.T) {
	req := require.New(t)
	a1, b1 := Pair("42", "7")
	a2, b2 := Pair("7", "42")
	req.Equal(a1, a2)
	req.Equal(b1, b2)
	req.Equal("42", a1)
}

func TestClampLimit(t *testing.T) {
	req := require.New(t)
	req.Equal(1, ClampLimit(0))
	req.Equal(1, ClampLimit(-5))
	req.Equal(30, ClampLimit(30))
	req.Equal(50, ClampLimit(500))
}
