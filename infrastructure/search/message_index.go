//go:generate go run go.uber.org/mock/mockgen -source=message_index.go -destination=../../mocks/mock_message_index.go -package=mocks
package search

import (
	"context"
	"dm-lab/domain/messaging"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

const (
	fieldConversation = "conversation_id"
	fieldText         = "text"
	fieldSender       = "sender_id"
)

// IMessageIndex is a full-text index over message text and attachment names.
// It is fed asynchronously and may lag behind the message store.
type IMessageIndex interface {
	Index(message messaging.Message) error
	Search(ctx context.Context, conversationID uuid.UUID, query string, limit int) ([]uint64, error)
}

type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) *MessageIndex {
	return &MessageIndex{writer: writer, log: log}
}

// Index upserts a message. Documents are keyed by conversation and message id
// so that indexing the same message twice is harmless.
func (i *MessageIndex) Index(message messaging.Message) error {
	names := make([]string, 0, len(message.Attachments))
	for _, a := range message.Attachments {
		names = append(names, a.Name)
	}
	content := strings.TrimSpace(message.Text + " " + strings.Join(names, " "))

	doc := bluge.NewDocument(documentID(message.ConversationID, message.ID)).
		AddField(bluge.NewKeywordField(fieldConversation, message.ConversationID.String())).
		AddField(bluge.NewKeywordField(fieldSender, message.SenderID)).
		AddField(bluge.NewTextField(fieldText, content))

	if err := i.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("index message %d: %w", message.ID, err)
	}
	i.log.Debug("Message indexed", "conversation_id", message.ConversationID, "message_id", message.ID)
	return nil
}

// Search returns matching message ids of one conversation, best match first.
func (i *MessageIndex) Search(ctx context.Context, conversationID uuid.UUID, query string, limit int) ([]uint64, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("open index reader: %w", err)
	}
	defer func() { _ = reader.Close() }()

	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(conversationID.String()).SetField(fieldConversation)).
		AddMust(bluge.NewMatchQuery(query).SetField(fieldText))

	matches, err := reader.Search(ctx, bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, fmt.Errorf("search conversation %s: %w", conversationID, err)
	}

	var ids []uint64
	match, err := matches.Next()
	for err == nil && match != nil {
		var id uint64
		var parseErr error
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field != "_id" {
				return true
			}
			id, parseErr = parseDocumentID(string(value))
			return false
		})
		if err != nil {
			break
		}
		if parseErr != nil {
			i.log.Warn("Skipping malformed index document", "error", parseErr)
		} else {
			ids = append(ids, id)
		}
		match, err = matches.Next()
	}
	if err != nil {
		return nil, fmt.Errorf("read search results: %w", err)
	}
	return ids, nil
}

func documentID(conversationID uuid.UUID, messageID uint64) string {
	return fmt.Sprintf("%s:%020d", conversationID, messageID)
}

func parseDocumentID(id string) (uint64, error) {
	idx := strings.LastIndexByte(id, ':')
	if idx < 0 {
		return 0, fmt.Errorf("document id %q has no message part", id)
	}
	return strconv.ParseUint(id[idx+1:], 10, 64)
}
