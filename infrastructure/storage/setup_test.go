package storage

import (
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// setupTestDB opens a disk-backed badger in a temporary directory.
func setupTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := database.LoadBadger(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type testRepositories struct {
	conversations *ConversationRepository
	memberships   *MembershipRepository
	messages      *MessageRepository
	attachments   *AttachmentRepository
	profiles      *ProfileRepository
}

func setupRepositories(t *testing.T) (*badger.DB, testRepositories) {
	t.Helper()
	db := setupTestDB(t)
	log := testLogger()
	messages, err := NewMessageRepository(db, log)
	require.NoError(t, err)
	// Registered after the database cleanup, so it runs first.
	t.Cleanup(func() { _ = messages.Close() })
	return db, testRepositories{
		conversations: NewConversationRepository(db, log),
		memberships:   NewMembershipRepository(db, log),
		messages:      messages,
		attachments:   NewAttachmentRepository(db, log),
		profiles:      NewProfileRepository(db, log),
	}
}

func testLogger() *slog.Logger {
	return logs.GetLoggerFromLevel(slog.LevelDebug)
}
