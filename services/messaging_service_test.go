package services

import (
	"context"
	"dm-lab/domain/event"
	"dm-lab/domain/messaging"
	"dm-lab/errors"
	"dm-lab/mocks"
	"dm-lab/observability"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type serviceFixture struct {
	conversations *mocks.MockIConversationRepository
	memberships   *mocks.MockIMembershipRepository
	messages      *mocks.MockIMessageRepository
	attachments   *mocks.MockIAttachmentRepository
	profiles      *mocks.MockIProfileRepository
	index         *mocks.MockIMessageIndex
	registry      *mocks.MockIRegistry
	notifier      *mocks.MockINotifier
	metrics       *observability.Metrics
	svc           *MessagingService
}

func newServiceFixture(t *testing.T) serviceFixture {
	ctrl := gomock.NewController(t)
	f := serviceFixture{
		conversations: mocks.NewMockIConversationRepository(ctrl),
		memberships:   mocks.NewMockIMembershipRepository(ctrl),
		messages:      mocks.NewMockIMessageRepository(ctrl),
		attachments:   mocks.NewMockIAttachmentRepository(ctrl),
		profiles:      mocks.NewMockIProfileRepository(ctrl),
		index:         mocks.NewMockIMessageIndex(ctrl),
		registry:      mocks.NewMockIRegistry(ctrl),
		notifier:      mocks.NewMockINotifier(ctrl),
		metrics:       observability.NewMetrics(prometheus.NewRegistry()),
	}
	f.svc = NewMessagingService(
		logs.GetLoggerFromLevel(slog.LevelDebug),
		Stores{
			Conversations: f.conversations,
			Memberships:   f.memberships,
			Messages:      f.messages,
			Attachments:   f.attachments,
			Profiles:      f.profiles,
		},
		f.index,
		f.registry,
		f.notifier,
		messaging.DefaultAttachmentPolicy(),
		f.metrics,
	)
	return f
}

func pdfPayload(size int) []byte {
	payload := make([]byte, size)
	copy(payload, "%PDF-1.7\n")
	return payload
}

func TestMessagingService_GetOrCreateDirect(t *testing.T) {
	t.Run("counts a conversation only when it is created", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)
		conversationID := uuid.New()

		f.conversations.EXPECT().GetOrCreateDirect("alice", "bob").
			Return(messaging.Conversation{ID: conversationID}, true, nil)
		f.conversations.EXPECT().GetOrCreateDirect("bob", "alice").
			Return(messaging.Conversation{ID: conversationID}, false, nil)

		first, err := f.svc.GetOrCreateDirect("alice", "bob")
		req.NoError(err)
		second, err := f.svc.GetOrCreateDirect("bob", "alice")
		req.NoError(err)

		req.Equal(conversationID, first)
		req.Equal(first, second)
		req.Equal(1.0, testutil.ToFloat64(f.metrics.ConversationsCreated))
	})

	t.Run("rejects unusable ids before touching storage", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)
		f.conversations.EXPECT().GetOrCreateDirect(gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.GetOrCreateDirect("alice", "bob:evil")

		req.ErrorIs(err, errors.ErrInvalidParticipant)
		req.ErrorIs(err, errors.ErrInvalidRequest)
	})

	t.Run("propagates self conversation", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)
		f.conversations.EXPECT().GetOrCreateDirect("alice", "alice").
			Return(messaging.Conversation{}, false, errors.ErrSelfConversation)

		_, err := f.svc.GetOrCreateDirect("alice", "alice")

		req.ErrorIs(err, errors.ErrSelfConversation)
	})
}

func TestMessagingService_ListConversations(t *testing.T) {
	req := require.New(t)
	f := newServiceFixture(t)
	withProfile, withoutProfile := uuid.New(), uuid.New()
	now := time.Now().UTC()

	// Given one counterpart known to the directory and one unknown
	f.memberships.EXPECT().ListVisible("alice").Return([]messaging.InboxEntry{
		{ConversationID: withProfile, CounterpartID: "bob", LastActivity: now, Preview: "hi"},
		{ConversationID: withoutProfile, CounterpartID: "carol", LastActivity: now.Add(-time.Minute)},
	}, nil)
	f.profiles.EXPECT().GetProfiles([]string{"bob", "carol"}).Return(map[string]messaging.Profile{
		"bob": {ParticipantID: "bob", DisplayName: "Bob Marley", Role: "artist", AvatarURL: "https://x.io/bob.png"},
	}, nil)

	// When
	summaries, err := f.svc.ListConversations("alice")

	// Then order is kept and the unknown counterpart falls back to its id
	req.NoError(err)
	req.Len(summaries, 2)
	req.Equal(withProfile, summaries[0].ConversationID)
	req.Equal("Bob Marley", summaries[0].Counterpart.DisplayName)
	req.Equal("artist", summaries[0].Counterpart.Role)
	req.Equal("hi", summaries[0].Preview)
	req.Equal(withoutProfile, summaries[1].ConversationID)
	req.Equal("carol", summaries[1].Counterpart.DisplayName)
	req.Equal("carol", summaries[1].Counterpart.ParticipantID)
	req.Empty(summaries[1].Counterpart.AvatarURL)
}

func TestMessagingService_ListMessages(t *testing.T) {
	t.Run("members read the latest window", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)
		conversationID := uuid.New()
		expected := []messaging.Message{{ID: 2}, {ID: 1}}

		gomock.InOrder(
			f.memberships.EXPECT().EnsureMember(conversationID, "alice").Return(messaging.Membership{}, nil),
			f.messages.EXPECT().Latest(conversationID, 30).Return(expected, nil),
		)

		got, err := f.svc.ListMessages("alice", conversationID, 30)

		req.NoError(err)
		req.Equal(expected, got)
	})

	t.Run("outsiders read nothing", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)
		conversationID := uuid.New()

		f.memberships.EXPECT().EnsureMember(conversationID, "mallory").Return(messaging.Membership{}, errors.ErrNotMember)
		f.messages.EXPECT().Latest(gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.ListMessages("mallory", conversationID, 30)

		req.ErrorIs(err, errors.ErrForbidden)
	})
}

func TestMessagingService_SendMessage(t *testing.T) {
	t.Run("stores the attachment and publishes the message", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)
		conversationID := uuid.New()
		payload := pdfPayload(1024)
		stored := messaging.Message{ID: 7, ConversationID: conversationID, SenderID: "alice", Text: "report"}

		f.memberships.EXPECT().EnsureMember(conversationID, "alice").Return(messaging.Membership{}, nil)
		f.messages.EXPECT().Append(conversationID, "alice", "report", gomock.Any()).
			DoAndReturn(func(_ uuid.UUID, _, _ string, pending *messaging.PendingAttachment) (messaging.Message, error) {
				req.NotNil(pending)
				req.Equal("q3.pdf", pending.Name)
				req.Equal("application/pdf", pending.MediaType)
				req.Equal(payload, pending.Payload)
				return stored, nil
			})
		f.notifier.EXPECT().Publish(event.MessageCreated{Message: stored})

		got, err := f.svc.SendMessage(messaging.SendMessageCommand{
			ConversationID: conversationID,
			SenderID:       "alice",
			Text:           "  report  ",
			Upload:         &messaging.Upload{Payload: payload, DeclaredMediaType: "application/octet-stream", OriginalName: "q3.pdf"},
		})

		req.NoError(err)
		req.Equal(stored, got)
		req.Equal(1.0, testutil.ToFloat64(f.metrics.MessagesAppended))
		req.Equal(1.0, testutil.ToFloat64(f.metrics.AttachmentsStored))
	})

	t.Run("membership is checked before the content", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)
		conversationID := uuid.New()

		f.memberships.EXPECT().EnsureMember(conversationID, "mallory").Return(messaging.Membership{}, errors.ErrNotMember)
		f.messages.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		f.notifier.EXPECT().Publish(gomock.Any()).Times(0)

		_, err := f.svc.SendMessage(messaging.SendMessageCommand{ConversationID: conversationID, SenderID: "mallory", Text: ""})

		req.ErrorIs(err, errors.ErrNotMember)
	})

	t.Run("storage failure publishes nothing", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)
		conversationID := uuid.New()

		f.memberships.EXPECT().EnsureMember(conversationID, "alice").Return(messaging.Membership{}, nil)
		f.messages.EXPECT().Append(conversationID, "alice", "hello", nil).
			Return(messaging.Message{}, errors.ErrStorageConflict)
		f.notifier.EXPECT().Publish(gomock.Any()).Times(0)

		_, err := f.svc.SendMessage(messaging.SendMessageCommand{ConversationID: conversationID, SenderID: "alice", Text: "hello"})

		req.ErrorIs(err, errors.ErrStorageConflict)
		req.Equal(0.0, testutil.ToFloat64(f.metrics.MessagesAppended))
	})

	rejections := []struct {
		name   string
		cmd    func(uuid.UUID) messaging.SendMessageCommand
		want   error
		reason string
	}{
		{
			name: "blank text without file",
			cmd: func(id uuid.UUID) messaging.SendMessageCommand {
				return messaging.SendMessageCommand{ConversationID: id, SenderID: "alice", Text: "   "}
			},
			want: errors.ErrEmptyMessage,
		},
		{
			name: "not a pdf",
			cmd: func(id uuid.UUID) messaging.SendMessageCommand {
				return messaging.SendMessageCommand{ConversationID: id, SenderID: "alice", Upload: &messaging.Upload{
					Payload: []byte("GIF89a"), DeclaredMediaType: "image/gif", OriginalName: "cat.gif",
				}}
			},
			want:   errors.ErrAttachmentNotPDF,
			reason: "not_pdf",
		},
		{
			name: "one byte over the limit",
			cmd: func(id uuid.UUID) messaging.SendMessageCommand {
				return messaging.SendMessageCommand{ConversationID: id, SenderID: "alice", Upload: &messaging.Upload{
					Payload: pdfPayload(int(messaging.MaxAttachmentBytes) + 1), DeclaredMediaType: "application/pdf", OriginalName: "big.pdf",
				}}
			},
			want:   errors.ErrAttachmentTooLarge,
			reason: "too_large",
		},
		{
			name: "empty file",
			cmd: func(id uuid.UUID) messaging.SendMessageCommand {
				return messaging.SendMessageCommand{ConversationID: id, SenderID: "alice", Text: "see file", Upload: &messaging.Upload{
					DeclaredMediaType: "application/pdf", OriginalName: "empty.pdf",
				}}
			},
			want:   errors.ErrAttachmentEmpty,
			reason: "empty",
		},
	}
	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			f := newServiceFixture(t)
			conversationID := uuid.New()

			f.memberships.EXPECT().EnsureMember(conversationID, "alice").Return(messaging.Membership{}, nil)
			f.messages.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			f.notifier.EXPECT().Publish(gomock.Any()).Times(0)

			_, err := f.svc.SendMessage(tt.cmd(conversationID))

			req.ErrorIs(err, tt.want)
			req.ErrorIs(err, errors.ErrInvalidRequest)
			if tt.reason != "" {
				req.Equal(1.0, testutil.ToFloat64(f.metrics.AttachmentsRejected.WithLabelValues(tt.reason)))
			}
		})
	}
}

func TestMessagingService_HideConversation(t *testing.T) {
	req := require.New(t)
	f := newServiceFixture(t)
	conversationID := uuid.New()

	f.memberships.EXPECT().Hide(conversationID, "alice").Return(nil)
	f.memberships.EXPECT().Hide(conversationID, "mallory").Return(errors.ErrNotMember)

	req.NoError(f.svc.HideConversation("alice", conversationID))
	req.ErrorIs(f.svc.HideConversation("mallory", conversationID), errors.ErrForbidden)
}

func TestMessagingService_DownloadAttachment(t *testing.T) {
	conversationID := uuid.New()
	meta := messaging.AttachmentMeta{ID: 3, MessageID: 2, ConversationID: conversationID, Name: "a.pdf", MediaType: "application/pdf", SizeBytes: 4}

	t.Run("unknown attachment is not found for everyone", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)

		f.attachments.EXPECT().GetAttachment(uint64(99)).Return(messaging.AttachmentMeta{}, errors.ErrAttachmentNotFound)
		f.memberships.EXPECT().EnsureMember(gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.DownloadAttachment("mallory", 99)

		req.ErrorIs(err, errors.ErrNotFound)
	})

	t.Run("outsiders never read the payload", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)

		f.attachments.EXPECT().GetAttachment(uint64(3)).Return(meta, nil)
		f.memberships.EXPECT().EnsureMember(conversationID, "mallory").Return(messaging.Membership{}, errors.ErrNotMember)
		f.attachments.EXPECT().GetPayload(gomock.Any()).Times(0)

		_, err := f.svc.DownloadAttachment("mallory", 3)

		req.ErrorIs(err, errors.ErrForbidden)
	})

	t.Run("members get the stored bytes", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)

		f.attachments.EXPECT().GetAttachment(uint64(3)).Return(meta, nil)
		f.memberships.EXPECT().EnsureMember(conversationID, "bob").Return(messaging.Membership{}, nil)
		f.attachments.EXPECT().GetPayload(uint64(3)).Return([]byte("%PDF"), nil)

		got, err := f.svc.DownloadAttachment("bob", 3)

		req.NoError(err)
		req.Equal(meta, got.AttachmentMeta)
		req.Equal([]byte("%PDF"), got.Payload)
	})
}

func TestMessagingService_SearchMessages(t *testing.T) {
	ctx := context.Background()
	conversationID := uuid.New()

	t.Run("blank query from a member is rejected before the index", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)
		f.memberships.EXPECT().EnsureMember(conversationID, "alice").Return(messaging.Membership{}, nil)
		f.index.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.SearchMessages(ctx, "alice", conversationID, "  ", 10)

		req.ErrorIs(err, errors.ErrEmptyQuery)
	})

	t.Run("outsider is forbidden even with a blank query", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)
		f.memberships.EXPECT().EnsureMember(conversationID, "mallory").Return(messaging.Membership{}, errors.ErrNotMember)
		f.index.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.SearchMessages(ctx, "mallory", conversationID, "  ", 10)

		req.ErrorIs(err, errors.ErrForbidden)
	})

	t.Run("hits are loaded from the store", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)
		expected := []messaging.Message{{ID: 5}, {ID: 2}}

		f.memberships.EXPECT().EnsureMember(conversationID, "alice").Return(messaging.Membership{}, nil)
		f.index.EXPECT().Search(ctx, conversationID, "invoice", messaging.MaxLimit).Return([]uint64{5, 2}, nil)
		f.messages.EXPECT().GetMessages(conversationID, []uint64{5, 2}).Return(expected, nil)

		got, err := f.svc.SearchMessages(ctx, "alice", conversationID, " invoice ", 500)

		req.NoError(err)
		req.Equal(expected, got)
	})

	t.Run("no hits", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)

		f.memberships.EXPECT().EnsureMember(conversationID, "alice").Return(messaging.Membership{}, nil)
		f.index.EXPECT().Search(ctx, conversationID, "nothing", 10).Return(nil, nil)
		f.messages.EXPECT().GetMessages(gomock.Any(), gomock.Any()).Times(0)

		got, err := f.svc.SearchMessages(ctx, "alice", conversationID, "nothing", 10)

		req.NoError(err)
		req.Empty(got)
	})
}

func TestMessagingService_Subscribe(t *testing.T) {
	conversationID := uuid.New()

	t.Run("outsiders cannot listen", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)
		sink := mocks.NewMockEventSink(gomock.NewController(t))

		f.memberships.EXPECT().EnsureMember(conversationID, "mallory").Return(messaging.Membership{}, errors.ErrNotMember)
		f.registry.EXPECT().Subscribe(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		unsubscribe, err := f.svc.Subscribe("mallory", conversationID, sink)

		req.ErrorIs(err, errors.ErrForbidden)
		req.Nil(unsubscribe)
	})

	t.Run("unsubscribe releases the registration once", func(t *testing.T) {
		req := require.New(t)
		f := newServiceFixture(t)
		sink := mocks.NewMockEventSink(gomock.NewController(t))
		var subscriptionID string

		f.memberships.EXPECT().EnsureMember(conversationID, "alice").Return(messaging.Membership{}, nil)
		f.registry.EXPECT().Subscribe(gomock.Any(), conversationID, sink).
			Do(func(id string, _ uuid.UUID, _ any) { subscriptionID = id })
		f.registry.EXPECT().Unsubscribe(gomock.Any(), conversationID).
			Do(func(id string, _ uuid.UUID) { req.Equal(subscriptionID, id) }).
			Times(1)

		unsubscribe, err := f.svc.Subscribe("alice", conversationID, sink)
		req.NoError(err)
		req.NotEmpty(subscriptionID)
		req.Equal(1.0, testutil.ToFloat64(f.metrics.LiveSubscriptions))

		unsubscribe()
		unsubscribe()
		req.Equal(0.0, testutil.ToFloat64(f.metrics.LiveSubscriptions))
	})
}

func TestMessagingService_RegisterProfile(t *testing.T) {
	req := require.New(t)
	f := newServiceFixture(t)
	profile := messaging.Profile{ParticipantID: "alice", DisplayName: "Alice"}

	f.profiles.EXPECT().Upsert(profile).Return(nil)

	req.NoError(f.svc.RegisterProfile(profile))
	req.ErrorIs(f.svc.RegisterProfile(messaging.Profile{}), errors.ErrInvalidParticipant)
}
