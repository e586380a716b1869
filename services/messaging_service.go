//go:generate go run go.uber.org/mock/mockgen -source=messaging_service.go -destination=../mocks/mock_messaging_service.go -package=mocks
package services

import (
	"context"
	"dm-lab/contract"
	"dm-lab/domain/event"
	"dm-lab/domain/messaging"
	"dm-lab/errors"
	"dm-lab/infrastructure/search"
	"dm-lab/infrastructure/storage"
	"dm-lab/observability"
	stderrors "errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// IMessagingService is the boundary of the messaging core. Every caller id
// is an already authenticated participant.
type IMessagingService interface {
	GetOrCreateDirect(me, other string) (uuid.UUID, error)
	ListConversations(me string) ([]messaging.ConversationSummary, error)
	ListMessages(me string, conversationID uuid.UUID, limit int) ([]messaging.Message, error)
	SendMessage(cmd messaging.SendMessageCommand) (messaging.Message, error)
	HideConversation(me string, conversationID uuid.UUID) error
	DownloadAttachment(me string, attachmentID uint64) (messaging.Attachment, error)
	SearchMessages(ctx context.Context, me string, conversationID uuid.UUID, query string, limit int) ([]messaging.Message, error)
	Subscribe(me string, conversationID uuid.UUID, sink contract.EventSink) (func(), error)
	RegisterProfile(profile messaging.Profile) error
}

// Stores bundles the repositories the service works on.
type Stores struct {
	Conversations storage.IConversationRepository
	Memberships   storage.IMembershipRepository
	Messages      storage.IMessageRepository
	Attachments   storage.IAttachmentRepository
	Profiles      storage.IProfileRepository
}

type MessagingService struct {
	log      *slog.Logger
	stores   Stores
	index    search.IMessageIndex
	registry contract.IRegistry
	notifier contract.INotifier
	policy   messaging.AttachmentPolicy
	metrics  *observability.Metrics
}

func NewMessagingService(
	log *slog.Logger,
	stores Stores,
	index search.IMessageIndex,
	registry contract.IRegistry,
	notifier contract.INotifier,
	policy messaging.AttachmentPolicy,
	metrics *observability.Metrics,
) *MessagingService {
	return &MessagingService{
		log:      log,
		stores:   stores,
		index:    index,
		registry: registry,
		notifier: notifier,
		policy:   policy,
		metrics:  metrics,
	}
}

func (s *MessagingService) GetOrCreateDirect(me, other string) (uuid.UUID, error) {
	if err := validateParticipants(me, other); err != nil {
		return uuid.Nil, err
	}
	conversation, created, err := s.stores.Conversations.GetOrCreateDirect(me, other)
	if err != nil {
		return uuid.Nil, err
	}
	if created {
		s.metrics.ConversationCreated()
	}
	return conversation.ID, nil
}

// ListConversations returns the caller's inbox. Counterparts missing from
// the directory are shown by id.
func (s *MessagingService) ListConversations(me string) ([]messaging.ConversationSummary, error) {
	if err := messaging.ValidateParticipant(me); err != nil {
		return nil, err
	}
	entries, err := s.stores.Memberships.ListVisible(me)
	if err != nil {
		return nil, err
	}
	counterparts := lo.Uniq(lo.Map(entries, func(e messaging.InboxEntry, _ int) string { return e.CounterpartID }))
	profiles, err := s.stores.Profiles.GetProfiles(counterparts)
	if err != nil {
		return nil, err
	}
	return lo.Map(entries, func(e messaging.InboxEntry, _ int) messaging.ConversationSummary {
		profile, ok := profiles[e.CounterpartID]
		if !ok || profile.DisplayName == "" {
			profile.ParticipantID = e.CounterpartID
			profile.DisplayName = e.CounterpartID
		}
		return messaging.ConversationSummary{InboxEntry: e, Counterpart: profile}
	}), nil
}

func (s *MessagingService) ListMessages(me string, conversationID uuid.UUID, limit int) ([]messaging.Message, error) {
	if err := s.ensureMember(me, conversationID); err != nil {
		return nil, err
	}
	return s.stores.Messages.Latest(conversationID, limit)
}

// SendMessage checks membership, then the content, then stores the message
// with its attachment and hands it to the realtime channel. Publishing
// cannot fail the send.
func (s *MessagingService) SendMessage(cmd messaging.SendMessageCommand) (messaging.Message, error) {
	if err := messaging.ValidateParticipant(cmd.SenderID); err != nil {
		return messaging.Message{}, err
	}
	if err := s.ensureMember(cmd.SenderID, cmd.ConversationID); err != nil {
		return messaging.Message{}, err
	}
	cmd, err := cmd.Normalize()
	if err != nil {
		return messaging.Message{}, err
	}

	var pending *messaging.PendingAttachment
	if cmd.Upload != nil {
		accepted, err := s.policy.Accept(*cmd.Upload)
		if err != nil {
			s.metrics.AttachmentRejected(rejectionReason(err))
			return messaging.Message{}, err
		}
		pending = &accepted
	}

	message, err := s.stores.Messages.Append(cmd.ConversationID, cmd.SenderID, cmd.Text, pending)
	if err != nil {
		return messaging.Message{}, err
	}
	s.metrics.MessageAppended(pending != nil)
	s.notifier.Publish(event.MessageCreated{Message: message})
	return message, nil
}

func (s *MessagingService) HideConversation(me string, conversationID uuid.UUID) error {
	if err := messaging.ValidateParticipant(me); err != nil {
		return err
	}
	return s.stores.Memberships.Hide(conversationID, me)
}

// DownloadAttachment resolves the attachment first, so an unknown id is
// NotFound, then requires membership of its conversation.
func (s *MessagingService) DownloadAttachment(me string, attachmentID uint64) (messaging.Attachment, error) {
	if err := messaging.ValidateParticipant(me); err != nil {
		return messaging.Attachment{}, err
	}
	meta, err := s.stores.Attachments.GetAttachment(attachmentID)
	if err != nil {
		return messaging.Attachment{}, err
	}
	if err := s.ensureMember(me, meta.ConversationID); err != nil {
		return messaging.Attachment{}, err
	}
	payload, err := s.stores.Attachments.GetPayload(attachmentID)
	if err != nil {
		return messaging.Attachment{}, err
	}
	return messaging.Attachment{AttachmentMeta: meta, Payload: payload}, nil
}

// SearchMessages only sees what the fan-out has indexed so far.
func (s *MessagingService) SearchMessages(ctx context.Context, me string, conversationID uuid.UUID, query string, limit int) ([]messaging.Message, error) {
	if err := s.ensureMember(me, conversationID); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.ErrEmptyQuery
	}
	ids, err := s.index.Search(ctx, conversationID, query, messaging.ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []messaging.Message{}, nil
	}
	return s.stores.Messages.GetMessages(conversationID, ids)
}

// Subscribe binds a live sink to a conversation the caller belongs to.
// The returned func removes it and is safe to call more than once.
func (s *MessagingService) Subscribe(me string, conversationID uuid.UUID, sink contract.EventSink) (func(), error) {
	if err := s.ensureMember(me, conversationID); err != nil {
		return nil, err
	}
	subscriptionID := uuid.NewString()
	s.registry.Subscribe(subscriptionID, conversationID, sink)
	s.metrics.SubscriptionOpened()
	s.log.Debug("Subscribed", "conversation_id", conversationID, "participant_id", me, "subscription_id", subscriptionID)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.registry.Unsubscribe(subscriptionID, conversationID)
			s.metrics.SubscriptionClosed()
			s.log.Debug("Unsubscribed", "conversation_id", conversationID, "participant_id", me, "subscription_id", subscriptionID)
		})
	}, nil
}

func (s *MessagingService) RegisterProfile(profile messaging.Profile) error {
	if err := messaging.ValidateParticipant(profile.ParticipantID); err != nil {
		return err
	}
	return s.stores.Profiles.Upsert(profile)
}

func (s *MessagingService) ensureMember(me string, conversationID uuid.UUID) error {
	if err := messaging.ValidateParticipant(me); err != nil {
		return err
	}
	_, err := s.stores.Memberships.EnsureMember(conversationID, me)
	return err
}

func validateParticipants(ids ...string) error {
	for _, id := range ids {
		if err := messaging.ValidateParticipant(id); err != nil {
			return err
		}
	}
	return nil
}

func rejectionReason(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrAttachmentEmpty):
		return "empty"
	case stderrors.Is(err, errors.ErrAttachmentNotPDF):
		return "not_pdf"
	case stderrors.Is(err, errors.ErrAttachmentTooLarge):
		return "too_large"
	default:
		return "other"
	}
}
