package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	messageserrors "skillex/internal/messages/errors"
	"skillex/internal/messages/repository"
	userserrors "skillex/internal/users/errors"
	usersrepo "skillex/internal/users/repository"
	"skillex/pkg/config"
	apperrors "skillex/pkg/errors"
	"skillex/pkg/model"
	"skillex/pkg/notify"
	"skillex/pkg/sanitizer"
	"skillex/pkg/validation"
)

type SendRequest struct {
	RecipientID string `json:"recipientId" validate:"required,mongodb"`
	ListingID   string `json:"listingId,omitempty" validate:"omitempty,mongodb"`
	Content     string `json:"content" validate:"required,max=1000"`
}

type MessageService interface {
	Send(ctx context.Context, identity model.Identity, req *SendRequest) (*model.Message, error)
	ListThreads(ctx context.Context, identity model.Identity) ([]*model.Thread, error)
	ListThread(ctx context.Context, identity model.Identity, threadID string, limit int, skip int64) ([]*model.Message, int64, error)
	MarkRead(ctx context.Context, identity model.Identity, messageID string) error
}

type messageService struct {
	repo     repository.MessageRepository
	users    usersrepo.UserRepository
	validate *validator.Validate
	notifier notify.Notifier
	cfg      *config.Config
}

func NewMessageService(
	repo repository.MessageRepository,
	users usersrepo.UserRepository,
	notifier notify.Notifier,
	cfg *config.Config,
) MessageService {
	return &messageService{
		repo:     repo,
		users:    users,
		validate: validator.New(),
		notifier: notifier,
		cfg:      cfg,
	}
}

func (s *messageService) Send(ctx context.Context, identity model.Identity, req *SendRequest) (*model.Message, error) {
	req.Content = sanitizer.TrimAndNormalize(req.Content)

	if err := s.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			translated := validation.Translate(validationErrs)
			return nil, apperrors.Validation("Invalid message input", map[string]any{"error": translated.Error()})
		}
		return nil, apperrors.Internal("Failed to validate message", err)
	}

	if req.RecipientID == identity.UserID {
		return nil, apperrors.InvalidInput("You cannot send a message to yourself")
	}

	recipient, err := s.users.FindByID(ctx, req.RecipientID)
	if err != nil {
		switch {
		case errors.Is(err, userserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("User", req.RecipientID)
		case errors.Is(err, userserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid recipient ID format")
		default:
			return nil, apperrors.Internal("Failed to load recipient", err)
		}
	}

	message := &model.Message{
		ThreadID:    model.ThreadKey(identity.UserID, req.RecipientID),
		SenderID:    identity.UserID,
		RecipientID: req.RecipientID,
		ListingID:   req.ListingID,
		Content:     req.Content,
	}

	if err := s.repo.Create(ctx, message); err != nil {
		s.cfg.Log.Error("Failed to create message", "thread_id", message.ThreadID, "error", err)
		return nil, apperrors.Internal("Failed to send message", err)
	}

	s.cfg.Log.Info("Message sent", "id", message.ID, "thread_id", message.ThreadID)

	s.notifier.Notify(ctx, notify.Event{
		Type:           notify.EventMessageReceived,
		RecipientEmail: recipient.Email,
		RecipientName:  recipient.Name,
		Subject:        "You have a new message",
		Body:           "Someone sent you a message. Log in to read and reply.",
	})

	return message, nil
}

func (s *messageService) ListThreads(ctx context.Context, identity model.Identity) ([]*model.Thread, error) {
	summaries, err := s.repo.FindThreads(ctx, identity.UserID)
	if err != nil {
		s.cfg.Log.Error("Failed to list threads", "user_id", identity.UserID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve threads", err)
	}

	otherIDs := make([]string, 0, len(summaries))
	for _, sum := range summaries {
		otherIDs = append(otherIDs, otherParticipant(sum.ThreadID, identity.UserID))
	}
	others, err := s.users.FindPublicByIDs(ctx, otherIDs)
	if err != nil {
		s.cfg.Log.Warn("Failed to embed thread participants", "error", err)
		others = map[string]*model.PublicUser{}
	}

	threads := make([]*model.Thread, 0, len(summaries))
	for _, sum := range summaries {
		last := sum.LastMessage
		threads = append(threads, &model.Thread{
			ThreadID:    sum.ThreadID,
			OtherUser:   others[otherParticipant(sum.ThreadID, identity.UserID)],
			LastMessage: &last,
			UnreadCount: sum.UnreadCount,
		})
	}
	return threads, nil
}

// ListThread returns a thread's messages to a participant and marks the
// caller's unread messages as read.
func (s *messageService) ListThread(ctx context.Context, identity model.Identity, threadID string, limit int, skip int64) ([]*model.Message, int64, error) {
	if !isThreadParticipant(threadID, identity.UserID) {
		return nil, 0, apperrors.Forbidden("You are not part of this conversation")
	}

	messages, err := s.repo.FindByThread(ctx, threadID, limit, skip)
	if err != nil {
		s.cfg.Log.Error("Failed to list thread messages", "thread_id", threadID, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve messages", err)
	}

	total, err := s.repo.CountByThread(ctx, threadID)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count messages", err)
	}

	if err := s.repo.MarkThreadRead(ctx, threadID, identity.UserID); err != nil {
		s.cfg.Log.Warn("Failed to mark thread read", "thread_id", threadID, "error", err)
	}

	s.embedParticipants(ctx, messages)
	return messages, total, nil
}

func (s *messageService) MarkRead(ctx context.Context, identity model.Identity, messageID string) error {
	matched, err := s.repo.MarkRead(ctx, messageID, identity.UserID)
	if err != nil {
		if errors.Is(err, messageserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid message ID format")
		}
		return apperrors.Internal("Failed to mark message read", err)
	}
	if !matched {
		return apperrors.NotFoundWithID("Message", messageID)
	}
	return nil
}

func isThreadParticipant(threadID, userID string) bool {
	parts := strings.Split(threadID, "_")
	if len(parts) != 2 {
		return false
	}
	return parts[0] == userID || parts[1] == userID
}

func otherParticipant(threadID, userID string) string {
	parts := strings.Split(threadID, "_")
	if len(parts) != 2 {
		return ""
	}
	if parts[0] == userID {
		return parts[1]
	}
	return parts[0]
}

func (s *messageService) embedParticipants(ctx context.Context, messages []*model.Message) {
	if len(messages) == 0 {
		return
	}

	ids := make([]string, 0, 2)
	seen := make(map[string]bool, 2)
	for _, m := range messages {
		for _, id := range []string{m.SenderID, m.RecipientID} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	users, err := s.users.FindPublicByIDs(ctx, ids)
	if err != nil {
		s.cfg.Log.Warn("Failed to embed message participants", "error", err)
		return
	}
	for _, m := range messages {
		m.Sender = users[m.SenderID]
		m.Recipient = users[m.RecipientID]
	}
}
