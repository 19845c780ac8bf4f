package service

import (
	"context"
	"io"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"skillex/internal/messages/repository"
	userserrors "skillex/internal/users/errors"
	"skillex/pkg/config"
	apperrors "skillex/pkg/errors"
	"skillex/pkg/logger"
	"skillex/pkg/model"
	"skillex/pkg/notify"
)

const (
	aliceID = "6653f1a2b3c4d5e6f7a8b9c0"
	bobID   = "6653f1a2b3c4d5e6f7a8b9c1"
)

type memoryMessageRepo struct {
	messages   []*model.Message
	threadRead []string
}

func (m *memoryMessageRepo) Create(ctx context.Context, message *model.Message) error {
	message.ID = "6653f1a2b3c4d5e6f7a8b9d0"
	m.messages = append(m.messages, message)
	return nil
}

func (m *memoryMessageRepo) FindThreads(ctx context.Context, userID string) ([]repository.ThreadSummary, error) {
	byThread := make(map[string]*repository.ThreadSummary)
	var order []string
	for _, msg := range m.messages {
		if msg.SenderID != userID && msg.RecipientID != userID {
			continue
		}
		sum, ok := byThread[msg.ThreadID]
		if !ok {
			sum = &repository.ThreadSummary{ThreadID: msg.ThreadID}
			byThread[msg.ThreadID] = sum
			order = append(order, msg.ThreadID)
		}
		sum.LastMessage = *msg
		if msg.RecipientID == userID && !msg.IsRead {
			sum.UnreadCount++
		}
	}
	out := make([]repository.ThreadSummary, 0, len(order))
	for _, id := range order {
		out = append(out, *byThread[id])
	}
	return out, nil
}

func (m *memoryMessageRepo) FindByThread(ctx context.Context, threadID string, limit int, skip int64) ([]*model.Message, error) {
	var out []*model.Message
	for _, msg := range m.messages {
		if msg.ThreadID == threadID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memoryMessageRepo) CountByThread(ctx context.Context, threadID string) (int64, error) {
	var n int64
	for _, msg := range m.messages {
		if msg.ThreadID == threadID {
			n++
		}
	}
	return n, nil
}

func (m *memoryMessageRepo) MarkThreadRead(ctx context.Context, threadID, recipientID string) error {
	m.threadRead = append(m.threadRead, threadID)
	for _, msg := range m.messages {
		if msg.ThreadID == threadID && msg.RecipientID == recipientID {
			msg.IsRead = true
		}
	}
	return nil
}

func (m *memoryMessageRepo) MarkRead(ctx context.Context, id, recipientID string) (bool, error) {
	for _, msg := range m.messages {
		if msg.ID == id && msg.RecipientID == recipientID {
			msg.IsRead = true
			return true, nil
		}
	}
	return false, nil
}

type mockUserRepo struct{}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error { return nil }

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if id == aliceID || id == bobID {
		return &model.User{ID: id, Name: "User", Email: "user@example.com"}, nil
	}
	return nil, userserrors.ErrNotFound
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, userserrors.ErrNotFound
}

func (m *mockUserRepo) FindPublicByID(ctx context.Context, id string) (*model.PublicUser, error) {
	return &model.PublicUser{ID: id}, nil
}

func (m *mockUserRepo) FindPublicByIDs(ctx context.Context, ids []string) (map[string]*model.PublicUser, error) {
	out := make(map[string]*model.PublicUser, len(ids))
	for _, id := range ids {
		out[id] = &model.PublicUser{ID: id}
	}
	return out, nil
}

func (m *mockUserRepo) Update(ctx context.Context, id string, fields bson.M) error { return nil }

func (m *mockUserRepo) UpdateRating(ctx context.Context, id string, summary model.RatingSummary) error {
	return nil
}

func (m *mockUserRepo) FindAll(ctx context.Context, limit int, skip int64) ([]*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

func (m *mockUserRepo) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	return 0, nil
}

type recordingNotifier struct {
	events []notify.Event
}

func (n *recordingNotifier) Notify(ctx context.Context, event notify.Event) {
	n.events = append(n.events, event)
}

func (n *recordingNotifier) Close() error { return nil }

func newFixture() (MessageService, *memoryMessageRepo, *recordingNotifier) {
	cfg := &config.Config{
		Log: logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Output: io.Discard}),
	}
	repo := &memoryMessageRepo{}
	notifier := &recordingNotifier{}
	return NewMessageService(repo, &mockUserRepo{}, notifier, cfg), repo, notifier
}

func assertAppError(t *testing.T, err error, code string, message string) {
	t.Helper()
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != code {
		t.Errorf("Code = %s, want %s", appErr.Code, code)
	}
	if message != "" && appErr.Message != message {
		t.Errorf("Message = %q, want %q", appErr.Message, message)
	}
}

func TestSendMessage(t *testing.T) {
	svc, repo, notifier := newFixture()
	alice := model.Identity{UserID: aliceID, Role: model.RoleLearner}

	message, err := svc.Send(context.Background(), alice, &SendRequest{
		RecipientID: bobID,
		Content:     "Hi, is Thursday still open?",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if want := model.ThreadKey(aliceID, bobID); message.ThreadID != want {
		t.Errorf("ThreadID = %s, want %s", message.ThreadID, want)
	}
	if len(repo.messages) != 1 {
		t.Fatalf("stored %d messages, want 1", len(repo.messages))
	}
	if len(notifier.events) != 1 || notifier.events[0].Type != notify.EventMessageReceived {
		t.Errorf("expected one %s event, got %v", notify.EventMessageReceived, notifier.events)
	}
}

func TestSendMessageGuards(t *testing.T) {
	svc, _, _ := newFixture()
	alice := model.Identity{UserID: aliceID, Role: model.RoleLearner}

	t.Run("self send", func(t *testing.T) {
		_, err := svc.Send(context.Background(), alice, &SendRequest{RecipientID: aliceID, Content: "hi"})
		assertAppError(t, err, apperrors.CodeInvalidInput, "You cannot send a message to yourself")
	})

	t.Run("unknown recipient", func(t *testing.T) {
		_, err := svc.Send(context.Background(), alice, &SendRequest{RecipientID: "6653f1a2b3c4d5e6f7a8b9ff", Content: "hi"})
		assertAppError(t, err, apperrors.CodeNotFound, "User not found")
	})

	t.Run("empty content", func(t *testing.T) {
		_, err := svc.Send(context.Background(), alice, &SendRequest{RecipientID: bobID, Content: "   "})
		assertAppError(t, err, apperrors.CodeValidation, "")
	})
}

func TestListThread(t *testing.T) {
	svc, repo, _ := newFixture()
	alice := model.Identity{UserID: aliceID, Role: model.RoleLearner}
	bob := model.Identity{UserID: bobID, Role: model.RoleTeacher}
	threadID := model.ThreadKey(aliceID, bobID)

	if _, err := svc.Send(context.Background(), alice, &SendRequest{RecipientID: bobID, Content: "First"}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	t.Run("stranger is rejected", func(t *testing.T) {
		stranger := model.Identity{UserID: "6653f1a2b3c4d5e6f7a8b9fe", Role: model.RoleLearner}
		_, _, err := svc.ListThread(context.Background(), stranger, threadID, 50, 0)
		assertAppError(t, err, apperrors.CodeForbidden, "You are not part of this conversation")
	})

	t.Run("recipient read marks the thread", func(t *testing.T) {
		messages, total, err := svc.ListThread(context.Background(), bob, threadID, 50, 0)
		if err != nil {
			t.Fatalf("ListThread() error = %v", err)
		}
		if total != 1 || len(messages) != 1 {
			t.Errorf("got %d/%d messages, want 1/1", len(messages), total)
		}
		if len(repo.threadRead) == 0 {
			t.Error("listing a thread should mark it read for the caller")
		}
		if !repo.messages[0].IsRead {
			t.Error("message addressed to the caller should be read now")
		}
	})
}

func TestThreadSummaries(t *testing.T) {
	svc, _, _ := newFixture()
	alice := model.Identity{UserID: aliceID, Role: model.RoleLearner}
	bob := model.Identity{UserID: bobID, Role: model.RoleTeacher}

	for _, content := range []string{"First", "Second"} {
		if _, err := svc.Send(context.Background(), alice, &SendRequest{RecipientID: bobID, Content: content}); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
	}

	threads, err := svc.ListThreads(context.Background(), bob)
	if err != nil {
		t.Fatalf("ListThreads() error = %v", err)
	}
	if len(threads) != 1 {
		t.Fatalf("got %d threads, want 1", len(threads))
	}

	thread := threads[0]
	if thread.UnreadCount != 2 {
		t.Errorf("UnreadCount = %d, want 2", thread.UnreadCount)
	}
	if thread.LastMessage == nil || thread.LastMessage.Content != "Second" {
		t.Errorf("LastMessage = %+v, want the latest message", thread.LastMessage)
	}
	if thread.OtherUser == nil || thread.OtherUser.ID != aliceID {
		t.Errorf("OtherUser = %+v, want %s", thread.OtherUser, aliceID)
	}
}

func TestMarkRead(t *testing.T) {
	svc, _, _ := newFixture()
	alice := model.Identity{UserID: aliceID, Role: model.RoleLearner}
	bob := model.Identity{UserID: bobID, Role: model.RoleTeacher}

	message, err := svc.Send(context.Background(), alice, &SendRequest{RecipientID: bobID, Content: "Read me"})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	// The sender is not the recipient, so the conditional update misses.
	err = svc.MarkRead(context.Background(), alice, message.ID)
	assertAppError(t, err, apperrors.CodeNotFound, "Message not found")

	if err := svc.MarkRead(context.Background(), bob, message.ID); err != nil {
		t.Fatalf("MarkRead() by recipient error = %v", err)
	}
}
