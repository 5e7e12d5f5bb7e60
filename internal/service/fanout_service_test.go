package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/SAGARSINGH-1/HostelCMS/internal/domain"
	"github.com/SAGARSINGH-1/HostelCMS/internal/events"
	"github.com/SAGARSINGH-1/HostelCMS/internal/observability"
	"github.com/SAGARSINGH-1/HostelCMS/internal/realtime"
	"github.com/SAGARSINGH-1/HostelCMS/internal/service"
)

type fakeNotificationRepo struct {
	appended   []domain.Notification
	appendErr  error
	listFn     func(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error)
	markedRead [][2]string
}

func (f *fakeNotificationRepo) Append(_ context.Context, n *domain.Notification) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, *n)
	return nil
}

func (f *fakeNotificationRepo) AppendMany(ctx context.Context, ns []domain.Notification) error {
	var failures []error
	for i := range ns {
		if err := f.Append(ctx, &ns[i]); err != nil {
			failures = append(failures, err)
		}
	}
	return errors.Join(failures...)
}

func (f *fakeNotificationRepo) ListForRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error) {
	if f.listFn != nil {
		return f.listFn(ctx, recipientID, limit)
	}
	return nil, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id, recipientID string) error {
	f.markedRead = append(f.markedRead, [2]string{id, recipientID})
	return nil
}

func (f *fakeNotificationRepo) MarkAllRead(context.Context, string) error { return nil }

type fakeNotifier struct {
	pushes []push
}

type push struct {
	recipientID string
	event       string
	payload     any
}

func (f *fakeNotifier) Push(_ context.Context, recipientID, event string, payload any) {
	f.pushes = append(f.pushes, push{recipientID: recipientID, event: event, payload: payload})
}

func newFanout(repo *fakeNotificationRepo, notifier *fakeNotifier) *service.FanoutService {
	return service.NewFanoutService(repo, notifier, zap.NewNop(), observability.NewMetrics())
}

func TestFanOutMentionsDeduplicatesRecipients(t *testing.T) {
	repo := &fakeNotificationRepo{}
	notifier := &fakeNotifier{}
	fanout := newFanout(repo, notifier)

	mentions := []domain.Mention{
		{IdentityID: "u1", Role: domain.RoleStudent, Username: "alice", Start: 0, End: 6},
		{IdentityID: "u2", Role: domain.RoleFaculty, Username: "bob", Start: 10, End: 14},
		{IdentityID: "u1", Role: domain.RoleStudent, Username: "alice", Start: 20, End: 26},
	}
	fanout.FanOutMentions(context.Background(), "q1", "author", "leak", "tap is leaking", mentions)

	if len(repo.appended) != 2 {
		t.Fatalf("appended %d notifications, want 2 unique recipients", len(repo.appended))
	}
	if repo.appended[0].RecipientID != "u1" || repo.appended[1].RecipientID != "u2" {
		t.Fatalf("recipient order = %s,%s; want first-occurrence order u1,u2",
			repo.appended[0].RecipientID, repo.appended[1].RecipientID)
	}
	if len(notifier.pushes) != 2 {
		t.Fatalf("got %d realtime pushes, want 2", len(notifier.pushes))
	}
	for _, n := range repo.appended {
		if n.Kind != domain.NotificationKindMention {
			t.Errorf("kind = %s, want mention", n.Kind)
		}
		if n.QueryID != "q1" || n.ActorID != "author" {
			t.Errorf("notification references wrong query/actor: %+v", n)
		}
	}
}

func TestFanOutMentionsSnippetTruncated(t *testing.T) {
	repo := &fakeNotificationRepo{}
	fanout := service.NewFanoutService(repo, realtime.NopNotifier{}, zap.NewNop(), observability.NewMetrics())

	long := strings.Repeat("x", 500)
	fanout.FanOutMentions(context.Background(), "q1", "author", "t",
		long, []domain.Mention{{IdentityID: "u1", Username: "alice", Role: domain.RoleStudent}})

	if len(repo.appended) != 1 {
		t.Fatalf("appended %d, want 1", len(repo.appended))
	}
	snippet, _ := repo.appended[0].Payload["snippet"].(string)
	if len(snippet) != 140 {
		t.Fatalf("snippet length = %d, want 140", len(snippet))
	}
	if !strings.HasSuffix(snippet, "...") {
		t.Fatalf("snippet %q should end with ellipsis", snippet)
	}
}

func TestFanOutMentionsSnippetKeepsMultibyteRunes(t *testing.T) {
	repo := &fakeNotificationRepo{}
	fanout := service.NewFanoutService(repo, realtime.NopNotifier{}, zap.NewNop(), observability.NewMetrics())

	long := strings.Repeat("é", 200)
	fanout.FanOutMentions(context.Background(), "q1", "author", "t",
		long, []domain.Mention{{IdentityID: "u1", Username: "alice", Role: domain.RoleStudent}})

	if len(repo.appended) != 1 {
		t.Fatalf("appended %d, want 1", len(repo.appended))
	}
	snippet, _ := repo.appended[0].Payload["snippet"].(string)
	if !utf8.ValidString(snippet) {
		t.Fatalf("snippet is not valid UTF-8: %q", snippet)
	}
	if got := utf8.RuneCountInString(snippet); got != 140 {
		t.Fatalf("snippet rune count = %d, want 140", got)
	}
	if !strings.HasSuffix(snippet, "...") {
		t.Fatalf("snippet %q should end with ellipsis", snippet)
	}
}

func TestFanOutMetricsCountOnlyStoredNotifications(t *testing.T) {
	metrics := observability.NewMetrics()
	repo := &fakeNotificationRepo{appendErr: errors.New("insert failed")}
	fanout := service.NewFanoutService(repo, realtime.NopNotifier{}, zap.NewNop(), metrics)

	fanout.FanOutMentions(context.Background(), "q1", "author", "t", "d", []domain.Mention{
		{IdentityID: "u1", Username: "alice", Role: domain.RoleStudent},
		{IdentityID: "u2", Username: "bob", Role: domain.RoleFaculty},
	})

	kind := string(domain.NotificationKindMention)
	if got := metrics.FanoutDelivered(kind); got != 0 {
		t.Errorf("delivered = %d after failed store write, want 0", got)
	}
	if got := metrics.FanoutFailures(kind); got != 1 {
		t.Errorf("failures = %d, want 1", got)
	}

	metrics = observability.NewMetrics()
	fanout = service.NewFanoutService(&fakeNotificationRepo{}, realtime.NopNotifier{}, zap.NewNop(), metrics)
	fanout.FanOutMentions(context.Background(), "q1", "author", "t", "d", []domain.Mention{
		{IdentityID: "u1", Username: "alice", Role: domain.RoleStudent},
		{IdentityID: "u2", Username: "bob", Role: domain.RoleFaculty},
	})
	if got := metrics.FanoutDelivered(kind); got != 2 {
		t.Errorf("delivered = %d, want 2", got)
	}
	if got := metrics.FanoutFailures(kind); got != 0 {
		t.Errorf("failures = %d, want 0", got)
	}
}

func TestFanOutMentionsStoreFailureStillPushes(t *testing.T) {
	repo := &fakeNotificationRepo{appendErr: errors.New("insert failed")}
	notifier := &fakeNotifier{}
	fanout := newFanout(repo, notifier)

	fanout.FanOutMentions(context.Background(), "q1", "author", "t", "d",
		[]domain.Mention{{IdentityID: "u1", Username: "alice", Role: domain.RoleStudent}})

	if len(notifier.pushes) != 1 {
		t.Fatalf("got %d pushes, want 1 despite store failure", len(notifier.pushes))
	}
}

func TestFanOutMentionsEmptySetIsNoop(t *testing.T) {
	repo := &fakeNotificationRepo{}
	notifier := &fakeNotifier{}
	fanout := newFanout(repo, notifier)

	fanout.FanOutMentions(context.Background(), "q1", "author", "t", "d", nil)

	if len(repo.appended) != 0 || len(notifier.pushes) != 0 {
		t.Fatalf("empty mention set must write nothing, got %d appends %d pushes",
			len(repo.appended), len(notifier.pushes))
	}
}

func TestFanOutStatusChangeNotifiesAuthorOnly(t *testing.T) {
	repo := &fakeNotificationRepo{}
	notifier := &fakeNotifier{}
	fanout := newFanout(repo, notifier)

	fanout.FanOutStatusChange(context.Background(), "q1", "fac1", events.QueryStatusChangedPayload{
		StudentID: "stu1",
		Title:     "leak",
		From:      domain.QueryStatusPending,
		To:        domain.QueryStatusResolved,
		Note:      "fixed",
	})

	if len(repo.appended) != 1 {
		t.Fatalf("appended %d, want 1", len(repo.appended))
	}
	n := repo.appended[0]
	if n.RecipientID != "stu1" {
		t.Errorf("recipient = %s, want the query author", n.RecipientID)
	}
	if n.Kind != domain.NotificationKindStatusChange {
		t.Errorf("kind = %s, want status-change", n.Kind)
	}
	if n.Payload["from"] != "pending" || n.Payload["to"] != "resolved" {
		t.Errorf("payload = %+v", n.Payload)
	}
	if len(notifier.pushes) != 1 || notifier.pushes[0].recipientID != "stu1" {
		t.Errorf("pushes = %+v, want single push to stu1", notifier.pushes)
	}
}

func TestRegisterHandlersDispatch(t *testing.T) {
	repo := &fakeNotificationRepo{}
	fanout := newFanout(repo, &fakeNotifier{})

	dispatcher := events.NewInMemoryDispatcher()
	fanout.RegisterHandlers(dispatcher)

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:      "e1",
		Type:    events.EventQueryCreated,
		QueryID: "q1",
		ActorID: "stu1",
		Payload: events.QueryMentionsPayload{
			Title:       "leak",
			Description: "tap",
			Mentions:    []domain.Mention{{IdentityID: "u1", Username: "alice", Role: domain.RoleStudent}},
		},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(repo.appended) != 1 {
		t.Fatalf("appended %d, want 1 via dispatcher", len(repo.appended))
	}
}
