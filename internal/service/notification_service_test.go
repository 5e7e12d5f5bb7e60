package service_test

import (
	"context"
	"testing"

	"github.com/SAGARSINGH-1/HostelCMS/internal/config"
	"github.com/SAGARSINGH-1/HostelCMS/internal/domain"
	"github.com/SAGARSINGH-1/HostelCMS/internal/service"
)

func TestListMineUsesConfiguredLimit(t *testing.T) {
	var gotRecipient string
	var gotLimit int
	repo := &fakeNotificationRepo{
		listFn: func(_ context.Context, recipientID string, limit int) ([]domain.Notification, error) {
			gotRecipient = recipientID
			gotLimit = limit
			return []domain.Notification{{ID: "n1", RecipientID: recipientID}}, nil
		},
	}
	svc := service.NewNotificationService(repo, config.NotificationConfig{ListLimit: 10})

	notifications, err := svc.ListMine(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if gotRecipient != "u1" || gotLimit != 10 {
		t.Errorf("queried recipient=%s limit=%d, want u1/10", gotRecipient, gotLimit)
	}
	if len(notifications) != 1 {
		t.Errorf("got %d notifications", len(notifications))
	}
}

func TestMarkReadScopedToRecipient(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := service.NewNotificationService(repo, config.NotificationConfig{ListLimit: 10})

	if err := svc.MarkRead(context.Background(), "n1", "u1"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if len(repo.markedRead) != 1 || repo.markedRead[0] != [2]string{"n1", "u1"} {
		t.Fatalf("markedRead = %+v, want id and owner passed together", repo.markedRead)
	}
}
