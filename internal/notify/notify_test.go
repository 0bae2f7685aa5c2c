package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/simp-lee/touradmin/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&domain.Notification{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type recordingMailer struct {
	fail map[string]bool
	sent []string
}

func (m *recordingMailer) Send(_ context.Context, recipient, _, _ string) error {
	if m.fail[recipient] {
		return errors.New("smtp: mailbox unavailable")
	}
	m.sent = append(m.sent, recipient)
	return nil
}

func TestOutbox_Enqueue(t *testing.T) {
	db := newTestDB(t)
	o := NewOutbox()
	ctx := context.Background()

	err := o.Enqueue(ctx, db, domain.Notification{Recipient: "a@example.com", Subject: "hi", Status: domain.NotificationSent, Attempts: 9})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	var n domain.Notification
	db.First(&n)
	if n.Status != domain.NotificationPending || n.Attempts != 0 {
		t.Fatalf("queued notification = %+v", n)
	}

	if err := o.Enqueue(ctx, db, domain.Notification{Subject: "no one"}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDispatcher_Drain(t *testing.T) {
	db := newTestDB(t)
	o := NewOutbox()
	ctx := context.Background()
	for _, r := range []string{"ok@example.com", "bad@example.com"} {
		if err := o.Enqueue(ctx, db, domain.Notification{Recipient: r, Subject: "s"}); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	mailer := &recordingMailer{fail: map[string]bool{"bad@example.com": true}}
	d := NewDispatcher(db, mailer, 10, 2, nil)

	sent, err := d.Drain(ctx)
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if sent != 1 || len(mailer.sent) != 1 {
		t.Fatalf("sent = %d, mailer = %v", sent, mailer.sent)
	}

	var bad domain.Notification
	db.Where("recipient = ?", "bad@example.com").First(&bad)
	if bad.Status != domain.NotificationPending || bad.Attempts != 1 || bad.LastError == "" {
		t.Fatalf("after first failure: %+v", bad)
	}

	if _, err := d.Drain(ctx); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	db.Where("recipient = ?", "bad@example.com").First(&bad)
	if bad.Status != domain.NotificationFailed || bad.Attempts != 2 {
		t.Fatalf("after max attempts: %+v", bad)
	}

	var ok domain.Notification
	db.Where("recipient = ?", "ok@example.com").First(&ok)
	if ok.Status != domain.NotificationSent || ok.SentAt == nil {
		t.Fatalf("delivered notification = %+v", ok)
	}

	sent, _ = d.Drain(ctx)
	if sent != 0 || len(mailer.sent) != 1 {
		t.Fatal("nothing should be resent")
	}
}

func TestLogMailer(t *testing.T) {
	if err := NewLogMailer("noreply@example.com", nil).Send(context.Background(), "a@example.com", "s", "b"); err != nil {
		t.Fatalf("Send: %v", err)
	}
}
