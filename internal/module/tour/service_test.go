package tour

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/simp-lee/touradmin/internal/domain"
	"github.com/simp-lee/touradmin/internal/lifecycle"
	"github.com/simp-lee/touradmin/internal/notify"
)

type roleTable map[string]domain.Role

func (r roleTable) Authorize(_ context.Context, actorID string, required domain.Role) (bool, error) {
	role, ok := r[actorID]
	return ok && role.Covers(required), nil
}

// brokenNotifier fails every enqueue.
type brokenNotifier struct{}

func (brokenNotifier) Enqueue(context.Context, *gorm.DB, domain.Notification) error {
	return errors.New("outbox unavailable")
}

var (
	editor = domain.Actor{ID: "1", Role: domain.RoleEditor}
	admin  = domain.Actor{ID: "2", Role: domain.RoleAdmin}
	roles  = roleTable{"1": domain.RoleEditor, "2": domain.RoleAdmin}
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
	if err := db.AutoMigrate(&domain.Tour{}, &domain.Asset{}, &domain.LifecycleEvent{}, &domain.Notification{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, notifier lifecycle.Notifier) (*TourService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewTourService(db, NewTourRepository(db), nil, roles, notifier, nil), db
}

func sampleInput() Input {
	return Input{Title: "Old Town Walk", GuideName: "Mia", GuideEmail: "mia@example.com", Price: 4500}
}

func notifications(db *gorm.DB) []domain.Notification {
	var list []domain.Notification
	db.Order("id ASC").Find(&list)
	return list
}

func TestTourService_Create(t *testing.T) {
	svc, _ := newTestService(t, nil)
	tr, err := svc.Create(context.Background(), editor, sampleInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tr.Status != domain.TourDraft || tr.Currency != "USD" {
		t.Errorf("status %q currency %q", tr.Status, tr.Currency)
	}

	in := sampleInput()
	in.Price = -1
	if _, err := svc.Create(context.Background(), editor, in); !domain.IsValidation(err) {
		t.Errorf("negative price: err = %v, want validation", err)
	}
}

func TestTourService_ReviewFlow(t *testing.T) {
	svc, db := newTestService(t, notify.NewOutbox())
	ctx := context.Background()
	tr, _ := svc.Create(ctx, editor, sampleInput())

	steps := []struct {
		actor  domain.Actor
		name   string
		reason string
		want   string
	}{
		{editor, Submit, "", domain.TourPending},
		{admin, Approve, "", domain.TourApproved},
		{admin, Suspend, "complaints", domain.TourSuspended},
		{admin, Reinstate, "", domain.TourApproved},
	}
	for _, s := range steps {
		got, err := svc.Transition(ctx, s.actor, tr.ID, s.name, s.reason)
		if err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
		if got.Status != s.want || got.ReviewedBy != s.actor.ID || got.ReviewedAt == nil {
			t.Errorf("%s: status %q reviewed by %q", s.name, got.Status, got.ReviewedBy)
		}
	}

	events, err := svc.History(ctx, tr.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("History = %d events, want 4", len(events))
	}
	if events[2].FromStatus != domain.TourApproved || events[2].ToStatus != domain.TourSuspended || events[2].Reason != "complaints" {
		t.Errorf("suspend event = %+v", events[2])
	}

	sent := notifications(db)
	if len(sent) != 3 {
		t.Fatalf("notifications = %d, want 3 (approve, suspend, reinstate)", len(sent))
	}
	for _, n := range sent {
		if n.Recipient != "mia@example.com" || n.Status != domain.NotificationPending {
			t.Errorf("notification = %+v", n)
		}
	}
}

func TestTourService_TransitionGuards(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	tr, _ := svc.Create(ctx, editor, sampleInput())

	if _, err := svc.Transition(ctx, admin, tr.ID, Approve, ""); !domain.IsInvalidTransition(err) {
		t.Errorf("approve draft: err = %v, want invalid transition", err)
	}
	if _, err := svc.Transition(ctx, editor, tr.ID, Submit, ""); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Transition(ctx, editor, tr.ID, Approve, ""); !domain.IsForbidden(err) {
		t.Errorf("editor approve: err = %v, want forbidden", err)
	}
	if _, err := svc.Transition(ctx, admin, tr.ID, Reject, "  "); !domain.IsValidation(err) {
		t.Errorf("reject without reason: err = %v, want validation", err)
	}
	if _, err := svc.Transition(ctx, admin, tr.ID, "publish", ""); !domain.IsValidation(err) {
		t.Errorf("unknown transition: err = %v, want validation", err)
	}

	got, err := svc.Transition(ctx, admin, tr.ID, Reject, "blurry photos")
	if err != nil || got.Status != domain.TourRejected || got.ReviewReason != "blurry photos" {
		t.Fatalf("reject = %+v, %v", got, err)
	}
	if got, err := svc.Transition(ctx, editor, tr.ID, Submit, ""); err != nil || got.Status != domain.TourPending {
		t.Errorf("resubmit = %v, %v", got, err)
	}
}

func TestTourService_NotificationFailureDoesNotBlock(t *testing.T) {
	svc, db := newTestService(t, brokenNotifier{})
	ctx := context.Background()
	tr, _ := svc.Create(ctx, editor, sampleInput())
	_, _ = svc.Transition(ctx, editor, tr.ID, Submit, "")

	got, err := svc.Transition(ctx, admin, tr.ID, Approve, "")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.Status != domain.TourApproved {
		t.Errorf("status = %q", got.Status)
	}
	stored, _ := svc.Get(ctx, tr.ID, false)
	if stored.Status != domain.TourApproved {
		t.Errorf("stored status = %q, want approved", stored.Status)
	}
	if n := notifications(db); len(n) != 0 {
		t.Errorf("notifications = %v, want none", n)
	}
}

func TestTourService_DeleteRestoreKeepsStatus(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	tr, _ := svc.Create(ctx, editor, sampleInput())
	_, _ = svc.Transition(ctx, editor, tr.ID, Submit, "")

	if _, err := svc.Delete(ctx, editor, tr.ID, "guide left"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Transition(ctx, admin, tr.ID, Approve, ""); !domain.IsNotFound(err) {
		t.Errorf("approve deleted: err = %v, want not found", err)
	}
	page, _ := svc.List(ctx, domain.PageRequest{Page: 1, PageSize: 10})
	if page.Total != 0 {
		t.Errorf("List total = %d, want 0", page.Total)
	}

	restored, err := svc.Restore(ctx, editor, tr.ID)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Status != domain.TourPending {
		t.Errorf("restored status = %q, want pending", restored.Status)
	}
}

// beforeUpdate runs fn once, just before the next UPDATE on tours executes.
// The database must run updates without an implicit transaction so fn can
// commit its own writes first.
func beforeUpdate(t *testing.T, db *gorm.DB, fn func()) {
	t.Helper()
	fired := false
	err := db.Callback().Update().Before("gorm:update").Register("test:before_tour_update", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "tours" {
			return
		}
		fired = true
		fn()
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
}

func TestTourService_UpdateKeepsConcurrentChanges(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name        string
		race        func(svc *TourService, id string) error
		wantErr     bool
		wantStatus  string
		wantTitle   string
		wantDeleted bool
	}{
		{
			name: "approved before write",
			race: func(svc *TourService, id string) error {
				_, err := svc.Transition(ctx, admin, id, Approve, "")
				return err
			},
			wantStatus: domain.TourApproved,
			wantTitle:  "Harbour Walk",
		},
		{
			name: "deleted before write",
			race: func(svc *TourService, id string) error {
				_, err := svc.Delete(ctx, editor, id, "duplicate")
				return err
			},
			wantErr:     true,
			wantStatus:  domain.TourPending,
			wantTitle:   "Old Town Walk",
			wantDeleted: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			db = db.Session(&gorm.Session{SkipDefaultTransaction: true})
			svc := NewTourService(db, NewTourRepository(db), nil, roles, nil, nil)

			tr, _ := svc.Create(ctx, editor, sampleInput())
			if _, err := svc.Transition(ctx, editor, tr.ID, Submit, ""); err != nil {
				t.Fatalf("Submit: %v", err)
			}

			var raceErr error
			beforeUpdate(t, db, func() { raceErr = tt.race(svc, tr.ID) })

			in := sampleInput()
			in.Title = "Harbour Walk"
			_, err := svc.Update(ctx, editor, tr.ID, in)
			if raceErr != nil {
				t.Fatalf("competing write: %v", raceErr)
			}
			if tt.wantErr && !domain.IsNotFound(err) {
				t.Fatalf("Update err = %v, want not found", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Update: %v", err)
			}

			got, err := svc.Get(ctx, tr.ID, true)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Status != tt.wantStatus || got.Title != tt.wantTitle {
				t.Errorf("status %q title %q, want %q %q", got.Status, got.Title, tt.wantStatus, tt.wantTitle)
			}
			if got.IsDeleted() != tt.wantDeleted {
				t.Errorf("deleted = %v, want %v", got.IsDeleted(), tt.wantDeleted)
			}
		})
	}
}

func TestTourService_UpdateDeleted(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	tr, _ := svc.Create(ctx, editor, sampleInput())
	if _, err := svc.Delete(ctx, editor, tr.ID, "cancelled"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Update(ctx, editor, tr.ID, sampleInput()); !domain.IsNotFound(err) {
		t.Fatalf("Update deleted: err = %v, want not found", err)
	}
	got, _ := svc.Get(ctx, tr.ID, true)
	if !got.IsDeleted() || got.DeletedBy != editor.ID {
		t.Errorf("deleted stamps changed: %+v", got.SoftDelete)
	}
}
