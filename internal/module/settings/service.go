package settings

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/touradmin/internal/docstore"
	"github.com/simp-lee/touradmin/internal/domain"
	"github.com/simp-lee/touradmin/internal/ordering"
)

// View is the read-only state of an aggregate.
type View struct {
	Kind      string         `json:"kind"`
	Entries   []domain.Entry `json:"entries"`
	Version   int64          `json:"version"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Result is returned by a committed mutation.
type Result struct {
	Entry     *domain.Entry `json:"entry,omitempty"`
	Version   int64         `json:"version"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Service applies validated, version-checked edits to settings aggregates.
type Service struct {
	store    *docstore.Store
	authz    domain.Authorizer
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a Service. Panics if store or authz is nil.
func NewService(store *docstore.Store, authz domain.Authorizer, logger *slog.Logger) *Service {
	if store == nil {
		panic("settings.NewService: store must not be nil")
	}
	if authz == nil {
		panic("settings.NewService: authorizer must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Service{
		store:    store,
		authz:    authz,
		validate: v,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the live entries of kind. A kind that was never written reads
// as empty at version 0.
func (s *Service) Get(ctx context.Context, kind string) (*View, error) {
	if _, err := LookupKind(kind); err != nil {
		return nil, err
	}
	agg, err := s.store.Load(ctx, kind, docstore.LoadOptions{})
	if domain.IsNotFound(err) {
		return &View{Kind: kind, Entries: []domain.Entry{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return viewOf(agg), nil
}

// Upsert creates or merges the entry named by patch.Key.
//
// An existing entry keeps its position. A new entry is appended, or inserted
// at patch.Order when given. A tombstoned entry is revived the same way.
func (s *Service) Upsert(ctx context.Context, actor domain.Actor, kind string, patch domain.EntryPatch, expected *int64) (res *Result, err error) {
	t := s.track(ctx, "upsert", kind, actor, expected)
	defer func() { t.finish(err) }()

	k, err := s.precheck(ctx, actor, kind)
	if err != nil {
		return nil, err
	}
	if !domain.ValidEntryKey(patch.Key) {
		return nil, domain.NewValidationError("invalid entry key", map[string]string{"key": "format"})
	}
	t.advance(StateValidated)

	var entry domain.Entry
	agg, err := s.store.Commit(ctx, kind, expected, func(agg *domain.Aggregate) error {
		t.advance(StateLoaded)

		idx := agg.Index(patch.Key)
		if idx >= 0 && !agg.Entries[idx].IsDeleted() {
			merged := patch.Apply(agg.Entries[idx])
			if err := s.validateEntry(k, merged); err != nil {
				return err
			}
			agg.Entries[idx] = merged
		} else {
			fresh := patch.NewEntry()
			if idx >= 0 {
				revived := patch.Apply(agg.Entries[idx])
				revived.DeletedAt = nil
				fresh = revived
				agg.Entries = append(agg.Entries[:idx:idx], agg.Entries[idx+1:]...)
			}
			if err := s.validateEntry(k, fresh); err != nil {
				return err
			}
			if patch.Order != nil {
				agg.Entries = ordering.InsertAt(agg.Entries, fresh, *patch.Order)
			} else {
				agg.Entries = ordering.Append(agg.Entries, fresh)
			}
		}

		entry = agg.Entries[agg.Index(patch.Key)]
		t.advance(StateApplied)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Result{Entry: &entry, Version: agg.Version, UpdatedAt: agg.UpdatedAt}, nil
}

// Remove deletes the entry with key and renumbers the rest. Kinds that keep
// tombstones mark the entry deleted instead of dropping it.
func (s *Service) Remove(ctx context.Context, actor domain.Actor, kind, key string, expected *int64) (res *Result, err error) {
	t := s.track(ctx, "remove", kind, actor, expected)
	defer func() { t.finish(err) }()

	k, err := s.precheck(ctx, actor, kind)
	if err != nil {
		return nil, err
	}
	t.advance(StateValidated)

	agg, err := s.store.Commit(ctx, kind, expected, func(agg *domain.Aggregate) error {
		t.advance(StateLoaded)

		var ok bool
		if k.Tombstones {
			agg.Entries, ok = ordering.Tombstone(agg.Entries, key, s.now())
		} else {
			idx := agg.Index(key)
			if idx >= 0 && !agg.Entries[idx].IsDeleted() {
				agg.Entries, ok = ordering.RemoveAndCompact(agg.Entries, key)
			}
		}
		if !ok {
			return domain.NewAppError(domain.CodeNotFound, "entry not found", nil)
		}

		t.advance(StateApplied)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Result{Version: agg.Version, UpdatedAt: agg.UpdatedAt}, nil
}

// Reorder positions the live entries of kind in the order of keys.
func (s *Service) Reorder(ctx context.Context, actor domain.Actor, kind string, keys []string, expected *int64) (view *View, err error) {
	t := s.track(ctx, "reorder", kind, actor, expected)
	defer func() { t.finish(err) }()

	if _, err := s.precheck(ctx, actor, kind); err != nil {
		return nil, err
	}
	t.advance(StateValidated)

	agg, err := s.store.Commit(ctx, kind, expected, func(agg *domain.Aggregate) error {
		t.advance(StateLoaded)

		reordered, err := ordering.Reorder(agg.Entries, keys)
		if err != nil {
			return err
		}
		agg.Entries = reordered

		t.advance(StateApplied)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return viewOf(agg), nil
}

// precheck resolves the kind and authorizes the actor before any work.
func (s *Service) precheck(ctx context.Context, actor domain.Actor, kind string) (Kind, error) {
	if err := domain.RequireRole(ctx, s.authz, actor, domain.RoleEditor); err != nil {
		return Kind{}, err
	}
	return LookupKind(kind)
}

// validateEntry runs the kind's rules against a fully merged entry.
func (s *Service) validateEntry(k Kind, e domain.Entry) error {
	err := s.validate.Struct(k.rules(e))
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return domain.NewAppError(domain.CodeInternal, "validate entry", err)
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		fields[fe.Field()] = msg
	}
	return domain.NewValidationError("invalid entry", fields)
}

func viewOf(agg domain.Aggregate) *View {
	return &View{
		Kind:      agg.Kind,
		Entries:   agg.Live(),
		Version:   agg.Version,
		UpdatedAt: agg.UpdatedAt,
	}
}

// tracker follows one mutation through its states.
type tracker struct {
	ctx    context.Context
	logger *slog.Logger
	op     string
	kind   string
	state  string
	start  time.Time
}

func (s *Service) track(ctx context.Context, op, kind string, actor domain.Actor, expected *int64) *tracker {
	attrs := []any{
		slog.String("op", op),
		slog.String("kind", kind),
		slog.String("actor", actor.ID),
	}
	if expected != nil {
		attrs = append(attrs, slog.Int64("expected_version", *expected))
	}
	t := &tracker{
		ctx:    ctx,
		logger: s.logger.With(attrs...),
		op:     op,
		kind:   kind,
		start:  time.Now(),
	}
	t.advance(StateReceived)
	return t
}

func (t *tracker) advance(state string) {
	t.state = state
	t.logger.DebugContext(t.ctx, "settings mutation", slog.String("state", state))
}

func (t *tracker) finish(err error) {
	state := finalState(err)
	label := t.kind
	if _, ok := kinds[label]; !ok {
		label = "unknown"
	}
	mutationOutcomes.WithLabelValues(label, t.op, state).Inc()

	attrs := []any{
		slog.String("state", state),
		slog.String("reached", t.state),
		slog.Duration("latency", time.Since(t.start)),
	}
	switch {
	case err == nil:
		t.logger.InfoContext(t.ctx, "settings mutation", attrs...)
	case domain.IsStorageUnavailable(err) || domain.IsInternal(err):
		t.logger.ErrorContext(t.ctx, "settings mutation", append(attrs, slog.String("error", err.Error()))...)
	default:
		t.logger.WarnContext(t.ctx, "settings mutation", append(attrs, slog.String("error", err.Error()))...)
	}
}
