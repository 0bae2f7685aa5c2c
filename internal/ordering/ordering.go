// Package ordering keeps the entries of an aggregate densely numbered.
//
// Every function is pure: it returns a fresh slice and leaves its input
// untouched. Live entries come first sorted by order and numbered 0..n-1;
// tombstones follow in their input position with order -1.
package ordering

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/simp-lee/touradmin/internal/domain"
)

// TombstoneOrder is the order value carried by deleted entries.
const TombstoneOrder = -1

// KeySetError reports a reorder request whose keys are not a permutation of
// the live entry keys.
type KeySetError struct {
	Missing   []string
	Extra     []string
	Duplicate []string
}

// Error implements the error interface.
func (e *KeySetError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ","))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, "extra "+strings.Join(e.Extra, ","))
	}
	if len(e.Duplicate) > 0 {
		parts = append(parts, "duplicate "+strings.Join(e.Duplicate, ","))
	}
	return fmt.Sprintf("invalid key set: %s", strings.Join(parts, "; "))
}

// Unwrap exposes the error as a validation AppError.
func (e *KeySetError) Unwrap() error {
	fields := make(map[string]string, 3)
	if len(e.Missing) > 0 {
		fields["missing"] = strings.Join(e.Missing, ",")
	}
	if len(e.Extra) > 0 {
		fields["extra"] = strings.Join(e.Extra, ",")
	}
	if len(e.Duplicate) > 0 {
		fields["duplicate"] = strings.Join(e.Duplicate, ",")
	}
	return domain.NewValidationError("invalid key set", fields)
}

// Compact renumbers live entries 0..n-1 by their current order. Entries with
// equal order keep their input position.
func Compact(entries []domain.Entry) []domain.Entry {
	live, dead := split(entries)
	sort.SliceStable(live, func(i, j int) bool { return live[i].Order < live[j].Order })
	return join(live, dead)
}

// Reorder positions live entries in the order of keys. keys must name every
// live entry exactly once.
func Reorder(entries []domain.Entry, keys []string) ([]domain.Entry, error) {
	live, dead := split(entries)

	byKey := make(map[string]domain.Entry, len(live))
	for _, e := range live {
		byKey[e.Key] = e
	}

	var ks KeySetError
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			if !slices.Contains(ks.Duplicate, k) {
				ks.Duplicate = append(ks.Duplicate, k)
			}
			continue
		}
		seen[k] = true
		if _, ok := byKey[k]; !ok {
			ks.Extra = append(ks.Extra, k)
		}
	}
	for _, e := range live {
		if !seen[e.Key] {
			ks.Missing = append(ks.Missing, e.Key)
		}
	}
	if len(ks.Missing) > 0 || len(ks.Extra) > 0 || len(ks.Duplicate) > 0 {
		return nil, &ks
	}

	ordered := make([]domain.Entry, 0, len(keys))
	for _, k := range keys {
		ordered = append(ordered, byKey[k])
	}
	return join(ordered, dead), nil
}

// InsertAt places e at position order, shifting later entries down by one.
// A negative order inserts at the front; an order past the end appends.
func InsertAt(entries []domain.Entry, e domain.Entry, order int) []domain.Entry {
	live, dead := split(entries)
	sort.SliceStable(live, func(i, j int) bool { return live[i].Order < live[j].Order })

	e = e.Clone()
	e.DeletedAt = nil
	order = max(order, 0)
	order = min(order, len(live))

	out := make([]domain.Entry, 0, len(live)+1)
	out = append(out, live[:order]...)
	out = append(out, e)
	out = append(out, live[order:]...)
	return join(out, dead)
}

// Append places e after every live entry.
func Append(entries []domain.Entry, e domain.Entry) []domain.Entry {
	return InsertAt(entries, e, len(entries))
}

// RemoveAndCompact drops the entry with key and renumbers the rest. It
// reports false when no entry has that key.
func RemoveAndCompact(entries []domain.Entry, key string) ([]domain.Entry, bool) {
	idx := indexOf(entries, key)
	if idx < 0 {
		return clone(entries), false
	}
	rest := make([]domain.Entry, 0, len(entries)-1)
	rest = append(rest, entries[:idx]...)
	rest = append(rest, entries[idx+1:]...)
	return Compact(rest), true
}

// Tombstone marks the live entry with key as deleted at the given time and
// renumbers the rest. It reports false when no live entry has that key.
func Tombstone(entries []domain.Entry, key string, at time.Time) ([]domain.Entry, bool) {
	idx := indexOf(entries, key)
	if idx < 0 || entries[idx].IsDeleted() {
		return clone(entries), false
	}
	out := clone(entries)
	stamp := at
	out[idx].DeletedAt = &stamp
	out[idx].Order = TombstoneOrder
	return Compact(out), true
}

// split copies entries into live and tombstoned slices.
func split(entries []domain.Entry) (live, dead []domain.Entry) {
	live = make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsDeleted() {
			dead = append(dead, e.Clone())
			continue
		}
		live = append(live, e.Clone())
	}
	return live, dead
}

// join renumbers live in slice order and appends the tombstones.
func join(live, dead []domain.Entry) []domain.Entry {
	out := make([]domain.Entry, 0, len(live)+len(dead))
	for i, e := range live {
		e.Order = i
		out = append(out, e)
	}
	for _, e := range dead {
		e.Order = TombstoneOrder
		out = append(out, e)
	}
	return out
}

func indexOf(entries []domain.Entry, key string) int {
	for i, e := range entries {
		if e.Key == key {
			return i
		}
	}
	return -1
}

func clone(entries []domain.Entry) []domain.Entry {
	out := make([]domain.Entry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}
