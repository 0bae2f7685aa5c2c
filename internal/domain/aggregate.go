package domain

import (
	"regexp"
	"sort"
	"time"
)

// Aggregate is a singleton versioned document holding an ordered entry list.
type Aggregate struct {
	Kind      string    `json:"kind"`
	Entries   []Entry   `json:"entries"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy of a.
func (a Aggregate) Clone() Aggregate {
	out := a
	if a.Entries != nil {
		out.Entries = make([]Entry, len(a.Entries))
		for i, e := range a.Entries {
			out.Entries[i] = e.Clone()
		}
	}
	return out
}

// Live returns the non-deleted entries sorted by order.
func (a Aggregate) Live() []Entry {
	live := make([]Entry, 0, len(a.Entries))
	for _, e := range a.Entries {
		if !e.IsDeleted() {
			live = append(live, e.Clone())
		}
	}
	sort.SliceStable(live, func(i, j int) bool { return live[i].Order < live[j].Order })
	return live
}

// Index returns the position of key in a.Entries, or -1.
func (a Aggregate) Index(key string) int {
	for i, e := range a.Entries {
		if e.Key == key {
			return i
		}
	}
	return -1
}

// Entry is one ordered item inside an aggregate.
type Entry struct {
	Key         string     `json:"key"`
	Order       int        `json:"order"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Price       int64      `json:"price,omitempty"`
	Currency    string     `json:"currency,omitempty"`
	Platform    string     `json:"platform,omitempty"`
	URL         string     `json:"url,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	LinkURL     string     `json:"link_url,omitempty"`
	Active      bool       `json:"active"`
}

// IsDeleted reports whether e is a tombstone.
func (e Entry) IsDeleted() bool {
	return e.DeletedAt != nil
}

// Clone returns a copy of e that shares no pointers with it.
func (e Entry) Clone() Entry {
	if e.DeletedAt != nil {
		t := *e.DeletedAt
		e.DeletedAt = &t
	}
	return e
}

// EntryPatch is a partial entry. Nil fields are left unchanged by Apply.
type EntryPatch struct {
	Key         string  `json:"key"`
	Order       *int    `json:"order,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *int64  `json:"price,omitempty"`
	Currency    *string `json:"currency,omitempty"`
	Platform    *string `json:"platform,omitempty"`
	URL         *string `json:"url,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	LinkURL     *string `json:"link_url,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

// Apply merges the patch's payload fields into e. Key, Order and DeletedAt are
// positional and are never touched here.
func (p EntryPatch) Apply(e Entry) Entry {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Price != nil {
		e.Price = *p.Price
	}
	if p.Currency != nil {
		e.Currency = *p.Currency
	}
	if p.Platform != nil {
		e.Platform = *p.Platform
	}
	if p.URL != nil {
		e.URL = *p.URL
	}
	if p.ImageURL != nil {
		e.ImageURL = *p.ImageURL
	}
	if p.LinkURL != nil {
		e.LinkURL = *p.LinkURL
	}
	if p.Active != nil {
		e.Active = *p.Active
	}
	return e
}

// NewEntry builds a fresh entry from the patch. New entries default to active.
func (p EntryPatch) NewEntry() Entry {
	return p.Apply(Entry{Key: p.Key, Active: true})
}

var entryKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// ValidEntryKey reports whether key is an acceptable entry key.
func ValidEntryKey(key string) bool {
	return entryKeyPattern.MatchString(key)
}
