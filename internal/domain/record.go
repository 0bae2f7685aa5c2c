package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// Owned record types, used in audit events and asset ownership.
const (
	RecordArticle  = "article"
	RecordComment  = "comment"
	RecordTour     = "tour"
	RecordEmployee = "employee"
)

// Article is an editorial post with optional cover assets.
type Article struct {
	RecordModel
	Title  string  `gorm:"size:200;not null" json:"title"`
	Slug   string  `gorm:"size:200;index;not null" json:"slug"`
	Body   string  `gorm:"type:text" json:"body"`
	Author string  `gorm:"size:100" json:"author"`
	Status string  `gorm:"size:16;not null;default:draft" json:"status"`
	Assets []Asset `gorm:"-" json:"assets,omitempty"`
}

// RecordType implements the lifecycle record contract.
func (*Article) RecordType() string { return RecordArticle }

// Comment belongs to an article and optionally replies to a parent comment.
// A parent keeps the ids of its live replies in ReplyIDs.
type Comment struct {
	RecordModel
	ArticleID string     `gorm:"size:36;index;not null" json:"article_id"`
	ParentID  *string    `gorm:"size:36;index" json:"parent_id,omitempty"`
	Author    string     `gorm:"size:100;not null" json:"author"`
	Body      string     `gorm:"type:text;not null" json:"body"`
	ReplyIDs  StringList `gorm:"type:text" json:"reply_ids"`
}

// RecordType implements the lifecycle record contract.
func (*Comment) RecordType() string { return RecordComment }

// Employee is a staff member who belongs to teams through memberships.
type Employee struct {
	RecordModel
	Name        string       `gorm:"size:100;not null" json:"name"`
	Email       string       `gorm:"size:255;index;not null" json:"email"`
	Position    string       `gorm:"size:100" json:"position"`
	Company     string       `gorm:"size:100" json:"company"`
	Memberships []Membership `gorm:"-" json:"memberships,omitempty"`
}

// RecordType implements the lifecycle record contract.
func (*Employee) RecordType() string { return RecordEmployee }

// Membership links an employee to a team. A detached membership is hidden
// while its employee is deleted and comes back on restore.
type Membership struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	EmployeeID string     `gorm:"size:36;not null;uniqueIndex:idx_membership_team,priority:1" json:"employee_id"`
	Team       string     `gorm:"size:100;not null;uniqueIndex:idx_membership_team,priority:2" json:"team"`
	Role       string     `gorm:"size:50" json:"role"`
	DetachedAt *time.Time `gorm:"index" json:"detached_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// StringList is a list of strings stored as a JSON text column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("StringList: unsupported scan type %T", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*l = out
	return nil
}

// Contains reports whether s is in the list.
func (l StringList) Contains(s string) bool {
	return slices.Contains(l, s)
}

// Without returns a copy of l with every occurrence of s removed.
func (l StringList) Without(s string) StringList {
	out := make(StringList, 0, len(l))
	for _, v := range l {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
