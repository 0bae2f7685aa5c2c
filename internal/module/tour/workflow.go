package tour

import (
	"fmt"

	"github.com/simp-lee/touradmin/internal/domain"
	"github.com/simp-lee/touradmin/internal/lifecycle"
)

// Review transition names.
const (
	Submit    = "submit"
	Approve   = "approve"
	Reject    = "reject"
	Suspend   = "suspend"
	Reinstate = "reinstate"
)

// Transitions returns the tour review workflow.
func Transitions() []lifecycle.Transition[*domain.Tour] {
	return []lifecycle.Transition[*domain.Tour]{
		{
			Name: Submit,
			From: []string{domain.TourDraft, domain.TourRejected},
			To:   domain.TourPending,
			Role: domain.RoleEditor,
		},
		{
			Name:   Approve,
			From:   []string{domain.TourPending},
			To:     domain.TourApproved,
			Role:   domain.RoleAdmin,
			Notify: guideNotice("approved"),
		},
		{
			Name:          Reject,
			From:          []string{domain.TourPending},
			To:            domain.TourRejected,
			RequireReason: true,
			Role:          domain.RoleAdmin,
			Notify:        guideNotice("rejected"),
		},
		{
			Name:          Suspend,
			From:          []string{domain.TourApproved},
			To:            domain.TourSuspended,
			RequireReason: true,
			Role:          domain.RoleAdmin,
			Notify:        guideNotice("suspended"),
		},
		{
			Name:   Reinstate,
			From:   []string{domain.TourSuspended},
			To:     domain.TourApproved,
			Role:   domain.RoleAdmin,
			Notify: guideNotice("reinstated"),
		},
	}
}

func guideNotice(verb string) func(*domain.Tour, string) *domain.Notification {
	return func(t *domain.Tour, reason string) *domain.Notification {
		if t.GuideEmail == "" {
			return nil
		}
		body := fmt.Sprintf("Hello %s,\n\nyour tour %q has been %s.", t.GuideName, t.Title, verb)
		if reason != "" {
			body += "\n\nReason: " + reason
		}
		return &domain.Notification{
			Recipient: t.GuideEmail,
			Subject:   fmt.Sprintf("Your tour was %s", verb),
			Body:      body,
		}
	}
}
