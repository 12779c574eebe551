package complaint

import (
	"github.com/bwise1/complaint_portal/internal/model"
	"github.com/bwise1/complaint_portal/internal/vote"
)

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

func PriorityOf(net int) Priority {
	switch {
	case net > 50:
		return PriorityHigh
	case net > 25:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Triage attaches the net vote count and priority to each complaint.
func Triage(complaints []model.Complaint) []model.AdminComplaint {
	out := make([]model.AdminComplaint, 0, len(complaints))
	for _, c := range complaints {
		net := vote.Tally(c.Votes)
		out = append(out, model.AdminComplaint{
			Complaint: c,
			NetVotes:  net,
			Priority:  string(PriorityOf(net)),
		})
	}
	return out
}
