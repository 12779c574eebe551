// Package complaint narrows complaint listings by user criteria and
// classifies them for triage.
package complaint

import (
	"github.com/bwise1/complaint_portal/internal/model"
	"github.com/google/uuid"
)

type predicate func(model.Complaint) bool

// Filter applies every set criterion as a narrowing pass over the
// survivors of the previous one. Empty criteria return the input slice
// itself.
func Filter(complaints []model.Complaint, c Criteria) []model.Complaint {
	if c.IsEmpty() {
		return complaints
	}

	out := complaints
	for _, p := range c.passes() {
		out = keep(out, p)
	}
	return out
}

func (c Criteria) passes() []predicate {
	var ps []predicate
	if c.CreatedBefore != nil {
		before := *c.CreatedBefore
		ps = append(ps, func(x model.Complaint) bool { return x.CreatedAt.Before(before) })
	}
	if c.Category != "" {
		ps = append(ps, func(x model.Complaint) bool { return x.Category == c.Category })
	}
	if c.SubCategory != "" {
		ps = append(ps, func(x model.Complaint) bool { return x.SubCategory == c.SubCategory })
	}
	if c.Status != nil {
		status := *c.Status
		ps = append(ps, func(x model.Complaint) bool { return x.Status == status })
	}
	if c.HasImage {
		ps = append(ps, model.Complaint.HasImage)
	}
	return ps
}

// Public keeps complaints visible to everyone.
func Public(complaints []model.Complaint) []model.Complaint {
	return keep(complaints, func(x model.Complaint) bool { return x.IsPublic })
}

// OwnedBy keeps complaints submitted by userID.
func OwnedBy(complaints []model.Complaint, userID uuid.UUID) []model.Complaint {
	return keep(complaints, func(x model.Complaint) bool { return x.UserID == userID })
}

func keep(in []model.Complaint, p predicate) []model.Complaint {
	out := make([]model.Complaint, 0, len(in))
	for _, x := range in {
		if p(x) {
			out = append(out, x)
		}
	}
	return out
}
