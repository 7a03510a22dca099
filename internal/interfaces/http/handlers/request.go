package handlers

import (
	protusecases "github.com/forgegate-inc/forgegate/internal/application/protection/usecases"
)

// accessEntryRequest is the wire form of one requested access grant. It is
// shared by the branch and environment endpoints; required_approvals only
// means something for environment approval rules.
type accessEntryRequest struct {
	ID                uint `json:"id"`
	AccessLevel       int  `json:"access_level"`
	UserID            uint `json:"user_id"`
	GroupID           uint `json:"group_id"`
	GroupInheritance  int  `json:"group_inheritance_type"`
	RequiredApprovals int  `json:"required_approvals"`
	Destroy           bool `json:"_destroy"`
}

func toEntryInputs(reqs []accessEntryRequest) []protusecases.AccessEntryInput {
	if len(reqs) == 0 {
		return nil
	}
	inputs := make([]protusecases.AccessEntryInput, 0, len(reqs))
	for _, r := range reqs {
		inputs = append(inputs, protusecases.AccessEntryInput{
			ID:                r.ID,
			AccessLevel:       r.AccessLevel,
			UserID:            r.UserID,
			GroupID:           r.GroupID,
			GroupInheritance:  r.GroupInheritance,
			RequiredApprovals: r.RequiredApprovals,
			Destroy:           r.Destroy,
		})
	}
	return inputs
}
