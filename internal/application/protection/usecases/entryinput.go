package usecases

import (
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/protection"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
)

// AccessEntryInput is one requested grant in a protect or update command.
// Exactly one of AccessLevel, UserID, GroupID must be set. On updates, ID
// addresses an existing entry and Destroy removes it.
type AccessEntryInput struct {
	ID                uint
	AccessLevel       int
	UserID            uint
	GroupID           uint
	GroupInheritance  int
	RequiredApprovals int
	Destroy           bool
}

func (in AccessEntryInput) toEntry() (*protection.AccessEntry, error) {
	set := 0
	if in.AccessLevel != 0 {
		set++
	}
	if in.UserID != 0 {
		set++
	}
	if in.GroupID != 0 {
		set++
	}
	if set != 1 {
		return nil, errors.NewValidationError(
			"access entry must set exactly one of access_level, user_id, group_id")
	}

	switch {
	case in.UserID != 0:
		entry, err := protection.NewUserEntry(in.UserID)
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
		return entry, nil
	case in.GroupID != 0:
		entry, err := protection.NewGroupEntry(in.GroupID, protection.GroupInheritanceType(in.GroupInheritance))
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
		return entry, nil
	default:
		level, ok := membership.ParseAccessLevel(in.AccessLevel)
		if !ok {
			return nil, errors.NewValidationError("invalid access level").
				WithField("access_level", "is not a valid access level")
		}
		entry, err := protection.NewRoleEntry(level)
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
		return entry, nil
	}
}

// buildEntries converts creation inputs; Destroy and ID are rejected here
// because nothing exists yet to address.
func buildEntries(inputs []AccessEntryInput) ([]*protection.AccessEntry, error) {
	entries := make([]*protection.AccessEntry, 0, len(inputs))
	for _, in := range inputs {
		if in.Destroy || in.ID != 0 {
			return nil, errors.NewValidationError("cannot address existing entries on create")
		}
		entry, err := in.toEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// applyEntryChanges folds nested create/update/destroy inputs into an
// existing entry list. Inputs with an ID replace (or with Destroy remove)
// the addressed entry; inputs without an ID append.
func applyEntryChanges(current []*protection.AccessEntry, inputs []AccessEntryInput) ([]*protection.AccessEntry, error) {
	byID := make(map[uint]*protection.AccessEntry, len(current))
	order := make([]uint, 0, len(current))
	for _, e := range current {
		byID[e.ID()] = e
		order = append(order, e.ID())
	}

	var appended []*protection.AccessEntry
	for _, in := range inputs {
		if in.ID != 0 {
			if _, ok := byID[in.ID]; !ok {
				return nil, errors.NewNotFoundError("access entry not found")
			}
			if in.Destroy {
				delete(byID, in.ID)
				continue
			}
			entry, err := in.toEntry()
			if err != nil {
				return nil, err
			}
			byID[in.ID] = entry
			continue
		}
		entry, err := in.toEntry()
		if err != nil {
			return nil, err
		}
		appended = append(appended, entry)
	}

	result := make([]*protection.AccessEntry, 0, len(byID)+len(appended))
	for _, id := range order {
		if e, ok := byID[id]; ok {
			result = append(result, e)
		}
	}
	result = append(result, appended...)
	return result, nil
}
