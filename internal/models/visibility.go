package models

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// VisibilityKind selects who may see a document or voting topic.
type VisibilityKind string

const (
	VisibilityAll   VisibilityKind = "all"
	VisibilityUnits VisibilityKind = "units"
	VisibilityAdmin VisibilityKind = "admin"
)

// Visibility is shared by documents and voting topics. UnitIDs is only
// meaningful when Kind is VisibilityUnits.
type Visibility struct {
	Kind    VisibilityKind `json:"kind"`
	UnitIDs []uuid.UUID    `json:"unit_ids,omitempty"`
}

func VisibleToAll() Visibility {
	return Visibility{Kind: VisibilityAll}
}

func VisibleToAdmins() Visibility {
	return Visibility{Kind: VisibilityAdmin}
}

func VisibleToUnits(unitIDs ...uuid.UUID) Visibility {
	return Visibility{Kind: VisibilityUnits, UnitIDs: unitIDs}
}

// Validate rejects combinations the three cases do not allow.
func (v Visibility) Validate() error {
	switch v.Kind {
	case VisibilityAll, VisibilityAdmin:
		if len(v.UnitIDs) > 0 {
			return errors.New("unit list is only allowed for unit visibility")
		}
		return nil
	case VisibilityUnits:
		if len(v.UnitIDs) == 0 {
			return errors.New("unit visibility requires at least one unit")
		}
		return nil
	default:
		return errors.New("visibility must be one of: all, units, admin")
	}
}

// AllowsMember reports whether a non-admin holding unitIDs may see the item.
// Admin callers bypass this check entirely.
func (v Visibility) AllowsMember(unitIDs []uuid.UUID) bool {
	switch v.Kind {
	case VisibilityAll:
		return true
	case VisibilityUnits:
		for _, allowed := range v.UnitIDs {
			for _, held := range unitIDs {
				if allowed == held {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}

// UnmarshalJSON treats a null or empty descriptor as visible to all, which is
// how rows written before visibility existed are read back.
func (v *Visibility) UnmarshalJSON(data []byte) error {
	type raw Visibility
	var r raw
	if string(data) == "null" || len(data) == 0 {
		*v = VisibleToAll()
		return nil
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	if r.Kind == "" {
		r.Kind = VisibilityAll
	}
	*v = Visibility(r)
	return nil
}
