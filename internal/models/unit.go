package models

import (
	"time"

	"github.com/google/uuid"
)

type UnitStatus string

const (
	UnitStatusActive   UnitStatus = "active"
	UnitStatusInactive UnitStatus = "inactive"
	UnitStatusVacant   UnitStatus = "vacant"
)

type Unit struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	AssociationID uuid.UUID  `json:"association_id" db:"association_id"`
	Name          string     `json:"name" db:"name"`
	Building      *string    `json:"building" db:"building"`
	Floor         *string    `json:"floor" db:"floor"`
	Type          *string    `json:"type" db:"type"`
	Size          *float64   `json:"size" db:"size"`
	Status        UnitStatus `json:"status" db:"status"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}
