package models

import (
	"time"

	"github.com/google/uuid"
)

// JSONB is a free-form JSON object stored in a jsonb column.
type JSONB map[string]interface{}

// AuditLog is an append-only record of an action in an association.
type AuditLog struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	AssociationID uuid.UUID  `json:"association_id" db:"association_id"`
	UserID        string     `json:"user_id" db:"user_id"`
	MemberID      *uuid.UUID `json:"member_id" db:"member_id"`
	Action        string     `json:"action" db:"action"`
	EntityType    string     `json:"entity_type" db:"entity_type"`
	EntityID      *string    `json:"entity_id" db:"entity_id"`
	Description   string     `json:"description" db:"description"`
	Metadata      JSONB      `json:"metadata" db:"metadata"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// Audit actions
const (
	AuditAssociationCreated     = "association.created"
	AuditAssociationUpdated     = "association.updated"
	AuditAssociationSuspended   = "association.suspended"
	AuditAssociationReactivated = "association.reactivated"
	AuditSubscriptionChanged    = "association.subscription_changed"
	AuditMembershipUpdated      = "membership.updated"
	AuditMembershipRemoved      = "membership.removed"
	AuditMemberInvited          = "member.invited"
	AuditMemberJoined           = "member.joined"
	AuditMemberUpdated          = "member.updated"
	AuditMemberRemoved          = "member.removed"
	AuditUnitCreated            = "unit.created"
	AuditUnitUpdated            = "unit.updated"
	AuditUnitDeleted            = "unit.deleted"
	AuditUnitAssigned           = "unit.assigned"
	AuditUnitUnassigned         = "unit.unassigned"
	AuditDocumentCreated        = "document.created"
	AuditDocumentUpdated        = "document.updated"
	AuditDocumentDeleted        = "document.deleted"
	AuditTopicCreated           = "voting.topic_created"
	AuditTopicProposed          = "voting.topic_proposed"
	AuditTopicActivated         = "voting.topic_activated"
	AuditTopicClosed            = "voting.topic_closed"
	AuditTopicDeleted           = "voting.topic_deleted"
	AuditVoteCast               = "voting.vote_cast"
	AuditMeetingCreated         = "meeting.created"
	AuditMeetingUpdated         = "meeting.updated"
	AuditMeetingDeleted         = "meeting.deleted"
	AuditMeetingTransitioned    = "meeting.status_changed"
	AuditMeetingRSVP            = "meeting.rsvp"
)

// Entity types
const (
	EntityAssociation = "association"
	EntityMembership  = "membership"
	EntityMember      = "member"
	EntityUnit        = "unit"
	EntityDocument    = "document"
	EntityVotingTopic = "voting_topic"
	EntityVote        = "vote"
	EntityMeeting     = "meeting"
	EntityAttendance  = "meeting_attendance"
)

// AuditLogFilters narrows an audit log query.
type AuditLogFilters struct {
	Action     *string    `json:"action"`
	EntityType *string    `json:"entity_type"`
	EntityID   *string    `json:"entity_id"`
	UserID     *string    `json:"user_id"`
	Since      *time.Time `json:"since"`
	Until      *time.Time `json:"until"`
	Limit      int        `json:"limit"`
	Offset     int        `json:"offset"`
}
