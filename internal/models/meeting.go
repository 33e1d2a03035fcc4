package models

import (
	"time"

	"github.com/google/uuid"
)

type MeetingType string

const (
	MeetingTypeAGM     MeetingType = "agm"
	MeetingTypeEGM     MeetingType = "egm"
	MeetingTypeBoard   MeetingType = "board"
	MeetingTypeGeneral MeetingType = "general"
)

func (t MeetingType) Valid() bool {
	switch t {
	case MeetingTypeAGM, MeetingTypeEGM, MeetingTypeBoard, MeetingTypeGeneral:
		return true
	}
	return false
}

type MeetingStatus string

const (
	MeetingStatusDraft     MeetingStatus = "draft"
	MeetingStatusScheduled MeetingStatus = "scheduled"
	MeetingStatusCompleted MeetingStatus = "completed"
	MeetingStatusArchived  MeetingStatus = "archived"
	MeetingStatusCancelled MeetingStatus = "cancelled"
)

// MeetingAction is a lifecycle command applied to a meeting.
type MeetingAction string

const (
	MeetingActionSchedule MeetingAction = "schedule"
	MeetingActionComplete MeetingAction = "complete"
	MeetingActionArchive  MeetingAction = "archive"
	MeetingActionCancel   MeetingAction = "cancel"
)

type meetingEdge struct {
	from   MeetingStatus
	action MeetingAction
}

// meetingTransitions is the complete lifecycle. Any (status, action) pair
// missing here is illegal.
var meetingTransitions = map[meetingEdge]MeetingStatus{
	{MeetingStatusDraft, MeetingActionSchedule}:     MeetingStatusScheduled,
	{MeetingStatusScheduled, MeetingActionComplete}: MeetingStatusCompleted,
	{MeetingStatusCompleted, MeetingActionArchive}:  MeetingStatusArchived,
	{MeetingStatusDraft, MeetingActionCancel}:       MeetingStatusCancelled,
	{MeetingStatusScheduled, MeetingActionCancel}:   MeetingStatusCancelled,
}

// NextMeetingStatus returns the status reached by applying action to from.
func NextMeetingStatus(from MeetingStatus, action MeetingAction) (MeetingStatus, bool) {
	next, ok := meetingTransitions[meetingEdge{from, action}]
	return next, ok
}

type AgendaItemType string

const (
	AgendaItemDiscussion   AgendaItemType = "discussion"
	AgendaItemVoting       AgendaItemType = "voting"
	AgendaItemPresentation AgendaItemType = "presentation"
	AgendaItemOther        AgendaItemType = "other"
)

func (t AgendaItemType) Valid() bool {
	switch t {
	case AgendaItemDiscussion, AgendaItemVoting, AgendaItemPresentation, AgendaItemOther:
		return true
	}
	return false
}

type AgendaItem struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Description     *string        `json:"description,omitempty"`
	Type            AgendaItemType `json:"type"`
	DurationMinutes *int           `json:"duration_minutes,omitempty"`
	VotingTopicID   *uuid.UUID     `json:"voting_topic_id,omitempty"`
	DocumentIDs     []uuid.UUID    `json:"document_ids,omitempty"`
}

type InviteScopeKind string

const (
	InviteAllMembers InviteScopeKind = "all"
	InviteUnits      InviteScopeKind = "units"
)

// InviteScope is either every member or the holders of the listed units.
type InviteScope struct {
	Kind    InviteScopeKind `json:"kind"`
	UnitIDs []uuid.UUID     `json:"unit_ids,omitempty"`
}

type Meeting struct {
	ID                uuid.UUID     `json:"id" db:"id"`
	AssociationID     uuid.UUID     `json:"association_id" db:"association_id"`
	Title             string        `json:"title" db:"title"`
	Description       *string       `json:"description" db:"description"`
	Type              MeetingType   `json:"type" db:"type"`
	ScheduledAt       time.Time     `json:"scheduled_at" db:"scheduled_at"`
	Location          *string       `json:"location" db:"location"`
	Status            MeetingStatus `json:"status" db:"status"`
	Agenda            []AgendaItem  `json:"agenda" db:"agenda"`
	InviteScope       InviteScope   `json:"invite_scope" db:"invite_scope"`
	NotificationsSent bool          `json:"notifications_sent" db:"notifications_sent"`
	ReminderSent      bool          `json:"reminder_sent" db:"reminder_sent"`
	AttendanceCount   *int          `json:"attendance_count" db:"attendance_count"`
	Notes             *string       `json:"notes" db:"notes"`
	CreatedBy         string        `json:"created_by" db:"created_by"`
	LastActionBy      *string       `json:"last_action_by" db:"last_action_by"`
	ScheduledStatusAt *time.Time    `json:"scheduled_status_at" db:"scheduled_status_at"`
	CompletedAt       *time.Time    `json:"completed_at" db:"completed_at"`
	ArchivedAt        *time.Time    `json:"archived_at" db:"archived_at"`
	CancelledAt       *time.Time    `json:"cancelled_at" db:"cancelled_at"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" db:"updated_at"`
}

type RSVPStatus string

const (
	RSVPAttending    RSVPStatus = "attending"
	RSVPNotAttending RSVPStatus = "not_attending"
	RSVPMaybe        RSVPStatus = "maybe"
)

func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPAttending, RSVPNotAttending, RSVPMaybe:
		return true
	}
	return false
}

type MeetingAttendance struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	AssociationID uuid.UUID  `json:"association_id" db:"association_id"`
	MeetingID     uuid.UUID  `json:"meeting_id" db:"meeting_id"`
	MemberID      uuid.UUID  `json:"member_id" db:"member_id"`
	Status        RSVPStatus `json:"status" db:"status"`
	Notes         *string    `json:"notes" db:"notes"`
	RespondedAt   time.Time  `json:"responded_at" db:"responded_at"`
}

type AttendanceStats struct {
	Total        int `json:"total"`
	Attending    int `json:"attending"`
	NotAttending int `json:"not_attending"`
	Maybe        int `json:"maybe"`
	NoResponse   int `json:"no_response"`
	TotalMembers int `json:"total_members"`
}
