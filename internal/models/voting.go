package models

import (
	"time"

	"github.com/google/uuid"
)

type TopicStatus string

const (
	TopicStatusDraft  TopicStatus = "draft"
	TopicStatusActive TopicStatus = "active"
	TopicStatusClosed TopicStatus = "closed"
)

// topicTransitions lists every legal status change. closed is terminal.
var topicTransitions = map[TopicStatus][]TopicStatus{
	TopicStatusDraft:  {TopicStatusActive, TopicStatusClosed},
	TopicStatusActive: {TopicStatusClosed},
	TopicStatusClosed: nil,
}

// CanTransitionTo reports whether status may move to next.
func (s TopicStatus) CanTransitionTo(next TopicStatus) bool {
	for _, allowed := range topicTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type VotingTopic struct {
	ID                 uuid.UUID   `json:"id" db:"id"`
	AssociationID      uuid.UUID   `json:"association_id" db:"association_id"`
	Title              string      `json:"title" db:"title"`
	Description        string      `json:"description" db:"description"`
	Options            []string    `json:"options" db:"options"`
	CreatedBy          string      `json:"created_by" db:"created_by"`
	StartsAt           time.Time   `json:"starts_at" db:"starts_at"`
	EndsAt             time.Time   `json:"ends_at" db:"ends_at"`
	Status             TopicStatus `json:"status" db:"status"`
	AllowMultipleVotes bool        `json:"allow_multiple_votes" db:"allow_multiple_votes"`
	Visibility         Visibility  `json:"visibility" db:"visibility"`
	IsProposal         bool        `json:"is_proposal" db:"is_proposal"`
	ActivatedAt        *time.Time  `json:"activated_at" db:"activated_at"`
	ClosedAt           *time.Time  `json:"closed_at" db:"closed_at"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at" db:"updated_at"`
}

// HasOption reports whether option is one of the declared choices.
func (t *VotingTopic) HasOption(option string) bool {
	for _, o := range t.Options {
		if o == option {
			return true
		}
	}
	return false
}

// Vote is one member's ballot on one topic. It is never modified once cast.
type Vote struct {
	ID            uuid.UUID `json:"id" db:"id"`
	AssociationID uuid.UUID `json:"association_id" db:"association_id"`
	TopicID       uuid.UUID `json:"topic_id" db:"topic_id"`
	MemberID      uuid.UUID `json:"member_id" db:"member_id"`
	Options       []string  `json:"options" db:"options"`
	CastAt        time.Time `json:"cast_at" db:"cast_at"`
}

type OptionResult struct {
	Option string `json:"option"`
	Count  int    `json:"count"`
}

// TopicResults is the tally for a topic. TotalVotes counts ballots, not
// selections, so the sum of Counts exceeds it when ballots pick several options.
type TopicResults struct {
	TopicID    uuid.UUID      `json:"topic_id"`
	Title      string         `json:"title"`
	Status     TopicStatus    `json:"status"`
	Results    []OptionResult `json:"results"`
	Counts     map[string]int `json:"counts"`
	TotalVotes int            `json:"total_votes"`
}
