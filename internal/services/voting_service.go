package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"assochub/internal/models"
	"assochub/internal/repositories"

	"github.com/google/uuid"
)

type VotingService interface {
	CreateTopic(ctx context.Context, associationID uuid.UUID, caller *models.Identity, req *TopicRequest) (*models.VotingTopic, error)
	ProposeTopic(ctx context.Context, associationID uuid.UUID, caller *models.Identity, req *TopicRequest) (*models.VotingTopic, error)
	ActivateTopic(ctx context.Context, associationID, topicID uuid.UUID, caller *models.Identity) (*models.VotingTopic, error)
	CloseTopic(ctx context.Context, associationID, topicID uuid.UUID, caller *models.Identity) (*models.VotingTopic, error)
	DeleteTopic(ctx context.Context, associationID, topicID uuid.UUID, caller *models.Identity) error
	ListTopics(ctx context.Context, associationID uuid.UUID, caller *models.Identity, status *models.TopicStatus) ([]*models.VotingTopic, error)
	GetTopic(ctx context.Context, associationID, topicID uuid.UUID, caller *models.Identity) (*models.VotingTopic, error)

	CastVote(ctx context.Context, associationID, topicID uuid.UUID, caller *models.Identity, options []string) (*models.Vote, error)
	GetMyVote(ctx context.Context, associationID, topicID uuid.UUID, caller *models.Identity) (*models.Vote, error)
	GetResults(ctx context.Context, associationID, topicID uuid.UUID, caller *models.Identity) (*models.TopicResults, error)
}

type votingService struct {
	votingRepo repositories.VotingRepository
	unitRepo   repositories.UnitRepository
	access     AccessService
	audit      AuditLogsService
	now        func() time.Time
}

func NewVotingService(
	votingRepo repositories.VotingRepository,
	unitRepo repositories.UnitRepository,
	access AccessService,
	audit AuditLogsService,
) VotingService {
	return &votingService{
		votingRepo: votingRepo,
		unitRepo:   unitRepo,
		access:     access,
		audit:      audit,
		now:        time.Now,
	}
}

type TopicRequest struct {
	Title              string             `json:"title" validate:"required,max=200"`
	Description        string             `json:"description" validate:"max=5000"`
	Options            []string           `json:"options" validate:"required,min=2,max=20"`
	StartsAt           time.Time          `json:"starts_at" validate:"required"`
	EndsAt             time.Time          `json:"ends_at" validate:"required"`
	AllowMultipleVotes bool               `json:"allow_multiple_votes"`
	Visibility         *models.Visibility `json:"visibility"`
}

// normalizeTopic trims the request in place and checks it.
func normalizeTopic(req *TopicRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return Validation("Title is required")
	}
	req.Description = strings.TrimSpace(req.Description)

	seen := make(map[string]bool, len(req.Options))
	options := make([]string, 0, len(req.Options))
	for _, o := range req.Options {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if seen[o] {
			return Validation("Duplicate option: %s", o)
		}
		seen[o] = true
		options = append(options, o)
	}
	if len(options) < 2 {
		return Validation("At least two options are required")
	}
	req.Options = options

	if !req.EndsAt.After(req.StartsAt) {
		return Validation("End time must be after start time")
	}

	if req.Visibility == nil {
		all := models.VisibleToAll()
		req.Visibility = &all
	}
	if err := req.Visibility.Validate(); err != nil {
		return Validation("%s", err.Error())
	}
	return nil
}

func (s *votingService) CreateTopic(ctx context.Context, associationID uuid.UUID, caller *models.Identity, req *TopicRequest) (*models.VotingTopic, error) {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return nil, err
	}
	return s.insertTopic(ctx, associationID, caller, req, false)
}

// ProposeTopic lets any active member submit a draft. Other non-admins cannot
// see it until an admin activates it.
func (s *votingService) ProposeTopic(ctx context.Context, associationID uuid.UUID, caller *models.Identity, req *TopicRequest) (*models.VotingTopic, error) {
	if _, err := s.access.RequireMembership(ctx, associationID, caller); err != nil {
		return nil, err
	}
	return s.insertTopic(ctx, associationID, caller, req, true)
}

func (s *votingService) insertTopic(ctx context.Context, associationID uuid.UUID, caller *models.Identity, req *TopicRequest, proposal bool) (*models.VotingTopic, error) {
	if err := normalizeTopic(req); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	topic := &models.VotingTopic{
		ID:                 uuid.New(),
		AssociationID:      associationID,
		Title:              req.Title,
		Description:        req.Description,
		Options:            req.Options,
		CreatedBy:          caller.UserID,
		StartsAt:           req.StartsAt,
		EndsAt:             req.EndsAt,
		Status:             models.TopicStatusDraft,
		AllowMultipleVotes: req.AllowMultipleVotes,
		Visibility:         *req.Visibility,
		IsProposal:         proposal,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.votingRepo.CreateTopic(ctx, topic); err != nil {
		return nil, err
	}

	action, verb := models.AuditTopicCreated, "Created"
	if proposal {
		action, verb = models.AuditTopicProposed, "Proposed"
	}
	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		Action:        action,
		EntityType:    models.EntityVotingTopic,
		EntityID:      entityRef(topic.ID),
		Description:   fmt.Sprintf("%s voting topic %q", verb, topic.Title),
		Metadata:      models.JSONB{"options": topic.Options, "visibility": topic.Visibility.Kind},
	})
	return topic, nil
}

func (s *votingService) ActivateTopic(ctx context.Context, associationID, topicID uuid.UUID, caller *models.Identity) (*models.VotingTopic, error) {
	return s.transition(ctx, associationID, topicID, caller, models.TopicStatusActive)
}

func (s *votingService) CloseTopic(ctx context.Context, associationID, topicID uuid.UUID, caller *models.Identity) (*models.VotingTopic, error) {
	return s.transition(ctx, associationID, topicID, caller, models.TopicStatusClosed)
}

func (s *votingService) transition(ctx context.Context, associationID, topicID uuid.UUID, caller *models.Identity, to models.TopicStatus) (*models.VotingTopic, error) {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return nil, err
	}
	topic, err := s.votingRepo.GetTopic(ctx, associationID, topicID)
	if err != nil {
		return nil, notFound(err, "Voting topic")
	}
	if !topic.Status.CanTransitionTo(to) {
		if to == models.TopicStatusActive {
			return nil, InvalidState("Only draft topics can be activated")
		}
		return nil, InvalidState("Voting topic is already closed")
	}

	now := s.now().UTC()
	if err := s.votingRepo.UpdateTopicStatus(ctx, associationID, topicID, topic.Status, to, now); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, InvalidState("Voting topic status changed, reload and try again")
		}
		return nil, err
	}
	topic.Status = to
	topic.UpdatedAt = now

	action := models.AuditTopicActivated
	if to == models.TopicStatusActive {
		topic.ActivatedAt = &now
	} else {
		action = models.AuditTopicClosed
		topic.ClosedAt = &now
	}
	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		Action:        action,
		EntityType:    models.EntityVotingTopic,
		EntityID:      entityRef(topic.ID),
		Description:   fmt.Sprintf("Voting topic %q is now %s", topic.Title, to),
	})
	return topic, nil
}

func (s *votingService) DeleteTopic(ctx context.Context, associationID, topicID uuid.UUID, caller *models.Identity) error {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return err
	}
	topic, err := s.votingRepo.GetTopic(ctx, associationID, topicID)
	if err != nil {
		return notFound(err, "Voting topic")
	}
	if topic.Status != models.TopicStatusDraft {
		return InvalidState("Only draft topics can be deleted")
	}
	if err := s.votingRepo.DeleteTopic(ctx, associationID, topicID); err != nil {
		return notFound(err, "Voting topic")
	}
	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		Action:        models.AuditTopicDeleted,
		EntityType:    models.EntityVotingTopic,
		EntityID:      entityRef(topic.ID),
		Description:   fmt.Sprintf("Deleted voting topic %q", topic.Title),
	})
	return nil
}

// visibleTo applies the listing rule: drafts are hidden from non-admins
// except their own proposals, then the visibility descriptor decides.
func visibleTo(v *Viewer, topic *models.VotingTopic) bool {
	if v.IsAdmin() {
		return true
	}
	if topic.Status == models.TopicStatusDraft && topic.CreatedBy != v.Identity.UserID {
		return false
	}
	return v.CanSee(topic.Visibility)
}

func (s *votingService) ListTopics(ctx context.Context, associationID uuid.UUID, caller *models.Identity, status *models.TopicStatus) ([]*models.VotingTopic, error) {
	viewer, err := s.access.ResolveViewer(ctx, associationID, caller)
	if err != nil {
		return nil, err
	}
	topics, err := s.votingRepo.ListTopics(ctx, associationID, status)
	if err != nil {
		return nil, err
	}
	visible := make([]*models.VotingTopic, 0, len(topics))
	for _, t := range topics {
		if visibleTo(viewer, t) {
			visible = append(visible, t)
		}
	}
	return visible, nil
}

func (s *votingService) GetTopic(ctx context.Context, associationID, topicID uuid.UUID, caller *models.Identity) (*models.VotingTopic, error) {
	viewer, err := s.access.ResolveViewer(ctx, associationID, caller)
	if err != nil {
		return nil, err
	}
	topic, err := s.votingRepo.GetTopic(ctx, associationID, topicID)
	if err != nil {
		return nil, notFound(err, "Voting topic")
	}
	if !visibleTo(viewer, topic) {
		return nil, Forbidden("You do not have access to this voting topic")
	}
	return topic, nil
}

// CastVote records the caller's only ballot on a topic. The checks run in a
// fixed order and the first failure ends the call.
func (s *votingService) CastVote(ctx context.Context, associationID, topicID uuid.UUID, caller *models.Identity, options []string) (*models.Vote, error) {
	// 1. active member
	viewer, err := s.access.ResolveViewer(ctx, associationID, caller)
	if err != nil {
		return nil, err
	}
	if viewer.Member == nil {
		return nil, Forbidden("You need a member profile in this association to vote")
	}
	if viewer.Member.Status == models.MemberStatusInactive {
		return nil, Forbidden("Your member profile is not active")
	}

	// 2. topic exists
	topic, err := s.votingRepo.GetTopic(ctx, associationID, topicID)
	if err != nil {
		return nil, notFound(err, "Voting topic")
	}

	// 3. visibility
	if !viewer.CanSee(topic.Visibility) {
		return nil, Forbidden("You do not have access to this voting topic")
	}

	// 4. active
	if topic.Status != models.TopicStatusActive {
		return nil, InvalidState("Voting is not active for this topic")
	}

	// 5. window
	now := s.now().UTC()
	if now.After(topic.EndsAt) {
		return nil, Validation("Voting period has ended")
	}

	// 6. one ballot per member
	if _, err := s.votingRepo.GetVote(ctx, topicID, viewer.Member.ID); err == nil {
		return nil, Validation("You have already voted on this topic")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	// 7. option count
	if !topic.AllowMultipleVotes && len(options) != 1 {
		return nil, Validation("Exactly one option must be selected")
	}
	if len(options) == 0 {
		return nil, Validation("At least one option must be selected")
	}

	// 8. declared options only
	chosen := make(map[string]bool, len(options))
	for _, o := range options {
		if !topic.HasOption(o) {
			return nil, Validation("Invalid option: %s", o)
		}
		if chosen[o] {
			return nil, Validation("Option selected more than once: %s", o)
		}
		chosen[o] = true
	}

	vote := &models.Vote{
		ID:            uuid.New(),
		AssociationID: associationID,
		TopicID:       topicID,
		MemberID:      viewer.Member.ID,
		Options:       options,
		CastAt:        now,
	}
	if err := s.votingRepo.CreateVote(ctx, vote); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, Validation("You have already voted on this topic")
		}
		return nil, err
	}

	unitNames := []string{}
	if units, err := s.unitRepo.ListByMember(ctx, associationID, viewer.Member.ID); err == nil {
		for _, u := range units {
			unitNames = append(unitNames, u.Name)
		}
	}
	memberID := viewer.Member.ID
	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		MemberID:      &memberID,
		Action:        models.AuditVoteCast,
		EntityType:    models.EntityVote,
		EntityID:      entityRef(vote.ID),
		Description:   fmt.Sprintf("Voted on %q", topic.Title),
		Metadata: models.JSONB{
			"topic_id":    topic.ID.String(),
			"topic_title": topic.Title,
			"options":     options,
			"units":       unitNames,
		},
	})
	return vote, nil
}

// GetMyVote returns nil without error when the caller has not voted.
func (s *votingService) GetMyVote(ctx context.Context, associationID, topicID uuid.UUID, caller *models.Identity) (*models.Vote, error) {
	viewer, err := s.access.ResolveViewer(ctx, associationID, caller)
	if err != nil {
		return nil, err
	}
	if viewer.Member == nil {
		return nil, nil
	}
	if _, err := s.votingRepo.GetTopic(ctx, associationID, topicID); err != nil {
		return nil, notFound(err, "Voting topic")
	}
	vote, err := s.votingRepo.GetVote(ctx, topicID, viewer.Member.ID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	return vote, err
}

func (s *votingService) GetResults(ctx context.Context, associationID, topicID uuid.UUID, caller *models.Identity) (*models.TopicResults, error) {
	viewer, err := s.access.ResolveViewer(ctx, associationID, caller)
	if err != nil {
		return nil, err
	}
	topic, err := s.votingRepo.GetTopic(ctx, associationID, topicID)
	if err != nil {
		return nil, notFound(err, "Voting topic")
	}
	if !viewer.IsAdmin() && topic.Visibility.Kind == models.VisibilityAdmin {
		return nil, Forbidden("Results for this topic are restricted to administrators")
	}
	if !visibleTo(viewer, topic) {
		return nil, Forbidden("You do not have access to this voting topic")
	}

	votes, err := s.votingRepo.ListVotes(ctx, topicID)
	if err != nil {
		return nil, err
	}
	return Tally(topic, votes), nil
}

// Tally counts every selected option of every ballot. TotalVotes is the
// number of ballots, so a multi-select ballot adds one to TotalVotes and one
// to each option it picked.
func Tally(topic *models.VotingTopic, votes []*models.Vote) *models.TopicResults {
	counts := make(map[string]int, len(topic.Options))
	for _, o := range topic.Options {
		counts[o] = 0
	}
	for _, v := range votes {
		for _, o := range v.Options {
			if _, ok := counts[o]; ok {
				counts[o]++
			}
		}
	}

	results := make([]models.OptionResult, 0, len(topic.Options))
	for _, o := range topic.Options {
		results = append(results, models.OptionResult{Option: o, Count: counts[o]})
	}
	return &models.TopicResults{
		TopicID:    topic.ID,
		Title:      topic.Title,
		Status:     topic.Status,
		Results:    results,
		Counts:     counts,
		TotalVotes: len(votes),
	}
}
