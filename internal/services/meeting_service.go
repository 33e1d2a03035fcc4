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
	"github.com/sirupsen/logrus"
)

type MeetingService interface {
	CreateMeeting(ctx context.Context, associationID uuid.UUID, caller *models.Identity, req *CreateMeetingRequest) (*models.Meeting, error)
	UpdateMeeting(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity, req *UpdateMeetingRequest) (*models.Meeting, error)
	DeleteMeeting(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity) error
	GetMeeting(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity) (*models.Meeting, error)
	ListMeetings(ctx context.Context, associationID uuid.UUID, caller *models.Identity, status *models.MeetingStatus, limit, offset int) ([]*models.Meeting, error)

	Schedule(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity) (*models.Meeting, error)
	Complete(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity, req *CompleteMeetingRequest) (*models.Meeting, error)
	Archive(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity) (*models.Meeting, error)
	Cancel(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity, reason string) (*models.Meeting, error)

	RSVP(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity, req *RSVPRequest) (*models.MeetingAttendance, error)
	GetMyRSVP(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity) (*models.MeetingAttendance, error)
	ListAttendance(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity) ([]*models.MeetingAttendance, error)
	AttendanceStats(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity) (*models.AttendanceStats, error)

	// SendReminders enqueues reminders for scheduled meetings starting within
	// window and returns how many meetings were processed.
	SendReminders(ctx context.Context, window time.Duration) (int, error)
}

type meetingService struct {
	meetingRepo repositories.MeetingRepository
	memberRepo  repositories.MemberRepository
	unitRepo    repositories.UnitRepository
	access      AccessService
	audit       AuditLogsService
	notifier    NotificationService
	appURL      string
	log         *logrus.Logger
	now         func() time.Time
}

func NewMeetingService(
	meetingRepo repositories.MeetingRepository,
	memberRepo repositories.MemberRepository,
	unitRepo repositories.UnitRepository,
	access AccessService,
	audit AuditLogsService,
	notifier NotificationService,
	appURL string,
	log *logrus.Logger,
) MeetingService {
	return &meetingService{
		meetingRepo: meetingRepo,
		memberRepo:  memberRepo,
		unitRepo:    unitRepo,
		access:      access,
		audit:       audit,
		notifier:    notifier,
		appURL:      strings.TrimRight(appURL, "/"),
		log:         log,
		now:         time.Now,
	}
}

type CreateMeetingRequest struct {
	Title       string              `json:"title" validate:"required,max=200"`
	Description *string             `json:"description"`
	Type        models.MeetingType  `json:"type" validate:"required"`
	ScheduledAt time.Time           `json:"scheduled_at" validate:"required"`
	Location    *string             `json:"location"`
	Agenda      []models.AgendaItem `json:"agenda"`
	InviteScope *models.InviteScope `json:"invite_scope"`
}

// UpdateMeetingRequest is a partial update: nil fields are left unchanged.
type UpdateMeetingRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Type        *models.MeetingType  `json:"type"`
	ScheduledAt *time.Time           `json:"scheduled_at"`
	Location    *string              `json:"location"`
	Agenda      *[]models.AgendaItem `json:"agenda"`
	InviteScope *models.InviteScope  `json:"invite_scope"`
}

type CompleteMeetingRequest struct {
	AttendanceCount *int    `json:"attendance_count" validate:"omitempty,min=0"`
	Notes           *string `json:"notes"`
}

type RSVPRequest struct {
	Status models.RSVPStatus `json:"status" validate:"required"`
	Notes  *string           `json:"notes"`
}

func validateAgenda(items []models.AgendaItem) error {
	for i := range items {
		item := &items[i]
		item.Title = strings.TrimSpace(item.Title)
		if item.Title == "" {
			return Validation("Agenda item %d needs a title", i+1)
		}
		if !item.Type.Valid() {
			return Validation("Agenda item %q has an invalid type", item.Title)
		}
		if item.DurationMinutes != nil && *item.DurationMinutes < 0 {
			return Validation("Agenda item %q has a negative duration", item.Title)
		}
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
	}
	return nil
}

func validateInviteScope(scope models.InviteScope) error {
	switch scope.Kind {
	case models.InviteAllMembers:
		if len(scope.UnitIDs) > 0 {
			return Validation("Unit list is only allowed when inviting specific units")
		}
	case models.InviteUnits:
		if len(scope.UnitIDs) == 0 {
			return Validation("Select at least one unit to invite")
		}
	default:
		return Validation("Invite scope must be one of: all, units")
	}
	return nil
}

func (s *meetingService) CreateMeeting(ctx context.Context, associationID uuid.UUID, caller *models.Identity, req *CreateMeetingRequest) (*models.Meeting, error) {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, Validation("Title is required")
	}
	if !req.Type.Valid() {
		return nil, Validation("Meeting type must be one of: agm, egm, board, general")
	}
	if req.ScheduledAt.IsZero() {
		return nil, Validation("Scheduled time is required")
	}
	if err := validateAgenda(req.Agenda); err != nil {
		return nil, err
	}
	scope := models.InviteScope{Kind: models.InviteAllMembers}
	if req.InviteScope != nil {
		scope = *req.InviteScope
	}
	if err := validateInviteScope(scope); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	meeting := &models.Meeting{
		ID:            uuid.New(),
		AssociationID: associationID,
		Title:         req.Title,
		Description:   req.Description,
		Type:          req.Type,
		ScheduledAt:   req.ScheduledAt,
		Location:      req.Location,
		Status:        models.MeetingStatusDraft,
		Agenda:        req.Agenda,
		InviteScope:   scope,
		CreatedBy:     caller.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if meeting.Agenda == nil {
		meeting.Agenda = []models.AgendaItem{}
	}
	if err := s.meetingRepo.Create(ctx, meeting); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		Action:        models.AuditMeetingCreated,
		EntityType:    models.EntityMeeting,
		EntityID:      entityRef(meeting.ID),
		Description:   fmt.Sprintf("Created meeting %q", meeting.Title),
	})
	return meeting, nil
}

func (s *meetingService) UpdateMeeting(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity, req *UpdateMeetingRequest) (*models.Meeting, error) {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return nil, err
	}
	meeting, err := s.meetingRepo.GetByID(ctx, associationID, meetingID)
	if err != nil {
		return nil, notFound(err, "Meeting")
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, Validation("Title is required")
		}
		meeting.Title = title
	}
	if req.Description != nil {
		meeting.Description = req.Description
	}
	if req.Type != nil {
		if !req.Type.Valid() {
			return nil, Validation("Meeting type must be one of: agm, egm, board, general")
		}
		meeting.Type = *req.Type
	}
	if req.ScheduledAt != nil {
		meeting.ScheduledAt = *req.ScheduledAt
	}
	if req.Location != nil {
		meeting.Location = req.Location
	}
	if req.Agenda != nil {
		if err := validateAgenda(*req.Agenda); err != nil {
			return nil, err
		}
		meeting.Agenda = *req.Agenda
	}
	if req.InviteScope != nil {
		if err := validateInviteScope(*req.InviteScope); err != nil {
			return nil, err
		}
		meeting.InviteScope = *req.InviteScope
	}
	meeting.UpdatedAt = s.now().UTC()

	if err := s.meetingRepo.Update(ctx, meeting); err != nil {
		return nil, notFound(err, "Meeting")
	}
	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		Action:        models.AuditMeetingUpdated,
		EntityType:    models.EntityMeeting,
		EntityID:      entityRef(meeting.ID),
		Description:   fmt.Sprintf("Updated meeting %q", meeting.Title),
	})
	return meeting, nil
}

func (s *meetingService) DeleteMeeting(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity) error {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return err
	}
	if err := s.meetingRepo.Delete(ctx, associationID, meetingID); err != nil {
		return notFound(err, "Meeting")
	}
	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		Action:        models.AuditMeetingDeleted,
		EntityType:    models.EntityMeeting,
		EntityID:      entityRef(meetingID),
		Description:   "Deleted meeting",
	})
	return nil
}

func (s *meetingService) GetMeeting(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity) (*models.Meeting, error) {
	membership, err := s.access.RequireMembership(ctx, associationID, caller)
	if err != nil {
		return nil, err
	}
	meeting, err := s.meetingRepo.GetByID(ctx, associationID, meetingID)
	if err != nil {
		return nil, notFound(err, "Meeting")
	}
	if meeting.Status == models.MeetingStatusDraft && !membership.IsAdmin() {
		return nil, NotFound("Meeting not found")
	}
	return meeting, nil
}

func (s *meetingService) ListMeetings(ctx context.Context, associationID uuid.UUID, caller *models.Identity, status *models.MeetingStatus, limit, offset int) ([]*models.Meeting, error) {
	membership, err := s.access.RequireMembership(ctx, associationID, caller)
	if err != nil {
		return nil, err
	}
	meetings, err := s.meetingRepo.List(ctx, associationID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	if membership.IsAdmin() {
		return meetings, nil
	}
	visible := make([]*models.Meeting, 0, len(meetings))
	for _, m := range meetings {
		if m.Status != models.MeetingStatusDraft {
			visible = append(visible, m)
		}
	}
	return visible, nil
}

var transitionErrors = map[models.MeetingAction]string{
	models.MeetingActionSchedule: "Only draft meetings can be scheduled.",
	models.MeetingActionComplete: "Only scheduled meetings can be completed.",
	models.MeetingActionArchive:  "Only completed meetings can be archived.",
	models.MeetingActionCancel:   "Cannot cancel completed or archived meetings",
}

func (s *meetingService) Schedule(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity) (*models.Meeting, error) {
	return s.transition(ctx, associationID, meetingID, caller, models.MeetingActionSchedule, func(m *models.Meeting, now time.Time) {
		m.ScheduledStatusAt = &now
	})
}

func (s *meetingService) Complete(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity, req *CompleteMeetingRequest) (*models.Meeting, error) {
	if req == nil {
		req = &CompleteMeetingRequest{}
	}
	if req.AttendanceCount != nil && *req.AttendanceCount < 0 {
		return nil, Validation("Attendance count cannot be negative")
	}
	return s.transition(ctx, associationID, meetingID, caller, models.MeetingActionComplete, func(m *models.Meeting, now time.Time) {
		m.CompletedAt = &now
		if req.AttendanceCount != nil {
			m.AttendanceCount = req.AttendanceCount
		}
		if req.Notes != nil {
			m.Notes = req.Notes
		}
	})
}

func (s *meetingService) Archive(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity) (*models.Meeting, error) {
	return s.transition(ctx, associationID, meetingID, caller, models.MeetingActionArchive, func(m *models.Meeting, now time.Time) {
		m.ArchivedAt = &now
	})
}

func (s *meetingService) Cancel(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity, reason string) (*models.Meeting, error) {
	reason = strings.TrimSpace(reason)
	return s.transition(ctx, associationID, meetingID, caller, models.MeetingActionCancel, func(m *models.Meeting, now time.Time) {
		m.CancelledAt = &now
		if reason != "" {
			note := "Cancelled: " + reason
			m.Notes = &note
		}
	})
}

func (s *meetingService) transition(
	ctx context.Context,
	associationID, meetingID uuid.UUID,
	caller *models.Identity,
	action models.MeetingAction,
	stamp func(m *models.Meeting, now time.Time),
) (*models.Meeting, error) {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return nil, err
	}
	meeting, err := s.meetingRepo.GetByID(ctx, associationID, meetingID)
	if err != nil {
		return nil, notFound(err, "Meeting")
	}

	if action == models.MeetingActionCancel && meeting.Status == models.MeetingStatusCancelled {
		return nil, InvalidState("Meeting is already cancelled")
	}
	next, ok := models.NextMeetingStatus(meeting.Status, action)
	if !ok {
		return nil, InvalidState("%s", transitionErrors[action])
	}

	from := meeting.Status
	now := s.now().UTC()
	actor := caller.UserID
	meeting.Status = next
	meeting.UpdatedAt = now
	meeting.LastActionBy = &actor
	stamp(meeting, now)

	if err := s.meetingRepo.Update(ctx, meeting); err != nil {
		return nil, notFound(err, "Meeting")
	}

	// invitations go out only once the scheduled status is stored
	if action == models.MeetingActionSchedule && !meeting.NotificationsSent {
		if s.sendMeetingEmails(ctx, meeting, TemplateMeetingInvitation) > 0 {
			if err := s.meetingRepo.MarkNotificationsSent(ctx, associationID, meeting.ID); err != nil {
				s.log.WithError(err).WithField("meeting_id", meeting.ID).Error("failed to mark invitations sent")
			} else {
				meeting.NotificationsSent = true
			}
		}
	}

	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		Action:        models.AuditMeetingTransitioned,
		EntityType:    models.EntityMeeting,
		EntityID:      entityRef(meeting.ID),
		Description:   fmt.Sprintf("Meeting %q moved from %s to %s", meeting.Title, from, next),
		Metadata:      models.JSONB{"action": string(action), "from": string(from), "to": string(next)},
	})
	return meeting, nil
}

func (s *meetingService) RSVP(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity, req *RSVPRequest) (*models.MeetingAttendance, error) {
	if _, err := s.access.RequireMembership(ctx, associationID, caller); err != nil {
		return nil, err
	}
	if !req.Status.Valid() {
		return nil, Validation("RSVP status must be one of: attending, not_attending, maybe")
	}
	member, err := s.access.ResolveMember(ctx, associationID, caller)
	if err != nil {
		return nil, err
	}
	if member.Status == models.MemberStatusInactive {
		return nil, Forbidden("Your member profile is not active")
	}
	meeting, err := s.meetingRepo.GetByID(ctx, associationID, meetingID)
	if err != nil {
		return nil, notFound(err, "Meeting")
	}
	// new responses need a scheduled meeting; an existing one may still be changed
	if meeting.Status != models.MeetingStatusScheduled {
		_, err := s.meetingRepo.GetAttendance(ctx, meetingID, member.ID)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, InvalidState("RSVPs are only accepted for scheduled meetings")
		}
		if err != nil {
			return nil, err
		}
	}

	attendance, err := s.meetingRepo.UpsertAttendance(ctx, &models.MeetingAttendance{
		ID:            uuid.New(),
		AssociationID: associationID,
		MeetingID:     meetingID,
		MemberID:      member.ID,
		Status:        req.Status,
		Notes:         req.Notes,
		RespondedAt:   s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	memberID := member.ID
	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		MemberID:      &memberID,
		Action:        models.AuditMeetingRSVP,
		EntityType:    models.EntityAttendance,
		EntityID:      entityRef(attendance.ID),
		Description:   fmt.Sprintf("RSVP %s for %q", req.Status, meeting.Title),
	})
	return attendance, nil
}

// GetMyRSVP returns nil without error when the caller has not responded.
func (s *meetingService) GetMyRSVP(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity) (*models.MeetingAttendance, error) {
	if _, err := s.access.RequireMembership(ctx, associationID, caller); err != nil {
		return nil, err
	}
	member, err := s.access.ResolveMember(ctx, associationID, caller)
	if err != nil {
		if IsKind(err, KindNotFound) {
			return nil, nil
		}
		return nil, err
	}
	attendance, err := s.meetingRepo.GetAttendance(ctx, meetingID, member.ID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	return attendance, err
}

func (s *meetingService) ListAttendance(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity) ([]*models.MeetingAttendance, error) {
	if _, err := s.access.RequireMembership(ctx, associationID, caller); err != nil {
		return nil, err
	}
	if _, err := s.meetingRepo.GetByID(ctx, associationID, meetingID); err != nil {
		return nil, notFound(err, "Meeting")
	}
	return s.meetingRepo.ListAttendance(ctx, meetingID)
}

// AttendanceStats counts RSVPs against the association's member records.
// NoResponse is not clamped and goes negative when RSVPs outlive members.
func (s *meetingService) AttendanceStats(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity) (*models.AttendanceStats, error) {
	attendance, err := s.ListAttendance(ctx, associationID, meetingID, caller)
	if err != nil {
		return nil, err
	}
	totalMembers, err := s.memberRepo.Count(ctx, associationID)
	if err != nil {
		return nil, err
	}

	stats := &models.AttendanceStats{Total: len(attendance), TotalMembers: totalMembers}
	for _, a := range attendance {
		switch a.Status {
		case models.RSVPAttending:
			stats.Attending++
		case models.RSVPNotAttending:
			stats.NotAttending++
		case models.RSVPMaybe:
			stats.Maybe++
		}
	}
	stats.NoResponse = totalMembers - stats.Total
	return stats, nil
}

func (s *meetingService) SendReminders(ctx context.Context, window time.Duration) (int, error) {
	now := s.now().UTC()
	meetings, err := s.meetingRepo.ListNeedingReminder(ctx, now, now.Add(window))
	if err != nil {
		return 0, err
	}
	for _, m := range meetings {
		s.sendMeetingEmails(ctx, m, TemplateMeetingReminder)
		if err := s.meetingRepo.MarkReminderSent(ctx, m.AssociationID, m.ID); err != nil {
			return 0, err
		}
	}
	return len(meetings), nil
}

// invitees resolves the members covered by the meeting's invite scope.
func (s *meetingService) invitees(ctx context.Context, m *models.Meeting) ([]*models.Member, error) {
	if m.InviteScope.Kind == models.InviteUnits {
		ids, err := s.unitRepo.ListMemberIDsByUnits(ctx, m.AssociationID, m.InviteScope.UnitIDs)
		if err != nil || len(ids) == 0 {
			return nil, err
		}
		return s.memberRepo.ListByIDs(ctx, m.AssociationID, ids)
	}
	return s.memberRepo.ListAll(ctx, m.AssociationID)
}

// sendMeetingEmails enqueues one email per invitee and returns how many were
// queued. Failures never reach the caller.
func (s *meetingService) sendMeetingEmails(ctx context.Context, m *models.Meeting, tmpl string) int {
	members, err := s.invitees(ctx, m)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"association_id": m.AssociationID,
			"meeting_id":     m.ID,
			"template":       tmpl,
		}).Error("failed to resolve meeting invitees")
		return 0
	}

	subject := "Meeting scheduled: " + m.Title
	if tmpl == TemplateMeetingReminder {
		subject = "Reminder: " + m.Title
	}
	queued := 0
	for _, member := range members {
		if member.Email == "" || member.Status == models.MemberStatusInactive {
			continue
		}
		ok := s.notifier.EnqueueBestEffort(ctx, &EmailMessage{
			To:       member.Email,
			Subject:  subject,
			Template: tmpl,
			Data: map[string]string{
				"Name":         member.FullName(),
				"MeetingTitle": m.Title,
				"ScheduledAt":  m.ScheduledAt.Format(time.RFC1123),
				"Location":     derefString(m.Location),
				"Link":         fmt.Sprintf("%s/associations/%s/meetings/%s", s.appURL, m.AssociationID, m.ID),
			},
		})
		if ok {
			queued++
		}
	}
	return queued
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
