package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"assochub/internal/models"
	"assochub/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MeetingServiceTestSuite struct {
	suite.Suite
	meetingRepo   *MockMeetingRepository
	memberRepo    *MockMemberRepository
	unitRepo      *MockUnitRepository
	access        *MockAccessService
	notifier      *MockNotificationService
	audit         *recordingAudit
	hook          *test.Hook
	service       *meetingService
	ctx           context.Context
	now           time.Time
	associationID uuid.UUID
	caller        *models.Identity
	admin         *models.Membership
}

func (suite *MeetingServiceTestSuite) SetupTest() {
	suite.meetingRepo = &MockMeetingRepository{}
	suite.memberRepo = &MockMemberRepository{}
	suite.unitRepo = &MockUnitRepository{}
	suite.access = &MockAccessService{}
	suite.notifier = &MockNotificationService{}
	suite.audit = &recordingAudit{}
	log, hook := test.NewNullLogger()
	log.SetOutput(io.Discard)
	suite.hook = hook
	suite.service = NewMeetingService(suite.meetingRepo, suite.memberRepo, suite.unitRepo, suite.access, suite.audit,
		suite.notifier, "https://app.example.com/", log).(*meetingService)
	suite.now = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	suite.service.now = fixedClock(suite.now)
	suite.ctx = context.Background()
	suite.associationID = uuid.New()
	suite.caller = &models.Identity{UserID: "admin-1", Email: "admin@example.com"}
	suite.admin = &models.Membership{Role: models.MembershipRoleAdmin, Status: models.MembershipStatusActive}
}

func TestMeetingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MeetingServiceTestSuite))
}

func (suite *MeetingServiceTestSuite) meeting(status models.MeetingStatus) *models.Meeting {
	return &models.Meeting{
		ID:            uuid.New(),
		AssociationID: suite.associationID,
		Title:         "Annual general meeting",
		Type:          models.MeetingTypeAGM,
		ScheduledAt:   suite.now.Add(7 * 24 * time.Hour),
		Status:        status,
		InviteScope:   models.InviteScope{Kind: models.InviteAllMembers},
		// keeps schedule from sending invitations unless a test resets it
		NotificationsSent: true,
	}
}

func (suite *MeetingServiceTestSuite) expectAdminLoad(m *models.Meeting) {
	suite.access.On("RequireAdmin", mock.Anything, suite.associationID, suite.caller).Return(suite.admin, nil)
	suite.meetingRepo.On("GetByID", mock.Anything, suite.associationID, m.ID).Return(m, nil)
}

func (suite *MeetingServiceTestSuite) apply(action models.MeetingAction, m *models.Meeting) (*models.Meeting, error) {
	switch action {
	case models.MeetingActionSchedule:
		return suite.service.Schedule(suite.ctx, suite.associationID, m.ID, suite.caller)
	case models.MeetingActionComplete:
		return suite.service.Complete(suite.ctx, suite.associationID, m.ID, suite.caller, nil)
	case models.MeetingActionArchive:
		return suite.service.Archive(suite.ctx, suite.associationID, m.ID, suite.caller)
	default:
		return suite.service.Cancel(suite.ctx, suite.associationID, m.ID, suite.caller, "")
	}
}

func (suite *MeetingServiceTestSuite) TestLifecycle_EveryStatusActionPair() {
	statuses := []models.MeetingStatus{
		models.MeetingStatusDraft, models.MeetingStatusScheduled, models.MeetingStatusCompleted,
		models.MeetingStatusArchived, models.MeetingStatusCancelled,
	}
	actions := []models.MeetingAction{
		models.MeetingActionSchedule, models.MeetingActionComplete, models.MeetingActionArchive, models.MeetingActionCancel,
	}
	legal := map[models.MeetingStatus]map[models.MeetingAction]models.MeetingStatus{
		models.MeetingStatusDraft:     {models.MeetingActionSchedule: models.MeetingStatusScheduled, models.MeetingActionCancel: models.MeetingStatusCancelled},
		models.MeetingStatusScheduled: {models.MeetingActionComplete: models.MeetingStatusCompleted, models.MeetingActionCancel: models.MeetingStatusCancelled},
		models.MeetingStatusCompleted: {models.MeetingActionArchive: models.MeetingStatusArchived},
	}

	for _, from := range statuses {
		for _, action := range actions {
			suite.Run(string(from)+"/"+string(action), func() {
				suite.SetupTest()
				m := suite.meeting(from)
				suite.expectAdminLoad(m)
				suite.meetingRepo.On("Update", mock.Anything, m).Return(nil)

				updated, err := suite.apply(action, m)

				want, ok := legal[from][action]
				if !ok {
					assert.True(suite.T(), IsKind(err, KindInvalidState), "expected invalid state, got %v", err)
					assert.Equal(suite.T(), from, m.Status)
					suite.meetingRepo.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything)
					return
				}
				assert.NoError(suite.T(), err)
				assert.Equal(suite.T(), want, updated.Status)
				assert.Equal(suite.T(), "admin-1", *updated.LastActionBy)
				assert.Equal(suite.T(), []string{models.AuditMeetingTransitioned}, suite.audit.actions())
			})
		}
	}
}

func (suite *MeetingServiceTestSuite) TestComplete_FromDraftRejected() {
	m := suite.meeting(models.MeetingStatusDraft)
	suite.expectAdminLoad(m)

	_, err := suite.service.Complete(suite.ctx, suite.associationID, m.ID, suite.caller, nil)

	assert.EqualError(suite.T(), err, "Only scheduled meetings can be completed.")
}

func (suite *MeetingServiceTestSuite) TestComplete_StampsAttendanceAndNotes() {
	m := suite.meeting(models.MeetingStatusScheduled)
	suite.expectAdminLoad(m)
	suite.meetingRepo.On("Update", mock.Anything, m).Return(nil)

	count := 25
	notes := "Quorum reached"
	updated, err := suite.service.Complete(suite.ctx, suite.associationID, m.ID, suite.caller,
		&CompleteMeetingRequest{AttendanceCount: &count, Notes: &notes})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.MeetingStatusCompleted, updated.Status)
	assert.Equal(suite.T(), 25, *updated.AttendanceCount)
	assert.Equal(suite.T(), "Quorum reached", *updated.Notes)
	assert.Equal(suite.T(), suite.now, *updated.CompletedAt)
}

func (suite *MeetingServiceTestSuite) TestComplete_NegativeAttendance() {
	count := -1
	_, err := suite.service.Complete(suite.ctx, suite.associationID, uuid.New(), suite.caller,
		&CompleteMeetingRequest{AttendanceCount: &count})

	assert.True(suite.T(), IsKind(err, KindValidation))
}

func (suite *MeetingServiceTestSuite) TestCancel_CompletedMeeting() {
	m := suite.meeting(models.MeetingStatusCompleted)
	suite.expectAdminLoad(m)

	_, err := suite.service.Cancel(suite.ctx, suite.associationID, m.ID, suite.caller, "Storm")

	assert.EqualError(suite.T(), err, "Cannot cancel completed or archived meetings")
}

func (suite *MeetingServiceTestSuite) TestCancel_Twice() {
	m := suite.meeting(models.MeetingStatusCancelled)
	suite.expectAdminLoad(m)

	_, err := suite.service.Cancel(suite.ctx, suite.associationID, m.ID, suite.caller, "")

	assert.EqualError(suite.T(), err, "Meeting is already cancelled")
}

func (suite *MeetingServiceTestSuite) TestCancel_RecordsReason() {
	m := suite.meeting(models.MeetingStatusScheduled)
	suite.expectAdminLoad(m)
	suite.meetingRepo.On("Update", mock.Anything, m).Return(nil)

	updated, err := suite.service.Cancel(suite.ctx, suite.associationID, m.ID, suite.caller, "  Venue unavailable ")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Cancelled: Venue unavailable", *updated.Notes)
	assert.NotNil(suite.T(), updated.CancelledAt)
}

func (suite *MeetingServiceTestSuite) TestSchedule_SendsInvitationsOnce() {
	m := suite.meeting(models.MeetingStatusDraft)
	m.NotificationsSent = false
	members := []*models.Member{
		{ID: uuid.New(), Email: "a@example.com", FirstName: "Ann", Status: models.MemberStatusActive},
		{ID: uuid.New(), Email: "b@example.com", FirstName: "Bob", Status: models.MemberStatusInvited},
		{ID: uuid.New(), Email: "c@example.com", FirstName: "Cy", Status: models.MemberStatusInactive},
	}
	suite.expectAdminLoad(m)
	suite.memberRepo.On("ListAll", mock.Anything, suite.associationID).Return(members, nil)
	suite.notifier.On("EnqueueBestEffort", mock.Anything, mock.MatchedBy(func(msg *EmailMessage) bool {
		return msg.Template == TemplateMeetingInvitation &&
			msg.Data["Link"] == "https://app.example.com/associations/"+suite.associationID.String()+"/meetings/"+m.ID.String()
	})).Return(true)
	suite.meetingRepo.On("Update", mock.Anything, m).Return(nil)
	suite.meetingRepo.On("MarkNotificationsSent", mock.Anything, suite.associationID, m.ID).Return(nil)

	updated, err := suite.service.Schedule(suite.ctx, suite.associationID, m.ID, suite.caller)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), updated.NotificationsSent)
	suite.meetingRepo.AssertExpectations(suite.T())
	assert.NotNil(suite.T(), updated.ScheduledStatusAt)
	suite.notifier.AssertNumberOfCalls(suite.T(), "EnqueueBestEffort", 2)
}

func (suite *MeetingServiceTestSuite) TestSchedule_UnitScopedInvitations() {
	unitID := uuid.New()
	memberID := uuid.New()
	m := suite.meeting(models.MeetingStatusDraft)
	m.NotificationsSent = false
	m.InviteScope = models.InviteScope{Kind: models.InviteUnits, UnitIDs: []uuid.UUID{unitID}}
	suite.expectAdminLoad(m)
	suite.unitRepo.On("ListMemberIDsByUnits", mock.Anything, suite.associationID, []uuid.UUID{unitID}).Return([]uuid.UUID{memberID}, nil)
	suite.memberRepo.On("ListByIDs", mock.Anything, suite.associationID, []uuid.UUID{memberID}).
		Return([]*models.Member{{ID: memberID, Email: "unit@example.com", Status: models.MemberStatusActive}}, nil)
	suite.notifier.On("EnqueueBestEffort", mock.Anything, mock.Anything).Return(true)
	suite.meetingRepo.On("Update", mock.Anything, m).Return(nil)
	suite.meetingRepo.On("MarkNotificationsSent", mock.Anything, suite.associationID, m.ID).Return(nil)

	_, err := suite.service.Schedule(suite.ctx, suite.associationID, m.ID, suite.caller)

	assert.NoError(suite.T(), err)
	suite.notifier.AssertNumberOfCalls(suite.T(), "EnqueueBestEffort", 1)
	suite.memberRepo.AssertNotCalled(suite.T(), "ListAll", mock.Anything, mock.Anything)
}

func (suite *MeetingServiceTestSuite) TestSchedule_FailedSaveSendsNoInvitations() {
	m := suite.meeting(models.MeetingStatusDraft)
	m.NotificationsSent = false
	suite.expectAdminLoad(m)
	suite.memberRepo.On("ListAll", mock.Anything, suite.associationID).
		Return([]*models.Member{{Email: "a@example.com", Status: models.MemberStatusActive}}, nil)
	suite.notifier.On("EnqueueBestEffort", mock.Anything, mock.Anything).Return(true)
	suite.meetingRepo.On("Update", mock.Anything, m).Return(errors.New("db down"))

	_, err := suite.service.Schedule(suite.ctx, suite.associationID, m.ID, suite.caller)

	assert.EqualError(suite.T(), err, "db down")
	suite.notifier.AssertNotCalled(suite.T(), "EnqueueBestEffort", mock.Anything, mock.Anything)
	suite.meetingRepo.AssertNotCalled(suite.T(), "MarkNotificationsSent", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(suite.T(), suite.audit.actions())
}

func (suite *MeetingServiceTestSuite) TestSchedule_NothingQueuedLeavesFlagUnset() {
	m := suite.meeting(models.MeetingStatusDraft)
	m.NotificationsSent = false
	suite.expectAdminLoad(m)
	suite.memberRepo.On("ListAll", mock.Anything, suite.associationID).Return(nil, errors.New("connection reset"))
	suite.meetingRepo.On("Update", mock.Anything, m).Return(nil)

	updated, err := suite.service.Schedule(suite.ctx, suite.associationID, m.ID, suite.caller)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.MeetingStatusScheduled, updated.Status)
	assert.False(suite.T(), updated.NotificationsSent)
	suite.meetingRepo.AssertNotCalled(suite.T(), "MarkNotificationsSent", mock.Anything, mock.Anything, mock.Anything)

	entry := suite.hook.LastEntry()
	if assert.NotNil(suite.T(), entry) {
		assert.Equal(suite.T(), logrus.ErrorLevel, entry.Level)
		assert.Equal(suite.T(), m.ID, entry.Data["meeting_id"])
		assert.Equal(suite.T(), TemplateMeetingInvitation, entry.Data["template"])
	}
}

func (suite *MeetingServiceTestSuite) TestCreateMeeting_DefaultsToDraftForEveryone() {
	suite.access.On("RequireAdmin", mock.Anything, suite.associationID, suite.caller).Return(suite.admin, nil)
	suite.meetingRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	m, err := suite.service.CreateMeeting(suite.ctx, suite.associationID, suite.caller, &CreateMeetingRequest{
		Title:       "Board sync",
		Type:        models.MeetingTypeBoard,
		ScheduledAt: suite.now.Add(time.Hour),
		Agenda:      []models.AgendaItem{{Title: "Budget", Type: models.AgendaItemDiscussion}},
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.MeetingStatusDraft, m.Status)
	assert.Equal(suite.T(), models.InviteAllMembers, m.InviteScope.Kind)
	assert.NotEmpty(suite.T(), m.Agenda[0].ID)
}

func (suite *MeetingServiceTestSuite) TestCreateMeeting_Validation() {
	tests := []struct {
		name   string
		req    CreateMeetingRequest
		errMsg string
	}{
		{name: "bad type", req: CreateMeetingRequest{Title: "x", Type: "party", ScheduledAt: time.Now()}, errMsg: "Meeting type must be one of: agm, egm, board, general"},
		{name: "agenda without title", req: CreateMeetingRequest{Title: "x", Type: models.MeetingTypeAGM, ScheduledAt: time.Now(), Agenda: []models.AgendaItem{{Type: models.AgendaItemOther}}}, errMsg: "Agenda item 1 needs a title"},
		{name: "empty unit scope", req: CreateMeetingRequest{Title: "x", Type: models.MeetingTypeAGM, ScheduledAt: time.Now(), InviteScope: &models.InviteScope{Kind: models.InviteUnits}}, errMsg: "Select at least one unit to invite"},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.SetupTest()
			suite.access.On("RequireAdmin", mock.Anything, suite.associationID, suite.caller).Return(suite.admin, nil)

			_, err := suite.service.CreateMeeting(suite.ctx, suite.associationID, suite.caller, &tt.req)

			assert.EqualError(suite.T(), err, tt.errMsg)
		})
	}
}

func (suite *MeetingServiceTestSuite) TestGetMeeting_DraftHiddenFromMembers() {
	m := suite.meeting(models.MeetingStatusDraft)
	suite.access.On("RequireMembership", mock.Anything, suite.associationID, suite.caller).
		Return(&models.Membership{Role: models.MembershipRoleMember, Status: models.MembershipStatusActive}, nil)
	suite.meetingRepo.On("GetByID", mock.Anything, suite.associationID, m.ID).Return(m, nil)

	_, err := suite.service.GetMeeting(suite.ctx, suite.associationID, m.ID, suite.caller)

	assert.True(suite.T(), IsKind(err, KindNotFound))
}

func (suite *MeetingServiceTestSuite) TestListMeetings_MembersSkipDrafts() {
	draft := suite.meeting(models.MeetingStatusDraft)
	scheduled := suite.meeting(models.MeetingStatusScheduled)
	suite.access.On("RequireMembership", mock.Anything, suite.associationID, suite.caller).
		Return(&models.Membership{Role: models.MembershipRoleMember, Status: models.MembershipStatusActive}, nil)
	suite.meetingRepo.On("List", mock.Anything, suite.associationID, (*models.MeetingStatus)(nil), 20, 0).
		Return([]*models.Meeting{draft, scheduled}, nil)

	meetings, err := suite.service.ListMeetings(suite.ctx, suite.associationID, suite.caller, nil, 20, 0)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []*models.Meeting{scheduled}, meetings)
}

func (suite *MeetingServiceTestSuite) expectRSVPPath(m *models.Meeting, member *models.Member) {
	suite.access.On("RequireMembership", mock.Anything, suite.associationID, suite.caller).
		Return(&models.Membership{Role: models.MembershipRoleMember, Status: models.MembershipStatusActive}, nil)
	suite.access.On("ResolveMember", mock.Anything, suite.associationID, suite.caller).Return(member, nil)
	suite.meetingRepo.On("GetByID", mock.Anything, suite.associationID, m.ID).Return(m, nil)
}

func (suite *MeetingServiceTestSuite) TestRSVP_UpsertsOnScheduledMeeting() {
	m := suite.meeting(models.MeetingStatusScheduled)
	member := &models.Member{ID: uuid.New()}
	existingID := uuid.New()
	suite.expectRSVPPath(m, member)

	// second response overwrites the first row and keeps its id
	suite.meetingRepo.On("UpsertAttendance", mock.Anything, mock.MatchedBy(func(a *models.MeetingAttendance) bool {
		return a.MemberID == member.ID && a.MeetingID == m.ID && a.Status == models.RSVPMaybe && a.RespondedAt.Equal(suite.now)
	})).Return(&models.MeetingAttendance{ID: existingID, MeetingID: m.ID, MemberID: member.ID, Status: models.RSVPMaybe}, nil)

	attendance, err := suite.service.RSVP(suite.ctx, suite.associationID, m.ID, suite.caller, &RSVPRequest{Status: models.RSVPMaybe})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), existingID, attendance.ID)
	assert.Equal(suite.T(), []string{models.AuditMeetingRSVP}, suite.audit.actions())
}

func (suite *MeetingServiceTestSuite) TestRSVP_OnlyScheduledMeetings() {
	for _, status := range []models.MeetingStatus{models.MeetingStatusDraft, models.MeetingStatusCompleted, models.MeetingStatusCancelled} {
		suite.Run(string(status), func() {
			suite.SetupTest()
			m := suite.meeting(status)
			member := &models.Member{ID: uuid.New()}
			suite.expectRSVPPath(m, member)
			suite.meetingRepo.On("GetAttendance", mock.Anything, m.ID, member.ID).Return(nil, repositories.ErrNotFound)

			_, err := suite.service.RSVP(suite.ctx, suite.associationID, m.ID, suite.caller, &RSVPRequest{Status: models.RSVPAttending})

			assert.True(suite.T(), IsKind(err, KindInvalidState))
			suite.meetingRepo.AssertNotCalled(suite.T(), "UpsertAttendance", mock.Anything, mock.Anything)
		})
	}
}

func (suite *MeetingServiceTestSuite) TestRSVP_ExistingResponseCanChangeAfterCancel() {
	m := suite.meeting(models.MeetingStatusCancelled)
	member := &models.Member{ID: uuid.New(), Status: models.MemberStatusActive}
	suite.expectRSVPPath(m, member)
	suite.meetingRepo.On("GetAttendance", mock.Anything, m.ID, member.ID).
		Return(&models.MeetingAttendance{MeetingID: m.ID, MemberID: member.ID, Status: models.RSVPAttending}, nil)
	suite.meetingRepo.On("UpsertAttendance", mock.Anything, mock.MatchedBy(func(a *models.MeetingAttendance) bool {
		return a.MemberID == member.ID && a.Status == models.RSVPNotAttending
	})).Return(&models.MeetingAttendance{MeetingID: m.ID, MemberID: member.ID, Status: models.RSVPNotAttending}, nil)

	attendance, err := suite.service.RSVP(suite.ctx, suite.associationID, m.ID, suite.caller, &RSVPRequest{Status: models.RSVPNotAttending})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.RSVPNotAttending, attendance.Status)
}

func (suite *MeetingServiceTestSuite) TestRSVP_InactiveMemberProfile() {
	m := suite.meeting(models.MeetingStatusScheduled)
	suite.access.On("RequireMembership", mock.Anything, suite.associationID, suite.caller).
		Return(&models.Membership{Role: models.MembershipRoleMember, Status: models.MembershipStatusActive}, nil)
	suite.access.On("ResolveMember", mock.Anything, suite.associationID, suite.caller).
		Return(&models.Member{ID: uuid.New(), Status: models.MemberStatusInactive}, nil)

	_, err := suite.service.RSVP(suite.ctx, suite.associationID, m.ID, suite.caller, &RSVPRequest{Status: models.RSVPAttending})

	assert.EqualError(suite.T(), err, "Your member profile is not active")
	assert.True(suite.T(), IsKind(err, KindForbidden))
	suite.meetingRepo.AssertNotCalled(suite.T(), "UpsertAttendance", mock.Anything, mock.Anything)
}

func (suite *MeetingServiceTestSuite) TestRSVP_InvalidStatus() {
	suite.access.On("RequireMembership", mock.Anything, suite.associationID, suite.caller).
		Return(&models.Membership{Role: models.MembershipRoleMember, Status: models.MembershipStatusActive}, nil)

	_, err := suite.service.RSVP(suite.ctx, suite.associationID, uuid.New(), suite.caller, &RSVPRequest{Status: "perhaps"})

	assert.True(suite.T(), IsKind(err, KindValidation))
}

func (suite *MeetingServiceTestSuite) TestGetMyRSVP_NoResponse() {
	meetingID := uuid.New()
	member := &models.Member{ID: uuid.New()}
	suite.access.On("RequireMembership", mock.Anything, suite.associationID, suite.caller).Return(suite.admin, nil)
	suite.access.On("ResolveMember", mock.Anything, suite.associationID, suite.caller).Return(member, nil)
	suite.meetingRepo.On("GetAttendance", mock.Anything, meetingID, member.ID).Return(nil, repositories.ErrNotFound)

	attendance, err := suite.service.GetMyRSVP(suite.ctx, suite.associationID, meetingID, suite.caller)

	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), attendance)
}

func (suite *MeetingServiceTestSuite) TestAttendanceStats_Counts() {
	m := suite.meeting(models.MeetingStatusScheduled)
	suite.access.On("RequireMembership", mock.Anything, suite.associationID, suite.caller).Return(suite.admin, nil)
	suite.meetingRepo.On("GetByID", mock.Anything, suite.associationID, m.ID).Return(m, nil)
	suite.meetingRepo.On("ListAttendance", mock.Anything, m.ID).Return([]*models.MeetingAttendance{
		{Status: models.RSVPAttending}, {Status: models.RSVPAttending}, {Status: models.RSVPNotAttending}, {Status: models.RSVPMaybe},
	}, nil)
	suite.memberRepo.On("Count", mock.Anything, suite.associationID).Return(10, nil)

	stats, err := suite.service.AttendanceStats(suite.ctx, suite.associationID, m.ID, suite.caller)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), &models.AttendanceStats{Total: 4, Attending: 2, NotAttending: 1, Maybe: 1, NoResponse: 6, TotalMembers: 10}, stats)
}

func (suite *MeetingServiceTestSuite) TestAttendanceStats_NoResponseNotClamped() {
	m := suite.meeting(models.MeetingStatusScheduled)
	suite.access.On("RequireMembership", mock.Anything, suite.associationID, suite.caller).Return(suite.admin, nil)
	suite.meetingRepo.On("GetByID", mock.Anything, suite.associationID, m.ID).Return(m, nil)
	suite.meetingRepo.On("ListAttendance", mock.Anything, m.ID).Return([]*models.MeetingAttendance{
		{Status: models.RSVPAttending}, {Status: models.RSVPAttending},
	}, nil)
	suite.memberRepo.On("Count", mock.Anything, suite.associationID).Return(1, nil)

	stats, err := suite.service.AttendanceStats(suite.ctx, suite.associationID, m.ID, suite.caller)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), -1, stats.NoResponse)
}

func (suite *MeetingServiceTestSuite) TestSendReminders_MarksEachMeeting() {
	m := suite.meeting(models.MeetingStatusScheduled)
	suite.meetingRepo.On("ListNeedingReminder", mock.Anything, suite.now, suite.now.Add(24*time.Hour)).Return([]*models.Meeting{m}, nil)
	suite.memberRepo.On("ListAll", mock.Anything, suite.associationID).
		Return([]*models.Member{{Email: "a@example.com", Status: models.MemberStatusActive}}, nil)
	suite.notifier.On("EnqueueBestEffort", mock.Anything, mock.MatchedBy(func(msg *EmailMessage) bool {
		return msg.Template == TemplateMeetingReminder && msg.Subject == "Reminder: "+m.Title
	})).Return(true)
	suite.meetingRepo.On("MarkReminderSent", mock.Anything, suite.associationID, m.ID).Return(nil)

	count, err := suite.service.SendReminders(suite.ctx, 24*time.Hour)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, count)
	suite.meetingRepo.AssertExpectations(suite.T())
	suite.notifier.AssertExpectations(suite.T())
}

func (suite *MeetingServiceTestSuite) TestDeleteMeeting_NotFound() {
	meetingID := uuid.New()
	suite.access.On("RequireAdmin", mock.Anything, suite.associationID, suite.caller).Return(suite.admin, nil)
	suite.meetingRepo.On("Delete", mock.Anything, suite.associationID, meetingID).Return(repositories.ErrNotFound)

	err := suite.service.DeleteMeeting(suite.ctx, suite.associationID, meetingID, suite.caller)

	assert.True(suite.T(), IsKind(err, KindNotFound))
	assert.Empty(suite.T(), suite.audit.entries)
}
