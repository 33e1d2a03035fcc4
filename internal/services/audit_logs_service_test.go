package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"assochub/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AuditLogsServiceTestSuite struct {
	suite.Suite
	repo          *MockAuditLogsRepository
	access        *MockAccessService
	hook          *test.Hook
	service       AuditLogsService
	ctx           context.Context
	associationID uuid.UUID
	caller        *models.Identity
}

func (suite *AuditLogsServiceTestSuite) SetupTest() {
	suite.repo = &MockAuditLogsRepository{}
	suite.access = &MockAccessService{}
	log, hook := test.NewNullLogger()
	log.SetOutput(io.Discard)
	suite.hook = hook
	suite.service = NewAuditLogsService(suite.repo, suite.access, log)
	suite.ctx = context.Background()
	suite.associationID = uuid.New()
	suite.caller = &models.Identity{UserID: "user-7"}
}

func TestAuditLogsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuditLogsServiceTestSuite))
}

func (suite *AuditLogsServiceTestSuite) TestLog_WritesEntry() {
	memberID := uuid.New()
	suite.repo.On("Create", mock.Anything, mock.MatchedBy(func(l *models.AuditLog) bool {
		return l.AssociationID == suite.associationID && l.Action == models.AuditVoteCast &&
			*l.MemberID == memberID && l.ID != uuid.Nil
	})).Return(nil)

	suite.service.Log(suite.ctx, AuditEntry{
		AssociationID: suite.associationID,
		UserID:        "user-7",
		MemberID:      &memberID,
		Action:        models.AuditVoteCast,
		EntityType:    models.EntityVote,
	})

	suite.repo.AssertExpectations(suite.T())
	assert.Empty(suite.T(), suite.hook.AllEntries())
}

func (suite *AuditLogsServiceTestSuite) TestLog_FailureIsLoggedNotReturned() {
	suite.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	suite.service.Log(suite.ctx, AuditEntry{AssociationID: suite.associationID, Action: models.AuditUnitCreated})

	entry := suite.hook.LastEntry()
	if assert.NotNil(suite.T(), entry) {
		assert.Equal(suite.T(), logrus.ErrorLevel, entry.Level)
		assert.Equal(suite.T(), models.AuditUnitCreated, entry.Data["action"])
	}
}

func (suite *AuditLogsServiceTestSuite) TestList_MemberScopedToOwnEntries() {
	suite.access.On("RequireMembership", mock.Anything, suite.associationID, suite.caller).
		Return(&models.Membership{Role: models.MembershipRoleMember, Status: models.MembershipStatusActive}, nil)
	other := "someone-else"
	suite.repo.On("List", mock.Anything, suite.associationID, mock.MatchedBy(func(f *models.AuditLogFilters) bool {
		return *f.UserID == "user-7" && f.Limit == 50
	})).Return([]*models.AuditLog{}, nil)

	_, err := suite.service.List(suite.ctx, suite.associationID, suite.caller, &models.AuditLogFilters{UserID: &other})

	assert.NoError(suite.T(), err)
	suite.repo.AssertExpectations(suite.T())
}

func (suite *AuditLogsServiceTestSuite) TestList_AdminSeesAll() {
	suite.access.On("RequireMembership", mock.Anything, suite.associationID, suite.caller).
		Return(&models.Membership{Role: models.MembershipRoleAdmin, Status: models.MembershipStatusActive}, nil)
	suite.repo.On("List", mock.Anything, suite.associationID, mock.MatchedBy(func(f *models.AuditLogFilters) bool {
		return f.UserID == nil
	})).Return([]*models.AuditLog{{Action: models.AuditMeetingCreated}}, nil)

	logs, err := suite.service.List(suite.ctx, suite.associationID, suite.caller, nil)

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), logs, 1)
}

func (suite *AuditLogsServiceTestSuite) TestList_InvalidFilters() {
	since := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	until := since.Add(-time.Hour)
	tests := []struct {
		name    string
		filters models.AuditLogFilters
		errMsg  string
	}{
		{name: "negative offset", filters: models.AuditLogFilters{Offset: -1}, errMsg: "limit and offset must not be negative"},
		{name: "limit too large", filters: models.AuditLogFilters{Limit: 501}, errMsg: "limit cannot exceed 500"},
		{name: "inverted range", filters: models.AuditLogFilters{Since: &since, Until: &until}, errMsg: "until must not be before since"},
	}
	suite.access.On("RequireMembership", mock.Anything, suite.associationID, suite.caller).
		Return(&models.Membership{Role: models.MembershipRoleAdmin, Status: models.MembershipStatusActive}, nil)
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.service.List(suite.ctx, suite.associationID, suite.caller, &tt.filters)
			assert.EqualError(suite.T(), err, tt.errMsg)
		})
	}
	suite.repo.AssertNotCalled(suite.T(), "List", mock.Anything, mock.Anything, mock.Anything)
}
