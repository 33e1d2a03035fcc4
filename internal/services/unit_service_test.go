package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"assochub/internal/models"
	"assochub/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type UnitServiceTestSuite struct {
	suite.Suite
	unitRepo        *MockUnitRepository
	memberRepo      *MockMemberRepository
	associationRepo *MockAssociationRepository
	access          *MockAccessService
	audit           *recordingAudit
	service         UnitService
	ctx             context.Context
	associationID   uuid.UUID
	caller          *models.Identity
}

func (suite *UnitServiceTestSuite) SetupTest() {
	suite.unitRepo = &MockUnitRepository{}
	suite.memberRepo = &MockMemberRepository{}
	suite.associationRepo = &MockAssociationRepository{}
	suite.access = &MockAccessService{}
	suite.audit = &recordingAudit{}
	svc := NewUnitService(suite.unitRepo, suite.memberRepo, suite.associationRepo, suite.access, suite.audit)
	svc.(*unitService).now = fixedClock(time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC))
	suite.service = svc
	suite.ctx = context.Background()
	suite.associationID = uuid.New()
	suite.caller = &models.Identity{UserID: "admin-1", Email: "admin@example.com"}

	suite.access.On("RequireAdmin", mock.Anything, suite.associationID, suite.caller).
		Return(&models.Membership{Role: models.MembershipRoleAdmin, Status: models.MembershipStatusActive}, nil)
}

func TestUnitServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UnitServiceTestSuite))
}

func (suite *UnitServiceTestSuite) expectUnitAndMember(unit *models.Unit, member *models.Member) {
	suite.unitRepo.On("GetByID", mock.Anything, suite.associationID, unit.ID).Return(unit, nil)
	suite.memberRepo.On("GetByID", mock.Anything, suite.associationID, member.ID).Return(member, nil)
}

func (suite *UnitServiceTestSuite) TestAssignUnit_Success() {
	unit := &models.Unit{ID: uuid.New(), Name: "A-101"}
	member := &models.Member{ID: uuid.New(), Email: "owner@example.com"}
	suite.expectUnitAndMember(unit, member)
	suite.unitRepo.On("GetAssignment", mock.Anything, suite.associationID, unit.ID).Return(nil, repositories.ErrNotFound)
	suite.unitRepo.On("Assign", mock.Anything, mock.AnythingOfType("*models.MemberUnit")).Return(nil)

	assignment, err := suite.service.AssignUnit(suite.ctx, suite.associationID, unit.ID, member.ID, suite.caller)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), member.ID, assignment.MemberID)
	assert.Equal(suite.T(), unit.ID, assignment.UnitID)
	assert.Equal(suite.T(), []string{models.AuditUnitAssigned}, suite.audit.actions())
}

func (suite *UnitServiceTestSuite) TestAssignUnit_HeldByAnotherMember() {
	unit := &models.Unit{ID: uuid.New(), Name: "A-101"}
	member := &models.Member{ID: uuid.New()}
	holder := uuid.New()
	suite.expectUnitAndMember(unit, member)
	suite.unitRepo.On("GetAssignment", mock.Anything, suite.associationID, unit.ID).
		Return(&models.MemberUnit{MemberID: holder, UnitID: unit.ID}, nil)

	_, err := suite.service.AssignUnit(suite.ctx, suite.associationID, unit.ID, member.ID, suite.caller)

	assert.EqualError(suite.T(), err, "Unit A-101 is already assigned to another member")
	suite.unitRepo.AssertNotCalled(suite.T(), "Assign", mock.Anything, mock.Anything)
	assert.Empty(suite.T(), suite.audit.entries)
}

func (suite *UnitServiceTestSuite) TestAssignUnit_AlreadyHeldBySameMember() {
	unit := &models.Unit{ID: uuid.New(), Name: "B-7"}
	member := &models.Member{ID: uuid.New()}
	suite.expectUnitAndMember(unit, member)
	suite.unitRepo.On("GetAssignment", mock.Anything, suite.associationID, unit.ID).
		Return(&models.MemberUnit{MemberID: member.ID, UnitID: unit.ID}, nil)

	_, err := suite.service.AssignUnit(suite.ctx, suite.associationID, unit.ID, member.ID, suite.caller)

	assert.EqualError(suite.T(), err, "Unit B-7 is already assigned to this member")
}

func (suite *UnitServiceTestSuite) TestAssignUnit_LostRaceOnUniqueIndex() {
	unit := &models.Unit{ID: uuid.New(), Name: "C-3"}
	member := &models.Member{ID: uuid.New()}
	suite.expectUnitAndMember(unit, member)
	suite.unitRepo.On("GetAssignment", mock.Anything, suite.associationID, unit.ID).Return(nil, repositories.ErrNotFound)
	suite.unitRepo.On("Assign", mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: member_units_unit_id_key", repositories.ErrDuplicate))

	_, err := suite.service.AssignUnit(suite.ctx, suite.associationID, unit.ID, member.ID, suite.caller)

	assert.True(suite.T(), IsKind(err, KindValidation))
	assert.EqualError(suite.T(), err, "Unit C-3 is already assigned to another member")
}

func (suite *UnitServiceTestSuite) TestAssignUnit_UnknownMember() {
	unit := &models.Unit{ID: uuid.New(), Name: "A-1"}
	memberID := uuid.New()
	suite.unitRepo.On("GetByID", mock.Anything, suite.associationID, unit.ID).Return(unit, nil)
	suite.memberRepo.On("GetByID", mock.Anything, suite.associationID, memberID).Return(nil, repositories.ErrNotFound)

	_, err := suite.service.AssignUnit(suite.ctx, suite.associationID, unit.ID, memberID, suite.caller)

	assert.EqualError(suite.T(), err, "Member not found")
	assert.True(suite.T(), IsKind(err, KindNotFound))
}

func (suite *UnitServiceTestSuite) TestUnassignUnit_NotAssigned() {
	unitID, memberID := uuid.New(), uuid.New()
	suite.unitRepo.On("Unassign", mock.Anything, suite.associationID, memberID, unitID).Return(repositories.ErrNotFound)

	err := suite.service.UnassignUnit(suite.ctx, suite.associationID, unitID, memberID, suite.caller)

	assert.EqualError(suite.T(), err, "Unit assignment not found")
}

func (suite *UnitServiceTestSuite) TestCreateUnit_Success() {
	suite.associationRepo.On("GetByID", mock.Anything, suite.associationID).
		Return(&models.Association{ID: suite.associationID, MaxUnits: 25, SubscriptionTier: "free"}, nil)
	suite.unitRepo.On("Count", mock.Anything, suite.associationID).Return(3, nil)
	suite.unitRepo.On("GetByName", mock.Anything, suite.associationID, "A-101").Return(nil, repositories.ErrNotFound)
	suite.unitRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	unit, err := suite.service.CreateUnit(suite.ctx, suite.associationID, suite.caller, &UnitRequest{Name: "  A-101 "})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "A-101", unit.Name)
	assert.Equal(suite.T(), models.UnitStatusActive, unit.Status)
}

func (suite *UnitServiceTestSuite) TestCreateUnit_PlanLimitReached() {
	suite.associationRepo.On("GetByID", mock.Anything, suite.associationID).
		Return(&models.Association{ID: suite.associationID, MaxUnits: 25, SubscriptionTier: "free"}, nil)
	suite.unitRepo.On("Count", mock.Anything, suite.associationID).Return(25, nil)

	_, err := suite.service.CreateUnit(suite.ctx, suite.associationID, suite.caller, &UnitRequest{Name: "Z-1"})

	assert.EqualError(suite.T(), err, "Unit limit of 25 reached for the free plan")
	suite.unitRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *UnitServiceTestSuite) TestCreateUnit_Validation() {
	negative := -4.0
	tests := []struct {
		name   string
		req    UnitRequest
		errMsg string
	}{
		{name: "blank name", req: UnitRequest{Name: "   "}, errMsg: "Unit name is required"},
		{name: "bad status", req: UnitRequest{Name: "A", Status: "demolished"}, errMsg: "Unit status must be one of: active, inactive, vacant"},
		{name: "negative size", req: UnitRequest{Name: "A", Size: &negative}, errMsg: "Unit size must be positive"},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.service.CreateUnit(suite.ctx, suite.associationID, suite.caller, &tt.req)
			assert.EqualError(suite.T(), err, tt.errMsg)
		})
	}
}

func (suite *UnitServiceTestSuite) TestCreateUnit_RequiresAdmin() {
	member := &models.Identity{UserID: "member-1"}
	suite.access.On("RequireAdmin", mock.Anything, suite.associationID, member).
		Return(nil, Forbidden("Only association admins can perform this action"))

	_, err := suite.service.CreateUnit(suite.ctx, suite.associationID, member, &UnitRequest{Name: "A"})

	assert.True(suite.T(), IsKind(err, KindForbidden))
}

func (suite *UnitServiceTestSuite) TestDeleteUnit_RepositoryError() {
	unit := &models.Unit{ID: uuid.New(), Name: "A-1"}
	suite.unitRepo.On("GetByID", mock.Anything, suite.associationID, unit.ID).Return(unit, nil)
	suite.unitRepo.On("Delete", mock.Anything, suite.associationID, unit.ID).Return(errors.New("connection reset"))

	err := suite.service.DeleteUnit(suite.ctx, suite.associationID, unit.ID, suite.caller)

	assert.EqualError(suite.T(), err, "connection reset")
	assert.Empty(suite.T(), suite.audit.entries)
}
