package handlers

import (
	"context"
	"time"

	"assochub/internal/models"
	"assochub/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockMeetingService struct {
	mock.Mock
}

func (m *MockMeetingService) meeting(args mock.Arguments) (*models.Meeting, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Meeting), args.Error(1)
}

func (m *MockMeetingService) CreateMeeting(ctx context.Context, associationID uuid.UUID, caller *models.Identity, req *services.CreateMeetingRequest) (*models.Meeting, error) {
	return m.meeting(m.Called(ctx, associationID, caller, req))
}

func (m *MockMeetingService) UpdateMeeting(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity, req *services.UpdateMeetingRequest) (*models.Meeting, error) {
	return m.meeting(m.Called(ctx, associationID, meetingID, caller, req))
}

func (m *MockMeetingService) DeleteMeeting(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity) error {
	args := m.Called(ctx, associationID, meetingID, caller)
	return args.Error(0)
}

func (m *MockMeetingService) GetMeeting(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity) (*models.Meeting, error) {
	return m.meeting(m.Called(ctx, associationID, meetingID, caller))
}

func (m *MockMeetingService) ListMeetings(ctx context.Context, associationID uuid.UUID, caller *models.Identity, status *models.MeetingStatus, limit, offset int) ([]*models.Meeting, error) {
	args := m.Called(ctx, associationID, caller, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Meeting), args.Error(1)
}

func (m *MockMeetingService) Schedule(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity) (*models.Meeting, error) {
	return m.meeting(m.Called(ctx, associationID, meetingID, caller))
}

func (m *MockMeetingService) Complete(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity, req *services.CompleteMeetingRequest) (*models.Meeting, error) {
	return m.meeting(m.Called(ctx, associationID, meetingID, caller, req))
}

func (m *MockMeetingService) Archive(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity) (*models.Meeting, error) {
	return m.meeting(m.Called(ctx, associationID, meetingID, caller))
}

func (m *MockMeetingService) Cancel(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity, reason string) (*models.Meeting, error) {
	return m.meeting(m.Called(ctx, associationID, meetingID, caller, reason))
}

func (m *MockMeetingService) RSVP(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity, req *services.RSVPRequest) (*models.MeetingAttendance, error) {
	args := m.Called(ctx, associationID, meetingID, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MeetingAttendance), args.Error(1)
}

func (m *MockMeetingService) GetMyRSVP(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity) (*models.MeetingAttendance, error) {
	args := m.Called(ctx, associationID, meetingID, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MeetingAttendance), args.Error(1)
}

func (m *MockMeetingService) ListAttendance(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity) ([]*models.MeetingAttendance, error) {
	args := m.Called(ctx, associationID, meetingID, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MeetingAttendance), args.Error(1)
}

func (m *MockMeetingService) AttendanceStats(ctx context.Context, associationID, meetingID uuid.UUID, caller *models.Identity) (*models.AttendanceStats, error) {
	args := m.Called(ctx, associationID, meetingID, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AttendanceStats), args.Error(1)
}

func (m *MockMeetingService) SendReminders(ctx context.Context, window time.Duration) (int, error) {
	args := m.Called(ctx, window)
	return args.Int(0), args.Error(1)
}

type MockBillingService struct {
	mock.Mock
}

func (m *MockBillingService) ListTiers(ctx context.Context) ([]*models.SubscriptionTier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SubscriptionTier), args.Error(1)
}

func (m *MockBillingService) CreateCheckoutSession(ctx context.Context, associationID uuid.UUID, caller *models.Identity, req *services.CheckoutRequest) (*services.CheckoutSession, error) {
	args := m.Called(ctx, associationID, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CheckoutSession), args.Error(1)
}

func (m *MockBillingService) CreatePortalSession(ctx context.Context, associationID uuid.UUID, caller *models.Identity) (string, error) {
	args := m.Called(ctx, associationID, caller)
	return args.String(0), args.Error(1)
}

func (m *MockBillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	args := m.Called(ctx, payload, signature)
	return args.Error(0)
}

func (m *MockBillingService) ExpireTrials(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
