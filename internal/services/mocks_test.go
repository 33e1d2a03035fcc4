package services

import (
	"context"
	"time"

	"assochub/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Access

type MockAccessService struct {
	mock.Mock
}

func (m *MockAccessService) RequireMembership(ctx context.Context, associationID uuid.UUID, caller *models.Identity) (*models.Membership, error) {
	args := m.Called(ctx, associationID, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Membership), args.Error(1)
}

func (m *MockAccessService) RequireAdmin(ctx context.Context, associationID uuid.UUID, caller *models.Identity) (*models.Membership, error) {
	args := m.Called(ctx, associationID, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Membership), args.Error(1)
}

func (m *MockAccessService) ResolveMember(ctx context.Context, associationID uuid.UUID, caller *models.Identity) (*models.Member, error) {
	args := m.Called(ctx, associationID, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func (m *MockAccessService) ResolveViewer(ctx context.Context, associationID uuid.UUID, caller *models.Identity) (*Viewer, error) {
	args := m.Called(ctx, associationID, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Viewer), args.Error(1)
}

// Audit

// recordingAudit keeps every entry in memory.
type recordingAudit struct {
	entries []AuditEntry
}

func (a *recordingAudit) Log(_ context.Context, entry AuditEntry) {
	a.entries = append(a.entries, entry)
}

func (a *recordingAudit) List(context.Context, uuid.UUID, *models.Identity, *models.AuditLogFilters) ([]*models.AuditLog, error) {
	return nil, nil
}

func (a *recordingAudit) actions() []string {
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

type MockAuditLogsRepository struct {
	mock.Mock
}

func (m *MockAuditLogsRepository) Create(ctx context.Context, auditLog *models.AuditLog) error {
	args := m.Called(ctx, auditLog)
	return args.Error(0)
}

func (m *MockAuditLogsRepository) List(ctx context.Context, associationID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	args := m.Called(ctx, associationID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

// Voting

type MockVotingRepository struct {
	mock.Mock
}

func (m *MockVotingRepository) CreateTopic(ctx context.Context, topic *models.VotingTopic) error {
	args := m.Called(ctx, topic)
	return args.Error(0)
}

func (m *MockVotingRepository) GetTopic(ctx context.Context, associationID, id uuid.UUID) (*models.VotingTopic, error) {
	args := m.Called(ctx, associationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VotingTopic), args.Error(1)
}

func (m *MockVotingRepository) ListTopics(ctx context.Context, associationID uuid.UUID, status *models.TopicStatus) ([]*models.VotingTopic, error) {
	args := m.Called(ctx, associationID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.VotingTopic), args.Error(1)
}

func (m *MockVotingRepository) UpdateTopicStatus(ctx context.Context, associationID, id uuid.UUID, from, to models.TopicStatus, at time.Time) error {
	args := m.Called(ctx, associationID, id, from, to, at)
	return args.Error(0)
}

func (m *MockVotingRepository) DeleteTopic(ctx context.Context, associationID, id uuid.UUID) error {
	args := m.Called(ctx, associationID, id)
	return args.Error(0)
}

func (m *MockVotingRepository) CreateVote(ctx context.Context, vote *models.Vote) error {
	args := m.Called(ctx, vote)
	return args.Error(0)
}

func (m *MockVotingRepository) GetVote(ctx context.Context, topicID, memberID uuid.UUID) (*models.Vote, error) {
	args := m.Called(ctx, topicID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vote), args.Error(1)
}

func (m *MockVotingRepository) ListVotes(ctx context.Context, topicID uuid.UUID) ([]*models.Vote, error) {
	args := m.Called(ctx, topicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Vote), args.Error(1)
}

// Units

type MockUnitRepository struct {
	mock.Mock
}

func (m *MockUnitRepository) Create(ctx context.Context, unit *models.Unit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *MockUnitRepository) GetByID(ctx context.Context, associationID, id uuid.UUID) (*models.Unit, error) {
	args := m.Called(ctx, associationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Unit), args.Error(1)
}

func (m *MockUnitRepository) GetByName(ctx context.Context, associationID uuid.UUID, name string) (*models.Unit, error) {
	args := m.Called(ctx, associationID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Unit), args.Error(1)
}

func (m *MockUnitRepository) List(ctx context.Context, associationID uuid.UUID, limit, offset int) ([]*models.Unit, error) {
	args := m.Called(ctx, associationID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Unit), args.Error(1)
}

func (m *MockUnitRepository) Update(ctx context.Context, unit *models.Unit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *MockUnitRepository) Delete(ctx context.Context, associationID, id uuid.UUID) error {
	args := m.Called(ctx, associationID, id)
	return args.Error(0)
}

func (m *MockUnitRepository) Count(ctx context.Context, associationID uuid.UUID) (int, error) {
	args := m.Called(ctx, associationID)
	return args.Int(0), args.Error(1)
}

func (m *MockUnitRepository) Assign(ctx context.Context, assignment *models.MemberUnit) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *MockUnitRepository) Unassign(ctx context.Context, associationID, memberID, unitID uuid.UUID) error {
	args := m.Called(ctx, associationID, memberID, unitID)
	return args.Error(0)
}

func (m *MockUnitRepository) GetAssignment(ctx context.Context, associationID, unitID uuid.UUID) (*models.MemberUnit, error) {
	args := m.Called(ctx, associationID, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MemberUnit), args.Error(1)
}

func (m *MockUnitRepository) ListAssignments(ctx context.Context, associationID uuid.UUID) ([]*models.MemberUnit, error) {
	args := m.Called(ctx, associationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MemberUnit), args.Error(1)
}

func (m *MockUnitRepository) ListByMember(ctx context.Context, associationID, memberID uuid.UUID) ([]*models.Unit, error) {
	args := m.Called(ctx, associationID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Unit), args.Error(1)
}

func (m *MockUnitRepository) ListMemberIDsByUnits(ctx context.Context, associationID uuid.UUID, unitIDs []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, associationID, unitIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockUnitRepository) DeleteAssignmentsByMember(ctx context.Context, associationID, memberID uuid.UUID) error {
	args := m.Called(ctx, associationID, memberID)
	return args.Error(0)
}

// Meetings

type MockMeetingRepository struct {
	mock.Mock
}

func (m *MockMeetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	args := m.Called(ctx, meeting)
	return args.Error(0)
}

func (m *MockMeetingRepository) GetByID(ctx context.Context, associationID, id uuid.UUID) (*models.Meeting, error) {
	args := m.Called(ctx, associationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) List(ctx context.Context, associationID uuid.UUID, status *models.MeetingStatus, limit, offset int) ([]*models.Meeting, error) {
	args := m.Called(ctx, associationID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) Update(ctx context.Context, meeting *models.Meeting) error {
	args := m.Called(ctx, meeting)
	return args.Error(0)
}

func (m *MockMeetingRepository) Delete(ctx context.Context, associationID, id uuid.UUID) error {
	args := m.Called(ctx, associationID, id)
	return args.Error(0)
}

func (m *MockMeetingRepository) ListNeedingReminder(ctx context.Context, from, to time.Time) ([]*models.Meeting, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Meeting), args.Error(1)
}

func (m *MockMeetingRepository) MarkNotificationsSent(ctx context.Context, associationID, id uuid.UUID) error {
	args := m.Called(ctx, associationID, id)
	return args.Error(0)
}

func (m *MockMeetingRepository) MarkReminderSent(ctx context.Context, associationID, id uuid.UUID) error {
	args := m.Called(ctx, associationID, id)
	return args.Error(0)
}

func (m *MockMeetingRepository) UpsertAttendance(ctx context.Context, attendance *models.MeetingAttendance) (*models.MeetingAttendance, error) {
	args := m.Called(ctx, attendance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MeetingAttendance), args.Error(1)
}

func (m *MockMeetingRepository) GetAttendance(ctx context.Context, meetingID, memberID uuid.UUID) (*models.MeetingAttendance, error) {
	args := m.Called(ctx, meetingID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MeetingAttendance), args.Error(1)
}

func (m *MockMeetingRepository) ListAttendance(ctx context.Context, meetingID uuid.UUID) ([]*models.MeetingAttendance, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MeetingAttendance), args.Error(1)
}

// Members

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Create(ctx context.Context, member *models.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepository) GetByID(ctx context.Context, associationID, id uuid.UUID) (*models.Member, error) {
	args := m.Called(ctx, associationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func (m *MockMemberRepository) GetByEmail(ctx context.Context, associationID uuid.UUID, email string) (*models.Member, error) {
	args := m.Called(ctx, associationID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func (m *MockMemberRepository) List(ctx context.Context, associationID uuid.UUID, limit, offset int) ([]*models.Member, error) {
	args := m.Called(ctx, associationID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Member), args.Error(1)
}

func (m *MockMemberRepository) ListAll(ctx context.Context, associationID uuid.UUID) ([]*models.Member, error) {
	args := m.Called(ctx, associationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Member), args.Error(1)
}

func (m *MockMemberRepository) ListByIDs(ctx context.Context, associationID uuid.UUID, ids []uuid.UUID) ([]*models.Member, error) {
	args := m.Called(ctx, associationID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Member), args.Error(1)
}

func (m *MockMemberRepository) ListInvitedByEmail(ctx context.Context, email string) ([]*models.Member, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Member), args.Error(1)
}

func (m *MockMemberRepository) Update(ctx context.Context, member *models.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepository) LinkUser(ctx context.Context, associationID, id uuid.UUID, userID string) error {
	args := m.Called(ctx, associationID, id, userID)
	return args.Error(0)
}

func (m *MockMemberRepository) Delete(ctx context.Context, associationID, id uuid.UUID) error {
	args := m.Called(ctx, associationID, id)
	return args.Error(0)
}

func (m *MockMemberRepository) Count(ctx context.Context, associationID uuid.UUID) (int, error) {
	args := m.Called(ctx, associationID)
	return args.Int(0), args.Error(1)
}

// Memberships

type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) Create(ctx context.Context, membership *models.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockMembershipRepository) GetByID(ctx context.Context, associationID, id uuid.UUID) (*models.Membership, error) {
	args := m.Called(ctx, associationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Membership), args.Error(1)
}

func (m *MockMembershipRepository) GetByUser(ctx context.Context, associationID uuid.UUID, userID string) (*models.Membership, error) {
	args := m.Called(ctx, associationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Membership), args.Error(1)
}

func (m *MockMembershipRepository) List(ctx context.Context, associationID uuid.UUID) ([]*models.Membership, error) {
	args := m.Called(ctx, associationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Membership), args.Error(1)
}

func (m *MockMembershipRepository) ListByRoles(ctx context.Context, associationID uuid.UUID, roles ...models.MembershipRole) ([]*models.Membership, error) {
	args := m.Called(ctx, associationID, roles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Membership), args.Error(1)
}

func (m *MockMembershipRepository) UpdateRole(ctx context.Context, associationID, id uuid.UUID, role models.MembershipRole) error {
	args := m.Called(ctx, associationID, id, role)
	return args.Error(0)
}

func (m *MockMembershipRepository) Delete(ctx context.Context, associationID, id uuid.UUID) error {
	args := m.Called(ctx, associationID, id)
	return args.Error(0)
}

// Associations

type MockAssociationRepository struct {
	mock.Mock
}

func (m *MockAssociationRepository) Create(ctx context.Context, association *models.Association) error {
	args := m.Called(ctx, association)
	return args.Error(0)
}

func (m *MockAssociationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Association, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Association), args.Error(1)
}

func (m *MockAssociationRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*models.Association, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Association), args.Error(1)
}

func (m *MockAssociationRepository) Update(ctx context.Context, association *models.Association) error {
	args := m.Called(ctx, association)
	return args.Error(0)
}

func (m *MockAssociationRepository) SetActive(ctx context.Context, id uuid.UUID, active bool, reason *string) error {
	args := m.Called(ctx, id, active, reason)
	return args.Error(0)
}

func (m *MockAssociationRepository) UpdateSubscription(ctx context.Context, association *models.Association) error {
	args := m.Called(ctx, association)
	return args.Error(0)
}

func (m *MockAssociationRepository) List(ctx context.Context, limit, offset int) ([]*models.Association, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Association), args.Error(1)
}

func (m *MockAssociationRepository) ListByUser(ctx context.Context, userID string) ([]*models.Association, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Association), args.Error(1)
}

func (m *MockAssociationRepository) ListTrialsEndedBefore(ctx context.Context, cutoff time.Time) ([]*models.Association, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Association), args.Error(1)
}

func (m *MockAssociationRepository) GetPlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformStats), args.Error(1)
}

// Billing

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) ListTiers(ctx context.Context, activeOnly bool) ([]*models.SubscriptionTier, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SubscriptionTier), args.Error(1)
}

func (m *MockSubscriptionRepository) GetTier(ctx context.Context, name string) (*models.SubscriptionTier, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionTier), args.Error(1)
}

func (m *MockSubscriptionRepository) CreateTier(ctx context.Context, tier *models.SubscriptionTier) error {
	args := m.Called(ctx, tier)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) UpdateTier(ctx context.Context, tier *models.SubscriptionTier) error {
	args := m.Called(ctx, tier)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) HasEvent(ctx context.Context, providerEventID string) (bool, error) {
	args := m.Called(ctx, providerEventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubscriptionRepository) RecordEvent(ctx context.Context, event *models.BillingEvent) (bool, error) {
	args := m.Called(ctx, event)
	return args.Bool(0), args.Error(1)
}

type MockPlatformAdminRepository struct {
	mock.Mock
}

func (m *MockPlatformAdminRepository) GetByUserID(ctx context.Context, userID string) (*models.PlatformAdmin, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformAdmin), args.Error(1)
}

func (m *MockPlatformAdminRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PlatformAdmin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformAdmin), args.Error(1)
}

func (m *MockPlatformAdminRepository) List(ctx context.Context) ([]*models.PlatformAdmin, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PlatformAdmin), args.Error(1)
}

func (m *MockPlatformAdminRepository) Create(ctx context.Context, admin *models.PlatformAdmin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockPlatformAdminRepository) Update(ctx context.Context, admin *models.PlatformAdmin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateCheckoutSession(ctx context.Context, params *CheckoutParams) (*CheckoutSession, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CheckoutSession), args.Error(1)
}

func (m *MockPaymentGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	args := m.Called(ctx, customerID, returnURL)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentGateway) ParseWebhook(payload []byte, signature string) (*BillingWebhookEvent, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BillingWebhookEvent), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetTiers(ctx context.Context) ([]*models.SubscriptionTier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SubscriptionTier), args.Error(1)
}

func (m *MockCacheService) SetTiers(ctx context.Context, tiers []*models.SubscriptionTier, ttl time.Duration) error {
	args := m.Called(ctx, tiers, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateTiers(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheService) GetPlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformStats), args.Error(1)
}

func (m *MockCacheService) SetPlatformStats(ctx context.Context, stats *models.PlatformStats, ttl time.Duration) error {
	args := m.Called(ctx, stats, ttl)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Notifications

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Enqueue(ctx context.Context, msg *EmailMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockNotificationService) EnqueueBestEffort(ctx context.Context, msg *EmailMessage) bool {
	args := m.Called(ctx, msg)
	return args.Bool(0)
}

func (m *MockNotificationService) Dispatch(ctx context.Context, max int) (int, error) {
	args := m.Called(ctx, max)
	return args.Int(0), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg *EmailMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// Documents

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, document *models.Document) error {
	args := m.Called(ctx, document)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, associationID, id uuid.UUID) (*models.Document, error) {
	args := m.Called(ctx, associationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockDocumentRepository) List(ctx context.Context, associationID uuid.UUID, category *string, limit, offset int) ([]*models.Document, error) {
	args := m.Called(ctx, associationID, category, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Document), args.Error(1)
}

func (m *MockDocumentRepository) Update(ctx context.Context, document *models.Document) error {
	args := m.Called(ctx, document)
	return args.Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, associationID, id uuid.UUID) error {
	args := m.Called(ctx, associationID, id)
	return args.Error(0)
}

type MockStorageService struct {
	mock.Mock
}

func (m *MockStorageService) PresignUpload(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectKey, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockStorageService) PresignDownload(ctx context.Context, objectKey, fileName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectKey, fileName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockStorageService) Remove(ctx context.Context, objectKey string) error {
	args := m.Called(ctx, objectKey)
	return args.Error(0)
}

func (m *MockStorageService) EnsureBucketExists(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStorageService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
