package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"assochub/internal/models"
	"assochub/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// SetupTestDB connects to TEST_DATABASE_URL and applies the schema. Tests are
// skipped when the variable is unset so unit runs need no database.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("Failed to apply schema: %v", err)
	}

	return &TestDB{
		Pool: pool,
		Cleanup: func() error {
			pool.Close()
			return nil
		},
	}
}

// SetupTestAssociation creates an association on the free tier. Deleting it
// removes everything scoped to it.
func SetupTestAssociation(t *testing.T, db *TestDB) uuid.UUID {
	t.Helper()

	associationID := uuid.New()
	query := `
		INSERT INTO associations (id, name, subscription_tier, subscription_status, max_members, max_units, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, 'free', 'trialing', 25, 25, true, $3, $4, $4)
	`
	now := time.Now()
	_, err := db.Pool.Exec(context.Background(), query, associationID, "Test Association "+associationID.String()[:8], "test-user", now)
	if err != nil {
		t.Fatalf("Failed to create test association: %v", err)
	}

	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM associations WHERE id = $1`, associationID)
	})
	return associationID
}

// SetupTestMember creates an active member profile
func SetupTestMember(t *testing.T, db *TestDB, associationID uuid.UUID, email string) *models.Member {
	t.Helper()

	userID := "user-" + uuid.NewString()
	member := &models.Member{
		ID:            uuid.New(),
		AssociationID: associationID,
		UserID:        &userID,
		Email:         email,
		FirstName:     "Test",
		LastName:      "Member",
		Role:          models.MemberRoleMember,
		Status:        models.MemberStatusActive,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	query := `
		INSERT INTO members (id, association_id, user_id, email, first_name, last_name, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := db.Pool.Exec(context.Background(), query,
		member.ID, member.AssociationID, member.UserID, member.Email, member.FirstName, member.LastName,
		member.Role, member.Status, member.CreatedAt, member.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create test member: %v", err)
	}

	return member
}

// NewTestTopic returns an active single-choice topic open for the next hour
func NewTestTopic(associationID uuid.UUID, options ...string) *models.VotingTopic {
	if len(options) == 0 {
		options = []string{"Yes", "No"}
	}
	now := time.Now()
	return &models.VotingTopic{
		ID:            uuid.New(),
		AssociationID: associationID,
		Title:         "Test Topic",
		Description:   "Test description",
		Options:       options,
		CreatedBy:     "test-user",
		StartsAt:      now.Add(-time.Minute),
		EndsAt:        now.Add(time.Hour),
		Status:        models.TopicStatusActive,
		Visibility:    models.VisibleToAll(),
		ActivatedAt:   &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
