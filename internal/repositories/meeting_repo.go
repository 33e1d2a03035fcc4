package repositories

import (
	"context"
	"time"

	"assochub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type MeetingRepository interface {
	Create(ctx context.Context, meeting *models.Meeting) error
	GetByID(ctx context.Context, associationID, id uuid.UUID) (*models.Meeting, error)
	List(ctx context.Context, associationID uuid.UUID, status *models.MeetingStatus, limit, offset int) ([]*models.Meeting, error)
	Update(ctx context.Context, meeting *models.Meeting) error
	Delete(ctx context.Context, associationID, id uuid.UUID) error
	ListNeedingReminder(ctx context.Context, from, to time.Time) ([]*models.Meeting, error)
	MarkReminderSent(ctx context.Context, associationID, id uuid.UUID) error
	MarkNotificationsSent(ctx context.Context, associationID, id uuid.UUID) error

	UpsertAttendance(ctx context.Context, attendance *models.MeetingAttendance) (*models.MeetingAttendance, error)
	GetAttendance(ctx context.Context, meetingID, memberID uuid.UUID) (*models.MeetingAttendance, error)
	ListAttendance(ctx context.Context, meetingID uuid.UUID) ([]*models.MeetingAttendance, error)
}

type meetingRepo struct {
	db DB
}

func NewMeetingRepository(db DB) MeetingRepository {
	return &meetingRepo{db: db}
}

const meetingColumns = `id, association_id, title, description, type, scheduled_at, location, status, agenda, invite_scope,
		notifications_sent, reminder_sent, attendance_count, notes, created_by, last_action_by, scheduled_status_at,
		completed_at, archived_at, cancelled_at, created_at, updated_at`

func scanMeeting(row pgx.Row) (*models.Meeting, error) {
	m := &models.Meeting{}
	var agenda, scope []byte
	err := row.Scan(&m.ID, &m.AssociationID, &m.Title, &m.Description, &m.Type, &m.ScheduledAt, &m.Location, &m.Status,
		&agenda, &scope, &m.NotificationsSent, &m.ReminderSent, &m.AttendanceCount, &m.Notes, &m.CreatedBy,
		&m.LastActionBy, &m.ScheduledStatusAt, &m.CompletedAt, &m.ArchivedAt, &m.CancelledAt, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	if err := unmarshalJSON(agenda, &m.Agenda); err != nil {
		return nil, err
	}
	m.InviteScope = models.InviteScope{Kind: models.InviteAllMembers}
	if err := unmarshalJSON(scope, &m.InviteScope); err != nil {
		return nil, err
	}
	return m, nil
}

func encodeMeetingJSON(m *models.Meeting) (agenda, scope []byte, err error) {
	items := m.Agenda
	if items == nil {
		items = []models.AgendaItem{}
	}
	if agenda, err = marshalJSON(items); err != nil {
		return nil, nil, err
	}
	if scope, err = marshalJSON(m.InviteScope); err != nil {
		return nil, nil, err
	}
	return agenda, scope, nil
}

func (r *meetingRepo) Create(ctx context.Context, m *models.Meeting) error {
	agenda, scope, err := encodeMeetingJSON(m)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO meetings (id, association_id, title, description, type, scheduled_at, location, status, agenda,
			invite_scope, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`
	_, err = r.db.Exec(ctx, query, m.ID, m.AssociationID, m.Title, m.Description, m.Type, m.ScheduledAt, m.Location,
		m.Status, agenda, scope, m.CreatedBy)
	return translate(err)
}

func (r *meetingRepo) GetByID(ctx context.Context, associationID, id uuid.UUID) (*models.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE association_id = $1 AND id = $2`
	return scanMeeting(r.db.QueryRow(ctx, query, associationID, id))
}

func (r *meetingRepo) List(ctx context.Context, associationID uuid.UUID, status *models.MeetingStatus, limit, offset int) ([]*models.Meeting, error) {
	query := `
		SELECT ` + meetingColumns + `
		FROM meetings
		WHERE association_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY scheduled_at DESC
		LIMIT $3 OFFSET $4
	`
	return r.query(ctx, query, associationID, status, limit, offset)
}

func (r *meetingRepo) ListNeedingReminder(ctx context.Context, from, to time.Time) ([]*models.Meeting, error) {
	query := `
		SELECT ` + meetingColumns + `
		FROM meetings
		WHERE status = 'scheduled' AND NOT reminder_sent AND scheduled_at BETWEEN $1 AND $2
		ORDER BY scheduled_at
	`
	return r.query(ctx, query, from, to)
}

func (r *meetingRepo) query(ctx context.Context, query string, args ...interface{}) ([]*models.Meeting, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meetings []*models.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

// Update writes every mutable column of the meeting.
func (r *meetingRepo) Update(ctx context.Context, m *models.Meeting) error {
	agenda, scope, err := encodeMeetingJSON(m)
	if err != nil {
		return err
	}
	query := `
		UPDATE meetings
		SET title = $1, description = $2, type = $3, scheduled_at = $4, location = $5, status = $6, agenda = $7,
			invite_scope = $8, notifications_sent = $9, reminder_sent = $10, attendance_count = $11, notes = $12,
			last_action_by = $13, scheduled_status_at = $14, completed_at = $15, archived_at = $16, cancelled_at = $17,
			updated_at = $18
		WHERE association_id = $19 AND id = $20
	`
	tag, err := r.db.Exec(ctx, query, m.Title, m.Description, m.Type, m.ScheduledAt, m.Location, m.Status, agenda, scope,
		m.NotificationsSent, m.ReminderSent, m.AttendanceCount, m.Notes, m.LastActionBy, m.ScheduledStatusAt,
		m.CompletedAt, m.ArchivedAt, m.CancelledAt, m.UpdatedAt, m.AssociationID, m.ID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the meeting. RSVP rows are removed by ON DELETE CASCADE.
func (r *meetingRepo) Delete(ctx context.Context, associationID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM meetings WHERE association_id = $1 AND id = $2`, associationID, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *meetingRepo) MarkReminderSent(ctx context.Context, associationID, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE meetings SET reminder_sent = TRUE, updated_at = NOW() WHERE association_id = $1 AND id = $2`, associationID, id)
	return translate(err)
}

func (r *meetingRepo) MarkNotificationsSent(ctx context.Context, associationID, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE meetings SET notifications_sent = TRUE, updated_at = NOW() WHERE association_id = $1 AND id = $2`, associationID, id)
	return translate(err)
}

// UpsertAttendance writes the RSVP for (meeting, member), overwriting status,
// notes and response time when one already exists.
func (r *meetingRepo) UpsertAttendance(ctx context.Context, a *models.MeetingAttendance) (*models.MeetingAttendance, error) {
	query := `
		INSERT INTO meeting_attendance (id, association_id, meeting_id, member_id, status, notes, responded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (meeting_id, member_id)
		DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes, responded_at = EXCLUDED.responded_at
		RETURNING id, association_id, meeting_id, member_id, status, notes, responded_at
	`
	out := &models.MeetingAttendance{}
	err := r.db.QueryRow(ctx, query, a.ID, a.AssociationID, a.MeetingID, a.MemberID, a.Status, a.Notes, a.RespondedAt).
		Scan(&out.ID, &out.AssociationID, &out.MeetingID, &out.MemberID, &out.Status, &out.Notes, &out.RespondedAt)
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *meetingRepo) GetAttendance(ctx context.Context, meetingID, memberID uuid.UUID) (*models.MeetingAttendance, error) {
	a := &models.MeetingAttendance{}
	query := `
		SELECT id, association_id, meeting_id, member_id, status, notes, responded_at
		FROM meeting_attendance
		WHERE meeting_id = $1 AND member_id = $2
	`
	err := r.db.QueryRow(ctx, query, meetingID, memberID).Scan(&a.ID, &a.AssociationID, &a.MeetingID, &a.MemberID, &a.Status, &a.Notes, &a.RespondedAt)
	if err != nil {
		return nil, translate(err)
	}
	return a, nil
}

func (r *meetingRepo) ListAttendance(ctx context.Context, meetingID uuid.UUID) ([]*models.MeetingAttendance, error) {
	query := `
		SELECT id, association_id, meeting_id, member_id, status, notes, responded_at
		FROM meeting_attendance
		WHERE meeting_id = $1
		ORDER BY responded_at
	`
	rows, err := r.db.Query(ctx, query, meetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attendance []*models.MeetingAttendance
	for rows.Next() {
		a := &models.MeetingAttendance{}
		if err := rows.Scan(&a.ID, &a.AssociationID, &a.MeetingID, &a.MemberID, &a.Status, &a.Notes, &a.RespondedAt); err != nil {
			return nil, err
		}
		attendance = append(attendance, a)
	}
	return attendance, rows.Err()
}
