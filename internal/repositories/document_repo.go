package repositories

import (
	"context"

	"assochub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *models.Document) error
	GetByID(ctx context.Context, associationID, id uuid.UUID) (*models.Document, error)
	List(ctx context.Context, associationID uuid.UUID, category *string, limit, offset int) ([]*models.Document, error)
	Update(ctx context.Context, document *models.Document) error
	Delete(ctx context.Context, associationID, id uuid.UUID) error
}

type documentRepo struct {
	db DB
}

func NewDocumentRepository(db DB) DocumentRepository {
	return &documentRepo{db: db}
}

const documentColumns = `id, association_id, title, description, category, file_key, file_name, content_type,
		file_size, uploaded_by, visibility, created_at, updated_at`

func scanDocument(row pgx.Row) (*models.Document, error) {
	d := &models.Document{}
	var visibility []byte
	err := row.Scan(&d.ID, &d.AssociationID, &d.Title, &d.Description, &d.Category, &d.FileKey, &d.FileName, &d.ContentType,
		&d.FileSize, &d.UploadedBy, &visibility, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	if d.Visibility, err = decodeVisibility(visibility); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *documentRepo) Create(ctx context.Context, d *models.Document) error {
	visibility, err := marshalJSON(d.Visibility)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO documents (id, association_id, title, description, category, file_key, file_name, content_type,
			file_size, uploaded_by, visibility, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`
	_, err = r.db.Exec(ctx, query, d.ID, d.AssociationID, d.Title, d.Description, d.Category, d.FileKey, d.FileName,
		d.ContentType, d.FileSize, d.UploadedBy, visibility)
	return translate(err)
}

func (r *documentRepo) GetByID(ctx context.Context, associationID, id uuid.UUID) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE association_id = $1 AND id = $2`
	return scanDocument(r.db.QueryRow(ctx, query, associationID, id))
}

func (r *documentRepo) List(ctx context.Context, associationID uuid.UUID, category *string, limit, offset int) ([]*models.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE association_id = $1 AND ($2::text IS NULL OR category = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, associationID, category, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var documents []*models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		documents = append(documents, d)
	}
	return documents, rows.Err()
}

func (r *documentRepo) Update(ctx context.Context, d *models.Document) error {
	visibility, err := marshalJSON(d.Visibility)
	if err != nil {
		return err
	}
	query := `
		UPDATE documents
		SET title = $1, description = $2, category = $3, visibility = $4, updated_at = NOW()
		WHERE association_id = $5 AND id = $6
	`
	tag, err := r.db.Exec(ctx, query, d.Title, d.Description, d.Category, visibility, d.AssociationID, d.ID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *documentRepo) Delete(ctx context.Context, associationID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE association_id = $1 AND id = $2`, associationID, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
