package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"assochub/internal/models"
	"assochub/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const presignExpiry = 15 * time.Minute

type DocumentService interface {
	CreateUploadURL(ctx context.Context, associationID uuid.UUID, caller *models.Identity, fileName string) (*UploadURL, error)
	CreateDocument(ctx context.Context, associationID uuid.UUID, caller *models.Identity, req *CreateDocumentRequest) (*models.Document, error)
	ListDocuments(ctx context.Context, associationID uuid.UUID, caller *models.Identity, category *string, limit, offset int) ([]*models.Document, error)
	GetDocument(ctx context.Context, associationID, documentID uuid.UUID, caller *models.Identity) (*models.Document, error)
	GetDownloadURL(ctx context.Context, associationID, documentID uuid.UUID, caller *models.Identity) (string, error)
	UpdateDocument(ctx context.Context, associationID, documentID uuid.UUID, caller *models.Identity, req *UpdateDocumentRequest) (*models.Document, error)
	DeleteDocument(ctx context.Context, associationID, documentID uuid.UUID, caller *models.Identity) error
}

type documentService struct {
	documentRepo repositories.DocumentRepository
	storage      StorageService
	access       AccessService
	audit        AuditLogsService
	log          *logrus.Logger
	now          func() time.Time
}

func NewDocumentService(
	documentRepo repositories.DocumentRepository,
	storage StorageService,
	access AccessService,
	audit AuditLogsService,
	log *logrus.Logger,
) DocumentService {
	return &documentService{
		documentRepo: documentRepo,
		storage:      storage,
		access:       access,
		audit:        audit,
		log:          log,
		now:          time.Now,
	}
}

type UploadURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"file_key"`
	ExpiresAt time.Time `json:"expires_at"`
}

type CreateDocumentRequest struct {
	Title       string             `json:"title" validate:"required,max=200"`
	Description *string            `json:"description"`
	Category    string             `json:"category" validate:"required,max=100"`
	FileKey     string             `json:"file_key" validate:"required"`
	FileName    string             `json:"file_name" validate:"required"`
	ContentType string             `json:"content_type"`
	FileSize    int64              `json:"file_size" validate:"min=0"`
	Visibility  *models.Visibility `json:"visibility"`
}

type UpdateDocumentRequest struct {
	Title       *string            `json:"title" validate:"omitempty,max=200"`
	Description *string            `json:"description"`
	Category    *string            `json:"category" validate:"omitempty,max=100"`
	Visibility  *models.Visibility `json:"visibility"`
}

func documentPrefix(associationID uuid.UUID) string {
	return fmt.Sprintf("associations/%s/documents/", associationID)
}

func (s *documentService) CreateUploadURL(ctx context.Context, associationID uuid.UUID, caller *models.Identity, fileName string) (*UploadURL, error) {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return nil, err
	}
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	if base == "" || base == "." || base == "/" {
		return nil, Validation("File name is required")
	}

	key := documentPrefix(associationID) + uuid.NewString() + "/" + base
	url, err := s.storage.PresignUpload(ctx, key, presignExpiry)
	if err != nil {
		return nil, Upstream("Could not prepare the upload, try again later")
	}
	return &UploadURL{URL: url, FileKey: key, ExpiresAt: s.now().UTC().Add(presignExpiry)}, nil
}

func (s *documentService) CreateDocument(ctx context.Context, associationID uuid.UUID, caller *models.Identity, req *CreateDocumentRequest) (*models.Document, error) {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Category = strings.TrimSpace(req.Category)
	if req.Title == "" || req.Category == "" {
		return nil, Validation("Title and category are required")
	}
	if !strings.HasPrefix(req.FileKey, documentPrefix(associationID)) {
		return nil, Validation("File key does not belong to this association")
	}
	if req.FileSize < 0 {
		return nil, Validation("File size cannot be negative")
	}
	visibility := models.VisibleToAll()
	if req.Visibility != nil {
		visibility = *req.Visibility
	}
	if err := visibility.Validate(); err != nil {
		return nil, Validation("%s", err.Error())
	}

	now := s.now().UTC()
	doc := &models.Document{
		ID:            uuid.New(),
		AssociationID: associationID,
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		FileKey:       req.FileKey,
		FileName:      req.FileName,
		ContentType:   req.ContentType,
		FileSize:      req.FileSize,
		UploadedBy:    caller.UserID,
		Visibility:    visibility,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		return nil, err
	}
	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		Action:        models.AuditDocumentCreated,
		EntityType:    models.EntityDocument,
		EntityID:      entityRef(doc.ID),
		Description:   fmt.Sprintf("Uploaded document %q", doc.Title),
		Metadata:      models.JSONB{"category": doc.Category, "visibility": string(doc.Visibility.Kind)},
	})
	return doc, nil
}

func (s *documentService) ListDocuments(ctx context.Context, associationID uuid.UUID, caller *models.Identity, category *string, limit, offset int) ([]*models.Document, error) {
	viewer, err := s.access.ResolveViewer(ctx, associationID, caller)
	if err != nil {
		return nil, err
	}
	docs, err := s.documentRepo.List(ctx, associationID, category, limit, offset)
	if err != nil {
		return nil, err
	}
	visible := make([]*models.Document, 0, len(docs))
	for _, d := range docs {
		if viewer.CanSee(d.Visibility) {
			visible = append(visible, d)
		}
	}
	return visible, nil
}

func (s *documentService) GetDocument(ctx context.Context, associationID, documentID uuid.UUID, caller *models.Identity) (*models.Document, error) {
	viewer, err := s.access.ResolveViewer(ctx, associationID, caller)
	if err != nil {
		return nil, err
	}
	doc, err := s.documentRepo.GetByID(ctx, associationID, documentID)
	if err != nil {
		return nil, notFound(err, "Document")
	}
	if !viewer.CanSee(doc.Visibility) {
		return nil, Forbidden("You do not have access to this document")
	}
	return doc, nil
}

func (s *documentService) GetDownloadURL(ctx context.Context, associationID, documentID uuid.UUID, caller *models.Identity) (string, error) {
	doc, err := s.GetDocument(ctx, associationID, documentID, caller)
	if err != nil {
		return "", err
	}
	url, err := s.storage.PresignDownload(ctx, doc.FileKey, doc.FileName, presignExpiry)
	if err != nil {
		return "", Upstream("Could not prepare the download, try again later")
	}
	return url, nil
}

func (s *documentService) UpdateDocument(ctx context.Context, associationID, documentID uuid.UUID, caller *models.Identity, req *UpdateDocumentRequest) (*models.Document, error) {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return nil, err
	}
	doc, err := s.documentRepo.GetByID(ctx, associationID, documentID)
	if err != nil {
		return nil, notFound(err, "Document")
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, Validation("Title is required")
		}
		doc.Title = title
	}
	if req.Description != nil {
		doc.Description = req.Description
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return nil, Validation("Category is required")
		}
		doc.Category = category
	}
	if req.Visibility != nil {
		if err := req.Visibility.Validate(); err != nil {
			return nil, Validation("%s", err.Error())
		}
		doc.Visibility = *req.Visibility
	}
	doc.UpdatedAt = s.now().UTC()

	if err := s.documentRepo.Update(ctx, doc); err != nil {
		return nil, notFound(err, "Document")
	}
	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		Action:        models.AuditDocumentUpdated,
		EntityType:    models.EntityDocument,
		EntityID:      entityRef(doc.ID),
		Description:   fmt.Sprintf("Updated document %q", doc.Title),
	})
	return doc, nil
}

// DeleteDocument removes the stored object first. A storage failure is logged
// and the row is deleted anyway.
func (s *documentService) DeleteDocument(ctx context.Context, associationID, documentID uuid.UUID, caller *models.Identity) error {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return err
	}
	doc, err := s.documentRepo.GetByID(ctx, associationID, documentID)
	if err != nil {
		return notFound(err, "Document")
	}
	if err := s.storage.Remove(ctx, doc.FileKey); err != nil {
		s.log.WithFields(logrus.Fields{
			"association_id": associationID,
			"file_key":       doc.FileKey,
		}).WithError(err).Warn("failed to remove document object")
	}
	if err := s.documentRepo.Delete(ctx, associationID, documentID); err != nil {
		return notFound(err, "Document")
	}
	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		Action:        models.AuditDocumentDeleted,
		EntityType:    models.EntityDocument,
		EntityID:      entityRef(documentID),
		Description:   fmt.Sprintf("Deleted document %q", doc.Title),
	})
	return nil
}
