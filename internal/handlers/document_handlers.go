package handlers

import (
	"net/http"

	"assochub/internal/services"

	"github.com/labstack/echo/v4"
)

// DocumentHandlers serves document metadata and presigned transfer URLs
type DocumentHandlers struct {
	documentService services.DocumentService
}

func NewDocumentHandlers(documentService services.DocumentService) *DocumentHandlers {
	return &DocumentHandlers{documentService: documentService}
}

// UploadURLRequest names the file the client is about to upload
type UploadURLRequest struct {
	FileName string `json:"file_name" validate:"required,max=255"`
}

// CreateUploadURL godoc
// @Summary Presigned PUT URL for a new document (admin)
// @Tags documents
// @Param associationId path string true "Association ID"
// @Param request body UploadURLRequest true "File"
// @Success 200 {object} services.UploadURL
// @Router /v1/associations/{associationId}/documents/upload-url [post]
func (h *DocumentHandlers) CreateUploadURL(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}

	var req UploadURLRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	upload, err := h.documentService.CreateUploadURL(c.Request().Context(), assocID, identity, req.FileName)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, upload)
}

func (h *DocumentHandlers) CreateDocument(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}

	var req services.CreateDocumentRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	doc, err := h.documentService.CreateDocument(c.Request().Context(), assocID, identity, &req)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandlers) ListDocuments(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}
	limit, offset, err := paginate(c)
	if err != nil {
		return err
	}

	var category *string
	if cat := c.QueryParam("category"); cat != "" {
		category = &cat
	}

	docs, err := h.documentService.ListDocuments(c.Request().Context(), assocID, identity, category, limit, offset)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"documents": docs,
		"limit":     limit,
		"offset":    offset,
	})
}

func (h *DocumentHandlers) GetDocument(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}
	docID, err := pathID(c, "documentId", "document id")
	if err != nil {
		return err
	}

	doc, err := h.documentService.GetDocument(c.Request().Context(), assocID, docID, identity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandlers) GetDownloadURL(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}
	docID, err := pathID(c, "documentId", "document id")
	if err != nil {
		return err
	}

	url, err := h.documentService.GetDownloadURL(c.Request().Context(), assocID, docID, identity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

func (h *DocumentHandlers) UpdateDocument(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}
	docID, err := pathID(c, "documentId", "document id")
	if err != nil {
		return err
	}

	var req services.UpdateDocumentRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	doc, err := h.documentService.UpdateDocument(c.Request().Context(), assocID, docID, identity, &req)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandlers) DeleteDocument(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}
	docID, err := pathID(c, "documentId", "document id")
	if err != nil {
		return err
	}

	if err := h.documentService.DeleteDocument(c.Request().Context(), assocID, docID, identity); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
