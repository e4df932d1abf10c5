package http

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/citizendesk/grievance-server/internal/server/models"
	"github.com/citizendesk/grievance-server/internal/server/services"
)

type AttachmentHandler struct {
	attachments *services.AttachmentService
}

func NewAttachmentHandler(attachments *services.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments}
}

type presignRequest struct {
	GrievanceID int64  `json:"grievanceId" binding:"required"`
	UploadID    string `json:"uploadId"`
	FileName    string `json:"fileName" binding:"required"`
	FileType    string `json:"fileType"`
	ContentType string `json:"contentType" binding:"required"`
}

type presignResponse struct {
	UploadID  string `json:"uploadId"`
	Key       string `json:"key"`
	SignedURL string `json:"signedUrl"`
	FileName  string `json:"fileName"`
	FileType  string `json:"fileType"`
}

func grantResponse(g *services.UploadGrant) presignResponse {
	return presignResponse{
		UploadID:  g.UploadID,
		Key:       g.Key,
		SignedURL: g.SignedURL,
		FileName:  g.FileName,
		FileType:  g.FileType,
	}
}

// PresignUpload handles POST /attachments/presigned-url.
func (h *AttachmentHandler) PresignUpload(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	grant, err := h.attachments.RequestUpload(c.Request.Context(), services.UploadRequest{
		GrievanceID: req.GrievanceID,
		UploadID:    req.UploadID,
		FileName:    req.FileName,
		FileType:    req.FileType,
		ContentType: req.ContentType,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, grantResponse(grant))
}

type bulkPresignRequest struct {
	GrievanceID int64             `json:"grievanceId" binding:"required"`
	Files       []bulkPresignFile `json:"files" binding:"required,min=1"`
}

type bulkPresignFile struct {
	UploadID    string `json:"uploadId"`
	FileName    string `json:"fileName" binding:"required"`
	FileType    string `json:"fileType"`
	ContentType string `json:"contentType" binding:"required"`
}

type bulkPresignItem struct {
	FileName string           `json:"fileName"`
	Grant    *presignResponse `json:"grant,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// PresignBulkUpload handles POST /attachments/presigned-urls. The response
// carries one item per requested file; a failed file does not void the
// grants of the others.
func (h *AttachmentHandler) PresignBulkUpload(c *gin.Context) {
	var req bulkPresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	files := make([]services.UploadRequest, 0, len(req.Files))
	for _, f := range req.Files {
		files = append(files, services.UploadRequest{
			UploadID:    f.UploadID,
			FileName:    f.FileName,
			FileType:    f.FileType,
			ContentType: f.ContentType,
		})
	}

	items, err := h.attachments.RequestBulkUpload(c.Request.Context(), req.GrievanceID, files)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]bulkPresignItem, 0, len(items))
	for _, item := range items {
		res := bulkPresignItem{FileName: item.FileName}
		if item.Err != nil {
			res.Error = item.Err.Error()
		} else {
			g := grantResponse(item.Grant)
			res.Grant = &g
		}
		out = append(out, res)
	}

	c.JSON(http.StatusOK, gin.H{"items": out})
}

// ConfirmUpload handles POST /attachments/confirm?uploadId=...
func (h *AttachmentHandler) ConfirmUpload(c *gin.Context) {
	uploadID := c.Query("uploadId")
	if uploadID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uploadId is required"})
		return
	}

	res, err := h.attachments.ConfirmUpload(c.Request.Context(), uploadID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"uploadId": res.UploadID, "uploaded": res.Uploaded})
}

// ServerUpload handles POST /attachments/upload, the synchronous multipart
// fallback for privileged callers.
func (h *AttachmentHandler) ServerUpload(c *gin.Context) {
	grievanceID, err := strconv.ParseInt(c.PostForm("grievanceId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid grievanceId"})
		return
	}
	fileType := c.PostForm("fileType")

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files in request"})
		return
	}

	files := make([]services.RawFile, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file part"})
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file part"})
			return
		}
		files = append(files, services.RawFile{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	items, err := h.attachments.UploadServerSide(c.Request.Context(), grievanceID, files, fileType)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

type attachmentResponse struct {
	AttachmentID int64      `json:"attachmentId"`
	UploadID     string     `json:"uploadId"`
	FileName     string     `json:"fileName"`
	FileType     string     `json:"fileType"`
	FileSize     int64      `json:"fileSize"`
	PublicURL    string     `json:"publicUrl"`
	Status       string     `json:"status"`
	UploadedAt   time.Time  `json:"uploadedAt"`
	ConfirmedAt  *time.Time `json:"confirmedAt,omitempty"`
}

// ListAttachments handles GET /grievances/:id/attachments.
func (h *AttachmentHandler) ListAttachments(c *gin.Context) {
	grievanceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid grievance id"})
		return
	}

	rows, err := h.attachments.ListAttachments(c.Request.Context(), grievanceID)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]attachmentResponse, 0, len(rows))
	for _, a := range rows {
		out = append(out, toAttachmentResponse(a))
	}
	c.JSON(http.StatusOK, gin.H{"attachments": out})
}

func toAttachmentResponse(a *models.Attachment) attachmentResponse {
	return attachmentResponse{
		AttachmentID: a.AttachmentID,
		UploadID:     a.UploadID,
		FileName:     a.FileName,
		FileType:     a.FileType,
		FileSize:     a.FileSize,
		PublicURL:    a.PublicURL,
		Status:       string(a.Status),
		UploadedAt:   a.UploadedAt,
		ConfirmedAt:  a.ConfirmedAt,
	}
}
