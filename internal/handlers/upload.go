package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/services"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type UploadHandler struct {
	log           *logger.Logger
	uploadService services.UploadService
}

func NewUploadHandler(log *logger.Logger, uploadService services.UploadService) *UploadHandler {
	return &UploadHandler{
		log:           log.With("handler", "UploadHandler"),
		uploadService: uploadService,
	}
}

// POST /api/uploads/policy
func (h *UploadHandler) IssuePolicy(c *gin.Context) {
	var req struct {
		FileName     string `json:"file_name"`
		AssetType    string `json:"asset_type"`
		ContentType  string `json:"content_type"`
		MaxSizeBytes int64  `json:"max_size_bytes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	policy, err := h.uploadService.IssuePolicy(c.Request.Context(), currentUser(c).ID, req.FileName, req.AssetType, req.ContentType, req.MaxSizeBytes)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, policy)
}

// POST /api/uploads  (traditional multipart relay)
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "missing_file", fmt.Errorf("multipart field %q is required", "file"))
		return
	}
	assetType := c.PostForm("asset_type")
	if assetType == "" {
		RespondError(c, http.StatusBadRequest, "missing_asset_type", fmt.Errorf("asset_type is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_file", err)
		return
	}
	defer file.Close()

	asset, err := h.uploadService.UploadDirect(
		c.Request.Context(),
		currentUser(c).ID,
		fileHeader.Filename,
		assetType,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
	)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, asset)
}

// GET /api/uploads
func (h *UploadHandler) ListSessions(c *gin.Context) {
	sessions, err := h.uploadService.ListSessions(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, sessions)
}

type progressResponse struct {
	*types.UploadSession
	ProgressPercentage int `json:"progress_percentage"`
}

// GET /api/uploads/:upload_id/progress
func (h *UploadHandler) GetProgress(c *gin.Context) {
	uploadID, ok := pathID(c, "upload_id")
	if !ok {
		return
	}
	session, err := h.uploadService.GetSession(c.Request.Context(), currentUser(c).ID, uploadID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, progressResponse{UploadSession: session, ProgressPercentage: session.ProgressPercentage()})
}

// PATCH /api/uploads/:upload_id/progress
func (h *UploadHandler) UpdateProgress(c *gin.Context) {
	uploadID, ok := pathID(c, "upload_id")
	if !ok {
		return
	}
	var req struct {
		UploadedSize *int64 `json:"uploaded_size"`
		TotalSize    *int64 `json:"total_size"`
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	session, err := h.uploadService.UpdateProgress(c.Request.Context(), currentUser(c).ID, uploadID, services.ProgressUpdate{
		UploadedSize: req.UploadedSize,
		TotalSize:    req.TotalSize,
		Status:       types.UploadStatus(req.Status),
		ErrorMessage: req.ErrorMessage,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, progressResponse{UploadSession: session, ProgressPercentage: session.ProgressPercentage()})
}

// POST /api/uploads/:upload_id/verify
func (h *UploadHandler) Verify(c *gin.Context) {
	uploadID, ok := pathID(c, "upload_id")
	if !ok {
		return
	}
	var req struct {
		FilePath string `json:"file_path"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	asset, err := h.uploadService.VerifyUpload(c.Request.Context(), currentUser(c).ID, uploadID, req.FilePath)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, asset)
}
