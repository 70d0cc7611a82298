package services

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/asteya/yogaflow-backend/internal/apierr"
	"github.com/asteya/yogaflow-backend/internal/clients/gcs"
	"github.com/asteya/yogaflow-backend/internal/clients/rediscache"
	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/repos"
	"github.com/asteya/yogaflow-backend/internal/types"
	"github.com/asteya/yogaflow-backend/internal/utils"
)

const signedURLExpiry = time.Hour

// UploadPolicy is what a direct-to-storage client needs to push one file.
type UploadPolicy struct {
	UploadID     uuid.UUID `json:"upload_id"`
	FilePath     string    `json:"file_path"`
	SignedURL    string    `json:"signed_url"`
	ContentType  string    `json:"content_type"`
	MaxSizeBytes int64     `json:"max_size_bytes"`
	ExpiresAt    time.Time `json:"expires_at"`
	AssetType    string    `json:"asset_type"`
	OwnerID      uuid.UUID `json:"owner_id"`
}

type ProgressUpdate struct {
	UploadedSize *int64
	TotalSize    *int64
	Status       types.UploadStatus
	ErrorMessage string
}

type UploadService interface {
	IssuePolicy(ctx context.Context, ownerID uuid.UUID, fileName, assetType, contentType string, maxSizeBytes int64) (*UploadPolicy, error)
	GetSession(ctx context.Context, ownerID, uploadID uuid.UUID) (*types.UploadSession, error)
	ListSessions(ctx context.Context, ownerID uuid.UUID) ([]*types.UploadSession, error)
	UpdateProgress(ctx context.Context, ownerID, uploadID uuid.UUID, update ProgressUpdate) (*types.UploadSession, error)
	VerifyUpload(ctx context.Context, ownerID, uploadID uuid.UUID, filePath string) (*types.MediaAsset, error)
	UploadDirect(ctx context.Context, ownerID uuid.UUID, fileName, assetType, contentType string, size int64, file io.Reader) (*types.MediaAsset, error)
}

type uploadService struct {
	db          *gorm.DB
	log         *logger.Logger
	store       gcs.ObjectStore
	urlCache    rediscache.URLCache
	sessionRepo repos.UploadSessionRepo
	assetRepo   repos.MediaAssetRepo
	sizeLimits  map[string]int64
}

func NewUploadService(
	db *gorm.DB,
	baseLog *logger.Logger,
	store gcs.ObjectStore,
	urlCache rediscache.URLCache,
	sessionRepo repos.UploadSessionRepo,
	assetRepo repos.MediaAssetRepo,
) UploadService {
	serviceLog := baseLog.With("service", "UploadService")
	return &uploadService{
		db:          db,
		log:         serviceLog,
		store:       store,
		urlCache:    urlCache,
		sessionRepo: sessionRepo,
		assetRepo:   assetRepo,
		sizeLimits: map[string]int64{
			types.AssetTypeImage:     utils.GetEnvAsInt64("MAX_IMAGE_SIZE_BYTES", 10<<20, baseLog),
			types.AssetTypeVideo:     utils.GetEnvAsInt64("MAX_VIDEO_SIZE_BYTES", 500<<20, baseLog),
			types.AssetTypeAudio:     utils.GetEnvAsInt64("MAX_AUDIO_SIZE_BYTES", 100<<20, baseLog),
			types.AssetTypeAnimation: utils.GetEnvAsInt64("MAX_ANIMATION_SIZE_BYTES", 20<<20, baseLog),
		},
	}
}

func (us *uploadService) IssuePolicy(ctx context.Context, ownerID uuid.UUID, fileName, assetType, contentType string, maxSizeBytes int64) (*UploadPolicy, error) {
	if fileName == "" {
		return nil, apierr.New(http.StatusBadRequest, "missing_file_name", fmt.Errorf("file name is required"))
	}
	if !types.ValidAssetType(assetType) {
		return nil, apierr.New(http.StatusBadRequest, "invalid_asset_type", fmt.Errorf("unknown asset type %q", assetType))
	}

	uploadID := uuid.New()
	filePath := buildStoragePath(ownerID, assetType, fileName, time.Now())
	if contentType == "" {
		contentType = contentTypeForFile(fileName)
	}
	if maxSizeBytes <= 0 {
		maxSizeBytes = us.sizeLimits[assetType]
	}
	expiresAt := time.Now().Add(signedURLExpiry)

	signedURL, err := us.store.SignedUploadURL(filePath, contentType, signedURLExpiry)
	if err != nil {
		us.log.Error("failed to sign upload URL", "error", err, "owner_id", ownerID, "file_path", filePath)
		return nil, fmt.Errorf("failed to sign upload URL: %w", err)
	}

	// The policy's size ceiling doubles as the session's declared total so
	// progress percentages work before the client reports its own total.
	session := &types.UploadSession{
		ID:        uuid.New(),
		UploadID:  uploadID,
		OwnerID:   ownerID,
		FileName:  fileName,
		AssetType: assetType,
		TotalSize: maxSizeBytes,
		Status:    types.UploadPending,
	}
	if err := us.sessionRepo.Create(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("failed to create upload session: %w", err)
	}

	us.log.Info("issued upload policy",
		"owner_id", ownerID,
		"upload_id", uploadID,
		"asset_type", assetType,
		"file_path", filePath,
	)

	return &UploadPolicy{
		UploadID:     uploadID,
		FilePath:     filePath,
		SignedURL:    signedURL,
		ContentType:  contentType,
		MaxSizeBytes: maxSizeBytes,
		ExpiresAt:    expiresAt,
		AssetType:    assetType,
		OwnerID:      ownerID,
	}, nil
}

func (us *uploadService) GetSession(ctx context.Context, ownerID, uploadID uuid.UUID) (*types.UploadSession, error) {
	return us.ownedSession(ctx, ownerID, uploadID)
}

func (us *uploadService) ListSessions(ctx context.Context, ownerID uuid.UUID) ([]*types.UploadSession, error) {
	return us.sessionRepo.ListByOwner(ctx, nil, ownerID)
}

// allowedTransitions is the only legal movement between upload states.
// completed and failed are terminal.
var allowedTransitions = map[types.UploadStatus][]types.UploadStatus{
	types.UploadPending:   {types.UploadUploading, types.UploadVerifying, types.UploadFailed},
	types.UploadUploading: {types.UploadVerifying, types.UploadFailed},
	types.UploadVerifying: {types.UploadCompleted, types.UploadFailed},
}

func transitionAllowed(from, to types.UploadStatus) bool {
	if from == to {
		return !from.Terminal()
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (us *uploadService) UpdateProgress(ctx context.Context, ownerID, uploadID uuid.UUID, update ProgressUpdate) (*types.UploadSession, error) {
	session, err := us.ownedSession(ctx, ownerID, uploadID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{"updated_at": now}
	if update.UploadedSize != nil {
		if *update.UploadedSize < 0 {
			return nil, apierr.New(http.StatusBadRequest, "invalid_uploaded_size", fmt.Errorf("uploaded size must be non-negative"))
		}
		updates["uploaded_size"] = *update.UploadedSize
		session.UploadedSize = *update.UploadedSize
	}
	if update.TotalSize != nil {
		if *update.TotalSize < 0 {
			return nil, apierr.New(http.StatusBadRequest, "invalid_total_size", fmt.Errorf("total size must be non-negative"))
		}
		updates["total_size"] = *update.TotalSize
		session.TotalSize = *update.TotalSize
	}
	if update.Status != "" {
		if !types.ValidUploadStatus(update.Status) {
			return nil, apierr.New(http.StatusBadRequest, "invalid_status", fmt.Errorf("unknown upload status %q", update.Status))
		}
		if !transitionAllowed(session.Status, update.Status) {
			return nil, apierr.New(http.StatusConflict, "invalid_transition",
				fmt.Errorf("cannot move upload from %s to %s", session.Status, update.Status))
		}
		updates["status"] = update.Status
		session.Status = update.Status
		if update.Status == types.UploadCompleted {
			updates["completed_at"] = now
			session.CompletedAt = &now
		}
	}
	if update.ErrorMessage != "" {
		updates["error_message"] = update.ErrorMessage
		session.ErrorMessage = update.ErrorMessage
	}

	if err := us.sessionRepo.Update(ctx, nil, session.ID, updates); err != nil {
		return nil, fmt.Errorf("failed to update upload session: %w", err)
	}
	return session, nil
}

func (us *uploadService) VerifyUpload(ctx context.Context, ownerID, uploadID uuid.UUID, filePath string) (*types.MediaAsset, error) {
	session, err := us.ownedSession(ctx, ownerID, uploadID)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(session.Status, types.UploadVerifying) {
		return nil, apierr.New(http.StatusConflict, "invalid_transition",
			fmt.Errorf("cannot verify upload in state %s", session.Status))
	}
	if err := us.setStatus(ctx, session, types.UploadVerifying, ""); err != nil {
		return nil, err
	}

	if !strings.HasPrefix(filePath, ownerID.String()+"/") {
		err := apierr.New(http.StatusForbidden, "forbidden_path", fmt.Errorf("file path does not belong to owner"))
		us.failSession(ctx, session, "file path does not belong to owner")
		return nil, err
	}

	exists, err := us.store.Exists(ctx, filePath)
	if err != nil {
		us.failSession(ctx, session, fmt.Sprintf("storage check failed: %v", err))
		return nil, fmt.Errorf("failed to check uploaded object: %w", err)
	}
	if !exists {
		us.failSession(ctx, session, "uploaded object not found in storage")
		return nil, apierr.New(http.StatusNotFound, "object_not_found", fmt.Errorf("uploaded object %s not found", filePath))
	}

	asset, err := us.materializeAsset(ctx, session, filePath)
	if err != nil {
		us.failSession(ctx, session, err.Error())
		return nil, err
	}

	if err := us.setStatus(ctx, session, types.UploadCompleted, ""); err != nil {
		return nil, err
	}
	us.log.Info("upload verified",
		"owner_id", ownerID,
		"upload_id", uploadID,
		"media_asset_id", asset.ID,
	)
	return asset, nil
}

func (us *uploadService) UploadDirect(ctx context.Context, ownerID uuid.UUID, fileName, assetType, contentType string, size int64, file io.Reader) (*types.MediaAsset, error) {
	if !types.ValidAssetType(assetType) {
		return nil, apierr.New(http.StatusBadRequest, "invalid_asset_type", fmt.Errorf("unknown asset type %q", assetType))
	}
	if limit := us.sizeLimits[assetType]; size > limit {
		return nil, apierr.New(http.StatusBadRequest, "file_too_large",
			fmt.Errorf("file of %d bytes exceeds the %d byte limit for %s assets", size, limit, assetType))
	}
	if contentType == "" {
		contentType = contentTypeForFile(fileName)
	}

	filePath := buildStoragePath(ownerID, assetType, fileName, time.Now())
	session := &types.UploadSession{
		ID:        uuid.New(),
		UploadID:  uuid.New(),
		OwnerID:   ownerID,
		FileName:  fileName,
		AssetType: assetType,
		TotalSize: size,
		Status:    types.UploadPending,
	}
	if err := us.sessionRepo.Create(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("failed to create upload session: %w", err)
	}
	if err := us.setStatus(ctx, session, types.UploadUploading, ""); err != nil {
		return nil, err
	}

	if err := us.store.Upload(ctx, filePath, file, contentType); err != nil {
		us.failSession(ctx, session, fmt.Sprintf("storage upload failed: %v", err))
		return nil, fmt.Errorf("failed to upload object: %w", err)
	}
	session.UploadedSize = size
	if err := us.sessionRepo.Update(ctx, nil, session.ID, map[string]interface{}{
		"uploaded_size": size,
		"status":        types.UploadVerifying,
		"updated_at":    time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("failed to update upload session: %w", err)
	}
	session.Status = types.UploadVerifying

	asset, err := us.materializeAsset(ctx, session, filePath)
	if err != nil {
		us.failSession(ctx, session, err.Error())
		return nil, err
	}
	if err := us.setStatus(ctx, session, types.UploadCompleted, ""); err != nil {
		return nil, err
	}
	us.log.Info("direct upload completed",
		"owner_id", ownerID,
		"upload_id", session.UploadID,
		"media_asset_id", asset.ID,
	)
	return asset, nil
}

func (us *uploadService) materializeAsset(ctx context.Context, session *types.UploadSession, filePath string) (*types.MediaAsset, error) {
	accessURL, err := signedReadURL(ctx, us.store, us.urlCache, us.log, filePath, signedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign read URL: %w", err)
	}

	thumbnailURL := ""
	if session.AssetType == types.AssetTypeImage || session.AssetType == types.AssetTypeVideo {
		// Thumbnailing is a pass-through to the original object for now.
		thumbnailURL = accessURL
	}

	size := session.UploadedSize
	if size == 0 {
		size = session.TotalSize
	}
	asset := &types.MediaAsset{
		ID:           uuid.New(),
		Name:         session.FileName,
		AssetType:    session.AssetType,
		StoragePath:  filePath,
		AccessURL:    accessURL,
		ThumbnailURL: thumbnailURL,
		SizeBytes:    size,
		InstructorID: session.OwnerID,
		IsActive:     true,
	}
	if err := us.assetRepo.Create(ctx, nil, asset); err != nil {
		return nil, fmt.Errorf("failed to create media asset: %w", err)
	}
	return asset, nil
}

func (us *uploadService) setStatus(ctx context.Context, session *types.UploadSession, status types.UploadStatus, errorMessage string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}
	if errorMessage != "" {
		updates["error_message"] = errorMessage
	}
	if status == types.UploadCompleted {
		updates["completed_at"] = now
		session.CompletedAt = &now
	}
	if err := us.sessionRepo.Update(ctx, nil, session.ID, updates); err != nil {
		return fmt.Errorf("failed to update upload session: %w", err)
	}
	session.Status = status
	if errorMessage != "" {
		session.ErrorMessage = errorMessage
	}
	return nil
}

// failSession is best effort; the caller is already surfacing a more
// interesting error.
func (us *uploadService) failSession(ctx context.Context, session *types.UploadSession, reason string) {
	if session.Status.Terminal() {
		return
	}
	if err := us.setStatus(ctx, session, types.UploadFailed, reason); err != nil {
		us.log.Error("failed to mark upload session as failed",
			"error", err,
			"upload_id", session.UploadID,
		)
	}
}

func (us *uploadService) ownedSession(ctx context.Context, ownerID, uploadID uuid.UUID) (*types.UploadSession, error) {
	session, err := us.sessionRepo.GetByUploadID(ctx, nil, uploadID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apierr.New(http.StatusNotFound, "upload_not_found", fmt.Errorf("upload %s not found", uploadID))
		}
		return nil, err
	}
	if session.OwnerID != ownerID {
		// Do not reveal sessions that belong to someone else.
		return nil, apierr.New(http.StatusNotFound, "upload_not_found", fmt.Errorf("upload %s not found", uploadID))
	}
	return session, nil
}

// buildStoragePath places every object under its owner's prefix so ownership
// can be checked from the path alone.
func buildStoragePath(ownerID uuid.UUID, assetType, fileName string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%s_%s", ownerID, assetType, now.Format("20060102_150405"), sanitizeFileName(fileName))
}

func sanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-' || r == ' ':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}

func contentTypeForFile(fileName string) string {
	if ct := mime.TypeByExtension(filepath.Ext(fileName)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
