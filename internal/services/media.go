package services

import (
	"context"
	"fmt"
	"net/http"
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
)

// StoredFile describes one object under an owner's storage prefix.
type StoredFile struct {
	Path      string `json:"path"`
	AccessURL string `json:"access_url"`
}

// BulkDeleteResult splits a bulk request into the paths that were removed and
// the paths that could not be.
type BulkDeleteResult struct {
	Deleted []string `json:"deleted"`
	Failed  []string `json:"failed"`
}

type MediaService interface {
	GetAsset(ctx context.Context, instructorID, assetID uuid.UUID) (*types.MediaAsset, error)
	ListAssets(ctx context.Context, instructorID uuid.UUID, assetType string) ([]*types.MediaAsset, error)
	DeleteAsset(ctx context.Context, instructorID, assetID uuid.UUID) error
	ListStoredFiles(ctx context.Context, ownerID uuid.UUID, assetType string) ([]*StoredFile, error)
	BulkDeletePaths(ctx context.Context, ownerID uuid.UUID, paths []string) (*BulkDeleteResult, error)
}

type mediaService struct {
	db        *gorm.DB
	log       *logger.Logger
	store     gcs.ObjectStore
	urlCache  rediscache.URLCache
	assetRepo repos.MediaAssetRepo
}

func NewMediaService(
	db *gorm.DB,
	baseLog *logger.Logger,
	store gcs.ObjectStore,
	urlCache rediscache.URLCache,
	assetRepo repos.MediaAssetRepo,
) MediaService {
	serviceLog := baseLog.With("service", "MediaService")
	return &mediaService{
		db:        db,
		log:       serviceLog,
		store:     store,
		urlCache:  urlCache,
		assetRepo: assetRepo,
	}
}

func (ms *mediaService) GetAsset(ctx context.Context, instructorID, assetID uuid.UUID) (*types.MediaAsset, error) {
	asset, err := ms.ownedAsset(ctx, instructorID, assetID)
	if err != nil {
		return nil, err
	}

	// Signed URLs expire; hand back a fresh one on every read.
	accessURL, err := signedReadURL(ctx, ms.store, ms.urlCache, ms.log, asset.StoragePath, signedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign read URL: %w", err)
	}
	asset.AccessURL = accessURL
	if asset.ThumbnailURL != "" {
		asset.ThumbnailURL = accessURL
	}
	return asset, nil
}

func (ms *mediaService) ListAssets(ctx context.Context, instructorID uuid.UUID, assetType string) ([]*types.MediaAsset, error) {
	if assetType != "" && !types.ValidAssetType(assetType) {
		return nil, apierr.New(http.StatusBadRequest, "invalid_asset_type", fmt.Errorf("unknown asset type %q", assetType))
	}
	return ms.assetRepo.ListByInstructor(ctx, nil, instructorID, assetType)
}

func (ms *mediaService) DeleteAsset(ctx context.Context, instructorID, assetID uuid.UUID) error {
	asset, err := ms.ownedAsset(ctx, instructorID, assetID)
	if err != nil {
		return err
	}

	// The database row is authoritative; losing the storage object only costs
	// dead bytes, so that delete is best effort.
	if asset.StoragePath != "" {
		if err := ms.store.Delete(ctx, asset.StoragePath); err != nil {
			ms.log.Warn("failed to delete storage object",
				"error", err,
				"media_asset_id", asset.ID,
				"storage_path", asset.StoragePath,
			)
		}
	}

	if err := ms.assetRepo.SoftDelete(ctx, nil, asset.ID); err != nil {
		return fmt.Errorf("failed to delete media asset: %w", err)
	}
	ms.log.Info("media asset deleted", "instructor_id", instructorID, "media_asset_id", assetID)
	return nil
}

func (ms *mediaService) ListStoredFiles(ctx context.Context, ownerID uuid.UUID, assetType string) ([]*StoredFile, error) {
	prefix := ownerID.String() + "/"
	if assetType != "" {
		if !types.ValidAssetType(assetType) {
			return nil, apierr.New(http.StatusBadRequest, "invalid_asset_type", fmt.Errorf("unknown asset type %q", assetType))
		}
		prefix += assetType + "/"
	}

	keys, err := ms.store.ListKeys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored files: %w", err)
	}

	files := make([]*StoredFile, 0, len(keys))
	for _, key := range keys {
		url, err := signedReadURL(ctx, ms.store, ms.urlCache, ms.log, key, signedURLExpiry)
		if err != nil {
			ms.log.Warn("failed to sign read URL for listed object", "error", err, "storage_path", key)
			continue
		}
		files = append(files, &StoredFile{Path: key, AccessURL: url})
	}
	return files, nil
}

func (ms *mediaService) BulkDeletePaths(ctx context.Context, ownerID uuid.UUID, paths []string) (*BulkDeleteResult, error) {
	if len(paths) == 0 {
		return nil, apierr.New(http.StatusBadRequest, "missing_paths", fmt.Errorf("no paths provided"))
	}

	result := &BulkDeleteResult{Deleted: []string{}, Failed: []string{}}
	ownPrefix := ownerID.String() + "/"
	for _, path := range paths {
		if !strings.HasPrefix(path, ownPrefix) {
			result.Failed = append(result.Failed, path)
			continue
		}
		if err := ms.store.Delete(ctx, path); err != nil {
			ms.log.Warn("failed to delete storage object", "error", err, "storage_path", path)
			result.Failed = append(result.Failed, path)
			continue
		}
		result.Deleted = append(result.Deleted, path)
	}
	return result, nil
}

func (ms *mediaService) ownedAsset(ctx context.Context, instructorID, assetID uuid.UUID) (*types.MediaAsset, error) {
	asset, err := ms.assetRepo.GetByID(ctx, nil, assetID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apierr.New(http.StatusNotFound, "asset_not_found", fmt.Errorf("media asset %s not found", assetID))
		}
		return nil, err
	}
	if asset.InstructorID != instructorID {
		return nil, apierr.New(http.StatusNotFound, "asset_not_found", fmt.Errorf("media asset %s not found", assetID))
	}
	return asset, nil
}

// signedReadURL signs a temporary read URL, memoized in the cache when one is
// configured. Cached entries live for half the signature lifetime so callers
// never receive a URL on the edge of expiry.
func signedReadURL(ctx context.Context, store gcs.ObjectStore, cache rediscache.URLCache, log *logger.Logger, storagePath string, expiry time.Duration) (string, error) {
	if cache != nil {
		if url, ok := cache.Get(ctx, storagePath); ok {
			return url, nil
		}
	}
	url, err := store.SignedReadURL(storagePath, expiry)
	if err != nil {
		return "", err
	}
	if cache != nil {
		cache.Set(ctx, storagePath, url, expiry/2)
	}
	return url, nil
}
