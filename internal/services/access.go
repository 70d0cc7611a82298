package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/asteya/yogaflow-backend/internal/apierr"
	"github.com/asteya/yogaflow-backend/internal/repos"
	"github.com/asteya/yogaflow-backend/internal/types"
)

func requireInstructor(caller *types.UserProfile) error {
	if !caller.IsInstructor() {
		return apierr.New(http.StatusForbidden, "forbidden", fmt.Errorf("instructor role required"))
	}
	return nil
}

// notFound hides the existence of resources the caller does not own.
func notFound(code string, format string, args ...interface{}) error {
	return apierr.New(http.StatusNotFound, code, fmt.Errorf(format, args...))
}

// visibleContent decides whether the caller may read a catalogue item:
// owners and admins always, clients only when it is active.
func visibleContent(caller *types.UserProfile, instructorID uuid.UUID, isActive bool) bool {
	if caller == nil {
		return false
	}
	if caller.ID == instructorID || caller.Role == types.RoleAdmin {
		return true
	}
	if caller.IsInstructor() {
		return false
	}
	return isActive
}

// ownedAssetsByIDs resolves media asset IDs and insists every one belongs to
// the caller. Attaching someone else's asset would leak its signed URLs.
func ownedAssetsByIDs(ctx context.Context, assetRepo repos.MediaAssetRepo, caller *types.UserProfile, ids []uuid.UUID) ([]*types.MediaAsset, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	assets, err := assetRepo.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load media assets: %w", err)
	}
	if len(assets) != len(ids) {
		return nil, notFound("asset_not_found", "one or more media assets not found")
	}
	for _, asset := range assets {
		if asset.InstructorID != caller.ID {
			return nil, notFound("asset_not_found", "one or more media assets not found")
		}
	}
	return assets, nil
}
