package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/asteya/yogaflow-backend/internal/apierr"
	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/repos"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type MeditationService interface {
	Create(ctx context.Context, caller *types.UserProfile, ms *types.MeditationSession, audioAssetIDs, mediaAssetIDs []uuid.UUID) error
	Get(ctx context.Context, caller *types.UserProfile, id uuid.UUID) (*types.MeditationSession, error)
	Update(ctx context.Context, caller *types.UserProfile, id uuid.UUID, updates map[string]interface{}, audioAssetIDs, mediaAssetIDs []uuid.UUID) (*types.MeditationSession, error)
	Delete(ctx context.Context, caller *types.UserProfile, id uuid.UUID) error
	List(ctx context.Context, caller *types.UserProfile) ([]*types.MeditationSession, error)
}

type meditationService struct {
	db             *gorm.DB
	log            *logger.Logger
	meditationRepo repos.MeditationSessionRepo
	assetRepo      repos.MediaAssetRepo
}

func NewMeditationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	meditationRepo repos.MeditationSessionRepo,
	assetRepo repos.MediaAssetRepo,
) MeditationService {
	serviceLog := baseLog.With("service", "MeditationService")
	return &meditationService{
		db:             db,
		log:            serviceLog,
		meditationRepo: meditationRepo,
		assetRepo:      assetRepo,
	}
}

func (ms *meditationService) Create(ctx context.Context, caller *types.UserProfile, session *types.MeditationSession, audioAssetIDs, mediaAssetIDs []uuid.UUID) error {
	if err := requireInstructor(caller); err != nil {
		return err
	}
	if session.Name == "" {
		return apierr.New(http.StatusBadRequest, "missing_name", fmt.Errorf("meditation session name is required"))
	}

	audio, err := ownedAssetsByIDs(ctx, ms.assetRepo, caller, audioAssetIDs)
	if err != nil {
		return err
	}
	media, err := ownedAssetsByIDs(ctx, ms.assetRepo, caller, mediaAssetIDs)
	if err != nil {
		return err
	}

	session.ID = uuid.New()
	session.InstructorID = caller.ID
	session.IsActive = true
	if session.DurationSeconds <= 0 {
		session.DurationSeconds = 600
	}
	if err := ms.meditationRepo.Create(ctx, nil, session); err != nil {
		return fmt.Errorf("failed to create meditation session: %w", err)
	}
	if len(audio) > 0 {
		if err := ms.meditationRepo.ReplaceAudioAssets(ctx, nil, session, audio); err != nil {
			return fmt.Errorf("failed to attach audio assets: %w", err)
		}
	}
	if len(media) > 0 {
		if err := ms.meditationRepo.ReplaceMediaAssets(ctx, nil, session, media); err != nil {
			return fmt.Errorf("failed to attach media assets: %w", err)
		}
	}
	ms.log.Info("meditation session created", "instructor_id", caller.ID, "meditation_session_id", session.ID)
	return nil
}

func (ms *meditationService) Get(ctx context.Context, caller *types.UserProfile, id uuid.UUID) (*types.MeditationSession, error) {
	session, err := ms.meditationRepo.GetByID(ctx, nil, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFound("meditation_session_not_found", "meditation session %s not found", id)
		}
		return nil, err
	}
	if !visibleContent(caller, session.InstructorID, session.IsActive) {
		return nil, notFound("meditation_session_not_found", "meditation session %s not found", id)
	}
	return session, nil
}

func (ms *meditationService) Update(ctx context.Context, caller *types.UserProfile, id uuid.UUID, updates map[string]interface{}, audioAssetIDs, mediaAssetIDs []uuid.UUID) (*types.MeditationSession, error) {
	session, err := ms.ownedSession(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := ms.meditationRepo.Update(ctx, nil, id, updates); err != nil {
			return nil, fmt.Errorf("failed to update meditation session: %w", err)
		}
	}
	if audioAssetIDs != nil {
		audio, err := ownedAssetsByIDs(ctx, ms.assetRepo, caller, audioAssetIDs)
		if err != nil {
			return nil, err
		}
		if err := ms.meditationRepo.ReplaceAudioAssets(ctx, nil, session, audio); err != nil {
			return nil, fmt.Errorf("failed to replace audio assets: %w", err)
		}
	}
	if mediaAssetIDs != nil {
		media, err := ownedAssetsByIDs(ctx, ms.assetRepo, caller, mediaAssetIDs)
		if err != nil {
			return nil, err
		}
		if err := ms.meditationRepo.ReplaceMediaAssets(ctx, nil, session, media); err != nil {
			return nil, fmt.Errorf("failed to replace media assets: %w", err)
		}
	}
	return ms.meditationRepo.GetByID(ctx, nil, id)
}

func (ms *meditationService) Delete(ctx context.Context, caller *types.UserProfile, id uuid.UUID) error {
	if _, err := ms.ownedSession(ctx, caller, id); err != nil {
		return err
	}
	if err := ms.meditationRepo.SoftDelete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete meditation session: %w", err)
	}
	return nil
}

func (ms *meditationService) List(ctx context.Context, caller *types.UserProfile) ([]*types.MeditationSession, error) {
	if caller.IsInstructor() {
		return ms.meditationRepo.ListByInstructor(ctx, nil, caller.ID)
	}
	return ms.meditationRepo.ListActive(ctx, nil)
}

func (ms *meditationService) ownedSession(ctx context.Context, caller *types.UserProfile, id uuid.UUID) (*types.MeditationSession, error) {
	if err := requireInstructor(caller); err != nil {
		return nil, err
	}
	session, err := ms.meditationRepo.GetByID(ctx, nil, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFound("meditation_session_not_found", "meditation session %s not found", id)
		}
		return nil, err
	}
	if session.InstructorID != caller.ID && caller.Role != types.RoleAdmin {
		return nil, notFound("meditation_session_not_found", "meditation session %s not found", id)
	}
	return session, nil
}
