package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/asteya/yogaflow-backend/internal/apierr"
	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/repos"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type RelationshipService interface {
	Create(ctx context.Context, caller *types.UserProfile, clientID uuid.UUID) (*types.ClientInstructorRelationship, error)
	Get(ctx context.Context, caller *types.UserProfile, id uuid.UUID) (*types.ClientInstructorRelationship, error)
	List(ctx context.Context, caller *types.UserProfile) ([]*types.ClientInstructorRelationship, error)
	Delete(ctx context.Context, caller *types.UserProfile, id uuid.UUID) error
	AssignRoutine(ctx context.Context, caller *types.UserProfile, relationshipID, routineID uuid.UUID) error
	RemoveRoutine(ctx context.Context, caller *types.UserProfile, relationshipID, routineID uuid.UUID) error
}

type relationshipService struct {
	db               *gorm.DB
	log              *logger.Logger
	relationshipRepo repos.RelationshipRepo
	routineRepo      repos.RoutineRepo
	userRepo         repos.UserProfileRepo
}

func NewRelationshipService(
	db *gorm.DB,
	baseLog *logger.Logger,
	relationshipRepo repos.RelationshipRepo,
	routineRepo repos.RoutineRepo,
	userRepo repos.UserProfileRepo,
) RelationshipService {
	serviceLog := baseLog.With("service", "RelationshipService")
	return &relationshipService{
		db:               db,
		log:              serviceLog,
		relationshipRepo: relationshipRepo,
		routineRepo:      routineRepo,
		userRepo:         userRepo,
	}
}

func (rs *relationshipService) Create(ctx context.Context, caller *types.UserProfile, clientID uuid.UUID) (*types.ClientInstructorRelationship, error) {
	if err := requireInstructor(caller); err != nil {
		return nil, err
	}
	client, err := rs.userRepo.GetByID(ctx, nil, clientID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFound("client_not_found", "client %s not found", clientID)
		}
		return nil, err
	}
	if client.IsInstructor() {
		return nil, apierr.New(http.StatusBadRequest, "invalid_client", fmt.Errorf("user %s is not a client", clientID))
	}

	rel := &types.ClientInstructorRelationship{
		ID:           uuid.New(),
		ClientID:     clientID,
		InstructorID: caller.ID,
	}
	if err := rs.relationshipRepo.Create(ctx, nil, rel); err != nil {
		if isUniqueViolation(err) {
			return nil, apierr.New(http.StatusConflict, "relationship_exists",
				fmt.Errorf("relationship between client %s and instructor %s already exists", clientID, caller.ID))
		}
		return nil, fmt.Errorf("failed to create relationship: %w", err)
	}
	rs.log.Info("relationship created", "instructor_id", caller.ID, "client_id", clientID)
	return rel, nil
}

func (rs *relationshipService) Get(ctx context.Context, caller *types.UserProfile, id uuid.UUID) (*types.ClientInstructorRelationship, error) {
	return rs.memberRelationship(ctx, caller, id)
}

// List returns the relationships the caller participates in, on either side.
func (rs *relationshipService) List(ctx context.Context, caller *types.UserProfile) ([]*types.ClientInstructorRelationship, error) {
	if caller.IsInstructor() {
		return rs.relationshipRepo.ListForInstructor(ctx, nil, caller.ID)
	}
	return rs.relationshipRepo.ListForClient(ctx, nil, caller.ID)
}

func (rs *relationshipService) Delete(ctx context.Context, caller *types.UserProfile, id uuid.UUID) error {
	rel, err := rs.memberRelationship(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := rs.relationshipRepo.Delete(ctx, nil, rel.ID); err != nil {
		return fmt.Errorf("failed to delete relationship: %w", err)
	}
	rs.log.Info("relationship deleted", "relationship_id", id)
	return nil
}

func (rs *relationshipService) AssignRoutine(ctx context.Context, caller *types.UserProfile, relationshipID, routineID uuid.UUID) error {
	rel, routine, err := rs.routineForAssignment(ctx, caller, relationshipID, routineID)
	if err != nil {
		return err
	}
	if err := rs.relationshipRepo.AddRoutine(ctx, nil, rel, routine); err != nil {
		return fmt.Errorf("failed to assign routine: %w", err)
	}
	rs.log.Info("routine assigned",
		"relationship_id", relationshipID,
		"routine_id", routineID,
		"client_id", rel.ClientID,
	)
	return nil
}

func (rs *relationshipService) RemoveRoutine(ctx context.Context, caller *types.UserProfile, relationshipID, routineID uuid.UUID) error {
	rel, routine, err := rs.routineForAssignment(ctx, caller, relationshipID, routineID)
	if err != nil {
		return err
	}
	if err := rs.relationshipRepo.RemoveRoutine(ctx, nil, rel, routine); err != nil {
		return fmt.Errorf("failed to remove routine: %w", err)
	}
	return nil
}

// routineForAssignment checks the caller is the relationship's instructor and
// the routine belongs to that same instructor.
func (rs *relationshipService) routineForAssignment(ctx context.Context, caller *types.UserProfile, relationshipID, routineID uuid.UUID) (*types.ClientInstructorRelationship, *types.Routine, error) {
	if err := requireInstructor(caller); err != nil {
		return nil, nil, err
	}
	rel, err := rs.memberRelationship(ctx, caller, relationshipID)
	if err != nil {
		return nil, nil, err
	}
	if rel.InstructorID != caller.ID && caller.Role != types.RoleAdmin {
		return nil, nil, apierr.New(http.StatusForbidden, "forbidden", fmt.Errorf("only the relationship's instructor can manage assignments"))
	}
	routine, err := rs.routineRepo.GetByID(ctx, nil, routineID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, notFound("routine_not_found", "routine %s not found", routineID)
		}
		return nil, nil, err
	}
	if routine.InstructorID != rel.InstructorID {
		return nil, nil, apierr.New(http.StatusBadRequest, "routine_not_owned",
			fmt.Errorf("routine %s does not belong to the relationship's instructor", routineID))
	}
	return rel, routine, nil
}

func (rs *relationshipService) memberRelationship(ctx context.Context, caller *types.UserProfile, id uuid.UUID) (*types.ClientInstructorRelationship, error) {
	rel, err := rs.relationshipRepo.GetByID(ctx, nil, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFound("relationship_not_found", "relationship %s not found", id)
		}
		return nil, err
	}
	if rel.ClientID != caller.ID && rel.InstructorID != caller.ID && caller.Role != types.RoleAdmin {
		return nil, notFound("relationship_not_found", "relationship %s not found", id)
	}
	return rel, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
