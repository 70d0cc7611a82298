package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/asteya/yogaflow-backend/internal/apierr"
	"github.com/asteya/yogaflow-backend/internal/clients/identity"
	"github.com/asteya/yogaflow-backend/internal/logger"
	"github.com/asteya/yogaflow-backend/internal/repos"
	"github.com/asteya/yogaflow-backend/internal/types"
)

// AuthResult pairs the provider session with the local profile.
type AuthResult struct {
	Session *identity.Session  `json:"session"`
	User    *types.UserProfile `json:"user"`
}

type AuthService interface {
	SignUp(ctx context.Context, email, password, fullName string) (*AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
	ChangePassword(ctx context.Context, accessToken, newPassword string) error
}

type authService struct {
	db             *gorm.DB
	log            *logger.Logger
	identityClient identity.Client
	userRepo       repos.UserProfileRepo
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	identityClient identity.Client,
	userRepo repos.UserProfileRepo,
) AuthService {
	serviceLog := baseLog.With("service", "AuthService")
	return &authService{
		db:             db,
		log:            serviceLog,
		identityClient: identityClient,
		userRepo:       userRepo,
	}
}

func (as *authService) SignUp(ctx context.Context, email, password, fullName string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, apierr.New(http.StatusBadRequest, "missing_credentials", fmt.Errorf("email and password are required"))
	}
	session, err := as.identityClient.SignUp(ctx, email, password, fullName)
	if err != nil {
		return nil, err
	}
	user, err := as.materializeUser(ctx, session, email)
	if err != nil {
		return nil, err
	}
	if fullName != "" && user.FullName == "" {
		if err := as.userRepo.Update(ctx, nil, user.ID, map[string]interface{}{"full_name": fullName}); err != nil {
			as.log.Warn("failed to set full name on signup", "error", err, "user_id", user.ID)
		} else {
			user.FullName = fullName
		}
	}
	as.log.Info("user signed up", "user_id", user.ID)
	return &AuthResult{Session: session, User: user}, nil
}

func (as *authService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, apierr.New(http.StatusBadRequest, "missing_credentials", fmt.Errorf("email and password are required"))
	}
	session, err := as.identityClient.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	user, err := as.materializeUser(ctx, session, email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Session: session, User: user}, nil
}

func (as *authService) ChangePassword(ctx context.Context, accessToken, newPassword string) error {
	if newPassword == "" {
		return apierr.New(http.StatusBadRequest, "missing_password", fmt.Errorf("new password is required"))
	}
	return as.identityClient.ChangePassword(ctx, accessToken, newPassword)
}

func (as *authService) materializeUser(ctx context.Context, session *identity.Session, email string) (*types.UserProfile, error) {
	externalID, err := uuid.Parse(session.User.ID)
	if err != nil {
		return nil, fmt.Errorf("identity provider returned malformed user id: %w", err)
	}
	if session.User.Email != "" {
		email = session.User.Email
	}
	user, err := as.userRepo.GetOrCreateByExternalID(ctx, nil, externalID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to materialize user profile: %w", err)
	}
	return user, nil
}
