package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/asteya/yogaflow-backend/internal/clients/identity"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type fakeIdentityClient struct {
	subject uuid.UUID
}

func (f *fakeIdentityClient) SignUp(ctx context.Context, email, password, fullName string) (*identity.Session, error) {
	session := &identity.Session{AccessToken: "token"}
	session.User.ID = f.subject.String()
	session.User.Email = email
	return session, nil
}

func (f *fakeIdentityClient) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	return f.SignUp(ctx, email, password, "")
}

func (f *fakeIdentityClient) ChangePassword(ctx context.Context, accessToken, newPassword string) error {
	return nil
}

func (f *fakeIdentityClient) VerifyToken(ctx context.Context, tokenString string) (*identity.TokenClaims, error) {
	return &identity.TokenClaims{Subject: f.subject}, nil
}

type fakeUserProfileRepo struct {
	byExternal map[uuid.UUID]*types.UserProfile
	updates    []map[string]interface{}
}

func newFakeUserProfileRepo() *fakeUserProfileRepo {
	return &fakeUserProfileRepo{byExternal: map[uuid.UUID]*types.UserProfile{}}
}

func (f *fakeUserProfileRepo) GetOrCreateByExternalID(ctx context.Context, tx *gorm.DB, externalID uuid.UUID, email string) (*types.UserProfile, error) {
	if profile, ok := f.byExternal[externalID]; ok {
		return profile, nil
	}
	profile := &types.UserProfile{ID: uuid.New(), ExternalID: externalID, Email: email, Role: types.RoleClient}
	f.byExternal[externalID] = profile
	return profile, nil
}

func (f *fakeUserProfileRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.UserProfile, error) {
	for _, profile := range f.byExternal {
		if profile.ID == id {
			return profile, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserProfileRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.UserProfile, error) {
	out := []*types.UserProfile{}
	for _, id := range ids {
		if profile, err := f.GetByID(ctx, tx, id); err == nil {
			out = append(out, profile)
		}
	}
	return out, nil
}

func (f *fakeUserProfileRepo) ListClientsOfInstructor(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID) ([]*types.UserProfile, error) {
	return nil, nil
}

func (f *fakeUserProfileRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	f.updates = append(f.updates, updates)
	profile, err := f.GetByID(ctx, tx, id)
	if err != nil {
		return err
	}
	if name, ok := updates["full_name"].(string); ok {
		profile.FullName = name
	}
	return nil
}

func (f *fakeUserProfileRepo) UpdateRole(ctx context.Context, tx *gorm.DB, id uuid.UUID, role string) error {
	profile, err := f.GetByID(ctx, tx, id)
	if err != nil {
		return err
	}
	profile.Role = role
	return nil
}

func TestSignUpSetsFullNameThroughRepo(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserProfileRepo()
	svc := NewAuthService(nil, testLogger(t), &fakeIdentityClient{subject: uuid.New()}, userRepo)

	result, err := svc.SignUp(ctx, "asana@example.com", "password", "Asana Teacher")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if result.User.FullName != "Asana Teacher" {
		t.Fatalf("full name = %q, want the signup name", result.User.FullName)
	}
	if len(userRepo.updates) != 1 {
		t.Fatalf("expected the full-name write to go through the repo, saw %d repo updates", len(userRepo.updates))
	}

	// A second sign-in keeps the materialized profile.
	again, err := svc.SignIn(ctx, "asana@example.com", "password")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if again.User.ID != result.User.ID {
		t.Fatalf("sign-in materialized a different profile")
	}
	if len(userRepo.updates) != 1 {
		t.Fatalf("sign-in should not rewrite the full name")
	}
}

func TestSignUpRejectsMissingCredentials(t *testing.T) {
	svc := NewAuthService(nil, testLogger(t), &fakeIdentityClient{subject: uuid.New()}, newFakeUserProfileRepo())

	_, err := svc.SignUp(context.Background(), "", "password", "")
	wantAPIError(t, err, 400, "missing_credentials")

	_, err = svc.SignIn(context.Background(), "asana@example.com", "")
	wantAPIError(t, err, 400, "missing_credentials")
}
