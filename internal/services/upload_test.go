package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/asteya/yogaflow-backend/internal/apierr"
	"github.com/asteya/yogaflow-backend/internal/types"
)

type fakeObjectStore struct {
	objects map[string][]byte
	signErr error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (f *fakeObjectStore) EnsureBucket(ctx context.Context) error { return nil }

func (f *fakeObjectStore) Upload(ctx context.Context, key string, file io.Reader, contentType string) error {
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeObjectStore) SignedReadURL(key string, expiry time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	return "https://storage.test/read/" + key, nil
}

func (f *fakeObjectStore) SignedUploadURL(key, contentType string, expiry time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	return "https://storage.test/upload/" + key, nil
}

func (f *fakeObjectStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	keys := []string{}
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (f *fakeObjectStore) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

type fakeUploadSessionRepo struct {
	sessions map[uuid.UUID]*types.UploadSession
}

func newFakeUploadSessionRepo() *fakeUploadSessionRepo {
	return &fakeUploadSessionRepo{sessions: map[uuid.UUID]*types.UploadSession{}}
}

func (f *fakeUploadSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.UploadSession) error {
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeUploadSessionRepo) GetByUploadID(ctx context.Context, tx *gorm.DB, uploadID uuid.UUID) (*types.UploadSession, error) {
	for _, session := range f.sessions {
		if session.UploadID == uploadID {
			copied := *session
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUploadSessionRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	session, ok := f.sessions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for field, val := range updates {
		switch field {
		case "status":
			session.Status = val.(types.UploadStatus)
		case "uploaded_size":
			session.UploadedSize = val.(int64)
		case "total_size":
			session.TotalSize = val.(int64)
		case "error_message":
			session.ErrorMessage = val.(string)
		case "completed_at":
			at := val.(time.Time)
			session.CompletedAt = &at
		}
	}
	return nil
}

func (f *fakeUploadSessionRepo) ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.UploadSession, error) {
	out := []*types.UploadSession{}
	for _, session := range f.sessions {
		if session.OwnerID == ownerID {
			copied := *session
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeMediaAssetRepo struct {
	assets map[uuid.UUID]*types.MediaAsset
}

func newFakeMediaAssetRepo() *fakeMediaAssetRepo {
	return &fakeMediaAssetRepo{assets: map[uuid.UUID]*types.MediaAsset{}}
}

func (f *fakeMediaAssetRepo) Create(ctx context.Context, tx *gorm.DB, asset *types.MediaAsset) error {
	f.assets[asset.ID] = asset
	return nil
}

func (f *fakeMediaAssetRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MediaAsset, error) {
	asset, ok := f.assets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return asset, nil
}

func (f *fakeMediaAssetRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.MediaAsset, error) {
	out := []*types.MediaAsset{}
	for _, id := range ids {
		if asset, ok := f.assets[id]; ok {
			out = append(out, asset)
		}
	}
	return out, nil
}

func (f *fakeMediaAssetRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

func (f *fakeMediaAssetRepo) SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	delete(f.assets, id)
	return nil
}

func (f *fakeMediaAssetRepo) ListByInstructor(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID, assetType string) ([]*types.MediaAsset, error) {
	out := []*types.MediaAsset{}
	for _, asset := range f.assets {
		if asset.InstructorID == instructorID && (assetType == "" || asset.AssetType == assetType) {
			out = append(out, asset)
		}
	}
	return out, nil
}

func newTestUploadService(t *testing.T) (UploadService, *fakeObjectStore, *fakeUploadSessionRepo, *fakeMediaAssetRepo) {
	t.Helper()
	store := newFakeObjectStore()
	sessions := newFakeUploadSessionRepo()
	assets := newFakeMediaAssetRepo()
	svc := NewUploadService(nil, testLogger(t), store, nil, sessions, assets)
	return svc, store, sessions, assets
}

func wantAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	apiErr, ok := err.(*apierr.Error)
	if !ok {
		t.Fatalf("expected *apierr.Error, got %T: %v", err, err)
	}
	if apiErr.Status != status || apiErr.Code != code {
		t.Fatalf("got (%d, %s), want (%d, %s)", apiErr.Status, apiErr.Code, status, code)
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "morning flow.mp4", want: "morning flow.mp4"},
		{in: "../../etc/passwd", want: "....etcpasswd"},
		{in: "pose#1@(final).png", want: "pose1final.png"},
		{in: "नमस्ते.jpg", want: ".jpg"},
		{in: "///", want: "file"},
	}
	for _, tc := range cases {
		if got := sanitizeFileName(tc.in); got != tc.want {
			t.Fatalf("sanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuildStoragePath(t *testing.T) {
	ownerID := uuid.New()
	at := time.Date(2026, 4, 2, 15, 4, 5, 0, time.UTC)
	got := buildStoragePath(ownerID, types.AssetTypeVideo, "sun salutation.mp4", at)
	want := ownerID.String() + "/video/20260402_150405_sun salutation.mp4"
	if got != want {
		t.Fatalf("buildStoragePath = %q, want %q", got, want)
	}
}

func TestIssuePolicy(t *testing.T) {
	svc, _, sessions, _ := newTestUploadService(t)
	ownerID := uuid.New()

	policy, err := svc.IssuePolicy(context.Background(), ownerID, "flow.mp4", types.AssetTypeVideo, "", 0)
	if err != nil {
		t.Fatalf("IssuePolicy failed: %v", err)
	}
	if !strings.HasPrefix(policy.FilePath, ownerID.String()+"/video/") {
		t.Fatalf("file path %q not under owner prefix", policy.FilePath)
	}
	if policy.ContentType != "video/mp4" {
		t.Fatalf("content type = %q, want video/mp4", policy.ContentType)
	}
	if policy.MaxSizeBytes != 500<<20 {
		t.Fatalf("max size = %d, want default video ceiling", policy.MaxSizeBytes)
	}
	if policy.SignedURL == "" {
		t.Fatalf("missing signed URL")
	}
	until := time.Until(policy.ExpiresAt)
	if until < 59*time.Minute || until > time.Hour {
		t.Fatalf("expiry %v not about an hour out", until)
	}

	session, err := sessions.GetByUploadID(context.Background(), nil, policy.UploadID)
	if err != nil {
		t.Fatalf("session not created: %v", err)
	}
	if session.Status != types.UploadPending {
		t.Fatalf("new session status = %s, want pending", session.Status)
	}
	if session.UploadedSize != 0 {
		t.Fatalf("new session uploaded size = %d, want 0", session.UploadedSize)
	}
	if session.TotalSize != policy.MaxSizeBytes {
		t.Fatalf("new session total size = %d, want %d from the issued policy", session.TotalSize, policy.MaxSizeBytes)
	}
}

func TestIssuePolicySeedsProgressTotal(t *testing.T) {
	svc, _, _, _ := newTestUploadService(t)
	ownerID := uuid.New()
	ctx := context.Background()

	const declaredSize = int64(2 << 20)
	policy, err := svc.IssuePolicy(ctx, ownerID, "pose.png", types.AssetTypeImage, "", declaredSize)
	if err != nil {
		t.Fatalf("IssuePolicy failed: %v", err)
	}

	uploaded := declaredSize
	session, err := svc.UpdateProgress(ctx, ownerID, policy.UploadID, ProgressUpdate{
		UploadedSize: &uploaded,
		Status:       types.UploadUploading,
	})
	if err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}
	if got := session.ProgressPercentage(); got != 100 {
		t.Fatalf("ProgressPercentage() = %d, want 100 without a client-side total", got)
	}
}

func TestIssuePolicyValidation(t *testing.T) {
	svc, _, _, _ := newTestUploadService(t)
	ownerID := uuid.New()

	_, err := svc.IssuePolicy(context.Background(), ownerID, "", types.AssetTypeImage, "", 0)
	wantAPIError(t, err, 400, "missing_file_name")

	_, err = svc.IssuePolicy(context.Background(), ownerID, "a.png", "document", "", 0)
	wantAPIError(t, err, 400, "invalid_asset_type")
}

func TestUpdateProgressTransitions(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	start := func(t *testing.T) (UploadService, uuid.UUID) {
		svc, _, _, _ := newTestUploadService(t)
		policy, err := svc.IssuePolicy(ctx, ownerID, "a.png", types.AssetTypeImage, "", 0)
		if err != nil {
			t.Fatalf("IssuePolicy failed: %v", err)
		}
		return svc, policy.UploadID
	}

	step := func(t *testing.T, svc UploadService, uploadID uuid.UUID, status types.UploadStatus) error {
		_, err := svc.UpdateProgress(ctx, ownerID, uploadID, ProgressUpdate{Status: status})
		return err
	}

	t.Run("legal_chain", func(t *testing.T) {
		svc, uploadID := start(t)
		for _, status := range []types.UploadStatus{types.UploadUploading, types.UploadVerifying, types.UploadCompleted} {
			if err := step(t, svc, uploadID, status); err != nil {
				t.Fatalf("transition to %s failed: %v", status, err)
			}
		}
		session, err := svc.GetSession(ctx, ownerID, uploadID)
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if session.CompletedAt == nil {
			t.Fatalf("completed session missing completed_at")
		}
	})

	t.Run("failed_from_any_non_terminal", func(t *testing.T) {
		for _, prep := range [][]types.UploadStatus{
			{},
			{types.UploadUploading},
			{types.UploadUploading, types.UploadVerifying},
		} {
			svc, uploadID := start(t)
			for _, status := range prep {
				if err := step(t, svc, uploadID, status); err != nil {
					t.Fatalf("setup transition to %s failed: %v", status, err)
				}
			}
			if err := step(t, svc, uploadID, types.UploadFailed); err != nil {
				t.Fatalf("failing after %v should be legal: %v", prep, err)
			}
		}
	})

	t.Run("failed_does_not_stamp_completed_at", func(t *testing.T) {
		svc, uploadID := start(t)
		if err := step(t, svc, uploadID, types.UploadFailed); err != nil {
			t.Fatalf("fail transition: %v", err)
		}
		session, err := svc.GetSession(ctx, ownerID, uploadID)
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if session.CompletedAt != nil {
			t.Fatalf("failed session has completed_at %v, only completed sessions finish", session.CompletedAt)
		}
	})

	t.Run("terminal_states_reject_movement", func(t *testing.T) {
		svc, uploadID := start(t)
		if err := step(t, svc, uploadID, types.UploadFailed); err != nil {
			t.Fatalf("fail transition: %v", err)
		}
		err := step(t, svc, uploadID, types.UploadUploading)
		wantAPIError(t, err, 409, "invalid_transition")
	})

	t.Run("skipping_uploading_to_completed", func(t *testing.T) {
		svc, uploadID := start(t)
		err := step(t, svc, uploadID, types.UploadCompleted)
		wantAPIError(t, err, 409, "invalid_transition")
	})

	t.Run("unknown_status", func(t *testing.T) {
		svc, uploadID := start(t)
		err := step(t, svc, uploadID, types.UploadStatus("paused"))
		wantAPIError(t, err, 400, "invalid_status")
	})

	t.Run("other_owner_sees_not_found", func(t *testing.T) {
		svc, uploadID := start(t)
		_, err := svc.UpdateProgress(ctx, uuid.New(), uploadID, ProgressUpdate{Status: types.UploadUploading})
		wantAPIError(t, err, 404, "upload_not_found")
	})
}

func TestProgressPercentage(t *testing.T) {
	cases := []struct {
		name     string
		uploaded int64
		total    int64
		want     int
	}{
		{name: "zero_total", uploaded: 100, total: 0, want: 0},
		{name: "halfway", uploaded: 50, total: 100, want: 50},
		{name: "floor", uploaded: 1, total: 3, want: 33},
		{name: "overshoot_clamped", uploaded: 150, total: 100, want: 100},
		{name: "complete", uploaded: 100, total: 100, want: 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			session := &types.UploadSession{UploadedSize: tc.uploaded, TotalSize: tc.total}
			if got := session.ProgressPercentage(); got != tc.want {
				t.Fatalf("ProgressPercentage() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestVerifyUpload(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("success_materializes_asset", func(t *testing.T) {
		svc, store, _, assets := newTestUploadService(t)
		policy, err := svc.IssuePolicy(ctx, ownerID, "pose.png", types.AssetTypeImage, "", 0)
		if err != nil {
			t.Fatalf("IssuePolicy failed: %v", err)
		}
		store.objects[policy.FilePath] = []byte("png bytes")
		if _, err := svc.UpdateProgress(ctx, ownerID, policy.UploadID, ProgressUpdate{Status: types.UploadUploading}); err != nil {
			t.Fatalf("progress update failed: %v", err)
		}

		asset, err := svc.VerifyUpload(ctx, ownerID, policy.UploadID, policy.FilePath)
		if err != nil {
			t.Fatalf("VerifyUpload failed: %v", err)
		}
		if asset.StoragePath != policy.FilePath {
			t.Fatalf("asset storage path = %q, want %q", asset.StoragePath, policy.FilePath)
		}
		if asset.AccessURL == "" {
			t.Fatalf("asset missing access URL")
		}
		if asset.ThumbnailURL != asset.AccessURL {
			t.Fatalf("image asset should get the pass-through thumbnail")
		}
		if _, err := assets.GetByID(ctx, nil, asset.ID); err != nil {
			t.Fatalf("asset not persisted: %v", err)
		}

		session, err := svc.GetSession(ctx, ownerID, policy.UploadID)
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if session.Status != types.UploadCompleted {
			t.Fatalf("session status = %s, want completed", session.Status)
		}
	})

	t.Run("foreign_prefix_rejected_and_session_failed", func(t *testing.T) {
		svc, store, _, _ := newTestUploadService(t)
		policy, err := svc.IssuePolicy(ctx, ownerID, "pose.png", types.AssetTypeImage, "", 0)
		if err != nil {
			t.Fatalf("IssuePolicy failed: %v", err)
		}
		foreign := uuid.New().String() + "/image/stolen.png"
		store.objects[foreign] = []byte("x")

		_, err = svc.VerifyUpload(ctx, ownerID, policy.UploadID, foreign)
		wantAPIError(t, err, 403, "forbidden_path")

		session, err := svc.GetSession(ctx, ownerID, policy.UploadID)
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if session.Status != types.UploadFailed {
			t.Fatalf("session status = %s, want failed", session.Status)
		}
		if session.ErrorMessage == "" {
			t.Fatalf("failed session missing error message")
		}
	})

	t.Run("missing_object", func(t *testing.T) {
		svc, _, _, _ := newTestUploadService(t)
		policy, err := svc.IssuePolicy(ctx, ownerID, "pose.png", types.AssetTypeImage, "", 0)
		if err != nil {
			t.Fatalf("IssuePolicy failed: %v", err)
		}
		_, err = svc.VerifyUpload(ctx, ownerID, policy.UploadID, policy.FilePath)
		wantAPIError(t, err, 404, "object_not_found")
	})

	t.Run("completed_session_rejects_reverify", func(t *testing.T) {
		svc, store, _, _ := newTestUploadService(t)
		policy, err := svc.IssuePolicy(ctx, ownerID, "pose.png", types.AssetTypeImage, "", 0)
		if err != nil {
			t.Fatalf("IssuePolicy failed: %v", err)
		}
		store.objects[policy.FilePath] = []byte("png bytes")
		if _, err := svc.VerifyUpload(ctx, ownerID, policy.UploadID, policy.FilePath); err != nil {
			t.Fatalf("first verify failed: %v", err)
		}
		_, err = svc.VerifyUpload(ctx, ownerID, policy.UploadID, policy.FilePath)
		wantAPIError(t, err, 409, "invalid_transition")
	})
}

func TestUploadDirect(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("streams_and_materializes", func(t *testing.T) {
		svc, store, sessions, _ := newTestUploadService(t)
		payload := bytes.Repeat([]byte("om"), 1<<20)

		asset, err := svc.UploadDirect(ctx, ownerID, "chant.mp3", types.AssetTypeAudio, "", int64(len(payload)), bytes.NewReader(payload))
		if err != nil {
			t.Fatalf("UploadDirect failed: %v", err)
		}
		if got := store.objects[asset.StoragePath]; !bytes.Equal(got, payload) {
			t.Fatalf("stored object does not match payload")
		}
		if asset.SizeBytes != int64(len(payload)) {
			t.Fatalf("asset size = %d, want %d", asset.SizeBytes, len(payload))
		}
		if asset.ThumbnailURL != "" {
			t.Fatalf("audio asset should not get a thumbnail")
		}

		list, err := sessions.ListByOwner(ctx, nil, ownerID)
		if err != nil || len(list) != 1 {
			t.Fatalf("expected one session, got %d (err %v)", len(list), err)
		}
		if list[0].Status != types.UploadCompleted {
			t.Fatalf("session status = %s, want completed", list[0].Status)
		}
	})

	t.Run("oversized_rejected", func(t *testing.T) {
		svc, _, _, _ := newTestUploadService(t)
		_, err := svc.UploadDirect(ctx, ownerID, "huge.png", types.AssetTypeImage, "", (10<<20)+1, bytes.NewReader(nil))
		wantAPIError(t, err, 400, "file_too_large")
	})
}
