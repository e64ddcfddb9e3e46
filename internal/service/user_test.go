package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/streamhive/streamhive/internal/dto"
	apperrors "github.com/streamhive/streamhive/internal/errors"
	"github.com/streamhive/streamhive/internal/model"
	"github.com/streamhive/streamhive/pkg/storage"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// fakeUserStore is an in-memory UserStore for exercising service
// behavior without a database.
type fakeUserStore struct {
	users  map[uint]*model.User
	nextID uint

	failCreate bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uint]*model.User{}, nextID: 1}
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) GetByLogin(_ context.Context, username, email string) (*model.User, error) {
	for _, user := range f.users {
		if (username != "" && user.Username == username) || (email != "" && user.Email == email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	for _, user := range f.users {
		if user.Username == username || user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) Create(_ context.Context, user *model.User) error {
	if f.failCreate {
		return errors.New("insert failed")
	}
	user.ID = f.nextID
	f.nextID++
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) UpdateAccount(_ context.Context, id uint, fields map[string]interface{}) error {
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["full_name"]; ok {
		user.FullName = v.(string)
	}
	if v, ok := fields["email"]; ok {
		user.Email = v.(string)
	}
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id uint, hashedPassword string) error {
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Password = hashedPassword
	return nil
}

func (f *fakeUserStore) UpdateLastLogin(_ context.Context, id uint) error {
	if _, ok := f.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (f *fakeUserStore) SetRefreshToken(_ context.Context, id uint, token *string) error {
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if token == nil {
		user.RefreshToken = nil
		return nil
	}
	copied := *token
	user.RefreshToken = &copied
	return nil
}

func (f *fakeUserStore) RotateRefreshToken(_ context.Context, id uint, oldToken, newToken string) error {
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if user.RefreshToken == nil || *user.RefreshToken != oldToken {
		return gorm.ErrRecordNotFound
	}
	copied := newToken
	user.RefreshToken = &copied
	return nil
}

func (f *fakeUserStore) UpdateMedia(_ context.Context, id uint, fields map[string]interface{}) error {
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["avatar_url"]; ok {
		user.AvatarURL = v.(string)
	}
	if v, ok := fields["avatar_id"]; ok {
		user.AvatarID = v.(string)
	}
	if v, ok := fields["cover_url"]; ok {
		user.CoverURL = v.(string)
	}
	if v, ok := fields["cover_id"]; ok {
		user.CoverID = v.(string)
	}
	return nil
}

func (f *fakeUserStore) ChannelStats(_ context.Context, _ uint) (int64, int64, error) {
	return 0, 0, nil
}

func (f *fakeUserStore) AddWatchEntry(_ context.Context, _, _ uint) error {
	return nil
}

func (f *fakeUserStore) WatchHistory(_ context.Context, _ uint, _, _ int) ([]model.WatchEntry, int64, error) {
	return nil, 0, nil
}

func (f *fakeUserStore) Delete(_ context.Context, id uint) error {
	if _, ok := f.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.users, id)
	return nil
}

// fakeMediaStore records uploads and deletes in memory.
type fakeMediaStore struct {
	uploads    int
	stored     map[string]bool
	failUpload map[storage.MediaKind]bool
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{stored: map[string]bool{}, failUpload: map[storage.MediaKind]bool{}}
}

func (f *fakeMediaStore) Upload(_ context.Context, localPath string, kind storage.MediaKind) (*storage.UploadResult, error) {
	if f.failUpload[kind] {
		return nil, errors.New("upstream unavailable")
	}
	f.uploads++
	id := fmt.Sprintf("%s/object-%d", kind, f.uploads)
	f.stored[id] = true
	return &storage.UploadResult{
		URL:      "https://media.test/" + id,
		PublicID: id,
	}, nil
}

func (f *fakeMediaStore) Delete(_ context.Context, publicIDs ...string) error {
	for _, id := range publicIDs {
		delete(f.stored, id)
	}
	return nil
}

func newTestUserService() (*UserService, *fakeUserStore, *fakeMediaStore) {
	store := newFakeUserStore()
	media := newFakeMediaStore()
	svc := NewUserService(store, newFakeVideoStore(), newTestJWTService(), media, NewCacheService(nil))
	return svc, store, media
}

func seedUser(t *testing.T, store *fakeUserStore, username, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &model.User{
		Username: username,
		Email:    username + "@example.com",
		FullName: "Test User",
		Password: string(hash),
		AvatarID: "avatars/seed",
	}
	if err := store.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return store.users[user.ID]
}

func TestUserService_Register(t *testing.T) {
	svc, store, media := newTestUserService()
	ctx := context.Background()

	req := &dto.RegisterUserRequest{
		Username: "Alice",
		Email:    "Alice@Example.com",
		FullName: "Alice Doe",
		Password: "secret123",
	}

	res, err := svc.Register(ctx, req, "/tmp/avatar.png", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if res.Username != "alice" || res.Email != "alice@example.com" {
		t.Errorf("identifiers not lowercased: %q / %q", res.Username, res.Email)
	}

	stored := store.users[res.ID]
	if stored == nil {
		t.Fatal("user not persisted")
	}
	if stored.Password == "secret123" {
		t.Error("password stored in plain text")
	}
	if stored.AvatarURL == "" || stored.AvatarID == "" {
		t.Error("avatar not recorded on user")
	}
	if len(media.stored) != 1 {
		t.Errorf("stored objects = %d, want 1", len(media.stored))
	}
}

func TestUserService_Register_DuplicateUsername(t *testing.T) {
	svc, store, _ := newTestUserService()
	seedUser(t, store, "alice", "secret123")

	_, err := svc.Register(context.Background(), &dto.RegisterUserRequest{
		Username: "ALICE",
		Email:    "other@example.com",
		FullName: "Imposter",
		Password: "secret123",
	}, "/tmp/avatar.png", "")

	if !errors.Is(err, apperrors.ErrUserExists) {
		t.Fatalf("Register() error = %v, want ErrUserExists", err)
	}
}

func TestUserService_Register_RollsBackMediaOnCreateFailure(t *testing.T) {
	svc, store, media := newTestUserService()
	store.failCreate = true

	_, err := svc.Register(context.Background(), &dto.RegisterUserRequest{
		Username: "bob",
		Email:    "bob@example.com",
		FullName: "Bob",
		Password: "secret123",
	}, "/tmp/avatar.png", "/tmp/cover.png")

	if err == nil {
		t.Fatal("Register() expected error")
	}
	if len(media.stored) != 0 {
		t.Errorf("stored objects after rollback = %d, want 0", len(media.stored))
	}
}

func TestUserService_Register_RollsBackAvatarOnCoverFailure(t *testing.T) {
	svc, _, media := newTestUserService()
	media.failUpload[storage.KindCover] = true

	_, err := svc.Register(context.Background(), &dto.RegisterUserRequest{
		Username: "carol",
		Email:    "carol@example.com",
		FullName: "Carol",
		Password: "secret123",
	}, "/tmp/avatar.png", "/tmp/cover.png")

	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != apperrors.CodeUpstream {
		t.Fatalf("Register() error = %v, want upstream error", err)
	}
	if len(media.stored) != 0 {
		t.Errorf("stored objects after rollback = %d, want 0", len(media.stored))
	}
}

func TestUserService_Login(t *testing.T) {
	svc, store, _ := newTestUserService()
	seeded := seedUser(t, store, "alice", "secret123")

	res, err := svc.Login(context.Background(), &dto.UserLoginRequest{
		Username: "alice",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatal("Login() returned empty tokens")
	}

	stored := store.users[seeded.ID]
	if stored.RefreshToken == nil || *stored.RefreshToken != res.RefreshToken {
		t.Error("issued refresh token was not persisted before release")
	}
}

func TestUserService_Login_ByEmail(t *testing.T) {
	svc, store, _ := newTestUserService()
	seedUser(t, store, "alice", "secret123")

	_, err := svc.Login(context.Background(), &dto.UserLoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Login() by email error = %v", err)
	}
}

func TestUserService_Login_Failures(t *testing.T) {
	svc, store, _ := newTestUserService()
	seeded := seedUser(t, store, "alice", "secret123")

	tests := []struct {
		name string
		req  dto.UserLoginRequest
		want *apperrors.DomainError
	}{
		{"wrong password", dto.UserLoginRequest{Username: "alice", Password: "wrong"}, apperrors.ErrInvalidCredentials},
		{"unknown user", dto.UserLoginRequest{Username: "nobody", Password: "secret123"}, apperrors.ErrInvalidCredentials},
		{"no identifier", dto.UserLoginRequest{Password: "secret123"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), &tt.req)
			if err == nil {
				t.Fatal("Login() expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Login() error = %v, want %v", err, tt.want)
			}
		})
	}

	if store.users[seeded.ID].RefreshToken != nil {
		t.Error("failed login persisted a refresh token")
	}
}

func TestUserService_RefreshTokens_Rotation(t *testing.T) {
	svc, store, _ := newTestUserService()
	seeded := seedUser(t, store, "alice", "secret123")

	login, err := svc.Login(context.Background(), &dto.UserLoginRequest{Username: "alice", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	refreshed, err := svc.RefreshTokens(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshTokens() error = %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Error("refresh token was not rotated")
	}
	if stored := store.users[seeded.ID].RefreshToken; stored == nil || *stored != refreshed.RefreshToken {
		t.Error("rotated token not persisted")
	}

	// The previous token is single-use.
	if _, err := svc.RefreshTokens(context.Background(), login.RefreshToken); !errors.Is(err, apperrors.ErrInvalidRefreshToken) {
		t.Errorf("reused token error = %v, want ErrInvalidRefreshToken", err)
	}
}

func TestUserService_RefreshTokens_Rejections(t *testing.T) {
	svc, store, _ := newTestUserService()
	seedUser(t, store, "alice", "secret123")

	login, err := svc.Login(context.Background(), &dto.UserLoginRequest{Username: "alice", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	foreign, err := newTestJWTService().GenerateRefreshToken(999)
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	tests := []struct {
		name  string
		setup func(t *testing.T)
		token string
	}{
		{"empty token", nil, ""},
		{"malformed token", nil, "not-a-jwt"},
		{"unknown subject", nil, foreign},
		{"revoked session", func(t *testing.T) {
			if err := svc.Logout(context.Background(), 1); err != nil {
				t.Fatalf("Logout() error = %v", err)
			}
		}, login.RefreshToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup(t)
			}
			_, err := svc.RefreshTokens(context.Background(), tt.token)
			if !errors.Is(err, apperrors.ErrInvalidRefreshToken) {
				t.Errorf("RefreshTokens() error = %v, want ErrInvalidRefreshToken", err)
			}
		})
	}
}

func TestUserService_Logout_Idempotent(t *testing.T) {
	svc, store, _ := newTestUserService()
	seeded := seedUser(t, store, "alice", "secret123")

	if _, err := svc.Login(context.Background(), &dto.UserLoginRequest{Username: "alice", Password: "secret123"}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := svc.Logout(context.Background(), seeded.ID); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if store.users[seeded.ID].RefreshToken != nil {
		t.Error("refresh token not cleared on logout")
	}

	if err := svc.Logout(context.Background(), seeded.ID); err != nil {
		t.Errorf("second Logout() error = %v, want nil", err)
	}
}

func TestUserService_UpdatePassword(t *testing.T) {
	svc, store, _ := newTestUserService()
	seeded := seedUser(t, store, "alice", "secret123")

	tests := []struct {
		name string
		req  dto.UpdatePasswordRequest
		want *apperrors.DomainError
	}{
		{"confirmation mismatch", dto.UpdatePasswordRequest{CurrentPassword: "secret123", NewPassword: "newpass123", ConfirmPassword: "different"}, apperrors.ErrPasswordMismatch},
		{"wrong current password", dto.UpdatePasswordRequest{CurrentPassword: "wrong", NewPassword: "newpass123", ConfirmPassword: "newpass123"}, apperrors.ErrIncorrectPassword},
		{"success", dto.UpdatePasswordRequest{CurrentPassword: "secret123", NewPassword: "newpass123", ConfirmPassword: "newpass123"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.UpdatePassword(context.Background(), seeded.ID, &tt.req)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("UpdatePassword() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("UpdatePassword() error = %v, want %v", err, tt.want)
			}
		})
	}

	// The new credential works, the old one does not.
	if _, err := svc.Login(context.Background(), &dto.UserLoginRequest{Username: "alice", Password: "newpass123"}); err != nil {
		t.Errorf("Login() with new password error = %v", err)
	}
	if _, err := svc.Login(context.Background(), &dto.UserLoginRequest{Username: "alice", Password: "secret123"}); !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Errorf("Login() with old password error = %v, want ErrInvalidCredentials", err)
	}
}

func TestUserService_UpdateAccount_NothingToUpdate(t *testing.T) {
	svc, store, _ := newTestUserService()
	seeded := seedUser(t, store, "alice", "secret123")

	_, err := svc.UpdateAccount(context.Background(), seeded.ID, &dto.UpdateAccountRequest{})
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != apperrors.CodeValidation {
		t.Fatalf("UpdateAccount() error = %v, want validation error", err)
	}
}

func TestUserService_UpdateAccount_EmailConflict(t *testing.T) {
	svc, store, _ := newTestUserService()
	alice := seedUser(t, store, "alice", "secret123")
	seedUser(t, store, "bob", "secret123")

	_, err := svc.UpdateAccount(context.Background(), alice.ID, &dto.UpdateAccountRequest{
		Email: "bob@example.com",
	})
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != apperrors.CodeConflict {
		t.Fatalf("UpdateAccount() error = %v, want conflict error", err)
	}
	if store.users[alice.ID].Email != "alice@example.com" {
		t.Errorf("email changed despite conflict: %s", store.users[alice.ID].Email)
	}

	// Re-submitting the caller's own email is not a conflict.
	res, err := svc.UpdateAccount(context.Background(), alice.ID, &dto.UpdateAccountRequest{
		Email: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("UpdateAccount() own email error = %v", err)
	}
	if res.Email != "alice@example.com" {
		t.Errorf("email = %s, want alice@example.com", res.Email)
	}
}

func TestUserService_DeleteAccount_RemovesMedia(t *testing.T) {
	store := newFakeUserStore()
	videoStore := newFakeVideoStore()
	media := newFakeMediaStore()
	svc := NewUserService(store, videoStore, newTestJWTService(), media, NewCacheService(nil))
	ctx := context.Background()

	res, err := svc.Register(ctx, &dto.RegisterUserRequest{
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice",
		Password: "secret123",
	}, "/tmp/avatar.png", "/tmp/cover.png")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// The account's videos live in the media store too.
	video := seedVideo(videoStore, res.ID, true)
	media.stored[video.VideoID] = true
	media.stored[video.ThumbnailID] = true

	if err := svc.DeleteAccount(ctx, res.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	if _, ok := store.users[res.ID]; ok {
		t.Error("user row still present after deletion")
	}
	if len(media.stored) != 0 {
		t.Errorf("stored objects after deletion = %d, want 0", len(media.stored))
	}
}
