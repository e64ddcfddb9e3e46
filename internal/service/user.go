package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/streamhive/streamhive/internal/dto"
	apperrors "github.com/streamhive/streamhive/internal/errors"
	"github.com/streamhive/streamhive/internal/model"
	ctxutil "github.com/streamhive/streamhive/pkg/context"
	"github.com/streamhive/streamhive/pkg/logger"
	"github.com/streamhive/streamhive/pkg/storage"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	repoUser   UserStore
	repoVideo  VideoStore
	jwtService *JWTService
	media      storage.MediaStore
	cache      *CacheService
}

func NewUserService(repo UserStore, repoVideo VideoStore, jwtService *JWTService, media storage.MediaStore, cache *CacheService) *UserService {
	return &UserService{
		repoUser:   repo,
		repoVideo:  repoVideo,
		jwtService: jwtService,
		media:      media,
		cache:      cache,
	}
}

func toUserResponse(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		AvatarURL: user.AvatarURL,
		CoverURL:  user.CoverURL,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func toOwnerResponse(user *model.User) *dto.OwnerResponse {
	if user == nil || user.ID == 0 {
		return nil
	}
	return &dto.OwnerResponse{
		ID:        user.ID,
		Username:  user.Username,
		FullName:  user.FullName,
		AvatarURL: user.AvatarURL,
	}
}

// hashPassword hashes password using bcrypt
func (s *UserService) hashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedPassword), nil
}

// checkPassword verifies password against hash
func (s *UserService) checkPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// Register creates an account. The avatar is mandatory; a cover is
// optional. Both arrive as staged local files that the media store
// consumes and removes.
func (s *UserService) Register(ctx context.Context, req *dto.RegisterUserRequest, avatarPath, coverPath string) (*dto.UserResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Register")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))

	logger.InfoWithContext(ctx, "Registering new user").
		String("username", username).
		Log()

	exists, err := s.repoUser.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if exists {
		logger.WarnWithContext(ctx, "Registration rejected: identifier taken").
			String("username", username).
			Log()
		return nil, apperrors.ErrUserExists
	}

	hashedPassword, err := s.hashPassword(req.Password)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to hash password").
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	avatar, err := s.media.Upload(ctx, avatarPath, storage.KindAvatar)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrMediaUpload, err)
	}

	user := &model.User{
		Username:  username,
		Email:     email,
		FullName:  strings.TrimSpace(req.FullName),
		Password:  hashedPassword,
		AvatarURL: avatar.URL,
		AvatarID:  avatar.PublicID,
	}

	if coverPath != "" {
		cover, err := s.media.Upload(ctx, coverPath, storage.KindCover)
		if err != nil {
			// Roll back the stored avatar, the account was never created.
			_ = s.media.Delete(ctx, avatar.PublicID)
			return nil, apperrors.WrapError(apperrors.ErrMediaUpload, err)
		}
		user.CoverURL = cover.URL
		user.CoverID = cover.PublicID
	}

	if err := s.repoUser.Create(ctx, user); err != nil {
		_ = s.media.Delete(ctx, user.AvatarID, user.CoverID)
		logger.ErrorWithContext(ctx, "Failed to create user").
			String("username", username).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User registered successfully").
		String("username", username).
		Uint("user_id", user.ID).
		Log()

	return toUserResponse(user), nil
}

// issueTokenPair builds and persists a session. The refresh token is
// stored before either token is released so /auth/refresh can never
// reject a token this login just handed out.
func (s *UserService) issueTokenPair(ctx context.Context, user *model.User) (accessToken, refreshToken string, err error) {
	accessToken, err = s.jwtService.GenerateAccessToken(user.ID, user.Email, user.Username, user.FullName)
	if err != nil {
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	refreshToken, err = s.jwtService.GenerateRefreshToken(user.ID)
	if err != nil {
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err = s.repoUser.SetRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return accessToken, refreshToken, nil
}

// Login authenticates by username or email and opens a session.
func (s *UserService) Login(ctx context.Context, req *dto.UserLoginRequest) (*dto.UserLoginResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Login")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	if req.Username == "" && req.Email == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "username or email is required")
	}

	logger.InfoWithContext(ctx, "User login attempt").
		String("username", req.Username).
		Log()

	user, err := s.repoUser.GetByLogin(ctx, strings.ToLower(req.Username), strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.InfoWithContext(ctx, "Login failed: user not found").
				String("username", req.Username).
				Log()
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !s.checkPassword(user.Password, req.Password) {
		logger.WarnWithContext(ctx, "Login failed: incorrect password").
			Uint("user_id", user.ID).
			Log()
		return nil, apperrors.ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.repoUser.UpdateLastLogin(ctx, user.ID); err != nil {
		logger.WarnWithContext(ctx, "Failed to update last login timestamp").
			Uint("user_id", user.ID).
			Err(err).
			Log()
		// Continue even if update fails
	}

	logger.InfoWithContext(ctx, "User logged in successfully").
		Uint("user_id", user.ID).
		String("username", user.Username).
		Log()

	return &dto.UserLoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.jwtService.AccessExpirySeconds(),
		User:         *toUserResponse(user),
	}, nil
}

// RefreshTokens rotates the session keyed on the presented refresh
// token. Every failure mode surfaces as the same authentication error;
// the logs, not the response, say which one it was.
func (s *UserService) RefreshTokens(ctx context.Context, presented string) (*dto.RefreshTokenResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "RefreshTokens")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	if presented == "" {
		logger.InfoWithContext(ctx, "Refresh rejected: no token presented").
			Log()
		return nil, apperrors.ErrInvalidRefreshToken
	}

	claims, err := s.jwtService.ValidateRefreshToken(presented)
	if err != nil {
		logger.WarnWithContext(ctx, "Refresh rejected: token failed validation").
			Err(err).
			Log()
		return nil, apperrors.ErrInvalidRefreshToken
	}

	user, err := s.repoUser.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WarnWithContext(ctx, "Refresh rejected: user no longer exists").
				Uint("user_id", claims.UserID).
				Log()
			return nil, apperrors.ErrInvalidRefreshToken
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	// A revoked session has no stored token; a rotated one stores a
	// different token. Both reject the presented one.
	if user.RefreshToken == nil || *user.RefreshToken != presented {
		logger.WarnWithContext(ctx, "Refresh rejected: presented token is not the stored session token").
			Uint("user_id", user.ID).
			Bool("session_revoked", user.RefreshToken == nil).
			Log()
		return nil, apperrors.ErrInvalidRefreshToken
	}

	newAccessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, user.Username, user.FullName)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	newRefreshToken, err := s.jwtService.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	// Conditional rotation: the UPDATE only matches while the presented
	// token is still stored, so of two concurrent refreshes exactly one
	// wins and the loser gets an authentication error.
	if err := s.repoUser.RotateRefreshToken(ctx, user.ID, presented, newRefreshToken); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WarnWithContext(ctx, "Refresh rejected: lost rotation race").
				Uint("user_id", user.ID).
				Log()
			return nil, apperrors.ErrInvalidRefreshToken
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Token refreshed successfully").
		Uint("user_id", user.ID).
		Log()

	return &dto.RefreshTokenResponse{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    s.jwtService.AccessExpirySeconds(),
	}, nil
}

// Logout revokes the session by clearing the stored refresh token.
// Idempotent: logging out twice is not an error.
func (s *UserService) Logout(ctx context.Context, userID uint) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Logout")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	if err := s.repoUser.SetRefreshToken(ctx, userID, nil); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		logger.ErrorWithContext(ctx, "Failed to clear refresh token on logout").
			Uint("user_id", userID).
			Err(err).
			Log()
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User logged out successfully").
		Uint("user_id", userID).
		Log()

	return nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*dto.UserResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "GetByID")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	user, err := s.repoUser.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return toUserResponse(user), nil
}

// UpdateAccount changes full name and/or email.
func (s *UserService) UpdateAccount(ctx context.Context, id uint, req *dto.UpdateAccountRequest) (*dto.UserResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "UpdateAccount")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	fields := map[string]interface{}{}
	if req.FullName != "" {
		fields["full_name"] = strings.TrimSpace(req.FullName)
	}
	if req.Email != "" {
		fields["email"] = strings.ToLower(strings.TrimSpace(req.Email))
	}

	if len(fields) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "nothing to update")
	}

	user, err := s.repoUser.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	// A changed email must not collide with another account.
	if newEmail, ok := fields["email"].(string); ok && newEmail != user.Email {
		taken, err := s.repoUser.ExistsByUsernameOrEmail(ctx, "", newEmail)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		if taken {
			logger.WarnWithContext(ctx, "Email already in use").
				Uint("user_id", id).
				Log()
			return nil, apperrors.WithMessage(apperrors.ErrUserExists, "email is already in use")
		}
	}

	if err := s.repoUser.UpdateAccount(ctx, id, fields); err != nil {
		logger.ErrorWithContext(ctx, "Failed to update user account").
			Uint("user_id", id).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.invalidateChannel(ctx, user.Username)

	updated, err := s.repoUser.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User account updated successfully").
		Uint("user_id", id).
		Log()

	return toUserResponse(updated), nil
}

// UpdatePassword verifies the current password before storing a new
// hash. The session stays open; only the credential changes.
func (s *UserService) UpdatePassword(ctx context.Context, id uint, req *dto.UpdatePasswordRequest) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "UpdatePassword")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	if req.NewPassword != req.ConfirmPassword {
		logger.WarnWithContext(ctx, "New password confirmation mismatch").
			Uint("user_id", id).
			Log()
		return apperrors.ErrPasswordMismatch
	}

	user, err := s.repoUser.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !s.checkPassword(user.Password, req.CurrentPassword) {
		logger.WarnWithContext(ctx, "Current password verification failed").
			Uint("user_id", id).
			Log()
		return apperrors.ErrIncorrectPassword
	}

	hashedPassword, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.repoUser.UpdatePassword(ctx, id, hashedPassword); err != nil {
		logger.ErrorWithContext(ctx, "Failed to update password in database").
			Uint("user_id", id).
			Err(err).
			Log()
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User password updated successfully").
		Uint("user_id", id).
		Log()

	return nil
}

// UpdateAvatar swaps the avatar image; the previous object is removed
// best-effort once the new one is live.
func (s *UserService) UpdateAvatar(ctx context.Context, id uint, localPath string) (*dto.UserResponse, error) {
	return s.updateImage(ctx, id, localPath, storage.KindAvatar)
}

// UpdateCover swaps the cover image.
func (s *UserService) UpdateCover(ctx context.Context, id uint, localPath string) (*dto.UserResponse, error) {
	return s.updateImage(ctx, id, localPath, storage.KindCover)
}

func (s *UserService) updateImage(ctx context.Context, id uint, localPath string, kind storage.MediaKind) (*dto.UserResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "updateImage")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	user, err := s.repoUser.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	uploaded, err := s.media.Upload(ctx, localPath, kind)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrMediaUpload, err)
	}

	var oldID string
	fields := map[string]interface{}{}
	if kind == storage.KindAvatar {
		oldID = user.AvatarID
		fields["avatar_url"] = uploaded.URL
		fields["avatar_id"] = uploaded.PublicID
	} else {
		oldID = user.CoverID
		fields["cover_url"] = uploaded.URL
		fields["cover_id"] = uploaded.PublicID
	}

	if err := s.repoUser.UpdateMedia(ctx, id, fields); err != nil {
		_ = s.media.Delete(ctx, uploaded.PublicID)
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if oldID != "" {
		if err := s.media.Delete(ctx, oldID); err != nil {
			logger.WarnWithContext(ctx, "Failed to remove replaced image").
				Uint("user_id", id).
				String("public_id", oldID).
				Err(err).
				Log()
		}
	}

	s.invalidateChannel(ctx, user.Username)

	updated, err := s.repoUser.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User image updated successfully").
		Uint("user_id", id).
		String("kind", string(kind)).
		Log()

	return toUserResponse(updated), nil
}

// ChannelProfile returns the public channel view for a username,
// served from cache when possible.
func (s *UserService) ChannelProfile(ctx context.Context, username string) (*dto.ChannelProfileResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "ChannelProfile")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	username = strings.ToLower(strings.TrimSpace(username))

	if s.cache != nil {
		if profile, hit := s.cache.GetChannel(ctx, username); hit {
			return profile, nil
		}
	}

	user, err := s.repoUser.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	videoCount, totalViews, err := s.repoUser.ChannelStats(ctx, user.ID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	profile := &dto.ChannelProfileResponse{
		ID:         user.ID,
		Username:   user.Username,
		FullName:   user.FullName,
		AvatarURL:  user.AvatarURL,
		CoverURL:   user.CoverURL,
		VideoCount: videoCount,
		TotalViews: totalViews,
		JoinedAt:   user.CreatedAt,
	}

	if s.cache != nil {
		s.cache.SetChannel(ctx, username, profile)
	}

	return profile, nil
}

// WatchHistory lists the caller's playback records, newest first.
func (s *UserService) WatchHistory(ctx context.Context, userID uint, limit, offset int) ([]dto.WatchHistoryEntryResponse, int64, int, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "WatchHistory")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	entries, total, err := s.repoUser.WatchHistory(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	res := make([]dto.WatchHistoryEntryResponse, 0, len(entries))
	for i := range entries {
		res = append(res, dto.WatchHistoryEntryResponse{
			Video:     *toVideoResponse(&entries[i].Video),
			WatchedAt: entries[i].WatchedAt,
		})
	}

	pageTotal := 0
	if limit > 0 {
		pageTotal = int(math.Ceil(float64(total) / float64(limit)))
	}

	return res, total, pageTotal, nil
}

// DeleteAccount permanently removes the caller's account and their
// profile media.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "DeleteAccount")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	user, err := s.repoUser.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	// Collect the video object IDs before the rows disappear.
	mediaIDs, err := s.repoVideo.MediaIDsByOwner(ctx, userID)
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to list video media before account deletion").
			Uint("user_id", userID).
			Err(err).
			Log()
	}
	mediaIDs = append(mediaIDs, user.AvatarID, user.CoverID)

	if err := s.repoUser.Delete(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		logger.ErrorWithContext(ctx, "Failed to delete user").
			Uint("user_id", userID).
			Err(err).
			Log()
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	// The rows are gone; object cleanup is best-effort.
	if err := s.media.Delete(ctx, mediaIDs...); err != nil {
		logger.WarnWithContext(ctx, "Failed to remove media after account deletion").
			Uint("user_id", userID).
			Err(err).
			Log()
	}

	s.invalidateChannel(ctx, user.Username)

	logger.InfoWithContext(ctx, "User account deleted").
		Uint("user_id", userID).
		Log()

	return nil
}

func (s *UserService) invalidateChannel(ctx context.Context, username string) {
	if s.cache != nil {
		s.cache.InvalidateChannel(ctx, username)
	}
}
