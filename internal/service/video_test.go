package service

import (
	"context"
	"errors"
	"testing"

	"github.com/streamhive/streamhive/internal/constants"
	"github.com/streamhive/streamhive/internal/dto"
	apperrors "github.com/streamhive/streamhive/internal/errors"
	"github.com/streamhive/streamhive/internal/model"
	"gorm.io/gorm"
)

type fakeVideoStore struct {
	videos map[uint]*model.Video
	nextID uint
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{videos: map[uint]*model.Video{}, nextID: 1}
}

func (f *fakeVideoStore) Create(_ context.Context, video *model.Video) error {
	video.ID = f.nextID
	f.nextID++
	copied := *video
	f.videos[video.ID] = &copied
	return nil
}

func (f *fakeVideoStore) GetByID(_ context.Context, id uint) (*model.Video, error) {
	video, ok := f.videos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *video
	return &copied, nil
}

func (f *fakeVideoStore) List(_ context.Context, params constants.PaginationParams, ownerID uint, viewerID uint) ([]model.Video, int64, error) {
	var out []model.Video
	for _, video := range f.videos {
		if ownerID != 0 && video.OwnerID != ownerID {
			continue
		}
		if !video.IsPublished && video.OwnerID != viewerID {
			continue
		}
		out = append(out, *video)
	}
	return out, int64(len(out)), nil
}

func (f *fakeVideoStore) MediaIDsByOwner(_ context.Context, ownerID uint) ([]string, error) {
	var ids []string
	for _, video := range f.videos {
		if video.OwnerID == ownerID {
			ids = append(ids, video.VideoID, video.ThumbnailID)
		}
	}
	return ids, nil
}

func (f *fakeVideoStore) Update(_ context.Context, id uint, fields map[string]interface{}) error {
	video, ok := f.videos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["title"]; ok {
		video.Title = v.(string)
	}
	if v, ok := fields["description"]; ok {
		video.Description = v.(string)
	}
	if v, ok := fields["is_published"]; ok {
		video.IsPublished = v.(bool)
	}
	if v, ok := fields["thumbnail_url"]; ok {
		video.ThumbnailURL = v.(string)
	}
	if v, ok := fields["thumbnail_id"]; ok {
		video.ThumbnailID = v.(string)
	}
	return nil
}

func (f *fakeVideoStore) IncrementViews(_ context.Context, id uint) error {
	video, ok := f.videos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	video.Views++
	return nil
}

func (f *fakeVideoStore) Delete(_ context.Context, id uint) error {
	if _, ok := f.videos[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.videos, id)
	return nil
}

// watchRecordingUserStore tracks AddWatchEntry calls on top of the
// in-memory user store.
type watchRecordingUserStore struct {
	*fakeUserStore
	entries []uint
}

func (w *watchRecordingUserStore) AddWatchEntry(_ context.Context, _, videoID uint) error {
	w.entries = append(w.entries, videoID)
	return nil
}

func newTestVideoService() (*VideoService, *fakeVideoStore, *watchRecordingUserStore, *fakeMediaStore) {
	videoStore := newFakeVideoStore()
	userStore := &watchRecordingUserStore{fakeUserStore: newFakeUserStore()}
	media := newFakeMediaStore()
	svc := NewVideoService(videoStore, userStore, media, NewCacheService(nil))
	return svc, videoStore, userStore, media
}

func seedVideo(store *fakeVideoStore, ownerID uint, published bool) *model.Video {
	video := &model.Video{
		OwnerID:      ownerID,
		Title:        "Test Video",
		VideoURL:     "https://media.test/videos/v",
		VideoID:      "videos/v",
		ThumbnailURL: "https://media.test/thumbnails/t",
		ThumbnailID:  "thumbnails/t",
		Duration:     42.5,
		IsPublished:  published,
	}
	_ = store.Create(context.Background(), video)
	return store.videos[video.ID]
}

func TestVideoService_Publish(t *testing.T) {
	svc, store, _, media := newTestVideoService()

	res, err := svc.Publish(context.Background(), 1, &dto.PublishVideoRequest{
		Title:    "  My Upload  ",
		Duration: 120,
	}, "/tmp/video.mp4", "/tmp/thumb.jpg", map[string]any{"codec": "h264"})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if res.Title != "My Upload" {
		t.Errorf("title = %q, want trimmed", res.Title)
	}
	if !res.IsPublished {
		t.Error("new upload should be published")
	}
	if len(media.stored) != 2 {
		t.Errorf("stored objects = %d, want 2", len(media.stored))
	}
	if store.videos[res.ID] == nil {
		t.Fatal("video not persisted")
	}
	if res.Metadata["codec"] != "h264" {
		t.Errorf("metadata not round-tripped: %v", res.Metadata)
	}
}

func TestVideoService_Publish_RollsBackVideoOnThumbnailFailure(t *testing.T) {
	svc, store, _, media := newTestVideoService()
	media.failUpload["thumbnails"] = true

	_, err := svc.Publish(context.Background(), 1, &dto.PublishVideoRequest{
		Title:    "Doomed",
		Duration: 10,
	}, "/tmp/video.mp4", "/tmp/thumb.jpg", nil)

	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != apperrors.CodeUpstream {
		t.Fatalf("Publish() error = %v, want upstream error", err)
	}
	if len(media.stored) != 0 {
		t.Errorf("stored objects after rollback = %d, want 0", len(media.stored))
	}
	if len(store.videos) != 0 {
		t.Error("video record created despite failed upload")
	}
}

func TestVideoService_Get_Visibility(t *testing.T) {
	svc, store, _, _ := newTestVideoService()
	hidden := seedVideo(store, 1, false)

	// The owner sees their unpublished video.
	if _, err := svc.Get(context.Background(), hidden.ID, 1); err != nil {
		t.Errorf("owner Get() error = %v", err)
	}

	// Everyone else gets not-found, same as a missing video.
	if _, err := svc.Get(context.Background(), hidden.ID, 2); !errors.Is(err, apperrors.ErrVideoNotFound) {
		t.Errorf("stranger Get() error = %v, want ErrVideoNotFound", err)
	}
	if _, err := svc.Get(context.Background(), hidden.ID, 0); !errors.Is(err, apperrors.ErrVideoNotFound) {
		t.Errorf("anonymous Get() error = %v, want ErrVideoNotFound", err)
	}
	if _, err := svc.Get(context.Background(), 999, 1); !errors.Is(err, apperrors.ErrVideoNotFound) {
		t.Errorf("missing Get() error = %v, want ErrVideoNotFound", err)
	}
}

func TestVideoService_Get_CountsViewsAndHistory(t *testing.T) {
	svc, store, userStore, _ := newTestVideoService()
	video := seedVideo(store, 1, true)

	// A stranger's view bumps the counter and records history.
	res, err := svc.Get(context.Background(), video.ID, 2)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if res.Views != 1 {
		t.Errorf("views = %d, want 1", res.Views)
	}
	if len(userStore.entries) != 1 || userStore.entries[0] != video.ID {
		t.Errorf("watch entries = %v, want one for video %d", userStore.entries, video.ID)
	}

	// The owner previewing and anonymous playback do not count.
	if _, err := svc.Get(context.Background(), video.ID, 1); err != nil {
		t.Fatalf("owner Get() error = %v", err)
	}
	if _, err := svc.Get(context.Background(), video.ID, 0); err != nil {
		t.Fatalf("anonymous Get() error = %v", err)
	}
	if store.videos[video.ID].Views != 1 {
		t.Errorf("views after owner/anonymous = %d, want 1", store.videos[video.ID].Views)
	}
	if len(userStore.entries) != 1 {
		t.Errorf("watch entries after owner/anonymous = %d, want 1", len(userStore.entries))
	}
}

func TestVideoService_Update_OwnershipGate(t *testing.T) {
	svc, store, _, _ := newTestVideoService()
	video := seedVideo(store, 1, true)

	if _, err := svc.Update(context.Background(), video.ID, 2, &dto.UpdateVideoRequest{Title: "Hijacked"}, ""); !errors.Is(err, apperrors.ErrNotOwner) {
		t.Fatalf("stranger Update() error = %v, want ErrNotOwner", err)
	}

	res, err := svc.Update(context.Background(), video.ID, 1, &dto.UpdateVideoRequest{Title: "Renamed"}, "")
	if err != nil {
		t.Fatalf("owner Update() error = %v", err)
	}
	if res.Title != "Renamed" {
		t.Errorf("title = %q, want Renamed", res.Title)
	}
}

func TestVideoService_TogglePublish(t *testing.T) {
	svc, store, _, _ := newTestVideoService()
	video := seedVideo(store, 1, true)

	res, err := svc.TogglePublish(context.Background(), video.ID, 1)
	if err != nil {
		t.Fatalf("TogglePublish() error = %v", err)
	}
	if res.IsPublished {
		t.Error("expected video unpublished after toggle")
	}

	// Unpublished, the video vanishes for everyone else.
	if _, err := svc.Get(context.Background(), video.ID, 2); !errors.Is(err, apperrors.ErrVideoNotFound) {
		t.Errorf("stranger Get() after unpublish error = %v, want ErrVideoNotFound", err)
	}

	if _, err := svc.TogglePublish(context.Background(), video.ID, 2); !errors.Is(err, apperrors.ErrNotOwner) {
		t.Errorf("stranger TogglePublish() error = %v, want ErrNotOwner", err)
	}
}

func TestVideoService_Delete(t *testing.T) {
	svc, store, _, media := newTestVideoService()
	video := seedVideo(store, 1, true)
	media.stored[video.VideoID] = true
	media.stored[video.ThumbnailID] = true

	if err := svc.Delete(context.Background(), video.ID, 2); !errors.Is(err, apperrors.ErrNotOwner) {
		t.Fatalf("stranger Delete() error = %v, want ErrNotOwner", err)
	}

	if err := svc.Delete(context.Background(), video.ID, 1); err != nil {
		t.Fatalf("owner Delete() error = %v", err)
	}
	if _, ok := store.videos[video.ID]; ok {
		t.Error("video row still present after deletion")
	}
	if len(media.stored) != 0 {
		t.Errorf("stored media after deletion = %d, want 0", len(media.stored))
	}
}
