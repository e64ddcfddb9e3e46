package service

import (
	"context"
	"errors"
	"testing"

	"github.com/streamhive/streamhive/internal/constants"
	apperrors "github.com/streamhive/streamhive/internal/errors"
	"github.com/streamhive/streamhive/internal/model"
	"gorm.io/gorm"
)

type fakePlaylistStore struct {
	playlists map[uint]*model.Playlist
	members   map[uint][]uint
	nextID    uint
}

func newFakePlaylistStore() *fakePlaylistStore {
	return &fakePlaylistStore{
		playlists: map[uint]*model.Playlist{},
		members:   map[uint][]uint{},
		nextID:    1,
	}
}

func (f *fakePlaylistStore) Create(_ context.Context, playlist *model.Playlist) error {
	playlist.ID = f.nextID
	f.nextID++
	copied := *playlist
	f.playlists[playlist.ID] = &copied
	return nil
}

func (f *fakePlaylistStore) GetByID(_ context.Context, id uint) (*model.Playlist, error) {
	playlist, ok := f.playlists[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *playlist
	copied.Videos = nil
	for _, videoID := range f.members[id] {
		copied.Videos = append(copied.Videos, model.Video{Model: gorm.Model{ID: videoID}})
	}
	return &copied, nil
}

func (f *fakePlaylistStore) ListByOwner(_ context.Context, ownerID uint, _ constants.PaginationParams) ([]model.Playlist, int64, error) {
	var out []model.Playlist
	for _, playlist := range f.playlists {
		if playlist.OwnerID == ownerID {
			out = append(out, *playlist)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakePlaylistStore) Update(_ context.Context, id uint, fields map[string]interface{}) error {
	playlist, ok := f.playlists[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["name"]; ok {
		playlist.Name = v.(string)
	}
	if v, ok := fields["description"]; ok {
		playlist.Description = v.(string)
	}
	return nil
}

func (f *fakePlaylistStore) AddVideo(_ context.Context, playlistID, videoID uint) error {
	for _, existing := range f.members[playlistID] {
		if existing == videoID {
			return nil
		}
	}
	f.members[playlistID] = append(f.members[playlistID], videoID)
	return nil
}

func (f *fakePlaylistStore) RemoveVideo(_ context.Context, playlistID, videoID uint) error {
	for i, existing := range f.members[playlistID] {
		if existing == videoID {
			f.members[playlistID] = append(f.members[playlistID][:i], f.members[playlistID][i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakePlaylistStore) Delete(_ context.Context, id uint) error {
	if _, ok := f.playlists[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.playlists, id)
	delete(f.members, id)
	return nil
}

func newTestPlaylistService() (*PlaylistService, *fakePlaylistStore, *fakeVideoStore) {
	playlistStore := newFakePlaylistStore()
	videoStore := newFakeVideoStore()
	svc := NewPlaylistService(playlistStore, videoStore, newFakeUserStore())
	return svc, playlistStore, videoStore
}

func seedPlaylist(store *fakePlaylistStore, ownerID uint) *model.Playlist {
	playlist := &model.Playlist{
		Name:    "Favorites",
		OwnerID: ownerID,
	}
	_ = store.Create(context.Background(), playlist)
	return store.playlists[playlist.ID]
}

func TestPlaylistService_AddVideo(t *testing.T) {
	svc, playlistStore, videoStore := newTestPlaylistService()
	playlist := seedPlaylist(playlistStore, 1)
	video := seedVideo(videoStore, 2, true)

	res, err := svc.AddVideo(context.Background(), playlist.ID, video.ID, 1)
	if err != nil {
		t.Fatalf("AddVideo() error = %v", err)
	}
	if res.VideoCount != 1 {
		t.Errorf("video count = %d, want 1", res.VideoCount)
	}

	// Re-adding is a no-op, not an error.
	res, err = svc.AddVideo(context.Background(), playlist.ID, video.ID, 1)
	if err != nil {
		t.Fatalf("second AddVideo() error = %v", err)
	}
	if res.VideoCount != 1 {
		t.Errorf("video count after re-add = %d, want 1", res.VideoCount)
	}
}

func TestPlaylistService_AddVideo_Gates(t *testing.T) {
	svc, playlistStore, videoStore := newTestPlaylistService()
	playlist := seedPlaylist(playlistStore, 1)
	published := seedVideo(videoStore, 2, true)
	hidden := seedVideo(videoStore, 2, false)

	tests := []struct {
		name       string
		playlistID uint
		videoID    uint
		callerID   uint
		want       *apperrors.DomainError
	}{
		{"not the playlist owner", playlist.ID, published.ID, 9, apperrors.ErrNotOwner},
		{"playlist missing", 999, published.ID, 1, apperrors.ErrPlaylistNotFound},
		{"video missing", playlist.ID, 999, 1, apperrors.ErrVideoNotFound},
		{"video hidden from caller", playlist.ID, hidden.ID, 1, apperrors.ErrVideoNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddVideo(context.Background(), tt.playlistID, tt.videoID, tt.callerID)
			if !errors.Is(err, tt.want) {
				t.Errorf("AddVideo() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPlaylistService_RemoveVideo(t *testing.T) {
	svc, playlistStore, videoStore := newTestPlaylistService()
	playlist := seedPlaylist(playlistStore, 1)
	video := seedVideo(videoStore, 2, true)

	if _, err := svc.AddVideo(context.Background(), playlist.ID, video.ID, 1); err != nil {
		t.Fatalf("AddVideo() error = %v", err)
	}

	res, err := svc.RemoveVideo(context.Background(), playlist.ID, video.ID, 1)
	if err != nil {
		t.Fatalf("RemoveVideo() error = %v", err)
	}
	if res.VideoCount != 0 {
		t.Errorf("video count = %d, want 0", res.VideoCount)
	}

	// Removing a non-member reports not found.
	if _, err := svc.RemoveVideo(context.Background(), playlist.ID, video.ID, 1); err == nil {
		t.Error("RemoveVideo() of non-member expected error")
	}
}

func TestPlaylistService_Delete_KeepsVideos(t *testing.T) {
	svc, playlistStore, videoStore := newTestPlaylistService()
	playlist := seedPlaylist(playlistStore, 1)
	video := seedVideo(videoStore, 2, true)

	if _, err := svc.AddVideo(context.Background(), playlist.ID, video.ID, 1); err != nil {
		t.Fatalf("AddVideo() error = %v", err)
	}

	if err := svc.Delete(context.Background(), playlist.ID, 1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := playlistStore.playlists[playlist.ID]; ok {
		t.Error("playlist still present after deletion")
	}
	if _, ok := videoStore.videos[video.ID]; !ok {
		t.Error("video removed along with playlist")
	}
}
