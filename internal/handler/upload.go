package handler

import (
	"fmt"
	"mime/multipart"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcfg "github.com/streamhive/streamhive/config"
	apperrors "github.com/streamhive/streamhive/internal/errors"
)

// UploadStager writes multipart files to local disk before the media
// store streams them upstream. The media store removes the staged copy.
type UploadStager struct {
	cfg appcfg.UploadConfig
}

func NewUploadStager(cfg appcfg.UploadConfig) *UploadStager {
	return &UploadStager{cfg: cfg}
}

// Stage saves the named form file into the staging directory and
// returns its local path. Returns ErrMissingFile when required and the
// field is absent, and empty path without error when optional.
func (u *UploadStager) Stage(c *gin.Context, field string, required bool) (string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		if required {
			return "", apperrors.WithMessage(apperrors.ErrMissingFile, fmt.Sprintf("%s file is required", field))
		}
		return "", nil
	}

	if err := u.validate(file, field); err != nil {
		return "", err
	}

	ext := filepath.Ext(file.Filename)
	localPath := filepath.Join(u.cfg.TmpDir, uuid.NewString()+ext)

	if err := c.SaveUploadedFile(file, localPath); err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return localPath, nil
}

func (u *UploadStager) validate(file *multipart.FileHeader, field string) error {
	if file.Size == 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("%s file is empty", field))
	}
	if u.cfg.MaxSize > 0 && file.Size > u.cfg.MaxSize {
		return apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("%s file exceeds the %d byte limit", field, u.cfg.MaxSize))
	}
	return nil
}
