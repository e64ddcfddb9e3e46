package service

import (
	"context"
	"errors"

	apperrors "github.com/streamhive/streamhive/internal/errors"
	"github.com/streamhive/streamhive/pkg/logger"
	"gorm.io/gorm"
)

// Owned is implemented by every resource whose mutations are gated on
// ownership.
type Owned interface {
	OwnedBy() uint
}

// loadOwned fetches a resource and authorizes the caller against its
// owner. Absence maps to notFound, a foreign owner to an authorization
// error, so callers get a 404 for resources that do not exist and a
// 403 for ones they merely do not own.
func loadOwned[T Owned](ctx context.Context, load func(context.Context, uint) (T, error), id, callerID uint, notFound *apperrors.DomainError) (T, error) {
	var zero T

	resource, err := load(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, notFound
		}
		return zero, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if resource.OwnedBy() != callerID {
		logger.WarnWithContext(ctx, "Ownership check failed").
			Module("service").
			Function("loadOwned").
			Uint("resource_id", id).
			Uint("owner_id", resource.OwnedBy()).
			Uint("caller_id", callerID).
			Log()
		return zero, apperrors.ErrNotOwner
	}

	return resource, nil
}
