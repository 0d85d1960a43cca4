package services

import (
	"context"

	"github.com/charlesng35/boardsync/internal/permissions"
)

// PermissionChecker abstracts global permission lookups for services.
type PermissionChecker interface {
	Permissions(ctx context.Context, userID string) (permissions.Set, error)
}
