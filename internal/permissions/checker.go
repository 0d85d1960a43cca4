package permissions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/boardsync/internal/models"
	"github.com/charlesng35/boardsync/pkg/logger"
)

// Checker evaluates global permissions a user holds through group membership.
type Checker struct {
	db *gorm.DB
}

// NewChecker constructs a permission checker backed by the provided database.
func NewChecker(db *gorm.DB) (*Checker, error) {
	if db == nil {
		return nil, errors.New("permission checker: db is required")
	}
	return &Checker{db: db}, nil
}

// Check determines whether the user has the specified permission, considering dependencies.
func (c *Checker) Check(ctx context.Context, userID, permissionID string) (bool, error) {
	permissionID = strings.TrimSpace(permissionID)
	if permissionID == "" {
		return false, errors.New("permission checker: permission id is required")
	}
	if _, ok := Get(permissionID); !ok {
		return false, fmt.Errorf("%w %q", ErrUnknownPermission, permissionID)
	}

	userPerms, err := c.Permissions(ctx, userID)
	if err != nil {
		return false, err
	}

	dependencies, err := ResolveDependencies(permissionID)
	if err != nil {
		return false, err
	}

	for _, dep := range dependencies {
		if !userPerms.Has(dep) {
			return false, nil
		}
	}

	return userPerms.Has(permissionID), nil
}

// Permissions returns the expanded set of permission ids granted to the user's groups.
func (c *Checker) Permissions(ctx context.Context, userID string) (Set, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Set{}, nil
	}

	var granted []string
	if err := c.db.WithContext(ctx).
		Model(&models.GroupPermission{}).
		Joins("JOIN user_groups ON user_groups.group_id = group_permissions.group_id").
		Where("user_groups.user_id = ?", userID).
		Distinct().
		Pluck("group_permissions.permission_id", &granted).Error; err != nil {
		return nil, fmt.Errorf("permission checker: load group permissions: %w", err)
	}

	known := granted[:0]
	for _, id := range granted {
		if _, ok := Get(id); !ok {
			logger.WithModule("permissions").Warn("ignoring unknown stored permission",
				zap.String("user_id", userID),
				zap.String("permission_id", id),
			)
			continue
		}
		known = append(known, id)
	}

	return expandImplied(known)
}

// GetUserPermissions returns the distinct permission IDs granted to the user, sorted.
func (c *Checker) GetUserPermissions(ctx context.Context, userID string) ([]string, error) {
	perms, err := c.Permissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return perms.Sorted(), nil
}

// Set is an expanded collection of permission ids.
type Set map[string]struct{}

// NewSet builds a set from permission ids without expanding implications.
func NewSet(ids ...string) Set {
	set := make(Set, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports whether the permission is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted lists the permission ids alphabetically.
func (s Set) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Expand resolves implied permissions for a list of granted ids.
func Expand(ids ...string) (Set, error) {
	return expandImplied(ids)
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
