package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/boardsync/internal/models"
	"github.com/charlesng35/boardsync/internal/permissions"
	apperrors "github.com/charlesng35/boardsync/pkg/errors"
)

// PrincipalService turns an authenticated user id into the principal used for access checks.
type PrincipalService struct {
	db      *gorm.DB
	checker PermissionChecker
}

// NewPrincipalService constructs a PrincipalService. A nil checker uses the group-based checker.
func NewPrincipalService(db *gorm.DB, checker PermissionChecker) (*PrincipalService, error) {
	if db == nil {
		return nil, errors.New("principal service: db is required")
	}
	if checker == nil {
		c, err := permissions.NewChecker(db)
		if err != nil {
			return nil, err
		}
		checker = c
	}
	return &PrincipalService{db: db, checker: checker}, nil
}

// Resolve loads the user's groups and global permissions. An empty id yields the anonymous
// principal; unknown or inactive users are unauthorized.
func (s *PrincipalService) Resolve(ctx context.Context, userID string) (permissions.Principal, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return permissions.Anonymous(), nil
	}
	if !isUUID(userID) {
		return permissions.Principal{}, apperrors.ErrUnauthorized
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return permissions.Principal{}, apperrors.ErrUnauthorized
		}
		return permissions.Principal{}, fmt.Errorf("principal service: load user: %w", err)
	}
	if !user.IsActive {
		return permissions.Principal{}, apperrors.ErrUnauthorized
	}

	var groupIDs []string
	if err := s.db.WithContext(ctx).
		Table("user_groups").
		Where("user_id = ?", user.ID).
		Order("group_id").
		Pluck("group_id", &groupIDs).Error; err != nil {
		return permissions.Principal{}, fmt.Errorf("principal service: load groups: %w", err)
	}

	perms, err := s.checker.Permissions(ctx, user.ID)
	if err != nil {
		return permissions.Principal{}, err
	}

	return permissions.Principal{
		UserID:      user.ID,
		Username:    user.Username,
		GroupIDs:    groupIDs,
		Permissions: perms,
	}, nil
}
