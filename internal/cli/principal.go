package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/boardsync/internal/models"
	"github.com/charlesng35/boardsync/internal/permissions"
	"github.com/charlesng35/boardsync/internal/services"
)

// principal resolves the --user flag. An empty flag acts anonymously.
func (rt *runtime) principal(ctx context.Context, db *gorm.DB) (permissions.Principal, error) {
	username := strings.TrimSpace(rt.opts.user)
	if username == "" {
		return permissions.Anonymous(), nil
	}

	user, err := findUser(ctx, db, username)
	if err != nil {
		return permissions.Principal{}, err
	}

	svc, err := services.NewPrincipalService(db, nil)
	if err != nil {
		return permissions.Principal{}, err
	}
	return svc.Resolve(ctx, user.ID)
}

func findUser(ctx context.Context, db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %q not found", username)
	}
	if err != nil {
		return nil, fmt.Errorf("load user %q: %w", username, err)
	}
	return &user, nil
}
