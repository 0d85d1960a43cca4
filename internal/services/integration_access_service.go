package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/boardsync/internal/layout"
	"github.com/charlesng35/boardsync/internal/models"
	"github.com/charlesng35/boardsync/internal/permissions"
	apperrors "github.com/charlesng35/boardsync/pkg/errors"
)

// Integration grant permissions. Every tier includes use.
const (
	IntegrationPermissionUse      = "use"
	IntegrationPermissionInteract = "interact"
	IntegrationPermissionFull     = "full"
)

var integrationUseTiers = []string{IntegrationPermissionUse, IntegrationPermissionInteract, IntegrationPermissionFull}

// IntegrationAccessService decides which integrations a principal may bind to items and
// manages the integrations themselves.
type IntegrationAccessService struct {
	db *gorm.DB
}

// NewIntegrationAccessService constructs an IntegrationAccessService.
func NewIntegrationAccessService(db *gorm.DB) (*IntegrationAccessService, error) {
	if db == nil {
		return nil, errors.New("integration access service: db is required")
	}
	return &IntegrationAccessService{db: db}, nil
}

// Resolve returns the subset of integrationIDs the principal may use. Ids that do not name an
// existing integration, malformed ones included, are never usable.
func (s *IntegrationAccessService) Resolve(ctx context.Context, principal permissions.Principal, integrationIDs []string) (layout.IntegrationAccess, error) {
	ctx = ensureContext(ctx)

	ids := uuidIDs(normaliseIDs(integrationIDs))
	if len(ids) == 0 || principal.IsAnonymous() {
		return layout.NewIntegrationAccess(), nil
	}

	var existing []string
	if err := s.db.WithContext(ctx).
		Model(&models.Integration{}).
		Where("id IN ?", ids).
		Pluck("id", &existing).Error; err != nil {
		return layout.IntegrationAccess{}, fmt.Errorf("integration access: load integrations: %w", err)
	}
	if len(existing) == 0 || principal.Has(permissions.IntegrationUseAll) {
		return layout.NewIntegrationAccess(existing...), nil
	}

	query := s.db.WithContext(ctx).
		Model(&models.IntegrationGrant{}).
		Where("integration_id IN ?", existing).
		Where("permission IN ?", integrationUseTiers)
	if len(principal.GroupIDs) > 0 {
		query = query.Where(
			s.db.Where("principal_type = ? AND principal_id = ?", models.PrincipalTypeUser, principal.UserID).
				Or("principal_type = ? AND principal_id IN ?", models.PrincipalTypeGroup, principal.GroupIDs),
		)
	} else {
		query = query.Where("principal_type = ? AND principal_id = ?", models.PrincipalTypeUser, principal.UserID)
	}

	var allowed []string
	if err := query.Distinct().Pluck("integration_id", &allowed).Error; err != nil {
		return layout.IntegrationAccess{}, fmt.Errorf("integration access: load grants: %w", err)
	}

	return layout.NewIntegrationAccess(allowed...), nil
}

// CreateIntegrationInput describes a new integration.
type CreateIntegrationInput struct {
	Name string
	Kind string
	URL  string
}

// Create registers an integration. Only holders of integration.full_all may do so.
func (s *IntegrationAccessService) Create(ctx context.Context, principal permissions.Principal, input CreateIntegrationInput) (*models.Integration, error) {
	ctx = ensureContext(ctx)

	if !principal.Has(permissions.IntegrationFullAll) {
		return nil, apperrors.ErrForbidden
	}

	name := strings.TrimSpace(input.Name)
	kind := strings.TrimSpace(input.Kind)
	if name == "" || kind == "" {
		return nil, apperrors.NewBadRequest("integration name and kind are required")
	}

	integration := &models.Integration{Name: name, Kind: kind, URL: strings.TrimSpace(input.URL)}
	if err := s.db.WithContext(ctx).Create(integration).Error; err != nil {
		return nil, fmt.Errorf("integration access: create integration: %w", err)
	}
	return integration, nil
}

// Grant gives a user or group a permission on an integration, replacing any earlier tier.
func (s *IntegrationAccessService) Grant(ctx context.Context, principal permissions.Principal, integrationID, principalType, principalID, permission string) error {
	ctx = ensureContext(ctx)

	if !principal.Has(permissions.IntegrationFullAll) {
		return apperrors.ErrForbidden
	}
	switch principalType {
	case models.PrincipalTypeUser, models.PrincipalTypeGroup:
	default:
		return apperrors.NewBadRequest("principal type must be user or group")
	}
	switch permission {
	case IntegrationPermissionUse, IntegrationPermissionInteract, IntegrationPermissionFull:
	default:
		return apperrors.NewBadRequest("permission must be use, interact or full")
	}
	if !isUUID(integrationID) {
		return apperrors.ErrNotFound
	}
	if !isUUID(principalID) {
		return apperrors.NewBadRequest("principal id must be a uuid")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Integration{}).Where("id = ?", integrationID).Count(&count).Error; err != nil {
			return fmt.Errorf("integration access: load integration: %w", err)
		}
		if count == 0 {
			return apperrors.ErrNotFound
		}

		if err := tx.Where("integration_id = ? AND principal_type = ? AND principal_id = ?", integrationID, principalType, principalID).
			Delete(&models.IntegrationGrant{}).Error; err != nil {
			return fmt.Errorf("integration access: clear grant: %w", err)
		}

		grant := &models.IntegrationGrant{
			IntegrationID: integrationID,
			PrincipalType: principalType,
			PrincipalID:   principalID,
			Permission:    permission,
		}
		if err := tx.Create(grant).Error; err != nil {
			return fmt.Errorf("integration access: create grant: %w", err)
		}
		return nil
	})
}
