package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/boardsync/internal/models"
	"github.com/charlesng35/boardsync/internal/permissions"
	apperrors "github.com/charlesng35/boardsync/pkg/errors"
)

const defaultColumnCount = 10

// BoardService manages the board lifecycle and its grants. Layout changes go through LayoutService.
type BoardService struct {
	db     *gorm.DB
	access *BoardAccessService
	audit  *AuditService
}

// BoardView is a board together with what the caller may do with it.
type BoardView struct {
	Board  *models.Board
	Access permissions.BoardAccess
}

// CreateBoardInput describes a new board.
type CreateBoardInput struct {
	Name     string
	IsPublic bool
	Settings BoardSettings
}

// BoardSettings are the style fields a change-tier principal may edit.
type BoardSettings struct {
	PageTitle    string
	MetaTitle    string
	LogoImageURL string
	PrimaryColor string
	ColumnCount  int
}

// BoardGrant pairs a user or group id with a tier.
type BoardGrant struct {
	PrincipalID string                 `json:"principal_id"`
	Permission  models.BoardPermission `json:"permission"`
}

// BoardGrants is the full grant set of a board.
type BoardGrants struct {
	Users  []BoardGrant `json:"users"`
	Groups []BoardGrant `json:"groups"`
}

// NewBoardService constructs a BoardService.
func NewBoardService(db *gorm.DB) (*BoardService, error) {
	if db == nil {
		return nil, errors.New("board service: db is required")
	}
	access, err := NewBoardAccessService(db)
	if err != nil {
		return nil, err
	}
	audit, err := NewAuditService(db)
	if err != nil {
		return nil, err
	}
	return &BoardService{db: db, access: access, audit: audit}, nil
}

// Create stores a new board owned by the principal. Requires board.create.
func (s *BoardService) Create(ctx context.Context, principal permissions.Principal, input CreateBoardInput) (*models.Board, error) {
	ctx = ensureContext(ctx)

	if principal.IsAnonymous() {
		return nil, apperrors.ErrUnauthorized
	}
	if !principal.Has(permissions.BoardCreate) {
		return nil, apperrors.ErrForbidden
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("board name is required")
	}

	owner := principal.UserID
	board := &models.Board{
		Name:      name,
		IsPublic:  input.IsPublic,
		CreatorID: &owner,
	}
	applySettings(board, input.Settings)

	if err := s.db.WithContext(ctx).Create(board).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrBoardNameTaken
		}
		return nil, fmt.Errorf("board service: create board: %w", err)
	}
	recordAudit(s.audit, ctx, AuditEntry{
		BoardID:  board.ID,
		Action:   AuditBoardCreate,
		Result:   AuditSuccess,
		Metadata: map[string]any{"name": board.Name, "is_public": board.IsPublic},
	})
	return board, nil
}

// Get returns a board the principal may view.
func (s *BoardService) Get(ctx context.Context, principal permissions.Principal, selector BoardSelector) (*BoardView, error) {
	board, access, err := s.access.Resolve(ensureContext(ctx), principal, selector)
	if err != nil {
		return nil, err
	}
	if !access.HasViewAccess {
		return nil, ErrBoardNotFound
	}
	return &BoardView{Board: board, Access: access}, nil
}

// UpdateSettings replaces the style settings. Requires change access.
func (s *BoardService) UpdateSettings(ctx context.Context, principal permissions.Principal, boardID string, settings BoardSettings) (*models.Board, error) {
	ctx = ensureContext(ctx)

	board, err := s.access.RequireAccess(ctx, principal, BoardByID(boardID), ActionModify)
	if err != nil {
		return nil, err
	}

	applySettings(board, settings)
	err = s.db.WithContext(ctx).Model(board).Select(
		"page_title", "meta_title", "logo_image_url", "primary_color", "column_count",
	).Updates(board).Error
	recordAudit(s.audit, ctx, AuditEntry{BoardID: board.ID, Action: AuditBoardSettings, Result: auditResult(err)})
	if err != nil {
		return nil, fmt.Errorf("board service: update settings: %w", err)
	}
	return board, nil
}

// SetVisibility makes a board public or private. Requires full access.
func (s *BoardService) SetVisibility(ctx context.Context, principal permissions.Principal, boardID string, isPublic bool) error {
	ctx = ensureContext(ctx)

	board, err := s.access.RequireAccess(ctx, principal, BoardByID(boardID), ActionFull)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Model(board).Update("is_public", isPublic).Error
	recordAudit(s.audit, ctx, AuditEntry{
		BoardID:  board.ID,
		Action:   AuditBoardVisibility,
		Result:   auditResult(err),
		Metadata: map[string]any{"is_public": isPublic},
	})
	if err != nil {
		return fmt.Errorf("board service: update visibility: %w", err)
	}
	return nil
}

// Rename changes a board's unique name. Requires full access.
func (s *BoardService) Rename(ctx context.Context, principal permissions.Principal, boardID, name string) error {
	ctx = ensureContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.NewBadRequest("board name is required")
	}

	board, err := s.access.RequireAccess(ctx, principal, BoardByID(boardID), ActionFull)
	if err != nil {
		return err
	}
	previous := board.Name
	err = s.db.WithContext(ctx).Model(board).Update("name", name).Error
	recordAudit(s.audit, ctx, AuditEntry{
		BoardID:  board.ID,
		Action:   AuditBoardRename,
		Result:   auditResult(err),
		Metadata: map[string]any{"from": previous, "to": name},
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrBoardNameTaken
		}
		return fmt.Errorf("board service: rename board: %w", err)
	}
	return nil
}

// Delete removes a board with its layout and grants. Requires full access.
func (s *BoardService) Delete(ctx context.Context, principal permissions.Principal, boardID string) error {
	ctx = ensureContext(ctx)

	board, err := s.access.RequireAccess(ctx, principal, BoardByID(boardID), ActionFull)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Delete(&models.Board{}, "id = ?", board.ID).Error
	recordAudit(s.audit, ctx, AuditEntry{
		BoardID:  board.ID,
		Action:   AuditBoardDelete,
		Result:   auditResult(err),
		Metadata: map[string]any{"name": board.Name},
	})
	if err != nil {
		return fmt.Errorf("board service: delete board: %w", err)
	}
	return nil
}

// ListGrants returns the user and group grants of a board. Requires full access.
func (s *BoardService) ListGrants(ctx context.Context, principal permissions.Principal, boardID string) (*BoardGrants, error) {
	ctx = ensureContext(ctx)

	board, err := s.access.RequireAccess(ctx, principal, BoardByID(boardID), ActionFull)
	if err != nil {
		return nil, err
	}

	var users []models.BoardUserPermission
	if err := s.db.WithContext(ctx).Where("board_id = ?", board.ID).Order("user_id, permission").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("board service: load user grants: %w", err)
	}
	var groups []models.BoardGroupPermission
	if err := s.db.WithContext(ctx).Where("board_id = ?", board.ID).Order("group_id, permission").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("board service: load group grants: %w", err)
	}

	grants := &BoardGrants{Users: []BoardGrant{}, Groups: []BoardGrant{}}
	for _, grant := range users {
		grants.Users = append(grants.Users, BoardGrant{PrincipalID: grant.UserID, Permission: grant.Permission})
	}
	for _, grant := range groups {
		grants.Groups = append(grants.Groups, BoardGrant{PrincipalID: grant.GroupID, Permission: grant.Permission})
	}
	return grants, nil
}

// ReplaceGrants swaps the board's grants for the given set in one transaction. Requires full access.
func (s *BoardService) ReplaceGrants(ctx context.Context, principal permissions.Principal, boardID string, grants BoardGrants) error {
	ctx = ensureContext(ctx)

	users, err := normaliseGrants(grants.Users)
	if err != nil {
		return err
	}
	groups, err := normaliseGrants(grants.Groups)
	if err != nil {
		return err
	}

	board, err := s.access.RequireAccess(ctx, principal, BoardByID(boardID), ActionFull)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("board_id = ?", board.ID).Delete(&models.BoardUserPermission{}).Error; err != nil {
			return fmt.Errorf("board service: clear user grants: %w", err)
		}
		if err := tx.Where("board_id = ?", board.ID).Delete(&models.BoardGroupPermission{}).Error; err != nil {
			return fmt.Errorf("board service: clear group grants: %w", err)
		}

		if len(users) > 0 {
			rows := make([]models.BoardUserPermission, 0, len(users))
			for _, grant := range users {
				rows = append(rows, models.BoardUserPermission{BoardID: board.ID, UserID: grant.PrincipalID, Permission: grant.Permission})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("board service: create user grants: %w", err)
			}
		}
		if len(groups) > 0 {
			rows := make([]models.BoardGroupPermission, 0, len(groups))
			for _, grant := range groups {
				rows = append(rows, models.BoardGroupPermission{BoardID: board.ID, GroupID: grant.PrincipalID, Permission: grant.Permission})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("board service: create group grants: %w", err)
			}
		}
		return nil
	})
	recordAudit(s.audit, ctx, AuditEntry{
		BoardID:  board.ID,
		Action:   AuditGrantsReplace,
		Result:   auditResult(err),
		Metadata: map[string]any{"users": users, "groups": groups},
	})
	return err
}

func normaliseGrants(grants []BoardGrant) ([]BoardGrant, error) {
	seen := make(map[BoardGrant]struct{}, len(grants))
	out := make([]BoardGrant, 0, len(grants))
	for _, grant := range grants {
		grant.PrincipalID = strings.TrimSpace(grant.PrincipalID)
		if grant.PrincipalID == "" {
			return nil, apperrors.NewBadRequest("grant principal id is required")
		}
		if !isUUID(grant.PrincipalID) {
			return nil, apperrors.NewBadRequest(fmt.Sprintf("grant principal id %q is not a uuid", grant.PrincipalID))
		}
		if !grant.Permission.Valid() {
			return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown board permission %q", grant.Permission))
		}
		if _, dup := seen[grant]; dup {
			continue
		}
		seen[grant] = struct{}{}
		out = append(out, grant)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PrincipalID != out[j].PrincipalID {
			return out[i].PrincipalID < out[j].PrincipalID
		}
		return out[i].Permission < out[j].Permission
	})
	return out, nil
}

func applySettings(board *models.Board, settings BoardSettings) {
	board.PageTitle = strings.TrimSpace(settings.PageTitle)
	board.MetaTitle = strings.TrimSpace(settings.MetaTitle)
	board.LogoImageURL = strings.TrimSpace(settings.LogoImageURL)
	board.PrimaryColor = strings.TrimSpace(settings.PrimaryColor)
	board.ColumnCount = settings.ColumnCount
	if board.ColumnCount <= 0 {
		board.ColumnCount = defaultColumnCount
	}
}
