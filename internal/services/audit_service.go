package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/charlesng35/boardsync/internal/auditctx"
	"github.com/charlesng35/boardsync/internal/models"
	"github.com/charlesng35/boardsync/internal/permissions"
	"github.com/charlesng35/boardsync/pkg/logger"
)

// Audited board actions.
const (
	AuditLayoutApply     = "layout.apply"
	AuditBoardCreate     = "board.create"
	AuditBoardSettings   = "board.settings"
	AuditBoardVisibility = "board.visibility"
	AuditBoardRename     = "board.rename"
	AuditBoardDelete     = "board.delete"
	AuditGrantsReplace   = "board.grants"
)

// Audit results.
const (
	AuditSuccess = "success"
	AuditFailure = "failure"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

// AuditEntry is one board change to persist.
type AuditEntry struct {
	BoardID  string
	Action   string
	Result   string
	Metadata map[string]any
}

// AuditService persists and lists the board audit trail.
type AuditService struct {
	db     *gorm.DB
	access *BoardAccessService
}

// NewAuditService constructs an AuditService using the provided database handle.
func NewAuditService(db *gorm.DB) (*AuditService, error) {
	if db == nil {
		return nil, errors.New("audit service: db is required")
	}
	access, err := NewBoardAccessService(db)
	if err != nil {
		return nil, err
	}
	return &AuditService{db: db, access: access}, nil
}

// Log stores an entry attributed to the actor carried by ctx.
func (s *AuditService) Log(ctx context.Context, entry AuditEntry) error {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(entry.BoardID) == "" {
		return errors.New("audit service: board id is required")
	}
	if strings.TrimSpace(entry.Action) == "" {
		return errors.New("audit service: action is required")
	}
	if strings.TrimSpace(entry.Result) == "" {
		return errors.New("audit service: result is required")
	}

	payload := datatypes.JSON("{}")
	if entry.Metadata != nil {
		encoded, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("audit service: marshal metadata: %w", err)
		}
		payload = datatypes.JSON(encoded)
	}

	record := models.AuditLog{
		BoardID:  entry.BoardID,
		Action:   entry.Action,
		Result:   entry.Result,
		Metadata: payload,
	}
	if actor, ok := auditctx.FromContext(ctx); ok {
		if id := strings.TrimSpace(actor.UserID); id != "" {
			record.UserID = &id
		}
		record.Username = actor.Username
		record.Source = actor.Source
		record.IPAddress = actor.IPAddress
		record.UserAgent = actor.UserAgent
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("audit service: create entry: %w", err)
	}
	return nil
}

// ListBoard returns the newest entries of a board first. Requires full access.
func (s *AuditService) ListBoard(ctx context.Context, principal permissions.Principal, boardID string, limit int) ([]models.AuditLog, error) {
	ctx = ensureContext(ctx)

	board, err := s.access.RequireAccess(ctx, principal, BoardByID(boardID), ActionFull)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	entries := []models.AuditLog{}
	if err := s.db.WithContext(ctx).
		Where("board_id = ?", board.ID).
		Order("created_at DESC, id").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("audit service: list entries: %w", err)
	}
	return entries, nil
}

// recordAudit logs the entry while tolerating audit failures.
func recordAudit(audit *AuditService, ctx context.Context, entry AuditEntry) {
	if audit == nil {
		return
	}
	if err := audit.Log(ctx, entry); err != nil {
		logger.WithModule("audit").Warn("failed to record audit entry",
			zap.String("board_id", entry.BoardID),
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
}

func auditResult(err error) string {
	if err != nil {
		return AuditFailure
	}
	return AuditSuccess
}
