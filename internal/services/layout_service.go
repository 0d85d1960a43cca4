package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/boardsync/internal/layout"
	"github.com/charlesng35/boardsync/internal/models"
	"github.com/charlesng35/boardsync/internal/permissions"
	apperrors "github.com/charlesng35/boardsync/pkg/errors"
	"github.com/charlesng35/boardsync/pkg/logger"
	"github.com/charlesng35/boardsync/pkg/metrics"
)

// ReconcileState is a stage of one reconcile-and-apply call.
type ReconcileState string

const (
	StateIdle           ReconcileState = "idle"
	StateAccessChecking ReconcileState = "access_checking"
	StateDenied         ReconcileState = "denied"
	StateLoading        ReconcileState = "loading"
	StateLoaded         ReconcileState = "loaded"
	StateDiffing        ReconcileState = "diffing"
	StateDiffed         ReconcileState = "diffed"
	StateApplying       ReconcileState = "applying"
	StateApplied        ReconcileState = "applied"
	StateAborted        ReconcileState = "aborted"
)

// LayoutService checks access, loads, reconciles and applies board layouts.
type LayoutService struct {
	db           *gorm.DB
	access       *BoardAccessService
	loader       *LayoutLoader
	integrations *IntegrationAccessService
	applier      LayoutApplier
	audit        *AuditService
}

// NewLayoutService wires the layout pipeline on db. A nil applier uses the transaction strategy.
func NewLayoutService(db *gorm.DB, applier LayoutApplier) (*LayoutService, error) {
	if db == nil {
		return nil, errors.New("layout service: db is required")
	}

	access, err := NewBoardAccessService(db)
	if err != nil {
		return nil, err
	}
	loader, err := NewLayoutLoader(db)
	if err != nil {
		return nil, err
	}
	integrations, err := NewIntegrationAccessService(db)
	if err != nil {
		return nil, err
	}
	if applier == nil {
		if applier, err = NewLayoutApplier(db, StrategyTransaction); err != nil {
			return nil, err
		}
	}
	audit, err := NewAuditService(db)
	if err != nil {
		return nil, err
	}

	return &LayoutService{
		db:           db,
		access:       access,
		loader:       loader,
		integrations: integrations,
		applier:      applier,
		audit:        audit,
	}, nil
}

// Load returns the stored layout of a board the principal may view.
func (s *LayoutService) Load(ctx context.Context, principal permissions.Principal, boardID string) ([]layout.Section, error) {
	ctx = ensureContext(ctx)

	board, err := s.access.RequireAccess(ctx, principal, BoardByID(boardID), ActionView)
	if err != nil {
		return nil, err
	}
	return s.loader.Load(ctx, board.ID, principal.UserID)
}

// Plan computes what ReconcileAndApply would write without writing it.
func (s *LayoutService) Plan(ctx context.Context, principal permissions.Principal, boardID string, desired []layout.Section) (*layout.Plan, error) {
	run := newReconcileRun(boardID, principal)
	plan, _, err := s.prepare(ensureContext(ctx), run, principal, boardID, desired)
	return plan, err
}

// ReconcileAndApply replaces the board's layout with desired. It returns ErrBoardNotFound when
// the board is missing or the principal lacks change access, and any storage error unchanged.
// Concurrent calls on the same board are not coordinated: the last commit wins.
func (s *LayoutService) ReconcileAndApply(ctx context.Context, principal permissions.Principal, boardID string, desired []layout.Section) (*layout.Plan, error) {
	ctx = ensureContext(ctx)
	run := newReconcileRun(boardID, principal)

	plan, board, err := s.prepare(ctx, run, principal, boardID, desired)
	if err != nil {
		return nil, err
	}

	run.enter(StateApplying, zap.Int("steps", len(plan.Steps())))
	started := time.Now()
	err = s.applier.Apply(ctx, board.ID, plan)
	metrics.ApplyDuration.WithLabelValues(s.applier.Strategy()).Observe(time.Since(started).Seconds())
	if err != nil {
		run.enter(StateAborted, zap.Error(err))
		metrics.LayoutReconciliations.WithLabelValues(string(StateAborted)).Inc()
		recordAudit(s.audit, ctx, AuditEntry{
			BoardID: board.ID,
			Action:  AuditLayoutApply,
			Result:  AuditFailure,
			Metadata: map[string]any{
				"strategy": s.applier.Strategy(),
				"error":    err.Error(),
			},
		})
		return nil, err
	}

	run.enter(StateApplied)
	metrics.LayoutReconciliations.WithLabelValues(string(StateApplied)).Inc()
	for key, count := range plan.Summary() {
		entity, operation, _ := strings.Cut(key, ".")
		metrics.LayoutOperations.WithLabelValues(entity, operation).Add(float64(count))
	}
	if len(plan.DroppedLinks) > 0 {
		metrics.DroppedIntegrationLinks.Add(float64(len(plan.DroppedLinks)))
	}
	recordAudit(s.audit, ctx, AuditEntry{
		BoardID: board.ID,
		Action:  AuditLayoutApply,
		Result:  AuditSuccess,
		Metadata: map[string]any{
			"strategy":      s.applier.Strategy(),
			"summary":       plan.Summary(),
			"dropped_links": len(plan.DroppedLinks),
		},
	})

	return plan, nil
}

func (s *LayoutService) prepare(ctx context.Context, run *reconcileRun, principal permissions.Principal, boardID string, desired []layout.Section) (*layout.Plan, *models.Board, error) {
	run.enter(StateAccessChecking)
	board, err := s.access.RequireAccess(ctx, principal, BoardByID(boardID), ActionModify)
	if err != nil {
		if errors.Is(err, ErrBoardNotFound) {
			run.enter(StateDenied)
			metrics.LayoutReconciliations.WithLabelValues(string(StateDenied)).Inc()
		} else {
			metrics.LayoutReconciliations.WithLabelValues("failed").Inc()
		}
		return nil, nil, err
	}

	run.enter(StateLoading)
	current, err := s.loader.Load(ctx, board.ID, principal.UserID)
	if err != nil {
		metrics.LayoutReconciliations.WithLabelValues("failed").Inc()
		return nil, nil, err
	}
	run.enter(StateLoaded, zap.Int("sections", len(current)))

	access, err := s.integrations.Resolve(ctx, principal, layout.ReferencedIntegrations(desired))
	if err != nil {
		metrics.LayoutReconciliations.WithLabelValues("failed").Inc()
		return nil, nil, err
	}

	run.enter(StateDiffing)
	plan := layout.Reconcile(desired, current, access)
	run.enter(StateDiffed,
		zap.Any("summary", plan.Summary()),
		zap.Int("dropped_links", len(plan.DroppedLinks)),
	)
	if len(plan.DroppedLinks) > 0 {
		run.log.Info("dropped integration links the user may not use",
			zap.Int("count", len(plan.DroppedLinks)),
		)
	}

	return plan, board, nil
}

// SetSectionCollapsed stores whether the principal sees a section collapsed. View access suffices.
func (s *LayoutService) SetSectionCollapsed(ctx context.Context, principal permissions.Principal, boardID, sectionID string, collapsed bool) error {
	ctx = ensureContext(ctx)

	if principal.IsAnonymous() {
		return apperrors.ErrUnauthorized
	}

	board, err := s.access.RequireAccess(ctx, principal, BoardByID(boardID), ActionView)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Section{}).
		Where("id = ? AND board_id = ?", sectionID, board.ID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("layout service: load section: %w", err)
	}
	if count == 0 {
		return ErrSectionNotFound
	}

	state := models.SectionCollapseState{
		SectionID: sectionID,
		UserID:    principal.UserID,
		Collapsed: collapsed,
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "section_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"collapsed"}),
	}).Create(&state).Error; err != nil {
		return fmt.Errorf("layout service: save collapse state: %w", err)
	}
	return nil
}

// reconcileRun logs the state transitions of one call at debug level.
type reconcileRun struct {
	state ReconcileState
	log   *zap.Logger
}

func newReconcileRun(boardID string, principal permissions.Principal) *reconcileRun {
	return &reconcileRun{
		state: StateIdle,
		log:   logger.WithBoard("layout", boardID).With(zap.String("user_id", principal.UserID)),
	}
}

func (r *reconcileRun) enter(state ReconcileState, fields ...zap.Field) {
	fields = append(fields, zap.String("from", string(r.state)), zap.String("to", string(state)))
	r.log.Debug("reconcile state", fields...)
	r.state = state
}
