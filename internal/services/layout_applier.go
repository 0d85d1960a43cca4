package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/boardsync/internal/layout"
	"github.com/charlesng35/boardsync/internal/models"
)

// Apply strategy names.
const (
	StrategyTransaction = "transaction"
	StrategyBatch       = "batch"
)

// LayoutApplier writes a reconciliation plan as one atomic unit. Either every step commits
// or none does; the first failing step's error is returned unchanged.
type LayoutApplier interface {
	Apply(ctx context.Context, boardID string, plan *layout.Plan) error
	Strategy() string
}

// NewLayoutApplier returns the applier for the configured strategy. Empty selects transaction.
func NewLayoutApplier(db *gorm.DB, strategy string) (LayoutApplier, error) {
	if db == nil {
		return nil, errors.New("layout applier: db is required")
	}
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", StrategyTransaction:
		return &TransactionApplier{db: db}, nil
	case StrategyBatch:
		return &BatchApplier{db: db}, nil
	default:
		return nil, fmt.Errorf("layout applier: unknown strategy %q", strategy)
	}
}

// TransactionApplier runs each step on a gorm transaction handle as it goes.
type TransactionApplier struct {
	db *gorm.DB
}

// Strategy implements LayoutApplier.
func (a *TransactionApplier) Strategy() string { return StrategyTransaction }

// Apply implements LayoutApplier.
func (a *TransactionApplier) Apply(ctx context.Context, boardID string, plan *layout.Plan) error {
	steps := plan.Steps()
	if len(steps) == 0 {
		return nil
	}

	return a.db.WithContext(ensureContext(ctx)).Transaction(func(tx *gorm.DB) error {
		for _, step := range steps {
			if err := buildStep(tx, boardID, step).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// BatchApplier renders every step to SQL up front and then sends the batch through a single
// database/sql transaction. Nothing reaches the database if any step fails to build.
type BatchApplier struct {
	db *gorm.DB
}

// Strategy implements LayoutApplier.
func (a *BatchApplier) Strategy() string { return StrategyBatch }

type preparedStep struct {
	kind layout.StepKind
	sql  string
	vars []any
}

// Apply implements LayoutApplier.
func (a *BatchApplier) Apply(ctx context.Context, boardID string, plan *layout.Plan) (err error) {
	ctx = ensureContext(ctx)

	steps := plan.Steps()
	if len(steps) == 0 {
		return nil
	}

	dry := a.db.Session(&gorm.Session{DryRun: true, NewDB: true, Context: ctx})
	prepared := make([]preparedStep, 0, len(steps))
	for _, step := range steps {
		stmt := buildStep(dry, boardID, step)
		if stmt.Error != nil {
			return stmt.Error
		}
		prepared = append(prepared, preparedStep{
			kind: step.Kind,
			sql:  stmt.Statement.SQL.String(),
			vars: stmt.Statement.Vars,
		})
	}

	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}

	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = multierr.Append(err, rbErr)
			}
		}
	}()

	for _, step := range prepared {
		if _, err = tx.ExecContext(ctx, step.sql, step.vars...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// buildStep issues the statement for one plan step on db. On a dry-run session the statement
// is only rendered.
func buildStep(db *gorm.DB, boardID string, step layout.Step) *gorm.DB {
	switch step.Kind {
	case layout.StepInsertSections:
		rows := make([]models.Section, 0, len(step.Sections))
		for _, record := range step.Sections {
			rows = append(rows, sectionRow(boardID, record))
		}
		return db.Omit(clause.Associations).Create(&rows)

	case layout.StepInsertItems:
		rows := make([]models.Item, 0, len(step.Items))
		for _, record := range step.Items {
			rows = append(rows, itemRow(record))
		}
		return db.Omit(clause.Associations).Create(&rows)

	case layout.StepInsertLinks:
		rows := make([]models.ItemIntegration, 0, len(step.Links))
		for _, link := range step.Links {
			rows = append(rows, models.ItemIntegration{ItemID: link.ItemID, IntegrationID: link.IntegrationID})
		}
		return db.Create(&rows)

	case layout.StepUpdateItem:
		record := step.Items[0]
		return db.Model(&models.Item{}).
			Where("id = ?", record.ID).
			Updates(map[string]any{
				"section_id":       record.SectionID,
				"kind":             record.Kind,
				"options":          datatypes.JSON(record.Options),
				"advanced_options": datatypes.JSON(record.AdvancedOptions),
				"x_offset":         record.XOffset,
				"y_offset":         record.YOffset,
				"width":            record.Width,
				"height":           record.Height,
			})

	case layout.StepUpdateSection:
		record := step.Sections[0]
		return db.Model(&models.Section{}).
			Where("id = ? AND board_id = ?", record.ID, boardID).
			Updates(map[string]any{
				"kind":              string(record.Kind),
				"position":          record.Position,
				"name":              record.Name,
				"x_offset":          record.XOffset,
				"y_offset":          record.YOffset,
				"width":             record.Width,
				"height":            record.Height,
				"parent_section_id": record.ParentSectionID,
			})

	case layout.StepDeleteLinks:
		return db.Where(linkCondition(step.Links)).Delete(&models.ItemIntegration{})

	case layout.StepDeleteItems:
		return db.Where("id IN ?", step.IDs).Delete(&models.Item{})

	case layout.StepDeleteSections:
		return db.Where("board_id = ? AND id IN ?", boardID, step.IDs).Delete(&models.Section{})

	default:
		db = db.Session(&gorm.Session{})
		_ = db.AddError(fmt.Errorf("layout applier: unknown step %s", step.Kind))
		return db
	}
}

// linkCondition matches any of the given (item, integration) pairs.
func linkCondition(links []layout.Link) clause.Expression {
	conds := make([]clause.Expression, 0, len(links))
	for _, link := range links {
		conds = append(conds, clause.And(
			clause.Eq{Column: clause.Column{Name: "item_id"}, Value: link.ItemID},
			clause.Eq{Column: clause.Column{Name: "integration_id"}, Value: link.IntegrationID},
		))
	}
	if len(conds) == 1 {
		return conds[0]
	}
	return clause.Or(conds...)
}

func sectionRow(boardID string, record layout.SectionRecord) models.Section {
	return models.Section{
		LayoutModel:     models.LayoutModel{ID: record.ID},
		BoardID:         boardID,
		Kind:            string(record.Kind),
		Position:        record.Position,
		Name:            record.Name,
		XOffset:         record.XOffset,
		YOffset:         record.YOffset,
		Width:           record.Width,
		Height:          record.Height,
		ParentSectionID: record.ParentSectionID,
	}
}

func itemRow(record layout.ItemRecord) models.Item {
	return models.Item{
		LayoutModel:     models.LayoutModel{ID: record.ID},
		SectionID:       record.SectionID,
		Kind:            record.Kind,
		Options:         datatypes.JSON(record.Options),
		AdvancedOptions: datatypes.JSON(record.AdvancedOptions),
		XOffset:         record.XOffset,
		YOffset:         record.YOffset,
		Width:           record.Width,
		Height:          record.Height,
	}
}
