package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/charlesng35/boardsync/internal/auditctx"
	"github.com/charlesng35/boardsync/internal/layout"
	"github.com/charlesng35/boardsync/internal/models"
	"github.com/charlesng35/boardsync/internal/permissions"
	"github.com/charlesng35/boardsync/internal/services"
)

type layoutFile struct {
	Sections []layout.Section `json:"sections"`
}

type planOutput struct {
	Board        string         `json:"board"`
	Applied      bool           `json:"applied"`
	Summary      map[string]int `json:"summary"`
	DroppedLinks []layout.Link  `json:"dropped_links"`
}

func newLayoutCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "layout",
		Short:   "Inspect, plan or apply board layouts",
		GroupID: "layout",
	}

	var (
		planFile      string
		applyFile     string
		applyStrategy string
	)

	show := &cobra.Command{
		Use:   "show <board>",
		Short: "Print the stored layout of a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, err := rt.layoutSession(ctx, args[0], "")
			if err != nil {
				return err
			}

			sections, err := session.svc.Load(ctx, session.principal, session.board.ID)
			if err != nil {
				return err
			}

			if rt.opts.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), layoutFile{Sections: sections})
			}
			printLayout(cmd.OutOrStdout(), session.board.Name, sections)
			return nil
		},
	}

	plan := &cobra.Command{
		Use:   "plan <board>",
		Short: "Show what applying a layout file would change, without writing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			desired, err := readLayoutFile(planFile)
			if err != nil {
				return err
			}
			session, err := rt.layoutSession(ctx, args[0], "")
			if err != nil {
				return err
			}

			result, err := session.svc.Plan(ctx, session.principal, session.board.ID, desired)
			if err != nil {
				return err
			}
			return rt.reportPlan(cmd, session.board.Name, result, false)
		},
	}
	plan.Flags().StringVarP(&planFile, "file", "f", "", "Layout JSON file")
	_ = plan.MarkFlagRequired("file")

	apply := &cobra.Command{
		Use:   "apply <board>",
		Short: "Replace the layout of a board with a layout file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			desired, err := readLayoutFile(applyFile)
			if err != nil {
				return err
			}
			session, err := rt.layoutSession(ctx, args[0], applyStrategy)
			if err != nil {
				return err
			}

			ctx = auditctx.WithActor(contextOrBackground(ctx), auditctx.Actor{
				UserID:   session.principal.UserID,
				Username: session.principal.Username,
				Source:   auditctx.SourceCLI,
			})
			result, err := session.svc.ReconcileAndApply(ctx, session.principal, session.board.ID, desired)
			if err != nil {
				return err
			}
			return rt.reportPlan(cmd, session.board.Name, result, true)
		},
	}
	apply.Flags().StringVarP(&applyFile, "file", "f", "", "Layout JSON file")
	apply.Flags().StringVar(&applyStrategy, "strategy", "", "Apply strategy: transaction or batch (default: from config)")
	_ = apply.MarkFlagRequired("file")

	cmd.AddCommand(show, plan, apply)
	return cmd
}

type layoutSession struct {
	principal permissions.Principal
	board     *models.Board
	svc       *services.LayoutService
}

func (rt *runtime) layoutSession(ctx context.Context, boardName, strategy string) (*layoutSession, error) {
	ctx = contextOrBackground(ctx)

	db, err := rt.database()
	if err != nil {
		return nil, err
	}
	principal, err := rt.principal(ctx, db)
	if err != nil {
		return nil, err
	}

	boards, err := services.NewBoardService(db)
	if err != nil {
		return nil, err
	}
	view, err := boards.Get(ctx, principal, services.BoardByName(boardName))
	if err != nil {
		return nil, fmt.Errorf("board %q: %w", boardName, err)
	}

	svc, err := rt.layoutService(db, strategy)
	if err != nil {
		return nil, err
	}

	return &layoutSession{principal: principal, board: view.Board, svc: svc}, nil
}

func (rt *runtime) layoutService(db *gorm.DB, strategy string) (*services.LayoutService, error) {
	if strategy == "" && rt.cfg != nil {
		strategy = rt.cfg.Layout.ApplyStrategy
	}
	applier, err := services.NewLayoutApplier(db, strategy)
	if err != nil {
		return nil, err
	}
	return services.NewLayoutService(db, applier)
}

func (rt *runtime) reportPlan(cmd *cobra.Command, boardName string, plan *layout.Plan, applied bool) error {
	out := cmd.OutOrStdout()
	if rt.opts.jsonOutput {
		dropped := plan.DroppedLinks
		if dropped == nil {
			dropped = []layout.Link{}
		}
		return outputJSON(out, planOutput{
			Board:        boardName,
			Applied:      applied,
			Summary:      plan.Summary(),
			DroppedLinks: dropped,
		})
	}

	if applied {
		printSection(out, "Applied layout to "+boardName)
	} else {
		printSection(out, "Plan for "+boardName)
	}
	printPlan(out, plan)
	return nil
}

// readLayoutFile loads a layout document and rejects trees that fail validation.
func readLayoutFile(path string) ([]layout.Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout file: %w", err)
	}

	var doc layoutFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse layout file %s: %w", path, err)
	}
	if err := layout.Validate(doc.Sections); err != nil {
		return nil, fmt.Errorf("invalid layout file %s: %w", path, err)
	}
	return doc.Sections, nil
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
