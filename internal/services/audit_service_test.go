package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/boardsync/internal/auditctx"
	"github.com/charlesng35/boardsync/internal/layout"
	"github.com/charlesng35/boardsync/internal/models"
	"github.com/charlesng35/boardsync/internal/permissions"
	apperrors "github.com/charlesng35/boardsync/pkg/errors"
)

func TestAuditServiceRecordsLayoutApplies(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(strategy, func(t *testing.T) {
			f := newFixture(t)
			owner := f.user("owner")
			board := f.board("home", owner, false)
			svc := f.layoutService(strategy)
			principal := f.principal(owner)

			ctx := auditctx.WithActor(f.ctx, auditctx.Actor{
				UserID:   owner.ID,
				Username: owner.Username,
				Source:   auditctx.SourceCLI,
			})
			_, err := svc.ReconcileAndApply(ctx, principal, board.ID, []layout.Section{
				emptySection("top", 0, widget("w1", 0, "missing")),
			})
			require.NoError(t, err)

			require.NoError(t, f.db.Exec(
				"CREATE TRIGGER block_item_delete BEFORE DELETE ON items BEGIN SELECT RAISE(ABORT, 'item delete blocked'); END",
			).Error)
			_, err = svc.ReconcileAndApply(ctx, principal, board.ID, []layout.Section{emptySection("top", 0)})
			require.Error(t, err)

			audit, err := NewAuditService(f.db)
			require.NoError(t, err)
			entries, err := audit.ListBoard(f.ctx, principal, board.ID, 0)
			require.NoError(t, err)
			require.Len(t, entries, 2)

			byResult := map[string]models.AuditLog{}
			for _, entry := range entries {
				require.Equal(t, AuditLayoutApply, entry.Action)
				require.Equal(t, auditctx.SourceCLI, entry.Source)
				require.NotNil(t, entry.UserID)
				require.Equal(t, owner.ID, *entry.UserID)
				byResult[entry.Result] = entry
			}

			var success struct {
				Strategy     string         `json:"strategy"`
				Summary      map[string]int `json:"summary"`
				DroppedLinks int            `json:"dropped_links"`
			}
			require.NoError(t, json.Unmarshal(byResult[AuditSuccess].Metadata, &success))
			require.Equal(t, strategy, success.Strategy)
			require.Equal(t, 1, success.Summary["section.insert"])
			require.Equal(t, 1, success.Summary["item.insert"])
			require.Equal(t, 1, success.DroppedLinks)

			var failure struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(byResult[AuditFailure].Metadata, &failure))
			require.Contains(t, failure.Error, "item delete blocked")
		})
	}
}

func TestAuditServiceListRequiresFullAccess(t *testing.T) {
	f := newFixture(t)
	owner := f.user("owner")
	editor := f.user("editor")
	board := f.board("home", owner, false)
	f.grantUser(board, editor, models.BoardPermissionModify)

	audit, err := NewAuditService(f.db)
	require.NoError(t, err)
	require.NoError(t, audit.Log(f.ctx, AuditEntry{BoardID: board.ID, Action: AuditBoardSettings, Result: AuditSuccess}))

	_, err = audit.ListBoard(f.ctx, f.principal(editor), board.ID, 10)
	require.True(t, apperrors.IsCode(err, "BOARD_NOT_FOUND"))

	_, err = audit.ListBoard(f.ctx, permissions.Anonymous(), board.ID, 10)
	require.True(t, apperrors.IsCode(err, "BOARD_NOT_FOUND"))

	entries, err := audit.ListBoard(f.ctx, f.principal(owner), board.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Nil(t, entries[0].UserID)
	require.JSONEq(t, `{}`, string(entries[0].Metadata))
}

func TestAuditServiceLogValidates(t *testing.T) {
	f := newFixture(t)
	audit, err := NewAuditService(f.db)
	require.NoError(t, err)

	require.Error(t, audit.Log(f.ctx, AuditEntry{Action: AuditBoardCreate, Result: AuditSuccess}))
	require.Error(t, audit.Log(f.ctx, AuditEntry{BoardID: "b", Result: AuditSuccess}))
	require.Error(t, audit.Log(f.ctx, AuditEntry{BoardID: "b", Action: AuditBoardCreate}))
}

func TestBoardServiceAuditsDeleteAfterBoardIsGone(t *testing.T) {
	f := newFixture(t)
	owner := f.user("owner")
	board := f.board("home", owner, false)

	boards, err := NewBoardService(f.db)
	require.NoError(t, err)
	require.NoError(t, boards.Delete(f.ctx, f.principal(owner), board.ID))

	require.Equal(t, int64(1), f.count(&models.AuditLog{}, "board_id = ? AND action = ?", board.ID, AuditBoardDelete))
}
