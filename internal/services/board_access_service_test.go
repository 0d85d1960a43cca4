package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/boardsync/internal/models"
	"github.com/charlesng35/boardsync/internal/permissions"
)

func TestRequireAccessMissingAndForbiddenLookIdentical(t *testing.T) {
	f := newFixture(t)
	owner := f.user("owner")
	stranger := f.user("stranger")
	board := f.board("private", owner, false)

	svc, err := NewBoardAccessService(f.db)
	require.NoError(t, err)

	_, forbidden := svc.RequireAccess(f.ctx, f.principal(stranger), BoardByID(board.ID), ActionView)
	_, missing := svc.RequireAccess(f.ctx, f.principal(stranger), BoardByID("does-not-exist"), ActionView)
	_, missingByName := svc.RequireAccess(f.ctx, f.principal(stranger), BoardByName("nope"), ActionView)

	require.ErrorIs(t, forbidden, ErrBoardNotFound)
	require.ErrorIs(t, missing, ErrBoardNotFound)
	require.Equal(t, forbidden, missing)
	require.Equal(t, forbidden, missingByName)
	require.Equal(t, forbidden.Error(), missing.Error())
}

func TestRequireAccessMalformedBoardID(t *testing.T) {
	f := newFixture(t)
	owner := f.user("owner", permissions.Admin)
	board := f.board("private", owner, false)
	svc, err := NewBoardAccessService(f.db)
	require.NoError(t, err)

	f.rejectQueryArg("not-a-uuid")

	_, malformed := svc.RequireAccess(f.ctx, f.principal(owner), BoardByID("not-a-uuid"), ActionView)
	require.ErrorIs(t, malformed, ErrBoardNotFound)

	_, forbidden := svc.RequireAccess(f.ctx, permissions.Anonymous(), BoardByID(board.ID), ActionView)
	require.Equal(t, forbidden, malformed)
}

func TestRequireAccessGroupChangeGrant(t *testing.T) {
	f := newFixture(t)
	owner := f.user("owner")
	member := f.user("member")
	editors := f.group("editors")
	f.join(member, editors)
	board := f.board("team", owner, false)
	f.grantGroup(board, editors, models.BoardPermissionModify)

	svc, err := NewBoardAccessService(f.db)
	require.NoError(t, err)
	principal := f.principal(member)

	_, err = svc.RequireAccess(f.ctx, principal, BoardByID(board.ID), ActionFull)
	require.ErrorIs(t, err, ErrBoardNotFound)

	got, err := svc.RequireAccess(f.ctx, principal, BoardByID(board.ID), ActionModify)
	require.NoError(t, err)
	require.Equal(t, board.ID, got.ID)

	_, err = svc.RequireAccess(f.ctx, principal, BoardByID(board.ID), ActionView)
	require.NoError(t, err)
}

func TestRequireAccessOwnerAndGlobalPermissions(t *testing.T) {
	f := newFixture(t)
	owner := f.user("owner")
	auditor := f.user("auditor", permissions.BoardViewAll)
	admin := f.user("admin", permissions.Admin)
	board := f.board("owned", owner, false)

	svc, err := NewBoardAccessService(f.db)
	require.NoError(t, err)

	_, err = svc.RequireAccess(f.ctx, f.principal(owner), BoardByName("owned"), ActionFull)
	require.NoError(t, err)

	_, err = svc.RequireAccess(f.ctx, f.principal(auditor), BoardByID(board.ID), ActionView)
	require.NoError(t, err)
	_, err = svc.RequireAccess(f.ctx, f.principal(auditor), BoardByID(board.ID), ActionModify)
	require.ErrorIs(t, err, ErrBoardNotFound)

	_, err = svc.RequireAccess(f.ctx, f.principal(admin), BoardByID(board.ID), ActionFull)
	require.NoError(t, err)
}

func TestRequireAccessPublicBoard(t *testing.T) {
	f := newFixture(t)
	owner := f.user("owner")
	board := f.board("public", owner, true)

	svc, err := NewBoardAccessService(f.db)
	require.NoError(t, err)

	_, err = svc.RequireAccess(f.ctx, permissions.Anonymous(), BoardByID(board.ID), ActionView)
	require.NoError(t, err)

	_, err = svc.RequireAccess(f.ctx, permissions.Anonymous(), BoardByID(board.ID), ActionModify)
	require.ErrorIs(t, err, ErrBoardNotFound)
}

func TestRequireAccessDirectViewGrant(t *testing.T) {
	f := newFixture(t)
	owner := f.user("owner")
	viewer := f.user("viewer")
	board := f.board("shared", owner, false)
	f.grantUser(board, viewer, models.BoardPermissionView)

	svc, err := NewBoardAccessService(f.db)
	require.NoError(t, err)

	_, access, err := svc.Resolve(f.ctx, f.principal(viewer), BoardByID(board.ID))
	require.NoError(t, err)
	require.Equal(t, permissions.BoardAccess{HasViewAccess: true}, access)
}

func TestRequireAccessEmptySelector(t *testing.T) {
	f := newFixture(t)
	svc, err := NewBoardAccessService(f.db)
	require.NoError(t, err)

	_, err = svc.RequireAccess(f.ctx, permissions.Anonymous(), BoardSelector{}, ActionView)
	require.True(t, errors.Is(err, ErrBoardNotFound))
}

func TestPrincipalServiceResolve(t *testing.T) {
	f := newFixture(t)
	user := f.user("alice", permissions.BoardCreate)
	extra := f.group("extra")
	f.join(user, extra)

	svc, err := NewPrincipalService(f.db, nil)
	require.NoError(t, err)

	principal, err := svc.Resolve(f.ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, principal.UserID)
	require.Equal(t, "alice", principal.Username)
	require.Len(t, principal.GroupIDs, 2)
	require.True(t, principal.Has(permissions.BoardCreate))
	require.False(t, principal.Has(permissions.BoardViewAll))

	anon, err := svc.Resolve(f.ctx, "")
	require.NoError(t, err)
	require.True(t, anon.IsAnonymous())

	_, err = svc.Resolve(f.ctx, "missing-user")
	require.Error(t, err)

	require.NoError(t, f.db.Model(user).Update("is_active", false).Error)
	_, err = svc.Resolve(f.ctx, user.ID)
	require.Error(t, err)
}
