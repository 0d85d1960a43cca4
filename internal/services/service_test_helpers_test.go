package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/boardsync/internal/database/testutil"
	"github.com/charlesng35/boardsync/internal/layout"
	"github.com/charlesng35/boardsync/internal/models"
	"github.com/charlesng35/boardsync/internal/permissions"
)

type fixture struct {
	t   *testing.T
	db  *gorm.DB
	ctx context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		t:   t,
		db:  testutil.MustOpenTestDB(t, testutil.WithAutoMigrate()),
		ctx: context.Background(),
	}
}

func (f *fixture) user(name string, globalPerms ...string) *models.User {
	f.t.Helper()

	user := &models.User{Username: name, Email: name + "@example.com", IsActive: true}
	require.NoError(f.t, f.db.Create(user).Error)
	if len(globalPerms) > 0 {
		group := f.group(name+"-perms", globalPerms...)
		f.join(user, group)
	}
	return user
}

func (f *fixture) group(name string, globalPerms ...string) *models.Group {
	f.t.Helper()

	group := &models.Group{Name: name}
	require.NoError(f.t, f.db.Create(group).Error)
	for _, perm := range globalPerms {
		require.NoError(f.t, f.db.Create(&models.GroupPermission{GroupID: group.ID, PermissionID: perm}).Error)
	}
	return group
}

func (f *fixture) join(user *models.User, group *models.Group) {
	f.t.Helper()
	require.NoError(f.t, f.db.Model(user).Association("Groups").Append(group))
}

func (f *fixture) principal(user *models.User) permissions.Principal {
	f.t.Helper()

	svc, err := NewPrincipalService(f.db, nil)
	require.NoError(f.t, err)
	principal, err := svc.Resolve(f.ctx, user.ID)
	require.NoError(f.t, err)
	return principal
}

func (f *fixture) board(name string, owner *models.User, public bool) *models.Board {
	f.t.Helper()

	board := &models.Board{Name: name, IsPublic: public, ColumnCount: 10}
	if owner != nil {
		board.CreatorID = &owner.ID
	}
	require.NoError(f.t, f.db.Create(board).Error)
	return board
}

func (f *fixture) grantUser(board *models.Board, user *models.User, tier models.BoardPermission) {
	f.t.Helper()
	require.NoError(f.t, f.db.Create(&models.BoardUserPermission{BoardID: board.ID, UserID: user.ID, Permission: tier}).Error)
}

func (f *fixture) grantGroup(board *models.Board, group *models.Group, tier models.BoardPermission) {
	f.t.Helper()
	require.NoError(f.t, f.db.Create(&models.BoardGroupPermission{BoardID: board.ID, GroupID: group.ID, Permission: tier}).Error)
}

func (f *fixture) integration(name string) *models.Integration {
	f.t.Helper()

	integration := &models.Integration{Name: name, Kind: "test", URL: "http://" + name}
	require.NoError(f.t, f.db.Create(integration).Error)
	return integration
}

func (f *fixture) layoutService(strategy string) *LayoutService {
	f.t.Helper()

	applier, err := NewLayoutApplier(f.db, strategy)
	require.NoError(f.t, err)
	svc, err := NewLayoutService(f.db, applier)
	require.NoError(f.t, err)
	return svc
}

func (f *fixture) load(board *models.Board) []layout.Section {
	f.t.Helper()

	loader, err := NewLayoutLoader(f.db)
	require.NoError(f.t, err)
	sections, err := loader.Load(f.ctx, board.ID, "")
	require.NoError(f.t, err)
	return sections
}

func (f *fixture) count(model any, query string, args ...any) int64 {
	f.t.Helper()

	var n int64
	require.NoError(f.t, f.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

// rejectQueryArg fails every query that binds value, the way a uuid-typed column rejects
// malformed input on Postgres. SQLite alone would accept it.
func (f *fixture) rejectQueryArg(value string) {
	f.t.Helper()

	reject := func(db *gorm.DB) {
		for _, v := range db.Statement.Vars {
			if s, ok := v.(string); ok && s == value {
				_ = db.AddError(fmt.Errorf("invalid input syntax for type uuid: %q", value))
				return
			}
		}
	}
	require.NoError(f.t, f.db.Callback().Query().After("gorm:query").Register("test:reject_arg", reject))
}

func strPtr(v string) *string { return &v }

func emptySection(id string, position int, items ...layout.Item) layout.Section {
	return layout.Section{ID: id, Kind: layout.SectionKindEmpty, Position: position, Items: items}
}

func widget(id string, y int, integrations ...string) layout.Item {
	return layout.Item{
		ID:             id,
		Kind:           "clock",
		Options:        []byte(`{"timezone":"UTC"}`),
		YOffset:        y,
		Width:          2,
		Height:         1,
		IntegrationIDs: integrations,
	}
}

var strategies = []string{StrategyTransaction, StrategyBatch}
