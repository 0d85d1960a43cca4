package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/charlesng35/boardsync/internal/database"
	"github.com/charlesng35/boardsync/internal/models"
	"github.com/charlesng35/boardsync/internal/permissions"
)

type userOutput struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Groups      []string `json:"groups"`
	Permissions []string `json:"permissions"`
}

func newUserCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "user",
		Short:   "Manage users and their global permissions",
		GroupID: "admin",
	}

	var (
		email string
		admin bool
	)

	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user, optionally as a member of the admin group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := contextOrBackground(cmd.Context())
			db, err := rt.database()
			if err != nil {
				return err
			}

			username := strings.TrimSpace(args[0])
			if username == "" {
				return fmt.Errorf("username is required")
			}
			if email == "" {
				email = username + "@localhost"
			}

			user := &models.User{Username: username, Email: email, IsActive: true}
			err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				if err := tx.Create(user).Error; err != nil {
					return fmt.Errorf("create user %q: %w", username, err)
				}
				if !admin {
					return nil
				}
				var group models.Group
				if err := tx.Where("name = ?", database.AdminGroupName).First(&group).Error; err != nil {
					return fmt.Errorf("load %s group (run migrate first): %w", database.AdminGroupName, err)
				}
				return tx.Model(user).Association("Groups").Append(&group)
			})
			if err != nil {
				return err
			}

			return rt.reportUser(ctx, cmd, db, user)
		},
	}
	add.Flags().StringVar(&email, "email", "", "Email address (default: <username>@localhost)")
	add.Flags().BoolVar(&admin, "admin", false, "Add the user to the admin group")

	show := &cobra.Command{
		Use:   "show <username>",
		Short: "Show a user's groups and effective global permissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := contextOrBackground(cmd.Context())
			db, err := rt.database()
			if err != nil {
				return err
			}
			user, err := findUser(ctx, db, args[0])
			if err != nil {
				return err
			}
			return rt.reportUser(ctx, cmd, db, user)
		},
	}

	cmd.AddCommand(add, show)
	return cmd
}

func (rt *runtime) reportUser(ctx context.Context, cmd *cobra.Command, db *gorm.DB, user *models.User) error {
	var groups []models.Group
	if err := db.WithContext(ctx).Model(user).Association("Groups").Find(&groups); err != nil {
		return fmt.Errorf("load groups: %w", err)
	}
	groupNames := make([]string, 0, len(groups))
	for _, group := range groups {
		groupNames = append(groupNames, group.Name)
	}

	checker, err := permissions.NewChecker(db)
	if err != nil {
		return err
	}
	perms, err := checker.GetUserPermissions(ctx, user.ID)
	if err != nil {
		return err
	}

	out := userOutput{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Groups:      groupNames,
		Permissions: perms,
	}
	if out.Permissions == nil {
		out.Permissions = []string{}
	}
	if rt.opts.jsonOutput {
		return outputJSON(cmd.OutOrStdout(), out)
	}

	w := cmd.OutOrStdout()
	printSection(w, "User "+user.Username)
	printLabelValue(w, "ID", user.ID)
	printLabelValue(w, "Email", user.Email)
	printLabelValue(w, "Groups", joinOrNone(groupNames))
	printLabelValue(w, "Permissions", joinOrNone(out.Permissions))
	return nil
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}
