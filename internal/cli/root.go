// Package cli implements boardctl, the administration command line for boardsync.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/charlesng35/boardsync/internal/app"
	"github.com/charlesng35/boardsync/internal/database"
)

// OpenFunc opens the database described by the loaded configuration.
type OpenFunc func(cfg *app.Config) (*gorm.DB, error)

// Deps lets callers replace the database opener, mostly for tests.
type Deps struct {
	Open OpenFunc
}

var (
	groupTitleColor   = color.New(color.FgCyan, color.Bold)
	sectionTitleColor = color.New(color.FgBlue, color.Bold)
)

type globalOptions struct {
	configPath string
	jsonOutput bool
	user       string
}

type runtime struct {
	deps   Deps
	opts   globalOptions
	ownsDB bool

	cfg *app.Config
	db  *gorm.DB
}

// Execute runs boardctl with the process arguments.
func Execute(version string) error {
	return NewRootCommand(Deps{}, version).Execute()
}

// NewRootCommand builds the boardctl command tree.
func NewRootCommand(deps Deps, version string) *cobra.Command {
	ownsDB := deps.Open == nil
	if ownsDB {
		deps.Open = openDatabase
	}
	if version == "" {
		version = "dev"
	}
	rt := &runtime{deps: deps, ownsDB: ownsDB}

	root := &cobra.Command{
		Use:     "boardctl",
		Version: version,
		Short:   "Administer boardsync boards and layouts",
		Long: `boardctl talks to the boardsync database directly.

It migrates the schema, manages users, issues access tokens and audits the deployment.
Layouts are inspected, planned and applied with the access rules the HTTP API enforces.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return rt.close()
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")
	root.SetHelpFunc(helpFunc)

	root.PersistentFlags().StringVar(&rt.opts.configPath, "config", "", "Directory holding config.yaml")
	root.PersistentFlags().BoolVar(&rt.opts.jsonOutput, "json", false, "Output in JSON format")
	root.PersistentFlags().StringVarP(&rt.opts.user, "user", "u", "", "Act as this username (default: anonymous)")

	root.AddGroup(
		&cobra.Group{ID: "layout", Title: "Layouts:"},
		&cobra.Group{ID: "admin", Title: "Administration:"},
	)

	root.AddCommand(
		newLayoutCommand(rt),
		newDoctorCommand(rt),
		newMigrateCommand(rt),
		newTokenCommand(rt),
		newUserCommand(rt),
	)

	return root
}

// database lazily loads configuration and opens the database once per invocation.
func (rt *runtime) database() (*gorm.DB, error) {
	if rt.db != nil {
		return rt.db, nil
	}
	if err := rt.loadConfig(); err != nil {
		return nil, err
	}
	db, err := rt.deps.Open(rt.cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	rt.db = db
	return db, nil
}

func (rt *runtime) loadConfig() error {
	if rt.cfg != nil {
		return nil
	}
	var paths []string
	if dir := strings.TrimSpace(rt.opts.configPath); dir != "" {
		paths = append(paths, dir)
	}
	cfg, err := app.LoadConfig(paths...)
	if err != nil {
		return err
	}
	rt.cfg = cfg
	return nil
}

// close releases a database opened by the default opener. Injected handles belong to the caller.
func (rt *runtime) close() error {
	if rt.db == nil || !rt.ownsDB {
		return nil
	}
	sqlDB, err := rt.db.DB()
	rt.db = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func openDatabase(cfg *app.Config) (*gorm.DB, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	return database.Open(cfg.Database.ConnectionConfig())
}

func helpFunc(cmd *cobra.Command, args []string) {
	var help strings.Builder

	if cmd.Long != "" {
		help.WriteString(cmd.Long)
		help.WriteString("\n\n")
	} else if cmd.Short != "" {
		help.WriteString(cmd.Short)
		help.WriteString("\n\n")
	}

	help.WriteString(sectionTitleColor.Sprint("Usage:"))
	help.WriteString("\n")
	fmt.Fprintf(&help, "  %s\n\n", cmd.UseLine())

	for _, group := range cmd.Groups() {
		help.WriteString(groupTitleColor.Sprint(group.Title))
		help.WriteString("\n")
		for _, c := range cmd.Commands() {
			if c.GroupID == group.ID && !c.Hidden {
				fmt.Fprintf(&help, "  %-10s %s\n", c.Name(), c.Short)
			}
		}
		help.WriteString("\n")
	}

	var ungrouped []*cobra.Command
	for _, c := range cmd.Commands() {
		if c.GroupID == "" && c.IsAvailableCommand() {
			ungrouped = append(ungrouped, c)
		}
	}
	if len(ungrouped) > 0 {
		help.WriteString(sectionTitleColor.Sprint("Commands:"))
		help.WriteString("\n")
		for _, c := range ungrouped {
			fmt.Fprintf(&help, "  %-10s %s\n", c.Name(), c.Short)
		}
		help.WriteString("\n")
	}

	if cmd.HasAvailableLocalFlags() || cmd.HasAvailableInheritedFlags() {
		help.WriteString(sectionTitleColor.Sprint("Flags:"))
		help.WriteString("\n")
		help.WriteString(cmd.LocalFlags().FlagUsages())
		help.WriteString(cmd.InheritedFlags().FlagUsages())
		help.WriteString("\n")
	}

	fmt.Fprintf(&help, "Use \"%s [command] --help\" for more information about a command.\n", cmd.CommandPath())

	var out io.Writer = cmd.OutOrStdout()
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprint(out, help.String())
}
