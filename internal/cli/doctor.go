package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/charlesng35/boardsync/internal/security"
)

func newDoctorCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "doctor",
		Short:   "Audit configuration and admin access",
		GroupID: "admin",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.loadConfig(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var db *gorm.DB
			if opened, err := rt.database(); err == nil {
				db = opened
			} else if !rt.opts.jsonOutput {
				printWarning(out, err.Error())
			}

			result := security.NewAuditService(db, rt.cfg).Run(contextOrBackground(cmd.Context()))

			if rt.opts.jsonOutput {
				if err := outputJSON(out, result); err != nil {
					return err
				}
			} else {
				printSection(out, "Security audit")
				for _, check := range result.Checks {
					switch check.Status {
					case security.StatusPass:
						printSuccess(out, check.Message)
					case security.StatusWarn:
						printWarning(out, check.Message)
					default:
						_, _ = errorColor.Fprintf(out, "✗ %s\n", check.Message)
					}
					if check.Status != security.StatusPass && check.Remediation != "" {
						_, _ = dimColor.Fprintf(out, "    %s\n", check.Remediation)
					}
				}
			}

			if result.Failed() {
				return fmt.Errorf("%d audit check(s) failed", result.Summary[string(security.StatusFail)])
			}
			return nil
		},
	}
}
