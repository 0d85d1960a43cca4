package cli

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/charlesng35/boardsync/internal/auth"
)

type tokenOutput struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newTokenCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "token",
		Short:   "Issue API access tokens",
		GroupID: "admin",
	}

	var ttl time.Duration

	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issue an access token for the --user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			username := strings.TrimSpace(rt.opts.user)
			if username == "" {
				return errors.New("--user is required")
			}

			db, err := rt.database()
			if err != nil {
				return err
			}
			// A generated secret would make the token unusable by the server.
			if strings.TrimSpace(rt.cfg.Auth.JWT.Secret) == "" {
				return errors.New("auth.jwt.secret is not configured")
			}

			user, err := findUser(contextOrBackground(cmd.Context()), db, username)
			if err != nil {
				return err
			}

			jwtCfg := rt.cfg.Auth.JWTServiceConfig()
			if ttl > 0 {
				jwtCfg.AccessTokenTTL = ttl
			}
			issuedAt := time.Now()
			jwtCfg.Clock = func() time.Time { return issuedAt }

			svc, err := auth.NewJWTService(jwtCfg)
			if err != nil {
				return err
			}
			token, err := svc.GenerateAccessToken(auth.AccessTokenInput{UserID: user.ID, Username: user.Username})
			if err != nil {
				return err
			}

			out := tokenOutput{
				Token:     token,
				UserID:    user.ID,
				Username:  user.Username,
				ExpiresAt: issuedAt.Add(jwtCfg.AccessTokenTTL).UTC(),
			}
			if rt.opts.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), out)
			}

			w := cmd.OutOrStdout()
			printSection(w, "Access token for "+user.Username)
			printLabelValue(w, "Expires", out.ExpiresAt.Format(time.RFC3339))
			printLabelValue(w, "Token", token)
			return nil
		},
	}
	issue.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default: auth.jwt.access_token_ttl)")

	cmd.AddCommand(issue)
	return cmd
}
