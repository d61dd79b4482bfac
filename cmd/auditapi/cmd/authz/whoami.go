package authz

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Verify a user token with the identity service",
	Long: `Posts the user token to the identity service and prints the identity the
authentication gate would attach.

Example:
  AUDIT_USER_TOKEN=... auditapi authz whoami
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := resolveUserToken()
		if err != nil {
			return err
		}
		bundle, err := newBundle()
		if err != nil {
			return err
		}

		user, err := bundle.Verifier.VerifyUserToken(cmd.Context(), token)
		if err != nil {
			return fmt.Errorf("verify user token: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "User ID:   %s\n", user.UserID)
		if user.TenantID != "" {
			fmt.Fprintf(out, "Tenant ID: %s\n", user.TenantID)
		}
		if user.Email != "" {
			fmt.Fprintf(out, "Email:     %s\n", user.Email)
		}
		return nil
	},
}
