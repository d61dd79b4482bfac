package authz

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/services/rbac"
)

var (
	activity  string
	projectID string
	roles     []string
)

// errDenied makes the command exit non-zero on a denial.
var errDenied = errors.New("access denied")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Ask the policy service whether a user may perform an activity",
	Long: `Resolves the user behind the token, then asks the policy service for a
decision on the activity in the given project. The project defaults to the
token's tenant.

Example:
  auditapi authz check --activity company.create --project T1
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if activity == "" {
			return fmt.Errorf("--activity is required")
		}
		token, err := resolveUserToken()
		if err != nil {
			return err
		}
		bundle, err := newBundle()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		user, err := bundle.Verifier.VerifyUserToken(ctx, token)
		if err != nil {
			return fmt.Errorf("verify user token: %w", err)
		}

		project := projectID
		if project == "" {
			project = user.TenantID
		}
		if project == "" {
			return fmt.Errorf("--project is required when the token carries no tenant")
		}

		allowed, err := bundle.Policy.Check(ctx, rbac.Decision{
			UserID:        user.UserID,
			ProjectID:     project,
			Activity:      activity,
			RequiredRoles: roles,
			UserToken:     token,
		})
		if err != nil {
			return fmt.Errorf("policy check: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "user=%s project=%s activity=%s allowed=%t\n", user.UserID, project, activity, allowed)
		if !allowed {
			return errDenied
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVar(&activity, "activity", "", "Activity to check, e.g. company.create")
	checkCmd.Flags().StringVar(&projectID, "project", "", "Project (tenant) id; defaults to the token's tenant")
	checkCmd.Flags().StringSliceVar(&roles, "role", nil, "Required role(s) to forward to the policy service")
}
