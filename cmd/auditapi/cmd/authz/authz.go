package authz

import (
	"fmt"
	"os"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/cmd/cmdutil"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/config"
)

// userTokenEnv is read when --user-token is not given, keeping tokens out of shell history.
const userTokenEnv = "AUDIT_USER_TOKEN"

var userToken string

// AuthzCmd is the parent command for identity and policy diagnostics
var AuthzCmd = &cobra.Command{
	Use:   "authz",
	Short: "Diagnose authentication and authorization decisions",
	Long: `Commands that ask the identity and policy services the same questions the
server asks while handling a request.`,
}

func init() {
	AuthzCmd.PersistentFlags().StringVar(&userToken, "user-token", "", "User bearer token (env: "+userTokenEnv+")")
	AuthzCmd.AddCommand(whoamiCmd)
	AuthzCmd.AddCommand(checkCmd)
}

func resolveUserToken() (string, error) {
	token := userToken
	if token == "" {
		token = os.Getenv(userTokenEnv)
	}
	if token == "" {
		return "", fmt.Errorf("--user-token or %s is required", userTokenEnv)
	}
	return token, nil
}

func newBundle() (*cmdutil.AuthBundle, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := logrus.StandardLogger()
	if !cfg.Debug {
		logger.SetLevel(logrus.WarnLevel)
	}
	return cmdutil.NewAuthBundle(cfg, clock.New(), logger)
}
