package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/cmd/authz"
	"github.com/akshitachotaliya-itmtb/audit-BE/cmd/auditapi/internal/config"
)

var (
	cfg     *config.Config
	cfgFile string
	logger  = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "auditapi",
	Short: "Internal audit platform API server",
	Long: `auditapi serves the company master, engagement and reference data
endpoints of the internal audit platform behind service and user token
authentication.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(config.Load)
	},
}

// loadConfig reads the optional config file, then fills cfg with load.
func loadConfig(load func() (*config.Config, error)) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var err error
	cfg, err = load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	configureLogger(cfg.Debug)
	return nil
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Path to a config file (yaml, json or toml)")
	flags.String("db-url", "", "Database connection URL (env: DATABASE_URL)")
	flags.String("server-addr", "", "Server bind address (env: AUDIT_SERVER_ADDR)")
	flags.String("metrics-addr", "", "Prometheus scrape address, empty to disable (env: AUDIT_METRICS_ADDR)")
	flags.Bool("debug", false, "Enable debug logging (env: AUDIT_DEBUG)")

	for key, flag := range map[string]string{
		"database_url": "db-url",
		"server_addr":  "server-addr",
		"metrics_addr": "metrics-addr",
		"debug":        "debug",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(authz.AuthzCmd)
}

func configureLogger(debug bool) {
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
