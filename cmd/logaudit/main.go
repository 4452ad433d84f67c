package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/cyra/logaudit/internal/config"
	"github.com/cyra/logaudit/internal/logging"
)

var (
	version = "dev" // Set via ldflags: -X main.version=v1.0.0

	configPath string
	debug      bool
	jsonLogs   bool

	appConfig *config.Config
	appFs     = afero.NewOsFs()
	logger    = logging.Discard()

	osExit = os.Exit
)

var rootCmd = &cobra.Command{
	Use:   "logaudit",
	Short: "Turn Gerrit httpd_log and sshd_log files into audit logs.",
	Long: `logaudit reads Gerrit access logs (httpd_log, sshd_log), normalizes every
request into an audit event and writes it as a pipe-delimited CSV line or a
JSON document.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadOrDefault(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if debug {
			cfg.Logging.Level = "debug"
		}
		if jsonLogs {
			cfg.Logging.JSON = true
		}
		appConfig = cfg
		logger = logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.JSON)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file (defaults are used when empty)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Write logs as JSON lines")

	rootCmd.AddCommand(newTransformCmd(), newConvertCmd(), newFollowCmd(), newVersionCmd())
}

func main() {
	ctx, cancel := signalContext()
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logFatal("logaudit failed", err)
	}
}

// logFatal logs err and exits with status 1.
func logFatal(msg string, err error, kv ...any) {
	logger.Error(msg, append(kv, slog.String("error", err.Error()))...)
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	osExit(1)
}

// signalContext returns a context that is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
