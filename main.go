package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"klaxon/cmd"
	"klaxon/internal/broker"
	"klaxon/internal/config"
	"klaxon/internal/environment"
	"klaxon/internal/instance"
	"klaxon/internal/notify"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "klaxon",
		Short: "Klaxon - Publish application events to operator notification channels",
		Long: `Klaxon composes human-readable notifications (subject + body) from
structured context and delivers them best-effort to pre-configured operations
and developer channels via Slack, Microsoft Teams, Telegram, Email, or a
generic webhook. Delivery is a single attempt; failures are logged, never
raised.`,
	}

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("klaxon version %s (commit: %s)\n", version, commit)
		},
	})

	opsCmd := &cobra.Command{
		Use:   "ops <subject> <message>",
		Short: "Send a notification to the operations channel",
		Args:  cobra.ExactArgs(2),
		RunE:  runOps,
	}

	devCmd := &cobra.Command{
		Use:   "dev <subject> [message]",
		Short: "Send a notification with diagnostic context to the developer channel",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runDev,
	}
	devCmd.Flags().String("error", "", "Error text to attach as stackTrace detail")
	devCmd.Flags().StringArray("field", nil, "Extra body field as key=value (repeatable, order preserved)")

	rootCmd.AddCommand(opsCmd)
	rootCmd.AddCommand(devCmd)
	rootCmd.AddCommand(cmd.NewConfigureCmd())

	// Add flags
	rootCmd.PersistentFlags().String("app-code", "", "Application code name used in subjects")
	rootCmd.PersistentFlags().String("stack-name", "", "Deployment stack name used in subjects")
	rootCmd.PersistentFlags().String("ops-channel", "", "Operations channel identifier (empty disables)")
	rootCmd.PersistentFlags().String("dev-channel", "", "Developer channel identifier (empty disables)")
	rootCmd.PersistentFlags().StringSlice("profiles", nil, "Active deployment profiles (comma-separated)")
	rootCmd.PersistentFlags().String("broker", "", "Broker transport: webhook, slack, teams, telegram, or email")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Bind flags to viper
	if err := bindConfigFlags(rootCmd.PersistentFlags()); err != nil {
		logrus.WithError(err).Fatal("Failed to bind flags")
	}

	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

// runOps sends a plain-text notification to the operations channel
func runOps(cmd *cobra.Command, args []string) error {
	notifier, err := buildNotifier()
	if err != nil {
		return err
	}

	notifier.NotifyOps(context.Background(), args[0], args[1])
	return nil
}

// runDev sends a notification with diagnostic context to the developer channel
func runDev(cmd *cobra.Command, args []string) error {
	fieldFlags, err := cmd.Flags().GetStringArray("field")
	if err != nil {
		return err
	}
	fields, err := parseFieldFlags(fieldFlags)
	if err != nil {
		return err
	}
	if len(args) > 1 {
		fields = append(notify.Fields{{Key: "message", Value: args[1]}}, fields...)
	}

	errText, err := cmd.Flags().GetString("error")
	if err != nil {
		return err
	}
	var notifyErr error
	if errText != "" {
		notifyErr = errors.New(errText)
	}

	notifier, err := buildNotifier()
	if err != nil {
		return err
	}

	notifier.NotifyDevFields(context.Background(), args[0], fields, notifyErr)
	return nil
}

// buildNotifier loads configuration and wires the broker and providers
func buildNotifier() (*notify.Notifier, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogging(cfg.Verbose, cfg.LogFormat)

	logger.WithFields(logrus.Fields{
		"app_code":   cfg.AppCode,
		"stack_name": cfg.StackName,
		"broker":     cfg.Broker,
		"version":    version,
	}).Debug("Starting Klaxon")

	b, err := buildBroker(cfg, logger.WithField("component", "broker"))
	if err != nil {
		return nil, err
	}

	return notify.New(
		cfg.AppCode,
		cfg.StackName,
		cfg.OpsChannel,
		cfg.DevChannel,
		b,
		environment.New(cfg.Profiles),
		instance.Collect(),
		logger.WithField("component", "notifier"),
	), nil
}

// buildBroker creates the broker transport selected by configuration
func buildBroker(cfg *config.Config, logger *logrus.Entry) (broker.Broker, error) {
	switch cfg.Broker {
	case config.BrokerWebhook:
		return broker.NewWebhookBroker(cfg.WebhookURL, logger), nil
	case config.BrokerSlack:
		return broker.NewSlackBroker(logger), nil
	case config.BrokerTeams:
		return broker.NewTeamsBroker(logger), nil
	case config.BrokerTelegram:
		return broker.NewTelegramBroker(cfg.TelegramBotURL, logger), nil
	case config.BrokerEmail:
		return broker.NewEmailBroker(
			cfg.EmailSmtpHost,
			cfg.EmailSmtpPort,
			cfg.EmailSmtpUsername,
			cfg.EmailSmtpPassword,
			cfg.EmailFrom,
			cfg.EmailUseTLS,
			logger,
		), nil
	default:
		return nil, fmt.Errorf("unknown broker: %s", cfg.Broker)
	}
}

// bindConfigFlags binds each hyphenated CLI flag to its underscore
// configuration key. A plain BindPFlags would register the flags under
// their hyphenated names, which config.Load() never reads.
func bindConfigFlags(flags *pflag.FlagSet) error {
	bindings := map[string]string{
		"app_code":    "app-code",
		"stack_name":  "stack-name",
		"ops_channel": "ops-channel",
		"dev_channel": "dev-channel",
		"profiles":    "profiles",
		"broker":      "broker",
		"verbose":     "verbose",
	}
	for key, flagName := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(flagName)); err != nil {
			return err
		}
	}
	return nil
}

// parseFieldFlags parses repeated key=value flags into ordered fields
func parseFieldFlags(flags []string) (notify.Fields, error) {
	var fields notify.Fields
	for _, flag := range flags {
		parts := strings.SplitN(flag, "=", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("invalid field %q, expected key=value", flag)
		}
		fields = fields.Add(strings.TrimSpace(parts[0]), parts[1])
	}
	return fields, nil
}

// setupLogging configures the logging system
func setupLogging(verbose bool, format string) *logrus.Entry {
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}

	if format == "text" {
		logrus.SetFormatter(&logrus.TextFormatter{})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	// Return a base logger entry
	return logrus.WithField("service", "klaxon")
}
