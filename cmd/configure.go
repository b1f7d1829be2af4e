package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"klaxon/internal/broker"
	"klaxon/internal/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

// NewConfigureCmd creates the configure subcommand
func NewConfigureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactively configure Klaxon settings",
		Long: `Configure Klaxon in interactive mode.

This command will guide you through setting up:
- Application identity (code name, stack, profiles)
- Operations and developer channels
- Broker transport

The configuration will be saved to config.yaml and the broker will be tested.`,
		RunE: runConfigure,
	}
}

// ConfigWizard holds the wizard configuration
type ConfigWizard struct {
	// Identity
	AppCode   string
	StackName string
	Profiles  []string

	// Channels
	OpsChannel string
	DevChannel string

	// Broker
	Broker string

	// Webhook
	WebhookURL string

	// Telegram
	TelegramBotURL string

	// Email
	EmailSMTPHost     string
	EmailSMTPPort     int
	EmailSMTPUsername string
	EmailSMTPPassword string
	EmailFrom         string
	EmailUseTLS       bool
}

func runConfigure(cmd *cobra.Command, args []string) error {
	fmt.Println("\nKlaxon Configuration Wizard")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()

	wizard := &ConfigWizard{}

	// Step 1: Application Identity
	if err := configureIdentity(wizard); err != nil {
		return err
	}

	// Step 2: Channels
	if err := configureChannels(wizard); err != nil {
		return err
	}

	// Step 3: Broker Transport
	if err := configureBroker(wizard); err != nil {
		return err
	}

	// Step 4: Test Notification
	if wizard.OpsChannel != "" || wizard.DevChannel != "" {
		if err := testNotification(wizard); err != nil {
			fmt.Printf("\nWarning: Notification test failed: %v\n", err)
			fmt.Println("You can still save the configuration and fix it later.")

			var proceed bool
			prompt := &survey.Confirm{
				Message: "Do you want to save the configuration anyway?",
				Default: true,
			}
			if err := survey.AskOne(prompt, &proceed); err != nil {
				return err
			}
			if !proceed {
				return fmt.Errorf("configuration cancelled")
			}
		} else {
			fmt.Println("\nNotification test successful!")
		}
	}

	// Step 5: Save Configuration
	if err := saveConfiguration(wizard); err != nil {
		return err
	}

	fmt.Println("\nConfiguration saved successfully!")
	fmt.Println("\nYou can now run: klaxon ops \"subject\" \"message\"")
	fmt.Println()

	return nil
}

func configureIdentity(wizard *ConfigWizard) error {
	fmt.Println("Application Identity")
	fmt.Println(strings.Repeat("-", 60))

	questions := []*survey.Question{
		{
			Name: "appCode",
			Prompt: &survey.Input{
				Message: "Application code name:",
				Help:    "Short name that prefixes every subject, e.g. myapp",
			},
			Validate: survey.Required,
		},
		{
			Name: "stackName",
			Prompt: &survey.Input{
				Message: "Deployment stack name:",
				Default: "local",
				Help:    "e.g. prod, staging, local",
			},
		},
	}

	if err := survey.Ask(questions, wizard); err != nil {
		return err
	}

	var profilesInput string
	prompt := &survey.Input{
		Message: "Active profiles (comma-separated):",
		Help:    "Example: prod,aws",
	}
	if err := survey.AskOne(prompt, &profilesInput); err != nil {
		return err
	}

	for _, p := range strings.Split(profilesInput, ",") {
		if p = strings.TrimSpace(p); p != "" {
			wizard.Profiles = append(wizard.Profiles, p)
		}
	}

	return nil
}

func configureChannels(wizard *ConfigWizard) error {
	fmt.Println("\nNotification Channels")
	fmt.Println(strings.Repeat("-", 60))

	questions := []*survey.Question{
		{
			Name: "opsChannel",
			Prompt: &survey.Input{
				Message: "Operations channel identifier (empty to disable):",
				Help:    "Destination for the selected broker: webhook URL, chat ID, or recipient list",
			},
		},
		{
			Name: "devChannel",
			Prompt: &survey.Input{
				Message: "Developer channel identifier (empty to disable):",
				Help:    "Destination for the selected broker: webhook URL, chat ID, or recipient list",
			},
		},
	}

	return survey.Ask(questions, wizard)
}

func configureBroker(wizard *ConfigWizard) error {
	fmt.Println("\nBroker Transport")
	fmt.Println(strings.Repeat("-", 60))

	var brokerOptions = []string{
		"Generic Webhook",
		"Slack",
		"Microsoft Teams",
		"Telegram",
		"Email",
	}

	var selected string
	prompt := &survey.Select{
		Message: "Select broker transport:",
		Options: brokerOptions,
		Default: "Generic Webhook",
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return err
	}

	switch selected {
	case "Generic Webhook":
		wizard.Broker = config.BrokerWebhook
		return configureWebhook(wizard)
	case "Slack":
		wizard.Broker = config.BrokerSlack
	case "Microsoft Teams":
		wizard.Broker = config.BrokerTeams
	case "Telegram":
		wizard.Broker = config.BrokerTelegram
		return configureTelegram(wizard)
	case "Email":
		wizard.Broker = config.BrokerEmail
		return configureEmail(wizard)
	}

	// Slack and Teams need nothing extra: the channel identifiers carry
	// the webhook URLs
	return nil
}

func configureWebhook(wizard *ConfigWizard) error {
	question := &survey.Input{
		Message: "Webhook URL:",
		Help:    "Endpoint that receives the channel/subject/body JSON payload",
	}

	return survey.AskOne(question, &wizard.WebhookURL, survey.WithValidator(survey.Required))
}

func configureTelegram(wizard *ConfigWizard) error {
	question := &survey.Input{
		Message: "Telegram Bot URL:",
		Help:    "Format: https://api.telegram.org/botTOKEN/sendMessage (channels are chat IDs)",
	}

	return survey.AskOne(question, &wizard.TelegramBotURL, survey.WithValidator(survey.Required))
}

func configureEmail(wizard *ConfigWizard) error {
	questions := []*survey.Question{
		{
			Name: "emailSMTPHost",
			Prompt: &survey.Input{
				Message: "SMTP Server Host:",
				Help:    "e.g., smtp.gmail.com",
			},
			Validate: survey.Required,
		},
		{
			Name: "emailSMTPPort",
			Prompt: &survey.Input{
				Message: "SMTP Server Port:",
				Default: "587",
			},
			Validate: survey.Required,
		},
		{
			Name: "emailSMTPUsername",
			Prompt: &survey.Input{
				Message: "SMTP Username (usually your email):",
			},
		},
		{
			Name: "emailSMTPPassword",
			Prompt: &survey.Password{
				Message: "SMTP Password:",
			},
		},
		{
			Name: "emailFrom",
			Prompt: &survey.Input{
				Message: "From Email Address:",
			},
			Validate: survey.Required,
		},
		{
			Name: "emailUseTLS",
			Prompt: &survey.Confirm{
				Message: "Use TLS?",
				Default: true,
			},
		},
	}

	return survey.Ask(questions, wizard)
}

func testNotification(wizard *ConfigWizard) error {
	fmt.Println("\nTesting broker transport...")

	logger := logrus.NewEntry(logrus.New())
	logger.Logger.SetOutput(os.Stderr)        // Send logs to stderr to keep output clean
	logger.Logger.SetLevel(logrus.ErrorLevel) // Only show errors

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var b broker.Broker

	switch wizard.Broker {
	case config.BrokerWebhook:
		b = broker.NewWebhookBroker(wizard.WebhookURL, logger)
	case config.BrokerSlack:
		b = broker.NewSlackBroker(logger)
	case config.BrokerTeams:
		b = broker.NewTeamsBroker(logger)
	case config.BrokerTelegram:
		b = broker.NewTelegramBroker(wizard.TelegramBotURL, logger)
	case config.BrokerEmail:
		b = broker.NewEmailBroker(
			wizard.EmailSMTPHost,
			wizard.EmailSMTPPort,
			wizard.EmailSMTPUsername,
			wizard.EmailSMTPPassword,
			wizard.EmailFrom,
			wizard.EmailUseTLS,
			logger,
		)
	default:
		return fmt.Errorf("unknown broker: %s", wizard.Broker)
	}

	// Prefer the dev channel for the test, fall back to ops
	channel := wizard.DevChannel
	if channel == "" {
		channel = wizard.OpsChannel
	}

	testBody := "Klaxon configuration test\n\nThis is a test message from the configure command.\nIf you see this, your broker transport is working correctly!"

	if err := b.Publish(ctx, channel, "Klaxon Configuration Test", testBody); err != nil {
		return fmt.Errorf("failed to send test notification: %w", err)
	}

	return nil
}

func saveConfiguration(wizard *ConfigWizard) error {
	fmt.Println("\nSaving Configuration")
	fmt.Println(strings.Repeat("-", 60))

	// Build config structure using the Config struct for type safety
	cfg := &config.Config{
		AppCode:    wizard.AppCode,
		StackName:  wizard.StackName,
		Profiles:   wizard.Profiles,
		OpsChannel: wizard.OpsChannel,
		DevChannel: wizard.DevChannel,
		Broker:     wizard.Broker,
	}

	// Set broker-specific fields
	switch wizard.Broker {
	case config.BrokerWebhook:
		cfg.WebhookURL = wizard.WebhookURL
	case config.BrokerTelegram:
		cfg.TelegramBotURL = wizard.TelegramBotURL
	case config.BrokerEmail:
		cfg.EmailSmtpHost = wizard.EmailSMTPHost
		cfg.EmailSmtpPort = wizard.EmailSMTPPort
		cfg.EmailSmtpUsername = wizard.EmailSMTPUsername
		cfg.EmailSmtpPassword = wizard.EmailSMTPPassword
		cfg.EmailFrom = wizard.EmailFrom
		cfg.EmailUseTLS = wizard.EmailUseTLS
	}

	// Determine config file path
	var configPath string
	prompt := &survey.Input{
		Message: "Config file path:",
		Default: "config.yaml",
		Help:    "Where to save the configuration file",
	}
	if err := survey.AskOne(prompt, &configPath); err != nil {
		return err
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Marshal to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("\nConfiguration saved to: %s\n", configPath)

	return nil
}
