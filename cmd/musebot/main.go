package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"musebot/internal/config"
	"musebot/internal/dialogue"
	"musebot/internal/extract"
	"musebot/internal/logging"
	"musebot/internal/orchestrator"
	"musebot/internal/store"
	"musebot/internal/temporal"
)

const version = "1.0.0"

var (
	// Global flags
	configPath string
	verbose    bool

	// Loaded in PersistentPreRunE, shared by every subcommand
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "musebot",
	Short: "musebot - museum ticket booking assistant",
	Long: `musebot is a slot-filling dialogue assistant for booking museum tickets.

It extracts names, dates, times, and ticket counts from free-form messages,
fills the booking slot by slot, and validates the visit against the museum's
opening rules before confirming.

Run without arguments to start the interactive chat interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if verbose {
			cfg.Logging.DebugMode = true
			cfg.Logging.Level = "debug"
		}
		if err := logging.Initialize(logging.Options{
			Dir:        cfg.Logging.Dir,
			DebugMode:  cfg.Logging.DebugMode,
			JSONFormat: cfg.Logging.JSONFormat,
			Level:      cfg.Logging.Level,
			Categories: cfg.Logging.Categories,
		}); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		logging.Get(logging.CategoryBoot).Infof("musebot %s starting, config %s", version, configPath)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

// configCmd manages the on-disk configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage musebot configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config already exists at %s", configPath)
		}
		if err := config.DefaultConfig().Save(configPath); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Printf("Wrote default config to %s\n", configPath)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		open, closeMin, err := cfg.Booking.Window()
		if err != nil {
			return err
		}
		fmt.Printf("Config:    %s\n", configPath)
		fmt.Printf("Museum:    %s\n", cfg.Name)
		fmt.Printf("Open:      %02d:%02d - %02d:%02d\n",
			open/60, open%60, closeMin/60, closeMin%60)
		fmt.Printf("Closed on: %s\n", cfg.Booking.ClosedWeekday)
		fmt.Printf("Extractor: %s\n", cfg.Extractor.Provider)
		fmt.Printf("Session TTL: %s\n", cfg.GetSessionTTL())
		return nil
	},
}

// statusCmd shows a quick readiness summary
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show musebot status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("musebot Status")
		fmt.Println("==============")
		fmt.Printf("Version: %s\n", version)

		if err := cfg.Validate(); err != nil {
			fmt.Printf("✗ Config invalid: %v\n", err)
			return nil
		}
		fmt.Println("✓ Config valid")

		switch cfg.Extractor.Provider {
		case "gemini":
			if cfg.Extractor.APIKey != "" {
				fmt.Println("✓ Gemini extractor configured")
			} else {
				fmt.Println("✗ Gemini extractor selected but no API key")
			}
		default:
			fmt.Println("✓ Rule-based extractor (no network needed)")
		}
		return nil
	},
}

// buildOrchestrator assembles the message pipeline from the loaded config.
func buildOrchestrator(c *config.Config) (*orchestrator.Orchestrator, *store.Store, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	extractor, err := extract.New(c)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build extractor: %w", err)
	}

	st := store.New(c.GetSessionTTL(), c.GetSweepInterval())
	policy := dialogue.NewPolicy(temporal.NewNormalizer(time.Now))

	orch, err := orchestrator.New(st, extractor, policy, c.Booking, nil)
	if err != nil {
		return nil, nil, err
	}
	return orch, st, nil
}

// watchConfig hot-reloads booking rules when the config file changes. Returns
// a no-op stop func when the config file does not exist yet.
func watchConfig(orch *orchestrator.Orchestrator) func() {
	watcher, err := config.NewWatcher(configPath, func(next *config.Config) {
		if err := orch.SetBookingRules(next.Booking); err != nil {
			logging.Get(logging.CategoryConfig).Warnf("reload rejected: %v", err)
		}
	})
	if err != nil {
		logging.Get(logging.CategoryConfig).Debugf("config watch disabled: %v", err)
		return func() {}
	}
	if err := watcher.Start(rootCmd.Context()); err != nil {
		logging.Get(logging.CategoryConfig).Debugf("config watch disabled: %v", err)
		return func() {}
	}
	return watcher.Stop
}

func init() {
	// Assigned here rather than in the composite literal to avoid an
	// initialization cycle (runInteractiveChat transitively uses rootCmd).
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch interactive chat
		return runInteractiveChat()
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(scriptCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
