package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"moin2git/internal/app"
	"moin2git/internal/config"
	"moin2git/internal/wiki"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "migrate", "users").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.Load(defaults["config_path"], defaults["base_dir"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:          "moin2git",
	Short:        "Migrate MoinMoin wiki history into Git",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.Load(defaults["config_path"], defaults["base_dir"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:    %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		fmt.Printf("Extension:   %s\n", cfg.Migrate.Extension)
		fmt.Printf("Renderer:    %s (%s)\n", cfg.Renderer.Type, cfg.Renderer.Command)
		fmt.Printf("Converter:   %s\n", cfg.Converter.Type)
		fmt.Printf("Ledger:      %s\n", cfg.Ledger.Type)
		fmt.Printf("Attachments: %s\n", cfg.Attachments.Type)
		return nil
	},
}

// migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate DATA_DIR GIT_REPO",
	Short: "Replay wiki page history into a Git repository",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		toRST, _ := cmd.Flags().GetBool("convert-to-rst")
		target, _ := cmd.Flags().GetString("to")
		ext, _ := cmd.Flags().GetString("ext")
		if toRST {
			target = "rst"
		}

		a, err := newApp("migrate")
		if err != nil {
			return err
		}
		defer a.Close()

		run, err := a.Migrate(cmd.Context(), app.MigrateRequest{
			DataDir:   args[0],
			RepoPath:  args[1],
			Target:    target,
			Extension: ext,
		})
		if run != nil {
			printSummary(run)
		}
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		return nil
	},
}

func printSummary(run *wiki.Run) {
	s := run.Summary
	fmt.Printf("Run %s: %s\n", run.ID, run.Status)
	fmt.Printf("  pages migrated:   %d\n", s.PagesMigrated)
	fmt.Printf("  pages skipped:    %d\n", s.PagesSkipped)
	fmt.Printf("  commits:          %d\n", s.Commits)
	fmt.Printf("  unchanged:        %d\n", s.Unchanged)
	fmt.Printf("  already imported: %d\n", s.AlreadyImported)
	fmt.Printf("  failed:           %d\n", s.FailedRevisions)
}

// users command
var usersCmd = &cobra.Command{
	Use:   "users DATA_DIR",
	Short: "Print wiki accounts as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("users")
		if err != nil {
			return err
		}
		defer a.Close()

		users, err := a.Users(args[0])
		if err != nil {
			return err
		}

		return users.WriteJSON(os.Stdout)
	},
}

// attachments command
var attachmentsCmd = &cobra.Command{
	Use:   "attachments DATA_DIR DEST",
	Short: "Copy page attachments to a directory or s3://bucket/prefix",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("attachments")
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.CopyAttachments(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("copying attachments: %w", err)
		}

		fmt.Printf("Copied %d file(s) from %d page(s)\n", summary.Files, summary.Pages)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history GIT_REPO",
	Short: "View migration runs recorded for a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("history")
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(args[0], limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No migration runs recorded.")
			return nil
		}

		for _, run := range runs {
			duration := ""
			if run.FinishedAt != nil {
				duration = run.FinishedAt.Sub(run.StartedAt).Truncate(time.Millisecond).String()
			}
			fmt.Printf("%s  %s  %-8s  commits:%d  failed:%d  %s\n",
				run.ID,
				run.StartedAt.Local().Format("2006-01-02 15:04:05"),
				run.Status,
				run.Summary.Commits,
				run.Summary.FailedRevisions,
				duration,
			)
		}
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().Bool("convert-to-rst", false, "Convert page bodies to reStructuredText")
	migrateCmd.Flags().String("to", "", "Convert page bodies to the given markup format")
	migrateCmd.Flags().String("ext", "", "File extension for page files (default from config)")
	migrateCmd.MarkFlagsMutuallyExclusive("convert-to-rst", "to")
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(attachmentsCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show (0 for all)")
}
