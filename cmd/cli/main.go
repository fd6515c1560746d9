package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielhward/serviceroster/internal/config"
	"github.com/danielhward/serviceroster/pkg/core/model"
	"github.com/danielhward/serviceroster/pkg/core/services"
	"github.com/danielhward/serviceroster/pkg/postgres"
	"github.com/danielhward/serviceroster/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg      *config.Config
	database *postgres.DB
	logger   *zap.Logger
	ctx      context.Context
}

var (
	env     string
	verbose bool
	app     *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "roster",
		Short: "Service roster CLI - Generate monthly assignment schedules",
		Long:  `A CLI tool for generating monthly service schedules, assigning participant pairs to time slots with fairness balancing.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				if app.logger != nil {
					app.logger.Sync()
				}
				if app.database != nil {
					app.database.Close()
				}
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug output on the console")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(viewCmd())
	rootCmd.AddCommand(listParticipantsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, and database
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	app.logger, err = logging.InitLogger(env, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application", zap.String("environment", env))

	app.logger.Info("Loading configuration")
	app.cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.logger.Debug("Configuration loaded successfully")

	app.logger.Info("Connecting to database")
	app.database, err = postgres.NewDB(app.ctx, app.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	app.logger.Info("Running database migrations")
	if err := app.database.RunMigrations(app.ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.logger.Info("Database initialized successfully")

	return nil
}

// parseYearMonth validates the common <year> <month> argument pair
func parseYearMonth(args []string) (int, int, error) {
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("year must be a number: %w", err)
	}
	month, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("month must be a number: %w", err)
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("month must be between 1 and 12, got %d", month)
	}
	return year, month, nil
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <year> <month>",
		Short: "Generate the assignment schedule for a month",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := parseYearMonth(args)
			if err != nil {
				return err
			}

			dryRun, _ := cmd.Flags().GetBool("dry-run")
			seed, _ := cmd.Flags().GetInt64("seed")

			result, err := services.GenerateSchedule(app.ctx, app.database, app.cfg, app.logger, year, month, dryRun, seed)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Schedule generated for %d-%02d\n\n", result.Year, result.Month)
			printSchedule(result.Schedule)

			if len(result.ValidationErrors) > 0 {
				fmt.Printf("⚠️  %d validation issues:\n", len(result.ValidationErrors))
				for _, verr := range result.ValidationErrors {
					fmt.Printf("  ✗ %s %s: %s\n", verr.Date, verr.Time, verr.Description)
				}
				fmt.Println()
			}

			fmt.Println(result.Summary)

			if !result.Saved {
				fmt.Println("Dry run - nothing was saved.")
			}

			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Run without saving to database")
	cmd.Flags().Int64("seed", 0, "Seed for random decisions (0 uses the current time)")

	return cmd
}

func viewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view <year> <month>",
		Short: "View the stored schedule for a month",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := parseYearMonth(args)
			if err != nil {
				return err
			}

			result, err := services.ViewSchedule(app.ctx, app.database, app.logger, year, month)
			if err != nil {
				return err
			}

			status := "draft"
			if result.Confirmed {
				status = "confirmed"
			}
			fmt.Printf("\nSchedule for %d-%02d (%s):\n\n", result.Year, result.Month, status)
			printSchedule(result.Schedule)

			return nil
		},
	}
}

func listParticipantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listParticipants",
		Short: "List participants from the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")

			participants, err := services.ListParticipants(app.ctx, app.database, app.logger, !all)
			if err != nil {
				return fmt.Errorf("failed to list participants: %w", err)
			}

			fmt.Printf("\nFound %d participants:\n\n", len(participants))
			for _, p := range participants {
				status := "active"
				if !p.IsActive {
					status = "inactive"
				}
				fmt.Printf("- %s (%s) - %s/%s - grade %s - %s\n",
					p.Name, p.ID, p.Type, p.CopyType, p.Grade, status)
			}

			return nil
		},
	}

	cmd.Flags().Bool("all", false, "Include inactive participants")

	return cmd
}

// printSchedule writes a month's schedule day by day
func printSchedule(schedule []model.DaySchedule) {
	for _, day := range schedule {
		fmt.Printf("%s\n", day.Date)
		for _, slot := range day.TimeSlots {
			names := "(unfilled)"
			if len(slot.AssignedNames) > 0 {
				names = strings.Join(slot.AssignedNames, ", ")
			}
			fmt.Printf("  %s [%s] %s\n", slot.Time, slot.Type, names)
		}
	}
	fmt.Println()
}
