// Command remind is the Patro Data reminder CLI.
//
// Usage:
//
//	patro-remind upcoming --days 7
//	patro-remind scan
//	patro-remind send-test --body "hello"
//	patro-remind flags list
//	patro-remind flags clear --prefix reminder:fired:
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sajilopatro/patro-data/internal/calendar"
	"github.com/sajilopatro/patro-data/internal/config"
	"github.com/sajilopatro/patro-data/internal/flagstore"
	"github.com/sajilopatro/patro-data/internal/holiday"
	"github.com/sajilopatro/patro-data/internal/notifications"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "patro-remind",
		Short: "Patro Data reminder CLI",
	}

	root.AddCommand(upcomingCmd())
	root.AddCommand(scanCmd())
	root.AddCommand(sendTestCmd())
	root.AddCommand(flagsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// upcoming command
// --------------------------------------------------------------------------

func upcomingCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List upcoming holidays and rest days",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(func(ctx context.Context, cfg *config.Config, provider *calendar.Provider, store flagstore.Store) error {
				if days < 0 {
					days = cfg.WindowDays
				}
				now := time.Now().In(cfg.Location())
				events := holiday.FindUpcoming(ctx, provider, days, now)
				if len(events) == 0 {
					fmt.Println("No upcoming holidays in window")
					return nil
				}
				for _, ev := range events {
					kind := "holiday"
					if !ev.IsHoliday {
						kind = "rest day"
					}
					fired := ""
					if _, ok := store.Get(ctx, flagstore.FiredKey(ev.Date, ev.Name)); ok {
						fired = "  [reminded]"
					}
					fmt.Printf("%s  %s BS  %-10s %s%s\n",
						ev.Date.Format("2006-01-02 Mon"), ev.BS, kind, ev.Name, fired)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", -1, "Forward window in days (default: configured window)")
	return cmd
}

// --------------------------------------------------------------------------
// scan command
// --------------------------------------------------------------------------

func scanCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one reminder evaluation pass (fires due reminders)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(func(ctx context.Context, cfg *config.Config, provider *calendar.Provider, store flagstore.Store) error {
				if days < 0 {
					days = cfg.WindowDays
				}
				sender := notifications.NewSender(cfg.ShoutrrrURLs, logger)
				sched := notifications.NewScheduler(store, sender, nil, logger, cfg.Location())
				// One-shot process: armed timers would never fire, drop them.
				defer sched.Stop()

				now := time.Now().In(cfg.Location())
				events := holiday.FindUpcoming(ctx, provider, days, now)
				result := sched.Evaluate(ctx, events)
				fmt.Println(result.Summary())
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", -1, "Forward window in days (default: configured window)")
	return cmd
}

// --------------------------------------------------------------------------
// send-test command
// --------------------------------------------------------------------------

func sendTestCmd() *cobra.Command {
	var title, body string
	cmd := &cobra.Command{
		Use:   "send-test",
		Short: "Send a test notification through the configured transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			sender := notifications.NewSender(cfg.ShoutrrrURLs, logger)
			if err := sender.Send(ctx, title, body); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Println("Sent")
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "Patro Data", "Notification title")
	cmd.Flags().StringVar(&body, "body", "Test notification", "Notification body")
	return cmd
}

// --------------------------------------------------------------------------
// flags command
// --------------------------------------------------------------------------

func flagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flags",
		Short: "Inspect or clear persisted reminder flags",
	}
	cmd.AddCommand(flagsListCmd())
	cmd.AddCommand(flagsClearCmd())
	return cmd
}

func flagsListCmd() *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(func(ctx context.Context, cfg *config.Config, provider *calendar.Provider, store flagstore.Store) error {
				lister, ok := store.(flagstore.Lister)
				if !ok {
					return fmt.Errorf("store backend cannot enumerate flags")
				}
				flags := lister.List(ctx, prefix)
				keys := make([]string, 0, len(flags))
				for k := range flags {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Printf("%s = %s\n", k, flags[k])
				}
				fmt.Printf("%d flag(s)\n", len(keys))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix filter")
	return cmd
}

func flagsClearCmd() *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove stored flags under a prefix",
		RunE: func(cmd *cobra.Command, args []string) error {
			if prefix == "" {
				return fmt.Errorf("--prefix is required (refusing to clear everything implicitly)")
			}
			return withEnv(func(ctx context.Context, cfg *config.Config, provider *calendar.Provider, store flagstore.Store) error {
				lister, ok := store.(flagstore.Lister)
				if !ok {
					return fmt.Errorf("store backend cannot enumerate flags")
				}
				n := 0
				for k := range lister.List(ctx, prefix) {
					store.Remove(ctx, k)
					n++
				}
				fmt.Printf("Removed %d flag(s)\n", n)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix to clear")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// withEnv loads config, opens the flag store and calendar provider, and
// runs fn with an interrupt-aware context.
func withEnv(fn func(ctx context.Context, cfg *config.Config, provider *calendar.Provider, store flagstore.Store) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var store flagstore.Store
	if cfg.DatabaseURL != "" {
		pg, err := flagstore.OpenPostgres(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return fmt.Errorf("open postgres flag store: %w", err)
		}
		defer pg.Close()
		store = pg
	} else {
		store = flagstore.OpenFile(cfg.FlagFile, logger)
	}

	provider := calendar.NewProvider(calendar.NewFileLoader(cfg.DataDir), logger)
	return fn(ctx, cfg, provider, store)
}
