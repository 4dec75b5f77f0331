// Package cli provides the Cobra-based CLI for the Answer King backend.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"answerking/domain"
	"answerking/service"
	"answerking/store"
)

var (
	rootCmd = &cobra.Command{
		Use:           "answerking",
		Short:         "Answer King ordering backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// tests inject dataStore
			if dataStore != nil {
				return nil
			}

			if cfg := viper.GetString("config"); cfg != "" {
				viper.SetConfigFile(cfg)
				if err := viper.ReadInConfig(); err != nil {
					return err
				}
			}
			configureLogging()

			ctx := commandContext(cmd)
			s, err := store.NewStore(ctx,
				viper.GetString("store"),
				viper.GetString("store-file"),
				viper.GetString("dsn"),
			)
			if err != nil {
				return err
			}
			dataStore = s
			slog.Debug("store opened", "store", viper.GetString("store"), "sqlite_driver", store.BuildMode)

			if viper.GetBool("seed") {
				seeded, err := store.Seed(ctx, dataStore)
				if err != nil {
					return fmt.Errorf("seed: %w", err)
				}
				slog.Debug("seed checked", "seeded", seeded)
			}
			return nil
		},
	}

	dataStore domain.Store
)

func init() {
	rootCmd.PersistentFlags().String("store", store.KindMemory, "store backend: memory|file|sqlite|mysql")
	rootCmd.PersistentFlags().String("store-file", "data/answerking.json", "file store path (also the sqlite database when --dsn is empty)")
	rootCmd.PersistentFlags().String("dsn", "", "sql data source name")
	rootCmd.PersistentFlags().Bool("seed", false, "write the starter catalog into an empty store")
	rootCmd.PersistentFlags().String("config", "", "config file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text|json")

	bindConfig()
}

// bindConfig wires the persistent flags and ANSWERKING_* environment
// variables into viper.
func bindConfig() {
	for _, name := range []string{"store", "store-file", "dsn", "seed", "config", "log-level", "log-format"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
	viper.SetEnvPrefix("ANSWERKING")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func configureLogging() {
	lvl := slog.LevelInfo
	switch strings.ToLower(viper.GetString("log-level")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if strings.EqualFold(viper.GetString("log-format"), "json") {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// services are the use cases of one command invocation.
type services struct {
	products   *service.ProductService
	categories *service.CategoryService
	tags       *service.TagService
	orders     *service.OrderService
	payments   *service.PaymentService
}

func newServices(s domain.Store, log *slog.Logger) *services {
	return &services{
		products:   service.NewProductService(s.Products(), s.Categories(), s.Tags(), log),
		categories: service.NewCategoryService(s.Categories(), s.Products(), log),
		tags:       service.NewTagService(s.Tags(), s.Products(), log),
		orders:     service.NewOrderService(s.Orders(), s.Products(), s.Categories(), s.Tags(), log),
		payments:   service.NewPaymentService(s.Payments(), s.Orders(), log),
	}
}

type handler func(ctx context.Context, svc *services, cmd *cobra.Command, args []string) error

// run wraps a command body with a request id and a timing log line.
func run(fn handler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if dataStore == nil {
			return errors.New("no store configured")
		}
		ctx := commandContext(cmd)
		log := slog.Default().With("request_id", uuid.NewString(), "command", cmd.CommandPath())

		start := time.Now()
		err := fn(ctx, newServices(dataStore, log), cmd, args)
		elapsed := time.Since(start).Milliseconds()
		if err != nil {
			log.ErrorContext(ctx, "command failed",
				"kind", service.KindOf(err).String(), "error", err, "duration_ms", elapsed)
			return err
		}
		log.InfoContext(ctx, "command completed", "duration_ms", elapsed)
		return nil
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// resetFlags restores every subcommand flag to its default so that
// repeated executions in one process start clean.
func resetFlags(c *cobra.Command) {
	for _, sub := range c.Commands() {
		sub.LocalNonPersistentFlags().VisitAll(func(f *pflag.Flag) {
			if sv, ok := f.Value.(pflag.SliceValue); ok {
				_ = sv.Replace(nil)
			} else {
				_ = f.Value.Set(f.DefValue)
			}
			f.Changed = false
		})
		resetFlags(sub)
	}
}

// Execute runs the root command and closes the store it opened.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext is Execute with a caller supplied context.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if dataStore != nil {
		if cerr := dataStore.Close(); cerr != nil && err == nil {
			err = cerr
		}
		dataStore = nil
	}
	return err
}
