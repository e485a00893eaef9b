package catalogctl

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/catalog-console/internal/app"
	"github.com/sandeepkv93/catalog-console/internal/di"
	"github.com/sandeepkv93/catalog-console/internal/observability"
	"github.com/sandeepkv93/catalog-console/internal/tools/common"
	"github.com/sandeepkv93/catalog-console/internal/tools/loadgen"
	"github.com/sandeepkv93/catalog-console/internal/tools/ui"
	"github.com/sandeepkv93/catalog-console/internal/tui"
	"github.com/sandeepkv93/catalog-console/internal/validation"
)

type options struct {
	envFile string
	baseURL string
	ci      bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "catalog", Short: "Product catalog console"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "product API base URL (overrides CATALOG_API_URL)")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(
		newServeCommand(opts),
		newTUICommand(opts),
		newListCommand(opts),
		newAddCommand(opts),
		newDeleteCommand(opts),
		newValidateCommand(opts),
		newImportCommand(opts),
		newExportCommand(opts),
		newLoadgenCommand(opts),
	)
	return cmd
}

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			a, err := loadApp(opts, false)
			if err != nil {
				return err
			}
			serveErr := a.Serve(ctx)
			if err := a.Close(context.Background()); err != nil && serveErr == nil {
				serveErr = err
			}
			return serveErr
		},
	}
}

func newTUICommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse and edit the catalog in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			a, err := loadApp(opts, true)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())
			return tui.Run(ctx, a.Products, a.Validator, a.Validator.Fields(), a.Logger)
		},
	}
}

func newListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List products",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "catalog list", func(ctx context.Context, a *app.App) ([]string, error) {
				return listProducts(ctx, a.Products, a.Logger)
			})
		},
	}
}

func newAddCommand(opts *options) *cobra.Command {
	var name, price, image string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Validate and create a product",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "catalog add", func(ctx context.Context, a *app.App) ([]string, error) {
				return addProduct(ctx, a.Products, a.Validator, a.Logger, map[string]string{
					validation.FieldName:  name,
					validation.FieldPrice: price,
					validation.FieldImage: image,
				})
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "product name")
	cmd.Flags().StringVar(&price, "price", "", "product price")
	cmd.Flags().StringVar(&image, "image", "", "product image URL")
	return cmd
}

func newDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "catalog delete", func(ctx context.Context, a *app.App) ([]string, error) {
				return deleteProduct(ctx, a.Products, a.Logger, args[0])
			})
		},
	}
}

func newValidateCommand(opts *options) *cobra.Command {
	var field, value string
	var purge bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run the field validator once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "catalog validate", func(ctx context.Context, a *app.App) ([]string, error) {
				var details []string
				if purge {
					if err := a.ProbeCache.Purge(ctx); err != nil {
						return nil, fmt.Errorf("purge probe cache: %w", err)
					}
					details = append(details, "probe cache purged")
				}
				out, err := validateValue(ctx, a.Validator, field, value)
				return append(details, out...), err
			})
		},
	}
	cmd.Flags().StringVar(&field, "field", validation.FieldName, "field to validate (name, price, image)")
	cmd.Flags().StringVar(&value, "value", "", "value to validate")
	cmd.Flags().BoolVar(&purge, "purge-cache", false, "drop remembered image probes first")
	return cmd
}

func newImportCommand(opts *options) *cobra.Command {
	var sheet string
	cmd := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Validate and create products from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "catalog import", func(ctx context.Context, a *app.App) ([]string, error) {
				rows, err := readWorkbook(args[0], sheet)
				if err != nil {
					return nil, err
				}
				return importRows(ctx, rows, a.Products, a.Validator, a.Logger)
			})
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "sheet to read (default first sheet)")
	return cmd
}

func newExportCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Write the current product list to a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "catalog export", func(ctx context.Context, a *app.App) ([]string, error) {
				return exportProducts(ctx, a.Products, args[0])
			})
		},
	}
}

func newLoadgenCommand(opts *options) *cobra.Command {
	cfg := loadgen.Config{}
	cmd := &cobra.Command{
		Use:   "loadgen",
		Short: "Generate traffic against a running web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			details, err := run(ctx, opts, "catalog loadgen", func(ctx context.Context) ([]string, error) {
				res, err := loadgen.Run(ctx, cfg)
				if err != nil {
					return nil, err
				}
				return res.Details(), nil
			})
			if opts.ci {
				common.PrintCIResult(err == nil, "catalog loadgen", details, err)
			}
			if err != nil {
				os.Exit(4)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.BaseURL, "target", "http://localhost:8080", "web UI base URL")
	cmd.Flags().StringVar(&cfg.Profile, "profile", "mixed", "traffic profile: browse|validate|mixed")
	cmd.Flags().DurationVar(&cfg.Duration, "duration", 15*time.Second, "traffic duration")
	cmd.Flags().IntVar(&cfg.RPS, "rps", 20, "requests per second")
	cmd.Flags().IntVar(&cfg.Concurrency, "concurrency", 6, "concurrent workers")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", 42, "random seed")
	return cmd
}

// execute runs a one-shot command under the spinner view, or plainly with
// JSON output in --ci mode.
func execute(opts *options, title string, fn func(context.Context, *app.App) ([]string, error)) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var details []string
	a, err := loadApp(opts, true)
	if err == nil {
		details, err = run(ctx, opts, title, func(ctx context.Context) ([]string, error) {
			return fn(ctx, a)
		})
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		observability.RecordToolCommandRun(ctx, title, outcome)
		_ = a.Close(context.Background())
	}
	if opts.ci {
		common.PrintCIResult(err == nil, title, details, err)
	} else if a == nil && err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	if err != nil {
		os.Exit(3)
	}
	return nil
}

func run(ctx context.Context, opts *options, title string, fn func(context.Context) ([]string, error)) ([]string, error) {
	if opts.ci {
		return fn(ctx)
	}
	return ui.Run(ctx, title, fn)
}

// loadApp resolves configuration the way the server does. Terminal commands
// keep logs off the screen unless LOG_FILE says otherwise.
func loadApp(opts *options, quietLogs bool) (*app.App, error) {
	if err := common.LoadEnvFile(opts.envFile); err != nil {
		return nil, err
	}
	if opts.baseURL != "" {
		if err := os.Setenv("CATALOG_API_URL", opts.baseURL); err != nil {
			return nil, err
		}
	}
	if quietLogs {
		common.SetEnvDefault("LOG_FILE", "discard")
	}
	return di.InitializeApp()
}
