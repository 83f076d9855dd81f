package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/cartkeeper/internal/adapters/metrics"
	"github.com/bft-labs/cartkeeper/internal/cliconfig"
	"github.com/bft-labs/cartkeeper/internal/httpapi"
	"github.com/bft-labs/cartkeeper/pkg/cart"
	"github.com/bft-labs/cartkeeper/pkg/log"
	"github.com/bft-labs/cartkeeper/plugins/snapshotwatcher"
)

var exampleUsage = strings.TrimSpace(`
  cartkeeper add tea --title "Green tea" --price 4.5
  cartkeeper increment tea
  cartkeeper list --json
  cartkeeper serve --backend redis --redis-url redis://localhost:6379/0
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// app carries the resolved configuration between cobra hooks and commands.
type app struct {
	cfg     cliconfig.Config
	cfgPath string
	logger  zerolog.Logger
	out     io.Writer
}

func main() {
	a := &app{
		cfg:    cliconfig.DefaultConfig(),
		logger: cliconfig.Logger("info"),
		out:    os.Stdout,
	}

	if err := a.rootCommand().Execute(); err != nil {
		a.logger.Error().Err(err).Msg("cartkeeper")
		os.Exit(1)
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "cartkeeper",
		Short:             "Keep a persistent shopping cart on disk or in Redis",
		Example:           exampleUsage,
		Version:           fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.loadConfig,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgPath, "config", "", "path to config file (default: $HOME/.cartkeeper/config.toml)")
	flags.StringVar(&a.cfg.Backend, "backend", a.cfg.Backend, "storage backend: file, redis or memory")
	flags.StringVar(&a.cfg.DataDir, "data-dir", a.cfg.DataDir, "directory for the file backend")
	flags.StringVar(&a.cfg.RedisURL, "redis-url", a.cfg.RedisURL, "redis URL or host:port for the redis backend")
	flags.StringVar(&a.cfg.Key, "key", a.cfg.Key, "storage key of the cart snapshot")
	flags.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level: debug, info, warn or error")
	flags.IntVar(&a.cfg.WriteRetries, "write-retries", a.cfg.WriteRetries, "attempts per snapshot write")
	flags.DurationVar(&a.cfg.RetryInitial, "retry-initial", a.cfg.RetryInitial, "wait before the first write retry")
	flags.DurationVar(&a.cfg.RetryMax, "retry-max", a.cfg.RetryMax, "maximum wait between write retries")

	root.AddCommand(
		a.listCommand(),
		a.addCommand(),
		a.stepCommand("increment", "Add one unit of a product", (*cart.Cart).Increment),
		a.stepCommand("decrement", "Remove one unit of a product, dropping it at zero", (*cart.Cart).Decrement),
		a.resetCommand(),
		a.serveCommand(),
	)
	return root
}

// loadConfig resolves configuration with precedence flag > env > file > default.
func (a *app) loadConfig(cmd *cobra.Command, _ []string) error {
	cfgFile := a.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&a.cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&a.cfg, changed); err != nil {
		return err
	}

	if err := a.cfg.Validate(); err != nil {
		return err
	}

	a.logger = cliconfig.Logger(a.cfg.LogLevel)
	a.logger.Debug().Interface("config", a.cfg).Msg("configuration")
	return nil
}

// openCart creates and opens the cart described by the configuration.
func (a *app) openCart(ctx context.Context, opts ...cart.Option) (*cart.Cart, error) {
	opts = append([]cart.Option{cart.WithLogger(log.NewZerologAdapterWithLogger(a.logger))}, opts...)
	c, err := cart.New(a.cfg.CartConfig(), opts...)
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	if err := c.Open(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("open cart: %w", err)
	}
	if loadErr := c.LoadError(); loadErr != nil {
		a.logger.Warn().Err(loadErr).Msg("stored cart was unreadable, starting empty")
	}
	return c, nil
}

// withCart opens the cart, runs fn and closes the cart again.
func (a *app) withCart(cmd *cobra.Command, fn func(ctx context.Context, c *cart.Cart) error) error {
	ctx := cmd.Context()
	c, err := a.openCart(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("close cart")
		}
	}()
	return fn(ctx, c)
}

func (a *app) listCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the products in the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withCart(cmd, func(_ context.Context, c *cart.Cart) error {
				items, err := c.Products()
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(a.out, items)
				}
				return printItems(a.out, items)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the cart as JSON")
	return cmd
}

func (a *app) addCommand() *cobra.Command {
	var item cart.ItemDescriptor
	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a product, or one more unit of it if it is already in the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item.ID = args[0]
			return a.withCart(cmd, func(ctx context.Context, c *cart.Cart) error {
				items, err := c.AddToCart(ctx, item)
				return a.report(items, err)
			})
		},
	}
	cmd.Flags().StringVar(&item.Title, "title", "", "product title")
	cmd.Flags().StringVar(&item.ImageURL, "image-url", "", "product image URL")
	cmd.Flags().Float64Var(&item.Price, "price", 0, "unit price")
	return cmd
}

func (a *app) stepCommand(use, short string, step func(*cart.Cart, context.Context, string) ([]cart.LineItem, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCart(cmd, func(ctx context.Context, c *cart.Cart) error {
				items, err := step(c, ctx, args[0])
				return a.report(items, err)
			})
		},
	}
}

func (a *app) resetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Empty the cart and delete its stored snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withCart(cmd, func(ctx context.Context, c *cart.Cart) error {
				return c.Reset(ctx)
			})
		},
	}
}

func (a *app) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the cart over HTTP with Prometheus metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			opts := []cart.Option{cart.WithEventHandler(metrics.NewRecorder(reg))}
			if a.cfg.Watch {
				opts = append(opts, snapshotwatcher.WithDefaultSnapshotWatcher())
			}

			c, err := a.openCart(ctx, opts...)
			if err != nil {
				return err
			}
			defer func() {
				if err := c.Close(); err != nil {
					a.logger.Warn().Err(err).Msg("close cart")
				}
			}()

			logger := log.NewZerologAdapterWithLogger(a.logger)
			srv := httpapi.NewServer(a.cfg.ListenAddr, c, reg, logger)
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&a.cfg.ListenAddr, "listen", a.cfg.ListenAddr, "HTTP listen address")
	cmd.Flags().BoolVar(&a.cfg.Watch, "watch", a.cfg.Watch, "reload the cart when its snapshot file changes")
	return cmd
}

// report prints the cart after a mutation. A failed write still prints the
// cart, since the change was applied in memory.
func (a *app) report(items []cart.LineItem, err error) error {
	var pwe *cart.PersistenceWriteError
	if err != nil && !errors.As(err, &pwe) {
		return err
	}
	if perr := printItems(a.out, items); perr != nil {
		return perr
	}
	return err
}

func printItems(w io.Writer, items []cart.LineItem) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "cart is empty")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tQTY")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%d\n", it.ID, it.Title, it.Price, it.Quantity)
	}
	return tw.Flush()
}

func printJSON(w io.Writer, items []cart.LineItem) error {
	if items == nil {
		items = []cart.LineItem{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}
