package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/pastebin/internal"
	pkgconfig "github.com/starford/pastebin/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// withConfig adapts an internal entry point to a cli action.
func withConfig(fn func(ctx context.Context, cmd *cli.Command, opts ...internal.Option) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return fn(ctx, cmd, internal.WithConfig(cfg))
	}
}

func open(ctx context.Context, cmd *cli.Command, opts ...internal.Option) error {
	return internal.Open(ctx, cmd.Args().First(), opts...)
}

func requireArg(cmd *cli.Command, name string) (string, error) {
	v := cmd.Args().First()
	if v == "" {
		return "", fmt.Errorf("%s: missing %s argument", cmd.Name, name)
	}
	return v, nil
}

func main() {
	cmd := &cli.Command{
		Name:      "pastebin",
		Usage:     "Write-once paste sharing: edit, publish and read immutable pastes",
		ArgsUsage: "[key]",
		Action:    withConfig(open),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "open",
				Usage:     "Open the editor on a new paste or an existing key",
				ArgsUsage: "[key]",
				Action:    withConfig(open),
			},
			{
				Name:      "get",
				Usage:     "Print a paste",
				ArgsUsage: "<key>",
				Action: withConfig(func(ctx context.Context, cmd *cli.Command, opts ...internal.Option) error {
					key, err := requireArg(cmd, "key")
					if err != nil {
						return err
					}
					return internal.Get(ctx, key, opts...)
				}),
			},
			{
				Name:      "put",
				Usage:     "Publish a file, or standard input, as a new paste",
				ArgsUsage: "[file]",
				Action: withConfig(func(ctx context.Context, cmd *cli.Command, opts ...internal.Option) error {
					return internal.Put(ctx, cmd.Args().First(), opts...)
				}),
			},
			{
				Name:      "watch",
				Usage:     "Publish a new paste every time a file is saved",
				ArgsUsage: "<file>",
				Action: withConfig(func(ctx context.Context, cmd *cli.Command, opts ...internal.Option) error {
					path, err := requireArg(cmd, "file")
					if err != nil {
						return err
					}
					ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
					defer stop()
					return internal.Watch(ctx, path, opts...)
				}),
			},
			{
				Name:  "recent",
				Usage: "List pastes published or read on this machine",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of entries",
						Value:   20,
					},
				},
				Action: withConfig(func(ctx context.Context, cmd *cli.Command, opts ...internal.Option) error {
					return internal.Recent(ctx, int(cmd.Int("limit")), opts...)
				}),
			},
			{
				Name:      "forget",
				Usage:     "Remove a paste from the recent list",
				ArgsUsage: "<key>",
				Action: withConfig(func(ctx context.Context, cmd *cli.Command, opts ...internal.Option) error {
					key, err := requireArg(cmd, "key")
					if err != nil {
						return err
					}
					return internal.Forget(ctx, key, opts...)
				}),
			},
			{
				Name:  "serve",
				Usage: "Run the reference paste store",
				Action: withConfig(func(ctx context.Context, _ *cli.Command, opts ...internal.Option) error {
					if err := internal.Serve(ctx, opts...); err != nil {
						return fmt.Errorf("app run error: %w", err)
					}
					return nil
				}),
			},
			{
				Name:  "mcp",
				Usage: "Serve paste tools to MCP clients on stdio",
				Action: withConfig(func(ctx context.Context, _ *cli.Command, opts ...internal.Option) error {
					return internal.ServeMCP(ctx, opts...)
				}),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
