// Package main provides the metagen CLI entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/syssam/metagen/compiler/load"
	"github.com/syssam/metagen/graph"
	"github.com/syssam/metagen/model"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// app is the state shared by the commands of one invocation.
type app struct {
	cfg *Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "metagen",
		Short:         "metagen - model-driven code generator",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		Long: `metagen loads a meta-model of classes, primitive types, containment
and naming rules from YAML declarations, validates it, and generates Go
types and hierarchical key functions from it.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	flags := rootCmd.PersistentFlags()
	flags.String("config", getEnvStr("METAGEN_CONFIG", DefaultConfigFile), "Project file")
	flags.String("schema", "", "Directory of declaration files (overrides the project file)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.Int("workers", 0, "Concurrent construction and generation tasks (0 = GOMAXPROCS)")
	flags.Bool("collect", false, "Report every violation instead of stopping at the first")

	rootCmd.AddCommand(
		newCheckCmd(a),
		newPathsCmd(a),
		newGenerateCmd(a),
		newSnapshotCmd(a),
	)
	return rootCmd
}

// setup resolves the configuration and the logger. Flags set on the command
// line take precedence over the project file and the environment.
func (a *app) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	cfg, err := loadConfig(path, flags.Changed("config") || os.Getenv("METAGEN_CONFIG") != "")
	if err != nil {
		return err
	}
	if flags.Changed("schema") {
		cfg.Schema, _ = flags.GetString("schema")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("collect") {
		cfg.Collect, _ = flags.GetBool("collect")
	}
	log, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	return nil
}

// loader returns a loader configured from the project.
func (a *app) loader() *load.Loader {
	opts := []load.Option{
		load.WithLogger(a.log),
		load.WithWorkers(a.cfg.Workers),
	}
	if a.cfg.Collect {
		opts = append(opts, load.WithGraphOptions(graph.WithDiagnostics()))
	}
	return load.New(opts...)
}

// load builds and validates the model of the project's declarations.
func (a *app) load(ctx context.Context) (*model.Model, error) {
	m, err := a.loader().LoadDir(ctx, a.cfg.Schema)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", a.cfg.Schema, err)
	}
	return m, nil
}
