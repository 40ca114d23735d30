package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/syssam/metagen/compiler/gen"
	"github.com/syssam/metagen/compiler/load"
)

// debounce is how long the watcher waits for a burst of changes to settle.
const debounce = 200 * time.Millisecond

func newGenerateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Go code from the declarations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("target") {
				a.cfg.Target, _ = flags.GetString("target")
			}
			if flags.Changed("package") {
				a.cfg.Package, _ = flags.GetString("package")
			}
			if err := a.generate(cmd.Context(), cmd.OutOrStdout()); err != nil {
				return err
			}
			if watch, _ := flags.GetBool("watch"); watch {
				return a.watch(cmd.Context(), cmd.OutOrStdout())
			}
			return nil
		},
	}
	cmd.Flags().String("target", "", "Output directory (overrides the project file)")
	cmd.Flags().String("package", "", "Package name of the generated code")
	cmd.Flags().Bool("watch", false, "Regenerate whenever a declaration file changes")
	return cmd
}

func (a *app) genConfig() (*gen.Config, error) {
	opts := []gen.Option{gen.WithTarget(a.cfg.Target)}
	if a.cfg.Package != "" {
		opts = append(opts, gen.WithPackage(a.cfg.Package))
	}
	if a.cfg.Header != "" {
		opts = append(opts, gen.WithHeader(a.cfg.Header))
	}
	if a.cfg.Workers > 0 {
		opts = append(opts, gen.WithWorkers(a.cfg.Workers))
	}
	return gen.NewConfig(opts...)
}

func (a *app) generate(ctx context.Context, out io.Writer) error {
	cfg, err := a.genConfig()
	if err != nil {
		return err
	}
	m, err := a.load(ctx)
	if err != nil {
		return err
	}
	g, err := gen.New(m, cfg)
	if err != nil {
		return err
	}
	paths, err := g.Generate(ctx)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(out, p)
	}
	return nil
}

// watch regenerates on every settled burst of changes to declaration files
// until ctx is done. Failed generations are logged and do not stop the
// watcher.
func (a *app) watch(ctx context.Context, out io.Writer) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()
	if err := addDirs(w, a.cfg.Schema); err != nil {
		return err
	}
	a.log.Info("watching declarations", slog.String("schema", a.cfg.Schema))

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				// New directories are watched as well.
				_ = addDirs(w, ev.Name)
			}
			if slices.Contains(load.Extensions, filepath.Ext(ev.Name)) {
				a.log.Debug("declaration changed", slog.String("file", ev.Name), slog.String("op", ev.Op.String()))
				timer.Reset(debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.log.Warn("watch error", slog.Any("error", err))
		case <-timer.C:
			if err := a.generate(ctx, out); err != nil {
				a.log.Error("generation failed", slog.Any("error", err))
			}
		}
	}
}

// addDirs watches root and every directory below it.
func addDirs(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
		}
		return nil
	})
}
