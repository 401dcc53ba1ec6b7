package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matt-g-everett/linefield/config"
	"github.com/matt-g-everett/linefield/field"
)

type app struct {
	Config     config.Config
	ConfigPath string
	Logger     *log.Logger

	logLevel string
	logFile  string
	watch    bool

	mu     sync.RWMutex
	params field.Params
}

func newApp() *app {
	a := new(app)
	a.Config = config.Default()
	return a
}

// readConfig loads the config file. A missing default config file is not
// an error; the built-in defaults are used instead.
func (a *app) readConfig(cmd *cobra.Command) error {
	c, err := config.Load(a.ConfigPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config") {
			a.Logger.Warn("config file not found, using defaults", "path", a.ConfigPath)
			return nil
		}
		return err
	}
	a.Config = c
	a.Logger.Debug("config loaded", "path", a.ConfigPath, "frameRate", c.FrameRate)
	return nil
}

func (a *app) setupLogger(w io.Writer) error {
	level, err := log.ParseLevel(a.logLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	a.Logger = log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          "linefield",
	})
	return nil
}

func (a *app) currentParams() field.Params {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.params
}

func (a *app) setParams(p field.Params) {
	a.mu.Lock()
	a.params = p
	a.mu.Unlock()
}

// watchParams reloads parameters whenever the config file changes. derive
// picks the parameter flavour for the current renderer. The returned
// channel is closed when ctx is done.
func (a *app) watchParams(ctx context.Context, derive func(config.Config) (field.Params, error)) <-chan field.Params {
	out := make(chan field.Params, 1)
	if !a.watch {
		close(out)
		return out
	}
	w, err := config.Watch(a.ConfigPath)
	if err != nil {
		a.Logger.Warn("config reload disabled", "path", a.ConfigPath, "err", err)
		close(out)
		return out
	}

	go func() {
		defer close(out)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				a.Logger.Warn("config reload failed", "err", err)
			case c, ok := <-w.Configs:
				if !ok {
					return
				}
				p, err := derive(c)
				if err != nil {
					a.Logger.Warn("config reload rejected", "err", err)
					continue
				}
				a.Logger.Info("config reloaded", "path", a.ConfigPath)
				a.setParams(p)
				select {
				case out <- p:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "linefield",
		Short:        "A grid of lines that reacts to pointer proximity",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&a.ConfigPath, "config", "c", "config.yaml", "YAML or TOML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFile, "log-file", "", "write logs to this file instead of stderr")
	root.PersistentFlags().BoolVar(&a.watch, "watch", true, "reload animator parameters when the config file changes")

	root.AddCommand(a.serveCommand())
	root.AddCommand(a.viewCommand())
	root.AddCommand(a.termCommand())
	return root
}

// prepare sets up logging and configuration for a subcommand. quietByDefault
// discards logs unless a log file is given.
func (a *app) prepare(cmd *cobra.Command, quietByDefault bool) (func(), error) {
	var w io.Writer = os.Stderr
	cleanup := func() {}
	switch {
	case a.logFile != "":
		f, err := os.OpenFile(a.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return cleanup, fmt.Errorf("open log file: %w", err)
		}
		w = f
		cleanup = func() { f.Close() }
	case quietByDefault:
		w = io.Discard
	}
	if err := a.setupLogger(w); err != nil {
		cleanup()
		return func() {}, err
	}
	if err := a.readConfig(cmd); err != nil {
		cleanup()
		return func() {}, err
	}
	return cleanup, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp()
	if err := a.rootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
