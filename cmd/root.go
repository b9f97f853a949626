package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/kado/internal/action"
	"github.com/fakeyudi/kado/internal/config"
	"github.com/fakeyudi/kado/internal/daemon"
	"github.com/fakeyudi/kado/internal/display"
	"github.com/fakeyudi/kado/internal/hotspot"
)

var (
	configPath string
	watch      bool
	verbose    bool
	listOnly   bool
)

// Screen is the X11 collaborator the root command needs. Tests swap
// connectDisplay for a fake.
type Screen interface {
	Screens() ([]hotspot.Region, error)
	Pointer() (int16, int16, error)
	Close()
}

var connectDisplay = func() (Screen, error) {
	x, err := display.Connect("")
	if err != nil {
		return nil, err
	}
	return x, nil
}

var rootCmd = &cobra.Command{
	Use:          "kado",
	Short:        "X11 hotspot triggers",
	Long:         "kado runs shell commands when the pointer rests in a screen edge or corner.",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := log.New(cmd.ErrOrStderr(), "kado: ", log.LstdFlags)

		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		cfg, err := config.Load(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("config file not found: %s", path)
			}
			return fmt.Errorf("loading config: %w", err)
		}
		if verbose {
			for _, entry := range cfg.Ignored {
				logger.Printf("config: ignoring malformed override [%s]", entry)
			}
		}

		screen, err := connectDisplay()
		if err != nil {
			return err
		}
		defer screen.Close()

		regions, err := screen.Screens()
		if err != nil {
			return fmt.Errorf("listing screens: %w", err)
		}
		if len(regions) == 0 {
			logger.Printf("display: no active screens found, hotspots will never trigger")
		}

		if listOnly {
			return renderList(cmd.OutOrStdout(), cfg, regions)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		shell := &action.Shell{Stderr: cmd.ErrOrStderr()}
		if verbose {
			shell.Logger = logger
		}
		d := daemon.New(cfg, regions, screen, shell, daemon.Options{Logger: logger, Verbose: verbose})

		var reloads chan *config.Config
		var reloadErrs chan error
		if watch {
			reloads = make(chan *config.Config)
			reloadErrs = make(chan error)
			go func() {
				if err := config.Watch(ctx, path, reloads, reloadErrs); err != nil {
					logger.Printf("config: watch disabled: %v", err)
				}
			}()
		}

		if err := d.Run(ctx, reloads, reloadErrs); err != nil {
			return fmt.Errorf("polling pointer: %w", err)
		}
		logger.Printf("shutting down")
		return nil
	},
}

// resolveConfigPath returns --config if given, else the per-user default.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultPath()
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default <user config dir>/"+config.FileName+")")
	rootCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload the config file when it changes")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log hotspot transitions and launched actions")
	rootCmd.Flags().BoolVar(&listOnly, "list", false, "Print screens and effective hotspots, then exit")
}
