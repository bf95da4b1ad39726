// Package main implements lexis, the command-line interface to the
// vocabulary lifecycle engine. It works directly on the configured database
// through the same service the HTTP server uses.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/phrazzld/lexis/internal/app"
	"github.com/phrazzld/lexis/internal/config"
	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/service"
	"github.com/spf13/cobra"
)

// cli carries the state shared by every command of one invocation.
type cli struct {
	out    io.Writer
	errOut io.Writer

	configPath string
	jsonOutput bool
	verbose    bool

	loadConfig func(path string) (*config.Config, error)
	appOptions []app.Option

	app *app.App
}

func defaultLoadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func main() {
	_ = godotenv.Load()

	c := &cli{out: os.Stdout, errOut: os.Stderr, loadConfig: defaultLoadConfig}
	if err := run(context.Background(), c, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// run executes one command line and closes the application afterwards,
// whether or not the command succeeded.
func run(ctx context.Context, c *cli, args []string) error {
	root := newRootCmd(c)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if cerr := c.close(); err == nil {
		err = cerr
	}
	return err
}

// skipApp marks commands that manage the database themselves.
const skipApp = "lexis/skip-app"

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "lexis",
		Short:         "lexis - multilingual vocabulary lifecycle engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipApp] != "" {
				return nil
			}
			return c.open(cmd.Context())
		},
	}
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Path to a config file (default ./config.yaml)")
	root.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "Print results as JSON")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log at the configured level instead of warn")

	root.AddCommand(
		newAddCmd(c),
		newAddManualCmd(c),
		newListCmd(c),
		newShowCmd(c),
		newEncountersCmd(c),
		newSearchCmd(c),
		newStrugglingCmd(c),
		newRenameCmd(c),
		newDeleteCmd(c),
		newNoteCmd(c),
		newParentCmd(c),
		newChildrenCmd(c),
		newReviewCmd(c, "known", "Record that the word was recalled"),
		newReviewCmd(c, "unknown", "Record that the word was not recalled"),
		newPromoteCmd(c),
		newMasteredCmd(c),
		newDemoteCmd(c),
		newStatsCmd(c),
		newMigrateCmd(c),
	)
	return root
}

// settings loads the configuration and quiets logging unless --verbose.
func (c *cli) settings() (*config.Config, error) {
	cfg, err := c.loadConfig(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if !c.verbose {
		cfg.Server.LogLevel = "warn"
	}
	return cfg, nil
}

func (c *cli) open(ctx context.Context) error {
	cfg, err := c.settings()
	if err != nil {
		return err
	}
	l, err := logger.SetupWithWriter(cfg.Server, c.errOut)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	a, err := app.New(ctx, cfg, l, c.appOptions...)
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

var errNoApp = errors.New("application not initialized")

// vocab returns the vocabulary service of the opened application.
func (c *cli) vocab() (service.VocabularyService, error) {
	if c.app == nil {
		return nil, errNoApp
	}
	return c.app.Vocabulary, nil
}
