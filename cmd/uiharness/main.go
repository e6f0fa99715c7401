// Command uiharness runs the feed reader scenario suite against a
// live server and reports verdicts per parameter cell.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lightforgemedia/go-uiharness/internal/watch"
	"github.com/lightforgemedia/go-uiharness/pkg/browser"
	"github.com/lightforgemedia/go-uiharness/pkg/reader"
	"github.com/lightforgemedia/go-uiharness/pkg/scenario"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type runFlags struct {
	configPath string
	baseURL    string
	headless   bool
	watchMode  bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "uiharness",
		Short:         "Viewport-aware UI state assertion harness",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scenario suite",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(cmd.Context(), flags)
		},
	}
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "suite configuration file (YAML)")
	cmd.Flags().StringVar(&flags.baseURL, "base-url", "", "base URL of the server under test")
	cmd.Flags().BoolVar(&flags.headless, "headless", true, "run the browser headless")
	cmd.Flags().BoolVarP(&flags.watchMode, "watch", "w", false, "rerun the suite when watched files change")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")
	return cmd
}

// errSuiteFailed makes the process exit non-zero when any cell did
// not pass, without dumping a stack of per-cell errors twice.
var errSuiteFailed = fmt.Errorf("suite failed")

func runSuite(ctx context.Context, flags *runFlags) error {
	level := slog.LevelInfo
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return err
	}
	if flags.baseURL != "" {
		cfg.BaseURL = flags.baseURL
	}
	if cfg.BaseURL == "" {
		return fmt.Errorf("a base URL is required (--base-url or base_url in the config)")
	}
	headless := flags.headless
	if cfg.Headless != nil {
		headless = *cfg.Headless
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := browser.New(browser.DefaultOptions(),
		browser.WithHeadless(headless),
		browser.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer b.Close()

	runner, err := scenario.NewRunner(scenario.RunnerOptions{
		BaseURL:      cfg.BaseURL,
		Browser:      b,
		Logger:       logger,
		Policy:       cfg.policy(),
		ArtifactsDir: cfg.ArtifactsDir,
	})
	if err != nil {
		return err
	}

	if !flags.watchMode {
		return executeOnce(ctx, runner, cfg)
	}

	rerun := make(chan struct{}, 1)
	paths := cfg.WatchPaths
	if len(paths) == 0 {
		paths = []string{"."}
	}
	watcher, err := watch.New(logger, watch.Options{
		Paths:       paths,
		IgnorePaths: []string{"artifacts"},
	}, func(string) {
		select {
		case rerun <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	for {
		if err := executeOnce(ctx, runner, cfg); err != nil && err != errSuiteFailed {
			return err
		}
		logger.Info("watching for changes", "paths", paths)
		select {
		case <-ctx.Done():
			return nil
		case <-rerun:
		}
	}
}

func executeOnce(ctx context.Context, runner *scenario.Runner, cfg config) error {
	var passed, failed, errored int
	for _, entry := range reader.Suite() {
		if !cfg.wantScenario(entry.Scenario.Name) {
			continue
		}
		classes, err := cfg.filterClasses(entry.Classes)
		if err != nil {
			return err
		}
		if len(classes) == 0 {
			continue
		}
		fixtures := entry.Fixtures
		switch entry.Scenario.Name {
		case "add feed accepted":
			if rows := cfg.addFeedFixtures(true); rows != nil {
				fixtures = rows
			}
		case "add feed rejected":
			if rows := cfg.addFeedFixtures(false); rows != nil {
				fixtures = rows
			}
		}
		for _, res := range runner.RunMatrix(ctx, entry.Scenario, classes, fixtures) {
			printResult(res)
			switch res.Verdict {
			case scenario.Passed:
				passed++
			case scenario.Failed:
				failed++
			default:
				errored++
			}
		}
	}

	fmt.Printf("\n%d passed, %d failed, %d errored\n", passed, failed, errored)
	if failed > 0 || errored > 0 {
		return errSuiteFailed
	}
	return nil
}

func printResult(res scenario.Result) {
	fmt.Printf("%-7s %s [%s] (%s)\n", res.Verdict.String(), res.Scenario, res.Params.Label(), res.Elapsed.Round(time.Millisecond))
	for _, f := range res.Failures {
		fmt.Printf("        %s\n", f.String())
	}
	if res.Err != nil && res.Verdict == scenario.Errored {
		fmt.Printf("        error: %v\n", res.Err)
	}
	for _, a := range res.Artifacts {
		fmt.Printf("        artifact: %s\n", a.Path)
	}
}
