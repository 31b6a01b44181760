// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	slogmulti "github.com/samber/slog-multi"
	"github.com/urfave/cli/v2"
	"go.githedgehog.com/rangemerge/pkg/config"
	"go.githedgehog.com/rangemerge/pkg/rangectl"
	"go.githedgehog.com/rangemerge/pkg/ranges"
	"go.githedgehog.com/rangemerge/pkg/render"
	"go.githedgehog.com/rangemerge/pkg/server"
	"go.githedgehog.com/rangemerge/pkg/version"
	"gopkg.in/natefinch/lumberjack.v2"
)

func setupLogger(verbose bool, logFile string) error {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	logW := os.Stderr

	handlers := []slog.Handler{
		tint.NewHandler(logW, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.TimeOnly,
			NoColor:    !isatty.IsTerminal(logW.Fd()),
		}),
	}

	if logFile != "" {
		logF := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    5, // MB
			MaxBackups: 4,
			MaxAge:     30, // days
			Compress:   true,
			FileMode:   0o644,
		}

		// opens the file right away so a bad path fails before any command runs
		if _, err := logF.Write(nil); err != nil {
			return errors.Wrapf(err, "opening log file %s", logFile)
		}

		handlers = append(handlers, slog.NewTextHandler(logF, &slog.HandlerOptions{
			Level: logLevel,
		}))
	}

	slog.SetDefault(slog.New(slogmulti.Fanout(handlers...)))

	return nil
}

const inputsUsage = "[--] [ranges...]"

const usageText = `rangemerge [global options] command [command options] [--] [ranges...]

Ranges starting with "-" (zero or negative start) must follow "--", e.g.:

   rangemerge merge -- "-4, 20-30, 2-7"
   rangemerge merge --domain bounded -- -100,50-255
   echo "-4, 20-30" | rangemerge check`

func newApp(ctx context.Context, stdin io.Reader, stdout io.Writer) *cli.App {
	var verbose bool
	verboseFlag := &cli.BoolFlag{
		Name:        "verbose",
		Aliases:     []string{"v"},
		Usage:       "verbose output (includes debug)",
		Destination: &verbose,
	}

	var logFile string
	logFileFlag := &cli.StringFlag{
		Name:        "log-file",
		Usage:       "also write logs to the file (rotated)",
		Destination: &logFile,
	}

	var configPath string
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "config file path (yaml)",
		EnvVars:     []string{"RANGEMERGE_CONFIG"},
		Destination: &configPath,
	}

	domainFlag := &cli.StringFlag{
		Name:    "domain",
		Aliases: []string{"d"},
		Usage:   "value domain, one of " + strings.Join(ranges.Names(), ", "),
		Value:   config.DefaultDomain,
	}

	outputTypes := []string{}
	for _, t := range render.OutputTypes {
		outputTypes = append(outputTypes, string(t))
	}

	outputFlag := &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output format, one of " + strings.Join(outputTypes, ", "),
		Value:   string(render.OutputTypeText),
	}

	fileFlag := &cli.StringFlag{
		Name:    "file",
		Aliases: []string{"f"},
		Usage:   "read inputs from the file, one per line (- for stdin)",
	}

	cli.VersionFlag.(*cli.BoolFlag).Aliases = []string{"V"}

	return &cli.App{
		Name:                   "rangemerge",
		Usage:                  "Parse, merge and format numeric range lists",
		UsageText:              usageText,
		Version:                version.Version,
		Suggest:                true,
		UseShortOptionHandling: true,
		EnableBashCompletion:   true,
		Reader:                 stdin,
		Writer:                 stdout,
		Flags: []cli.Flag{
			verboseFlag,
			logFileFlag,
			configFlag,
		},
		Before: func(_ *cli.Context) error {
			return setupLogger(verbose, logFile)
		},
		Commands: []*cli.Command{
			{
				Name:      "merge",
				Usage:     "Merge overlapping and touching ranges, e.g. rangemerge merge -- -4,20-30,2-7",
				ArgsUsage: inputsUsage,
				Flags: []cli.Flag{
					domainFlag,
					outputFlag,
					fileFlag,
					&cli.IntFlag{
						Name:    "parallel",
						Aliases: []string{"p"},
						Usage:   "max number of inputs merged in parallel",
						Value:   config.DefaultParallel,
					},
				},
				Action: func(cCtx *cli.Context) error {
					cfg, inputs, err := prepare(cCtx, configPath)
					if err != nil {
						return err
					}

					return errors.Wrapf(rangectl.Merge(ctx, cCtx.App.Writer, &rangectl.MergeOptions{
						Domain:   cfg.Domain,
						Output:   cfg.Output,
						Parallel: cfg.Parallel,
						Inputs:   inputs,
					}), "failed to merge")
				},
			},
			{
				Name:      "check",
				Usage:     "Check that ranges are already merged and sorted, e.g. rangemerge check -- -7,20-30",
				ArgsUsage: inputsUsage,
				Flags: []cli.Flag{
					domainFlag,
					fileFlag,
					&cli.BoolFlag{
						Name:  "diff",
						Usage: "print diff against the merged ranges",
					},
				},
				Action: func(cCtx *cli.Context) error {
					cfg, inputs, err := prepare(cCtx, configPath)
					if err != nil {
						return err
					}

					return errors.Wrapf(rangectl.Check(ctx, cCtx.App.Writer, &rangectl.CheckOptions{
						Domain: cfg.Domain,
						Diff:   cCtx.Bool("diff"),
						Inputs: inputs,
					}), "failed to check")
				},
			},
			{
				Name:  "domains",
				Usage: "List available value domains",
				Flags: []cli.Flag{
					outputFlag,
				},
				Action: func(cCtx *cli.Context) error {
					cfg, err := loadConfig(cCtx, configPath)
					if err != nil {
						return err
					}

					return errors.Wrapf(rangectl.Domains(cCtx.App.Writer, cfg.Output), "failed to list domains")
				},
			},
			{
				Name:  "serve",
				Usage: "Run HTTP API server",
				Flags: []cli.Flag{
					domainFlag,
					&cli.StringFlag{
						Name:    "listen",
						Aliases: []string{"l"},
						Usage:   "address to listen on",
						Value:   config.DefaultListen,
					},
				},
				Action: func(cCtx *cli.Context) error {
					cfg, err := loadConfig(cCtx, configPath)
					if err != nil {
						return err
					}

					slog.Info("Running rangemerge server", "version", version.Version)

					sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
					defer stop()

					return errors.Wrapf(server.Run(sigCtx, cfg), "failed to run server")
				},
			},
		},
	}
}

func main() {
	defer func() {
		if err := recover(); err != nil {
			slog.Error("Panic", "err", err, "stack", string(debug.Stack()))
			os.Exit(1)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := newApp(ctx, os.Stdin, os.Stdout).Run(os.Args); err != nil {
		slog.Error("Failed", "err", err.Error())
		os.Exit(1) //nolint:gocritic
	}
}

// loadConfig loads the config file and overrides it with the explicitly set
// command flags.
func loadConfig(cCtx *cli.Context, path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load config")
	}

	if cCtx.IsSet("domain") {
		cfg.Domain = cCtx.String("domain")
	}
	if cCtx.IsSet("output") {
		cfg.Output = render.OutputType(cCtx.String("output"))
	}
	if cCtx.IsSet("parallel") {
		cfg.Parallel = cCtx.Int("parallel")
	}
	if cCtx.IsSet("listen") {
		cfg.Listen = cCtx.String("listen")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid flags")
	}

	slog.Debug("Config loaded", "path", path, "domain", cfg.Domain, "output", cfg.Output)

	return cfg, nil
}

func prepare(cCtx *cli.Context, configPath string) (*config.Config, []string, error) {
	cfg, err := loadConfig(cCtx, configPath)
	if err != nil {
		return nil, nil, err
	}

	inputs, err := readInputs(cCtx, int(cfg.MaxBodyBytes))
	if err != nil {
		return nil, nil, err
	}

	return cfg, inputs, nil
}

// readInputs returns positional inputs, followed by the --file ones. Stdin is
// read if there are no positional inputs and no file.
func readInputs(cCtx *cli.Context, maxLineBytes int) ([]string, error) {
	inputs := cCtx.Args().Slice()

	file := cCtx.String("file")
	if file == "" && len(inputs) > 0 {
		return inputs, nil
	}

	r := cCtx.App.Reader
	if file != "" && file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, errors.Wrapf(err, "opening inputs file")
		}
		defer f.Close()

		r = f
	}

	fromFile, err := rangectl.ReadInputs(r, maxLineBytes)
	if err != nil {
		return nil, errors.Wrapf(err, "reading inputs")
	}

	return append(inputs, fromFile...), nil
}
