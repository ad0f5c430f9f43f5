// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ava-labs/avalanchego/utils/perms"
	"github.com/onsi/ginkgo/v2/formatter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/solana-baremetal/counter-cli/cluster"
	"github.com/solana-baremetal/counter-cli/config"
	"github.com/solana-baremetal/counter-cli/consts"
	"github.com/solana-baremetal/counter-cli/counter"
	"github.com/solana-baremetal/counter-cli/program"
	"github.com/solana-baremetal/counter-cli/utils"
)

const (
	envPrefix     = "COUNTER_CLI"
	defaultLogDir = "~/." + consts.Name + "/logs"
)

type root struct {
	v *viper.Viper

	// progress and structured output
	stdout io.Writer
	stderr io.Writer

	dial   counter.Dialer
	result *counter.Result
}

// Execute runs the root command until completion or SIGINT/SIGTERM and
// returns the process exit status.
func Execute() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	r := &root{
		stdout: formatter.ColorableStdOut,
		stderr: formatter.ColorableStdErr,
	}
	return r.execute(ctx, os.Args[1:])
}

// execute reports errors on stderr so stdout only ever carries the result.
func (r *root) execute(ctx context.Context, args []string) int {
	cmd := r.command()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		utils.Fprintf(r.stderr, "{{red}}%s exited with error:{{/}} %+v\n", consts.Name, err)
	}
	return counter.ExitCode(r.result, err)
}

func (r *root) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:           consts.Name,
		Short:         "Increment the greeting counter of an account through the counter program",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          r.run,
	}
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.DisableAutoGenTag = true

	flags := cmd.PersistentFlags()
	flags.String("config", config.DefaultPath, "solana CLI config file")
	flags.String("url", "", "JSON RPC URL of the cluster (overrides config)")
	flags.String("keypair", "", "payer keypair file (overrides config, generated if missing)")
	flags.String("program-dir", program.DefaultDir, "directory holding the program binary and keypair")
	flags.String("program-name", program.DefaultName, "name of the program build artifacts")
	flags.String("commitment", "", "commitment level: processed, confirmed or finalized (default from config, else confirmed)")
	flags.String("log-level", "info", "log level written to the log file")
	flags.String("log-display-level", "off", "log level written to stderr")
	flags.String("log-dir", defaultLogDir, "directory for log files")
	flags.String("metrics-file", "", "write prometheus metrics to this file after the run")
	flags.StringP("output", "o", outputText, "output format (text, json or yaml)")

	r.v = viper.New()
	r.v.SetEnvPrefix(envPrefix)
	r.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	r.v.AutomaticEnv()
	if err := r.v.BindPFlags(flags); err != nil {
		panic(err)
	}
	return cmd
}

func (r *root) expanded(key string) (string, error) {
	p, err := utils.ExpandHome(r.v.GetString(key))
	if err != nil {
		return "", fmt.Errorf("%w: --%s", err, key)
	}
	return p, nil
}

// loadConfig reads the solana CLI config and applies flag overrides.
func (r *root) loadConfig() (*config.Config, error) {
	path, err := r.expanded("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if url := r.v.GetString("url"); url != "" {
		cfg.JSONRPCURL = url
	}
	if r.v.GetString("keypair") != "" {
		if cfg.KeypairPath, err = r.expanded("keypair"); err != nil {
			return nil, err
		}
	}
	if commitment := r.v.GetString("commitment"); commitment != "" {
		cfg.Commitment = commitment
	}
	if _, err := cfg.CommitmentType(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *root) run(cmd *cobra.Command, _ []string) error {
	format, err := parseOutput(r.v.GetString("output"))
	if err != nil {
		return err
	}
	progress := r.stdout
	if format != outputText {
		progress = r.stderr
	}

	cfg, err := r.loadConfig()
	if err != nil {
		return err
	}
	for _, w := range cfg.Warnings {
		utils.Fprintf(progress, "{{yellow}}warning:{{/}} %s\n", w)
	}

	logDir, err := r.expanded("log-dir")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(logDir, perms.ReadWriteExecute); err != nil {
		return err
	}
	logConfig, err := newLoggingConfig(logDir, r.v.GetString("log-level"), r.v.GetString("log-display-level"))
	if err != nil {
		return err
	}
	logFactory := newLogFactory(logConfig)
	defer logFactory.Close()
	log, err := logFactory.Make(consts.Name)
	if err != nil {
		return err
	}
	log.Info("starting",
		zap.String("uri", cfg.JSONRPCURL),
		zap.String("keypair", cfg.KeypairPath),
		zap.String("commitment", cfg.Commitment),
	)

	registry := prometheus.NewRegistry()
	metrics, err := cluster.NewMetrics(registry)
	if err != nil {
		return err
	}

	opts := []counter.Option{
		counter.WithOutput(progress),
		counter.WithLogger(log),
		counter.WithMetrics(metrics),
	}
	if r.dial != nil {
		opts = append(opts, counter.WithDialer(r.dial))
	}
	artifacts := program.New(r.v.GetString("program-dir"), r.v.GetString("program-name"))
	res, runErr := counter.New(cfg, artifacts, opts...).Run(cmd.Context())
	if runErr != nil {
		log.Error("run failed", zap.Error(runErr))
	}

	if path := r.v.GetString("metrics-file"); path != "" {
		if err := prometheus.WriteToTextfile(path, registry); err != nil {
			log.Warn("failed to write metrics",
				zap.String("path", path),
				zap.Error(err),
			)
		}
	}
	if runErr != nil {
		return runErr
	}
	r.result = res
	return printValue(r.stdout, format, res)
}
