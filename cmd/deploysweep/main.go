// MIT License
//
// Copyright (c) 2025 Mike Lane
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// deploysweep deletes stale preview deployments across a set of
// projects, keeping each project's newest deployment.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mikelane/deploysweep/internal/cleanup"
	"github.com/mikelane/deploysweep/internal/config"
	ghclient "github.com/mikelane/deploysweep/internal/github"
	"github.com/mikelane/deploysweep/internal/platform"
	"github.com/mikelane/deploysweep/internal/vercel"
)

// errRunFailed signals the failure exit code without printing a
// second error message; the orchestrator already logged the details.
var errRunFailed = errors.New("cleanup run finished with failures")

var (
	flagToken       string
	flagProjects    []string
	flagVerbose     bool
	flagAggressive  bool
	flagPlatform    string
	flagGitHubOwner string
	flagConcurrency int
)

var rootCmd = &cobra.Command{
	Use:   "deploysweep",
	Short: "Delete stale preview deployments, keeping each project's newest",
	Long: `deploysweep lists the deployments of each configured project, keeps
the newest one, and deletes the rest of the deployments that are still
queued or building. Deployments in terminal or unrecognized states are
never touched.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&flagToken, "token", "", "platform API token (defaults to DEPLOY_TOKEN)")
	rootCmd.Flags().StringSliceVar(&flagProjects, "projects", nil, "project identifiers to clean (defaults to INPUT_PROJECTS)")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "log per-deployment decisions and retry attempts")
	rootCmd.Flags().BoolVar(&flagAggressive, "aggressive", false, "permit heuristic text parsing when structured listing data is unusable")
	rootCmd.Flags().StringVar(&flagPlatform, "platform", config.PlatformVercel, "deployment platform: vercel or github")
	rootCmd.Flags().StringVar(&flagGitHubOwner, "github-owner", "", "repository owner (github platform only)")
	rootCmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "projects processed in parallel (1-4)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// A missing .env is the normal case outside CI; real values come
	// from the environment then.
	if _, err := os.Stat(".env"); err == nil {
		godotenv.Load(".env")
	}

	cfg := resolveConfig(cmd)
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg.Normalize()

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting cleanup run",
		zap.String("platform", cfg.Platform),
		zap.Strings("projects", cfg.Projects),
		zap.Int("concurrency", cfg.Concurrency),
		zap.Bool("aggressive", cfg.Aggressive),
		zap.Int("token_length", len(cfg.Token)))

	client, err := newPlatformClient(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch := cleanup.New(client, logger, cleanup.Options{
		Projects:    cfg.Projects,
		Aggressive:  cfg.Aggressive,
		Concurrency: cfg.Concurrency,
		DeletePause: time.Second,
	})

	if orch.Run(ctx).Failed() {
		return errRunFailed
	}
	return nil
}

// resolveConfig layers explicitly set flags over the environment.
func resolveConfig(cmd *cobra.Command) config.Config {
	cfg := config.FromEnv(os.Getenv)

	if cmd.Flags().Changed("token") {
		cfg.Token = flagToken
	}
	if cmd.Flags().Changed("projects") {
		cfg.Projects = flagProjects
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = flagVerbose
	}
	if cmd.Flags().Changed("aggressive") {
		cfg.Aggressive = flagAggressive
	}
	if cmd.Flags().Changed("platform") {
		cfg.Platform = flagPlatform
	}
	if cmd.Flags().Changed("github-owner") {
		cfg.GitHubOwner = flagGitHubOwner
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = flagConcurrency
	}

	return cfg
}

func newPlatformClient(cfg config.Config) (platform.Client, error) {
	switch cfg.Platform {
	case config.PlatformVercel:
		return vercel.NewClient(cfg.Token), nil
	case config.PlatformGitHub:
		return ghclient.NewClient(cfg.Token, cfg.GitHubOwner), nil
	default:
		return nil, fmt.Errorf("unknown platform %q", cfg.Platform)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zcfg.Build()
}
