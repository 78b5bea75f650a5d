package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	logAdapter "github.com/bft-labs/livemount/internal/adapters/log"
	"github.com/bft-labs/livemount/internal/adapters/rubrik"
	"github.com/bft-labs/livemount/internal/app"
	"github.com/bft-labs/livemount/internal/cliconfig"
	"github.com/bft-labs/livemount/internal/ports"
)

const longHelp = `Live mount a Rubrik Oracle backup.

Finds the backup of the Oracle database running on HOST and live mounts it
on TARGET_HOST. For a RAC database HOST may be the RAC cluster name or one of
its nodes, and TARGET_HOST must be a RAC cluster registered with Rubrik.

Without --time_restore the most recent recovery point is mounted. Times are
read in the cluster's timezone unless they carry an offset.

The cluster's response is written to stdout as JSON (or YAML with --format).`

var exampleUsage = strings.TrimSpace(`
  livemount dbhost01:ORCL dbhost02
  livemount rac-prod:PRODDB rac-test -t 2019-01-01T20:30:15
  livemount dbhost01:ORCL dbhost02 --node-ip cdm01.example.com --api-token <token> --format yaml
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	log := logAdapter.NewConsoleLogger(os.Stderr, "info")

	root := newRootCmd(os.Stdout, os.Stderr, &log)
	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("livemount")
		os.Exit(1)
	}
}

// newRootCmd builds the livemount command. log is replaced once the
// configured level is known so main reports errors at the same level.
func newRootCmd(stdout, stderr io.Writer, log *zerolog.Logger) *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var (
		cfgPath     string
		envFile     string
		pointInTime string
	)

	root := &cobra.Command{
		Use:           "livemount HOST:DATABASE TARGET_HOST",
		Short:         "Live mount a Rubrik Oracle backup on a target host",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:          cobra.ExactArgs(2),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Usage is printed here, to stderr, for input errors only
			cmd.SilenceUsage = true

			// Input errors are reported before any configuration is read
			req := app.Request{Source: args[0], TargetHost: args[1], PointInTime: pointInTime}
			if err := req.Validate(); err != nil {
				fmt.Fprintln(stderr, cmd.UsageString())
				return err
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			// The dotenv file only fills variables that are not set yet
			if err := cliconfig.LoadDotEnv(envFile); err != nil {
				return err
			}

			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}
			if cfgPath != "" && !cliconfig.FileExists(cfgPath) {
				return fmt.Errorf("config file %s does not exist", cfgPath)
			}
			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Environment overrides file config; flags override both
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			runID := uuid.NewString()
			*log = logAdapter.NewConsoleLogger(stderr, cfg.LogLevel).With().Str("run_id", runID).Logger()
			log.Debug().Interface("config", cfg.Masked()).Msg("configuration")
			logger := logAdapter.NewZerologAdapter(*log).With(ports.String("node", cfg.NodeIP))

			client, err := rubrik.New(rubrik.Config{
				BaseURL:   cfg.BaseURL(),
				APIToken:  cfg.APIToken,
				Username:  cfg.Username,
				Password:  cfg.Password,
				RequestID: runID,
				UserAgent: "livemount/" + getVersion(),
			}, rubrik.NewHTTPClient(cfg.HTTPTimeout, cfg.Insecure), logger)
			if err != nil {
				return fmt.Errorf("create cluster client: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			orchestrator := app.NewOrchestrator(client, logger, stdout)
			result, err := orchestrator.Run(ctx, req)
			if err != nil {
				return err
			}

			if err := app.WriteResult(stdout, result, cfg.Format); err != nil {
				return fmt.Errorf("live mount %s started but the result could not be written: %w", result.ID, err)
			}
			if cfg.OutputFile != "" {
				if err := app.WriteResultFile(cfg.OutputFile, result, cfg.Format); err != nil {
					return fmt.Errorf("live mount %s started but %s could not be written: %w", result.ID, cfg.OutputFile, err)
				}
				log.Info().Str("path", cfg.OutputFile).Msg("result saved")
			}
			return nil
		},
	}

	// Flags
	root.Flags().StringVarP(&pointInTime, "time_restore", "t", "", "point in time to mount, ISO 8601 (e.g. 2019-01-01T20:30:15); defaults to the latest recovery point")
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.livemount/config.toml)")
	root.Flags().StringVar(&envFile, "env-file", "", "dotenv file with cluster credentials (default: ./.env if present)")

	root.Flags().StringVar(&cfg.NodeIP, "node-ip", cfg.NodeIP, "address of a cluster node (env LIVEMOUNT_NODE_IP or rubrik_cdm_node_ip)")
	root.Flags().StringVar(&cfg.Username, "username", cfg.Username, "cluster username")
	root.Flags().StringVar(&cfg.Password, "password", cfg.Password, "cluster password (prefer the environment)")
	root.Flags().StringVar(&cfg.APIToken, "api-token", cfg.APIToken, "cluster API token, used instead of username/password")
	root.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout per request")
	root.Flags().BoolVar(&cfg.Insecure, "insecure", cfg.Insecure, "skip TLS certificate verification")

	root.Flags().StringVar(&cfg.Format, "format", cfg.Format, "result format: json|yaml")
	root.Flags().StringVar(&cfg.OutputFile, "output-file", cfg.OutputFile, "also write the result to this file")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug|info|warn|error")

	root.SetOut(stdout)
	root.SetErr(stderr)

	return root
}
