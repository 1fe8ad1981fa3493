// Package cmd implements the docint CLI commands.
package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/eykd/docint/internal/config"
	"github.com/eykd/docint/internal/logger"
)

// Env is the process environment the commands run against. Tests replace
// the filesystem and working directory.
type Env struct {
	Fs      afero.Fs
	Getwd   func() (string, error)
	Environ func() []string
	Now     func() time.Time
}

func defaultEnv() Env {
	return Env{Fs: afero.NewOsFs(), Getwd: os.Getwd, Environ: os.Environ, Now: time.Now}
}

// app carries the environment and the configuration loaded before any
// subcommand runs.
type app struct {
	env Env
	cfg *config.Config
}

// NewRootCmd creates the root docint command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newRootCmdWithEnv(defaultEnv())
}

func newRootCmdWithEnv(env Env) *cobra.Command {
	a := &app{env: env}
	root := &cobra.Command{
		Use:               "docint",
		Short:             "docint - integrity checks for Markdown documentation",
		Args:              cobra.NoArgs,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().String("config", "", "configuration file (default: ./"+config.DefaultFile+" when present)")
	root.PersistentFlags().BoolP("verbose", "v", false, "log per-check progress")
	root.PersistentFlags().Bool("log-json", false, "write logs as JSON")

	root.AddCommand(newValidateCmd(a))
	root.AddCommand(newBatchValidateCmd(a))
	root.AddCommand(newPlanCmd(a))
	root.AddCommand(newSchemaCmd())
	return root
}

// setup loads the configuration and installs the logger in the command
// context. Arguments are already validated when it runs, so usage output
// is silenced only for failures after that point.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.Options{Fs: a.env.Fs, File: file, Environ: a.env.Environ})
	if err != nil {
		return err
	}
	a.cfg = cfg

	lc := cfg.LoggerConfig()
	lc.Output = cmd.ErrOrStderr()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		lc.Level = logger.DebugLevel
	}
	if logJSON, _ := cmd.Flags().GetBool("log-json"); logJSON {
		lc.JSON = true
	}
	cmd.SetContext(logger.ContextWithLogger(cmd.Context(), logger.NewLogger(lc)))
	return nil
}

// absPath resolves p against the working directory.
func (a *app) absPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	cwd, err := a.env.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, p), nil
}

func (a *app) now() time.Time {
	if a.env.Now != nil {
		return a.env.Now()
	}
	return time.Now()
}
