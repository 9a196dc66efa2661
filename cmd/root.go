// Copyright © 2019 Andrei Gubarev <agubarev@protonmail.com>

package cmd

import (
	"fmt"
	"os"

	"github.com/agubarev/accounts/internal/config"
	"github.com/agubarev/accounts/internal/core"
	"github.com/agubarev/accounts/pkg/util"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "accounts",
	Short:         "Create and inspect standard and administrative user accounts.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it,
// this is called by main.main() and only needs to happen once
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", fmt.Sprintf("config file (default is %s)", config.DefaultPath))
}

// withCore loads the config, initializes the core and releases it once fn returns,
// console logs go to the command's stderr so that its stdout stays machine readable
func withCore(cmd *cobra.Command, fn func(c *core.Core) error) (err error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logger, err := util.NewLogger(cfg.Log.Debug, cfg.Log.Dir, cmd.ErrOrStderr())
	if err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	defer logger.Sync()

	c, err := core.New(cfg, logger)
	if err != nil {
		return err
	}

	defer func() {
		if xerr := c.Close(); xerr != nil {
			logger.Warn("failed to close core", zap.Error(xerr))
		}
	}()

	return fn(c)
}
