package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"robotconsole/internal/boot"
	"robotconsole/pkg/config"
	"robotconsole/pkg/logger"
	"robotconsole/pkg/version"

	"github.com/spf13/cobra"
)

var (
	configPath  string
	backendURL  string
	assumeYes   bool
	verbose     bool
	callTimeout time.Duration

	// 由 PersistentPreRunE 初始化，测试中可直接替换
	cfg      *config.Config
	services *boot.Services
	stdout   io.Writer = os.Stdout
	stdin    io.Reader = os.Stdin
)

var rootCmd = &cobra.Command{
	Use:           "robotctl",
	Short:         "Manage robot instances from the terminal",
	Version:       version.GetVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if services != nil {
			return nil
		}
		return setup()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "config file")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "override backend.base_url")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to every confirmation")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().DurationVar(&callTimeout, "timeout", 0, "overall timeout per command (0 = none)")
}

func setup() error {
	if backendURL != "" {
		os.Setenv("ROBOT_CONSOLE_BACKEND_BASE_URL", backendURL)
	}
	var err error
	cfg, err = boot.InitConfig(configPath)
	if err != nil {
		return err
	}
	if verbose {
		logger.SetLevel(logger.LevelDebug)
	}

	stores := boot.InitStores(cfg)
	repos := boot.InitRepositories(cfg, stores)
	services = boot.InitServices(cfg, repos, boot.ServiceOptions{
		Confirmer: newPromptConfirmer(bufio.NewReader(stdin), stdout, assumeYes),
		Notifier:  newTerminalNotifier(stdout),
	})
	return nil
}

// commandContext 命令级 ctx；--timeout 为 0 时不设超时
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if callTimeout > 0 {
		return context.WithTimeout(ctx, callTimeout)
	}
	return context.WithCancel(ctx)
}

func printf(format string, args ...interface{}) {
	fmt.Fprintf(stdout, format, args...)
}
