package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/compose-network/random-winner-game/configs"
	"github.com/compose-network/random-winner-game/internal/deployer"
	"github.com/compose-network/random-winner-game/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appName = "rwg"

var (
	configFile string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "Deploy and verify the RandomWinnerGame contract",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Initialize(slog.LevelInfo)

		if err := configs.LoadDotEnv(envFile); err != nil {
			return fmt.Errorf("%w: %w", configs.ErrConfiguration, err)
		}

		v := viper.GetViper()
		if err := configs.ReadDefaults(v); err != nil {
			return err
		}
		if err := configs.BindEnv(v); err != nil {
			return err
		}

		if configFile != "" {
			v.SetConfigFile(configFile)
		} else {
			v.SetConfigName("config")
			if execPath, err := os.Executable(); err == nil {
				v.AddConfigPath(filepath.Dir(execPath))
			}
			v.AddConfigPath(".")
			v.AddConfigPath("./configs")
		}

		// Defaults are embedded, so a missing config file is fine unless one was named explicitly.
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if configFile != "" || !errors.As(err, &notFound) {
				const errMsg = "error reading config file"
				slog.With("err", err.Error()).Error(errMsg)
				return fmt.Errorf("%w: %s: %w", configs.ErrConfiguration, errMsg, err)
			}
			slog.Debug("no config file found, relying on embedded defaults, env and flags")
		} else {
			slog.With("config_file", v.ConfigFileUsed()).Debug("config file loaded")
		}

		cfg, err := configs.Unmarshal(v)
		if err != nil {
			return fmt.Errorf("%w: %w", configs.ErrConfiguration, err)
		}
		configs.Values = cfg

		level, err := logger.ParseLevel(cfg.Log.Level)
		if err != nil {
			return fmt.Errorf("%w: %w", configs.ErrConfiguration, err)
		}
		logger.InitializeWith(os.Stdout, level, cfg.Log.Format)

		slog.With("network", cfg.Network).With("explorer", cfg.Explorer).Debug("configuration loaded")

		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: config.yaml next to the binary, in . or ./configs)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "File with environment variables to load")

	if err := deployer.Register(rootCmd); err != nil {
		slog.With("err", err.Error()).Error("failed to register commands")
		os.Exit(deployer.ExitFailure)
	}

	if err := rootCmd.Execute(); err != nil {
		code := deployer.ExitCode(err)
		slog.With("err", err.Error()).With("exit_code", code).Error("failed to execute root command")
		os.Exit(code)
	}
}
