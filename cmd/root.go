// Package cmd holds the tdn commands. Every setting is read from CLI flags,
// environment variables prefixed with TDN, or a config file, in that order.
package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/moratsam/opencl-temporal-denoise/config"
	"github.com/moratsam/opencl-temporal-denoise/logger"
	u "github.com/moratsam/opencl-temporal-denoise/util"
)

const config_flag = "config"

func NewRootCommand() *cobra.Command {
	viper.SetConfigName("tdn")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.tdn")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("TDN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	root := &cobra.Command{
		Use:   "tdn",
		Short: "Temporal non-local means denoising of video clips",
		Long: `tdn filters the planes of a clip with non-local means, comparing 7x7 patches
across the frames within a temporal radius of the filtered frame. The filter
runs on an OpenCL device, or on the host CPU through the vanilla processor.`,
		SilenceUsage: true,
	}
	bindRootFlags(root)
	root.AddCommand(newDenoiseCommand(), newDevicesCommand())
	return root
}

func Execute() error {
	return NewRootCommand().Execute()
}

func bindRootFlags(command *cobra.Command) {
	defaults := config.DefaultConfig()
	flags := command.PersistentFlags()

	flags.String(config_flag, "", "path of a config file (default $HOME/.tdn/tdn.yaml or ./tdn.yaml)")
	MustBindPFlag(config_flag, flags.Lookup(config_flag))

	flags.String("log-format", defaults.Log.Format, "log format ('text' or 'json')")
	MustBindPFlag("log.format", flags.Lookup("log-format"))

	flags.String("log-level", defaults.Log.Level, "log level ('none', 'debug', 'info', 'warn', 'error', 'panic' or 'fatal')")
	MustBindPFlag("log.level", flags.Lookup("log-level"))

	flags.StringP("proc", "p", defaults.Device.Proc, "processor type ('vanilla' or 'opencl')")
	MustBindPFlag("device.proc", flags.Lookup("proc"))

	flags.String("device-type", defaults.Device.Type, "OpenCL device type ('gpu', 'cpu' or 'all')")
	MustBindPFlag("device.type", flags.Lookup("device-type"))

	flags.Int("compute-units", defaults.Device.ComputeUnits, "work-groups the vanilla processor runs in parallel, 0 for one per CPU")
	MustBindPFlag("device.compute_units", flags.Lookup("compute-units"))
}

// MustBindPFlag attempts to bind a specific key to a pflag (as used by cobra) and panics
// if the binding fails with a non-nil error.
func MustBindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic("failed to bind pflag: " + err.Error())
	}
}

// ReadConfig merges the config file, if any, with the environment and the
// flags, and verifies the result.
func ReadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()

	if path := viper.GetString(config_flag); path != "" {
		viper.SetConfigFile(path)
	}
	if err := viper.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, u.WrapErr("load config", err)
		}
	}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, u.WrapErr("unmarshal config", err)
	}
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.NewLogger(cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return nil, u.WrapErr("new logger", err)
	}
	return log, nil
}
