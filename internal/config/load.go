package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	// ConfigDirName is the per-project and per-user config directory.
	ConfigDirName = ".osmo"

	// ConfigFileName is the config file inside ConfigDirName.
	ConfigFileName = "config.yaml"
)

// newViperInstance creates a Viper instance with the standard osmo
// configuration: defaults, OSMO_ env prefix, and key replacer.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("OSMO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults applies built-in defaults, the lowest precedence layer.
func setDefaults(v *viper.Viper) {
	v.SetDefault("run.algorithm", "random")
	v.SetDefault("run.test_end_condition", "length:10")
	v.SetDefault("run.suite_end_condition", "length:1")
	v.SetDefault("run.test_error_strategy", "raise")
	v.SetDefault("run.suite_error_strategy", "raise")
	v.SetDefault("run.stop_on_fail", false)
	v.SetDefault("run.stop_test_on_exception", false)
	v.SetDefault("report.formats", []string{"json"})
	v.SetDefault("report.dir", "osmo-reports")
	v.SetDefault("report.title", "osmo run")
}

// isConfigNotFoundError returns true for viper's missing-file error.
func isConfigNotFoundError(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return stderrors.As(err, &notFound)
}

// Load reads configuration from all file and environment sources with
// proper precedence. Missing config files are not errors.
func Load() (*Config, error) {
	v := newViperInstance()

	if err := mergeFileIfExists(v, globalConfigPath()); err != nil {
		return nil, err
	}
	if err := mergeFileIfExists(v, filepath.Join(ConfigDirName, ConfigFileName)); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// viperDecoderOption wires the mapstructure hooks used when decoding:
// string durations and comma-separated slices from env vars.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// mergeFileIfExists merges one YAML config file into v. A missing file is
// skipped silently.
func mergeFileIfExists(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// globalConfigPath returns ~/.osmo/config.yaml, or "" when the home
// directory cannot be determined. OSMO_HOME overrides the base directory.
func globalConfigPath() string {
	if home := os.Getenv("OSMO_HOME"); home != "" {
		return filepath.Join(home, ConfigFileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ConfigDirName, ConfigFileName)
}
