package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
	EnvPrefix  string // Defaults to the upper-cased service name
	Defaults   map[string]any
	Flags      *pflag.FlagSet
	FlagKeys   map[string]string // flag name -> config key
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix overrides the environment variable prefix.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

// WithDefaults registers default values keyed by dotted config path.
func WithDefaults(defaults map[string]any) LoaderOption {
	return func(lc *LoaderConfig) { lc.Defaults = defaults }
}

// WithFlags binds command-line flags to config keys. Only flags the user
// actually set take precedence over env and file values.
func WithFlags(fs *pflag.FlagSet, keys map[string]string) LoaderOption {
	return func(lc *LoaderConfig) {
		lc.Flags = fs
		lc.FlagKeys = keys
	}
}

// LoadConfig fills cfg from, in increasing precedence: defaults, the YAML
// config file, the environment (after loading any .env file) and the flags
// the user set.
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: RealFileSystem{}, EnvPrefix: envPrefix(serviceName)}
	for _, opt := range opts {
		opt(&lc)
	}
	files := (&Resolver{FileSystem: lc.FileSystem}).ResolveFiles(serviceName, lc)

	v := viper.New()
	for key, value := range lc.Defaults {
		v.SetDefault(key, value)
	}
	steps := []func() error{
		func() error { return readConfigFile(v, lc, files.ConfigFile) },
		func() error { return loadEnvFile(lc.FileSystem, files.EnvFile) },
		func() error { return bindEnv(v, lc.EnvPrefix) },
		func() error { return bindFlags(v, lc.Flags, lc.FlagKeys) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("%s config: %w", serviceName, err)
		}
	}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("%s config: decode: %w", serviceName, err)
	}
	return nil
}

// readConfigFile is a no-op when no file was found, and an error when an
// explicitly requested file is missing.
func readConfigFile(v *viper.Viper, lc LoaderConfig, path string) error {
	if path == "" {
		return nil
	}
	if !lc.FileSystem.Exists(path) {
		if lc.ConfigFile != "" {
			return fmt.Errorf("config file %s not found", path)
		}
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

func loadEnvFile(fs FileSystem, path string) error {
	if path == "" || !fs.Exists(path) {
		return nil
	}
	if err := fs.LoadEnv(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// bindEnv maps PREFIX_A_B_C onto every key it could name, so nested keys
// without defaults are still reachable from the environment.
func bindEnv(v *viper.Viper, prefix string) error {
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, env := range os.Environ() {
		name, _, ok := strings.Cut(env, "=")
		key, found := strings.CutPrefix(name, prefix+"_")
		if !ok || !found {
			continue
		}
		for _, variant := range generateEnvKeyVariants(key) {
			if err := v.BindEnv(variant, name); err != nil {
				return err
			}
		}
	}
	return nil
}

// bindFlags binds flags to keys. viper only lets a flag win when it was set.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	if fs == nil {
		return nil
	}
	for name, key := range keys {
		f := fs.Lookup(name)
		if f == nil {
			return fmt.Errorf("flag %q is not defined", name)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %q: %w", name, err)
		}
	}
	return nil
}

func envPrefix(serviceName string) string {
	return strings.ToUpper(strings.ReplaceAll(serviceName, "-", "_"))
}

// maxEnvKeyParts bounds generateEnvKeyVariants at 2^(n-1) variants.
const maxEnvKeyParts = 8

// generateEnvKeyVariants lowercases key and returns every way of joining
// its underscore-separated parts with "." or "_":
//
//	OPENAI_API_KEY -> openai_api_key, openai.api_key, openai_api.key, openai.api.key
func generateEnvKeyVariants(key string) []string {
	parts := strings.Split(strings.ToLower(key), "_")
	if len(parts) > maxEnvKeyParts {
		return []string{strings.Join(parts, "_"), strings.Join(parts, ".")}
	}
	variants := []string{parts[0]}
	for _, part := range parts[1:] {
		next := make([]string, 0, 2*len(variants))
		for _, v := range variants {
			next = append(next, v+"_"+part, v+"."+part)
		}
		variants = next
	}
	return variants
}
