// Package config loads audioscribe configuration.
//
// Values are layered with Viper: command-line flags override environment
// variables, which override the YAML config file, which overrides the
// defaults registered by the caller. A .env file, when found, is loaded into
// the process environment before variables are bound.
//
// # Usage
//
//	var cfg AppConfig
//	err := config.LoadConfig("audioscribe", &cfg,
//	    config.WithConfigFile(path),
//	    config.WithDefaults(defaults),
//	    config.WithFlags(fs, map[string]string{"model-size": "transcription.tier"}),
//	)
//
// Environment variables use the service name as prefix with
// underscore-separated paths (e.g. AUDIOSCRIBE_TRANSCRIPTION_LANGUAGE).
package config
