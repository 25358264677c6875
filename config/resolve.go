package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// FileSystem is the slice of the OS the resolver touches.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem is the os-backed FileSystem.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv exports the .env entries that are not already set.
func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver locates the config and .env files of a command.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles are the paths picked by ResolveFiles; empty means none.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles keeps explicit paths from opts and searches for the rest.
func (r *Resolver) ResolveFiles(service string, opts LoaderConfig) ResolvedFiles {
	files := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if files.ConfigFile == "" {
		files.ConfigFile = r.first(configCandidates(service))
	}
	if files.EnvFile == "" {
		files.EnvFile = r.first(envCandidates(service))
	}
	return files
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// configCandidates lists where config.yml may live, most specific first.
func configCandidates(service string) []string {
	paths := []string{
		"./cmd/" + service + "/config.yml",
		"./cmd/" + service + "/config.yaml",
		"./config/config.yml",
		"./config.yml",
		"./config.yaml",
	}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, service, "config.yml"))
	}
	return paths
}

// envCandidates prefers ".env.<service>" over ".env" in each directory.
func envCandidates(service string) []string {
	var paths []string
	for _, name := range []string{".env." + service, ".env"} {
		paths = append(paths, name, "./cmd/"+service+"/"+name, "./config/"+name)
	}
	return paths
}
