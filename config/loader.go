package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem abstracts file probing and .env loading so the loader can be
// tested without touching the real working directory.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver finds config and .env files for an application.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns explicit paths when provided and searches the
// standard locations otherwise.
func (r *Resolver) ResolveFiles(appName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}

	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.findConfigFile(appName)
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.findEnvFile(appName)
	}

	return resolved
}

// findConfigFile searches ./configs and the working directory for
// {app}.yaml, {app}.yml, config.yaml, config.yml in that order.
func (r *Resolver) findConfigFile(appName string) string {
	searchPaths := []string{
		fmt.Sprintf("./configs/%s.yaml", appName),
		fmt.Sprintf("./configs/%s.yml", appName),
		"./configs/config.yaml",
		"./configs/config.yml",
		fmt.Sprintf("./%s.yaml", appName),
		fmt.Sprintf("./%s.yml", appName),
		"./config.yaml",
		"./config.yml",
	}

	for _, path := range searchPaths {
		if r.FileSystem.Exists(path) {
			return path
		}
	}
	return ""
}

// findEnvFile searches for .env.{app} then .env in the working directory
// and under ./configs.
func (r *Resolver) findEnvFile(appName string) string {
	envFiles := []string{fmt.Sprintf(".env.%s", appName), ".env"}

	for _, envFile := range envFiles {
		for _, dir := range []string{".", "./configs"} {
			fullPath := fmt.Sprintf("%s/%s", dir, envFile)
			if r.FileSystem.Exists(fullPath) {
				return fullPath
			}
		}
	}
	return ""
}

// LoaderConfig holds loader dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
}

// LoadOption is a functional option for Load.
type LoadOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoadOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoadOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoadOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load populates cfg for the named application. It reads the first YAML
// config file found in the standard locations, loads a .env file when
// present, and lets environment variables (raw or prefixed with the
// uppercased app name) override file values before unmarshalling.
func Load(appName string, cfg interface{}, opts ...LoadOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(appName, lc)

	return loadResolved(appName, cfg, files, lc.FileSystem)
}

func loadResolved(appName string, cfg interface{}, files ResolvedFiles, fs FileSystem) error {
	v := viper.New()
	prefix := envPrefix(appName)

	// 1. YAML file as the base layer
	if files.ConfigFile != "" && fs.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			fmt.Printf("[config] warning: failed to read config file %s: %v\n", files.ConfigFile, err)
		}
	}

	// 2. Environment variables override file values
	v.AutomaticEnv()
	bindEnvVars(v, prefix)

	// 3. .env last, then re-bind so its variables are visible too
	if files.EnvFile != "" && fs.Exists(files.EnvFile) {
		if err := fs.LoadEnv(files.EnvFile); err != nil {
			fmt.Printf("[config] warning: failed to load .env file %s: %v\n", files.EnvFile, err)
		} else {
			bindEnvVars(v, prefix)
		}
	}

	// 4. Unmarshal into the config struct
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: unmarshal for %s: %w", appName, err)
	}
	return nil
}

// envPrefix derives the environment prefix from the app name,
// "demo-app" -> "DEMO_APP".
func envPrefix(appName string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(appName) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// bindEnvVars maps every environment variable onto the nested key forms
// viper understands, so LOGGING_LEVEL (or {PREFIX}_LOGGING_LEVEL) reaches
// logging.level without per-field BindEnv calls.
func bindEnvVars(v *viper.Viper, prefix string) {
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		key, value := pair[0], pair[1]

		for _, variant := range envKeyVariants(key) {
			v.Set(variant, value)
		}
		if prefix != "" && strings.HasPrefix(key, prefix+"_") {
			for _, variant := range envKeyVariants(strings.TrimPrefix(key, prefix+"_")) {
				v.Set(variant, value)
			}
		}
	}
}

// envKeyVariants expands an UPPER_SNAKE key into the nested forms it may
// address. LOGGING_NO_COLOR yields logging_no_color, logging.no.color and
// logging.no_color, so both flat and nested mapstructure keys match.
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) <= 1 {
		return []string{lower}
	}

	variants := []string{lower, strings.ReplaceAll(lower, "_", ".")}
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}
	return dedupe(variants)
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
