package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/skillsenselab/wirekit/config"
)

// Profile names a wiring variant: which modules apply and which settings
// overrides ride along. Profiles let one binary ship several assemblies
// (dev, prod, worker) selected at startup.
type Profile struct {
	Name     string          `yaml:"name"`
	Modules  []string        `yaml:"modules"`
	Settings ProfileSettings `yaml:"settings"`
}

// ProfileSettings carries optional overrides applied on top of the loaded
// configuration before it is validated. Zero values leave the
// configuration untouched.
type ProfileSettings struct {
	Environment string `yaml:"environment"`
	Debug       *bool  `yaml:"debug"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
}

// Apply copies the non-empty overrides onto s.
func (ps ProfileSettings) Apply(s *config.Settings) {
	if ps.Environment != "" {
		s.Environment = ps.Environment
	}
	if ps.Debug != nil {
		s.Debug = *ps.Debug
	}
	if ps.LogLevel != "" {
		s.Logging.Level = ps.LogLevel
	}
	if ps.LogFormat != "" {
		s.Logging.Format = ps.LogFormat
	}
}

// Includes reports whether the profile selects the named module.
func (p *Profile) Includes(module string) bool {
	for _, m := range p.Modules {
		if m == module {
			return true
		}
	}
	return false
}

// ProfileLoader loads profile definitions by name.
type ProfileLoader interface {
	Load(name string) (*Profile, error)
}

// FileProfileLoader loads profiles from YAML files on disk.
type FileProfileLoader struct {
	dirs []string
}

// NewFileProfileLoader creates a loader that searches the given directories
// for profile YAML files.
func NewFileProfileLoader(dirs ...string) ProfileLoader {
	return &FileProfileLoader{dirs: dirs}
}

// Load searches for a profile YAML file by name across configured directories.
// It searches for {name}.yaml and {name}.yml in each directory (recursively).
func (l *FileProfileLoader) Load(name string) (*Profile, error) {
	for _, dir := range l.dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			// Try direct path first
			path := filepath.Join(dir, name+ext)
			if p, err := loadProfileFile(path); err == nil {
				return p, nil
			}

			// Search subdirectories
			matches, _ := filepath.Glob(filepath.Join(dir, "**", name+ext))
			for _, match := range matches {
				if p, err := loadProfileFile(match); err == nil {
					return p, nil
				}
			}
		}
	}
	return nil, fmt.Errorf("bootstrap: profile %q not found in %v", name, l.dirs)
}

func loadProfileFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("bootstrap: parsing %s: %w", path, err)
	}
	if p.Name == "" {
		base := filepath.Base(path)
		p.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return &p, nil
}

// LoadProfile loads a profile from explicit file paths.
// It tries each path until one succeeds.
func LoadProfile(name string, paths ...string) (*Profile, error) {
	for _, path := range paths {
		p, err := loadProfileFile(path)
		if err == nil {
			return p, nil
		}
	}
	return nil, fmt.Errorf("bootstrap: profile %q not found in provided paths", name)
}

// selectModules returns the modules the profile names, in profile order.
// A nil profile selects every module in the given order.
func selectModules(all []Module, p *Profile) ([]Module, error) {
	if p == nil {
		return all, nil
	}

	byName := make(map[string]Module, len(all))
	for _, m := range all {
		byName[m.Name] = m
	}

	selected := make([]Module, 0, len(p.Modules))
	for _, name := range p.Modules {
		m, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("bootstrap: profile %q selects unknown module %q", p.Name, name)
		}
		selected = append(selected, m)
	}
	return selected, nil
}
