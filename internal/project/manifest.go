package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file FindManifest looks for.
const ManifestName = "c2sema.toml"

var (
	// ErrProjectSectionMissing indicates that [project] is missing.
	ErrProjectSectionMissing = errors.New("missing [project]")
	// ErrProjectNameMissing indicates that [project].name is missing or blank.
	ErrProjectNameMissing = errors.New("missing [project].name")
	// ErrNoModules indicates a manifest without [[module]] entries.
	ErrNoModules = errors.New("no [[module]] entries")
	// ErrModuleInvalid covers a [[module]] entry without name or files.
	ErrModuleInvalid = errors.New("invalid [[module]] entry")
	// ErrModuleDuplicate indicates two [[module]] entries with the same name.
	ErrModuleDuplicate = errors.New("duplicate module")
)

// Manifest is a parsed c2sema.toml.
type Manifest struct {
	Path string `toml:"-"` // путь к самому манифесту
	Root string `toml:"-"` // каталог манифеста, база для путей модулей

	Project  ProjectConfig  `toml:"project"`
	Analysis AnalysisConfig `toml:"analysis"`
	Modules  []ModuleConfig `toml:"module"`
}

type ProjectConfig struct {
	Name  string `toml:"name"`
	Entry string `toml:"entry"`
}

// AnalysisConfig mirrors the analyser options. Missing keys keep the
// defaults from DefaultAnalysis.
type AnalysisConfig struct {
	PrintTypes       bool `toml:"print-types"`
	PrintInits       bool `toml:"print-inits"`
	PrintBodies      bool `toml:"print-bodies"`
	PrintLib         bool `toml:"print-lib"`
	CheckUnused      bool `toml:"check-unused"`
	WarnUnusedLocals bool `toml:"warn-unused-locals"`
	MaxDiagnostics   int  `toml:"max-diagnostics"`
}

// DefaultAnalysis returns the settings used when [analysis] is absent.
func DefaultAnalysis() AnalysisConfig {
	return AnalysisConfig{CheckUnused: true, MaxDiagnostics: 100}
}

// ModuleConfig is one [[module]] entry. Files are interchange documents,
// relative to the manifest directory unless absolute.
type ModuleConfig struct {
	Name     string   `toml:"name"`
	Files    []string `toml:"files"`
	External bool     `toml:"external"`
}

// FindManifest walks up from startDir to locate c2sema.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest parses and validates the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is provided by the caller
	if err != nil {
		return nil, err
	}
	m, err := ParseManifest(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Path = path
	m.Root = filepath.Dir(path)
	return m, nil
}

// ParseManifest parses manifest text. Path and Root stay empty.
func ParseManifest(text string) (*Manifest, error) {
	m := &Manifest{Analysis: DefaultAnalysis()}
	meta, err := toml.Decode(text, m)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if !meta.IsDefined("project") {
		return nil, ErrProjectSectionMissing
	}
	if !meta.IsDefined("project", "name") || strings.TrimSpace(m.Project.Name) == "" {
		return nil, ErrProjectNameMissing
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if len(m.Modules) == 0 {
		return nil, ErrNoModules
	}
	seen := make(map[string]int, len(m.Modules))
	for i, mod := range m.Modules {
		name := strings.TrimSpace(mod.Name)
		switch {
		case name == "":
			return nil, fmt.Errorf("%w: module #%d has no name", ErrModuleInvalid, i+1)
		case len(mod.Files) == 0:
			return nil, fmt.Errorf("%w: module %q lists no files", ErrModuleInvalid, name)
		}
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %q (entries #%d and #%d)", ErrModuleDuplicate, name, prev+1, i+1)
		}
		seen[name] = i
		m.Modules[i].Name = name
	}
	if m.Analysis.MaxDiagnostics < 0 {
		return nil, fmt.Errorf("[analysis].max-diagnostics must not be negative, got %d", m.Analysis.MaxDiagnostics)
	}
	return m, nil
}

// FilePaths returns the module's files resolved against root.
func (mc ModuleConfig) FilePaths(root string) []string {
	out := make([]string, len(mc.Files))
	for i, f := range mc.Files {
		f = filepath.FromSlash(f)
		if !filepath.IsAbs(f) && root != "" {
			f = filepath.Join(root, f)
		}
		out[i] = f
	}
	return out
}

// Module returns the entry called name.
func (m *Manifest) Module(name string) (ModuleConfig, bool) {
	for _, mod := range m.Modules {
		if mod.Name == name {
			return mod, true
		}
	}
	return ModuleConfig{}, false
}
