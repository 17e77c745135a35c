package project

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the project manifest filename.
const ManifestName = "argus.toml"

type PackageKind uint8

const (
	KindApplication PackageKind = iota
	KindPackage
)

func (k PackageKind) String() string {
	switch k {
	case KindApplication:
		return "application"
	case KindPackage:
		return "package"
	default:
		return fmt.Sprintf("PackageKind(%d)", uint8(k))
	}
}

var (
	// ErrPackageSectionMissing indicates that [package] is missing in the manifest.
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrPackageNameMissing indicates that [package].name is missing or empty.
	ErrPackageNameMissing = errors.New("missing [package].name")
)

// Manifest is the parsed argus.toml of a project.
type Manifest struct {
	Path       string // путь к самому argus.toml
	Name       string
	Kind       PackageKind
	SourceDirs []string // каталоги исходников относительно корня, по умолчанию ["src"]
	Direct     []string // имена пакетов из [dependencies].direct
	Test       []string // имена пакетов из [dependencies].test
}

type manifestFile struct {
	Package struct {
		Name       string   `toml:"name"`
		Kind       string   `toml:"kind"`
		SourceDirs []string `toml:"source-directories"`
	} `toml:"package"`
	Dependencies struct {
		Direct []string `toml:"direct"`
		Test   []string `toml:"test"`
	} `toml:"dependencies"`
}

// LoadManifest parses an argus.toml manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	var cfg manifestFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	name := strings.TrimSpace(cfg.Package.Name)
	if !meta.IsDefined("package", "name") || name == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrPackageNameMissing)
	}

	kind := KindApplication
	if meta.IsDefined("package", "kind") {
		switch strings.TrimSpace(cfg.Package.Kind) {
		case "application":
			kind = KindApplication
		case "package":
			kind = KindPackage
		default:
			return nil, fmt.Errorf("%s: invalid [package].kind %q: want application or package", path, cfg.Package.Kind)
		}
	}

	dirs := cfg.Package.SourceDirs
	if len(dirs) == 0 {
		dirs = []string{"src"}
	}

	return &Manifest{
		Path:       path,
		Name:       name,
		Kind:       kind,
		SourceDirs: dirs,
		Direct:     cfg.Dependencies.Direct,
		Test:       cfg.Dependencies.Test,
	}, nil
}

// DeclaredDependencies returns the manifest's dependency package names,
// direct and test combined, sorted and deduplicated.
func (m *Manifest) DeclaredDependencies() []string {
	if m == nil {
		return nil
	}
	uniq := make(map[string]struct{}, len(m.Direct)+len(m.Test))
	for _, name := range m.Direct {
		uniq[name] = struct{}{}
	}
	for _, name := range m.Test {
		uniq[name] = struct{}{}
	}
	out := make([]string, 0, len(uniq))
	for name := range uniq {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
