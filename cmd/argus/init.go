package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"argus/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new argus project",
	Long: `Initialize a new argus project by creating a manifest (argus.toml),
a README and a hello-world module under src/. If [path|name] is omitted,
initializes the current directory. If a non-existing name is provided, a
directory will be created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	// Resolve target directory
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		arg := args[0]
		if !filepath.IsAbs(arg) {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			target = filepath.Join(wd, arg)
		} else {
			target = arg
		}
	}

	// Ensure directory exists
	if st, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, err)
			}
		} else {
			return err
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	// Determine project name from directory basename
	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "argus-project"
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}

	if err := os.WriteFile(manifestPath, []byte(defaultManifest(name)), 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	readmePath := filepath.Join(target, project.ReadmeName)
	createdReadme := false
	if _, err := os.Stat(readmePath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(readmePath, []byte(defaultReadme(name)), 0o600); err != nil {
			return fmt.Errorf("failed to write README: %w", err)
		}
		createdReadme = true
	}

	mainPath := filepath.Join(target, "src", "main"+project.SourceExt)
	createdMain := false
	if _, err := os.Stat(mainPath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(mainPath), 0o755); err != nil {
			return fmt.Errorf("failed to create src directory: %w", err)
		}
		if err := os.WriteFile(mainPath, []byte(defaultMainModule()), 0o600); err != nil {
			return fmt.Errorf("failed to write src/main%s: %w", project.SourceExt, err)
		}
		createdMain = true
	}

	rel := target
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, target); err2 == nil {
			rel = r
		}
	}
	fmt.Fprintf(os.Stdout, "Initialized argus project in %s\n", rel)
	fmt.Fprintf(os.Stdout, "  - %s\n", project.ManifestName)
	if createdReadme {
		fmt.Fprintf(os.Stdout, "  - %s\n", project.ReadmeName)
	} else {
		fmt.Fprintf(os.Stdout, "  - %s (existing)\n", project.ReadmeName)
	}
	if createdMain {
		fmt.Fprintf(os.Stdout, "  - src/main%s\n", project.SourceExt)
	} else {
		fmt.Fprintf(os.Stdout, "  - src/main%s (existing)\n", project.SourceExt)
	}
	return nil
}

// defaultManifest returns a minimal manifest for a fresh project.
func defaultManifest(name string) string {
	return fmt.Sprintf(`[package]
name = "%s"
kind = "application"
source-directories = ["src"]
`, name)
}

// defaultReadme keeps the fresh project clean under the readme rule:
// заголовок первого уровня обязан совпадать с именем пакета.
func defaultReadme(name string) string {
	return fmt.Sprintf("# %s\n\nDescribe the project here.\n", name)
}

// defaultMainModule returns the hello-world entry module. Путь main
// освобождён от проверки неиспользуемых экспортов как входная точка.
func defaultMainModule() string {
	return `module main exposing (main)

main = greeting

greeting = 1
`
}
