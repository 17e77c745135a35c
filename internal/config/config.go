// Package config loads the tool half of argus.toml: the [check]
// section with run settings and per-rule [rules.<name>] sections with
// enablement, severity overrides and file targets. The package half
// ([package], [dependencies]) belongs to internal/project.
package config

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	ignore "github.com/sabhiram/go-gitignore"

	"argus/internal/cache"
	"argus/internal/diag"
)

// Format names a diagnostic renderer.
type Format string

const (
	FormatPretty Format = "pretty"
	FormatShort  Format = "short"
	FormatJSON   Format = "json"
	FormatSARIF  Format = "sarif"
)

// ParseFormat maps a configuration string onto a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", string(FormatPretty):
		return FormatPretty, nil
	case string(FormatShort):
		return FormatShort, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatSARIF):
		return FormatSARIF, nil
	}
	return "", fmt.Errorf("unknown output format %q (want pretty, short, json or sarif)", s)
}

// FailOn is the minimum severity that makes a run fail.
type FailOn uint8

const (
	// FailOnError fails the run on error diagnostics only.
	FailOnError FailOn = iota
	// FailOnWarning fails on warnings and errors.
	FailOnWarning
	// FailOnInfo fails on any diagnostic.
	FailOnInfo
	// FailOnNever always reports success.
	FailOnNever
)

// ParseFailOn maps a configuration string onto a FailOn policy.
func ParseFailOn(s string) (FailOn, error) {
	switch s {
	case "", "error":
		return FailOnError, nil
	case "warning":
		return FailOnWarning, nil
	case "info":
		return FailOnInfo, nil
	case "never":
		return FailOnNever, nil
	}
	return 0, fmt.Errorf("unknown fail-on policy %q (want error, warning, info or never)", s)
}

// Fails reports whether a diagnostic of severity sev fails the run.
func (f FailOn) Fails(sev diag.Severity) bool {
	switch f {
	case FailOnError:
		return sev >= diag.SevError
	case FailOnWarning:
		return sev >= diag.SevWarning
	case FailOnInfo:
		return true
	}
	return false
}

func (f FailOn) String() string {
	switch f {
	case FailOnError:
		return "error"
	case FailOnWarning:
		return "warning"
	case FailOnInfo:
		return "info"
	case FailOnNever:
		return "never"
	}
	return "unknown"
}

// Check holds the [check] run settings.
type Check struct {
	Jobs           int
	Format         Format
	MaxDiagnostics int
	FailOn         FailOn
}

// Rule holds one [rules.<name>] section.
type Rule struct {
	Enabled     bool
	Severity    diag.Severity
	HasSeverity bool
	Include     []string
	Exclude     []string

	include *ignore.GitIgnore
	exclude *ignore.GitIgnore
}

// Config is the decoded tool configuration.
type Config struct {
	Check Check
	Rules map[string]Rule
}

type checkSection struct {
	Jobs           int    `toml:"jobs"`
	Format         string `toml:"format"`
	MaxDiagnostics int    `toml:"max-diagnostics"`
	FailOn         string `toml:"fail-on"`
}

type ruleSection struct {
	Enabled  *bool    `toml:"enabled"`
	Severity string   `toml:"severity"`
	Include  []string `toml:"include"`
	Exclude  []string `toml:"exclude"`
}

type configFile struct {
	Check checkSection           `toml:"check"`
	Rules map[string]ruleSection `toml:"rules"`
}

// Default returns the configuration used when argus.toml has no tool
// sections (or does not exist at all).
func Default() *Config {
	return &Config{
		Check: Check{Format: FormatPretty, FailOn: FailOnError},
		Rules: map[string]Rule{},
	}
}

// Load reads the tool sections from the manifest file at path. A
// missing file yields the defaults: configuration is optional.
func Load(path string) (*Config, error) {
	var file configFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}

	cfg := Default()
	cfg.Check.Jobs = file.Check.Jobs
	cfg.Check.MaxDiagnostics = file.Check.MaxDiagnostics

	format, err := ParseFormat(file.Check.Format)
	if err != nil {
		return nil, fmt.Errorf("%s: [check] %w", path, err)
	}
	cfg.Check.Format = format

	failOn, err := ParseFailOn(file.Check.FailOn)
	if err != nil {
		return nil, fmt.Errorf("%s: [check] %w", path, err)
	}
	cfg.Check.FailOn = failOn

	for name, section := range file.Rules {
		rc := Rule{
			Enabled: section.Enabled == nil || *section.Enabled,
			Include: section.Include,
			Exclude: section.Exclude,
		}
		if section.Severity != "" {
			sev, err := diag.ParseSeverity(section.Severity)
			if err != nil {
				return nil, fmt.Errorf("%s: [rules.%s] %w", path, name, err)
			}
			rc.Severity = sev
			rc.HasSeverity = true
		}
		// пустой список целей не компилируем: он матчил бы всё подряд
		if len(rc.Include) > 0 {
			rc.include = ignore.CompileIgnoreLines(rc.Include...)
		}
		if len(rc.Exclude) > 0 {
			rc.exclude = ignore.CompileIgnoreLines(rc.Exclude...)
		}
		cfg.Rules[name] = rc
	}
	return cfg, nil
}

// Validate rejects sections for rules that are not registered.
func (c *Config) Validate(known []string) error {
	set := make(map[string]bool, len(known))
	for _, name := range known {
		set[name] = true
	}
	var unknown []string
	for name := range c.Rules {
		if !set[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown rule(s) in configuration: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// Enabled reports whether a rule should run at all.
func (c *Config) Enabled(ruleName string) bool {
	rc, ok := c.Rules[ruleName]
	if !ok {
		return true
	}
	return rc.Enabled
}

// SeverityOf returns the configured severity override for a rule.
func (c *Config) SeverityOf(ruleName string) (diag.Severity, bool) {
	rc, ok := c.Rules[ruleName]
	if !ok || !rc.HasSeverity {
		return 0, false
	}
	return rc.Severity, true
}

// Match reports whether a rule runs on file: the file must match the
// include targets (when present) and not match the exclude targets.
// Passed to the engine as its target filter.
func (c *Config) Match(ruleName, file string) bool {
	rc, ok := c.Rules[ruleName]
	if !ok {
		return true
	}
	if rc.include != nil && !rc.include.MatchesPath(file) {
		return false
	}
	if rc.exclude != nil && rc.exclude.MatchesPath(file) {
		return false
	}
	return true
}

// Fingerprint digests the analysis-relevant configuration: the rule
// sections. A target or enablement change must invalidate cached
// contributions (an excluded module's contribution stops existing for
// ordered rules); run settings like format and jobs stay out.
func (c *Config) Fingerprint() cache.Digest {
	names := make([]string, 0, len(c.Rules))
	for name := range c.Rules {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		rc := c.Rules[name]
		fmt.Fprintf(&b, "%s|%t|%t|%d|%q|%q\n",
			name, rc.Enabled, rc.HasSeverity, rc.Severity, rc.Include, rc.Exclude)
	}
	return cache.Digest(sha256.Sum256([]byte(b.String())))
}
