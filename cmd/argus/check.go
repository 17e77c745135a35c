package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"argus/internal/baseline"
	"argus/internal/cache"
	"argus/internal/config"
	"argus/internal/diag"
	"argus/internal/diagfmt"
	"argus/internal/engine"
	"argus/internal/observ"
	"argus/internal/project"
	"argus/internal/rule"
	"argus/internal/rules"
	"argus/internal/source"
	"argus/internal/trace"
)

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Run the rule set over a project",
	Long: `Load the project rooted at [path] (current directory by default),
parse and validate its modules, run every configured rule and render
the diagnostics. The exit code follows the fail-on policy.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "", "output format (pretty|short|json|sarif); config wins when empty")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers per rule (0=config, then auto)")
	checkCmd.Flags().Bool("no-cache", false, "drop cached rule results before the run")
	checkCmd.Flags().String("ui", "auto", "live progress UI (auto|on|off)")
	checkCmd.Flags().String("baseline", "", "filter out diagnostics recorded in this baseline file")
	checkCmd.Flags().String("write-baseline", "", "record the run's diagnostics into this baseline file")
	checkCmd.Flags().String("fail-on", "", "minimum severity that fails the run (error|warning|info|never)")
}

// runSettings собирает разобранные флаги, общие для check и watch.
type runSettings struct {
	format   config.Format
	failOn   config.FailOn
	jobs     int
	maxDiags int
	color    bool
	quiet    bool
	timings  bool
	ui       uiMode
	noCache  bool
}

// readRunSettings parses the shared flags and resolves them against the
// configuration: an explicitly set flag wins, otherwise config does.
func readRunSettings(cmd *cobra.Command, cfg *config.Config) (runSettings, error) {
	var st runSettings

	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return st, fmt.Errorf("failed to get color flag: %w", err)
	}
	st.color = colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))

	st.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return st, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	st.timings, err = cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return st, fmt.Errorf("failed to get timings flag: %w", err)
	}

	st.maxDiags, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return st, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if cfg.Check.MaxDiagnostics > 0 && !cmd.Root().PersistentFlags().Changed("max-diagnostics") {
		st.maxDiags = cfg.Check.MaxDiagnostics
	}

	formatFlag, err := cmd.Flags().GetString("format")
	if err != nil {
		return st, fmt.Errorf("failed to get format flag: %w", err)
	}
	st.format = cfg.Check.Format
	if formatFlag != "" {
		st.format, err = config.ParseFormat(formatFlag)
		if err != nil {
			return st, err
		}
	}

	st.jobs, err = cmd.Flags().GetInt("jobs")
	if err != nil {
		return st, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if st.jobs <= 0 {
		st.jobs = cfg.Check.Jobs
	}

	st.failOn = cfg.Check.FailOn
	// watch не завершает процесс по серьёзности и флага не несёт
	if cmd.Flags().Lookup("fail-on") != nil {
		failOnFlag, err := cmd.Flags().GetString("fail-on")
		if err != nil {
			return st, fmt.Errorf("failed to get fail-on flag: %w", err)
		}
		if failOnFlag != "" {
			st.failOn, err = config.ParseFailOn(failOnFlag)
			if err != nil {
				return st, err
			}
		}
	}

	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return st, fmt.Errorf("failed to get ui flag: %w", err)
	}
	st.ui, err = readUIMode(uiFlag)
	if err != nil {
		return st, err
	}

	st.noCache, err = cmd.Flags().GetBool("no-cache")
	if err != nil {
		return st, fmt.Errorf("failed to get no-cache flag: %w", err)
	}

	color.NoColor = !st.color
	return st, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	cfg, err := config.Load(filepath.Join(root, project.ManifestName))
	if err != nil {
		return err
	}
	if err := cfg.Validate(rules.Names()); err != nil {
		return err
	}
	st, err := readRunSettings(cmd, cfg)
	if err != nil {
		return err
	}

	baselinePath, err := cmd.Flags().GetString("baseline")
	if err != nil {
		return fmt.Errorf("failed to get baseline flag: %w", err)
	}
	writeBaselinePath, err := cmd.Flags().GetString("write-baseline")
	if err != nil {
		return fmt.Errorf("failed to get write-baseline flag: %w", err)
	}

	profCleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer profCleanup()
	traceCleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer traceCleanup()

	tracer := trace.FromContext(cmd.Context())
	driverSpan := trace.Begin(tracer, trace.ScopeDriver, "check", 0)
	defer driverSpan.End("")

	timer := observ.NewTimer()

	loadIdx := timer.Begin("load")
	loadSpan := trace.Begin(tracer, trace.ScopePass, "load", driverSpan.ID())
	loader := project.NewLoader(root)
	parseBag := diag.NewBag(st.maxDiags)
	res, err := loader.Load(diag.BagReporter{Bag: parseBag})
	if err != nil {
		loadSpan.End("load failed")
		return err
	}
	p, verr := project.Validate(res.Raw, res.Manifest, res.Readme, res.Deps)
	loadDetail := fmt.Sprintf("%d modules", len(res.Raw))
	loadSpan.End(loadDetail)
	timer.End(loadIdx, loadDetail)

	if verr != nil {
		diags := structuralDiagnostics(parseBag, verr)
		if err := renderDiagnostics(os.Stdout, diags, loader.FileSet, st); err != nil {
			return err
		}
		return silentExit(cmd)
	}

	analyzeIdx := timer.Begin("analyze")
	analyzeSpan := trace.Begin(tracer, trace.ScopePass, "analyze", driverSpan.ID())
	result, err := runAnalysis(cmd.Context(), p, cfg, st, "checking "+root)
	if err != nil {
		analyzeSpan.End("analysis failed")
		return err
	}
	analyzeDetail := fmt.Sprintf("%d cached, %d computed", result.CacheHits, result.CacheMisses)
	analyzeSpan.End(analyzeDetail)
	timer.End(analyzeIdx, analyzeDetail)

	diags := applySeverities(cfg, result.Diagnostics)

	if baselinePath != "" {
		base, err := baseline.Load(baselinePath)
		if err != nil {
			return fmt.Errorf("failed to load baseline: %w", err)
		}
		diags = base.Filter(diags)
	}
	if writeBaselinePath != "" {
		if err := baseline.New(diags).Write(writeBaselinePath); err != nil {
			return fmt.Errorf("failed to write baseline: %w", err)
		}
		if !st.quiet {
			fmt.Fprintf(os.Stdout, "baseline: %d diagnostic(s) recorded in %s\n", len(diags), writeBaselinePath)
		}
	}

	renderIdx := timer.Begin("render")
	renderSpan := trace.Begin(tracer, trace.ScopePass, "render", driverSpan.ID())
	if err := renderDiagnostics(os.Stdout, diags, loader.FileSet, st); err != nil {
		renderSpan.End("render failed")
		return err
	}
	renderSpan.End(string(st.format))
	timer.End(renderIdx, string(st.format))

	if st.timings {
		fmt.Fprint(os.Stdout, timer.Summary())
	}

	for _, d := range diags {
		if st.failOn.Fails(d.Severity) {
			return silentExit(cmd)
		}
	}
	return nil
}

// runAnalysis executes the configured rules, behind the progress UI
// when the settings ask for one.
func runAnalysis(ctx context.Context, p *project.Project, cfg *config.Config, st runSettings, title string) (*engine.Result, error) {
	kept, names := enabledRules(cfg)
	opts := engine.Options{
		Rules:             kept,
		Filter:            cfg.Match,
		Jobs:              st.jobs,
		MaxDiagnostics:    st.maxDiags,
		ConfigFingerprint: cfg.Fingerprint(),
	}
	if st.noCache {
		p.Cache().Purge()
		opts.ConfigFingerprint = cache.Digest{}
	}
	if shouldUseTUI(st.ui, st.format) {
		return runAnalysisWithUI(ctx, title, names, p, opts)
	}
	return engine.Run(ctx, p, opts)
}

// enabledRules returns the builtin rules the configuration keeps on.
func enabledRules(cfg *config.Config) ([]*rule.Rule, []string) {
	all := rules.All()
	kept := make([]*rule.Rule, 0, len(all))
	names := make([]string, 0, len(all))
	for _, r := range all {
		if cfg.Enabled(r.Name()) {
			kept = append(kept, r)
			names = append(names, r.Name())
		}
	}
	return kept, names
}

// applySeverities rewrites diagnostic severities per the configuration
// overrides. Cached entries keep the rule's own severity, so the
// override is applied on every run's way out.
func applySeverities(cfg *config.Config, diags []diag.Diagnostic) []diag.Diagnostic {
	for i := range diags {
		if sev, ok := cfg.SeverityOf(diags[i].Rule); ok {
			diags[i].Severity = sev
		}
	}
	return diags
}

// structuralDiagnostics turns a failed validation into the rendered
// diagnostic list: parse diagnostics as they are, any other structural
// error as a single project-level entry.
func structuralDiagnostics(parseBag *diag.Bag, verr error) []diag.Diagnostic {
	parseBag.Sort()
	items := parseBag.Items()
	var pf *project.ParseFailedError
	if errors.As(verr, &pf) {
		return items
	}
	return append(items, diagfmt.ProjectError(verr))
}

// renderDiagnostics writes diags in the configured format.
func renderDiagnostics(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet, st runSettings) error {
	switch st.format {
	case config.FormatShort:
		diagfmt.Short(w, diags, fs)
	case config.FormatJSON:
		return diagfmt.JSON(w, diags, fs, diagfmt.JSONOpts{IncludePositions: true, Max: st.maxDiags})
	case config.FormatSARIF:
		return diagfmt.Sarif(w, diags, fs, diagfmt.SarifRunMeta{ToolName: "argus", ToolVersion: "0.1.0"})
	default:
		diagfmt.Pretty(w, diags, fs, diagfmt.PrettyOpts{
			Color:       st.color,
			Context:     2,
			ShowDetails: true,
			ShowFixes:   true,
			Max:         st.maxDiags,
		})
		if !st.quiet {
			diagfmt.WriteSummary(w, diags, st.color)
		}
	}
	return nil
}

// silentExit fails the command without reprinting anything: the
// diagnostics already went out.
func silentExit(cmd *cobra.Command) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return fmt.Errorf("")
}
