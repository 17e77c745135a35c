package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"argus/internal/config"
	"argus/internal/diag"
	"argus/internal/observ"
	"argus/internal/project"
	"argus/internal/rules"
	"argus/internal/trace"
	"argus/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-run checks as project files change",
	Long: `Watch the project rooted at [path] and re-run the rule set on every
change. Single-file edits are applied incrementally; manifest, readme,
dependency listing and module-set changes reload the project.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("format", "", "output format (pretty|short|json|sarif); config wins when empty")
	watchCmd.Flags().Int("jobs", 0, "max parallel workers per rule (0=config, then auto)")
	watchCmd.Flags().Bool("no-cache", false, "drop cached rule results before every pass")
	watchCmd.Flags().String("ui", "off", "live progress UI per pass (auto|on|off)")
	watchCmd.Flags().Duration("debounce", 200*time.Millisecond, "quiet period before a batch of changes is applied")
}

var watchBanner = color.New(color.FgCyan, color.Bold)

func runWatch(cmd *cobra.Command, args []string) error {
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
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return fmt.Errorf("failed to get debounce flag: %w", err)
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

	// трассировщик уезжает в контекст до того, как от него отпочкуются
	// сигнальный контекст и проходы
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !st.quiet {
		watchBanner.Fprintf(os.Stdout, "argus: watching %s (ctrl-c to stop)\n", root)
	}

	sess := watch.NewSession(root)
	runPass(ctx, root, sess, nil, st)

	for {
		if ctx.Err() != nil {
			return nil
		}
		w, err := watch.NewWatcher(root, sessionManifest(sess))
		if err != nil {
			return err
		}
		batches := make(chan []watch.Change, 1)
		go func() {
			watch.Coalesce(ctx, w.Changes(), debounce, func(b []watch.Change) { batches <- b })
			close(batches)
		}()
		runErr := make(chan error, 1)
		go func() { runErr <- w.Run(ctx) }()

		rebuild := false
		for batch := range batches {
			runPass(ctx, root, sess, batch, st)
			if touchesManifest(batch) {
				// набор каталогов исходников мог измениться, надо
				// пересобрать список подписок
				rebuild = true
				break
			}
		}
		_ = w.Close()
		var tail []watch.Change
		for b := range batches {
			tail = append(tail, b...)
		}
		if err := <-runErr; err != nil {
			return err
		}
		if !rebuild {
			return nil
		}
		if len(tail) > 0 {
			runPass(ctx, root, sess, tail, st)
		}
	}
}

// runPass advances the session over one batch and re-renders. Ошибки
// прохода не завершают watch: пользователь чинит файлы, сессия ждёт.
func runPass(ctx context.Context, root string, sess *watch.Session, batch []watch.Change, st runSettings) {
	if ctx.Err() != nil {
		return
	}
	if !st.quiet {
		watchBanner.Fprintf(os.Stdout, "\n[%s] %s\n", time.Now().Format("15:04:05"), describeBatch(batch))
	}

	tracer := trace.FromContext(ctx)
	passSpan := trace.Begin(tracer, trace.ScopeDriver, "pass", 0)
	defer passSpan.End(describeBatch(batch))

	timer := observ.NewTimer()
	loadIdx := timer.Begin("load")
	loadSpan := trace.Begin(tracer, trace.ScopePass, "load", passSpan.ID())
	bag := diag.NewBag(st.maxDiags)
	var err error
	if batch == nil {
		err = sess.Load(diag.BagReporter{Bag: bag})
	} else {
		err = sess.Apply(batch, diag.BagReporter{Bag: bag})
	}
	loadSpan.End("")
	timer.End(loadIdx, "")
	if err != nil {
		diags := structuralDiagnostics(bag, err)
		if rerr := renderDiagnostics(os.Stdout, diags, sess.FileSet(), st); rerr != nil {
			fmt.Fprintf(os.Stderr, "argus: %v\n", rerr)
		}
		return
	}

	// конфиг живёт в манифесте и мог поменяться вместе с ним
	cfg, err := config.Load(filepath.Join(root, project.ManifestName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "argus: %v\n", err)
		return
	}
	if err := cfg.Validate(rules.Names()); err != nil {
		fmt.Fprintf(os.Stderr, "argus: %v\n", err)
		return
	}

	analyzeIdx := timer.Begin("analyze")
	analyzeSpan := trace.Begin(tracer, trace.ScopePass, "analyze", passSpan.ID())
	result, err := runAnalysis(ctx, sess.Project(), cfg, st, "watching "+root)
	if err != nil {
		analyzeSpan.End("analysis failed")
		if ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "argus: %v\n", err)
		}
		return
	}
	analyzeSpan.End(fmt.Sprintf("%d cached, %d computed", result.CacheHits, result.CacheMisses))
	timer.End(analyzeIdx, fmt.Sprintf("%d cached, %d computed", result.CacheHits, result.CacheMisses))

	diags := applySeverities(cfg, result.Diagnostics)
	if rerr := renderDiagnostics(os.Stdout, diags, sess.FileSet(), st); rerr != nil {
		fmt.Fprintf(os.Stderr, "argus: %v\n", rerr)
		return
	}
	if st.timings {
		fmt.Fprint(os.Stdout, timer.Summary())
	}
}

func sessionManifest(sess *watch.Session) *project.Manifest {
	if p := sess.Project(); p != nil {
		if m, ok := p.Manifest(); ok {
			return m
		}
	}
	return nil
}

func touchesManifest(batch []watch.Change) bool {
	for _, ch := range batch {
		if ch.Path == project.ManifestName {
			return true
		}
	}
	return false
}

func describeBatch(batch []watch.Change) string {
	switch len(batch) {
	case 0:
		return "initial check"
	case 1:
		return fmt.Sprintf("%s %s", batch[0].Op, batch[0].Path)
	default:
		return fmt.Sprintf("%d changes", len(batch))
	}
}
