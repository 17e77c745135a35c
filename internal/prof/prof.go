// Package prof wires the runtime profilers behind one start/stop pair.
// Profiling is strictly an opt-in debugging aid; the zero Options start
// nothing and Stop on an idle session is a no-op.
package prof

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// Options names the profile outputs to collect. Empty paths disable
// the corresponding profiler.
type Options struct {
	CPUPath   string // pprof CPU samples
	MemPath   string // heap profile written on Stop
	TracePath string // runtime execution trace
}

// Session owns the running profilers. One session per process.
type Session struct {
	cpu     *os.File
	trace   *os.File
	memPath string
}

// Start enables the requested profilers. On any failure the already
// started ones are stopped, so a half-open session never escapes.
func Start(opts Options) (*Session, error) {
	s := &Session{memPath: opts.MemPath}

	if opts.CPUPath != "" {
		f, err := os.Create(opts.CPUPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to start cpu profile: %w", err)
		}
		s.cpu = f
	}

	if opts.TracePath != "" {
		f, err := os.Create(opts.TracePath)
		if err != nil {
			s.stopCPU()
			return nil, fmt.Errorf("failed to create runtime trace: %w", err)
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			s.stopCPU()
			return nil, fmt.Errorf("failed to start runtime trace: %w", err)
		}
		s.trace = f
	}

	return s, nil
}

// Stop halts the profilers and writes the heap profile if requested.
// Safe on nil sessions and safe to call more than once.
func (s *Session) Stop() {
	if s == nil {
		return
	}

	if s.trace != nil {
		trace.Stop()
		_ = s.trace.Close()
		s.trace = nil
	}
	s.stopCPU()

	if s.memPath != "" {
		if err := writeHeapProfile(s.memPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write heap profile: %v\n", err)
		}
		s.memPath = ""
	}
}

func (s *Session) stopCPU() {
	if s.cpu == nil {
		return
	}
	pprof.StopCPUProfile()
	_ = s.cpu.Close()
	s.cpu = nil
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	// свежая статистика аллокаций, иначе профиль отстаёт на цикл GC
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}
