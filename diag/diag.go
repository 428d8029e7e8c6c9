// Package diag runs the advisory startup checks shown in the diagnostics panel
// Checks are independent: a failing check never cancels the others and never blocks a session start
package diag

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/ar-hunt/parameter"
)

// Result of one check
type Result uint8

const (
	Pending Result = iota
	OK
	Failed
)

func (r Result) String() string {
	switch r {
	case OK:
		return "ok"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// Icon returns the single-rune marker used by the panel
func (r Result) Icon() rune {
	switch r {
	case OK:
		return '✓'
	case Failed:
		return '✗'
	default:
		return '…'
	}
}

// Probe performs one check, returning a short detail line
type Probe func(ctx context.Context) (string, error)

// Check is the outcome of one probe
type Check struct {
	Name     string
	Result   Result
	Detail   string
	Duration time.Duration
}

// Report is one full diagnostics run
type Report struct {
	At     time.Time
	Checks []Check
}

// AllPassed reports whether every check finished OK
func (r Report) AllPassed() bool {
	if len(r.Checks) == 0 {
		return false
	}
	for _, c := range r.Checks {
		if c.Result != OK {
			return false
		}
	}
	return true
}

// Pending returns a report with every named check pending, for display before the first run
func (d *Runner) Pending() Report {
	out := Report{Checks: make([]Check, len(d.probes))}
	for i, p := range d.probes {
		out.Checks[i] = Check{Name: p.name}
	}
	return out
}

type namedProbe struct {
	name  string
	probe Probe
}

// Runner holds an ordered set of probes
type Runner struct {
	probes  []namedProbe
	timeout time.Duration
	logger  zerolog.Logger
}

// NewRunner creates an empty runner bounded by parameter.DiagnosticsTimeout
func NewRunner(logger zerolog.Logger) *Runner {
	return &Runner{
		timeout: parameter.DiagnosticsTimeout,
		logger:  logger.With().Str("component", "diag").Logger(),
	}
}

// Add appends a named probe; report order follows registration order
func (d *Runner) Add(name string, p Probe) *Runner {
	d.probes = append(d.probes, namedProbe{name: name, probe: p})
	return d
}

// Run executes every probe concurrently and waits for all of them
func (d *Runner) Run(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	report := Report{At: time.Now(), Checks: make([]Check, len(d.probes))}

	var g errgroup.Group
	for i, np := range d.probes {
		g.Go(func() error {
			report.Checks[i] = d.runOne(ctx, np)
			return nil
		})
	}
	_ = g.Wait()

	passed := 0
	for _, c := range report.Checks {
		if c.Result == OK {
			passed++
		}
	}
	d.logger.Info().Int("passed", passed).Int("total", len(report.Checks)).Msg("diagnostics finished")
	return report
}

func (d *Runner) runOne(ctx context.Context, np namedProbe) (c Check) {
	c.Name = np.name
	start := time.Now()
	defer func() {
		c.Duration = time.Since(start)
		if r := recover(); r != nil {
			c.Result = Failed
			c.Detail = fmt.Sprintf("panic: %v", r)
			d.logger.Error().Str("check", np.name).Interface("panic", r).Msg("diagnostic probe panicked")
		}
	}()

	detail, err := np.probe(ctx)
	if err != nil {
		c.Result = Failed
		c.Detail = err.Error()
		d.logger.Warn().Err(err).Str("check", np.name).Msg("diagnostic failed")
		return c
	}
	c.Result = OK
	c.Detail = detail
	return c
}
