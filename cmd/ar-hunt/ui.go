package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/ar-hunt/audio"
	"github.com/lixenwraith/ar-hunt/config"
	"github.com/lixenwraith/ar-hunt/diag"
	"github.com/lixenwraith/ar-hunt/engine"
	"github.com/lixenwraith/ar-hunt/lifecycle"
	"github.com/lixenwraith/ar-hunt/parameter"
	"github.com/lixenwraith/ar-hunt/render"
	"github.com/lixenwraith/ar-hunt/status"
	"github.com/lixenwraith/ar-hunt/tracking"
)

const keysHelp = "space start/stop · 0-9 a-p toggle marker · x collect · r retest · q quit"

var (
	styleText   = tcell.StyleDefault.Foreground(tcell.NewRGBColor(200, 200, 210))
	styleTitle  = tcell.StyleDefault.Foreground(tcell.NewRGBColor(255, 215, 0)).Bold(true)
	styleDim    = tcell.StyleDefault.Foreground(tcell.NewRGBColor(120, 120, 130))
	styleOK     = tcell.StyleDefault.Foreground(tcell.NewRGBColor(80, 200, 120))
	styleFailed = tcell.StyleDefault.Foreground(tcell.NewRGBColor(230, 80, 80))
	styleAlert  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.NewRGBColor(140, 20, 20))
)

// app is the terminal shell: start/stop toggle, instructions, diagnostics, marker info and alerts
// Fields without atomics belong to the UI goroutine; the session loop reads only atomics
type app struct {
	screen   tcell.Screen
	cfg      *config.Config
	logger   zerolog.Logger
	status   *status.Registry
	renderer *render.TerminalRenderer
	checks   *diag.Runner

	session *engine.Session
	sim     *tracking.Simulator
	alert   string

	live     atomic.Pointer[engine.Session]
	report   atomic.Pointer[diag.Report]
	notice   atomic.Pointer[engine.Notice]
	checking atomic.Bool
	diagDone chan diag.Report
}

func newApp(screen tcell.Screen, cfg *config.Config, logger zerolog.Logger) *app {
	a := &app{
		screen:   screen,
		cfg:      cfg,
		logger:   logger,
		status:   status.NewRegistry(),
		renderer: render.NewTerminalRenderer(screen, parameter.HUDRows),
		checks:   diag.Standard(cfg, screen, parameter.CameraDir, logger),
		diagDone: make(chan diag.Report, 1),
	}
	a.renderer.SetOverlay(a.overlay)
	pending := a.checks.Pending()
	a.report.Store(&pending)
	return a
}

func startInputReader(screen tcell.Screen) chan tcell.Event {
	ch := make(chan tcell.Event, 64)
	engine.Go(func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(ch)
				return
			}
			select {
			case ch <- ev:
			default:
			}
		}
	})
	return ch
}

func (a *app) run() {
	inputCh := startInputReader(a.screen)
	ticker := time.NewTicker(parameter.UIRefreshInterval)
	defer ticker.Stop()
	defer a.stop()

	a.retest()
	a.drawIdle()

	for {
		var notices <-chan engine.Notice
		if a.session != nil {
			notices = a.session.Notices()
		}

		select {
		case ev, ok := <-inputCh:
			if !ok || !a.handle(ev) {
				return
			}
		case n := <-notices:
			a.notice.Store(&n)
		case rep := <-a.diagDone:
			a.report.Store(&rep)
		case <-ticker.C:
			if a.session == nil {
				a.drawIdle()
			}
		}
	}
}

// handle applies one input event, returning false to quit
func (a *app) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyEnter:
			a.toggle()
		case ev.Key() != tcell.KeyRune:
		case ev.Rune() == 'q':
			return false
		case ev.Rune() == ' ':
			a.toggle()
		case ev.Rune() == 'r':
			a.retest()
		case ev.Rune() == 'x':
			if a.session != nil {
				a.session.CollectVisible()
			}
		default:
			if id := strings.IndexRune(parameter.MarkerKeys, ev.Rune()); id >= 0 && a.sim != nil {
				a.sim.Toggle(id)
			}
		}
	}
	return true
}

func (a *app) toggle() {
	if a.session != nil {
		a.stop()
		a.drawIdle()
		return
	}
	a.start()
	if a.session == nil {
		a.drawIdle()
	}
}

// start creates a fresh session; failures become the blocking alert and nothing keeps running
func (a *app) start() {
	cam := tracking.SelectCamera(a.cfg.Camera.Device)
	sim := tracking.NewSimulator(a.cfg.TargetBundle, cam, a.cfg.Simulation.Script, a.logger)
	player := audio.New(a.cfg.Audio, a.logger)

	s, err := engine.NewSession(engine.Options{
		Config:   a.cfg,
		Tracker:  sim,
		Camera:   cam,
		Renderer: a.renderer,
		Audio:    player,
		Status:   a.status,
		Logger:   a.logger,
	})
	if err != nil {
		_ = player.Close()
		a.alert = describe(err)
		return
	}
	if err := s.Start(context.Background()); err != nil {
		_ = s.Close()
		a.alert = describe(err)
		return
	}

	a.alert = ""
	a.notice.Store(nil)
	a.session, a.sim = s, sim
	a.live.Store(s)
}

func (a *app) stop() {
	if a.session == nil {
		return
	}
	a.live.Store(nil)
	if err := a.session.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("session teardown")
	}
	a.session, a.sim = nil, nil
	a.screen.Clear()
}

// describe turns start errors into the alert panel text
func describe(err error) string {
	switch {
	case errors.Is(err, tracking.ErrCameraUnavailable):
		return "Camera unavailable. Check the device and its permissions. " + err.Error()
	case errors.Is(err, tracking.ErrBundleMissing):
		return "Target bundle missing. Compile the reference images first. " + err.Error()
	default:
		return "AR start failed. " + err.Error()
	}
}

func (a *app) retest() {
	if !a.checking.CompareAndSwap(false, true) {
		return
	}
	pending := a.checks.Pending()
	a.report.Store(&pending)
	engine.Go(func() {
		defer a.checking.Store(false)
		rep := a.checks.Run(context.Background())
		select {
		case a.diagDone <- rep:
		default:
			a.report.Store(&rep)
		}
	})
}

// overlay builds the HUD rows; runs on the session loop goroutine
func (a *app) overlay() []string {
	s := a.live.Load()
	if s == nil {
		return nil
	}
	snap := s.Snapshot()
	if snap == nil {
		return nil
	}
	fps := a.status.Floats.Get(status.KeyFPS).Get()
	return []string{
		fmt.Sprintf("AR HUNT  score %d  treasures %d/%d  fps %.0f  session %.8s", snap.Score, snap.Found, snap.Total, fps, s.ID),
		markerLine(snap),
		a.noticeLine(snap),
		clueLine(snap),
		diagLine(a.report.Load()),
		keysHelp,
	}
}

func markerLine(snap *engine.Snapshot) string {
	var parts []string
	for _, m := range snap.Markers {
		if !m.Visible && m.State == lifecycle.Idle {
			continue
		}
		label := fmt.Sprintf("[%c %s %s", markerKey(m.ID), m.Name, m.State)
		if m.State == lifecycle.Dwelling {
			label += fmt.Sprintf(" %.1fs", m.Dwell.Seconds())
		}
		if m.Fallback {
			label += " fallback"
		}
		parts = append(parts, label+"]")
	}
	if len(parts) == 0 {
		return "Point the camera at a marker (simulate with 0-9 a-p)"
	}
	return strings.Join(parts, " ")
}

func markerKey(id int) rune {
	if id >= 0 && id < len(parameter.MarkerKeys) {
		return rune(parameter.MarkerKeys[id])
	}
	return '?'
}

func (a *app) noticeLine(snap *engine.Snapshot) string {
	n := a.notice.Load()
	if n == nil || snap.At.Sub(n.At) > parameter.NoticeDisplay {
		return ""
	}
	switch n.Kind {
	case engine.NoticeDetected:
		return fmt.Sprintf("Detected %s, hold steady...", n.Text)
	case engine.NoticeClue:
		return fmt.Sprintf("Clue found: %s", n.Text)
	case engine.NoticeCollected:
		if n.Points == 0 {
			return fmt.Sprintf("Collected %s again", n.Text)
		}
		return fmt.Sprintf("Collected %s  +%d", n.Text, n.Points)
	case engine.NoticeComplete:
		return fmt.Sprintf("Every treasure found! Final score %d", n.Points)
	}
	return ""
}

func clueLine(snap *engine.Snapshot) string {
	if len(snap.Clues) == 0 {
		return "No clues yet"
	}
	parts := make([]string, 0, len(snap.Clues))
	for _, c := range snap.Clues {
		parts = append(parts, fmt.Sprintf("%s→%s", c.Name, c.Heading()))
	}
	return "Clues: " + strings.Join(parts, "  ")
}

func diagLine(rep *diag.Report) string {
	if rep == nil {
		return ""
	}
	parts := make([]string, 0, len(rep.Checks))
	for _, c := range rep.Checks {
		parts = append(parts, fmt.Sprintf("%s %c", c.Name, c.Result.Icon()))
	}
	return "Diagnostics: " + strings.Join(parts, "  ")
}

// drawIdle paints the stopped screen: instructions, marker list, diagnostics and any alert
func (a *app) drawIdle() {
	s := a.screen
	s.Clear()
	w, h := s.Size()

	y := 1
	drawText(s, 2, y, w, styleTitle, "AR Treasure Hunt")
	y += 2

	drawText(s, 2, y, w, styleTitle, "Instructions")
	y++
	for _, line := range []string{
		"Press space to start tracking and the camera",
		fmt.Sprintf("Point at one of the %d compiled markers", len(a.cfg.Markers)),
		fmt.Sprintf("Hold still for %s for the content to appear", a.cfg.Timing.Dwell),
		"Clues spin an arrow toward the next marker",
		"Treasure chests open and reveal gold, coins and sparkles",
		"Target bundle: " + a.cfg.TargetBundle,
	} {
		drawText(s, 4, y, w, styleText, "• "+line)
		y++
	}
	y++

	drawText(s, 2, y, w, styleTitle, fmt.Sprintf("Markers loaded: %d", len(a.cfg.Markers)))
	y++
	for _, m := range a.cfg.Markers {
		if y >= h-parameter.AlertRows-8 {
			drawText(s, 4, y, w, styleDim, "…")
			y++
			break
		}
		detail := m.Description
		if m.IsTreasure() {
			detail = fmt.Sprintf("%s, %d pts", m.Reward, m.Points)
		}
		drawText(s, 4, y, w, styleText, fmt.Sprintf("%c  %-10s %-8s %s", markerKey(m.ID), m.Label(), m.Kind, detail))
		y++
	}
	y++

	y = a.drawDiagnostics(y, w)

	if a.alert != "" {
		a.drawAlert(w, h)
	}
	drawText(s, 2, h-1, w, styleDim, keysHelp)
	s.Show()
}

func (a *app) drawDiagnostics(y, w int) int {
	rep := a.report.Load()
	drawText(a.screen, 2, y, w, styleTitle, "Diagnostics")
	y++
	if rep == nil {
		return y
	}
	for _, c := range rep.Checks {
		style := styleDim
		switch c.Result {
		case diag.OK:
			style = styleOK
		case diag.Failed:
			style = styleFailed
		}
		drawText(a.screen, 4, y, w, style, fmt.Sprintf("%c %-14s %s", c.Result.Icon(), c.Name, c.Detail))
		y++
	}
	if rep.AllPassed() {
		drawText(a.screen, 4, y, w, styleOK, "All checks passed")
	} else {
		drawText(a.screen, 4, y, w, styleDim, "Press r to retest")
	}
	return y + 1
}

func (a *app) drawAlert(w, h int) {
	top := h - parameter.AlertRows - 1
	for y := top; y < top+parameter.AlertRows-1; y++ {
		for x := 1; x < w-1; x++ {
			a.screen.SetContent(x, y, ' ', nil, styleAlert)
		}
	}
	drawText(a.screen, 3, top+1, w-2, styleAlert.Bold(true), "Error")
	for i, line := range wrap(a.alert, w-6, parameter.AlertRows-4) {
		drawText(a.screen, 3, top+2+i, w-2, styleAlert, line)
	}
}

// drawText writes s from x, clipped at width
func drawText(screen tcell.Screen, x, y, width int, style tcell.Style, s string) {
	for _, r := range s {
		if x >= width {
			return
		}
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// wrap splits s into at most maxLines lines of width runes, breaking on spaces
func wrap(s string, width, maxLines int) []string {
	if width <= 0 || maxLines <= 0 {
		return nil
	}
	var lines []string
	var cur []rune
	for _, word := range strings.Fields(s) {
		wr := []rune(word)
		if len(cur) > 0 && len(cur)+1+len(wr) > width {
			lines = append(lines, string(cur))
			cur = cur[:0]
		}
		if len(cur) > 0 {
			cur = append(cur, ' ')
		}
		cur = append(cur, wr...)
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}
