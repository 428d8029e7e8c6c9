package diag

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/ar-hunt/config"
	"github.com/lixenwraith/ar-hunt/tracking"
)

// Check names
const (
	CheckRenderer = "renderer"
	CheckOrigin   = "secure origin"
	CheckCamera   = "camera"
	CheckBundle   = "target bundle"
	CheckModels   = "models"
)

var (
	ErrNoColor         = errors.New("terminal has no color support")
	ErrInsecureOrigin  = errors.New("insecure asset origin")
	ErrNoCamera        = errors.New("no camera found")
	ErrUnreachable     = errors.New("asset unreachable")
	ErrUnsupportedPath = errors.New("unsupported asset location")
)

// ColorSource reports terminal color depth; tcell.Screen satisfies it
type ColorSource interface {
	Colors() int
}

// RendererProbe checks the terminal can show shaded cells; nil means headless output
func RendererProbe(screen ColorSource) Probe {
	return func(context.Context) (string, error) {
		if screen == nil {
			return "headless", nil
		}
		n := screen.Colors()
		switch {
		case n <= 1:
			return "", ErrNoColor
		case n >= 1<<24:
			return "true color", nil
		default:
			return fmt.Sprintf("%d colors", n), nil
		}
	}
}

// OriginProbe accepts local files, https and plain http on loopback hosts only
func OriginProbe(locations []string) Probe {
	return func(context.Context) (string, error) {
		for _, loc := range locations {
			if err := secureOrigin(loc); err != nil {
				return "", err
			}
		}
		return fmt.Sprintf("%d assets", len(locations)), nil
	}
}

func secureOrigin(loc string) error {
	u, ok := parseURL(loc)
	if !ok {
		return nil
	}
	switch u.Scheme {
	case "https":
		return nil
	case "http":
		host := u.Hostname()
		if host == "localhost" || host == "127.0.0.1" || host == "::1" {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrInsecureOrigin, loc)
}

// CameraProbe lists capture devices under dir and, when device is set, requires it to be present
func CameraProbe(dir, device string) Probe {
	return func(context.Context) (string, error) {
		devices, err := tracking.EnumerateCameras(dir)
		if err != nil {
			return "", err
		}
		if len(devices) == 0 {
			return "", ErrNoCamera
		}
		if device != "" && !slices.Contains(devices, device) {
			return "", fmt.Errorf("%w: %s", ErrNoCamera, device)
		}
		return fmt.Sprintf("%d found", len(devices)), nil
	}
}

// ReachProbe requires every location to be a non-empty local file
// The tracker and model loader read from disk, so URLs fail here rather than at start
func ReachProbe(locations ...string) Probe {
	return func(context.Context) (string, error) {
		if len(locations) == 0 {
			return "none configured", nil
		}
		for _, loc := range locations {
			if err := reach(loc); err != nil {
				return "", err
			}
		}
		return fmt.Sprintf("%d reachable", len(locations)), nil
	}
}

func reach(loc string) error {
	if _, ok := parseURL(loc); ok {
		return fmt.Errorf("%w: %s is not a local file", ErrUnsupportedPath, loc)
	}
	info, err := os.Stat(loc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if info.IsDir() || info.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", ErrUnreachable, loc)
	}
	return nil
}

// parseURL reports whether loc carries a scheme; bare and Windows-style paths are files
func parseURL(loc string) (*url.URL, bool) {
	if !strings.Contains(loc, "://") {
		return nil, false
	}
	u, err := url.Parse(loc)
	if err != nil || u.Scheme == "" {
		return nil, false
	}
	return u, true
}

// Standard builds the runner used by the UI shell
func Standard(cfg *config.Config, screen ColorSource, cameraDir string, logger zerolog.Logger) *Runner {
	assets := append([]string{cfg.TargetBundle}, cfg.ModelFiles()...)
	return NewRunner(logger).
		Add(CheckRenderer, RendererProbe(screen)).
		Add(CheckOrigin, OriginProbe(assets)).
		Add(CheckCamera, CameraProbe(cameraDir, cfg.Camera.Device)).
		Add(CheckBundle, ReachProbe(cfg.TargetBundle)).
		Add(CheckModels, ReachProbe(cfg.ModelFiles()...))
}
