package model

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/ar-hunt/scene"
)

// ErrNotReady is returned when a model was requested but has not finished loading
var ErrNotReady = errors.New("model not loaded yet")

// State of a cached model
type State uint8

const (
	StateUnknown State = iota
	StatePending
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LoadFunc loads one model; it runs off the frame loop
type LoadFunc func(ctx context.Context, path string) (*scene.Node, error)

// Result is a completed load delivered to the loop
type Result struct {
	Path     string
	Node     *scene.Node
	Err      error
	Duration time.Duration
}

type entry struct {
	state State
	node  *scene.Node
	err   error
}

// Cache loads models in background goroutines and hands results to the frame loop
// Request, Poll and Get must be called from the loop goroutine only
type Cache struct {
	load    LoadFunc
	logger  zerolog.Logger
	entries map[string]*entry
	results chan Result
	wg      sync.WaitGroup
}

// NewCache creates a cache; nil load uses the glTF file loader
func NewCache(load LoadFunc, logger zerolog.Logger) *Cache {
	if load == nil {
		load = func(_ context.Context, path string) (*scene.Node, error) { return Load(path) }
	}
	return &Cache{
		load:    load,
		logger:  logger.With().Str("component", "model").Logger(),
		entries: make(map[string]*entry),
		results: make(chan Result, 16),
	}
}

// Request starts loading path unless it is already pending or loaded
func (c *Cache) Request(ctx context.Context, path string) {
	if _, ok := c.entries[path]; ok {
		return
	}
	c.entries[path] = &entry{state: StatePending}
	c.logger.Debug().Str("path", path).Msg("model load started")

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		start := time.Now()
		node, err := c.safeLoad(ctx, path)
		if err == nil && node == nil {
			err = ErrEmptyModel
		}
		res := Result{Path: path, Node: node, Err: err, Duration: time.Since(start)}
		select {
		case c.results <- res:
		case <-ctx.Done():
		}
	}()
}

// safeLoad turns a loader panic into a load failure so one bad file only costs its marker
func (c *Cache) safeLoad(ctx context.Context, path string) (node *scene.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			node, err = nil, fmt.Errorf("%w: load %s panicked: %v", ErrMalformedModel, path, r)
		}
	}()
	return c.load(ctx, path)
}

// Poll drains completed loads without blocking and returns them
func (c *Cache) Poll() []Result {
	var out []Result
	for {
		select {
		case res := <-c.results:
			e, ok := c.entries[res.Path]
			if !ok {
				e = &entry{}
				c.entries[res.Path] = e
			}
			if res.Err != nil {
				e.state = StateFailed
				e.err = res.Err
				c.logger.Warn().Err(res.Err).Str("path", res.Path).Msg("model load failed")
			} else {
				e.state = StateReady
				e.node = res.Node
				c.logger.Info().Str("path", res.Path).Dur("took", res.Duration).Int("nodes", res.Node.Count()).Msg("model loaded")
			}
			out = append(out, res)
		default:
			return out
		}
	}
}

// State returns the load state for path
func (c *Cache) State(path string) State {
	if e, ok := c.entries[path]; ok {
		return e.state
	}
	return StateUnknown
}

// Instance returns a fresh clone of a loaded model
func (c *Cache) Instance(path string) (*scene.Node, error) {
	e, ok := c.entries[path]
	if !ok || e.state == StatePending {
		return nil, ErrNotReady
	}
	if e.state == StateFailed {
		return nil, e.err
	}
	return e.node.Clone(), nil
}

// Wait blocks until every in-flight load goroutine has exited
// Callers cancel the request context first so undelivered results do not block
func (c *Cache) Wait() {
	c.wg.Wait()
}
