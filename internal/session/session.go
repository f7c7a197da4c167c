// Package session drives palette extraction for a changing image and colour
// count. A session runs at most one extraction at a time; a newer request
// supersedes the one in flight and the older result is discarded.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/swatch/internal/colour"
)

// ErrClosed is returned when submitting to a closed session.
var ErrClosed = errors.New("session closed")

// State is the extraction state of a session.
type State int

const (
	// Idle means nothing has been submitted yet.
	Idle State = iota
	// RemovingBackground means the segmenter is running.
	RemovingBackground
	// Extracting means the image is being sampled and quantized.
	Extracting
	// Done means the latest request produced a palette.
	Done
	// Failed means the latest request failed.
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case RemovingBackground:
		return "removing-background"
	case Extracting:
		return "extracting"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Notifier receives session events. Calls are made from the session's
// worker goroutine, in order, and only for the latest request.
type Notifier interface {
	OnStateChange(state State)
	OnPalette(req Request, palette colour.Palette)
	OnError(kind Kind, err error)
}

// NotifierFuncs adapts optional functions to the Notifier interface.
type NotifierFuncs struct {
	StateChange func(State)
	Palette     func(Request, colour.Palette)
	Error       func(Kind, error)
}

// OnStateChange implements Notifier.
func (n NotifierFuncs) OnStateChange(state State) {
	if n.StateChange != nil {
		n.StateChange(state)
	}
}

// OnPalette implements Notifier.
func (n NotifierFuncs) OnPalette(req Request, palette colour.Palette) {
	if n.Palette != nil {
		n.Palette(req, palette)
	}
}

// OnError implements Notifier.
func (n NotifierFuncs) OnError(kind Kind, err error) {
	if n.Error != nil {
		n.Error(kind, err)
	}
}

// Snapshot is a point-in-time view of a session.
type Snapshot struct {
	State State

	// Request is the most recently submitted request.
	Request Request

	// Palette is the last successful palette. It survives later failures.
	Palette    colour.Palette
	HasPalette bool

	// Err is set when State is Failed.
	Err  error
	Kind Kind
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger hclog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNotifier sets the session notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Session) {
		s.notifier = n
	}
}

type job struct {
	req Request
	gen uint64
}

// Session owns one worker goroutine that runs extractions for the latest
// submitted request.
type Session struct {
	pipeline *Pipeline
	logger   hclog.Logger
	notifier Notifier

	mu         sync.Mutex
	state      State
	request    Request
	gen        uint64
	pending    *job
	running    bool
	cancel     context.CancelFunc
	palette    colour.Palette
	hasPalette bool
	err        error
	kind       Kind
	changed    chan struct{}
	closed     bool

	wake chan struct{}
	ctx  context.Context
	stop context.CancelFunc
	done chan struct{}
}

// New starts a session backed by pipeline.
func New(pipeline *Pipeline, opts ...Option) *Session {
	if pipeline == nil {
		pipeline = NewPipeline()
	}

	ctx, stop := context.WithCancel(context.Background())
	s := &Session{
		pipeline: pipeline,
		logger:   hclog.NewNullLogger(),
		notifier: NotifierFuncs{},
		changed:  make(chan struct{}),
		wake:     make(chan struct{}, 1),
		ctx:      ctx,
		stop:     stop,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.run()
	return s
}

// Submit schedules req, replacing any request that has not started and
// cancelling the one in flight. The session leaves Done or Failed at once,
// so a Snapshot taken after Submit never reports the previous outcome as
// current. It never blocks on extraction.
func (s *Session) Submit(req Request) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	s.gen++
	s.request = req
	s.pending = &job{req: req, gen: s.gen}
	s.state = Extracting
	if req.RemoveBackground {
		s.state = RemovingBackground
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.broadcastLocked()
	gen := s.gen
	s.mu.Unlock()

	s.logger.Debug("extraction requested", "name", req.Name, "colours", req.ColourCount,
		"remove_background", req.RemoveBackground, "generation", gen)

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

// Snapshot returns the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Wait blocks until no extraction is pending or running, then returns the
// session state. It returns ctx.Err() if ctx ends first.
func (s *Session) Wait(ctx context.Context) (Snapshot, error) {
	for {
		s.mu.Lock()
		if s.closed || (s.pending == nil && !s.running) {
			snap := s.snapshotLocked()
			s.mu.Unlock()
			return snap, nil
		}
		ch := s.changed
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return s.Snapshot(), ctx.Err()
		case <-ch:
		}
	}
}

// Close cancels any running extraction and stops the worker.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	s.pending = nil
	s.broadcastLocked()
	s.mu.Unlock()

	s.stop()
	<-s.done
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		State:      s.state,
		Request:    s.request,
		Palette:    s.palette.Clone(),
		HasPalette: s.hasPalette,
		Err:        s.err,
		Kind:       s.kind,
	}
}

// broadcastLocked wakes everything waiting on the current changed channel.
func (s *Session) broadcastLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Session) run() {
	defer close(s.done)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.wake:
		}

		for {
			s.mu.Lock()
			j := s.pending
			s.pending = nil
			if j == nil || s.closed {
				s.mu.Unlock()
				break
			}
			ctx, cancel := context.WithCancel(s.ctx)
			s.cancel = cancel
			s.running = true
			s.mu.Unlock()

			s.execute(ctx, j)
			cancel()
		}
	}
}

func (s *Session) execute(ctx context.Context, j *job) {
	start := time.Now()
	logger := s.logger.With("name", j.req.Name, "generation", j.gen)
	logger.Debug("extraction started", "colours", j.req.ColourCount)

	palette, err := s.pipeline.Run(ctx, j.req, func(state State) {
		s.transition(j.gen, state)
	})

	s.mu.Lock()
	s.running = false
	s.cancel = nil
	if j.gen != s.gen || s.closed {
		s.broadcastLocked()
		s.mu.Unlock()
		logger.Debug("discarding superseded result", "elapsed", time.Since(start))
		return
	}

	if err != nil {
		kind := Classify(err)
		s.state = Failed
		s.err = err
		s.kind = kind
		s.broadcastLocked()
		s.mu.Unlock()

		logger.Warn("extraction failed", "kind", kind, "error", err)
		s.notifier.OnStateChange(Failed)
		s.notifier.OnError(kind, err)
		return
	}

	s.state = Done
	s.palette = palette
	s.hasPalette = true
	s.err = nil
	s.kind = KindNone
	s.broadcastLocked()
	s.mu.Unlock()

	logger.Debug("extraction finished", "colours", palette.Len(), "elapsed", time.Since(start))
	s.notifier.OnStateChange(Done)
	s.notifier.OnPalette(j.req, palette.Clone())
}

// transition moves the session to state if gen is still the latest request.
func (s *Session) transition(gen uint64, state State) {
	s.mu.Lock()
	if gen != s.gen || s.closed {
		s.mu.Unlock()
		return
	}
	s.state = state
	s.broadcastLocked()
	s.mu.Unlock()

	s.notifier.OnStateChange(state)
}
