package session

import (
	"context"
	"errors"
	stdimage "image"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/image"
	"github.com/jmylchreest/swatch/internal/quantize"
	"github.com/jmylchreest/swatch/internal/segment"
)

// recorder is a Notifier that remembers every event.
type recorder struct {
	mu       sync.Mutex
	states   []State
	palettes []Request
	errs     []Kind
}

func (r *recorder) OnStateChange(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) OnPalette(req Request, _ colour.Palette) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.palettes = append(r.palettes, req)
}

func (r *recorder) OnError(kind Kind, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, kind)
}

func (r *recorder) snapshot() ([]State, []Request, []Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.states), slices.Clone(r.palettes), slices.Clone(r.errs)
}

// gatedQuantizer blocks requests for blockCount until released.
type gatedQuantizer struct {
	blockCount int
	entered    chan struct{}
	release    chan struct{}
}

func (q *gatedQuantizer) Quantize(s *image.Sample, count int) (colour.Palette, error) {
	if count == q.blockCount {
		q.entered <- struct{}{}
		<-q.release
	}
	return quantize.NewBucket().Quantize(s, count)
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestSessionIdle(t *testing.T) {
	s := New(nil)
	defer s.Close()

	snap, err := s.Wait(waitCtx(t))
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if snap.State != Idle || snap.HasPalette {
		t.Errorf("Wait() = %+v, want idle with no palette", snap)
	}
}

func TestSessionExtract(t *testing.T) {
	rec := &recorder{}
	s := New(NewPipeline(), WithNotifier(rec), WithLogger(hclog.NewNullLogger()))
	defer s.Close()

	req := Request{Name: "red", Image: encodePNG(t, 100, 100, 0, red, red), ColourCount: 3}
	if err := s.Submit(req); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	snap, err := s.Wait(waitCtx(t))
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if snap.State != Done || !snap.HasPalette {
		t.Fatalf("Wait() state = %s, HasPalette = %v", snap.State, snap.HasPalette)
	}
	if got := snap.Palette.ToHex(); !slices.Equal(got, []string{"#f00000"}) {
		t.Errorf("palette = %v, want [#f00000]", got)
	}
	if snap.Request.Name != "red" {
		t.Errorf("Request.Name = %q", snap.Request.Name)
	}

	states, palettes, errs := rec.snapshot()
	if !slices.Equal(states, []State{Extracting, Done}) {
		t.Errorf("states = %v, want [extracting done]", states)
	}
	if len(palettes) != 1 || len(errs) != 0 {
		t.Errorf("palettes = %d, errors = %v", len(palettes), errs)
	}
}

func TestSessionFailureKeepsPalette(t *testing.T) {
	rec := &recorder{}
	s := New(NewPipeline(), WithNotifier(rec))
	defer s.Close()

	if err := s.Submit(Request{Image: encodePNG(t, 16, 16, 0, red, red), ColourCount: 4}); err != nil {
		t.Fatal(err)
	}
	first, err := s.Wait(waitCtx(t))
	if err != nil || first.State != Done {
		t.Fatalf("first Wait() = %+v, %v", first, err)
	}

	if err := s.Submit(Request{Image: []byte("not an image"), ColourCount: 4}); err != nil {
		t.Fatal(err)
	}
	second, err := s.Wait(waitCtx(t))
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	if second.State != Failed || second.Kind != KindDecode {
		t.Errorf("state = %s, kind = %s, want failed/decode", second.State, second.Kind)
	}
	var decodeErr *image.DecodeError
	if !errors.As(second.Err, &decodeErr) {
		t.Errorf("Err = %v, want *image.DecodeError", second.Err)
	}
	if !second.HasPalette || !slices.Equal(second.Palette.ToHex(), first.Palette.ToHex()) {
		t.Errorf("palette after failure = %v, want %v", second.Palette.ToHex(), first.Palette.ToHex())
	}

	_, _, errs := rec.snapshot()
	if !slices.Equal(errs, []Kind{KindDecode}) {
		t.Errorf("errors = %v, want [decode]", errs)
	}

	// A later success clears the error.
	if err := s.Submit(Request{Image: encodePNG(t, 16, 16, 0, teal, teal), ColourCount: 4}); err != nil {
		t.Fatal(err)
	}
	third, err := s.Wait(waitCtx(t))
	if err != nil {
		t.Fatal(err)
	}
	if third.State != Done || third.Err != nil || third.Kind != KindNone {
		t.Errorf("third = %+v", third)
	}
	if got := third.Palette.ToHex(); !slices.Equal(got, []string{"#008080"}) {
		t.Errorf("palette = %v, want [#008080]", got)
	}
}

func TestSessionLastRequestWins(t *testing.T) {
	q := &gatedQuantizer{blockCount: 1, entered: make(chan struct{}), release: make(chan struct{})}
	rec := &recorder{}
	s := New(&Pipeline{Sampler: image.NewSampler(), Quantizer: q}, WithNotifier(rec))
	defer s.Close()

	blob := encodePNG(t, 32, 32, 8, white, teal)
	if err := s.Submit(Request{Name: "first", Image: blob, ColourCount: 1}); err != nil {
		t.Fatal(err)
	}
	<-q.entered

	if err := s.Submit(Request{Name: "second", Image: blob, ColourCount: 2}); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	if snap.Request.Name != "second" {
		t.Errorf("Snapshot().Request = %q, want second", snap.Request.Name)
	}

	close(q.release)

	snap, err := s.Wait(waitCtx(t))
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if snap.State != Done || snap.Palette.Len() != 2 {
		t.Errorf("Wait() = %s with %d colours, want done with 2", snap.State, snap.Palette.Len())
	}

	_, palettes, _ := rec.snapshot()
	if len(palettes) != 1 || palettes[0].Name != "second" {
		names := make([]string, len(palettes))
		for i, p := range palettes {
			names[i] = p.Name
		}
		t.Errorf("palettes delivered for %v, want only [second]", names)
	}
}

func TestSessionSubmitLeavesDone(t *testing.T) {
	q := &gatedQuantizer{blockCount: 2, entered: make(chan struct{}), release: make(chan struct{})}
	segRelease := make(chan struct{})
	seg := segment.SegmenterFunc(func(_ context.Context, img stdimage.Image) (stdimage.Image, error) {
		<-segRelease
		return img, nil
	})
	s := New(&Pipeline{Sampler: image.NewSampler(), Quantizer: q, Segmenter: seg})
	defer s.Close()

	blob := encodePNG(t, 32, 32, 8, white, teal)
	if err := s.Submit(Request{Name: "first", Image: blob, ColourCount: 1}); err != nil {
		t.Fatal(err)
	}
	first, err := s.Wait(waitCtx(t))
	if err != nil || first.State != Done {
		t.Fatalf("first Wait() = %s, %v", first.State, err)
	}

	tests := []struct {
		name             string
		removeBackground bool
		want             State
	}{
		{name: "plain", want: Extracting},
		{name: "background removal", removeBackground: true, want: RemovingBackground},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Request{Name: tt.name, Image: blob, ColourCount: 2, RemoveBackground: tt.removeBackground}
			if err := s.Submit(req); err != nil {
				t.Fatal(err)
			}

			snap := s.Snapshot()
			if snap.State != tt.want {
				t.Errorf("Snapshot().State = %s, want %s", snap.State, tt.want)
			}
			if snap.Request.Name != tt.name {
				t.Errorf("Snapshot().Request = %q, want %q", snap.Request.Name, tt.name)
			}
			if !snap.HasPalette {
				t.Error("previous palette dropped on Submit")
			}

			if tt.removeBackground {
				segRelease <- struct{}{}
			}
			<-q.entered
			q.release <- struct{}{}

			snap, err := s.Wait(waitCtx(t))
			if err != nil {
				t.Fatalf("Wait() error = %v", err)
			}
			if snap.State != Done {
				t.Errorf("Wait() state = %s, want done", snap.State)
			}
		})
	}
}

func TestSessionRapidSubmits(t *testing.T) {
	s := New(NewPipeline())
	defer s.Close()

	blob := encodePNG(t, 40, 40, 10, white, teal)
	for n := 1; n <= 8; n++ {
		if err := s.Submit(Request{Image: blob, ColourCount: n}); err != nil {
			t.Fatal(err)
		}
	}

	snap, err := s.Wait(waitCtx(t))
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if snap.State != Done || snap.Request.ColourCount != 8 {
		t.Errorf("Wait() = %s for count %d, want done for 8", snap.State, snap.Request.ColourCount)
	}
	if got := snap.Palette.ToHex(); !slices.Equal(got, []string{"#f0f0f0", "#008080"}) {
		t.Errorf("palette = %v", got)
	}
}

func TestSessionBackgroundFailure(t *testing.T) {
	rec := &recorder{}
	s := New(NewPipeline(), WithNotifier(rec))
	defer s.Close()

	// No segmenter configured.
	if err := s.Submit(Request{Image: encodePNG(t, 8, 8, 2, white, teal), ColourCount: 4, RemoveBackground: true}); err != nil {
		t.Fatal(err)
	}
	snap, err := s.Wait(waitCtx(t))
	if err != nil {
		t.Fatal(err)
	}
	if snap.State != Failed || snap.Kind != KindSegmentation || snap.HasPalette {
		t.Errorf("Wait() = %+v", snap)
	}

	states, _, _ := rec.snapshot()
	if !slices.Equal(states, []State{RemovingBackground, Failed}) {
		t.Errorf("states = %v, want [removing-background failed]", states)
	}
}

func TestSessionWaitTimeout(t *testing.T) {
	q := &gatedQuantizer{blockCount: 3, entered: make(chan struct{}), release: make(chan struct{})}
	s := New(&Pipeline{Quantizer: q})
	defer s.Close()
	defer close(q.release)

	if err := s.Submit(Request{Image: encodePNG(t, 8, 8, 0, red, red), ColourCount: 3}); err != nil {
		t.Fatal(err)
	}
	<-q.entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	snap, err := s.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want deadline exceeded", err)
	}
	if snap.State != Extracting {
		t.Errorf("state = %s, want extracting", snap.State)
	}
}

func TestSessionClose(t *testing.T) {
	s := New(NewPipeline())
	s.Close()
	s.Close()

	if err := s.Submit(Request{ColourCount: 3}); !errors.Is(err, ErrClosed) {
		t.Errorf("Submit() after Close error = %v, want ErrClosed", err)
	}
	if _, err := s.Wait(waitCtx(t)); err != nil {
		t.Errorf("Wait() after Close error = %v", err)
	}
}

func TestNotifierFuncsNilSafe(t *testing.T) {
	var n NotifierFuncs
	n.OnStateChange(Done)
	n.OnPalette(Request{}, colour.Palette{})
	n.OnError(KindDecode, errors.New("x"))
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		Idle:               "idle",
		RemovingBackground: "removing-background",
		Extracting:         "extracting",
		Done:               "done",
		Failed:             "failed",
		State(42):          "State(42)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
