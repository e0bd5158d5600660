package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.aimuz.me/flicker/config"
	"go.aimuz.me/flicker/history"
	"go.aimuz.me/flicker/internal/types"
	"go.aimuz.me/flicker/screenshot"
)

// fakeCapturer implements Capturer for testing.
type fakeCapturer struct {
	err     error
	block   chan struct{}
	started chan types.Request
}

func (f *fakeCapturer) Capture(_ context.Context, req types.Request) (types.Result, error) {
	if f.started != nil {
		f.started <- req
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return types.Result{}, f.err
	}
	return types.Result{Request: req, Path: "/tmp/" + req.FilePrefix() + ".png", Backend: "fake", CreatedAt: time.Now()}, nil
}

type fakeRecorder struct {
	results []types.Result
	err     error
}

func (f *fakeRecorder) Add(r types.Result) error {
	f.results = append(f.results, r)
	return f.err
}

// postLog records which post-processing steps ran.
type postLog struct {
	steps []string
}

func (p *postLog) install(pl *Pipeline, fail bool) {
	step := func(name string) func(string) error {
		return func(string) error {
			p.steps = append(p.steps, name)
			if fail {
				return errors.New(name + " failed")
			}
			return nil
		}
	}
	pl.open = step("open")
	pl.copy = step("copy")
	pl.saved = step("saved")
	pl.failed = func(error) error {
		p.steps = append(p.steps, "failed")
		return nil
	}
}

func TestPipelineProcess(t *testing.T) {
	all := config.PostConfig{Open: true, Clipboard: true, Notify: true}

	tests := []struct {
		name      string
		post      config.PostConfig
		captureEr error
		stepsFail bool
		wantErr   bool
		wantSteps []string
		wantRec   int
	}{
		{
			name:      "all steps",
			post:      all,
			wantSteps: []string{"copy", "saved", "open"},
			wantRec:   1,
		},
		{
			name:      "steps disabled",
			post:      config.PostConfig{},
			wantSteps: nil,
			wantRec:   1,
		},
		{
			name:      "step failures are not fatal",
			post:      all,
			stepsFail: true,
			wantSteps: []string{"copy", "saved", "open"},
			wantRec:   1,
		},
		{
			name:      "capture failure notifies",
			post:      all,
			captureEr: screenshot.ErrUnsupportedSession,
			wantErr:   true,
			wantSteps: []string{"failed"},
		},
		{
			name:      "capture failure silent without notify",
			post:      config.PostConfig{Open: true},
			captureEr: screenshot.ErrUnsupportedSession,
			wantErr:   true,
		},
		{
			name:      "cancelled selection",
			post:      all,
			captureEr: screenshot.ErrSelectionCancelled,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			pl := NewPipeline(&fakeCapturer{err: tt.captureEr}, rec, tt.post)
			var log postLog
			log.install(pl, tt.stepsFail)

			res, err := pl.Process(context.Background(), types.Request{Mode: types.ModeFullScreen})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.captureEr != nil && !errors.Is(err, tt.captureEr) {
				t.Errorf("err = %v, want wrapping %v", err, tt.captureEr)
			}
			if fmt.Sprint(log.steps) != fmt.Sprint(tt.wantSteps) {
				t.Errorf("steps = %v, want %v", log.steps, tt.wantSteps)
			}
			if len(rec.results) != tt.wantRec {
				t.Errorf("recorded %d results, want %d", len(rec.results), tt.wantRec)
			}
			if err == nil && res.Request.ID == "" {
				t.Error("request id not assigned")
			}
		})
	}
}

func TestPipelineHistoryFailureIgnored(t *testing.T) {
	pl := NewPipeline(&fakeCapturer{}, &fakeRecorder{err: errors.New("disk full")}, config.PostConfig{})
	if _, err := pl.Process(context.Background(), types.Request{Mode: types.ModeWindow}); err != nil {
		t.Fatalf("history failure leaked: %v", err)
	}
}

func TestPipelineNilHistory(t *testing.T) {
	pl := NewPipeline(&fakeCapturer{}, nil, config.PostConfig{})
	res, err := pl.Process(context.Background(), types.Request{ID: "fixed", Mode: types.ModeSelection})
	if err != nil {
		t.Fatal(err)
	}
	if res.Request.ID != "fixed" {
		t.Errorf("id = %q, want caller's id kept", res.Request.ID)
	}
}

func TestBindings(t *testing.T) {
	bindings, err := Bindings(config.DefaultHotkeys())
	if err != nil {
		t.Fatal(err)
	}
	if len(bindings) != 10 {
		t.Fatalf("got %d bindings, want 10", len(bindings))
	}
	want := map[string]types.Mode{
		"f6":          types.ModeSelection,
		"f7":          types.ModeCurrentScreen,
		"f8":          types.ModeFullScreen,
		"f9":          types.ModeWindow,
		"alt+shift+s": types.ModeSelection,
		"alt+shift+d": types.ModeFullScreen,
	}
	for _, b := range bindings {
		if m, ok := want[b.Chord.String()]; ok && m != b.Mode {
			t.Errorf("%s -> %v, want %v", b.Chord, b.Mode, m)
		}
	}

	bad := []config.Hotkey{
		{Chord: "hyper+q", Action: "full"},
		{Chord: "f6", Action: "teleport"},
	}
	for _, h := range bad {
		if _, err := Bindings([]config.Hotkey{h}); err == nil {
			t.Errorf("Bindings(%+v) = nil error", h)
		}
	}
}

func newTestService(c *fakeCapturer) *Service {
	s := &Service{
		cfg:      config.Default(),
		pipeline: NewPipeline(c, nil, config.PostConfig{}),
		queue:    make(chan types.Request),
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.work(ctx)
	}()
	return s
}

// triggerEventually retries until the idle worker accepts req.
func triggerEventually(t *testing.T, s *Service, req types.Request) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !s.Trigger(req) {
		if time.Now().After(deadline) {
			t.Fatal("worker never accepted the request")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestServiceDropsTriggerWhileBusy(t *testing.T) {
	c := &fakeCapturer{block: make(chan struct{}), started: make(chan types.Request, 4)}
	s := newTestService(c)
	defer s.Shutdown()

	triggerEventually(t, s, types.Request{Mode: types.ModeFullScreen})
	first := <-c.started
	if first.ID == "" {
		t.Error("trigger did not assign an id")
	}

	if s.Trigger(types.Request{Mode: types.ModeWindow}) {
		t.Error("trigger accepted while capture running")
	}

	close(c.block)
	triggerEventually(t, s, types.Request{Mode: types.ModeWindow})
	if second := <-c.started; second.Mode != types.ModeWindow {
		t.Errorf("second mode = %v, want window", second.Mode)
	}
}

func TestServiceSurvivesCaptureErrors(t *testing.T) {
	c := &fakeCapturer{err: errors.New("boom"), started: make(chan types.Request, 4)}
	s := newTestService(c)
	defer s.Shutdown()

	for i := 0; i < 3; i++ {
		triggerEventually(t, s, types.Request{Mode: types.ModeFullScreen})
		<-c.started
	}
}

func TestServiceShutdownIdempotent(t *testing.T) {
	s := newTestService(&fakeCapturer{})
	s.Shutdown()
	s.Shutdown()
}

func TestOpenRecorderSpoolsWhileStoreHeld(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	cfg := config.Default()

	held, err := OpenHistory(cfg)
	if err != nil {
		t.Fatal(err)
	}

	rec, closeHistory, err := OpenRecorder(cfg)
	if err != nil {
		t.Fatalf("OpenRecorder() error = %v", err)
	}
	if _, ok := rec.(*history.Spool); !ok {
		t.Fatalf("recorder = %T, want a spool while the store is held", rec)
	}
	pl := NewPipeline(&fakeCapturer{}, rec, config.PostConfig{})
	if _, err := pl.Process(context.Background(), types.Request{ID: "cli-grab", Mode: types.ModeFullScreen}); err != nil {
		t.Fatal(err)
	}
	closeHistory()
	if err := held.Close(); err != nil {
		t.Fatal(err)
	}

	rec, closeHistory, err = OpenRecorder(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer closeHistory()
	store, ok := rec.(*history.Store)
	if !ok {
		t.Fatalf("recorder = %T, want the store once it is free", rec)
	}
	got, err := store.Recent(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Request.ID != "cli-grab" {
		t.Errorf("history = %+v, want the spooled grab", got)
	}
}
