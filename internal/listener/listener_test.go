package listener

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vozinv/vozinv/pkg/core/cache"
	"github.com/vozinv/vozinv/pkg/core/config"
	"github.com/vozinv/vozinv/pkg/vozparse"
)

type recorder struct {
	events chan Event
}

func newRecorder() *recorder {
	return &recorder{events: make(chan Event, 16)}
}

func (r *recorder) handle(e Event) {
	r.events <- e
}

func (r *recorder) next(t *testing.T) Event {
	t.Helper()
	select {
	case e := <-r.events:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func (r *recorder) none(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case e := <-r.events:
		t.Fatalf("unexpected event %+v", e)
	case <-time.After(wait):
	}
}

func start(t *testing.T, opts Options) (*Listener, *recorder) {
	t.Helper()
	rec := newRecorder()
	l := New(rec.handle, opts)

	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-l.Done()
	})
	return l, rec
}

func TestDebounce_LatestWins(t *testing.T) {
	l, rec := start(t, Options{Debounce: 50 * time.Millisecond})

	l.Submit("ocho")
	l.Submit("ocho cuarenta")
	l.Submit("ocho cuarenta y dos mil")

	e := rec.next(t)
	if e.Text != "ocho cuarenta y dos mil" {
		t.Errorf("Text = %q", e.Text)
	}
	r, ok := e.Result.(vozparse.Record)
	if !ok || r.Subtotal != 336000 {
		t.Errorf("Result = %#v", e.Result)
	}
	rec.none(t, 120*time.Millisecond)
}

func TestFlush(t *testing.T) {
	l, rec := start(t, Options{Debounce: time.Hour})

	l.Submit("borrar el ultimo")
	l.Flush()

	select {
	case e := <-rec.events:
		cmd, ok := e.Result.(vozparse.Command)
		if !ok || cmd.Kind != vozparse.DeleteLast {
			t.Errorf("Result = %#v", e.Result)
		}
	default:
		t.Fatal("Flush() returned before the event was handled")
	}

	l.Flush()
	rec.none(t, 20*time.Millisecond)
}

func TestUnrecognizedTextYieldsNilResult(t *testing.T) {
	l, rec := start(t, Options{Debounce: 10 * time.Millisecond})

	l.Submit("hola mundo")
	e := rec.next(t)
	if e.Result != nil {
		t.Errorf("Result = %#v, want nil", e.Result)
	}
}

func TestSubmit_Ignored(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		minLength int
	}{
		{"empty", "", 0},
		{"blank", "   \t", 0},
		{"too short", "dos", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, rec := start(t, Options{Debounce: 10 * time.Millisecond, MinLength: tt.minLength})
			if l.Submit(tt.text) {
				t.Error("Submit() should report false")
			}
			rec.none(t, 40*time.Millisecond)
		})
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	l := New(nil, Options{Debounce: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()

	if !l.Submit("5 20000") {
		t.Fatal("Submit() before cancel should succeed")
	}
	cancel()

	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v", err)
	}
	if l.Submit("5 20000") {
		t.Error("Submit() after stop should report false")
	}
	l.Flush()
}

func TestOptionsFrom(t *testing.T) {
	opts := OptionsFrom(config.ListenerConfig{
		Debounce:  config.Duration{Duration: 250 * time.Millisecond},
		MinLength: 3,
	}, nil)
	if opts.Debounce != 250*time.Millisecond || opts.MinLength != 3 {
		t.Errorf("OptionsFrom() = %+v", opts)
	}

	l := New(nil, Options{})
	if l.debounce != DefaultDebounce {
		t.Errorf("default debounce = %v", l.debounce)
	}
}

func TestSharedResultCache(t *testing.T) {
	results := cache.New[string, vozparse.Result](cache.DefaultConfig())
	a, recA := start(t, Options{Debounce: time.Hour, Results: results})
	b, recB := start(t, Options{Debounce: time.Hour, Results: results})

	a.Submit("5 20000")
	a.Flush()
	b.Submit("5 20000")
	b.Flush()

	ea, eb := recA.next(t), recB.next(t)
	if ea.Result != eb.Result {
		t.Errorf("results differ: %#v vs %#v", ea.Result, eb.Result)
	}
	hits, misses, _ := results.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d hits, %d misses", hits, misses)
	}

	a.Submit("hola mundo")
	a.Flush()
	if e := recA.next(t); e.Result != nil {
		t.Errorf("Result = %#v, want nil", e.Result)
	}
	if _, ok := results.Get("hola mundo"); !ok {
		t.Error("unrecognized text should be cached too")
	}
}
