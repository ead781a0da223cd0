// Package listener turns a stream of live transcript updates into
// parsed events once the speaker pauses.
package listener

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/vozinv/vozinv/pkg/core/cache"
	"github.com/vozinv/vozinv/pkg/core/config"
	"github.com/vozinv/vozinv/pkg/core/logging"
	"github.com/vozinv/vozinv/pkg/vozparse"
)

// DefaultDebounce is the quiet period before a transcript is parsed
const DefaultDebounce = 500 * time.Millisecond

// Event is a transcript together with its parse result. Result is nil
// when the text was not understood.
type Event struct {
	Text   string
	Result vozparse.Result
	At     time.Time
}

// Handler receives events on the listener's Run goroutine
type Handler func(Event)

// Options configures a Listener
type Options struct {
	Debounce  time.Duration
	MinLength int
	Logger    *logging.Logger

	// Results, when set, memoizes parse results by transcript text and
	// may be shared between listeners
	Results *cache.Cache[string, vozparse.Result]
}

// OptionsFrom maps the [listener] config section onto Options
func OptionsFrom(c config.ListenerConfig, logger *logging.Logger) Options {
	return Options{
		Debounce:  c.Debounce.Duration,
		MinLength: c.MinLength,
		Logger:    logger,
	}
}

// Listener debounces transcript updates. A newer submission replaces
// a pending one and restarts the quiet period.
type Listener struct {
	parser    vozparse.Parser
	handler   Handler
	debounce  time.Duration
	minLength int
	logger    *logging.Logger
	results   *cache.Cache[string, vozparse.Result]

	submits chan string
	flushes chan chan struct{}
	done    chan struct{}
	once    sync.Once
}

// New creates a listener that delivers events to handler
func New(handler Handler, opts Options) *Listener {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Listener{
		parser:    vozparse.Parser{Logger: opts.Logger},
		handler:   handler,
		debounce:  opts.Debounce,
		minLength: opts.MinLength,
		logger:    opts.Logger,
		results:   opts.Results,
		submits:   make(chan string),
		flushes:   make(chan chan struct{}),
		done:      make(chan struct{}),
	}
}

// Submit hands a transcript update to the running loop. Blank text and
// text shorter than the minimum length are dropped. It reports false
// when the text was dropped or the listener has stopped.
func (l *Listener) Submit(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) < l.minLength {
		return false
	}
	select {
	case l.submits <- text:
		return true
	case <-l.done:
		return false
	}
}

// Flush processes the pending transcript immediately and waits until
// its event has been handled
func (l *Listener) Flush() {
	ack := make(chan struct{})
	select {
	case l.flushes <- ack:
	case <-l.done:
		return
	}
	select {
	case <-ack:
	case <-l.done:
	}
}

// Done is closed when Run returns
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

// Run processes submissions until ctx is cancelled. A pending
// transcript is discarded on cancellation.
func (l *Listener) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })

	timer := time.NewTimer(l.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var (
		pending    string
		hasPending bool
	)

	fire := func() {
		if !hasPending {
			return
		}
		text := pending
		pending, hasPending = "", false
		l.process(text)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case text := <-l.submits:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			pending, hasPending = text, true
			timer.Reset(l.debounce)

		case ack := <-l.flushes:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			fire()
			close(ack)

		case <-timer.C:
			fire()
		}
	}
}

func (l *Listener) process(text string) {
	result := l.parse(text)

	if result == nil {
		l.logger.Debug("transcript not understood", "text", text)
	}
	if l.handler != nil {
		l.handler(Event{Text: text, Result: result, At: time.Now()})
	}
}

func (l *Listener) parse(text string) vozparse.Result {
	if l.results != nil {
		if result, ok := l.results.Get(text); ok {
			return result
		}
	}

	timer := l.logger.StartTimer("transcript parse")
	result := l.parser.Parse(text)
	timer.Stop()

	if l.results != nil {
		l.results.Set(text, result)
	}
	return result
}
