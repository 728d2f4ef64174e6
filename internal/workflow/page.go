// Package workflow sequences one conversion attempt: validate, upload,
// convert, interpret. A Page is one UI surface for one target; it runs at most
// one attempt at a time and never retries on its own.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/Vovarama1992/braille_bridge/internal/apperr"
	"github.com/Vovarama1992/braille_bridge/internal/backend"
	"github.com/Vovarama1992/braille_bridge/internal/convert"
	"github.com/Vovarama1992/braille_bridge/internal/ports"
)

const service = "braille_bridge"

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateUploading  State = "uploading"
	StateConverting State = "converting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

func (s State) Busy() bool {
	return s == StateValidating || s == StateUploading || s == StateConverting
}

var (
	ErrAttemptInFlight = errors.New("conversion already in progress")
	ErrPageClosed      = errors.New("page closed")
)

type FileInfo struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type Snapshot struct {
	State  State                  `json:"state"`
	Tab    ports.Tab              `json:"tab"`
	Text   string                 `json:"text"`
	File   *FileInfo              `json:"file,omitempty"`
	Result ports.ConversionResult `json:"result"`
	Error  string                 `json:"error,omitempty"`
}

type Page struct {
	target  ports.Target
	msgs    Messages
	backend ports.Backend
	notify  ports.Notifier
	log     *logger.ZapLogger

	lifetime context.Context
	stop     context.CancelFunc

	mu       sync.Mutex
	tab      ports.Tab
	text     string
	file     *ports.SourceFile
	state    State
	result   ports.ConversionResult
	errMsg   string
	attempt  string
	gen      uint64
	cancel   context.CancelFunc
	closed   bool
	observer func(State)
}

// NewPage: notify and log may be nil
func NewPage(target ports.Target, b ports.Backend, notify ports.Notifier, log *logger.ZapLogger) *Page {
	lifetime, stop := context.WithCancel(context.Background())
	return &Page{
		target:   target,
		msgs:     MessagesFor(target),
		backend:  b,
		notify:   notify,
		log:      log,
		lifetime: lifetime,
		stop:     stop,
		tab:      ports.TabText,
		state:    StateIdle,
	}
}

func (p *Page) Target() ports.Target {
	return p.target
}

func (p *Page) Messages() Messages {
	return p.msgs
}

// SetObserver registers a callback for every state change. It runs outside
// the page lock.
func (p *Page) SetObserver(fn func(State)) {
	p.mu.Lock()
	p.observer = fn
	p.mu.Unlock()
}

func (p *Page) SetTab(tab ports.Tab) {
	p.mu.Lock()
	p.tab = tab
	p.mu.Unlock()
}

func (p *Page) SetText(text string) {
	p.mu.Lock()
	p.text = text
	p.mu.Unlock()
}

// SelectFile enforces the size limit at selection time. A rejected file is
// not stored; the previous selection, if any, stays.
func (p *Page) SelectFile(f ports.SourceFile) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if f.Size() > ports.MaxFileSize {
		p.errMsg = p.msgs.FileTooLarge
		return apperr.New(apperr.KindPrecondition, p.msgs.FileTooLarge)
	}

	p.file = &f
	p.errMsg = ""
	return nil
}

func (p *Page) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Page) snapshotLocked() Snapshot {
	s := Snapshot{
		State:  p.state,
		Tab:    p.tab,
		Text:   p.text,
		Result: p.result,
		Error:  p.errMsg,
	}
	if p.file != nil {
		s.File = &FileInfo{Name: p.file.Name, ContentType: p.file.ContentType, Size: p.file.Size()}
	}
	return s
}

// Reset clears input, file, result and error back to Idle. An attempt still in
// flight is cancelled and its late result dropped.
func (p *Page) Reset() {
	p.mu.Lock()
	p.supersedeLocked()
	p.text = ""
	p.file = nil
	p.result = ports.ConversionResult{}
	p.errMsg = ""
	p.state = StateIdle
	obs := p.observer
	p.mu.Unlock()

	if obs != nil {
		obs(StateIdle)
	}
}

// Close ends the page lifetime. In-flight requests are cancelled.
func (p *Page) Close() {
	p.mu.Lock()
	p.closed = true
	p.supersedeLocked()
	p.mu.Unlock()
	p.stop()
}

func (p *Page) supersedeLocked() {
	p.gen++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// Convert runs one attempt to completion. The returned error is the typed
// failure (or ErrAttemptInFlight / ErrPageClosed); the snapshot carries the
// message meant for display.
func (p *Page) Convert(ctx context.Context, sess ports.Session) (Snapshot, error) {
	p.mu.Lock()
	if p.closed {
		defer p.mu.Unlock()
		return p.snapshotLocked(), ErrPageClosed
	}
	if p.state.Busy() {
		defer p.mu.Unlock()
		return p.snapshotLocked(), ErrAttemptInFlight
	}

	attemptCtx, cancel := context.WithCancel(ctx)
	stopAfter := context.AfterFunc(p.lifetime, cancel)
	defer stopAfter()
	defer cancel()

	p.gen++
	gen := p.gen
	p.cancel = cancel
	p.attempt = uuid.NewString()
	p.errMsg = ""
	p.result = ports.ConversionResult{}

	// Validating is entered under the lock so a second Convert sees Busy.
	from := p.state
	p.state = StateValidating
	attempt, obs := p.attempt, p.observer

	tab, text := p.tab, p.text
	var file *ports.SourceFile
	if p.file != nil {
		f := *p.file
		file = &f
	}
	p.mu.Unlock()

	p.announce(attempt, from, StateValidating, obs)

	res, err := p.run(attemptCtx, gen, sess, tab, text, file)

	p.mu.Lock()
	if gen != p.gen {
		// superseded by Reset or Close
		defer p.mu.Unlock()
		if err == nil {
			err = apperr.New(apperr.KindCancelled, p.msgs.Cancelled)
		}
		return p.snapshotLocked(), err
	}
	p.cancel = nil
	p.mu.Unlock()

	if err != nil {
		msg := apperr.Message(err, p.msgs.Fallback)
		snap := p.finish(gen, StateFailed, ports.ConversionResult{}, msg)
		p.logEntry("warn", fmt.Sprintf("attempt=%s failed kind=%s: %s", attempt, apperr.KindOf(err), msg), err)

		if k := apperr.KindOf(err); k == apperr.KindTransport || k == apperr.KindMalformedResponse {
			p.alert(ctx, attempt, err)
		}
		return snap, err
	}

	return p.finish(gen, StateSucceeded, res, ""), nil
}

func (p *Page) run(
	ctx context.Context,
	gen uint64,
	sess ports.Session,
	tab ports.Tab,
	text string,
	file *ports.SourceFile,
) (ports.ConversionResult, error) {

	// 1) preconditions, no network
	if !sess.Valid() {
		return ports.ConversionResult{}, apperr.New(apperr.KindPrecondition, p.msgs.LoginFirst)
	}

	var payload ports.SourceFile
	switch tab {
	case ports.TabFile:
		if file == nil {
			return ports.ConversionResult{}, apperr.New(apperr.KindPrecondition, p.msgs.SelectFile)
		}
		payload = *file
	default:
		if strings.TrimSpace(text) == "" {
			return ports.ConversionResult{}, apperr.New(apperr.KindPrecondition, p.msgs.EnterText)
		}
		payload = ports.TextFile(text)
	}

	// 2) upload
	if !p.transition(gen, StateUploading) {
		return ports.ConversionResult{}, apperr.New(apperr.KindCancelled, p.msgs.Cancelled)
	}
	p.logEntry("info", fmt.Sprintf("upload %s (%s)", payload.Name, humanize.IBytes(uint64(payload.Size()))), nil)

	raw, err := p.backend.Upload(ctx, sess.Token, payload)
	if err != nil {
		return ports.ConversionResult{}, p.transportErr(ctx, err)
	}

	up := backend.Parse[ports.UploadedResource](raw)
	if up.Malformed {
		return ports.ConversionResult{}, apperr.Wrap(apperr.KindMalformedResponse, p.msgs.uploadMalformed(tab), up.Cause)
	}
	if !raw.OK() || up.Value.ID == "" {
		return ports.ConversionResult{}, apperr.New(apperr.KindUploadRejected,
			apperr.ServerMessage(up.Value.Message, p.msgs.UploadFailed))
	}

	// 3) convert
	if !p.transition(gen, StateConverting) {
		return ports.ConversionResult{}, apperr.New(apperr.KindCancelled, p.msgs.Cancelled)
	}

	raw, err = p.backend.Convert(ctx, sess.Token, p.target, up.Value.ID)
	if err != nil {
		return ports.ConversionResult{}, p.transportErr(ctx, err)
	}

	cv := backend.Parse[convert.Body](raw)
	if cv.Malformed {
		return ports.ConversionResult{}, apperr.Wrap(apperr.KindMalformedResponse, p.msgs.ConvertMalformed, cv.Cause)
	}
	if !raw.OK() {
		return ports.ConversionResult{}, apperr.New(apperr.KindConversionRejected,
			apperr.ServerMessage(cv.Value.Message, p.msgs.ConvertFailed))
	}

	// 4) interpret
	return convert.Interpret(p.target, cv.Value)
}

func (p *Page) transportErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return apperr.Wrap(apperr.KindCancelled, p.msgs.Cancelled, ctx.Err())
	}
	if apperr.KindOf(err) == apperr.KindUnknown {
		return apperr.Wrap(apperr.KindTransport, backend.TransportMessage, err)
	}
	return err
}

// transition reports false when the attempt was superseded.
func (p *Page) transition(gen uint64, to State) bool {
	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return false
	}
	from := p.state
	p.state = to
	attempt := p.attempt
	obs := p.observer
	p.mu.Unlock()

	p.announce(attempt, from, to, obs)
	return true
}

func (p *Page) announce(attempt string, from, to State, obs func(State)) {
	p.logEntry("info", fmt.Sprintf("attempt=%s %s -> %s", attempt, from, to), nil)
	if obs != nil {
		obs(to)
	}
}

// finish records the outcome and returns the snapshot taken under the same
// lock, so a later attempt cannot leak into it.
func (p *Page) finish(gen uint64, to State, res ports.ConversionResult, msg string) Snapshot {
	p.mu.Lock()
	if gen != p.gen {
		defer p.mu.Unlock()
		return p.snapshotLocked()
	}
	p.result = res
	p.errMsg = msg
	from := p.state
	p.state = to
	snap := p.snapshotLocked()
	attempt, obs := p.attempt, p.observer
	p.mu.Unlock()

	p.announce(attempt, from, to, obs)
	return snap
}

func (p *Page) alert(ctx context.Context, attempt string, err error) {
	if p.notify == nil {
		return
	}
	details := fmt.Sprintf("target=%s attempt=%s", p.target, attempt)
	if nErr := p.notify.Notify(context.WithoutCancel(ctx), string(p.target), err, details); nErr != nil {
		p.logEntry("warn", "operator alert failed", nErr)
	}
}

func (p *Page) logEntry(level, msg string, err error) {
	if p.log == nil {
		return
	}
	p.log.Log(logger.LogEntry{
		Level:   level,
		Message: fmt.Sprintf("[workflow.%s] %s", p.target, msg),
		Service: service,
		Error:   err,
	})
}
