// Package interp runs the bang-directive language over message text.
//
// A pass scans the text once, left to right. Literal spans and the output
// of directives become chunks; each chunk goes through the active
// transforms and then lands in exactly one place: the innermost open
// capture variable, nowhere (hide, comment or draft), or the output.
// Side effects that need the message to be saved first are queued and run
// by Finalize (pre-save) and Commit (post-save).
package interp

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/rubiojr/bangtag/parser"
	"github.com/rubiojr/bangtag/scanner"
	"github.com/rubiojr/bangtag/status"
	"go.uber.org/zap"
)

// Interpreter holds the collaborators and static configuration shared by
// every pass. It is safe for concurrent use; each message gets its own Pass.
type Interpreter struct {
	svc status.Services
	log *zap.Logger
	now func() time.Time

	randMu sync.Mutex
	rand   *rand.Rand
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(in *Interpreter) { in.log = l }
}

// WithRand sets the random source used by keysmash.
func WithRand(r *rand.Rand) Option {
	return func(in *Interpreter) { in.rand = r }
}

// WithClock sets the clock used to timestamp tag uses of messages that
// carry no creation time.
func WithClock(now func() time.Time) Option {
	return func(in *Interpreter) { in.now = now }
}

// New creates an Interpreter backed by svc.
func New(svc status.Services, opts ...Option) *Interpreter {
	in := &Interpreter{
		svc:  svc,
		log:  zap.NewNop(),
		now:  time.Now,
		rand: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Process runs a complete pass over msg: directives are interpreted,
// pre-save effects run, msg.Text is replaced, save is called, and then
// post-save effects run. Text without a directive marker goes straight to
// save. The only error returned is the one from save.
func (in *Interpreter) Process(ctx context.Context, msg *status.Message, save func(context.Context, *status.Message) error) error {
	p := in.Begin(ctx, msg)
	p.Finalize()
	if save != nil {
		if err := save(ctx, msg); err != nil {
			return fmt.Errorf("saving status %d: %w", msg.ID, err)
		}
	}
	p.Commit()
	return nil
}

// Begin scans msg and returns the pass without touching msg.Text or running
// any effect yet. Callers that persist messages themselves call Finalize
// before saving and Commit after.
func (in *Interpreter) Begin(ctx context.Context, msg *status.Message) *Pass {
	p := &Pass{
		ctx:    ctx,
		in:     in,
		msg:    msg,
		vars:   make(map[string]string),
		tagged: make(map[string]bool),
		pinged: make(map[string]bool),
	}
	if !scanner.HasDirective(msg.Text) {
		return p
	}
	p.active = true
	p.run()
	return p
}

// Pass is the interpreter state for one message. It is not reusable.
type Pass struct {
	ctx context.Context
	in  *Interpreter
	msg *status.Message

	active    bool
	finalized bool
	committed bool

	out     []string
	vars    map[string]string
	scopes  []scope
	effects []Effect
	draft   bool

	tagged map[string]bool
	pinged map[string]bool
}

func (p *Pass) run() {
	for _, sp := range scanner.Split(p.msg.Text) {
		if sp.Kind == scanner.Literal {
			p.emit(sp.Text)
			continue
		}
		cmd := parser.Parse(sp.Body())
		if p.inComment() {
			if isCommentClose(cmd) {
				p.popKind(commentScope)
			}
			continue
		}
		p.dispatch(cmd, sp.Body())
	}
}

// emit routes one chunk through the transforms to its destination.
func (p *Pass) emit(chunk string) {
	if chunk == "" {
		return
	}
	chunk = p.transform(chunk)
	if p.draft {
		return
	}
	if s := p.sink(); s != nil {
		if s.kind == captureScope {
			p.vars[s.name] += chunk
		}
		return
	}
	p.out = append(p.out, chunk)
}

// Text returns what the message text will be once the pass is finalized.
func (p *Pass) Text() string {
	if !p.active {
		return p.msg.Text
	}
	text := scanner.Unescape(strings.TrimSpace(strings.Join(p.out, "")))
	if p.draft && !strings.HasPrefix(text, DraftMarker) {
		text = DraftMarker + text
	}
	return text
}

// Vars returns a copy of the variable table with escaped markers restored.
// Synthetic media variables are included.
func (p *Pass) Vars() map[string]string {
	vars := make(map[string]string, len(p.vars))
	for k, v := range p.vars {
		vars[k] = scanner.Unescape(v)
	}
	return vars
}

// Effects returns the queued effects in queue order.
func (p *Pass) Effects() []Effect {
	return append([]Effect(nil), p.effects...)
}

// Active reports whether the text contained any directive marker.
func (p *Pass) Active() bool { return p.active }

// Drafted reports whether the draft directive ran.
func (p *Pass) Drafted() bool { return p.draft }

// Finalize runs the pre-save effects and replaces the message text.
// Calling it more than once has no further effect.
func (p *Pass) Finalize() {
	if !p.active || p.finalized {
		return
	}
	p.finalized = true
	p.runEffects(PreSave)
	p.msg.Text = p.Text()
}

// Commit runs the post-save effects, finalizing first if needed.
func (p *Pass) Commit() {
	if !p.active || p.committed {
		return
	}
	p.Finalize()
	p.committed = true
	p.runEffects(PostSave)
}

func (p *Pass) debug(msg string, cmd parser.Command, fields ...zap.Field) {
	p.in.log.Debug(msg, append([]zap.Field{zap.Strings("command", cmd)}, fields...)...)
}

func (p *Pass) warn(msg string, err error, fields ...zap.Field) {
	p.in.log.Warn(msg, append([]zap.Field{zap.Int64("status", p.msg.ID), zap.Error(err)}, fields...)...)
}
