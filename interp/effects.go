package interp

import (
	"strings"

	"github.com/rubiojr/bangtag/scanner"
	"github.com/rubiojr/bangtag/status"
	"go.uber.org/zap"
)

// Phase is when an effect runs relative to saving the message.
type Phase byte

const (
	PreSave Phase = iota
	PostSave
)

// EffectKind identifies a deferred action.
type EffectKind byte

const (
	// Describe sets the description of a media attachment.
	Describe EffectKind = iota
	// AttachTag attaches a hashtag to the message.
	AttachTag
	// Mention materializes a mention record.
	Mention
)

func (k EffectKind) String() string {
	switch k {
	case Describe:
		return "describe"
	case AttachTag:
		return "tag"
	case Mention:
		return "mention"
	}
	return "unknown"
}

// Phase returns when effects of this kind run.
func (k EffectKind) Phase() Phase {
	if k == Describe {
		return PreSave
	}
	return PostSave
}

// Effect is a queued side effect.
type Effect struct {
	Kind EffectKind
	// Index is the 1-based attachment position (Describe).
	Index int
	// Value is the description text (Describe) or tag name (AttachTag).
	Value string
	// Var, when set, names the variable whose final value replaces Value.
	Var string
	// Self marks tags that are never counted as trending.
	Self    bool
	Account *status.Account
}

func (p *Pass) queue(e Effect) {
	p.effects = append(p.effects, e)
}

func (p *Pass) runEffects(phase Phase) {
	for _, e := range p.effects {
		if e.Kind.Phase() != phase {
			continue
		}
		switch e.Kind {
		case Describe:
			p.describe(e)
		case AttachTag:
			p.attachTag(e)
		case Mention:
			p.mention(e)
		}
	}
}

func (p *Pass) describe(e Effect) {
	att := p.msg.Attachment(e.Index)
	if att == nil {
		return
	}
	text := e.Value
	if e.Var != "" {
		text = strings.TrimSpace(p.vars[e.Var])
	}
	text = scanner.Unescape(text)
	att.Description = text
	if p.in.svc.Media == nil {
		return
	}
	if err := p.in.svc.Media.Describe(p.ctx, att, text); err != nil {
		p.warn("describing attachment", err, zap.Int("index", e.Index))
	}
}

func (p *Pass) attachTag(e Effect) {
	tags := p.in.svc.Tags
	if tags == nil {
		return
	}
	tag, err := tags.FindOrCreate(p.ctx, e.Value)
	if err != nil {
		p.warn("resolving tag", err, zap.String("tag", e.Value))
		return
	}
	if err := tags.Attach(p.ctx, p.msg, tag); err != nil {
		p.warn("attaching tag", err, zap.String("tag", e.Value))
		return
	}
	if e.Self || !p.msg.Visibility.Distributable() || p.msg.Author == nil {
		return
	}
	at := p.msg.CreatedAt
	if at.IsZero() {
		at = p.in.now()
	}
	if err := tags.RecordUse(p.ctx, tag, p.msg.Author, at); err != nil {
		p.warn("recording tag use", err, zap.String("tag", e.Value))
	}
}

func (p *Pass) mention(e Effect) {
	if p.in.svc.Mentions == nil || e.Account == nil {
		return
	}
	if err := p.in.svc.Mentions.Mention(p.ctx, p.msg, e.Account); err != nil {
		p.warn("creating mention", err, zap.String("account", e.Account.Acct()))
	}
}
