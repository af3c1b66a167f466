package interp

import (
	"sort"
	"strings"

	"github.com/rubiojr/bangtag/parser"
	"github.com/rubiojr/bangtag/status"
	"go.uber.org/zap"
)

func init() {
	register(&Builtin{
		Name:  "emojify",
		Usage: "emojify:avatar[:<shortcode>] | emojify:parent[:<shortcode>]",
		Doc:   "Turn an avatar into a local custom emoji",
		Run:   runEmojify,
	})
	register(&Builtin{
		Name:  "emoji",
		Usage: "emoji:<shortcode>[:<domain>]",
		Doc:   "Import a remote custom emoji and insert it",
		Run:   runEmoji,
	})
	register(&Builtin{
		Name:  "link",
		Usage: "link:permalink | link:self",
		Doc:   "Insert the permalink of this message",
		Run:   runLink,
	})
	register(&Builtin{
		Name:  "ping",
		Usage: "ping:admins | ping:mods | ping:staff",
		Doc:   "Mention the instance administrators and/or moderators",
		Run:   runPing,
	})
	register(&Builtin{
		Name:  "tag",
		Usage: "tag:<name>...",
		Doc:   "Attach hashtags without writing them in the text",
		Run:   runTag,
	})
	register(&Builtin{
		Name:  "thread",
		Usage: "thread:reall[:<mention>...] | thread:emoji",
		Doc:   "Mention everyone in the thread, or import its emoji",
		Run:   runThread,
	})
	register(&Builtin{
		Name:  "parent",
		Usage: "parent:permalink | parent:tag:<name>... | parent:emoji",
		Doc:   "Act on the message being replied to",
		Run:   runParent,
	})
}

func runEmojify(p *Pass, cmd parser.Command, _ string) {
	var acct *status.Account
	switch strings.ToLower(cmd.Arg(1)) {
	case "avatar":
		acct = p.msg.Author
	case "parent":
		if p.msg.IsReply() {
			acct = p.msg.InReplyTo.Author
		}
	default:
		p.debug("unknown emojify source", cmd)
		return
	}
	if acct == nil || acct.Avatar == "" {
		return
	}
	code := cmd.Arg(2)
	if code == "" {
		code = acct.Username
	}
	if !shortcodePattern.MatchString(code) {
		p.debug("invalid shortcode", cmd, zap.String("shortcode", code))
		return
	}
	emojis := p.in.svc.Emojis
	if emojis == nil {
		return
	}
	existing, err := emojis.FindLocal(p.ctx, code)
	if err != nil {
		p.warn("looking up emoji", err, zap.String("shortcode", code))
		return
	}
	if existing == nil {
		if err := emojis.CreateLocal(p.ctx, code, acct.Avatar); err != nil {
			p.warn("creating emoji", err, zap.String("shortcode", code))
			return
		}
	}
	p.emit(":" + code + ":")
}

func runEmoji(p *Pass, cmd parser.Command, _ string) {
	// shortcode:<code> arrives expanded as emoji:shortcode:<code>.
	if strings.EqualFold(cmd.Arg(1), "shortcode") && len(cmd) > 2 {
		cmd = cmd.Shift()
	}
	code := cmd.Arg(1)
	if code == "" {
		return
	}
	p.importEmoji(code, cmd.Arg(2))
	p.emit(":" + code + ":")
}

// importEmoji copies shortcode from domain (any domain when empty) unless
// a local emoji with that shortcode already exists.
func (p *Pass) importEmoji(code, domain string) {
	emojis := p.in.svc.Emojis
	if emojis == nil {
		return
	}
	local, err := emojis.FindLocal(p.ctx, code)
	if err != nil {
		p.warn("looking up emoji", err, zap.String("shortcode", code))
		return
	}
	if local != nil {
		return
	}
	remote, err := emojis.FindRemote(p.ctx, code, domain)
	if err != nil {
		p.warn("looking up remote emoji", err, zap.String("shortcode", code), zap.String("domain", domain))
		return
	}
	if remote == nil {
		return
	}
	if err := emojis.CreateLocal(p.ctx, code, remote.Image); err != nil {
		p.warn("creating emoji", err, zap.String("shortcode", code))
	}
}

// copyEmojis imports every remote emoji in list.
func (p *Pass) copyEmojis(list []status.Emoji) {
	for _, e := range list {
		if e.Domain == "" {
			continue
		}
		p.importEmoji(e.Shortcode, e.Domain)
	}
}

func runLink(p *Pass, cmd parser.Command, _ string) {
	switch strings.ToLower(cmd.Arg(1)) {
	case "permalink", "self":
		p.emitPermalink(p.msg)
	default:
		p.debug("unknown link target", cmd)
	}
}

func (p *Pass) emitPermalink(msg *status.Message) {
	if p.in.svc.Permalinks == nil {
		return
	}
	p.emit(p.in.svc.Permalinks.URLFor(msg))
}

func runPing(p *Pass, cmd parser.Command, _ string) {
	dir := p.in.svc.Directory
	if dir == nil {
		return
	}
	var admins, mods bool
	for _, role := range cmd.Args() {
		switch strings.ToLower(role) {
		case "admins":
			admins = true
		case "mods":
			mods = true
		case "staff":
			admins, mods = true, true
		}
	}
	var accounts []*status.Account
	if admins {
		list, err := dir.Administrators(p.ctx)
		if err != nil {
			p.warn("listing administrators", err)
		}
		accounts = append(accounts, list...)
	}
	if mods {
		list, err := dir.Moderators(p.ctx)
		if err != nil {
			p.warn("listing moderators", err)
		}
		accounts = append(accounts, list...)
	}
	p.emit(p.mentionAll(accounts, nil))
}

// mentionAll queues a mention for each account other than the author and
// returns the sorted, de-duplicated handles together with extra.
func (p *Pass) mentionAll(accounts []*status.Account, extra []string) string {
	seen := make(map[string]bool)
	var handles []string
	add := func(h string) {
		key := strings.ToLower(h)
		if seen[key] {
			return
		}
		seen[key] = true
		handles = append(handles, h)
	}
	for _, a := range accounts {
		if a == nil {
			continue
		}
		add(a.Mention())
		if p.isAuthor(a) || p.pinged[strings.ToLower(a.Acct())] {
			continue
		}
		p.pinged[strings.ToLower(a.Acct())] = true
		p.queue(Effect{Kind: Mention, Account: a})
	}
	for _, h := range extra {
		h = strings.TrimSpace(h)
		if h == "" || h == "@" {
			continue
		}
		if !strings.HasPrefix(h, "@") {
			h = "@" + h
		}
		add(h)
	}
	sort.Strings(handles)
	return strings.Join(handles, " ")
}

func (p *Pass) isAuthor(a *status.Account) bool {
	return sameAccount(p.msg.Author, a)
}

func sameAccount(a, b *status.Account) bool {
	if a == nil || b == nil {
		return false
	}
	if a.ID != 0 && b.ID != 0 {
		return a.ID == b.ID
	}
	return strings.EqualFold(a.Acct(), b.Acct())
}

func runTag(p *Pass, cmd parser.Command, _ string) {
	p.tagAll(cmd.Args())
}

// tagAll queues valid, not yet queued tag names for attachment.
func (p *Pass) tagAll(names []string) {
	for _, name := range names {
		if !tagPattern.MatchString(name) {
			p.in.log.Debug("rejecting tag", zap.String("tag", name))
			continue
		}
		key := strings.ToLower(name)
		if p.tagged[key] {
			continue
		}
		p.tagged[key] = true
		p.queue(Effect{Kind: AttachTag, Value: name})
	}
}

func runThread(p *Pass, cmd parser.Command, _ string) {
	sub := strings.ToLower(cmd.Arg(1))
	if sub != "reall" && sub != "emoji" {
		p.debug("unknown thread subcommand", cmd)
		return
	}
	if p.msg.Conversation == 0 || p.in.svc.Conversations == nil {
		return
	}
	msgs, err := p.in.svc.Conversations.Messages(p.ctx, p.msg.Conversation)
	if err != nil {
		p.warn("loading conversation", err, zap.Int64("conversation", p.msg.Conversation))
		return
	}
	switch sub {
	case "reall":
		var participants []*status.Account
		for _, m := range msgs {
			if m.Author != nil && !p.isAuthor(m.Author) {
				participants = append(participants, m.Author)
			}
		}
		p.emit(p.mentionAll(participants, cmd[2:]))
	case "emoji":
		for _, m := range msgs {
			if p.isAuthor(m.Author) {
				p.copyEmojis(m.Emojis)
			}
		}
	}
}

func runParent(p *Pass, cmd parser.Command, _ string) {
	parent := p.msg.InReplyTo
	if parent == nil {
		return
	}
	switch strings.ToLower(cmd.Arg(1)) {
	case "permalink":
		p.emitPermalink(parent)
	case "tag":
		if !p.isAuthor(parent.Author) {
			p.debug("parent belongs to someone else", cmd)
			return
		}
		p.tagAll(cmd[2:])
	case "emoji":
		p.copyEmojis(parent.Emojis)
	default:
		p.debug("unknown parent subcommand", cmd)
	}
}
