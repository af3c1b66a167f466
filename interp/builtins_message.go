package interp

import (
	"strconv"
	"strings"

	"github.com/rubiojr/bangtag/parser"
	"go.uber.org/zap"
)

func init() {
	register(&Builtin{
		Name:  "media",
		Usage: "media:<index>:desc[:<text>...]",
		Doc:   "Set the description of an attachment, or capture it until var:end",
		Run:   runMedia,
	})
	register(&Builtin{
		Name:  "draft",
		Usage: "draft",
		Doc:   "Mark the message as a private draft and drop everything after",
		Run:   runDraft,
	})
	format := &Builtin{
		Name:  "format",
		Usage: "format:plain|markdown|html",
		Doc:   "Set the content type",
		Run:   runFormat,
	}
	register(format)
	register(aliasOf("type", format))
	register(&Builtin{
		Name:  "visibility",
		Usage: "visibility:public|unlisted|private|direct",
		Doc:   "Set who can see the message",
		Run:   runVisibility,
	})
}

// mediaVar names the variable a media description is captured into. The
// NUL byte keeps it out of reach of var directives.
func mediaVar(index int) string {
	return "\x00media:" + strconv.Itoa(index)
}

func runMedia(p *Pass, cmd parser.Command, _ string) {
	index, err := strconv.Atoi(cmd.Arg(1))
	if err != nil {
		p.debug("media without an index", cmd)
		return
	}
	if p.msg.Attachment(index) == nil {
		p.debug("media index out of range", cmd, zap.Int("attachments", len(p.msg.Media)))
		return
	}
	switch strings.ToLower(cmd.Arg(2)) {
	case "desc", "description", "alt":
	default:
		p.debug("unknown media property", cmd)
		return
	}
	if text := cmd[3:]; len(text) > 0 {
		p.queue(Effect{Kind: Describe, Index: index, Value: strings.Join(text, parser.Delim)})
		return
	}
	name := mediaVar(index)
	p.openCapture(name)
	p.queue(Effect{Kind: Describe, Index: index, Var: name})
}

func runDraft(p *Pass, _ parser.Command, _ string) {
	if p.draft {
		return
	}
	p.draft = true
	p.msg.Visibility = DraftVisibility
	p.tagged[DraftTag] = true
	p.queue(Effect{Kind: AttachTag, Value: DraftTag, Self: true})
}

func runFormat(p *Pass, cmd parser.Command, _ string) {
	if ct, ok := contentTypes[strings.ToLower(cmd.Arg(1))]; ok {
		p.msg.ContentType = ct
	}
}

func runVisibility(p *Pass, cmd parser.Command, _ string) {
	if v, ok := visibilities[strings.ToLower(cmd.Arg(1))]; ok {
		p.msg.Visibility = v
	}
}
