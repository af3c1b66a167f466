package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rubiojr/bangtag/config"
	"github.com/rubiojr/bangtag/fixture"
	"github.com/rubiojr/bangtag/interp"
	"github.com/rubiojr/bangtag/parser"
	"github.com/rubiojr/bangtag/scanner"
	"github.com/rubiojr/bangtag/store"
	"go.uber.org/zap"
)

// render loads f into the configured store, processes its status and
// writes the final text to out and a summary of the effects to summary.
func render(ctx context.Context, cfg *config.Config, f *fixture.Fixture, logger *zap.Logger, out, summary io.Writer) error {
	s, err := cfg.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	msg, err := f.Apply(ctx, s)
	if err != nil {
		return err
	}
	in := interp.New(store.Services(s, store.Links{BaseURL: cfg.BaseURL()}), interp.WithLogger(logger))
	if err := in.Process(ctx, msg, s.Save); err != nil {
		return err
	}
	logger.Debug("status processed", zap.Int64("status", msg.ID), zap.Int("tags", len(msg.Tags)))

	fmt.Fprintln(out, msg.Text)

	mentioned, err := s.MentionedAccounts(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("listing mentions: %w", err)
	}
	tags := make([]string, len(msg.Tags))
	for i, t := range msg.Tags {
		tags[i] = "#" + t.Name
	}
	handles := make([]string, len(mentioned))
	for i, a := range mentioned {
		handles[i] = a.Mention()
	}

	tw := tabwriter.NewWriter(summary, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "status\t%d\n", msg.ID)
	fmt.Fprintf(tw, "visibility\t%s\n", msg.Visibility)
	fmt.Fprintf(tw, "content type\t%s\n", msg.ContentType)
	fmt.Fprintf(tw, "tags\t%s\n", strings.Join(tags, " "))
	fmt.Fprintf(tw, "mentions\t%s\n", strings.Join(handles, " "))
	for i, att := range msg.Media {
		fmt.Fprintf(tw, "media %d\t%q\n", i+1, att.Description)
	}
	return tw.Flush()
}

const (
	colorDirective = "\033[36m"
	colorFields    = "\033[33m"
	colorReset     = "\033[0m"
)

// writeTokens prints one line per span of text. Directive lines carry the
// form and the parsed fields.
func writeTokens(w io.Writer, text string, color bool) error {
	dir, fields, reset := colorDirective, colorFields, colorReset
	if !color {
		dir, fields, reset = "", "", ""
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, sp := range scanner.Split(text) {
		body := scanner.Unescape(sp.Text)
		if sp.Kind == scanner.Literal {
			fmt.Fprintf(tw, "%d\tliteral\t%q\n", sp.Pos, body)
			continue
		}
		cmd := parser.Parse(sp.Body())
		fmt.Fprintf(tw, "%d\t%s%s\t%q%s\t%s%s%s\n",
			sp.Pos, dir, sp.Form, body, reset, fields, strings.Join(quoteAll(cmd), " "), reset)
	}
	return tw.Flush()
}

func quoteAll(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = fmt.Sprintf("%q", f)
	}
	return out
}

// writeCommand prints the usage of one directive followed by its
// indented description.
func writeCommand(w io.Writer, name string) error {
	b, ok := interp.Lookup(strings.ToLower(name))
	if !ok {
		return fmt.Errorf("unknown directive %q", name)
	}
	var sb strings.Builder
	sb.WriteString(scanner.Marker + b.Usage)
	sb.WriteString("\n")
	if b.Doc != "" {
		sb.WriteString("    ")
		sb.WriteString(b.Doc)
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// writeCommands prints every registered directive with its usage.
func writeCommands(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, b := range interp.Commands() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", b.Name, b.Usage, b.Doc)
	}
	return tw.Flush()
}
