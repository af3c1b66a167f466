// Package fixture reads YAML descriptions of a message and the thread it
// is written in, and loads them into a store so the interpreter can run
// against them.
//
//	run_id: optional, generated when missing
//	accounts:
//	  - {username: alice, avatar: "https://img.example/a.png"}
//	  - {username: root, role: admin}
//	emojis:
//	  - {shortcode: blob, domain: r.example, image: "https://r.example/blob.png"}
//	thread:
//	  - {author: bob@r.example, text: "first!", emojis: [{shortcode: blob, domain: r.example}]}
//	status:
//	  author: alice
//	  reply: true
//	  media: ["", ""]
//	  text: "#!thread:reall #!{media:1:desc:a cat}"
package fixture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rubiojr/bangtag/status"
	"github.com/rubiojr/bangtag/store"
	"gopkg.in/yaml.v3"
)

// Fixture is one YAML document.
type Fixture struct {
	RunID    string    `yaml:"run_id"`
	Accounts []Account `yaml:"accounts"`
	Emojis   []Emoji   `yaml:"emojis"`
	Thread   []Message `yaml:"thread"`
	Status   Message   `yaml:"status"`
}

// Account is an account to create before the thread is saved.
type Account struct {
	Username    string `yaml:"username"`
	Domain      string `yaml:"domain"`
	DisplayName string `yaml:"display_name"`
	Avatar      string `yaml:"avatar"`
	Role        string `yaml:"role"`
}

// Emoji is a custom emoji known to the store.
type Emoji struct {
	Shortcode string `yaml:"shortcode"`
	Domain    string `yaml:"domain"`
	Image     string `yaml:"image"`
}

// Message is a thread entry or the status being composed.
type Message struct {
	Author      string   `yaml:"author"`
	Text        string   `yaml:"text"`
	Visibility  string   `yaml:"visibility"`
	ContentType string   `yaml:"content_type"`
	Emojis      []Emoji  `yaml:"emojis"`
	Media       []string `yaml:"media"`
	// Reply makes the status a reply to the last thread message.
	Reply bool `yaml:"reply"`
}

// Read decodes a fixture from r. Unknown fields are errors.
func Read(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty fixture")
		}
		return nil, fmt.Errorf("decoding fixture: %w", err)
	}
	if f.RunID == "" {
		f.RunID = uuid.NewString()
	}
	if f.Status.Author == "" {
		return nil, errors.New("status.author is required")
	}
	if f.Status.Reply && len(f.Thread) == 0 {
		return nil, errors.New("status.reply needs at least one thread message")
	}
	return &f, nil
}

// ReadFile decodes the fixture at path, or standard input when path is "-".
func ReadFile(path string) (*Fixture, error) {
	if path == "-" {
		return Read(os.Stdin)
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	defer fh.Close()
	f, err := Read(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Apply writes accounts, emoji and thread into s and returns the status,
// ready to be processed and saved. The thread is saved as one conversation.
func (f *Fixture) Apply(ctx context.Context, s store.Store) (*status.Message, error) {
	for _, a := range f.Accounts {
		role, err := store.ParseRole(a.Role)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", a.Username, err)
		}
		acct := &status.Account{
			Username:    a.Username,
			Domain:      strings.ToLower(a.Domain),
			DisplayName: a.DisplayName,
			Avatar:      a.Avatar,
		}
		if err := s.PutAccount(ctx, acct, role); err != nil {
			return nil, fmt.Errorf("saving account %s: %w", acct.Acct(), err)
		}
	}
	for _, e := range f.Emojis {
		if err := s.PutEmoji(ctx, e.emoji()); err != nil {
			return nil, fmt.Errorf("saving emoji %s: %w", e.Shortcode, err)
		}
	}

	var conversation int64
	var last *status.Message
	for i, m := range f.Thread {
		msg, err := m.message(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("thread[%d]: %w", i, err)
		}
		msg.InReplyTo = last
		msg.Conversation = conversation
		if err := s.Save(ctx, msg); err != nil {
			return nil, fmt.Errorf("thread[%d]: %w", i, err)
		}
		if conversation == 0 {
			conversation = msg.ID
			msg.Conversation = conversation
			if err := s.Save(ctx, msg); err != nil {
				return nil, fmt.Errorf("thread[%d]: %w", i, err)
			}
		}
		last = msg
	}

	msg, err := f.Status.message(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	msg.Conversation = conversation
	if f.Status.Reply {
		msg.InReplyTo = last
	}
	return msg, nil
}

func (e Emoji) emoji() status.Emoji {
	return status.Emoji{Shortcode: e.Shortcode, Domain: strings.ToLower(e.Domain), Image: e.Image}
}

func (m Message) message(ctx context.Context, s store.Store) (*status.Message, error) {
	author, err := s.Account(ctx, m.Author)
	if err != nil {
		return nil, fmt.Errorf("author %q: %w", m.Author, err)
	}
	vis, ok := status.ParseVisibility(m.Visibility)
	if !ok {
		return nil, fmt.Errorf("unknown visibility %q", m.Visibility)
	}
	ct := status.Plain
	if m.ContentType != "" {
		ct = status.ContentType(m.ContentType)
	}
	msg := &status.Message{
		Text:        m.Text,
		Visibility:  vis,
		ContentType: ct,
		Author:      author,
	}
	for _, e := range m.Emojis {
		msg.Emojis = append(msg.Emojis, e.emoji())
	}
	for _, desc := range m.Media {
		msg.Media = append(msg.Media, &status.Attachment{Description: desc})
	}
	return msg, nil
}
