// Package status defines the message record the directive interpreter
// rewrites and the collaborator interfaces it consults while doing so.
// Storage is somebody else's problem: the store package provides in-memory
// and SQLite implementations of every interface declared here.
package status

import (
	"context"
	"strings"
	"time"
)

// Visibility is the distribution level of a message, from the widest
// (Public) to the most restricted (Direct).
type Visibility int

const (
	Public Visibility = iota
	Unlisted
	Private
	Direct
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Unlisted:
		return "unlisted"
	case Private:
		return "private"
	case Direct:
		return "direct"
	}
	return "unknown"
}

// Distributable reports whether the message reaches timelines beyond its
// author's followers, which is what makes its tags count as trending.
func (v Visibility) Distributable() bool {
	return v == Public || v == Unlisted
}

// ParseVisibility maps the canonical String() form back to a Visibility.
func ParseVisibility(s string) (Visibility, bool) {
	switch strings.ToLower(s) {
	case "public", "":
		return Public, true
	case "unlisted":
		return Unlisted, true
	case "private":
		return Private, true
	case "direct":
		return Direct, true
	}
	return Public, false
}

// ContentType is the MIME type the message text is rendered as.
type ContentType string

const (
	Plain    ContentType = "text/plain"
	Markdown ContentType = "text/markdown"
	HTML     ContentType = "text/html"
)

// Account is a user known to the instance. Domain is empty for local accounts.
type Account struct {
	ID          int64
	Username    string
	Domain      string
	DisplayName string
	// Avatar is the image source URL, empty when the account has none.
	Avatar string
}

// Acct returns the account handle without the leading @:
// "alice" for local accounts, "bob@remote.example" otherwise.
func (a *Account) Acct() string {
	if a.Domain == "" {
		return a.Username
	}
	return a.Username + "@" + a.Domain
}

// Mention returns the @-prefixed handle.
func (a *Account) Mention() string {
	return "@" + a.Acct()
}

// Emoji is a custom emoji. Domain is empty for local emoji.
type Emoji struct {
	Shortcode string
	Domain    string
	Image     string
}

// Tag is a hashtag known to the tag registry.
type Tag struct {
	ID   int64
	Name string
}

// Attachment is a media item of a message.
type Attachment struct {
	ID          int64
	Description string
}

// Message is the record being composed. Text, Visibility and ContentType are
// rewritten by the interpreter; the remaining fields are read-only to it.
type Message struct {
	ID          int64
	Text        string
	Visibility  Visibility
	ContentType ContentType
	Author      *Account
	// InReplyTo is the parent message, nil when this is not a reply.
	InReplyTo *Message
	// Conversation is zero when the message does not belong to a thread.
	Conversation int64
	// Media is ordered; directives address it 1-based.
	Media []*Attachment
	// Emojis lists the custom emoji used in the message text.
	Emojis    []Emoji
	Tags      []*Tag
	CreatedAt time.Time
}

// IsReply reports whether the message has a parent.
func (m *Message) IsReply() bool { return m.InReplyTo != nil }

// Attachment returns the media item at the 1-based index, or nil.
func (m *Message) Attachment(index int) *Attachment {
	if index < 1 || index > len(m.Media) {
		return nil
	}
	return m.Media[index-1]
}

// TagRegistry resolves and attaches hashtags.
type TagRegistry interface {
	FindOrCreate(ctx context.Context, name string) (*Tag, error)
	Attach(ctx context.Context, msg *Message, tag *Tag) error
	// RecordUse counts a trending/featured use of tag by author.
	RecordUse(ctx context.Context, tag *Tag, author *Account, at time.Time) error
}

// EmojiRegistry stores custom emoji keyed by shortcode and domain.
// The Find methods return a nil Emoji and a nil error when nothing matches.
type EmojiRegistry interface {
	FindLocal(ctx context.Context, shortcode string) (*Emoji, error)
	// FindRemote looks up shortcode on domain; an empty domain matches any
	// remote domain.
	FindRemote(ctx context.Context, shortcode, domain string) (*Emoji, error)
	CreateLocal(ctx context.Context, shortcode, image string) error
}

// Directory answers role queries about accounts.
type Directory interface {
	Administrators(ctx context.Context) ([]*Account, error)
	Moderators(ctx context.Context) ([]*Account, error)
}

// Permalinks builds canonical URLs for messages.
type Permalinks interface {
	URLFor(msg *Message) string
}

// Conversations lists the messages of a thread.
type Conversations interface {
	Messages(ctx context.Context, conversation int64) ([]*Message, error)
}

// MediaStore persists attachment changes.
type MediaStore interface {
	Describe(ctx context.Context, att *Attachment, description string) error
}

// Mentions materializes mention records for a saved message.
type Mentions interface {
	Mention(ctx context.Context, msg *Message, acct *Account) error
}

// Services bundles every collaborator the interpreter talks to. A nil
// member disables the directives that need it.
type Services struct {
	Tags          TagRegistry
	Emojis        EmojiRegistry
	Directory     Directory
	Permalinks    Permalinks
	Conversations Conversations
	Media         MediaStore
	Mentions      Mentions
}
