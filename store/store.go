// Package store implements the collaborators of the directive interpreter:
// tags, custom emoji, accounts, conversations, media and mentions. Memory
// keeps everything in process; SQLite persists it with modernc.org/sqlite.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rubiojr/bangtag/status"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Role is the staff role of an account.
type Role string

const (
	RoleUser      Role = ""
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

// ParseRole validates a role name from configuration.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(s)); r {
	case RoleUser, RoleAdmin, RoleModerator:
		return r, nil
	}
	return RoleUser, fmt.Errorf("unknown role %q", s)
}

// Store is a complete backend for the interpreter.
type Store interface {
	status.TagRegistry
	status.EmojiRegistry
	status.Directory
	status.Conversations
	status.MediaStore
	status.Mentions

	// PutAccount inserts or updates an account, assigning its ID.
	PutAccount(ctx context.Context, acct *status.Account, role Role) error
	// Account finds an account by handle ("alice" or "bob@remote.example").
	Account(ctx context.Context, acct string) (*status.Account, error)
	// PutEmoji inserts or replaces a custom emoji.
	PutEmoji(ctx context.Context, e status.Emoji) error
	// Save inserts or updates a message, assigning its ID when zero.
	Save(ctx context.Context, msg *status.Message) error
	// Status loads a message with its author, media and emoji.
	Status(ctx context.Context, id int64) (*status.Message, error)
	// MentionedAccounts lists accounts mentioned by a message.
	MentionedAccounts(ctx context.Context, statusID int64) ([]*status.Account, error)
	Close() error
}

// Services wires s and links into the interpreter's collaborator bundle.
func Services(s Store, links status.Permalinks) status.Services {
	return status.Services{
		Tags:          s,
		Emojis:        s,
		Directory:     s,
		Permalinks:    links,
		Conversations: s,
		Media:         s,
		Mentions:      s,
	}
}

// Open returns the backend for driver: "memory" or "sqlite".
func Open(driver, path string) (Store, error) {
	switch driver {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(path)
	}
	return nil, fmt.Errorf("unknown store driver %q", driver)
}

// Links builds permalinks of the form <base>/@<acct>/<id>.
type Links struct {
	BaseURL string
}

// URLFor returns the permalink of msg.
func (l Links) URLFor(msg *status.Message) string {
	base := strings.TrimRight(l.BaseURL, "/")
	id := strconv.FormatInt(msg.ID, 10)
	if msg.Author == nil {
		return base + "/statuses/" + id
	}
	return base + "/@" + msg.Author.Acct() + "/" + id
}

// splitAcct splits "user@domain" into its parts; a leading @ is ignored.
func splitAcct(acct string) (string, string) {
	acct = strings.TrimPrefix(acct, "@")
	user, domain, _ := strings.Cut(acct, "@")
	return user, strings.ToLower(domain)
}
