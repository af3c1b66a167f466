package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rubiojr/bangtag/status"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id INTEGER PRIMARY KEY,
	username TEXT NOT NULL,
	domain TEXT NOT NULL DEFAULT '',
	display_name TEXT NOT NULL DEFAULT '',
	avatar TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL DEFAULT '',
	UNIQUE (username, domain)
);
CREATE TABLE IF NOT EXISTS statuses (
	id INTEGER PRIMARY KEY,
	account_id INTEGER NOT NULL,
	text TEXT NOT NULL DEFAULT '',
	visibility INTEGER NOT NULL DEFAULT 0,
	content_type TEXT NOT NULL DEFAULT '',
	in_reply_to_id INTEGER,
	conversation_id INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS statuses_conversation ON statuses (conversation_id);
CREATE TABLE IF NOT EXISTS status_emojis (
	status_id INTEGER NOT NULL,
	shortcode TEXT NOT NULL,
	domain TEXT NOT NULL DEFAULT '',
	image TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (status_id, shortcode, domain)
);
CREATE TABLE IF NOT EXISTS media (
	id INTEGER PRIMARY KEY,
	status_id INTEGER NOT NULL,
	position INTEGER NOT NULL,
	description TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS tags (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL UNIQUE COLLATE NOCASE
);
CREATE TABLE IF NOT EXISTS status_tags (
	status_id INTEGER NOT NULL,
	tag_id INTEGER NOT NULL,
	PRIMARY KEY (status_id, tag_id)
);
CREATE TABLE IF NOT EXISTS tag_uses (
	id TEXT PRIMARY KEY,
	tag_id INTEGER NOT NULL,
	account_id INTEGER NOT NULL,
	used_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS emojis (
	shortcode TEXT NOT NULL,
	domain TEXT NOT NULL DEFAULT '',
	image TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (shortcode, domain)
);
CREATE TABLE IF NOT EXISTS mentions (
	id TEXT PRIMARY KEY,
	status_id INTEGER NOT NULL,
	account_id INTEGER NOT NULL,
	UNIQUE (status_id, account_id)
);
`

// SQLite is a Store persisted in a SQLite database.
type SQLite struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("opening database: empty path")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}
	return &SQLite{db: db, path: path}, nil
}

// Close implements Store.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// PutAccount implements Store.
func (s *SQLite) PutAccount(ctx context.Context, acct *status.Account, role Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	domain := strings.ToLower(acct.Domain)
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM accounts WHERE username = ? AND domain = ?`, acct.Username, domain).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		var res sql.Result
		if acct.ID != 0 {
			res, err = s.db.ExecContext(ctx,
				`INSERT INTO accounts (id, username, domain, display_name, avatar, role) VALUES (?, ?, ?, ?, ?, ?)`,
				acct.ID, acct.Username, domain, acct.DisplayName, acct.Avatar, string(role))
		} else {
			res, err = s.db.ExecContext(ctx,
				`INSERT INTO accounts (username, domain, display_name, avatar, role) VALUES (?, ?, ?, ?, ?)`,
				acct.Username, domain, acct.DisplayName, acct.Avatar, string(role))
		}
		if err != nil {
			return fmt.Errorf("inserting account %s: %w", acct.Acct(), err)
		}
		if acct.ID == 0 {
			if acct.ID, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("inserting account %s: %w", acct.Acct(), err)
			}
		}
		return nil
	case err != nil:
		return fmt.Errorf("looking up account %s: %w", acct.Acct(), err)
	}
	acct.ID = id
	_, err = s.db.ExecContext(ctx,
		`UPDATE accounts SET display_name = ?, avatar = ?, role = ? WHERE id = ?`,
		acct.DisplayName, acct.Avatar, string(role), id)
	if err != nil {
		return fmt.Errorf("updating account %s: %w", acct.Acct(), err)
	}
	return nil
}

const accountColumns = `id, username, domain, display_name, avatar`

func scanAccount(row interface{ Scan(...any) error }) (*status.Account, error) {
	a := &status.Account{}
	if err := row.Scan(&a.ID, &a.Username, &a.Domain, &a.DisplayName, &a.Avatar); err != nil {
		return nil, err
	}
	return a, nil
}

// Account implements Store.
func (s *SQLite) Account(ctx context.Context, acct string) (*status.Account, error) {
	user, domain := splitAcct(acct)
	a, err := scanAccount(s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = ? AND domain = ?`, user, domain))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up account %s: %w", acct, err)
	}
	return a, nil
}

func (s *SQLite) accountByID(ctx context.Context, id int64) (*status.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (s *SQLite) accounts(ctx context.Context, query string, args ...any) ([]*status.Account, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*status.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLite) withRole(ctx context.Context, r Role) ([]*status.Account, error) {
	out, err := s.accounts(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE role = ? ORDER BY username, domain`, string(r))
	if err != nil {
		return nil, fmt.Errorf("listing %s accounts: %w", r, err)
	}
	return out, nil
}

// Administrators implements status.Directory.
func (s *SQLite) Administrators(ctx context.Context) ([]*status.Account, error) {
	return s.withRole(ctx, RoleAdmin)
}

// Moderators implements status.Directory.
func (s *SQLite) Moderators(ctx context.Context) ([]*status.Account, error) {
	return s.withRole(ctx, RoleModerator)
}

// Save implements Store. Media rows and used emoji are replaced wholesale.
func (s *SQLite) Save(ctx context.Context, msg *status.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.Author == nil || msg.Author.ID == 0 {
		return fmt.Errorf("saving status: author has no id")
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	var replyTo any
	if msg.InReplyTo != nil {
		replyTo = msg.InReplyTo.ID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("saving status: %w", err)
	}
	defer tx.Rollback()

	if msg.ID == 0 {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO statuses (account_id, text, visibility, content_type, in_reply_to_id, conversation_id, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			msg.Author.ID, msg.Text, int(msg.Visibility), string(msg.ContentType), replyTo, msg.Conversation, msg.CreatedAt.Unix())
		if err != nil {
			return fmt.Errorf("inserting status: %w", err)
		}
		if msg.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("inserting status: %w", err)
		}
	} else {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO statuses (id, account_id, text, visibility, content_type, in_reply_to_id, conversation_id, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET text = excluded.text, visibility = excluded.visibility,
			   content_type = excluded.content_type, conversation_id = excluded.conversation_id`,
			msg.ID, msg.Author.ID, msg.Text, int(msg.Visibility), string(msg.ContentType), replyTo, msg.Conversation, msg.CreatedAt.Unix())
		if err != nil {
			return fmt.Errorf("saving status %d: %w", msg.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM media WHERE status_id = ?`, msg.ID); err != nil {
		return fmt.Errorf("saving media of status %d: %w", msg.ID, err)
	}
	for i, att := range msg.Media {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO media (status_id, position, description) VALUES (?, ?, ?)`, msg.ID, i+1, att.Description)
		if err != nil {
			return fmt.Errorf("saving media of status %d: %w", msg.ID, err)
		}
		if att.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("saving media of status %d: %w", msg.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM status_emojis WHERE status_id = ?`, msg.ID); err != nil {
		return fmt.Errorf("saving emoji of status %d: %w", msg.ID, err)
	}
	for _, e := range msg.Emojis {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO status_emojis (status_id, shortcode, domain, image) VALUES (?, ?, ?, ?)`,
			msg.ID, e.Shortcode, strings.ToLower(e.Domain), e.Image)
		if err != nil {
			return fmt.Errorf("saving emoji of status %d: %w", msg.ID, err)
		}
	}
	return tx.Commit()
}

// Status implements Store. The parent, when present, is loaded one level
// deep.
func (s *SQLite) Status(ctx context.Context, id int64) (*status.Message, error) {
	msgs, err := s.statuses(ctx, `WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, ErrNotFound
	}
	return msgs[0], nil
}

// Messages implements status.Conversations.
func (s *SQLite) Messages(ctx context.Context, conversation int64) ([]*status.Message, error) {
	return s.statuses(ctx, `WHERE conversation_id = ? ORDER BY id`, conversation)
}

func (s *SQLite) statuses(ctx context.Context, where string, args ...any) ([]*status.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, account_id, text, visibility, content_type, in_reply_to_id, conversation_id, created_at
		 FROM statuses `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("loading statuses: %w", err)
	}
	type row struct {
		msg     *status.Message
		author  int64
		replyTo sql.NullInt64
	}
	var loaded []row
	for rows.Next() {
		var (
			r          row
			visibility int
			ct         string
			created    int64
		)
		r.msg = &status.Message{}
		if err := rows.Scan(&r.msg.ID, &r.author, &r.msg.Text, &visibility, &ct, &r.replyTo, &r.msg.Conversation, &created); err != nil {
			rows.Close()
			return nil, fmt.Errorf("loading statuses: %w", err)
		}
		r.msg.Visibility = status.Visibility(visibility)
		r.msg.ContentType = status.ContentType(ct)
		r.msg.CreatedAt = time.Unix(created, 0)
		loaded = append(loaded, r)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("loading statuses: %w", err)
	}

	out := make([]*status.Message, 0, len(loaded))
	for _, r := range loaded {
		if r.msg.Author, err = s.accountByID(ctx, r.author); err != nil {
			return nil, fmt.Errorf("loading author of status %d: %w", r.msg.ID, err)
		}
		if err := s.loadMedia(ctx, r.msg); err != nil {
			return nil, err
		}
		if err := s.loadEmojis(ctx, r.msg); err != nil {
			return nil, err
		}
		if r.replyTo.Valid {
			parents, err := s.statusesShallow(ctx, r.replyTo.Int64)
			if err != nil {
				return nil, err
			}
			if len(parents) > 0 {
				r.msg.InReplyTo = parents[0]
			}
		}
		out = append(out, r.msg)
	}
	return out, nil
}

// statusesShallow loads one status without following its parent.
func (s *SQLite) statusesShallow(ctx context.Context, id int64) ([]*status.Message, error) {
	msg := &status.Message{ID: id}
	var (
		author     int64
		visibility int
		ct         string
		created    int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT account_id, text, visibility, content_type, conversation_id, created_at FROM statuses WHERE id = ?`, id).
		Scan(&author, &msg.Text, &visibility, &ct, &msg.Conversation, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading status %d: %w", id, err)
	}
	msg.Visibility = status.Visibility(visibility)
	msg.ContentType = status.ContentType(ct)
	msg.CreatedAt = time.Unix(created, 0)
	if msg.Author, err = s.accountByID(ctx, author); err != nil {
		return nil, fmt.Errorf("loading author of status %d: %w", id, err)
	}
	if err := s.loadEmojis(ctx, msg); err != nil {
		return nil, err
	}
	return []*status.Message{msg}, nil
}

func (s *SQLite) loadMedia(ctx context.Context, msg *status.Message) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, description FROM media WHERE status_id = ? ORDER BY position`, msg.ID)
	if err != nil {
		return fmt.Errorf("loading media of status %d: %w", msg.ID, err)
	}
	defer rows.Close()
	for rows.Next() {
		att := &status.Attachment{}
		if err := rows.Scan(&att.ID, &att.Description); err != nil {
			return fmt.Errorf("loading media of status %d: %w", msg.ID, err)
		}
		msg.Media = append(msg.Media, att)
	}
	return rows.Err()
}

func (s *SQLite) loadEmojis(ctx context.Context, msg *status.Message) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT shortcode, domain, image FROM status_emojis WHERE status_id = ? ORDER BY shortcode`, msg.ID)
	if err != nil {
		return fmt.Errorf("loading emoji of status %d: %w", msg.ID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var e status.Emoji
		if err := rows.Scan(&e.Shortcode, &e.Domain, &e.Image); err != nil {
			return fmt.Errorf("loading emoji of status %d: %w", msg.ID, err)
		}
		msg.Emojis = append(msg.Emojis, e)
	}
	return rows.Err()
}

// FindOrCreate implements status.TagRegistry.
func (s *SQLite) FindOrCreate(ctx context.Context, name string) (*status.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO tags (name) VALUES (?)`, name); err != nil {
		return nil, fmt.Errorf("creating tag %s: %w", name, err)
	}
	t := &status.Tag{}
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM tags WHERE name = ?`, name).Scan(&t.ID, &t.Name)
	if err != nil {
		return nil, fmt.Errorf("looking up tag %s: %w", name, err)
	}
	return t, nil
}

// Attach implements status.TagRegistry.
func (s *SQLite) Attach(ctx context.Context, msg *status.Message, tag *status.Tag) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO status_tags (status_id, tag_id) VALUES (?, ?)`, msg.ID, tag.ID)
	if err != nil {
		return fmt.Errorf("attaching tag %s: %w", tag.Name, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		msg.Tags = append(msg.Tags, tag)
	}
	return nil
}

// RecordUse implements status.TagRegistry.
func (s *SQLite) RecordUse(ctx context.Context, tag *status.Tag, author *status.Account, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tag_uses (id, tag_id, account_id, used_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), tag.ID, author.ID, at.Unix())
	if err != nil {
		return fmt.Errorf("recording use of tag %s: %w", tag.Name, err)
	}
	return nil
}

// TagUseCount returns how many uses were recorded for the named tag.
func (s *SQLite) TagUseCount(ctx context.Context, name string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tag_uses JOIN tags ON tags.id = tag_uses.tag_id WHERE tags.name = ?`, name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting uses of tag %s: %w", name, err)
	}
	return n, nil
}

// PutEmoji implements Store.
func (s *SQLite) PutEmoji(ctx context.Context, e status.Emoji) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO emojis (shortcode, domain, image) VALUES (?, ?, ?)`,
		e.Shortcode, strings.ToLower(e.Domain), e.Image)
	if err != nil {
		return fmt.Errorf("saving emoji %s: %w", e.Shortcode, err)
	}
	return nil
}

func (s *SQLite) findEmoji(ctx context.Context, query string, args ...any) (*status.Emoji, error) {
	e := &status.Emoji{}
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&e.Shortcode, &e.Domain, &e.Image)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up emoji: %w", err)
	}
	return e, nil
}

// FindLocal implements status.EmojiRegistry.
func (s *SQLite) FindLocal(ctx context.Context, shortcode string) (*status.Emoji, error) {
	return s.findEmoji(ctx,
		`SELECT shortcode, domain, image FROM emojis WHERE shortcode = ? AND domain = ''`, shortcode)
}

// FindRemote implements status.EmojiRegistry.
func (s *SQLite) FindRemote(ctx context.Context, shortcode, domain string) (*status.Emoji, error) {
	if domain == "" {
		return s.findEmoji(ctx,
			`SELECT shortcode, domain, image FROM emojis WHERE shortcode = ? AND domain != '' ORDER BY domain LIMIT 1`, shortcode)
	}
	return s.findEmoji(ctx,
		`SELECT shortcode, domain, image FROM emojis WHERE shortcode = ? AND domain = ?`, shortcode, strings.ToLower(domain))
}

// CreateLocal implements status.EmojiRegistry.
func (s *SQLite) CreateLocal(ctx context.Context, shortcode, image string) error {
	return s.PutEmoji(ctx, status.Emoji{Shortcode: shortcode, Image: image})
}

// Describe implements status.MediaStore.
func (s *SQLite) Describe(ctx context.Context, att *status.Attachment, description string) error {
	att.Description = description
	if att.ID == 0 {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE media SET description = ? WHERE id = ?`, description, att.ID); err != nil {
		return fmt.Errorf("describing media %d: %w", att.ID, err)
	}
	return nil
}

// Mention implements status.Mentions.
func (s *SQLite) Mention(ctx context.Context, msg *status.Message, acct *status.Account) error {
	if acct.ID == 0 {
		a, err := s.Account(ctx, acct.Acct())
		if err != nil {
			return fmt.Errorf("mentioning %s: %w", acct.Acct(), err)
		}
		acct = a
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO mentions (id, status_id, account_id) VALUES (?, ?, ?)`,
		uuid.NewString(), msg.ID, acct.ID)
	if err != nil {
		return fmt.Errorf("mentioning %s: %w", acct.Acct(), err)
	}
	return nil
}

// MentionedAccounts implements Store.
func (s *SQLite) MentionedAccounts(ctx context.Context, statusID int64) ([]*status.Account, error) {
	out, err := s.accounts(ctx,
		`SELECT a.id, a.username, a.domain, a.display_name, a.avatar
		 FROM mentions m JOIN accounts a ON a.id = m.account_id
		 WHERE m.status_id = ? ORDER BY a.username, a.domain`, statusID)
	if err != nil {
		return nil, fmt.Errorf("listing mentions of status %d: %w", statusID, err)
	}
	return out, nil
}
