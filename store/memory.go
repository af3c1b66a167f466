package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rubiojr/bangtag/status"
)

// TagUse is one recorded trending use of a tag.
type TagUse struct {
	Tag     string
	Account string
	At      time.Time
}

// Memory is an in-process Store. The zero value is not usable; call
// NewMemory.
type Memory struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[string]*status.Account
	roles    map[string]Role
	statuses map[int64]*status.Message
	tags     map[string]*status.Tag
	tagUses  []TagUse
	emojis   map[string]status.Emoji
	mentions map[int64][]*status.Account
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[string]*status.Account),
		roles:    make(map[string]Role),
		statuses: make(map[int64]*status.Message),
		tags:     make(map[string]*status.Tag),
		emojis:   make(map[string]status.Emoji),
		mentions: make(map[int64][]*status.Account),
	}
}

func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

func emojiKey(shortcode, domain string) string {
	return shortcode + "@" + strings.ToLower(domain)
}

// PutAccount implements Store.
func (m *Memory) PutAccount(_ context.Context, acct *status.Account, role Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(acct.Acct())
	if existing, ok := m.accounts[key]; ok {
		acct.ID = existing.ID
	} else if acct.ID == 0 {
		acct.ID = m.id()
	} else if acct.ID > m.nextID {
		m.nextID = acct.ID
	}
	m.accounts[key] = acct
	m.roles[key] = role
	return nil
}

// Account implements Store.
func (m *Memory) Account(_ context.Context, acct string) (*status.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, domain := splitAcct(acct)
	a, ok := m.accounts[strings.ToLower((&status.Account{Username: user, Domain: domain}).Acct())]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (m *Memory) withRole(r Role) []*status.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*status.Account
	for key, a := range m.accounts {
		if m.roles[key] == r {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Acct() < out[j].Acct() })
	return out
}

// Administrators implements status.Directory.
func (m *Memory) Administrators(context.Context) ([]*status.Account, error) {
	return m.withRole(RoleAdmin), nil
}

// Moderators implements status.Directory.
func (m *Memory) Moderators(context.Context) ([]*status.Account, error) {
	return m.withRole(RoleModerator), nil
}

// Save implements Store.
func (m *Memory) Save(_ context.Context, msg *status.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.ID == 0 {
		msg.ID = m.id()
	} else if msg.ID > m.nextID {
		m.nextID = msg.ID
	}
	m.statuses[msg.ID] = msg
	return nil
}

// Status implements Store.
func (m *Memory) Status(_ context.Context, id int64) (*status.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.statuses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return msg, nil
}

// Messages implements status.Conversations.
func (m *Memory) Messages(_ context.Context, conversation int64) ([]*status.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*status.Message
	for _, msg := range m.statuses {
		if msg.Conversation == conversation {
			out = append(out, msg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FindOrCreate implements status.TagRegistry.
func (m *Memory) FindOrCreate(_ context.Context, name string) (*status.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(name)
	if t, ok := m.tags[key]; ok {
		return t, nil
	}
	t := &status.Tag{ID: m.id(), Name: name}
	m.tags[key] = t
	return t, nil
}

// Attach implements status.TagRegistry.
func (m *Memory) Attach(_ context.Context, msg *status.Message, tag *status.Tag) error {
	for _, t := range msg.Tags {
		if t.ID == tag.ID {
			return nil
		}
	}
	msg.Tags = append(msg.Tags, tag)
	return nil
}

// RecordUse implements status.TagRegistry.
func (m *Memory) RecordUse(_ context.Context, tag *status.Tag, author *status.Account, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tagUses = append(m.tagUses, TagUse{Tag: tag.Name, Account: author.Acct(), At: at})
	return nil
}

// TagUses returns every recorded tag use in order.
func (m *Memory) TagUses() []TagUse {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]TagUse(nil), m.tagUses...)
}

// PutEmoji implements Store.
func (m *Memory) PutEmoji(_ context.Context, e status.Emoji) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.Domain = strings.ToLower(e.Domain)
	m.emojis[emojiKey(e.Shortcode, e.Domain)] = e
	return nil
}

// FindLocal implements status.EmojiRegistry.
func (m *Memory) FindLocal(_ context.Context, shortcode string) (*status.Emoji, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.emojis[emojiKey(shortcode, "")]; ok {
		return &e, nil
	}
	return nil, nil
}

// FindRemote implements status.EmojiRegistry. With an empty domain the
// alphabetically first domain carrying shortcode wins.
func (m *Memory) FindRemote(_ context.Context, shortcode, domain string) (*status.Emoji, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if domain != "" {
		if e, ok := m.emojis[emojiKey(shortcode, domain)]; ok {
			return &e, nil
		}
		return nil, nil
	}
	var found *status.Emoji
	for _, e := range m.emojis {
		if e.Shortcode != shortcode || e.Domain == "" {
			continue
		}
		if found == nil || e.Domain < found.Domain {
			found = &e
		}
	}
	return found, nil
}

// CreateLocal implements status.EmojiRegistry.
func (m *Memory) CreateLocal(ctx context.Context, shortcode, image string) error {
	return m.PutEmoji(ctx, status.Emoji{Shortcode: shortcode, Image: image})
}

// LocalEmojis returns the local emoji sorted by shortcode.
func (m *Memory) LocalEmojis() []status.Emoji {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []status.Emoji
	for _, e := range m.emojis {
		if e.Domain == "" {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Shortcode < out[j].Shortcode })
	return out
}

// Describe implements status.MediaStore.
func (m *Memory) Describe(_ context.Context, att *status.Attachment, description string) error {
	att.Description = description
	return nil
}

// Mention implements status.Mentions.
func (m *Memory) Mention(_ context.Context, msg *status.Message, acct *status.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.mentions[msg.ID] {
		if a.Acct() == acct.Acct() {
			return nil
		}
	}
	m.mentions[msg.ID] = append(m.mentions[msg.ID], acct)
	return nil
}

// MentionedAccounts implements Store.
func (m *Memory) MentionedAccounts(_ context.Context, statusID int64) ([]*status.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*status.Account(nil), m.mentions[statusID]...), nil
}

// Close implements Store.
func (m *Memory) Close() error { return nil }
