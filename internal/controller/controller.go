// Package controller is the UI-facing state machine over the messaging core:
// no conversation selected, one selected for viewing, or a send in flight.
package controller

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/directory"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/dispatch"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/domain"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/feed"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/repository"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/session"
)

type State int

const (
	StateIdle State = iota
	StateViewing
	StateSending
)

func (s State) String() string {
	switch s {
	case StateViewing:
		return "viewing"
	case StateSending:
		return "sending"
	default:
		return "idle"
	}
}

var (
	ErrUnknownConversation = errors.New("unknown conversation")
	ErrNotMember           = errors.New("not a member of community")
	ErrNoSelection         = errors.New("no conversation selected")
)

// Exporter publishes committed messages to downstream consumers. Failures are
// logged, never surfaced: export must not fail a send.
type Exporter interface {
	MessageCreated(ctx context.Context, m *domain.Message) error
}

type Controller struct {
	sess   *session.Session
	store  repository.MessageStore
	dir    directory.Resolver
	disp   *dispatch.Dispatcher
	pub    feed.Publisher
	export Exporter
	log    *zap.SugaredLogger

	mu    sync.Mutex
	state State
}

func New(sess *session.Session, store repository.MessageStore, dir directory.Resolver, disp *dispatch.Dispatcher, pub feed.Publisher, export Exporter, log *zap.SugaredLogger) *Controller {
	return &Controller{
		sess:   sess,
		store:  store,
		dir:    dir,
		disp:   disp,
		pub:    pub,
		export: export,
		log:    log,
		state:  StateIdle,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ListConversations returns the dispatcher's current snapshot.
func (c *Controller) ListConversations() []domain.Conversation {
	return c.disp.Conversations()
}

// Messages returns the message list of a conversation, read fresh from the
// store. For the selected conversation the dispatcher's thread snapshot is
// updated as well.
func (c *Controller) Messages(ctx context.Context, key string) ([]domain.Message, error) {
	conv, ok := c.disp.Conversation(key)
	if !ok {
		return nil, ErrUnknownConversation
	}
	if sel := c.sess.Selected(); sel != nil && sel.ConversationKey == key {
		if err := c.disp.RefreshThread(ctx); err != nil {
			return nil, err
		}
		return c.disp.Thread(), nil
	}
	return c.store.FetchThread(ctx, conv.CommunityID, conv.SelfID, conv.Counterparty.ID)
}

// Select opens a conversation: all unread messages addressed to self in it
// are marked read in one bulk update, then the aggregate is refreshed so the
// badge drops immediately instead of waiting for the next event.
func (c *Controller) Select(ctx context.Context, key string) (domain.Conversation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conv, ok := c.disp.Conversation(key)
	if !ok {
		return domain.Conversation{}, ErrUnknownConversation
	}

	if err := c.store.MarkRead(ctx, conv.CommunityID, conv.Counterparty.ID, conv.SelfID); err != nil {
		return domain.Conversation{}, err
	}

	c.sess.Select(domain.Selection{ConversationKey: key, CommunityID: conv.CommunityID})
	c.state = StateViewing

	if err := c.disp.Refresh(ctx); err != nil {
		c.log.Warnw("refresh after select failed", "conversation", key, "err", err)
	}
	if err := c.disp.RefreshThread(ctx); err != nil {
		c.log.Warnw("thread fetch after select failed", "conversation", key, "err", err)
	}

	if cur, ok := c.disp.Conversation(key); ok {
		return cur, nil
	}
	return conv, nil
}

// Deselect returns the controller to idle and drops the open thread.
func (c *Controller) Deselect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess.Deselect()
	c.disp.ClearThread()
	c.state = StateIdle
}

// StartNew opens a conversation with a counterparty. If one already exists in
// the aggregate it is selected as-is; the dedup invariant means no duplicate
// is ever created. Otherwise a zero-message draft is synthesized and viewed;
// nothing is persisted until the first send.
func (c *Controller) StartNew(ctx context.Context, counterpartyID, communityID string) (domain.Conversation, error) {
	var communityName string
	found := false
	for _, mb := range c.sess.Memberships() {
		if mb.CommunityID == communityID {
			communityName = mb.CommunityName
			found = true
			break
		}
	}
	if !found {
		return domain.Conversation{}, ErrNotMember
	}

	key := domain.ConversationKey(communityID, c.sess.UserID(), counterpartyID)
	if _, ok := c.disp.Conversation(key); ok {
		return c.Select(ctx, key)
	}

	p, err := c.dir.Resolve(ctx, communityID, counterpartyID)
	if err != nil {
		return domain.Conversation{}, err
	}

	draft := domain.Conversation{
		Key:           key,
		CommunityID:   communityID,
		CommunityName: communityName,
		SelfID:        c.sess.UserID(),
		Counterparty:  *p,
		LastMessage:   nil,
		UnreadCount:   0,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess.AddDraft(draft)
	if err := c.disp.Refresh(ctx); err != nil {
		c.log.Warnw("refresh after start failed", "conversation", key, "err", err)
	}
	c.sess.Select(domain.Selection{ConversationKey: key, CommunityID: communityID})
	c.disp.ClearThread()
	c.state = StateViewing
	return draft, nil
}

// Send appends a message to the selected conversation. Content that trims to
// empty is a no-op. A store failure leaves the controller in Viewing with
// nothing sent; the caller may retry, no retry happens here.
func (c *Controller) Send(ctx context.Context, key, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	sel := c.sess.Selected()
	if c.state != StateViewing || sel == nil || sel.ConversationKey != key {
		return nil, ErrNoSelection
	}
	conv, ok := c.disp.Conversation(key)
	if !ok {
		return nil, ErrUnknownConversation
	}

	c.state = StateSending
	m, err := c.store.InsertMessage(ctx, conv.CommunityID, conv.SelfID, conv.Counterparty.ID, content)
	c.state = StateViewing
	if err != nil {
		return nil, err
	}

	if err := c.pub.MessageCreated(ctx, m); err != nil {
		c.log.Warnw("feed publish failed", "message", m.ID, "err", err)
	}
	if c.export != nil {
		if err := c.export.MessageCreated(ctx, m); err != nil {
			c.log.Warnw("event export failed", "message", m.ID, "err", err)
		}
	}

	if err := c.disp.Refresh(ctx); err != nil {
		c.log.Warnw("refresh after send failed", "conversation", key, "err", err)
	}
	if err := c.disp.RefreshThread(ctx); err != nil {
		c.log.Warnw("thread refresh after send failed", "conversation", key, "err", err)
	}
	return m, nil
}

// Teardown releases everything owned by this controller's session: feed
// subscriptions, selection, drafts.
func (c *Controller) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disp.Close()
	c.sess.Reset()
	c.state = StateIdle
}
