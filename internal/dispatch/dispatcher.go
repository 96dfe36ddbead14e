// Package dispatch keeps the conversation list and the open thread consistent
// with the append-only log without the caller polling. Every event triggers a
// full refetch and re-derivation; correctness over incrementalism, message
// volumes are low.
package dispatch

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/aggregate"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/domain"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/feed"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/repository"
	"github.com/DevSyedMujtaba/Community-Simple-ai-sub001/internal/session"
)

// Dispatcher owns one feed subscription per community in the session's
// membership set. A failed refresh drops the event and keeps the last good
// snapshot; the next event or manual refresh self-corrects.
type Dispatcher struct {
	sess  *session.Session
	store repository.MessageStore
	dir   aggregate.Directory
	feed  feed.Feed
	log   *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	subs      map[string]feed.Subscription
	snapshot  []domain.Conversation
	thread    []domain.Message
	onRefresh func()
	closed    bool
}

func New(sess *session.Session, store repository.MessageStore, dir aggregate.Directory, f feed.Feed, log *zap.SugaredLogger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		sess:   sess,
		store:  store,
		dir:    dir,
		feed:   f,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
		subs:   map[string]feed.Subscription{},
	}
}

// OnRefresh registers a listener called after every successful refresh.
// Must be set before Start.
func (d *Dispatcher) OnRefresh(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onRefresh = fn
}

// Start subscribes to every community in the membership set and computes the
// initial snapshot. Subscriptions acquired before a setup failure are
// released again.
func (d *Dispatcher) Start(ctx context.Context) error {
	for _, mb := range d.sess.Memberships() {
		if err := d.subscribe(mb.CommunityID); err != nil {
			d.Close()
			return err
		}
	}
	if err := d.Refresh(ctx); err != nil {
		d.Close()
		return err
	}
	return nil
}

func (d *Dispatcher) subscribe(communityID string) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	if _, ok := d.subs[communityID]; ok {
		d.mu.Unlock()
		return nil
	}
	d.mu.Unlock()

	sub, err := d.feed.Subscribe(communityID, func(m domain.Message) {
		d.handleEvent(m)
	})
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		_ = sub.Cancel()
		return nil
	}
	d.subs[communityID] = sub
	return nil
}

// SetMemberships replaces the membership set: subscriptions for departed
// communities are torn down, new ones are added, and the snapshot is
// recomputed against the new universe.
func (d *Dispatcher) SetMemberships(ctx context.Context, ms []domain.Membership) error {
	d.sess.SetMemberships(ms)

	keep := map[string]bool{}
	for _, mb := range ms {
		keep[mb.CommunityID] = true
	}

	d.mu.Lock()
	for id, sub := range d.subs {
		if !keep[id] {
			if err := sub.Cancel(); err != nil {
				d.log.Warnw("cancel subscription", "community", id, "err", err)
			}
			delete(d.subs, id)
		}
	}
	d.mu.Unlock()

	for _, mb := range ms {
		if err := d.subscribe(mb.CommunityID); err != nil {
			return err
		}
	}
	return d.Refresh(ctx)
}

func (d *Dispatcher) handleEvent(m domain.Message) {
	if err := d.Refresh(d.ctx); err != nil {
		d.log.Warnw("refresh after event failed, event dropped", "community", m.CommunityID, "err", err)
		return
	}
	// Only the already-selected conversation may be refreshed; an event never
	// steals focus, and never touches a thread open in another community.
	if sel := d.sess.Selected(); sel != nil && sel.CommunityID == m.CommunityID {
		if err := d.RefreshThread(d.ctx); err != nil {
			d.log.Warnw("thread refresh after event failed", "community", m.CommunityID, "err", err)
		}
	}
	d.notify()
}

// Refresh refetches every community's history and swaps in a newly derived
// snapshot. On any failure the previous snapshot is retained unchanged.
func (d *Dispatcher) Refresh(ctx context.Context) error {
	selfID := d.sess.UserID()
	memberships := d.sess.Memberships()

	byCommunity := map[string][]domain.Message{}
	for _, mb := range memberships {
		msgs, err := d.store.FetchMessages(ctx, mb.CommunityID, selfID)
		if err != nil {
			return err
		}
		byCommunity[mb.CommunityID] = msgs
	}

	convs, err := aggregate.Aggregate(ctx, selfID, memberships, byCommunity, d.dir, d.sess.Drafts())
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.snapshot = convs
	d.mu.Unlock()
	return nil
}

// RefreshThread refetches the message list of the selected conversation.
// No-op when nothing is selected.
func (d *Dispatcher) RefreshThread(ctx context.Context) error {
	sel := d.sess.Selected()
	if sel == nil {
		return nil
	}
	conv, ok := d.Conversation(sel.ConversationKey)
	if !ok {
		return nil
	}
	msgs, err := d.store.FetchThread(ctx, conv.CommunityID, conv.SelfID, conv.Counterparty.ID)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.thread = msgs
	d.mu.Unlock()
	return nil
}

// Conversations returns the last successfully derived snapshot.
func (d *Dispatcher) Conversations() []domain.Conversation {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.Conversation(nil), d.snapshot...)
}

// Conversation looks a single conversation up in the snapshot by key.
func (d *Dispatcher) Conversation(key string) (domain.Conversation, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range d.snapshot {
		if c.Key == key {
			return c, true
		}
	}
	return domain.Conversation{}, false
}

// Thread returns the open conversation's message list.
func (d *Dispatcher) Thread() []domain.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.Message(nil), d.thread...)
}

// ClearThread drops the open-thread snapshot on deselect.
func (d *Dispatcher) ClearThread() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.thread = nil
}

func (d *Dispatcher) notify() {
	d.mu.Lock()
	fn := d.onRefresh
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Close tears down every subscription. Safe to call more than once; the
// dispatcher never leaks a subscription past its owner's lifetime.
func (d *Dispatcher) Close() {
	d.cancel()
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	for id, sub := range d.subs {
		if err := sub.Cancel(); err != nil {
			d.log.Warnw("cancel subscription", "community", id, "err", err)
		}
		delete(d.subs, id)
	}
}
