// Package mediagroup collects the photos of a Telegram album, which arrive
// as separate updates, into one group.
package mediagroup

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

const DefaultDebounce = 1200 * time.Millisecond

type Item struct {
	ChatID       int64
	UserID       int64
	Username     string
	MediaGroupID string
	MessageID    int
	Caption      string
	FileID       string
}

// Group is a flushed album. FileIDs follow message order, which is the
// order the user arranged the album in.
type Group struct {
	ChatID   int64
	UserID   int64
	Username string
	Caption  string
	FileIDs  []string
}

type Options struct {
	Debounce time.Duration
	OnFlush  func(Group)
}

type Aggregator struct {
	mu       sync.Mutex
	debounce time.Duration
	onFlush  func(Group)
	groups   map[string]*pendingGroup
	closed   bool
	wg       sync.WaitGroup
}

type pendingGroup struct {
	head  Item
	items []Item
	timer *time.Timer
}

func New(opts Options) *Aggregator {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Aggregator{
		debounce: debounce,
		onFlush:  opts.OnFlush,
		groups:   make(map[string]*pendingGroup),
	}
}

// Add queues item and restarts its album's debounce timer. Items after
// Close are dropped.
func (a *Aggregator) Add(item Item) {
	if item.MediaGroupID == "" || item.FileID == "" {
		return
	}

	key := makeKey(item.ChatID, item.MediaGroupID)

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}

	pg, ok := a.groups[key]
	if !ok {
		pg = &pendingGroup{head: item}
		a.groups[key] = pg
	}
	pg.items = append(pg.items, item)

	if pg.timer != nil && pg.timer.Stop() {
		a.wg.Done()
	}
	a.wg.Add(1)
	pg.timer = time.AfterFunc(a.debounce, func() {
		defer a.wg.Done()
		a.flush(key)
	})
}

// Pending reports how many albums are waiting for their timer.
func (a *Aggregator) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.groups)
}

// Close stops accepting items, flushes pending albums immediately and waits
// for running flushes to return.
func (a *Aggregator) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	var keys []string
	for key, pg := range a.groups {
		if pg.timer != nil && pg.timer.Stop() {
			a.wg.Done()
		}
		keys = append(keys, key)
	}
	a.mu.Unlock()

	for _, key := range keys {
		a.flush(key)
	}
	a.wg.Wait()
}

func (a *Aggregator) flush(key string) {
	a.mu.Lock()
	pg, ok := a.groups[key]
	if !ok {
		a.mu.Unlock()
		return
	}
	delete(a.groups, key)
	onFlush := a.onFlush
	a.mu.Unlock()

	if onFlush != nil {
		onFlush(pg.group())
	}
}

func (pg *pendingGroup) group() Group {
	items := append([]Item(nil), pg.items...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].MessageID < items[j].MessageID })

	g := Group{
		ChatID:   pg.head.ChatID,
		UserID:   pg.head.UserID,
		Username: pg.head.Username,
		FileIDs:  make([]string, 0, len(items)),
	}
	for _, it := range items {
		g.FileIDs = append(g.FileIDs, it.FileID)
		if g.Caption == "" && it.Caption != "" {
			g.Caption = it.Caption
		}
	}
	return g
}

func makeKey(chatID int64, mediaGroupID string) string {
	return fmt.Sprintf("%d:%s", chatID, mediaGroupID)
}
