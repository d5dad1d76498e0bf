package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const (
	debounceDelay   = 50 * time.Millisecond
	eventBufferSize = 100
)

// LogWatcher watches a NotifyLog directory and reports the users whose file
// changed, so other processes' writes can be picked up.
type LogWatcher struct {
	dir     string
	watcher *fsnotify.Watcher
	log     zerolog.Logger

	mu          sync.Mutex
	subscribers map[string][]chan string // user id or "*" -> channels
	debounce    map[string]*time.Timer   // user id -> debounce timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewLogWatcher creates a watcher for dir. The directory is created if it
// doesn't exist.
func NewLogWatcher(dir string, log zerolog.Logger) (*LogWatcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	lw := &LogWatcher{
		dir:         dir,
		watcher:     watcher,
		log:         log,
		subscribers: make(map[string][]chan string),
		debounce:    make(map[string]*time.Timer),
		ctx:         ctx,
		cancel:      cancel,
	}

	lw.wg.Add(1)
	go lw.run()

	return lw, nil
}

// Watch returns a channel receiving the user id each time that user's file
// changes. userID "*" matches every user. The channel is closed when ctx is
// done or the watcher is closed.
func (lw *LogWatcher) Watch(ctx context.Context, userID string) <-chan string {
	ch := make(chan string, eventBufferSize)

	lw.mu.Lock()
	lw.subscribers[userID] = append(lw.subscribers[userID], ch)
	lw.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			lw.unsubscribe(userID, ch)
		case <-lw.ctx.Done():
		}
	}()

	return ch
}

// Close stops watching and closes all subscriber channels.
func (lw *LogWatcher) Close() error {
	lw.cancel()

	lw.mu.Lock()
	for _, timer := range lw.debounce {
		timer.Stop()
	}
	for _, subs := range lw.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}
	lw.subscribers = make(map[string][]chan string)
	lw.mu.Unlock()

	err := lw.watcher.Close()
	lw.wg.Wait()
	return err
}

func (lw *LogWatcher) unsubscribe(userID string, ch chan string) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	subs := lw.subscribers[userID]
	for i, sub := range subs {
		if sub == ch {
			lw.subscribers[userID] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}
	if len(lw.subscribers[userID]) == 0 {
		delete(lw.subscribers, userID)
	}
}

func (lw *LogWatcher) run() {
	defer lw.wg.Done()

	for {
		select {
		case <-lw.ctx.Done():
			return
		case event, ok := <-lw.watcher.Events:
			if !ok {
				return
			}
			lw.handleEvent(event)
		case err, ok := <-lw.watcher.Errors:
			if !ok {
				return
			}
			lw.log.Warn().Err(err).Str("dir", lw.dir).Msg("notification log watcher error")
		}
	}
}

func (lw *LogWatcher) handleEvent(event fsnotify.Event) {
	// Atomic saves show up as a create or rename of the final file.
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	name := filepath.Base(event.Name)
	if strings.HasSuffix(name, ".tmp") {
		return
	}
	userID, ok := userFromFile(name)
	if !ok {
		return
	}

	lw.mu.Lock()
	defer lw.mu.Unlock()

	if lw.ctx.Err() != nil {
		return
	}
	if timer, exists := lw.debounce[userID]; exists {
		timer.Stop()
	}
	lw.debounce[userID] = time.AfterFunc(debounceDelay, func() {
		lw.notify(userID)
	})
}

func (lw *LogWatcher) notify(userID string) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	delete(lw.debounce, userID)

	for _, key := range []string{userID, "*"} {
		for _, ch := range lw.subscribers[key] {
			select {
			case ch <- userID:
			default:
				lw.log.Debug().Str("user_id", userID).Msg("watcher channel full, dropping change")
			}
		}
	}
}
