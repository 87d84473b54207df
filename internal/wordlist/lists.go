package wordlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"ingredient-scanner/internal/domain"

	"github.com/rs/zerolog"
)

// ChangeListener is notified after a list changes in memory.
type ChangeListener func(c Category, phrases []string)

// Lists holds the in-memory suspicious and prohibited lists and writes
// every mutation through to a Store.
type Lists struct {
	mu        sync.RWMutex
	store     Store
	logger    zerolog.Logger
	items     map[Category][]string
	listeners []listenerEntry
	nextID    int
}

type listenerEntry struct {
	id int
	fn ChangeListener
}

// NewLists creates lists backed by store, initially holding the defaults.
// Call Load to read persisted values.
func NewLists(store Store, logger zerolog.Logger) *Lists {
	l := &Lists{
		store:  store,
		logger: logger.With().Str("component", "wordlist").Logger(),
		items:  make(map[Category][]string, 2),
	}
	for _, c := range Categories() {
		l.items[c] = Defaults(c)
	}
	return l
}

// OnChange registers a listener and returns a func that unregisters it.
// Calling the returned func more than once is a no-op.
func (l *Lists) OnChange(fn ChangeListener) (unsubscribe func()) {
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.listeners = append(l.listeners, listenerEntry{id: id, fn: fn})
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			for i, e := range l.listeners {
				if e.id == id {
					l.listeners = append(l.listeners[:i:i], l.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// ListenerCount returns the number of registered change listeners.
func (l *Lists) ListenerCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.listeners)
}

// Load reads both lists from the store. A list that was never saved is
// seeded with the defaults and saved. A list that cannot be read is
// replaced by the defaults for this session and left untouched in storage.
// Seeding failures are logged and returned after both lists are in place.
func (l *Lists) Load(ctx context.Context) error {
	var errs []error
	for _, c := range Categories() {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := c.StorageKey()
		phrases, ok, err := l.store.Load(ctx, key)
		switch {
		case err != nil:
			l.logger.Warn().Err(err).Str("key", key).Msg("failed to load word list, using defaults")
			phrases = Defaults(c)
		case !ok:
			phrases = Defaults(c)
			if err := l.store.Save(ctx, key, phrases); err != nil {
				l.logger.Warn().Err(err).Str("key", key).Msg("failed to seed default word list")
				errs = append(errs, err)
			}
		}
		l.set(c, phrases)
	}
	return errors.Join(errs...)
}

// Get returns a copy of the list for c.
func (l *Lists) Get(c Category) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return clonePhrases(l.items[c])
}

// Snapshot returns copies of both lists.
func (l *Lists) Snapshot() (suspicious, prohibited []string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return clonePhrases(l.items[Suspicious]), clonePhrases(l.items[Prohibited])
}

// NormalizePhrase trims and lower-cases user input the way Add stores it.
func NormalizePhrase(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Add appends phrase to the list after trimming and lower-casing it. It
// reports false without saving when the phrase is empty or already present.
// A save failure keeps the in-memory change and returns a storage error.
func (l *Lists) Add(ctx context.Context, c Category, phrase string) (bool, error) {
	phrase = NormalizePhrase(phrase)
	if phrase == "" {
		return false, nil
	}

	l.mu.Lock()
	for _, p := range l.items[c] {
		if p == phrase {
			l.mu.Unlock()
			return false, nil
		}
	}
	l.items[c] = append(l.items[c], phrase)
	updated := clonePhrases(l.items[c])
	l.mu.Unlock()

	l.notify(c, updated)
	return true, l.persist(ctx, c, updated)
}

// RemoveAt deletes the phrase at index and returns it.
func (l *Lists) RemoveAt(ctx context.Context, c Category, index int) (string, error) {
	removed, ok := l.removeWhere(c, func(i int, _ string) bool { return i == index })
	if !ok {
		return "", domain.InvalidInput(fmt.Sprintf("%s list has no entry %d", c, index), nil)
	}
	return removed, l.persist(ctx, c, l.Get(c))
}

// Remove deletes phrase (compared after normalization) from the list. It
// reports false when the phrase was not present.
func (l *Lists) Remove(ctx context.Context, c Category, phrase string) (bool, error) {
	phrase = NormalizePhrase(phrase)
	if _, ok := l.removeWhere(c, func(_ int, p string) bool { return p == phrase }); !ok {
		return false, nil
	}
	return true, l.persist(ctx, c, l.Get(c))
}

func (l *Lists) removeWhere(c Category, match func(int, string) bool) (string, bool) {
	l.mu.Lock()
	items := l.items[c]
	index := -1
	for i, p := range items {
		if match(i, p) {
			index = i
			break
		}
	}
	if index < 0 {
		l.mu.Unlock()
		return "", false
	}
	removed := items[index]
	l.items[c] = append(items[:index:index], items[index+1:]...)
	updated := clonePhrases(l.items[c])
	l.mu.Unlock()

	l.notify(c, updated)
	return removed, true
}

// ResetDefaults clears both persisted lists and restores the built-in
// defaults in memory. Nothing is re-saved; the next Load seeds storage
// again.
func (l *Lists) ResetDefaults(ctx context.Context) error {
	var errs []error
	for _, c := range Categories() {
		if err := l.store.Clear(ctx, c.StorageKey()); err != nil {
			l.logger.Warn().Err(err).Str("key", c.StorageKey()).Msg("failed to clear word list")
			errs = append(errs, err)
		}
		l.set(c, Defaults(c))
	}
	return errors.Join(errs...)
}

// Reload re-reads both lists without seeding. Lists missing from storage
// keep their in-memory values.
func (l *Lists) Reload(ctx context.Context) error {
	for _, c := range Categories() {
		phrases, ok, err := l.store.Load(ctx, c.StorageKey())
		if err != nil {
			return err
		}
		if ok {
			l.set(c, phrases)
		}
	}
	return nil
}

func (l *Lists) set(c Category, phrases []string) {
	l.mu.Lock()
	l.items[c] = clonePhrases(phrases)
	l.mu.Unlock()
	l.notify(c, clonePhrases(phrases))
}

func (l *Lists) persist(ctx context.Context, c Category, phrases []string) error {
	if err := l.store.Save(ctx, c.StorageKey(), phrases); err != nil {
		l.logger.Warn().Err(err).Str("key", c.StorageKey()).Msg("failed to save word list")
		if !errors.Is(err, domain.ErrStorageFailure) {
			err = domain.StorageFailure("save "+c.StorageKey(), err)
		}
		return err
	}
	return nil
}

func (l *Lists) notify(c Category, phrases []string) {
	l.mu.RLock()
	listeners := make([]listenerEntry, len(l.listeners))
	copy(listeners, l.listeners)
	l.mu.RUnlock()
	for _, e := range listeners {
		e.fn(c, phrases)
	}
}

func clonePhrases(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
