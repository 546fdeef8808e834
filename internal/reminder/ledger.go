package reminder

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/julianstephens/sleepr/internal/constants"
	"github.com/julianstephens/sleepr/internal/logger"
	"github.com/julianstephens/sleepr/internal/storage"
)

// ledgerRetentionDays bounds how many past dates the ledger keeps.
const ledgerRetentionDays = 3

// Ledger records which reminder slots have fired, keyed by kind and local date. It is shared
// by the catch-up path and the outbox dispatcher so a slot fires at most once per day.
type Ledger struct {
	mu    sync.Mutex
	store storage.Provider
	cache map[string]bool
}

func NewLedger(store storage.Provider) *Ledger {
	return &Ledger{store: store, cache: map[string]bool{}}
}

func ledgerKey(kind string, slot time.Time) string {
	return kind + "@" + slot.Format(constants.DateFormat)
}

// Claim marks the slot as delivered and reports whether it was still free.
func (l *Ledger) Claim(kind string, slot time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.load()
	key := ledgerKey(kind, slot)
	if entries[key] {
		return false
	}
	entries[key] = true
	prune(entries, slot)
	l.save(entries)
	return true
}

func (l *Ledger) Release(kind string, slot time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.load()
	delete(entries, ledgerKey(kind, slot))
	l.save(entries)
}

// Delivered reports whether the slot already fired.
func (l *Ledger) Delivered(kind string, slot time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()[ledgerKey(kind, slot)]
}

// load re-reads the store so other processes' claims are seen. On a read error the
// in-memory copy is used.
func (l *Ledger) load() map[string]bool {
	var keys []string
	if err := storage.GetJSON(l.store, constants.KeyDeliveredReminders, &keys); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return map[string]bool{}
		}
		logger.Error("Error loading reminder ledger", "error", err)
		return l.cache
	}
	entries := make(map[string]bool, len(keys))
	for _, k := range keys {
		entries[k] = true
	}
	return entries
}

func (l *Ledger) save(entries map[string]bool) {
	l.cache = entries
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if err := storage.SetJSON(l.store, constants.KeyDeliveredReminders, keys); err != nil {
		logger.Error("Error saving reminder ledger", "error", err)
	}
}

func prune(entries map[string]bool, now time.Time) {
	cutoff := now.AddDate(0, 0, -ledgerRetentionDays).Format(constants.DateFormat)
	for k := range entries {
		i := len(k) - len(constants.DateFormat)
		if i <= 0 || k[i:] < cutoff {
			delete(entries, k)
		}
	}
}
