// Package history хранит последние расшифровки и общую статистику в badger.
package history

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"verba/internal/events"
)

// MaxEntries сколько последних записей хранится.
const MaxEntries = 500

var (
	entryPrefix = []byte("entry/")
	statsKey    = []byte("meta/stats")
)

// Entry одна расшифровка.
type Entry struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	Words  int       `json:"words"`
	Source string    `json:"source,omitempty"`
	At     time.Time `json:"at"`
}

// Stats статистика за всё время, не зависит от обрезки истории.
type Stats struct {
	Dictations int       `json:"dictations"`
	Words      int       `json:"words"`
	LastAt     time.Time `json:"last_at"`
}

// Store хранилище истории.
type Store struct {
	db  *badger.DB
	max int
	mu  sync.Mutex
}

// Open открывает хранилище в каталоге dir. Пустой dir - хранилище в памяти.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{zap.S().Named("history")})
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("открытие истории: %w", err)
	}
	return &Store{db: db, max: MaxEntries}, nil
}

// Close закрывает хранилище.
func (s *Store) Close() error {
	return s.db.Close()
}

// WordCount число слов в тексте.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

func entryKey(at time.Time, id string) []byte {
	key := make([]byte, 0, len(entryPrefix)+8+len(id))
	key = append(key, entryPrefix...)
	key = binary.BigEndian.AppendUint64(key, uint64(at.UnixNano()))
	return append(key, id...)
}

// Record сохраняет расшифровку и обновляет статистику. Пустой текст не сохраняется.
func (s *Store) Record(e Entry) (Entry, error) {
	if strings.TrimSpace(e.Text) == "" {
		return e, nil
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	if e.Words == 0 {
		e.Words = WordCount(e.Text)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		raw, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if err := txn.Set(entryKey(e.At, e.ID), raw); err != nil {
			return err
		}

		st, err := readStats(txn)
		if err != nil {
			return err
		}
		st.Dictations++
		st.Words += e.Words
		if e.At.After(st.LastAt) {
			st.LastAt = e.At
		}
		rawStats, err := json.Marshal(st)
		if err != nil {
			return err
		}
		return txn.Set(statsKey, rawStats)
	})
	if err != nil {
		return e, fmt.Errorf("запись истории: %w", err)
	}
	return e, s.prune()
}

// prune удаляет самые старые записи сверх лимита.
func (s *Store) prune() error {
	return s.deleteOldest(s.max)
}

// deleteOldest оставляет не больше keep новейших записей.
func (s *Store) deleteOldest(keep int) error {
	return s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = entryPrefix
		it := txn.NewIterator(opts)

		var keys [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for len(keys) > keep {
			if err := txn.Delete(keys[0]); err != nil {
				return err
			}
			keys = keys[1:]
		}
		return nil
	})
}

// Recent возвращает до n последних записей, новые первыми.
func (s *Store) Recent(n int) ([]Entry, error) {
	var out []Entry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = entryPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// При обратном обходе поиск начинается с ключа больше любого записанного
		seek := append(append([]byte{}, entryPrefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(entryPrefix) && len(out) < n; it.Next() {
			var e Entry
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &e)
			}); err != nil {
				return err
			}
			out = append(out, e)
		}
		return nil
	})
	return out, err
}

// Stats возвращает статистику за всё время.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		st, err = readStats(txn)
		return err
	})
	return st, err
}

func readStats(txn *badger.Txn) (Stats, error) {
	var st Stats
	item, err := txn.Get(statsKey)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return st, nil
	}
	if err != nil {
		return st, err
	}
	err = item.Value(func(v []byte) error {
		return json.Unmarshal(v, &st)
	})
	return st, err
}

// Clear удаляет историю, статистика сохраняется.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteOldest(0)
}

// Attach записывает в историю каждое событие transcript.
func (s *Store) Attach(ctx context.Context, bus *events.Bus) error {
	return bus.Subscribe(ctx, events.Transcript, func(e events.Event) {
		if _, err := s.Record(Entry{
			ID:     e.Session,
			Text:   e.Text,
			Words:  e.Words,
			Source: e.Source,
			At:     e.At,
		}); err != nil {
			zap.S().Errorw("Не удалось сохранить расшифровку", "error", err)
		}
	})
}

// badgerLogger направляет журнал badger в zap.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(f string, v ...any)   { l.s.Errorf(f, v...) }
func (l badgerLogger) Warningf(f string, v ...any) { l.s.Warnf(f, v...) }
func (l badgerLogger) Infof(f string, v ...any)    { l.s.Debugf(f, v...) }
func (l badgerLogger) Debugf(f string, v ...any)   { l.s.Debugf(f, v...) }
