package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"washcenter-backend/models"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/google/uuid"
)

// Key layout:
//
//	center/<id>                         -> centerDoc
//	booking/<id>                        -> models.Booking
//	event/<bookingID>/<seq:%020d>       -> models.BookingStatusEvent
//	reminder/<id>                       -> models.ReminderLog
//	meta/seq                            -> big-endian uint64
const (
	centerPrefix   = "center/"
	bookingPrefix  = "booking/"
	eventPrefix    = "event/"
	reminderPrefix = "reminder/"
	seqKey         = "meta/seq"
)

type centerDoc struct {
	Seq    uint64        `json:"seq"`
	Center models.Center `json:"center"`
}

// PebbleStore is an embedded document store. Writes are serialized by mu,
// which makes every read-modify-write atomic within the process.
type PebbleStore struct {
	db  *pebble.DB
	mu  sync.Mutex
	seq uint64
}

func OpenPebble(dir string) (*PebbleStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return newPebbleStore(db)
}

// OpenPebbleInMemory opens a store backed by an in-memory filesystem.
func OpenPebbleInMemory() (*PebbleStore, error) {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, err
	}
	return newPebbleStore(db)
}

func newPebbleStore(db *pebble.DB) (*PebbleStore, error) {
	s := &PebbleStore{db: db}
	val, closer, err := db.Get([]byte(seqKey))
	switch {
	case errors.Is(err, pebble.ErrNotFound):
	case err != nil:
		_ = db.Close()
		return nil, err
	default:
		if len(val) == 8 {
			s.seq = binary.BigEndian.Uint64(val)
		}
		_ = closer.Close()
	}
	return s, nil
}

func (s *PebbleStore) Close() error {
	return s.db.Close()
}

func centerKey(id uuid.UUID) []byte   { return []byte(centerPrefix + id.String()) }
func bookingKey(id uuid.UUID) []byte  { return []byte(bookingPrefix + id.String()) }
func reminderKey(id uuid.UUID) []byte { return []byte(reminderPrefix + id.String()) }

func eventKey(bookingID uuid.UUID, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%s/%020d", eventPrefix, bookingID, seq))
}

func eventsPrefix(bookingID uuid.UUID) string {
	return eventPrefix + bookingID.String() + "/"
}

// upperBound returns the smallest key greater than every key with prefix p.
func upperBound(p string) []byte {
	b := []byte(p)
	b[len(b)-1]++
	return b
}

func (s *PebbleStore) nextSeq() ([]byte, uint64) {
	s.seq++
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, s.seq)
	return buf, s.seq
}

func (s *PebbleStore) get(key []byte, v any) error {
	val, closer, err := s.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	defer closer.Close()
	return json.Unmarshal(val, v)
}

func (s *PebbleStore) scan(prefix string, fn func(val []byte) error) error {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(prefix),
		UpperBound: upperBound(prefix),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if err := fn(iter.Value()); err != nil {
			return err
		}
	}
	return iter.Error()
}

func (s *PebbleStore) CreateCenter(ctx context.Context, c *models.Center) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seqVal, seq := s.nextSeq()
	doc, err := json.Marshal(centerDoc{Seq: seq, Center: *c})
	if err != nil {
		return err
	}
	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(centerKey(c.ID), doc, nil); err != nil {
		return err
	}
	if err := batch.Set([]byte(seqKey), seqVal, nil); err != nil {
		return err
	}
	return batch.Commit(pebble.Sync)
}

func (s *PebbleStore) GetCenter(ctx context.Context, id uuid.UUID) (*models.Center, error) {
	var doc centerDoc
	if err := s.get(centerKey(id), &doc); err != nil {
		return nil, err
	}
	return &doc.Center, nil
}

func (s *PebbleStore) ListCenters(ctx context.Context) ([]models.Center, error) {
	var docs []centerDoc
	err := s.scan(centerPrefix, func(val []byte) error {
		var doc centerDoc
		if err := json.Unmarshal(val, &doc); err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Seq < docs[j].Seq })

	out := make([]models.Center, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Center)
	}
	return out, nil
}

func (s *PebbleStore) UpdateCenter(ctx context.Context, id uuid.UUID, apply CenterUpdate) (*models.Center, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc centerDoc
	if err := s.get(centerKey(id), &doc); err != nil {
		return nil, err
	}
	if err := apply(&doc.Center); err != nil {
		return nil, err
	}
	doc.Center.ID = id
	val, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	if err := s.db.Set(centerKey(id), val, pebble.Sync); err != nil {
		return nil, err
	}
	return &doc.Center, nil
}

func (s *PebbleStore) DeleteCenter(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc centerDoc
	if err := s.get(centerKey(id), &doc); err != nil {
		return err
	}
	return s.db.Delete(centerKey(id), pebble.Sync)
}

func (s *PebbleStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	val, err := json.Marshal(b)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Set(bookingKey(b.ID), val, pebble.Sync)
}

func (s *PebbleStore) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	if err := s.get(bookingKey(id), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *PebbleStore) ListBookings(ctx context.Context, f BookingFilter) ([]models.Booking, error) {
	var out []models.Booking
	err := s.scan(bookingPrefix, func(val []byte) error {
		var b models.Booking
		if err := json.Unmarshal(val, &b); err != nil {
			return err
		}
		if f.matches(&b) {
			out = append(out, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortBookings(out)
	return out, nil
}

func (s *PebbleStore) UpdateBooking(ctx context.Context, id uuid.UUID, apply BookingUpdate) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b models.Booking
	if err := s.get(bookingKey(id), &b); err != nil {
		return nil, err
	}
	event, err := apply(&b)
	if err != nil {
		return nil, err
	}
	b.ID = id
	val, err := json.Marshal(&b)
	if err != nil {
		return nil, err
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(bookingKey(id), val, nil); err != nil {
		return nil, err
	}
	if event != nil {
		seqVal, seq := s.nextSeq()
		ev, err := json.Marshal(event)
		if err != nil {
			return nil, err
		}
		if err := batch.Set(eventKey(id, seq), ev, nil); err != nil {
			return nil, err
		}
		if err := batch.Set([]byte(seqKey), seqVal, nil); err != nil {
			return nil, err
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *PebbleStore) ListStatusEvents(ctx context.Context, bookingID uuid.UUID) ([]models.BookingStatusEvent, error) {
	var out []models.BookingStatusEvent
	err := s.scan(eventsPrefix(bookingID), func(val []byte) error {
		var ev models.BookingStatusEvent
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		out = append(out, ev)
		return nil
	})
	return out, err
}

func (s *PebbleStore) CreateReminderLog(ctx context.Context, r *models.ReminderLog) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	val, err := json.Marshal(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Set(reminderKey(r.ID), val, pebble.Sync)
}

func (s *PebbleStore) ListReminderLogs(ctx context.Context) ([]models.ReminderLog, error) {
	var out []models.ReminderLog
	err := s.scan(reminderPrefix, func(val []byte) error {
		var r models.ReminderLog
		if err := json.Unmarshal(val, &r); err != nil {
			return err
		}
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SentAt.Equal(out[j].SentAt) {
			return out[i].SentAt.After(out[j].SentAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}
