package store

import (
	"encoding/json"
	"io"
	"os"
	"sort"

	badger "github.com/dgraph-io/badger/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/boxker/boxk"
)

// ErrRunNotFound when no run is stored under the id
var ErrRunNotFound = errors.New("run not found")

// HistoryStore of test runs, keyed by run:<id>
type HistoryStore struct {
	Store    *badger.DB
	filepath string
}

// NewHistoryStore creates a new history store at filepath
func NewHistoryStore(filepath string) *HistoryStore {
	return &HistoryStore{filepath: filepath}
}

// Init the history store
func (s *HistoryStore) Init() error {
	var err error

	if err = os.MkdirAll(s.filepath, 0755); err != nil {
		return err
	}

	opts := badger.DefaultOptions(s.filepath).WithLogger(NewBadgerLogger())
	s.Store, err = badger.Open(opts)
	return err
}

// AddRun to the store, replacing any run with the same id
func (s *HistoryStore) AddRun(run *boxk.Run) error {
	if run.ID == "" {
		return errors.New("run has no id")
	}
	bytez, err := EncodeRun(run)
	if err != nil {
		return errors.Wrap(err, "failed to encode run")
	}
	return s.Store.Update(func(txn *badger.Txn) error {
		// key = run:<id>, value = msgpack'd run
		return txn.Set(MakeKey([]byte(run.ID), runPredicate), bytez)
	})
}

// GetRun by the provided id value
func (s *HistoryStore) GetRun(id string) (*boxk.Run, error) {
	var run *boxk.Run
	err := s.Store.View(func(txn *badger.Txn) error {
		item, err := txn.Get(MakeKey([]byte(id), runPredicate))
		if err == badger.ErrKeyNotFound {
			return errors.Wrapf(ErrRunNotFound, "%s", id)
		} else if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			run, err = DecodeRun(val)
			return err
		})
	})
	return run, err
}

// Runs returns up to limit runs, newest first. limit <= 0 returns all of them.
func (s *HistoryStore) Runs(limit int) ([]*boxk.Run, error) {
	runs := make([]*boxk.Run, 0)
	prefix := MakeKey(nil, runPredicate)

	err := s.Store.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				run, err := DecodeRun(val)
				if err != nil {
					return errors.Wrapf(err, "failed to decode %s", GetID(item.Key()))
				}
				runs = append(runs, run)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Started.After(runs[j].Started)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// ExportJSON writes every run as a json array, newest first
func (s *HistoryStore) ExportJSON(w io.Writer) error {
	runs, err := s.Runs(0)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(runs)
}

// Close the history store
func (s *HistoryStore) Close() error {
	log.Info().Msg("closing history store")
	if s.Store == nil {
		return nil
	}
	return s.Store.Close()
}
