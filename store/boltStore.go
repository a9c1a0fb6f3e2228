package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

const (
	Results = "results" // finished matches keyed by match id
	Wins    = "wins"    // win counter per username
	Losses  = "losses"  // loss counter per username
)

type boltResultStore struct {
	db *bolt.DB
}

// Open - opens (or creates) the bolt backed result ledger at path
func Open(path string) (DB, error) {
	if len(path) == 0 {
		path = "./prsi.db"
	}
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	// Create buckets if not exist
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{Results, Wins, Losses} {
			if _, e := tx.CreateBucketIfNotExists([]byte(name)); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &boltResultStore{db: db}, nil
}

func (s *boltResultStore) SaveResult(r Result) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(Results)).Put([]byte(r.MatchID), data); err != nil {
			return err
		}
		if err := increment(tx.Bucket([]byte(Wins)), r.Winner); err != nil {
			return err
		}
		return increment(tx.Bucket([]byte(Losses)), r.Loser)
	})
}

func (s *boltResultStore) Record(username string) (wins, losses uint64, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		wins = counter(tx.Bucket([]byte(Wins)), username)
		losses = counter(tx.Bucket([]byte(Losses)), username)
		return nil
	})
	return
}

func (s *boltResultStore) ForEachResult(callBack func(r Result) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(Results)).ForEach(func(key, value []byte) error {
			var r Result
			if err := json.Unmarshal(value, &r); err != nil {
				return fmt.Errorf("corrupt result %s: %w", key, err)
			}
			return callBack(r)
		})
	})
}

func (s *boltResultStore) Close() error {
	return s.db.Close()
}

func increment(b *bolt.Bucket, username string) error {
	if len(username) == 0 {
		return nil
	}
	return b.Put([]byte(username), uint64ToBytes(counter(b, username)+1))
}

func counter(b *bolt.Bucket, username string) uint64 {
	if v := b.Get([]byte(username)); v != nil {
		return bytesToUint64(v)
	}
	return 0
}

func uint64ToBytes(v uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return buf
}

func bytesToUint64(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}
