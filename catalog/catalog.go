// Package catalog records how every animation was produced.
//
// The catalog is a bbolt database next to the animation folders. Bucket
// "animations" maps a name to its latest record; bucket "history" holds one
// nested bucket per name with every record ever written for it, keyed by a
// sequence number. Records are stored as YAML.
package catalog

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
	"gopkg.in/yaml.v2"

	"github.com/gogpu/animkit/frame"
)

// FileName is the default catalog file name inside a store root.
const FileName = ".animkit.db"

var (
	bucketAnimations = []byte("animations")
	bucketHistory    = []byte("history")
)

// ErrClosed is returned by operations on a closed catalog.
var ErrClosed = errors.New("catalog: closed")

// Op names the operation that produced an animation.
type Op string

// Operations.
const (
	OpCreate  Op = "create"
	OpCrop    Op = "crop"
	OpMatte   Op = "remove-background"
	OpSprites Op = "sprites"
	OpIngest  Op = "ingest"
)

// Record describes one operation on an animation.
type Record struct {
	Name        string            `yaml:"name"`
	Op          Op                `yaml:"op"`
	Source      string            `yaml:"source,omitempty"`
	Params      map[string]string `yaml:"params,omitempty"`
	FrameCount  int               `yaml:"frames"`
	SpriteCount int               `yaml:"sprites,omitempty"`
	Created     time.Time         `yaml:"created"`
}

// Option configures Open.
type Option func(*bolt.Options)

// WithTimeout bounds how long Open waits for the file lock held by another process.
func WithTimeout(d time.Duration) Option {
	return func(o *bolt.Options) {
		o.Timeout = d
	}
}

// WithReadOnly opens the catalog read-only.
func WithReadOnly() Option {
	return func(o *bolt.Options) {
		o.ReadOnly = true
	}
}

// Catalog is a provenance database. It is safe for concurrent use.
type Catalog struct {
	db *bolt.DB
}

// Open opens or creates the catalog file at path.
func Open(path string, opts ...Option) (*Catalog, error) {
	o := &bolt.Options{Timeout: time.Second}
	for _, opt := range opts {
		opt(o)
	}
	db, err := bolt.Open(path, 0o666, o)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog: open %s: %w", frame.ErrIO, path, err)
	}
	if !o.ReadOnly {
		err = db.Update(func(tx *bolt.Tx) error {
			for _, b := range [][]byte{bucketAnimations, bucketHistory} {
				if _, err := tx.CreateBucketIfNotExists(b); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: catalog: init: %w", frame.ErrIO, err)
		}
	}
	return &Catalog{db: db}, nil
}

// Path returns the database file path.
func (c *Catalog) Path() string {
	return c.db.Path()
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Put stores r as the latest record of r.Name and appends it to its history.
// A zero Created is set to the current time.
func (c *Catalog) Put(r Record) error {
	if r.Name == "" {
		return fmt.Errorf("%w: catalog: record without name", frame.ErrValidation)
	}
	if r.Created.IsZero() {
		r.Created = time.Now()
	}
	data, err := yaml.Marshal(&r)
	if err != nil {
		return fmt.Errorf("catalog: encode %q: %w", r.Name, err)
	}

	err = c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketAnimations).Put([]byte(r.Name), data); err != nil {
			return err
		}
		hist, err := tx.Bucket(bucketHistory).CreateBucketIfNotExists([]byte(r.Name))
		if err != nil {
			return err
		}
		seq, err := hist.NextSequence()
		if err != nil {
			return err
		}
		return hist.Put(seqKey(seq), data)
	})
	return c.wrap("put", r.Name, err)
}

// Get returns the latest record of name.
func (c *Catalog) Get(name string) (Record, error) {
	var r Record
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAnimations)
		if b == nil {
			return fmt.Errorf("%w: catalog record %q", frame.ErrNotFound, name)
		}
		data := b.Get([]byte(name))
		if data == nil {
			return fmt.Errorf("%w: catalog record %q", frame.ErrNotFound, name)
		}
		return yaml.Unmarshal(data, &r)
	})
	if err != nil {
		return Record{}, c.wrap("get", name, err)
	}
	return r, nil
}

// History returns every record of name, oldest first.
func (c *Catalog) History(name string) ([]Record, error) {
	var out []Record
	err := c.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket(bucketHistory)
		if root == nil {
			return nil
		}
		hist := root.Bucket([]byte(name))
		if hist == nil {
			return nil
		}
		return hist.ForEach(func(_, v []byte) error {
			var r Record
			if err := yaml.Unmarshal(v, &r); err != nil {
				return err
			}
			out = append(out, r)
			return nil
		})
	})
	if err != nil {
		return nil, c.wrap("history", name, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: catalog history %q", frame.ErrNotFound, name)
	}
	return out, nil
}

// Names returns the names with a latest record, sorted.
func (c *Catalog) Names() ([]string, error) {
	var names []string
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAnimations)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, c.wrap("names", "", err)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the record and history of name. Deleting an unknown name
// is not an error.
func (c *Catalog) Delete(name string) error {
	err := c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketAnimations).Delete([]byte(name)); err != nil {
			return err
		}
		err := tx.Bucket(bucketHistory).DeleteBucket([]byte(name))
		if errors.Is(err, bolt.ErrBucketNotFound) {
			return nil
		}
		return err
	})
	return c.wrap("delete", name, err)
}

func (c *Catalog) wrap(op, name string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, frame.ErrNotFound), errors.Is(err, frame.ErrValidation):
		return err
	case errors.Is(err, bolt.ErrDatabaseNotOpen):
		return ErrClosed
	}
	return fmt.Errorf("%w: catalog: %s %q: %w", frame.ErrIO, op, name, err)
}

func seqKey(seq uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], seq)
	return k[:]
}
