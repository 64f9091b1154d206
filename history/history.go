/*******************************************************************************
 * Copyright (c) 2026 Genome Research Ltd.
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

// package history keeps a local record of the deposits made to Digital
// Commons Data, so users can find the drafts they made earlier.

package history

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/dgryski/go-farm"
	"github.com/ugorji/go/codec"
	bolt "go.etcd.io/bbolt"
)

const (
	depositsBucket = "deposits"
	byLocalBucket  = "byLocal"
	separator      = ":!:"
	dbOpenMode     = 0600
	dbOpenTimeout  = 5 * time.Second

	ErrInvalidRecord = "record lacks Local path"
	ErrNotFound      = "record not found"
)

type Error struct {
	msg string
	id  string
}

func (e Error) Error() string {
	if e.id != "" {
		return fmt.Sprintf("%s [%s]", e.msg, e.id)
	}

	return e.msg
}

// Record describes one attempt to deposit a local file.
type Record struct {
	Local     string
	ServerURL string
	DatasetID string
	URL       string
	Title     string
	Size      uint64
	Deposited time.Time
	Succeeded bool
	Message   string
}

// ID returns an ID for this record, generated deterministically from its
// ServerURL and DatasetID, or from Local and Deposited if the deposit failed
// before a dataset was made.
func (r *Record) ID() string {
	concat := r.ServerURL + separator + r.DatasetID

	if r.DatasetID == "" {
		concat = r.Local + separator + strconv.FormatInt(r.Deposited.UnixNano(), 10)
	}

	l, h := farm.Hash128([]byte(concat))

	return fmt.Sprintf("%016x%016x", l, h)
}

// DB is used to store and query deposit Records.
type DB struct {
	db *bolt.DB
	ch codec.Handle
}

// New returns a *DB backed by a database file at the given path, creating it
// if necessary. Close() it when done.
func New(path string) (*DB, error) {
	db, err := bolt.Open(path, dbOpenMode, &bolt.Options{Timeout: dbOpenTimeout})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, errc := tx.CreateBucketIfNotExists([]byte(depositsBucket)); errc != nil {
			return errc
		}

		_, errc := tx.CreateBucketIfNotExists([]byte(byLocalBucket))

		return errc
	})
	if err != nil {
		db.Close()

		return nil, err
	}

	return &DB{db: db, ch: new(codec.BincHandle)}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Add stores the given Record, replacing any existing one with the same ID().
// Records without a Local path are rejected. A zero Deposited time is set to
// now.
func (d *DB) Add(r *Record) error {
	if r.Local == "" {
		return Error{ErrInvalidRecord, r.DatasetID}
	}

	if r.Deposited.IsZero() {
		r.Deposited = time.Now()
	}

	id := r.ID()

	return d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(depositsBucket))

		if err := b.Put([]byte(id), d.encodeToBytes(r)); err != nil {
			return err
		}

		b = tx.Bucket([]byte(byLocalBucket))

		return b.Put([]byte(r.Local+separator+id), []byte(id))
	})
}

// encodeToBytes encodes the given thing as a byte slice, suitable for storing
// in a database.
func (d *DB) encodeToBytes(thing interface{}) []byte {
	var encoded []byte
	enc := codec.NewEncoderBytes(&encoded, d.ch)
	enc.MustEncode(thing)

	return encoded
}

func (d *DB) decodeRecord(v []byte) (*Record, error) {
	dec := codec.NewDecoderBytes(v, d.ch)

	r := &Record{}

	err := dec.Decode(r)

	return r, err
}

// Get returns the Record with the given ID().
func (d *DB) Get(id string) (*Record, error) {
	var r *Record

	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(depositsBucket)).Get([]byte(id))
		if v == nil {
			return Error{ErrNotFound, id}
		}

		var errd error
		r, errd = d.decodeRecord(v)

		return errd
	})

	return r, err
}

// All returns every Record, most recently deposited first.
func (d *DB) All() ([]*Record, error) {
	var records []*Record

	err := d.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(depositsBucket)).ForEach(func(_, v []byte) error {
			r, err := d.decodeRecord(v)
			if err != nil {
				return err
			}

			records = append(records, r)

			return nil
		})
	})

	sortNewestFirst(records)

	return records, err
}

// ForLocal returns the Records for the given local path, most recently
// deposited first.
func (d *DB) ForLocal(local string) ([]*Record, error) {
	var records []*Record

	prefix := []byte(local + separator)

	err := d.db.View(func(tx *bolt.Tx) error {
		deposits := tx.Bucket([]byte(depositsBucket))
		c := tx.Bucket([]byte(byLocalBucket)).Cursor()

		for k, id := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, id = c.Next() {
			v := deposits.Get(id)
			if v == nil {
				continue
			}

			r, err := d.decodeRecord(v)
			if err != nil {
				return err
			}

			records = append(records, r)
		}

		return nil
	})

	sortNewestFirst(records)

	return records, err
}

// LastSuccess returns the most recent successful Record for the given local
// path, or nil if there isn't one.
func (d *DB) LastSuccess(local string) (*Record, error) {
	records, err := d.ForLocal(local)
	if err != nil {
		return nil, err
	}

	for _, r := range records {
		if r.Succeeded {
			return r, nil
		}
	}

	return nil, nil //nolint:nilnil
}

func sortNewestFirst(records []*Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Deposited.After(records[j].Deposited)
	})
}
