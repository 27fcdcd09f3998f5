// Copyright 2025 ScyllaDB
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package benchmarks

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
	"go.uber.org/multierr"
)

// Store keeps benchmark runs in the order they were appended.
type Store interface {
	Append(run Run) error
	Load() ([]Run, error)
	Close() error
}

// Open picks the backend from the file extension: ".db" is a bbolt
// database, ".zst" is zstd compressed JSON, anything else plain JSON.
func Open(path string) (Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db":
		return openBolt(path)
	case ".zst", ".zstd":
		return &fileStore{path: path, compressed: true}, nil
	default:
		return &fileStore{path: path}, nil
	}
}

type history struct {
	Runs []Run `json:"runs"`
}

type fileStore struct {
	path       string
	compressed bool
}

func (s *fileStore) Load() ([]Run, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Run{}, nil
		}
		return nil, errors.Wrap(err, "failed to open history file")
	}
	defer f.Close()

	var r io.Reader = f
	if s.compressed {
		decoder, err := zstd.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create zstd reader")
		}
		defer decoder.Close()
		r = decoder
	}

	var h history
	if err = json.NewDecoder(r).Decode(&h); err != nil {
		if errors.Is(err, io.EOF) {
			return []Run{}, nil
		}
		return nil, errors.Wrapf(err, "failed to parse history %s", s.path)
	}

	if h.Runs == nil {
		h.Runs = []Run{}
	}
	return h.Runs, nil
}

// Append rewrites the whole file through a temporary file in the same
// directory, so a crash never leaves a truncated history behind.
func (s *fileStore) Append(run Run) (err error) {
	runs, err := s.Load()
	if err != nil {
		return err
	}
	runs = append(runs, run)

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary history file")
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	var w io.WriteCloser = tmp
	if s.compressed {
		encoder, encErr := zstd.NewWriter(
			tmp,
			zstd.WithEncoderLevel(zstd.SpeedBestCompression),
			zstd.WithEncoderCRC(true),
		)
		if encErr != nil {
			_ = tmp.Close()
			return errors.Wrap(encErr, "failed to create zstd writer")
		}
		w = encoder
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	err = encoder.Encode(history{Runs: runs})

	if s.compressed {
		err = multierr.Append(err, w.Close())
	}
	err = multierr.Append(err, tmp.Close())
	if err != nil {
		return errors.Wrap(err, "failed to write history")
	}

	return errors.Wrap(os.Rename(tmp.Name(), s.path), "failed to replace history file")
}

func (s *fileStore) Close() error {
	return nil
}

var runsBucket = []byte("runs")

type boltStore struct {
	db *bbolt.DB
}

func openBolt(path string) (*boltStore, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bbolt database %s", path)
	}

	if err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(runsBucket)
		return err
	}); err != nil {
		return nil, multierr.Append(errors.Wrap(err, "failed to create runs bucket"), db.Close())
	}

	return &boltStore{db: db}, nil
}

// Append stores the run under the bucket's next sequence number, big endian,
// so cursor order is append order.
func (s *boltStore) Append(run Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return errors.Wrap(err, "failed to marshal run")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(runsBucket)
		seq, err := bkt.NextSequence()
		if err != nil {
			return err
		}

		var key [8]byte
		binary.BigEndian.PutUint64(key[:], seq)
		return bkt.Put(key[:], data)
	})
}

func (s *boltStore) Load() ([]Run, error) {
	runs := []Run{}

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(runsBucket).ForEach(func(k, v []byte) error {
			var run Run
			if err := json.Unmarshal(v, &run); err != nil {
				return errors.Wrapf(err, "corrupted run at key %x", k)
			}
			runs = append(runs, run)
			return nil
		})
	})

	return runs, err
}

func (s *boltStore) Close() error {
	return s.db.Close()
}
