package snapshot

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-celldict/bloom"
	"github.com/forestrie/go-celldict/cell"
	"github.com/forestrie/go-celldict/hashmap"
	"github.com/google/uuid"
)

const snapshotExt = ".snap"

type DirLister interface {
	// ListFiles returns list of absolute paths
	// to files (not subdirectories) in a directory
	ListFiles(string) ([]string, error)
}

type Opener interface {
	Open(string) (io.ReadCloser, error)
}

// FileWriter creates and removes snapshot files. WriteFile must not expose a
// partially written file under name. Remove must return an error matching
// fs.ErrNotExist for a missing file.
type FileWriter interface {
	WriteFile(name string, data []byte) error
	Remove(name string) error
}

// Header describes a stored snapshot.
type Header struct {
	ID       []byte `cbor:"1,keyasint"`
	KeyBits  int    `cbor:"2,keyasint"`
	RootHash []byte `cbor:"3,keyasint,omitempty"`
	// Created is the unix time in milliseconds at which the snapshot was taken.
	Created int64 `cbor:"4,keyasint"`
}

type record struct {
	Header Header `cbor:"1,keyasint"`
	Bag    Bag    `cbor:"2,keyasint"`
	// Keys is a bloom.V1 region over the dictionary keys.
	Keys []byte `cbor:"3,keyasint,omitempty"`
}

// Writer is satisfied by hashmap.Dict and hashmap.AugDict.
type Writer interface {
	KeyBitLen() int
	RootHash() [cell.HashBytes]byte
	WriteTo(b *cell.Builder) error
	Keys() ([]cell.Bitstring, error)
}

type StoreOptions struct {
	codec  *Codec
	opener Opener
	lister DirLister
	writer FileWriter

	noKeyFilter bool
	bitsPerKey  uint64
	k           uint8
}

type StoreOption func(*StoreOptions)

func WithCodec(codec Codec) StoreOption {
	return func(o *StoreOptions) {
		o.codec = &codec
	}
}

func WithOpener(opener Opener) StoreOption {
	return func(o *StoreOptions) {
		o.opener = opener
	}
}

func WithDirLister(lister DirLister) StoreOption {
	return func(o *StoreOptions) {
		o.lister = lister
	}
}

// WithFileWriter replaces the local filesystem for writes. The directory is
// then not created by NewDirStore.
func WithFileWriter(writer FileWriter) StoreOption {
	return func(o *StoreOptions) {
		o.writer = writer
	}
}

// WithKeyFilter sets the sizing of the key filter written with each snapshot.
func WithKeyFilter(bitsPerKey uint64, k uint8) StoreOption {
	return func(o *StoreOptions) {
		o.bitsPerKey = bitsPerKey
		o.k = k
	}
}

// WithoutKeyFilter stops new snapshots carrying a key filter.
func WithoutKeyFilter() StoreOption {
	return func(o *StoreOptions) {
		o.noKeyFilter = true
	}
}

type osOpener struct{}

func (osOpener) Open(name string) (io.ReadCloser, error) { return os.Open(name) }

// osFileWriter writes to a temp file in the same directory and renames it
// into place, so readers never see a partial snapshot.
type osFileWriter struct{}

func (osFileWriter) WriteFile(name string, data []byte) error {
	dir, base := filepath.Split(name)
	tmp, err := os.CreateTemp(dir, "."+base+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), name)
}

func (osFileWriter) Remove(name string) error { return os.Remove(name) }

type osDirLister struct{}

func (osDirLister) ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// DirStore keeps one file per snapshot in a single directory. Snapshot files
// are immutable once written; a snapshot is replaced by writing a new one.
// Reads go through the Opener and DirLister, writes and deletes through the
// FileWriter; each defaults to the local filesystem.
type DirStore struct {
	log  logger.Logger
	dir  string
	opts StoreOptions
}

func NewDirStore(log logger.Logger, dir string, opts ...StoreOption) (*DirStore, error) {
	if dir == "" {
		return nil, ErrDirNotProvided
	}
	s := &DirStore{
		log: log,
		dir: dir,
		opts: StoreOptions{
			opener:     osOpener{},
			lister:     osDirLister{},
			bitsPerKey: bloom.DefaultBitsPerKey,
			k:          bloom.DefaultK,
		},
	}
	for _, o := range opts {
		o(&s.opts)
	}
	if s.opts.codec == nil {
		codec, err := NewCodec()
		if err != nil {
			return nil, err
		}
		s.opts.codec = &codec
	}
	if s.opts.writer == nil {
		s.opts.writer = osFileWriter{}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *DirStore) path(id uuid.UUID) string {
	return filepath.Join(s.dir, id.String()+snapshotExt)
}

func (s *DirStore) debugf(format string, args ...any) {
	if s.log != nil {
		s.log.Debugf(format, args...)
	}
}

// Encode serializes d with a new snapshot header.
func (s *DirStore) Encode(id uuid.UUID, d Writer) ([]byte, error) {
	b := cell.NewBuilder()
	if err := d.WriteTo(b); err != nil {
		return nil, err
	}
	top, err := b.Finalize()
	if err != nil {
		return nil, err
	}
	bag, err := NewBag(top)
	if err != nil {
		return nil, err
	}
	keys, err := s.keyFilter(d)
	if err != nil {
		return nil, err
	}
	h := d.RootHash()
	rec := record{
		Keys: keys,
		Header: Header{
			ID:       id[:],
			KeyBits:  d.KeyBitLen(),
			RootHash: h[:],
			Created:  time.Now().UnixMilli(),
		},
		Bag: bag,
	}
	return s.opts.codec.Marshal(rec)
}

func (s *DirStore) keyFilter(d Writer) ([]byte, error) {
	if s.opts.noKeyFilter {
		return nil, nil
	}
	keys, err := d.Keys()
	if err != nil {
		return nil, err
	}
	region, err := bloom.NewV1(uint64(len(keys)), s.opts.bitsPerKey, s.opts.k)
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		if err := bloom.InsertV1(region, k); err != nil {
			return nil, err
		}
	}
	return region, nil
}

// Put stores a snapshot of d and returns its identifier.
func (s *DirStore) Put(d Writer) (uuid.UUID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.UUID{}, err
	}
	data, err := s.Encode(id, d)
	if err != nil {
		return uuid.UUID{}, err
	}

	if err := s.opts.writer.WriteFile(s.path(id), data); err != nil {
		return uuid.UUID{}, err
	}
	s.debugf("snapshot put: id=%s keyBits=%d bytes=%d", id, d.KeyBitLen(), len(data))
	return id, nil
}

// Read returns the header and the top cell of a snapshot. The top cell holds
// the dictionary in HashmapE (or HashmapAugE) form.
func (s *DirStore) Read(id uuid.UUID) (Header, *cell.Cell, error) {
	data, err := s.readFile(id)
	if err != nil {
		return Header{}, nil, err
	}
	return s.Decode(data)
}

func (s *DirStore) readFile(id uuid.UUID) ([]byte, error) {
	f, err := s.opts.opener.Open(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
		}
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *DirStore) decodeRecord(data []byte) (record, error) {
	var rec record
	if err := s.opts.codec.Unmarshal(data, &rec); err != nil {
		return record{}, fmt.Errorf("%w: %w", ErrBadBag, err)
	}
	return rec, nil
}

// MayContain consults the key filter of snapshot id without rebuilding its
// cells. A false result means key is definitely absent. Snapshots written
// without a filter always report true.
func (s *DirStore) MayContain(id uuid.UUID, key cell.Bitstring) (bool, error) {
	data, err := s.readFile(id)
	if err != nil {
		return false, err
	}
	rec, err := s.decodeRecord(data)
	if err != nil {
		return false, err
	}
	if key.Len() != rec.Header.KeyBits {
		return false, fmt.Errorf("%w: key has %d bits, snapshot %d", ErrKeyBitsMismatch, key.Len(), rec.Header.KeyBits)
	}
	if len(rec.Keys) == 0 {
		return true, nil
	}
	return bloom.MaybeContainsV1(rec.Keys, key)
}

// Decode is the inverse of Encode.
func (s *DirStore) Decode(data []byte) (Header, *cell.Cell, error) {
	rec, err := s.decodeRecord(data)
	if err != nil {
		return Header{}, nil, err
	}
	roots, err := rec.Bag.RootCells()
	if err != nil {
		return Header{}, nil, err
	}
	if len(roots) != 1 {
		return Header{}, nil, fmt.Errorf("%w: %d roots", ErrBadBag, len(roots))
	}
	s.debugf("snapshot read: id=%x keyBits=%d cells=%d", rec.Header.ID, rec.Header.KeyBits, len(rec.Bag.Cells))
	return rec.Header, roots[0], nil
}

func checkHeader(h Header, got [cell.HashBytes]byte, keyBits int) error {
	if h.KeyBits != keyBits {
		return fmt.Errorf("%w: stored %d, want %d", ErrKeyBitsMismatch, h.KeyBits, keyBits)
	}
	if string(h.RootHash) != string(got[:]) {
		return fmt.Errorf("%w: root %x", ErrHashMismatch, got)
	}
	return nil
}

// LoadDict reads the snapshot id as a plain dictionary.
func (s *DirStore) LoadDict(id uuid.UUID, opts ...hashmap.Option) (hashmap.Dict, error) {
	h, top, err := s.Read(id)
	if err != nil {
		return hashmap.Dict{}, err
	}
	sl := cell.NewSlice(top)
	d, err := hashmap.ReadDict(&sl, h.KeyBits, opts...)
	if err != nil {
		return hashmap.Dict{}, err
	}
	if err := checkHeader(h, d.RootHash(), d.KeyBitLen()); err != nil {
		return hashmap.Dict{}, err
	}
	return d, nil
}

// LoadAugDict reads the snapshot id as an augmented dictionary.
func LoadAugDict[Y any](s *DirStore, id uuid.UUID, aug hashmap.Augmenter[Y], opts ...hashmap.Option) (hashmap.AugDict[Y], error) {
	h, top, err := s.Read(id)
	if err != nil {
		return hashmap.AugDict[Y]{}, err
	}
	sl := cell.NewSlice(top)
	a, err := hashmap.ReadAugDict(&sl, h.KeyBits, aug, opts...)
	if err != nil {
		return hashmap.AugDict[Y]{}, err
	}
	if err := checkHeader(h, a.RootHash(), a.KeyBitLen()); err != nil {
		return hashmap.AugDict[Y]{}, err
	}
	return a, nil
}

// List returns the identifiers of every stored snapshot, sorted.
func (s *DirStore) List() ([]uuid.UUID, error) {
	files, err := s.opts.lister.ListFiles(s.dir)
	if err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	for _, f := range files {
		name := filepath.Base(f)
		if !strings.HasSuffix(name, snapshotExt) {
			continue
		}
		id, err := uuid.Parse(strings.TrimSuffix(name, snapshotExt))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

// Delete removes a snapshot.
func (s *DirStore) Delete(id uuid.UUID) error {
	err := s.opts.writer.Remove(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	return err
}
