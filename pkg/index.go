package dupefilehash

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// DuplicateIndex classifies files into groups of identical content while
// hashing as little as possible.
//
// Files are bucketed by size. A size seen once holds its single file unhashed;
// the second file of that size hashes both, and every later file of that size
// is hashed once on arrival. A file whose size is unique in the tree is never
// read.
//
// The index is safe for concurrent Add calls. The bucket map is guarded by mu,
// and each bucket has its own lock held across the hashing of its files so
// state transitions are atomic per size.
type DuplicateIndex struct {
	hasher Hasher

	mu      sync.RWMutex
	buckets map[int64]*sizeBucket

	files        atomic.Int64
	hashOps      atomic.Int64
	bytesHashed  atomic.Int64
	hashFailures atomic.Int64
}

// sizeBucket holds every indexed file of one byte length
type sizeBucket struct {
	mu    sync.Mutex
	state bucketState
}

// bucketState is either *pendingState or *resolvedState
type bucketState interface {
	members() int
}

// pendingState is a bucket with exactly one file that has not been compared
// with anything. digest is set only if hashing it succeeded during an Add
// that failed on the other file.
type pendingState struct {
	record FileRecord
	digest *Digest
}

func (p *pendingState) members() int { return 1 }

// resolvedState is a bucket whose files have all been hashed and grouped
type resolvedState struct {
	groups map[Digest][]FileRecord
	order  []Digest
	count  int
}

func newResolvedState() *resolvedState {
	return &resolvedState{groups: make(map[Digest][]FileRecord, 2)}
}

func (r *resolvedState) members() int { return r.count }

func (r *resolvedState) add(rec FileRecord, digest Digest) {
	if _, exists := r.groups[digest]; !exists {
		r.order = append(r.order, digest)
	}
	r.groups[digest] = append(r.groups[digest], rec)
	r.count++
}

// IndexStats is a point-in-time summary of the index
type IndexStats struct {
	Files           int64 `json:"files"`
	Buckets         int   `json:"size_buckets"`
	PendingBuckets  int   `json:"pending_buckets"`
	HashGroups      int   `json:"hash_groups"`
	DuplicateGroups int   `json:"duplicate_groups"`
	HashOps         int64 `json:"hash_ops"`
	BytesHashed     int64 `json:"bytes_hashed"`
	HashFailures    int64 `json:"hash_failures"`
}

// NewDuplicateIndex creates an empty index that hashes with h
func NewDuplicateIndex(h Hasher) *DuplicateIndex {
	return &DuplicateIndex{
		hasher:  h,
		buckets: make(map[int64]*sizeBucket),
	}
}

// Add indexes rec. It hashes zero, one or two files depending on how many
// files of rec.Size are already known.
//
// If hashing fails, rec is not indexed and the bucket is left as it was.
// Note that when a deferred file of the same size cannot be hashed, Add fails
// for rec too (the error matches ErrDeferredFileFailed), and will keep failing
// for every new file of that size while the deferred file stays unreadable.
// Avoiding that would mean hashing every file eagerly.
func (idx *DuplicateIndex) Add(rec FileRecord) error {
	idx.mu.Lock()
	bucket, exists := idx.buckets[rec.Size]
	if !exists {
		idx.buckets[rec.Size] = &sizeBucket{state: &pendingState{record: rec}}
		idx.mu.Unlock()
		idx.files.Add(1)
		if IsDebugEnabled(DebugIndex) {
			VerboseLog(3, "index: %s deferred (size %d unseen)", rec.Path, rec.Size)
		}
		return nil
	}
	idx.mu.Unlock()

	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	switch state := bucket.state.(type) {
	case *pendingState:
		oldDigest, err := idx.pendingDigest(state)
		if err != nil {
			return fmt.Errorf("%w: %s (size %d) blocked by %s: %w",
				ErrDeferredFileFailed, rec.Path, rec.Size, state.record.Path, err)
		}
		newDigest, err := idx.hash(rec)
		if err != nil {
			return err
		}

		resolved := newResolvedState()
		resolved.add(state.record, oldDigest)
		resolved.add(rec, newDigest)
		bucket.state = resolved

		if IsDebugEnabled(DebugIndex) {
			VerboseLog(3, "index: size %d resolved by %s (%d groups)", rec.Size, rec.Path, len(resolved.groups))
		}

	case *resolvedState:
		digest, err := idx.hash(rec)
		if err != nil {
			return err
		}
		state.add(rec, digest)

	default:
		return fmt.Errorf("index: unknown bucket state %T for size %d", state, rec.Size)
	}

	idx.files.Add(1)
	return nil
}

// pendingDigest hashes the deferred file once, remembering the result so a
// later retry does not read it again
func (idx *DuplicateIndex) pendingDigest(state *pendingState) (Digest, error) {
	if state.digest != nil {
		return *state.digest, nil
	}
	digest, err := idx.hash(state.record)
	if err != nil {
		return Digest{}, err
	}
	state.digest = &digest
	return digest, nil
}

func (idx *DuplicateIndex) hash(rec FileRecord) (Digest, error) {
	idx.hashOps.Add(1)
	digest, err := idx.hasher.Hash(rec.Path)
	if err != nil {
		idx.hashFailures.Add(1)
		return Digest{}, err
	}
	idx.bytesHashed.Add(rec.Size)
	return digest, nil
}

// snapshotBuckets returns the current buckets without holding the map lock
// while each bucket is read
func (idx *DuplicateIndex) snapshotBuckets() []*sizeBucket {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	buckets := make([]*sizeBucket, 0, len(idx.buckets))
	for _, bucket := range idx.buckets {
		buckets = append(buckets, bucket)
	}
	return buckets
}

// forEachDuplicate calls fn for every hash group with two or more members.
// The records slice passed to fn is a copy.
func (idx *DuplicateIndex) forEachDuplicate(fn func(digest Digest, records []FileRecord)) {
	for _, bucket := range idx.snapshotBuckets() {
		bucket.mu.Lock()
		resolved, ok := bucket.state.(*resolvedState)
		if !ok {
			bucket.mu.Unlock()
			continue
		}
		type group struct {
			digest  Digest
			records []FileRecord
		}
		var dupes []group
		for _, digest := range resolved.order {
			records := resolved.groups[digest]
			if len(records) < 2 {
				continue
			}
			dupes = append(dupes, group{digest, append([]FileRecord(nil), records...)})
		}
		bucket.mu.Unlock()

		for _, g := range dupes {
			fn(g.digest, g.records)
		}
	}
}

// CollectDuplicates returns every group of two or more files sharing size and
// digest, keyed by digest. Records keep the order they were added in. The
// result is a snapshot and is not affected by later Add calls.
func (idx *DuplicateIndex) CollectDuplicates() map[Digest][]FileRecord {
	dupes := make(map[Digest][]FileRecord)
	idx.forEachDuplicate(func(digest Digest, records []FileRecord) {
		dupes[digest] = records
	})
	return dupes
}

// Stats returns counters and bucket totals
func (idx *DuplicateIndex) Stats() IndexStats {
	stats := IndexStats{
		Files:        idx.files.Load(),
		HashOps:      idx.hashOps.Load(),
		BytesHashed:  idx.bytesHashed.Load(),
		HashFailures: idx.hashFailures.Load(),
	}

	for _, bucket := range idx.snapshotBuckets() {
		stats.Buckets++
		bucket.mu.Lock()
		switch state := bucket.state.(type) {
		case *pendingState:
			stats.PendingBuckets++
		case *resolvedState:
			stats.HashGroups += len(state.groups)
			for _, records := range state.groups {
				if len(records) > 1 {
					stats.DuplicateGroups++
				}
			}
		}
		bucket.mu.Unlock()
	}

	return stats
}

// Len returns the number of indexed files
func (idx *DuplicateIndex) Len() int {
	return int(idx.files.Load())
}
