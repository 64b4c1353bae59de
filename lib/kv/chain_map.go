package kv

import (
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/kvlab/assoc/lib/infra"
)

// An open hash table with per-bucket chaining.
// Collision entries hang off their bucket as a singly linked chain;
// the 64-bit hash is cached per entry so a rehash only relinks nodes.
// Bucket count is always a power of two, the bucket index is
// hash & (buckets - 1).
//
// Position invalidation differs from the ordered tree on purpose:
// erase invalidates the erased entry's position only, while a rehash
// (load factor crossing the threshold, or Reserve) relocates every
// entry and invalidates all retained positions.

const (
	defaultBucketCount   = 16
	maxBucketCount       = 1 << 31
	defaultMaxLoadFactor = 1.0
)

// hashEntry is one chained slot. Entries of equal keys stay adjacent
// inside their chain (the colocated group of the multi variant).
type hashEntry[K comparable, V any] struct {
	next *hashEntry[K, V]
	key  K
	val  V
	hash uint64
	dead bool
}

// HashMap is an unordered associative container with average O(1)
// insert, find and erase. It is not safe for concurrent mutation;
// wrap it with NewThreadSafeMap or an external lock to share it.
type HashMap[K comparable, V any] struct {
	buckets  []*hashEntry[K, V]
	hasher   Hasher[K]
	hashFn   func(K) uint64
	equalsFn func(i, j K) bool
	logger   *zap.Logger
	count    int64
	maxLoad  float64
	capHint  uint32
	allowDup bool
}

type HashMapOpt[K comparable, V any] func(*HashMap[K, V])

// WithHashMapCapacity pre-sizes the bucket array for n entries.
func WithHashMapCapacity[K comparable, V any](n uint32) HashMapOpt[K, V] {
	return func(m *HashMap[K, V]) {
		m.capHint = n
	}
}

// WithHashMapMaxLoadFactor tunes the entries-per-bucket threshold that
// triggers a rehash. Values at or below zero fall back to the default.
func WithHashMapMaxLoadFactor[K comparable, V any](factor float64) HashMapOpt[K, V] {
	return func(m *HashMap[K, V]) {
		if factor > 0 {
			m.maxLoad = factor
		}
	}
}

// WithHashMapHasher overrides the runtime hasher. The function must be
// consistent with the equality predicate: equal keys, equal hashes.
func WithHashMapHasher[K comparable, V any](hash func(key K) uint64) HashMapOpt[K, V] {
	return func(m *HashMap[K, V]) {
		m.hashFn = hash
	}
}

// WithHashMapKeyEquals overrides the == predicate.
func WithHashMapKeyEquals[K comparable, V any](equals func(i, j K) bool) HashMapOpt[K, V] {
	return func(m *HashMap[K, V]) {
		m.equalsFn = equals
	}
}

// WithHashMapDuplicates switches the map into multi mode: equal keys
// coexist, colocated in one chain group, insertion-order stable among
// themselves.
func WithHashMapDuplicates[K comparable, V any]() HashMapOpt[K, V] {
	return func(m *HashMap[K, V]) {
		m.allowDup = true
	}
}

// WithHashMapLogger installs a structured logger for rehash events.
func WithHashMapLogger[K comparable, V any](logger *zap.Logger) HashMapOpt[K, V] {
	return func(m *HashMap[K, V]) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func newBareHashMap[K comparable, V any]() *HashMap[K, V] {
	m := &HashMap[K, V]{
		hasher:  newHasher[K](),
		logger:  zap.NewNop(),
		maxLoad: defaultMaxLoadFactor,
	}
	m.equalsFn = func(i, j K) bool { return i == j }
	return m
}

func NewHashMap[K comparable, V any](opts ...HashMapOpt[K, V]) *HashMap[K, V] {
	m := newBareHashMap[K, V]()
	for _, o := range opts {
		o(m)
	}
	m.buckets = make([]*hashEntry[K, V], m.initialBuckets())
	return m
}

// NewHashMapFromEntries bulk-loads an arbitrary entry sequence,
// reserving all buckets up front. The derived capacity hint goes
// first so a caller-supplied one still wins.
func NewHashMapFromEntries[K comparable, V any](entries []lo.Entry[K, V], opts ...HashMapOpt[K, V]) *HashMap[K, V] {
	opts = append([]HashMapOpt[K, V]{WithHashMapCapacity[K, V](uint32(len(entries)))}, opts...)
	m := NewHashMap[K, V](opts...)
	for _, e := range entries {
		m.Put(e.Key, e.Value)
	}
	return m
}

func (m *HashMap[K, V]) initialBuckets() int {
	if m.capHint == 0 {
		return defaultBucketCount
	}
	return bucketsFor(int64(m.capHint), m.maxLoad)
}

// bucketsFor is the smallest power-of-two bucket count keeping n
// entries at or under the load factor threshold.
func bucketsFor(n int64, maxLoad float64) int {
	buckets := int64(1)
	for float64(n) > maxLoad*float64(buckets) {
		buckets <<= 1
	}
	if buckets < 1 {
		buckets = 1
	}
	return int(buckets)
}

func (m *HashMap[K, V]) hashOf(key K) uint64 {
	if m.hashFn != nil {
		return m.hashFn(key)
	}
	return m.hasher.Hash(key)
}

func (m *HashMap[K, V]) bucketIndex(hash uint64) uint64 {
	return hash & uint64(len(m.buckets)-1)
}

func (m *HashMap[K, V]) Len() int64 {
	return m.count
}

func (m *HashMap[K, V]) BucketCount() int {
	return len(m.buckets)
}

func (m *HashMap[K, V]) LoadFactor() float64 {
	return float64(m.count) / float64(len(m.buckets))
}

// Put inserts a key-value entry. In unique mode an equal key makes it
// a no-op reporting the existing position and false. In multi mode the
// new entry lands at the tail of its colocated equal-key group.
func (m *HashMap[K, V]) Put(key K, val V) (HashPos[K, V], bool) {
	m.maybeGrow(m.count + 1)

	hash := m.hashOf(key)
	i := m.bucketIndex(hash)
	var group *hashEntry[K, V]
	for e := m.buckets[i]; e != nil; e = e.next {
		if e.hash == hash && m.equalsFn(e.key, key) {
			group = e
			break
		}
	}
	if group != nil && !m.allowDup {
		return HashPos[K, V]{m: m, node: group}, false
	}

	entry := &hashEntry[K, V]{
		key:  key,
		val:  val,
		hash: hash,
	}
	if group != nil {
		// Append at the tail of the equal-key group so duplicates
		// iterate in insertion order.
		last := group
		for last.next != nil && last.next.hash == hash && m.equalsFn(last.next.key, key) {
			last = last.next
		}
		entry.next = last.next
		last.next = entry
	} else {
		entry.next = m.buckets[i]
		m.buckets[i] = entry
	}
	m.count++
	return HashPos[K, V]{m: m, node: entry}, true
}

// Upsert overwrites the value of the first equal entry, inserting only
// when the key is absent. In multi mode it touches the group head and
// never grows the group.
func (m *HashMap[K, V]) Upsert(key K, val V) (HashPos[K, V], bool) {
	if pos := m.Find(key); pos.Valid() {
		pos.node.val = val
		return pos, false
	}
	return m.Put(key, val)
}

func (m *HashMap[K, V]) Get(key K) (val V, exists bool) {
	hash := m.hashOf(key)
	for e := m.buckets[m.bucketIndex(hash)]; e != nil; e = e.next {
		if e.hash == hash && m.equalsFn(e.key, key) {
			return e.val, true
		}
	}
	return val, false
}

// Find returns a position at the first equal entry, the invalid end
// marker if the key is absent.
func (m *HashMap[K, V]) Find(key K) HashPos[K, V] {
	hash := m.hashOf(key)
	for e := m.buckets[m.bucketIndex(hash)]; e != nil; e = e.next {
		if e.hash == hash && m.equalsFn(e.key, key) {
			return HashPos[K, V]{m: m, node: e}
		}
	}
	return HashPos[K, V]{m: m}
}

func (m *HashMap[K, V]) Count(key K) int64 {
	hash := m.hashOf(key)
	total := int64(0)
	for e := m.buckets[m.bucketIndex(hash)]; e != nil; e = e.next {
		if e.hash == hash && m.equalsFn(e.key, key) {
			total++
		}
	}
	return total
}

// Delete erases every entry with an equal key (at most one in unique
// mode) and reports how many were removed.
func (m *HashMap[K, V]) Delete(key K) int64 {
	hash := m.hashOf(key)
	i := m.bucketIndex(hash)
	removed := int64(0)
	for indirect := &m.buckets[i]; *indirect != nil; {
		e := *indirect
		if e.hash == hash && m.equalsFn(e.key, key) {
			*indirect = e.next
			e.next = nil
			e.dead = true
			m.count--
			removed++
			if !m.allowDup {
				return removed
			}
			continue
		}
		indirect = &e.next
	}
	return removed
}

// Reserve grows the bucket array once so that n entries stay under the
// load factor threshold, instead of rehashing incrementally on the way
// there.
func (m *HashMap[K, V]) Reserve(n int64) error {
	if n <= 0 {
		return nil
	}
	needed := bucketsFor(n, m.maxLoad)
	if needed > maxBucketCount {
		return infra.ErrCapacityOverflow
	}
	if needed > len(m.buckets) {
		m.rehash(needed)
	}
	return nil
}

func (m *HashMap[K, V]) maybeGrow(needed int64) {
	if float64(needed) <= m.maxLoad*float64(len(m.buckets)) {
		return
	}
	next := len(m.buckets)
	for float64(needed) > m.maxLoad*float64(next) && next < maxBucketCount {
		next <<= 1
	}
	if next > len(m.buckets) {
		m.rehash(next)
	}
	// Chains keep absorbing entries once the bucket array is maxed
	// out, lookups just degrade towards O(chain length).
}

// rehash is all-or-nothing: the new bucket array is the only
// allocation, existing entries are relinked after it succeeds.
// Every retained position is invalidated by relocation. Relinking
// appends at the chain tails, preserving the relative entry order of
// every split chain: doubling never merges chains, so equal-key groups
// stay colocated and keep their insertion order.
func (m *HashMap[K, V]) rehash(newBuckets int) {
	old := m.buckets
	m.buckets = make([]*hashEntry[K, V], newBuckets)
	tails := make([]*hashEntry[K, V], newBuckets)
	for _, head := range old {
		for e := head; e != nil; {
			next := e.next
			i := m.bucketIndex(e.hash)
			e.next = nil
			if tails[i] == nil {
				m.buckets[i] = e
			} else {
				tails[i].next = e
			}
			tails[i] = e
			e = next
		}
	}
	m.logger.Debug("[chain-map] rehash",
		zap.Int("oldBuckets", len(old)),
		zap.Int("newBuckets", newBuckets),
		zap.Int64("entries", m.count),
		zap.Float64("loadFactor", m.LoadFactor()),
	)
}

// Foreach walks the entries in bucket order. The order is unspecified
// and changes across rehashes. Returning false stops the walk.
func (m *HashMap[K, V]) Foreach(action func(idx int64, key K, val V) bool) {
	idx := int64(0)
	for _, head := range m.buckets {
		for e := head; e != nil; e = e.next {
			if !action(idx, e.key, e.val) {
				return
			}
			idx++
		}
	}
}

// Begin positions at the first entry in bucket order.
func (m *HashMap[K, V]) Begin() HashPos[K, V] {
	for _, head := range m.buckets {
		if head != nil {
			return HashPos[K, V]{m: m, node: head}
		}
	}
	return HashPos[K, V]{m: m}
}

// Entries exports the whole map in its natural iteration order.
func (m *HashMap[K, V]) Entries() []lo.Entry[K, V] {
	entries := make([]lo.Entry[K, V], 0, m.count)
	m.Foreach(func(_ int64, key K, val V) bool {
		entries = append(entries, lo.Entry[K, V]{Key: key, Value: val})
		return true
	})
	return entries
}

// Clear drops every entry but keeps the bucket array capacity.
func (m *HashMap[K, V]) Clear() {
	for i := range m.buckets {
		for e := m.buckets[i]; e != nil; {
			next := e.next
			e.next = nil
			e.dead = true
			e = next
		}
		m.buckets[i] = nil
	}
	m.count = 0
}

// HashPos is an opaque position handle referencing one entry. Erasing
// the entry invalidates it; any rehash invalidates every retained
// position (unlike tree positions, which survive unrelated mutations).
type HashPos[K comparable, V any] struct {
	m    *HashMap[K, V]
	node *hashEntry[K, V]
}

func (pos HashPos[K, V]) Valid() bool {
	return pos.node != nil && !pos.node.dead
}

func (pos HashPos[K, V]) Key() K {
	if !pos.Valid() {
		panic("[chain-map] access key through an invalid position")
	}
	return pos.node.key
}

func (pos HashPos[K, V]) Val() V {
	if !pos.Valid() {
		panic("[chain-map] access value through an invalid position")
	}
	return pos.node.val
}

// Next steps through the remaining entries in bucket order.
func (pos HashPos[K, V]) Next() HashPos[K, V] {
	if !pos.Valid() {
		return HashPos[K, V]{m: pos.m}
	}
	if pos.node.next != nil {
		return HashPos[K, V]{m: pos.m, node: pos.node.next}
	}
	for i := pos.m.bucketIndex(pos.node.hash) + 1; i < uint64(len(pos.m.buckets)); i++ {
		if head := pos.m.buckets[i]; head != nil {
			return HashPos[K, V]{m: pos.m, node: head}
		}
	}
	return HashPos[K, V]{m: pos.m}
}
