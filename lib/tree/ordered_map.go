package tree

import (
	"github.com/samber/lo"

	"github.com/kvlab/assoc/lib/infra"
)

// TreePos is an opaque position handle referencing one tree node.
// It stays valid until that exact node is removed; removing or
// inserting other keys never moves entries between nodes.
type TreePos[K infra.OrderedKey, V any] struct {
	tree *rbTree[K, V]
	node *rbNode[K, V]
}

func (pos TreePos[K, V]) Valid() bool {
	return pos.node != nil && pos.node.hasKV
}

func (pos TreePos[K, V]) Key() K {
	if !pos.Valid() {
		panic("[rbtree] access key through an invalid position")
	}
	return pos.node.key
}

func (pos TreePos[K, V]) Val() V {
	if !pos.Valid() {
		panic("[rbtree] access value through an invalid position")
	}
	return pos.node.val
}

// Next steps to the in-order successor. Stepping past the maximum key
// yields an invalid position (the end marker).
func (pos TreePos[K, V]) Next() TreePos[K, V] {
	if !pos.Valid() {
		return TreePos[K, V]{}
	}
	return TreePos[K, V]{tree: pos.tree, node: pos.node.succ()}
}

// Prev steps to the in-order predecessor.
func (pos TreePos[K, V]) Prev() TreePos[K, V] {
	if !pos.Valid() {
		return TreePos[K, V]{}
	}
	return TreePos[K, V]{tree: pos.tree, node: pos.node.pred()}
}

var _ OrderedMap[uint64, uint64] = (*TreeMap[uint64, uint64])(nil)

// TreeMap is a sorted associative container backed by a red-black tree.
// Insert, find and erase run in O(log n). It is not safe for concurrent
// mutation; callers share it across goroutines under their own lock.
type TreeMap[K infra.OrderedKey, V any] struct {
	tree *rbTree[K, V]
}

type TreeMapOpt[K infra.OrderedKey, V any] func(*rbTree[K, V])

// WithTreeMapComparator replaces the natural key order. The comparator
// must define a strict total order over K.
func WithTreeMapComparator[K infra.OrderedKey, V any](cmp infra.OrderedKeyComparator[K]) TreeMapOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.cmp = cmp
	}
}

func WithTreeMapDesc[K infra.OrderedKey, V any]() TreeMapOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.isDesc = true
	}
}

// WithTreeMapDuplicates switches the map into multi mode: equal keys
// coexist, adjacent in sorted order, insertion-order stable among
// themselves.
func WithTreeMapDuplicates[K infra.OrderedKey, V any]() TreeMapOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.allowDup = true
	}
}

// WithTreeMapRemoveBorrowSucc borrows the successor instead of the
// predecessor when a two-child node is removed.
func WithTreeMapRemoveBorrowSucc[K infra.OrderedKey, V any]() TreeMapOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.isRmBorrowSucc = true
	}
}

func NewTreeMap[K infra.OrderedKey, V any](opts ...TreeMapOpt[K, V]) *TreeMap[K, V] {
	tree := &rbTree[K, V]{
		cmp: infra.OrderedKeyCompare[K],
	}
	for _, o := range opts {
		o(tree)
	}
	return &TreeMap[K, V]{tree: tree}
}

// NewTreeMapFromEntries bulk-loads an arbitrary entry sequence.
func NewTreeMapFromEntries[K infra.OrderedKey, V any](entries []lo.Entry[K, V], opts ...TreeMapOpt[K, V]) *TreeMap[K, V] {
	m := NewTreeMap[K, V](opts...)
	for _, e := range entries {
		m.Insert(e.Key, e.Value)
	}
	return m
}

func (m *TreeMap[K, V]) Len() int64 {
	return m.tree.len()
}

// Insert adds a key-value node in sorted position. In unique mode an
// equal key makes it a no-op reporting the existing position and false.
func (m *TreeMap[K, V]) Insert(key K, val V) (TreePos[K, V], bool) {
	node, inserted := m.tree.insert(key, val)
	return TreePos[K, V]{tree: m.tree, node: node}, inserted
}

func (m *TreeMap[K, V]) Get(key K) (val V, exists bool) {
	node := m.tree.search(key)
	if node == nil {
		return val, false
	}
	return node.val, true
}

// Find returns a position at the first node of the equal-key run, the
// invalid end marker if the key is absent.
func (m *TreeMap[K, V]) Find(key K) TreePos[K, V] {
	return TreePos[K, V]{tree: m.tree, node: m.tree.search(key)}
}

// Remove erases every node with an equal key (at most one in unique
// mode) and reports how many were removed. Only positions referencing
// the removed nodes are invalidated.
func (m *TreeMap[K, V]) Remove(key K) int64 {
	return m.tree.removeAll(key)
}

// RemoveAt erases the single node the position references.
func (m *TreeMap[K, V]) RemoveAt(pos TreePos[K, V]) error {
	if pos.tree != m.tree || !pos.Valid() {
		return infra.ErrKeyNotFound
	}
	m.tree.removeNode(pos.node)
	return nil
}

// RemoveMin pops the smallest key in comparator order.
func (m *TreeMap[K, V]) RemoveMin() (key K, val V, err error) {
	if m.tree.len() <= 0 {
		return key, val, infra.ErrEmptyContainer
	}
	_min := m.tree.root.minimum()
	key, val = _min.key, _min.val
	m.tree.removeNode(_min)
	return key, val, nil
}

// LowerBound positions at the first node whose key is not less than
// the given key.
func (m *TreeMap[K, V]) LowerBound(key K) TreePos[K, V] {
	return TreePos[K, V]{tree: m.tree, node: m.tree.lowerBound(key)}
}

// UpperBound positions at the first node whose key is strictly greater
// than the given key. Together with LowerBound it iterates [a, b).
func (m *TreeMap[K, V]) UpperBound(key K) TreePos[K, V] {
	return TreePos[K, V]{tree: m.tree, node: m.tree.upperBound(key)}
}

func (m *TreeMap[K, V]) Count(key K) int64 {
	return m.tree.countKey(key)
}

// Foreach walks the map in ascending comparator order. Returning false
// from the action stops the walk.
func (m *TreeMap[K, V]) Foreach(action func(idx int64, key K, val V) bool) {
	m.tree.foreach(action)
}

// Begin positions at the minimum key, the restart point of in-order
// iteration.
func (m *TreeMap[K, V]) Begin() TreePos[K, V] {
	if m.tree.root == nil {
		return TreePos[K, V]{tree: m.tree}
	}
	return TreePos[K, V]{tree: m.tree, node: m.tree.root.minimum()}
}

// Entries exports the whole map in its natural iteration order.
func (m *TreeMap[K, V]) Entries() []lo.Entry[K, V] {
	entries := make([]lo.Entry[K, V], 0, m.Len())
	m.Foreach(func(_ int64, key K, val V) bool {
		entries = append(entries, lo.Entry[K, V]{Key: key, Value: val})
		return true
	})
	return entries
}

// Keys exports the keys in iteration order.
func (m *TreeMap[K, V]) Keys() []K {
	return lo.Map(m.Entries(), func(e lo.Entry[K, V], _ int) K {
		return e.Key
	})
}

// Root exposes the root node for the invariant validators.
func (m *TreeMap[K, V]) Root() RBNode[K, V] {
	if m.tree.root == nil {
		return nil
	}
	return m.tree.root
}

// Release drops every node. Retained positions all become invalid.
func (m *TreeMap[K, V]) Release() {
	m.tree.release()
}
