package tree

import "github.com/kvlab/assoc/lib/infra"

// go install golang.org/x/tools/cmd/stringer@latest

//go:generate stringer -type=RBColor
type RBColor uint8

const (
	Black RBColor = iota
	Red
)

//go:generate stringer -type=RBDirection
type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

// RBNode is the read-only view of a tree node, exposed for the
// invariant validators and for tests. Parent links are non-owning
// back-references; the tree owns every node exclusively.
type RBNode[K infra.OrderedKey, V any] interface {
	Key() K
	Val() V
	HasKeyVal() bool
	Color() RBColor
	Left() RBNode[K, V]
	Right() RBNode[K, V]
	Parent() RBNode[K, V]
}

// OrderedMap is the sorted associative container contract.
// Position handles stay valid until the referenced node is removed;
// no other mutation invalidates them.
type OrderedMap[K infra.OrderedKey, V any] interface {
	Len() int64
	Insert(key K, val V) (TreePos[K, V], bool)
	Get(key K) (V, bool)
	Find(key K) TreePos[K, V]
	Remove(key K) int64
	RemoveAt(pos TreePos[K, V]) error
	RemoveMin() (K, V, error)
	LowerBound(key K) TreePos[K, V]
	UpperBound(key K) TreePos[K, V]
	Count(key K) int64
	Foreach(action func(idx int64, key K, val V) bool)
	Begin() TreePos[K, V]
	Release()
}
