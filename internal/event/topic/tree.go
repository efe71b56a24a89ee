package topic

import (
	"maps"
	"slices"
)

// Tree is a namespace tree keyed by topic segments. Every node holds an
// ordered list of values attached directly at that node plus its child
// namespaces.
//
// Nodes are created on demand by Insert. RemoveSubtree and RemoveValues prune
// nodes left with no values and no children back toward the root, so an
// empty node is never reachable after them. RemoveFunc only filters values;
// call Prune to drop a node it emptied.
//
// The zero value is ready to use. Tree is not safe for concurrent use.
type Tree[V any] struct {
	root *treeNode[V]
}

// treeNode represents a node in the namespace tree.
type treeNode[V any] struct {
	children map[string]*treeNode[V]
	values   []V // values attached directly at this node
}

func newTreeNode[V any]() *treeNode[V] {
	return &treeNode[V]{
		children: make(map[string]*treeNode[V]),
	}
}

// isEmpty returns true if the node has no children and no values.
func (n *treeNode[V]) isEmpty() bool {
	return len(n.children) == 0 && len(n.values) == 0
}

// NewTree creates an empty namespace tree.
func NewTree[V any]() *Tree[V] {
	return &Tree[V]{
		root: newTreeNode[V](),
	}
}

// Insert appends v to the values at path, creating missing nodes.
// Returns false if path is empty.
func (t *Tree[V]) Insert(path Topic, v V) bool {
	if path == "" {
		return false
	}

	if t.root == nil {
		t.root = newTreeNode[V]()
	}

	node := t.root
	for _, seg := range path.Segments() {
		child := node.children[seg]
		if child == nil {
			child = newTreeNode[V]()
			node.children[seg] = child
		}
		node = child
	}

	node.values = append(node.values, v)
	return true
}

// pathEntry tracks a node and the key used to reach it during traversal.
type pathEntry[V any] struct {
	node *treeNode[V]
	key  string // the segment key used to reach this node from parent
}

// trace returns the chain of nodes from the root to path, root first.
// Returns nil if any segment along the way does not exist.
func (t *Tree[V]) trace(path Topic) []pathEntry[V] {
	if path == "" || t.root == nil {
		return nil
	}

	segments := path.Segments()
	entries := make([]pathEntry[V], 0, len(segments)+1)
	entries = append(entries, pathEntry[V]{node: t.root})

	node := t.root
	for _, seg := range segments {
		child := node.children[seg]
		if child == nil {
			return nil
		}
		entries = append(entries, pathEntry[V]{node: child, key: seg})
		node = child
	}
	return entries
}

// lookup returns the node at the exact path, or nil.
func (t *Tree[V]) lookup(path Topic) *treeNode[V] {
	entries := t.trace(path)
	if entries == nil {
		return nil
	}
	return entries[len(entries)-1].node
}

// pruneUp removes empty nodes from the end of entries back toward the root.
// The root itself is never removed.
func pruneUp[V any](entries []pathEntry[V]) {
	for i := len(entries) - 1; i > 0; i-- {
		if !entries[i].node.isEmpty() {
			break
		}
		delete(entries[i-1].node.children, entries[i].key)
	}
}

// Contains returns true if a node exists at the exact path.
func (t *Tree[V]) Contains(path Topic) bool {
	return t.lookup(path) != nil
}

// Values returns a copy of the values attached directly at path.
func (t *Tree[V]) Values(path Topic) []V {
	node := t.lookup(path)
	if node == nil || len(node.values) == 0 {
		return nil
	}
	return slices.Clone(node.values)
}

// Walk calls fn for every value at path and in all of its descendants.
// The node's own values are visited first in insertion order, then each child
// subtree in lexical segment order. fn receives the topic of the node the
// value is attached to. fn must not modify the tree.
//
// Returns false without calling fn if no node exists at path.
func (t *Tree[V]) Walk(path Topic, fn func(at Topic, v V)) bool {
	node := t.lookup(path)
	if node == nil {
		return false
	}
	walkNode(node, path, fn)
	return true
}

func walkNode[V any](node *treeNode[V], at Topic, fn func(Topic, V)) {
	for _, v := range node.values {
		fn(at, v)
	}
	for _, key := range slices.Sorted(maps.Keys(node.children)) {
		walkNode(node.children[key], at.Child(key), fn)
	}
}

// Count returns the number of values at path and in all of its descendants.
// Returns 0 if no node exists at path.
func (t *Tree[V]) Count(path Topic) int {
	node := t.lookup(path)
	if node == nil {
		return 0
	}
	count := 0
	countValues(node, &count)
	return count
}

// countValues recursively counts values in a subtree.
func countValues[V any](node *treeNode[V], count *int) {
	*count += len(node.values)
	for _, child := range node.children {
		countValues(child, count)
	}
}

// RemoveSubtree deletes the node at path together with all of its values and
// descendants, then prunes ancestors left empty.
// Returns false if no node exists at path.
func (t *Tree[V]) RemoveSubtree(path Topic) bool {
	entries := t.trace(path)
	if entries == nil {
		return false
	}

	last := len(entries) - 1
	delete(entries[last-1].node.children, entries[last].key)
	pruneUp(entries[:last])
	return true
}

// RemoveValues deletes the values attached directly at path, leaving child
// namespaces intact. If the node ends up with no children it is removed, along
// with any ancestors left empty.
// Returns the number of values removed.
func (t *Tree[V]) RemoveValues(path Topic) int {
	entries := t.trace(path)
	if entries == nil {
		return 0
	}

	node := entries[len(entries)-1].node
	removed := len(node.values)
	node.values = nil
	pruneUp(entries)
	return removed
}

// RemoveFunc deletes every value at path for which match returns true. Values
// in child namespaces are not touched and the node is kept even if it ends up
// empty.
// Returns the number of values removed.
func (t *Tree[V]) RemoveFunc(path Topic, match func(V) bool) int {
	node := t.lookup(path)
	if node == nil {
		return 0
	}

	before := len(node.values)
	node.values = slices.DeleteFunc(node.values, match)
	if len(node.values) == 0 {
		node.values = nil
	}
	return before - len(node.values)
}

// Prune removes the node at path if it has no values and no children, then
// does the same for its ancestors.
func (t *Tree[V]) Prune(path Topic) {
	if entries := t.trace(path); entries != nil {
		pruneUp(entries)
	}
}

// Paths returns the topics of all nodes that hold at least one value, in walk
// order.
func (t *Tree[V]) Paths() []Topic {
	if t.root == nil {
		return nil
	}

	var paths []Topic
	for _, key := range slices.Sorted(maps.Keys(t.root.children)) {
		collectPaths(t.root.children[key], Topic(key), &paths)
	}
	return paths
}

// collectPaths recursively collects topics of non-empty nodes.
func collectPaths[V any](node *treeNode[V], at Topic, paths *[]Topic) {
	if len(node.values) > 0 {
		*paths = append(*paths, at)
	}
	for _, key := range slices.Sorted(maps.Keys(node.children)) {
		collectPaths(node.children[key], at.Child(key), paths)
	}
}

// Len returns the number of values in the tree.
func (t *Tree[V]) Len() int {
	if t.root == nil {
		return 0
	}
	count := 0
	countValues(t.root, &count)
	return count
}

// Clear removes all values and namespaces.
func (t *Tree[V]) Clear() {
	t.root = newTreeNode[V]()
}

// NodeCount returns the total number of nodes in the tree, including the root.
// This is useful for checking that removals leave no empty nodes behind.
func (t *Tree[V]) NodeCount() int {
	if t.root == nil {
		return 0
	}
	count := 0
	countNodes(t.root, &count)
	return count
}

// countNodes recursively counts nodes in the tree.
func countNodes[V any](node *treeNode[V], count *int) {
	*count++
	for _, child := range node.children {
		countNodes(child, count)
	}
}
