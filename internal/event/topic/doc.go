// Package topic provides dot-separated event names and the namespace tree
// that stores values under them.
//
// # Topic Format
//
// Topics use dot-notation to create hierarchical namespaces:
//
//	click
//	click.foo
//	click.foo.bar
//
// Each dot-delimited token is a segment. Segments are non-empty; "click.",
// ".click" and "click..foo" are all invalid.
//
// # Namespace Tree
//
// Tree stores an ordered list of values at each node. A node is addressed by
// the exact segment path of a topic and owns every node whose path extends
// it, so "click" owns "click.foo" and "click.foo.bar":
//
//	t := topic.NewTree[string]()
//	t.Insert(topic.Topic("click.foo"), "a")
//	t.Insert(topic.Topic("click.bar.baz"), "b")
//
//	t.Count(topic.Topic("click"))     // 2
//	t.Count(topic.Topic("click.foo")) // 1
//	t.Count(topic.Topic("missing"))   // 0
//
// Walk visits a node and its whole subtree depth-first: the node's own values
// in insertion order, then its children in lexical segment order.
//
// Tree is not safe for concurrent use. Owners serialize access.
package topic
