// Package graph defines the core evaluation graph: named nodes that are
// either free variables supplied by the caller or producers computed from
// other named nodes. A Graph is built once via Define and is immutable
// afterwards; it can be evaluated many times with different bindings.
package graph
