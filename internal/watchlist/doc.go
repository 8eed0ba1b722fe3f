// Package watchlist holds the symbol hierarchy and the operations that
// reorganize it.
//
// A Tree maps top-level group names to GroupNodes; each node holds an ordered
// set of upper-case ticker symbols and named subgroups. The "Default" group
// always exists and can be neither deleted, renamed nor moved. Groups left
// with no symbols and no subgroups after a removal are pruned.
//
// Operations work on a *Tree in place and never leave it half-modified: they
// check every precondition first and return a *CodedError on failure.
// Persistence and locking live in package store.
package watchlist
