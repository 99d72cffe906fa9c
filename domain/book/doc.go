// Package book implements the in-memory matching core for a single
// instrument: a price-time-priority order book built on two red-black
// trees (bids and asks), and a bounded-depth aggregated market view
// with overflow handling and incremental change tracking.
//
// The package is single-writer. Every operation runs to completion
// before returning; callers serialize access per book (one book per
// symbol). Orders are owned by the caller: the book only borrows
// references satisfying the Order contract and drops them once an
// order is fully filled or cancelled.
package book
