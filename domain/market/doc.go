// Package market sits above the matching core: it owns the concrete
// order objects with their state and trade histories, routes submits
// and cancels to per-symbol books, and translates book events into the
// stream records the rest of the system journals and publishes.
package market
