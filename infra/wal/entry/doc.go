// Package entry is the command journal: every inbound market command
// is appended here, framed and checksummed, before it touches a book.
// On restart the journal is replayed in sequence order to rebuild the
// market state.
package entry
