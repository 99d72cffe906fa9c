// Package service wires the matching core to its durability and
// delivery machinery: commands are journaled, applied to the market,
// and the resulting stream records staged for publication. On restart
// the service restores the last snapshot and replays the journal tail.
package service
