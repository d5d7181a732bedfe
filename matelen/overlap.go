// Package matelen computes, for each read or read pair in a name-grouped
// alignment stream, the total mapped length, the mapped length after removing
// mate overlap, and the combined mismatch count, emitting one TSV row per
// read/pair.
package matelen

import "github.com/seqyard/matelen/encoding/samtext"

// DiscordantLen is the nonoverlap-length sentinel emitted when the two mates
// map to different reference sequences; overlap arithmetic across coordinate
// systems is meaningless.
const DiscordantLen = -1

// reconcileLengths computes the combined and overlap-adjusted mapped lengths
// for a group.  Either record may be nil (orphan mate or single-end), in
// which case both lengths are just the present mate's mapped length.
//
// For a concordant pair, the overlap window is anchored by orientation: the
// forward-strand mate's end minus the other mate's start.  This is the
// defined behavior for simple linear mate layouts; indels and clipping are
// accounted only through the CIGAR-derived mapped lengths.
func reconcileLengths(r1, r2 *samtext.Record) (rawLen, nonoverlapLen int) {
	switch {
	case r1 == nil && r2 == nil:
		return 0, 0
	case r1 == nil:
		return r2.MappedLen, r2.MappedLen
	case r2 == nil:
		return r1.MappedLen, r1.MappedLen
	}
	rawLen = r1.MappedLen + r2.MappedLen
	if r1.Ref != r2.Ref {
		return rawLen, DiscordantLen
	}
	var overlap int
	if r1.IsReverse() {
		overlap = r2.Pos + r2.MappedLen - r1.Pos
	} else {
		overlap = r1.Pos + r1.MappedLen - r2.Pos
	}
	if overlap < 0 {
		overlap = 0
	}
	return rawLen, rawLen - overlap
}
