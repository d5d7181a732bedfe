package matelen

import "github.com/seqyard/matelen/encoding/samtext"

// EndType selects paired-end or single-end semantics throughout the pipeline.
// It is threaded explicitly; there is no process-wide mode.
type EndType int

const (
	// PairedEnd groups adjacent same-name records into mate pairs.
	PairedEnd EndType = iota
	// SingleEnd emits one group per record; every record is treated as R1.
	SingleEnd
)

// pairNMTag is the aux tag carrying the aligner's combined per-pair mismatch
// count.  Distinct from the per-read NM edit-distance tag; see Record.Tag.
const pairNMTag = "nM"

// readNMTag is the per-read edit-distance aux tag.
const readNMTag = "NM"

// Group is one reconciled read or mate pair, the unit of one output row.
type Group struct {
	// R1 and R2 hold the mates by role.  Either may be nil (orphan mate);
	// in single-end mode only R1 is ever populated.
	R1, R2 *samtext.Record

	// RawLen is the sum of the present mates' mapped lengths.
	RawLen int
	// NonoverlapLen is RawLen minus the mate overlap, or DiscordantLen when
	// the mates map to different references.
	NonoverlapLen int
	// PairMismatches is the combined mismatch count from the nM tag, "" if
	// neither mate carries it.
	PairMismatches string
}

// Name returns the query name of the group, preferring R1.
func (g *Group) Name() string {
	if g.R1 != nil {
		return g.R1.Name
	}
	return g.R2.Name
}

// Reconciler is a streaming state machine over a name-grouped record
// sequence.  It buffers at most one pending record: feeding a record with
// the same name as the pending one closes a pair, a different name flushes
// the pending record as an orphan singleton.  Correctness depends entirely
// on mates being adjacent in the input (name sorting is the caller's
// responsibility); a split pair is silently reported as two singletons.
type Reconciler struct {
	endType EndType
	pending *samtext.Record
}

// NewReconciler returns a Reconciler with the given end-type semantics.
func NewReconciler(endType EndType) *Reconciler {
	return &Reconciler{endType: endType}
}

// Feed advances the state machine with the next record.  It returns a
// completed group, or nil if rec is now pending its mate.  Feed retains rec;
// the caller must not reuse it.
func (r *Reconciler) Feed(rec *samtext.Record) *Group {
	if r.endType == SingleEnd {
		return r.newGroup(rec, nil)
	}
	if r.pending == nil {
		r.pending = rec
		return nil
	}
	prev := r.pending
	if prev.Name == rec.Name {
		r.pending = nil
		return r.newGroup(prev, rec)
	}
	// prev has no mate in the stream; rec starts the next group.
	r.pending = rec
	return r.newGroup(prev, nil)
}

// Flush emits the pending record, if any, as a singleton group.  It must be
// called once at end of stream, even on abrupt termination.
func (r *Reconciler) Flush() *Group {
	if r.pending == nil {
		return nil
	}
	prev := r.pending
	r.pending = nil
	return r.newGroup(prev, nil)
}

func (r *Reconciler) newGroup(a, b *samtext.Record) *Group {
	g := &Group{}
	r.assign(g, a)
	if b != nil {
		r.assign(g, b)
	}
	g.RawLen, g.NonoverlapLen = reconcileLengths(g.R1, g.R2)
	if g.R1 != nil {
		g.PairMismatches = g.R1.Tag(pairNMTag)
	}
	if g.PairMismatches == "" && g.R2 != nil {
		g.PairMismatches = g.R2.Tag(pairNMTag)
	}
	return g
}

// assign places rec into its mate slot.  Single-end records are always R1.
// If both records of a pair claim the same role, the second takes the vacant
// slot so that neither read's length is dropped.
func (r *Reconciler) assign(g *Group, rec *samtext.Record) {
	if r.endType == SingleEnd || rec.IsRead1() {
		if g.R1 == nil {
			g.R1 = rec
			return
		}
		g.R2 = rec
		return
	}
	if g.R2 == nil {
		g.R2 = rec
		return
	}
	g.R1 = rec
}
