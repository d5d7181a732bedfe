package matelen_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/seqyard/matelen/encoding/samtext"
	"github.com/seqyard/matelen/matelen"
	"github.com/stretchr/testify/require"
)

// samLine builds a minimal SAM record line.
func samLine(name string, flags int, ref string, pos int, cigar string, tags ...string) string {
	fields := []string{
		name, strconv.Itoa(flags), ref, strconv.Itoa(pos), "60", cigar, "*", "0", "0", "*", "*",
	}
	return strings.Join(append(fields, tags...), "\t")
}

func parse(t *testing.T, line string) *samtext.Record {
	rec, err := samtext.ParseRecord(line)
	require.NoError(t, err)
	return &rec
}

func TestReconcilerPair(t *testing.T) {
	r := matelen.NewReconciler(matelen.PairedEnd)
	require.Nil(t, r.Feed(parse(t, samLine("q1", 99, "chr1", 100, "50M", "NM:i:1", "nM:i:2"))))
	g := r.Feed(parse(t, samLine("q1", 147, "chr1", 100, "50M", "NM:i:1", "nM:i:2")))
	require.NotNil(t, g)
	require.Equal(t, "q1", g.Name())
	require.Equal(t, 100, g.RawLen)
	require.Equal(t, 50, g.NonoverlapLen)
	require.Equal(t, "2", g.PairMismatches)
	require.NotNil(t, g.R1)
	require.NotNil(t, g.R2)
	require.Nil(t, r.Flush())
}

func TestReconcilerOrphanThenNewGroup(t *testing.T) {
	r := matelen.NewReconciler(matelen.PairedEnd)
	require.Nil(t, r.Feed(parse(t, samLine("X", 99, "chr1", 100, "40M"))))
	// A record for a different name flushes X as a singleton before Y starts
	// accumulating.
	g := r.Feed(parse(t, samLine("Y", 99, "chr1", 500, "40M")))
	require.NotNil(t, g)
	require.Equal(t, "X", g.Name())
	require.Equal(t, 40, g.RawLen)
	require.Equal(t, 40, g.NonoverlapLen)
	require.Nil(t, g.R2)

	g = r.Flush()
	require.NotNil(t, g)
	require.Equal(t, "Y", g.Name())
}

func TestReconcilerOrphanIsR2(t *testing.T) {
	r := matelen.NewReconciler(matelen.PairedEnd)
	// Flag 147 = paired, mate role R2, reverse strand.
	require.Nil(t, r.Feed(parse(t, samLine("q", 147, "chr1", 100, "30M", "NM:i:4"))))
	g := r.Flush()
	require.NotNil(t, g)
	require.Nil(t, g.R1)
	require.NotNil(t, g.R2)
	require.Equal(t, "q", g.Name())
	require.Equal(t, 30, g.RawLen)
	require.Equal(t, 30, g.NonoverlapLen)
}

func TestReconcilerEmptyStream(t *testing.T) {
	r := matelen.NewReconciler(matelen.PairedEnd)
	require.Nil(t, r.Flush())
}

func TestReconcilerSingleEnd(t *testing.T) {
	r := matelen.NewReconciler(matelen.SingleEnd)
	// Single-end records complete immediately, whatever their flags say.
	g := r.Feed(parse(t, samLine("s1", 16, "chr1", 100, "75M")))
	require.NotNil(t, g)
	require.NotNil(t, g.R1)
	require.Nil(t, g.R2)
	require.Equal(t, 75, g.RawLen)
	require.Equal(t, 75, g.NonoverlapLen)
	g = r.Feed(parse(t, samLine("s1", 16, "chr1", 200, "75M")))
	require.NotNil(t, g)
	require.Nil(t, r.Flush())
}

func TestReconcilerPairNMFallsBackToR2(t *testing.T) {
	r := matelen.NewReconciler(matelen.PairedEnd)
	require.Nil(t, r.Feed(parse(t, samLine("q", 99, "chr1", 100, "50M"))))
	g := r.Feed(parse(t, samLine("q", 147, "chr1", 120, "50M", "nM:i:5")))
	require.NotNil(t, g)
	require.Equal(t, "5", g.PairMismatches)
}
