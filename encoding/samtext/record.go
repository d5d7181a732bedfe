// Package samtext reads alignment records from SAM text streams, such as the
// output of "samtools view".  Only the columns needed for length and mismatch
// accounting are materialized; sequence and quality strings are never copied.
package samtext

import (
	"strconv"
	"strings"

	"github.com/grailbio/hts/sam"
	"github.com/pkg/errors"
)

// minFields is the number of mandatory SAM columns.
const minFields = 11

// Record holds the parsed fields of one alignment line.
type Record struct {
	// Name is the query (read) name.  Mates of a pair share it.
	Name string
	// Flags is the SAM FLAG bitmask.
	Flags sam.Flags
	// Ref is the reference sequence name, "*" if unmapped.
	Ref string
	// Pos is the 1-based leftmost mapping position.
	Pos int
	// MappedLen is the number of reference-consuming aligned bases: the sum
	// of the M, = and X run lengths of the CIGAR.  A CIGAR of "*" yields 0.
	MappedLen int

	tags map[string]string
}

// IsRead1 reports whether the record is flagged as the first mate.
func (r *Record) IsRead1() bool { return r.Flags&sam.Read1 != 0 }

// IsReverse reports whether the record maps to the reverse strand.
func (r *Record) IsReverse() bool { return r.Flags&sam.Reverse != 0 }

// Tag returns the value of the named aux tag, or "" if the record does not
// carry it.  Lookup is case-sensitive: NM and nM are distinct tags with
// distinct meanings (per-read edit distance vs. the aligner's per-pair
// mismatch count), and must never be conflated.
func (r *Record) Tag(name string) string { return r.tags[name] }

// ParseRecord parses one tab-separated SAM record line.  Header lines are the
// caller's concern; see Scanner.
func ParseRecord(line string) (Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < minFields {
		return Record{}, errors.Errorf("record has %d fields, want at least %d", len(fields), minFields)
	}
	flags, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return Record{}, errors.Wrapf(err, "bad FLAG field %q", fields[1])
	}
	pos, err := strconv.Atoi(fields[3])
	if err != nil {
		return Record{}, errors.Wrapf(err, "bad POS field %q", fields[3])
	}
	mappedLen, err := cigarMappedLen(fields[5])
	if err != nil {
		return Record{}, err
	}
	rec := Record{
		Name:      fields[0],
		Flags:     sam.Flags(flags),
		Ref:       fields[2],
		Pos:       pos,
		MappedLen: mappedLen,
	}
	if len(fields) > minFields {
		rec.tags = parseTags(fields[minFields:])
	}
	return rec, nil
}

// parseTags builds the tag name -> value map from the TAG:TYPE:VALUE aux
// columns.  The first occurrence of a name wins; duplicate tags indicate
// malformed input and get no special handling beyond that.
func parseTags(fields []string) map[string]string {
	tags := make(map[string]string, len(fields))
	for _, f := range fields {
		// "XX:Y:" is the shortest well-formed tag.
		if len(f) < 5 || f[2] != ':' {
			continue
		}
		sep := strings.IndexByte(f[3:], ':')
		if sep < 0 {
			continue
		}
		name := f[:2]
		if _, ok := tags[name]; !ok {
			tags[name] = f[4+sep:]
		}
	}
	return tags
}

// cigarMappedLen sums the run lengths of the reference-consuming aligned
// operations M, = and X.  Insertions, deletions, skips, clips and padding
// contribute nothing to the metric.
func cigarMappedLen(cigar string) (int, error) {
	if cigar == "*" {
		return 0, nil
	}
	total := 0
	n := 0
	haveLen := false
	for i := 0; i < len(cigar); i++ {
		c := cigar[i]
		if c >= '0' && c <= '9' {
			n = n*10 + int(c-'0')
			haveLen = true
			continue
		}
		if !haveLen {
			return 0, errors.Errorf("bad CIGAR %q: operation %q has no length", cigar, string(c))
		}
		switch c {
		case 'M', '=', 'X':
			total += n
		case 'I', 'D', 'N', 'S', 'H', 'P', 'B':
			// Not reference-consuming for this metric.
		default:
			return 0, errors.Errorf("bad CIGAR %q: unknown operation %q", cigar, string(c))
		}
		n = 0
		haveLen = false
	}
	if haveLen {
		return 0, errors.Errorf("bad CIGAR %q: trailing length", cigar)
	}
	return total, nil
}
