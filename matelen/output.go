package matelen

import (
	"io"
	"strconv"

	"github.com/grailbio/base/tsv"
	"github.com/seqyard/matelen/encoding/samtext"
)

// header lists the eight output columns in order.
const header = "#READ\tRAW_LEN\tNONOVERLAP_LEN\tPAIR_NM\tR1_LEN\tR2_LEN\tR1_NM\tR2_NM"

// Writer renders reconciled groups as TSV rows.
type Writer struct {
	w *tsv.Writer
}

// NewWriter returns a Writer emitting to w.  The caller is responsible for
// any compression layered under w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: tsv.NewWriter(w)}
}

// WriteHeader writes the column-name row.  It must precede all data rows.
func (w *Writer) WriteHeader() error {
	w.w.WriteString(header)
	return w.w.EndLine()
}

// Write renders one group as one row.  Columns for an absent mate are empty,
// as is any mismatch column whose tag was not present.
func (w *Writer) Write(g *Group) error {
	w.w.WriteString(g.Name())
	w.w.WriteUint32(uint32(g.RawLen))
	// NonoverlapLen may be the -1 discordant sentinel, so it is written
	// signed.
	w.w.WriteString(strconv.Itoa(g.NonoverlapLen))
	w.w.WriteString(g.PairMismatches)
	w.writeMate(g.R1)
	w.writeMate(g.R2)
	w.writeMismatch(g.R1)
	w.writeMismatch(g.R2)
	return w.w.EndLine()
}

func (w *Writer) writeMate(rec *samtext.Record) {
	if rec == nil {
		w.w.WriteString("")
		return
	}
	w.w.WriteUint32(uint32(rec.MappedLen))
}

func (w *Writer) writeMismatch(rec *samtext.Record) {
	if rec == nil {
		w.w.WriteString("")
		return
	}
	w.w.WriteString(rec.Tag(readNMTag))
}

// Flush flushes buffered rows to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
