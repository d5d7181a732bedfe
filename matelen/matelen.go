package matelen

import (
	"context"
	"io"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/bgzf"
	"github.com/klauspost/compress/gzip"
	"github.com/seqyard/matelen/encoding/samtext"
)

// Opts controls a matelen run.
type Opts struct {
	// EndType selects paired-end or single-end semantics.
	EndType EndType
	// Format is the output format: "tsv", "tsv-gz" or "tsv-bgz".
	Format string
	// Parallelism is the bgzf compressor thread count; 0 lets bgzf decide.
	Parallelism int
}

// DefaultOpts is the default option set.
var DefaultOpts = Opts{
	EndType: PairedEnd,
	Format:  "tsv",
}

// ParseEndType parses the command-line end-type value.
func ParseEndType(s string) (EndType, error) {
	switch s {
	case "PE":
		return PairedEnd, nil
	case "SE":
		return SingleEnd, nil
	}
	return 0, errors.E("unknown end type (want PE or SE):", s)
}

// Stats reports what a run consumed and produced.
type Stats struct {
	// Records is the number of alignment records parsed.
	Records int64
	// Groups is the number of output rows written, excluding the header.
	Groups int64
}

// Process streams name-grouped SAM text from in and writes one reconciled
// row per read/pair to w.  A malformed record terminates the run; a pending
// unmated record is flushed as a singleton even when the stream ends
// abruptly.
func Process(in io.Reader, w io.Writer, endType EndType) (Stats, error) {
	var stats Stats
	out := NewWriter(w)
	if err := out.WriteHeader(); err != nil {
		return stats, err
	}
	scanner := samtext.NewScanner(in)
	reconciler := NewReconciler(endType)
	for {
		rec := &samtext.Record{}
		if !scanner.Scan(rec) {
			break
		}
		stats.Records++
		if g := reconciler.Feed(rec); g != nil {
			stats.Groups++
			if err := out.Write(g); err != nil {
				return stats, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, err
	}
	if g := reconciler.Flush(); g != nil {
		stats.Groups++
		if err := out.Write(g); err != nil {
			return stats, err
		}
	}
	return stats, out.Flush()
}

// Run processes the record stream in and writes rows to outPath, compressed
// according to opts.Format.
func Run(ctx context.Context, in io.Reader, outPath string, opts Opts) (err error) {
	var dst file.File
	if dst, err = file.Create(ctx, outPath); err != nil {
		return errors.E(err, "couldn't create output file:", outPath)
	}
	defer file.CloseAndReport(ctx, dst, &err)

	var (
		out      io.Writer
		closeOut func() error
	)
	switch opts.Format {
	case "tsv":
		out = dst.Writer(ctx)
	case "tsv-gz":
		gzw := gzip.NewWriter(dst.Writer(ctx))
		out, closeOut = gzw, gzw.Close
	case "tsv-bgz":
		bgzw := bgzf.NewWriter(dst.Writer(ctx), opts.Parallelism)
		out, closeOut = bgzw, bgzw.Close
	default:
		return errors.E("unknown output format:", opts.Format)
	}
	if closeOut != nil {
		defer func() {
			if e := closeOut(); e != nil && err == nil {
				err = e
			}
		}()
	}

	var stats Stats
	if stats, err = Process(in, out, opts.EndType); err != nil {
		return err
	}
	log.Printf("matelen: %d records reconciled into %d rows, written to %s", stats.Records, stats.Groups, outPath)
	return nil
}

// OpenInput opens a possibly-compressed SAM text file, transparently
// decompressing it.  The returned closer closes both layers.
func OpenInput(ctx context.Context, path string) (io.Reader, func() error, error) {
	infile, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, errors.E(err, "couldn't open input file:", path)
	}
	reader, _ := compress.NewReader(infile.Reader(ctx))
	return reader, func() error {
		e := reader.Close()
		if e2 := infile.Close(ctx); e == nil {
			e = e2
		}
		return e
	}, nil
}
