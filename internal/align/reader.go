package align

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/klauspost/compress/gzip"
)

// Source yields alignment records in file order.
type Source interface {
	// Read returns the next record or io.EOF.
	Read() (*Record, error)
	Close() error
}

// SAMReader reads headerless or headed SAM text, plain or gzipped.
// Lines that fail to parse are skipped and counted.
type SAMReader struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	skipped    int
}

// NewSAMReader opens a SAM text file. Use "-" for stdin.
func NewSAMReader(path string) (*SAMReader, error) {
	if path == "-" {
		return NewSAMReaderFromReader(os.Stdin), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sam file: %w", err)
	}

	r := &SAMReader{file: file}
	br := bufio.NewReader(file)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		r.gzipReader, err = gzip.NewReader(br)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.reader = bufio.NewReader(r.gzipReader)
	} else {
		r.reader = br
	}
	return r, nil
}

// NewSAMReaderFromReader reads SAM text from r.
func NewSAMReaderFromReader(r io.Reader) *SAMReader {
	return &SAMReader{reader: bufio.NewReader(r)}
}

// Read returns the next parsable record.
func (r *SAMReader) Read() (*Record, error) {
	for {
		line, err := r.reader.ReadBytes('\n')
		if len(line) == 0 && err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("read sam line %d: %w", r.lineNumber+1, err)
		}
		r.lineNumber++

		line = bytes.TrimRight(line, "\r\n")
		if len(line) == 0 || line[0] == '@' {
			continue
		}
		rec, perr := ParseSAMLine(line)
		if perr != nil {
			r.skipped++
			continue
		}
		return rec, nil
	}
}

// Skipped returns the number of malformed lines skipped so far.
func (r *SAMReader) Skipped() int {
	return r.skipped
}

// Close closes the underlying file, if any.
func (r *SAMReader) Close() error {
	if r.gzipReader != nil {
		r.gzipReader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// BAMReader reads BAM files through biogo/hts.
type BAMReader struct {
	file    *os.File
	br      *bam.Reader
	skipped int
}

// NewBAMReader opens a BAM file.
func NewBAMReader(path string) (*BAMReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bam file: %w", err)
	}
	br, err := bam.NewReader(f, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create bam reader: %w", err)
	}
	return &BAMReader{file: f, br: br}, nil
}

// Read returns the next record or io.EOF.
func (r *BAMReader) Read() (*Record, error) {
	for {
		s, err := r.br.Read()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("read bam record: %w", err)
		}
		rec, err := FromSAM(s)
		if err != nil {
			r.skipped++
			continue
		}
		return rec, nil
	}
}

// Close closes the reader and the file.
func (r *BAMReader) Close() error {
	r.br.Close()
	return r.file.Close()
}

// Open picks a reader by extension: .bam through BAMReader, anything else as SAM text.
func Open(path string) (Source, error) {
	if strings.HasSuffix(strings.ToLower(path), ".bam") {
		return NewBAMReader(path)
	}
	return NewSAMReader(path)
}

// ReadAll drains src.
func ReadAll(src Source) ([]*Record, error) {
	var recs []*Record
	for {
		rec, err := src.Read()
		if err == io.EOF {
			return recs, nil
		}
		if err != nil {
			return recs, err
		}
		recs = append(recs, rec)
	}
}

// RegionSource passes through the records of src that start inside a
// chromosome range (1-based, inclusive).
type RegionSource struct {
	src        Source
	chrom      string
	start, end int
}

// NewRegionSource wraps src.
func NewRegionSource(src Source, chrom string, start, end int) *RegionSource {
	return &RegionSource{src: src, chrom: chrom, start: start, end: end}
}

// Read returns the next record inside the range, or io.EOF.
func (r *RegionSource) Read() (*Record, error) {
	for {
		rec, err := r.src.Read()
		if err != nil {
			return nil, err
		}
		if rec.Ref == r.chrom && rec.Pos >= r.start && rec.Pos <= r.end {
			return rec, nil
		}
	}
}

// Close closes the wrapped source.
func (r *RegionSource) Close() error {
	return r.src.Close()
}
