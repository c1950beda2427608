// Package pileup reads per-position base calls produced by samtools mpileup.
package pileup

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Line is one covered reference position.
type Line struct {
	Chrom string
	Pos   int
	Ref   byte
	Depth int
	Calls string // raw read-base column
}

// Request describes one region to pile up.
type Request struct {
	Chrom       string
	Start, End  int // 1-based, inclusive
	BAM         string
	BaseQuality int
	Reference   string // optional FASTA
	Anomalous   bool   // count anomalous read pairs (-A)
}

// Region formats the request as a samtools region string.
func (r Request) Region() string {
	return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Start, r.End)
}

// Provider produces pileup lines for a region.
type Provider interface {
	Pileup(ctx context.Context, req Request) ([]Line, error)
}

// ParseLine parses one tab-separated mpileup line.
func ParseLine(text string) (Line, error) {
	fields := strings.Split(text, "\t")
	if len(fields) < 4 {
		return Line{}, fmt.Errorf("expected at least 4 columns, got %d", len(fields))
	}
	pos, err := strconv.Atoi(fields[1])
	if err != nil {
		return Line{}, fmt.Errorf("invalid position %q: %w", fields[1], err)
	}
	depth, err := strconv.Atoi(fields[3])
	if err != nil {
		return Line{}, fmt.Errorf("invalid depth %q: %w", fields[3], err)
	}
	l := Line{Chrom: fields[0], Pos: pos, Depth: depth, Ref: 'N'}
	if fields[2] != "" {
		l.Ref = upper(fields[2][0])
	}
	if len(fields) > 4 {
		l.Calls = fields[4]
	}
	return l, nil
}

// ReadLines parses mpileup output.
func ReadLines(r io.Reader) ([]Line, error) {
	var lines []Line
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" {
			continue
		}
		l, err := ParseLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		lines = append(lines, l)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read pileup: %w", err)
	}
	return lines, nil
}

// Depths returns the depth of every position in [start, end], zero where
// the pileup has no line.
func Depths(lines []Line, start, end int) []float64 {
	if end < start {
		return nil
	}
	out := make([]float64, end-start+1)
	for _, l := range lines {
		if l.Pos >= start && l.Pos <= end {
			out[l.Pos-start] = float64(l.Depth)
		}
	}
	return out
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
