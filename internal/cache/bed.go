package cache

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Annotation is the ordered gene list of one locus.
type Annotation struct {
	genes  []*Gene
	byName map[string]*Gene
}

// NewAnnotation indexes genes by name, keeping the first entry of duplicated names.
func NewAnnotation(genes []*Gene) *Annotation {
	a := &Annotation{genes: genes, byName: make(map[string]*Gene, len(genes))}
	for i, g := range genes {
		g.Index = i
		if _, ok := a.byName[g.Name]; !ok {
			a.byName[g.Name] = g
		}
	}
	return a
}

// Genes returns the genes in file order.
func (a *Annotation) Genes() []*Gene {
	return a.genes
}

// Gene looks a gene up by name.
func (a *Annotation) Gene(name string) (*Gene, bool) {
	g, ok := a.byName[name]
	return g, ok
}

// Len returns the number of genes.
func (a *Annotation) Len() int {
	return len(a.genes)
}

// Index builds a windowed lookup over the annotation.
func (a *Annotation) Index(window WindowFunc) *IntervalTree {
	return BuildIntervalTree(a.genes, window)
}

// LoadBED reads a 4-column BED file (chrom, start, end, name), plain or gzipped.
func LoadBED(path string) (*Annotation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open BED file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	genes, err := ParseBED(reader)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return NewAnnotation(genes), nil
}

// ParseBED parses BED lines. Coordinates are taken as written.
func ParseBED(r io.Reader) ([]*Gene, error) {
	var genes []*Gene
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "track") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 4 {
			return nil, fmt.Errorf("line %d: expected 4 columns, got %d", lineNumber, len(fields))
		}
		start, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad start %q", lineNumber, fields[1])
		}
		end, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad end %q", lineNumber, fields[2])
		}
		genes = append(genes, &Gene{Name: fields[3], Chrom: fields[0], Start: start, End: end})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read BED: %w", err)
	}
	return genes, nil
}
