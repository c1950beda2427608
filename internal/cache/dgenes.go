package cache

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// DGene is one entry of the D-gene sequence catalog.
type DGene struct {
	Name string
	Seq  string
}

// LoadDCatalog reads a two-column (name, sequence) tab-separated catalog.
func LoadDCatalog(path string) ([]DGene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open D catalog: %w", err)
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
	return ParseDCatalog(reader)
}

// ParseDCatalog parses catalog lines, keeping file order.
func ParseDCatalog(r io.Reader) ([]DGene, error) {
	var out []DGene
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		name, seq, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("D catalog line %d: missing sequence column", n)
		}
		seq, _, _ = strings.Cut(seq, "\t")
		out = append(out, DGene{Name: name, Seq: strings.ToUpper(seq)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read D catalog: %w", err)
	}
	return out, nil
}
