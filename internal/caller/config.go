package caller

import (
	"errors"
	"fmt"

	"github.com/inodb/igcall/internal/locus"
)

// Sequencing types.
const (
	WGS     = "wgs"
	WES     = "wes"
	Capture = "capture"
)

// Config holds the validated run settings.
type Config struct {
	Genome       string // hg19 or hg38
	ChromPrefix  string // "chr" or ""
	ReferenceDir string // annotation bundle root
	Loci         []locus.Name

	TumorBAM  string
	NormalBAM string // optional
	Reference string // optional FASTA for pileups

	BaseQuality int
	MinDepth    int
	MinAltDepth int
	VAF         float64
	VAFNormal   float64
	Purity      float64
	SeqType     string
	Threads     int

	MinReadsOnco  int     // reads needed to keep a translocation cluster
	PassScoreOnco float64 // translocation PASS score
	MaxNormalOnco int     // reads allowed in the normal for PASS
	MapQOnco      int
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		Genome:        "hg19",
		ChromPrefix:   "chr",
		Loci:          []locus.Name{locus.IGH, locus.IGK, locus.IGL, locus.CSR},
		BaseQuality:   20,
		MinDepth:      1,
		MinAltDepth:   1,
		VAF:           0.1,
		VAFNormal:     0.2,
		Purity:        1,
		SeqType:       WGS,
		Threads:       1,
		MinReadsOnco:  3,
		PassScoreOnco: 5,
		MaxNormalOnco: 3,
		MapQOnco:      15,
	}
}

// ErrNoTumor is returned when no tumor alignment is configured.
var ErrNoTumor = errors.New("tumor alignment file required")

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if c.TumorBAM == "" {
		return ErrNoTumor
	}
	if c.Purity <= 0 || c.Purity > 1 {
		return fmt.Errorf("purity must be in (0, 1], got %g", c.Purity)
	}
	switch c.SeqType {
	case WGS, WES, Capture:
	default:
		return fmt.Errorf("unknown sequencing type %q", c.SeqType)
	}
	switch c.Genome {
	case "hg19", "hg38":
	default:
		return fmt.Errorf("unknown genome version %q", c.Genome)
	}
	for name, v := range map[string]int{
		"base quality":            c.BaseQuality,
		"min depth":               c.MinDepth,
		"min alt depth":           c.MinAltDepth,
		"min translocation reads": c.MinReadsOnco,
		"max normal reads":        c.MaxNormalOnco,
		"translocation mapq":      c.MapQOnco,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, v)
		}
	}
	if c.VAF < 0 || c.VAF > 1 || c.VAFNormal < 0 || c.VAFNormal > 1 {
		return errors.New("allele frequency cutoffs must be in [0, 1]")
	}
	if c.PassScoreOnco < 0 {
		return fmt.Errorf("translocation pass score must not be negative, got %g", c.PassScoreOnco)
	}
	if c.Threads < 1 {
		return fmt.Errorf("threads must be at least 1, got %d", c.Threads)
	}
	return nil
}
