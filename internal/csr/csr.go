// Package csr detects class-switch recombination from insert-size pairs
// joining IGHM to a downstream switch region, confirmed by a drop in
// coverage across the deleted constant genes.
package csr

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/inodb/igcall/internal/breakpoint"
	"github.com/inodb/igcall/internal/cache"
	"github.com/inodb/igcall/internal/locus"
	"github.com/inodb/igcall/internal/pairing"
	"github.com/inodb/igcall/internal/pileup"
)

const (
	flank = 1500

	minScore      = 4
	minMeanA      = 8
	minReduction  = 30
	highReduction = 60
	highScore     = 7
	maxPValue     = 1e-10
)

// Call is a class-switch call.
type Call struct {
	Isotype     string // switch region joined to IGHM
	Orientation breakpoint.Orientation
	Score       float64
	MeanA       float64 // depth upstream of the switch region
	MeanB       float64 // depth downstream of the switch region
	PValue      float64
	Reduction   float64 // percent coverage drop, purity adjusted
	Pass        bool
}

// Config holds the sample inputs.
type Config struct {
	TumorBAM    string
	NormalBAM   string // optional
	BaseQuality int
	Purity      float64
}

// Analyzer evaluates class-switch keys for one sample.
type Analyzer struct {
	locus    *locus.Locus
	provider pileup.Provider
	regions  *cache.Annotation
	cfg      Config
	logger   *zap.Logger
}

// NewAnalyzer creates an analyzer. regions holds the switch regions.
func NewAnalyzer(l *locus.Locus, p pileup.Provider, regions *cache.Annotation, cfg Config) *Analyzer {
	return &Analyzer{locus: l, provider: p, regions: regions, cfg: cfg, logger: zap.NewNop()}
}

// SetLogger sets the logger.
func (a *Analyzer) SetLogger(l *zap.Logger) {
	a.logger = l
}

// Analyze evaluates every insert-size key in counts. It returns the calls
// with a positive coverage reduction; Pass marks the ones passing the
// default filter. Keys whose coverage cannot be read are logged and skipped.
func (a *Analyzer) Analyze(ctx context.Context, counts *pairing.Counts) ([]*Call, error) {
	var out []*Call
	for _, key := range counts.InsertKeys() {
		score := pairing.Round(float64(counts.Insert(key))/a.cfg.Purity, 1)
		if score < minScore || key.Orientation != breakpoint.Deletion {
			continue
		}
		c, err := a.evaluate(ctx, key, score)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			a.logger.Warn("skipping class switch", zap.String("label", key.Label), zap.Error(err))
			continue
		}
		if c != nil && c.Reduction > 0 {
			out = append(out, c)
		}
	}
	a.logger.Info("class switch analysis",
		zap.Int("keys", len(counts.InsertKeys())),
		zap.Int("calls", len(out)))
	return out, nil
}

// evaluate measures the coverage drop across the switch region of key.
// With a normal sample, the upstream mean is rescaled by the ratio of the
// normal's upstream and downstream means, each taken over its own window.
// A downstream normal mean pooled over both windows would shrink the ratio
// and give different values.
func (a *Analyzer) evaluate(ctx context.Context, key pairing.Key, score float64) (*Call, error) {
	isotype, _, _ := strings.Cut(key.Label, pairing.Sep)
	g, ok := a.regions.Gene(isotype)
	if !ok {
		return nil, fmt.Errorf("no switch region for %s", isotype)
	}
	startA, endA := g.Start-flank, g.Start
	startB, endB := g.End, g.End+flank

	covA, err := a.depths(ctx, a.cfg.TumorBAM, startA, endA)
	if err != nil {
		return nil, err
	}
	covB, err := a.depths(ctx, a.cfg.TumorBAM, startB, endB)
	if err != nil {
		return nil, err
	}
	meanA := pairing.Round(stat.Mean(covA, nil), 3)
	meanB := pairing.Round(stat.Mean(covB, nil), 3)

	if a.cfg.NormalBAM != "" {
		normA, err := a.depths(ctx, a.cfg.NormalBAM, startA, endA)
		if err != nil {
			return nil, err
		}
		normB, err := a.depths(ctx, a.cfg.NormalBAM, startB, endB)
		if err != nil {
			return nil, err
		}
		subtract(covA, normA)
		subtract(covB, normB)
		meanNormA, meanNormB := stat.Mean(normA, nil), stat.Mean(normB, nil)
		if meanNormA > 0 && meanNormB > 0 {
			meanA = pairing.Round(meanA/(meanNormA/meanNormB), 3)
		}
	}
	if meanA == 0 {
		a.logger.Debug("no coverage upstream of switch region", zap.String("isotype", isotype))
		return nil, nil
	}

	_, p := Wilcoxon(covA, covB)
	reduction := pairing.Round(100-meanB/meanA*100, 3) / a.cfg.Purity

	c := &Call{
		Isotype:     isotype,
		Orientation: key.Orientation,
		Score:       score,
		MeanA:       meanA,
		MeanB:       meanB,
		PValue:      p,
		Reduction:   reduction,
	}
	c.Pass = meanA > minMeanA && reduction >= minReduction && p < maxPValue &&
		(score >= minScore && reduction >= highReduction || score >= highScore && reduction >= minReduction)
	return c, nil
}

func (a *Analyzer) depths(ctx context.Context, bam string, start, end int) ([]float64, error) {
	lines, err := a.provider.Pileup(ctx, pileup.Request{
		Chrom:       a.locus.Chrom,
		Start:       start,
		End:         end,
		BAM:         bam,
		BaseQuality: a.cfg.BaseQuality,
	})
	if err != nil {
		return nil, err
	}
	return pileup.Depths(lines, start, end), nil
}

func subtract(x, y []float64) {
	for i := range min(len(x), len(y)) {
		x[i] -= y[i]
	}
}
