// Package caller runs the rearrangement pipeline for one locus: evidence
// classification, gene annotation, pairing, junction reconstruction,
// productivity and filtering.
package caller

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/igcall/internal/align"
	"github.com/inodb/igcall/internal/annotate"
	"github.com/inodb/igcall/internal/breakpoint"
	"github.com/inodb/igcall/internal/cache"
	"github.com/inodb/igcall/internal/consensus"
	"github.com/inodb/igcall/internal/csr"
	"github.com/inodb/igcall/internal/filter"
	"github.com/inodb/igcall/internal/locus"
	"github.com/inodb/igcall/internal/pairing"
	"github.com/inodb/igcall/internal/pileup"
	"github.com/inodb/igcall/internal/productivity"
)

// Call is a rearrangement call.
type Call struct {
	Locus     locus.Name
	Label     string
	Candidate *pairing.Candidate
	Junction  *consensus.Junction

	Productivity string
	CDR3         string
	Homology     productivity.Homology
	Score        float64 // purity adjusted
	RawScore     int
	MapQ         string // "mean (min-max)" or NA
}

// Result holds the calls of one locus.
type Result struct {
	All  []*Call
	Pass []*Call
}

// Inputs are the per-locus reference data.
type Inputs struct {
	Genes   *cache.Annotation
	Catalog []cache.DGene // D genes, IGH only
}

// Caller runs the pipeline.
type Caller struct {
	cfg      Config
	provider pileup.Provider
	logger   *zap.Logger
}

// New creates a caller. provider serves pileups for junction reconstruction
// and class-switch coverage.
func New(cfg Config, provider pileup.Provider) *Caller {
	return &Caller{cfg: cfg, provider: provider, logger: zap.NewNop()}
}

// SetLogger sets the logger passed down to every stage.
func (c *Caller) SetLogger(l *zap.Logger) {
	c.logger = l
}

// classify builds and annotates the breakpoint table of src.
func (c *Caller) classify(l *locus.Locus, genes *cache.Annotation, src align.Source) ([]*breakpoint.Classified, error) {
	table, err := breakpoint.NewClassifier(l).Build(src)
	if err != nil {
		return nil, fmt.Errorf("classify %s records: %w", l.Name, err)
	}
	a := annotate.NewAnnotator(l, genes)
	a.SetLogger(c.logger)
	annotated := a.Annotate(table)
	c.logger.Info("classified records",
		zap.String("locus", string(l.Name)),
		zap.Int("informative", table.Len()),
		zap.Int("annotated", len(annotated)))
	return annotated, nil
}

// Run calls rearrangements of locus l from the tumor records in src.
func (c *Caller) Run(ctx context.Context, l *locus.Locus, in Inputs, src align.Source) (*Result, error) {
	records, err := c.classify(l, in.Genes, src)
	if err != nil {
		return nil, err
	}

	p := pairing.NewPairer(l, in.Genes)
	p.SetLogger(c.logger)
	paired := p.Pair(records)

	b := consensus.NewBuilder(l, c.provider, consensus.Config{
		Thresholds: consensus.Thresholds{
			MinDepth:    c.cfg.MinDepth,
			MinAltDepth: c.cfg.MinAltDepth,
			VAF:         c.cfg.VAF,
			VAFNormal:   c.cfg.VAFNormal,
			Purity:      c.cfg.Purity,
		},
		TumorBAM:    c.cfg.TumorBAM,
		NormalBAM:   c.cfg.NormalBAM,
		BaseQuality: c.cfg.BaseQuality,
		Reference:   c.cfg.Reference,
	}, records, in.Catalog)
	b.SetLogger(c.logger)
	built, err := b.BuildAll(ctx, paired.Candidates, c.cfg.Threads)
	if err != nil {
		return nil, fmt.Errorf("reconstruct %s junctions: %w", l.Name, err)
	}

	analyzer := productivity.NewAnalyzer(l)
	res := &Result{All: make([]*Call, 0, len(built))}
	views := make([]*filter.Call, 0, len(built))
	for i, r := range built {
		verdict := analyzer.Analyze(r.Junction)
		call := &Call{
			Locus:        l.Name,
			Label:        r.Label(),
			Candidate:    r.Candidate,
			Junction:     r.Junction,
			Productivity: verdict.Label,
			CDR3:         verdict.CDR3,
			Homology:     verdict.Homology,
			Score:        r.Candidate.Score(c.cfg.Purity),
			RawScore:     r.Candidate.RawScore(),
			MapQ:         MapQSummary(records, r.Candidate),
		}
		res.All = append(res.All, call)
		views = append(views, &filter.Call{
			Index:        i,
			Label:        call.Label,
			Orientation:  r.Candidate.Orientation,
			Score:        call.Score,
			SplitReads:   r.Candidate.SplitReads,
			Productivity: call.Productivity,
			CDR3:         call.CDR3,
			V:            r.Junction.V,
			J:            r.Junction.J,
		})
	}

	for _, v := range filter.Apply(views, filter.Options{SeqType: c.cfg.SeqType, Distal: l.Name == locus.IGK}) {
		call := *res.All[v.Index]
		call.Label = v.Label
		res.Pass = append(res.Pass, &call)
	}

	c.logger.Info("called rearrangements",
		zap.String("locus", string(l.Name)),
		zap.Int("all", len(res.All)),
		zap.Int("pass", len(res.Pass)))
	return res, nil
}

// RunCSR analyses class-switch recombination on the CSR locus. regions
// holds the switch regions.
func (c *Caller) RunCSR(ctx context.Context, l *locus.Locus, regions *cache.Annotation, src align.Source) ([]*csr.Call, error) {
	records, err := c.classify(l, regions, src)
	if err != nil {
		return nil, err
	}
	p := pairing.NewPairer(l, regions)
	p.SetLogger(c.logger)
	paired := p.Pair(records)

	a := csr.NewAnalyzer(l, c.provider, regions, csr.Config{
		TumorBAM:    c.cfg.TumorBAM,
		NormalBAM:   c.cfg.NormalBAM,
		BaseQuality: c.cfg.BaseQuality,
		Purity:      c.cfg.Purity,
	})
	a.SetLogger(c.logger)
	calls, err := a.Analyze(ctx, paired.Counts)
	if err != nil {
		return nil, fmt.Errorf("class switch analysis: %w", err)
	}
	return calls, nil
}
