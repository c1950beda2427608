// Package consensus reconstructs the tumor and normal sequences across a
// candidate's breakpoints and resolves the D segment between them.
package consensus

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/igcall/internal/breakpoint"
	"github.com/inodb/igcall/internal/cache"
	"github.com/inodb/igcall/internal/locus"
	"github.com/inodb/igcall/internal/pairing"
	"github.com/inodb/igcall/internal/pileup"
)

// Junction holds the reconstructed sequences of one candidate, by gene role.
type Junction struct {
	J       string // tumor J
	D       string // bases between J and V, "" when unresolved
	V       string // tumor V
	VNormal string
	DGene   string // best catalog match, IGH only
	VDJ     string // low + D + high in genomic order, plain bases
	// Sequenced is false for labels without gene sequence (Kde, RSS).
	Sequenced bool
}

// Result is a candidate with its junction. Candidates whose D fragments
// disagree are split into several results sharing the pileup sequences.
type Result struct {
	Candidate *pairing.Candidate
	Junction  *Junction
}

// Label returns the gene label "J - V", or "J - D - V" with a D gene.
func (r *Result) Label() string {
	c := r.Candidate
	if r.Junction != nil && r.Junction.DGene != "" {
		return c.J().Gene + pairing.Sep + r.Junction.DGene + pairing.Sep + c.V().Gene
	}
	return c.Label()
}

// Config holds the sample inputs and calling thresholds.
type Config struct {
	Thresholds
	TumorBAM    string
	NormalBAM   string // optional
	BaseQuality int
	Reference   string // optional FASTA
}

// Builder reconstructs junctions for one locus.
type Builder struct {
	locus    *locus.Locus
	provider pileup.Provider
	cfg      Config
	records  []*breakpoint.Classified
	catalog  []cache.DGene
	logger   *zap.Logger
}

// NewBuilder creates a builder. records are the annotated breakpoint
// records of the locus; catalog is the D-gene catalog (IGH only).
func NewBuilder(l *locus.Locus, p pileup.Provider, cfg Config, records []*breakpoint.Classified, catalog []cache.DGene) *Builder {
	return &Builder{locus: l, provider: p, cfg: cfg, records: records, catalog: catalog, logger: zap.NewNop()}
}

// SetLogger sets the logger.
func (b *Builder) SetLogger(l *zap.Logger) {
	b.logger = l
}

// IsKdeOrRSS reports whether a label names a kappa-deleting element or an
// intron RSS, which carry no gene sequence.
func IsKdeOrRSS(label string) bool {
	return strings.Contains(label, "Kde") || strings.Contains(label, "RSS")
}

// Build reconstructs the junction of c. The first result reuses c; further
// results are clones carrying alternative D segments.
func (b *Builder) Build(ctx context.Context, c *pairing.Candidate) ([]*Result, error) {
	if IsKdeOrRSS(c.Label()) {
		return []*Result{{Candidate: c, Junction: &Junction{}}}, nil
	}

	j := &Junction{Sequenced: true}
	var err error
	if j.J, _, err = b.side(ctx, c.J()); err != nil {
		return nil, fmt.Errorf("J sequence of %s: %w", c.Label(), err)
	}
	if j.V, j.VNormal, err = b.side(ctx, c.V()); err != nil {
		return nil, fmt.Errorf("V sequence of %s: %w", c.Label(), err)
	}

	switch c.Orientation {
	case breakpoint.Inversion1:
		j.J = ReverseComplement(j.J)
	case breakpoint.Inversion2:
		j.V = ReverseComplement(j.V)
		j.VNormal = ReverseComplement(j.VNormal)
	}

	lowSeq, highSeq := j.J, j.V
	if c.VIsLow {
		lowSeq, highSeq = j.V, j.J
	}

	groups := groupFragments(dFragments(c, b.records, lowSeq, highSeq))
	if len(groups) == 0 {
		j.VDJ = Plain(lowSeq + highSeq)
		return []*Result{{Candidate: c, Junction: j}}, nil
	}

	results := make([]*Result, 0, len(groups))
	for i, g := range groups {
		jj := *j
		jj.D = consensusD(g, lowSeq, highSeq)
		if b.locus.MatchD {
			jj.DGene = BestDGene(jj.D, b.catalog)
		}
		jj.VDJ = Plain(lowSeq + jj.D + highSeq)

		cand := c
		if i < len(groups)-1 {
			cand = c.Clone()
		}
		results = append(results, &Result{Candidate: cand, Junction: &jj})
	}
	// The original candidate goes first; clones follow in group order.
	last := results[len(results)-1]
	copy(results[1:], results[:len(results)-1])
	results[0] = last
	return results, nil
}

// side piles up one gene window in the tumor (and normal, when present).
func (b *Builder) side(ctx context.Context, s *pairing.Side) (string, string, error) {
	req := pileup.Request{
		Chrom:       b.locus.Chrom,
		Start:       s.Start,
		End:         s.End,
		BaseQuality: b.cfg.BaseQuality,
		Reference:   b.cfg.Reference,
	}

	normal := unknownCalls(s.Start, s.End)
	if b.cfg.NormalBAM != "" {
		req.BAM = b.cfg.NormalBAM
		lines, err := b.provider.Pileup(ctx, req)
		if err != nil {
			return "", "", fmt.Errorf("normal pileup: %w", err)
		}
		normal = normalCalls(lines, s.Start, s.End, b.cfg.Thresholds)
	}

	req.BAM = b.cfg.TumorBAM
	req.Anomalous = true
	lines, err := b.provider.Pileup(ctx, req)
	if err != nil {
		return "", "", fmt.Errorf("tumor pileup: %w", err)
	}
	tumor, norm := sideSequences(lines, s.Start, s.End, normal, b.cfg.Thresholds)
	return tumor, norm, nil
}

// BuildAll reconstructs every candidate. A candidate whose pileup fails is
// logged and skipped. Originals keep their order; clones are appended.
func (b *Builder) BuildAll(ctx context.Context, candidates []*pairing.Candidate, workers int) ([]*Result, error) {
	var originals, clones []*Result
	collect := func(r built) error {
		if r.err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Warn("skipping candidate",
				zap.String("locus", string(b.locus.Name)),
				zap.String("candidate", r.candidate.Label()),
				zap.Error(r.err))
			return nil
		}
		originals = append(originals, r.results[0])
		clones = append(clones, r.results[1:]...)
		return nil
	}

	if workers <= 1 {
		for i, c := range candidates {
			res, err := b.Build(ctx, c)
			if err := collect(built{index: i, candidate: c, results: res, err: err}); err != nil {
				return nil, err
			}
		}
	} else if err := inCandidateOrder(b.buildConcurrently(ctx, candidates, workers), collect); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.logger.Info("reconstructed junctions",
		zap.String("locus", string(b.locus.Name)),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(originals)+len(clones)))
	return append(originals, clones...), nil
}
