// Package transloc detects rearrangements joining an IG locus to another
// chromosome, or to a distant region of its own chromosome, from discordant
// and split reads.
package transloc

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/igcall/internal/align"
	"github.com/inodb/igcall/internal/locus"
	"github.com/inodb/igcall/internal/pairing"
)

const (
	// Tolerance is the distance within which reads join a cluster.
	Tolerance = 1000
	// MinMateDistance separates same-chromosome mates in the tumor.
	MinMateDistance = 10000
	// MinMateDistanceNormal is the more permissive threshold used for the normal.
	MinMateDistanceNormal = 8000
)

// Mechanisms.
const (
	Deletion      = "Deletion"
	Gain          = "Gain"
	Inversion     = "Inversion"
	Translocation = "Translocation"
)

// Config holds detection thresholds.
type Config struct {
	ChromPrefix string
	Regions     []locus.Region // IG loci, in reporting order
	MinMapQ     int            // mapq-onco
	MinReads    int            // mntonco: reads needed to keep a cluster
	PassScore   float64        // mntonco-pass
	MaxNormal   int            // mnnonco
	Purity      float64
}

// Side is one end of a cluster.
type Side struct {
	Chrom    string
	Min, Max int
	Strand   byte
}

// Breakpoint returns Max on the plus strand and Min on the minus strand.
func (s Side) Breakpoint() int {
	if s.Strand == '+' {
		return s.Max
	}
	return s.Min
}

func (s Side) near(pos int, strand byte) bool {
	return s.Strand == strand && (abs(pos-s.Min) < Tolerance || abs(pos-s.Max) < Tolerance)
}

func (s Side) covers(pos int, strand byte) bool {
	return s.Strand == strand && s.Min-Tolerance <= pos && pos <= s.Max+Tolerance
}

func (s *Side) widen(pos int) {
	s.Min = min(s.Min, pos)
	s.Max = max(s.Max, pos)
}

// Cluster groups reads supporting one rearrangement. In lies in an IG locus.
type Cluster struct {
	In, Out Side
	Reads   int
	Normal  int // supporting reads in the normal
}

// Call is a classified cluster.
type Call struct {
	Cluster    *Cluster
	Annotation string // del(chr14:a-b), gain(...), inv(...) or t(a;b)
	Mechanism  string
	Score      float64
	// Normal is the normal read count, "NA" without a normal sample.
	Normal string
	A, B   Breakpoint
	Pass   bool
}

// Breakpoint is a reported position.
type Breakpoint struct {
	Chrom  string
	Pos    int
	Strand byte
}

// PassAnnotation returns the annotation extended with the breakpoints.
func (c *Call) PassAnnotation() string {
	if c.Mechanism == Translocation {
		return fmt.Sprintf("%s [%s:%d:%c;%s:%d:%c]", c.Annotation,
			c.A.Chrom, c.A.Pos, c.A.Strand, c.B.Chrom, c.B.Pos, c.B.Strand)
	}
	return fmt.Sprintf("%s [%c/%c]", c.Annotation, c.A.Strand, c.B.Strand)
}

type observation struct {
	inPos     int
	inStrand  byte
	outPos    int
	outStrand byte
}

type pairKey struct {
	in, out string
}

// Detector finds IG rearrangements with distant partners.
type Detector struct {
	cfg     Config
	allowed map[string]bool
	regions map[string]locus.Region
	logger  *zap.Logger
}

// NewDetector creates a detector.
func NewDetector(cfg Config) *Detector {
	d := &Detector{
		cfg:     cfg,
		allowed: make(map[string]bool, 24),
		regions: make(map[string]locus.Region, len(cfg.Regions)),
		logger:  zap.NewNop(),
	}
	// chr22 is allowed as a partner; it also carries IGL.
	for i := 1; i <= 22; i++ {
		d.allowed[cfg.ChromPrefix+strconv.Itoa(i)] = true
	}
	d.allowed[cfg.ChromPrefix+"X"] = true
	d.allowed[cfg.ChromPrefix+"Y"] = true
	for _, r := range cfg.Regions {
		d.regions[r.Chrom] = r
	}
	return d
}

// SetLogger sets the logger.
func (d *Detector) SetLogger(l *zap.Logger) {
	d.logger = l
}

// Detect clusters tumor reads and counts support in the normal, which may
// be nil. Calls are sorted by read count, highest first.
func (d *Detector) Detect(tumor, normal align.Source) ([]*Call, error) {
	order, obs, err := d.observe(tumor, MinMateDistance)
	if err != nil {
		return nil, fmt.Errorf("scan tumor: %w", err)
	}
	clusters := d.cluster(order, obs)

	if normal != nil {
		_, nobs, err := d.observe(normal, MinMateDistanceNormal)
		if err != nil {
			return nil, fmt.Errorf("scan normal: %w", err)
		}
		countNormal(clusters, nobs)
	}

	var all []*Cluster
	for _, k := range order {
		all = append(all, clusters[k]...)
	}
	slices.SortStableFunc(all, func(a, b *Cluster) int { return b.Reads - a.Reads })

	calls := make([]*Call, len(all))
	for i, c := range all {
		calls[i] = d.classify(c, normal != nil)
	}
	d.logger.Info("translocation detection",
		zap.Int("clusters", len(calls)))
	return calls, nil
}

// observe reads src and groups usable observations by chromosome pair.
// Pairs are ordered by IG locus, then by first appearance of the partner.
func (d *Detector) observe(src align.Source, mateDistance int) ([]pairKey, map[pairKey][]observation, error) {
	obs := make(map[pairKey][]observation)
	seen := make(map[pairKey]bool)
	var found []pairKey
	for {
		r, err := src.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		k, o, ok := d.observation(r, mateDistance)
		if !ok {
			continue
		}
		if !seen[k] {
			seen[k] = true
			found = append(found, k)
		}
		obs[k] = append(obs[k], o)
	}

	var order []pairKey
	for _, reg := range d.cfg.Regions {
		for _, k := range found {
			if k.in == reg.Chrom {
				order = append(order, k)
			}
		}
	}
	return order, obs, nil
}

func (d *Detector) observation(r *align.Record, mateDistance int) (pairKey, observation, bool) {
	if r.MapQ < d.cfg.MinMapQ || len(r.Cigar) == 0 {
		return pairKey{}, observation{}, false
	}
	reg, ok := d.regions[r.Ref]
	if !ok || r.Pos < reg.Start || r.Pos > reg.End {
		return pairKey{}, observation{}, false
	}
	switch {
	case r.MateRef == align.SameRef:
		if abs(r.Pos-r.MatePos) <= mateDistance {
			return pairKey{}, observation{}, false
		}
		if r.MatePos >= reg.Start && r.MatePos <= reg.End {
			return pairKey{}, observation{}, false
		}
	case !d.allowed[r.MateRef]:
		return pairKey{}, observation{}, false
	}

	o := observation{
		inPos:     r.Pos,
		inStrand:  r.Strand(),
		outStrand: r.MateStrand(),
	}
	if o.inStrand == '+' {
		o.inPos = r.Pos + align.RefLength(r.Cigar) - 1
	}

	k := pairKey{in: r.Ref}
	if sa := r.SA; sa != nil && d.allowed[sa.Chrom] {
		k.out = sa.Chrom
		o.outPos = sa.Pos
		if sa.Strand == '-' {
			o.outPos = sa.Pos + align.RefLength(sa.Cigar) - 1
		}
	} else {
		k.out = r.MateRef
		if k.out == align.SameRef {
			k.out = r.Ref
		}
		o.outPos = r.MatePos
	}
	return k, o, true
}

// cluster merges observations greedily in order. An observation first
// joins an emitted cluster close to its extremes, then the open cluster
// close to any member; otherwise the open cluster is emitted when large
// enough and a new one starts.
func (d *Detector) cluster(order []pairKey, obs map[pairKey][]observation) map[pairKey][]*Cluster {
	out := make(map[pairKey][]*Cluster, len(order))
	for _, k := range order {
		var emitted []*Cluster
		var open *openCluster
		flush := func() {
			if open != nil && len(open.in) >= d.cfg.MinReads {
				emitted = append(emitted, open.close(k))
			}
			open = nil
		}

		for _, o := range obs[k] {
			if joined(emitted, o) {
				continue
			}
			switch {
			case open == nil:
				open = newOpen(o)
			case open.accepts(o):
				open.in = append(open.in, o.inPos)
				open.out = append(open.out, o.outPos)
			default:
				flush()
				open = newOpen(o)
			}
		}
		flush()
		out[k] = emitted
	}
	return out
}

func joined(emitted []*Cluster, o observation) bool {
	for _, c := range emitted {
		if c.In.near(o.inPos, o.inStrand) && c.Out.near(o.outPos, o.outStrand) {
			c.In.widen(o.inPos)
			c.Out.widen(o.outPos)
			c.Reads++
			return true
		}
	}
	return false
}

type openCluster struct {
	in, out             []int
	inStrand, outStrand byte
}

func newOpen(o observation) *openCluster {
	return &openCluster{
		in:        []int{o.inPos},
		out:       []int{o.outPos},
		inStrand:  o.inStrand,
		outStrand: o.outStrand,
	}
}

func (c *openCluster) accepts(o observation) bool {
	return c.inStrand == o.inStrand && c.outStrand == o.outStrand &&
		nearest(c.in, o.inPos) < Tolerance && nearest(c.out, o.outPos) < Tolerance
}

func (c *openCluster) close(k pairKey) *Cluster {
	return &Cluster{
		In:    Side{Chrom: k.in, Min: slices.Min(c.in), Max: slices.Max(c.in), Strand: c.inStrand},
		Out:   Side{Chrom: k.out, Min: slices.Min(c.out), Max: slices.Max(c.out), Strand: c.outStrand},
		Reads: len(c.in),
	}
}

// countNormal adds each normal observation to every cluster covering it.
func countNormal(clusters map[pairKey][]*Cluster, obs map[pairKey][]observation) {
	for k, list := range obs {
		for _, o := range list {
			for _, c := range clusters[k] {
				if c.In.covers(o.inPos, o.inStrand) && c.Out.covers(o.outPos, o.outStrand) {
					c.Normal++
				}
			}
		}
	}
}

func (d *Detector) classify(c *Cluster, hasNormal bool) *Call {
	call := &Call{
		Cluster: c,
		Score:   pairing.Round(float64(c.Reads)/d.cfg.Purity, 1),
		Normal:  "NA",
		Pass:    true,
	}
	if hasNormal {
		call.Normal = strconv.Itoa(c.Normal)
		call.Pass = c.Normal <= d.cfg.MaxNormal
	}
	call.Pass = call.Pass && call.Score >= d.cfg.PassScore

	a, b := c.In, c.Out
	if c.In.Chrom == c.Out.Chrom {
		if a.Breakpoint() >= b.Breakpoint() {
			a, b = b, a
		}
		call.A, call.B = breakpointOf(a), breakpointOf(b)
		span := fmt.Sprintf("(%s:%d-%d)", a.Chrom, call.A.Pos, call.B.Pos)
		switch {
		case a.Strand == '+' && b.Strand == '-':
			call.Mechanism, call.Annotation = Deletion, "del"+span
		case a.Strand == '-' && b.Strand == '+':
			call.Mechanism, call.Annotation = Gain, "gain"+span
		default:
			call.Mechanism, call.Annotation = Inversion, "inv"+span
		}
		return call
	}

	na, nb := d.chromNumber(a.Chrom), d.chromNumber(b.Chrom)
	if na > nb {
		a, b = b, a
		na, nb = nb, na
	}
	call.A, call.B = breakpointOf(a), breakpointOf(b)
	call.Mechanism = Translocation
	call.Annotation = fmt.Sprintf("t(%s;%s)", chromName(na), chromName(nb))
	return call
}

func breakpointOf(s Side) Breakpoint {
	return Breakpoint{Chrom: s.Chrom, Pos: s.Breakpoint(), Strand: s.Strand}
}

// chromNumber orders chromosomes numerically with X and Y last.
func (d *Detector) chromNumber(chrom string) int {
	name := strings.TrimPrefix(chrom, d.cfg.ChromPrefix)
	switch name {
	case "X":
		return 23
	case "Y":
		return 24
	}
	n, err := strconv.Atoi(name)
	if err != nil {
		return 0
	}
	return n
}

func chromName(n int) string {
	switch n {
	case 23:
		return "X"
	case 24:
		return "Y"
	}
	return strconv.Itoa(n)
}

func nearest(list []int, pos int) int {
	best := -1
	for _, p := range list {
		if d := abs(p - pos); best < 0 || d < best {
			best = d
		}
	}
	return best
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
