package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/igcall/internal/align"
	"github.com/inodb/igcall/internal/cache"
	"github.com/inodb/igcall/internal/caller"
	"github.com/inodb/igcall/internal/csr"
	"github.com/inodb/igcall/internal/duckdb"
	"github.com/inodb/igcall/internal/locus"
	"github.com/inodb/igcall/internal/output"
	"github.com/inodb/igcall/internal/pileup"
	"github.com/inodb/igcall/internal/transloc"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Call rearrangements, class switches and translocations",
		Long: `Call V(D)J rearrangements on the IG loci, class-switch recombination on the
IGH constant region and oncogenic IG translocations genome-wide.`,
		Example: `  igcall run --reference-dir /data/igcall --tumor tumor.bam
  igcall run --reference-dir ref --genome hg38 --tumor t.bam --normal n.bam --purity 0.7 -o out`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context(), true)
		},
	}
	addSampleFlags(cmd.Flags())
	addRearrangementFlags(cmd.Flags())
	addTranslocationFlags(cmd.Flags())
	return cmd
}

func newTranslocationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translocations",
		Short: "Call oncogenic IG translocations only",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context(), false)
		},
	}
	addSampleFlags(cmd.Flags())
	addTranslocationFlags(cmd.Flags())
	return cmd
}

func addSampleFlags(fs *pflag.FlagSet) {
	d := caller.DefaultConfig()
	fs.StringP("tumor", "T", "", "Tumor alignments (BAM or SAM)")
	fs.StringP("normal", "N", "", "Matched normal alignments (optional)")
	fs.StringP("output-dir", "o", ".", "Output directory")
	fs.String("id", "", "Sample id used to name output files (default: tumor file name)")
	fs.StringP("genome", "V", d.Genome, "Genome version: hg19 or hg38")
	fs.StringP("chrom-prefix", "C", d.ChromPrefix, `Chromosome prefix: "chr" or ""`)
	fs.Float64P("purity", "p", d.Purity, "Tumor purity in (0, 1]")
	fs.String("duckdb", "", "Also store calls in this DuckDB database")
}

func addRearrangementFlags(fs *pflag.FlagSet) {
	d := caller.DefaultConfig()
	names := make([]string, len(d.Loci))
	for i, n := range d.Loci {
		names[i] = string(n)
	}
	fs.StringP("reference-dir", "I", "", "Directory with the IG annotation bundle")
	fs.String("loci", strings.Join(names, ","), "Loci to analyse")
	fs.StringP("reference", "R", "", "Reference FASTA passed to samtools (optional)")
	fs.String("samtools", "samtools", "samtools executable")
	fs.String("seq-type", d.SeqType, "Sequencing type: wgs, wes or capture")
	fs.Int("base-quality", d.BaseQuality, "Minimum base quality in pileups")
	fs.Int("min-depth", d.MinDepth, "Minimum depth to call a base")
	fs.Int("min-alt-depth", d.MinAltDepth, "Minimum reads supporting an alternative base")
	fs.Float64("vaf", d.VAF, "Minimum allele frequency in the tumor")
	fs.Float64("vaf-normal", d.VAFNormal, "Minimum allele frequency in the normal")
	fs.Int("threads", d.Threads, "Junctions reconstructed in parallel")
}

func addTranslocationFlags(fs *pflag.FlagSet) {
	d := caller.DefaultConfig()
	fs.Int("mntonco", d.MinReadsOnco, "Minimum reads to keep a translocation cluster")
	fs.Float64("mntonco-pass", d.PassScoreOnco, "Minimum score of a passing translocation")
	fs.Int("mnnonco", d.MaxNormalOnco, "Maximum normal reads of a passing translocation")
	fs.Int("mapq-onco", d.MapQOnco, "Minimum mapping quality of translocation reads")
}

// configFromViper merges flags, environment and config file values.
func configFromViper(rearrangements bool) (caller.Config, error) {
	cfg := caller.DefaultConfig()
	cfg.TumorBAM = viper.GetString("tumor")
	cfg.NormalBAM = viper.GetString("normal")
	cfg.Genome = viper.GetString("genome")
	cfg.ChromPrefix = viper.GetString("chrom-prefix")
	cfg.Purity = viper.GetFloat64("purity")
	cfg.MinReadsOnco = viper.GetInt("mntonco")
	cfg.PassScoreOnco = viper.GetFloat64("mntonco-pass")
	cfg.MaxNormalOnco = viper.GetInt("mnnonco")
	cfg.MapQOnco = viper.GetInt("mapq-onco")

	if rearrangements {
		loci, err := locus.ParseNames(viper.GetString("loci"))
		if err != nil {
			return cfg, err
		}
		cfg.Loci = loci
		cfg.ReferenceDir = viper.GetString("reference-dir")
		cfg.Reference = viper.GetString("reference")
		cfg.SeqType = strings.ToLower(viper.GetString("seq-type"))
		cfg.BaseQuality = viper.GetInt("base-quality")
		cfg.MinDepth = viper.GetInt("min-depth")
		cfg.MinAltDepth = viper.GetInt("min-alt-depth")
		cfg.VAF = viper.GetFloat64("vaf")
		cfg.VAFNormal = viper.GetFloat64("vaf-normal")
		cfg.Threads = viper.GetInt("threads")
	} else {
		cfg.Loci = nil
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if len(cfg.Loci) > 0 && cfg.ReferenceDir == "" {
		return cfg, errors.New("--reference-dir is required")
	}
	return cfg, nil
}

// sampleID names output files after the tumor input unless --id is set.
func sampleID(id, tumor string) string {
	if id != "" {
		return id
	}
	base := filepath.Base(tumor)
	for _, ext := range []string{".gz", ".bam", ".sam"} {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// calls gathers every table of a run.
type calls struct {
	all, pass []*caller.Call
	csr       []*csr.Call
	transloc  []*transloc.Call
}

func runPipeline(ctx context.Context, rearrangements bool) error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := configFromViper(rearrangements)
	if err != nil {
		return err
	}

	c := caller.New(cfg, pileup.NewSamtoolsProvider(viper.GetString("samtools")))
	c.SetLogger(logger)

	var out calls
	for _, name := range cfg.Loci {
		if err := callLocus(ctx, c, cfg, name, &out); err != nil {
			return err
		}
	}

	out.transloc, err = detectTranslocations(cfg, logger)
	if err != nil {
		return err
	}

	dir := viper.GetString("output-dir")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	prefix := filepath.Join(dir, sampleID(viper.GetString("id"), cfg.TumorBAM))
	if err := writeTables(prefix, &out, rearrangements); err != nil {
		return err
	}

	if path := viper.GetString("duckdb"); path != "" {
		if err := store(path, cfg, &out); err != nil {
			return err
		}
	}

	logger.Info("run complete",
		zap.Int("rearrangements", len(out.all)),
		zap.Int("rearrangements_pass", len(out.pass)),
		zap.Int("class_switch", len(out.csr)),
		zap.Int("translocations", len(out.transloc)))
	return nil
}

// callLocus runs the rearrangement or class-switch pipeline on one locus.
func callLocus(ctx context.Context, c *caller.Caller, cfg caller.Config, name locus.Name, out *calls) error {
	l, err := locus.Lookup(name, cfg.Genome, cfg.ChromPrefix)
	if err != nil {
		return err
	}
	files, err := locus.ReferenceFiles(cfg.ReferenceDir, name, cfg.Genome, cfg.ChromPrefix)
	if err != nil {
		return err
	}
	genes, err := cache.LoadBED(files.BED)
	if err != nil {
		return fmt.Errorf("load %s genes: %w", name, err)
	}

	src, err := align.Open(cfg.TumorBAM)
	if err != nil {
		return fmt.Errorf("open tumor alignments: %w", err)
	}
	defer src.Close()
	region := align.NewRegionSource(src, l.Chrom, l.Start, l.End)

	if name == locus.CSR {
		found, err := c.RunCSR(ctx, l, genes, region)
		if err != nil {
			return err
		}
		out.csr = append(out.csr, found...)
		return nil
	}

	in := caller.Inputs{Genes: genes}
	if files.DCatalog != "" {
		if in.Catalog, err = cache.LoadDCatalog(files.DCatalog); err != nil {
			return fmt.Errorf("load D genes: %w", err)
		}
	}
	res, err := c.Run(ctx, l, in, region)
	if err != nil {
		return err
	}
	out.all = append(out.all, res.All...)
	out.pass = append(out.pass, res.Pass...)
	return nil
}

func detectTranslocations(cfg caller.Config, logger *zap.Logger) ([]*transloc.Call, error) {
	regions, err := locus.Regions(cfg.Genome, cfg.ChromPrefix)
	if err != nil {
		return nil, err
	}
	d := transloc.NewDetector(transloc.Config{
		ChromPrefix: cfg.ChromPrefix,
		Regions:     regions,
		MinMapQ:     cfg.MapQOnco,
		MinReads:    cfg.MinReadsOnco,
		PassScore:   cfg.PassScoreOnco,
		MaxNormal:   cfg.MaxNormalOnco,
		Purity:      cfg.Purity,
	})
	d.SetLogger(logger)

	tumor, err := align.Open(cfg.TumorBAM)
	if err != nil {
		return nil, fmt.Errorf("open tumor alignments: %w", err)
	}
	defer tumor.Close()

	var normal align.Source
	if cfg.NormalBAM != "" {
		n, err := align.Open(cfg.NormalBAM)
		if err != nil {
			return nil, fmt.Errorf("open normal alignments: %w", err)
		}
		defer n.Close()
		normal = n
	}
	return d.Detect(tumor, normal)
}

// rowWriter is implemented by the output table writers.
type rowWriter[T any] interface {
	WriteHeader() error
	Write(T) error
	Flush() error
}

func writeTable[T any](path string, w rowWriter[T], f io.Closer, rows []T) error {
	defer f.Close()
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func create(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return f, nil
}

func writeTables(prefix string, out *calls, rearrangements bool) error {
	if rearrangements {
		var csrPass []*csr.Call
		for _, c := range out.csr {
			if c.Pass {
				csrPass = append(csrPass, c)
			}
		}
		tables := []struct {
			suffix string
			rows   []*caller.Call
		}{
			{"_rearrangements.tsv", out.all},
			{"_rearrangements_pass.tsv", out.pass},
		}
		for _, t := range tables {
			f, err := create(prefix + t.suffix)
			if err != nil {
				return err
			}
			if err := writeTable[*caller.Call](f.Name(), output.NewRearrangementWriter(f), f, t.rows); err != nil {
				return err
			}
		}
		for suffix, rows := range map[string][]*csr.Call{
			"_class_switch.tsv":      out.csr,
			"_class_switch_pass.tsv": csrPass,
		} {
			f, err := create(prefix + suffix)
			if err != nil {
				return err
			}
			if err := writeTable[*csr.Call](f.Name(), output.NewCSRWriter(f), f, rows); err != nil {
				return err
			}
		}
	}

	f, err := create(prefix + "_translocations.tsv")
	if err != nil {
		return err
	}
	if err := writeTable[*transloc.Call](f.Name(), output.NewTranslocationWriter(f), f, out.transloc); err != nil {
		return err
	}
	f, err = create(prefix + "_translocations_pass.tsv")
	if err != nil {
		return err
	}
	return writeTable[*transloc.Call](f.Name(), output.NewTranslocationPassWriter(f), f, out.transloc)
}

func store(path string, cfg caller.Config, out *calls) error {
	s, err := duckdb.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.BeginRun(duckdb.Run{
		Tumor:  cfg.TumorBAM,
		Normal: cfg.NormalBAM,
		Genome: cfg.Genome,
		Purity: cfg.Purity,
	})
	if err != nil {
		return err
	}
	if err := s.WriteRearrangements(id, &caller.Result{All: out.all, Pass: out.pass}); err != nil {
		return err
	}
	if err := s.WriteClassSwitch(id, out.csr); err != nil {
		return err
	}
	return s.WriteTranslocations(id, out.transloc)
}
