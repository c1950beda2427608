package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/igcall/internal/caller"
	"github.com/inodb/igcall/internal/csr"
	"github.com/inodb/igcall/internal/output"
	"github.com/inodb/igcall/internal/transloc"
)

// Run describes one invocation of the caller.
type Run struct {
	Tumor  string
	Normal string
	Genome string
	Purity float64
}

// BeginRun registers a run and returns its id.
func (s *Store) BeginRun(r Run) (string, error) {
	id := uuid.NewString()
	var normal any
	if r.Normal != "" {
		normal = r.Normal
	}
	if _, err := s.db.Exec(`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC(), r.Tumor, normal, r.Genome, r.Purity); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// appendRows opens an appender on table and hands it to fill.
func (s *Store) appendRows(table string, fill func(*goduckdb.Appender) error) error {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create %s appender: %w", table, err)
	}
	defer appender.Close()

	if err := fill(appender); err != nil {
		return err
	}
	return appender.Flush()
}

// WriteRearrangements appends every call of res. Calls that survived
// filtering are stored with their final label and pass set.
func (s *Store) WriteRearrangements(runID string, res *caller.Result) error {
	if res == nil || len(res.All) == 0 {
		return nil
	}
	passed := make(map[*caller.Call]*caller.Call, len(res.Pass))
	for _, p := range res.Pass {
		for _, c := range res.All {
			if c.Candidate == p.Candidate && c.Junction == p.Junction {
				passed[c] = p
				break
			}
		}
	}

	return s.appendRows("rearrangements", func(a *goduckdb.Appender) error {
		for _, c := range res.All {
			label, pass := c.Label, false
			if p, ok := passed[c]; ok {
				label, pass = p.Label, true
			}
			var homology any
			if c.Homology.Valid {
				homology = c.Homology.Pct()
			}
			cand, j := c.Candidate, c.Junction
			if err := a.AppendRow(
				runID, string(c.Locus), label, string(cand.Orientation),
				int64(cand.SplitReads), int64(cand.InsertReads),
				int64(cand.J().Start), int64(cand.J().End),
				int64(cand.V().Start), int64(cand.V().End),
				nullable(j.D), nullable(j.DGene), nullable(j.VDJ),
				homology, c.Productivity, nullable(c.CDR3), c.Score,
				nullable(c.MapQ), pass,
			); err != nil {
				return fmt.Errorf("append rearrangement %s: %w", c.Label, err)
			}
		}
		return nil
	})
}

// WriteTranslocations appends translocation calls.
func (s *Store) WriteTranslocations(runID string, calls []*transloc.Call) error {
	if len(calls) == 0 {
		return nil
	}
	return s.appendRows("translocations", func(a *goduckdb.Appender) error {
		for _, c := range calls {
			var normal any
			if c.Normal != output.NA {
				normal = int64(c.Cluster.Normal)
			}
			if err := a.AppendRow(
				runID, c.Annotation, c.Mechanism,
				c.A.Chrom, int64(c.A.Pos), string(c.A.Strand),
				c.B.Chrom, int64(c.B.Pos), string(c.B.Strand),
				int64(c.Cluster.Reads), normal, c.Score, c.Pass,
			); err != nil {
				return fmt.Errorf("append translocation %s: %w", c.Annotation, err)
			}
		}
		return nil
	})
}

// WriteClassSwitch appends class-switch calls.
func (s *Store) WriteClassSwitch(runID string, calls []*csr.Call) error {
	if len(calls) == 0 {
		return nil
	}
	return s.appendRows("class_switch", func(a *goduckdb.Appender) error {
		for _, c := range calls {
			if err := a.AppendRow(
				runID, c.Isotype, string(c.Orientation), c.Score,
				c.MeanA, c.MeanB, c.PValue, c.Reduction, c.Pass,
			); err != nil {
				return fmt.Errorf("append class switch %s: %w", c.Isotype, err)
			}
		}
		return nil
	})
}

// CountRows returns the number of rows a run wrote to table.
func (s *Store) CountRows(table, runID string) (int, error) {
	switch table {
	case "rearrangements", "translocations", "class_switch":
	default:
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int
	err := s.db.QueryRow("SELECT count(*) FROM "+table+" WHERE run_id = ?", runID).Scan(&n)
	return n, err
}

func nullable(s string) any {
	if s == "" || s == output.NA {
		return nil
	}
	return s
}
