package pileup

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// SamtoolsProvider runs samtools mpileup.
type SamtoolsProvider struct {
	// Path is the samtools executable.
	Path string
}

// NewSamtoolsProvider creates a provider; an empty path means "samtools" on PATH.
func NewSamtoolsProvider(path string) *SamtoolsProvider {
	if path == "" {
		path = "samtools"
	}
	return &SamtoolsProvider{Path: path}
}

// Args returns the mpileup arguments for req.
func (p *SamtoolsProvider) Args(req Request) []string {
	args := []string{"mpileup", "-B"}
	if req.Anomalous {
		args = append(args, "-A")
	}
	args = append(args, "-Q", strconv.Itoa(req.BaseQuality))
	if req.Reference != "" {
		args = append(args, "-f", req.Reference)
	}
	return append(args, "-r", req.Region(), req.BAM)
}

// Pileup runs samtools and parses its output. Empty output is not an error.
func (p *SamtoolsProvider) Pileup(ctx context.Context, req Request) ([]Line, error) {
	cmd := exec.CommandContext(ctx, p.Path, p.Args(req)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("samtools mpileup %s: %w: %s", req.Region(), err, strings.TrimSpace(stderr.String()))
	}
	lines, err := ReadLines(&stdout)
	if err != nil {
		return nil, fmt.Errorf("samtools mpileup %s: %w", req.Region(), err)
	}
	return lines, nil
}
