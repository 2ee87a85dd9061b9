package catalog

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// Field positions in the pipe-separated hip_main.dat record.
const (
	fieldHIP    = 1
	fieldVmag   = 5
	fieldRA     = 8
	fieldDec    = 9
	fieldPlx    = 11
	fieldPMRA   = 12
	fieldPMDec  = 13
	minFieldNum = fieldPMDec + 1
)

// Parse reads Hipparcos main catalog records from r. Gzip-compressed input
// is detected and decompressed. Rows without a magnitude or astrometric
// solution are skipped with a warning log.
func Parse(r io.Reader, logger *slog.Logger) ([]Star, error) {
	br := bufio.NewReader(r)
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer zr.Close()
		br = bufio.NewReader(zr)
	}

	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var stars []Star
	var skipped int
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r\n ")
		if line == "" {
			continue
		}

		star, err := parseRecord(line)
		if err != nil {
			skipped++
			logger.Warn("skipping catalog row", "line", lineNum, "error", err)
			continue
		}
		stars = append(stars, star)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading catalog data: %w", err)
	}

	if skipped > 0 {
		logger.Info("catalog rows skipped", "skipped", skipped, "parsed", len(stars))
	}
	return stars, nil
}

func parseRecord(line string) (Star, error) {
	fields := strings.Split(line, "|")
	if len(fields) < minFieldNum {
		return Star{}, fmt.Errorf("expected at least %d fields, got %d", minFieldNum, len(fields))
	}

	hipStr := strings.TrimSpace(fields[fieldHIP])
	hip, err := strconv.Atoi(hipStr)
	if err != nil || hip <= 0 {
		return Star{}, fmt.Errorf("invalid HIP number %q", hipStr)
	}

	var s Star
	s.HIP = hip
	for _, f := range []struct {
		name string
		idx  int
		dst  *float64
	}{
		{"Vmag", fieldVmag, &s.Magnitude},
		{"RAdeg", fieldRA, &s.RADegrees},
		{"DEdeg", fieldDec, &s.DecDegrees},
		{"Plx", fieldPlx, &s.ParallaxMas},
		{"pmRA", fieldPMRA, &s.PMRAMasPerYear},
		{"pmDE", fieldPMDec, &s.PMDecMasPerYear},
	} {
		raw := strings.TrimSpace(fields[f.idx])
		if raw == "" {
			return Star{}, fmt.Errorf("HIP %d: missing %s", hip, f.name)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Star{}, fmt.Errorf("HIP %d: invalid %s %q", hip, f.name, raw)
		}
		*f.dst = v
	}
	return s, nil
}
