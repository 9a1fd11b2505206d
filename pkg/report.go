package dupefilehash

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Report is the outcome of one duplicate scan
type Report struct {
	Root        string           `json:"root"`
	Algorithm   string           `json:"algorithm"`
	GeneratedAt time.Time        `json:"generated_at"`
	Groups      []DuplicateGroup `json:"groups"`
	Scan        *ScanResult      `json:"scan"`
	Index       IndexStats       `json:"index"`
	BytesRead   int64            `json:"bytes_read"`
}

// DuplicateFiles returns the number of files that are a copy of another file
func (r *Report) DuplicateFiles() int {
	total := 0
	for _, g := range r.Groups {
		total += g.Count - 1
	}
	return total
}

// WastedBytes returns the bytes reclaimable by keeping one copy per group
func (r *Report) WastedBytes() int64 {
	var total int64
	for _, g := range r.Groups {
		total += g.WastedBytes()
	}
	return total
}

// WriteReport renders r in the given format: human, json or fdupes
func WriteReport(w io.Writer, format string, r *Report) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return writeLines(w, [][]byte{data, []byte("\n")})
	case FormatFdupes:
		return writeLines(w, fdupesLines(r))
	case FormatHuman, "":
		return writeLines(w, humanLines(r))
	default:
		return ValidateOutputFormat(format)
	}
}

// fdupesLines lists paths one per line with a blank line after each group
func fdupesLines(r *Report) [][]byte {
	var lines [][]byte
	for _, g := range r.Groups {
		for _, path := range g.Files {
			lines = append(lines, []byte(path+"\n"))
		}
		lines = append(lines, []byte("\n"))
	}
	return lines
}

func humanLines(r *Report) [][]byte {
	var lines [][]byte
	add := func(format string, args ...interface{}) {
		lines = append(lines, []byte(fmt.Sprintf(format, args...)))
	}

	for _, g := range r.Groups {
		add("%s  %s each, %d files", g.Hash, humanize.IBytes(uint64(g.Size)), g.Count)
		if g.HardLinks > 0 {
			add(" (%d hard links)", g.HardLinks)
		}
		add("\n")
		for _, path := range g.Files {
			add("    %s\n", path)
		}
		add("\n")
	}

	if len(r.Groups) == 0 {
		add("No duplicate files found.\n")
	}

	if r.Scan != nil {
		add("Scanned %s files under %s in %v\n",
			humanize.Comma(r.Scan.FilesSeen), r.Root, r.Scan.Duration.Round(time.Millisecond))
	}
	add("%d duplicate groups, %s duplicate files, %s reclaimable\n",
		len(r.Groups), humanize.Comma(int64(r.DuplicateFiles())), humanize.IBytes(uint64(r.WastedBytes())))
	add("%s files hashed with %s (%s read)\n",
		humanize.Comma(r.Index.HashOps), r.Algorithm, humanize.IBytes(uint64(r.BytesRead)))
	if r.Scan != nil && len(r.Scan.Failures) > 0 {
		add("%d files could not be read:\n", len(r.Scan.Failures))
		for _, f := range r.Scan.Failures {
			add("    %s: %s\n", f.Path, f.Message)
		}
	}
	return lines
}

// writeLines writes all lines to w, using vectored writes when w is a file
func writeLines(w io.Writer, lines [][]byte) error {
	if file, ok := w.(*os.File); ok {
		return writeVectored(file, lines)
	}

	return writeBuffered(w, lines)
}

func writeBuffered(w io.Writer, lines [][]byte) error {
	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}
