package store

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// Interchange formats for handing the strings to human translators.
const (
	FormatTSV  = "tsv"
	FormatXLSX = "xlsx"
)

const sheetName = "strings"

var header = []string{"id", "source", "translation"}

// ImportMismatchError reports an interchange row whose source text no longer
// matches the store.
type ImportMismatchError struct {
	Row    int
	ID     int
	Reason string
}

func (e *ImportMismatchError) Error() string {
	return fmt.Sprintf("row %d (id %d): %s", e.Row, e.ID, e.Reason)
}

// ExportTSV writes id, source and translation columns to w.
func (s *Store) ExportTSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, strings.Join(header, "\t"))
	for _, e := range s.entries {
		translation := ""
		if e.Translation != nil {
			translation = *e.Translation
		}
		fmt.Fprintf(bw, "%d\t%s\t%s\n", e.ID, escapeTSV(e.Source), escapeTSV(translation))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write TSV: %w", err)
	}
	log.Debug().Int("entries", len(s.entries)).Msg("Exported strings to TSV")
	return nil
}

// ImportTSV reads rows written by ExportTSV and applies non-empty
// translations. It returns the number of translations set.
func (s *Store) ImportTSV(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var rows [][]string
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			rows = append(rows, nil)
			continue
		}
		cols := strings.Split(line, "\t")
		for i := range cols {
			cols[i] = unescapeTSV(cols[i])
		}
		rows = append(rows, cols)
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read TSV: %w", err)
	}
	return s.applyRows(rows)
}

// ExportXLSX writes a single-sheet workbook to path.
func (s *Store) ExportXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &[]any{header[0], header[1], header[2]}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, e := range s.entries {
		translation := ""
		if e.Translation != nil {
			translation = *e.Translation
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &[]any{e.ID, e.Source, translation}); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	log.Debug().Str("path", path).Int("entries", len(s.entries)).Msg("Exported strings to XLSX")
	return nil
}

// ImportXLSX reads the first sheet of the workbook at path and applies
// non-empty translations. It returns the number of translations set.
func (s *Store) ImportXLSX(path string) (int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return 0, fmt.Errorf("read workbook rows: %w", err)
	}
	return s.applyRows(rows)
}

// applyRows validates every row before setting any translation, so a bad
// row leaves the store unchanged.
func (s *Store) applyRows(rows [][]string) (int, error) {
	type update struct {
		id    int
		value string
	}
	var updates []update

	for i, cols := range rows {
		rowNum := i + 1
		if len(cols) == 0 || (len(cols) == 1 && cols[0] == "") {
			continue
		}
		if i == 0 && cols[0] == header[0] {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(cols[0]))
		if err != nil {
			return 0, &ImportMismatchError{Row: rowNum, Reason: fmt.Sprintf("invalid id %q", cols[0])}
		}
		source, ok := s.Source(id)
		if !ok {
			return 0, &ImportMismatchError{Row: rowNum, ID: id, Reason: "unknown id"}
		}
		if len(cols) < 2 || cols[1] != source {
			return 0, &ImportMismatchError{Row: rowNum, ID: id, Reason: "source text does not match the store"}
		}
		if len(cols) < 3 || cols[2] == "" {
			continue
		}
		updates = append(updates, update{id: id, value: cols[2]})
	}

	for _, u := range updates {
		if err := s.SetTranslation(u.id, u.value); err != nil {
			return 0, err
		}
	}
	return len(updates), nil
}

// escapeTSV replaces tabs, newlines and backslashes so each entry stays on one line.
func escapeTSV(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\t", "\\t")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}

func unescapeTSV(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			sb.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 't':
			sb.WriteByte('\t')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}
