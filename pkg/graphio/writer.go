package graphio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// WriteAssignments emits one "row exemplar" line per data point, tab
// separated, in ascending row order. Unassigned rows are written with
// exemplar -1.
func WriteAssignments(w io.Writer, assignments map[int64]int64) error {
	rows := make([]int64, 0, len(assignments))
	for row := range assignments {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i] < rows[j] })

	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%d\t%d\n", row, assignments[row]); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}
	return nil
}

func WriteAssignmentsFile(path string, assignments map[int64]int64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := WriteAssignments(file, assignments); err != nil {
		return err
	}
	return file.Close()
}
