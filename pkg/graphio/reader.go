// Package graphio reads similarity inputs and writes clustering results.
// All text formats are whitespace separated, one record per line; blank
// lines and lines starting with '#' are skipped.
package graphio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/distributed-affinity/pkg/graph"
)

// ReadDense parses the dense matrix format: each line is a row index
// followed by one similarity per column, columns numbered 1..n by position.
//
//	1 1 1 5
//	2 1 1 3
//	3 5 3 1
func ReadDense(r io.Reader) ([]graph.Similarity, error) {
	var similarities []graph.Similarity
	err := scanLines(r, func(lineNum int, fields []string) error {
		if len(fields) < 2 {
			return fmt.Errorf("line %d: expected a row index and at least one value, got %d fields", lineNum, len(fields))
		}
		row, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid row index %q: %w", lineNum, fields[0], err)
		}
		for col, field := range fields[1:] {
			value, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return fmt.Errorf("line %d, column %d: invalid value %q: %w", lineNum, col+1, field, err)
			}
			similarities = append(similarities, graph.Similarity{
				Row:   row,
				Col:   int64(col + 1),
				Value: value,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return similarities, nil
}

// ReadSparse parses the sparse triple format: row index, column index,
// similarity. Pairs not listed carry no edge at all.
func ReadSparse(r io.Reader) ([]graph.Similarity, error) {
	var similarities []graph.Similarity
	err := scanLines(r, func(lineNum int, fields []string) error {
		if len(fields) != 3 {
			return fmt.Errorf("line %d: expected 3 fields, got %d", lineNum, len(fields))
		}
		row, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid row index %q: %w", lineNum, fields[0], err)
		}
		col, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid column index %q: %w", lineNum, fields[1], err)
		}
		value, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid value %q: %w", lineNum, fields[2], err)
		}
		similarities = append(similarities, graph.Similarity{Row: row, Col: col, Value: value})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return similarities, nil
}

// ReadPoints parses raw feature vectors, one point per line. Every line
// must carry the same number of features; point indices are assigned in
// file order starting at 1.
func ReadPoints(r io.Reader) ([][]float64, error) {
	var points [][]float64
	err := scanLines(r, func(lineNum int, fields []string) error {
		point := make([]float64, len(fields))
		for i, field := range fields {
			value, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return fmt.Errorf("line %d, feature %d: invalid value %q: %w", lineNum, i+1, field, err)
			}
			point[i] = value
		}
		if len(points) > 0 && len(point) != len(points[0]) {
			return fmt.Errorf("line %d: expected %d features, got %d", lineNum, len(points[0]), len(point))
		}
		points = append(points, point)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return points, nil
}

// ReadDenseFile, ReadSparseFile and ReadPointsFile are the file-path
// variants of the reader functions.

func ReadDenseFile(path string) ([]graph.Similarity, error) {
	return readFile(path, ReadDense)
}

func ReadSparseFile(path string) ([]graph.Similarity, error) {
	return readFile(path, ReadSparse)
}

func ReadPointsFile(path string) ([][]float64, error) {
	return readFile(path, ReadPoints)
}

func readFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	file, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	result, err := read(file)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return result, nil
}

func scanLines(r io.Reader, handle func(lineNum int, fields []string) error) error {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := handle(lineNum, strings.Fields(line)); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}
