package graphio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distributed-affinity/pkg/graph"
)

func TestReadDense(t *testing.T) {
	input := strings.NewReader(`# 3x3 similarity matrix
1 1 1 5

2 1 1 3
3 5 3 1
`)
	similarities, err := ReadDense(input)
	require.NoError(t, err)

	assert.Len(t, similarities, 9)
	assert.Equal(t, graph.Similarity{Row: 1, Col: 3, Value: 5}, similarities[2])
	assert.Equal(t, graph.Similarity{Row: 3, Col: 1, Value: 5}, similarities[6])
}

func TestReadDenseMalformed(t *testing.T) {
	cases := map[string]string{
		"non-numeric row":   "x 1 2\n",
		"non-numeric value": "1 1 abc\n",
		"row index only":    "1\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadDense(strings.NewReader(input))
			assert.ErrorContains(t, err, "line 1")
		})
	}
}

func TestReadSparse(t *testing.T) {
	input := strings.NewReader("1 3 5.5\n2 1 -0.25\n")
	similarities, err := ReadSparse(input)
	require.NoError(t, err)

	assert.Equal(t, []graph.Similarity{
		{Row: 1, Col: 3, Value: 5.5},
		{Row: 2, Col: 1, Value: -0.25},
	}, similarities)
}

func TestReadSparseMalformed(t *testing.T) {
	_, err := ReadSparse(strings.NewReader("1 2 3\n1 2\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = ReadSparse(strings.NewReader("1 2 3 4\n"))
	assert.ErrorContains(t, err, "expected 3 fields")
}

func TestReadPoints(t *testing.T) {
	input := strings.NewReader(`1.0 2.0
3.5 -1.0
# trailing comment
`)
	points, err := ReadPoints(input)
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{1, 2}, {3.5, -1}}, points)
}

func TestReadPointsRaggedInput(t *testing.T) {
	_, err := ReadPoints(strings.NewReader("1 2\n3 4 5\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestWriteAssignmentsSortedByRow(t *testing.T) {
	var out strings.Builder
	err := WriteAssignments(&out, map[int64]int64{
		3: 3,
		1: 3,
		2: -1,
	})
	require.NoError(t, err)

	assert.Equal(t, "1\t3\n2\t-1\n3\t3\n", out.String())
}

func TestFileVariants(t *testing.T) {
	dir := t.TempDir()

	input := filepath.Join(dir, "similarities.txt")
	require.NoError(t, os.WriteFile(input, []byte("1 1 1\n1 2 4\n"), 0644))
	similarities, err := ReadSparseFile(input)
	require.NoError(t, err)
	assert.Len(t, similarities, 2)

	// Errors from a file reader name the file.
	require.NoError(t, os.WriteFile(input, []byte("1 2\n"), 0644))
	_, err = ReadSparseFile(input)
	assert.ErrorContains(t, err, input)

	_, err = ReadDenseFile(filepath.Join(dir, "missing.txt"))
	assert.ErrorContains(t, err, "failed to open file")

	output := filepath.Join(dir, "out", "assignments.tsv")
	require.NoError(t, WriteAssignmentsFile(output, map[int64]int64{1: 2, 2: 2}))
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "1\t2\n2\t2\n", string(data))
}
