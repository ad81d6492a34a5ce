package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		old  string
		new  string
	}{
		{
			name: "simple replacement",
			old:  "line one\nline two\nline three\n",
			new:  "line one\nline 2\nline three\n",
		},
		{
			name: "new file",
			old:  "",
			new:  "hello\nworld\n",
		},
		{
			name: "full deletion",
			old:  "hello\nworld\n",
			new:  "",
		},
		{
			name: "identical contents",
			old:  "a\nb\nc\n",
			new:  "a\nb\nc\n",
		},
		{
			name: "insertion in the middle",
			old:  "a\nb\nc\nd\ne\nf\ng\nh\n",
			new:  "a\nb\nc\nd\nX\nY\ne\nf\ng\nh\n",
		},
		{
			name: "changes far apart produce multiple hunks",
			old:  "1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n11\n12\n13\n14\n15\n16\n17\n18\n19\n20\n",
			new:  "one\n2\n3\n4\n5\n6\n7\n8\n9\n10\n11\n12\n13\n14\n15\n16\n17\n18\n19\ntwenty\n",
		},
		{
			name: "no trailing newline",
			old:  "alpha\nbeta",
			new:  "alpha\ngamma",
		},
		{
			name: "trailing newline added",
			old:  "alpha\nbeta",
			new:  "alpha\nbeta\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Compute("file.txt", tt.old, tt.new)

			applied, err := Apply(tt.old, res)
			require.NoError(t, err)
			assert.Equal(t, tt.new, applied, "applying the diff must reproduce the new content")
		})
	}
}

func TestCompute_Deterministic(t *testing.T) {
	old := "package main\n\nfunc main() {\n}\n"
	updated := "package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n"

	first := Compute("main.go", old, updated)
	for range 10 {
		again := Compute("main.go", old, updated)
		require.Equal(t, first.Unified, again.Unified)
		require.Equal(t, first.Hunks, again.Hunks)
	}
}

func TestCompute_NewFileIsSingleAllAddedHunk(t *testing.T) {
	res := Compute("a.txt", "", "hello\nworld\n")

	require.Len(t, res.Hunks, 1)
	h := res.Hunks[0]
	assert.Equal(t, 0, h.OldLines)
	assert.Equal(t, 2, h.NewLines)
	require.Len(t, h.Lines, 2)
	for _, line := range h.Lines {
		assert.Equal(t, LineAdded, line.Kind)
	}
	assert.Contains(t, res.Unified, "@@ -0,0 +1,2 @@")
	assert.Contains(t, res.Unified, "+hello\n")
	assert.Contains(t, res.Unified, "+world\n")
}

func TestCompute_DeletionIsSingleAllRemovedHunk(t *testing.T) {
	res := Compute("a.txt", "hello\nworld\n", "")

	require.Len(t, res.Hunks, 1)
	for _, line := range res.Hunks[0].Lines {
		assert.Equal(t, LineRemoved, line.Kind)
	}
	assert.Contains(t, res.Unified, "@@ -1,2 +0,0 @@")
}

func TestCompute_IdenticalContentsYieldEmptyDiff(t *testing.T) {
	res := Compute("a.txt", "same\n", "same\n")

	assert.Empty(t, res.Hunks)
	assert.Empty(t, res.Unified)
}

func TestCompute_AdjacentChangesShareOneHunk(t *testing.T) {
	old := "a\nb\nc\nd\ne\n"
	updated := "a\nB\nC\nd\ne\n"

	res := Compute("a.txt", old, updated)

	require.Len(t, res.Hunks, 1, "adjacent changed lines must be grouped into one hunk")
	assert.Equal(t, 1, strings.Count(res.Unified, "@@ -"))
}

func TestCompute_UnifiedHeadersNameThePath(t *testing.T) {
	res := Compute("pkg/thing.go", "x\n", "y\n")

	assert.True(t, strings.HasPrefix(res.Unified, "--- pkg/thing.go\n+++ pkg/thing.go\n"))
}

func TestApply_RejectsMismatchedBase(t *testing.T) {
	res := Compute("a.txt", "one\ntwo\nthree\n", "one\n2\nthree\n")

	_, err := Apply("completely\ndifferent\ncontent\n", res)
	assert.Error(t, err)
}
