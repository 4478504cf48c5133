package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddedLines(t *testing.T) {
	patch := "@@ -1,4 +1,5 @@\n package main\n-import \"os\"\n+import \"fmt\"\n+import \"log\"\n func main() {\n }\n@@ -20,2 +21,3 @@ func helper() {\n x := 1\n+y := 2\n z := 3"

	lines, err := AddedLines(patch)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 22}, lines)
}

func TestAddedLines_NewFile(t *testing.T) {
	lines, err := AddedLines("@@ -0,0 +1,3 @@\n+a\n+b\n+c\n")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, lines)
}

func TestAddedLines_Empty(t *testing.T) {
	lines, err := AddedLines("")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestSnap(t *testing.T) {
	added := []int{5, 10, 20}
	tests := []struct {
		target int
		want   int
	}{
		{10, 10},
		{11, 10},
		{16, 20},
		{15, 10}, // tie keeps the earlier line
		{1, 5},
		{100, 20},
		{0, 5},
	}
	for _, tt := range tests {
		got, ok := Snap(added, tt.target)
		assert.True(t, ok)
		assert.Equal(t, tt.want, got, "Snap(%d)", tt.target)
	}

	_, ok := Snap(nil, 3)
	assert.False(t, ok)
}
