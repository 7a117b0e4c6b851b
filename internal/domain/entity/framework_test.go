package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameworks_CatalogHasNineDistinctEntries(t *testing.T) {
	all := Frameworks()
	assert.Len(t, all, 9)

	seen := map[Framework]bool{}
	for _, f := range all {
		assert.False(t, seen[f], "duplicate %s", f)
		seen[f] = true
		assert.True(t, f.Valid())
		assert.NotEmpty(t, f.Instruction())
	}
	assert.Equal(t, DefaultFramework, all[0])
}

func TestParseFramework(t *testing.T) {
	f, ok := ParseFramework("  Myth → Truth → Proof\n")
	assert.True(t, ok)
	assert.Equal(t, FrameworkMythTruthProof, f)

	_, ok = ParseFramework("myth → truth → proof")
	assert.False(t, ok)

	_, ok = ParseFramework("Hero's Journey")
	assert.False(t, ok)
}

func TestFrameworkOrDefault(t *testing.T) {
	assert.Equal(t, FrameworkBeforeAfterBridge, FrameworkOrDefault("Before → After → Bridge"))
	assert.Equal(t, DefaultFramework, FrameworkOrDefault("something else"))
	assert.Equal(t, DefaultFramework, FrameworkOrDefault(""))
	assert.Empty(t, Framework("nope").Instruction())
}
