package gen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamcsv/streamcsv/internal/gen"
)

func TestGeneratorDeterministic(t *testing.T) {
	cfg := gen.Config{Cols: 4, Seed: 42, Dirty: true}

	a := gen.New(cfg)
	b := gen.New(cfg)

	for i := 0; i < 100; i++ {
		require.Equal(t, a.Next(), b.Next(), "row %d diverged for identical seeds", i)
	}
}

func TestGeneratorShape(t *testing.T) {
	g := gen.New(gen.Config{Cols: 5, Seed: 1})

	header := g.Header()
	require.Len(t, header, 5)
	assert.Equal(t, "id", header[0])

	for i := 0; i < 50; i++ {
		record := g.Next()
		require.Len(t, record, 5)
		assert.NotEmpty(t, record[0], "row %d has no ID", i)
	}
}

func TestGeneratorMinimumColumns(t *testing.T) {
	g := gen.New(gen.Config{Cols: 0, Seed: 1})
	assert.Len(t, g.Next(), 2)
}

func TestGeneratorDirtyInjectsSpecials(t *testing.T) {
	g := gen.New(gen.Config{Cols: 8, Seed: 7, Dirty: true})

	var sawComma, sawQuote, sawNewline bool
	for i := 0; i < 500; i++ {
		for _, field := range g.Next()[1:] {
			sawComma = sawComma || strings.Contains(field, ",")
			sawQuote = sawQuote || strings.Contains(field, "\"")
			sawNewline = sawNewline || strings.Contains(field, "\n")
		}
	}

	assert.True(t, sawComma, "dirty stream never produced a delimiter-bearing field")
	assert.True(t, sawQuote, "dirty stream never produced a quote-bearing field")
	assert.True(t, sawNewline, "dirty stream never produced a newline-bearing field")
}

func TestGeneratorCleanAvoidsSpecials(t *testing.T) {
	g := gen.New(gen.Config{Cols: 6, Seed: 3})

	for i := 0; i < 200; i++ {
		for _, field := range g.Next() {
			assert.NotContains(t, field, ",")
			assert.NotContains(t, field, "\"")
			assert.NotContains(t, field, "\n")
		}
	}
}
