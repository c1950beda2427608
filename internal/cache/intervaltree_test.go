package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildIntervalTree_Empty(t *testing.T) {
	tree := BuildIntervalTree(nil, nil)
	assert.Empty(t, tree.FindOverlaps(100))
	_, ok := tree.FindFirst(100)
	assert.False(t, ok)
}

func TestIntervalTree_SingleGene(t *testing.T) {
	g := &Gene{Name: "IGHJ4", Start: 100, End: 200}
	tree := BuildIntervalTree([]*Gene{g}, nil)

	assert.Len(t, tree.FindOverlaps(150), 1)
	assert.Equal(t, "IGHJ4", tree.FindOverlaps(150)[0].Name)

	assert.Len(t, tree.FindOverlaps(100), 1, "start boundary inclusive")
	assert.Len(t, tree.FindOverlaps(200), 1, "end boundary inclusive")
	assert.Empty(t, tree.FindOverlaps(99), "before start")
	assert.Empty(t, tree.FindOverlaps(201), "after end")
}

func TestIntervalTree_Window(t *testing.T) {
	genes := []*Gene{
		{Name: "IGHJ4", Start: 100, End: 200},
		{Name: "IGHV3-23", Start: 1000, End: 1300},
	}
	a := NewAnnotation(genes)
	tree := a.Index(func(g *Gene) (int, int) {
		if g.Class() == 'J' {
			return 0, 10
		}
		return 10, 0
	})

	g, ok := tree.FindFirst(210)
	assert.True(t, ok)
	assert.Equal(t, "IGHJ4", g.Name)
	_, ok = tree.FindFirst(211)
	assert.False(t, ok)
	_, ok = tree.FindFirst(99)
	assert.False(t, ok, "no window before J")

	g, ok = tree.FindFirst(990)
	assert.True(t, ok)
	assert.Equal(t, "IGHV3-23", g.Name)
	_, ok = tree.FindFirst(1301)
	assert.False(t, ok)
}

func TestIntervalTree_FirstInFileOrder(t *testing.T) {
	genes := []*Gene{
		{Name: "B", Start: 150, End: 250},
		{Name: "A", Start: 100, End: 300},
		{Name: "C", Start: 200, End: 400},
	}
	tree := NewAnnotation(genes).Index(nil)

	results := tree.FindOverlaps(250)
	assert.Len(t, results, 3)

	g, ok := tree.FindFirst(250)
	assert.True(t, ok)
	assert.Equal(t, "B", g.Name, "first BED line wins")

	g, _ = tree.FindFirst(120)
	assert.Equal(t, "A", g.Name)
	g, _ = tree.FindFirst(350)
	assert.Equal(t, "C", g.Name)
}
