package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentManagerVersions(t *testing.T) {
	dm := NewDocumentManager()

	assert.False(t, dm.Update("a.md", 1), "update before open")

	dm.Open("a.md", 3)
	assert.True(t, dm.IsOpen("a.md"))
	assert.True(t, dm.Update("a.md", 4))
	assert.True(t, dm.Update("a.md", 4), "same version is accepted")
	assert.False(t, dm.Update("a.md", 2), "older version is rejected")

	dm.Open("b.md", 1)
	assert.Equal(t, []string{"a.md", "b.md"}, dm.Paths())

	dm.Close("a.md")
	assert.False(t, dm.IsOpen("a.md"))
	assert.Equal(t, []string{"b.md"}, dm.Paths())
}
