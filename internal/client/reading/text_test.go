package reading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `<h1>Title</h1><p>one <b>two</b> three</p><div><p>inner</p></div><ul><li>a</li><li>b</li></ul><script>var x;</script>`

func TestParseHTML_BlocksInDocumentOrder(t *testing.T) {
	d, err := ParseHTML(sample, 80, 20)
	require.NoError(t, err)

	blocks, ok := d.Blocks()
	require.True(t, ok)
	assert.Equal(t, tops(0, 40, 80, 80, 120, 160), blocks)

	_, total := d.Line()
	assert.Equal(t, 9, total)
	assert.Equal(t, []string{"# Title", "", "one two three"}, d.Page(3))
}

func TestTextDocument_Scroll(t *testing.T) {
	d, err := ParseHTML(sample, 80, 20)
	require.NoError(t, err)

	d.ScrollBy(45)
	cur, _ := d.Line()
	assert.Equal(t, 2, cur)

	blocks, _ := d.Blocks()
	assert.Equal(t, -40.0, blocks[0].Top)
	assert.Equal(t, []string{"one two three", "", "inner"}, d.Page(3))

	d.ScrollBy(1000)
	cur, total := d.Line()
	assert.Equal(t, total-1, cur)

	d.ScrollLines(-100)
	cur, _ = d.Line()
	assert.Equal(t, 0, cur)
}

func TestTextDocument_WorksWithTracker(t *testing.T) {
	d, err := ParseHTML(sample, 80, 20)
	require.NoError(t, err)
	d.ScrollLines(2)

	i, off, ok := Locate(mustBlocks(t, d), 60)
	require.True(t, ok)
	assert.Equal(t, 4, i)
	assert.Equal(t, 20.0, off)
}

func mustBlocks(t *testing.T, d *TextDocument) []Block {
	t.Helper()
	b, ok := d.Blocks()
	require.True(t, ok)
	return b
}

func TestParseHTML_EmptyIsNotEnumerable(t *testing.T) {
	d, err := ParseHTML("", 80, 20)
	require.NoError(t, err)
	_, ok := d.Blocks()
	assert.False(t, ok)
	assert.Nil(t, d.Page(10))
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"aaa bbb", "ccc"}, wrap("aaa bbb ccc", 7))
	assert.Equal(t, []string{"toolongword"}, wrap("toolongword", 4))
	assert.Nil(t, wrap("   ", 10))
}
