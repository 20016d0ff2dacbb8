package editor

import (
	"fmt"
	"testing"

	"github.com/aisa-it/blockdoc/internal/blockdoc/editor/edtypes"
	"github.com/aisa-it/blockdoc/internal/blockdoc/editor/projector"
	"github.com/aisa-it/blockdoc/internal/blockdoc/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	r := schema.Default().Extend()
	err := r.DefineAll(
		[]schema.BlockSpec{{
			Name:      "callout",
			Content:   schema.ContentInline,
			Container: true,
			External:  "aside",
			Props: schema.PropSchema{
				"kind": {Type: schema.PropString, Default: "info", Values: []any{"info", "warning"}},
			},
		}},
		[]schema.InlineSpec{{
			Name:    "mention",
			Content: schema.ContentInline,
			Props:   schema.PropSchema{"user": {Type: schema.PropString}},
		}},
		[]schema.StyleSpec{{Name: "highlight", Value: schema.PropString, Tag: "mark"}},
	)
	require.NoError(t, err)
	require.NoError(t, r.Link())
	return r
}

func seqID() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
}

func parse(t *testing.T, r *schema.Registry, s string) []edtypes.Block {
	t.Helper()
	return ParseHTMLString(s, r, ParseOptions{NewID: seqID()})
}

func TestInternalRoundTrip(t *testing.T) {
	r := testRegistry(t)

	blocks, issues := r.NormalizeBlocks([]edtypes.Block{
		{
			ID:    "h1",
			Type:  schema.Heading,
			Props: edtypes.Props{"level": 2, "textAlignment": "center"},
			Content: []edtypes.InlineContent{
				edtypes.Text("  Plan ", nil),
				edtypes.Text("for", edtypes.Styles{"bold": true, "textColor": "red"}),
				edtypes.Link("https://example.com", edtypes.Text("site", edtypes.Styles{"italic": true})),
			},
			Children: []edtypes.Block{{
				ID:      "li1",
				Type:    schema.CheckListItem,
				Props:   edtypes.Props{"checked": true},
				Content: []edtypes.InlineContent{edtypes.Text("done", nil)},
				Children: []edtypes.Block{
					{ID: "li2", Type: schema.BulletListItem, Content: []edtypes.InlineContent{edtypes.Text("deep", nil)}},
				},
			}},
		},
		{ID: "img", Type: schema.Image, Props: edtypes.Props{"url": "/a.png", "caption": "A", "previewWidth": 300}},
		{
			ID:   "tbl",
			Type: schema.Table,
			Table: &edtypes.TableContent{Rows: []edtypes.TableRow{
				{Cells: [][]edtypes.InlineContent{{edtypes.Text("a", nil)}, {edtypes.Text("b", edtypes.Styles{"code": true})}}},
				{Cells: [][]edtypes.InlineContent{{edtypes.Text("1", nil)}, nil}},
			}},
		},
		{
			ID:    "c1",
			Type:  "callout",
			Props: edtypes.Props{"kind": "warning"},
			Content: []edtypes.InlineContent{
				edtypes.Text("ping ", edtypes.Styles{"highlight": "yellow"}),
				{Type: "mention", Props: edtypes.Props{"user": "ann"}, Content: []edtypes.InlineContent{edtypes.Text("@ann", nil)}},
			},
		},
		{ID: "code", Type: schema.CodeBlock, Props: edtypes.Props{"language": "go"}, Content: []edtypes.InlineContent{edtypes.Text("x := 1\n  y := 2", nil)}},
		{ID: "empty", Type: schema.Paragraph},
	})
	require.Empty(t, issues)

	markup := projector.Render(blocks, r, projector.Options{Mode: projector.ModeInternal})
	got := ParseHTMLString(markup, r, ParseOptions{})
	assert.Equal(t, blocks, got)

	assert.Equal(t, markup, projector.Render(got, r, projector.Options{Mode: projector.ModeInternal}))
}

func TestParseInternalDegrades(t *testing.T) {
	r := schema.Default()

	markup := `<div data-node-type="blockGroup">` +
		`<div data-node-type="blockContainer" data-block-id="x" data-block-type="alert" data-level="3">` +
		`<div data-node-type="inlineContent">care<b>ful</b></div>` +
		`<div data-node-type="blockGroup"><div data-node-type="blockContainer" data-block-id="y" data-block-type="paragraph"><div data-node-type="inlineContent">child</div></div></div>` +
		`</div>` +
		`<div data-node-type="blockContainer" data-block-id="h" data-block-type="heading" data-level="9"><div data-node-type="inlineContent">H</div></div>` +
		`</div>`

	got := parse(t, r, markup)
	require.Len(t, got, 2)

	assert.Equal(t, "x", got[0].ID)
	assert.Equal(t, schema.Paragraph, got[0].Type)
	assert.Equal(t, "careful", got[0].PlainText())
	require.Len(t, got[0].Children, 1)
	assert.Equal(t, "child", got[0].Children[0].PlainText())

	assert.Equal(t, schema.Heading, got[1].Type)
	assert.Equal(t, 1, got[1].Props["level"])
	assert.NoError(t, r.Validate(got))
}

func TestParseHTML(t *testing.T) {
	r := testRegistry(t)

	tests := []struct {
		name  string
		input string
		want  []edtypes.Block
	}{
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
		{
			name:  "heading and styles",
			input: "<h2>Hi <b>there</b></h2>",
			want: []edtypes.Block{{ID: "id1", Type: schema.Heading, Props: edtypes.Props{"level": 2}, Content: []edtypes.InlineContent{
				edtypes.Text("Hi ", nil),
				edtypes.Text("there", edtypes.Styles{"bold": true}),
			}}},
		},
		{
			name:  "whitespace collapse",
			input: "<p>\n  a  \n\t b <br> c </p>",
			want: []edtypes.Block{{ID: "id1", Type: schema.Paragraph, Content: []edtypes.InlineContent{
				edtypes.Text("a b\nc", nil),
			}}},
		},
		{
			name:  "loose inline",
			input: "hello <i>world</i><p>x</p>",
			want: []edtypes.Block{
				{ID: "id1", Type: schema.Paragraph, Content: []edtypes.InlineContent{
					edtypes.Text("hello ", nil),
					edtypes.Text("world", edtypes.Styles{"italic": true}),
				}},
				{ID: "id2", Type: schema.Paragraph, Content: []edtypes.InlineContent{edtypes.Text("x", nil)}},
			},
		},
		{
			name:  "nested list",
			input: "<ul><li>a<ul><li>b</li></ul></li><li>c</li></ul><ol><li><p>d</p></li></ol>",
			want: []edtypes.Block{
				{ID: "id1", Type: schema.BulletListItem, Content: []edtypes.InlineContent{edtypes.Text("a", nil)}, Children: []edtypes.Block{
					{ID: "id2", Type: schema.BulletListItem, Content: []edtypes.InlineContent{edtypes.Text("b", nil)}},
				}},
				{ID: "id3", Type: schema.BulletListItem, Content: []edtypes.InlineContent{edtypes.Text("c", nil)}},
				{ID: "id4", Type: schema.NumberedListItem, Content: []edtypes.InlineContent{edtypes.Text("d", nil)}},
			},
		},
		{
			name:  "check list",
			input: `<ul><li><input type="checkbox" checked disabled> done</li><li><p><input type="checkbox">todo</p></li></ul>`,
			want: []edtypes.Block{
				{ID: "id1", Type: schema.CheckListItem, Props: edtypes.Props{"checked": true}, Content: []edtypes.InlineContent{edtypes.Text("done", nil)}},
				{ID: "id2", Type: schema.CheckListItem, Props: edtypes.Props{"checked": false}, Content: []edtypes.InlineContent{edtypes.Text("todo", nil)}},
			},
		},
		{
			name:  "code block",
			input: "<pre><code class=\"hljs language-go\">a &lt; b\n\tc\n</code></pre>",
			want: []edtypes.Block{{ID: "id1", Type: schema.CodeBlock, Props: edtypes.Props{"language": "go"}, Content: []edtypes.InlineContent{
				edtypes.Text("a < b\n\tc", nil),
			}}},
		},
		{
			name:  "image",
			input: `<p><img src="/a.png" alt="A" width="300"></p>`,
			want: []edtypes.Block{{ID: "id1", Type: schema.Image, Props: edtypes.Props{"url": "/a.png", "caption": "A", "previewWidth": 300}}},
		},
		{
			name:  "table",
			input: "<table><thead><tr><th>a</th><th>b</th></tr></thead><tbody><tr><td>1</td><td></td></tr></tbody></table>",
			want: []edtypes.Block{{ID: "id1", Type: schema.Table, Table: &edtypes.TableContent{Rows: []edtypes.TableRow{
				{Cells: [][]edtypes.InlineContent{{edtypes.Text("a", nil)}, {edtypes.Text("b", nil)}}},
				{Cells: [][]edtypes.InlineContent{{edtypes.Text("1", nil)}, nil}},
			}}}},
		},
		{
			name:  "link runs merged",
			input: `<p><a href="/u">a<b>b</b></a> <a href="/v">c</a></p>`,
			want: []edtypes.Block{{ID: "id1", Type: schema.Paragraph, Content: []edtypes.InlineContent{
				edtypes.Link("/u", edtypes.Text("a", nil), edtypes.Text("b", edtypes.Styles{"bold": true})),
				edtypes.Text(" ", nil),
				edtypes.Link("/v", edtypes.Text("c", nil)),
			}}},
		},
		{
			name:  "custom block by tag",
			input: `<aside data-kind="warning">ping <mark data-value="yellow">x</mark> <mark>y</mark></aside>`,
			want: []edtypes.Block{{ID: "id1", Type: "callout", Props: edtypes.Props{"kind": "warning"}, Content: []edtypes.InlineContent{
				edtypes.Text("ping ", nil),
				edtypes.Text("x", edtypes.Styles{"highlight": "yellow"}),
				edtypes.Text(" y", nil),
			}}},
		},
		{
			name:  "unknown typed block",
			input: `<div data-block-type="alert">careful</div>`,
			want:  []edtypes.Block{{ID: "id1", Type: schema.Paragraph, Content: []edtypes.InlineContent{edtypes.Text("careful", nil)}}},
		},
		{
			name:  "transparent containers",
			input: "<section><div><blockquote><p>q</p></blockquote></div></section><hr>",
			want:  []edtypes.Block{{ID: "id1", Type: schema.Paragraph, Content: []edtypes.InlineContent{edtypes.Text("q", nil)}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := tt.want
			if want != nil {
				var issues []error
				want, issues = r.NormalizeBlocks(want)
				require.Empty(t, issues)
			}
			assert.Equal(t, want, parse(t, r, tt.input))
		})
	}
}

func TestParseExternalRoundTrip(t *testing.T) {
	r := schema.Default()
	blocks, issues := r.NormalizeBlocks([]edtypes.Block{
		{ID: "id1", Type: schema.Heading, Props: edtypes.Props{"level": 3}, Content: []edtypes.InlineContent{edtypes.Text("Title", nil)}},
		{ID: "id2", Type: schema.Paragraph, Content: []edtypes.InlineContent{
			edtypes.Text("a", edtypes.Styles{"bold": true, "italic": true}),
			edtypes.Text("b", edtypes.Styles{"textColor": "red"}),
			edtypes.Text("\nc", nil),
		}},
		{ID: "id3", Type: schema.CheckListItem, Props: edtypes.Props{"checked": true}, Content: []edtypes.InlineContent{edtypes.Text("x", nil)}},
		{ID: "id4", Type: schema.CodeBlock, Props: edtypes.Props{"language": "sql"}, Content: []edtypes.InlineContent{edtypes.Text("select 1;", nil)}},
	})
	require.Empty(t, issues)

	markup := projector.Render(blocks, r, projector.Options{})
	assert.Equal(t, blocks, parse(t, r, markup))
}

func TestParseSanitize(t *testing.T) {
	r := schema.Default()
	input := `<p onclick="x()"><a href="javascript:alert(1)">x</a><script>alert(2)</script></p>`

	got := ParseHTMLString(input, r, ParseOptions{NewID: seqID(), Sanitize: true})
	require.Len(t, got, 1)
	assert.Equal(t, []edtypes.InlineContent{edtypes.Text("x", nil)}, got[0].Content)

	raw := parse(t, r, input)
	require.Len(t, raw, 1)
	assert.Equal(t, []edtypes.InlineContent{edtypes.Link("javascript:alert(1)", edtypes.Text("x", nil))}, raw[0].Content)
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func ExampleParseHTMLString() {
	blocks := ParseHTMLString(`<h1>Отчет</h1><ul><li>первый</li><li>второй</li></ul>`, schema.Default(), ParseOptions{})
	for _, b := range blocks {
		fmt.Println(b.Type, b.PlainText())
	}

	// Output:
	// heading Отчет
	// bulletListItem первый
	// bulletListItem второй
}
