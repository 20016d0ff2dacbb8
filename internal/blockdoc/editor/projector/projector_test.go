package projector

import (
	"testing"

	"github.com/aisa-it/blockdoc/internal/blockdoc/editor/edtypes"
	"github.com/aisa-it/blockdoc/internal/blockdoc/schema"
	"github.com/stretchr/testify/assert"
	"golang.org/x/net/html"
)

func text(s string) []edtypes.InlineContent {
	return []edtypes.InlineContent{edtypes.Text(s, nil)}
}

func TestRenderExternal(t *testing.T) {
	r := schema.Default()

	tests := []struct {
		name   string
		blocks []edtypes.Block
		want   string
	}{
		{
			name:   "heading",
			blocks: []edtypes.Block{{ID: "1", Type: schema.Heading, Props: edtypes.Props{"level": 2}, Content: text("Hi")}},
			want:   `<h2>Hi</h2>`,
		},
		{
			name:   "heading level out of range",
			blocks: []edtypes.Block{{ID: "1", Type: schema.Heading, Props: edtypes.Props{"level": 12}, Content: text("Hi")}},
			want:   `<h1>Hi</h1>`,
		},
		{
			name: "nested list",
			blocks: []edtypes.Block{
				{ID: "1", Type: schema.BulletListItem, Content: text("a"), Children: []edtypes.Block{
					{ID: "2", Type: schema.BulletListItem, Content: text("b")},
				}},
				{ID: "3", Type: schema.BulletListItem, Content: text("c")},
				{ID: "4", Type: schema.NumberedListItem, Content: text("d")},
				{ID: "5", Type: schema.Paragraph, Content: text("e")},
			},
			want: `<ul><li>a<ul><li>b</li></ul></li><li>c</li></ul><ol><li>d</li></ol><p>e</p>`,
		},
		{
			name: "check list",
			blocks: []edtypes.Block{
				{ID: "1", Type: schema.CheckListItem, Props: edtypes.Props{"checked": true}, Content: text("done")},
				{ID: "2", Type: schema.CheckListItem, Content: text("todo")},
			},
			want: `<ul><li><input type="checkbox" disabled="" checked=""/>done</li><li><input type="checkbox" disabled=""/>todo</li></ul>`,
		},
		{
			name: "styles",
			blocks: []edtypes.Block{{ID: "1", Type: schema.Paragraph, Content: []edtypes.InlineContent{
				edtypes.Text("x", edtypes.Styles{"italic": true, "bold": true}),
				edtypes.Text("y", edtypes.Styles{"textColor": "red"}),
				edtypes.Link("https://e.com", edtypes.Text("e", edtypes.Styles{"strike": true})),
			}}},
			want: `<p><strong><em>x</em></strong><span data-style-type="textColor" data-value="red">y</span><a href="https://e.com"><s>e</s></a></p>`,
		},
		{
			name:   "line break",
			blocks: []edtypes.Block{{ID: "1", Type: schema.Paragraph, Content: text("a\nb")}},
			want:   `<p>a<br/>b</p>`,
		},
		{
			name:   "code block",
			blocks: []edtypes.Block{{ID: "1", Type: schema.CodeBlock, Props: edtypes.Props{"language": "go"}, Content: text("a < b")}},
			want:   `<pre><code class="language-go">a &lt; b</code></pre>`,
		},
		{
			name:   "image",
			blocks: []edtypes.Block{{ID: "1", Type: schema.Image, Props: edtypes.Props{"url": "/a.png", "caption": "A"}}},
			want:   `<p><img src="/a.png" alt="A" width="512"/></p>`,
		},
		{
			name: "table",
			blocks: []edtypes.Block{{ID: "1", Type: schema.Table, Table: &edtypes.TableContent{Rows: []edtypes.TableRow{
				{Cells: [][]edtypes.InlineContent{text("a"), text("b")}},
				{Cells: [][]edtypes.InlineContent{text("1"), text("2")}},
			}}}},
			want: `<table><thead><tr><th>a</th><th>b</th></tr></thead><tbody><tr><td>1</td><td>2</td></tr></tbody></table>`,
		},
		{
			name: "children of paragraph",
			blocks: []edtypes.Block{{ID: "1", Type: schema.Paragraph, Content: text("p"), Children: []edtypes.Block{
				{ID: "2", Type: schema.Paragraph, Content: text("c")},
			}}},
			want: `<p>p</p><div data-node-type="blockGroup"><p>c</p></div>`,
		},
		{
			name:   "unknown block",
			blocks: []edtypes.Block{{ID: "1", Type: "alert", Content: text("careful")}},
			want:   `<div data-block-type="alert">careful</div>`,
		},
		{
			name:   "empty document",
			blocks: nil,
			want:   ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.blocks, r, Options{}))
		})
	}
}

func TestRenderInternal(t *testing.T) {
	r := schema.Default()
	blocks := []edtypes.Block{{
		ID:   "1",
		Type: schema.Paragraph,
		Content: []edtypes.InlineContent{
			edtypes.Text("a", edtypes.Styles{"bold": true, "backgroundColor": "blue"}),
		},
		Children: []edtypes.Block{{ID: "2", Type: "alert", Props: edtypes.Props{"level": 3}, Content: text("x")}},
	}}

	want := `<div data-node-type="blockGroup">` +
		`<div data-node-type="blockContainer" data-block-id="1" data-block-type="paragraph" data-background-color="default" data-text-alignment="left" data-text-color="default">` +
		`<div data-node-type="inlineContent"><span data-style-type="backgroundColor" data-value="blue"><span data-style-type="bold">a</span></span></div>` +
		`<div data-node-type="blockGroup">` +
		`<div data-node-type="blockContainer" data-block-id="2" data-block-type="alert" data-level="3"><div data-node-type="inlineContent">x</div></div>` +
		`</div></div></div>`

	assert.Equal(t, want, Render(blocks, r, Options{Mode: ModeInternal}))
}

func TestRenderPluggable(t *testing.T) {
	r := schema.Default()
	blocks := []edtypes.Block{
		{ID: "1", Type: "alert", Content: []edtypes.InlineContent{edtypes.Text("hot", edtypes.Styles{"textColor": "red"})}},
	}

	opts := Options{
		StyleRenderers: map[string]StyleRenderer{
			"textColor": func(_ schema.StyleSpec, value any) *html.Node {
				return element("font", attr("color", value.(string)))
			},
		},
		BlockRenderers: map[string]BlockRenderer{
			"alert": func(_ edtypes.Block, inline []*html.Node) *html.Node {
				return appendAll(element("aside"), inline)
			},
		},
	}

	assert.Equal(t, `<aside><font color="red">hot</font></aside>`, Render(blocks, r, opts))
}

func TestRenderCompact(t *testing.T) {
	r := schema.Default()
	blocks := []edtypes.Block{
		{ID: "1", Type: schema.Heading, Props: edtypes.Props{"level": 2}, Content: text("Hi")},
		{ID: "2", Type: schema.CheckListItem, Content: text("todo")},
	}

	full := Render(blocks, r, Options{})
	compact := Render(blocks, r, Options{Compact: true})
	assert.Contains(t, compact, "<h2>Hi</h2>")
	assert.Contains(t, compact, "todo")
	assert.LessOrEqual(t, len(compact), len(full))
}

func TestRenderCompactKeepsInternalText(t *testing.T) {
	r := schema.Default()
	blocks := []edtypes.Block{{ID: "1", Type: schema.Paragraph, Content: text("  lead   gap ")}}

	internal := Render(blocks, r, Options{Mode: ModeInternal})
	assert.Equal(t, internal, Render(blocks, r, Options{Mode: ModeInternal, Compact: true}))
	assert.Contains(t, internal, ">  lead   gap </div>")
}

func TestRenderSkipsDisabledStyles(t *testing.T) {
	r := schema.Default()
	blocks := []edtypes.Block{{ID: "1", Type: schema.Paragraph, Content: []edtypes.InlineContent{
		edtypes.Text("x", edtypes.Styles{"bold": false, "textColor": "", "italic": true}),
	}}}

	assert.Equal(t, `<p><em>x</em></p>`, Render(blocks, r, Options{}))
	assert.Equal(t,
		`<div data-node-type="blockGroup">`+
			`<div data-node-type="blockContainer" data-block-id="1" data-block-type="paragraph" data-background-color="default" data-text-alignment="left" data-text-color="default">`+
			`<div data-node-type="inlineContent"><span data-style-type="italic">x</span></div>`+
			`</div></div>`,
		Render(blocks, r, Options{Mode: ModeInternal}))

	plain := []edtypes.Block{{ID: "1", Type: schema.Paragraph, Content: []edtypes.InlineContent{
		edtypes.Text("y", edtypes.Styles{"bold": false}),
	}}}
	assert.Equal(t, `<p>y</p>`, Render(plain, r, Options{}))
}

func TestRenderDeterministic(t *testing.T) {
	r := schema.Default()
	blocks := []edtypes.Block{{ID: "1", Type: schema.Paragraph, Content: []edtypes.InlineContent{
		edtypes.Text("x", edtypes.Styles{"underline": true, "code": true, "bold": true, "textColor": "red", "italic": true}),
	}}}

	first := Render(blocks, r, Options{Mode: ModeInternal})
	for range 20 {
		assert.Equal(t, first, Render(blocks, r, Options{Mode: ModeInternal}))
	}
	assert.Equal(t,
		`<p><strong><code><em><span data-style-type="textColor" data-value="red"><u>x</u></span></em></code></strong></p>`,
		Render(blocks, r, Options{}))
}

func TestPropAttr(t *testing.T) {
	assert.Equal(t, "data-text-alignment", PropAttr("textAlignment"))
	assert.Equal(t, "data-level", PropAttr("level"))
	assert.Equal(t, "data-preview-width", PropAttr("previewWidth"))
}
