package edtypes_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisa-it/blockdoc/internal/blockdoc/editor/edtypes"
)

func TestDocument_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name           string
		json           string
		wantBlockCount int
		wantErr        bool
	}{
		{
			name: "blocks array",
			json: `[
				{"id": "1", "type": "paragraph", "content": [{"type": "text", "text": "Hello World"}]},
				{"id": "2", "type": "heading", "props": {"level": 2}}
			]`,
			wantBlockCount: 2,
		},
		{
			name: "blocks object",
			json: `{
				"blocks": [
					{"id": "1", "type": "paragraph", "children": [{"id": "2", "type": "paragraph"}]}
				]
			}`,
			wantBlockCount: 1,
		},
		{
			name:           "empty array",
			json:           `[]`,
			wantBlockCount: 0,
		},
		{
			name:           "object without blocks",
			json:           `{}`,
			wantBlockCount: 0,
		},
		{
			name:    "invalid json",
			json:    `[{"id": "1", "type": }]`,
			wantErr: true,
		},
		{
			name:    "wrong shape",
			json:    `"paragraph"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc edtypes.Document
			err := json.Unmarshal([]byte(tt.json), &doc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, doc.Blocks, tt.wantBlockCount)
		})
	}
}

func TestDocument_UnmarshalJSON_Integration(t *testing.T) {
	// Документ внутри DTO
	type pageDTO struct {
		Title string           `json:"title"`
		Body  edtypes.Document `json:"body"`
	}

	var page pageDTO
	err := json.Unmarshal([]byte(`{
		"title": "Plan",
		"body": [{"id": "1", "type": "paragraph", "content": [{"type": "text", "text": "due", "styles": {"bold": true}}]}]
	}`), &page)
	require.NoError(t, err)

	assert.Equal(t, "Plan", page.Title)
	require.Len(t, page.Body.Blocks, 1)
	assert.Equal(t, []edtypes.InlineContent{edtypes.Text("due", edtypes.Styles{"bold": true})}, page.Body.Blocks[0].Content)
}

func TestDocument_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		doc  edtypes.Document
		want string
	}{
		{
			name: "nil blocks",
			doc:  edtypes.Document{},
			want: `[]`,
		},
		{
			name: "blocks",
			doc: edtypes.Document{Blocks: []edtypes.Block{
				{ID: "1", Type: "paragraph", Content: []edtypes.InlineContent{edtypes.Text("hi", nil)}},
			}},
			want: `[{"id":"1","type":"paragraph","content":[{"type":"text","text":"hi"}]}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.doc)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))

			var back edtypes.Document
			require.NoError(t, json.Unmarshal(raw, &back))
			assert.Len(t, back.Blocks, len(tt.doc.Blocks))
		})
	}
}

func TestMergeText(t *testing.T) {
	bold := edtypes.Styles{"bold": true}

	tests := []struct {
		name string
		in   []edtypes.InlineContent
		want []edtypes.InlineContent
	}{
		{
			name: "same styles merged",
			in: []edtypes.InlineContent{
				edtypes.Text("a", bold),
				edtypes.Text("b", edtypes.Styles{"bold": true}),
				edtypes.Text("c", nil),
			},
			want: []edtypes.InlineContent{edtypes.Text("ab", bold), edtypes.Text("c", nil)},
		},
		{
			name: "empty runs dropped",
			in: []edtypes.InlineContent{
				edtypes.Text("a", nil),
				edtypes.Text("", bold),
				edtypes.Text("b", nil),
			},
			want: []edtypes.InlineContent{edtypes.Text("ab", nil)},
		},
		{
			name: "link content merged",
			in: []edtypes.InlineContent{
				edtypes.Link("https://e.com", edtypes.Text("x", nil), edtypes.Text("y", nil)),
				edtypes.Text("z", nil),
			},
			want: []edtypes.InlineContent{
				edtypes.Link("https://e.com", edtypes.Text("xy", nil)),
				edtypes.Text("z", nil),
			},
		},
		{
			name: "text does not merge across link",
			in: []edtypes.InlineContent{
				edtypes.Text("a", nil),
				edtypes.Link("https://e.com", edtypes.Text("b", nil)),
				edtypes.Text("c", nil),
			},
			want: []edtypes.InlineContent{
				edtypes.Text("a", nil),
				edtypes.Link("https://e.com", edtypes.Text("b", nil)),
				edtypes.Text("c", nil),
			},
		},
		{
			name: "all empty",
			in:   []edtypes.InlineContent{edtypes.Text("", nil), edtypes.Text("", bold)},
			want: nil,
		},
		{
			name: "nil",
			in:   nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, edtypes.MergeText(tt.in))
		})
	}
}

func TestBlock_Clone(t *testing.T) {
	orig := edtypes.Block{
		ID:    "1",
		Type:  "paragraph",
		Props: edtypes.Props{"textColor": "red"},
		Content: []edtypes.InlineContent{
			edtypes.Text("a", edtypes.Styles{"bold": true}),
			edtypes.Link("https://e.com", edtypes.Text("b", nil)),
		},
		Table: &edtypes.TableContent{Rows: []edtypes.TableRow{
			{Cells: [][]edtypes.InlineContent{{edtypes.Text("c", nil)}}},
		}},
		Children: []edtypes.Block{{ID: "2", Type: "paragraph", Props: edtypes.Props{"textColor": "blue"}}},
	}

	clone := orig.Clone()
	assert.Equal(t, orig, clone)

	clone.Props["textColor"] = "green"
	clone.Content[0].Styles["italic"] = true
	clone.Content[1].Content[0].Text = "changed"
	clone.Table.Rows[0].Cells[0][0].Text = "changed"
	clone.Children[0].Props["textColor"] = "green"

	assert.Equal(t, "red", orig.Props["textColor"])
	assert.Equal(t, edtypes.Styles{"bold": true}, orig.Content[0].Styles)
	assert.Equal(t, "b", orig.Content[1].Content[0].Text)
	assert.Equal(t, "c", orig.Table.Rows[0].Cells[0][0].Text)
	assert.Equal(t, "blue", orig.Children[0].Props["textColor"])

	assert.Nil(t, edtypes.CloneBlocks(nil))
}

func TestBlock_PlainText(t *testing.T) {
	b := edtypes.Block{Type: "table", Table: &edtypes.TableContent{Rows: []edtypes.TableRow{
		{Cells: [][]edtypes.InlineContent{{edtypes.Text("a", nil)}, {edtypes.Link("u", edtypes.Text("b", nil))}}},
	}}}
	assert.Equal(t, "a b\n", b.PlainText())
}
