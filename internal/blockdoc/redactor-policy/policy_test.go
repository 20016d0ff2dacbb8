package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		notWant []string
	}{
		{
			name:    "script dropped",
			input:   `<p>hi<script>alert(1)</script></p>`,
			want:    []string{"<p>hi</p>"},
			notWant: []string{"script", "alert"},
		},
		{
			name:    "event handler dropped",
			input:   `<p onclick="x()">hi</p>`,
			want:    []string{"<p>hi</p>"},
			notWant: []string{"onclick"},
		},
		{
			name:  "block markup kept",
			input: `<div data-node-type="blockContainer" data-block-id="1" data-block-type="heading" data-level="2"></div>`,
			want:  []string{`data-node-type="blockContainer"`, `data-block-type="heading"`, `data-level="2"`},
		},
		{
			name:  "style span kept",
			input: `<span data-style-type="textColor" data-value="red">x</span>`,
			want:  []string{`data-style-type="textColor"`, `data-value="red"`},
		},
		{
			name:    "javascript link dropped",
			input:   `<p><a href="javascript:alert(1)">x</a></p>`,
			want:    []string{"x"},
			notWant: []string{"javascript"},
		},
		{
			name:  "code language kept",
			input: `<pre><code class="language-go">x</code></pre>`,
			want:  []string{`class="language-go"`},
		},
		{
			name:  "task checkbox kept",
			input: `<ul><li><input type="checkbox" checked disabled>done</li></ul>`,
			want:  []string{`type="checkbox"`, "checked", "done"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, got, w)
			}
		})
	}
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "hi there", PlainText(`<p>hi <b>there</b></p>`))
}

func TestFlattenInlineTypes(t *testing.T) {
	in := `<p>ping <span data-inline-type="mention" data-user="ann">@ann</span> and <span data-inline-type="tag">#go</span></p>`

	got := FlattenInlineTypes(in, func(name string) bool { return name == "tag" })
	assert.Equal(t, `<p>ping @ann and <span data-inline-type="tag">#go</span></p>`, got)

	assert.Equal(t, `<p>ping @ann and #go</p>`, FlattenInlineTypes(in, nil))
	assert.Equal(t, "", FlattenInlineTypes("", nil))
}
