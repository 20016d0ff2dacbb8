package editor

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/aisa-it/blockdoc/internal/blockdoc/editor/edtypes"
	"github.com/aisa-it/blockdoc/internal/blockdoc/editor/projector"
	"github.com/aisa-it/blockdoc/internal/blockdoc/schema"
)

var spaceRe = regexp.MustCompile(`\s+`)

// Синонимы тегов стилей.
var tagAliases = map[string]string{
	"b":      "strong",
	"i":      "em",
	"del":    "s",
	"strike": "s",
	"ins":    "u",
}

var inlineTags = map[atom.Atom]bool{
	atom.A: true, atom.Abbr: true, atom.B: true, atom.Br: true, atom.Cite: true,
	atom.Code: true, atom.Del: true, atom.Em: true, atom.Font: true, atom.I: true,
	atom.Input: true, atom.Ins: true, atom.Kbd: true, atom.Label: true, atom.Mark: true,
	atom.Q: true, atom.S: true, atom.Samp: true, atom.Small: true, atom.Span: true,
	atom.Strike: true, atom.Strong: true, atom.Sub: true, atom.Sup: true, atom.Time: true,
	atom.U: true, atom.Var: true,
}

// isInline сообщает, относится ли узел к inline-содержимому.
func isInline(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return true
	case html.ElementNode:
		return inlineTags[n.DataAtom]
	}
	return false
}

type inlineCtx struct {
	styles edtypes.Styles
	href   string
}

func (c inlineCtx) withStyle(name string, value any) inlineCtx {
	styles := make(edtypes.Styles, len(c.styles)+1)
	for k, v := range c.styles {
		styles[k] = v
	}
	styles[name] = value
	c.styles = styles
	return c
}

// inlineBuilder собирает inline-содержимое. Вне режима verbatim пробельные
// символы схлопываются как при отображении HTML.
type inlineBuilder struct {
	p        *parser
	verbatim bool
	out      []edtypes.InlineContent
	// последний выведенный символ - пробел или начало строки
	space bool
}

func (p *parser) inlineContent(nodes []*html.Node, verbatim bool) []edtypes.InlineContent {
	b := &inlineBuilder{p: p, verbatim: verbatim, space: true}
	for _, n := range nodes {
		b.walk(n, inlineCtx{})
	}
	return b.finish()
}

func (b *inlineBuilder) walk(n *html.Node, ctx inlineCtx) {
	switch n.Type {
	case html.TextNode:
		b.addText(n.Data, ctx)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.Data {
	case "br":
		b.addBreak(ctx)
		return
	case "input", "img", "script", "style", "template":
		return
	case "a":
		if href := getAttrValue("href", n.Attr); href != "" {
			ctx.href = href
		}
	case "span":
		if attrExists(projector.AttrInlineType, n.Attr) {
			b.custom(n, ctx)
			return
		}
		if name, ok := lookupAttr(projector.AttrStyleType, n.Attr); ok {
			spec, err := b.p.r.Style(name)
			if err != nil {
				b.p.log.Debug("Unknown style, dropping", "style", name, "err", err)
				break
			}
			if spec.Value == schema.PropBoolean {
				ctx = ctx.withStyle(spec.Name, true)
			} else if v := getAttrValue(projector.AttrValue, n.Attr); v != "" {
				ctx = ctx.withStyle(spec.Name, v)
			}
		}
	default:
		tag := n.Data
		if alias, ok := tagAliases[tag]; ok {
			tag = alias
		}
		if spec, ok := b.p.r.StyleByTag(tag); ok {
			if spec.Value == schema.PropBoolean {
				ctx = ctx.withStyle(spec.Name, true)
			} else if v := getAttrValue(projector.AttrValue, n.Attr); v != "" {
				ctx = ctx.withStyle(spec.Name, v)
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.walk(c, ctx)
	}
}

// custom разбирает span[data-inline-type]. Неизвестный тип сохраняется текстом.
func (b *inlineBuilder) custom(n *html.Node, ctx inlineCtx) {
	typ := getAttrValue(projector.AttrInlineType, n.Attr)
	spec, err := b.p.r.Inline(typ)
	if err != nil {
		b.p.log.Debug("Unknown inline content type, keeping text", "type", typ, "err", err)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			b.walk(c, ctx)
		}
		return
	}

	sub := &inlineBuilder{p: b.p, verbatim: b.verbatim, space: b.space}
	if spec.Content == schema.ContentInline {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			sub.walk(c, inlineCtx{styles: ctx.styles})
		}
		b.space = sub.space
	}

	b.out = append(b.out, edtypes.InlineContent{
		Type:    spec.Name,
		Props:   b.p.propsFromAttrs(spec.Props, n),
		Content: edtypes.MergeText(sub.out),
	})
}

func (b *inlineBuilder) addText(s string, ctx inlineCtx) {
	if !b.verbatim {
		s = spaceRe.ReplaceAllString(s, " ")
		if b.space {
			s = strings.TrimPrefix(s, " ")
		}
		if s == "" {
			return
		}
		b.space = strings.HasSuffix(s, " ")
	}
	b.add(edtypes.Text(s, ctx.styles.Clone()), ctx.href)
}

func (b *inlineBuilder) addBreak(ctx inlineCtx) {
	if !b.verbatim {
		b.trimTrailingSpace()
	}
	b.add(edtypes.Text("\n", ctx.styles.Clone()), ctx.href)
	b.space = true
}

// add добавляет фрагмент, соседние фрагменты одной ссылки объединяются.
func (b *inlineBuilder) add(run edtypes.InlineContent, href string) {
	if href == "" {
		b.out = append(b.out, run)
		return
	}
	if n := len(b.out); n > 0 && b.out[n-1].Type == edtypes.InlineLink && b.out[n-1].Href == href {
		b.out[n-1].Content = append(b.out[n-1].Content, run)
		return
	}
	b.out = append(b.out, edtypes.Link(href, run))
}

func (b *inlineBuilder) trimTrailingSpace() {
	if len(b.out) == 0 {
		return
	}
	last := &b.out[len(b.out)-1]
	if last.Type == edtypes.InlineLink && len(last.Content) > 0 {
		last = &last.Content[len(last.Content)-1]
	}
	if last.IsText() {
		last.Text = strings.TrimRight(last.Text, " ")
	}
}

func (b *inlineBuilder) finish() []edtypes.InlineContent {
	if !b.verbatim {
		b.trimTrailingSpace()
	}
	res := edtypes.MergeText(b.out)
	// ссылка без текста не сохраняется
	n := 0
	for _, c := range res {
		if c.Type == edtypes.InlineLink && len(c.Content) == 0 {
			continue
		}
		res[n] = c
		n++
	}
	if n == 0 {
		return nil
	}
	return res[:n]
}
