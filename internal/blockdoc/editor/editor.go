// Пакет editor строит блочное дерево документа из HTML.
//
// Распознаются два вида разметки:
//   - внутренняя разметка projector (data-node-type, data-block-*), разбирается без потерь;
//   - обычный семантический HTML: p, h1-h6, ul/ol/li (включая задачи с checkbox), pre,
//     img, table, blockquote; div, section и article прозрачны.
//
// Разбор никогда не завершается ошибкой: блоки неизвестных типов заменяются
// абзацем с их текстом, значения свойств вне домена - значениями по умолчанию,
// нечитаемый ввод - абзацем с исходным текстом.
package editor

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/gofrs/uuid"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/aisa-it/blockdoc/internal/blockdoc/editor/edtypes"
	"github.com/aisa-it/blockdoc/internal/blockdoc/editor/projector"
	policy "github.com/aisa-it/blockdoc/internal/blockdoc/redactor-policy"
	"github.com/aisa-it/blockdoc/internal/blockdoc/schema"
)

type ParseOptions struct {
	// NewID генерирует id импортированных блоков, по умолчанию uuid v4.
	NewID func() string
	// Sanitize очищает разметку политикой redactor-policy перед разбором.
	Sanitize bool
	Logger   *slog.Logger
}

// NewID возвращает новый id блока.
func NewID() string {
	return uuid.Must(uuid.NewV4()).String()
}

type parser struct {
	r     *schema.Registry
	opts  ParseOptions
	log   *slog.Logger
	newID func() string

	// пользовательские блоки с тегом внешнего HTML
	externalTags map[string]string
}

func newParser(r *schema.Registry, opts ParseOptions) *parser {
	p := &parser{
		r:            r,
		opts:         opts,
		log:          opts.Logger,
		newID:        opts.NewID,
		externalTags: make(map[string]string),
	}
	if p.log == nil {
		p.log = slog.Default()
	}
	if p.newID == nil {
		p.newID = NewID
	}
	for _, name := range r.Names(schema.KindBlock) {
		if spec, err := r.Block(name); err == nil && spec.External != "" {
			if _, ok := p.externalTags[spec.External]; !ok {
				p.externalTags[spec.External] = name
			}
		}
	}
	return p
}

// ParseHTML разбирает HTML-фрагмент в список блоков.
func ParseHTML(r io.Reader, reg *schema.Registry, opts ParseOptions) []edtypes.Block {
	p := newParser(reg, opts)
	data, err := io.ReadAll(r)
	if err != nil {
		p.log.Warn("Read markup", "err", fmt.Errorf("%w: %w", schema.ErrMarkupParse, err))
		return p.literal(string(data))
	}
	return p.parse(string(data))
}

// ParseHTMLString - ParseHTML для строки.
func ParseHTMLString(s string, reg *schema.Registry, opts ParseOptions) []edtypes.Block {
	return ParseHTML(strings.NewReader(s), reg, opts)
}

func (p *parser) parse(s string) []edtypes.Block {
	if p.opts.Sanitize {
		s = policy.Sanitize(s)
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), body)
	if err != nil {
		p.log.Warn("Parse markup, keeping literal text", "err", fmt.Errorf("%w: %w", schema.ErrMarkupParse, err))
		return p.literal(s)
	}
	return p.blocks(nodes)
}

// literal - блок-замена с исходным текстом.
func (p *parser) literal(s string) []edtypes.Block {
	b, ok := p.newBlock(schema.Paragraph, nil)
	if !ok {
		return nil
	}
	b.Content = edtypes.MergeText([]edtypes.InlineContent{edtypes.Text(s, nil)})
	return []edtypes.Block{b}
}

// newBlock создает блок типа typ со свойствами, приведенными к схеме.
// Если тип не объявлен, используется schema.FallbackType.
func (p *parser) newBlock(typ string, raw edtypes.Props) (edtypes.Block, bool) {
	spec, err := p.r.Block(typ)
	if err != nil {
		fb, ok := p.r.FallbackType()
		if !ok {
			p.log.Warn("No fallback block type in schema, dropping block", "type", typ)
			return edtypes.Block{}, false
		}
		spec = fb
	}
	b := edtypes.Block{ID: p.newID(), Type: spec.Name}
	b.Props = p.normalizeProps(spec.Props, raw)
	return b, true
}

func (p *parser) normalizeProps(ps schema.PropSchema, raw edtypes.Props) edtypes.Props {
	props, issues := schema.NormalizeProps(ps, raw)
	for _, err := range issues {
		p.log.Debug("Invalid prop value, using default", "err", err)
	}
	return props
}

// propsFromAttrs читает свойства из data-атрибутов.
func (p *parser) propsFromAttrs(ps schema.PropSchema, n *html.Node) edtypes.Props {
	raw := make(edtypes.Props)
	for name := range ps {
		if v, ok := lookupAttr(projector.PropAttr(name), n.Attr); ok {
			raw[name] = v
		}
	}
	return p.normalizeProps(ps, raw)
}

// attach добавляет вложенные блоки, если тип допускает вложенность.
// Иначе вложенные блоки возвращаются для размещения после блока.
func (p *parser) attach(b *edtypes.Block, children []edtypes.Block) []edtypes.Block {
	if len(children) == 0 {
		return nil
	}
	spec, err := p.r.Block(b.Type)
	if err != nil || !spec.AllowsChildren() {
		p.log.Debug("Block can not have children, keeping them as siblings", "type", b.Type)
		return children
	}
	b.Children = append(b.Children, children...)
	return nil
}

// blocks разбирает последовательность соседних узлов. Inline-узлы вне блоков
// собираются в абзацы.
func (p *parser) blocks(nodes []*html.Node) []edtypes.Block {
	var res []edtypes.Block
	var pending []*html.Node

	flush := func() {
		if len(pending) == 0 {
			return
		}
		content := p.inlineContent(pending, false)
		pending = nil
		if len(content) == 0 {
			return
		}
		if b, ok := p.newBlock(schema.Paragraph, nil); ok {
			b.Content = content
			res = append(res, b)
		}
	}

	for _, n := range nodes {
		if isInline(n) {
			pending = append(pending, n)
			continue
		}
		if n.Type != html.ElementNode {
			continue
		}
		flush()

		if n.Data == "div" && getAttrValue(projector.AttrNodeType, n.Attr) == projector.NodeBlockGroup {
			children := p.blocks(childNodes(n))
			if len(res) > 0 {
				children = p.attach(&res[len(res)-1], children)
			}
			res = append(res, children...)
			continue
		}
		res = append(res, p.block(n)...)
	}
	flush()

	return res
}

func (p *parser) block(n *html.Node) []edtypes.Block {
	if getAttrValue(projector.AttrNodeType, n.Attr) == projector.NodeBlockContainer {
		return p.internalBlock(n)
	}
	if attrExists(projector.AttrBlockType, n.Attr) {
		return p.typedBlock(n)
	}
	if name, ok := p.externalTags[n.Data]; ok {
		return p.customBlock(n, name)
	}

	switch n.Data {
	case "p":
		if img := onlyImage(n); img != nil {
			return p.image(img)
		}
		b, ok := p.newBlock(schema.Paragraph, alignProps(n))
		if !ok {
			return nil
		}
		b.Content = p.inlineContent(childNodes(n), false)
		return []edtypes.Block{b}
	case "h1", "h2", "h3", "h4", "h5", "h6":
		raw := alignProps(n)
		raw["level"] = int(n.Data[1] - '0')
		b, ok := p.newBlock(schema.Heading, raw)
		if !ok {
			return nil
		}
		b.Content = p.inlineContent(childNodes(n), false)
		return []edtypes.Block{b}
	case "ul", "ol":
		return p.list(n)
	case "li":
		if b, ok := p.listItem(n, schema.BulletListItem, false); ok {
			return []edtypes.Block{b}
		}
		return nil
	case "pre":
		return p.code(n)
	case "table":
		return p.table(n)
	case "img":
		return p.image(n)
	case "hr", "script", "style", "head", "title", "meta", "link", "template", "noscript", "colgroup":
		return nil
	}

	// blockquote, div, section, article и прочие контейнеры прозрачны
	return p.blocks(childNodes(n))
}

// internalBlock разбирает div[data-node-type=blockContainer].
func (p *parser) internalBlock(n *html.Node) []edtypes.Block {
	id := getAttrValue(projector.AttrBlockID, n.Attr)
	if id == "" {
		id = p.newID()
	}
	typ := getAttrValue(projector.AttrBlockType, n.Attr)

	var inlineNode, tableNode, groupNode *html.Node
	for _, c := range childNodes(n) {
		if c.Type != html.ElementNode {
			continue
		}
		switch getAttrValue(projector.AttrNodeType, c.Attr) {
		case projector.NodeInlineContent:
			inlineNode = c
		case projector.NodeTableContent:
			tableNode = c
		case projector.NodeBlockGroup:
			groupNode = c
		}
	}

	var b edtypes.Block
	spec, err := p.r.Block(typ)
	if err != nil {
		p.log.Warn("Unknown block type, substituting fallback", "type", typ, "id", id, "err", err)
		fb, ok := p.r.FallbackType()
		if !ok {
			return nil
		}
		b = edtypes.Block{ID: id, Type: fb.Name, Props: p.normalizeProps(fb.Props, nil)}
		var text []string
		if inlineNode != nil {
			text = append(text, textContent(inlineNode))
		}
		if tableNode != nil {
			text = append(text, textContent(tableNode))
		}
		b.Content = edtypes.MergeText([]edtypes.InlineContent{edtypes.Text(strings.Join(text, "\n"), nil)})
	} else {
		b = edtypes.Block{ID: id, Type: spec.Name, Props: p.propsFromAttrs(spec.Props, n)}
		switch spec.Content {
		case schema.ContentInline:
			if inlineNode != nil {
				b.Content = p.inlineContent(childNodes(inlineNode), true)
			}
		case schema.ContentTable:
			if tableNode != nil {
				b.Table = p.tableContent(tableNode, true)
			}
		}
	}

	res := []edtypes.Block{b}
	if groupNode != nil {
		rest := p.attach(&res[0], p.blocks(childNodes(groupNode)))
		res = append(res, rest...)
	}
	return res
}

// typedBlock разбирает обобщенный контейнер внешнего режима div[data-block-type].
func (p *parser) typedBlock(n *html.Node) []edtypes.Block {
	typ := getAttrValue(projector.AttrBlockType, n.Attr)
	spec, err := p.r.Block(typ)
	if err != nil {
		p.log.Warn("Unknown block type, substituting fallback", "type", typ, "err", err)
		b, ok := p.newBlock(schema.Paragraph, nil)
		if !ok {
			return nil
		}
		b.Content = p.inlineContent(childNodes(n), false)
		return []edtypes.Block{b}
	}

	b := edtypes.Block{ID: p.newID(), Type: spec.Name, Props: p.propsFromAttrs(spec.Props, n)}
	var inline []*html.Node
	for _, c := range childNodes(n) {
		if c.Type == html.ElementNode && c.Data == "table" {
			if spec.Content == schema.ContentTable && b.Table == nil {
				b.Table = p.tableContent(c, false)
			}
			continue
		}
		inline = append(inline, c)
	}
	if spec.Content == schema.ContentInline {
		b.Content = p.inlineContent(inline, false)
	}
	return []edtypes.Block{b}
}

// customBlock разбирает пользовательский блок по тегу внешнего HTML.
func (p *parser) customBlock(n *html.Node, name string) []edtypes.Block {
	spec, err := p.r.Block(name)
	if err != nil {
		return p.blocks(childNodes(n))
	}
	b := edtypes.Block{ID: p.newID(), Type: spec.Name, Props: p.propsFromAttrs(spec.Props, n)}
	if spec.Content == schema.ContentInline {
		var inline []*html.Node
		for _, c := range childNodes(n) {
			if c.Type == html.ElementNode && c.Data == "p" {
				inline = append(inline, childNodes(c)...)
				continue
			}
			inline = append(inline, c)
		}
		b.Content = p.inlineContent(inline, false)
	}
	return []edtypes.Block{b}
}

func (p *parser) list(n *html.Node) []edtypes.Block {
	typ := schema.BulletListItem
	if n.Data == "ol" {
		typ = schema.NumberedListItem
	}
	taskList := getAttrValue("data-type", n.Attr) == "taskList"

	var res []edtypes.Block
	for _, li := range childNodes(n) {
		if li.Type != html.ElementNode {
			continue
		}
		if li.Data != "li" {
			res = append(res, p.block(li)...)
			continue
		}
		if b, ok := p.listItem(li, typ, taskList); ok {
			res = append(res, b)
		}
	}
	return res
}

// listItem: первое inline-содержимое (или первый p) - текст элемента,
// остальное, включая вложенные списки, - вложенные блоки.
func (p *parser) listItem(li *html.Node, typ string, taskList bool) (edtypes.Block, bool) {
	raw := make(edtypes.Props)
	if input := checkbox(li); input != nil {
		typ = schema.CheckListItem
		raw["checked"] = attrExists("checked", input.Attr)
	} else if taskList || attrExists("data-checked", li.Attr) {
		typ = schema.CheckListItem
		raw["checked"] = getAttrValue("data-checked", li.Attr) == "true"
	}

	b, ok := p.newBlock(typ, raw)
	if !ok {
		return b, false
	}

	var inline, rest []*html.Node
	for _, c := range childNodes(li) {
		switch {
		case isBlank(c) && len(inline) == 0:
		case isInline(c) && len(rest) == 0:
			inline = append(inline, c)
		case c.Type == html.ElementNode && c.Data == "p" && len(inline) == 0 && len(rest) == 0:
			inline = append(inline, childNodes(c)...)
		default:
			rest = append(rest, c)
		}
	}

	b.Content = p.inlineContent(inline, false)
	if children := p.blocks(rest); len(children) > 0 {
		// вложенные блоки элемента списка, который их не допускает, теряются
		if extra := p.attach(&b, children); len(extra) > 0 {
			p.log.Warn("Dropping nested blocks of list item", "type", b.Type, "count", len(extra))
		}
	}
	return b, true
}

func (p *parser) code(pre *html.Node) []edtypes.Block {
	lang := ""
	var sb strings.Builder
	iterNodes(pre, func(n *html.Node) bool {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "br":
			sb.WriteByte('\n')
		case n.Type == html.ElementNode && n.Data == "code" && lang == "":
			for _, cls := range strings.Fields(getAttrValue("class", n.Attr)) {
				if l, ok := strings.CutPrefix(cls, "language-"); ok {
					lang = l
					break
				}
			}
		}
		return false
	})

	var raw edtypes.Props
	if lang != "" {
		raw = edtypes.Props{"language": lang}
	}
	b, ok := p.newBlock(schema.CodeBlock, raw)
	if !ok {
		return nil
	}
	b.Content = edtypes.MergeText([]edtypes.InlineContent{
		edtypes.Text(strings.TrimSuffix(sb.String(), "\n"), nil),
	})
	return []edtypes.Block{b}
}

func (p *parser) table(t *html.Node) []edtypes.Block {
	b, ok := p.newBlock(schema.Table, nil)
	if !ok {
		return nil
	}
	if b.Type != schema.Table {
		b.Content = p.inlineContent([]*html.Node{t}, false)
		return []edtypes.Block{b}
	}
	b.Table = p.tableContent(t, false)
	return []edtypes.Block{b}
}

// tableContent собирает строки таблицы (thead, tbody, tfoot), th и td - ячейки.
func (p *parser) tableContent(t *html.Node, verbatim bool) *edtypes.TableContent {
	var rows []edtypes.TableRow
	iterNodes(t, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "tr" {
			return false
		}
		cells := make([][]edtypes.InlineContent, 0)
		for _, c := range childNodes(n) {
			if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
				cells = append(cells, p.inlineContent(childNodes(c), verbatim))
			}
		}
		rows = append(rows, edtypes.TableRow{Cells: cells})
		return true
	})
	if len(rows) == 0 {
		return nil
	}
	return &edtypes.TableContent{Rows: rows}
}

func (p *parser) image(img *html.Node) []edtypes.Block {
	raw := edtypes.Props{
		"url":     getAttrValue("src", img.Attr),
		"caption": getAttrValue("alt", img.Attr),
	}
	if w := getAttrValue("width", img.Attr); w != "" {
		raw["previewWidth"] = strings.TrimSuffix(w, "px")
	}
	b, ok := p.newBlock(schema.Image, raw)
	if !ok {
		return nil
	}
	if b.Type != schema.Image {
		b.Content = edtypes.MergeText([]edtypes.InlineContent{edtypes.Text(getAttrValue("alt", img.Attr), nil)})
	}
	return []edtypes.Block{b}
}

func alignProps(n *html.Node) edtypes.Props {
	raw := make(edtypes.Props)
	for _, style := range parseStyles(strings.Split(getAttrValue("style", n.Attr), ";")) {
		if style.Key == "text-align" {
			raw["textAlignment"] = style.Val
		}
	}
	if align := getAttrValue("align", n.Attr); align != "" {
		raw["textAlignment"] = align
	}
	return raw
}

// checkbox ищет checkbox задачи среди детей li и первого p.
func checkbox(li *html.Node) *html.Node {
	for _, c := range childNodes(li) {
		if isCheckbox(c) {
			return c
		}
		if c.Type == html.ElementNode && c.Data == "p" {
			for _, pc := range childNodes(c) {
				if isCheckbox(pc) {
					return pc
				}
			}
			return nil
		}
	}
	return nil
}

func isCheckbox(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "input" && strings.EqualFold(getAttrValue("type", n.Attr), "checkbox")
}

// onlyImage возвращает img, если это единственный значимый узел абзаца.
func onlyImage(n *html.Node) *html.Node {
	var img *html.Node
	for _, c := range childNodes(n) {
		switch {
		case isBlank(c):
		case c.Type == html.ElementNode && c.Data == "img" && img == nil:
			img = c
		default:
			return nil
		}
	}
	return img
}

func childNodes(n *html.Node) []*html.Node {
	var res []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		res = append(res, c)
	}
	return res
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	iterNodes(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return false
	})
	return sb.String()
}

func isBlank(n *html.Node) bool {
	return n.Type == html.TextNode && strings.TrimSpace(n.Data) == ""
}

func iterNodes(node *html.Node, f func(child *html.Node) bool) {
	if f(node) {
		return
	}
	for p := node.FirstChild; p != nil; p = p.NextSibling {
		iterNodes(p, f)
	}
}

func getAttrValue(key string, attrs []html.Attribute) string {
	v, _ := lookupAttr(key, attrs)
	return v
}

func lookupAttr(key string, attrs []html.Attribute) (string, bool) {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

func attrExists(key string, attrs []html.Attribute) bool {
	return slices.ContainsFunc(attrs, func(attr html.Attribute) bool {
		return attr.Key == key
	})
}

func parseStyles(rawStyles []string) []html.Attribute {
	res := make([]html.Attribute, 0, len(rawStyles))
	for _, styleRaw := range rawStyles {
		key, val, ok := strings.Cut(styleRaw, ":")
		if !ok {
			continue
		}
		res = append(res, html.Attribute{
			Key: strings.TrimSpace(key),
			Val: strings.TrimSpace(val),
		})
	}
	return res
}
