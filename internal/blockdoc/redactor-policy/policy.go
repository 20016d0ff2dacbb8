// Политики очистки разметки, поступающей на импорт. Политика пропускает
// семантический HTML и data-атрибуты блочной разметки и удаляет все остальное
// (скрипты, обработчики событий, внешние стили).
//
// Основные возможности:
//   - UgcPolicy - пользовательский HTML с атрибутами блочной разметки.
//   - StripTagsPolicy - только текст.
//   - FlattenInlineTypes - замена пользовательских inline-элементов их текстом.
package policy

import (
	"container/list"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/microcosm-cc/bluemonday"
)

var StripTagsPolicy *bluemonday.Policy = bluemonday.StrictPolicy()
var UgcPolicy *bluemonday.Policy = bluemonday.UGCPolicy()

func init() {
	languageRegexp := regexp.MustCompile(`^language-[\w+#.-]+$`)
	alignRegexp := regexp.MustCompile(`^(left|center|right|justify)$`)

	// блочная разметка: data-node-type, data-block-*, data-style-type, data-<свойство>
	UgcPolicy.AllowDataAttributes()

	UgcPolicy.AllowAttrs("class").Matching(languageRegexp).OnElements("code")
	UgcPolicy.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	UgcPolicy.AllowAttrs("checked", "disabled").OnElements("input")
	UgcPolicy.AllowAttrs("data-type").Matching(regexp.MustCompile("^taskList$")).OnElements("ul")
	UgcPolicy.AllowAttrs("data-checked").Matching(regexp.MustCompile("^(true|false)$")).OnElements("li")
	UgcPolicy.AllowAttrs("start").Matching(regexp.MustCompile(`^\d+$`)).OnElements("ol")

	UgcPolicy.AllowStyles("text-align").Matching(alignRegexp).Globally()
	UgcPolicy.AllowElements("s", "u", "mark")
}

// Sanitize очищает HTML по UgcPolicy.
func Sanitize(htmlContent string) string {
	return UgcPolicy.Sanitize(htmlContent)
}

// PlainText удаляет всю разметку.
func PlainText(htmlContent string) string {
	return StripTagsPolicy.Sanitize(htmlContent)
}

// FlattenInlineTypes заменяет элементы span[data-inline-type], для которых keep
// возвращает false, их текстом. Возвращает фрагмент (содержимое body).
func FlattenInlineTypes(htmlContent string, keep func(name string) bool) string {
	if htmlContent == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	queue := list.New()
	queue.PushBack(doc)

	for queue.Len() > 0 {
		element := queue.Front()
		queue.Remove(element)
		node := element.Value.(*html.Node)

		var next *html.Node

		for child := node.FirstChild; child != nil; child = next {
			next = child.NextSibling
			if name, ok := inlineType(child); ok && (keep == nil || !keep(name)) {
				flattenNode(child)
			} else if child.FirstChild != nil {
				queue.PushBack(child)
			}
		}
	}

	body := findBody(doc)
	if body == nil {
		return htmlContent
	}

	var result strings.Builder
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		html.Render(&result, c)
	}
	return result.String()
}

func inlineType(node *html.Node) (string, bool) {
	if node.Type != html.ElementNode || node.Data != "span" {
		return "", false
	}
	for _, attr := range node.Attr {
		if attr.Key == "data-inline-type" {
			return attr.Val, true
		}
	}
	return "", false
}

func flattenNode(node *html.Node) {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)

	textNode := &html.Node{
		Type: html.TextNode,
		Data: sb.String(),
	}

	node.Parent.InsertBefore(textNode, node)
	node.Parent.RemoveChild(node)
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
