package tiptap_test

import (
	"fmt"
	"strings"

	"github.com/aisa-it/blockdoc/internal/blockdoc/editor/tiptap"
	"github.com/aisa-it/blockdoc/internal/blockdoc/schema"
)

// ExampleDocToBlocks демонстрирует разбор JSON документа редактора в блоки.
func ExampleDocToBlocks() {
	jsonContent := `{
		"type": "doc",
		"content": [{
			"type": "blockGroup",
			"content": [{
				"type": "blockContainer",
				"attrs": {"id": "1"},
				"content": [{
					"type": "heading",
					"attrs": {"level": 2},
					"content": [
						{"type": "text", "marks": [{"type": "bold"}], "text": "Привет"},
						{"type": "text", "text": ", мир"}
					]
				}]
			}]
		}]
	}`

	doc, err := tiptap.ParseJSON(strings.NewReader(jsonContent))
	if err != nil {
		fmt.Printf("Ошибка парсинга: %v\n", err)
		return
	}

	blocks, err := tiptap.DocToBlocks(doc, schema.Default(), nil)
	if err != nil {
		fmt.Printf("Ошибка разбора: %v\n", err)
		return
	}

	for _, b := range blocks {
		fmt.Println(b.Type, b.Props["level"], b.PlainText())
	}

	// Output:
	// heading 2 Привет, мир
}
