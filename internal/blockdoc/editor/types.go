package editor

import (
	"github.com/aisa-it/blockdoc/internal/blockdoc/editor/edtypes"
)

// Реэкспорт типов модели из edtypes
type (
	Document      = edtypes.Document
	Block         = edtypes.Block
	InlineContent = edtypes.InlineContent
	TableContent  = edtypes.TableContent
	TableRow      = edtypes.TableRow
	Props         = edtypes.Props
	Styles        = edtypes.Styles
)

// Реэкспорт функций
var (
	Text      = edtypes.Text
	Link      = edtypes.Link
	MergeText = edtypes.MergeText
)
