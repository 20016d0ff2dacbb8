package blockdoc

import (
	"github.com/aisa-it/blockdoc/internal/blockdoc/editor/edtypes"
	"github.com/aisa-it/blockdoc/internal/blockdoc/editor/tiptap"
	"github.com/aisa-it/blockdoc/internal/blockdoc/markdown"
	"github.com/aisa-it/blockdoc/internal/blockdoc/schema"
)

// Реэкспорт типов модели и схемы
type (
	Document      = edtypes.Document
	Block         = edtypes.Block
	InlineContent = edtypes.InlineContent
	TableContent  = edtypes.TableContent
	TableRow      = edtypes.TableRow
	Props         = edtypes.Props
	Styles        = edtypes.Styles

	Schema      = schema.Registry
	BlockSpec   = schema.BlockSpec
	InlineSpec  = schema.InlineSpec
	StyleSpec   = schema.StyleSpec
	PropSpec    = schema.PropSpec
	PropSchema  = schema.PropSchema
	PropType    = schema.PropType
	ContentKind = schema.ContentKind

	NativeNode = tiptap.TipTapNode
	NativeMark = tiptap.TipTapMark

	MarkdownHandler = markdown.Handler
)

// Реэкспорт констант
const (
	PropString  = schema.PropString
	PropNumber  = schema.PropNumber
	PropBoolean = schema.PropBoolean

	ContentNone   = schema.ContentNone
	ContentInline = schema.ContentInline
	ContentBlocks = schema.ContentBlocks
	ContentTable  = schema.ContentTable
)

// Реэкспорт функций и ошибок
var (
	DefaultSchema  = schema.Default
	NewSchema      = schema.New
	LoadSchemaYAML = schema.LoadYAML

	ParseNativeJSON = tiptap.ParseJSON
	SerializeNative = tiptap.Serialize

	Text        = edtypes.Text
	Link        = edtypes.Link
	CloneBlocks = edtypes.CloneBlocks

	ErrSchemaMismatch        = schema.ErrSchemaMismatch
	ErrInvalidPropValue      = schema.ErrInvalidPropValue
	ErrMarkupParse           = schema.ErrMarkupParse
	ErrUnsupportedConversion = schema.ErrUnsupportedConversion
	ErrSchemaNotLinked       = schema.ErrSchemaNotLinked
	ErrDuplicateBlockID      = schema.ErrDuplicateBlockID
)
