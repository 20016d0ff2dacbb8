// Пакет schema описывает словарь документа: типы блоков, inline-элементов и стилей
// с типизированными схемами свойств.
//
// Регистрация двухфазная: сначала объявляются все имена (Declare), затем
// привязываются описания (DefineBlock, DefineInline, DefineStyle), после чего
// Link проверяет ссылки между типами и замораживает реестр. Замороженный реестр
// только читается и может использоваться из нескольких горутин.
package schema

import (
	"fmt"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

type Kind int

const (
	KindBlock Kind = iota
	KindInline
	KindStyle
)

func (k Kind) String() string {
	switch k {
	case KindInline:
		return "inline content"
	case KindStyle:
		return "style"
	default:
		return "block"
	}
}

// ContentKind - вид содержимого блока.
type ContentKind int

const (
	ContentNone ContentKind = iota
	ContentInline
	ContentBlocks
	ContentTable
)

func (c ContentKind) String() string {
	switch c {
	case ContentInline:
		return "inline"
	case ContentBlocks:
		return "blocks"
	case ContentTable:
		return "table"
	default:
		return "none"
	}
}

func ParseContentKind(raw string) (ContentKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none":
		return ContentNone, nil
	case "inline":
		return ContentInline, nil
	case "blocks", "nestedblocks":
		return ContentBlocks, nil
	case "table":
		return ContentTable, nil
	}
	return ContentNone, fmt.Errorf("unknown content kind %q", raw)
}

// BlockSpec - описание типа блока.
//
// Container разрешает вложенные блоки (Children). Для ContentBlocks вложенные
// блоки и есть содержимое, поэтому такой тип всегда контейнер.
// ChildTypes ограничивает типы вложенных блоков, пустой список - любые.
// External задает тег внешнего HTML для пользовательских типов.
type BlockSpec struct {
	Name       string
	Props      PropSchema
	Content    ContentKind
	Container  bool
	ChildTypes []string
	External   string
}

// AllowsChildren сообщает, может ли блок иметь вложенные блоки.
func (s BlockSpec) AllowsChildren() bool {
	return s.Container || s.Content == ContentBlocks
}

// AllowsChild проверяет тип вложенного блока по ChildTypes.
func (s BlockSpec) AllowsChild(name string) bool {
	if !s.AllowsChildren() {
		return false
	}
	return len(s.ChildTypes) == 0 || slices.Contains(s.ChildTypes, name)
}

// InlineSpec - описание типа inline-элемента.
type InlineSpec struct {
	Name    string
	Props   PropSchema
	Content ContentKind
}

// StyleSpec - описание стиля. Value - PropBoolean или PropString,
// Tag - канонический тег внешнего HTML (strong, em, ...), пустой для пользовательских стилей.
type StyleSpec struct {
	Name  string
	Value PropType
	Tag   string
}

// Registry - реестр типов документа.
type Registry struct {
	declared map[Kind]mapset.Set[string]
	order    map[Kind][]string

	blocks map[string]BlockSpec
	inline map[string]InlineSpec
	styles map[string]StyleSpec

	linked bool
}

func NewRegistry() *Registry {
	return &Registry{
		declared: map[Kind]mapset.Set[string]{
			KindBlock:  mapset.NewThreadUnsafeSet[string](),
			KindInline: mapset.NewThreadUnsafeSet[string](),
			KindStyle:  mapset.NewThreadUnsafeSet[string](),
		},
		order:  make(map[Kind][]string),
		blocks: make(map[string]BlockSpec),
		inline: make(map[string]InlineSpec),
		styles: make(map[string]StyleSpec),
	}
}

// New строит и связывает реестр за один вызов.
func New(blocks []BlockSpec, inline []InlineSpec, styles []StyleSpec) (*Registry, error) {
	r := NewRegistry()
	if err := r.DefineAll(blocks, inline, styles); err != nil {
		return nil, err
	}
	if err := r.Link(); err != nil {
		return nil, err
	}
	return r, nil
}

// DefineAll объявляет все имена и затем привязывает описания.
func (r *Registry) DefineAll(blocks []BlockSpec, inline []InlineSpec, styles []StyleSpec) error {
	for _, b := range blocks {
		if err := r.Declare(KindBlock, b.Name); err != nil {
			return err
		}
	}
	for _, i := range inline {
		if err := r.Declare(KindInline, i.Name); err != nil {
			return err
		}
	}
	for _, s := range styles {
		if err := r.Declare(KindStyle, s.Name); err != nil {
			return err
		}
	}

	for _, b := range blocks {
		if err := r.DefineBlock(b); err != nil {
			return err
		}
	}
	for _, i := range inline {
		if err := r.DefineInline(i); err != nil {
			return err
		}
	}
	for _, s := range styles {
		if err := r.DefineStyle(s); err != nil {
			return err
		}
	}
	return nil
}

// Declare - первая фаза: объявление имен типов.
func (r *Registry) Declare(kind Kind, names ...string) error {
	if r.linked {
		return ErrRegistryFrozen
	}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("%w: empty %s name", ErrUnresolvedType, kind)
		}
		if !r.declared[kind].Add(name) {
			return fmt.Errorf("%w: %s %q", ErrDuplicateType, kind, name)
		}
		r.order[kind] = append(r.order[kind], name)
	}
	return nil
}

// DefineBlock - вторая фаза: описание объявленного типа блока.
func (r *Registry) DefineBlock(spec BlockSpec) error {
	if err := r.checkDefine(KindBlock, spec.Name); err != nil {
		return err
	}
	if _, ok := r.blocks[spec.Name]; ok {
		return fmt.Errorf("%w: block %q redefined", ErrDuplicateType, spec.Name)
	}
	if spec.Content == ContentBlocks {
		spec.Container = true
	}
	r.blocks[spec.Name] = spec
	return nil
}

func (r *Registry) DefineInline(spec InlineSpec) error {
	if err := r.checkDefine(KindInline, spec.Name); err != nil {
		return err
	}
	if _, ok := r.inline[spec.Name]; ok {
		return fmt.Errorf("%w: inline content %q redefined", ErrDuplicateType, spec.Name)
	}
	r.inline[spec.Name] = spec
	return nil
}

func (r *Registry) DefineStyle(spec StyleSpec) error {
	if err := r.checkDefine(KindStyle, spec.Name); err != nil {
		return err
	}
	if _, ok := r.styles[spec.Name]; ok {
		return fmt.Errorf("%w: style %q redefined", ErrDuplicateType, spec.Name)
	}
	if spec.Value != PropBoolean && spec.Value != PropString {
		return fmt.Errorf("style %q: value must be boolean or string, got %s", spec.Name, spec.Value)
	}
	r.styles[spec.Name] = spec
	return nil
}

func (r *Registry) checkDefine(kind Kind, name string) error {
	if r.linked {
		return ErrRegistryFrozen
	}
	if !r.declared[kind].Contains(name) {
		return fmt.Errorf("%w: %s %q is not declared", ErrUnresolvedType, kind, name)
	}
	return nil
}

// Link проверяет, что каждое объявленное имя описано и все ссылки между
// типами разрешаются, и замораживает реестр.
func (r *Registry) Link() error {
	if r.linked {
		return nil
	}

	var errs []string
	for _, kind := range []Kind{KindBlock, KindInline, KindStyle} {
		for _, name := range r.order[kind] {
			if !r.defined(kind, name) {
				errs = append(errs, fmt.Sprintf("%s %q declared but not defined", kind, name))
			}
		}
	}

	needsText := false
	for _, name := range r.order[KindBlock] {
		spec, ok := r.blocks[name]
		if !ok {
			continue
		}
		if spec.Content == ContentInline || spec.Content == ContentTable {
			needsText = true
		}
		for _, child := range spec.ChildTypes {
			if !r.declared[KindBlock].Contains(child) {
				errs = append(errs, fmt.Sprintf("block %q references undeclared child block %q", name, child))
			}
		}
	}
	if needsText && !r.declared[KindInline].Contains("text") {
		errs = append(errs, `inline content "text" is required by blocks with inline content`)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrUnresolvedType, strings.Join(errs, "; "))
	}

	r.linked = true
	return nil
}

func (r *Registry) defined(kind Kind, name string) bool {
	var ok bool
	switch kind {
	case KindBlock:
		_, ok = r.blocks[name]
	case KindInline:
		_, ok = r.inline[name]
	case KindStyle:
		_, ok = r.styles[name]
	}
	return ok
}

// Linked сообщает, завершена ли регистрация.
func (r *Registry) Linked() bool {
	return r != nil && r.linked
}

// Extend возвращает новый несвязанный реестр с копиями всех описаний.
// Исходный реестр не меняется.
func (r *Registry) Extend() *Registry {
	res := NewRegistry()
	for _, kind := range []Kind{KindBlock, KindInline, KindStyle} {
		_ = res.Declare(kind, r.order[kind]...)
	}
	for _, name := range r.order[KindBlock] {
		spec, ok := r.blocks[name]
		if !ok {
			continue
		}
		spec.Props = clonePropSchema(spec.Props)
		spec.ChildTypes = slices.Clone(spec.ChildTypes)
		res.blocks[name] = spec
	}
	for _, name := range r.order[KindInline] {
		if spec, ok := r.inline[name]; ok {
			spec.Props = clonePropSchema(spec.Props)
			res.inline[name] = spec
		}
	}
	for _, name := range r.order[KindStyle] {
		if spec, ok := r.styles[name]; ok {
			res.styles[name] = spec
		}
	}
	return res
}

// Resolve ищет описание типа по имени и виду.
func (r *Registry) Resolve(name string, kind Kind) (any, error) {
	switch kind {
	case KindInline:
		return r.Inline(name)
	case KindStyle:
		return r.Style(name)
	default:
		return r.Block(name)
	}
}

func (r *Registry) Block(name string) (BlockSpec, error) {
	spec, ok := r.blocks[name]
	if !ok {
		return BlockSpec{}, &MismatchError{Kind: KindBlock, Name: name}
	}
	return spec, nil
}

func (r *Registry) Inline(name string) (InlineSpec, error) {
	spec, ok := r.inline[name]
	if !ok {
		return InlineSpec{}, &MismatchError{Kind: KindInline, Name: name}
	}
	return spec, nil
}

func (r *Registry) Style(name string) (StyleSpec, error) {
	spec, ok := r.styles[name]
	if !ok {
		return StyleSpec{}, &MismatchError{Kind: KindStyle, Name: name}
	}
	return spec, nil
}

// Names возвращает имена типов в порядке объявления.
func (r *Registry) Names(kind Kind) []string {
	return slices.Clone(r.order[kind])
}

// StyleByTag ищет стиль по каноническому тегу внешнего HTML.
func (r *Registry) StyleByTag(tag string) (StyleSpec, bool) {
	for _, name := range r.order[KindStyle] {
		if spec, ok := r.styles[name]; ok && spec.Tag != "" && spec.Tag == tag {
			return spec, true
		}
	}
	return StyleSpec{}, false
}

func clonePropSchema(ps PropSchema) PropSchema {
	if ps == nil {
		return nil
	}
	res := make(PropSchema, len(ps))
	for k, v := range ps {
		v.Values = slices.Clone(v.Values)
		res[k] = v
	}
	return res
}
