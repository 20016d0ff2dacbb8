package schema

import (
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/aisa-it/blockdoc/internal/blockdoc/editor/edtypes"
)

// NormalizeProps приводит свойства к домену схемы: заполняет значения по умолчанию,
// заменяет значения вне домена и отбрасывает необъявленные свойства.
// Исходная карта не меняется. Все поглощенные нарушения возвращаются списком.
func NormalizeProps(ps PropSchema, props edtypes.Props) (edtypes.Props, []error) {
	var issues []error
	res := make(edtypes.Props, len(ps))
	for name, spec := range ps {
		raw := props[name]
		v, err := spec.Parse(raw)
		if err != nil {
			issues = append(issues, &PropError{Prop: name, Value: raw})
		}
		res[name] = v
	}
	for name, raw := range props {
		if _, ok := ps[name]; !ok {
			issues = append(issues, &PropError{Prop: name, Value: raw})
		}
	}
	if len(res) == 0 {
		return nil, issues
	}
	return res, issues
}

// NormalizeStyles оставляет только объявленные стили и приводит значения:
// булевы стили - true, строковые - непустая строка.
func (r *Registry) NormalizeStyles(styles edtypes.Styles) (edtypes.Styles, []error) {
	if len(styles) == 0 {
		return nil, nil
	}
	var issues []error
	res := make(edtypes.Styles, len(styles))
	for _, name := range styles.Keys() {
		spec, err := r.Style(name)
		if err != nil {
			issues = append(issues, err)
			continue
		}
		raw := styles[name]
		switch spec.Value {
		case PropBoolean:
			if b, ok := raw.(bool); ok && !b {
				continue
			}
			res[name] = true
		case PropString:
			s, ok := raw.(string)
			if !ok {
				s = fmt.Sprint(raw)
			}
			if s == "" {
				continue
			}
			res[name] = s
		}
	}
	if len(res) == 0 {
		return nil, issues
	}
	return res, issues
}

// NormalizeInline нормализует inline-содержимое и склеивает соседние фрагменты.
// Неизвестные inline-типы заменяются их текстом.
func (r *Registry) NormalizeInline(content []edtypes.InlineContent) ([]edtypes.InlineContent, []error) {
	var issues []error
	res := make([]edtypes.InlineContent, 0, len(content))
	for _, c := range content {
		switch {
		case c.IsText():
			styles, errs := r.NormalizeStyles(c.Styles)
			issues = append(issues, errs...)
			res = append(res, edtypes.Text(c.Text, styles))
		default:
			spec, err := r.Inline(c.Type)
			if err != nil {
				issues = append(issues, err)
				res = append(res, edtypes.Text(c.PlainText(), nil))
				continue
			}
			item := edtypes.InlineContent{Type: c.Type, Href: c.Href}
			var errs []error
			item.Props, errs = NormalizeProps(spec.Props, c.Props)
			issues = append(issues, errs...)
			if spec.Content == ContentInline || c.Type == edtypes.InlineLink {
				inner := make([]edtypes.InlineContent, 0, len(c.Content))
				for _, ic := range c.Content {
					styles, errs := r.NormalizeStyles(ic.Styles)
					issues = append(issues, errs...)
					inner = append(inner, edtypes.Text(ic.PlainText(), styles))
				}
				item.Content = edtypes.MergeText(inner)
			}
			res = append(res, item)
		}
	}
	res = edtypes.MergeText(res)
	if len(res) == 0 {
		return nil, issues
	}
	return res, issues
}

// NormalizeBlock возвращает нормализованную копию блока.
// Блок неизвестного типа возвращается без изменений вместе с MismatchError:
// решение о замене принимает вызывающий.
func (r *Registry) NormalizeBlock(b edtypes.Block) (edtypes.Block, []error) {
	spec, err := r.Block(b.Type)
	if err != nil {
		return b.Clone(), []error{err}
	}

	var issues []error
	res := edtypes.Block{ID: b.ID, Type: b.Type}
	res.Props, issues = NormalizeProps(spec.Props, b.Props)

	switch spec.Content {
	case ContentInline:
		var errs []error
		res.Content, errs = r.NormalizeInline(b.Content)
		issues = append(issues, errs...)
	case ContentTable:
		if b.Table != nil {
			table := &edtypes.TableContent{Rows: make([]edtypes.TableRow, 0, len(b.Table.Rows))}
			for _, row := range b.Table.Rows {
				cells := make([][]edtypes.InlineContent, 0, len(row.Cells))
				for _, cell := range row.Cells {
					c, errs := r.NormalizeInline(cell)
					issues = append(issues, errs...)
					cells = append(cells, c)
				}
				table.Rows = append(table.Rows, edtypes.TableRow{Cells: cells})
			}
			res.Table = table
		}
	}

	if len(b.Children) > 0 {
		if spec.AllowsChildren() {
			var errs []error
			res.Children, errs = r.NormalizeBlocks(b.Children)
			issues = append(issues, errs...)
		} else {
			issues = append(issues, fmt.Errorf("block %q of type %q: %w: children on non-container", b.ID, b.Type, ErrSchemaMismatch))
		}
	}

	return res, issues
}

// NormalizeBlocks нормализует список блоков.
func (r *Registry) NormalizeBlocks(blocks []edtypes.Block) ([]edtypes.Block, []error) {
	if blocks == nil {
		return nil, nil
	}
	var issues []error
	res := make([]edtypes.Block, 0, len(blocks))
	for _, b := range blocks {
		nb, errs := r.NormalizeBlock(b)
		issues = append(issues, errs...)
		res = append(res, nb)
	}
	return res, issues
}

// Validate проверяет инварианты документа: уникальность id, известность типов,
// домены свойств и вложенность только в контейнерах.
func (r *Registry) Validate(blocks []edtypes.Block) error {
	seen := make(map[string]struct{})
	var errs []error

	var walk func(parent *BlockSpec, blocks []edtypes.Block)
	walk = func(parent *BlockSpec, blocks []edtypes.Block) {
		for _, b := range blocks {
			if b.ID == "" {
				errs = append(errs, fmt.Errorf("block of type %q has empty id", b.Type))
			} else if _, ok := seen[b.ID]; ok {
				errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateBlockID, b.ID))
			}
			seen[b.ID] = struct{}{}

			spec, err := r.Block(b.Type)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if parent != nil && !parent.AllowsChild(b.Type) {
				errs = append(errs, fmt.Errorf("block %q: type %q is not allowed inside %q", b.ID, b.Type, parent.Name))
			}
			for name, propSpec := range spec.Props {
				v, ok := b.Props[name]
				if !ok {
					continue
				}
				parsed, err := propSpec.Parse(v)
				if err != nil || !reflect.DeepEqual(parsed, v) {
					errs = append(errs, fmt.Errorf("block %q: %w", b.ID, &PropError{Prop: name, Value: v}))
				}
			}
			for name := range b.Props {
				if _, ok := spec.Props[name]; !ok {
					errs = append(errs, fmt.Errorf("block %q: %w", b.ID, &PropError{Prop: name, Value: b.Props[name]}))
				}
			}
			if len(b.Children) > 0 && !spec.AllowsChildren() {
				errs = append(errs, fmt.Errorf("block %q: type %q can not have children", b.ID, b.Type))
			}
			walk(&spec, b.Children)
		}
	}
	walk(nil, blocks)

	return errors.Join(errs...)
}

// Names возвращает имена свойств схемы по возрастанию.
func (ps PropSchema) Names() []string {
	names := make([]string, 0, len(ps))
	for name := range ps {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// FallbackType возвращает тип блока, которым заменяются блоки неизвестных типов:
// paragraph, а если его нет - первый объявленный блок с inline-содержимым.
func (r *Registry) FallbackType() (BlockSpec, bool) {
	if spec, ok := r.blocks[Paragraph]; ok && spec.Content == ContentInline {
		return spec, true
	}
	for _, name := range r.order[KindBlock] {
		if spec, ok := r.blocks[name]; ok && spec.Content == ContentInline {
			return spec, true
		}
	}
	return BlockSpec{}, false
}

// Degrade нормализует блоки и заменяет блоки неизвестных типов блоком FallbackType
// с их видимым текстом. Вложенные блоки сохраняются, если замена их допускает.
// Если заменить не на что, блок отбрасывается.
func (r *Registry) Degrade(blocks []edtypes.Block) ([]edtypes.Block, []error) {
	if blocks == nil {
		return nil, nil
	}
	var issues []error
	res := make([]edtypes.Block, 0, len(blocks))
	for _, b := range blocks {
		children := b.Children
		b.Children = nil

		var nb edtypes.Block
		spec, err := r.Block(b.Type)
		if err != nil {
			issues = append(issues, err)
			fb, ok := r.FallbackType()
			if !ok {
				continue
			}
			spec = fb
			nb = edtypes.Block{ID: b.ID, Type: fb.Name}
			nb.Props, _ = NormalizeProps(fb.Props, nil)
			nb.Content = edtypes.MergeText([]edtypes.InlineContent{edtypes.Text(b.PlainText(), nil)})
		} else {
			var errs []error
			nb, errs = r.NormalizeBlock(b)
			issues = append(issues, errs...)
		}

		if len(children) > 0 {
			if spec.AllowsChildren() {
				var errs []error
				nb.Children, errs = r.Degrade(children)
				issues = append(issues, errs...)
			} else {
				issues = append(issues, fmt.Errorf("block %q of type %q: %w: children on non-container", b.ID, spec.Name, ErrSchemaMismatch))
			}
		}
		res = append(res, nb)
	}
	return res, issues
}
