package schema

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

type yamlProp struct {
	Type    string `yaml:"type"`
	Default any    `yaml:"default"`
	Values  []any  `yaml:"values"`
	Rule    string `yaml:"rule"`
}

type yamlBlock struct {
	Name       string              `yaml:"name"`
	Content    string              `yaml:"content"`
	Container  bool                `yaml:"container"`
	ChildTypes []string            `yaml:"children"`
	External   string              `yaml:"external"`
	Props      map[string]yamlProp `yaml:"props"`
}

type yamlInline struct {
	Name    string              `yaml:"name"`
	Content string              `yaml:"content"`
	Props   map[string]yamlProp `yaml:"props"`
}

type yamlStyle struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
	Tag   string `yaml:"tag"`
}

type yamlFile struct {
	Blocks []yamlBlock  `yaml:"blocks"`
	Inline []yamlInline `yaml:"inline"`
	Styles []yamlStyle  `yaml:"styles"`
}

// LoadYAML читает описание дополнительных типов и возвращает связанный реестр,
// расширяющий base. Если base равен nil, расширяется Default().
//
//	blocks:
//	  - name: callout
//	    content: inline
//	    container: true
//	    external: blockquote
//	    props:
//	      kind: {type: string, default: info, values: [info, warning]}
//	styles:
//	  - name: highlight
//	    value: string
//	    tag: mark
func LoadYAML(r io.Reader, base *Registry) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}

	var file yamlFile
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("decode schema: %w", err)
		}
	}

	if base == nil {
		base = Default()
	}

	blocks := make([]BlockSpec, 0, len(file.Blocks))
	for _, b := range file.Blocks {
		content, err := ParseContentKind(b.Content)
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", b.Name, err)
		}
		props, err := convertYAMLProps(b.Props)
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", b.Name, err)
		}
		blocks = append(blocks, BlockSpec{
			Name:       b.Name,
			Props:      props,
			Content:    content,
			Container:  b.Container,
			ChildTypes: b.ChildTypes,
			External:   b.External,
		})
	}

	inline := make([]InlineSpec, 0, len(file.Inline))
	for _, i := range file.Inline {
		content, err := ParseContentKind(i.Content)
		if err != nil {
			return nil, fmt.Errorf("inline content %q: %w", i.Name, err)
		}
		props, err := convertYAMLProps(i.Props)
		if err != nil {
			return nil, fmt.Errorf("inline content %q: %w", i.Name, err)
		}
		inline = append(inline, InlineSpec{Name: i.Name, Props: props, Content: content})
	}

	styles := make([]StyleSpec, 0, len(file.Styles))
	for _, s := range file.Styles {
		value, err := ParsePropType(s.Value)
		if err != nil {
			return nil, fmt.Errorf("style %q: %w", s.Name, err)
		}
		styles = append(styles, StyleSpec{Name: s.Name, Value: value, Tag: s.Tag})
	}

	res := base.Extend()
	if err := res.DefineAll(blocks, inline, styles); err != nil {
		return nil, err
	}
	if err := res.Link(); err != nil {
		return nil, err
	}
	return res, nil
}

func convertYAMLProps(raw map[string]yamlProp) (PropSchema, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	res := make(PropSchema, len(raw))
	for name, p := range raw {
		t, err := ParsePropType(p.Type)
		if err != nil {
			return nil, fmt.Errorf("prop %q: %w", name, err)
		}
		res[name] = PropSpec{Type: t, Default: p.Default, Values: p.Values, Rule: p.Rule}
	}
	return res, nil
}
