package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator"
)

type PropType int

const (
	PropString PropType = iota
	PropNumber
	PropBoolean
)

var validate = validator.New()

func (t PropType) String() string {
	switch t {
	case PropNumber:
		return "number"
	case PropBoolean:
		return "boolean"
	default:
		return "string"
	}
}

// ParsePropType разбирает имя типа свойства из файла схемы.
func ParsePropType(raw string) (PropType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "string":
		return PropString, nil
	case "number", "int", "float":
		return PropNumber, nil
	case "boolean", "bool":
		return PropBoolean, nil
	}
	return PropString, fmt.Errorf("unknown prop type %q", raw)
}

// PropSpec - домен одного свойства: тип, значение по умолчанию,
// перечень допустимых значений и правило go-playground/validator (например "min=1,max=6").
type PropSpec struct {
	Type    PropType
	Default any
	Values  []any
	Rule    string
}

// PropSchema - свойства типа блока или inline-элемента.
type PropSchema map[string]PropSpec

// Parse приводит сырое значение (строковый атрибут, число из JSON, значение Go)
// к домену свойства. Отсутствующее значение дает значение по умолчанию без ошибки,
// значение вне домена - значение по умолчанию и ErrInvalidPropValue.
func (p PropSpec) Parse(raw any) (any, error) {
	def := p.defaultValue()
	if raw == nil {
		return def, nil
	}

	v, ok := coerce(p.Type, raw)
	if !ok {
		return def, ErrInvalidPropValue
	}

	if len(p.Values) > 0 {
		idx := slices.IndexFunc(p.Values, func(allowed any) bool {
			a, ok := coerce(p.Type, allowed)
			return ok && a == v
		})
		if idx < 0 {
			return def, ErrInvalidPropValue
		}
	}

	if p.Rule != "" {
		if err := validate.Var(v, p.Rule); err != nil {
			return def, ErrInvalidPropValue
		}
	}

	return v, nil
}

// Format возвращает строковое представление значения для HTML-атрибута.
func (p PropSpec) Format(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func (p PropSpec) defaultValue() any {
	if p.Default == nil {
		switch p.Type {
		case PropBoolean:
			return false
		case PropNumber:
			return 0
		default:
			return ""
		}
	}
	if v, ok := coerce(p.Type, p.Default); ok {
		return v
	}
	return p.Default
}

// coerce приводит значение к каноническому виду типа:
// строки - string, булевы - bool, числа - int для целых и float64 для дробных.
func coerce(t PropType, raw any) (any, bool) {
	switch t {
	case PropString:
		switch v := raw.(type) {
		case string:
			return v, true
		case bool, int, int64, uint64, float64:
			return fmt.Sprint(v), true
		}
	case PropBoolean:
		switch v := raw.(type) {
		case bool:
			return v, true
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, false
			}
			return b, true
		}
	case PropNumber:
		var f float64
		switch v := raw.(type) {
		case int:
			return v, true
		case int32:
			return int(v), true
		case int64:
			f = float64(v)
		case uint64:
			f = float64(v)
		case float32:
			f = float64(v)
		case float64:
			f = v
		case json.Number:
			parsed, err := v.Float64()
			if err != nil {
				return nil, false
			}
			f = parsed
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, false
			}
			f = parsed
		default:
			return nil, false
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int(f), true
		}
		return f, true
	}
	return nil, false
}
