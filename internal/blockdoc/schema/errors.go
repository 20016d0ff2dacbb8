package schema

import (
	"errors"
	"fmt"
)

var (
	// Ошибки времени конвертации. Поглощаются конвертерами, наружу не выходят.
	ErrSchemaMismatch        = errors.New("schema: type is not registered")
	ErrInvalidPropValue      = errors.New("schema: prop value outside of declared domain")
	ErrMarkupParse           = errors.New("schema: malformed markup")
	ErrUnsupportedConversion = errors.New("schema: type has no projection in target format")

	// Ошибка проверки документа.
	ErrDuplicateBlockID = errors.New("schema: duplicate block id")

	// Ошибки построения схемы. Возвращаются вызывающему.
	ErrDuplicateType   = errors.New("schema: duplicate type name")
	ErrUnresolvedType  = errors.New("schema: unresolved type reference")
	ErrRegistryFrozen  = errors.New("schema: registry is linked and can not be changed")
	ErrSchemaNotLinked = errors.New("schema: registry is not linked")
)

// MismatchError - тип, для которого в схеме нет описания.
type MismatchError struct {
	Kind Kind
	Name string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %s %q", ErrSchemaMismatch, e.Kind, e.Name)
}

func (e *MismatchError) Unwrap() error {
	return ErrSchemaMismatch
}

// PropError - значение свойства, замененное на значение по умолчанию.
type PropError struct {
	Prop  string
	Value any
}

func (e *PropError) Error() string {
	return fmt.Sprintf("%s: %s=%v", ErrInvalidPropValue, e.Prop, e.Value)
}

func (e *PropError) Unwrap() error {
	return ErrInvalidPropValue
}
