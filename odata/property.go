package odata

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"time"
)

// EdmType identifies the service-side type of a property value.
type EdmType string

const (
	EdmString   EdmType = "Edm.String"
	EdmBoolean  EdmType = "Edm.Boolean"
	EdmInt32    EdmType = "Edm.Int32"
	EdmInt64    EdmType = "Edm.Int64"
	EdmDouble   EdmType = "Edm.Double"
	EdmDateTime EdmType = "Edm.DateTime"
	EdmBinary   EdmType = "Edm.Binary"
	EdmGuid     EdmType = "Edm.Guid"
)

// annotated reports whether values of this type need a @odata.type
// annotation because JSON cannot carry them natively.
func (t EdmType) annotated() bool {
	switch t {
	case EdmInt64, EdmBinary, EdmDateTime, EdmGuid:
		return true
	}
	return false
}

// Property is a single EDM-typed column value.
type Property struct {
	Type  EdmType
	Value any
}

// Properties is the column set of one row, keyed by property name.
type Properties map[string]Property

func String(v string) Property      { return Property{Type: EdmString, Value: v} }
func Bool(v bool) Property          { return Property{Type: EdmBoolean, Value: v} }
func Int32(v int32) Property        { return Property{Type: EdmInt32, Value: v} }
func Int64(v int64) Property        { return Property{Type: EdmInt64, Value: v} }
func Double(v float64) Property     { return Property{Type: EdmDouble, Value: v} }
func DateTime(v time.Time) Property { return Property{Type: EdmDateTime, Value: v.UTC()} }
func Binary(v []byte) Property      { return Property{Type: EdmBinary, Value: v} }
func Guid(v string) Property        { return Property{Type: EdmGuid, Value: v} }

// wireValue converts the property value to its JSON representation.
func (p Property) wireValue() (any, error) {
	switch p.Type {
	case EdmString, EdmGuid:
		v, ok := p.Value.(string)
		if !ok {
			return nil, fmt.Errorf("odata: %s property holds %T, want string", p.Type, p.Value)
		}
		return v, nil
	case EdmBoolean:
		v, ok := p.Value.(bool)
		if !ok {
			return nil, fmt.Errorf("odata: %s property holds %T, want bool", p.Type, p.Value)
		}
		return v, nil
	case EdmInt32:
		v, ok := p.Value.(int32)
		if !ok {
			return nil, fmt.Errorf("odata: %s property holds %T, want int32", p.Type, p.Value)
		}
		return v, nil
	case EdmInt64:
		v, ok := p.Value.(int64)
		if !ok {
			return nil, fmt.Errorf("odata: %s property holds %T, want int64", p.Type, p.Value)
		}
		// Int64 travels as a string to survive JSON number precision.
		return strconv.FormatInt(v, 10), nil
	case EdmDouble:
		v, ok := p.Value.(float64)
		if !ok {
			return nil, fmt.Errorf("odata: %s property holds %T, want float64", p.Type, p.Value)
		}
		return v, nil
	case EdmDateTime:
		v, ok := p.Value.(time.Time)
		if !ok {
			return nil, fmt.Errorf("odata: %s property holds %T, want time.Time", p.Type, p.Value)
		}
		return v.UTC().Format(timeFormat), nil
	case EdmBinary:
		v, ok := p.Value.([]byte)
		if !ok {
			return nil, fmt.Errorf("odata: %s property holds %T, want []byte", p.Type, p.Value)
		}
		return base64.StdEncoding.EncodeToString(v), nil
	default:
		return nil, fmt.Errorf("odata: unsupported property type %q", p.Type)
	}
}

// timeFormat is the service's DateTime wire layout (UTC, 7 fractional
// digits max, Z suffix). RFC3339Nano drops trailing zeros which the
// service accepts.
const timeFormat = "2006-01-02T15:04:05.9999999Z"

// parseProperty converts a decoded JSON value plus its type annotation back
// into a Property. Values without an annotation keep their native JSON type.
func parseProperty(raw any, edm EdmType) (Property, error) {
	if edm == "" {
		switch v := raw.(type) {
		case string:
			return String(v), nil
		case bool:
			return Bool(v), nil
		case float64:
			// JSON numbers without annotation are Int32 when integral and
			// in range, Double otherwise.
			if v == float64(int64(v)) && v >= -2147483648 && v <= 2147483647 {
				return Int32(int32(v)), nil
			}
			return Double(v), nil
		default:
			return Property{}, fmt.Errorf("odata: unannotated property holds %T", raw)
		}
	}

	s, isString := raw.(string)
	switch edm {
	case EdmInt64:
		if !isString {
			return Property{}, fmt.Errorf("odata: Edm.Int64 wire value is %T, want string", raw)
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Property{}, fmt.Errorf("odata: parse Edm.Int64 %q: %w", s, err)
		}
		return Int64(v), nil
	case EdmBinary:
		if !isString {
			return Property{}, fmt.Errorf("odata: Edm.Binary wire value is %T, want string", raw)
		}
		v, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return Property{}, fmt.Errorf("odata: parse Edm.Binary: %w", err)
		}
		return Binary(v), nil
	case EdmDateTime:
		if !isString {
			return Property{}, fmt.Errorf("odata: Edm.DateTime wire value is %T, want string", raw)
		}
		v, err := parseTime(s)
		if err != nil {
			return Property{}, err
		}
		return DateTime(v), nil
	case EdmGuid:
		if !isString {
			return Property{}, fmt.Errorf("odata: Edm.Guid wire value is %T, want string", raw)
		}
		return Guid(s), nil
	case EdmString:
		if !isString {
			return Property{}, fmt.Errorf("odata: Edm.String wire value is %T, want string", raw)
		}
		return String(s), nil
	case EdmBoolean:
		v, ok := raw.(bool)
		if !ok {
			return Property{}, fmt.Errorf("odata: Edm.Boolean wire value is %T, want bool", raw)
		}
		return Bool(v), nil
	case EdmInt32:
		v, ok := raw.(float64)
		if !ok {
			return Property{}, fmt.Errorf("odata: Edm.Int32 wire value is %T, want number", raw)
		}
		return Int32(int32(v)), nil
	case EdmDouble:
		switch v := raw.(type) {
		case float64:
			return Double(v), nil
		case string:
			// The service annotates NaN/Infinity doubles and sends them as
			// strings.
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return Property{}, fmt.Errorf("odata: parse Edm.Double %q: %w", v, err)
			}
			return Double(f), nil
		default:
			return Property{}, fmt.Errorf("odata: Edm.Double wire value is %T", raw)
		}
	default:
		return Property{}, fmt.Errorf("odata: unknown property type annotation %q", edm)
	}
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{timeFormat, time.RFC3339Nano, time.RFC3339} {
		if v, err := time.Parse(layout, s); err == nil {
			return v, nil
		}
	}
	return time.Time{}, fmt.Errorf("odata: parse Edm.DateTime %q", s)
}
