// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

package wire

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/wirefmt/wire/buffer"
	"github.com/wirefmt/wire/wtypes"
)

// csvDelimiter is the field separator the CSV thin profile joins scalar
// values with. The profile is deliberately narrow (§6 [SUPPLEMENTED] #2):
// one flat record of scalar fields per line, no nesting, no quoting
// beyond a minimal escape for the delimiter itself.
const csvDelimiter = ","

// marshalCSV renders v - a struct or pointer to one, every field a
// scalar - as a single delimiter-joined line appended to buf, bypassing
// the bracketed text grammar entirely and reading field order straight
// off the shared wtypes.Cache descriptor.
func (w *Wire) marshalCSV(buf buffer.Buffer, v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return fmt.Errorf("wire: csv: nil value")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("wire: csv: %s is not a record", rv.Type())
	}

	cache := w.opts.Types
	if cache == nil {
		cache = wtypes.DefaultCache()
	}
	desc, err := cache.Describe(rv.Type())
	if err != nil {
		return err
	}
	if desc.Container == nil {
		return fmt.Errorf("wire: csv: %s has no field descriptor", rv.Type())
	}

	cols := make([]string, 0, len(desc.Container.Fields))
	for _, fd := range desc.Container.Fields {
		fv := rv.FieldByIndex(fd.FieldIndex)
		s, err := csvFormat(fv)
		if err != nil {
			return fmt.Errorf("wire: csv: field %s: %w", fd.Name, err)
		}
		cols = append(cols, csvEscape(s))
	}
	buf.Append([]byte(strings.Join(cols, csvDelimiter)))
	buf.Append([]byte("\n"))
	return nil
}

// unmarshalCSV reads one delimiter-joined line starting at pos and sets
// dst's scalar fields from it positionally, the mirror of marshalCSV.
func (w *Wire) unmarshalCSV(buf buffer.Buffer, pos int, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("wire: csv: dst must be a non-nil pointer")
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("wire: csv: %s is not a record", rv.Type())
	}

	data := buf.Bytes()
	end := pos
	for end < len(data) && data[end] != '\n' {
		end++
	}
	line := string(data[pos:end])

	cache := w.opts.Types
	if cache == nil {
		cache = wtypes.DefaultCache()
	}
	desc, err := cache.Describe(rv.Type())
	if err != nil {
		return err
	}
	if desc.Container == nil {
		return fmt.Errorf("wire: csv: %s has no field descriptor", rv.Type())
	}

	var cols []string
	start := 0
	for i := 0; i < len(line); i++ {
		if line[i] == '\\' {
			i++
			continue
		}
		if line[i] == csvDelimiter[0] {
			cols = append(cols, line[start:i])
			start = i + 1
		}
	}
	cols = append(cols, line[start:])
	for i, fd := range desc.Container.Fields {
		if i >= len(cols) {
			break
		}
		fv := rv.FieldByIndex(fd.FieldIndex)
		if err := csvParse(fv, csvUnescape(cols[i])); err != nil {
			return fmt.Errorf("wire: csv: field %s: %w", fd.Name, err)
		}
	}
	return nil
}

func csvFormat(fv reflect.Value) (string, error) {
	switch fv.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(fv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(fv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(fv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(fv.Float(), 'g', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(fv.Float(), 'g', -1, 64), nil
	case reflect.String:
		return fv.String(), nil
	default:
		return "", fmt.Errorf("unsupported csv scalar kind %s", fv.Kind())
	}
}

func csvParse(fv reflect.Value, s string) error {
	switch fv.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(s, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetFloat(n)
	case reflect.String:
		fv.SetString(s)
	default:
		return fmt.Errorf("unsupported csv scalar kind %s", fv.Kind())
	}
	return nil
}

func csvEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, csvDelimiter, `\,`)
}

func csvUnescape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			b.WriteByte(s[i])
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
