package main

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

type csvHeaderStructMapping struct {
	header    string // key in CSV header
	structTag string // borrow JSON struct tag for CSV, "tag.Field" reaches into a nested struct
}

type csvSchema struct {
	keys  map[int]csvHeaderStructMapping
	delim string
}

func (csv csvSchema) header() []byte {
	var buf = new(bytes.Buffer)
	for i := 0; i < len(csv.keys); i++ {
		_, _ = buf.WriteString(csv.quote(csv.keys[i].header))
		if i < len(csv.keys)-1 {
			_, _ = buf.WriteString(csv.delim)
		}
	}
	return buf.Bytes()
}

// quote wraps s in double quotes when it contains the delimiter, a quote or a line break.
func (csv csvSchema) quote(s string) string {
	if !strings.Contains(s, csv.delim) && !strings.ContainsAny(s, "\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

var (
	// ErrUnsupportedType is returned when a type is not supported during CSV reflection.
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrNilPointer is returned when a pointer is nil during CSV reflection.
	ErrNilPointer = errors.New("nil pointer")
)

// lookup finds the field tagged with the first part of target. ok is false for a missing field
// or a nil pointer.
func lookup(ref reflect.Value, target string) (field reflect.Value, ok bool) {
	tag, _, _ := strings.Cut(target, ".")
	for j := 0; j < ref.NumField(); j++ {
		name, _, _ := strings.Cut(ref.Type().Field(j).Tag.Get("json"), ",")
		if name != tag {
			continue
		}
		field = ref.Field(j)
		if field.Kind() == reflect.Pointer || field.Kind() == reflect.Interface {
			if field.IsNil() {
				return field, false
			}
			field = field.Elem()
		}
		return field, true
	}
	return field, false
}

func (csv csvSchema) parse(in any) ([]byte, error) {
	var buf = new(bytes.Buffer)
	write := func(s string) { _, _ = buf.WriteString(s) }
	ref := reflect.ValueOf(in)
	if ref.Kind() == reflect.Pointer {
		if ref.IsNil() {
			return nil, ErrNilPointer
		}
		ref = ref.Elem()
	}
	if ref.Kind() != reflect.Struct {
		return nil, fmt.Errorf("csv: %w: %s", ErrUnsupportedType, ref.Kind().String())
	}

	for i := 0; i < len(csv.keys); i++ {
		if i > 0 {
			write(csv.delim)
		}

		field, ok := lookup(ref, csv.keys[i].structTag)
		if !ok {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			write(csv.quote(field.String()))
		case reflect.Float64:
			write(strconv.FormatFloat(field.Float(), 'f', 2, 64))
		case reflect.Float32:
			write(strconv.FormatFloat(field.Float(), 'f', 2, 32))
		case reflect.Bool:
			write(strconv.FormatBool(field.Bool()))
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			write(strconv.FormatInt(field.Int(), 10))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			write(strconv.FormatUint(field.Uint(), 10))
		case reflect.Struct:
			_, name, _ := strings.Cut(csv.keys[i].structTag, ".")
			sub := field.FieldByName(name)
			if !sub.IsValid() || sub.Kind() != reflect.String {
				return buf.Bytes(), fmt.Errorf("csv: %w: %s", ErrUnsupportedType, csv.keys[i].structTag)
			}
			write(csv.quote(sub.String()))
		default:
			return buf.Bytes(), fmt.Errorf("csv: %w: %s", ErrUnsupportedType, field.Kind().String())
		}
	}

	write("\n")

	return buf.Bytes(), nil
}

// (filename, path, category, mime, size, verdict, reason, entropy, signature, MD5, SHA1, SHA256, SHA512)
var defCSVHeader = csvSchema{
	keys: map[int]csvHeaderStructMapping{
		0:  {"filename", "name"},
		1:  {"path", "path"},
		2:  {"category", "category"},
		3:  {"mime", "mime"},
		4:  {"size", "size"},
		5:  {"verdict", "verdict"},
		6:  {"reason", "reason"},
		7:  {"entropy", "entropy"},
		8:  {"signature", "signature"},
		9:  {"md5", "checksums.MD5"},
		10: {"sha1", "checksums.SHA1"},
		11: {"sha256", "checksums.SHA256"},
		12: {"sha512", "checksums.SHA512"},
	},
	delim: constDelimeterDefault,
}
