package utils

import (
	"fmt"
	"reflect"
)

const columnTag = "db"

// StructTagValues lists the db column names declared on a struct's
// fields, in declaration order. Unexported fields and fields tagged
// "-" are skipped.
func StructTagValues(input any) []string {
	v := structValue(input)
	t := v.Type()

	columns := make([]string, 0, t.NumField())
	for i := range t.NumField() {
		if column, ok := columnFor(t.Field(i)); ok {
			columns = append(columns, column)
		}
	}

	return columns
}

// StructToMap flattens a struct into a column to value map, following
// the same tag rules as StructTagValues.
func StructToMap(input any) map[string]any {
	v := structValue(input)
	t := v.Type()

	out := make(map[string]any, t.NumField())
	for i := range t.NumField() {
		if column, ok := columnFor(t.Field(i)); ok {
			out[column] = v.Field(i).Interface()
		}
	}

	return out
}

func structValue(input any) reflect.Value {
	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		panic("input must be a struct or a pointer to one")
	}
	return v
}

func columnFor(field reflect.StructField) (string, bool) {
	if field.PkgPath != "" {
		return "", false
	}

	column := field.Tag.Get(columnTag)
	if column == "" || column == "-" {
		return "", false
	}

	return column, true
}

func ErrorWrapOrNil(err error, msg string) error {
	if err == nil {
		return nil
	}

	if msg == "" {
		return err
	}

	return fmt.Errorf("%s: %w", msg, err)
}
