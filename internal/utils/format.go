package utils

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/iancoleman/orderedmap"
	"github.com/jedib0t/go-pretty/v6/table"
)

/**
 * Convert a struct to an ordered map keyed by json tag
 * @param {interface{}} v - Struct or struct pointer
 * @returns {*orderedmap.OrderedMap} Keys in declaration order
 * @returns {error} Returns error when v is not a struct
 * @description Fields tagged `json:"-"` and unexported fields are skipped
 */
func StructToOrderedMap(v interface{}) (*orderedmap.OrderedMap, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, fmt.Errorf("nil pointer")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected struct, got %s", rv.Kind())
	}

	om := orderedmap.New()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if field.PkgPath != "" {
			continue
		}
		key := field.Name
		if tag, ok := field.Tag.Lookup("json"); ok {
			name := strings.Split(tag, ",")[0]
			if name == "-" {
				continue
			}
			if name != "" {
				key = name
			}
		}
		om.Set(key, rv.Field(i).Interface())
	}
	return om, nil
}

/**
 * Print a list of records as an aligned table
 * @param {[]*orderedmap.OrderedMap} records - Rows sharing the key set of the first row
 * @description Column order follows the first record's key order
 */
func PrintFormat(records []*orderedmap.OrderedMap) {
	if len(records) == 0 {
		return
	}

	keys := records[0].Keys()
	header := make(table.Row, 0, len(keys))
	for _, key := range keys {
		header = append(header, strings.ToUpper(key))
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(header)
	for _, record := range records {
		row := make(table.Row, 0, len(keys))
		for _, key := range keys {
			value, _ := record.Get(key)
			row = append(row, value)
		}
		t.AppendRow(row)
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}
