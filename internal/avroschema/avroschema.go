// Package avroschema maps Avro record schemas onto Hive column lists. The
// flattened mapping lifts nested record fields into top-level columns; the
// nested mapping preserves record structure as Hive struct types.
package avroschema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/linkedin/goavro/v2"

	"github.com/orcify/orcify/hive"
)

// primitive Avro type → Hive type.
var primitiveTypes = map[string]string{
	"boolean": "boolean",
	"int":     "int",
	"long":    "bigint",
	"float":   "float",
	"double":  "double",
	"bytes":   "binary",
	"string":  "string",
}

// Columns converts an Avro record schema (JSON text) to an ordered Hive
// column list. flatten selects the flattened layout; otherwise nested
// records become struct columns. The schema is validated as real Avro
// before mapping, so malformed schemas fail here rather than at DDL time.
func Columns(schemaJSON []byte, flatten bool) (hive.Columns, error) {
	if _, err := goavro.NewCodec(string(schemaJSON)); err != nil {
		return nil, fmt.Errorf("invalid avro schema: %w", err)
	}

	var root map[string]interface{}
	if err := json.Unmarshal(schemaJSON, &root); err != nil {
		return nil, fmt.Errorf("failed to parse avro schema: %w", err)
	}
	if root["type"] != "record" {
		return nil, fmt.Errorf("top-level avro schema must be a record, got %v", root["type"])
	}

	return recordColumns("", root, flatten)
}

func recordColumns(prefix string, record map[string]interface{}, flatten bool) (hive.Columns, error) {
	fields, ok := record["fields"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("avro record %v has no fields list", record["name"])
	}

	var columns hive.Columns
	for _, raw := range fields {
		field, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("malformed avro field entry: %v", raw)
		}
		name, _ := field["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("avro field without a name: %v", field)
		}
		doc, _ := field["doc"].(string)

		fieldType := unwrapUnion(field["type"])

		if flatten {
			if nested, isRecord := asRecord(fieldType); isRecord {
				nestedCols, err := recordColumns(prefix+name+"_", nested, flatten)
				if err != nil {
					return nil, err
				}
				columns = append(columns, nestedCols...)
				continue
			}
		}

		colType, err := hiveType(fieldType)
		if err != nil {
			return nil, fmt.Errorf("field %s%s: %w", prefix, name, err)
		}
		columns = append(columns, hive.Column{Name: prefix + name, Type: colType, Comment: doc})
	}

	return columns, nil
}

// unwrapUnion resolves ["null", T] style unions to T. Unions with several
// non-null branches are left as-is and rejected by hiveType.
func unwrapUnion(t interface{}) interface{} {
	branches, ok := t.([]interface{})
	if !ok {
		return t
	}
	var nonNull []interface{}
	for _, b := range branches {
		if s, isString := b.(string); isString && s == "null" {
			continue
		}
		nonNull = append(nonNull, b)
	}
	if len(nonNull) == 1 {
		return nonNull[0]
	}
	return t
}

func asRecord(t interface{}) (map[string]interface{}, bool) {
	m, ok := t.(map[string]interface{})
	if !ok {
		return nil, false
	}
	if m["type"] != "record" {
		return nil, false
	}
	return m, true
}

func hiveType(t interface{}) (string, error) {
	switch typed := t.(type) {
	case string:
		if mapped, ok := primitiveTypes[typed]; ok {
			return mapped, nil
		}
		return "", fmt.Errorf("unsupported avro type %q", typed)

	case map[string]interface{}:
		switch typed["type"] {
		case "record":
			fields, _ := typed["fields"].([]interface{})
			var members []string
			for _, raw := range fields {
				field, ok := raw.(map[string]interface{})
				if !ok {
					return "", fmt.Errorf("malformed avro field entry: %v", raw)
				}
				name, _ := field["name"].(string)
				memberType, err := hiveType(unwrapUnion(field["type"]))
				if err != nil {
					return "", err
				}
				members = append(members, fmt.Sprintf("%s:%s", name, memberType))
			}
			return fmt.Sprintf("struct<%s>", strings.Join(members, ",")), nil

		case "array":
			itemType, err := hiveType(unwrapUnion(typed["items"]))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("array<%s>", itemType), nil

		case "map":
			valueType, err := hiveType(unwrapUnion(typed["values"]))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("map<string,%s>", valueType), nil

		case "enum":
			return "string", nil

		case "fixed":
			return "binary", nil

		case "string", "int", "long", "float", "double", "boolean", "bytes":
			// Wrapped primitive, e.g. {"type": "string", "avro.java.string": "String"}.
			return hiveType(typed["type"])
		}
		return "", fmt.Errorf("unsupported avro complex type %v", typed["type"])

	case []interface{}:
		return "", fmt.Errorf("unions with multiple non-null branches are not supported")
	}

	return "", fmt.Errorf("unsupported avro type %v", t)
}
