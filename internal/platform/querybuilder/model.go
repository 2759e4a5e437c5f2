package querybuilder

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

var (
	errNilModel     = errors.New("model cannot be nil")
	errNotStruct    = errors.New("model must be struct")
	errNoModelField = errors.New("model has no db columns")
)

// modelColumn is one `db`-tagged field. index is a path so embedded structs flatten.
type modelColumn struct {
	name      string
	index     []int
	omitEmpty bool
}

var modelPlans sync.Map // reflect.Type -> []modelColumn

// InsertModel builds an INSERT from the `db` tags of model. Fields tagged
// `db:"col,omitempty"` are left out when they hold their zero value.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	cols, vals, err := modelValues(model)
	if err != nil {
		return "", nil, fmt.Errorf("insert %s: %w", table, err)
	}
	return InsertInto(table).
		Columns(cols...).
		Values(vals...).
		Suffix(suffix).
		ToSQL()
}

func modelValues(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, errNilModel
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, errNotStruct
	}

	plan := planFor(value.Type())
	cols := make([]string, 0, len(plan))
	vals := make([]any, 0, len(plan))
	for _, col := range plan {
		field := value.FieldByIndex(col.index)
		if col.omitEmpty && field.IsZero() {
			continue
		}
		cols = append(cols, col.name)
		vals = append(vals, field.Interface())
	}
	if len(cols) == 0 {
		return nil, nil, errNoModelField
	}
	return cols, vals, nil
}

func planFor(typ reflect.Type) []modelColumn {
	if cached, ok := modelPlans.Load(typ); ok {
		return cached.([]modelColumn)
	}
	plan := collectColumns(typ, nil)
	actual, _ := modelPlans.LoadOrStore(typ, plan)
	return actual.([]modelColumn)
}

func collectColumns(typ reflect.Type, prefix []int) []modelColumn {
	var out []modelColumn
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		index := append(append([]int(nil), prefix...), i)

		tag, hasTag := field.Tag.Lookup("db")
		if field.Anonymous && !hasTag && field.Type.Kind() == reflect.Struct {
			out = append(out, collectColumns(field.Type, index)...)
			continue
		}
		if !field.IsExported() {
			continue
		}

		name, opts, _ := strings.Cut(tag, ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		out = append(out, modelColumn{
			name:      name,
			index:     index,
			omitEmpty: strings.Contains(opts, "omitempty"),
		})
	}
	return out
}
