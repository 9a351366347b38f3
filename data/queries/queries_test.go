package queries

import (
	"io/fs"
	"reflect"
	"slices"
	"strings"
	"testing"
)

func TestEveryQueryPathResolvesToSql(t *testing.T) {
	paths := queryPaths(reflect.ValueOf(QueryHelper))
	if len(paths) == 0 {
		t.Fatal("no query paths in QueryHelper found")
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			if content := strings.TrimSpace(Get(path)); content == "" {
				t.Errorf("query file %q is empty", path)
			}
		})
	}

	// every embedded .sql file must be reachable from QueryHelper, 1:1
	count := 0
	err := fs.WalkDir(Files, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			count++
			if !slices.Contains(paths, path) {
				t.Errorf("embedded file %s is not referenced by QueryHelper", path)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("error walking embedded queries: %v", err)
	}

	if count != len(paths) {
		t.Fatalf("number of embedded .sql files does not match number of query paths in QueryHelper (%d != %d)", count, len(paths))
	}
}

func TestSchemaOrderCoversCreateScripts(t *testing.T) {
	creates := queryPaths(reflect.ValueOf(QueryHelper.Create))
	if len(creates) != len(SchemaOrder) {
		t.Fatalf("expected %d schema scripts, got %d", len(creates), len(SchemaOrder))
	}
	for _, c := range creates {
		if !slices.Contains(SchemaOrder, c) {
			t.Errorf("create script %s is missing from SchemaOrder", c)
		}
	}
}

func TestGetPanicsOnUnknownPath(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected Get to panic for a missing file")
		}
	}()
	Get("select/does_not_exist.sql")
}

// queryPaths walks a struct of structs and returns every non empty string field
func queryPaths(v reflect.Value) (paths []string) {
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if field.Kind() == reflect.String {
			if s := field.String(); s != "" {
				paths = append(paths, s)
			}
			continue
		}
		paths = append(paths, queryPaths(field)...)
	}
	return
}
