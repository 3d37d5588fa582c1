package sqlite

import (
	"fmt"
	"regexp"
	"strings"
)

// ColumnDef defines a single column of a table whose values travel through
// the SQLite backend.
type ColumnDef struct {
	// Name is the column name
	Name string `json:"name" yaml:"name"`

	// Type is the wire metadata of the column's logical type
	Type Type `json:"type" yaml:"type"`

	// Nullable indicates whether the column can contain NULL values
	Nullable bool `json:"nullable" yaml:"nullable"`

	// PrimaryKey indicates whether this column is part of the primary key
	PrimaryKey bool `json:"primary_key" yaml:"primary_key"`
}

// DeclType returns the declared column type. Dates and timestamps are
// declared TEXT so the driver hands them back as written.
func (c ColumnDef) DeclType() string {
	return string(c.Type.Storage())
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validIdent(kind, name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("sqlite: invalid %s name %q", kind, name)
	}
	return nil
}

// CreateTableSQL renders the CREATE TABLE statement for cols.
func CreateTableSQL(table string, cols []ColumnDef) (string, error) {
	if err := validIdent("table", table); err != nil {
		return "", err
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("sqlite: table %s has no columns", table)
	}

	var b strings.Builder
	var pk []string
	seen := make(map[string]bool, len(cols))

	fmt.Fprintf(&b, "CREATE TABLE %s (", table)
	for i, c := range cols {
		if err := validIdent("column", c.Name); err != nil {
			return "", err
		}
		if seen[c.Name] {
			return "", fmt.Errorf("sqlite: duplicate column %s", c.Name)
		}
		seen[c.Name] = true
		if _, ok := typeNames[c.Type]; !ok {
			return "", fmt.Errorf("sqlite: column %s has unknown type %d", c.Name, c.Type)
		}

		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s", c.Name, c.DeclType())
		if !c.Nullable {
			b.WriteString(" NOT NULL")
		}
		if c.PrimaryKey {
			pk = append(pk, c.Name)
		}
	}
	if len(pk) > 0 {
		fmt.Fprintf(&b, ", PRIMARY KEY (%s)", strings.Join(pk, ", "))
	}
	b.WriteString(")")
	return b.String(), nil
}

// InsertSQL renders a parameterized INSERT for cols, in column order.
func InsertSQL(table string, cols []ColumnDef) (string, error) {
	if err := validIdent("table", table); err != nil {
		return "", err
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		if err := validIdent("column", c.Name); err != nil {
			return "", err
		}
		names[i] = c.Name
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(names, ", "), placeholders), nil
}
