package recordstore

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// identifierPattern matches the table/column/function names this store
// accepts. Record keys come from code, not users, but the names are
// interpolated into SQL, so the allowlist is enforced anyway.
var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func validIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// buildUpsertSQL renders a single-statement upsert:
//
//	INSERT INTO t (a, b, id) VALUES ($1, $2, $3)
//	ON CONFLICT (id) DO UPDATE SET a = EXCLUDED.a, b = EXCLUDED.b
//	RETURNING *
//
// Columns are sorted so the statement is deterministic for a given
// record shape. The conflict key column is never part of the SET list.
func buildUpsertSQL(table string, record map[string]interface{}, conflictKey string) (string, []interface{}, error) {
	if !validIdentifier(table) {
		return "", nil, fmt.Errorf("invalid table name %q", table)
	}
	if !validIdentifier(conflictKey) {
		return "", nil, fmt.Errorf("invalid conflict key %q", conflictKey)
	}
	if _, ok := record[conflictKey]; !ok {
		return "", nil, fmt.Errorf("record is missing conflict key %q", conflictKey)
	}

	columns := make([]string, 0, len(record))
	for col := range record {
		if !validIdentifier(col) {
			return "", nil, fmt.Errorf("invalid column name %q", col)
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)

	placeholders := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	updates := make([]string, 0, len(columns)-1)
	for i, col := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = record[col]
		if col != conflictKey {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	fmt.Fprintf(&sb, " ON CONFLICT (%s) DO UPDATE SET %s", conflictKey, strings.Join(updates, ", "))
	sb.WriteString(" RETURNING *")

	return sb.String(), args, nil
}

// buildRPCSQL renders a function call with named arguments:
//
//	SELECT fn(a => $1, b => $2)
func buildRPCSQL(name string, args map[string]interface{}) (string, []interface{}, error) {
	if !validIdentifier(name) {
		return "", nil, fmt.Errorf("invalid function name %q", name)
	}

	argNames := make([]string, 0, len(args))
	for arg := range args {
		if !validIdentifier(arg) {
			return "", nil, fmt.Errorf("invalid argument name %q", arg)
		}
		argNames = append(argNames, arg)
	}
	sort.Strings(argNames)

	parts := make([]string, len(argNames))
	values := make([]interface{}, len(argNames))
	for i, arg := range argNames {
		parts[i] = fmt.Sprintf("%s => $%d", arg, i+1)
		values[i] = args[arg]
	}

	return fmt.Sprintf("SELECT %s(%s)", name, strings.Join(parts, ", ")), values, nil
}

// buildFetchSQL renders a lookup by key column.
func buildFetchSQL(table, keyColumn string) (string, error) {
	if !validIdentifier(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	if !validIdentifier(keyColumn) {
		return "", fmt.Errorf("invalid key column %q", keyColumn)
	}
	return fmt.Sprintf("SELECT * FROM %s WHERE %s = $1", table, keyColumn), nil
}
