package tsgen

import (
	"fmt"
	"regexp"
	"strings"
)

// ReexportHeader opens every re-export module.
const ReexportHeader = "/**\n * This file was auto-generated. Do not make direct changes to the file.\n */\n"

var nonIdentifierChar = regexp.MustCompile(`[^A-Za-z0-9_$]`)

// Reexport builds a module that aliases each component schema, in the given
// order, as a top-level type. typesImport is the module specifier of the
// generated types module.
func Reexport(names []string, typesImport string) []byte {
	var b strings.Builder
	b.WriteString(ReexportHeader)
	b.WriteByte('\n')
	fmt.Fprintf(&b, "import type { components } from %s;\n", quote(typesImport))
	if len(names) > 0 {
		b.WriteByte('\n')
	}
	used := map[string]bool{}
	for _, name := range names {
		base := AliasName(name)
		alias := base
		for n := 2; used[alias]; n++ {
			alias = fmt.Sprintf("%s_%d", base, n)
		}
		used[alias] = true
		fmt.Fprintf(&b, "export type %s = %s;\n", alias, IndexedAccess("components", "schemas", name))
	}
	return []byte(b.String())
}

// AliasName turns a schema key into a TypeScript identifier.
func AliasName(name string) string {
	alias := nonIdentifierChar.ReplaceAllString(name, "_")
	if alias == "" {
		return "_"
	}
	if alias[0] >= '0' && alias[0] <= '9' {
		alias = "_" + alias
	}
	return alias
}
