// Package dbquery holds small SQL building helpers shared by repositories.
package dbquery

import "strings"

// Escape is the clause to append after every LIKE that takes a Contains pattern.
const Escape = "ESCAPE '!'"

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Contains returns a lower-cased LIKE pattern matching s literally anywhere in the value.
func Contains(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
