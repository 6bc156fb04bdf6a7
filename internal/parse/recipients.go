// Package parse contains small parsing helpers for admin-entered values.
package parse

import "strings"

// Recipients splits a comma-separated recipient list into trimmed,
// de-duplicated addresses. Entries without an "@" are dropped.
func Recipients(raw string) []string {
	parts := strings.Split(raw, ",")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		addr := strings.TrimSpace(part)
		if addr == "" || !strings.Contains(addr, "@") {
			continue
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	return out
}
