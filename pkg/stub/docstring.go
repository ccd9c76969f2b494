// Package stub holds the item models that make up a module tree, the
// registry that aggregates metadata records into those trees, and the
// renderer that turns a tree into stub-file text.
package stub

import "strings"

// normalizeDoc cleans a docstring the way Python's inspect.cleandoc does:
// leading and trailing blank lines are dropped and the common indentation
// of all lines after the first is removed.
func normalizeDoc(doc string) string {
	lines := strings.Split(strings.ReplaceAll(doc, "\t", "        "), "\n")
	margin := -1
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(trimmed)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}
	out := []string{strings.TrimLeft(lines[0], " ")}
	for _, line := range lines[1:] {
		if margin > 0 && len(line) >= margin {
			line = line[margin:]
		}
		out = append(out, strings.TrimRight(line, " "))
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

// writeDocstring emits a raw triple-quoted docstring block with every line
// independently indented. Empty docs emit nothing.
func writeDocstring(b *strings.Builder, doc string, indent string) {
	doc = normalizeDoc(doc)
	if doc == "" {
		return
	}
	b.WriteString(indent)
	b.WriteString(`r"""`)
	b.WriteByte('\n')
	for _, line := range strings.Split(doc, "\n") {
		if line == "" {
			b.WriteByte('\n')
			continue
		}
		b.WriteString(indent)
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(indent)
	b.WriteString(`"""`)
	b.WriteByte('\n')
}
