// Package text formats the help text of CLI commands.
package text

import (
	"strings"
)

// Indentation prefixes every line of an example.
const Indentation = "  "

// LongDesc trims the surrounding blank space of a long description and removes the indentation
// its lines share.
func LongDesc(s string) string {
	return strings.Join(dedent(s), "\n")
}

// Examples is like LongDesc but indents every line with Indentation.
func Examples(s string) string {
	lines := dedent(s)
	for i, line := range lines {
		if line != "" {
			lines[i] = Indentation + line
		}
	}

	return strings.Join(lines, "\n")
}

func dedent(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	lines := strings.Split(s, "\n")
	for strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	margin := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if margin < 0 || indent < margin {
			margin = indent
		}
	}
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = strings.TrimRight(line[margin:], " \t")
	}

	return lines
}
