package main

import "strings"

const (
	sentinelStart = "// modgen:start"
	sentinelEnd   = "// modgen:end"
)

// applyBlock inserts generated into content between the modgen sentinels,
// replacing an existing block if present or appending if not. Everything
// outside the block, such as the module declaration and global module
// fragment, is preserved. A start sentinel with no end after it replaces
// everything up to the end of the file, and end sentinels that come before
// the start are dropped.
func applyBlock(content, generated string) string {
	if generated != "" && !strings.HasSuffix(generated, "\n") {
		generated += "\n"
	}
	block := sentinelStart + "\n" + generated + sentinelEnd

	if start := strings.Index(content, sentinelStart); start >= 0 {
		head := dropLines(content[:start], sentinelEnd)
		rest := content[start+len(sentinelStart):]
		if end := strings.Index(rest, sentinelEnd); end >= 0 {
			return head + block + rest[end+len(sentinelEnd):]
		}
		return head + block + "\n"
	}
	content = dropLines(content, sentinelEnd)

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if len(content) > 0 {
		content += "\n"
	}
	return content + block + "\n"
}

// dropLines removes every line of content that consists of marker alone.
func dropLines(content, marker string) string {
	if !strings.Contains(content, marker) {
		return content
	}
	lines := strings.SplitAfter(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != marker {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "")
}
