package jira

import (
	"bytes"
	"encoding/json"
	"strings"
)

// adfNode is the subset of an Atlassian Document Format node needed to
// flatten a document to plain text.
type adfNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text"`
	Content []adfNode `json:"content"`
}

// normalizeDescription flattens a description field to plain text. The
// tracker returns either a JSON string or an ADF document; downstream
// scoring only ever sees text. A structured body that cannot be parsed is
// stringified as-is rather than dropped.
func normalizeDescription(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}

	var plain string
	if err := json.Unmarshal(trimmed, &plain); err == nil {
		return plain
	}

	var doc adfNode
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return string(trimmed)
	}

	var sb strings.Builder
	flattenADF(&sb, doc)

	return strings.TrimSpace(sb.String())
}

// flattenADF walks the document depth-first collecting text nodes. Block
// nodes are separated by newlines so paragraph boundaries survive.
func flattenADF(sb *strings.Builder, node adfNode) {
	if node.Text != "" {
		sb.WriteString(node.Text)
	}

	for _, child := range node.Content {
		flattenADF(sb, child)
	}

	switch node.Type {
	case "paragraph", "heading", "blockquote", "codeBlock", "listItem":
		sb.WriteString("\n")
	}
}
