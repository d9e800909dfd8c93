package tools

import (
	"encoding/json"

	"github.com/conneroisu/pubnub-mcp/pkg/pnerrs"
)

// Content is one block of a tool result. Only text blocks are produced.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the envelope every tool call returns.
type Result struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError"`
}

// Text returns the concatenated text of every block.
func (r Result) Text() string {
	var s string
	for _, c := range r.Content {
		s += c.Text
	}

	return s
}

// TextResult wraps v: strings pass through, anything else is rendered as
// indented JSON.
func TextResult(v any) Result {
	if s, ok := v.(string); ok {
		return Result{Content: []Content{{Type: "text", Text: s}}}
	}

	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ErrorResult(err)
	}

	return Result{Content: []Content{{Type: "text", Text: string(raw)}}}
}

// ErrorResult normalizes v through pnerrs.ParseError.
func ErrorResult(v any) Result {
	info := pnerrs.ParseError(v)

	return Result{
		Content: []Content{{Type: "text", Text: info.Name + ": " + info.Message}},
		IsError: true,
	}
}
