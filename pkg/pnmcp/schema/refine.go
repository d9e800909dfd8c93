package schema

import (
	"time"

	"github.com/conneroisu/pubnub-mcp/pkg/pnerrs"
)

const dateLayout = "2006-01-02"

func missing(path ...string) pnerrs.Issue {
	return pnerrs.Issue{Path: path, Message: "Required"}
}

func fail(code pnerrs.ErrorCode, issues []pnerrs.Issue) error {
	if len(issues) == 0 {
		return nil
	}

	return pnerrs.NewValidationError(code, issues...)
}

func nested(args map[string]any, key string) map[string]any {
	m, _ := args[key].(map[string]any)

	return m
}

func hasString(m map[string]any, key string) bool {
	s, ok := m[key].(string)

	return ok && s != ""
}

func hasItems(m map[string]any, key string) bool {
	items, ok := m[key].([]any)

	return ok && len(items) > 0
}

func refinePresence(args map[string]any) error {
	if hasItems(args, "channels") || hasItems(args, "channelGroups") || hasString(args, "uuid") {
		return nil
	}

	return fail(pnerrs.ErrCodeMissingField, []pnerrs.Issue{{
		Message: "provide channels, channelGroups or uuid",
	}})
}

func refineManageApps(args map[string]any) error {
	data := nested(args, "data")

	var issues []pnerrs.Issue
	switch args["operation"] {
	case "create":
		if !hasString(data, "name") {
			issues = append(issues, missing("data", "name"))
		}
	case "update":
		if !hasString(data, "id") {
			issues = append(issues, missing("data", "id"))
		}
		if !hasString(data, "name") {
			issues = append(issues, missing("data", "name"))
		}
	}

	return fail(pnerrs.ErrCodeMissingField, issues)
}

func refineManageKeysets(args map[string]any) error {
	data := nested(args, "data")

	var issues []pnerrs.Issue
	switch args["operation"] {
	case "get":
		if !hasString(data, "id") {
			issues = append(issues, missing("data", "id"))
		}
	case "create":
		if !hasString(data, "name") {
			issues = append(issues, missing("data", "name"))
		}
		if !hasString(data, "type") {
			issues = append(issues, missing("data", "type"))
		}
		issues = append(issues, requireConfig(data)...)
	case "update":
		if !hasString(data, "id") {
			issues = append(issues, missing("data", "id"))
		}
		issues = append(issues, requireConfig(data)...)
	}

	return fail(pnerrs.ErrCodeMissingField, issues)
}

func requireConfig(data map[string]any) []pnerrs.Issue {
	cfg, ok := data["config"].(map[string]any)
	if !ok {
		return []pnerrs.Issue{missing("data", "config")}
	}

	return ValidateKeysetConfig(cfg, "data", "config")
}

// ValidateKeysetConfig checks that every enabled feature block carries its
// governing fields. Issue paths are prefixed with path and end at the
// missing field, e.g. data.config.messagePersistence.retention.
func ValidateKeysetConfig(cfg map[string]any, path ...string) []pnerrs.Issue {
	rules := []struct {
		block  string
		fields []string
	}{
		{"messagePersistence", []string{"retention"}},
		{"appContext", []string{"region"}},
		{"files", []string{"region", "retention"}},
	}

	var issues []pnerrs.Issue
	for _, rule := range rules {
		block, ok := cfg[rule.block].(map[string]any)
		if !ok {
			continue
		}
		if enabled, _ := block["enabled"].(bool); !enabled {
			continue
		}
		for _, field := range rule.fields {
			if _, present := block[field]; present {
				continue
			}
			p := append(append([]string{}, path...), rule.block, field)
			issues = append(issues, pnerrs.Issue{
				Path:    p,
				Message: field + " is required when " + rule.block + " is enabled",
			})
		}
	}

	return issues
}

func refineDateRange(args map[string]any) error {
	var (
		issues []pnerrs.Issue
		dates  = map[string]time.Time{}
	)
	for _, key := range []string{"startDate", "endDate"} {
		s, _ := args[key].(string)
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			issues = append(issues, pnerrs.Issue{
				Path:    []string{key},
				Message: "expected a calendar date in YYYY-MM-DD form",
			})

			continue
		}
		dates[key] = t
	}
	if len(issues) > 0 {
		return fail(pnerrs.ErrCodeInvalidFormat, issues)
	}

	if dates["endDate"].Before(dates["startDate"]) {
		return fail(pnerrs.ErrCodeRangeViolation, []pnerrs.Issue{{
			Path:    []string{"endDate"},
			Message: "endDate must not be before startDate",
		}})
	}

	return nil
}

func refineAppContext(args map[string]any) error {
	op, _ := args["operation"].(string)
	kind, _ := args["type"].(string)
	data := nested(args, "data")

	var issues []pnerrs.Issue
	if op != "getAll" && !hasString(args, "id") {
		issues = append(issues, missing("id"))
	}

	switch {
	case kind == "membership" && (op == "set" || op == "remove"):
		channels, uuids := hasItems(data, "channels"), hasItems(data, "uuids")
		switch {
		case channels && uuids:
			issues = append(issues, pnerrs.Issue{
				Path:    []string{"data"},
				Message: "provide either channels or uuids, not both",
			})
		case !channels && !uuids:
			issues = append(issues, missing("data", "channels"))
		}
	case op == "set" && data == nil:
		issues = append(issues, missing("data"))
	}

	return fail(pnerrs.ErrCodeMissingField, issues)
}
