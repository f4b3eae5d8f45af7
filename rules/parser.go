package rules

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/rule.schema.json
var ruleSchemaJSON string

var ruleSchema = jsonschema.MustCompileString("rule.schema.json", ruleSchemaJSON)

// DroppedRule records why an array element was discarded.
type DroppedRule struct {
	Index  int
	Reason string
}

// ParseReport summarizes a parse for tooling.
type ParseReport struct {
	Kept    int
	Dropped []DroppedRule
	// Invalid is set when the text was not a JSON array at all.
	Invalid error
}

// Parse reads a rule list. It never fails: unreadable text gives an empty
// set and invalid elements are dropped, each with a notice.
func Parse(text string, n Notifier) *RuleSet {
	rs, _ := ParseWithReport(text, n)
	return rs
}

// ParseWithReport is Parse plus a summary of what was kept and dropped.
func ParseWithReport(text string, n Notifier) (*RuleSet, ParseReport) {
	if n == nil {
		n = Discard
	}
	rs := &RuleSet{Source: text}
	var report ParseReport

	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		report.Invalid = fmt.Errorf("invalid rule list JSON: %w", err)
		n.Notice("invalid rule list JSON", "error", err)
		return rs, report
	}
	items, ok := doc.([]any)
	if !ok {
		report.Invalid = fmt.Errorf("rule list must be an array, got %s", jsonKind(doc))
		n.Notice("rule list must be an array", "got", jsonKind(doc))
		return rs, report
	}

	for i, item := range items {
		r, err := validateRule(i, item)
		if err != nil {
			report.Dropped = append(report.Dropped, DroppedRule{Index: i, Reason: err.Error()})
			n.Notice("invalid rule structure", "index", i, "error", err)
			continue
		}
		for _, e := range r.expressions() {
			if e.Err() != nil {
				n.Notice("expression will evaluate to 0", "index", i, "error", e.Err())
			}
		}
		rs.Rules = append(rs.Rules, r)
	}
	report.Kept = len(rs.Rules)
	return rs, report
}

func validateRule(index int, item any) (Rule, error) {
	if err := ruleSchema.Validate(item); err != nil {
		return Rule{}, fmt.Errorf("schema: %s", firstLine(err.Error()))
	}
	return compileRule(index, item)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

func jsonKind(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
