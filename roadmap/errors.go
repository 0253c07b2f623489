package roadmap

import "fmt"

// Rule names the structural check a document failed.
type Rule string

const (
	RuleShape          Rule = "shape"
	RuleEmptyStages    Rule = "empty_stages"
	RuleStageShape     Rule = "stage_shape"
	RuleMissingID      Rule = "missing_id"
	RuleDuplicateID    Rule = "duplicate_id"
	RuleDanglingChild  Rule = "dangling_child"
	RuleDuplicateChild Rule = "duplicate_child"
	RuleCycle          Rule = "cycle"
	RuleLevel          Rule = "level"
	RuleLevelOrder     Rule = "level_order"
)

// ValidationError reports the first rule a candidate document broke.
type ValidationError struct {
	Rule    Rule
	StageID string
	Message string
}

func (e *ValidationError) Error() string {
	if e.StageID != "" {
		return fmt.Sprintf("invalid roadmap (%s) at stage %q: %s", e.Rule, e.StageID, e.Message)
	}
	return fmt.Sprintf("invalid roadmap (%s): %s", e.Rule, e.Message)
}

func invalid(rule Rule, stageID, format string, args ...any) *ValidationError {
	return &ValidationError{Rule: rule, StageID: stageID, Message: fmt.Sprintf(format, args...)}
}

// ParseError means the candidate text was not structured data at all.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "roadmap text is not valid JSON: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }
