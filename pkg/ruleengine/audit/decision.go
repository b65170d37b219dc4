package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Decision is one recorded rule evaluation.
type Decision struct {
	ID       string `json:"id"`
	RuleName string `json:"rule_name"`
	// Rule is the parenthesised rule text that was evaluated.
	Rule string `json:"rule"`
	// Context is the record the rule was evaluated against.
	Context map[string]any `json:"context"`
	Verdict bool           `json:"verdict"`
	// Error is the evaluation error message, empty on success.
	Error     string    `json:"error,omitempty"`
	Sequence  int       `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDecision creates a decision with a fresh ID. Sequence and Timestamp are
// assigned by the store on Record.
func NewDecision(ruleName, rule string, data map[string]any, verdict bool, evalErr error) Decision {
	d := Decision{
		ID:       uuid.NewString(),
		RuleName: ruleName,
		Rule:     rule,
		Context:  data,
		Verdict:  verdict,
	}
	if evalErr != nil {
		d.Error = evalErr.Error()
	}
	return d
}

// Failed reports whether the evaluation returned an error.
func (d Decision) Failed() bool {
	return d.Error != ""
}

func encodeContext(data map[string]any) ([]byte, error) {
	if data == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(data)
}

func decodeContext(raw []byte) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}
