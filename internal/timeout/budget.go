package timeout

import (
	"fmt"
	"time"
)

const (
	budgetWarnAbove = 10 * time.Second
	budgetWarnBelow = 5 * time.Second
)

// ValidateBudget checks the server deadline against the client-side budget.
// An error means the client would give up before the server could answer;
// warnings flag values outside the usual range.
func ValidateBudget(function, frontend time.Duration) (warnings []string, err error) {
	if frontend <= function {
		return nil, fmt.Errorf("frontend timeout (%s) must exceed function timeout (%s)", frontend, function)
	}
	if function > budgetWarnAbove {
		warnings = append(warnings, fmt.Sprintf("function timeout %s exceeds %s and may hit platform limits", function, budgetWarnAbove))
	}
	if function < budgetWarnBelow {
		warnings = append(warnings, fmt.Sprintf("function timeout %s is below %s and may cut off slow extractions", function, budgetWarnBelow))
	}
	return warnings, nil
}
