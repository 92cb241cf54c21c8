package finalize

import (
	"runtime"
	"strconv"
	"strings"
)

// ParseWorkerBudget resolves a worker budget string to a positive
// worker count for the write stage.
//
// Two forms are accepted:
//   - "<n>": an absolute worker count, e.g. "8"
//   - "<n>C": a multiple of the host's processing units, e.g. "2C"
//     resolves to 16 on an 8-unit host
//
// The input is trimmed and case-insensitive ("2c" equals "2C"). A
// value that does not parse, or resolves to zero or less, returns a
// *BudgetError carrying the original value. No upper bound is
// enforced; callers own sane limits.
func ParseWorkerBudget(budget string) (int, error) {
	return parseWorkerBudget(budget, runtime.NumCPU())
}

func parseWorkerBudget(budget string, units int) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(budget))

	if factor, ok := strings.CutSuffix(s, "C"); ok {
		n, err := strconv.Atoi(factor)
		if err != nil || n <= 0 {
			return 0, &BudgetError{Value: budget}
		}
		return n * units, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, &BudgetError{Value: budget}
	}
	return n, nil
}
