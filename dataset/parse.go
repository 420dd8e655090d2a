package dataset

import (
	"math"
	"strconv"
	"strings"

	"github.com/spektr-org/launchboard/engine"
)

// ParsePayload reads a payload mass in kg. Thousands separators are allowed.
func ParsePayload(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, ErrInvalidPayload
	}
	return v, nil
}

// ParseOutcome reduces a class cell to Failure or Success. Accepts 0/1 in
// integer or float form, true/false, yes/no and success/failure.
func ParseOutcome(s string) (engine.Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "1.0", "true", "yes", "success", "succeeded":
		return engine.Success, nil
	case "0", "0.0", "false", "no", "failure", "failed":
		return engine.Failure, nil
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		switch v {
		case 1:
			return engine.Success, nil
		case 0:
			return engine.Failure, nil
		}
	}
	return engine.Failure, ErrInvalidOutcome
}
