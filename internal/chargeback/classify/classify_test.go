package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := map[string]StatusClass{
		"open":         StatusClassOpen,
		"OPEN":         StatusClassOpen,
		"Pending":      StatusClassPending,
		"closed":       StatusClassClosed,
		"ReSoLvEd":     StatusClassResolved,
		"under_review": StatusClassOpen,
		"won":          StatusClassOpen,
		"":             StatusClassOpen,
		" closed ":     StatusClassOpen,
		"\x00\xff":     StatusClassOpen,
	}

	for input, want := range tests {
		assert.Equal(t, want, Status(input), "input %q", input)
	}
}

func TestRisk(t *testing.T) {
	tests := map[string]RiskClass{
		"low":      RiskClassLow,
		"LOW":      RiskClassLow,
		"Medium":   RiskClassMedium,
		"high":     RiskClassHigh,
		"HiGh":     RiskClassHigh,
		"critical": RiskClassMedium,
		"":         RiskClassMedium,
	}

	for input, want := range tests {
		assert.Equal(t, want, Risk(input), "input %q", input)
	}
}

func TestClassifiersAreTotal(t *testing.T) {
	inputs := []string{"", "open", "x", "🚨", "under_review", "LOST", "medium ", "null"}

	for _, input := range inputs {
		assert.Contains(t, StatusClasses(), Status(input))
		assert.Contains(t, RiskClasses(), Risk(input))
	}
}
