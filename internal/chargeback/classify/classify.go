// Package classify maps raw case fields to presentation classes. The classes
// drive labels and colors only and never feed back into ranking.
package classify

import "strings"

type StatusClass string

const (
	StatusClassOpen     StatusClass = "open"
	StatusClassPending  StatusClass = "pending"
	StatusClassClosed   StatusClass = "closed"
	StatusClassResolved StatusClass = "resolved"
)

type RiskClass string

const (
	RiskClassLow    RiskClass = "low"
	RiskClassMedium RiskClass = "medium"
	RiskClassHigh   RiskClass = "high"
)

var statusClasses = map[string]StatusClass{
	"open":     StatusClassOpen,
	"pending":  StatusClassPending,
	"closed":   StatusClassClosed,
	"resolved": StatusClassResolved,
}

var riskClasses = map[string]RiskClass{
	"low":    RiskClassLow,
	"medium": RiskClassMedium,
	"high":   RiskClassHigh,
}

// Status classifies a raw status. Unrecognized values are treated as
// actionable and get the open class.
func Status(raw string) StatusClass {
	if class, ok := statusClasses[strings.ToLower(raw)]; ok {
		return class
	}
	return StatusClassOpen
}

// Risk classifies a raw risk level. Unrecognized values get the neutral
// medium class.
func Risk(raw string) RiskClass {
	if class, ok := riskClasses[strings.ToLower(raw)]; ok {
		return class
	}
	return RiskClassMedium
}

// StatusClasses lists every status class in display order.
func StatusClasses() []StatusClass {
	return []StatusClass{StatusClassOpen, StatusClassPending, StatusClassClosed, StatusClassResolved}
}

// RiskClasses lists every risk class from lowest to highest.
func RiskClasses() []RiskClass {
	return []RiskClass{RiskClassLow, RiskClassMedium, RiskClassHigh}
}
