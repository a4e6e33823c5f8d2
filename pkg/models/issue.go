package models

import "fmt"

type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityUnknown  Severity = "unknown"
)

// ParseSeverity maps free-form collaborator output onto the closed set.
// An empty string stays empty: legacy records carry no severity at all.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case "":
		return "", nil
	case SeverityMinor, SeverityModerate, SeveritySevere, SeverityUnknown:
		return Severity(s), nil
	}
	return "", fmt.Errorf("invalid severity %q", s)
}

type Issue struct {
	Id            string   `json:"id"`
	ImageUrls     []string `json:"imageUrls"`
	DetectedIssue string   `json:"detectedIssue"`
	Severity      Severity `json:"severity,omitempty"`
	Remarks       string   `json:"remarks"`
	Timestamp     int64    `json:"timestamp"`
}
