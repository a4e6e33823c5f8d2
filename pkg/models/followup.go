package models

import "fmt"

type FollowUpStatus string

const (
	FollowUpPending   FollowUpStatus = "Pending"
	FollowUpResponded FollowUpStatus = "Responded"
)

func ParseFollowUpStatus(s string) (FollowUpStatus, error) {
	switch FollowUpStatus(s) {
	case FollowUpPending, FollowUpResponded:
		return FollowUpStatus(s), nil
	}
	return "", fmt.Errorf("invalid follow-up status %q", s)
}

type FollowUp struct {
	Id       string         `json:"id"`
	Message  string         `json:"message"`
	Date     string         `json:"date"`
	Status   FollowUpStatus `json:"status"`
	Response string         `json:"response,omitempty"`
}
