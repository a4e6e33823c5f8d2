package models

import "fmt"

type ClaimStatus string

const (
	ClaimPending    ClaimStatus = "Pending"
	ClaimInProgress ClaimStatus = "In Progress"
	ClaimResolved   ClaimStatus = "Resolved"
)

func ParseClaimStatus(s string) (ClaimStatus, error) {
	switch ClaimStatus(s) {
	case ClaimPending, ClaimInProgress, ClaimResolved:
		return ClaimStatus(s), nil
	}
	return "", fmt.Errorf("invalid claim status %q", s)
}

type Claim struct {
	Id           string        `json:"id"`
	ClaimNumber  string        `json:"claimNumber"`
	Status       ClaimStatus   `json:"status"`
	Date         string        `json:"date"`
	ThumbnailUrl string        `json:"thumbnailUrl"`
	Details      *ClaimDetails `json:"details,omitempty"`
}

// ClaimDetails is absent on legacy seeded records.
type ClaimDetails struct {
	Invoice   InvoiceFields `json:"invoice"`
	Issues    []Issue       `json:"issues"`
	FollowUps []FollowUp    `json:"followUps"`
}
