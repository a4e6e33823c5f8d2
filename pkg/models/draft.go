package models

// DraftClaim accumulates wizard input until submission. One per session.
type DraftClaim struct {
	Invoice InvoiceDetails `json:"invoice"`
	Issues  []Issue        `json:"issues"`
}

func EmptyDraft() DraftClaim {
	return DraftClaim{Issues: []Issue{}}
}
