package claims

import "github.com/floorguard/claims-backend/pkg/models"

// SeedClaims are the demo records a fresh store starts with.
func SeedClaims() []models.Claim {
	return []models.Claim{
		{
			Id:           "1",
			ClaimNumber:  "RFC#12500",
			Status:       models.ClaimInProgress,
			Date:         "Oct 24, 2023",
			ThumbnailUrl: "https://picsum.photos/100/100?random=1",
			Details: &models.ClaimDetails{
				Invoice: models.InvoiceFields{
					CustomerName:  "Sarah Smith",
					InvoiceNumber: "INV-2023-001",
					PurchaseDate:  "2023-01-15",
				},
				Issues: []models.Issue{
					{
						Id:            "i1",
						ImageUrls:     []string{"https://picsum.photos/100/100?random=1"},
						DetectedIssue: "Water Damage",
						Remarks:       "Noticed swelling in the corner planks.",
						Timestamp:     1698100000000,
					},
				},
				FollowUps: []models.FollowUp{
					{
						Id:       "f1",
						Message:  "When can I expect the surveyor to visit?",
						Date:     "Oct 26, 2023",
						Status:   models.FollowUpResponded,
						Response: "Our surveyor is scheduled for Oct 30th.",
					},
				},
			},
		},
		{
			Id:           "2",
			ClaimNumber:  "RFC#12492",
			Status:       models.ClaimResolved,
			Date:         "Sep 12, 2023",
			ThumbnailUrl: "https://picsum.photos/100/100?random=2",
			Details: &models.ClaimDetails{
				Invoice: models.InvoiceFields{
					CustomerName:  "Mike Ross",
					InvoiceNumber: "INV-2023-892",
					PurchaseDate:  "2022-11-20",
				},
				Issues: []models.Issue{
					{
						Id:            "i2",
						ImageUrls:     []string{"https://picsum.photos/100/100?random=2"},
						DetectedIssue: "Cracked Tile",
						Remarks:       "Hairline cracks appeared after installation.",
						Timestamp:     1694470000000,
					},
				},
				FollowUps: []models.FollowUp{},
			},
		},
	}
}
