package draft

import (
	"io"

	"github.com/floorguard/claims-backend/pkg/models"
)

// Accumulator holds the in-progress claim for a single wizard session.
// It is not safe for concurrent use; the owning session serializes access.
type Accumulator struct {
	d models.DraftClaim
}

func New() *Accumulator {
	return &Accumulator{d: models.EmptyDraft()}
}

// Reset replaces the draft with the canonical empty one. Idempotent.
func (a *Accumulator) Reset() {
	a.d = models.EmptyDraft()
}

// InvoiceUpdate is a partial update of the invoice fields: nil pointers
// leave the corresponding field untouched.
type InvoiceUpdate struct {
	CustomerName  *string
	InvoiceNumber *string
	PurchaseDate  *string
}

func (a *Accumulator) UpdateInvoice(u InvoiceUpdate) {
	if u.CustomerName != nil {
		a.d.Invoice.CustomerName = *u.CustomerName
	}
	if u.InvoiceNumber != nil {
		a.d.Invoice.InvoiceNumber = *u.InvoiceNumber
	}
	if u.PurchaseDate != nil {
		a.d.Invoice.PurchaseDate = *u.PurchaseDate
	}
}

// SetFile hands the uploaded invoice file to the draft. The handle stays
// here until submission and is never copied into the claim.
func (a *Accumulator) SetFile(f io.ReadSeeker) {
	a.d.Invoice.File = f
}

func (a *Accumulator) File() io.ReadSeeker {
	return a.d.Invoice.File
}

func (a *Accumulator) AddIssue(issue models.Issue) {
	a.d.Issues = append(a.d.Issues, issue)
}

// RemoveIssue removes the issue with the given id. A miss is a no-op.
func (a *Accumulator) RemoveIssue(id string) {
	for i, issue := range a.d.Issues {
		if issue.Id == id {
			a.d.Issues = append(a.d.Issues[:i], a.d.Issues[i+1:]...)
			return
		}
	}
}

func (a *Accumulator) Invoice() models.InvoiceFields {
	return a.d.Invoice.InvoiceFields
}

func (a *Accumulator) Issues() []models.Issue {
	return append([]models.Issue{}, a.d.Issues...)
}

// Snapshot returns a copy of the draft for submission.
func (a *Accumulator) Snapshot() models.DraftClaim {
	return models.DraftClaim{
		Invoice: a.d.Invoice,
		Issues:  append([]models.Issue{}, a.d.Issues...),
	}
}
