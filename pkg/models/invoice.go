package models

import "io"

// InvoiceFields are the textual invoice fields that survive into a
// submitted claim. They default to empty strings, never to an absent value.
type InvoiceFields struct {
	CustomerName  string `json:"customerName"`
	InvoiceNumber string `json:"invoiceNumber"`
	PurchaseDate  string `json:"purchaseDate"`
}

// InvoiceDetails is the draft-side invoice: the fields plus the uploaded
// file handle. The handle is owned by the draft and dropped at submission.
type InvoiceDetails struct {
	InvoiceFields
	File io.ReadSeeker `json:"-"`
}
