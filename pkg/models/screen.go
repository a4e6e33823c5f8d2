package models

type Screen string

const (
	ScreenDashboard    Screen = "dashboard"
	ScreenInvoiceEntry Screen = "invoice"
	ScreenIssueCapture Screen = "issues"
	ScreenReview       Screen = "review"
	ScreenSuccess      Screen = "success"
	ScreenClaimDetails Screen = "details"
)

// CaptureView is the nested view state inside the issue-capture screen.
type CaptureView string

const (
	CaptureList      CaptureView = "list"
	CaptureCapturing CaptureView = "capture"
	CaptureAnalyzing CaptureView = "analyzing"
)
