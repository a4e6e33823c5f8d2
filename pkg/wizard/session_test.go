package wizard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorguard/claims-backend/pkg/claims"
	"github.com/floorguard/claims-backend/pkg/draft"
	"github.com/floorguard/claims-backend/pkg/models"
	"github.com/floorguard/claims-backend/pkg/wizard"
)

func strPtr(s string) *string {
	return &s
}

func newSession(t *testing.T) (*wizard.Session, *claims.Store) {
	t.Helper()
	store := claims.New(claims.SeedClaims())
	s := wizard.NewSession(store, wizard.WithClock(func() time.Time {
		return time.Date(2023, time.October, 25, 12, 0, 0, 0, time.UTC)
	}))
	return s, store
}

// Drives a session from the dashboard through a full capture to the review
// screen.
func reachReview(t *testing.T, s *wizard.Session) {
	t.Helper()
	require.NoError(t, s.StartClaim())
	require.NoError(t, s.UpdateInvoice(draft.InvoiceUpdate{
		CustomerName:  strPtr("Alex"),
		InvoiceNumber: strPtr("INV-1"),
		PurchaseDate:  strPtr("2023-05-15"),
	}))
	require.NoError(t, s.Next())

	require.NoError(t, s.AddImage("/api/v1/photos/x/1"))
	gen, err := s.StartAnalysis()
	require.NoError(t, err)
	require.True(t, s.DeliverFinding(gen, wizard.Finding{Issue: "Cracked Tile", Severity: models.SeverityModerate}))
	_, err = s.SaveIssue("hairline cracks")
	require.NoError(t, err)

	require.NoError(t, s.Next())
	assert.Equal(t, models.ScreenReview, s.Screen())
}

func TestStartClaimResetsAbandonedDraft(t *testing.T) {
	s, _ := newSession(t)

	require.NoError(t, s.StartClaim())
	require.NoError(t, s.UpdateInvoice(draft.InvoiceUpdate{CustomerName: strPtr("Abandoned")}))
	require.NoError(t, s.Back())

	require.NoError(t, s.StartClaim())
	st := s.State()
	assert.Equal(t, models.ScreenInvoiceEntry, st.Screen)
	assert.Equal(t, models.InvoiceFields{}, st.Invoice)
	assert.Empty(t, st.Issues)
}

func TestIllegalTransitions(t *testing.T) {
	s, _ := newSession(t)

	assert.ErrorIs(t, s.Next(), wizard.ErrTransition)
	assert.ErrorIs(t, s.Back(), wizard.ErrTransition)
	assert.ErrorIs(t, s.Home(), wizard.ErrTransition)
	assert.ErrorIs(t, s.ViewDetails(), wizard.ErrTransition)
	_, err := s.Submit()
	assert.ErrorIs(t, err, wizard.ErrTransition)
	assert.ErrorIs(t, s.AddImage("u"), wizard.ErrTransition)
	_, err = s.StartAnalysis()
	assert.ErrorIs(t, err, wizard.ErrTransition)

	// Failed transitions leave the screen untouched.
	assert.Equal(t, models.ScreenDashboard, s.Screen())
}

func TestBackwardNavigation(t *testing.T) {
	s, _ := newSession(t)

	require.NoError(t, s.StartClaim())
	require.NoError(t, s.Next())
	assert.Equal(t, models.ScreenIssueCapture, s.Screen())
	require.NoError(t, s.Back())
	assert.Equal(t, models.ScreenInvoiceEntry, s.Screen())
	require.NoError(t, s.Back())
	assert.Equal(t, models.ScreenDashboard, s.Screen())
}

func TestSubmitEndToEnd(t *testing.T) {
	s, store := newSession(t)
	reachReview(t, s)

	c, err := s.Submit()
	require.NoError(t, err)
	assert.Equal(t, models.ScreenSuccess, s.Screen())
	assert.Equal(t, models.ClaimPending, c.Status)

	require.NotNil(t, c.Details)
	assert.Equal(t, "Alex", c.Details.Invoice.CustomerName)
	require.Len(t, c.Details.Issues, 1)
	assert.Equal(t, "Cracked Tile", c.Details.Issues[0].DetectedIssue)
	assert.Equal(t, "hairline cracks", c.Details.Issues[0].Remarks)

	// Newest first in the store, and the draft is gone.
	assert.Equal(t, c.Id, store.List()[0].Id)
	assert.Empty(t, s.State().Issues)

	require.NoError(t, s.ViewDetails())
	assert.Equal(t, models.ScreenClaimDetails, s.Screen())
	viewed, err := s.ViewedClaim()
	require.NoError(t, err)
	assert.Equal(t, c.Id, viewed.Id)
}

func TestSuccessHome(t *testing.T) {
	s, _ := newSession(t)
	reachReview(t, s)
	_, err := s.Submit()
	require.NoError(t, err)

	require.NoError(t, s.Home())
	assert.Equal(t, models.ScreenDashboard, s.Screen())
}

func TestViewClaimAndFollowUp(t *testing.T) {
	s, store := newSession(t)

	require.NoError(t, s.ViewClaim("2"))
	assert.Equal(t, models.ScreenClaimDetails, s.Screen())

	require.NoError(t, s.OpenComposer())
	f, err := s.SendFollowUp("Any update?")
	require.NoError(t, err)
	assert.Equal(t, models.FollowUpPending, f.Status)
	assert.False(t, s.State().ComposerOpen)

	// The viewed claim reflects the store mutation immediately.
	viewed, err := s.ViewedClaim()
	require.NoError(t, err)
	require.NotNil(t, viewed.Details)
	assert.Equal(t, "Any update?", viewed.Details.FollowUps[len(viewed.Details.FollowUps)-1].Message)

	stored, err := store.FindById("2")
	require.NoError(t, err)
	assert.Equal(t, viewed.Details.FollowUps, stored.Details.FollowUps)
}

func TestViewUnknownClaim(t *testing.T) {
	s, _ := newSession(t)

	err := s.ViewClaim("nope")
	assert.ErrorIs(t, err, claims.ErrNotFound)
	assert.Equal(t, models.ScreenDashboard, s.Screen())
}

func TestSendEmptyFollowUpBlocked(t *testing.T) {
	s, _ := newSession(t)
	require.NoError(t, s.ViewClaim("1"))
	require.NoError(t, s.OpenComposer())

	_, err := s.SendFollowUp("  ")
	assert.ErrorIs(t, err, claims.ErrEmptyMessage)
	assert.True(t, s.State().ComposerOpen)
}
