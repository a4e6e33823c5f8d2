package wizard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorguard/claims-backend/pkg/claims"
	"github.com/floorguard/claims-backend/pkg/models"
	"github.com/floorguard/claims-backend/pkg/wizard"
)

func reachCapture(t *testing.T) *wizard.Session {
	t.Helper()
	s := wizard.NewSession(claims.New(claims.SeedClaims()))
	require.NoError(t, s.StartClaim())
	require.NoError(t, s.Next())
	require.Equal(t, models.CaptureCapturing, s.State().CaptureView)
	return s
}

func TestCaptureFlow(t *testing.T) {
	s := reachCapture(t)

	require.NoError(t, s.AddImage("u1"))
	require.NoError(t, s.AddImage("u2"))

	gen, err := s.StartAnalysis()
	require.NoError(t, err)
	assert.Equal(t, models.CaptureAnalyzing, s.State().CaptureView)

	ok := s.DeliverFinding(gen, wizard.Finding{
		Issue:       "Water Damage",
		Severity:    models.SeveritySevere,
		Description: "Swelling along the plank edges.",
	})
	require.True(t, ok)
	assert.Equal(t, "Swelling along the plank edges.", s.SuggestedRemarks())

	issue, err := s.SaveIssue("my own words")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, issue.ImageUrls)
	assert.Equal(t, "Water Damage", issue.DetectedIssue)
	assert.Equal(t, models.SeveritySevere, issue.Severity)
	assert.Equal(t, "my own words", issue.Remarks)
	assert.NotEmpty(t, issue.Id)

	st := s.State()
	assert.Equal(t, models.CaptureList, st.CaptureView)
	assert.Empty(t, st.CaptureImages)
	assert.Nil(t, st.Finding)
	require.Len(t, st.Issues, 1)
}

func TestAnalyzeWithoutImages(t *testing.T) {
	s := reachCapture(t)

	_, err := s.StartAnalysis()
	assert.ErrorIs(t, err, wizard.ErrTransition)
	assert.Equal(t, models.CaptureCapturing, s.State().CaptureView)
}

func TestSaveWithoutFinding(t *testing.T) {
	s := reachCapture(t)
	require.NoError(t, s.AddImage("u1"))
	_, err := s.StartAnalysis()
	require.NoError(t, err)

	_, err = s.SaveIssue("")
	assert.ErrorIs(t, err, wizard.ErrTransition)
}

func TestStaleFindingIsDropped(t *testing.T) {
	s := reachCapture(t)
	require.NoError(t, s.AddImage("u1"))

	gen, err := s.StartAnalysis()
	require.NoError(t, err)

	// User retakes before the (slow) detection call returns.
	require.NoError(t, s.Retake())

	ok := s.DeliverFinding(gen, wizard.Finding{Issue: "Cracked Tile"})
	assert.False(t, ok)
	assert.Nil(t, s.State().Finding)

	// A fresh analysis of the same run still works.
	gen2, err := s.StartAnalysis()
	require.NoError(t, err)
	assert.True(t, s.DeliverFinding(gen2, wizard.Finding{Issue: "Cracked Tile"}))
}

func TestStaleFindingAfterNavigation(t *testing.T) {
	s := reachCapture(t)
	require.NoError(t, s.AddImage("u1"))
	gen, err := s.StartAnalysis()
	require.NoError(t, err)

	// Abandon the capture entirely.
	require.NoError(t, s.Back())
	assert.False(t, s.DeliverFinding(gen, wizard.Finding{Issue: "Cracked Tile"}))
	assert.Empty(t, s.State().Issues)
}

func TestLowClaritySuppressesRemarks(t *testing.T) {
	s := reachCapture(t)
	require.NoError(t, s.AddImage("u1"))
	gen, err := s.StartAnalysis()
	require.NoError(t, err)

	require.True(t, s.DeliverFinding(gen, wizard.Finding{
		Issue:       "Grout Discoloration",
		Description: "Possibly discolored grout lines.",
		LowClarity:  true,
	}))
	assert.Empty(t, s.SuggestedRemarks())
}

func TestRetakeKeepsImages(t *testing.T) {
	s := reachCapture(t)
	require.NoError(t, s.AddImage("u1"))
	_, err := s.StartAnalysis()
	require.NoError(t, err)

	require.NoError(t, s.Retake())
	st := s.State()
	assert.Equal(t, models.CaptureCapturing, st.CaptureView)
	assert.Equal(t, []string{"u1"}, st.CaptureImages)
	assert.Nil(t, st.Finding)
}

func TestListViewWhenIssuesExist(t *testing.T) {
	s := reachCapture(t)
	require.NoError(t, s.AddImage("u1"))
	gen, err := s.StartAnalysis()
	require.NoError(t, err)
	require.True(t, s.DeliverFinding(gen, wizard.Finding{Issue: "Scratched Surface"}))
	_, err = s.SaveIssue("")
	require.NoError(t, err)

	// Leaving and re-entering the step lands on the list, not on capture.
	require.NoError(t, s.Next())
	require.NoError(t, s.Back())
	assert.Equal(t, models.CaptureList, s.State().CaptureView)

	require.NoError(t, s.NewCapture())
	assert.Equal(t, models.CaptureCapturing, s.State().CaptureView)
}
