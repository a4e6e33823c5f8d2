package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorguard/claims-backend/pkg/claims"
	"github.com/floorguard/claims-backend/pkg/models"
)

// White-box: a success screen whose submission receipt no longer resolves
// must fall back to the dashboard instead of failing.
func TestViewDetailsLookupMissFallsBack(t *testing.T) {
	s := NewSession(claims.New(nil))
	s.screen = models.ScreenSuccess
	s.lastSubmitted = "RFC#00000"

	require.NoError(t, s.ViewDetails())
	assert.Equal(t, models.ScreenDashboard, s.Screen())
	assert.Empty(t, s.viewedClaimId)
}
