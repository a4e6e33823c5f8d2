package wizard

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/floorguard/claims-backend/pkg/claims"
	"github.com/floorguard/claims-backend/pkg/draft"
	"github.com/floorguard/claims-backend/pkg/models"
)

var log = logrus.StandardLogger().WithField("package", "wizard")

// ErrTransition is returned when an event is not legal on the current screen.
var ErrTransition = errors.New("illegal transition")

// Session is the per-user wizard state machine. All transitions are
// user-triggered and sequential; the mutex only guards against concurrent
// HTTP handlers touching the same session.
type Session struct {
	mu    sync.Mutex
	id    string
	store *claims.Store
	draft *draft.Accumulator

	screen  models.Screen
	capture capture

	lastSubmitted string // claim number of the last submission
	viewedClaimId string // key into the store, never a detached copy
	composerOpen  bool

	now func() time.Time
}

type Option func(*Session)

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

func NewSession(store *claims.Store, opts ...Option) *Session {
	s := &Session{
		id:     uuid.NewString(),
		store:  store,
		draft:  draft.New(),
		screen: models.ScreenDashboard,
		now:    time.Now,
	}
	s.capture.reset()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) Screen() models.Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

// StartClaim begins a new wizard run from the dashboard. The draft is reset
// even if a previous run was abandoned mid-flow.
func (s *Session) StartClaim() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != models.ScreenDashboard {
		return transitionError("start claim", s.screen)
	}
	s.draft.Reset()
	s.capture.reset()
	s.lastSubmitted = ""
	s.screen = models.ScreenInvoiceEntry
	return nil
}

// Next advances the wizard one step forward.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.screen {
	case models.ScreenInvoiceEntry:
		s.screen = models.ScreenIssueCapture
		s.capture.enter(len(s.draft.Issues()) > 0)
	case models.ScreenIssueCapture:
		s.capture.reset()
		s.screen = models.ScreenReview
	default:
		return transitionError("next", s.screen)
	}
	return nil
}

// Back moves one step backward, or leaves claim details for the dashboard.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.screen {
	case models.ScreenInvoiceEntry:
		s.screen = models.ScreenDashboard
	case models.ScreenIssueCapture:
		s.capture.reset()
		s.screen = models.ScreenInvoiceEntry
	case models.ScreenReview:
		s.screen = models.ScreenIssueCapture
		s.capture.enter(len(s.draft.Issues()) > 0)
	case models.ScreenClaimDetails:
		s.viewedClaimId = ""
		s.composerOpen = false
		s.screen = models.ScreenDashboard
	default:
		return transitionError("back", s.screen)
	}
	return nil
}

// Submit materializes the draft into the store and lands on the success
// screen. The draft is reset afterwards; the submitted claim is the receipt.
func (s *Session) Submit() (models.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != models.ScreenReview {
		return models.Claim{}, transitionError("submit", s.screen)
	}
	c := s.store.Submit(s.draft.Snapshot())
	s.lastSubmitted = c.ClaimNumber
	s.draft.Reset()
	s.screen = models.ScreenSuccess
	return c, nil
}

func (s *Session) Home() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != models.ScreenSuccess {
		return transitionError("home", s.screen)
	}
	s.screen = models.ScreenDashboard
	return nil
}

// ViewDetails resolves the last-submitted claim number against the store.
// A lookup miss falls back to the dashboard rather than failing.
func (s *Session) ViewDetails() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != models.ScreenSuccess {
		return transitionError("view details", s.screen)
	}
	c, err := s.store.FindByClaimNumber(s.lastSubmitted)
	if err != nil {
		log.Warnf("last submitted claim %q not found, falling back to dashboard", s.lastSubmitted)
		s.screen = models.ScreenDashboard
		return nil
	}
	s.viewedClaimId = c.Id
	s.screen = models.ScreenClaimDetails
	return nil
}

// ViewClaim opens the details of a stored claim from the dashboard.
func (s *Session) ViewClaim(claimId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != models.ScreenDashboard {
		return transitionError("view claim", s.screen)
	}
	if _, err := s.store.FindById(claimId); err != nil {
		return err
	}
	s.viewedClaimId = claimId
	s.screen = models.ScreenClaimDetails
	return nil
}

// ViewedClaim re-reads the viewed claim from the store so follow-up
// mutations are never shadowed by a stale copy.
func (s *Session) ViewedClaim() (models.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.viewedClaimId == "" {
		return models.Claim{}, fmt.Errorf("no claim selected: %w", claims.ErrNotFound)
	}
	return s.store.FindById(s.viewedClaimId)
}

func (s *Session) OpenComposer() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != models.ScreenClaimDetails {
		return transitionError("open composer", s.screen)
	}
	s.composerOpen = true
	return nil
}

func (s *Session) CloseComposer() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != models.ScreenClaimDetails {
		return transitionError("close composer", s.screen)
	}
	s.composerOpen = false
	return nil
}

// SendFollowUp appends a follow-up to the viewed claim and closes the
// composer. An empty message is rejected without a transition.
func (s *Session) SendFollowUp(message string) (models.FollowUp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != models.ScreenClaimDetails {
		return models.FollowUp{}, transitionError("send follow-up", s.screen)
	}
	f, err := s.store.AddFollowUp(s.viewedClaimId, message)
	if err != nil {
		return models.FollowUp{}, err
	}
	s.composerOpen = false
	return f, nil
}

// RemoveIssue drops an issue from the draft while on the issue list.
func (s *Session) RemoveIssue(issueId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != models.ScreenIssueCapture {
		return transitionError("remove issue", s.screen)
	}
	s.draft.RemoveIssue(issueId)
	return nil
}

// State is the wire representation of the session for the client.
type State struct {
	Id            string               `json:"id"`
	Screen        models.Screen        `json:"screen"`
	Invoice       models.InvoiceFields `json:"invoice"`
	Issues        []models.Issue       `json:"issues"`
	CaptureView   models.CaptureView   `json:"captureView"`
	CaptureImages []string             `json:"captureImages"`
	Finding       *Finding             `json:"finding,omitempty"`
	LastSubmitted string               `json:"lastSubmitted,omitempty"`
	ViewedClaimId string               `json:"viewedClaimId,omitempty"`
	ComposerOpen  bool                 `json:"composerOpen"`
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Id:            s.id,
		Screen:        s.screen,
		Invoice:       s.draft.Invoice(),
		Issues:        s.draft.Issues(),
		CaptureView:   s.capture.view,
		CaptureImages: append([]string{}, s.capture.images...),
		LastSubmitted: s.lastSubmitted,
		ViewedClaimId: s.viewedClaimId,
		ComposerOpen:  s.composerOpen,
	}
	if s.capture.finding != nil {
		f := *s.capture.finding
		st.Finding = &f
	}
	return st
}

// UpdateInvoice merges a partial invoice update into the draft.
func (s *Session) UpdateInvoice(u draft.InvoiceUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != models.ScreenInvoiceEntry {
		return transitionError("update invoice", s.screen)
	}
	s.draft.UpdateInvoice(u)
	return nil
}

// AttachInvoiceFile hands the uploaded invoice to the draft. A nil reader
// clears a previously attached file (re-scan).
func (s *Session) AttachInvoiceFile(f io.ReadSeeker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != models.ScreenInvoiceEntry {
		return transitionError("attach invoice file", s.screen)
	}
	s.draft.SetFile(f)
	return nil
}

func transitionError(event string, screen models.Screen) error {
	return fmt.Errorf("%s on screen %s: %w", event, screen, ErrTransition)
}
