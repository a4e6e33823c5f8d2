package wizard

import (
	"github.com/google/uuid"

	"github.com/floorguard/claims-backend/pkg/models"
)

// Finding is a confirmed detection outcome for the capture in progress.
type Finding struct {
	Issue       string          `json:"issue"`
	Severity    models.Severity `json:"severity,omitempty"`
	Description string          `json:"description,omitempty"`
	LowClarity  bool            `json:"lowClarity"`
}

// capture is the nested state machine that produces one issue at a time
// inside the issue-capture screen. Every reset bumps the generation so a
// detection result from an abandoned run can never land in a later one.
type capture struct {
	view    models.CaptureView
	images  []string
	finding *Finding
	remarks string
	gen     int
}

func (c *capture) reset() {
	c.view = models.CaptureList
	c.images = nil
	c.finding = nil
	c.remarks = ""
	c.gen++
}

// enter picks the initial view: the list when issues already exist,
// otherwise straight into capturing.
func (c *capture) enter(hasIssues bool) {
	c.reset()
	if !hasIssues {
		c.view = models.CaptureCapturing
	}
}

// NewCapture moves from the issue list into a fresh capture run.
func (s *Session) NewCapture() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != models.ScreenIssueCapture || s.capture.view != models.CaptureList {
		return transitionError("new capture", s.screen)
	}
	s.capture.reset()
	s.capture.view = models.CaptureCapturing
	return nil
}

// AddImage appends a captured image to the run in progress.
func (s *Session) AddImage(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != models.ScreenIssueCapture || s.capture.view != models.CaptureCapturing {
		return transitionError("add image", s.screen)
	}
	s.capture.images = append(s.capture.images, url)
	return nil
}

// StartAnalysis moves into the analyzing view and returns the generation
// token the eventual result must carry. It requires at least one image and
// may be re-entered after a failed detection call.
func (s *Session) StartAnalysis() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != models.ScreenIssueCapture {
		return 0, transitionError("analyze", s.screen)
	}
	switch s.capture.view {
	case models.CaptureCapturing:
	case models.CaptureAnalyzing:
		if s.capture.finding != nil {
			return 0, transitionError("analyze", s.screen)
		}
	default:
		return 0, transitionError("analyze", s.screen)
	}
	if len(s.capture.images) == 0 {
		return 0, transitionError("analyze without images", s.screen)
	}
	s.capture.view = models.CaptureAnalyzing
	return s.capture.gen, nil
}

// CaptureImages returns the images of the run in progress.
func (s *Session) CaptureImages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.capture.images...)
}

// DeliverFinding applies a detection result to the run identified by gen.
// A stale generation is dropped: the user already retook or navigated away.
func (s *Session) DeliverFinding(gen int, f Finding) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.capture.gen || s.capture.view != models.CaptureAnalyzing {
		log.Debugf("dropping stale detection result (gen %d, current %d)", gen, s.capture.gen)
		return false
	}
	s.capture.finding = &f
	if f.LowClarity {
		// Low clarity: the description is not trustworthy enough to
		// pre-fill the user's remarks.
		s.capture.remarks = ""
	} else {
		s.capture.remarks = f.Description
	}
	return true
}

// Retake abandons the current analysis and returns to capturing with the
// accumulated images kept.
func (s *Session) Retake() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != models.ScreenIssueCapture || s.capture.view != models.CaptureAnalyzing {
		return transitionError("retake", s.screen)
	}
	images := s.capture.images
	s.capture.reset()
	s.capture.view = models.CaptureCapturing
	s.capture.images = images
	return nil
}

// SaveIssue confirms the analyzed capture as a draft issue and returns to
// the list view. It requires at least one image and a detected issue label.
func (s *Session) SaveIssue(remarks string) (models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != models.ScreenIssueCapture || s.capture.view != models.CaptureAnalyzing {
		return models.Issue{}, transitionError("save issue", s.screen)
	}
	if s.capture.finding == nil || s.capture.finding.Issue == "" || len(s.capture.images) == 0 {
		return models.Issue{}, transitionError("save issue without a detection result", s.screen)
	}

	issue := models.Issue{
		Id:            uuid.NewString(),
		ImageUrls:     append([]string{}, s.capture.images...),
		DetectedIssue: s.capture.finding.Issue,
		Severity:      s.capture.finding.Severity,
		Remarks:       remarks,
		Timestamp:     s.now().UnixMilli(),
	}
	s.draft.AddIssue(issue)
	s.capture.reset()
	return issue, nil
}

// SuggestedRemarks is the pre-filled remarks text for the current capture,
// empty when the detection flagged low clarity.
func (s *Session) SuggestedRemarks() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capture.remarks
}
