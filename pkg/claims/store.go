package claims

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/floorguard/claims-backend/pkg/models"
)

var log = logrus.StandardLogger().WithField("package", "claims")

var (
	ErrNotFound     = errors.New("claim not found")
	ErrEmptyMessage = errors.New("follow-up message is empty")
)

const (
	displayDateLayout    = "Jan 2, 2006"
	placeholderThumbnail = "https://picsum.photos/100/100?random=99"
)

// Store is the in-memory collection of submitted claims, newest first.
// Except for follow-up additions, records are never mutated after creation.
type Store struct {
	mu     sync.Mutex
	claims []models.Claim
	now    func() time.Time
	intn   func(n int) int
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithRand(r *rand.Rand) Option {
	return func(s *Store) {
		s.intn = r.Intn
	}
}

func New(seed []models.Claim, opts ...Option) *Store {
	s := &Store{
		claims: append([]models.Claim{}, seed...),
		now:    time.Now,
		intn:   rand.Intn,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit materializes a draft into a new claim at the front of the store.
// The draft's file handle is dropped; only the textual invoice fields and
// the issues survive.
func (s *Store) Submit(d models.DraftClaim) models.Claim {
	s.mu.Lock()
	defer s.mu.Unlock()

	thumbnail := placeholderThumbnail
	if len(d.Issues) > 0 && len(d.Issues[0].ImageUrls) > 0 {
		thumbnail = d.Issues[0].ImageUrls[0]
	}

	c := models.Claim{
		Id:           uuid.NewString(),
		ClaimNumber:  s.nextClaimNumber(),
		Status:       models.ClaimPending,
		Date:         s.now().Format(displayDateLayout),
		ThumbnailUrl: thumbnail,
		Details: &models.ClaimDetails{
			Invoice:   d.Invoice.InvoiceFields,
			Issues:    append([]models.Issue{}, d.Issues...),
			FollowUps: []models.FollowUp{},
		},
	}

	s.claims = append([]models.Claim{c}, s.claims...)
	log.Debugf("submitted claim %s with %d issue(s)", c.ClaimNumber, len(d.Issues))
	return cloneClaim(c)
}

// nextClaimNumber draws RFC#<5 digits> in [10000, 19999], redrawing on the
// rare collision with an existing claim. Caller holds the lock.
func (s *Store) nextClaimNumber() string {
	for {
		n := fmt.Sprintf("RFC#%d", 10000+s.intn(10000))
		if s.indexOfNumber(n) == -1 {
			return n
		}
		log.Warnf("claim number collision on %s, redrawing", n)
	}
}

// AddFollowUp appends a pending follow-up to the claim with the given id.
// Legacy records without a details block get one materialized here, at the
// single mutation point, instead of null-checks at every read site.
func (s *Store) AddFollowUp(claimId string, message string) (models.FollowUp, error) {
	if strings.TrimSpace(message) == "" {
		return models.FollowUp{}, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.claims {
		if s.claims[i].Id != claimId {
			continue
		}
		if s.claims[i].Details == nil {
			s.claims[i].Details = &models.ClaimDetails{
				Issues:    []models.Issue{},
				FollowUps: []models.FollowUp{},
			}
		}
		f := models.FollowUp{
			Id:      uuid.NewString(),
			Message: message,
			Date:    s.now().Format(displayDateLayout),
			Status:  models.FollowUpPending,
		}
		s.claims[i].Details.FollowUps = append(s.claims[i].Details.FollowUps, f)
		return f, nil
	}
	return models.FollowUp{}, fmt.Errorf("add follow-up: %w", ErrNotFound)
}

// MarkResponded records the administrative answer to a follow-up. There is
// no user-facing path to this transition.
func (s *Store) MarkResponded(claimId string, followUpId string, response string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.claims {
		if s.claims[i].Id != claimId || s.claims[i].Details == nil {
			continue
		}
		followUps := s.claims[i].Details.FollowUps
		for j := range followUps {
			if followUps[j].Id != followUpId {
				continue
			}
			followUps[j].Status = models.FollowUpResponded
			followUps[j].Response = response
			return nil
		}
	}
	return fmt.Errorf("mark responded: %w", ErrNotFound)
}

// FindByClaimNumber does a linear lookup over the store.
func (s *Store) FindByClaimNumber(number string) (models.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOfNumber(number); i != -1 {
		return cloneClaim(s.claims[i]), nil
	}
	return models.Claim{}, fmt.Errorf("claim number %s: %w", number, ErrNotFound)
}

func (s *Store) FindById(id string) (models.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.claims {
		if s.claims[i].Id == id {
			return cloneClaim(s.claims[i]), nil
		}
	}
	return models.Claim{}, fmt.Errorf("claim %s: %w", id, ErrNotFound)
}

// List returns the claims newest first.
func (s *Store) List() []models.Claim {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Claim, len(s.claims))
	for i := range s.claims {
		out[i] = cloneClaim(s.claims[i])
	}
	return out
}

// cloneClaim detaches a read result from the store's backing data, so that
// later writes cannot show through a value already handed out.
func cloneClaim(c models.Claim) models.Claim {
	if c.Details == nil {
		return c
	}
	d := models.ClaimDetails{
		Invoice:   c.Details.Invoice,
		Issues:    make([]models.Issue, len(c.Details.Issues)),
		FollowUps: append([]models.FollowUp{}, c.Details.FollowUps...),
	}
	for i, issue := range c.Details.Issues {
		issue.ImageUrls = append([]string{}, issue.ImageUrls...)
		d.Issues[i] = issue
	}
	c.Details = &d
	return c
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.claims)
}

func (s *Store) indexOfNumber(number string) int {
	for i := range s.claims {
		if s.claims[i].ClaimNumber == number {
			return i
		}
	}
	return -1
}
