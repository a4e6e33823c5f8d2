package backend

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/floorguard/claims-backend/pkg/claims"
	"github.com/floorguard/claims-backend/pkg/detection"
	"github.com/floorguard/claims-backend/pkg/draft"
	"github.com/floorguard/claims-backend/pkg/models"
	"github.com/floorguard/claims-backend/pkg/wizard"
)

const allowedEmailDomain = "@gmail.com"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, badRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	if !strings.HasSuffix(strings.ToLower(req.Email), allowedEmailDomain) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only " + allowedEmailDomain + " accounts are allowed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"email": req.Email})
}

func (s *Server) handleGetClaims(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"claims": s.store.List()})
}

// handleGetClaim accepts either a claim id or a claim number ("RFC#...").
func (s *Server) handleGetClaim(c *gin.Context) {
	key := c.Param("id")
	if key == "" {
		c.JSON(http.StatusBadRequest, badRequest)
		return
	}

	claim, err := s.store.FindByClaimNumber(key)
	if err != nil {
		claim, err = s.store.FindById(key)
	}
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, claim)
}

type followUpRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleAddFollowUp(c *gin.Context) {
	var req followUpRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, badRequest)
		return
	}

	f, err := s.store.AddFollowUp(c.Param("id"), req.Message)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

type respondRequest struct {
	Response string `json:"response"`
}

// handleRespondFollowUp is the administrative path that answers a follow-up.
func (s *Server) handleRespondFollowUp(c *gin.Context) {
	var req respondRequest
	if err := c.BindJSON(&req); err != nil || req.Response == "" {
		c.JSON(http.StatusBadRequest, badRequest)
		return
	}

	err := s.store.MarkResponded(c.Param("id"), c.Param("followUpId"), req.Response)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleCreateSession(c *gin.Context) {
	sess := wizard.NewSession(s.store)

	s.sessionsMu.Lock()
	s.sessions[sess.Id()] = sess
	s.sessionsMu.Unlock()

	log.Debugf("created session %s", sess.Id())
	c.JSON(http.StatusCreated, sess.State())
}

func (s *Server) handleGetSession(c *gin.Context) {
	sess := s.session(c)
	if sess == nil {
		return
	}
	c.JSON(http.StatusOK, sess.State())
}

type sessionEvent struct {
	Event   string `json:"event"`
	ClaimId string `json:"claimId,omitempty"`
}

func (s *Server) handleSessionEvent(c *gin.Context) {
	sess := s.session(c)
	if sess == nil {
		return
	}

	var ev sessionEvent
	if err := c.BindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, badRequest)
		return
	}

	var err error
	var submitted *models.Claim
	switch ev.Event {
	case "start":
		err = sess.StartClaim()
	case "next":
		err = sess.Next()
	case "back":
		err = sess.Back()
	case "submit":
		var claim models.Claim
		claim, err = sess.Submit()
		if err == nil {
			submitted = &claim
		}
	case "home":
		err = sess.Home()
	case "view-details":
		err = sess.ViewDetails()
	case "view-claim":
		err = sess.ViewClaim(ev.ClaimId)
	case "new-capture":
		err = sess.NewCapture()
	case "retake":
		err = sess.Retake()
	case "open-composer":
		err = sess.OpenComposer()
	case "close-composer":
		err = sess.CloseComposer()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown event %q", ev.Event)})
		return
	}
	if err != nil {
		writeWizardError(c, err)
		return
	}

	res := gin.H{"state": sess.State()}
	if submitted != nil {
		res["claim"] = submitted
		res["claimNumber"] = submitted.ClaimNumber
	}
	c.JSON(http.StatusOK, res)
}

type invoiceUpdateRequest struct {
	CustomerName  *string `json:"customerName"`
	InvoiceNumber *string `json:"invoiceNumber"`
	PurchaseDate  *string `json:"purchaseDate"`
}

func (s *Server) handleUpdateInvoice(c *gin.Context) {
	sess := s.session(c)
	if sess == nil {
		return
	}

	var req invoiceUpdateRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, badRequest)
		return
	}

	err := sess.UpdateInvoice(draft.InvoiceUpdate{
		CustomerName:  req.CustomerName,
		InvoiceNumber: req.InvoiceNumber,
		PurchaseDate:  req.PurchaseDate,
	})
	if err != nil {
		writeWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.State())
}

// handleInvoiceFile attaches the uploaded invoice to the draft and runs it
// through the extraction collaborator. On failure the wizard stays on the
// invoice step so the user can retry.
func (s *Server) handleInvoiceFile(c *gin.Context) {
	sess := s.session(c)
	if sess == nil {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, badRequest)
		return
	}
	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, badRequest)
		return
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, internalServerError)
		return
	}

	if err := sess.AttachInvoiceFile(bytes.NewReader(b)); err != nil {
		writeWizardError(c, err)
		return
	}

	result, err := s.extractor.Extract(bytes.NewReader(b), header.Filename)
	if err != nil {
		log.Errorf("invoice extraction failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "invoice extraction failed"})
		return
	}

	err = sess.UpdateInvoice(draft.InvoiceUpdate{
		CustomerName:  &result.CustomerName,
		InvoiceNumber: &result.InvoiceNumber,
		PurchaseDate:  &result.PurchaseDate,
	})
	if err != nil {
		writeWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.State())
}

// handleAddPhoto stores a captured defect photo and appends its URL to the
// capture in progress.
func (s *Server) handleAddPhoto(c *gin.Context) {
	sess := s.session(c)
	if sess == nil {
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, badRequest)
		return
	}
	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, badRequest)
		return
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, internalServerError)
		return
	}

	// store first: the capture must never reference a photo that is not
	// actually retrievable
	seq := s.nextPhotoSeq(sess.Id())
	err = s.photos.Store(models.Photo{
		Reader:     bytes.NewReader(b),
		SessionId:  sess.Id(),
		SequenceId: seq,
		CapturedAt: time.Now(),
	})
	if err != nil {
		log.Errorf("unable to store photo: %v", err)
		c.JSON(http.StatusInternalServerError, internalServerError)
		return
	}

	url := photoUrl(sess.Id(), seq)
	if err := sess.AddImage(url); err != nil {
		writeWizardError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url, "state": sess.State()})
}

// handleAnalyze runs the detection collaborator over the captured images.
// The generation token from StartAnalysis guards against a slow result
// landing in a capture run the user has already abandoned.
func (s *Server) handleAnalyze(c *gin.Context) {
	sess := s.session(c)
	if sess == nil {
		return
	}

	gen, err := sess.StartAnalysis()
	if err != nil {
		writeWizardError(c, err)
		return
	}

	images, err := s.loadCaptureImages(sess)
	if err != nil {
		log.Errorf("unable to load capture images: %v", err)
		c.JSON(http.StatusInternalServerError, internalServerError)
		return
	}
	defer closeImages(images)

	result, err := s.detector.Detect(images)
	if err != nil {
		log.Errorf("issue detection failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "issue detection failed"})
		return
	}

	delivered := sess.DeliverFinding(gen, wizard.Finding{
		Issue:       result.IssueType,
		Severity:    result.Severity,
		Description: result.Description,
		LowClarity:  result.LowClarity,
	})
	if !delivered {
		c.JSON(http.StatusConflict, gin.H{"error": "capture was abandoned"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":            sess.State(),
		"suggestedRemarks": sess.SuggestedRemarks(),
		"lowClarity":       result.LowClarity,
	})
}

func (s *Server) loadCaptureImages(sess *wizard.Session) ([]detection.Image, error) {
	var images []detection.Image
	for _, url := range sess.CaptureImages() {
		seq, err := photoSeqFromUrl(url)
		if err != nil {
			closeImages(images)
			return nil, err
		}
		photo, err := s.photos.Retrieve(sess.Id(), seq)
		if err != nil {
			closeImages(images)
			return nil, err
		}
		images = append(images, detection.Image{
			Name:   fmt.Sprintf("%d.jpg", seq),
			Reader: photo.Reader,
		})
	}
	return images, nil
}

func closeImages(images []detection.Image) {
	for _, img := range images {
		if closer, ok := img.Reader.(io.Closer); ok {
			_ = closer.Close()
		}
	}
}

type saveIssueRequest struct {
	Remarks string `json:"remarks"`
}

func (s *Server) handleSaveIssue(c *gin.Context) {
	sess := s.session(c)
	if sess == nil {
		return
	}

	var req saveIssueRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, badRequest)
		return
	}

	issue, err := sess.SaveIssue(req.Remarks)
	if err != nil {
		writeWizardError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"issue": issue, "state": sess.State()})
}

func (s *Server) handleRemoveIssue(c *gin.Context) {
	sess := s.session(c)
	if sess == nil {
		return
	}

	if err := sess.RemoveIssue(c.Param("issueId")); err != nil {
		writeWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.State())
}

func (s *Server) handleSendFollowUp(c *gin.Context) {
	sess := s.session(c)
	if sess == nil {
		return
	}

	var req followUpRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, badRequest)
		return
	}

	f, err := sess.SendFollowUp(req.Message)
	if err != nil {
		writeWizardError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"followUp": f, "state": sess.State()})
}

func (s *Server) handleGetPhoto(c *gin.Context) {
	sessionId := c.Param("sessionId")
	sequenceIdStr := c.Param("sequenceId")
	if sessionId == "" || sequenceIdStr == "" {
		c.JSON(http.StatusBadRequest, badRequest)
		return
	}
	sequenceId, err := strconv.ParseInt(sequenceIdStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, badRequest)
		return
	}

	photo, err := s.photos.Retrieve(sessionId, int(sequenceId))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		log.Errorf("unable to retrieve photo: %v", err)
		c.JSON(http.StatusInternalServerError, internalServerError)
		return
	}
	if closer, ok := photo.Reader.(io.Closer); ok {
		defer closer.Close()
	}

	c.Header("Content-Type", "image/jpeg")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, photo.Reader); err != nil {
		log.Errorf("unable to copy: %v", err)
	}
}

// session resolves the session path parameter, writing a 404 on a miss.
func (s *Server) session(c *gin.Context) *wizard.Session {
	s.sessionsMu.Lock()
	sess := s.sessions[c.Param("id")]
	s.sessionsMu.Unlock()

	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	}
	return sess
}

func (s *Server) nextPhotoSeq(sessionId string) int {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	s.photoSeq[sessionId]++
	return s.photoSeq[sessionId]
}

func photoUrl(sessionId string, sequenceId int) string {
	return fmt.Sprintf("/api/v1/photos/%s/%d", sessionId, sequenceId)
}

func photoSeqFromUrl(url string) (int, error) {
	idx := strings.LastIndex(url, "/")
	if idx == -1 {
		return 0, fmt.Errorf("malformed photo url %q", url)
	}
	seq, err := strconv.Atoi(url[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("malformed photo url %q", url)
	}
	return seq, nil
}

func writeWizardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, wizard.ErrTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, claims.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, claims.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
	default:
		log.Errorf("wizard error: %v", err)
		c.JSON(http.StatusInternalServerError, internalServerError)
	}
}

func writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, claims.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, claims.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
	default:
		log.Errorf("store error: %v", err)
		c.JSON(http.StatusInternalServerError, internalServerError)
	}
}
