package detection

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/floorguard/claims-backend/pkg/models"
)

// Client talks to the defect detection service.
type Client struct {
	http     *http.Client
	endpoint *url.URL
	mutex    sync.Mutex
}

var logger = logrus.StandardLogger().WithField("package", "detection")

func New(endpoint string) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("scheme %s is not supported", u.Scheme)
	}

	return &Client{
		endpoint: u,
		http:     &http.Client{},
	}, nil
}

func (c *Client) SetHttpTransport(transport http.RoundTripper) {
	c.http.Transport = transport
}

// Image is one photo to analyze.
type Image struct {
	Name   string
	Reader io.Reader
}

// Result is the detection outcome for a set of images. LowClarity marks a
// shot too blurry to trust: the caller should warn the user and must not
// pre-fill remarks from the description.
type Result struct {
	IssueType        string
	Severity         models.Severity
	ShortDescription string
	Description      string
	LowClarity       bool
}

type detectResponse struct {
	AiDetectionResult *aiDetectionResult `json:"ai_detection_result"`
}

type aiDetectionResult struct {
	IssueType           string  `json:"issue_type"`
	Severity            string  `json:"severity"`
	ImageClarity        float64 `json:"image_clarity"`
	ShortDescription    string  `json:"short_description"`
	DetailedDescription string  `json:"detailed_description"`
	Description         string  `json:"description"`
}

// Detect uploads the images and returns the detected defect.
func (c *Client) Detect(images []Image) (*Result, error) {
	// One in-flight request at a time, the detection API is slow.
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if len(images) == 0 {
		return nil, fmt.Errorf("no images to analyze")
	}

	detectUrl, err := c.endpoint.Parse("/detect_issue")
	if err != nil {
		return nil, fmt.Errorf("unable to parse URL: %v", err)
	}

	body := bytes.NewBuffer(nil)
	w := multipart.NewWriter(body)
	for _, img := range images {
		part, err := w.CreateFormFile("images", img.Name)
		if err != nil {
			return nil, fmt.Errorf("unable to create form file: %v", err)
		}
		if _, err := io.Copy(part, img.Reader); err != nil {
			return nil, fmt.Errorf("unable to copy image: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("unable to finish form: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, detectUrl.String(), body)
	if err != nil {
		return nil, fmt.Errorf("unable to create request: %v", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to perform HTTP request: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", res.Status)
	}

	var parsed detectResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("unable to decode response: %v", err)
	}
	if parsed.AiDetectionResult == nil {
		return nil, fmt.Errorf("response carries no detection result")
	}

	r := parsed.AiDetectionResult
	description := r.DetailedDescription
	if description == "" {
		description = r.Description
	}
	result := Result{
		IssueType:        r.IssueType,
		Severity:         normalizeSeverity(r.Severity),
		ShortDescription: r.ShortDescription,
		Description:      description,
		LowClarity:       r.ImageClarity == 0,
	}
	logger.Debugf("detected %q (severity %s, clarity %v)", result.IssueType, result.Severity, r.ImageClarity)
	return &result, nil
}

// normalizeSeverity folds free-form collaborator output onto the closed
// severity set, defaulting to unknown.
func normalizeSeverity(s string) models.Severity {
	sev, err := models.ParseSeverity(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || sev == "" {
		return models.SeverityUnknown
	}
	return sev
}

// Healthz checks if the detection service is healthy.
func (c *Client) Healthz() (bool, error) {
	healthEndpoint, err := c.endpoint.Parse("/healthz")
	if err != nil {
		return false, err
	}
	res, err := c.http.Get(healthEndpoint.String())
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	return res.StatusCode == http.StatusOK, nil
}
