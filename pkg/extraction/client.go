package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/floorguard/claims-backend/pkg/dates"
)

// Client talks to the invoice field extraction service.
type Client struct {
	http     *http.Client
	endpoint *url.URL
	mutex    sync.Mutex
}

var logger = logrus.StandardLogger().WithField("package", "extraction")

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

// Result carries the extracted invoice fields. The purchase date is already
// normalized to YYYY-MM-DD, or empty if the extractor's text was unreadable.
type Result struct {
	CustomerName  string
	InvoiceNumber string
	PurchaseDate  string
}

type extractResponse struct {
	Data []map[string]string `json:"data"`
}

// Extract uploads the invoice file and returns the extracted fields.
func (c *Client) Extract(f io.Reader, filename string) (*Result, error) {
	// One in-flight request at a time, the extraction API is slow.
	c.mutex.Lock()
	defer c.mutex.Unlock()

	extractUrl, err := c.endpoint.Parse("/extract")
	if err != nil {
		return nil, fmt.Errorf("unable to parse URL: %v", err)
	}

	body := bytes.NewBuffer(nil)
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("unable to create form file: %v", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("unable to copy file: %v", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("unable to finish form: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, extractUrl.String(), body)
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

	var parsed extractResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("unable to decode response: %v", err)
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("response carries no extracted fields")
	}

	first := parsed.Data[0]
	result := Result{
		CustomerName:  first["Customer Name"],
		InvoiceNumber: first["Invoice Number"],
		PurchaseDate:  dates.Normalize(first["Purchase Date"]),
	}
	logger.Debugf("extracted invoice %q for %q", result.InvoiceNumber, result.CustomerName)
	return &result, nil
}

// Healthz checks if the extraction service is healthy.
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
