package caroundtripper

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"os"
)

var _ http.RoundTripper = (*Client)(nil)

type Client struct {
	transport *http.Transport
}

func (c Client) RoundTrip(request *http.Request) (*http.Response, error) {
	return c.transport.RoundTrip(request)
}

// New creates a RoundTripper that only trusts the CA at caPath. Used for
// self-hosted detection/extraction endpoints behind a private CA.
func New(caPath string) (*Client, error) {
	caFile, err := os.Open(caPath)
	if err != nil {
		return nil, err
	}
	defer caFile.Close()

	caBytes, err := io.ReadAll(caFile)
	if err != nil {
		return nil, err
	}

	block, rest := pem.Decode(caBytes)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, fmt.Errorf("expected a single CERTIFICATE pem block")
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("unexpected trailing data after the certificate")
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("unable to parse certificate: %v", err)
	}

	certPool := x509.NewCertPool()
	certPool.AddCert(cert)

	return &Client{
		transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				RootCAs: certPool,
			},
			ForceAttemptHTTP2: true,
		},
	}, nil
}
