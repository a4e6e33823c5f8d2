package extraction_test

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorguard/claims-backend/pkg/extraction"
)

const apiAddr = "http://invoice-api.lan:8000"

func newClient(t *testing.T) *extraction.Client {
	t.Helper()
	c, err := extraction.New(apiAddr)
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadScheme(t *testing.T) {
	_, err := extraction.New("ftp://invoice-api.lan")
	assert.Error(t, err)
}

func TestExtract(t *testing.T) {
	defer gock.Off()

	gock.New(apiAddr).
		Post("/extract").
		Reply(http.StatusOK).
		JSON(map[string]any{
			"data": []map[string]string{
				{
					"Customer Name":  "Alex Johnson",
					"Invoice Number": "INV-2023-8842",
					"Purchase Date":  "15/05/2023",
				},
			},
		})

	c := newClient(t)
	result, err := c.Extract(bytes.NewReader([]byte("%PDF-fake")), "invoice.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Alex Johnson", result.CustomerName)
	assert.Equal(t, "INV-2023-8842", result.InvoiceNumber)
	assert.Equal(t, "2023-05-15", result.PurchaseDate)
}

func TestExtractUnreadableDate(t *testing.T) {
	defer gock.Off()

	gock.New(apiAddr).
		Post("/extract").
		Reply(http.StatusOK).
		JSON(map[string]any{
			"data": []map[string]string{
				{
					"Customer Name":  "Alex Johnson",
					"Invoice Number": "INV-1",
					"Purchase Date":  "not a date",
				},
			},
		})

	c := newClient(t)
	result, err := c.Extract(bytes.NewReader([]byte("x")), "invoice.jpg")
	require.NoError(t, err)
	assert.Empty(t, result.PurchaseDate)
}

func TestExtractServerError(t *testing.T) {
	defer gock.Off()

	gock.New(apiAddr).
		Post("/extract").
		Reply(http.StatusInternalServerError)

	c := newClient(t)
	_, err := c.Extract(bytes.NewReader([]byte("x")), "invoice.jpg")
	assert.Error(t, err)
}

func TestExtractEmptyData(t *testing.T) {
	defer gock.Off()

	gock.New(apiAddr).
		Post("/extract").
		Reply(http.StatusOK).
		JSON(map[string]any{"data": []map[string]string{}})

	c := newClient(t)
	_, err := c.Extract(bytes.NewReader([]byte("x")), "invoice.jpg")
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	defer gock.Off()

	gock.New(apiAddr).
		Get("/healthz").
		Reply(http.StatusOK).
		BodyString(`{}`)

	c := newClient(t)
	healthy, err := c.Healthz()
	require.NoError(t, err)
	assert.True(t, healthy)
}
