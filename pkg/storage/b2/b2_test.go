package b2_test

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/floorguard/claims-backend/pkg/models"
	"github.com/floorguard/claims-backend/pkg/storage/b2"
)

func TestMain(m *testing.M) {
	logrus.StandardLogger().SetLevel(logrus.DebugLevel)
	os.Exit(m.Run())
}

var testEncryptionKey = "my key"

func newB2(t *testing.T, passphrase string) *b2.B2 {
	if os.Getenv("E2E_TEST") != "true" {
		t.Skip("skipping test; E2E_TEST is not set")
	}
	b2Storage, err := b2.New(b2.Config{
		Account:    os.Getenv("B2_ACCOUNT"),
		Key:        os.Getenv("B2_KEY"),
		BucketName: os.Getenv("B2_BUCKET_NAME"),
		Passphrase: passphrase,
	})
	if err != nil {
		t.Fatal(err)
	}
	return b2Storage
}

func TestB2_Store(t *testing.T) {
	b2Storage := newB2(t, "")

	err := b2Storage.Store(models.Photo{
		Reader:     bytes.NewReader([]byte("hello world")),
		SessionId:  "test",
		SequenceId: 1,
		CapturedAt: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestB2_StoreEncrypted(t *testing.T) {
	b2Storage := newB2(t, testEncryptionKey)

	err := b2Storage.Store(models.Photo{
		Reader:     bytes.NewReader([]byte("hello world")),
		SessionId:  "test-encryption",
		SequenceId: 1,
		CapturedAt: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestB2_Retrieve(t *testing.T) {
	b2Storage := newB2(t, "")

	p, err := b2Storage.Retrieve("test", 1)
	if err != nil {
		t.Fatal(err)
	}
	if p == nil {
		t.Fatal("photo is nil")
	}

	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(p.Reader)
	if err != nil {
		t.Fatal(err)
	}

	if buf.String() != "hello world" {
		t.Fatalf("expected 'hello world', got '%s'", buf.String())
	}
}

func TestB2_RetrieveEncrypted(t *testing.T) {
	b2Storage := newB2(t, testEncryptionKey)

	p, err := b2Storage.Retrieve("test-encryption", 1)
	if err != nil {
		t.Fatal(err)
	}
	if p == nil {
		t.Fatal("photo is nil")
	}

	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(p.Reader)
	if err != nil {
		t.Fatal(err)
	}

	if buf.String() != "hello world" {
		t.Fatalf("expected 'hello world', got '%s'", buf.String())
	}
}
