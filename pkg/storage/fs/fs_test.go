package fs_test

import (
	"bytes"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorguard/claims-backend/pkg/models"
	"github.com/floorguard/claims-backend/pkg/storage/fs"
)

func TestStoreRetrieve(t *testing.T) {
	storage, err := fs.New(t.TempDir())
	require.NoError(t, err)

	err = storage.Store(models.Photo{
		Reader:     bytes.NewReader([]byte("jpeg bytes")),
		SessionId:  "session-1",
		SequenceId: 1,
		CapturedAt: time.Now(),
	})
	require.NoError(t, err)

	photo, err := storage.Retrieve("session-1", 1)
	require.NoError(t, err)
	b, err := io.ReadAll(photo.Reader)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(b))
}

func TestRetrieveMissing(t *testing.T) {
	storage, err := fs.New(t.TempDir())
	require.NoError(t, err)

	_, err = storage.Retrieve("nope", 1)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
