package fs

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/sirupsen/logrus"

	"github.com/floorguard/claims-backend/pkg/models"
	"github.com/floorguard/claims-backend/pkg/storage/model"
)

var log = logrus.StandardLogger().WithField("package", "storage/fs")

// Fs keeps photos on the local filesystem, one directory per session.
type Fs struct {
	dir string
}

func (fs *Fs) Retrieve(sessionId string, sequenceId int) (*models.Photo, error) {
	f, err := os.Open(path.Join(fs.dir, sessionId, fmt.Sprintf("%d.jpg", sequenceId)))
	if err != nil {
		return nil, err
	}
	return &models.Photo{
		SessionId:  sessionId,
		SequenceId: sequenceId,
		Reader:     f,
	}, nil
}

func (fs *Fs) Store(photo models.Photo) error {
	_, err := os.Stat(path.Join(fs.dir, photo.SessionId))
	if os.IsNotExist(err) {
		err = os.MkdirAll(path.Join(fs.dir, photo.SessionId), 0755)
		if err != nil {
			return err
		}
	}

	f, err := os.Create(path.Join(fs.dir, photo.SessionId, fmt.Sprintf("%d.jpg", photo.SequenceId)))
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, photo.Reader); err != nil {
		return err
	}
	if _, err := photo.Reader.Seek(0, io.SeekStart); err != nil {
		return err
	}
	log.Debugf("created file %s", f.Name())
	return nil
}

var _ model.Storer = (*Fs)(nil)
var _ model.Retriever = (*Fs)(nil)

func New(dir string) (*Fs, error) {
	_, err := os.Stat(dir)
	if os.IsNotExist(err) {
		err = os.MkdirAll(dir, 0755)
		if err != nil {
			return nil, fmt.Errorf("unable to create storage directory: %v", err)
		}
	}

	return &Fs{dir: dir}, nil
}
