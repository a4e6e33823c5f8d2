package b2

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	rcloneb2 "github.com/rclone/rclone/backend/b2"
	"github.com/rclone/rclone/fs"
	"github.com/rclone/rclone/fs/config/configmap"
	"github.com/sirupsen/logrus"

	"github.com/floorguard/claims-backend/pkg/crypt"
	"github.com/floorguard/claims-backend/pkg/models"
	"github.com/floorguard/claims-backend/pkg/storage/model"
	"github.com/floorguard/claims-backend/pkg/storage/rclone"
)

var log = logrus.StandardLogger().WithField("package", "storage/b2")
var _ model.Storer = (*B2)(nil)
var _ model.Retriever = (*B2)(nil)

// B2 keeps photos in a Backblaze B2 bucket, optionally encrypted at rest.
type B2 struct {
	b2fs       fs.Fs
	bucketName string
	crypt      *crypt.Crypt
}

func (b *B2) Store(photo models.Photo) (err error) {
	ctx := context.Background()

	if b.crypt != nil {
		photo.Reader, err = b.crypt.Encrypt(photo.Reader)
		if err != nil {
			return err
		}
	}

	fileSize, err := photo.Reader.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	_, err = photo.Reader.Seek(0, io.SeekStart)
	if err != nil {
		return err
	}

	obj, err := b.b2fs.Put(ctx, photo.Reader, b.toStorageFile(photo, fileSize), &fs.RangeOption{Start: 0, End: fileSize})
	if err != nil {
		return err
	}
	log.Debugf("obj=%+v", obj)
	return nil
}

func fileName(sessionId string, sequenceId int) string {
	return fmt.Sprintf("%s/%d.jpg", sessionId, sequenceId)
}

func (b *B2) toStorageFile(photo models.Photo, fileSize int64) fs.ObjectInfo {
	return rclone.NewSourceFile(
		b.bucketName,
		fileName(photo.SessionId, photo.SequenceId),
		photo.CapturedAt,
		fileSize,
	)
}

func (b *B2) Retrieve(sessionId string, sequenceId int) (*models.Photo, error) {
	obj, err := b.b2fs.NewObject(context.Background(), fileName(sessionId, sequenceId))
	if err != nil {
		if errors.Is(err, fs.ErrorObjectNotFound) {
			return nil, os.ErrNotExist
		}
		return nil, err
	}

	var reader io.ReadSeeker
	objReader, err := obj.Open(context.Background())
	if err != nil {
		return nil, err
	}

	if b.crypt != nil {
		reader, err = b.crypt.Decrypt(objReader)
		if err != nil {
			return nil, err
		}
	} else {
		buffer := bytes.NewBuffer(nil)
		_, err = io.Copy(buffer, objReader)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buffer.Bytes())
	}

	return &models.Photo{
		Reader:     reader,
		SessionId:  sessionId,
		SequenceId: sequenceId,
		CapturedAt: obj.ModTime(context.Background()),
	}, nil
}

// ListFiles returns the photos stored for a session.
func (b *B2) ListFiles(sessionId string) ([]models.Photo, error) {
	ctx := context.Background()
	objects, err := b.b2fs.List(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	var files []models.Photo
	for _, obj := range objects {
		files = append(files, objToPhoto(obj))
	}
	return files, nil
}

func objToPhoto(obj fs.DirEntry) models.Photo {
	p := models.Photo{}
	name := path.Base(obj.Remote())
	p.SessionId = path.Dir(obj.Remote())
	name = strings.TrimSuffix(name, ".jpg")
	seqId, err := strconv.ParseInt(name, 10, 64)
	if err == nil {
		p.SequenceId = int(seqId)
	}
	return p
}

type Config struct {
	Account    string
	Key        string
	BucketName string

	// Encryption specific
	Passphrase string
}

func New(config Config) (*B2, error) {
	if config.Account == "" {
		return nil, fmt.Errorf("account is required")
	}
	if config.Key == "" {
		return nil, fmt.Errorf("key is required")
	}
	if config.BucketName == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	if len(config.Passphrase) == 0 {
		log.Warnf("no passphrase provided, encryption will be disabled")
	}

	b2fs, err := rcloneb2.NewFs(context.Background(),
		"b2",
		config.BucketName+"/",
		configmap.Simple{
			"account":    config.Account,
			"key":        config.Key,
			"chunk_size": "5M",
		},
	)
	if err != nil {
		return nil, err
	}

	b := &B2{
		bucketName: config.BucketName,
		b2fs:       b2fs,
	}
	if config.Passphrase != "" {
		b.crypt, err = crypt.New(config.Passphrase)
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}
