package file_store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultAssetDir    = "public/assets"
	DefaultAssetPrefix = "/assets/"

	maxKeyAttempts = 3
)

// LocalFileStore writes pictures to a directory that the http server exposes
// under /assets.
type LocalFileStore struct {
	folderName string
	urlPrefix  string
	maxBytes   int64
	now        func() time.Time
}

// NewLocalFileStore rejects pictures above maxBytes, MaxPictureBytes if not
// positive.
func NewLocalFileStore(folderName string, maxBytes int64) (*LocalFileStore, error) {
	if folderName == "" {
		folderName = DefaultAssetDir
	}
	if err := os.MkdirAll(folderName, os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "fail to create asset folder")
	}
	return &LocalFileStore{
		folderName: folderName,
		urlPrefix:  DefaultAssetPrefix,
		maxBytes:   limitOrDefault(maxBytes),
		now:        time.Now,
	}, nil
}

func (s *LocalFileStore) FolderName() string {
	return s.folderName
}

func (s *LocalFileStore) Store(ctx context.Context, fileName string, body io.Reader) (string, error) {
	plain := GenerateKey(fileName, s.now())
	key := plain
	f, err := s.create(key)
	for attempt := 1; os.IsExist(err) && attempt < maxKeyAttempts; attempt++ {
		key = uniqueKey(plain)
		f, err = s.create(key)
	}
	if err != nil {
		return "", errors.Wrap(err, "fail to create picture file")
	}
	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(body, s.maxBytes+1))
	if err == nil && n > s.maxBytes {
		err = errors.New("picture exceeds size limit")
	}
	if err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return key, nil
}

func (s *LocalFileStore) create(key string) (*os.File, error) {
	return os.OpenFile(filepath.Join(s.folderName, key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
}

func (s *LocalFileStore) GetUrlFromKey(key string) string {
	return s.urlPrefix + key
}

// CleanUp is a no-op, uploaded pictures outlive the process.
func (s *LocalFileStore) CleanUp() {}
