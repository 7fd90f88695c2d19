package file_store

import (
	"context"
	"io"
	"io/ioutil"
	"sync"
	"time"
)

// FakeFileStore keeps uploads in memory, keyed the same way as real stores.
type FakeFileStore struct {
	m     sync.Mutex
	Files map[string][]byte
	// Prepended to keys by GetUrlFromKey.
	UrlPrefix string
}

func NewFakeFileStore() *FakeFileStore {
	return &FakeFileStore{Files: map[string][]byte{}}
}

func (s *FakeFileStore) Store(ctx context.Context, fileName string, body io.Reader) (string, error) {
	data, err := ioutil.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.m.Lock()
	defer s.m.Unlock()
	key := GenerateKey(fileName, time.Now())
	s.Files[key] = data
	return key, nil
}

func (s *FakeFileStore) GetUrlFromKey(key string) string {
	return s.UrlPrefix + key
}

func (s *FakeFileStore) CleanUp() {
	s.m.Lock()
	defer s.m.Unlock()
	s.Files = map[string][]byte{}
}
