package file_store

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// Size limit of stores created without an explicit one.
	MaxPictureBytes = 30 << 20
	maxBaseNameLen  = 100
	uniqueTagLen    = 8
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// PictureStore persists uploaded pictures and resolves them to public urls.
// Records keep the url returned by GetUrlFromKey, never the bare key.
type PictureStore interface {
	Store(ctx context.Context, fileName string, body io.Reader) (key string, err error)
	GetUrlFromKey(key string) string
	CleanUp()
}

// Upload is a picture received from a client.
type Upload struct {
	FileName string
	Body     io.Reader
}

// GenerateKey builds "<unix millis>-<sanitized base name>". Directory parts of
// the client supplied name are dropped.
func GenerateKey(fileName string, now time.Time) string {
	base := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	base = unsafeFileChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "picture"
	}
	if len(base) > maxBaseNameLen {
		base = base[len(base)-maxBaseNameLen:]
	}
	return fmt.Sprintf("%d-%s", now.UnixNano()/int64(time.Millisecond), base)
}

// uniqueKey inserts a random tag after the timestamp of a key built by
// GenerateKey, for when that key is already taken.
func uniqueKey(key string) string {
	i := strings.Index(key, "-")
	return key[:i+1] + uuid.New().String()[:uniqueTagLen] + key[i:]
}

func limitOrDefault(maxBytes int64) int64 {
	if maxBytes <= 0 {
		return MaxPictureBytes
	}
	return maxBytes
}
