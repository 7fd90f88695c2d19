package file_store

import (
	"context"
	"io"
	"time"

	Logger "github.com/Luismorlan/socialmux/utils/log"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

const (
	DefaultS3Region = "us-west-1"
)

type S3FileStore struct {
	bucket    string
	urlPrefix string
	uploader  *s3manager.Uploader
	maxBytes  int64
	now       func() time.Time
}

// NewS3FileStore uploads into bucket, urls are built as urlPrefix + key.
func NewS3FileStore(region, bucket, urlPrefix string, maxBytes int64) (*S3FileStore, error) {
	if region == "" {
		region = DefaultS3Region
	}
	// AWS client session
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}
	if urlPrefix == "" {
		urlPrefix = "https://" + bucket + ".s3." + region + ".amazonaws.com/"
	}

	return &S3FileStore{
		bucket:    bucket,
		urlPrefix: urlPrefix,
		uploader:  s3manager.NewUploader(sess),
		maxBytes:  limitOrDefault(maxBytes),
		now:       time.Now,
	}, nil
}

func (s *S3FileStore) Store(ctx context.Context, fileName string, body io.Reader) (string, error) {
	// s3 keys are not created exclusively, always tag them
	key := uniqueKey(GenerateKey(fileName, s.now()))
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		ACL:    aws.String("public-read"),
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   io.LimitReader(body, s.maxBytes),
	})
	if err != nil {
		Logger.Log.Warn("fail to upload picture to s3, key: ", key, " err: ", err)
		return "", err
	}
	return key, nil
}

func (s *S3FileStore) GetUrlFromKey(key string) string {
	return s.urlPrefix + key
}

func (s *S3FileStore) CleanUp() {
	// do nothing for s3
}
