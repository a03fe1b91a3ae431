package artifact

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/wzf2c/automl_go_server/config"
)

// OSSStore 阿里云 OSS artifact 存储，命名空间为对象 key 前缀
type OSSStore struct {
	bucket     *oss.Bucket
	bucketName string
	keyPrefix  string
}

func NewOSSStore(cfg *config.OSSConfig) (*OSSStore, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &OSSStore{
		bucket:     bucket,
		bucketName: cfg.BucketName,
		keyPrefix:  cfg.KeyPrefix,
	}, nil
}

func (s *OSSStore) Root() string {
	return fmt.Sprintf("oss://%s/%s", s.bucketName, s.keyPrefix)
}

func (s *OSSStore) RunNamespace(experimentID int64, runID string) string {
	return path.Join(s.keyPrefix, strconv.FormatInt(experimentID, 10), runID, "artifacts")
}

func (s *OSSStore) LogArtifact(namespace, localPath, subpath string) error {
	if _, err := os.Stat(localPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("artifact source not found: %s: %w", localPath, os.ErrNotExist)
		}
		return fmt.Errorf("failed to stat artifact source: %w", err)
	}

	objectKey := path.Join(namespace, subpath, filepath.Base(localPath))
	if err := s.bucket.PutObjectFromFile(objectKey, localPath); err != nil {
		return fmt.Errorf("failed to upload artifact: %w", err)
	}
	return nil
}

func (s *OSSStore) GetArtifactURI(namespace, subpath string) string {
	return fmt.Sprintf("oss://%s/%s", s.bucketName, path.Join(namespace, subpath))
}
