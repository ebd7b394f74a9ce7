// Пакет предоставляет интерфейс и реализации файлового хранилища изображений
// подписей: локальное хранилище и Minio.
package filestorage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	UploadTries = 3
)

var ErrNotFound = errors.New("file not found")

type Metadata struct {
	DocId   string
	BlockId string
}

type FileInfo struct {
	Name        string
	Size        int64
	ContentType string
	CreatedAt   time.Time
}

func (m Metadata) GetMap() map[string]string {
	meta := make(map[string]string)
	if m.DocId != "" {
		meta["docId"] = m.DocId
	}
	if m.BlockId != "" {
		meta["blockId"] = m.BlockId
	}
	return meta
}

type FileStorage interface {
	Save(ctx context.Context, data []byte, name uuid.UUID, contentType string, metadata *Metadata) error
	Load(ctx context.Context, name uuid.UUID) ([]byte, error)
	LoadReader(ctx context.Context, name uuid.UUID) (io.ReadCloser, error)
	Delete(ctx context.Context, name uuid.UUID) error
	Exist(ctx context.Context, name uuid.UUID) (bool, error)
	GetFileInfo(ctx context.Context, name uuid.UUID) (*FileInfo, error)
}

type LocalStorage struct {
	rootDir string
}

func NewLocalStorage(rootPath string) (FileStorage, error) {
	if err := os.MkdirAll(rootPath, 0755); err != nil {
		return nil, err
	}
	return &LocalStorage{rootPath}, nil
}

func (s *LocalStorage) path(name uuid.UUID) string {
	return filepath.Join(s.rootDir, name.String())
}

func (s *LocalStorage) Save(ctx context.Context, data []byte, name uuid.UUID, contentType string, metadata *Metadata) error {
	return os.WriteFile(s.path(name), data, 0644)
}

func (s *LocalStorage) Load(ctx context.Context, name uuid.UUID) ([]byte, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *LocalStorage) LoadReader(ctx context.Context, name uuid.UUID) (io.ReadCloser, error) {
	f, err := os.Open(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

func (s *LocalStorage) Delete(ctx context.Context, name uuid.UUID) error {
	err := os.Remove(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *LocalStorage) Exist(ctx context.Context, name uuid.UUID) (bool, error) {
	_, err := os.Stat(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func (s *LocalStorage) GetFileInfo(ctx context.Context, name uuid.UUID) (*FileInfo, error) {
	stat, err := os.Stat(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &FileInfo{
		Name:        name.String(),
		Size:        stat.Size(),
		ContentType: mime.TypeByExtension(filepath.Ext(stat.Name())),
		CreatedAt:   stat.ModTime(),
	}, nil
}

type MinioStorage struct {
	client     *minio.Client
	bucketName string
}

func NewMinioStorage(endpoint string, accessKeyID string, secretAccessKey string, useSSL bool, bucketName string) (FileStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(context.Background(), bucketName)
	if err != nil {
		return nil, err
	}

	if !exists {
		// Create bucket if not exist
		if err := client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	return &MinioStorage{client, bucketName}, nil
}

func (s *MinioStorage) Save(ctx context.Context, data []byte, name uuid.UUID, contentType string, metadata *Metadata) error {
	putOptions := minio.PutObjectOptions{ContentType: contentType}
	if metadata != nil {
		putOptions.UserTags = metadata.GetMap()
	}

	var err error
	for i := range UploadTries {
		_, err = s.client.PutObject(ctx,
			s.bucketName,
			name.String(),
			bytes.NewReader(data),
			int64(len(data)),
			putOptions,
		)
		if err == nil {
			return nil
		}
		resp := minio.ToErrorResponse(err)
		slog.Error("Upload file to minio", "name", name, "try", i+1, "code", resp.StatusCode, "msg", resp.Message)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second * time.Duration(i+1)):
		}
	}
	return err
}

func (s *MinioStorage) Load(ctx context.Context, name uuid.UUID) ([]byte, error) {
	obj, err := s.LoadReader(ctx, name)
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil && minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *MinioStorage) LoadReader(ctx context.Context, name uuid.UUID) (io.ReadCloser, error) {
	return s.client.GetObject(ctx,
		s.bucketName,
		name.String(),
		minio.GetObjectOptions{},
	)
}

func (s *MinioStorage) Delete(ctx context.Context, name uuid.UUID) error {
	return s.client.RemoveObject(
		ctx,
		s.bucketName,
		name.String(),
		minio.RemoveObjectOptions{},
	)
}

func (s *MinioStorage) Exist(ctx context.Context, name uuid.UUID) (bool, error) {
	_, err := s.client.StatObject(
		ctx,
		s.bucketName,
		name.String(),
		minio.StatObjectOptions{},
	)
	if err != nil {
		errResponse := minio.ToErrorResponse(err)
		if errResponse.Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *MinioStorage) GetFileInfo(ctx context.Context, name uuid.UUID) (*FileInfo, error) {
	stat, err := s.client.StatObject(ctx, s.bucketName, name.String(), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &FileInfo{
		Name:        name.String(),
		Size:        stat.Size,
		ContentType: stat.ContentType,
		CreatedAt:   stat.LastModified,
	}, nil
}
