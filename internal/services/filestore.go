package services

import (
  "bytes"
  "context"
  "errors"
  "fmt"
  "io"
  "os"
  "path/filepath"
  "strings"
  "time"

  "cloud.google.com/go/storage"
  "google.golang.org/api/option"

  "github.com/yungbote/venturecast-backend/internal/logger"
  "github.com/yungbote/venturecast-backend/internal/utils"
)

// FileStore holds the rendered artifact files. Keys are slash-separated
// relative paths ("models/<id>/financial-model.xlsx"). Exists is consulted at
// download time so paths recorded in the database are re-checked against the
// store, not trusted.
type FileStore interface {
  Save(ctx context.Context, key string, data []byte) error
  Open(ctx context.Context, key string) (io.ReadCloser, error)
  Exists(ctx context.Context, key string) (bool, error)
  Delete(ctx context.Context, key string) error
}

// NewFileStoreFromEnv selects the backend: local disk by default, GCS when
// FILE_STORE_BACKEND=gcs.
func NewFileStoreFromEnv(log *logger.Logger) (FileStore, error) {
  backend := strings.ToLower(utils.GetEnv("FILE_STORE_BACKEND", "local", log))
  switch backend {
  case "local":
    dir := utils.GetEnv("FILE_STORE_DIR", "./data/files", log)
    return NewLocalFileStore(log, dir)
  case "gcs":
    return NewGCSFileStore(log)
  default:
    return nil, fmt.Errorf("unknown FILE_STORE_BACKEND %q", backend)
  }
}

// ---- local disk ----

type localFileStore struct {
  log     *logger.Logger
  baseDir string
}

func NewLocalFileStore(log *logger.Logger, baseDir string) (FileStore, error) {
  if baseDir == "" {
    return nil, fmt.Errorf("baseDir required")
  }
  if err := os.MkdirAll(baseDir, 0o755); err != nil {
    return nil, fmt.Errorf("create file store dir: %w", err)
  }
  return &localFileStore{log: log.With("service", "LocalFileStore"), baseDir: baseDir}, nil
}

func (s *localFileStore) resolve(key string) (string, error) {
  clean := filepath.Clean(filepath.FromSlash(key))
  if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
    return "", fmt.Errorf("invalid file key %q", key)
  }
  return filepath.Join(s.baseDir, clean), nil
}

func (s *localFileStore) Save(ctx context.Context, key string, data []byte) error {
  path, err := s.resolve(key)
  if err != nil {
    return err
  }
  if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
    return fmt.Errorf("create dir for %s: %w", key, err)
  }
  if err := os.WriteFile(path, data, 0o644); err != nil {
    return fmt.Errorf("write %s: %w", key, err)
  }
  return nil
}

func (s *localFileStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
  path, err := s.resolve(key)
  if err != nil {
    return nil, err
  }
  f, err := os.Open(path)
  if errors.Is(err, os.ErrNotExist) {
    return nil, ErrFileMissing
  }
  if err != nil {
    return nil, err
  }
  return f, nil
}

func (s *localFileStore) Exists(ctx context.Context, key string) (bool, error) {
  path, err := s.resolve(key)
  if err != nil {
    return false, err
  }
  _, err = os.Stat(path)
  if errors.Is(err, os.ErrNotExist) {
    return false, nil
  }
  if err != nil {
    return false, err
  }
  return true, nil
}

func (s *localFileStore) Delete(ctx context.Context, key string) error {
  path, err := s.resolve(key)
  if err != nil {
    return err
  }
  err = os.Remove(path)
  if errors.Is(err, os.ErrNotExist) {
    return nil
  }
  return err
}

// ---- GCS ----

type gcsFileStore struct {
  log           *logger.Logger
  storageClient *storage.Client
  bucketName    string
}

func NewGCSFileStore(log *logger.Logger) (FileStore, error) {
  storeLog := log.With("service", "GCSFileStore")
  bucket := os.Getenv("GCS_BUCKET_NAME")
  if bucket == "" {
    return nil, fmt.Errorf("missing env var GCS_BUCKET_NAME")
  }
  saPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON")

  ctx := context.Background()
  var client *storage.Client
  var err error
  if saPath != "" {
    client, err = storage.NewClient(ctx, option.WithCredentialsFile(saPath), option.WithScopes(storage.ScopeReadWrite))
  } else {
    client, err = storage.NewClient(ctx, option.WithScopes(storage.ScopeReadWrite))
  }
  if err != nil {
    return nil, fmt.Errorf("failed to create storage client: %w", err)
  }
  return &gcsFileStore{log: storeLog, storageClient: client, bucketName: bucket}, nil
}

func (s *gcsFileStore) Save(ctx context.Context, key string, data []byte) error {
  ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
  defer cancel()
  w := s.storageClient.Bucket(s.bucketName).Object(key).NewWriter(ctx)
  if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
    _ = w.Close()
    return fmt.Errorf("failed to write data to GCS: %w", err)
  }
  if err := w.Close(); err != nil {
    return fmt.Errorf("failed to close GCS writer: %w", err)
  }
  return nil
}

func (s *gcsFileStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
  r, err := s.storageClient.Bucket(s.bucketName).Object(key).NewReader(ctx)
  if errors.Is(err, storage.ErrObjectNotExist) {
    return nil, ErrFileMissing
  }
  if err != nil {
    return nil, fmt.Errorf("failed to open GCS object %q: %w", key, err)
  }
  return r, nil
}

func (s *gcsFileStore) Exists(ctx context.Context, key string) (bool, error) {
  ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
  defer cancel()
  _, err := s.storageClient.Bucket(s.bucketName).Object(key).Attrs(ctx)
  if errors.Is(err, storage.ErrObjectNotExist) {
    return false, nil
  }
  if err != nil {
    return false, err
  }
  return true, nil
}

func (s *gcsFileStore) Delete(ctx context.Context, key string) error {
  ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
  defer cancel()
  err := s.storageClient.Bucket(s.bucketName).Object(key).Delete(ctx)
  if errors.Is(err, storage.ErrObjectNotExist) {
    return nil
  }
  if err != nil {
    return fmt.Errorf("failed to delete GCS object %q: %w", key, err)
  }
  return nil
}
