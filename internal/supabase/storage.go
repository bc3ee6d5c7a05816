package supabase

import (
	"bytes"
	"fmt"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewStorageClient(supabaseURL, serviceRoleKey, bucket string) (*StorageClient, error) {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil)

	return &StorageClient{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// UploadImage writes data at path with the given content type and returns the
// public URL of the object.
func (s *StorageClient) UploadImage(path string, data []byte, contentType string) (string, error) {
	upsert := true
	_, err := s.client.UploadFile(s.bucket, path, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", path, err)
	}

	return s.PublicURL(path), nil
}

func (s *StorageClient) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, path)
}

// ListObjects returns the full paths of every object under prefix. Supabase
// storage lists one folder per call, so this walks the prefix and descends
// one level into each folder entry (entries without an id are folders). The
// sessions/<id>/<file> layout never nests deeper than that.
func (s *StorageClient) ListObjects(prefix string) ([]string, error) {
	root := strings.TrimSuffix(prefix, "/")

	entries, err := s.client.ListFiles(s.bucket, root, storage.FileSearchOptions{
		Limit: 1000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", root, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.Id != "" {
			paths = append(paths, root+"/"+entry.Name)
			continue
		}

		folder := root + "/" + entry.Name
		children, err := s.client.ListFiles(s.bucket, folder, storage.FileSearchOptions{
			Limit: 1000,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", folder, err)
		}
		for _, child := range children {
			paths = append(paths, folder+"/"+child.Name)
		}
	}

	return paths, nil
}
