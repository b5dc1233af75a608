// Package blobstore keeps proof of delivery images on the server's disk.
package blobstore

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/pkg/errs"

	"github.com/gabriel-vasile/mimetype"
)

const DefaultMaxImageBytes = 10 << 20

// DiskStorage implements ports.BlobStorage under a root directory. Returned
// paths are relative to the root and always use forward slashes.
type DiskStorage struct {
	root     string
	maxBytes int64
}

func NewDiskStorage(root string, maxBytes int64) (*DiskStorage, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errs.NewValueIsRequiredError("root")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &DiskStorage{root: root, maxBytes: maxBytes}, nil
}

// Put sniffs data and stores it only when it is an image. The file is written
// to a temporary name first and renamed into place.
func (s *DiskStorage) Put(ctx context.Context, deliveryID kernel.UUID, data []byte, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := deliveryID.Validate(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errs.NewValueIsRequiredError("image")
	}
	if int64(len(data)) > s.maxBytes {
		return "", errs.NewValueIsOutOfRangeError("image size", len(data), 1, s.maxBytes)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", errs.NewValueIsInvalidErrorWithCause("image", fmt.Errorf("content type %s is not an image", mt.String()))
	}

	ext := mt.Extension()
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(fileName))
	}

	rel := path.Join(deliveryID.String(), kernel.NewUUID().String()+ext)
	target := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return "", err
	}
	if err = tmp.Close(); err != nil {
		return "", err
	}
	if err = os.Rename(tmp.Name(), target); err != nil {
		return "", err
	}

	return rel, nil
}

// Delete removes a blob returned by Put. A missing blob is not an error.
func (s *DiskStorage) Delete(ctx context.Context, rel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err = os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Open returns the blob content and its sniffed content type.
func (s *DiskStorage) Open(ctx context.Context, rel string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	target, err := s.resolve(rel)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(target)
	if os.IsNotExist(err) {
		return nil, "", errs.NewObjectNotFoundError("proof image", rel)
	}
	if err != nil {
		return nil, "", err
	}
	return data, mimetype.Detect(data).String(), nil
}

func (s *DiskStorage) resolve(rel string) (string, error) {
	local := filepath.FromSlash(rel)
	if rel == "" || !filepath.IsLocal(local) {
		return "", errs.NewValueIsInvalidErrorWithCause("path", fmt.Errorf("%q is outside the blob root", rel))
	}
	return filepath.Join(s.root, local), nil
}
