// Package media keeps uploaded images and the site logo behind a small
// key/value blob port with memory, filesystem and S3 drivers.
package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type Driver string

const (
	DriverMemory     Driver = "memory"
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
)

var ErrNotFound = errors.New("media: object not found")

// Object is a stored blob with its content type.
type Object struct {
	Key         string
	ContentType string
	Data        []byte
}

// Store is the blob port. Put overwrites an existing key.
type Store interface {
	Driver() Driver
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) (Object, error)
	// Delete reports whether the key existed.
	Delete(ctx context.Context, key string) (bool, error)
	// List returns keys under prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}

func checkKey(key string) error {
	switch {
	case strings.TrimSpace(key) == "":
		return errors.New("media: empty key")
	case strings.Contains(key, ".."):
		return fmt.Errorf("media: invalid key %q", key)
	case strings.HasPrefix(key, "/"):
		return fmt.Errorf("media: absolute key %q", key)
	}
	return nil
}
