package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"plan-dashboard/internal/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	libraryPrefix = "library/"
	metaSuffix    = ".json"
	dataSuffix    = ".bin"

	logoKey = "settings/custom-logo-src"
)

var (
	ErrNotImage     = errors.New("media: not an image")
	ErrTooLarge     = errors.New("media: file too large")
	ErrNameRequired = errors.New("media: name is required")
)

// Library is the admin image library. Each item is two objects: a JSON
// record and the raw bytes.
type Library struct {
	store    Store
	maxBytes int
	now      func() time.Time
}

func NewLibrary(store Store, maxBytes int) *Library {
	return &Library{store: store, maxBytes: maxBytes, now: time.Now}
}

func (l *Library) Store() Store { return l.store }

// MaxBytes is the upload size limit; 0 means unlimited.
func (l *Library) MaxBytes() int { return l.maxBytes }

func (l *Library) Add(ctx context.Context, name string, data []byte) (models.MediaItem, error) {
	if l.maxBytes > 0 && len(data) > l.maxBytes {
		return models.MediaItem{}, ErrTooLarge
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return models.MediaItem{}, fmt.Errorf("%w: %s", ErrNotImage, mt.String())
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "image" + mt.Extension()
	}

	item := models.MediaItem{
		ID:        uuid.NewString(),
		Name:      name,
		Type:      mt.String(),
		Size:      len(data),
		CreatedAt: l.now().UTC(),
	}
	if err := l.store.Put(ctx, libraryPrefix+item.ID+dataSuffix, data, item.Type); err != nil {
		return models.MediaItem{}, err
	}
	if err := l.putMeta(ctx, item); err != nil {
		return models.MediaItem{}, err
	}
	item.Data = data
	return item, nil
}

func (l *Library) putMeta(ctx context.Context, item models.MediaItem) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return l.store.Put(ctx, libraryPrefix+item.ID+metaSuffix, raw, "application/json")
}

func (l *Library) meta(ctx context.Context, id string) (models.MediaItem, error) {
	obj, err := l.store.Get(ctx, libraryPrefix+id+metaSuffix)
	if err != nil {
		return models.MediaItem{}, err
	}
	var item models.MediaItem
	if err := json.Unmarshal(obj.Data, &item); err != nil {
		return models.MediaItem{}, fmt.Errorf("media: decode %s: %w", id, err)
	}
	return item, nil
}

// List returns item records without their bytes, newest first.
func (l *Library) List(ctx context.Context) ([]models.MediaItem, error) {
	keys, err := l.store.List(ctx, libraryPrefix)
	if err != nil {
		return nil, err
	}
	var items []models.MediaItem
	for _, k := range keys {
		if !strings.HasSuffix(k, metaSuffix) {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(k, libraryPrefix), metaSuffix)
		item, err := l.meta(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

// Get returns the item with its bytes.
func (l *Library) Get(ctx context.Context, id string) (models.MediaItem, error) {
	item, err := l.meta(ctx, id)
	if err != nil {
		return models.MediaItem{}, err
	}
	obj, err := l.store.Get(ctx, libraryPrefix+id+dataSuffix)
	if err != nil {
		return models.MediaItem{}, err
	}
	item.Data = obj.Data
	return item, nil
}

func (l *Library) Rename(ctx context.Context, id, name string) (models.MediaItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.MediaItem{}, ErrNameRequired
	}
	item, err := l.meta(ctx, id)
	if err != nil {
		return models.MediaItem{}, err
	}
	item.Name = name
	if err := l.putMeta(ctx, item); err != nil {
		return models.MediaItem{}, err
	}
	return item, nil
}

// Delete removes the item and clears the logo if it pointed at it.
func (l *Library) Delete(ctx context.Context, id string) error {
	found, err := l.store.Delete(ctx, libraryPrefix+id+metaSuffix)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	if _, err := l.store.Delete(ctx, libraryPrefix+id+dataSuffix); err != nil {
		return err
	}
	if current, err := l.logoID(ctx); err == nil && current == id {
		return l.ResetLogo(ctx)
	}
	return nil
}

func (l *Library) logoID(ctx context.Context) (string, error) {
	obj, err := l.store.Get(ctx, logoKey)
	if err != nil {
		return "", err
	}
	return string(obj.Data), nil
}

// Logo returns the custom logo item. ok is false when the default logo is
// in effect.
func (l *Library) Logo(ctx context.Context) (item models.MediaItem, ok bool, err error) {
	id, err := l.logoID(ctx)
	if errors.Is(err, ErrNotFound) {
		return models.MediaItem{}, false, nil
	}
	if err != nil {
		return models.MediaItem{}, false, err
	}
	item, err = l.meta(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return models.MediaItem{}, false, nil
	}
	if err != nil {
		return models.MediaItem{}, false, err
	}
	return item, true, nil
}

func (l *Library) SetLogo(ctx context.Context, id string) error {
	if _, err := l.meta(ctx, id); err != nil {
		return err
	}
	return l.store.Put(ctx, logoKey, []byte(id), "text/plain")
}

func (l *Library) ResetLogo(ctx context.Context) error {
	_, err := l.store.Delete(ctx, logoKey)
	return err
}
