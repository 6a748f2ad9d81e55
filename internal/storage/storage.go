// Package storage хранит загруженные файлы: локально на диске или в S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"mahattati/internal/apperrors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// FileStore: куда складываем байты. Save возвращает публичный URL файла.
type FileStore interface {
	Save(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Rule: ограничения на один тип загрузки.
type Rule struct {
	Prefix  string // каталог и префикс имени: "ads" -> ads/ad-...
	MaxSize int64
	Video   bool // разрешить видео помимо картинок
}

var imageExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

var videoExt = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
}

// Upload: сохранённый файл.
type Upload struct {
	URL  string
	Kind MediaKind
}

type Uploader struct {
	store FileStore
	now   func() time.Time
}

func NewUploader(store FileStore) *Uploader {
	return &Uploader{store: store, now: time.Now}
}

// Check проверяет расширение, реальный тип содержимого и размер.
// Расширение и сниффер должны указывать на один и тот же тип.
func Check(name string, data []byte, rule Rule) (MediaKind, string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	field := rule.Prefix
	if rule.MaxSize > 0 && int64(len(data)) > rule.MaxSize {
		return "", "", apperrors.Validation("File too large",
			apperrors.Field(field, fmt.Sprintf("file must be at most %d bytes", rule.MaxSize)))
	}

	detected := mimetype.Detect(data)
	want, ok := imageExt[ext]
	kind := MediaImage
	if !ok && rule.Video {
		want, ok = videoExt[ext]
		kind = MediaVideo
	}
	if !ok || !detected.Is(want) {
		allowed := "Only image files are allowed (jpeg, jpg, png, gif)"
		if rule.Video {
			allowed = "Only image or video files are allowed"
		}
		return "", "", apperrors.Validation(allowed, apperrors.Field(field, allowed))
	}
	return kind, want, nil
}

func (u *Uploader) Save(ctx context.Context, fh *multipart.FileHeader, rule Rule) (*Upload, error) {
	if rule.MaxSize > 0 && fh.Size > rule.MaxSize {
		return nil, apperrors.Validation("File too large",
			apperrors.Field(rule.Prefix, fmt.Sprintf("file must be at most %d bytes", rule.MaxSize)))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// читаем на байт больше лимита, чтобы поймать обман с Size
	limit := rule.MaxSize
	if limit <= 0 {
		limit = 50 << 20
	}
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}

	kind, contentType, err := Check(fh.Filename, data, rule)
	if err != nil {
		return nil, err
	}

	key := u.key(rule.Prefix, filepath.Ext(fh.Filename))
	url, err := u.store.Save(ctx, key, contentType, data)
	if err != nil {
		return nil, apperrors.Upstream("Failed to store file", err)
	}
	return &Upload{URL: url, Kind: kind}, nil
}

// SaveAll сохраняет все файлы или ни одного: при ошибке уже сохранённые удаляются.
func (u *Uploader) SaveAll(ctx context.Context, files []*multipart.FileHeader, rule Rule) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		up, err := u.Save(ctx, fh, rule)
		if err != nil {
			u.DeleteAll(ctx, urls)
			return nil, err
		}
		urls = append(urls, up.URL)
	}
	return urls, nil
}

func (u *Uploader) DeleteAll(ctx context.Context, urls []string) {
	for _, url := range urls {
		_ = u.store.Delete(ctx, url)
	}
}

func (u *Uploader) key(prefix, ext string) string {
	base := strings.TrimSuffix(prefix, "s")
	return fmt.Sprintf("%s/%s-%d-%s%s", prefix, base, u.now().UnixMilli(), uuid.NewString()[:8], strings.ToLower(ext))
}

var errForeignURL = errors.New("url does not belong to this store")
