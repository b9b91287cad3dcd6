package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const maxMediaFiles = 4

var allowedMedia = map[string]struct{}{
	"jpg": {}, "png": {}, "gif": {}, "mp4": {}, "mov": {},
}

type MediaService interface {
	// Upload stores the files and returns their public URLs in order.
	Upload(ctx context.Context, userID int64, files []*multipart.FileHeader) ([]string, error)
	// Discard removes previously uploaded objects. Failures are logged.
	Discard(ctx context.Context, urls []string)
}

type mediaService struct {
	uploader  ObjectUploader
	publicURL string
	logger    *slog.Logger
}

// NewMediaService accepts a nil uploader when object storage is not configured.
func NewMediaService(uploader ObjectUploader, publicURL string, logger *slog.Logger) MediaService {
	return &mediaService{
		uploader:  uploader,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}
}

func (s *mediaService) Upload(ctx context.Context, userID int64, files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return []string{}, nil
	}
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: media storage is not configured", ErrMissingCredentials)
	}
	if len(files) > maxMediaFiles {
		return nil, fmt.Errorf("%w: at most %d files per post", ErrUnsupportedMedia, maxMediaFiles)
	}

	type pending struct {
		data []byte
		kind types.Type
	}
	checked := make([]pending, 0, len(files))
	for _, file := range files {
		data, err := readFile(file)
		if err != nil {
			return nil, err
		}
		kind, err := filetype.Match(data)
		if err != nil || kind == types.Unknown {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, file.Filename)
		}
		if _, ok := allowedMedia[kind.Extension]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, kind.Extension)
		}
		checked = append(checked, pending{data: data, kind: kind})
	}

	urls := make([]string, 0, len(checked))
	for _, p := range checked {
		id, err := gonanoid.New()
		if err != nil {
			return nil, fmt.Errorf("generate object key: %w", err)
		}
		key := fmt.Sprintf("posts/%d/%s.%s", userID, id, p.kind.Extension)
		if err := s.uploader.Upload(ctx, key, p.data, p.kind.MIME.Value); err != nil {
			s.Discard(ctx, urls)
			return nil, fmt.Errorf("upload %s: %w", key, err)
		}
		s.logger.Info("media uploaded", "user_id", userID, "key", key)
		urls = append(urls, s.publicURL+"/"+key)
	}
	return urls, nil
}

func (s *mediaService) Discard(ctx context.Context, urls []string) {
	if s.uploader == nil {
		return
	}
	for _, u := range urls {
		key := strings.TrimPrefix(strings.TrimPrefix(u, s.publicURL), "/")
		if err := s.uploader.Delete(ctx, key); err != nil {
			s.logger.Warn("media cleanup failed", "key", key, "error", err)
			continue
		}
		s.logger.Info("media discarded", "key", key)
	}
}

func readFile(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file.Filename, err)
	}
	return data, nil
}
