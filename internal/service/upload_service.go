package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tenderdesk/api/internal/config"
	"tenderdesk/api/internal/ids"
	"tenderdesk/api/internal/models"
	"tenderdesk/api/internal/repository"
	"tenderdesk/api/internal/storage"
)

var (
	ErrEmptyFile           = errors.New("empty file")
	ErrFileTooLarge        = errors.New("file too large")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// Allowed document types for the dashboard file manager.
var allowedMimeTypes = map[string]struct{}{
	"application/pdf": {},
	"text/plain":      {},
	"text/csv":        {},
	"image/png":       {},
	"image/jpeg":      {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       {},
}

var officeMimeTypes = map[string]string{
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

type UploadInput struct {
	User   models.User
	File   multipart.File
	Header *multipart.FileHeader
}

type UploadService struct {
	documents *repository.DocumentRepository
	store     *storage.ObjectStore
	cfg       *config.AppConfig
	log       zerolog.Logger
}

func NewUploadService(documents *repository.DocumentRepository, store *storage.ObjectStore, cfg *config.AppConfig, log zerolog.Logger) *UploadService {
	return &UploadService{
		documents: documents,
		store:     store,
		cfg:       cfg,
		log:       log,
	}
}

// Upload stores a document in the object store and records its metadata.
// The content type is sniffed from the payload, not trusted from the
// client headers.
func (s *UploadService) Upload(ctx context.Context, input UploadInput) (models.Document, error) {
	if input.File == nil || input.Header == nil {
		return models.Document{}, errors.New("invalid file payload")
	}
	if input.Header.Size > s.cfg.Storage.MaxUploadBytes {
		return models.Document{}, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(input.File, s.cfg.Storage.MaxUploadBytes+1))
	if err != nil {
		return models.Document{}, fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return models.Document{}, ErrEmptyFile
	}
	if int64(len(data)) > s.cfg.Storage.MaxUploadBytes {
		return models.Document{}, ErrFileTooLarge
	}

	mimeType := http.DetectContentType(data)
	if i := strings.Index(mimeType, ";"); i > 0 {
		mimeType = mimeType[:i]
	}
	// Office documents sniff as zip containers; fall back to the extension
	// for those.
	if mimeType == "application/zip" || mimeType == "application/octet-stream" {
		if byExt, ok := officeMimeTypes[strings.ToLower(path.Ext(input.Header.Filename))]; ok {
			mimeType = byExt
		}
	}
	if _, ok := allowedMimeTypes[mimeType]; !ok {
		return models.Document{}, fmt.Errorf("%w %s", ErrUnsupportedFileType, mimeType)
	}

	docID := ids.New()
	objectKey := s.buildObjectKey(input.User.ID, docID, input.Header.Filename)

	if err := s.store.Put(ctx, objectKey, bytes.NewReader(data), int64(len(data)), mimeType); err != nil {
		return models.Document{}, err
	}

	doc := models.Document{
		ID:           docID,
		UserID:       input.User.ID,
		OriginalName: input.Header.Filename,
		ObjectKey:    objectKey,
		MimeType:     mimeType,
		SizeBytes:    int64(len(data)),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.documents.Create(ctx, doc); err != nil {
		// Best effort: do not leave an orphan object behind.
		if rmErr := s.store.Remove(ctx, objectKey); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("object_key", objectKey).Msg("orphan object cleanup failed")
		}
		return models.Document{}, fmt.Errorf("save metadata: %w", err)
	}

	return doc, nil
}

// Delete removes the metadata row first, then the stored object.
func (s *UploadService) Delete(ctx context.Context, userID string, docID string) error {
	doc, err := s.documents.GetByID(ctx, userID, docID)
	if err != nil {
		return err
	}

	if err := s.documents.Delete(ctx, userID, docID); err != nil {
		return err
	}

	if err := s.store.Remove(ctx, doc.ObjectKey); err != nil {
		s.log.Warn().Err(err).Str("object_key", doc.ObjectKey).Msg("object removal failed")
	}

	return nil
}

// RemoveObject deletes a stored object by key, leaving metadata alone.
func (s *UploadService) RemoveObject(ctx context.Context, objectKey string) error {
	return s.store.Remove(ctx, objectKey)
}

func (s *UploadService) buildObjectKey(userID string, docID string, filename string) string {
	datePrefix := time.Now().UTC().Format("2006/01/02")
	return path.Join(userID, datePrefix, fmt.Sprintf("%s%s", docID, path.Ext(filename)))
}
