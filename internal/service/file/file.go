package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/patient"
	s3pkg "github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/s3"
)

// MaxUploadBytes bounds a single document upload.
const MaxUploadBytes = 20 << 20

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type UploadResult struct {
	Key      string         `json:"key"`
	FileName string         `json:"file_name"`
	Size     int64          `json:"size"`
	MimeType string         `json:"mime_type"`
	Kind     string         `json:"kind"`
	Patient  *model.Patient `json:"patient"`
}

// ---------------------------------------------------------------------------
// Dependencies
// ---------------------------------------------------------------------------

type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	PresignDownload(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// PatientFiles keeps the key lists on the patient record.
type PatientFiles interface {
	AttachFile(ctx context.Context, id uuid.UUID, kind, key string) (*model.Patient, error)
	DetachFile(ctx context.Context, id uuid.UUID, key string) (*model.Patient, error)
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Upload(ctx context.Context, patientID uuid.UUID, kind string, fh *multipart.FileHeader) (*UploadResult, error)
	GetDownloadURL(ctx context.Context, patientID uuid.UUID, key string) (string, error)
	Delete(ctx context.Context, patientID uuid.UUID, key string) (*model.Patient, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type fileService struct {
	s3       ObjectStore
	patients PatientFiles
}

func New(s3Client ObjectStore, patients PatientFiles) Service {
	return &fileService{s3: s3Client, patients: patients}
}

func (s *fileService) Upload(ctx context.Context, patientID uuid.UUID, kind string, fh *multipart.FileHeader) (*UploadResult, error) {
	if kind == "" {
		kind = patient.KindArchivo
	}
	if kind != patient.KindArchivo && kind != patient.KindRadiografia {
		return nil, patient.ErrInvalidFileKind
	}
	if fh.Size <= 0 {
		return nil, ErrEmptyFile
	}
	if fh.Size > MaxUploadBytes {
		return nil, ErrFileTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	key := s3pkg.DocumentKey(patientID, filepath.Ext(fh.Filename))
	mime := fh.Header.Get("Content-Type")
	if mime == "" {
		mime = "application/octet-stream"
	}

	if err := s.s3.Upload(ctx, key, mime, src, fh.Size); err != nil {
		return nil, fmt.Errorf("s3 upload: %w", err)
	}

	p, err := s.patients.AttachFile(ctx, patientID, kind, key)
	if err != nil {
		s.removeObject(ctx, key)
		return nil, err
	}

	return &UploadResult{
		Key:      key,
		FileName: fh.Filename,
		Size:     fh.Size,
		MimeType: mime,
		Kind:     kind,
		Patient:  p,
	}, nil
}

func (s *fileService) GetDownloadURL(ctx context.Context, patientID uuid.UUID, key string) (string, error) {
	if !s3pkg.OwnedBy(key, patientID) {
		return "", ErrAccessDenied
	}
	url, err := s.s3.PresignDownload(ctx, key)
	if err != nil {
		return "", fmt.Errorf("presign: %w", err)
	}
	return url, nil
}

// Delete drops the key from the patient record first; the object itself is
// removed best effort.
func (s *fileService) Delete(ctx context.Context, patientID uuid.UUID, key string) (*model.Patient, error) {
	if !s3pkg.OwnedBy(key, patientID) {
		return nil, ErrAccessDenied
	}
	p, err := s.patients.DetachFile(ctx, patientID, key)
	if err != nil {
		if errors.Is(err, patient.ErrFileNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	s.removeObject(ctx, key)
	return p, nil
}

func (s *fileService) removeObject(ctx context.Context, key string) {
	if err := s.s3.Delete(ctx, key); err != nil {
		slog.WarnContext(ctx, "s3 delete failed", "key", key, "error", err)
	}
}
