package file

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/model"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/patient"
)

type mockObjects struct{ mock.Mock }

func (m *mockObjects) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	return m.Called(ctx, key, contentType, body, size).Error(0)
}

func (m *mockObjects) PresignDownload(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockObjects) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type mockPatients struct{ mock.Mock }

func (m *mockPatients) AttachFile(ctx context.Context, id uuid.UUID, kind, key string) (*model.Patient, error) {
	args := m.Called(ctx, id, kind, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Patient), args.Error(1)
}

func (m *mockPatients) DetachFile(ctx context.Context, id uuid.UUID, key string) (*model.Patient, error) {
	args := m.Called(ctx, id, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Patient), args.Error(1)
}

func fileHeader(t *testing.T, name, contentType, body string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}

func TestUpload(t *testing.T) {
	objects := &mockObjects{}
	patients := &mockPatients{}
	pid := uuid.New()
	prefix := "documents/" + pid.String() + "/"

	objects.On("Upload", mock.Anything, mock.MatchedBy(func(k string) bool {
		return strings.HasPrefix(k, prefix) && strings.HasSuffix(k, ".jpg")
	}), "image/jpeg", mock.Anything, int64(4)).Return(nil)
	patients.On("AttachFile", mock.Anything, pid, patient.KindRadiografia, mock.Anything).
		Return(&model.Patient{ID: pid}, nil)

	res, err := New(objects, patients).Upload(context.Background(), pid, patient.KindRadiografia,
		fileHeader(t, "RX.JPG", "image/jpeg", "data"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Key, prefix))
	assert.Equal(t, "RX.JPG", res.FileName)
	assert.Equal(t, patient.KindRadiografia, res.Kind)
	objects.AssertExpectations(t)
	patients.AssertExpectations(t)
}

func TestUpload_AttachFailureRemovesObject(t *testing.T) {
	objects := &mockObjects{}
	patients := &mockPatients{}
	pid := uuid.New()

	objects.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	objects.On("Delete", mock.Anything, mock.Anything).Return(nil)
	patients.On("AttachFile", mock.Anything, pid, patient.KindArchivo, mock.Anything).
		Return(nil, patient.ErrPatientNotFound)

	_, err := New(objects, patients).Upload(context.Background(), pid, "", fileHeader(t, "a.pdf", "application/pdf", "pdf"))
	assert.ErrorIs(t, err, patient.ErrPatientNotFound)
	objects.AssertCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUpload_RejectsUnknownKind(t *testing.T) {
	_, err := New(&mockObjects{}, &mockPatients{}).Upload(context.Background(), uuid.New(), "video",
		fileHeader(t, "a.mp4", "video/mp4", "x"))
	assert.ErrorIs(t, err, patient.ErrInvalidFileKind)
}

func TestGetDownloadURL_ChecksOwnership(t *testing.T) {
	objects := &mockObjects{}
	pid := uuid.New()
	key := "documents/" + pid.String() + "/x.pdf"
	objects.On("PresignDownload", mock.Anything, key).Return("https://s3/x.pdf?sig", nil)

	svc := New(objects, &mockPatients{})

	url, err := svc.GetDownloadURL(context.Background(), pid, key)
	require.NoError(t, err)
	assert.Equal(t, "https://s3/x.pdf?sig", url)

	_, err = svc.GetDownloadURL(context.Background(), uuid.New(), key)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestDelete(t *testing.T) {
	objects := &mockObjects{}
	patients := &mockPatients{}
	pid := uuid.New()
	key := "documents/" + pid.String() + "/x.pdf"
	missing := "documents/" + pid.String() + "/y.pdf"

	patients.On("DetachFile", mock.Anything, pid, key).Return(&model.Patient{ID: pid}, nil)
	patients.On("DetachFile", mock.Anything, pid, missing).Return(nil, patient.ErrFileNotFound)
	objects.On("Delete", mock.Anything, key).Return(errors.New("timeout"))

	svc := New(objects, patients)

	p, err := svc.Delete(context.Background(), pid, key)
	require.NoError(t, err)
	assert.Equal(t, pid, p.ID)

	_, err = svc.Delete(context.Background(), pid, missing)
	assert.ErrorIs(t, err, ErrFileNotFound)
	objects.AssertNotCalled(t, "Delete", mock.Anything, missing)
}
