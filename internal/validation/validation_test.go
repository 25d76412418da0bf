package validation

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/calldesk/internal/model"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("alice@example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("alice"))
	assert.Error(t, ValidateEmail("Alice <alice@example.com>"))
	assert.Error(t, ValidateEmail(strings.Repeat("a", 250)+"@x.io"))

	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("x"))
	assert.NoError(t, ValidatePassword(strings.Repeat("a", 72)))
	assert.Error(t, ValidatePassword(""))
	assert.Error(t, ValidatePassword(strings.Repeat("a", 73)))
}

func TestValidateNames(t *testing.T) {
	assert.NoError(t, ValidateName("Olga"))
	assert.Error(t, ValidateName("   "))
	assert.Error(t, ValidateName(strings.Repeat("n", 101)))

	assert.NoError(t, ValidateUsername("alice"))
	assert.Error(t, ValidateUsername(""))
	assert.Error(t, ValidateUsername(strings.Repeat("u", 51)))
}

func TestValidateAttachment(t *testing.T) {
	assert.Error(t, ValidateAttachment(nil))
	assert.NoError(t, ValidateAttachment(&multipart.FileHeader{Size: model.MaxAttachmentSize}))
	assert.ErrorIs(t, ValidateAttachment(&multipart.FileHeader{Size: model.MaxAttachmentSize + 1}), ErrFileTooLarge)
}

func TestDetectMimeType(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="doc"`)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.7 rest"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&buf, mw.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	header := form.File["file"][0]
	file, err := header.Open()
	require.NoError(t, err)
	defer file.Close()

	mimeType, err := DetectMimeType(file, header)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", mimeType)

	header.Header.Set("Content-Type", "text/csv")
	mimeType, err = DetectMimeType(file, header)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", mimeType)
}
