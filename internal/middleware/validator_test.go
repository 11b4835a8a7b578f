package middleware_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aayan-01/CLOT/internal/middleware"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n")
	jpegHeader = []byte("\xff\xd8\xff\xe0")
)

func pngBytes(size int) []byte {
	data := make([]byte, size)
	copy(data, pngHeader)
	return data
}

func TestValidateImageCount(t *testing.T) {
	require.Error(t, middleware.ValidateImageCount(0))
	require.NoError(t, middleware.ValidateImageCount(1))
	require.NoError(t, middleware.ValidateImageCount(3))
	require.Error(t, middleware.ValidateImageCount(4))
}

func TestValidateImageAcceptsJPEGAndPNG(t *testing.T) {
	ct, err := middleware.ValidateImage("front.png", pngBytes(512))
	require.NoError(t, err)
	require.Equal(t, "image/png", ct)

	jpeg := make([]byte, 512)
	copy(jpeg, jpegHeader)
	ct, err = middleware.ValidateImage("front.jpg", jpeg)
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", ct)
}

func TestValidateImageRejectsOtherTypes(t *testing.T) {
	_, err := middleware.ValidateImage("notes.txt", []byte("just some text, not an image"))
	require.Error(t, err)

	var verr *middleware.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Contains(t, verr.Msg, "unsupported image type")
}

func TestValidateImageRejectsEmptyAndOversize(t *testing.T) {
	_, err := middleware.ValidateImage("empty.png", nil)
	require.Error(t, err)

	_, err = middleware.ValidateImage("huge.png", pngBytes(middleware.MaxImageBytes+1))
	require.Error(t, err)
	require.Contains(t, err.Error(), "8MB")

	_, err = middleware.ValidateImage("max.png", pngBytes(middleware.MaxImageBytes))
	require.NoError(t, err)
}

func TestValidateSessionID(t *testing.T) {
	require.NoError(t, middleware.ValidateSessionID("0f8fad5b-d9cb-469f-a165-70867728950e"))
	require.NoError(t, middleware.ValidateSessionID("0F8FAD5B-D9CB-469F-A165-70867728950E"))

	require.Error(t, middleware.ValidateSessionID(""))
	require.Error(t, middleware.ValidateSessionID("not-a-uuid"))
	require.Error(t, middleware.ValidateSessionID("0f8fad5b-d9cb-469f-a165-70867728950e-extra"))
}

func TestValidateMessage(t *testing.T) {
	require.NoError(t, middleware.ValidateMessage("is this jacket worth listing?"))

	require.Error(t, middleware.ValidateMessage(""))
	require.Error(t, middleware.ValidateMessage("   \n\t"))
	require.Error(t, middleware.ValidateMessage(strings.Repeat("a", middleware.MaxMessageLen+1)))
}

func TestSanitizeString(t *testing.T) {
	require.Equal(t, "hello world", middleware.SanitizeString("  hello\x00 world\x01  "))
	require.Equal(t, "line1\nline2", middleware.SanitizeString("line1\nline2"))
}
