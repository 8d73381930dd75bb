package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jpegHead = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
var pngHead = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 13}

func TestValidateImageBySniff(t *testing.T) {
	mime, err := ValidateImageBySniff("photo.jpg", jpegHead)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)

	mime, err = ValidateImageBySniff("photo.png", pngHead)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
}

func TestValidateImageBySniffRejectsExtension(t *testing.T) {
	_, err := ValidateImageBySniff("script.svg", []byte("<svg></svg>"))
	assert.Error(t, err)

	_, err = ValidateImageBySniff("document.pdf", []byte("%PDF-1.4"))
	assert.Error(t, err)
}

func TestValidateImageBySniffRejectsSpoofedContent(t *testing.T) {
	_, err := ValidateImageBySniff("photo.jpg", []byte("<!DOCTYPE html><html>"))
	assert.Error(t, err)
}

func TestValidateImageBySniffAllowsHeicByExtension(t *testing.T) {
	// HEIC headers come back as octet-stream from the sniffer.
	head := make([]byte, 16)
	mime, err := ValidateImageBySniff("photo.heic", head)
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", mime)
}
