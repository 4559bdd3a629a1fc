package storage

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escritoriodigital/api/internal/util"
)

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	pdfHeader = []byte("%PDF-1.7\n1 0 obj\n<<>>\nendobj\n")
)

func TestImagePolicy(t *testing.T) {
	got, err := PoliticaImagem.Check(File{Name: "../foto.png", Body: pngHeader})
	require.NoError(t, err)
	assert.Equal(t, "foto.png", got.Name)
	assert.Equal(t, "image/png", got.ContentType)

	_, err = PoliticaImagem.Check(File{Name: "contrato.pdf", Body: pdfHeader})
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrValidation))
}

func TestImagePolicySizeCeiling(t *testing.T) {
	big := append(append([]byte(nil), pngHeader...), bytes.Repeat([]byte{0}, 5<<20)...)
	_, err := PoliticaImagem.Check(File{Name: "grande.png", Body: big})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "5MB")
}

func TestDocumentPolicy(t *testing.T) {
	got, err := PoliticaDocumento.Check(File{Name: "peticao.pdf", Body: pdfHeader})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", got.ContentType)

	_, err = PoliticaDocumento.Check(File{Name: "script.sh", Body: []byte("#!/bin/sh\necho oi\n")})
	require.Error(t, err)

	_, err = PoliticaDocumento.Check(File{Name: "vazio.pdf"})
	require.Error(t, err)
}

func TestBlobUploader(t *testing.T) {
	u := NewBlobUploader()
	res, err := u.Upload(context.Background(), UploadInput{Key: "usuarios/1/foto", Name: "foto.png", Body: pngHeader, ContentType: "image/png"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.URL, "blob:usuarios/1/foto/"))
	assert.Equal(t, int64(len(pngHeader)), res.Size)

	blob, ok := u.Open(res.URL)
	require.True(t, ok)
	assert.Equal(t, "foto.png", blob.Name)

	u.Revoke(res.URL)
	_, ok = u.Open(res.URL)
	assert.False(t, ok)

	_, err = NoopUploader{}.Upload(context.Background(), UploadInput{})
	assert.ErrorIs(t, err, ErrUnavailable)
}
