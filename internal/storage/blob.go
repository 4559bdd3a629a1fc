package storage

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/escritoriodigital/api/internal/util"
)

// Blob é um arquivo mantido apenas em memória.
type Blob struct {
	Name        string
	ContentType string
	Body        []byte
}

// BlobUploader guarda o conteúdo em memória e devolve uma URL blob:
// transitória. Nada é transmitido e tudo se perde ao reiniciar.
type BlobUploader struct {
	mu    sync.RWMutex
	blobs map[string]Blob
}

// NewBlobUploader cria o uploader transitório.
func NewBlobUploader() *BlobUploader {
	return &BlobUploader{blobs: make(map[string]Blob)}
}

// Upload registra o blob sob uma URL nova.
func (u *BlobUploader) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if strings.TrimSpace(input.Key) == "" {
		return nil, errors.New("storage: chave do objeto obrigatória")
	}
	if len(input.Body) == 0 {
		return nil, errors.New("storage: corpo vazio")
	}

	url := "blob:" + strings.Trim(input.Key, "/") + "/" + util.NewID()
	body := append([]byte(nil), input.Body...)

	u.mu.Lock()
	u.blobs[url] = Blob{Name: input.Name, ContentType: input.ContentType, Body: body}
	u.mu.Unlock()

	return &UploadResult{URL: url, Size: int64(len(body))}, nil
}

// Open devolve o blob guardado sob a URL.
func (u *BlobUploader) Open(url string) (Blob, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	b, ok := u.blobs[url]
	return b, ok
}

// Revoke libera o blob.
func (u *BlobUploader) Revoke(url string) {
	u.mu.Lock()
	delete(u.blobs, url)
	u.mu.Unlock()
}
