package storage

import "context"

// UploadInput representa uma operação de upload simples.
type UploadInput struct {
	Key         string
	Name        string
	Body        []byte
	ContentType string
}

// UploadResult descreve o artefato guardado.
type UploadResult struct {
	URL  string `json:"url"`
	Size int64  `json:"tamanho"`
}

// Uploader define comportamento básico para armazenar blobs. Revoke libera
// um blob que não chegou a ser referenciado.
type Uploader interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
	Revoke(url string)
}
