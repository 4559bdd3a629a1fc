package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/escritoriodigital/api/internal/storage"
)

// maxUpload cobre a maior política aceita mais a folga do envelope multipart.
const maxUpload = 10<<20 + 1<<20

// readUpload extrai o campo "arquivo" de um multipart/form-data.
func readUpload(w http.ResponseWriter, r *http.Request) (storage.File, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "formulário inválido", nil)
		return storage.File{}, false
	}

	header, err := getFirstFile(r.MultipartForm, "arquivo")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return storage.File{}, false
	}

	file, err := readMultipartFile(header, maxUpload)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return storage.File{}, false
	}
	return file, true
}

func getFirstFile(form *multipart.Form, field string) (*multipart.FileHeader, error) {
	if form == nil {
		return nil, errors.New("arquivo ausente")
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil, errors.New("arquivo ausente")
	}
	return files[0], nil
}

func readMultipartFile(header *multipart.FileHeader, limit int64) (storage.File, error) {
	file, err := header.Open()
	if err != nil {
		return storage.File{}, fmt.Errorf("falha ao abrir arquivo: %w", err)
	}
	defer file.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(file, limit)); err != nil {
		return storage.File{}, fmt.Errorf("falha ao ler arquivo: %w", err)
	}

	if int64(buf.Len()) >= limit {
		return storage.File{}, fmt.Errorf("arquivo excede %d bytes", limit)
	}

	return storage.File{Name: header.Filename, Body: buf.Bytes()}, nil
}
