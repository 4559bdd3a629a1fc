package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/escritoriodigital/api/internal/util"
)

const (
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeDOC  = "application/msword"
)

// Policy limita tamanho e tipos aceitos em um upload.
type Policy struct {
	Nome     string
	MaxBytes int64
	Allowed  []string
}

var (
	// PoliticaImagem vale para fotos de perfil.
	PoliticaImagem = Policy{
		Nome:     "imagem",
		MaxBytes: 5 << 20,
		Allowed:  []string{"image/jpeg", "image/png", "image/webp", "image/gif"},
	}
	// PoliticaDocumento vale para anexos, documentos de usuário e revisões.
	PoliticaDocumento = Policy{
		Nome:     "documento",
		MaxBytes: 10 << 20,
		Allowed:  []string{"application/pdf", mimeDOCX, mimeDOC, "image/jpeg", "image/png"},
	}
)

// File é um arquivo recebido do cliente.
type File struct {
	Name string
	Body []byte
}

// Checked é o arquivo aprovado pela política, com o tipo detectado.
type Checked struct {
	Name        string
	ContentType string
	Extension   string
	Body        []byte
}

// Check valida tamanho e tipo. O tipo vem do conteúdo, não do nome.
func (p Policy) Check(f File) (Checked, error) {
	name := strings.TrimSpace(filepath.Base(f.Name))
	if name == "" || name == "." || name == "/" {
		return Checked{}, util.FieldErr("arquivo", "nome obrigatório")
	}
	if len(f.Body) == 0 {
		return Checked{}, util.FieldErr("arquivo", "arquivo vazio")
	}
	if int64(len(f.Body)) > p.MaxBytes {
		return Checked{}, util.FieldErr("arquivo", fmt.Sprintf("arquivo excede o limite de %dMB", p.MaxBytes>>20))
	}

	detected := mimetype.Detect(f.Body)
	for _, allowed := range p.Allowed {
		if detected.Is(allowed) {
			return Checked{
				Name:        name,
				ContentType: allowed,
				Extension:   detected.Extension(),
				Body:        f.Body,
			}, nil
		}
	}
	return Checked{}, util.FieldErr("arquivo", "tipo de arquivo não permitido: "+detected.String())
}
