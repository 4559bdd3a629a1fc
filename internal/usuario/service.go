package usuario

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/escritoriodigital/api/internal/auth"
	"github.com/escritoriodigital/api/internal/listview"
	"github.com/escritoriodigital/api/internal/mutation"
	"github.com/escritoriodigital/api/internal/storage"
	"github.com/escritoriodigital/api/internal/util"
)

// Filtros aceitos na listagem de usuários.
var ListFilters = []string{"status", "perfil", "especialidade"}

// Filtros aceitos na listagem de auditoria.
var AuditFilters = []string{"tipo", "autor"}

const notaInativacao = "Usuário inativado. As atividades pendentes devem ser transferidas para o administrador master."

var listSpec = listview.Spec[Usuario]{
	Text: []func(Usuario) string{
		func(u Usuario) string { return u.Nome },
		func(u Usuario) string { return u.Email },
		func(u Usuario) string { return u.Cargo },
	},
	Categories: map[string]func(Usuario) []string{
		"status":        func(u Usuario) []string { return listview.One(u.Status) },
		"perfil":        func(u Usuario) []string { return listview.One(u.PerfilAcessoID) },
		"especialidade": func(u Usuario) []string { return u.Especialidades },
	},
	Timestamp: func(u Usuario) time.Time { return u.CriadoEm },
}

var auditSpec = listview.Spec[RegistroAuditoria]{
	Text: []func(RegistroAuditoria) string{
		func(a RegistroAuditoria) string { return a.Descricao },
		func(a RegistroAuditoria) string { return a.Campo },
		func(a RegistroAuditoria) string { return a.ValorAnterior },
		func(a RegistroAuditoria) string { return a.ValorNovo },
	},
	Categories: map[string]func(RegistroAuditoria) []string{
		"tipo":  func(a RegistroAuditoria) []string { return listview.One(a.Tipo) },
		"autor": func(a RegistroAuditoria) []string { return listview.One(a.Autor) },
	},
	Timestamp: func(a RegistroAuditoria) time.Time { return a.Data },
}

// Service reúne as regras do cadastro de usuários internos.
type Service struct {
	repo     Repository
	runner   *mutation.Runner
	uploader storage.Uploader
	now      func() time.Time
}

// NewService cria o serviço.
func NewService(repo Repository, runner *mutation.Runner, uploader storage.Uploader) *Service {
	if uploader == nil {
		uploader = storage.NoopUploader{}
	}
	return &Service{repo: repo, runner: runner, uploader: uploader, now: time.Now}
}

// List aplica busca, filtros e ordenação sobre o cadastro.
func (s *Service) List(ctx context.Context, c listview.Criteria) ([]Usuario, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return listview.Apply(users, listSpec, c), nil
}

// Get devolve um usuário.
func (s *Service) Get(ctx context.Context, id string) (*Usuario, error) {
	return s.repo.Get(ctx, id)
}

// DisplayName resolve o nome de exibição por busca linear.
func (s *Service) DisplayName(ctx context.Context, id string) (string, bool) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", false
	}
	return u.Nome, true
}

// Names devolve o mapa id → nome de todo o cadastro.
func (s *Service) Names(ctx context.Context) (map[string]string, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(users))
	for _, u := range users {
		out[u.ID] = u.Nome
	}
	return out, nil
}

// Create valida o formulário, rejeita e-mail repetido e cadastra o usuário.
func (s *Service) Create(ctx context.Context, in Input, actor auth.Identity) (*Usuario, error) {
	in = in.Normalize()

	return mutation.Run(ctx, s.runner, mutation.Op[*Usuario]{
		Key: "usuarios:criar",
		Validate: func(ctx context.Context) error {
			if err := in.Validate(); err != nil {
				return err
			}
			return s.ensureEmailFree(ctx, in.Email, "")
		},
		Apply: func(ctx context.Context) (*Usuario, error) {
			now := s.now()
			u := Usuario{
				ID:             util.NewIDAt(now),
				Nome:           in.Nome,
				Cargo:          in.Cargo,
				Telefone:       in.Telefone,
				Email:          in.Email,
				PerfilAcessoID: in.PerfilAcessoID,
				Especialidades: in.Especialidades,
				Status:         StatusAtivo,
				DadosBancarios: in.DadosBancarios,
				Documentos:     []Documento{},
				CriadoEm:       now,
				AtualizadoEm:   now,
			}
			u.Auditoria = []RegistroAuditoria{s.entry(actor, AuditCriacao, "", "", "", "Usuário cadastrado")}
			return s.repo.Create(ctx, u)
		},
		Success: "Usuário criado com sucesso!",
		Failure: "Erro ao criar usuário",
	})
}

// Update aplica o formulário e registra uma entrada EDICAO por campo alterado.
func (s *Service) Update(ctx context.Context, id string, in Input, actor auth.Identity) (*Usuario, error) {
	in = in.Normalize()

	return mutation.Run(ctx, s.runner, mutation.Op[*Usuario]{
		Key: "usuarios:atualizar:" + id,
		Validate: func(ctx context.Context) error {
			if err := in.Validate(); err != nil {
				return err
			}
			if _, err := s.repo.Get(ctx, id); err != nil {
				return err
			}
			return s.ensureEmailFree(ctx, in.Email, id)
		},
		Apply: func(ctx context.Context) (*Usuario, error) {
			return s.repo.Update(ctx, id, func(u *Usuario) error {
				changes := diff(*u, in)
				if len(changes) == 0 {
					return nil
				}
				for _, c := range changes {
					u.Auditoria = append(u.Auditoria, s.entry(actor, AuditEdicao, c.campo, c.antes, c.depois,
						fmt.Sprintf("Campo %s alterado", c.campo)))
				}
				u.Nome = in.Nome
				u.Cargo = in.Cargo
				u.Telefone = in.Telefone
				u.Email = in.Email
				u.PerfilAcessoID = in.PerfilAcessoID
				u.Especialidades = in.Especialidades
				u.DadosBancarios = in.DadosBancarios
				u.AtualizadoEm = s.now()
				return nil
			})
		},
		Success: "Usuário atualizado com sucesso!",
		Failure: "Erro ao atualizar usuário",
	})
}

// ToggleStatus alterna ATIVO/INATIVO. A inativação registra quem e quando
// e deixa a nota de transferência de atividades; a reativação limpa ambos.
func (s *Service) ToggleStatus(ctx context.Context, id string, actor auth.Identity) (*Usuario, error) {
	return mutation.Run(ctx, s.runner, mutation.Op[*Usuario]{
		Key: "usuarios:status:" + id,
		Validate: func(ctx context.Context) error {
			_, err := s.repo.Get(ctx, id)
			return err
		},
		Apply: func(ctx context.Context) (*Usuario, error) {
			return s.repo.Update(ctx, id, func(u *Usuario) error {
				if u.Status == StatusInativo {
					u.Status = StatusAtivo
					u.InativadoEm = nil
					u.InativadoPor = ""
					u.Auditoria = append(u.Auditoria, s.entry(actor, AuditReativacao, "status", StatusInativo, StatusAtivo, "Usuário reativado"))
					return nil
				}
				now := s.now()
				u.Status = StatusInativo
				u.InativadoEm = &now
				u.InativadoPor = actorName(actor)
				u.Auditoria = append(u.Auditoria, s.entry(actor, AuditInativacao, "status", StatusAtivo, StatusInativo, notaInativacao))
				return nil
			})
		},
		SuccessFor: func(u *Usuario) string {
			if u.Status == StatusInativo {
				return "Usuário inativado com sucesso!"
			}
			return "Usuário reativado com sucesso!"
		},
		Failure: "Erro ao alterar status do usuário",
	})
}

// Delete remove o usuário sem cascata.
func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := mutation.Run(ctx, s.runner, mutation.Op[struct{}]{
		Key: "usuarios:excluir:" + id,
		Validate: func(ctx context.Context) error {
			_, err := s.repo.Get(ctx, id)
			return err
		},
		Apply: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.repo.Delete(ctx, id)
		},
		Success: "Usuário excluído com sucesso!",
		Failure: "Erro ao excluir usuário",
	})
	return err
}

// SetPhoto substitui a foto de perfil.
func (s *Service) SetPhoto(ctx context.Context, id string, file storage.File, actor auth.Identity) (*Usuario, error) {
	var checked storage.Checked

	return mutation.Run(ctx, s.runner, mutation.Op[*Usuario]{
		Key: "usuarios:foto:" + id,
		Validate: func(ctx context.Context) error {
			var err error
			if checked, err = storage.PoliticaImagem.Check(file); err != nil {
				return err
			}
			_, err = s.repo.Get(ctx, id)
			return err
		},
		Apply: func(ctx context.Context) (*Usuario, error) {
			res, err := s.uploader.Upload(ctx, storage.UploadInput{
				Key:         "usuarios/" + id + "/foto",
				Name:        checked.Name,
				Body:        checked.Body,
				ContentType: checked.ContentType,
			})
			if err != nil {
				return nil, err
			}
			u, err := s.repo.Update(ctx, id, func(u *Usuario) error {
				u.Auditoria = append(u.Auditoria, s.entry(actor, AuditFoto, "foto_url", u.FotoURL, res.URL, "Foto de perfil atualizada"))
				u.FotoURL = res.URL
				u.AtualizadoEm = s.now()
				return nil
			})
			if err != nil {
				s.uploader.Revoke(res.URL)
				return nil, err
			}
			return u, nil
		},
		Success: "Foto atualizada com sucesso!",
		Failure: "Erro ao enviar foto",
	})
}

// AddDocument anexa um documento tipado ao cadastro.
func (s *Service) AddDocument(ctx context.Context, id, tipo string, file storage.File, actor auth.Identity) (*Documento, error) {
	tipo = strings.ToUpper(strings.TrimSpace(tipo))
	var checked storage.Checked

	return mutation.Run(ctx, s.runner, mutation.Op[*Documento]{
		Key: "usuarios:documentos:" + id,
		Validate: func(ctx context.Context) error {
			if !IsValidDocType(tipo) {
				return util.FieldErr("tipo", "tipo de documento inválido")
			}
			var err error
			if checked, err = storage.PoliticaDocumento.Check(file); err != nil {
				return err
			}
			_, err = s.repo.Get(ctx, id)
			return err
		},
		Apply: func(ctx context.Context) (*Documento, error) {
			res, err := s.uploader.Upload(ctx, storage.UploadInput{
				Key:         "usuarios/" + id + "/documentos",
				Name:        checked.Name,
				Body:        checked.Body,
				ContentType: checked.ContentType,
			})
			if err != nil {
				return nil, err
			}
			now := s.now()
			doc := Documento{
				ID:          util.NewIDAt(now),
				Tipo:        tipo,
				Nome:        checked.Name,
				URL:         res.URL,
				ContentType: checked.ContentType,
				Tamanho:     res.Size,
				EnviadoEm:   now,
			}
			_, err = s.repo.Update(ctx, id, func(u *Usuario) error {
				u.Documentos = append(u.Documentos, doc)
				u.Auditoria = append(u.Auditoria, s.entry(actor, AuditDocumento, "documentos", "", doc.Nome,
					fmt.Sprintf("Documento %s anexado", tipo)))
				u.AtualizadoEm = now
				return nil
			})
			if err != nil {
				s.uploader.Revoke(res.URL)
				return nil, err
			}
			return &doc, nil
		},
		Success: "Documento enviado com sucesso!",
		Failure: "Erro ao enviar documento",
	})
}

// RemoveDocument retira um documento do cadastro.
func (s *Service) RemoveDocument(ctx context.Context, id, docID string, actor auth.Identity) (*Usuario, error) {
	return mutation.Run(ctx, s.runner, mutation.Op[*Usuario]{
		Key: "usuarios:documentos:" + id,
		Validate: func(ctx context.Context) error {
			u, err := s.repo.Get(ctx, id)
			if err != nil {
				return err
			}
			for _, d := range u.Documentos {
				if d.ID == docID {
					return nil
				}
			}
			return ErrDocumentoNaoEncontrado
		},
		Apply: func(ctx context.Context) (*Usuario, error) {
			return s.repo.Update(ctx, id, func(u *Usuario) error {
				kept := make([]Documento, 0, len(u.Documentos))
				var removed *Documento
				for _, d := range u.Documentos {
					if d.ID == docID {
						removed = &d
						continue
					}
					kept = append(kept, d)
				}
				if removed == nil {
					return ErrDocumentoNaoEncontrado
				}
				u.Documentos = kept
				u.Auditoria = append(u.Auditoria, s.entry(actor, AuditDocumento, "documentos", removed.Nome, "",
					fmt.Sprintf("Documento %s removido", removed.Tipo)))
				u.AtualizadoEm = s.now()
				return nil
			})
		},
		Success: "Documento removido com sucesso!",
		Failure: "Erro ao remover documento",
	})
}

// Audit lista o histórico de auditoria do usuário.
func (s *Service) Audit(ctx context.Context, id string, c listview.Criteria) ([]RegistroAuditoria, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return listview.Apply(u.Auditoria, auditSpec, c), nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email, exceptID string) error {
	users, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	if emailTaken(users, email, exceptID) {
		return ErrEmailDuplicado
	}
	return nil
}

func (s *Service) entry(actor auth.Identity, tipo, campo, antes, depois, descricao string) RegistroAuditoria {
	now := s.now()
	return RegistroAuditoria{
		ID:            util.NewIDAt(now),
		Tipo:          tipo,
		Campo:         campo,
		ValorAnterior: antes,
		ValorNovo:     depois,
		Descricao:     descricao,
		Autor:         actorName(actor),
		Data:          now,
	}
}

func actorName(actor auth.Identity) string {
	if actor.Nome != "" {
		return actor.Nome
	}
	return actor.Subject
}
