package tarefa

import (
	"context"
	"strings"
	"time"

	"github.com/escritoriodigital/api/internal/auth"
	"github.com/escritoriodigital/api/internal/listview"
	"github.com/escritoriodigital/api/internal/mutation"
	"github.com/escritoriodigital/api/internal/storage"
	"github.com/escritoriodigital/api/internal/util"
)

// Filtros aceitos na listagem de tarefas.
var ListFilters = []string{"responsavel", "cliente", "processo", "prioridade", "status", "tipo", "tag"}

// Directory resolve o nome de exibição dos responsáveis.
type Directory interface {
	Names(ctx context.Context) (map[string]string, error)
}

var historySpec = listview.Spec[EntradaHistorico]{
	Text: []func(EntradaHistorico) string{
		func(e EntradaHistorico) string { return e.Descricao },
		func(e EntradaHistorico) string { return e.Autor },
	},
	Categories: map[string]func(EntradaHistorico) []string{
		"autor": func(e EntradaHistorico) []string { return listview.One(e.Autor) },
	},
	Timestamp: func(e EntradaHistorico) time.Time { return e.Data },
}

// Service reúne as regras de tarefas.
type Service struct {
	repo      Repository
	runner    *mutation.Runner
	uploader  storage.Uploader
	directory Directory
	now       func() time.Time
}

// NewService cria o serviço. directory pode ser nil; nesse caso a busca
// livre não cobre o nome do responsável.
func NewService(repo Repository, runner *mutation.Runner, uploader storage.Uploader, directory Directory) *Service {
	if uploader == nil {
		uploader = storage.NoopUploader{}
	}
	return &Service{repo: repo, runner: runner, uploader: uploader, directory: directory, now: time.Now}
}

func listSpec(names map[string]string) listview.Spec[Tarefa] {
	return listview.Spec[Tarefa]{
		Text: []func(Tarefa) string{
			func(t Tarefa) string { return t.Nome },
			func(t Tarefa) string { return t.Descricao },
			func(t Tarefa) string { return names[t.ResponsavelID] },
		},
		Categories: map[string]func(Tarefa) []string{
			"responsavel": func(t Tarefa) []string { return listview.One(t.ResponsavelID) },
			"cliente":     func(t Tarefa) []string { return listview.One(t.ClienteID) },
			"processo":    func(t Tarefa) []string { return listview.One(t.ProcessoID) },
			"prioridade":  func(t Tarefa) []string { return listview.One(t.Prioridade) },
			"status":      func(t Tarefa) []string { return listview.One(t.Status) },
			"tipo":        func(t Tarefa) []string { return listview.One(t.Tipo) },
			"tag":         func(t Tarefa) []string { return t.Tags },
		},
		Timestamp: func(t Tarefa) time.Time { return t.CriadoEm },
	}
}

// List aplica busca, filtros e ordenação.
func (s *Service) List(ctx context.Context, c listview.Criteria) ([]Tarefa, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	names := map[string]string{}
	if s.directory != nil && strings.TrimSpace(c.Query) != "" {
		if names, err = s.directory.Names(ctx); err != nil {
			return nil, err
		}
	}
	return listview.Apply(items, listSpec(names), c), nil
}

// Get devolve uma tarefa.
func (s *Service) Get(ctx context.Context, id string) (*Tarefa, error) {
	return s.repo.Get(ctx, id)
}

// Create valida e cadastra a tarefa.
func (s *Service) Create(ctx context.Context, in Input, actor auth.Identity) (*Tarefa, error) {
	in = in.Normalize()

	return mutation.Run(ctx, s.runner, mutation.Op[*Tarefa]{
		Key:      "tarefas:criar",
		Validate: func(ctx context.Context) error { return in.Validate() },
		Apply: func(ctx context.Context) (*Tarefa, error) {
			now := s.now()
			t := Tarefa{
				ID:            util.NewIDAt(now),
				Tipo:          in.Tipo,
				Nome:          in.Nome,
				ResponsavelID: in.ResponsavelID,
				Prioridade:    in.Prioridade,
				Status:        in.Status,
				Tags:          in.Tags,
				Inicio:        in.Inicio,
				Fim:           in.Fim,
				Descricao:     in.Descricao,
				ClienteID:     in.ClienteID,
				ProcessoID:    in.ProcessoID,
				ValorCentavos: in.ValorCentavos,
				Anexos:        []Anexo{},
				CriadoEm:      now,
				AtualizadoEm:  now,
			}
			t.Historico = []EntradaHistorico{s.entry(actor, "Tarefa criada")}
			return s.repo.Create(ctx, t)
		},
		Success: "Tarefa criada com sucesso!",
		Failure: "Erro ao criar tarefa",
	})
}

// Update aplica o formulário e registra os campos alterados no histórico.
func (s *Service) Update(ctx context.Context, id string, in Input, actor auth.Identity) (*Tarefa, error) {
	in = in.Normalize()

	return mutation.Run(ctx, s.runner, mutation.Op[*Tarefa]{
		Key: "tarefas:atualizar:" + id,
		Validate: func(ctx context.Context) error {
			if err := in.Validate(); err != nil {
				return err
			}
			_, err := s.repo.Get(ctx, id)
			return err
		},
		Apply: func(ctx context.Context) (*Tarefa, error) {
			return s.repo.Update(ctx, id, func(t *Tarefa) error {
				changed := changedFields(*t, in)
				if len(changed) == 0 {
					return nil
				}
				t.Historico = append(t.Historico, s.entry(actor, "Campos alterados: "+strings.Join(changed, ", ")))
				t.Tipo = in.Tipo
				t.Nome = in.Nome
				t.ResponsavelID = in.ResponsavelID
				t.Prioridade = in.Prioridade
				t.Status = in.Status
				t.Tags = in.Tags
				t.Inicio = in.Inicio
				t.Fim = in.Fim
				t.Descricao = in.Descricao
				t.ClienteID = in.ClienteID
				t.ProcessoID = in.ProcessoID
				t.ValorCentavos = in.ValorCentavos
				t.AtualizadoEm = s.now()
				return nil
			})
		},
		Success: "Tarefa atualizada com sucesso!",
		Failure: "Erro ao atualizar tarefa",
	})
}

// UpdateStatus troca apenas o status.
func (s *Service) UpdateStatus(ctx context.Context, id, status string, actor auth.Identity) (*Tarefa, error) {
	status = strings.ToLower(strings.TrimSpace(status))

	return mutation.Run(ctx, s.runner, mutation.Op[*Tarefa]{
		Key: "tarefas:status:" + id,
		Validate: func(ctx context.Context) error {
			if !IsValidStatus(status) {
				return util.FieldErr("status", "status inválido")
			}
			_, err := s.repo.Get(ctx, id)
			return err
		},
		Apply: func(ctx context.Context) (*Tarefa, error) {
			return s.repo.Update(ctx, id, func(t *Tarefa) error {
				if t.Status == status {
					return nil
				}
				t.Historico = append(t.Historico, s.entry(actor, "Status alterado de "+t.Status+" para "+status))
				t.Status = status
				t.AtualizadoEm = s.now()
				return nil
			})
		},
		Success: "Status da tarefa atualizado!",
		Failure: "Erro ao atualizar status da tarefa",
	})
}

// Delete remove a tarefa sem cascata.
func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := mutation.Run(ctx, s.runner, mutation.Op[struct{}]{
		Key: "tarefas:excluir:" + id,
		Validate: func(ctx context.Context) error {
			_, err := s.repo.Get(ctx, id)
			return err
		},
		Apply: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.repo.Delete(ctx, id)
		},
		Success: "Tarefa excluída com sucesso!",
		Failure: "Erro ao excluir tarefa",
	})
	return err
}

// AddAttachment anexa um arquivo à tarefa.
func (s *Service) AddAttachment(ctx context.Context, id string, file storage.File, actor auth.Identity) (*Anexo, error) {
	var checked storage.Checked

	return mutation.Run(ctx, s.runner, mutation.Op[*Anexo]{
		Key: "tarefas:anexos:" + id,
		Validate: func(ctx context.Context) error {
			var err error
			if checked, err = storage.PoliticaDocumento.Check(file); err != nil {
				return err
			}
			_, err = s.repo.Get(ctx, id)
			return err
		},
		Apply: func(ctx context.Context) (*Anexo, error) {
			res, err := s.uploader.Upload(ctx, storage.UploadInput{
				Key:         "tarefas/" + id + "/anexos",
				Name:        checked.Name,
				Body:        checked.Body,
				ContentType: checked.ContentType,
			})
			if err != nil {
				return nil, err
			}
			now := s.now()
			anexo := Anexo{
				ID:          util.NewIDAt(now),
				Nome:        checked.Name,
				URL:         res.URL,
				ContentType: checked.ContentType,
				Tamanho:     res.Size,
				EnviadoEm:   now,
			}
			_, err = s.repo.Update(ctx, id, func(t *Tarefa) error {
				t.Anexos = append(t.Anexos, anexo)
				t.Historico = append(t.Historico, s.entry(actor, "Anexo adicionado: "+anexo.Nome))
				t.AtualizadoEm = now
				return nil
			})
			if err != nil {
				s.uploader.Revoke(res.URL)
				return nil, err
			}
			return &anexo, nil
		},
		Success: "Anexo enviado com sucesso!",
		Failure: "Erro ao enviar anexo",
	})
}

// History lista o histórico da tarefa.
func (s *Service) History(ctx context.Context, id string, c listview.Criteria) ([]EntradaHistorico, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return listview.Apply(t.Historico, historySpec, c), nil
}

func (s *Service) entry(actor auth.Identity, descricao string) EntradaHistorico {
	now := s.now()
	autor := actor.Nome
	if autor == "" {
		autor = actor.Subject
	}
	return EntradaHistorico{ID: util.NewIDAt(now), Descricao: descricao, Autor: autor, Data: now}
}
