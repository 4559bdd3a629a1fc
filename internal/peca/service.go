package peca

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/escritoriodigital/api/internal/auth"
	"github.com/escritoriodigital/api/internal/cliente"
	"github.com/escritoriodigital/api/internal/listview"
	"github.com/escritoriodigital/api/internal/mutation"
	"github.com/escritoriodigital/api/internal/storage"
	"github.com/escritoriodigital/api/internal/util"
)

// Filtros aceitos na listagem de peças.
var ListFilters = []string{"tipo", "tipo_documento", "criado_por", "cliente", "compartilhado_com"}

// Budget é o saldo de tokens consumido pelo redator.
type Budget interface {
	Reserve(ctx context.Context, n int) error
	Settle(ctx context.Context, reserved, actual int) (int, error)
	Release(ctx context.Context, n int) error
}

// Directory resolve os usuários de destino dos compartilhamentos.
type Directory interface {
	DisplayName(ctx context.Context, id string) (string, bool)
}

var listSpec = listview.Spec[PecaJuridica]{
	Text: []func(PecaJuridica) string{
		func(p PecaJuridica) string { return p.Titulo },
		func(p PecaJuridica) string {
			parts := make([]string, 0, len(p.Conversa))
			for _, m := range p.Conversa {
				parts = append(parts, m.Conteudo)
			}
			return strings.Join(parts, "\n")
		},
	},
	Categories: map[string]func(PecaJuridica) []string{
		"tipo":           func(p PecaJuridica) []string { return listview.One(p.Tipo) },
		"tipo_documento": func(p PecaJuridica) []string { return listview.One(p.TipoDocumento) },
		"criado_por":     func(p PecaJuridica) []string { return listview.One(p.CriadoPor) },
		"cliente": func(p PecaJuridica) []string {
			if p.DadosCliente == nil {
				return nil
			}
			return listview.One(p.DadosCliente.ClienteID)
		},
		"compartilhado_com": func(p PecaJuridica) []string {
			out := make([]string, 0, len(p.Compartilhamentos))
			for _, g := range p.Compartilhamentos {
				out = append(out, g.UsuarioID)
			}
			return out
		},
	},
	Timestamp: func(p PecaJuridica) time.Time { return p.CriadoEm },
}

// Service reúne as regras das peças jurídicas.
type Service struct {
	repo      Repository
	runner    *mutation.Runner
	redator   Redator
	budget    Budget
	uploader  storage.Uploader
	directory Directory
	catalog   cliente.Catalog
	now       func() time.Time
}

// Deps agrupa as dependências do serviço.
type Deps struct {
	Repo      Repository
	Runner    *mutation.Runner
	Redator   Redator
	Budget    Budget
	Uploader  storage.Uploader
	Directory Directory
	Catalog   cliente.Catalog
}

// NewService cria o serviço.
func NewService(d Deps) *Service {
	uploader := d.Uploader
	if uploader == nil {
		uploader = storage.NoopUploader{}
	}
	return &Service{
		repo:      d.Repo,
		runner:    d.Runner,
		redator:   d.Redator,
		budget:    d.Budget,
		uploader:  uploader,
		directory: d.Directory,
		catalog:   d.Catalog,
		now:       time.Now,
	}
}

// List aplica busca, filtros e ordenação.
func (s *Service) List(ctx context.Context, c listview.Criteria) ([]PecaJuridica, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return listview.Apply(items, listSpec, c), nil
}

// Get devolve uma peça.
func (s *Service) Get(ctx context.Context, id string) (*PecaJuridica, error) {
	return s.repo.Get(ctx, id)
}

// Create aciona o redator. O saldo mínimo da funcionalidade é conferido e
// reservado antes da latência; sem saldo nada é alterado.
func (s *Service) Create(ctx context.Context, in Input, actor auth.Identity) (*PecaJuridica, error) {
	in = in.Normalize()
	res := &reservation{budget: s.budget}
	var dados *DadosCliente

	p, err := mutation.Run(ctx, s.runner, mutation.Op[*PecaJuridica]{
		Key: "pecas:criar",
		Validate: func(ctx context.Context) error {
			if err := in.Validate(); err != nil {
				return err
			}
			if in.ClienteID != "" {
				var err error
				if dados, err = s.clientData(ctx, in.ClienteID); err != nil {
					return err
				}
			}
			return res.take(ctx, CustoMinimo[in.Tipo])
		},
		Apply: func(ctx context.Context) (*PecaJuridica, error) {
			resp, err := s.redator.Redigir(ctx, Pedido{Tipo: in.Tipo, TipoDocumento: in.TipoDocumento, Prompt: in.Prompt, Cliente: dados})
			if err != nil {
				return nil, err
			}
			charged, err := res.settle(ctx, resp.Tokens)
			if err != nil {
				return nil, err
			}

			now := s.now()
			p := PecaJuridica{
				ID:                util.NewIDAt(now),
				Tipo:              in.Tipo,
				TipoDocumento:     in.TipoDocumento,
				Titulo:            in.Titulo,
				DadosCliente:      dados,
				Compartilhamentos: []Compartilhamento{},
				CriadoPor:         actor.Subject,
				TokensUsados:      charged,
				CriadoEm:          now,
				AtualizadoEm:      now,
			}
			if p.Titulo == "" {
				p.Titulo = defaultTitle(in)
			}
			p.Conversa = []Mensagem{
				s.message(PapelUsuario, in.Prompt, 0),
				s.message(PapelAssistente, resp.Conteudo, charged),
			}
			if in.Tipo == TipoCriacaoPeca {
				if p.Arquivo, err = s.storeDraft(ctx, p, resp.Conteudo); err != nil {
					return nil, err
				}
			}

			created, err := s.repo.Create(ctx, p)
			if err != nil {
				if p.Arquivo != nil {
					s.uploader.Revoke(p.Arquivo.URL)
				}
				return nil, err
			}
			res.commit()
			return created, nil
		},
		SuccessFor: func(p *PecaJuridica) string {
			switch p.Tipo {
			case TipoPesquisaJurisprudencia:
				return "Pesquisa de jurisprudência concluída!"
			case TipoRevisaoOrtografica:
				return "Revisão ortográfica concluída!"
			default:
				return "Peça gerada com sucesso!"
			}
		},
		Failure: "Erro ao gerar peça",
	})
	if err != nil {
		res.cancel(ctx)
	}
	return p, err
}

// Continue acrescenta uma pergunta e a resposta do assistente à conversa.
func (s *Service) Continue(ctx context.Context, id, prompt string, actor auth.Identity) (*PecaJuridica, error) {
	prompt = strings.TrimSpace(prompt)
	res := &reservation{budget: s.budget}
	var current *PecaJuridica

	p, err := mutation.Run(ctx, s.runner, mutation.Op[*PecaJuridica]{
		Key: "pecas:mensagens:" + id,
		Validate: func(ctx context.Context) error {
			if prompt == "" {
				return util.FieldErr("prompt", "obrigatório")
			}
			var err error
			if current, err = s.repo.Get(ctx, id); err != nil {
				return err
			}
			if !allowed(*current, actor, "editar") {
				return ErrSemPermissao
			}
			return res.take(ctx, CustoMinimo[current.Tipo])
		},
		Apply: func(ctx context.Context) (*PecaJuridica, error) {
			resp, err := s.redator.Redigir(ctx, Pedido{
				Tipo:          current.Tipo,
				TipoDocumento: current.TipoDocumento,
				Prompt:        prompt,
				Conversa:      current.Conversa,
				Cliente:       current.DadosCliente,
			})
			if err != nil {
				return nil, err
			}
			charged, err := res.settle(ctx, resp.Tokens)
			if err != nil {
				return nil, err
			}
			updated, err := s.repo.Update(ctx, id, func(p *PecaJuridica) error {
				p.Conversa = append(p.Conversa, s.message(PapelUsuario, prompt, 0), s.message(PapelAssistente, resp.Conteudo, charged))
				p.TokensUsados += charged
				p.AtualizadoEm = s.now()
				return nil
			})
			if err != nil {
				return nil, err
			}
			res.commit()
			return updated, nil
		},
		Failure: "Erro ao consultar o assistente",
	})
	if err != nil {
		res.cancel(ctx)
	}
	return p, err
}

// Review recebe um documento e cria uma peça de revisão ortográfica.
func (s *Service) Review(ctx context.Context, file storage.File, actor auth.Identity) (*PecaJuridica, error) {
	res := &reservation{budget: s.budget}
	var checked storage.Checked

	p, err := mutation.Run(ctx, s.runner, mutation.Op[*PecaJuridica]{
		Key: "pecas:revisao",
		Validate: func(ctx context.Context) error {
			var err error
			if checked, err = storage.PoliticaDocumento.Check(file); err != nil {
				return err
			}
			return res.take(ctx, CustoMinimo[TipoRevisaoOrtografica])
		},
		Apply: func(ctx context.Context) (*PecaJuridica, error) {
			prompt := "Revisar o documento " + checked.Name
			resp, err := s.redator.Redigir(ctx, Pedido{Tipo: TipoRevisaoOrtografica, Prompt: prompt})
			if err != nil {
				return nil, err
			}
			charged, err := res.settle(ctx, resp.Tokens)
			if err != nil {
				return nil, err
			}

			now := s.now()
			id := util.NewIDAt(now)
			up, err := s.uploader.Upload(ctx, storage.UploadInput{
				Key:         "pecas/" + id + "/revisao",
				Name:        "revisado_" + checked.Name,
				Body:        checked.Body,
				ContentType: checked.ContentType,
			})
			if err != nil {
				return nil, err
			}

			p := PecaJuridica{
				ID:     id,
				Tipo:   TipoRevisaoOrtografica,
				Titulo: "Revisão ortográfica: " + checked.Name,
				Conversa: []Mensagem{
					s.message(PapelUsuario, prompt, 0),
					s.message(PapelAssistente, resp.Conteudo, charged),
				},
				Arquivo: &Arquivo{
					Nome:        "revisado_" + checked.Name,
					URL:         up.URL,
					ContentType: checked.ContentType,
					Tamanho:     up.Size,
					GeradoEm:    now,
				},
				Compartilhamentos: []Compartilhamento{},
				CriadoPor:         actor.Subject,
				TokensUsados:      charged,
				CriadoEm:          now,
				AtualizadoEm:      now,
			}
			created, err := s.repo.Create(ctx, p)
			if err != nil {
				s.uploader.Revoke(up.URL)
				return nil, err
			}
			res.commit()
			return created, nil
		},
		Success: "Revisão ortográfica concluída!",
		Failure: "Erro ao revisar documento",
	})
	if err != nil {
		res.cancel(ctx)
	}
	return p, err
}

// IntegrateClient copia os dados do cliente e seus processos para a peça.
func (s *Service) IntegrateClient(ctx context.Context, id, clienteID string, actor auth.Identity) (*PecaJuridica, error) {
	clienteID = strings.TrimSpace(clienteID)
	var dados *DadosCliente

	return mutation.Run(ctx, s.runner, mutation.Op[*PecaJuridica]{
		Key: "pecas:cliente:" + id,
		Validate: func(ctx context.Context) error {
			if clienteID == "" {
				return util.FieldErr("cliente_id", "obrigatório")
			}
			p, err := s.repo.Get(ctx, id)
			if err != nil {
				return err
			}
			if !allowed(*p, actor, "integrar_cliente") {
				return ErrSemPermissao
			}
			dados, err = s.clientData(ctx, clienteID)
			return err
		},
		Apply: func(ctx context.Context) (*PecaJuridica, error) {
			return s.repo.Update(ctx, id, func(p *PecaJuridica) error {
				p.DadosCliente = dados
				p.AtualizadoEm = s.now()
				return nil
			})
		},
		Success: "Dados do cliente integrados à peça!",
		Failure: "Erro ao integrar dados do cliente",
	})
}

// Share concede acesso a outro usuário. O mesmo destino não pode aparecer
// duas vezes na lista.
func (s *Service) Share(ctx context.Context, id string, in ShareInput, actor auth.Identity) (*Compartilhamento, error) {
	in.UsuarioID = strings.TrimSpace(in.UsuarioID)
	var nome string

	return mutation.Run(ctx, s.runner, mutation.Op[*Compartilhamento]{
		Key: "pecas:compartilhar:" + id,
		Validate: func(ctx context.Context) error {
			if in.UsuarioID == "" {
				return util.FieldErr("usuario_id", "obrigatório")
			}
			p, err := s.repo.Get(ctx, id)
			if err != nil {
				return err
			}
			if !allowed(*p, actor, "compartilhar") {
				return ErrSemPermissao
			}
			var ok bool
			if nome, ok = s.displayName(ctx, in.UsuarioID); !ok {
				return util.FieldErr("usuario_id", "usuário não encontrado")
			}
			if _, dup := p.grantFor(in.UsuarioID); dup {
				return ErrCompartilhamentoDuplicado
			}
			return nil
		},
		Apply: func(ctx context.Context) (*Compartilhamento, error) {
			grant := Compartilhamento{
				ID:                  uuid.NewString(),
				UsuarioID:           in.UsuarioID,
				UsuarioNome:         nome,
				PodeExportar:        in.PodeExportar,
				PodeIntegrarCliente: in.PodeIntegrarCliente,
				CriadoEm:            s.now(),
			}
			_, err := s.repo.Update(ctx, id, func(p *PecaJuridica) error {
				if _, dup := p.grantFor(grant.UsuarioID); dup {
					return ErrCompartilhamentoDuplicado
				}
				p.Compartilhamentos = append(p.Compartilhamentos, grant)
				return nil
			})
			if err != nil {
				return nil, err
			}
			return &grant, nil
		},
		Success: "Peça compartilhada com sucesso!",
		Failure: "Erro ao compartilhar peça",
	})
}

// Unshare remove um compartilhamento.
func (s *Service) Unshare(ctx context.Context, id, grantID string, actor auth.Identity) (*PecaJuridica, error) {
	return mutation.Run(ctx, s.runner, mutation.Op[*PecaJuridica]{
		Key: "pecas:compartilhar:" + id,
		Validate: func(ctx context.Context) error {
			p, err := s.repo.Get(ctx, id)
			if err != nil {
				return err
			}
			if !allowed(*p, actor, "compartilhar") {
				return ErrSemPermissao
			}
			for _, g := range p.Compartilhamentos {
				if g.ID == grantID {
					return nil
				}
			}
			return ErrCompartilhamentoNaoEncontrado
		},
		Apply: func(ctx context.Context) (*PecaJuridica, error) {
			return s.repo.Update(ctx, id, func(p *PecaJuridica) error {
				kept := make([]Compartilhamento, 0, len(p.Compartilhamentos))
				for _, g := range p.Compartilhamentos {
					if g.ID != grantID {
						kept = append(kept, g)
					}
				}
				if len(kept) == len(p.Compartilhamentos) {
					return ErrCompartilhamentoNaoEncontrado
				}
				p.Compartilhamentos = kept
				return nil
			})
		},
		Success: "Compartilhamento removido!",
		Failure: "Erro ao remover compartilhamento",
	})
}

// Export devolve o arquivo gerado da peça.
func (s *Service) Export(ctx context.Context, id string, actor auth.Identity) (*Arquivo, error) {
	return mutation.Run(ctx, s.runner, mutation.Op[*Arquivo]{
		Key: "pecas:exportar:" + id,
		Validate: func(ctx context.Context) error {
			p, err := s.repo.Get(ctx, id)
			if err != nil {
				return err
			}
			if !allowed(*p, actor, "exportar") {
				return ErrSemPermissao
			}
			if p.Arquivo == nil {
				return ErrSemArquivo
			}
			return nil
		},
		Apply: func(ctx context.Context) (*Arquivo, error) {
			p, err := s.repo.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			if p.Arquivo == nil {
				return nil, ErrSemArquivo
			}
			return p.Arquivo, nil
		},
		Success: "Peça exportada com sucesso!",
		Failure: "Erro ao exportar peça",
	})
}

// Delete remove a peça; compartilhamentos somem junto com ela.
func (s *Service) Delete(ctx context.Context, id string, actor auth.Identity) error {
	_, err := mutation.Run(ctx, s.runner, mutation.Op[struct{}]{
		Key: "pecas:excluir:" + id,
		Validate: func(ctx context.Context) error {
			p, err := s.repo.Get(ctx, id)
			if err != nil {
				return err
			}
			if !allowed(*p, actor, "excluir") {
				return ErrSemPermissao
			}
			return nil
		},
		Apply: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.repo.Delete(ctx, id)
		},
		Success: "Peça excluída com sucesso!",
		Failure: "Erro ao excluir peça",
	})
	return err
}

func (s *Service) clientData(ctx context.Context, clienteID string) (*DadosCliente, error) {
	if s.catalog == nil {
		return nil, cliente.ErrNaoEncontrado
	}
	c, err := s.catalog.GetCliente(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	procs, err := s.catalog.ListProcessos(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	dados := &DadosCliente{
		ClienteID: c.ID,
		Nome:      c.Nome,
		Documento: c.Documento,
		Email:     c.Email,
		Telefone:  c.Telefone,
		Endereco:  c.Endereco,
	}
	for _, p := range procs {
		dados.Processos = append(dados.Processos, p.Numero)
	}
	return dados, nil
}

func (s *Service) displayName(ctx context.Context, id string) (string, bool) {
	if s.directory == nil {
		return "", false
	}
	return s.directory.DisplayName(ctx, id)
}

func (s *Service) storeDraft(ctx context.Context, p PecaJuridica, conteudo string) (*Arquivo, error) {
	name := p.TipoDocumento + "_" + p.ID + ".txt"
	up, err := s.uploader.Upload(ctx, storage.UploadInput{
		Key:         "pecas/" + p.ID + "/minuta",
		Name:        name,
		Body:        []byte(conteudo),
		ContentType: "text/plain; charset=utf-8",
	})
	if err != nil {
		return nil, err
	}
	return &Arquivo{
		Nome:        name,
		URL:         up.URL,
		ContentType: "text/plain; charset=utf-8",
		Tamanho:     up.Size,
		GeradoEm:    p.CriadoEm,
	}, nil
}

func (s *Service) message(papel, conteudo string, tokens int) Mensagem {
	now := s.now()
	return Mensagem{ID: util.NewIDAt(now), Papel: papel, Conteudo: conteudo, Tokens: tokens, CriadoEm: now}
}

// allowed libera o autor e o papel admin; os demais dependem do
// compartilhamento.
func allowed(p PecaJuridica, actor auth.Identity, acao string) bool {
	if actor.Subject != "" && actor.Subject == p.CriadoPor {
		return true
	}
	if auth.CheckPermission(actor, "pecas:"+acao) {
		return true
	}
	g, ok := p.grantFor(actor.Subject)
	if !ok {
		return false
	}
	switch acao {
	case "exportar":
		return g.PodeExportar
	case "integrar_cliente":
		return g.PodeIntegrarCliente
	}
	return false
}

// reservation acompanha os tokens presos por uma chamada ao redator.
type reservation struct {
	budget Budget
	held   int
}

func (r *reservation) take(ctx context.Context, n int) error {
	if err := r.budget.Reserve(ctx, n); err != nil {
		return err
	}
	r.held = n
	return nil
}

func (r *reservation) settle(ctx context.Context, actual int) (int, error) {
	charged, err := r.budget.Settle(ctx, r.held, actual)
	if err != nil {
		return 0, err
	}
	r.held = charged
	return charged, nil
}

func (r *reservation) commit() { r.held = 0 }

// cancel devolve o que ainda estiver preso.
func (r *reservation) cancel(ctx context.Context) {
	if r.held == 0 {
		return
	}
	if err := r.budget.Release(context.WithoutCancel(ctx), r.held); err != nil {
		log.Warn().Err(err).Int("tokens", r.held).Msg("não foi possível devolver reserva de tokens")
	}
	r.held = 0
}
