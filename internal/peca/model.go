// Package peca cuida das peças jurídicas redigidas com apoio de IA:
// criação, conversa, revisão, integração de dados do cliente e
// compartilhamento.
package peca

import (
	"slices"
	"strings"
	"time"

	"github.com/escritoriodigital/api/internal/util"
)

var (
	ErrNaoEncontrada                 = util.NewUserError("peça não encontrada")
	ErrCompartilhamentoDuplicado     = util.NewUserError("Esta peça já está compartilhada com este usuário")
	ErrCompartilhamentoNaoEncontrado = util.NewUserError("compartilhamento não encontrado")
	ErrSemArquivo                    = util.NewUserError("Esta peça não possui arquivo gerado")
	ErrSemPermissao                  = util.NewUserError("Você não tem permissão para esta ação")
)

// Funcionalidades do assistente.
const (
	TipoRevisaoOrtografica     = "revisao_ortografica"
	TipoPesquisaJurisprudencia = "pesquisa_jurisprudencia"
	TipoCriacaoPeca            = "criacao_peca"
)

// Espécies de peça aceitas em criacao_peca.
const (
	DocPeticaoInicial        = "peticao_inicial"
	DocContestacao           = "contestacao"
	DocReplica               = "replica"
	DocRecursoApelacao       = "recurso_apelacao"
	DocAgravoInstrumento     = "agravo_instrumento"
	DocEmbargosDeclaracao    = "embargos_declaracao"
	DocRecursoEspecial       = "recurso_especial"
	DocRecursoExtraordinario = "recurso_extraordinario"
	DocMandadoSeguranca      = "mandado_seguranca"
	DocHabeasCorpus          = "habeas_corpus"
)

const (
	PapelUsuario    = "usuario"
	PapelAssistente = "assistente"
)

// CustoMinimo é o saldo exigido antes de acionar o redator.
var CustoMinimo = map[string]int{
	TipoCriacaoPeca:            1500,
	TipoPesquisaJurisprudencia: 800,
	TipoRevisaoOrtografica:     500,
}

var docLabels = map[string]string{
	DocPeticaoInicial:        "Petição Inicial",
	DocContestacao:           "Contestação",
	DocReplica:               "Réplica",
	DocRecursoApelacao:       "Recurso de Apelação",
	DocAgravoInstrumento:     "Agravo de Instrumento",
	DocEmbargosDeclaracao:    "Embargos de Declaração",
	DocRecursoEspecial:       "Recurso Especial",
	DocRecursoExtraordinario: "Recurso Extraordinário",
	DocMandadoSeguranca:      "Mandado de Segurança",
	DocHabeasCorpus:          "Habeas Corpus",
}

// Mensagem é uma fala da conversa com o assistente.
type Mensagem struct {
	ID       string    `json:"id"`
	Papel    string    `json:"papel"`
	Conteudo string    `json:"conteudo"`
	Tokens   int       `json:"tokens,omitempty"`
	CriadoEm time.Time `json:"criado_em"`
}

// DadosCliente é a cópia dos dados do cliente integrada à peça.
type DadosCliente struct {
	ClienteID string   `json:"cliente_id"`
	Nome      string   `json:"nome"`
	Documento string   `json:"documento"`
	Email     string   `json:"email,omitempty"`
	Telefone  string   `json:"telefone,omitempty"`
	Endereco  string   `json:"endereco,omitempty"`
	Processos []string `json:"processos,omitempty"`
}

// Arquivo descreve o documento gerado ou revisado.
type Arquivo struct {
	Nome        string    `json:"nome"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Tamanho     int64     `json:"tamanho"`
	GeradoEm    time.Time `json:"gerado_em"`
}

// Compartilhamento concede acesso da peça a outro usuário.
type Compartilhamento struct {
	ID                  string    `json:"id"`
	UsuarioID           string    `json:"usuario_id"`
	UsuarioNome         string    `json:"usuario_nome"`
	PodeExportar        bool      `json:"pode_exportar"`
	PodeIntegrarCliente bool      `json:"pode_integrar_cliente"`
	CriadoEm            time.Time `json:"criado_em"`
}

// PecaJuridica é o artefato produzido pelo assistente.
type PecaJuridica struct {
	ID                string             `json:"id"`
	Tipo              string             `json:"tipo"`
	TipoDocumento     string             `json:"tipo_documento,omitempty"`
	Titulo            string             `json:"titulo"`
	Conversa          []Mensagem         `json:"conversa"`
	DadosCliente      *DadosCliente      `json:"dados_cliente,omitempty"`
	Arquivo           *Arquivo           `json:"arquivo,omitempty"`
	Compartilhamentos []Compartilhamento `json:"compartilhamentos"`
	CriadoPor         string             `json:"criado_por"`
	TokensUsados      int                `json:"tokens_usados"`
	CriadoEm          time.Time          `json:"criado_em"`
	AtualizadoEm      time.Time          `json:"atualizado_em"`
}

// Clone copia fatias e ponteiros.
func (p PecaJuridica) Clone() PecaJuridica {
	p.Conversa = slices.Clone(p.Conversa)
	p.Compartilhamentos = slices.Clone(p.Compartilhamentos)
	if p.DadosCliente != nil {
		d := *p.DadosCliente
		d.Processos = slices.Clone(d.Processos)
		p.DadosCliente = &d
	}
	if p.Arquivo != nil {
		a := *p.Arquivo
		p.Arquivo = &a
	}
	return p
}

// grantFor devolve o compartilhamento do usuário, se houver.
func (p PecaJuridica) grantFor(usuarioID string) (Compartilhamento, bool) {
	for _, g := range p.Compartilhamentos {
		if g.UsuarioID == usuarioID {
			return g, true
		}
	}
	return Compartilhamento{}, false
}

// Input é o pedido de criação de peça.
type Input struct {
	Tipo          string `json:"tipo"`
	TipoDocumento string `json:"tipo_documento"`
	Titulo        string `json:"titulo"`
	Prompt        string `json:"prompt"`
	ClienteID     string `json:"cliente_id"`
}

// Normalize apara espaços e padroniza os códigos.
func (in Input) Normalize() Input {
	in.Tipo = strings.ToLower(strings.TrimSpace(in.Tipo))
	in.TipoDocumento = strings.ToLower(strings.TrimSpace(in.TipoDocumento))
	in.Titulo = strings.TrimSpace(in.Titulo)
	in.Prompt = strings.TrimSpace(in.Prompt)
	in.ClienteID = strings.TrimSpace(in.ClienteID)
	return in
}

// Validate confere o pedido sem consultar saldo nem repositório.
func (in Input) Validate() error {
	var v util.ValidationError
	if _, ok := CustoMinimo[in.Tipo]; !ok {
		v.Add("tipo", "funcionalidade inválida")
	}
	util.RequireString(&v, in.Prompt, "prompt")
	switch {
	case in.Tipo == TipoCriacaoPeca && in.TipoDocumento == "":
		v.Add("tipo_documento", "obrigatório")
	case in.TipoDocumento != "" && !IsValidDocType(in.TipoDocumento):
		v.Add("tipo_documento", "tipo de peça inválido")
	}
	return v.Err()
}

// ShareInput é o pedido de compartilhamento.
type ShareInput struct {
	UsuarioID           string `json:"usuario_id"`
	PodeExportar        bool   `json:"pode_exportar"`
	PodeIntegrarCliente bool   `json:"pode_integrar_cliente"`
}

// IsValidDocType informa se a espécie de peça é conhecida.
func IsValidDocType(tipo string) bool {
	_, ok := docLabels[tipo]
	return ok
}

// DocLabel devolve o nome por extenso da espécie.
func DocLabel(tipo string) string {
	if label, ok := docLabels[tipo]; ok {
		return label
	}
	return tipo
}

func defaultTitle(in Input) string {
	switch in.Tipo {
	case TipoCriacaoPeca:
		return DocLabel(in.TipoDocumento)
	case TipoPesquisaJurisprudencia:
		return "Pesquisa de jurisprudência"
	default:
		return "Revisão ortográfica"
	}
}
