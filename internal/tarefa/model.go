package tarefa

import (
	"slices"
	"strings"
	"time"

	"github.com/escritoriodigital/api/internal/util"
)

var ErrNaoEncontrada = util.NewUserError("tarefa não encontrada")

const (
	PrioridadeBaixa = "baixa"
	PrioridadeMedia = "media"
	PrioridadeAlta  = "alta"
)

const (
	StatusNaoIniciada = "nao_iniciada"
	StatusEmAndamento = "em_andamento"
	StatusConcluida   = "concluida"
)

// Tipos de atividade usados no cadastro de demonstração. O campo é livre.
const (
	TipoPrazo     = "prazo"
	TipoAudiencia = "audiencia"
	TipoReuniao   = "reuniao"
	TipoTarefa    = "tarefa"
)

// Anexo é um arquivo vinculado à tarefa.
type Anexo struct {
	ID          string    `json:"id"`
	Nome        string    `json:"nome"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Tamanho     int64     `json:"tamanho"`
	EnviadoEm   time.Time `json:"enviado_em"`
}

// EntradaHistorico é um registro textual de alteração.
type EntradaHistorico struct {
	ID        string    `json:"id"`
	Descricao string    `json:"descricao"`
	Autor     string    `json:"autor"`
	Data      time.Time `json:"data"`
}

// Tarefa é uma atividade do escritório.
type Tarefa struct {
	ID            string             `json:"id"`
	Tipo          string             `json:"tipo"`
	Nome          string             `json:"nome"`
	ResponsavelID string             `json:"responsavel_id"`
	Prioridade    string             `json:"prioridade"`
	Status        string             `json:"status"`
	Tags          []string           `json:"tags"`
	Inicio        *time.Time         `json:"inicio,omitempty"`
	Fim           *time.Time         `json:"fim,omitempty"`
	Descricao     string             `json:"descricao"`
	ClienteID     string             `json:"cliente_id,omitempty"`
	ProcessoID    string             `json:"processo_id,omitempty"`
	ValorCentavos *int64             `json:"valor_centavos,omitempty"`
	Anexos        []Anexo            `json:"anexos"`
	Historico     []EntradaHistorico `json:"historico"`
	CriadoEm      time.Time          `json:"criado_em"`
	AtualizadoEm  time.Time          `json:"atualizado_em"`
}

// Clone copia fatias e ponteiros.
func (t Tarefa) Clone() Tarefa {
	t.Tags = slices.Clone(t.Tags)
	t.Anexos = slices.Clone(t.Anexos)
	t.Historico = slices.Clone(t.Historico)
	t.Inicio = cloneTime(t.Inicio)
	t.Fim = cloneTime(t.Fim)
	if t.ValorCentavos != nil {
		v := *t.ValorCentavos
		t.ValorCentavos = &v
	}
	return t
}

// Input reúne os campos do formulário de tarefa.
type Input struct {
	Tipo          string     `json:"tipo"`
	Nome          string     `json:"nome"`
	ResponsavelID string     `json:"responsavel_id"`
	Prioridade    string     `json:"prioridade"`
	Status        string     `json:"status"`
	Tags          []string   `json:"tags"`
	Inicio        *time.Time `json:"inicio"`
	Fim           *time.Time `json:"fim"`
	Descricao     string     `json:"descricao"`
	ClienteID     string     `json:"cliente_id"`
	ProcessoID    string     `json:"processo_id"`
	ValorCentavos *int64     `json:"valor_centavos"`
}

// Normalize apara espaços e aplica os valores padrão do formulário.
func (in Input) Normalize() Input {
	in.Tipo = strings.TrimSpace(in.Tipo)
	in.Nome = strings.TrimSpace(in.Nome)
	in.ResponsavelID = strings.TrimSpace(in.ResponsavelID)
	in.Prioridade = strings.ToLower(strings.TrimSpace(in.Prioridade))
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	in.Tags = util.CleanList(in.Tags)
	in.Descricao = strings.TrimSpace(in.Descricao)
	in.ClienteID = strings.TrimSpace(in.ClienteID)
	in.ProcessoID = strings.TrimSpace(in.ProcessoID)
	if in.Prioridade == "" {
		in.Prioridade = PrioridadeMedia
	}
	if in.Status == "" {
		in.Status = StatusNaoIniciada
	}
	return in
}

// Validate confere o formulário sem consultar o repositório.
func (in Input) Validate() error {
	var v util.ValidationError
	util.RequireString(&v, in.Nome, "nome")
	util.RequireString(&v, in.Tipo, "tipo")
	util.RequireString(&v, in.ResponsavelID, "responsavel_id")
	if !IsValidPriority(in.Prioridade) {
		v.Add("prioridade", "prioridade inválida")
	}
	if !IsValidStatus(in.Status) {
		v.Add("status", "status inválido")
	}
	if in.Inicio != nil && in.Fim != nil && in.Fim.Before(*in.Inicio) {
		v.Add("fim", "término anterior ao início")
	}
	if in.ValorCentavos != nil && *in.ValorCentavos < 0 {
		v.Add("valor_centavos", "valor não pode ser negativo")
	}
	return v.Err()
}

// IsValidPriority informa se a prioridade é conhecida.
func IsValidPriority(p string) bool {
	switch p {
	case PrioridadeBaixa, PrioridadeMedia, PrioridadeAlta:
		return true
	}
	return false
}

// IsValidStatus informa se o status é conhecido.
func IsValidStatus(s string) bool {
	switch s {
	case StatusNaoIniciada, StatusEmAndamento, StatusConcluida:
		return true
	}
	return false
}

// changedFields lista os campos do formulário que diferem da tarefa.
func changedFields(t Tarefa, in Input) []string {
	var out []string
	check := func(campo string, differs bool) {
		if differs {
			out = append(out, campo)
		}
	}
	check("tipo", t.Tipo != in.Tipo)
	check("nome", t.Nome != in.Nome)
	check("responsavel", t.ResponsavelID != in.ResponsavelID)
	check("prioridade", t.Prioridade != in.Prioridade)
	check("status", t.Status != in.Status)
	check("tags", !slices.Equal(t.Tags, in.Tags))
	check("inicio", !sameTime(t.Inicio, in.Inicio))
	check("fim", !sameTime(t.Fim, in.Fim))
	check("descricao", t.Descricao != in.Descricao)
	check("cliente", t.ClienteID != in.ClienteID)
	check("processo", t.ProcessoID != in.ProcessoID)
	check("valor", !sameValue(t.ValorCentavos, in.ValorCentavos))
	return out
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func sameValue(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
