package usuario

import (
	"slices"
	"strings"
	"time"

	"github.com/escritoriodigital/api/internal/util"
)

var (
	ErrNaoEncontrado          = util.NewUserError("usuário não encontrado")
	ErrEmailDuplicado         = util.NewUserError("Já existe um usuário com este e-mail")
	ErrDocumentoNaoEncontrado = util.NewUserError("documento não encontrado")
)

const (
	StatusAtivo   = "ATIVO"
	StatusInativo = "INATIVO"
)

// Tipos de documento aceitos no cadastro.
const (
	DocOAB                    = "OAB"
	DocTermoConfidencialidade = "TERMO_CONFIDENCIALIDADE"
	DocCPF                    = "CPF"
	DocPassaporte             = "PASSAPORTE"
)

// Tipos de registro de auditoria.
const (
	AuditCriacao    = "CRIACAO"
	AuditEdicao     = "EDICAO"
	AuditInativacao = "INATIVACAO"
	AuditReativacao = "REATIVACAO"
	AuditDocumento  = "DOCUMENTO"
	AuditFoto       = "FOTO"
)

var validDocTypes = map[string]struct{}{
	DocOAB:                    {},
	DocTermoConfidencialidade: {},
	DocCPF:                    {},
	DocPassaporte:             {},
}

// DadosBancarios guarda os dados de repasse do colaborador.
type DadosBancarios struct {
	Banco     string `json:"banco"`
	Agencia   string `json:"agencia"`
	Conta     string `json:"conta"`
	TipoConta string `json:"tipo_conta"`
	ChavePix  string `json:"chave_pix,omitempty"`
}

// Documento é um arquivo anexado ao cadastro.
type Documento struct {
	ID          string    `json:"id"`
	Tipo        string    `json:"tipo"`
	Nome        string    `json:"nome"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Tamanho     int64     `json:"tamanho"`
	EnviadoEm   time.Time `json:"enviado_em"`
}

// RegistroAuditoria registra uma alteração com valores antes e depois.
type RegistroAuditoria struct {
	ID            string    `json:"id"`
	Tipo          string    `json:"tipo"`
	Campo         string    `json:"campo,omitempty"`
	ValorAnterior string    `json:"valor_anterior,omitempty"`
	ValorNovo     string    `json:"valor_novo,omitempty"`
	Descricao     string    `json:"descricao"`
	Autor         string    `json:"autor"`
	Data          time.Time `json:"data"`
}

// Usuario representa um colaborador interno do escritório.
type Usuario struct {
	ID             string              `json:"id"`
	Nome           string              `json:"nome"`
	Cargo          string              `json:"cargo"`
	Telefone       string              `json:"telefone"`
	Email          string              `json:"email"`
	PerfilAcessoID string              `json:"perfil_acesso_id"`
	Especialidades []string            `json:"especialidades"`
	Status         string              `json:"status"`
	DadosBancarios *DadosBancarios     `json:"dados_bancarios,omitempty"`
	FotoURL        string              `json:"foto_url,omitempty"`
	Documentos     []Documento         `json:"documentos"`
	Auditoria      []RegistroAuditoria `json:"auditoria"`
	InativadoEm    *time.Time          `json:"inativado_em,omitempty"`
	InativadoPor   string              `json:"inativado_por,omitempty"`
	CriadoEm       time.Time           `json:"criado_em"`
	AtualizadoEm   time.Time           `json:"atualizado_em"`
}

// Clone copia as fatias e ponteiros internos.
func (u Usuario) Clone() Usuario {
	u.Especialidades = slices.Clone(u.Especialidades)
	u.Documentos = slices.Clone(u.Documentos)
	u.Auditoria = slices.Clone(u.Auditoria)
	if u.DadosBancarios != nil {
		db := *u.DadosBancarios
		u.DadosBancarios = &db
	}
	if u.InativadoEm != nil {
		t := *u.InativadoEm
		u.InativadoEm = &t
	}
	return u
}

// Input reúne os campos editáveis do formulário.
type Input struct {
	Nome           string          `json:"nome"`
	Cargo          string          `json:"cargo"`
	Telefone       string          `json:"telefone"`
	Email          string          `json:"email"`
	PerfilAcessoID string          `json:"perfil_acesso_id"`
	Especialidades []string        `json:"especialidades"`
	DadosBancarios *DadosBancarios `json:"dados_bancarios"`
}

// Normalize apara espaços e padroniza listas.
func (in Input) Normalize() Input {
	in.Nome = strings.TrimSpace(in.Nome)
	in.Cargo = strings.TrimSpace(in.Cargo)
	in.Telefone = strings.TrimSpace(in.Telefone)
	in.Email = strings.TrimSpace(in.Email)
	in.PerfilAcessoID = strings.TrimSpace(in.PerfilAcessoID)
	in.Especialidades = util.CleanList(in.Especialidades)
	if in.DadosBancarios != nil {
		db := *in.DadosBancarios
		db.Banco = strings.TrimSpace(db.Banco)
		db.Agencia = strings.TrimSpace(db.Agencia)
		db.Conta = strings.TrimSpace(db.Conta)
		db.TipoConta = strings.ToLower(strings.TrimSpace(db.TipoConta))
		db.ChavePix = strings.TrimSpace(db.ChavePix)
		in.DadosBancarios = &db
	}
	return in
}

// Validate confere o formulário sem consultar o repositório.
func (in Input) Validate() error {
	var v util.ValidationError
	util.RequireString(&v, in.Nome, "nome")
	util.RequireString(&v, in.Cargo, "cargo")
	util.RequireString(&v, in.PerfilAcessoID, "perfil_acesso_id")
	if err := util.ValidateEmail(in.Email); err != nil {
		v.Add("email", err.Error())
	}
	if in.Telefone != "" && countDigits(in.Telefone) < 10 {
		v.Add("telefone", "telefone inválido")
	}
	if db := in.DadosBancarios; db != nil {
		util.RequireString(&v, db.Banco, "dados_bancarios.banco")
		util.RequireString(&v, db.Agencia, "dados_bancarios.agencia")
		util.RequireString(&v, db.Conta, "dados_bancarios.conta")
		switch db.TipoConta {
		case "corrente", "poupanca", "pagamento":
		default:
			v.Add("dados_bancarios.tipo_conta", "tipo de conta inválido")
		}
	}
	return v.Err()
}

type change struct {
	campo  string
	antes  string
	depois string
}

// diff compara o cadastro atual com o formulário, campo a campo.
func diff(u Usuario, in Input) []change {
	var out []change
	add := func(campo, antes, depois string) {
		if antes != depois {
			out = append(out, change{campo: campo, antes: antes, depois: depois})
		}
	}
	add("nome", u.Nome, in.Nome)
	add("cargo", u.Cargo, in.Cargo)
	add("telefone", u.Telefone, in.Telefone)
	add("email", u.Email, in.Email)
	add("perfil_acesso_id", u.PerfilAcessoID, in.PerfilAcessoID)
	add("especialidades", strings.Join(u.Especialidades, ", "), strings.Join(in.Especialidades, ", "))
	add("dados_bancarios", bankSummary(u.DadosBancarios), bankSummary(in.DadosBancarios))
	return out
}

func bankSummary(db *DadosBancarios) string {
	if db == nil {
		return ""
	}
	return strings.Join([]string{db.Banco, db.Agencia, db.Conta, db.TipoConta, db.ChavePix}, " / ")
}

// IsValidDocType informa se o tipo de documento é aceito.
func IsValidDocType(tipo string) bool {
	_, ok := validDocTypes[tipo]
	return ok
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
