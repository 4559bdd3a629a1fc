package peca

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

// Pedido é o que o redator recebe para produzir uma resposta.
type Pedido struct {
	Tipo          string
	TipoDocumento string
	Prompt        string
	Conversa      []Mensagem
	Cliente       *DadosCliente
}

// Resposta é o texto produzido e o custo em tokens.
type Resposta struct {
	Conteudo string
	Tokens   int
}

// Redator é a fronteira com o serviço de geração de texto.
type Redator interface {
	Redigir(ctx context.Context, p Pedido) (Resposta, error)
}

// MockRedator devolve textos prontos e um custo pseudoaleatório entre o
// mínimo da funcionalidade e o dobro dele.
type MockRedator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewMockRedator cria o redator simulado. A semente fixa torna os custos
// reproduzíveis.
func NewMockRedator(seed uint64) *MockRedator {
	return &MockRedator{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (m *MockRedator) Redigir(ctx context.Context, p Pedido) (Resposta, error) {
	if err := ctx.Err(); err != nil {
		return Resposta{}, err
	}
	base, ok := CustoMinimo[p.Tipo]
	if !ok {
		return Resposta{}, fmt.Errorf("redator: funcionalidade desconhecida %q", p.Tipo)
	}

	m.mu.Lock()
	tokens := base + m.rnd.IntN(base)
	m.mu.Unlock()

	return Resposta{Conteudo: cannedText(p), Tokens: tokens}, nil
}

func cannedText(p Pedido) string {
	var b strings.Builder
	switch p.Tipo {
	case TipoCriacaoPeca:
		fmt.Fprintf(&b, "EXCELENTÍSSIMO(A) SENHOR(A) DOUTOR(A) JUIZ(A) DE DIREITO\n\n%s\n\n", strings.ToUpper(DocLabel(p.TipoDocumento)))
		if p.Cliente != nil {
			fmt.Fprintf(&b, "%s, inscrito(a) sob o nº %s, residente em %s, vem, por seus advogados, ", p.Cliente.Nome, p.Cliente.Documento, p.Cliente.Endereco)
		} else {
			b.WriteString("[QUALIFICAÇÃO DA PARTE], vem, por seus advogados, ")
		}
		b.WriteString("respeitosamente, à presença de Vossa Excelência expor e requerer o que segue.\n\n")
		fmt.Fprintf(&b, "I. DOS FATOS\n\n%s\n\nII. DO DIREITO\n\n[fundamentação]\n\nIII. DOS PEDIDOS\n\n[pedidos]\n\nNestes termos, pede deferimento.", p.Prompt)
	case TipoPesquisaJurisprudencia:
		fmt.Fprintf(&b, "Resultados da pesquisa para \"%s\":\n\n", p.Prompt)
		b.WriteString("1. STJ, REsp 1.234.567/SP, Rel. Min. [relator], Terceira Turma, julgado em 10/03/2025.\n")
		b.WriteString("2. TJSP, Apelação Cível 1001234-56.2024.8.26.0100, 5ª Câmara de Direito Privado, julgado em 22/01/2025.\n")
		b.WriteString("3. STF, RE 987.654/RJ, Tribunal Pleno, tema de repercussão geral.")
	default:
		b.WriteString("Revisão concluída. Foram sugeridas correções de ortografia, concordância e pontuação. ")
		b.WriteString("Nenhuma alteração de conteúdo jurídico foi realizada.")
	}
	if n := len(p.Conversa); n > 0 {
		fmt.Fprintf(&b, "\n\n(Resposta considerando %d mensagens anteriores.)", n)
	}
	return b.String()
}
