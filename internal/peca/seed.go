package peca

import "time"

// Demo devolve as peças de demonstração.
func Demo() []PecaJuridica {
	base := time.Date(2026, 2, 10, 14, 0, 0, 0, time.UTC)
	msg := func(id, papel, conteudo string, tokens int, at time.Time) Mensagem {
		return Mensagem{ID: id, Papel: papel, Conteudo: conteudo, Tokens: tokens, CriadoEm: at}
	}

	return []PecaJuridica{
		{
			ID:            "pec-1",
			Tipo:          TipoCriacaoPeca,
			TipoDocumento: DocContestacao,
			Titulo:        "Contestação - ação de cobrança",
			Conversa: []Mensagem{
				msg("pec-1-m1", PapelUsuario, "Redija contestação alegando prescrição da dívida", 0, base),
				msg("pec-1-m2", PapelAssistente, "EXCELENTÍSSIMO(A) SENHOR(A) DOUTOR(A) JUIZ(A) DE DIREITO\n\nCONTESTAÇÃO\n\n[minuta]", 2140, base),
			},
			DadosCliente: &DadosCliente{
				ClienteID: "cli-1",
				Nome:      "Maria Oliveira",
				Documento: "123.456.789-00",
				Processos: []string{"1001234-56.2025.8.26.0100"},
			},
			Arquivo: &Arquivo{
				Nome:        "contestacao_pec-1.txt",
				URL:         "blob:pecas/pec-1/minuta/demo",
				ContentType: "text/plain; charset=utf-8",
				Tamanho:     2048,
				GeradoEm:    base,
			},
			Compartilhamentos: []Compartilhamento{{
				ID:           "grant-1",
				UsuarioID:    "usr-3",
				UsuarioNome:  "Bruno Lima",
				PodeExportar: true,
				CriadoEm:     base.Add(time.Hour),
			}},
			CriadoPor:    "usr-2",
			TokensUsados: 2140,
			CriadoEm:     base,
			AtualizadoEm: base.Add(time.Hour),
		},
		{
			ID:     "pec-2",
			Tipo:   TipoPesquisaJurisprudencia,
			Titulo: "Dano moral por negativação indevida",
			Conversa: []Mensagem{
				msg("pec-2-m1", PapelUsuario, "Jurisprudência recente do STJ sobre dano moral por negativação indevida", 0, base.Add(24*time.Hour)),
				msg("pec-2-m2", PapelAssistente, "Resultados da pesquisa:\n\n1. STJ, REsp 1.234.567/SP", 960, base.Add(24*time.Hour)),
			},
			Compartilhamentos: []Compartilhamento{},
			CriadoPor:         "admin",
			TokensUsados:      960,
			CriadoEm:          base.Add(24 * time.Hour),
			AtualizadoEm:      base.Add(24 * time.Hour),
		},
	}
}

// DemoTokensUsados é o consumo inicial coerente com as peças de demonstração.
const DemoTokensUsados = 3100
