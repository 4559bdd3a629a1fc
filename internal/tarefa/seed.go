package tarefa

import "time"

// Demo devolve as tarefas de demonstração.
func Demo() []Tarefa {
	base := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)
	at := func(h int) *time.Time {
		t := base.Add(time.Duration(h) * time.Hour)
		return &t
	}
	valor := int64(150000)

	items := []Tarefa{
		{ID: "1", Tipo: TipoPrazo, Nome: "Protocolar contestação", ResponsavelID: "usr-2", Prioridade: PrioridadeAlta, Status: StatusEmAndamento,
			Tags: []string{"civel", "prazo-fatal"}, Inicio: at(0), Fim: at(48), Descricao: "Contestação na ação de cobrança",
			ClienteID: "cli-1", ProcessoID: "proc-1"},
		{ID: "2", Tipo: TipoAudiencia, Nome: "Audiência de conciliação", ResponsavelID: "usr-3", Prioridade: PrioridadeMedia, Status: StatusNaoIniciada,
			Tags: []string{"trabalhista"}, Inicio: at(72), Fim: at(74), Descricao: "Levar proposta de acordo",
			ClienteID: "cli-2", ProcessoID: "proc-2"},
		{ID: "3", Tipo: TipoReuniao, Nome: "Reunião com cliente", ResponsavelID: "admin", Prioridade: PrioridadeBaixa, Status: StatusConcluida,
			Descricao: "Apresentar estratégia do recurso", ClienteID: "cli-3", ValorCentavos: &valor},
		{ID: "4", Tipo: TipoTarefa, Nome: "Revisar contrato social", ResponsavelID: "usr-4", Prioridade: PrioridadeMedia, Status: StatusNaoIniciada,
			Tags: []string{"empresarial"}, Descricao: "Conferir cláusulas de saída de sócio", ClienteID: "cli-2"},
		{ID: "5", Tipo: TipoPrazo, Nome: "Embargos de declaração", ResponsavelID: "usr-2", Prioridade: PrioridadeAlta, Status: StatusNaoIniciada,
			Tags: []string{"civel"}, Fim: at(120), Descricao: "Omissão sobre honorários", ClienteID: "cli-3", ProcessoID: "proc-3"},
	}
	for i := range items {
		created := base.Add(time.Duration(i) * 24 * time.Hour)
		items[i].CriadoEm = created
		items[i].AtualizadoEm = created
		items[i].Anexos = []Anexo{}
		items[i].Historico = []EntradaHistorico{{
			ID:        items[i].ID + "-criacao",
			Descricao: "Tarefa criada",
			Autor:     "Administrador Master",
			Data:      created,
		}}
		if items[i].Tags == nil {
			items[i].Tags = []string{}
		}
	}
	return items
}
