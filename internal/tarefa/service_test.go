package tarefa

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escritoriodigital/api/internal/auth"
	"github.com/escritoriodigital/api/internal/listview"
	"github.com/escritoriodigital/api/internal/mutation"
	"github.com/escritoriodigital/api/internal/notify"
	"github.com/escritoriodigital/api/internal/storage"
	"github.com/escritoriodigital/api/internal/util"
)

type stubDirectory map[string]string

func (d stubDirectory) Names(ctx context.Context) (map[string]string, error) { return d, nil }

func newService(seed ...Tarefa) (*Service, *MemoryRepository, *notify.MemoryFeed) {
	repo := NewMemoryRepository(seed...)
	feed := notify.NewMemoryFeed(time.Minute)
	runner := mutation.NewRunner(mutation.NoDelay{}, nil, feed, zerolog.Nop())
	dir := stubDirectory{"usr-2": "Ana Souza", "usr-3": "Bruno Lima", "admin": "Administrador Master"}
	return NewService(repo, runner, storage.NewBlobUploader(), dir), repo, feed
}

func ids(items []Tarefa) []string {
	out := make([]string, 0, len(items))
	for _, t := range items {
		out = append(out, t.ID)
	}
	return out
}

func TestFilterByPriority(t *testing.T) {
	seed := []Tarefa{
		{ID: "a", Nome: "Primeira", Prioridade: PrioridadeAlta},
		{ID: "b", Nome: "Segunda", Prioridade: PrioridadeMedia},
	}
	svc, _, _ := newService(seed...)

	got, err := svc.List(context.Background(), listview.Criteria{Filters: map[string]string{"prioridade": "alta"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(got))
}

func TestListSearchesAssigneeName(t *testing.T) {
	svc, _, _ := newService(Demo()...)

	got, err := svc.List(context.Background(), listview.Criteria{Query: "ana souza"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "5"}, ids(got))

	got, err = svc.List(context.Background(), listview.Criteria{
		Query:   "EMBARGOS",
		Filters: map[string]string{"responsavel": "usr-2", "status": listview.Todos, "tag": "civel"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, ids(got))
}

func TestListOrdering(t *testing.T) {
	svc, _, _ := newService(Demo()...)
	got, err := svc.List(context.Background(), listview.Criteria{Order: listview.OrderDesc})
	require.NoError(t, err)
	assert.Equal(t, []string{"5", "4", "3", "2", "1"}, ids(got))
}

func TestDeleteRemovesOnlyThatID(t *testing.T) {
	svc, repo, feed := newService(Demo()...)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "2"))
	items, _ := repo.List(ctx)
	assert.Len(t, items, 4)
	assert.NotContains(t, ids(items), "2")

	toasts, _ := feed.Active(ctx)
	require.NotEmpty(t, toasts)
	assert.Equal(t, "Tarefa excluída com sucesso!", toasts[len(toasts)-1].Mensagem)

	err := svc.Delete(ctx, "2")
	require.ErrorIs(t, err, ErrNaoEncontrada)
	items, _ = repo.List(ctx)
	assert.Len(t, items, 4)
}

func TestCreate(t *testing.T) {
	svc, repo, _ := newService(Demo()...)
	ctx := context.Background()
	before, _ := repo.List(ctx)

	created, err := svc.Create(ctx, Input{Tipo: TipoPrazo, Nome: "Recurso de apelação", ResponsavelID: "usr-3", Tags: []string{"civel"}}, auth.DevIdentity)
	require.NoError(t, err)

	after, _ := repo.List(ctx)
	require.Len(t, after, len(before)+1)
	assert.NotContains(t, ids(before), created.ID)
	assert.Equal(t, PrioridadeMedia, created.Prioridade)
	assert.Equal(t, StatusNaoIniciada, created.Status)
	require.Len(t, created.Historico, 1)
}

func TestCreateFinishesAfterCallerGivesUp(t *testing.T) {
	repo := NewMemoryRepository(Demo()...)
	feed := notify.NewMemoryFeed(time.Minute)
	runner := mutation.NewRunner(mutation.Fixed(100*time.Millisecond), nil, feed, zerolog.Nop())
	svc := NewService(repo, runner, storage.NewBlobUploader(), stubDirectory{"usr-3": "Bruno Lima"})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	defer cancel()

	created, err := svc.Create(ctx, Input{Tipo: TipoPrazo, Nome: "Contrarrazões", ResponsavelID: "usr-3"}, auth.DevIdentity)
	require.NoError(t, err)

	got, err := repo.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Contrarrazões", got.Nome)

	toasts, _ := feed.Active(context.Background())
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.Sucesso, toasts[0].Tipo)
}

func TestCreateValidation(t *testing.T) {
	svc, repo, feed := newService(Demo()...)
	ctx := context.Background()
	before, _ := repo.List(ctx)

	inicio := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	fim := inicio.Add(-time.Hour)
	negativo := int64(-1)
	_, err := svc.Create(ctx, Input{Nome: "X", Tipo: TipoPrazo, ResponsavelID: "usr-2", Prioridade: "urgente", Inicio: &inicio, Fim: &fim, ValorCentavos: &negativo}, auth.DevIdentity)
	require.ErrorIs(t, err, util.ErrValidation)

	after, _ := repo.List(ctx)
	assert.Equal(t, before, after)

	toasts, _ := feed.Active(ctx)
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.Erro, toasts[0].Tipo)
	assert.Contains(t, toasts[0].Mensagem, "prioridade")
}

func TestUpdateAppendsHistory(t *testing.T) {
	svc, _, _ := newService(Demo()...)
	ctx := context.Background()
	cur, err := svc.Get(ctx, "4")
	require.NoError(t, err)

	in := Input{
		Tipo: cur.Tipo, Nome: cur.Nome, ResponsavelID: "usr-3", Prioridade: PrioridadeAlta, Status: cur.Status,
		Tags: cur.Tags, Inicio: cur.Inicio, Fim: cur.Fim, Descricao: cur.Descricao, ClienteID: cur.ClienteID,
	}
	updated, err := svc.Update(ctx, "4", in, auth.DevIdentity)
	require.NoError(t, err)
	require.Len(t, updated.Historico, len(cur.Historico)+1)
	assert.Equal(t, "Campos alterados: responsavel, prioridade", updated.Historico[len(updated.Historico)-1].Descricao)

	_, err = svc.Update(ctx, "nao-existe", in, auth.DevIdentity)
	assert.ErrorIs(t, err, ErrNaoEncontrada)
}

func TestUpdateStatus(t *testing.T) {
	svc, _, _ := newService(Demo()...)
	ctx := context.Background()

	got, err := svc.UpdateStatus(ctx, "2", "concluida", auth.DevIdentity)
	require.NoError(t, err)
	assert.Equal(t, StatusConcluida, got.Status)

	_, err = svc.UpdateStatus(ctx, "2", "arquivada", auth.DevIdentity)
	require.ErrorIs(t, err, util.ErrValidation)

	hist, err := svc.History(ctx, "2", listview.Criteria{Query: "status alterado"})
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestAddAttachment(t *testing.T) {
	svc, _, _ := newService(Demo()...)
	ctx := context.Background()

	anexo, err := svc.AddAttachment(ctx, "1", storage.File{Name: "procuracao.pdf", Body: []byte("%PDF-1.7\n")}, auth.DevIdentity)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", anexo.ContentType)

	got, _ := svc.Get(ctx, "1")
	require.Len(t, got.Anexos, 1)
	assert.Equal(t, anexo.URL, got.Anexos[0].URL)

	_, err = svc.AddAttachment(ctx, "1", storage.File{Name: "virus.exe", Body: []byte("MZ\x90\x00")}, auth.DevIdentity)
	require.ErrorIs(t, err, util.ErrValidation)
}
