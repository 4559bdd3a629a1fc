package peca

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escritoriodigital/api/internal/auth"
	"github.com/escritoriodigital/api/internal/cliente"
	"github.com/escritoriodigital/api/internal/listview"
	"github.com/escritoriodigital/api/internal/mutation"
	"github.com/escritoriodigital/api/internal/notify"
	"github.com/escritoriodigital/api/internal/storage"
	"github.com/escritoriodigital/api/internal/tokens"
	"github.com/escritoriodigital/api/internal/util"
)

type countingLatency struct{ calls int }

func (c *countingLatency) Wait(ctx context.Context) error {
	c.calls++
	return nil
}

type stubDirectory map[string]string

func (d stubDirectory) DisplayName(ctx context.Context, id string) (string, bool) {
	name, ok := d[id]
	return name, ok
}

type failingRedator struct{}

func (failingRedator) Redigir(ctx context.Context, p Pedido) (Resposta, error) {
	return Resposta{}, errors.New("serviço de IA indisponível")
}

type fixture struct {
	svc     *Service
	repo    *MemoryRepository
	budget  *tokens.Budget
	latency *countingLatency
	feed    *notify.MemoryFeed
}

func newFixture(t *testing.T, used int, redator Redator) fixture {
	t.Helper()
	if redator == nil {
		redator = NewMockRedator(7)
	}
	repo := NewMemoryRepository(Demo()...)
	budget := tokens.NewBudget(tokens.NewMemoryStore(used), tokens.Plan{Nome: "Profissional", Limite: 10000, Renovacao: 30 * 24 * time.Hour})
	feed := notify.NewMemoryFeed(time.Minute)
	lat := &countingLatency{}
	svc := NewService(Deps{
		Repo:      repo,
		Runner:    mutation.NewRunner(lat, nil, feed, zerolog.Nop()),
		Redator:   redator,
		Budget:    budget,
		Uploader:  storage.NewBlobUploader(),
		Directory: stubDirectory{"admin": "Administrador Master", "usr-2": "Ana Souza", "usr-3": "Bruno Lima", "usr-4": "Carla Mendes"},
		Catalog:   cliente.NewMemoryCatalog(cliente.Demo()),
	})
	return fixture{svc: svc, repo: repo, budget: budget, latency: lat, feed: feed}
}

func (f fixture) used(t *testing.T) int {
	t.Helper()
	got, err := f.budget.Get(context.Background())
	require.NoError(t, err)
	return got.Usados
}

func (f fixture) count(t *testing.T) int {
	t.Helper()
	items, err := f.repo.List(context.Background())
	require.NoError(t, err)
	return len(items)
}

func (f fixture) lastToast(t *testing.T) notify.Toast {
	t.Helper()
	toasts, err := f.feed.Active(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, toasts)
	return toasts[len(toasts)-1]
}

var bruno = auth.Identity{Subject: "usr-3", Nome: "Bruno Lima", Roles: []string{"advogado"}}
var carla = auth.Identity{Subject: "usr-4", Nome: "Carla Mendes", Roles: []string{"estagiario"}}

func TestCreateRejectedWithoutBalance(t *testing.T) {
	f := newFixture(t, 9000, nil)

	_, err := f.svc.Create(context.Background(), Input{
		Tipo:          TipoCriacaoPeca,
		TipoDocumento: DocPeticaoInicial,
		Prompt:        "Ação de indenização por danos morais",
	}, auth.DevIdentity)
	require.ErrorIs(t, err, tokens.ErrSaldoInsuficiente)

	assert.Zero(t, f.latency.calls)
	assert.Equal(t, 9000, f.used(t))
	assert.Equal(t, 2, f.count(t))
	toast := f.lastToast(t)
	assert.Equal(t, notify.Erro, toast.Tipo)
	assert.Equal(t, tokens.ErrSaldoInsuficiente.Error(), toast.Mensagem)
}

func TestCreateChargesBudget(t *testing.T) {
	f := newFixture(t, 1000, nil)

	p, err := f.svc.Create(context.Background(), Input{
		Tipo:          TipoCriacaoPeca,
		TipoDocumento: DocPeticaoInicial,
		Prompt:        "Ação de indenização por danos morais",
		ClienteID:     "cli-1",
	}, auth.DevIdentity)
	require.NoError(t, err)

	assert.Equal(t, 1, f.latency.calls)
	assert.GreaterOrEqual(t, p.TokensUsados, 1500)
	assert.Less(t, p.TokensUsados, 3000)
	assert.Equal(t, 1000+p.TokensUsados, f.used(t))
	assert.Equal(t, "Petição Inicial", p.Titulo)
	require.Len(t, p.Conversa, 2)
	assert.Equal(t, PapelAssistente, p.Conversa[1].Papel)
	assert.Contains(t, p.Conversa[1].Conteudo, "Maria Oliveira")
	require.NotNil(t, p.DadosCliente)
	assert.Equal(t, []string{"1001234-56.2025.8.26.0100"}, p.DadosCliente.Processos)
	require.NotNil(t, p.Arquivo)
	assert.True(t, strings.HasPrefix(p.Arquivo.URL, "blob:pecas/"))
	assert.Equal(t, 3, f.count(t))
	assert.Equal(t, "Peça gerada com sucesso!", f.lastToast(t).Mensagem)
}

func TestCreateFailureReleasesReservation(t *testing.T) {
	f := newFixture(t, 1000, failingRedator{})

	_, err := f.svc.Create(context.Background(), Input{Tipo: TipoPesquisaJurisprudencia, Prompt: "usucapião"}, auth.DevIdentity)
	require.Error(t, err)

	assert.Equal(t, 1000, f.used(t))
	assert.Equal(t, 2, f.count(t))
	assert.Equal(t, "Erro ao gerar peça", f.lastToast(t).Mensagem)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t, 0, nil)

	_, err := f.svc.Create(context.Background(), Input{Tipo: TipoCriacaoPeca, Prompt: "x"}, auth.DevIdentity)
	require.ErrorIs(t, err, util.ErrValidation)

	_, err = f.svc.Create(context.Background(), Input{Tipo: TipoCriacaoPeca, TipoDocumento: "memorando", Prompt: "x"}, auth.DevIdentity)
	require.ErrorIs(t, err, util.ErrValidation)

	_, err = f.svc.Create(context.Background(), Input{Tipo: TipoPesquisaJurisprudencia, Prompt: "x", ClienteID: "cli-99"}, auth.DevIdentity)
	require.ErrorIs(t, err, cliente.ErrNaoEncontrado)

	assert.Zero(t, f.used(t))
	assert.Zero(t, f.latency.calls)
}

func TestContinueAppendsToConversation(t *testing.T) {
	f := newFixture(t, 0, nil)
	ctx := context.Background()
	before, _ := f.svc.Get(ctx, "pec-2")

	p, err := f.svc.Continue(ctx, "pec-2", "Há precedentes do TJSP?", auth.DevIdentity)
	require.NoError(t, err)
	require.Len(t, p.Conversa, len(before.Conversa)+2)
	assert.Equal(t, "Há precedentes do TJSP?", p.Conversa[2].Conteudo)
	assert.Equal(t, before.TokensUsados+p.Conversa[3].Tokens, p.TokensUsados)
	assert.Equal(t, p.Conversa[3].Tokens, f.used(t))

	_, err = f.svc.Continue(ctx, "pec-2", "mais?", carla)
	require.ErrorIs(t, err, ErrSemPermissao)
}

func TestReview(t *testing.T) {
	f := newFixture(t, 0, nil)

	p, err := f.svc.Review(context.Background(), storage.File{Name: "peticao.pdf", Body: []byte("%PDF-1.7\n")}, auth.DevIdentity)
	require.NoError(t, err)
	assert.Equal(t, TipoRevisaoOrtografica, p.Tipo)
	require.NotNil(t, p.Arquivo)
	assert.Equal(t, "revisado_peticao.pdf", p.Arquivo.Nome)
	assert.Equal(t, p.TokensUsados, f.used(t))

	_, err = f.svc.Review(context.Background(), storage.File{Name: "nota.txt", Body: []byte("texto simples")}, auth.DevIdentity)
	require.ErrorIs(t, err, util.ErrValidation)
}

type rejectingRepository struct{ *MemoryRepository }

func (rejectingRepository) Create(ctx context.Context, p PecaJuridica) (*PecaJuridica, error) {
	return nil, errors.New("falha de gravação")
}

type recordingUploader struct {
	*storage.BlobUploader
	urls []string
}

func (u *recordingUploader) Upload(ctx context.Context, in storage.UploadInput) (*storage.UploadResult, error) {
	res, err := u.BlobUploader.Upload(ctx, in)
	if err == nil {
		u.urls = append(u.urls, res.URL)
	}
	return res, err
}

func TestFailedInsertReleasesUploadedFiles(t *testing.T) {
	uploader := &recordingUploader{BlobUploader: storage.NewBlobUploader()}
	budget := tokens.NewBudget(tokens.NewMemoryStore(0), tokens.Plan{Nome: "Profissional", Limite: 10000})
	svc := NewService(Deps{
		Repo:     rejectingRepository{NewMemoryRepository()},
		Runner:   mutation.NewRunner(mutation.NoDelay{}, nil, nil, zerolog.Nop()),
		Redator:  NewMockRedator(7),
		Budget:   budget,
		Uploader: uploader,
	})
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{Tipo: TipoCriacaoPeca, TipoDocumento: DocPeticaoInicial, Prompt: "Ação de cobrança"}, auth.DevIdentity)
	require.Error(t, err)
	_, err = svc.Review(ctx, storage.File{Name: "peticao.pdf", Body: []byte("%PDF-1.7\n")}, auth.DevIdentity)
	require.Error(t, err)

	require.Len(t, uploader.urls, 2)
	for _, url := range uploader.urls {
		_, ok := uploader.Open(url)
		assert.False(t, ok, url)
	}
	got, err := budget.Get(ctx)
	require.NoError(t, err)
	assert.Zero(t, got.Usados)
}

func TestShare(t *testing.T) {
	f := newFixture(t, 0, nil)
	ctx := context.Background()

	grant, err := f.svc.Share(ctx, "pec-2", ShareInput{UsuarioID: "usr-4", PodeIntegrarCliente: true}, auth.DevIdentity)
	require.NoError(t, err)
	assert.Equal(t, "Carla Mendes", grant.UsuarioNome)
	assert.NotEmpty(t, grant.ID)

	before, _ := f.svc.Get(ctx, "pec-2")
	_, err = f.svc.Share(ctx, "pec-2", ShareInput{UsuarioID: "usr-4", PodeExportar: true}, auth.DevIdentity)
	require.ErrorIs(t, err, ErrCompartilhamentoDuplicado)
	after, _ := f.svc.Get(ctx, "pec-2")
	assert.Equal(t, before, after)

	_, err = f.svc.Share(ctx, "pec-2", ShareInput{UsuarioID: "fantasma"}, auth.DevIdentity)
	require.ErrorIs(t, err, util.ErrValidation)

	got, err := f.svc.List(ctx, listview.Criteria{Filters: map[string]string{"compartilhado_com": "usr-4"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "pec-2", got[0].ID)

	p, err := f.svc.Unshare(ctx, "pec-2", grant.ID, auth.DevIdentity)
	require.NoError(t, err)
	assert.Empty(t, p.Compartilhamentos)

	_, err = f.svc.Unshare(ctx, "pec-2", grant.ID, auth.DevIdentity)
	require.ErrorIs(t, err, ErrCompartilhamentoNaoEncontrado)
}

func TestGrantCapabilities(t *testing.T) {
	f := newFixture(t, 0, nil)
	ctx := context.Background()

	arq, err := f.svc.Export(ctx, "pec-1", bruno)
	require.NoError(t, err)
	assert.Equal(t, "contestacao_pec-1.txt", arq.Nome)

	_, err = f.svc.IntegrateClient(ctx, "pec-1", "cli-2", bruno)
	require.ErrorIs(t, err, ErrSemPermissao)

	_, err = f.svc.Export(ctx, "pec-1", carla)
	require.ErrorIs(t, err, ErrSemPermissao)

	_, err = f.svc.Export(ctx, "pec-2", auth.DevIdentity)
	require.ErrorIs(t, err, ErrSemArquivo)
}

func TestIntegrateClient(t *testing.T) {
	f := newFixture(t, 0, nil)

	p, err := f.svc.IntegrateClient(context.Background(), "pec-2", "cli-2", auth.DevIdentity)
	require.NoError(t, err)
	require.NotNil(t, p.DadosCliente)
	assert.Equal(t, "Construtora Horizonte Ltda.", p.DadosCliente.Nome)

	got, err := f.svc.List(context.Background(), listview.Criteria{Filters: map[string]string{"cliente": "cli-2"}})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestDelete(t *testing.T) {
	f := newFixture(t, 0, nil)
	ctx := context.Background()

	require.ErrorIs(t, f.svc.Delete(ctx, "pec-1", carla), ErrSemPermissao)
	require.NoError(t, f.svc.Delete(ctx, "pec-1", auth.DevIdentity))
	assert.Equal(t, 1, f.count(t))
	require.ErrorIs(t, f.svc.Delete(ctx, "pec-1", auth.DevIdentity), ErrNaoEncontrada)
}

func TestListSearchesTranscript(t *testing.T) {
	f := newFixture(t, 0, nil)
	got, err := f.svc.List(context.Background(), listview.Criteria{Query: "PRESCRIÇÃO"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "pec-1", got[0].ID)
}

func TestMockRedatorCostRange(t *testing.T) {
	r := NewMockRedator(1)
	for _, tipo := range []string{TipoCriacaoPeca, TipoPesquisaJurisprudencia, TipoRevisaoOrtografica} {
		resp, err := r.Redigir(context.Background(), Pedido{Tipo: tipo, TipoDocumento: DocHabeasCorpus, Prompt: "x"})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, resp.Tokens, CustoMinimo[tipo])
		assert.Less(t, resp.Tokens, 2*CustoMinimo[tipo])
		assert.NotEmpty(t, resp.Conteudo)
	}
	_, err := r.Redigir(context.Background(), Pedido{Tipo: "outro"})
	assert.Error(t, err)
}
