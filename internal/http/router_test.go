package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escritoriodigital/api/internal/auth"
	"github.com/escritoriodigital/api/internal/cliente"
	"github.com/escritoriodigital/api/internal/config"
	"github.com/escritoriodigital/api/internal/mutation"
	"github.com/escritoriodigital/api/internal/notify"
	"github.com/escritoriodigital/api/internal/peca"
	"github.com/escritoriodigital/api/internal/storage"
	"github.com/escritoriodigital/api/internal/tarefa"
	"github.com/escritoriodigital/api/internal/tokens"
	"github.com/escritoriodigital/api/internal/usuario"
)

const testSecret = "segredo-de-teste-com-pelo-menos-32-chars"

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *ErrorBody      `json:"error"`
}

type testServer struct {
	handler http.Handler
	feed    *notify.MemoryFeed
	budget  *tokens.Budget
	jwt     *auth.JWTManager
}

func newTestServer(t *testing.T, authMode string, tokensUsados int) testServer {
	t.Helper()

	cfg := &config.Config{
		AuthMode:        authMode,
		RateLimitPublic: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
		RateLimitAuth:   config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
	}

	feed := notify.NewMemoryFeed(time.Minute)
	tracker := mutation.NewTracker()
	runner := mutation.NewRunner(mutation.NoDelay{}, tracker, feed, zerolog.Nop())
	blobs := storage.NewBlobUploader()
	catalog := cliente.NewMemoryCatalog(cliente.Demo())
	budget := tokens.NewBudget(tokens.NewMemoryStore(tokensUsados), tokens.Plan{Nome: "Básico", Limite: 10000, Renovacao: 30 * 24 * time.Hour})

	usuarios := usuario.NewService(usuario.NewMemoryRepository(usuario.Demo()...), runner, blobs)
	tarefas := tarefa.NewService(tarefa.NewMemoryRepository(tarefa.Demo()...), runner, blobs, usuarios)
	pecas := peca.NewService(peca.Deps{
		Repo:      peca.NewMemoryRepository(peca.Demo()...),
		Runner:    runner,
		Redator:   peca.NewMockRedator(7),
		Budget:    budget,
		Uploader:  blobs,
		Directory: usuarios,
		Catalog:   catalog,
	})

	jwtManager := auth.NewJWTManager(testSecret, time.Hour)
	handler, err := NewRouter(Deps{
		Config:   cfg,
		JWT:      jwtManager,
		Tarefas:  tarefas,
		Usuarios: usuarios,
		Pecas:    pecas,
		Clientes: catalog,
		Tokens:   budget,
		Feed:     feed,
		Tracker:  tracker,
		Blobs:    blobs,
	})
	require.NoError(t, err)

	return testServer{handler: handler, feed: feed, budget: budget, jwt: jwtManager}
}

func (s testServer) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, config.AuthModeDev, 0)
	rec, _ := s.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListTarefasByPriority(t *testing.T) {
	s := newTestServer(t, config.AuthModeDev, 0)

	rec, env := s.do(t, httptest.NewRequest(http.MethodGet, "/tarefas?prioridade=alta", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var items []tarefa.Tarefa
	require.NoError(t, json.Unmarshal(env.Data, &items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"1", "5"}, ids)

	rec, env = s.do(t, httptest.NewRequest(http.MethodGet, "/tarefas?prioridade=todos", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 5)
}

func TestCreateUsuarioDuplicateEmailReturnsConflict(t *testing.T) {
	s := newTestServer(t, config.AuthModeDev, 0)

	rec, env := s.do(t, jsonRequest(http.MethodPost, "/usuarios", usuario.Input{
		Nome:           "Outra Ana",
		Cargo:          "Advogada",
		Email:          "ANA.SOUZA@escritorio.com.br",
		PerfilAcessoID: "advogado",
	}))
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	toasts, err := s.feed.Active(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, toasts)
	last := toasts[len(toasts)-1]
	assert.Equal(t, notify.Erro, last.Tipo)
	assert.Equal(t, usuario.ErrEmailDuplicado.Error(), last.Mensagem)

	rec, env = s.do(t, httptest.NewRequest(http.MethodGet, "/usuarios", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var users []usuario.Usuario
	require.NoError(t, json.Unmarshal(env.Data, &users))
	assert.Len(t, users, 4)
}

func TestCreateTarefaValidation(t *testing.T) {
	s := newTestServer(t, config.AuthModeDev, 0)

	rec, env := s.do(t, jsonRequest(http.MethodPost, "/tarefas", map[string]any{"nome": "   "}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION", env.Error.Code)

	rec, _ = s.do(t, jsonRequest(http.MethodPost, "/tarefas", map[string]any{"campo_desconhecido": 1}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePecaWithoutBalance(t *testing.T) {
	s := newTestServer(t, config.AuthModeDev, 9000)

	rec, env := s.do(t, jsonRequest(http.MethodPost, "/pecas", peca.Input{
		Tipo:          peca.TipoCriacaoPeca,
		TipoDocumento: peca.DocPeticaoInicial,
		Prompt:        "Ação de cobrança contra ex-locatário",
	}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INSUFFICIENT_TOKENS", env.Error.Code)

	ctrl, err := s.budget.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9000, ctrl.Usados)
}

func TestDeleteTarefa(t *testing.T) {
	s := newTestServer(t, config.AuthModeDev, 0)

	rec, _ := s.do(t, httptest.NewRequest(http.MethodDelete, "/tarefas/2", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, env := s.do(t, httptest.NewRequest(http.MethodGet, "/tarefas/2", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	rec, env = s.do(t, httptest.NewRequest(http.MethodGet, "/operacoes?chave=tarefas:excluir:2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var states []mutation.Status
	require.NoError(t, json.Unmarshal(env.Data, &states))
	require.Len(t, states, 1)
	assert.Equal(t, mutation.StateIdle, states[0].State)
}

func TestUploadTarefaAnexo(t *testing.T) {
	s := newTestServer(t, config.AuthModeDev, 0)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("arquivo", "contrato.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/tarefas/1/anexos", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec, env := s.do(t, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var anexo tarefa.Anexo
	require.NoError(t, json.Unmarshal(env.Data, &anexo))
	assert.Equal(t, "contrato.pdf", anexo.Nome)
	assert.True(t, strings.HasPrefix(anexo.URL, "blob:"))

	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/arquivos?url="+anexo.URL, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-1.4"))
}

func TestUploadWithoutFile(t *testing.T) {
	s := newTestServer(t, config.AuthModeDev, 0)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("tipo", "RG"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/usuarios/usr-2/documentos", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec, env := s.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "arquivo ausente", env.Error.Message)
}

func TestJWTAuthentication(t *testing.T) {
	s := newTestServer(t, config.AuthModeJWT, 0)

	rec, env := s.do(t, httptest.NewRequest(http.MethodGet, "/tarefas", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "AUTH", env.Error.Code)

	token, _, err := s.jwt.GenerateAccessToken(auth.Identity{Subject: "usr-3", Nome: "Bruno Lima", Roles: []string{"advogado"}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec, env = s.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var me map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "usr-3", me["id"])

	req = jsonRequest(http.MethodPost, "/usuarios", usuario.Input{Nome: "X", Cargo: "Y", Email: "x@y.com", PerfilAcessoID: "advogado"})
	req.Header.Set("Authorization", "Bearer "+token)
	rec, env = s.do(t, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	req = httptest.NewRequest(http.MethodPost, "/tokens/renovar", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec, _ = s.do(t, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRenewTokens(t *testing.T) {
	s := newTestServer(t, config.AuthModeDev, 4200)

	rec, env := s.do(t, httptest.NewRequest(http.MethodPost, "/tokens/renovar", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var ctrl tokens.ControleTokens
	require.NoError(t, json.Unmarshal(env.Data, &ctrl))
	assert.Equal(t, 0, ctrl.Usados)
	assert.Equal(t, 10000, ctrl.Disponiveis)
}

func TestClienteProcessos(t *testing.T) {
	s := newTestServer(t, config.AuthModeDev, 0)

	rec, _ := s.do(t, httptest.NewRequest(http.MethodGet, "/clientes/cli-1/processos", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := s.do(t, httptest.NewRequest(http.MethodGet, "/clientes/nao-existe/processos", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}
