package http

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/escritoriodigital/api/internal/auth"
	"github.com/escritoriodigital/api/internal/cliente"
	"github.com/escritoriodigital/api/internal/config"
	httpmiddleware "github.com/escritoriodigital/api/internal/http/middleware"
	"github.com/escritoriodigital/api/internal/mutation"
	"github.com/escritoriodigital/api/internal/notify"
	"github.com/escritoriodigital/api/internal/peca"
	"github.com/escritoriodigital/api/internal/storage"
	"github.com/escritoriodigital/api/internal/tarefa"
	"github.com/escritoriodigital/api/internal/tokens"
	"github.com/escritoriodigital/api/internal/usuario"
)

const (
	permGerenciarUsuarios = "usuarios:gerenciar"
	permRenovarTokens     = "tokens:renovar"
)

// Deps reúne o que o roteador precisa. Pool e Redis são opcionais.
type Deps struct {
	Config   *config.Config
	Pool     *pgxpool.Pool
	Redis    *redis.Client
	JWT      *auth.JWTManager
	Tarefas  *tarefa.Service
	Usuarios *usuario.Service
	Pecas    *peca.Service
	Clientes cliente.Catalog
	Tokens   *tokens.Budget
	Feed     notify.Feed
	Tracker  *mutation.Tracker
	Blobs    *storage.BlobUploader
}

type Handler struct {
	cfg           *config.Config
	pool          *pgxpool.Pool
	redis         *redis.Client
	tarefas       *tarefa.Service
	usuarios      *usuario.Service
	pecas         *peca.Service
	clientes      cliente.Catalog
	tokens        *tokens.Budget
	feed          notify.Feed
	tracker       *mutation.Tracker
	blobs         *storage.BlobUploader
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
}

// NewRouter devolve roteador configurado.
func NewRouter(d Deps) (http.Handler, error) {
	cfg := d.Config
	if cfg == nil {
		return nil, errors.New("router: configuração ausente")
	}
	if d.Tarefas == nil || d.Usuarios == nil || d.Pecas == nil || d.Clientes == nil || d.Tokens == nil {
		return nil, errors.New("router: serviços de domínio ausentes")
	}
	if d.Feed == nil || d.Tracker == nil {
		return nil, errors.New("router: feed de notificações e tracker são obrigatórios")
	}

	var authenticate func(http.Handler) http.Handler
	switch cfg.AuthMode {
	case config.AuthModeDev:
		authenticate = httpmiddleware.DevAuth(auth.DevIdentity)
	default:
		if d.JWT == nil {
			return nil, errors.New("router: AUTH_MODE=jwt exige JWTManager")
		}
		authenticate = httpmiddleware.Auth(d.JWT)
	}

	h := &Handler{
		cfg:           cfg,
		pool:          d.Pool,
		redis:         d.Redis,
		tarefas:       d.Tarefas,
		usuarios:      d.Usuarios,
		pecas:         d.Pecas,
		clientes:      d.Clientes,
		tokens:        d.Tokens,
		feed:          d.Feed,
		tracker:       d.Tracker,
		blobs:         d.Blobs,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)
	})

	r.Group(func(private chi.Router) {
		private.Use(authenticate)
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Get("/me", h.Me)
		private.Get("/notificacoes", h.ListNotifications)
		private.Get("/operacoes", h.ListOperations)
		private.Get("/arquivos", h.DownloadBlob)

		private.Route("/tarefas", func(t chi.Router) {
			t.Get("/", h.ListTarefas)
			t.Post("/", h.CreateTarefa)
			t.Get("/{id}", h.GetTarefa)
			t.Put("/{id}", h.UpdateTarefa)
			t.Delete("/{id}", h.DeleteTarefa)
			t.Patch("/{id}/status", h.UpdateTarefaStatus)
			t.Post("/{id}/anexos", h.UploadTarefaAnexo)
			t.Get("/{id}/historico", h.ListTarefaHistorico)
		})

		private.Route("/usuarios", func(u chi.Router) {
			u.Get("/", h.ListUsuarios)
			u.Get("/{id}", h.GetUsuario)
			u.Get("/{id}/auditoria", h.ListUsuarioAuditoria)

			u.Group(func(admin chi.Router) {
				admin.Use(httpmiddleware.RequirePermission(permGerenciarUsuarios))
				admin.Post("/", h.CreateUsuario)
				admin.Put("/{id}", h.UpdateUsuario)
				admin.Delete("/{id}", h.DeleteUsuario)
				admin.Post("/{id}/status", h.ToggleUsuarioStatus)
				admin.Put("/{id}/foto", h.UploadUsuarioFoto)
				admin.Post("/{id}/documentos", h.UploadUsuarioDocumento)
				admin.Delete("/{id}/documentos/{docID}", h.DeleteUsuarioDocumento)
			})
		})

		private.Route("/pecas", func(p chi.Router) {
			p.Get("/", h.ListPecas)
			p.Post("/", h.CreatePeca)
			p.Post("/revisao", h.ReviewPeca)
			p.Get("/{id}", h.GetPeca)
			p.Delete("/{id}", h.DeletePeca)
			p.Post("/{id}/mensagens", h.ContinuePeca)
			p.Post("/{id}/cliente", h.IntegratePecaCliente)
			p.Post("/{id}/compartilhamentos", h.SharePeca)
			p.Delete("/{id}/compartilhamentos/{grantID}", h.UnsharePeca)
			p.Get("/{id}/exportar", h.ExportPeca)
		})

		private.Route("/tokens", func(t chi.Router) {
			t.Get("/", h.GetTokens)
			t.With(httpmiddleware.RequirePermission(permRenovarTokens)).Post("/renovar", h.RenewTokens)
		})

		private.Route("/clientes", func(c chi.Router) {
			c.Get("/", h.ListClientes)
			c.Get("/{id}", h.GetCliente)
			c.Get("/{id}/processos", h.ListClienteProcessos)
		})
	})

	return r, nil
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida conexões com Postgres e Redis quando configurados.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	var dbErr, redisErr error
	var g errgroup.Group
	if h.pool != nil {
		g.Go(func() error {
			dbErr = h.pool.Ping(ctx)
			return nil
		})
	}
	if h.redis != nil {
		g.Go(func() error {
			redisErr = h.redis.Ping(ctx).Err()
			return nil
		})
	}
	_ = g.Wait()

	if dbErr != nil || redisErr != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependências indisponíveis", map[string]any{
			"db":    errorString(dbErr),
			"redis": errorString(redisErr),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Me devolve a identidade autenticada.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id := httpmiddleware.GetIdentity(r.Context())
	WriteJSON(w, http.StatusOK, map[string]any{
		"id":    id.Subject,
		"nome":  id.Nome,
		"roles": id.Roles,
	})
}

// ListNotifications lista os toasts ainda visíveis.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	toasts, err := h.feed.Active(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toasts)
}

// ListOperations expõe o indicador de carregamento de cada operação.
func (h *Handler) ListOperations(w http.ResponseWriter, r *http.Request) {
	if key := r.URL.Query().Get("chave"); key != "" {
		WriteJSON(w, http.StatusOK, []mutation.Status{h.tracker.State(key)})
		return
	}
	WriteJSON(w, http.StatusOK, h.tracker.Snapshot())
}

// DownloadBlob entrega um arquivo guardado em memória pela URL blob:.
func (h *Handler) DownloadBlob(w http.ResponseWriter, r *http.Request) {
	if h.blobs == nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "armazenamento indisponível", nil)
		return
	}
	blob, ok := h.blobs.Open(r.URL.Query().Get("url"))
	if !ok {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "arquivo não encontrado", nil)
		return
	}
	w.Header().Set("Content-Type", blob.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": blob.Name}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob.Body)
}

// GetTokens devolve o controle de tokens do plano.
func (h *Handler) GetTokens(w http.ResponseWriter, r *http.Request) {
	ctrl, err := h.tokens.Get(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, ctrl)
}

// RenewTokens zera o consumo antes da data de renovação.
func (h *Handler) RenewTokens(w http.ResponseWriter, r *http.Request) {
	ctrl, err := h.tokens.Reset(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, ctrl)
}
