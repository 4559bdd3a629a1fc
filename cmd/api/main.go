package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/escritoriodigital/api/internal/auth"
	"github.com/escritoriodigital/api/internal/cliente"
	"github.com/escritoriodigital/api/internal/config"
	"github.com/escritoriodigital/api/internal/db"
	internalhttp "github.com/escritoriodigital/api/internal/http"
	"github.com/escritoriodigital/api/internal/mutation"
	"github.com/escritoriodigital/api/internal/notify"
	"github.com/escritoriodigital/api/internal/peca"
	"github.com/escritoriodigital/api/internal/storage"
	"github.com/escritoriodigital/api/internal/tarefa"
	"github.com/escritoriodigital/api/internal/tokens"
	"github.com/escritoriodigital/api/internal/usuario"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if cfg.StorageDriver == config.StoragePostgres {
		pool, err = db.NewPool(ctx, cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("db: %w", err)
		}
		defer pool.Close()
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis parse: %w", err)
		}
		redisClient = redis.NewClient(redisOpts)
		defer redisClient.Close()
	}

	var feed notify.Feed = notify.NewMemoryFeed(cfg.ToastTTL)
	var tokenStore tokens.Store = tokens.NewMemoryStore(0)
	if redisClient != nil {
		feed = notify.NewRedisFeed(redisClient, cfg.ToastTTL)
		redisStore := tokens.NewRedisStore(redisClient)
		if cfg.SeedDemo {
			if err := redisStore.Seed(ctx, peca.DemoTokensUsados); err != nil {
				return fmt.Errorf("tokens seed: %w", err)
			}
		}
		tokenStore = redisStore
	} else if cfg.SeedDemo {
		tokenStore = tokens.NewMemoryStore(peca.DemoTokensUsados)
	}

	budget := tokens.NewBudget(tokenStore, tokens.Plan{
		Nome:      cfg.Tokens.Plano,
		Limite:    cfg.Tokens.Limite,
		Renovacao: time.Duration(cfg.Tokens.RenovacaoDias) * 24 * time.Hour,
	})

	tracker := mutation.NewTracker()
	runner := mutation.NewRunner(
		mutation.NewLatency(cfg.Mock.Latency, cfg.Mock.Jitter),
		tracker,
		feed,
		log.With().Str("component", "mutation").Logger(),
	)
	blobs := storage.NewBlobUploader()

	usuarioRepo, tarefaRepo, pecaRepo, err := repositories(ctx, cfg, pool)
	if err != nil {
		return err
	}

	var catalog cliente.Catalog = cliente.NewMemoryCatalog(nil, nil)
	if cfg.SeedDemo {
		catalog = cliente.NewMemoryCatalog(cliente.Demo())
	}

	usuarios := usuario.NewService(usuarioRepo, runner, blobs)
	tarefas := tarefa.NewService(tarefaRepo, runner, blobs, usuarios)
	pecas := peca.NewService(peca.Deps{
		Repo:      pecaRepo,
		Runner:    runner,
		Redator:   peca.NewMockRedator(uint64(time.Now().UnixNano())),
		Budget:    budget,
		Uploader:  blobs,
		Directory: usuarios,
		Catalog:   catalog,
	})

	var jwtManager *auth.JWTManager
	if cfg.AuthMode == config.AuthModeJWT {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)
	} else {
		log.Warn().Msg("AUTH_MODE=dev: todas as requisições usam o administrador master")
	}

	handler, err := internalhttp.NewRouter(internalhttp.Deps{
		Config:   cfg,
		Pool:     pool,
		Redis:    redisClient,
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
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("storage", cfg.StorageDriver).Bool("redis", redisClient != nil).Msgf("API ouvindo em :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("encerrando...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func repositories(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (usuario.Repository, tarefa.Repository, peca.Repository, error) {
	if pool == nil {
		if !cfg.SeedDemo {
			return usuario.NewMemoryRepository(), tarefa.NewMemoryRepository(), peca.NewMemoryRepository(), nil
		}
		return usuario.NewMemoryRepository(usuario.Demo()...),
			tarefa.NewMemoryRepository(tarefa.Demo()...),
			peca.NewMemoryRepository(peca.Demo()...),
			nil
	}

	usuarios := usuario.NewPostgresRepository(pool)
	tarefas := tarefa.NewPostgresRepository(pool)
	pecas := peca.NewPostgresRepository(pool)

	if cfg.SeedDemo {
		if err := seed[usuario.Usuario](ctx, usuarios, usuario.Demo()); err != nil {
			return nil, nil, nil, fmt.Errorf("seed usuarios: %w", err)
		}
		if err := seed[tarefa.Tarefa](ctx, tarefas, tarefa.Demo()); err != nil {
			return nil, nil, nil, fmt.Errorf("seed tarefas: %w", err)
		}
		if err := seed[peca.PecaJuridica](ctx, pecas, peca.Demo()); err != nil {
			return nil, nil, nil, fmt.Errorf("seed pecas: %w", err)
		}
	}
	return usuarios, tarefas, pecas, nil
}

type seedable[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, item T) (*T, error)
}

// seed grava os registros de demonstração apenas em tabela vazia.
func seed[T any](ctx context.Context, repo seedable[T], items []T) error {
	existing, err := repo.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, item := range items {
		if _, err := repo.Create(ctx, item); err != nil {
			return err
		}
	}
	log.Info().Int("registros", len(items)).Msg("dados de demonstração gravados")
	return nil
}
