// Package mutation executa as mutações com indicador de carregamento,
// validação síncrona, latência simulada e notificação de resultado.
package mutation

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/escritoriodigital/api/internal/notify"
)

// Op descreve uma mutação.
type Op[T any] struct {
	// Key identifica o indicador de carregamento. Operações sobre um registro
	// existente acrescentam o id, ex.: "usuarios:status:7".
	Key string
	// Validate roda antes da latência; falhar aqui não altera nada.
	Validate func(ctx context.Context) error
	// Apply produz a nova coleção de forma atômica e devolve o resultado.
	Apply func(ctx context.Context) (T, error)
	// Success e Failure são os textos dos toasts. SuccessFor, quando
	// presente, tem precedência sobre Success.
	Success    string
	SuccessFor func(T) string
	Failure    string
}

// Runner compartilha latência, tracker e notificador entre os serviços.
type Runner struct {
	latency  Latency
	tracker  *Tracker
	notifier notify.Notifier
	logger   zerolog.Logger
}

// NewRunner cria o executor de mutações.
func NewRunner(latency Latency, tracker *Tracker, notifier notify.Notifier, logger zerolog.Logger) *Runner {
	if latency == nil {
		latency = NoDelay{}
	}
	if tracker == nil {
		tracker = NewTracker()
	}
	return &Runner{latency: latency, tracker: tracker, notifier: notifier, logger: logger}
}

// Tracker expõe os indicadores de carregamento.
func (r *Runner) Tracker() *Tracker { return r.tracker }

// Run executa a sequência completa. Falhas de validação voltam com a
// própria mensagem no toast; falhas operacionais usam op.Failure.
func Run[T any](ctx context.Context, r *Runner, op Op[T]) (result T, err error) {
	r.tracker.begin(op.Key)
	defer func() { r.tracker.end(op.Key, err) }()

	if op.Validate != nil {
		if verr := op.Validate(ctx); verr != nil {
			r.toast(ctx, notify.Erro, verr.Error())
			return result, verr
		}
	}

	// Depois de validada, a mutação segue até o fim mesmo que o chamador desista.
	ctx = context.WithoutCancel(ctx)
	result, err = apply(ctx, r, op)
	if err != nil {
		var zero T
		msg := op.Failure
		if msg == "" || isUserFacing(err) {
			msg = err.Error()
		}
		r.logger.Warn().Err(err).Str("op", op.Key).Msg("mutação falhou")
		r.toast(ctx, notify.Erro, msg)
		return zero, err
	}

	msg := op.Success
	if op.SuccessFor != nil {
		msg = op.SuccessFor(result)
	}
	if msg != "" {
		r.toast(ctx, notify.Sucesso, msg)
	}
	return result, nil
}

func apply[T any](ctx context.Context, r *Runner, op Op[T]) (result T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("mutação %s interrompida: %v", op.Key, rec)
		}
	}()

	if err := r.latency.Wait(ctx); err != nil {
		return result, err
	}
	return op.Apply(ctx)
}

// UserFacing marca erros cuja mensagem deve aparecer no toast.
type UserFacing interface {
	UserFacing() bool
}

func isUserFacing(err error) bool {
	var uf UserFacing
	return errors.As(err, &uf) && uf.UserFacing()
}

func (r *Runner) toast(ctx context.Context, tipo, msg string) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.Notify(context.WithoutCancel(ctx), tipo, msg); err != nil {
		r.logger.Warn().Err(err).Msg("não foi possível publicar notificação")
	}
}
