// Package notify mantém o feed de notificações transitórias (toasts)
// exibidas após cada mutação.
package notify

import (
	"context"
	"time"

	"github.com/escritoriodigital/api/internal/util"
)

// Tipos de toast.
const (
	Sucesso = "sucesso"
	Erro    = "erro"
	Aviso   = "aviso"
)

// Toast é uma notificação curta e não bloqueante.
type Toast struct {
	ID       string    `json:"id"`
	Tipo     string    `json:"tipo"`
	Mensagem string    `json:"mensagem"`
	CriadoEm time.Time `json:"criado_em"`
	ExpiraEm time.Time `json:"expira_em"`
}

// Notifier publica toasts.
type Notifier interface {
	Notify(ctx context.Context, tipo, mensagem string) error
}

// Feed publica e lista toasts ainda visíveis.
type Feed interface {
	Notifier
	Active(ctx context.Context) ([]Toast, error)
}

func newToast(tipo, mensagem string, now time.Time, ttl time.Duration) Toast {
	return Toast{
		ID:       util.NewIDAt(now),
		Tipo:     tipo,
		Mensagem: mensagem,
		CriadoEm: now,
		ExpiraEm: now.Add(ttl),
	}
}

func visible(toasts []Toast, now time.Time) []Toast {
	out := make([]Toast, 0, len(toasts))
	for _, t := range toasts {
		if now.Before(t.ExpiraEm) {
			out = append(out, t)
		}
	}
	return out
}
