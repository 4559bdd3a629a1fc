package mutation

import (
	"sort"
	"sync"
	"time"
)

// State é o indicador de carregamento de uma operação.
type State string

const (
	StateIdle    State = "idle"
	StatePending State = "pending"
	StateError   State = "idle-with-error"
)

// Status descreve o estado corrente de uma chave de operação.
type Status struct {
	Key          string    `json:"chave"`
	State        State     `json:"estado"`
	Pendentes    int       `json:"pendentes"`
	Erro         string    `json:"erro,omitempty"`
	AtualizadoEm time.Time `json:"atualizado_em"`
}

// Tracker guarda o indicador de carregamento por chave, uma por registro
// alterado. Invocações simultâneas da mesma chave mantêm o estado pending
// até a última terminar.
type Tracker struct {
	mu     sync.Mutex
	states map[string]*Status
	now    func() time.Time
}

// NewTracker cria um tracker vazio.
func NewTracker() *Tracker {
	return &Tracker{states: make(map[string]*Status), now: time.Now}
}

func (t *Tracker) begin(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.states[key]
	if !ok {
		st = &Status{Key: key}
		t.states[key] = st
	}
	st.Pendentes++
	st.State = StatePending
	st.Erro = ""
	st.AtualizadoEm = t.now()
}

func (t *Tracker) end(key string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.states[key]
	if !ok {
		return
	}
	if st.Pendentes > 0 {
		st.Pendentes--
	}
	st.AtualizadoEm = t.now()
	if err != nil {
		st.Erro = err.Error()
	}
	if st.Pendentes > 0 {
		return
	}
	if st.Erro != "" {
		st.State = StateError
	} else {
		st.State = StateIdle
	}
}

// State devolve o estado da chave; chaves nunca usadas estão idle.
func (t *Tracker) State(key string) Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	if st, ok := t.states[key]; ok {
		return *st
	}
	return Status{Key: key, State: StateIdle}
}

// Snapshot lista todas as chaves conhecidas em ordem alfabética.
func (t *Tracker) Snapshot() []Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Status, 0, len(t.states))
	for _, st := range t.states {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
