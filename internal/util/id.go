package util

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID gera um ULID derivado do instante atual. A entropia monotônica
// garante ordem e unicidade mesmo para chamadas no mesmo milissegundo.
func NewID() string {
	return NewIDAt(time.Now())
}

// NewIDAt gera um ULID para o instante informado.
func NewIDAt(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// IDTime extrai o instante codificado no identificador.
func IDTime(id string) (time.Time, bool) {
	parsed, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}, false
	}
	return ulid.Time(parsed.Time()), true
}
