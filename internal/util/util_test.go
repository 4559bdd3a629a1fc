package util

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDUniqueWithinSameInstant(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewIDAt(now)
		_, dup := seen[id]
		require.False(t, dup, "id repetido: %s", id)
		seen[id] = struct{}{}
	}
}

func TestIDTimeRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	got, ok := IDTime(NewIDAt(now))
	require.True(t, ok)
	assert.True(t, got.Equal(now))

	_, ok = IDTime("nao-e-ulid")
	assert.False(t, ok)
}

func TestValidationError(t *testing.T) {
	var v ValidationError
	assert.NoError(t, v.Err())

	RequireString(&v, "  ", "nome")
	v.Add("email", "inválido")
	err := v.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "nome: obrigatório; email: inválido", err.Error())

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Fields, 2)
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("joao@x.com"))
	assert.EqualError(t, ValidateEmail(""), "email obrigatório")
	assert.EqualError(t, ValidateEmail("joao"), "email inválido")
	assert.EqualError(t, ValidateEmail("João <joao@x.com>"), "email inválido")
}

func TestCleanList(t *testing.T) {
	assert.Equal(t, []string{"Cível", "Trabalhista"}, CleanList([]string{" Cível ", "", "cível", "Trabalhista"}))
}
