package util

import (
	"errors"
	"net/mail"
	"strings"
)

// ErrValidation é a causa comum de todo ValidationError.
var ErrValidation = errors.New("dados inválidos")

// FieldError descreve a falha de um campo específico.
type FieldError struct {
	Field  string `json:"campo"`
	Reason string `json:"motivo"`
}

// ValidationError agrega falhas de campos detectadas antes de qualquer mutação.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return strings.Join(parts, "; ")
}

// Unwrap permite errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Add registra uma falha.
func (e *ValidationError) Add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// Err devolve nil quando nenhuma falha foi registrada.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// FieldErr cria um erro com uma única falha.
func FieldErr(field, reason string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Reason: reason}}}
}

// ValidateEmail retorna erro para e-mails inválidos.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email obrigatório")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("email inválido")
	}
	return nil
}

// RequireString garante string não vazia.
func RequireString(v *ValidationError, value, field string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "obrigatório")
	}
}

// NormalizeEmail padroniza e-mail para comparação.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CleanList remove espaços e itens vazios ou repetidos preservando a ordem.
func CleanList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
