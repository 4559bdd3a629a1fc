package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/escritoriodigital/api/internal/cliente"
	"github.com/escritoriodigital/api/internal/peca"
	"github.com/escritoriodigital/api/internal/tarefa"
	"github.com/escritoriodigital/api/internal/tokens"
	"github.com/escritoriodigital/api/internal/usuario"
	"github.com/escritoriodigital/api/internal/util"
)

// SuccessEnvelope padroniza respostas com dados.
type SuccessEnvelope struct {
	Data  any `json:"data"`
	Error any `json:"error"`
}

// ErrorEnvelope padroniza respostas de erro.
type ErrorEnvelope struct {
	Data  any        `json:"data"`
	Error *ErrorBody `json:"error"`
}

// ErrorBody descreve falhas normalizadas.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// WriteJSON escreve envelope de sucesso.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(SuccessEnvelope{Data: data, Error: nil})
}

// WriteError escreve envelope de erro e mantém formato consistente.
func WriteError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Data:  nil,
		Error: &ErrorBody{Code: code, Message: message, Details: details},
	})
}

// writeServiceError traduz erros de domínio para o envelope padrão.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *util.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteError(w, http.StatusBadRequest, "VALIDATION", verr.Error(), verr.Fields)
	case errors.Is(err, tarefa.ErrNaoEncontrada),
		errors.Is(err, usuario.ErrNaoEncontrado),
		errors.Is(err, usuario.ErrDocumentoNaoEncontrado),
		errors.Is(err, peca.ErrNaoEncontrada),
		errors.Is(err, peca.ErrCompartilhamentoNaoEncontrado),
		errors.Is(err, peca.ErrSemArquivo),
		errors.Is(err, cliente.ErrNaoEncontrado):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, usuario.ErrEmailDuplicado),
		errors.Is(err, peca.ErrCompartilhamentoDuplicado):
		WriteError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.Is(err, tokens.ErrSaldoInsuficiente):
		WriteError(w, http.StatusUnprocessableEntity, "INSUFFICIENT_TOKENS", err.Error(), nil)
	case errors.Is(err, peca.ErrSemPermissao):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	default:
		log.Error().Err(err).Msg("falha não tratada")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeInvalidJSON(w http.ResponseWriter) {
	WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
}

func pathParam(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}
