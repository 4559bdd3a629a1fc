package http

import (
	"net/http"

	httpmiddleware "github.com/escritoriodigital/api/internal/http/middleware"
	"github.com/escritoriodigital/api/internal/listview"
	"github.com/escritoriodigital/api/internal/peca"
)

// ListPecas aplica busca, filtros e ordenação às peças jurídicas.
func (h *Handler) ListPecas(w http.ResponseWriter, r *http.Request) {
	criteria := listview.CriteriaFromQuery(r.URL.Query(), peca.ListFilters...)
	items, err := h.pecas.List(r.Context(), criteria)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) GetPeca(w http.ResponseWriter, r *http.Request) {
	p, err := h.pecas.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// CreatePeca consome tokens e gera a primeira resposta do assistente.
func (h *Handler) CreatePeca(w http.ResponseWriter, r *http.Request) {
	var payload peca.Input
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}

	p, err := h.pecas.Create(r.Context(), payload, httpmiddleware.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) ReviewPeca(w http.ResponseWriter, r *http.Request) {
	file, ok := readUpload(w, r)
	if !ok {
		return
	}

	p, err := h.pecas.Review(r.Context(), file, httpmiddleware.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) ContinuePeca(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Prompt string `json:"prompt"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}

	p, err := h.pecas.Continue(r.Context(), pathParam(r, "id"), payload.Prompt, httpmiddleware.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) IntegratePecaCliente(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ClienteID string `json:"cliente_id"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}

	p, err := h.pecas.IntegrateClient(r.Context(), pathParam(r, "id"), payload.ClienteID, httpmiddleware.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) SharePeca(w http.ResponseWriter, r *http.Request) {
	var payload peca.ShareInput
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}

	grant, err := h.pecas.Share(r.Context(), pathParam(r, "id"), payload, httpmiddleware.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, grant)
}

func (h *Handler) UnsharePeca(w http.ResponseWriter, r *http.Request) {
	p, err := h.pecas.Unshare(r.Context(), pathParam(r, "id"), pathParam(r, "grantID"), httpmiddleware.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// ExportPeca devolve os metadados do arquivo gerado; o conteúdo sai por /arquivos.
func (h *Handler) ExportPeca(w http.ResponseWriter, r *http.Request) {
	arquivo, err := h.pecas.Export(r.Context(), pathParam(r, "id"), httpmiddleware.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, arquivo)
}

func (h *Handler) DeletePeca(w http.ResponseWriter, r *http.Request) {
	if err := h.pecas.Delete(r.Context(), pathParam(r, "id"), httpmiddleware.GetIdentity(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
