package http

import (
	"net/http"
	"strings"
)

// ListClientes devolve o catálogo; q filtra por nome ou documento.
func (h *Handler) ListClientes(w http.ResponseWriter, r *http.Request) {
	items, err := h.clientes.ListClientes(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q"))); q != "" {
		filtered := items[:0:0]
		for _, c := range items {
			if strings.Contains(strings.ToLower(c.Nome), q) || strings.Contains(c.Documento, q) {
				filtered = append(filtered, c)
			}
		}
		items = filtered
	}
	WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) GetCliente(w http.ResponseWriter, r *http.Request) {
	c, err := h.clientes.GetCliente(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) ListClienteProcessos(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if _, err := h.clientes.GetCliente(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	items, err := h.clientes.ListProcessos(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}
