package http

import (
	"net/http"

	httpmiddleware "github.com/escritoriodigital/api/internal/http/middleware"
	"github.com/escritoriodigital/api/internal/listview"
	"github.com/escritoriodigital/api/internal/tarefa"
)

// ListTarefas aplica busca, filtros e ordenação à lista de tarefas.
func (h *Handler) ListTarefas(w http.ResponseWriter, r *http.Request) {
	criteria := listview.CriteriaFromQuery(r.URL.Query(), tarefa.ListFilters...)
	items, err := h.tarefas.List(r.Context(), criteria)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) GetTarefa(w http.ResponseWriter, r *http.Request) {
	t, err := h.tarefas.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) CreateTarefa(w http.ResponseWriter, r *http.Request) {
	var payload tarefa.Input
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}

	t, err := h.tarefas.Create(r.Context(), payload, httpmiddleware.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) UpdateTarefa(w http.ResponseWriter, r *http.Request) {
	var payload tarefa.Input
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}

	t, err := h.tarefas.Update(r.Context(), pathParam(r, "id"), payload, httpmiddleware.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

// UpdateTarefaStatus troca só o status, usado pelo quadro de tarefas.
func (h *Handler) UpdateTarefaStatus(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}

	t, err := h.tarefas.UpdateStatus(r.Context(), pathParam(r, "id"), payload.Status, httpmiddleware.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) DeleteTarefa(w http.ResponseWriter, r *http.Request) {
	if err := h.tarefas.Delete(r.Context(), pathParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UploadTarefaAnexo(w http.ResponseWriter, r *http.Request) {
	file, ok := readUpload(w, r)
	if !ok {
		return
	}

	anexo, err := h.tarefas.AddAttachment(r.Context(), pathParam(r, "id"), file, httpmiddleware.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, anexo)
}

func (h *Handler) ListTarefaHistorico(w http.ResponseWriter, r *http.Request) {
	criteria := listview.CriteriaFromQuery(r.URL.Query())
	items, err := h.tarefas.History(r.Context(), pathParam(r, "id"), criteria)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}
