package http

import (
	"net/http"

	httpmiddleware "github.com/escritoriodigital/api/internal/http/middleware"
	"github.com/escritoriodigital/api/internal/listview"
	"github.com/escritoriodigital/api/internal/usuario"
)

// ListUsuarios aplica busca, filtros e ordenação à lista de usuários internos.
func (h *Handler) ListUsuarios(w http.ResponseWriter, r *http.Request) {
	criteria := listview.CriteriaFromQuery(r.URL.Query(), usuario.ListFilters...)
	items, err := h.usuarios.List(r.Context(), criteria)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) GetUsuario(w http.ResponseWriter, r *http.Request) {
	u, err := h.usuarios.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) CreateUsuario(w http.ResponseWriter, r *http.Request) {
	var payload usuario.Input
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}

	u, err := h.usuarios.Create(r.Context(), payload, httpmiddleware.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) UpdateUsuario(w http.ResponseWriter, r *http.Request) {
	var payload usuario.Input
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}

	u, err := h.usuarios.Update(r.Context(), pathParam(r, "id"), payload, httpmiddleware.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, u)
}

// ToggleUsuarioStatus alterna entre ativo e inativo.
func (h *Handler) ToggleUsuarioStatus(w http.ResponseWriter, r *http.Request) {
	u, err := h.usuarios.ToggleStatus(r.Context(), pathParam(r, "id"), httpmiddleware.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) DeleteUsuario(w http.ResponseWriter, r *http.Request) {
	if err := h.usuarios.Delete(r.Context(), pathParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UploadUsuarioFoto(w http.ResponseWriter, r *http.Request) {
	file, ok := readUpload(w, r)
	if !ok {
		return
	}

	u, err := h.usuarios.SetPhoto(r.Context(), pathParam(r, "id"), file, httpmiddleware.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, u)
}

// UploadUsuarioDocumento recebe o arquivo e o tipo (campo "tipo") do documento.
func (h *Handler) UploadUsuarioDocumento(w http.ResponseWriter, r *http.Request) {
	file, ok := readUpload(w, r)
	if !ok {
		return
	}

	doc, err := h.usuarios.AddDocument(r.Context(), pathParam(r, "id"), r.FormValue("tipo"), file, httpmiddleware.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, doc)
}

func (h *Handler) DeleteUsuarioDocumento(w http.ResponseWriter, r *http.Request) {
	u, err := h.usuarios.RemoveDocument(r.Context(), pathParam(r, "id"), pathParam(r, "docID"), httpmiddleware.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) ListUsuarioAuditoria(w http.ResponseWriter, r *http.Request) {
	criteria := listview.CriteriaFromQuery(r.URL.Query(), usuario.AuditFilters...)
	items, err := h.usuarios.Audit(r.Context(), pathParam(r, "id"), criteria)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}
