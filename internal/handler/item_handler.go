package handler

import (
	"encoding/json"
	"net/http"
)

type itemRequest struct {
	Name  string          `json:"name"`
	Price json.RawMessage `json:"price"`
}

func decodeItem(r *http.Request) (string, float64, bool) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", 0, false
	}
	price, err := parseFloat(req.Price)
	if err != nil {
		return "", 0, false
	}
	return req.Name, price, true
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.ListItems(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgItemNotFound)
		return
	}

	it, err := h.items.GetItem(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	name, price, ok := decodeItem(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidData)
		return
	}

	id, err := h.items.CreateItem(r.Context(), name, price)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Item created successfully", "id": id})
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgItemNotFound)
		return
	}

	name, price, ok := decodeItem(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidData)
		return
	}

	it, err := h.items.UpdateItem(r.Context(), id, name, price)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Item updated successfully", "id": it.ID})
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgItemNotFound)
		return
	}

	if err := h.items.DeleteItem(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Item deleted successfully"})
}
