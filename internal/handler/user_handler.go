package handler

import (
	"encoding/json"
	"net/http"
)

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type createOrderRequest struct {
	ItemID   json.RawMessage `json:"item_id"`
	Quantity json.RawMessage `json:"quantity"`
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgUserNotFound)
		return
	}

	u, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidData)
		return
	}

	id, err := h.users.CreateUser(r.Context(), req.Name, req.Email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "User created successfully", "id": id})
}

// CreateOrder places an order for the user in the path.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgUserNotFound)
		return
	}

	// Unparseable values go through as zero so the service reports a missing user
	// ahead of the malformed body.
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = createOrderRequest{}
	}
	itemID, err := parseInt(req.ItemID)
	if err != nil {
		itemID = 0
	}
	quantity, err := parseInt(req.Quantity)
	if err != nil {
		quantity = 0
	}

	order, err := h.users.CreateOrder(r.Context(), userID, itemID, quantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Order created successfully", "id": order.ID})
}
