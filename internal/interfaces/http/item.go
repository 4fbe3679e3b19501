package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"grocery/internal/domain/item"
)

// maxBodyBytes caps request bodies for item writes.
const maxBodyBytes = 16 << 10

// ItemService is the part of item.Service the handlers depend on.
type ItemService interface {
	List(ctx context.Context) ([]*item.Item, error)
	Get(ctx context.Context, id int64) (*item.Item, error)
	Create(ctx context.Context, params item.CreateParams) (*item.Item, error)
	Replace(ctx context.Context, id int64, params item.ReplaceParams) error
	Delete(ctx context.Context, id int64) error
}

type ItemHandler struct {
	service ItemService
}

func NewItemHandler(service ItemService) *ItemHandler {
	return &ItemHandler{service: service}
}

// Request/Response DTOs

type CreateItemRequest struct {
	Name       string `json:"name"`
	CheckedOff bool   `json:"checked_off"`
	Position   *int   `json:"position,omitempty"`
}

// ReplaceItemRequest is the full item as sent back by clients. id,
// checked_off_at and created_at are accepted but managed by the server.
type ReplaceItemRequest struct {
	ID           *int64     `json:"id,omitempty"`
	Name         string     `json:"name"`
	CheckedOff   bool       `json:"checked_off"`
	Position     *int       `json:"position,omitempty"`
	CheckedOffAt *time.Time `json:"checked_off_at,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

type ItemResponse struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	CheckedOff   bool       `json:"checked_off"`
	Position     int        `json:"position"`
	CheckedOffAt *time.Time `json:"checked_off_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

func toItemResponse(it *item.Item) ItemResponse {
	return ItemResponse{
		ID:           it.ID,
		Name:         it.Name,
		CheckedOff:   it.CheckedOff,
		Position:     it.Position,
		CheckedOffAt: it.CheckedOffAt,
		CreatedAt:    it.CreatedAt,
	}
}

// HandleItems routes requests to the appropriate handler based on method
func (h *ItemHandler) HandleItems(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListItems(w, r)
	case http.MethodPost:
		h.handleCreateItem(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleItemByID routes requests for a specific item
func (h *ItemHandler) HandleItemByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGetItem(w, r)
	case http.MethodPut:
		h.handleReplaceItem(w, r)
	case http.MethodDelete:
		h.handleDeleteItem(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleListItems sweeps expired items and returns the rest in position order
func (h *ItemHandler) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		writeItemError(w, err, "list items")
		return
	}

	response := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		response = append(response, toItemResponse(it))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *ItemHandler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		http.Error(w, "Item not found", http.StatusNotFound)
		return
	}

	it, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeItemError(w, err, "get item")
		return
	}

	writeJSON(w, http.StatusOK, toItemResponse(it))
}

// handleCreateItem creates a new item
func (h *ItemHandler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding create item request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	it, err := h.service.Create(r.Context(), item.CreateParams{
		Name:       req.Name,
		CheckedOff: req.CheckedOff,
		Position:   req.Position,
	})
	if err != nil {
		writeItemErrorStatus(w, err, "create item", CreateStatusFor)
		return
	}

	writeJSON(w, http.StatusCreated, toItemResponse(it))
}

// handleReplaceItem overwrites an existing item. A missing position keeps
// the item where it is.
func (h *ItemHandler) handleReplaceItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		http.Error(w, "Item not found", http.StatusNotFound)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req ReplaceItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding replace item request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params := item.ReplaceParams{
		Name:       req.Name,
		CheckedOff: req.CheckedOff,
		Position:   req.Position,
	}

	if err := h.service.Replace(r.Context(), id, params); err != nil {
		writeItemError(w, err, "replace item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteItem deletes an item and closes the gap it leaves
func (h *ItemHandler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		http.Error(w, "Item not found", http.StatusNotFound)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeItemError(w, err, "delete item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// itemID parses the {id} path segment. Anything that is not a positive
// integer cannot name an item.
func itemID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
