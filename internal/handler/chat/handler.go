// Package chat exposes the chat proxy endpoint and conversation CRUD.
package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/liuwen/deepchat/internal/auth"
	chatservice "github.com/liuwen/deepchat/internal/service/chat"
	"github.com/liuwen/deepchat/pkg/utils"
)

// Handler serves the chat HTTP surface.
type Handler struct {
	chatSvc *chatservice.Service
}

// New creates the chat handler.
func New(chatSvc *chatservice.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/ai", h.handleSend)
	r.Post("/chat/create", h.handleCreate)
	r.Get("/chat/get", h.handleList)
	r.Post("/chat/rename", h.handleRename)
	r.Post("/chat/delete", h.handleDelete)
}

// handleSend is the proxy endpoint: it authenticates the caller, drives the
// send pipeline, and converts every failure into the JSON envelope.
func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		// Legacy shape: the unauthenticated case keeps its message verbatim.
		utils.RespondFailure(w, http.StatusUnauthorized, utils.KindUnauthorized, "User not authenticated")
		return
	}

	var payload struct {
		ChatID string `json:"chatId"`
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondFailure(w, http.StatusBadRequest, utils.KindBadRequest, "invalid request body")
		return
	}
	if payload.ChatID == "" {
		utils.RespondFailure(w, http.StatusBadRequest, utils.KindBadRequest, "chatId is required")
		return
	}
	if strings.TrimSpace(payload.Prompt) == "" {
		utils.RespondFailure(w, http.StatusBadRequest, utils.KindBadRequest, "prompt is required")
		return
	}

	conv, err := h.chatSvc.SendTurn(r.Context(), userID, payload.ChatID, payload.Prompt)
	if err != nil {
		status, kind := classify(err)
		utils.RespondFailure(w, status, kind, err.Error())
		return
	}

	utils.RespondSuccess(w, http.StatusOK, conv)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utils.RespondFailure(w, http.StatusUnauthorized, utils.KindUnauthorized, "User not authenticated")
		return
	}

	conv, err := h.chatSvc.CreateConversation(r.Context(), userID)
	if err != nil {
		status, kind := classify(err)
		utils.RespondFailure(w, status, kind, err.Error())
		return
	}

	utils.RespondSuccess(w, http.StatusCreated, conv)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utils.RespondFailure(w, http.StatusUnauthorized, utils.KindUnauthorized, "User not authenticated")
		return
	}

	convs, err := h.chatSvc.ListConversations(r.Context(), userID)
	if err != nil {
		status, kind := classify(err)
		utils.RespondFailure(w, status, kind, err.Error())
		return
	}

	utils.RespondSuccess(w, http.StatusOK, convs)
}

func (h *Handler) handleRename(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utils.RespondFailure(w, http.StatusUnauthorized, utils.KindUnauthorized, "User not authenticated")
		return
	}

	var payload struct {
		ChatID string `json:"chatId"`
		Title  string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondFailure(w, http.StatusBadRequest, utils.KindBadRequest, "invalid request body")
		return
	}
	if payload.ChatID == "" || strings.TrimSpace(payload.Title) == "" {
		utils.RespondFailure(w, http.StatusBadRequest, utils.KindBadRequest, "chatId and title are required")
		return
	}

	conv, err := h.chatSvc.RenameConversation(r.Context(), userID, payload.ChatID, payload.Title)
	if err != nil {
		status, kind := classify(err)
		utils.RespondFailure(w, status, kind, err.Error())
		return
	}

	utils.RespondSuccess(w, http.StatusOK, conv)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utils.RespondFailure(w, http.StatusUnauthorized, utils.KindUnauthorized, "User not authenticated")
		return
	}

	var payload struct {
		ChatID string `json:"chatId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondFailure(w, http.StatusBadRequest, utils.KindBadRequest, "invalid request body")
		return
	}
	if payload.ChatID == "" {
		utils.RespondFailure(w, http.StatusBadRequest, utils.KindBadRequest, "chatId is required")
		return
	}

	if err := h.chatSvc.DeleteConversation(r.Context(), userID, payload.ChatID); err != nil {
		status, kind := classify(err)
		utils.RespondFailure(w, status, kind, err.Error())
		return
	}

	utils.RespondSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// classify maps pipeline errors to an HTTP status and envelope kind.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, chatservice.ErrNotFound):
		return http.StatusNotFound, utils.KindNotFound
	case errors.Is(err, chatservice.ErrTimeout):
		return http.StatusGatewayTimeout, utils.KindTimeout
	case errors.Is(err, chatservice.ErrProviderFailure):
		return http.StatusBadGateway, utils.KindProvider
	case errors.Is(err, chatservice.ErrPersistenceFailure):
		return http.StatusInternalServerError, utils.KindPersistence
	default:
		return http.StatusInternalServerError, utils.KindInternal
	}
}
