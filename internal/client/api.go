// Package client implements the chat client core: the server API wrapper,
// the local conversation replica, and the send lifecycle.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/liuwen/deepchat/internal/model/chat"
)

// Sender issues the chat-send network call.
type Sender interface {
	Send(ctx context.Context, chatID, promptText string) (chat.Conversation, error)
}

// APIError is a structured failure reported by the chat service.
type APIError struct {
	Kind    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind
}

// API is a typed HTTP client for the chat service. Requests carry the
// session bearer token; there is no client-side timeout beyond the
// platform's own, and no retry.
type API struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewAPI creates a client for the service at baseURL.
func NewAPI(baseURL, token string) *API {
	return &API{baseURL: baseURL, token: token, httpc: &http.Client{}}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
}

// Send posts one prompt to the proxy endpoint and returns the updated
// conversation.
func (a *API) Send(ctx context.Context, chatID, promptText string) (chat.Conversation, error) {
	var conv chat.Conversation
	payload := map[string]string{"chatId": chatID, "prompt": promptText}
	if err := a.do(ctx, http.MethodPost, "/api/chat/ai", payload, &conv); err != nil {
		return chat.Conversation{}, err
	}
	return conv, nil
}

// CreateConversation provisions a new empty conversation for the caller.
func (a *API) CreateConversation(ctx context.Context) (chat.Conversation, error) {
	var conv chat.Conversation
	if err := a.do(ctx, http.MethodPost, "/api/chat/create", map[string]string{}, &conv); err != nil {
		return chat.Conversation{}, err
	}
	return conv, nil
}

// ListConversations fetches the caller's conversations, newest first.
func (a *API) ListConversations(ctx context.Context) ([]chat.Conversation, error) {
	var convs []chat.Conversation
	if err := a.do(ctx, http.MethodGet, "/api/chat/get", nil, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

func (a *API) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}

	if !env.Success {
		return &APIError{Kind: env.Kind, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode payload from %s: %w", path, err)
		}
	}
	return nil
}
