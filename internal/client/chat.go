package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/querio-io/qapi/internal/http"
	"github.com/querio-io/qapi/pkg/qapi"
)

// ChatClient implements qapi.ChatClient.
type ChatClient struct {
	httpClient *http.Client
}

// NewChatClient creates a new chat client.
func NewChatClient(httpClient *http.Client) *ChatClient {
	return &ChatClient{httpClient: httpClient}
}

// CreateConversation implements qapi.ChatClient.CreateConversation.
func (c *ChatClient) CreateConversation(ctx context.Context, request *qapi.ConversationCreateRequest) (*qapi.Conversation, error) {
	if request == nil {
		return nil, qapi.ErrRequestRequired
	}

	resp, err := c.httpClient.Post(ctx, "/v1/conversations", request)
	if err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}

	var conversation qapi.Conversation
	if err := json.Unmarshal(resp.Body, &conversation); err != nil {
		return nil, fmt.Errorf("parsing conversation response: %w", err)
	}

	return &conversation, nil
}

// ListConversations implements qapi.ChatClient.ListConversations.
func (c *ChatClient) ListConversations(ctx context.Context, params *qapi.QueryParams) (*qapi.ListResponse[qapi.Conversation], error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, "/v1/conversations", query)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}

	var result qapi.ListResponse[qapi.Conversation]
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parsing conversations list response: %w", err)
	}

	return &result, nil
}

// Send implements qapi.ChatClient.Send.
func (c *ChatClient) Send(ctx context.Context, request *qapi.ChatRequest) (*qapi.ChatCompletion, error) {
	if request == nil {
		return nil, qapi.ErrRequestRequired
	}

	resp, err := c.httpClient.Post(ctx, "/v1/chat", request)
	if err != nil {
		return nil, fmt.Errorf("sending chat message: %w", err)
	}

	var completion qapi.ChatCompletion
	if err := json.Unmarshal(resp.Body, &completion); err != nil {
		return nil, fmt.Errorf("parsing chat completion response: %w", err)
	}

	return &completion, nil
}

// Stream implements qapi.ChatClient.Stream.
func (c *ChatClient) Stream(ctx context.Context, request *qapi.ChatRequest) (qapi.StreamOrResult[qapi.ChatCompletion], error) {
	if request == nil {
		return qapi.StreamOrResult[qapi.ChatCompletion]{}, qapi.ErrRequestRequired
	}

	return openStream[qapi.ChatCompletion](ctx, c.httpClient, &http.Request{
		Method: "POST",
		Path:   "/v1/chat/stream",
		Body:   request,
	})
}
