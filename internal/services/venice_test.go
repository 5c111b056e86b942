package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glitchtale/engine/pkg/chat"
)

func TestVeniceGenerateResponse(t *testing.T) {
	var captured VeniceChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		resp := VeniceChatResponse{}
		resp.Choices = []VeniceChatChoice{{}}
		resp.Choices[0].Message.Content = `{"narrative":"the hull groans"}`
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	svc := NewVeniceService("test-key", "test-model", testLogger())
	svc.baseURL = server.URL

	reply, err := svc.GenerateResponse(context.Background(), []chat.PromptMessage{
		{Role: chat.PromptRoleUser, Content: "listen"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"narrative":"the hull groans"}`, reply)

	// The structured-reply schema rides along on every request.
	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, "json_schema", captured.ResponseFormat.Type)
	assert.Equal(t, "narrative_response", captured.ResponseFormat.JSONSchema.Name)
	assert.NotEmpty(t, captured.ResponseFormat.JSONSchema.Schema)
	assert.False(t, captured.VeniceParameters.IncludeVeniceSystemPrompt)
}

func TestVeniceMissingKey(t *testing.T) {
	svc := NewVeniceService("", "test-model", testLogger())
	_, err := svc.GenerateResponse(context.Background(), nil)

	var llmErr *LLMError
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, CategoryMissingKey, llmErr.Category())
}

func TestVeniceEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(VeniceChatResponse{})
	}))
	defer server.Close()

	svc := NewVeniceService("test-key", "test-model", testLogger())
	svc.baseURL = server.URL

	reply, err := svc.GenerateResponse(context.Background(), []chat.PromptMessage{
		{Role: chat.PromptRoleUser, Content: "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, msgNoResponse, reply)
}

func TestVeniceServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewVeniceService("test-key", "test-model", testLogger())
	svc.baseURL = server.URL

	_, err := svc.GenerateResponse(context.Background(), []chat.PromptMessage{
		{Role: chat.PromptRoleUser, Content: "x"},
	})
	var llmErr *LLMError
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, CategoryUnavailable, llmErr.Category())
}
