/*
Copyright 2026 ChatIQA Authors
SPDX-License-Identifier: Apache-2.0
*/

package transport

import (
	"context"
	"errors"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/DDDOOONNN/ChatIQA/agents/codec"
	"github.com/DDDOOONNN/ChatIQA/agents/session"
)

// OpenAI sends conversations through an OpenAI-compatible chat completion
// endpoint using the flat content encoding with image_url data URIs. A
// custom base URL points it at OneAPI-style proxies.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI creates an OpenAI-compatible client. baseURL may be empty for
// the default endpoint.
func NewOpenAI(apiKey, baseURL, model string) *OpenAI {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAI{client: openai.NewClient(opts...), model: model}
}

// Send implements Client.
func (o *OpenAI) Send(ctx context.Context, history []session.Turn, msg session.Turn) (string, error) {
	msgs, err := codec.OpenAIHistory(append(append([]session.Turn{}, history...), msg))
	if err != nil {
		return "", failed("encoding conversation", err)
	}

	clog.FromContext(ctx).With("model", o.model).
		With("messages", len(msgs)).
		Debug("Sending chat completion request")

	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: msgs,
	})
	if err != nil {
		return "", failed("chat completion", err)
	}
	if len(completion.Choices) == 0 {
		return "", failed("reading response", errors.New("no choices in completion"))
	}

	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return "", failed("reading response", errors.New("empty completion message"))
	}
	return text, nil
}
