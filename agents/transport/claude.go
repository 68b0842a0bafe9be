/*
Copyright 2026 ChatIQA Authors
SPDX-License-Identifier: Apache-2.0
*/

package transport

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/chainguard-dev/clog"

	"github.com/DDDOOONNN/ChatIQA/agents/codec"
	"github.com/DDDOOONNN/ChatIQA/agents/session"
)

// Claude sends conversations through the Anthropic Messages API using
// base64 image blocks.
type Claude struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewClaude creates a Claude-backed client.
func NewClaude(apiKey, model string) *Claude {
	return &Claude{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: 8192,
	}
}

// Send implements Client.
func (c *Claude) Send(ctx context.Context, history []session.Turn, msg session.Turn) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
	}

	turns := append(append([]session.Turn{}, history...), msg)
	if len(turns) > 0 && turns[0].Sender == session.SenderSystem {
		params.System = []anthropic.TextBlockParam{{Text: turns[0].Text}}
		turns = turns[1:]
	}

	messages := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		m, err := codec.ClaudeMessage(t)
		if err != nil {
			return "", failed("encoding conversation", err)
		}
		messages = append(messages, m)
	}
	params.Messages = messages

	clog.FromContext(ctx).With("model", c.model).
		With("messages", len(messages)).
		Debug("Sending Claude message request")

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", failed("create message", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" && block.Text != "" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", failed("reading response", errors.New("no text block in message"))
}
