/*
Copyright 2026 ChatIQA Authors
SPDX-License-Identifier: Apache-2.0
*/

package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"
	"google.golang.org/genai"

	"github.com/DDDOOONNN/ChatIQA/agents/codec"
	"github.com/DDDOOONNN/ChatIQA/agents/session"
)

// Gemini sends conversations through the Google Gemini API using the
// parts encoding with inline image data.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini-backed client. The underlying genai client
// is a process-wide singleton in practice: callers construct one Gemini
// and share it across every session.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Send implements Client.
func (g *Gemini) Send(ctx context.Context, history []session.Turn, msg session.Turn) (string, error) {
	config := &genai.GenerateContentConfig{}

	// The instruction turn rides as system config rather than history.
	if len(history) > 0 && history[0].Sender == session.SenderSystem {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: history[0].Text}},
		}
		history = history[1:]
	}

	contents, err := codec.GeminiHistory(append(append([]session.Turn{}, history...), msg))
	if err != nil {
		return "", failed("encoding conversation", err)
	}

	clog.FromContext(ctx).With("model", g.model).
		With("turns", len(contents)).
		Debug("Sending Gemini generate content request")

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", failed("generate content", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", failed("reading response", err)
	}
	return text, nil
}

// responseText extracts the first text part of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("no content parts in candidate")
	}
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			return strings.TrimSpace(part.Text), nil
		}
	}
	return "", errors.New("no text part in candidate")
}
