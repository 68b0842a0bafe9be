/*
Copyright 2026 ChatIQA Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package codec builds the wire-level message objects the remote API
// families expect. Three content shapes are supported: the Gemini "parts"
// encoding with inline_data blobs, the OpenAI-compatible flat content
// encoding with image_url data URIs, and the Claude base64 image block
// encoding. The codec performs no validation of text content; it fails
// only when an attachment lacks a MIME type.
package codec

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
	"google.golang.org/genai"

	"github.com/DDDOOONNN/ChatIQA/agents/session"
)

// ErrMissingMIMEType is returned when a turn carries an attachment
// without a MIME type.
var ErrMissingMIMEType = errors.New("attachment requires a MIME type")

func checkAttachment(a *session.Attachment) error {
	if a != nil && a.MIMEType == "" {
		return ErrMissingMIMEType
	}
	return nil
}

// dataURI renders an attachment as a base64 data URI for APIs that take
// image references rather than sibling inline parts.
func dataURI(a *session.Attachment) string {
	return fmt.Sprintf("data:%s;base64,%s", a.MIMEType, a.Base64)
}

// GeminiContent encodes one turn as a Gemini content with text and
// inline-image data as sibling parts.
func GeminiContent(t session.Turn) (*genai.Content, error) {
	if err := checkAttachment(t.Attachment); err != nil {
		return nil, err
	}

	role := genai.RoleUser
	if t.Sender == session.SenderModel || t.Sender == session.SenderSystem {
		// Persona instructions ride as a leading model turn when the
		// caller keeps them in history rather than in system config.
		role = genai.RoleModel
	}

	parts := []*genai.Part{{Text: t.Text}}
	if t.Attachment != nil {
		data, err := base64.StdEncoding.DecodeString(t.Attachment.Base64)
		if err != nil {
			return nil, fmt.Errorf("decoding attachment payload: %w", err)
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: t.Attachment.MIMEType,
				Data:     data,
			},
		})
	}

	return &genai.Content{Role: role, Parts: parts}, nil
}

// GeminiHistory encodes an ordered turn sequence for a stateless
// generate-content call.
func GeminiHistory(turns []session.Turn) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		c, err := GeminiContent(t)
		if err != nil {
			return nil, err
		}
		contents = append(contents, c)
	}
	return contents, nil
}

// OpenAIMessage encodes one turn in the flat content shape, with image
// data carried as an image_url data URI.
func OpenAIMessage(t session.Turn) (openai.ChatCompletionMessageParamUnion, error) {
	if err := checkAttachment(t.Attachment); err != nil {
		return openai.ChatCompletionMessageParamUnion{}, err
	}

	switch t.Sender {
	case session.SenderSystem:
		return openai.SystemMessage(t.Text), nil
	case session.SenderModel:
		return openai.AssistantMessage(t.Text), nil
	}

	if t.Attachment == nil {
		return openai.UserMessage(t.Text), nil
	}
	return openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(t.Text),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: dataURI(t.Attachment),
		}),
	}), nil
}

// OpenAIHistory encodes an ordered turn sequence, instruction first.
func OpenAIHistory(turns []session.Turn) ([]openai.ChatCompletionMessageParamUnion, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, t := range turns {
		m, err := OpenAIMessage(t)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// ClaudeMessage encodes one non-system turn as a Claude message with text
// and base64 image blocks. Instruction turns belong in the request's
// system field and are the transport's concern.
func ClaudeMessage(t session.Turn) (anthropic.MessageParam, error) {
	if err := checkAttachment(t.Attachment); err != nil {
		return anthropic.MessageParam{}, err
	}

	role := anthropic.MessageParamRoleUser
	if t.Sender == session.SenderModel {
		role = anthropic.MessageParamRoleAssistant
	}

	blocks := []anthropic.ContentBlockParamUnion{
		anthropic.NewTextBlock(t.Text),
	}
	if t.Attachment != nil {
		blocks = append(blocks, anthropic.NewImageBlockBase64(t.Attachment.MIMEType, t.Attachment.Base64))
	}

	return anthropic.MessageParam{Role: role, Content: blocks}, nil
}
