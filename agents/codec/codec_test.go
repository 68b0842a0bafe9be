/*
Copyright 2026 ChatIQA Authors
SPDX-License-Identifier: Apache-2.0
*/

package codec_test

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"

	"github.com/DDDOOONNN/ChatIQA/agents/codec"
	"github.com/DDDOOONNN/ChatIQA/agents/session"
)

func pngAttachment(t *testing.T) (*session.Attachment, []byte) {
	t.Helper()
	raw := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	return &session.Attachment{
		MIMEType: "image/png",
		Base64:   base64.StdEncoding.EncodeToString(raw),
	}, raw
}

func TestGeminiContent_TextAndInlineData(t *testing.T) {
	t.Parallel()
	att, raw := pngAttachment(t)

	c, err := codec.GeminiContent(session.Turn{
		Sender:     session.SenderUser,
		Text:       "assess this image",
		Attachment: att,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Role != genai.RoleUser {
		t.Errorf("Role = %q, want %q", c.Role, genai.RoleUser)
	}
	if len(c.Parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(c.Parts))
	}
	if c.Parts[0].Text != "assess this image" {
		t.Errorf("text part = %q", c.Parts[0].Text)
	}
	blob := c.Parts[1].InlineData
	if blob == nil {
		t.Fatal("expected inline data part")
	}
	if blob.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q, want image/png", blob.MIMEType)
	}
	if diff := cmp.Diff(raw, blob.Data); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestGeminiContent_RoleMapping(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		sender session.Sender
		want   genai.Role
	}{
		{session.SenderUser, genai.RoleUser},
		{session.SenderModel, genai.RoleModel},
		{session.SenderSystem, genai.RoleModel},
	} {
		c, err := codec.GeminiContent(session.Turn{Sender: tc.sender, Text: "x"})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.sender, err)
		}
		if genai.Role(c.Role) != tc.want {
			t.Errorf("%s: Role = %q, want %q", tc.sender, c.Role, tc.want)
		}
	}
}

func TestGeminiContent_MissingMIMEType(t *testing.T) {
	t.Parallel()
	_, err := codec.GeminiContent(session.Turn{
		Sender:     session.SenderUser,
		Text:       "x",
		Attachment: &session.Attachment{Base64: "aGk="},
	})
	if !errors.Is(err, codec.ErrMissingMIMEType) {
		t.Fatalf("expected ErrMissingMIMEType, got %v", err)
	}
}

func TestGeminiContent_BadPayload(t *testing.T) {
	t.Parallel()
	_, err := codec.GeminiContent(session.Turn{
		Sender:     session.SenderUser,
		Text:       "x",
		Attachment: &session.Attachment{MIMEType: "image/png", Base64: "not base64!!"},
	})
	if err == nil {
		t.Fatal("expected error for undecodable payload")
	}
}

func TestGeminiHistory_PreservesOrder(t *testing.T) {
	t.Parallel()
	turns := []session.Turn{
		{Sender: session.SenderSystem, Text: "instruction"},
		{Sender: session.SenderUser, Text: "question"},
		{Sender: session.SenderModel, Text: "answer"},
	}
	contents, err := codec.GeminiHistory(turns)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != len(turns) {
		t.Fatalf("expected %d contents, got %d", len(turns), len(contents))
	}
	for i, want := range []string{"instruction", "question", "answer"} {
		if got := contents[i].Parts[0].Text; got != want {
			t.Errorf("contents[%d] = %q, want %q", i, got, want)
		}
	}
}

// Encoding is a pure function of the turn: the same turn must always
// produce the same wire object.
func TestGeminiContent_Deterministic(t *testing.T) {
	t.Parallel()
	att, _ := pngAttachment(t)
	turn := session.Turn{Sender: session.SenderUser, Text: "assess", Attachment: att}

	a, err := codec.GeminiContent(turn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := codec.GeminiContent(turn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("repeated encoding differs (-first +second):\n%s", diff)
	}
}

func TestOpenAIMessage_Shapes(t *testing.T) {
	t.Parallel()
	att, _ := pngAttachment(t)

	sys, err := codec.OpenAIMessage(session.Turn{Sender: session.SenderSystem, Text: "instruction"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sys.OfSystem == nil {
		t.Error("system turn should encode as a system message")
	}

	asst, err := codec.OpenAIMessage(session.Turn{Sender: session.SenderModel, Text: "answer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if asst.OfAssistant == nil {
		t.Error("model turn should encode as an assistant message")
	}

	user, err := codec.OpenAIMessage(session.Turn{Sender: session.SenderUser, Text: "question", Attachment: att})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.OfUser == nil {
		t.Fatal("user turn should encode as a user message")
	}
	parts := user.OfUser.Content.OfArrayOfContentParts
	if len(parts) != 2 {
		t.Fatalf("expected text and image parts, got %d", len(parts))
	}
	if parts[0].OfText == nil || parts[0].OfText.Text != "question" {
		t.Error("first part should carry the turn text")
	}
	img := parts[1].OfImageURL
	if img == nil {
		t.Fatal("second part should be an image_url part")
	}
	want := "data:image/png;base64," + att.Base64
	if img.ImageURL.URL != want {
		t.Errorf("image URL = %q, want %q", img.ImageURL.URL, want)
	}
}

func TestOpenAIMessage_MissingMIMEType(t *testing.T) {
	t.Parallel()
	_, err := codec.OpenAIMessage(session.Turn{
		Sender:     session.SenderUser,
		Text:       "x",
		Attachment: &session.Attachment{Base64: "aGk="},
	})
	if !errors.Is(err, codec.ErrMissingMIMEType) {
		t.Fatalf("expected ErrMissingMIMEType, got %v", err)
	}
}

func TestClaudeMessage_Shapes(t *testing.T) {
	t.Parallel()
	att, _ := pngAttachment(t)

	msg, err := codec.ClaudeMessage(session.Turn{Sender: session.SenderUser, Text: "question", Attachment: att})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(msg.Role); got != "user" {
		t.Errorf("Role = %q, want user", got)
	}
	if len(msg.Content) != 2 {
		t.Fatalf("expected text and image blocks, got %d", len(msg.Content))
	}
	if txt := msg.Content[0].OfText; txt == nil || txt.Text != "question" {
		t.Error("first block should carry the turn text")
	}
	img := msg.Content[1].OfImage
	if img == nil {
		t.Fatal("second block should be an image block")
	}
	src := img.Source.OfBase64
	if src == nil {
		t.Fatal("image block should use a base64 source")
	}
	if string(src.MediaType) != "image/png" || src.Data != att.Base64 {
		t.Errorf("base64 source = (%s, %q)", src.MediaType, src.Data)
	}

	reply, err := codec.ClaudeMessage(session.Turn{Sender: session.SenderModel, Text: "answer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(reply.Role); got != "assistant" {
		t.Errorf("Role = %q, want assistant", got)
	}
}
