/*
Copyright 2026 ChatIQA Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package transport carries one persona turn to a remote chat completion
// endpoint and returns the assistant's reply text.
//
// Three API families are supported, each with its own content shape:
//
//   - Gemini: "parts" encoding, image bytes as inline_data blobs
//   - OpenAI-compatible: flat content, images as image_url data URIs
//   - Claude: content blocks, images as base64 image blocks
//
// All backends satisfy the same Client contract and collapse every
// failure mode into *Error. Conversation state never lives here: callers
// pass the full ordered history on each call and mutate their session
// only after a successful reply.
package transport
