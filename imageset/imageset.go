/*
Copyright 2026 ChatIQA Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package imageset loads source images by 4-digit sequence number and
// encodes them as transportable attachments.
package imageset

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	// Decoders for the formats the image databases carry.
	_ "image/jpeg"
	_ "image/png"

	"github.com/DDDOOONNN/ChatIQA/agents/session"
)

// ErrNotFound signals a missing source image. Callers record a sentinel
// and continue; it is never fatal to a batch.
var ErrNotFound = errors.New("image not found")

// DecodeError signals unreadable or unconvertible image bytes.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding image %s: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Source yields images from a directory following the Prefix####.ext
// naming scheme, e.g. DatabaseImage0001.jpg.
type Source struct {
	Dir    string
	Prefix string
	Ext    string
}

// Name returns the filename for sequence number n.
func (s Source) Name(n int) string {
	return fmt.Sprintf("%s%04d%s", s.Prefix, n, s.Ext)
}

// Load reads and encodes image n. Returns ErrNotFound when the file does
// not exist and a *DecodeError when its bytes are not a decodable image.
func (s Source) Load(n int) (*session.Attachment, error) {
	return LoadFile(filepath.Join(s.Dir, s.Name(n)))
}

// LoadFile reads and encodes an image at an explicit path, for the fixed
// comparison image that sits outside the numbered sequence.
func LoadFile(path string) (*session.Attachment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrNotFound)
		}
		return nil, fmt.Errorf("reading image %s: %w", filepath.Base(path), err)
	}

	// Validate decodability up front so corrupt files surface here, not
	// as opaque remote rejections mid-conversation.
	_, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, &DecodeError{Name: filepath.Base(path), Err: err}
	}

	return &session.Attachment{
		MIMEType: "image/" + format,
		Base64:   base64.StdEncoding.EncodeToString(raw),
	}, nil
}

// DataURI renders an attachment in data-URI form for sinks and logs.
func DataURI(a *session.Attachment) string {
	return fmt.Sprintf("data:%s;base64,%s", a.MIMEType, a.Base64)
}
