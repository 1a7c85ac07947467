// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"strings"
	"time"

	"github.com/jeranaias/parley/internal/model"
)

// =============================================================================
// TRANSCRIPT
// =============================================================================

// TranscriptTitle is the heading of every exported artifact.
const TranscriptTitle = "Parley Assistant Conversation"

// Entry is one message of the canonical transcript: role display name,
// display timestamp, and raw content.
type Entry struct {
	Role      string
	Timestamp string
	Content   string
}

// Transcript is the canonical in-memory form of a conversation, built once
// per export and shared by every renderer.
type Transcript struct {
	Title       string
	GeneratedAt time.Time
	Entries     []Entry
}

// NewTranscript builds the canonical transcript for a session.
func NewTranscript(sess *model.Session) *Transcript {
	entries := make([]Entry, 0, len(sess.Messages))
	for _, msg := range sess.Messages {
		entries = append(entries, Entry{
			Role:      msg.Role.DisplayName(),
			Timestamp: msg.Timestamp,
			Content:   msg.Content,
		})
	}
	return &Transcript{
		Title:       TranscriptTitle,
		GeneratedAt: time.Now(),
		Entries:     entries,
	}
}

// splitParagraphs splits message content on blank-line boundaries.
// Whitespace-only paragraphs are dropped; they contribute nothing to any
// output format.
func splitParagraphs(content string) []string {
	raw := strings.Split(content, "\n\n")
	paras := make([]string, 0, len(raw))
	for _, p := range raw {
		if strings.TrimSpace(p) == "" {
			continue
		}
		paras = append(paras, p)
	}
	return paras
}

// stripHeadingMarker detects a leading Markdown heading marker and removes
// it, reporting whether the paragraph should render in a bold-equivalent
// style for its duration.
func stripHeadingMarker(para string) (string, bool) {
	switch {
	case strings.HasPrefix(para, "### "):
		return para[4:], true
	case strings.HasPrefix(para, "## "):
		return para[3:], true
	case strings.HasPrefix(para, "# "):
		return para[2:], true
	}
	return para, false
}
