// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChatSuccess(t *testing.T) {
	var gotPath string
	var gotPayload map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(map[string]any{
			"success":  true,
			"response": "hello back",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	reply, err := client.Chat(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != "hello back" {
		t.Errorf("reply = %q, want %q", reply, "hello back")
	}
	if gotPath != "/chat" {
		t.Errorf("request path = %q, want /chat", gotPath)
	}
	if gotPayload["message"] != "hello" {
		t.Errorf("payload message = %q, want %q", gotPayload["message"], "hello")
	}
}

func TestLookupProcessPayload(t *testing.T) {
	var gotPath string
	var gotPayload map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(map[string]any{
			"success":  true,
			"response": "step 1: ...",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	reply, err := client.LookupProcess(context.Background(), "password_reset")
	if err != nil {
		t.Fatalf("LookupProcess() error = %v", err)
	}
	if reply != "step 1: ..." {
		t.Errorf("reply = %q", reply)
	}
	if gotPath != "/process" {
		t.Errorf("request path = %q, want /process", gotPath)
	}
	if gotPayload["process_name"] != "password_reset" {
		t.Errorf("payload process_name = %q, want password_reset", gotPayload["process_name"])
	}
}

func TestChatServiceReportedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Well-formed envelope, but the service declined the request.
		json.NewEncoder(w).Encode(map[string]any{
			"success":  false,
			"response": "",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Chat(context.Background(), "hello")
	if !errors.Is(err, ErrServiceFailure) {
		t.Errorf("error = %v, want ErrServiceFailure", err)
	}
}

func TestChatHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Chat(context.Background(), "hello")

	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("error = %v, want *ServiceError", err)
	}
	if serviceErr.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", serviceErr.Status)
	}
}

func TestChatMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>definitely not json</html>"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Chat(context.Background(), "hello")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("error = %v, want ErrMalformedResponse", err)
	}
}

func TestChatUnreachableService(t *testing.T) {
	// A closed server yields a transport error, not a service error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Chat(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected a transport error")
	}
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient("")
	if client.BaseURL() != DefaultBaseURL {
		t.Errorf("BaseURL() = %q, want %q", client.BaseURL(), DefaultBaseURL)
	}

	trailing := NewClient("http://example.test/api/")
	if trailing.BaseURL() != "http://example.test/api" {
		t.Errorf("BaseURL() = %q, trailing slash should be trimmed", trailing.BaseURL())
	}
}

func TestChatContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(srv.URL)
	_, err := client.Chat(ctx, "hello")
	if err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
}
