package httputil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"lumio_social/internal/model"
)

func TestDecodeBody_JSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(`{"text":"hello","image":"ipfs://x"}`))
	req.Header.Set("Content-Type", "application/json")

	var got model.CreatePostRequest
	if err := DecodeBody(req, &got); err != nil {
		t.Fatalf("DecodeBody: %v", err)
	}
	if got.Text != "hello" || got.Image == nil || *got.Image != "ipfs://x" {
		t.Errorf("decoded %+v", got)
	}
}

func TestDecodeBody_CBOR(t *testing.T) {
	var account model.ActorID
	account[0] = 0x07
	encOpts := cbor.EncOptions{TextMarshaler: cbor.TextMarshalerTextString}
	enc, err := encOpts.EncMode()
	if err != nil {
		t.Fatalf("enc mode: %v", err)
	}
	payload, err := enc.Marshal(model.CreatePostRequest{Text: "gm", SessionForAccount: &account})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/posts", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/cbor; charset=binary")

	var got model.CreatePostRequest
	if err := DecodeBody(req, &got); err != nil {
		t.Fatalf("DecodeBody: %v", err)
	}
	if got.Text != "gm" || got.SessionForAccount == nil || *got.SessionForAccount != account {
		t.Errorf("decoded %+v", got)
	}
}

func TestDecodeBody_EmptyAndInvalid(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/posts/1/upvote", nil)
	var toggle model.ToggleUpvoteRequest
	if err := DecodeBody(req, &toggle); err != nil {
		t.Errorf("empty body should decode to zero value, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(`{"text":`))
	if err := DecodeBody(req, &toggle); err == nil {
		t.Error("expected error for malformed json")
	}

	req = httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(strings.Repeat("a", MaxBodyBytes+1)))
	if err := DecodeBody(req, &toggle); err == nil {
		t.Error("expected error for oversized body")
	}
}

func TestWriteError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteForbiddenWithCode(rec, "SESSION_EXPIRED", "session expired")

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	want := `{"error":{"code":"SESSION_EXPIRED","message":"session expired"}}`
	if strings.TrimSpace(rec.Body.String()) != want {
		t.Errorf("body = %s, want %s", rec.Body.String(), want)
	}
}
