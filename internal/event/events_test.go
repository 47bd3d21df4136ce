package event

import (
	"encoding/json"
	"testing"
)

func TestDecodeJoinRequest(t *testing.T) {
	raw := []byte(`{"type":"join-request","payload":{"roomId":"r1","username":"alice","connectionId":"c1"}}`)

	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if m.Type != TypeJoinRequest {
		t.Fatalf("expected join-request, got %q", m.Type)
	}

	var jr JoinRequest
	if err := Decode(m, &jr); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if jr.RoomID != "r1" || jr.Username != "alice" || jr.ConnectionID != "c1" {
		t.Fatalf("unexpected payload: %+v", jr)
	}
}

func TestDecodeEmptyPayload(t *testing.T) {
	if err := Decode(Message{Type: TypeSendMessage}, &SendMessage{}); err == nil {
		t.Fatal("empty payload must fail to decode")
	}
}

func TestDecodeMalformedPayload(t *testing.T) {
	m := Message{Type: TypeTypingStart, Payload: []byte(`{"cursorPosition":"oops"}`)}
	if err := Decode(m, &TypingStart{}); err == nil {
		t.Fatal("malformed payload must fail to decode")
	}
}

func TestOutboundRoundTrip(t *testing.T) {
	m := Outbound(TypeRequestDrawing, RequestDrawing{ConnectionID: "c9"})
	if m.Type != TypeRequestDrawing {
		t.Fatalf("wrong type: %q", m.Type)
	}

	var p RequestDrawing
	if err := Decode(m, &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ConnectionID != "c9" {
		t.Fatalf("connection id lost: %+v", p)
	}
}

func TestPassthroughPayloadPreserved(t *testing.T) {
	// file-события ретранслируются как есть, без пересборки payload-а
	raw := json.RawMessage(`{"fileId":"f1","name":"main.go","content":"package main"}`)
	m := Message{Type: TypeFileUpdated, Payload: raw}

	var fc FileChange
	if err := Decode(m, &fc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fc.FileID != "f1" || fc.Name != "main.go" {
		t.Fatalf("unexpected payload: %+v", fc)
	}
	if string(m.Payload) != string(raw) {
		t.Fatal("payload must be carried verbatim")
	}
}
