package ai

import "testing"

func TestCleanJSONReply_StripsFence(t *testing.T) {
	cleaned, ok := CleanJSONReply("```json\n{\"intent\":\"GIFT\"}\n```")
	if !ok {
		t.Fatalf("expected valid JSON after fence strip")
	}
	if cleaned != `{"intent":"GIFT"}` {
		t.Fatalf("unexpected cleaned value: %q", cleaned)
	}
}

func TestCleanJSONReply_ReportsInvalid(t *testing.T) {
	_, ok := CleanJSONReply("the model said something that is not json")
	if ok {
		t.Fatalf("expected invalid JSON to report ok=false")
	}
}

func TestCleanJSONReply_NoFenceStillValidates(t *testing.T) {
	cleaned, ok := CleanJSONReply(`{"a":1}`)
	if !ok || cleaned != `{"a":1}` {
		t.Fatalf("expected passthrough for already-clean JSON, got %q ok=%v", cleaned, ok)
	}
}
