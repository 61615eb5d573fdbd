package logger

import "testing"

func TestSanitizeKVsRedactsSecretsAndHashesIDs(t *testing.T) {
	kv := sanitizeKVs([]interface{}{
		"access_token", "abc",
		"user_id", "7f0c9a36-1111-2222-3333-444455556666",
		"title", "Buy milk",
		"details", map[string]interface{}{"password": "hunter2", "mood": "happy"},
	})
	if len(kv) != 8 {
		t.Fatalf("unexpected kv length: %d", len(kv))
	}
	if kv[1] != "[REDACTED]" {
		t.Fatalf("access_token not redacted: %v", kv[1])
	}
	hashed, ok := kv[3].(string)
	if !ok || len(hashed) != len("hash:")+12 {
		t.Fatalf("user_id not hashed: %v", kv[3])
	}
	if kv[5] != "Buy milk" {
		t.Fatalf("plain value altered: %v", kv[5])
	}
	details := kv[7].(map[string]interface{})
	if details["password"] != "[REDACTED]" || details["mood"] != "happy" {
		t.Fatalf("nested map not sanitized: %+v", details)
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	kv := sanitizeKVs([]interface{}{"title", "x", "dangling"})
	if len(kv) != 3 || kv[2] != "dangling" {
		t.Fatalf("dangling key lost: %+v", kv)
	}
}

func TestSanitizeKVsHidesJournalContent(t *testing.T) {
	kv := sanitizeKVs([]interface{}{"content", "Dear diary", "mood", "calm"})
	if kv[1] != "[10 chars]" {
		t.Fatalf("content leaked: %v", kv[1])
	}
	if kv[3] != "calm" {
		t.Fatalf("mood altered: %v", kv[3])
	}
}
