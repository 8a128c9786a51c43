package taskstore

import (
	"encoding/json"
	"testing"

	"github.com/pbaille/tasks/internal/domain"
)

func TestEncode_WritesVersionedSnapshot(t *testing.T) {
	raw, err := Encode(domain.Collection{{ID: "a", Text: "x", Completed: true}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		t.Fatalf("snapshot is not an object: %v", err)
	}
	if string(probe["version"]) != "1" {
		t.Fatalf("expected version 1, got %s", probe["version"])
	}

	var records []map[string]json.RawMessage
	if err := json.Unmarshal(probe["tasks"], &records); err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if len(records) != 1 || len(records[0]) != 3 {
		t.Fatalf("expected one record with exactly three fields, got %v", records)
	}
}

func TestEncode_NilIsEmptyList(t *testing.T) {
	raw, err := Encode(nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if raw != `{"version":1,"tasks":[]}` {
		t.Fatalf("unexpected encoding %s", raw)
	}
}

func TestDecode_StringAndNumericIDs(t *testing.T) {
	got, err := Decode(`{"version":1,"tasks":[{"id":"abc","text":"a","completed":false},{"id":17,"text":"b","completed":true}]}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].ID != "abc" || got[1].ID != "17" || !got[1].Completed {
		t.Fatalf("unexpected decode %+v", got)
	}
}

func TestDecode_RejectsBadIDs(t *testing.T) {
	if _, err := Decode(`[{"id":true,"text":"a","completed":false}]`); err == nil {
		t.Fatalf("expected error for boolean id")
	}
}
