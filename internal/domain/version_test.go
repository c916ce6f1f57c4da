package domain

import (
	"encoding/json"
	"testing"
)

func TestVersionSnapshot_Equal(t *testing.T) {
	a := VersionSnapshot{Title: "t", Summary: "s", Topic: "sleep", Confidence: 0.8}
	b := a
	if !a.Equal(b) {
		t.Error("identical snapshots should be equal")
	}
	b.Summary = "changed"
	if a.Equal(b) {
		t.Error("differing snapshots should not be equal")
	}
}

func TestBuildDiff_Initial(t *testing.T) {
	after := VersionSnapshot{Title: "t", Summary: "s", Topic: "sleep", Confidence: 0.8}
	raw := BuildDiff(nil, after)

	var diffs []map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &diffs); err != nil {
		t.Fatalf("diff is not valid JSON: %v", err)
	}
	if len(diffs) != 4 {
		t.Fatalf("initial diff should list all 4 fields, got %d", len(diffs))
	}
	if diffs[0]["before"] != nil {
		t.Error("initial diff before values should be null")
	}
}

func TestBuildDiff_OnlyChangedFields(t *testing.T) {
	before := VersionSnapshot{Title: "t", Summary: "s", Topic: "sleep", Confidence: 0.8}
	after := before
	after.Title = "new title"

	var diffs []map[string]interface{}
	if err := json.Unmarshal([]byte(BuildDiff(&before, after)), &diffs); err != nil {
		t.Fatalf("diff is not valid JSON: %v", err)
	}
	if len(diffs) != 1 {
		t.Fatalf("expected 1 changed field, got %d", len(diffs))
	}
	if diffs[0]["field"] != "title" {
		t.Errorf("expected title diff, got %v", diffs[0]["field"])
	}
	if diffs[0]["before"] != "t" || diffs[0]["after"] != "new title" {
		t.Errorf("unexpected before/after: %v", diffs[0])
	}
}

func TestChangeType_Valid(t *testing.T) {
	for _, ct := range []ChangeType{ChangeInitial, ChangeUpdate, ChangeRollback, ChangeRegeneration} {
		if !ct.Valid() {
			t.Errorf("%s should be valid", ct)
		}
	}
	if ChangeType("delete").Valid() {
		t.Error("delete is not a change type")
	}
}
