package vars

import "testing"

func TestDefaultContainsAllVariables(t *testing.T) {
	t.Parallel()

	set := Default()
	if set.Len() != 8 {
		t.Fatalf("expected 8 embedded variables, got %d", set.Len())
	}

	entries := set.Entries()
	if entries[0].Name != "SIMPLE_IDENTITY_SERVER_DB_PASSWORD" {
		t.Fatalf("expected DB password first, got %s", entries[0].Name)
	}
	if entries[len(entries)-1].Name != "SIMPLE_IDENTITY_SERVER_SECURITY_LOGS_CONNECTION_STRING" {
		t.Fatalf("unexpected last entry %s", entries[len(entries)-1].Name)
	}
}

func TestDefaultReturnsDefensiveCopy(t *testing.T) {
	t.Parallel()

	first := Default()
	first.Put("ASPNETCORE_ENVIRONMENT", "Staging")

	second := Default()
	for _, e := range second.Entries() {
		if e.Name == "ASPNETCORE_ENVIRONMENT" && e.Value != "Production" {
			t.Fatalf("embedded table mutated: %q", e.Value)
		}
	}
}

func TestPutPreservesOrderAndDeduplicates(t *testing.T) {
	t.Parallel()

	set := NewSet(
		Entry{Name: "A", Value: "1"},
		Entry{Name: "B", Value: "2"},
		Entry{Name: "A", Value: "3"},
	)

	entries := set.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after dedupe, got %d", len(entries))
	}
	if entries[0].Name != "A" || entries[0].Value != "3" {
		t.Fatalf("expected A replaced in place with value 3, got %+v", entries[0])
	}
	if entries[1].Name != "B" {
		t.Fatalf("expected B to keep second position, got %s", entries[1].Name)
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	t.Parallel()

	set := NewSet(Entry{Name: "A", Value: "1"})
	entries := set.Entries()
	entries[0].Value = "mutated"

	if set.Entries()[0].Value != "1" {
		t.Fatalf("expected internal entries to be unaffected by caller mutation")
	}
}
