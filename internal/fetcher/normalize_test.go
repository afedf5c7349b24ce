package fetcher

import (
	"encoding/json"
	"testing"
)

func rawStrings(items []json.RawMessage) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = string(it)
	}
	return out
}

func TestNormalize_EnvelopesAreEquivalent(t *testing.T) {
	want := []string{`{"ship_name":"A"}`, `{"ship_name":"B"}`}

	bodies := map[string]string{
		"bare array": `[{"ship_name":"A"},{"ship_name":"B"}]`,
		"results":    `{"results":[{"ship_name":"A"},{"ship_name":"B"}]}`,
		"data":       `{"data":[{"ship_name":"A"},{"ship_name":"B"}]}`,
		"ports key":  `{"count":2,"ports":[{"ship_name":"A"},{"ship_name":"B"}]}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			got, err := Normalize([]byte(body))
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			gs := rawStrings(got)
			if len(gs) != len(want) {
				t.Fatalf("expected %d items, got %d: %v", len(want), len(gs), gs)
			}
			for i := range want {
				if gs[i] != want[i] {
					t.Errorf("item %d = %s, want %s", i, gs[i], want[i])
				}
			}
		})
	}
}

func TestNormalize_ResultsBeatsData(t *testing.T) {
	got, err := Normalize([]byte(`{"data":[1,2,3],"results":[4]}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || string(got[0]) != "4" {
		t.Errorf("expected results to win, got %v", rawStrings(got))
	}
}

func TestNormalize_FirstArrayInDocumentOrder(t *testing.T) {
	got, err := Normalize([]byte(`{"meta":{"x":[9]},"zeta":[1],"alpha":[2,3]}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || string(got[0]) != "1" {
		t.Errorf("expected first top-level array, got %v", rawStrings(got))
	}
}

func TestNormalize_NullResultsIsSkipped(t *testing.T) {
	got, err := Normalize([]byte(`{"results":null,"items":[7]}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || string(got[0]) != "7" {
		t.Errorf("got %v", rawStrings(got))
	}
}

func TestNormalize_ObjectWithoutArray(t *testing.T) {
	body := `{"ship_name":"Solo","delay_hours":0}`
	got, err := Normalize([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || string(got[0]) != body {
		t.Errorf("expected the object itself, got %v", rawStrings(got))
	}

	if _, bare, _ := normalize([]byte(body)); !bare {
		t.Error("expected object without array to be reported as bare")
	}
	if _, bare, _ := normalize([]byte(`{"detail":"x","results":[]}`)); bare {
		t.Error("enveloped empty list should not be reported as bare")
	}
}

func TestNormalize_EmptyArray(t *testing.T) {
	got, err := Normalize([]byte(` [] `))
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil list, got %v", got)
	}
}

func TestNormalize_Rejects(t *testing.T) {
	for _, body := range []string{``, `"text"`, `42`, `null`, `{"a":`} {
		if _, err := Normalize([]byte(body)); err == nil {
			t.Errorf("expected error for %q", body)
		}
	}
}
