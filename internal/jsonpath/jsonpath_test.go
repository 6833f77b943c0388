package jsonpath

import "testing"

func TestLookup(t *testing.T) {
	root := map[string]any{
		"text": "hello",
		"data": map[string]any{
			"items": []any{
				map[string]any{"value": "a"},
				map[string]any{"value": "b"},
			},
		},
		"results": []any{
			map[string]any{
				"alternatives": []any{
					map[string]any{"transcript": "ok"},
				},
			},
		},
		"count": float64(3),
	}

	if v, ok := Lookup(root, "data.items[1].value"); !ok || v != "b" {
		t.Fatalf("got %q (ok=%v), want b", v, ok)
	}
	if v, ok := Lookup(root, "results[0].alternatives[0].transcript"); !ok || v != "ok" {
		t.Fatalf("got %q (ok=%v), want ok", v, ok)
	}
	if v, ok := Lookup(root, "count"); !ok || v != "3" {
		t.Fatalf("got %q (ok=%v), want 3", v, ok)
	}
	if _, ok := Lookup(root, "data.items[99].value"); ok {
		t.Fatal("out-of-range index should miss")
	}
	if _, ok := Lookup(root, "data.items[x]"); ok {
		t.Fatal("malformed index should miss")
	}
	if _, ok := Lookup(root, ""); ok {
		t.Fatal("empty path should miss")
	}
}

func TestExtractText(t *testing.T) {
	body := []byte(`{"result":{"segments":[{"text":"path wins"}]},"text":"toplevel"}`)
	if got := ExtractText(body, "result.segments[0].text"); got != "path wins" {
		t.Fatalf("got %q", got)
	}
	if got := ExtractText(body, ""); got != "toplevel" {
		t.Fatalf("got %q", got)
	}
	if got := ExtractText(body, "missing.path"); got != "toplevel" {
		t.Fatalf("path miss should fall back to text field, got %q", got)
	}
	if got := ExtractText([]byte(`{"transcript":"only string"}`), ""); got != "only string" {
		t.Fatalf("got %q", got)
	}
	if got := ExtractText([]byte("not json"), "a.b"); got != "" {
		t.Fatalf("got %q for invalid json", got)
	}
}

func TestSplitSegment(t *testing.T) {
	key, idxs, err := splitSegment("foo[0][1]")
	if err != nil {
		t.Fatal(err)
	}
	if key != "foo" || len(idxs) != 2 || idxs[0] != 0 || idxs[1] != 1 {
		t.Fatalf("key=%q idxs=%v", key, idxs)
	}
	if _, _, err := splitSegment("foo[]"); err == nil {
		t.Fatal("empty index should error")
	}
	if _, _, err := splitSegment("foo[1"); err == nil {
		t.Fatal("unclosed index should error")
	}
}
