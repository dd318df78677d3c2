package strtab

import "testing"

func TestCaseInsensitive(t *testing.T) {
	tab := New[int](16, false)
	tab.Set("Label", 42)
	v, ok := tab.Get("LABEL")
	if !ok || v != 42 {
		t.Fatalf("Get(LABEL) = %d, %v; want 42, true", v, ok)
	}
	orig, ok := tab.Original("label")
	if !ok || orig != "Label" {
		t.Fatalf("Original = %q, %v; want Label, true", orig, ok)
	}
}

func TestCaseSensitive(t *testing.T) {
	tab := New[int](16, true)
	tab.Set("Label", 1)
	tab.Set("label", 2)
	v, _ := tab.Get("Label")
	if v != 1 {
		t.Fatalf("Get(Label) = %d, want 1", v)
	}
	v, _ = tab.Get("label")
	if v != 2 {
		t.Fatalf("Get(label) = %d, want 2", v)
	}
}

func TestNonASCIIUntouched(t *testing.T) {
	tab := New[int](16, false)
	tab.Set("café", 7)
	if _, ok := tab.Get("CAFÉ"); ok {
		t.Fatal("expected non-ASCII bytes to not be folded, so CAFÉ should miss")
	}
	if v, ok := tab.Get("café"); !ok || v != 7 {
		t.Fatalf("Get(café) = %d, %v; want 7, true", v, ok)
	}
}

func TestGrowAndDelete(t *testing.T) {
	tab := New[int](16, true)
	for i := 0; i < 200; i++ {
		tab.Set(string(rune('a'+(i%26)))+string(rune(i)), i)
	}
	if tab.Len() != 200 {
		t.Fatalf("Len() = %d, want 200", tab.Len())
	}
	keys := []string{}
	tab.Each(func(k string, v int) { keys = append(keys, k) })
	if len(keys) != 200 {
		t.Fatalf("Each visited %d entries, want 200", len(keys))
	}
	tab.Delete(keys[0])
	if tab.Len() != 199 {
		t.Fatalf("Len() after delete = %d, want 199", tab.Len())
	}
}
