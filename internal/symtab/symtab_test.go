package symtab

import "testing"

func TestBuiltinsPresent(t *testing.T) {
	tab := New(false)
	if v, ok := tab.Resolve("TRUE"); !ok || v != 1 {
		t.Fatalf("TRUE = %v, %v; want 1, true", v, ok)
	}
	if v, ok := tab.Resolve("UINT8_MAX"); !ok || v != 255 {
		t.Fatalf("UINT8_MAX = %v, %v; want 255, true", v, ok)
	}
}

func TestDefineAndResolve(t *testing.T) {
	tab := New(false)
	if err := tab.Define("COUNT", 5); err != nil {
		t.Fatalf("Define: %v", err)
	}
	if v, ok := tab.Resolve("count"); !ok || v != 5 {
		t.Fatalf("count = %v, %v; want 5, true", v, ok)
	}
}

func TestCannotRedefineBuiltin(t *testing.T) {
	tab := New(false)
	if err := tab.Define("TRUE", 0); err == nil {
		t.Fatal("expected error redefining TRUE")
	}
}

func TestUnderscoreLocalScoping(t *testing.T) {
	tab := New(true)
	tab.SetScope("LOOP1")
	tab.Define("_again", 10)
	tab.SetScope("LOOP2")
	tab.Define("_again", 20)

	tab.SetScope("LOOP1")
	v, ok := tab.Resolve("_again")
	if !ok || v != 10 {
		t.Fatalf("LOOP1._again = %v, %v; want 10, true", v, ok)
	}
	tab.SetScope("LOOP2")
	v, ok = tab.Resolve("_again")
	if !ok || v != 20 {
		t.Fatalf("LOOP2._again = %v, %v; want 20, true", v, ok)
	}
}

func TestCurrentPassUpdates(t *testing.T) {
	tab := New(false)
	tab.SetCurrentPass(2)
	v, ok := tab.Resolve("CURRENT_PASS")
	if !ok || v != 2 {
		t.Fatalf("CURRENT_PASS = %v, %v; want 2, true", v, ok)
	}
}
