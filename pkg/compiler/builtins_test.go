package compiler

import "testing"

func TestResolveBuiltin(t *testing.T) {
	tests := []struct {
		name  string
		argc  int
		ok    bool
		entry string
		fails bool
	}{
		{name: "print", argc: 0, ok: true, entry: "print"},
		{name: "print", argc: 5, ok: true, entry: "print"},
		{name: "len", argc: 1, ok: true, entry: "len"},
		{name: "len", argc: 2, fails: true},
		{name: "len", argc: 0, fails: true},
		{name: "min", argc: 2, ok: true, entry: "min"},
		{name: "max", argc: 3, fails: true},
		{name: "input", argc: 0, ok: true, entry: "input"},
		{name: "input", argc: 1, ok: true, entry: "input"},
		{name: "input", argc: 2, fails: true},
		{name: "frobnicate", argc: 1}, // unknown: not a builtin, not an error
	}
	for _, tt := range tests {
		spec, ok, err := resolveBuiltin(tt.name, tt.argc, 1, 1)
		if tt.fails {
			if err == nil {
				t.Errorf("%s/%d: expected arity error", tt.name, tt.argc)
				continue
			}
			if err.(*Diagnostic).Kind != ResolutionError {
				t.Errorf("%s/%d: got %s, want ResolutionError", tt.name, tt.argc, err.(*Diagnostic).Kind)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s/%d: unexpected error %v", tt.name, tt.argc, err)
			continue
		}
		if ok != tt.ok {
			t.Errorf("%s/%d: ok=%v, want %v", tt.name, tt.argc, ok, tt.ok)
			continue
		}
		if ok && spec.entry != tt.entry {
			t.Errorf("%s/%d: entry %q, want %q", tt.name, tt.argc, spec.entry, tt.entry)
		}
	}
}

func TestResolveMethod(t *testing.T) {
	tests := []struct {
		recv   ValueKind
		method string
		argc   int
		entry  string
		fails  bool
	}{
		{recv: KindList, method: "append", argc: 1, entry: "array_push"},
		{recv: KindList, method: "pop", argc: 0, entry: "array_pop"},
		{recv: KindList, method: "insert", argc: 2, entry: "array_insert"},
		{recv: KindList, method: "clear", argc: 0, entry: "array_clear"},
		{recv: KindList, method: "append", argc: 2, fails: true},
		{recv: KindList, method: "upper", argc: 0, fails: true},
		{recv: KindString, method: "upper", argc: 0, entry: "str_upper"},
		{recv: KindString, method: "find", argc: 1, entry: "str_find"},
		{recv: KindString, method: "split", argc: 1, entry: "str_split"},
		{recv: KindDict, method: "keys", argc: 0, entry: "map_keys"},
		{recv: KindDict, method: "clear", argc: 0, entry: "map_clear"},
		{recv: KindUnknown, method: "append", argc: 1, fails: true},
		{recv: KindAmbiguous, method: "append", argc: 1, fails: true},
		{recv: KindNumber, method: "upper", argc: 0, fails: true},
	}
	for _, tt := range tests {
		spec, err := resolveMethod(tt.recv, tt.method, tt.argc, 1, 1)
		if tt.fails {
			if err == nil {
				t.Errorf("%s.%s/%d: expected error", tt.recv, tt.method, tt.argc)
			} else if err.(*Diagnostic).Kind != ResolutionError {
				t.Errorf("%s.%s/%d: got %s, want ResolutionError", tt.recv, tt.method, tt.argc, err.(*Diagnostic).Kind)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s.%s/%d: unexpected error %v", tt.recv, tt.method, tt.argc, err)
			continue
		}
		if spec.entry != tt.entry {
			t.Errorf("%s.%s/%d: entry %q, want %q", tt.recv, tt.method, tt.argc, spec.entry, tt.entry)
		}
	}
}

// clear exists on both lists and dicts; dispatch must pick the table for the
// receiver kind, not the first match.
func TestResolveMethodClearDispatch(t *testing.T) {
	lspec, err := resolveMethod(KindList, "clear", 0, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	dspec, err := resolveMethod(KindDict, "clear", 0, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if lspec.entry != "array_clear" || dspec.entry != "map_clear" {
		t.Errorf("got %q and %q", lspec.entry, dspec.entry)
	}
}
