package starlogs

import "testing"

func TestFilter_NilAllowsEverything(t *testing.T) {
	var f *Filter
	if !f.Allows(EventKill) {
		t.Error("nil filter rejected an event")
	}
}

func TestNewFilter_EmptyIsNil(t *testing.T) {
	if f := NewFilter(nil, nil); f != nil {
		t.Errorf("NewFilter(nil, nil) = %+v, want nil", f)
	}
}

func TestFilter_Include(t *testing.T) {
	f := NewFilter([]EventKind{EventPvpKill, EventSuicide}, nil)

	if !f.Allows(EventPvpKill) {
		t.Error("included kind rejected")
	}
	if f.Allows(EventDisconnect) {
		t.Error("non-included kind allowed")
	}
}

func TestFilter_Exclude(t *testing.T) {
	f := NewFilter(nil, []EventKind{EventCorpse})

	if f.Allows(EventCorpse) {
		t.Error("excluded kind allowed")
	}
	if !f.Allows(EventPvpKill) {
		t.Error("non-excluded kind rejected")
	}
}

func TestFilter_ExcludeTakesPrecedence(t *testing.T) {
	f := NewFilter([]EventKind{EventPvpKill}, []EventKind{EventPvpKill})

	if f.Allows(EventPvpKill) {
		t.Error("kind in both include and exclude was allowed")
	}
}
