package core

import (
	"errors"
	"testing"
)

func TestAddressList(t *testing.T) {
	t.Run("PrependNewestFirst", func(t *testing.T) {
		var l AddressList
		for _, s := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
			if err := l.Prepend(mustAddr(t, s)); err != nil {
				t.Fatalf("Prepend(%s): %v", s, err)
			}
		}
		got := l.Addrs()
		want := []string{"10.0.0.3", "10.0.0.2", "10.0.0.1"}
		if len(got) != len(want) {
			t.Fatalf("expected %d addresses, got %d", len(want), len(got))
		}
		for i, s := range want {
			if got[i].String() != s {
				t.Errorf("position %d: expected %s, got %s", i, s, got[i])
			}
		}
	})

	t.Run("RejectUnspecified", func(t *testing.T) {
		var l AddressList
		if err := l.Prepend(Address{}); !errors.Is(err, ErrNilAddress) {
			t.Errorf("expected ErrNilAddress, got %v", err)
		}
		if l.Len() != 0 {
			t.Errorf("expected empty list, got %d entries", l.Len())
		}
	})

	t.Run("FirstByFamily", func(t *testing.T) {
		var l AddressList
		l.Prepend(mustAddr(t, "10.0.0.1"))
		l.Prepend(mustAddr(t, "2001:db8::1"))
		l.Prepend(mustAddr(t, "10.0.0.2"))

		a, ok := l.FirstByFamily(FamilyIPv4)
		if !ok || a.String() != "10.0.0.2" {
			t.Errorf("expected newest ipv4 10.0.0.2, got %s (ok=%v)", a, ok)
		}
		a, ok = l.FirstByFamily(FamilyIPv6)
		if !ok || a.String() != "2001:db8::1" {
			t.Errorf("expected 2001:db8::1, got %s (ok=%v)", a, ok)
		}
		if _, ok := l.FirstByFamily(FamilyLCAF); ok {
			t.Error("expected no lcaf entry")
		}
	})

	t.Run("AddrsReturnsCopy", func(t *testing.T) {
		var l AddressList
		l.Prepend(mustAddr(t, "10.0.0.1"))
		got := l.Addrs()
		got[0] = mustAddr(t, "10.9.9.9")
		if a, _ := l.FirstByFamily(FamilyIPv4); a.String() != "10.0.0.1" {
			t.Errorf("list mutated through returned slice: %s", a)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		var l AddressList
		l.Prepend(mustAddr(t, "10.0.0.1"))
		l.Clear()
		if l.Len() != 0 {
			t.Errorf("expected empty list after Clear, got %d", l.Len())
		}
		if err := l.Prepend(mustAddr(t, "10.0.0.2")); err != nil {
			t.Errorf("expected list to be reusable after Clear: %v", err)
		}
	})
}

func TestSelectMapResolver(t *testing.T) {
	build := func(addrs ...string) *AddressList {
		var l AddressList
		for _, s := range addrs {
			if err := l.Prepend(mustAddr(t, s)); err != nil {
				t.Fatalf("Prepend(%s): %v", s, err)
			}
		}
		return &l
	}

	t.Run("PrefersIPv4", func(t *testing.T) {
		l := build("2001:db8::1", "10.0.0.1")
		a, err := SelectMapResolver(l, true, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Family() != FamilyIPv4 {
			t.Errorf("expected ipv4 resolver, got %s", a)
		}
	})

	t.Run("FallsBackToIPv6", func(t *testing.T) {
		l := build("2001:db8::1")
		a, err := SelectMapResolver(l, true, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Family() != FamilyIPv6 {
			t.Errorf("expected ipv6 resolver, got %s", a)
		}
	})

	t.Run("HonorsLocalCapability", func(t *testing.T) {
		l := build("2001:db8::1", "10.0.0.1")
		a, err := SelectMapResolver(l, false, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Family() != FamilyIPv6 {
			t.Errorf("expected ipv6 resolver without local ipv4, got %s", a)
		}
	})

	t.Run("NoCompatible", func(t *testing.T) {
		l := build("10.0.0.1")
		if _, err := SelectMapResolver(l, false, true); !errors.Is(err, ErrNoCompatibleResolver) {
			t.Errorf("expected ErrNoCompatibleResolver, got %v", err)
		}
		if _, err := SelectMapResolver(&AddressList{}, true, true); !errors.Is(err, ErrNoCompatibleResolver) {
			t.Errorf("expected ErrNoCompatibleResolver for empty list, got %v", err)
		}
	})
}
