package cotestvalue_test

import (
	"testing"

	"github.com/jgraley/cotest/cotestvalue"
)

func TestUnmarshalExactType(t *testing.T) {
	v := cotestvalue.Of(24)
	var out int
	if err := v.Unmarshal(&out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != 24 {
		t.Fatalf("got %d, want 24", out)
	}
}

func TestUnmarshalConvertible(t *testing.T) {
	v := cotestvalue.Of(int64(72))
	var out int
	if err := v.Unmarshal(&out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != 72 {
		t.Fatalf("got %d, want 72", out)
	}
}

func TestUnmarshalMismatch(t *testing.T) {
	v := cotestvalue.Of("hello")
	var out int
	if err := v.Unmarshal(&out); err == nil {
		t.Fatalf("expected an error unmarshalling a string into an int")
	}
}

func TestEqual(t *testing.T) {
	cases := []struct {
		a, b cotestvalue.Value
		want bool
	}{
		{cotestvalue.Of(1), cotestvalue.Of(1), true},
		{cotestvalue.Of(1), cotestvalue.Of(2), false},
		{cotestvalue.Nil(), cotestvalue.Nil(), true},
		{cotestvalue.Nil(), cotestvalue.Of(0), false},
		{cotestvalue.Of([]int{1, 2}), cotestvalue.Of([]int{1, 2}), true},
	}
	for _, c := range cases {
		if got := cotestvalue.Equal(c.a, c.b); got != c.want {
			t.Errorf("Equal(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}
