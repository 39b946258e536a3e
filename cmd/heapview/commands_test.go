package main

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-heap/module"
)

func newTestSession(t *testing.T) (*session, *module.Bump) {
	t.Helper()
	b := module.NewBump(module.BumpOptions{Initial: 256, Max: 4096, Align: 8})
	return newSession(b, zap.NewNop(), nil), b
}

func TestSession_Commands(t *testing.T) {
	s, _ := newTestSession(t)

	tests := []struct {
		cmd  string
		want string
	}{
		{"alloc f64 4", "0 = Float64Array(space=0 id=0 offset=0 len=4 owner=self)"},
		{"fill 0 1.5", "[1.5 1.5 1.5 1.5]"},
		{"set 0 1,2,3", "[1 2 3 1.5]\npath=checked replaced=0"},
		{"view 0 1 3", "v0 = Float64Array(space=0 id=-1 offset=8 len=2 owner=handle)"},
		{"show v0", "[2 3]"},
		{"free v0", "owner=handle"},
		{"alloc u8 3", "1 = Uint8Array(space=0 id=1 offset=32 len=3 owner=self)"},
		{"set 1 1,300,-1 none", "[1 0 0]\npath=checked replaced=2"},
		{"subset 0 3,0", "2 = Float64Array(space=0 id=2"},
		{"show 2", "[1.5 1]"},
		{"keep 0 0,1,0,1", "[2 1.5]"},
		{"live", "4 live, next id 4"},
		{"free 1", "Uint8Array(space=0 id=1 freed)"},
		{"live", "3 live, next id 4"},
	}
	for _, tt := range tests {
		got, err := s.exec(tt.cmd)
		if err != nil {
			t.Fatalf("%s: %v", tt.cmd, err)
		}
		if !strings.Contains(got, tt.want) {
			t.Errorf("%s:\n got %q\nwant %q", tt.cmd, got, tt.want)
		}
	}
}

func TestSession_Errors(t *testing.T) {
	s, _ := newTestSession(t)
	if _, err := s.exec("alloc u8 2"); err != nil {
		t.Fatal(err)
	}

	for _, cmd := range []string{
		"bogus",
		"alloc string 3",
		"alloc u8 x",
		"free 9",
		"fill 0 abc",
		"set 0 1,300 error",
		"set 0 1,2,3",
		"set 0 1 sometimes",
		"view 0 1 5",
		"subset 0 0,7",
		"subset 0 0.5",
		"keep 0 1",
	} {
		if _, err := s.exec(cmd); err == nil {
			t.Errorf("%s: expected error", cmd)
		}
	}
}

func TestSession_Script(t *testing.T) {
	s, _ := newTestSession(t)

	var out bytes.Buffer
	err := runScript(&out, s, "alloc s16 2; set 0 -5,7\nshow 0")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "[-5 7]") {
		t.Errorf("output = %q", out.String())
	}

	_, err = s.script("show 0; free 5; show 0")
	if err == nil || !strings.Contains(err.Error(), "free 5") {
		t.Errorf("err = %v", err)
	}
}

func TestSession_CloseFreesOwners(t *testing.T) {
	s, b := newTestSession(t)
	_, err := s.script("alloc u8 1; alloc u32 2; view 1 0 1; free 0")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if got := len(b.Freed()); got != 2 {
		t.Errorf("%d raw frees, want 2", got)
	}

	events := s.eventLog()
	if strings.Count(events, "allocated") != 2 || strings.Count(events, "released") != 2 {
		t.Errorf("events:\n%s", events)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"12", int64(12)},
		{"-3", int64(-3)},
		{"0x10", int64(16)},
		{"18446744073709551615", uint64(18446744073709551615)},
		{"2.5", 2.5},
		{"NaN", nil},
	}
	for _, tt := range tests {
		got, err := parseNumber(tt.in)
		if err != nil {
			t.Fatalf("%s: %v", tt.in, err)
		}
		if tt.want != nil && got != tt.want {
			t.Errorf("%s = %#v, want %#v", tt.in, got, tt.want)
		}
	}
	if _, err := parseNumber("x"); err == nil {
		t.Error("expected error")
	}
}
