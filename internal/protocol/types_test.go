package protocol

import "testing"

func TestStatusNamesAndReservedRange(t *testing.T) {
	if StatusNotReady.String() != "NOT_READY" || StatusExecutionError.String() != "EXECUTION_ERROR" {
		t.Fatalf("unexpected standard names: %s %s", StatusNotReady, StatusExecutionError)
	}
	for s := StatusOK; s <= StatusExecutionError; s++ {
		if s.Reserved() {
			t.Fatalf("standard status %d reported reserved", s)
		}
	}
	for s := StatusExecutionError + 1; s < StatusApplicationBase; s++ {
		if !s.Reserved() {
			t.Fatalf("status %d should be reserved", s)
		}
	}
	if got := Status(9).String(); got != "RESERVED9" {
		t.Fatalf("unexpected reserved name: %q", got)
	}
	if StatusApplicationBase.Reserved() || StatusApplicationBase.String() != "APP16" {
		t.Fatalf("application base mislabelled: %s", StatusApplicationBase)
	}
}

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"OK":                  StatusOK,
		" not_ready ":         StatusNotReady,
		"HEADER_SUB_ID_ERROR": StatusHeaderSubIDError,
		"17":                  Status(17),
	}
	for in, want := range cases {
		got, ok := ParseStatus(in)
		if !ok || got != want {
			t.Fatalf("ParseStatus(%q) = %v,%v want %v", in, got, ok, want)
		}
	}
	for _, s := range []Status{StatusOK, StatusResetting, StatusPayloadError} {
		if got, ok := ParseStatus(s.String()); !ok || got != s {
			t.Fatalf("round trip of %s gave %v,%v", s, got, ok)
		}
	}
	if _, ok := ParseStatus("BOGUS"); ok {
		t.Fatalf("expected unknown name to fail")
	}
}

func TestTaskIDClassification(t *testing.T) {
	if !TaskBootStatus.Standard() || TaskReserved0.Standard() || !TaskReserved0.Reserved() {
		t.Fatalf("unexpected classification for ids 0/1")
	}
	if !TaskID(4).Reserved() || TaskApplicationBase.Reserved() {
		t.Fatalf("unexpected reserved range edges")
	}
	if TaskReset.String() != "reset" || TaskID(200).String() != "task200" {
		t.Fatalf("unexpected names: %s %s", TaskReset, TaskID(200))
	}
}
