package cmd

import (
	"testing"

	"github.com/cwbudde/escript/internal/interp"
	"github.com/cwbudde/escript/internal/realm"
	"github.com/cwbudde/escript/internal/value"
)

func TestParseTest262MetadataNegative(t *testing.T) {
	src := []byte(`// Copyright notice
/*---
description: example
negative:
  phase: runtime
  type: TypeError
includes: [propertyHelper.js]
flags: [onlyStrict]
---*/
var x = 1;`)

	mt, err := parseTest262Metadata(src)
	if err != nil {
		t.Fatalf("parseTest262Metadata: %v", err)
	}
	if mt.Negative.Phase != "runtime" || mt.Negative.Type != "TypeError" {
		t.Fatalf("unexpected negative metadata: %+v", mt.Negative)
	}
	if len(mt.Includes) != 1 || mt.Includes[0] != "propertyHelper.js" {
		t.Fatalf("unexpected includes: %v", mt.Includes)
	}
	if !mt.onlyStrict() || mt.noStrict() {
		t.Fatalf("unexpected flags: %+v", mt.Flags)
	}
}

func TestParseTest262MetadataAbsent(t *testing.T) {
	mt, err := parseTest262Metadata([]byte("var x = 1;"))
	if err != nil {
		t.Fatalf("parseTest262Metadata: %v", err)
	}
	if mt.Negative.Type != "" || mt.onlyStrict() || mt.noStrict() {
		t.Fatalf("expected empty metadata, got %+v", mt)
	}
}

func TestJudgeTest262ResultNoNegativeSuccess(t *testing.T) {
	ok, err := judgeTest262Result(test262Metadata{}, value.Undefined(), nil)
	if !ok || err != nil {
		t.Fatalf("expected success, got ok=%v err=%v", ok, err)
	}
}

func TestJudgeTest262ResultNoNegativeButFailed(t *testing.T) {
	ok, _ := judgeTest262Result(test262Metadata{}, value.Undefined(), errFakeRuntime)
	if ok {
		t.Fatal("expected failure when an unexpected error occurred")
	}
}

func TestJudgeTest262ResultExpectedThrowMatches(t *testing.T) {
	r := realm.NewAgent(0).NewRealm()
	obj := r.NewNativeError("TypeError", "boom")
	thrown := &interp.ThrownValue{Value: value.FromObject(obj)}

	mt := test262Metadata{}
	mt.Negative.Phase = "runtime"
	mt.Negative.Type = "TypeError"

	ok, err := judgeTest262Result(mt, value.Undefined(), thrown)
	if !ok || err != nil {
		t.Fatalf("expected a matching TypeError to succeed, got ok=%v err=%v", ok, err)
	}
}

func TestJudgeTest262ResultExpectedThrowMismatches(t *testing.T) {
	r := realm.NewAgent(0).NewRealm()
	obj := r.NewNativeError("RangeError", "boom")
	thrown := &interp.ThrownValue{Value: value.FromObject(obj)}

	mt := test262Metadata{}
	mt.Negative.Phase = "runtime"
	mt.Negative.Type = "TypeError"

	ok, err := judgeTest262Result(mt, value.Undefined(), thrown)
	if ok || err == nil {
		t.Fatal("expected a mismatched error name to fail")
	}
}

func TestJudgeTest262ResultExpectedButCompletedNormally(t *testing.T) {
	mt := test262Metadata{}
	mt.Negative.Type = "TypeError"

	ok, err := judgeTest262Result(mt, value.Number(1), nil)
	if ok || err == nil {
		t.Fatal("expected failure when a negative test completes normally")
	}
}

type fakeError string

func (e fakeError) Error() string { return string(e) }

const errFakeRuntime = fakeError("boom")
