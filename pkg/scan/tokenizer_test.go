package scan

import "testing"

func TestSplitLinesDropsBlanks(t *testing.T) {
	lines := SplitLines("Pikachu\n\n  60  \nThunder Shock\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines got %d", len(lines))
	}
	if lines[0].Index != 0 || lines[0].Text != "Pikachu" {
		t.Fatalf("unexpected first line %+v", lines[0])
	}
	if lines[1].Index != 2 || lines[1].Text != "60" {
		t.Fatalf("expected index 2 text 60 got %+v", lines[1])
	}
}

func TestHeadLinesClampsToAvailable(t *testing.T) {
	head := HeadLines(SplitLines("Pikachu\n60"), 5)
	if len(head) != 2 {
		t.Fatalf("expected 2 lines got %d", len(head))
	}
	head = HeadLines(SplitLines("a\nb\nc\nd\ne\nf\ng"), 5)
	if len(head) != 5 || head[4].Text != "e" {
		t.Fatalf("expected first 5 lines got %d ending %q", len(head), head[len(head)-1].Text)
	}
}

func TestExtractHP(t *testing.T) {
	if hp := ExtractHP(SplitLines("Charizard\n120\nFire Spin")); hp == nil || *hp != 120 {
		t.Fatalf("expected 120 got %v", hp)
	}
	if hp := ExtractHP(SplitLines("Pikachu\n60\n70")); hp == nil || *hp != 60 {
		t.Fatalf("first match should win, got %v", hp)
	}
	if hp := ExtractHP(SplitLines("no digits here")); hp != nil {
		t.Fatalf("expected nil got %d", *hp)
	}
	if hp := ExtractHP(SplitLines("serial 1234")); hp != nil {
		t.Fatalf("4 digit runs are not HP, got %d", *hp)
	}
	if hp := ExtractHP(SplitLines("stage 1")); hp != nil {
		t.Fatalf("single digits are not HP, got %d", *hp)
	}
}

func TestIsStructuralLabel(t *testing.T) {
	for _, s := range []string{"basic", "Basic", "BASIC", " basic "} {
		if !IsStructuralLabel(s) {
			t.Fatalf("%q should be a structural label", s)
		}
	}
	if IsStructuralLabel("basically") {
		t.Fatalf("basically is a name, not a label")
	}
}
