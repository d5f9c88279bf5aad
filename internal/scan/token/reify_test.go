package token

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReifySimpleWord(t *testing.T) {
	script := "abc"
	descs := []Desc{
		{Type: SimpleWord, Offset: 0, Size: 3, NumComponents: 1},
		{Type: Text, Offset: 0, Size: 3, NumComponents: 0},
	}

	got, err := Reify(script, descs)
	if err != nil {
		t.Fatalf("Reify: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d top-level tokens, want 1", len(got))
	}
	word := got[0]
	if word.Type != SimpleWord || word.Val != "abc" {
		t.Errorf("word = %+v, want Type=SimpleWord Val=abc", word)
	}
	if len(word.Tokens) != 1 || word.Tokens[0].Type != Text || word.Tokens[0].Val != "abc" {
		t.Errorf("word.Tokens = %+v, want one Text(abc)", word.Tokens)
	}
}

// TestReifyChildOrder pins down that reifying two variable substitutions
// back to back ("$a$b") yields children in source order without any
// explicit reversal step — the reverse descriptor walk's stack already
// hands them back in the right order.
func TestReifyChildOrder(t *testing.T) {
	script := "$a$b"
	descs := []Desc{
		{Type: Word, Offset: 0, Size: 4, NumComponents: 4},
		{Type: Variable, Offset: 0, Size: 2, NumComponents: 1},
		{Type: Text, Offset: 1, Size: 1, NumComponents: 0},
		{Type: Variable, Offset: 2, Size: 2, NumComponents: 1},
		{Type: Text, Offset: 3, Size: 1, NumComponents: 0},
	}

	got, err := Reify(script, descs)
	if err != nil {
		t.Fatalf("Reify: %v", err)
	}

	want := []Token{
		{
			Type: Word,
			Val:  "$a$b",
			Tokens: []Token{
				{Type: Variable, Val: "$a", Tokens: []Token{{Type: Text, Val: "a"}}},
				{Type: Variable, Val: "$b", Tokens: []Token{{Type: Text, Val: "b"}}},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Reify(%q) mismatch (-want +got):\n%s", script, diff)
	}
}

func TestReifyMultiWordCommand(t *testing.T) {
	script := "set a 1"
	descs := []Desc{
		{Type: SimpleWord, Offset: 0, Size: 3, NumComponents: 1},
		{Type: Text, Offset: 0, Size: 3, NumComponents: 0},
		{Type: SimpleWord, Offset: 4, Size: 1, NumComponents: 1},
		{Type: Text, Offset: 4, Size: 1, NumComponents: 0},
		{Type: SimpleWord, Offset: 6, Size: 1, NumComponents: 1},
		{Type: Text, Offset: 6, Size: 1, NumComponents: 0},
	}

	got, err := Reify(script, descs)
	if err != nil {
		t.Fatalf("Reify: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d words, want 3", len(got))
	}
	want := []string{"set", "a", "1"}
	for i, w := range want {
		if got[i].Val != w {
			t.Errorf("word[%d] = %q, want %q", i, got[i].Val, w)
		}
	}
}

func TestReifyBadNumComponents(t *testing.T) {
	script := "abc"
	descs := []Desc{
		{Type: SimpleWord, Offset: 0, Size: 3, NumComponents: 2},
		{Type: Text, Offset: 0, Size: 3, NumComponents: 0},
	}

	if _, err := Reify(script, descs); err == nil {
		t.Errorf("Reify with a SimpleWord of NumComponents=2 should have failed")
	}
}

func TestTokenIter(t *testing.T) {
	root := Token{
		Type: Word,
		Val:  "$a$b",
		Tokens: []Token{
			{Type: Variable, Val: "$a", Tokens: []Token{{Type: Text, Val: "a"}}},
			{Type: Variable, Val: "$b", Tokens: []Token{{Type: Text, Val: "b"}}},
		},
	}

	var seen []string
	root.Iter(func(t *Token) {
		seen = append(seen, t.Val)
	})

	want := []string{"$a$b", "$a", "a", "$b", "b"}
	if len(seen) != len(want) {
		t.Fatalf("visited %d nodes, want %d", len(seen), len(want))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("visit[%d] = %q, want %q", i, seen[i], want[i])
		}
	}
}
