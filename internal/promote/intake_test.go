package promote

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kingrea/promotor/internal/prompt"
	"github.com/kingrea/promotor/internal/proposal"
	"github.com/kingrea/promotor/internal/store"
)

func TestIntake(t *testing.T) {
	pool := store.NewMemoryPool()
	pool.Put(0, proposal.Proposal{Name: "existing", Authors: []string{"x"}})
	pr := &prompt.Scripted{Answers: []string{"New rule", "Alice, Bob", "2.5"}, Text: "Body\n"}
	p, err := Intake(pr, pool, NumberingSequential)
	if err != nil {
		t.Fatalf("intake: %v", err)
	}
	if p.Number != 1 || p.Name != "New rule" || p.AI != 2.5 {
		t.Fatalf("unexpected proposal %+v", p)
	}
	stored, err := pool.Load(1)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Alice", "Bob"}, stored.Authors); diff != "" {
		t.Fatalf("authors (-want +got):\n%s", diff)
	}
}

func TestIntakeRejectsBadInput(t *testing.T) {
	cases := map[string][]string{
		"authors": {"T", " , ", "1"},
		"AI":      {"T", "A", "lots"},
	}
	for field, answers := range cases {
		_, err := Intake(&prompt.Scripted{Answers: answers}, store.NewMemoryPool(), NumberingSequential)
		var inErr *InputError
		if !errors.As(err, &inErr) || inErr.Field != field {
			t.Fatalf("%s: expected InputError, got %v", field, err)
		}
	}
	_, err := Intake(&prompt.Scripted{Answers: []string{"T", "A", "1", "zero"}}, store.NewMemoryPool(), NumberingFixed)
	var inErr *InputError
	if !errors.As(err, &inErr) || inErr.Field != "ID" {
		t.Fatalf("expected ID InputError, got %v", err)
	}
}
