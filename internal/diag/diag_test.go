package diag

import (
	"errors"
	"strings"
	"testing"

	"github.com/you-not-fish/islec/internal/syntax"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"type", Errorf(Type, syntax.NewPos("a.isle", 3, 4), "unknown variable '%s'", "y"),
			"a.isle:3:4: type error: unknown variable 'y'"},
		{"unreachable", Errorf(Unreachable, syntax.NewPos("a.isle", 1, 1), "rule requires binding to match both A and B"),
			"a.isle:1:1: unreachable rule: rule requires binding to match both A and B"},
		{"no position", &Error{Kind: IO, Msg: "reading x", Err: errors.New("boom")},
			"io error: reading x: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindClasses(t *testing.T) {
	for _, k := range []Kind{Parse, Type, IO} {
		if !k.Fatal() || k.Advisory() {
			t.Errorf("%s: fatal=%v advisory=%v", k, k.Fatal(), k.Advisory())
		}
	}
	for _, k := range []Kind{Overlap, Shadowed} {
		if k.Fatal() || !k.Advisory() {
			t.Errorf("%s: fatal=%v advisory=%v", k, k.Fatal(), k.Advisory())
		}
	}
	if Unreachable.Fatal() || Unreachable.Advisory() {
		t.Error("unreachable must drop its rule without stopping compilation")
	}
}

func TestListSortAndAggregate(t *testing.T) {
	var l List
	l.Addf(Overlap, syntax.NewPos("a", 5, 1), "rules are overlapping")
	l.Addf(Type, syntax.NewPos("a", 2, 1), "second")
	l.Addf(Type, syntax.NewPos("a", 2, 1), "third")
	l.Add(&Error{Kind: IO, Msg: "first"})

	l.Sort()
	var msgs []string
	for _, e := range l {
		msgs = append(msgs, e.Msg)
	}
	if got := strings.Join(msgs, ","); got != "first,second,third,rules are overlapping" {
		t.Errorf("sorted order = %s", got)
	}

	if !l.HasFatal() || l.Count(Type) != 2 || len(l.Filter(Overlap, Shadowed)) != 1 {
		t.Errorf("HasFatal=%v Count(Type)=%d", l.HasFatal(), l.Count(Type))
	}

	err := l.Err()
	if err == nil || !strings.Contains(err.Error(), "second") {
		t.Errorf("Err() = %v", err)
	}
	if (List{}).Err() != nil {
		t.Error("empty list must have a nil error")
	}
}
