package todo

import (
	"testing"
	"time"

	"github.com/ayush/taskgate/internal/models"
)

var fixedNow = time.UnixMilli(1_700_000_000_000)

func TestListAdd(t *testing.T) {
	var l List
	l, ok := l.Add("  buy milk  ", fixedNow)
	if !ok {
		t.Fatal("expected task to be added")
	}
	if len(l) != 1 || l[0].Text != "buy milk" || l[0].Done() {
		t.Fatalf("unexpected list %+v", l)
	}
	if l[0].ID != fixedNow.UnixMilli() {
		t.Fatalf("expected id from clock, got %d", l[0].ID)
	}
}

func TestListAddBlankIsNoop(t *testing.T) {
	l := List{{ID: 1, Text: "a"}}
	for _, text := range []string{"", "   ", "\t\n"} {
		got, ok := l.Add(text, fixedNow)
		if ok || len(got) != 1 {
			t.Fatalf("Add(%q) changed the list: %+v", text, got)
		}
	}
}

func TestListAddAvoidsIDCollision(t *testing.T) {
	var l List
	l, _ = l.Add("first", fixedNow)
	l, _ = l.Add("second", fixedNow)
	l, _ = l.Add("third", fixedNow)
	seen := map[int64]bool{}
	for _, task := range l {
		if seen[task.ID] {
			t.Fatalf("duplicate id %d in %+v", task.ID, l)
		}
		seen[task.ID] = true
	}
}

func TestListAddDoesNotModifyReceiver(t *testing.T) {
	base := make(List, 1, 4)
	base[0] = models.Task{ID: 1, Text: "a"}
	a, _ := base.Add("b", fixedNow)
	c, _ := base.Add("c", fixedNow)
	if a[1].Text != "b" || c[1].Text != "c" || len(base) != 1 {
		t.Fatalf("lists share state: base=%+v a=%+v c=%+v", base, a, c)
	}
}

func TestListToggleTwiceRestores(t *testing.T) {
	l := List{{ID: 1, Text: "a"}, {ID: 2, Text: "b", Completed: models.Completed}}

	once := l.Toggle(1)
	if !once[0].Done() || !once[1].Done() {
		t.Fatalf("unexpected toggle result %+v", once)
	}
	if l[0].Done() {
		t.Fatal("toggle modified the receiver")
	}
	twice := once.Toggle(1)
	if twice[0] != l[0] || twice[1] != l[1] {
		t.Fatalf("expected original list, got %+v", twice)
	}
}

func TestListToggleMissingID(t *testing.T) {
	l := List{{ID: 1, Text: "a"}}
	if got := l.Toggle(99); got[0] != l[0] {
		t.Fatalf("expected no change, got %+v", got)
	}
}

func TestListRemove(t *testing.T) {
	l := List{{ID: 1, Text: "a"}, {ID: 2, Text: "b"}, {ID: 3, Text: "c"}}

	got := l.Remove(2)
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("unexpected list %+v", got)
	}
	if got := l.Remove(42); len(got) != 3 {
		t.Fatalf("expected missing id to be a no-op, got %+v", got)
	}
}

func TestListRemoveCompleted(t *testing.T) {
	l := List{
		{ID: 1, Text: "a", Completed: models.Completed},
		{ID: 2, Text: "b"},
		{ID: 3, Text: "c", Completed: models.Completed},
	}
	got := l.RemoveCompleted()
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("unexpected list %+v", got)
	}
}

func TestListStats(t *testing.T) {
	l := List{
		{ID: 1, Completed: models.Completed},
		{ID: 2},
		{ID: 3},
	}
	want := models.Stats{Total: 3, Completed: 1, Remaining: 2}
	if got := l.Stats(); got != want {
		t.Fatalf("Stats() = %+v, want %+v", got, want)
	}
	if got := (List{}).Stats(); got != (models.Stats{}) {
		t.Fatalf("expected zero stats, got %+v", got)
	}
}

func TestListFind(t *testing.T) {
	l := List{{ID: 7, Text: "x"}}
	if task, ok := l.Find(7); !ok || task.Text != "x" {
		t.Fatalf("expected to find task 7, got %+v ok=%v", task, ok)
	}
	if _, ok := l.Find(8); ok {
		t.Fatal("expected task 8 to be missing")
	}
}
