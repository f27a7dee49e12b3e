package explore

import (
	"testing"

	"github.com/joebot/botprobe/internal/blueprint"
)

func cb(text, data string) blueprint.Button {
	return blueprint.Button{Text: text, Type: blueprint.ButtonCallback, Data: data}
}

func msgWith(id int, text string, buttons ...blueprint.Button) *blueprint.Message {
	return &blueprint.Message{
		ID:            id,
		Text:          text,
		InlineButtons: [][]blueprint.Button{buttons},
	}
}

func TestSeedFromDedupsByPayload(t *testing.T) {
	tv := newTraversal(5, 100)

	tv.seedFrom(msgWith(1, "menu", cb("A", "a"), cb("B", "b")), 1, "/start")
	tv.seedFrom(msgWith(2, "menu again", cb("A renamed", "a"), cb("C", "c")), 1, "/help")

	if len(tv.queue) != 3 {
		t.Fatalf("queue has %d items, want 3", len(tv.queue))
	}
	got := []string{tv.queue[0].buttonData, tv.queue[1].buttonData, tv.queue[2].buttonData}
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("queue[%d].buttonData = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSeedFromSkipsUnsentMessages(t *testing.T) {
	tv := newTraversal(5, 100)
	tv.seedFrom(msgWith(0, "phantom", cb("A", "a")), 1, "/start")
	tv.seedFrom(nil, 1, "/start")
	if len(tv.queue) != 0 {
		t.Errorf("queue has %d items, want 0", len(tv.queue))
	}
}

func TestSeedFromSkipsNonCallbackButtons(t *testing.T) {
	tv := newTraversal(5, 100)
	tv.seedFrom(msgWith(1, "mixed",
		cb("A", "a"),
		blueprint.Button{Text: "Site", Type: blueprint.ButtonURL, URL: "https://example.com"},
		blueprint.Button{Text: "Empty", Type: blueprint.ButtonCallback},
	), 1, "/start")
	if len(tv.queue) != 1 {
		t.Fatalf("queue has %d items, want 1", len(tv.queue))
	}
	if tv.queue[0].buttonData != "a" {
		t.Errorf("queued %q, want %q", tv.queue[0].buttonData, "a")
	}
}

func TestPopIsFIFO(t *testing.T) {
	tv := newTraversal(5, 100)
	tv.seedFrom(msgWith(1, "menu", cb("A", "a"), cb("B", "b")), 1, "/start")

	first, ok := tv.pop()
	if !ok || first.buttonData != "a" {
		t.Errorf("first pop = %q, want %q", first.buttonData, "a")
	}
	second, ok := tv.pop()
	if !ok || second.buttonData != "b" {
		t.Errorf("second pop = %q, want %q", second.buttonData, "b")
	}
	if _, ok := tv.pop(); ok {
		t.Error("pop on empty queue reported ok")
	}
}

func TestBudget(t *testing.T) {
	tv := newTraversal(5, 2)
	if !tv.budgetLeft() {
		t.Fatal("fresh traversal has no budget")
	}
	tv.clicked = 2
	if tv.budgetLeft() {
		t.Error("budget not exhausted after maxButtons clicks")
	}
}

func TestPathLabel(t *testing.T) {
	got := pathLabel("/start", "Main Menu")
	if got != "/start > [Main Menu]" {
		t.Errorf("pathLabel = %q", got)
	}
	got = pathLabel(got, "Settings")
	if got != "/start > [Main Menu] > [Settings]" {
		t.Errorf("nested pathLabel = %q", got)
	}
}
