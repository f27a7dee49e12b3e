package explore

import "github.com/joebot/botprobe/internal/blueprint"

// frontierItem is one not-yet-clicked callback button waiting in the
// BFS queue.
type frontierItem struct {
	msgID      int
	buttonText string
	buttonData string
	depth      int
	parentPath string
}

// traversal is the mutable BFS state shared by every drain in a run:
// the FIFO frontier, the global visited-payload set and the global
// click budget. It is owned by a single goroutine for the whole run, so
// no locking. Passing it explicitly keeps drains testable without a
// live bot.
type traversal struct {
	queue      []frontierItem
	visited    map[string]bool
	clicked    int
	maxDepth   int
	maxButtons int
}

func newTraversal(maxDepth, maxButtons int) *traversal {
	return &traversal{
		visited:    make(map[string]bool),
		maxDepth:   maxDepth,
		maxButtons: maxButtons,
	}
}

// seedFrom enqueues every callback button of msg whose payload has not
// been seen before. The visited set is the single dedup authority: a
// payload enters the frontier at most once per run, which is what makes
// traversal terminate on cyclic bot menus.
func (t *traversal) seedFrom(msg *blueprint.Message, depth int, parentPath string) {
	if msg == nil || msg.ID == 0 {
		return
	}
	for _, b := range msg.CallbackButtons() {
		if t.visited[b.Data] {
			continue
		}
		t.visited[b.Data] = true
		t.queue = append(t.queue, frontierItem{
			msgID:      msg.ID,
			buttonText: b.Text,
			buttonData: b.Data,
			depth:      depth,
			parentPath: parentPath,
		})
	}
}

// pop removes and returns the oldest frontier item.
func (t *traversal) pop() (frontierItem, bool) {
	if len(t.queue) == 0 {
		return frontierItem{}, false
	}
	item := t.queue[0]
	t.queue = t.queue[1:]
	return item, true
}

// budgetLeft reports whether another click fits the global budget.
func (t *traversal) budgetLeft() bool {
	return t.clicked < t.maxButtons
}

// pathLabel builds the route label for a clicked button. Button text
// containing the delimiter itself yields an ambiguous path; that is a
// known limitation, not silently repaired.
func pathLabel(parentPath, buttonText string) string {
	return parentPath + " > [" + buttonText + "]"
}
