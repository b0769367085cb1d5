// Package todo holds a user's task list: the list transitions, the view state
// machine that loads and saves it, and the HTTP handlers over both.
package todo

import (
	"strings"
	"time"

	"github.com/ayush/taskgate/internal/models"
)

// List is an ordered task collection. Its methods return new lists and never
// modify the receiver.
type List []models.Task

// Add appends a task with the trimmed text. Blank text returns the list
// unchanged and false.
func (l List) Add(text string, now time.Time) (List, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return l, false
	}
	task := models.Task{ID: l.nextID(now), Text: text, Completed: models.Pending}
	out := make(List, len(l), len(l)+1)
	copy(out, l)
	return append(out, task), true
}

// nextID uses the creation time in milliseconds, moving forward while it
// collides with an existing id.
func (l List) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	for l.has(id) {
		id++
	}
	return id
}

func (l List) has(id int64) bool {
	for _, t := range l {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Toggle flips the completed flag of the task with id.
func (l List) Toggle(id int64) List {
	out := make(List, len(l))
	for i, t := range l {
		if t.ID == id {
			if t.Completed == models.Completed {
				t.Completed = models.Pending
			} else {
				t.Completed = models.Completed
			}
		}
		out[i] = t
	}
	return out
}

// Remove drops the task with id. A missing id is a no-op.
func (l List) Remove(id int64) List {
	return l.filter(func(t models.Task) bool { return t.ID != id })
}

// RemoveCompleted drops every completed task.
func (l List) RemoveCompleted() List {
	return l.filter(func(t models.Task) bool { return !t.Done() })
}

func (l List) filter(keep func(models.Task) bool) List {
	out := make(List, 0, len(l))
	for _, t := range l {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// Stats counts total, completed and remaining tasks.
func (l List) Stats() models.Stats {
	var s models.Stats
	s.Total = len(l)
	for _, t := range l {
		if t.Done() {
			s.Completed++
		}
	}
	s.Remaining = s.Total - s.Completed
	return s
}

// Find returns the task with id.
func (l List) Find(id int64) (models.Task, bool) {
	for _, t := range l {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}
