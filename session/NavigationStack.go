package session

import (
	"sync"

	"github.com/google/uuid"
)

// ItemModel marks one level of the browsing hierarchy.
type ItemModel struct {
	ID       string
	Name     string
	Path     string
	IsFolder bool
	IsRoot   bool
}

func NewRootItem() ItemModel {
	return ItemModel{ID: uuid.NewString(), Name: "/", IsFolder: true, IsRoot: true}
}

func NewItem(path string, isFolder bool) ItemModel {
	return ItemModel{ID: uuid.NewString(), Name: path, Path: path, IsFolder: isFolder}
}

// NavigationStack is an append-only sequence of ItemModels.
type NavigationStack struct {
	mu    sync.Mutex
	items []ItemModel
}

func (s *NavigationStack) Push(item ItemModel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
}

func (s *NavigationStack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Items returns a copy of the stack, bottom first.
func (s *NavigationStack) Items() []ItemModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ItemModel(nil), s.items...)
}

// Top returns the most recently pushed item.
func (s *NavigationStack) Top() (ItemModel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return ItemModel{}, false
	}
	return s.items[len(s.items)-1], true
}
