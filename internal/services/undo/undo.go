// Package undo реализует хранилище последней удалённой задачи пользователя.
//
// Хранилище живёт только в памяти процесса и теряется при рестарте:
// это одноразовый слот для отмены последнего массового удаления, а не
// персистентные данные. На пользователя хранится ровно одна задача,
// новая запись вытесняет предыдущую.
package undo

import (
	"sync"

	"github.com/magabrotheeeer/task-reporter/internal/models"
)

// Store хранит по одной последней удалённой задаче на пользователя.
// Доступ сериализуется мьютексом, ключ — идентификатор пользователя,
// поэтому конкурентные удаления разных пользователей не пересекаются.
type Store struct {
	mu    sync.Mutex
	slots map[int]models.Task
}

// New создает новый экземпляр Store.
func New() *Store {
	return &Store{
		slots: make(map[int]models.Task),
	}
}

// Put сохраняет задачу в слот пользователя, вытесняя предыдущую.
func (s *Store) Put(userID int, task models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[userID] = task
}

// Get возвращает задачу из слота пользователя, не очищая его.
func (s *Store) Get(userID int) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.slots[userID]
	return task, ok
}

// Clear очищает слот пользователя.
func (s *Store) Clear(userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, userID)
}
