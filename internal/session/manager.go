package session

import (
	"errors"
	"log"
	"sync"

	"crateledger/internal/crates"
	"crateledger/internal/utils"
)

// ErrSessionNotFound - сессии с таким ID нет (не открывалась или уже закрыта).
var ErrSessionNotFound = errors.New("сессия реестра ящиков не найдена")

// SessionManager хранит открытые сессии редактирования реестра ящиков.
// SessionManager keeps the open crate ledger editing sessions.
type SessionManager struct {
	sessions      map[string]*EditingSession // Ключ: ID сессии (UUID)
	sessionsMutex sync.RWMutex
}

// NewSessionManager создает и возвращает новый экземпляр SessionManager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*EditingSession),
	}
}

// Open создает новую сессию для периода с посчитанными итогами по заказам.
func (sm *SessionManager) Open(from, to string, aggs []crates.DriverAggregate) *EditingSession {
	es := NewEditingSession(utils.GenerateUUID(), from, to, aggs)

	sm.sessionsMutex.Lock()
	sm.sessions[es.ID] = es
	sm.sessionsMutex.Unlock()

	log.Printf("SessionManager.Open: Сессия %s открыта для периода %s..%s (%d водителей из заказов).", es.ID, from, to, len(aggs))
	return es
}

// Get возвращает открытую сессию.
func (sm *SessionManager) Get(id string) (*EditingSession, error) {
	sm.sessionsMutex.RLock()
	defer sm.sessionsMutex.RUnlock()
	es, ok := sm.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return es, nil
}

// Close закрывает сессию; все несохраненные правки теряются.
func (sm *SessionManager) Close(id string) bool {
	sm.sessionsMutex.Lock()
	defer sm.sessionsMutex.Unlock()
	if _, ok := sm.sessions[id]; !ok {
		return false
	}
	delete(sm.sessions, id)
	log.Printf("SessionManager.Close: Сессия %s закрыта, несохраненные правки отброшены.", id)
	return true
}

// Count возвращает количество открытых сессий.
func (sm *SessionManager) Count() int {
	sm.sessionsMutex.RLock()
	defer sm.sessionsMutex.RUnlock()
	return len(sm.sessions)
}
