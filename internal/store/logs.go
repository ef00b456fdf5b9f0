package store

import (
	"time"

	"github.com/plataforma-eventos/server/internal/domain/ids"
)

func (s *Store) Logs() ([]LogEntry, error) {
	s.logsMu.Lock()
	defer s.logsMu.Unlock()

	start := time.Now()
	logs, err := readAll[LogEntry](s.path(logsFile))
	observe("logs", "get_all", start, err)
	return logs, err
}

func (s *Store) SaveLogs(logs []LogEntry) error {
	s.logsMu.Lock()
	defer s.logsMu.Unlock()

	start := time.Now()
	err := writeAll(s.path(logsFile), logs)
	observe("logs", "save_all", start, err)
	return err
}

func (s *Store) CreateLog(entry LogEntry) (*LogEntry, error) {
	s.logsMu.Lock()
	defer s.logsMu.Unlock()

	start := time.Now()
	logs, err := readAll[LogEntry](s.path(logsFile))
	if err != nil {
		observe("logs", "create", start, err)
		return nil, err
	}

	entry.ID = ids.MustNewULID()
	entry.Timestamp = time.Now().UTC()

	logs = append(logs, entry)
	err = writeAll(s.path(logsFile), logs)
	observe("logs", "create", start, err)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Store) LogsByAction(action string) ([]LogEntry, error) {
	logs, err := s.Logs()
	if err != nil {
		return nil, err
	}

	matched := make([]LogEntry, 0, len(logs))
	for _, l := range logs {
		if l.Action == action {
			matched = append(matched, l)
		}
	}
	return matched, nil
}

func (s *Store) LogsByActor(actor string) ([]LogEntry, error) {
	logs, err := s.Logs()
	if err != nil {
		return nil, err
	}

	matched := make([]LogEntry, 0, len(logs))
	for _, l := range logs {
		if l.Actor == actor {
			matched = append(matched, l)
		}
	}
	return matched, nil
}
