package store

import (
	"time"

	"github.com/plataforma-eventos/server/internal/domain/ids"
)

func (s *Store) Preguntas() ([]Pregunta, error) {
	s.preguntasMu.Lock()
	defer s.preguntasMu.Unlock()

	start := time.Now()
	preguntas, err := readAll[Pregunta](s.path(preguntasFile))
	observe("preguntas", "get_all", start, err)
	return preguntas, err
}

func (s *Store) SavePreguntas(preguntas []Pregunta) error {
	s.preguntasMu.Lock()
	defer s.preguntasMu.Unlock()

	start := time.Now()
	err := writeAll(s.path(preguntasFile), preguntas)
	observe("preguntas", "save_all", start, err)
	return err
}

func (s *Store) CreatePregunta(pregunta Pregunta) (*Pregunta, error) {
	s.preguntasMu.Lock()
	defer s.preguntasMu.Unlock()

	start := time.Now()
	preguntas, err := readAll[Pregunta](s.path(preguntasFile))
	if err != nil {
		observe("preguntas", "create", start, err)
		return nil, err
	}

	pregunta.ID = ids.MustNewULID()
	pregunta.CreatedAt = time.Now().UTC()

	preguntas = append(preguntas, pregunta)
	err = writeAll(s.path(preguntasFile), preguntas)
	observe("preguntas", "create", start, err)
	if err != nil {
		return nil, err
	}
	return &pregunta, nil
}

// PreguntasByEvent filters the collection by owning event. Linear scan;
// collections stay small enough that an index buys nothing.
func (s *Store) PreguntasByEvent(eventID string) ([]Pregunta, error) {
	preguntas, err := s.Preguntas()
	if err != nil {
		return nil, err
	}

	matched := make([]Pregunta, 0, len(preguntas))
	for _, p := range preguntas {
		if p.EventID == eventID {
			matched = append(matched, p)
		}
	}
	return matched, nil
}
