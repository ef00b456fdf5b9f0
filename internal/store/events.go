package store

import (
	"time"

	"github.com/plataforma-eventos/server/internal/domain/ids"
)

// EventPatch is a shallow merge over the stored event. Slice and struct
// fields replace wholesale when set; nil fields keep the stored value.
type EventPatch struct {
	Sector           *string
	Categoria        *string
	Titulo           *string
	Descripcion      *string
	Contactos        *[]Contacto
	Fecha            *string
	HoraInicio       *string
	HoraFin          *string
	Ubicacion        *string
	NumeroConvocados *int
	Autoridades      *[]Autoridad
	AsignadoA        *string
	Finalizado       *bool
	Informe          *Informe
	QRCode           *QRCode
}

func (s *Store) Events() ([]Event, error) {
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()

	start := time.Now()
	events, err := readAll[Event](s.path(eventsFile))
	observe("events", "get_all", start, err)
	return events, err
}

func (s *Store) SaveEvents(events []Event) error {
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()

	start := time.Now()
	err := writeAll(s.path(eventsFile), events)
	observe("events", "save_all", start, err)
	return err
}

func (s *Store) CreateEvent(event Event) (*Event, error) {
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()

	start := time.Now()
	events, err := readAll[Event](s.path(eventsFile))
	if err != nil {
		observe("events", "create", start, err)
		return nil, err
	}

	now := time.Now().UTC()
	event.ID = ids.MustNewULID()
	event.CreatedAt = now
	event.UpdatedAt = now

	events = append(events, event)
	err = writeAll(s.path(eventsFile), events)
	observe("events", "create", start, err)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEvent merges the patch and refreshes updatedAt. A finalized event
// rejects every mutation with ErrEventFinalized, including the one that
// would try to flip finalizado back. A missing id returns (nil, nil).
func (s *Store) UpdateEvent(id string, patch EventPatch) (*Event, error) {
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()

	start := time.Now()
	events, err := readAll[Event](s.path(eventsFile))
	if err != nil {
		observe("events", "update", start, err)
		return nil, err
	}

	idx := -1
	for i := range events {
		if events[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		observe("events", "update", start, nil)
		return nil, nil
	}

	event := &events[idx]
	if event.Finalizado {
		observe("events", "update", start, ErrEventFinalized)
		return nil, ErrEventFinalized
	}

	if patch.Sector != nil {
		event.Sector = *patch.Sector
	}
	if patch.Categoria != nil {
		event.Categoria = *patch.Categoria
	}
	if patch.Titulo != nil {
		event.Titulo = *patch.Titulo
	}
	if patch.Descripcion != nil {
		event.Descripcion = *patch.Descripcion
	}
	if patch.Contactos != nil {
		event.Contactos = *patch.Contactos
	}
	if patch.Fecha != nil {
		event.Fecha = *patch.Fecha
	}
	if patch.HoraInicio != nil {
		event.HoraInicio = *patch.HoraInicio
	}
	if patch.HoraFin != nil {
		event.HoraFin = *patch.HoraFin
	}
	if patch.Ubicacion != nil {
		event.Ubicacion = *patch.Ubicacion
	}
	if patch.NumeroConvocados != nil {
		event.NumeroConvocados = *patch.NumeroConvocados
	}
	if patch.Autoridades != nil {
		event.Autoridades = *patch.Autoridades
	}
	if patch.AsignadoA != nil {
		event.AsignadoA = *patch.AsignadoA
	}
	if patch.Finalizado != nil {
		event.Finalizado = *patch.Finalizado
	}
	if patch.Informe != nil {
		event.Informe = patch.Informe
	}
	if patch.QRCode != nil {
		event.QRCode = patch.QRCode
	}
	event.UpdatedAt = time.Now().UTC()

	err = writeAll(s.path(eventsFile), events)
	observe("events", "update", start, err)
	if err != nil {
		return nil, err
	}
	updated := *event
	return &updated, nil
}

// DeleteEvent removes the event by id. Finalized events cannot be deleted.
// Returns false when the id does not exist.
func (s *Store) DeleteEvent(id string) (bool, error) {
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()

	start := time.Now()
	events, err := readAll[Event](s.path(eventsFile))
	if err != nil {
		observe("events", "delete", start, err)
		return false, err
	}

	idx := -1
	for i := range events {
		if events[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		observe("events", "delete", start, nil)
		return false, nil
	}
	if events[idx].Finalizado {
		observe("events", "delete", start, ErrEventFinalized)
		return false, ErrEventFinalized
	}

	events = append(events[:idx], events[idx+1:]...)
	err = writeAll(s.path(eventsFile), events)
	observe("events", "delete", start, err)
	if err != nil {
		return false, err
	}
	return true, nil
}
