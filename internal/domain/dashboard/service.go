// Package dashboard aggregates admin metrics over the four collections.
// Everything is computed on demand with linear scans; collection sizes make
// precomputation pointless.
package dashboard

import (
	"context"
	"time"

	"github.com/plataforma-eventos/server/internal/store"
)

// monthsWindow is the trailing window for the per-month series.
const monthsWindow = 6

type UserTotals struct {
	Total      int `json:"total"`
	Aprobados  int `json:"aprobados"`
	Pendientes int `json:"pendientes"`
}

type EventTotals struct {
	Total       int `json:"total"`
	Activos     int `json:"activos"`
	Finalizados int `json:"finalizados"`
}

type Metrics struct {
	Usuarios            UserTotals     `json:"usuarios"`
	Eventos             EventTotals    `json:"eventos"`
	TotalConvocados     int            `json:"totalConvocados"`
	TotalPreguntas      int            `json:"totalPreguntas"`
	EventosPorSector    map[string]int `json:"eventosPorSector"`
	EventosPorCategoria map[string]int `json:"eventosPorCategoria"`
	ConvocadosPorSector map[string]int `json:"convocadosPorSector"`
	EventosPorMes       map[string]int `json:"eventosPorMes"`
	UsuariosPorMes      map[string]int `json:"usuariosPorMes"`
}

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

func (s *Service) Compute(ctx context.Context) (*Metrics, error) {
	users, err := s.store.Users()
	if err != nil {
		return nil, err
	}
	events, err := s.store.Events()
	if err != nil {
		return nil, err
	}
	preguntas, err := s.store.Preguntas()
	if err != nil {
		return nil, err
	}

	m := &Metrics{
		TotalPreguntas:      len(preguntas),
		EventosPorSector:    map[string]int{},
		EventosPorCategoria: map[string]int{},
		ConvocadosPorSector: map[string]int{},
		EventosPorMes:       map[string]int{},
		UsuariosPorMes:      map[string]int{},
	}

	m.Usuarios.Total = len(users)
	for _, u := range users {
		if u.Aprobado {
			m.Usuarios.Aprobados++
		} else {
			m.Usuarios.Pendientes++
		}
	}

	cutoff := time.Now().AddDate(0, -monthsWindow, 0)

	m.Eventos.Total = len(events)
	for _, e := range events {
		if e.Finalizado {
			m.Eventos.Finalizados++
		} else {
			m.Eventos.Activos++
		}
		m.TotalConvocados += e.NumeroConvocados
		m.EventosPorSector[e.Sector]++
		m.EventosPorCategoria[e.Categoria]++
		m.ConvocadosPorSector[e.Sector] += e.NumeroConvocados

		if e.CreatedAt.After(cutoff) {
			m.EventosPorMes[monthKey(e.CreatedAt)]++
		}
	}

	for _, u := range users {
		if u.CreatedAt.After(cutoff) {
			m.UsuariosPorMes[monthKey(u.CreatedAt)]++
		}
	}

	return m, nil
}

func monthKey(t time.Time) string {
	return t.Format("2006-01")
}
