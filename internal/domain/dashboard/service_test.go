package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/plataforma-eventos/server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeEmptyStore(t *testing.T) {
	st, err := store.New(t.TempDir())
	require.NoError(t, err)

	m, err := NewService(st).Compute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, m.Usuarios.Total)
	assert.Zero(t, m.Eventos.Total)
	assert.Zero(t, m.TotalPreguntas)
	assert.Empty(t, m.EventosPorSector)
	assert.Empty(t, m.EventosPorMes)
}

func TestComputeTotals(t *testing.T) {
	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = st.CreateUser(store.User{Email: "a@x.com", Aprobado: true})
	require.NoError(t, err)
	_, err = st.CreateUser(store.User{Email: "b@x.com", Aprobado: true})
	require.NoError(t, err)
	_, err = st.CreateUser(store.User{Email: "c@x.com"})
	require.NoError(t, err)

	seed := []store.Event{
		{Sector: "Educación", Categoria: "Taller", NumeroConvocados: 30},
		{Sector: "Educación", Categoria: "Charla", NumeroConvocados: 50, Finalizado: true},
		{Sector: "Salud", Categoria: "Taller", NumeroConvocados: 20},
	}
	var firstEvent *store.Event
	for _, e := range seed {
		created, err := st.CreateEvent(e)
		require.NoError(t, err)
		if firstEvent == nil {
			firstEvent = created
		}
	}

	_, err = st.CreatePregunta(store.Pregunta{EventID: firstEvent.ID, Pregunta: "¿Dónde?"})
	require.NoError(t, err)
	_, err = st.CreatePregunta(store.Pregunta{EventID: firstEvent.ID, Pregunta: "¿Cuándo?"})
	require.NoError(t, err)

	m, err := NewService(st).Compute(ctx)
	require.NoError(t, err)

	assert.Equal(t, UserTotals{Total: 3, Aprobados: 2, Pendientes: 1}, m.Usuarios)
	assert.Equal(t, EventTotals{Total: 3, Activos: 2, Finalizados: 1}, m.Eventos)
	assert.Equal(t, 100, m.TotalConvocados)
	assert.Equal(t, 2, m.TotalPreguntas)

	assert.Equal(t, map[string]int{"Educación": 2, "Salud": 1}, m.EventosPorSector)
	assert.Equal(t, map[string]int{"Taller": 2, "Charla": 1}, m.EventosPorCategoria)
	assert.Equal(t, map[string]int{"Educación": 80, "Salud": 20}, m.ConvocadosPorSector)

	// Everything created just now lands in the current month bucket.
	key := time.Now().UTC().Format("2006-01")
	assert.Equal(t, map[string]int{key: 3}, m.EventosPorMes)
	assert.Equal(t, map[string]int{key: 3}, m.UsuariosPorMes)
}
