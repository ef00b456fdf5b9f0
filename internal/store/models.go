package store

import "time"

// User is a platform account. New registrations always start as an
// unapproved colaborador; only an admin flips Aprobado.
type User struct {
	ID        string    `json:"id"`
	Nombre    string    `json:"nombre"`
	Apellido  string    `json:"apellido"`
	Email     string    `json:"email"`
	Celular   string    `json:"celular"`
	Sector    string    `json:"sector"`
	Rol       string    `json:"rol"`
	Password  string    `json:"password"`
	Aprobado  bool      `json:"aprobado"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Contacto struct {
	ID       string `json:"id"`
	Nombre   string `json:"nombre"`
	Telefono string `json:"telefono"`
	Email    string `json:"email,omitempty"`
}

type Autoridad struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Cargo  string `json:"cargo"`
}

// Informe is the post-event report. Finalization requires a non-empty
// Resumen and at least one image.
type Informe struct {
	Resumen  string    `json:"resumen"`
	Imagenes []string  `json:"imagenes"`
	Videos   []string  `json:"videos"`
	SubidoEn time.Time `json:"subidoEn"`
}

// QRCode caches the generated questions-form QR so repeat requests do not
// re-encode the PNG.
type QRCode struct {
	Data       string    `json:"data"`
	URL        string    `json:"url"`
	GeneradoEn time.Time `json:"generadoEn"`
}

type Event struct {
	ID               string      `json:"id"`
	Sector           string      `json:"sector"`
	Categoria        string      `json:"categoria"`
	Titulo           string      `json:"titulo"`
	Descripcion      string      `json:"descripcion"`
	Contactos        []Contacto  `json:"contactos"`
	Fecha            string      `json:"fecha"`
	HoraInicio       string      `json:"horaInicio"`
	HoraFin          string      `json:"horaFin"`
	Ubicacion        string      `json:"ubicacion"`
	NumeroConvocados int         `json:"numeroConvocados"`
	Autoridades      []Autoridad `json:"autoridades"`
	CreadoPor        string      `json:"creadoPor"`
	AsignadoA        string      `json:"asignadoA,omitempty"`
	Finalizado       bool        `json:"finalizado"`
	Informe          *Informe    `json:"informe,omitempty"`
	QRCode           *QRCode     `json:"qrCode,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// Pregunta is a public question submitted against an event. Created only by
// the unauthenticated submission form; never updated or deleted.
type Pregunta struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	Nombre    string    `json:"nombre,omitempty"`
	Pregunta  string    `json:"pregunta"`
	CreatedAt time.Time `json:"createdAt"`
}

// LogEntry is an append-only audit record.
type LogEntry struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Actor     string            `json:"actor"`
	Action    string            `json:"action"`
	TargetID  string            `json:"targetId,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
}
