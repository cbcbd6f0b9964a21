package models

import (
	"time"
)

// Core identity models

// User represents a platform user (docente, estudiante or admin)
type User struct {
	ID              int64     `json:"id" db:"id"`
	Nombre          string    `json:"nombre" db:"nombre"`
	Apellido        string    `json:"apellido" db:"apellido"`
	NumeroDocumento string    `json:"numero_documento" db:"numero_documento"`
	Usuario         string    `json:"usuario" db:"usuario"`
	FechaNacimiento string    `json:"fecha_nacimiento" db:"fecha_nacimiento"`
	Direccion       string    `json:"direccion" db:"direccion"`
	Email           string    `json:"email" db:"email"`
	Imagen          *string   `json:"imagen,omitempty" db:"imagen"`
	PasswordHash    string    `json:"-" db:"password_hash"` // Never expose password hash in JSON
	TipoDocumentoID int64     `json:"id_tipo_documento" db:"id_tipo_documento"`
	RolID           int64     `json:"id_rol" db:"id_rol"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// UserProfile is a user hydrated with the relations the frontend renders
// after conversation creation: enrolled courses, comments and conversations.
type UserProfile struct {
	User
	CursosEstudiante []Curso        `json:"cursos_estudiante"`
	Comentarios      []Comentario   `json:"comentarios"`
	Conversaciones   []Conversacion `json:"conversaciones"`
}

// Role constants (id_rol values)
const (
	RolAdmin      int64 = 1
	RolDocente    int64 = 2
	RolEstudiante int64 = 3
)

// Catalog models

// Categoria groups courses by topic
type Categoria struct {
	ID          int64     `json:"id" db:"id"`
	Nombre      string    `json:"nombre" db:"nombre"`
	Descripcion *string   `json:"descripcion,omitempty" db:"descripcion"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Curso represents a course taught by a docente
type Curso struct {
	ID          int64     `json:"id" db:"id"`
	Titulo      string    `json:"titulo" db:"titulo"`
	Imagen      *string   `json:"imagen,omitempty" db:"imagen"`
	Duracion    string    `json:"duracion" db:"duracion"`
	Estado      int       `json:"estado" db:"estado"`
	FechaInicio string    `json:"fecha_inicio" db:"fecha_inicio"`
	FechaFin    string    `json:"fecha_fin" db:"fecha_fin"`
	Descripcion string    `json:"descripcion" db:"descripcion"`
	DocenteID   int64     `json:"id_docente" db:"id_docente"`
	CategoriaID int64     `json:"id_categoria" db:"id_categoria"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	// Eager-loaded relations, populated on demand
	Docente          *User        `json:"docente,omitempty"`
	Categoria        *Categoria   `json:"categoria,omitempty"`
	Lecciones        []Leccion    `json:"lecciones,omitempty"`
	Comentarios      []Comentario `json:"comentarios,omitempty"`
	Estudiantes      []User       `json:"estudiantes,omitempty"`
	EstudiantesCount *int         `json:"estudiantes_count,omitempty"`
}

// Leccion is a single lesson inside a course
type Leccion struct {
	ID          int64     `json:"id" db:"id"`
	Titulo      string    `json:"titulo" db:"titulo"`
	Descripcion string    `json:"descripcion" db:"descripcion"`
	CursoID     int64     `json:"id_curso" db:"id_curso"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	Curso    *Curso           `json:"curso,omitempty"`
	Archivos []ArchivoLeccion `json:"archivos,omitempty"`
}

// ArchivoLeccion is the metadata of a file attached to a lesson.
// The file contents live in external storage; only nombre/tipo/ubicacion
// are tracked here.
type ArchivoLeccion struct {
	ID        int64     `json:"id" db:"id"`
	Nombre    string    `json:"nombre" db:"nombre"`
	Tipo      string    `json:"tipo" db:"tipo"`
	Ubicacion string    `json:"ubicacion" db:"ubicacion"`
	LeccionID int64     `json:"id_leccion" db:"id_leccion"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Comentario is a user comment on a course
type Comentario struct {
	ID        int64     `json:"id" db:"id"`
	Contenido string    `json:"contenido" db:"contenido"`
	CursoID   int64     `json:"id_curso" db:"id_curso"`
	UserID    int64     `json:"id_usuario" db:"id_usuario"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	User *User `json:"user,omitempty"`
}

// Inscripcion is the enrollment of an estudiante into a curso
// (curso_estudiante join table).
type Inscripcion struct {
	ID           int64     `json:"id" db:"id"`
	CursoID      int64     `json:"id_curso" db:"id_curso"`
	EstudianteID int64     `json:"id_estudiante" db:"id_estudiante"`
	Estado       bool      `json:"estado" db:"estado"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	Curso *Curso `json:"curso,omitempty"`
}

// Chat models

// Conversacion is a container for an ordered set of messages among its
// participants. estado and id_tipo_conversacion are fixed at creation.
type Conversacion struct {
	ID        int64     `json:"id" db:"id"`
	Estado    int       `json:"estado" db:"estado"`
	TipoID    int64     `json:"id_tipo_conversacion" db:"id_tipo_conversacion"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Mensajes      []Mensaje      `json:"mensajes,omitempty"`
	Participantes []Participante `json:"participantes,omitempty"`
}

// Participante binds one user to one conversation. The participant set of a
// conversation is fixed at creation time.
type Participante struct {
	ID             int64     `json:"id" db:"id"`
	ConversacionID int64     `json:"id_conversacion" db:"id_conversacion"`
	UserID         int64     `json:"id_usuario" db:"id_usuario"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty"`
}

// Mensaje is immutable once created; estado is a caller-supplied
// delivery/read marker.
type Mensaje struct {
	ID             int64     `json:"id" db:"id"`
	Contenido      string    `json:"mensaje" db:"mensaje"`
	Estado         int       `json:"estado" db:"estado"`
	ConversacionID int64     `json:"id_conversacion" db:"id_conversacion"`
	AutorID        int64     `json:"id_usuario" db:"id_usuario"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	Autor *User `json:"usuario,omitempty"`
}

// Default values applied when a conversation is created
const (
	ConversacionEstadoActiva = 1
	ConversacionTipoDefault  = 1
)
