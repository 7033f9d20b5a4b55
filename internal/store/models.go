package store

import (
	"time"

	"github.com/google/uuid"
)

const (
	TipoDependencia    = "dependencia"
	TipoSubdependencia = "subdependencia"
)

const (
	RoleAdmin       = "admin"
	RoleSupervisor  = "supervisor"
	RoleFuncionario = "funcionario"
)

// Dependencia represents the 'dependencias' table, one node of the municipal org chart.
type Dependencia struct {
	ID                 int64         `db:"id" json:"id"`
	Codigo             string        `db:"codigo" json:"codigo"`
	Sigla              *string       `db:"sigla" json:"sigla"`
	Nombre             string        `db:"nombre" json:"nombre"`
	Tipo               string        `db:"tipo" json:"tipo"`
	DependenciaPadreID *int64        `db:"dependencia_padre_id" json:"dependencia_padre_id"`
	Nivel              int           `db:"nivel" json:"nivel"`
	Orden              int           `db:"orden" json:"orden"`
	Activo             bool          `db:"activo" json:"activo"`
	Responsable        *string       `db:"responsable" json:"responsable"`
	Correo             *string       `db:"correo" json:"correo"`
	Extension          *string       `db:"extension" json:"extension"`
	Telefono           *string       `db:"telefono" json:"telefono"`
	Direccion          *string       `db:"direccion" json:"direccion"`
	HorarioAtencion    *string       `db:"horario_atencion" json:"horario_atencion"`
	EnlaceWeb          *string       `db:"enlace_web" json:"enlace_web"`
	CreatedBy          uuid.NullUUID `db:"created_by" json:"created_by"`
	UpdatedBy          uuid.NullUUID `db:"updated_by" json:"updated_by"`
	CreatedAt          time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at" json:"updated_at"`
}

func (d Dependencia) IsSub() bool {
	return d.Tipo == TipoSubdependencia
}

// Tramite represents the 'tramites' table.
type Tramite struct {
	ID               int64         `db:"id" json:"id"`
	NombreTramite    string        `db:"nombre_tramite" json:"nombre_tramite"`
	Descripcion      string        `db:"descripcion" json:"descripcion"`
	Categoria        string        `db:"categoria" json:"categoria"`
	Modalidad        string        `db:"modalidad" json:"modalidad"`
	Formulario       string        `db:"formulario" json:"formulario"`
	DependenciaID    int64         `db:"dependencia_id" json:"dependencia_id"`
	SubdependenciaID *int64        `db:"subdependencia_id" json:"subdependencia_id"`
	RequierePago     *string       `db:"requiere_pago" json:"requiere_pago"`
	TiempoRespuesta  string        `db:"tiempo_respuesta" json:"tiempo_respuesta"`
	Requisitos       string        `db:"requisitos" json:"requisitos"`
	Instrucciones    string        `db:"instrucciones" json:"instrucciones"`
	URLSuit          string        `db:"url_suit" json:"url_suit"`
	URLGov           string        `db:"url_gov" json:"url_gov"`
	Activo           bool          `db:"activo" json:"activo"`
	CreatedBy        uuid.NullUUID `db:"created_by" json:"created_by"`
	UpdatedBy        uuid.NullUUID `db:"updated_by" json:"updated_by"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}

// WebhookConfig represents the single row of 'webhook_config'.
type WebhookConfig struct {
	ID             int           `db:"id" json:"-"`
	URL            string        `db:"url" json:"url"`
	AuthToken      *string       `db:"auth_token" json:"auth_token,omitempty"`
	Activo         bool          `db:"activo" json:"activo"`
	TimeoutSeconds int           `db:"timeout_seconds" json:"timeout_seconds"`
	MaxRetries     int           `db:"max_retries" json:"max_retries"`
	SystemPrompt   string        `db:"system_prompt" json:"system_prompt"`
	Greeting       string        `db:"greeting" json:"greeting"`
	UpdatedBy      uuid.NullUUID `db:"updated_by" json:"updated_by"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// Profile mirrors an identity-provider user for role lookups.
type Profile struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Role      string    `db:"role" json:"role"`
	Activo    bool      `db:"activo" json:"activo"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ImportHistory represents the 'import_history' table, one row per CSV import run.
type ImportHistory struct {
	ID           int64     `db:"id" json:"id"`
	SourceFile   string    `db:"source_file" json:"source_file"`
	TriggerType  string    `db:"trigger_type" json:"trigger_type"`
	Status       string    `db:"status" json:"status"`
	TotalRows    int       `db:"total_rows" json:"total_rows"`
	InsertedRows int       `db:"inserted_rows" json:"inserted_rows"`
	ErrorCount   int       `db:"error_count" json:"error_count"`
	Errors       []string  `db:"-" json:"errors"`
	ProcessedAt  time.Time `db:"processed_at" json:"processed_at"`
}
