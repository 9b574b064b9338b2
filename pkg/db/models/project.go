package models

import (
	"time"

	"github.com/google/uuid"
)

// Project tracks delivery progress for a client engagement.
type Project struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	Name        string             `gorm:"column:name;not null"`
	Status      string             `gorm:"column:status;not null;default:'in_progress'"`
	ProgressPct int                `gorm:"column:progress_pct;not null;default:0"`
	Updates     []ProjectUpdate    `gorm:"foreignKey:ProjectID"`
	Milestones  []ProjectMilestone `gorm:"foreignKey:ProjectID"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (Project) TableName() string { return "projects" }

type ProjectUpdate struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;not null;index"`
	Title     string    `gorm:"column:title;not null"`
	Body      *string   `gorm:"column:body"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ProjectUpdate) TableName() string { return "project_updates" }

type ProjectMilestone struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID uuid.UUID  `gorm:"column:project_id;type:uuid;not null;index"`
	Title     string     `gorm:"column:title;not null"`
	DueAt     *time.Time `gorm:"column:due_at"`
	DoneAt    *time.Time `gorm:"column:done_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (ProjectMilestone) TableName() string { return "project_milestones" }

// ProjectForm stores intake answers attached to a project.
type ProjectForm struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;not null;index"`
	Payload   string    `gorm:"column:payload;type:jsonb;not null;default:'{}'"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ProjectForm) TableName() string { return "project_forms" }
