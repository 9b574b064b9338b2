package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Subscription mirrors the billing provider's subscription state for a user.
type Subscription struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	ProviderID       string     `gorm:"column:provider_id;not null"`
	Status           string     `gorm:"column:status;not null"`
	CurrentPeriodEnd *time.Time `gorm:"column:current_period_end"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Subscription) TableName() string { return "subscriptions" }

type TaxInfo struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	TaxID     *string   `gorm:"column:tax_id"`
	Country   *string   `gorm:"column:country"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (TaxInfo) TableName() string { return "tax_info" }

type PrivacySettings struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	MarketingOptIn bool      `gorm:"column:marketing_opt_in;not null;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (PrivacySettings) TableName() string { return "privacy_settings" }

// UserModule records which optional dashboard modules a user has enabled.
type UserModule struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Module    string    `gorm:"column:module;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (UserModule) TableName() string { return "user_modules" }

// Questionnaire is the preliminary intake form a prospect fills before onboarding.
type Questionnaire struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Payload   string    `gorm:"column:payload;type:jsonb;not null;default:'{}'"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Questionnaire) TableName() string { return "questionnaires" }

type ActivityLog struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Action    string    `gorm:"column:action;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ActivityLog) TableName() string { return "user_activity_logs" }

// AuditLog captures who/when/why around destructive admin procedures.
// TablesTouched lists the dependent tables the run attempted, in execution order.
type AuditLog struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ActorID       *uuid.UUID     `gorm:"column:actor_id;type:uuid"`
	TargetUserID  uuid.UUID      `gorm:"column:target_user_id;type:uuid;not null;index"`
	Action        string         `gorm:"column:action;not null"`
	Reason        *string        `gorm:"column:reason"`
	TablesTouched pq.StringArray `gorm:"column:tables_touched;type:text[]"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (AuditLog) TableName() string { return "audit_logs" }

// ContactMessage stores public contact-form submissions.
type ContactMessage struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Email     string    `gorm:"column:email;not null"`
	Body      string    `gorm:"column:body;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ContactMessage) TableName() string { return "contact_messages" }
