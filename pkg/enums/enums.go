package enums

// UserRole distinguishes dashboard clients from administrators.
type UserRole string

const (
	RoleClient UserRole = "client"
	RoleAdmin  UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleClient, RoleAdmin:
		return true
	}
	return false
}

// CartItemType identifies what a cart row points at. Services are add-ons
// to a pack, which is why removing the last pack cascades to service rows.
type CartItemType string

const (
	ItemTypePack    CartItemType = "pack"
	ItemTypeService CartItemType = "service"
)

func (t CartItemType) IsValid() bool {
	switch t {
	case ItemTypePack, ItemTypeService:
		return true
	}
	return false
}

// AuditAction labels audit-trail rows written around destructive admin work.
type AuditAction string

const (
	AuditCascadeStarted     AuditAction = "cascade_delete_started"
	AuditCascadeCompleted   AuditAction = "cascade_delete_completed"
	AuditClientDataWiped    AuditAction = "client_data_wiped"
	AuditAccountSoftDeleted AuditAction = "account_soft_deleted"
)
