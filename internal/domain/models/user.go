package models

import (
	"strings"
	"time"
)

// User is the directory row a principal is resolved from. Roles and
// permissions are stored comma-separated; the loader splits them into the
// claims payload.
type User struct {
	ID       string `gorm:"primaryKey;column:id"`
	TenantID string `gorm:"column:tenant_id;index:idx_users_tenant_username,unique"`
	Username string `gorm:"column:username;index:idx_users_tenant_username,unique"`

	UserCode     string `gorm:"column:user_code"`
	Nickname     string `gorm:"column:nickname"`
	PasswordHash string `gorm:"column:password_hash"`

	Roles       string `gorm:"column:roles"`
	Permissions string `gorm:"column:permissions"`

	DeptID   string `gorm:"column:dept_id"`
	DeptCode string `gorm:"column:dept_code"`
	DeptName string `gorm:"column:dept_name"`

	ClusterID    string `gorm:"column:cluster_id"`
	ClusterLevel string `gorm:"column:cluster_level"`
	ClusterName  string `gorm:"column:cluster_name"`

	Disabled  bool      `gorm:"column:disabled"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName pins the directory table name.
func (User) TableName() string {
	return "users"
}

// RoleList splits the stored role set.
func (u *User) RoleList() []string {
	return splitList(u.Roles)
}

// PermissionList splits the stored permission set.
func (u *User) PermissionList() []string {
	return splitList(u.Permissions)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ToClaims builds the principal claims payload from the directory row.
func (u *User) ToClaims() *Claims {
	return &Claims{
		TenantID:     u.TenantID,
		UserID:       u.ID,
		UserCode:     u.UserCode,
		Username:     u.Username,
		Nickname:     u.Nickname,
		Roles:        u.RoleList(),
		Permissions:  u.PermissionList(),
		DeptID:       u.DeptID,
		DeptCode:     u.DeptCode,
		DeptName:     u.DeptName,
		ClusterID:    u.ClusterID,
		ClusterLevel: u.ClusterLevel,
		ClusterName:  u.ClusterName,
	}
}

// Principal is what the principal loader returns: the claims payload plus the
// stored credential hash for login-time verification.
type Principal struct {
	Claims       Claims
	PasswordHash string
	Disabled     bool
}
