package model

import (
	"time"
)

// Presence status values persisted by the hub.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Workspace roles used for access-request notification fan-out.
const (
	RoleMember int32 = 0
	RoleAdmin  int32 = 1
	RoleOwner  int32 = 2
)

// User is the directory read model. The CRUD layer owns writes; the hub only
// resolves ids and emails through it.
type User struct {
	UserID   string `bson:"user_id" json:"userId"`
	Username string `bson:"username" json:"username"`
	Email    string `bson:"email" json:"email"`
	FaceURL  string `bson:"face_url,omitempty" json:"avatarUrl"`
	Status   string `bson:"status,omitempty" json:"status"` // online/offline

	CreateTime time.Time `bson:"create_time,omitempty" json:"-"`
	UpdateTime time.Time `bson:"update_time,omitempty" json:"-"`
}

func (User) TableName() string { return "users" }

// WorkspaceMember links a user to a workspace with a role.
type WorkspaceMember struct {
	WorkspaceID string `bson:"workspace_id" json:"workspaceId"`
	UserID      string `bson:"user_id" json:"userId"`
	Role        int32  `bson:"role" json:"role"`
}

func (WorkspaceMember) TableName() string { return "workspace_members" }
