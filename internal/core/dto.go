package core

import "github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"

// Read-only views pushed to clients (no transport fields).

// PresenceEntry is one line of a visibility list.
type PresenceEntry struct {
	Identity    domain.Identity `json:"identity"`
	DisplayName string          `json:"displayName,omitempty"`
	Role        domain.Role     `json:"role,omitempty"`
	Online      bool            `json:"online"`
}

// RosterPage is one page of the elevated full roster.
type RosterPage struct {
	Users      []PresenceEntry `json:"users"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	Total      int             `json:"total"`
	TotalPages int             `json:"totalPages"`
}

// RoomUser merges historical membership with the connected set.
type RoomUser struct {
	Identity domain.Identity `json:"identity"`
	Online   bool            `json:"online"`
}

type GroupInfo struct {
	Name    domain.GroupName  `json:"name"`
	Members []domain.Identity `json:"members"`
}

type RoomInfo struct {
	Code        domain.RoomCode `json:"code"`
	MemberCount int             `json:"memberCount"`
}
