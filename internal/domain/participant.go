package domain

// Role is the closed set of participant roles within a community. Directory
// records carrying any other value are treated as unresolved.
type Role string

const (
	RoleResident Role = "resident"
	RoleBoard    Role = "board"
)

func (r Role) Valid() bool {
	return r == RoleResident || r == RoleBoard
}

// Participant is a read-only projection out of the directory service.
type Participant struct {
	ID          string `bson:"user_id" json:"id"`
	DisplayName string `bson:"display_name" json:"display_name"`
	Role        Role   `bson:"role" json:"role"`
}

// Membership ties a user to one community they belong to.
type Membership struct {
	CommunityID   string `bson:"community_id" json:"community_id"`
	CommunityName string `bson:"community_name" json:"community_name"`
}
