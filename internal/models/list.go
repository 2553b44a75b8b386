package models

// Relation names are configurable but fixed at startup; config.Load validates
// them against an alphanumeric allow-list before they reach gorm.
var (
	TableLists         = "lists"
	TableMembers       = "members"
	TableOwners        = "owners"
	TableConfirmations = "confirmations"
	TableNames         = "names"
)

// SetTableNames overrides the relation names. Call once at startup, before
// any repository is created.
func SetTableNames(lists, members, owners, confirmations, names string) {
	TableLists = lists
	TableMembers = members
	TableOwners = owners
	TableConfirmations = confirmations
	TableNames = names
}

// MailingList is one list, addressed by its numeric shortcode.
// OwnerOnly restricts posting to owners; IsPublic allows self-service joins.
type MailingList struct {
	Shortcode string `gorm:"primaryKey"`
	OwnerOnly bool
	IsPublic  bool
}

func (MailingList) TableName() string {
	return TableLists
}

// ListMember records that Member receives posts to List.
type ListMember struct {
	List   string `gorm:"index:idx_list_member,unique;not null"`
	Member string `gorm:"index:idx_list_member,unique;not null"`
}

func (ListMember) TableName() string {
	return TableMembers
}

// ListOwner records that Owner administers List. Every owner is also a
// member; the list manager adds membership before granting ownership.
type ListOwner struct {
	List  string `gorm:"index:idx_list_owner,unique;not null"`
	Owner string `gorm:"index:idx_list_owner,unique;not null"`
}

func (ListOwner) TableName() string {
	return TableOwners
}
