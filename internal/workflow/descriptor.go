package workflow

// Kind tags the entity kinds the workflow can save.
type Kind string

const (
	KindMemorial Kind = "memorial"
	KindGroup    Kind = "group"
	KindProfile  Kind = "profile"
)

// Slot declares a media slot: the record column that holds the stored
// URL and the object-path prefix uploads for the slot live under.
type Slot struct {
	Name       string
	PathPrefix string
}

// Descriptor parameterizes the save workflow for one entity kind.
// The four near-duplicate save flows of the application differ only in
// what a descriptor captures: table, conflict key, media slots, and
// which server-side gates apply.
type Descriptor struct {
	Kind        Kind
	Table       string
	ConflictKey string
	Slots       []Slot

	// AuthorizeRPC names the edit-permission function invoked on the
	// edit path, with AuthorizeArg carrying the entity ID. Empty means
	// the calling service performs its own permission check.
	AuthorizeRPC string
	AuthorizeArg string

	// TierRPC names the entitlement function for kinds with a resource
	// tier. Empty means the kind has no tier gate.
	TierRPC string
}

func (d Descriptor) slot(name string) (Slot, bool) {
	for _, s := range d.Slots {
		if s.Name == name {
			return s, true
		}
	}
	return Slot{}, false
}

// MemorialDescriptor wires the memorials table with both image slots,
// the can_edit_memorial gate, and the subscription tier gate.
func MemorialDescriptor() Descriptor {
	return Descriptor{
		Kind:        KindMemorial,
		Table:       "memorials",
		ConflictKey: "id",
		Slots: []Slot{
			{Name: "profile_image_url", PathPrefix: "profiles"},
			{Name: "cover_image_url", PathPrefix: "covers"},
		},
		AuthorizeRPC: "can_edit_memorial",
		AuthorizeArg: "memorial_id",
		TierRPC:      "get_user_tier",
	}
}

// GroupDescriptor wires the community_groups table with its cover
// slot. Group edit permission is an admin-membership check owned by
// the group service, so no authorize RPC is declared.
func GroupDescriptor() Descriptor {
	return Descriptor{
		Kind:        KindGroup,
		Table:       "community_groups",
		ConflictKey: "id",
		Slots: []Slot{
			{Name: "cover_image_url", PathPrefix: "groups/covers"},
		},
	}
}

// ProfileDescriptor wires the profiles table. The conflict key is the
// actor's own ID: a profile is created or replaced in place.
func ProfileDescriptor() Descriptor {
	return Descriptor{
		Kind:        KindProfile,
		Table:       "profiles",
		ConflictKey: "id",
		Slots: []Slot{
			{Name: "avatar_url", PathPrefix: "avatars"},
			{Name: "cover_image_url", PathPrefix: "covers"},
		},
	}
}
