package domain

import (
	"fmt"

	"github.com/omunroe-com/shiftspace"
)

// StoreID names a logical persistence namespace.
type StoreID string

type Role int

const (
	RolePrivate Role = iota
	RolePublic
	RoleFeed
	RoleInbox
	RoleGroupShared
)

func (r Role) String() string {
	switch r {
	case RolePrivate:
		return "private"
	case RolePublic:
		return "public"
	case RoleFeed:
		return "feed"
	case RoleInbox:
		return "inbox"
	case RoleGroupShared:
		return "shared"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

const (
	GlobalPublic StoreID = "shiftspace/public"
	GlobalShared StoreID = "shiftspace/shared"
)

// Resolve maps an actor and a role to its store. Group actors only have RoleGroupShared.
func Resolve(actorID string, role Role) StoreID {
	if role == RoleGroupShared {
		return StoreID("group_" + actorID)
	}
	return StoreID("user_" + actorID + "/" + role.String())
}

// StoreFor returns the store a publish destination delivers into.
func StoreFor(d shiftspace.Destination) StoreID {
	if d.IsGroup() {
		return Resolve(d.ID, RoleGroupShared)
	}
	return Resolve(d.ID, RoleInbox)
}
