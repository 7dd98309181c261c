package enums

import "fmt"

// ActorRole identifies which trusted caller minted a service token. The chat
// bot acts on behalf of customers; operators use the console.
type ActorRole string

const (
	ActorRoleBot      ActorRole = "bot"
	ActorRoleOperator ActorRole = "operator"
)

var validActorRoles = []ActorRole{
	ActorRoleBot,
	ActorRoleOperator,
}

// IsValid reports whether the value is a known ActorRole.
func (a ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActorRole converts raw input into ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
