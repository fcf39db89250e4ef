package auth

import (
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/models"
)

// Subject is the user an authorization decision is made for.
type Subject struct {
	ID       uint64
	Role     models.Role
	ClientID *uint64
}

// SubjectOf returns the authorization subject of u.
func SubjectOf(u models.User) Subject {
	return Subject{ID: u.ID, Role: u.Role, ClientID: u.ClientID}
}

// Snapshot carries the ownership fields of the resource being accessed. Zero means absent.
type Snapshot struct {
	ClientID uint64
	OwnerID  uint64
}

// Condition restricts a rule to some resources. snap may be nil.
type Condition func(s Subject, snap *Snapshot) bool

// Rule allows Action on Resource, optionally restricted by Condition.
type Rule struct {
	Action    Action
	Resource  Resource
	Condition Condition
}

// Policy answers authorization questions from a rule table. The zero value denies everything.
type Policy struct {
	rules map[models.Role][]Rule
}

// NewPolicy returns a policy over a private copy of rules.
func NewPolicy(rules map[models.Role][]Rule) Policy {
	cp := make(map[models.Role][]Rule, len(rules))
	for role, list := range rules {
		cp[role] = append([]Rule(nil), list...)
	}

	return Policy{rules: cp}
}

// DefaultPolicy returns the policy of the application roles.
func DefaultPolicy() Policy {
	return Policy{rules: defaultRules()}
}

// Can reports whether s may perform action on resource. snap is optional.
func (p Policy) Can(s Subject, action Action, resource Resource, snap *Snapshot) bool {
	for _, r := range p.rules[s.Role] {
		if r.Action != action || r.Resource != resource {
			continue
		}

		if r.Condition == nil {
			return true
		}

		return r.Condition(s, snap)
	}

	return false
}

// CanAccessClient reports whether s may read the client clientID.
func (p Policy) CanAccessClient(s Subject, clientID uint64) bool {
	return p.Can(s, ActionRead, ResourceClient, &Snapshot{ClientID: clientID})
}

// CanViewAllData reports whether s reads every client without restriction.
func (p Policy) CanViewAllData(s Subject) bool {
	for _, r := range p.rules[s.Role] {
		if r.Action == ActionRead && r.Resource == ResourceClient {
			return r.Condition == nil
		}
	}

	return false
}

// SameClient matches resources owned by the client the subject belongs to.
func SameClient(s Subject, snap *Snapshot) bool {
	return snap != nil && s.ClientID != nil && snap.ClientID != 0 && *s.ClientID == snap.ClientID
}

// Owner matches resources owned by the subject itself.
func Owner(s Subject, snap *Snapshot) bool {
	return snap != nil && snap.OwnerID != 0 && snap.OwnerID == s.ID
}

func allow(resource Resource, actions ...Action) []Rule {
	out := make([]Rule, 0, len(actions))
	for _, a := range actions {
		out = append(out, Rule{Action: a, Resource: resource})
	}

	return out
}

func allowIf(cond Condition, resource Resource, actions ...Action) []Rule {
	out := allow(resource, actions...)
	for i := range out {
		out[i].Condition = cond
	}

	return out
}

func concat(groups ...[]Rule) []Rule {
	var out []Rule
	for _, g := range groups {
		out = append(out, g...)
	}

	return out
}

// personal are the rules every verified account has on its own notifications and alert settings.
func personal() []Rule {
	return concat(
		allow(ResourceNotification, ActionList),
		allowIf(Owner, ResourceNotification, ActionRead, ActionUpdate, ActionDelete),
		allowIf(Owner, ResourceAlertSettings, ActionRead, ActionUpdate),
	)
}

func defaultRules() map[models.Role][]Rule {
	return map[models.Role][]Rule{
		models.RoleAdmin: concat(
			allow(ResourceClient, crud...),
			allow(ResourceLicense, crud...),
			allow(ResourceEquipment, crud...),
			allow(ResourceAttachment, crud...),
			allow(ResourceExport, crud...),
			allow(ResourceUser, ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionList, ActionVerify),
			allow(ResourceSettings, ActionRead, ActionUpdate),
			allow(ResourceNotification, ActionCreate),
			personal(),
		),
		models.RoleTechnician: concat(
			allow(ResourceClient, ActionCreate, ActionRead, ActionUpdate, ActionList),
			allow(ResourceLicense, crud...),
			allow(ResourceEquipment, crud...),
			allow(ResourceAttachment, ActionCreate, ActionRead, ActionDelete),
			allow(ResourceExport, ActionCreate),
			allow(ResourceUser, ActionRead, ActionList),
			personal(),
		),
		models.RoleClient: concat(
			allowIf(SameClient, ResourceClient, ActionRead),
			allowIf(SameClient, ResourceLicense, ActionRead, ActionList),
			allowIf(SameClient, ResourceEquipment, ActionRead, ActionList),
			allowIf(SameClient, ResourceAttachment, ActionRead),
			allowIf(SameClient, ResourceExport, ActionCreate),
			allowIf(Owner, ResourceUser, ActionRead),
			personal(),
		),
		models.RoleUnverified: {},
	}
}
