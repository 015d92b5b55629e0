package models

import "strings"

// SubscriptionPlan determines how many profiles a user may create.
type SubscriptionPlan string

const (
	PlanBasic    SubscriptionPlan = "basic"
	PlanStandard SubscriptionPlan = "standard"
	PlanPremium  SubscriptionPlan = "premium"
)

// MaxProfiles returns the profile ceiling for the plan. Unknown plans are
// treated as basic, matching the gateway's fallback.
func (p SubscriptionPlan) MaxProfiles() int {
	switch p {
	case PlanStandard:
		return 2
	case PlanPremium:
		return 4
	default:
		return 1
	}
}

// ParsePlan normalizes a plan string coming off the wire.
func ParsePlan(s string) SubscriptionPlan {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard":
		return PlanStandard
	case "premium":
		return PlanPremium
	default:
		return PlanBasic
	}
}

// User is the authenticated account as reported by the gateway. The profile
// list is the canonical server-side ordering.
type User struct {
	ID               string           `json:"id"`
	Email            string           `json:"email"`
	SubscriptionPlan SubscriptionPlan `json:"subscriptionPlan"`
	Profiles         []Profile        `json:"profiles"`
}

// ProfileByID returns the profile with the given ID if the user owns it.
func (u User) ProfileByID(id string) (Profile, bool) {
	for _, p := range u.Profiles {
		if p.ID == id {
			return p, true
		}
	}
	return Profile{}, false
}

// CanCreateProfile reports whether the user's plan allows one more profile.
func (u User) CanCreateProfile() bool {
	return len(u.Profiles) < u.SubscriptionPlan.MaxProfiles()
}

// Profile is a viewing identity owned by exactly one user. Identity is
// immutable once created; the gateway assigns the ID.
type Profile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	IsKid  bool   `json:"isKid"`
}

// ProfileParams carries the fields a caller supplies when creating a profile.
type ProfileParams struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	IsKid  bool   `json:"isKid"`
}

// Registration carries the fields for a new account. Registering does not
// authenticate; the caller logs in afterwards.
type Registration struct {
	Email            string           `json:"email"`
	Password         string           `json:"password"`
	FirstName        string           `json:"firstName"`
	LastName         string           `json:"lastName"`
	SubscriptionPlan SubscriptionPlan `json:"subscriptionPlan"`
}
