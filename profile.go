package warera

import "context"

// DefaultProduction is the production value assumed when the profile fetch
// fails or reports nothing.
const DefaultProduction = 12

// Profile describes the target user as reported by the remote API.
type Profile struct {
	Name                string
	Production          float64
	EstimatedWorkPerDay float64
}

// ProfileFetcher is the slice of the remote API needed to look up a user.
type ProfileFetcher interface {
	UserLite(ctx context.Context, userID string) (Profile, error)
}

// DefaultProfile is the documented fallback for a failed profile fetch.
// Callers apply it explicitly so "fetched and is actually 12" stays
// distinguishable from "fetch failed, defaulted to 12".
func DefaultProfile(userID string) Profile {
	name := userID
	if len(name) > 8 {
		name = name[:8] + "..."
	}
	return Profile{Name: name, Production: DefaultProduction}
}
