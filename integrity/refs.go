package integrity

import "foundersnexus/database"

// Reference is one field holding refs to another collection.
type Reference struct {
	Collection string `json:"collection"`
	Field      string `json:"field"`
	Target     string `json:"target"`
	// MatchField is the target field the ref is compared with, _id when empty.
	MatchField string `json:"matchField,omitempty"`
	// Hex marks refs stored as hex strings.
	Hex bool `json:"hex,omitempty"`
}

func (r Reference) match() string {
	if r.MatchField == "" {
		return "_id"
	}
	return r.MatchField
}

// References lists every reference field of the data model.
var References = []Reference{
	{Collection: database.Users, Field: "roleId", Target: database.Roles},
	{Collection: database.Users, Field: "currentStartupId", Target: database.Startups},
	{Collection: database.Users, Field: "followers", Target: database.Users},
	{Collection: database.Users, Field: "following", Target: database.Users},
	{Collection: database.Users, Field: "posts", Target: database.Posts},
	{Collection: database.Entrepreneurs, Field: "userId", Target: database.Users},
	{Collection: database.Investors, Field: "userId", Target: database.Users},
	{Collection: database.Investors, Field: "previousInvestments.startupId", Target: database.Startups},
	{Collection: database.Startups, Field: "founders", Target: database.Users},
	{Collection: database.Startups, Field: "previousFundings.investors.investorId", Target: database.Investors, MatchField: "userId"},
	{Collection: database.Startups, Field: "equitySplit.userId", Target: database.Users},
	{Collection: database.Posts, Field: "userId", Target: database.Users},
	{Collection: database.Posts, Field: "comments", Target: database.Comments},
	{Collection: database.Posts, Field: "likes", Target: database.Users, Hex: true},
	{Collection: database.Comments, Field: "postId", Target: database.Posts},
	{Collection: database.Comments, Field: "userId", Target: database.Users},
	{Collection: database.PitchDecks, Field: "startupId", Target: database.Startups},
	{Collection: database.PushSubscriptions, Field: "userId", Target: database.Users},
}

func lookup(collection, field string) (Reference, bool) {
	for _, r := range References {
		if r.Collection == collection && r.Field == field {
			return r, true
		}
	}
	return Reference{}, false
}
