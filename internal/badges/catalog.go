// Package badges tracks volunteer achievements. Progress is stored per
// (profile, badge type); completion is always derived from it.
package badges

type Trigger string

const (
	TriggerEventAttended    Trigger = "EVENT_ATTENDED"
	TriggerHoursLogged      Trigger = "HOURS_LOGGED"
	TriggerSkillAdded       Trigger = "SKILL_ADDED"
	TriggerConnectionMade   Trigger = "CONNECTION_MADE"
	TriggerMembershipJoined Trigger = "MEMBERSHIP_JOINED"
)

func (t Trigger) Valid() bool {
	switch t {
	case TriggerEventAttended, TriggerHoursLogged, TriggerSkillAdded, TriggerConnectionMade, TriggerMembershipJoined:
		return true
	}
	return false
}

// AllTriggers lists every trigger, used when recomputing from scratch.
var AllTriggers = []Trigger{
	TriggerEventAttended,
	TriggerHoursLogged,
	TriggerSkillAdded,
	TriggerConnectionMade,
	TriggerMembershipJoined,
}

type Rarity string

const (
	RarityCommon    Rarity = "COMMON"
	RarityUncommon  Rarity = "UNCOMMON"
	RarityRare      Rarity = "RARE"
	RarityEpic      Rarity = "EPIC"
	RarityLegendary Rarity = "LEGENDARY"
)

// Statistic names the counter a badge measures.
type Statistic string

const (
	StatEventsAttended    Statistic = "events_attended"
	StatTotalHours        Statistic = "total_hours"
	StatSkills            Statistic = "skills"
	StatConnections       Statistic = "accepted_connections"
	StatActiveMemberships Statistic = "active_memberships"
)

type BadgeType struct {
	Key           string    `json:"key"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Statistic     Statistic `json:"statistic"`
	RequiredCount float64   `json:"required_count"`
	Rarity        Rarity    `json:"rarity"`
	Points        int       `json:"points"`
	Triggers      []Trigger `json:"triggers"`
}

func (b BadgeType) TriggeredBy(t Trigger) bool {
	for _, x := range b.Triggers {
		if x == t {
			return true
		}
	}
	return false
}

var attendance = []Trigger{TriggerEventAttended}
var hours = []Trigger{TriggerHoursLogged, TriggerEventAttended}

var catalog = []BadgeType{
	{"FIRST_EVENT", "First Steps", "Attended your first event", StatEventsAttended, 1, RarityCommon, 10, attendance},
	{"EVENTS_5", "Regular", "Attended 5 events", StatEventsAttended, 5, RarityUncommon, 25, attendance},
	{"EVENTS_25", "Dedicated", "Attended 25 events", StatEventsAttended, 25, RarityRare, 100, attendance},
	{"HOURS_10", "10 Hours", "Volunteered 10 hours", StatTotalHours, 10, RarityCommon, 20, hours},
	{"HOURS_50", "50 Hours", "Volunteered 50 hours", StatTotalHours, 50, RarityUncommon, 50, hours},
	{"HOURS_100", "Century", "Volunteered 100 hours", StatTotalHours, 100, RarityEpic, 150, hours},
	{"SKILLS_5", "Jack of All Trades", "Listed 5 skills", StatSkills, 5, RarityUncommon, 25, []Trigger{TriggerSkillAdded}},
	{"CONNECTIONS_10", "Connector", "Made 10 connections", StatConnections, 10, RarityRare, 50, []Trigger{TriggerConnectionMade}},
	{"ORGANIZATIONS_3", "Community Builder", "Active member of 3 organizations", StatActiveMemberships, 3, RarityRare, 75, []Trigger{TriggerMembershipJoined}},
}

// Catalog returns every badge type in display order.
func Catalog() []BadgeType {
	out := make([]BadgeType, len(catalog))
	copy(out, catalog)
	return out
}

func Lookup(key string) (BadgeType, bool) {
	for _, b := range catalog {
		if b.Key == key {
			return b, true
		}
	}
	return BadgeType{}, false
}

// Relevant returns the badge types re-evaluated by trigger t.
func Relevant(t Trigger) []BadgeType {
	var out []BadgeType
	for _, b := range catalog {
		if b.TriggeredBy(t) {
			out = append(out, b)
		}
	}
	return out
}
