package domain

import "time"

// Punishment is a moderation record against a player. Both identity fields
// are resolved from display names at creation and never recomputed.
type Punishment struct {
	ID             int64
	MCUsername     string
	MCUUID         string
	Reason         string
	Proof          string
	PunishedBy     string
	PunishedByUUID string
	RemovedBy      *string
	RemovedByUUID  *string
	IsActive       bool
	Expires        time.Time
	DatePunished   time.Time
	LastUpdated    time.Time
}

// Update carries the mutable subset of fields; nil means "leave unchanged".
type Update struct {
	Reason        *string
	Proof         *string
	IsActive      *bool
	RemovedBy     *string
	RemovedByUUID *string
	Expires       *time.Time
}

func (u Update) Empty() bool {
	return u.Reason == nil &&
		u.Proof == nil &&
		u.IsActive == nil &&
		u.RemovedBy == nil &&
		u.RemovedByUUID == nil &&
		u.Expires == nil
}

// Filter restricts a listing to punishments whose target or issuer name is
// in the respective set. Empty sets match everything.
type Filter struct {
	MCUsernames []string
	PunishedBy  []string
}
