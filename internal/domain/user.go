package domain

import "time"

// User represents a registered bot user stored in the database.
// Rows are created on first observed interaction and never deleted;
// username and first name keep the values seen at registration time.
type User struct {
	ID        int64
	Username  string
	FirstName string
	JoinedAt  time.Time
}

// BanRecord marks a user as banned. Presence of a row is the ban;
// a user id appears at most once.
type BanRecord struct {
	UserID int64
}
