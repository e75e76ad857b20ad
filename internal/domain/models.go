// Package domain defines the persistence models for skills, friends, private
// groups, chat messages, public score records, and session notifications.
// These types are mapped with GORM and form the core data layer of the
// SkillUp application.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// AssistantID is the reserved sender/friend identifier of the automated
// assistant persona. It is excluded from group member selection, leaderboard
// peer matching, and read-receipt semantics.
const AssistantID = "AI_BOT"

// CommunityThreadID identifies the shared public chat thread. Group threads
// use the group's UUID instead.
const CommunityThreadID = "community"

// Message delivery statuses.
const (
	StatusPending   = "pending"
	StatusDelivered = "delivered"
	StatusRead      = "read"
)

// Skill represents a self-defined skill a user logs practice sessions
// against.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - UserID: identifier of the owner; indexed for efficient retrieval.
//   - Title / Description: user-provided labels.
//   - Stars: difficulty rating, conventionally 1–5.
//   - Progress: cumulative log count (one unit per practice session).
//   - LastMilestone: highest milestone level already notified; always a
//     multiple of the milestone unit and never greater than Progress rounded
//     down to that unit.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Skill struct {
	ID            string    `json:"id"             gorm:"type:char(36);primaryKey"`
	UserID        string    `json:"user_id"        gorm:"type:varchar(64);not null;index:idx_user_skills"`
	Title         string    `json:"title"          gorm:"type:varchar(255);not null"`
	Description   string    `json:"description"    gorm:"type:text"`
	Stars         float64   `json:"stars"          gorm:"not null;default:1"`
	Progress      int       `json:"progress"       gorm:"not null;default:0"`
	LastMilestone int       `json:"last_milestone" gorm:"not null;default:0"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name for Skill.
func (Skill) TableName() string { return "skills" }

// Person represents a friend entry in a user's private contact list. The
// assistant persona is stored as a regular Person under the reserved
// AssistantID so it renders in friend lists, but it is filtered out of every
// "real correspondent" check.
type Person struct {
	ID        string    `json:"id"       gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"  gorm:"type:varchar(64);not null;index:idx_user_people"`
	Title     string    `json:"title"    gorm:"type:varchar(255);not null"`
	Subtitle  string    `json:"subtitle" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Person.
func (Person) TableName() string { return "people" }

// IsAssistant reports whether this person is the automated assistant persona.
func (p Person) IsAssistant() bool { return p.ID == AssistantID }

// StringList is a []string stored as a JSON-encoded TEXT column. Group member
// identifiers and their snapshotted display names use it so the two lists stay
// parallel without a join table.
type StringList []string

// Scan implements sql.Scanner for StringList.
func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	*l = nil
	return nil
}

// Value implements driver.Valuer for StringList.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Group represents a private chat group. MemberUIDs always contains the
// creator and at least one real friend; the assistant persona is never a
// member. MemberNames is a display-name snapshot taken at creation time,
// index-aligned with MemberUIDs ("You" for the creator).
type Group struct {
	ID          string     `json:"id"           gorm:"type:char(36);primaryKey"`
	UserID      string     `json:"user_id"      gorm:"type:varchar(64);not null;index:idx_user_groups"`
	Name        string     `json:"name"         gorm:"type:varchar(255);not null"`
	MemberUIDs  StringList `json:"member_uids"  gorm:"type:text;not null"`
	MemberNames StringList `json:"member_names" gorm:"type:text;not null"`
	CreatorID   string     `json:"creator_id"   gorm:"type:varchar(64);not null"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the database table name for Group.
func (Group) TableName() string { return "private_groups" }

// ChatMessage represents a single utterance within a thread. Threads are
// either the shared community thread or one group's private thread.
//
// Timestamp is an ISO-8601 UTC string rather than a time.Time so that
// lexicographic ordering equals chronological ordering, matching the wire
// format of the original message documents.
type ChatMessage struct {
	ID            string    `json:"id"              gorm:"type:char(36);primaryKey"`
	ThreadID      string    `json:"thread_id"       gorm:"type:varchar(64);not null;index:idx_thread_msgs,priority:1"`
	SenderID      string    `json:"sender_id"       gorm:"type:varchar(64);not null;index"`
	SenderShortID string    `json:"sender_short_id" gorm:"type:varchar(16);not null"`
	Body          string    `json:"message"         gorm:"type:text;not null"`
	Timestamp     string    `json:"timestamp"       gorm:"type:varchar(40);not null;index:idx_thread_msgs,priority:2"`
	Status        string    `json:"status"          gorm:"type:varchar(16);not null;check:status IN ('pending','delivered','read')"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name for ChatMessage.
func (ChatMessage) TableName() string { return "chat_messages" }

// ScoreRecord is the public, shared score document for one user. Exactly one
// row per user; score updates are upserts, never inserts of duplicates.
type ScoreRecord struct {
	UserID      string    `json:"user_id"       gorm:"type:varchar(64);primaryKey"`
	UserShortID string    `json:"user_short_id" gorm:"type:varchar(16);not null"`
	TotalScore  float64   `json:"total_score"   gorm:"not null;default:0;index"`
	LastUpdated time.Time `json:"last_updated"  gorm:"not null"`
}

// TableName returns the database table name for ScoreRecord.
func (ScoreRecord) TableName() string { return "score_records" }

// Notification describes a derived, session-local event shown behind the bell
// badge. Notifications are never persisted: the store mirrors transient badge
// behavior, not a durable inbox.
type Notification struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	SkillID   string `json:"skill_id"`
}

// NotificationTypeMilestone tags notifications produced when a skill crosses
// a log-count milestone. It is the only type currently produced.
const NotificationTypeMilestone = "skill_milestone"

// ShortID returns the first 8 characters of an identifier, the anonymised
// display form used in chat messages and score records.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
