package models

import (
	"time"
)

type Actor struct {
	ID       string    `json:"id" gorm:"primaryKey;type:text"`
	Kind     string    `json:"kind" gorm:"type:text;not null;default:'user'"` // user, group
	UserName string    `json:"userName" gorm:"type:text;index"`
	Gravatar string    `json:"gravatar" gorm:"type:text"`
	CDate    time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Follow struct {
	FollowerID string `json:"followerID" gorm:"primaryKey;type:text"`
	FolloweeID string `json:"followeeID" gorm:"primaryKey;type:text;index"`
}

type GroupMember struct {
	GroupID  string `json:"groupID" gorm:"primaryKey;type:text"`
	ActorID  string `json:"actorID" gorm:"primaryKey;type:text;index"`
	CanWrite bool   `json:"canWrite" gorm:"type:boolean;not null;default:false"`
}

type Favorite struct {
	ActorID string    `json:"actorID" gorm:"primaryKey;type:text"`
	ShiftID string    `json:"shiftID" gorm:"primaryKey;type:text;index"`
	CDate   time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text"`
	ShiftID   string    `json:"shiftID" gorm:"type:text;index"`
	CreatedBy string    `json:"createdBy" gorm:"type:text"`
	Body      string    `json:"body" gorm:"type:text"`
	CDate     time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
