package domain

import (
	"time"

	"github.com/omunroe-com/shiftspace"
)

type PublishData struct {
	Draft       bool                     `json:"draft"`
	Private     bool                     `json:"private"`
	PublishTime *time.Time               `json:"publishTime,omitempty"`
	Dbs         []shiftspace.Destination `json:"dbs"`
}

// Shift is a piece of shareable content. The joined fields are attached at read
// time and never persisted.
type Shift struct {
	ID            string           `json:"_id"`
	CreatedBy     string           `json:"createdBy"`
	UserName      string           `json:"userName,omitempty"`
	Created       time.Time        `json:"created"`
	Modified      time.Time        `json:"modified"`
	Href          string           `json:"href"`
	Domain        string           `json:"domain"`
	Space         shiftspace.Space `json:"space"`
	Summary       string           `json:"summary"`
	Content       map[string]any   `json:"content"`
	Broken        bool             `json:"broken"`
	CommentStream string           `json:"commentStream,omitempty"`
	PublishData   PublishData      `json:"publishData"`

	Favorite      bool   `json:"favorite"`
	FavoriteCount int64  `json:"favoriteCount"`
	CommentCount  int64  `json:"commentCount"`
	Gravatar      string `json:"gravatar,omitempty"`
}

func NewShift(id, createdBy string, now time.Time) *Shift {
	return &Shift{
		ID:        id,
		CreatedBy: createdBy,
		Created:   now,
		Modified:  now,
		Content:   map[string]any{},
		PublishData: PublishData{
			Draft:   true,
			Private: true,
			Dbs:     []shiftspace.Destination{},
		},
	}
}

func (s *Shift) IsPrivate() bool { return s.PublishData.Private }
func (s *Shift) IsPublic() bool  { return !s.PublishData.Private }

// CanonicalStore is the store holding the authoritative copy for the current visibility.
func (s *Shift) CanonicalStore() StoreID {
	if s.PublishData.Private {
		return Resolve(s.CreatedBy, RolePrivate)
	}
	return Resolve(s.CreatedBy, RolePublic)
}

// Clone copies the shift deeply enough that the copy can be mutated independently.
func (s *Shift) Clone() *Shift {
	c := *s
	if s.Content != nil {
		c.Content = make(map[string]any, len(s.Content))
		for k, v := range s.Content {
			c.Content[k] = v
		}
	}
	c.PublishData.Dbs = append([]shiftspace.Destination{}, s.PublishData.Dbs...)
	if s.PublishData.PublishTime != nil {
		t := *s.PublishData.PublishTime
		c.PublishData.PublishTime = &t
	}
	return &c
}

// Persisted returns a copy with joined fields cleared.
func (s *Shift) Persisted() *Shift {
	c := s.Clone()
	c.Favorite = false
	c.FavoriteCount = 0
	c.CommentCount = 0
	c.Gravatar = ""
	return c
}

// Profile is the slice of actor metadata the join needs.
type Profile struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Gravatar string `json:"gravatar"`
}

type ShiftEventKind string

const (
	ShiftCreated   ShiftEventKind = "created"
	ShiftUpdated   ShiftEventKind = "updated"
	ShiftPublished ShiftEventKind = "published"
	ShiftDeleted   ShiftEventKind = "deleted"
)

type ShiftEvent struct {
	Kind      ShiftEventKind `json:"kind"`
	ShiftID   string         `json:"shiftID"`
	CreatedBy string         `json:"createdBy"`
	Store     StoreID        `json:"store"`
	At        time.Time      `json:"at"`
}

// ReplicationEdge is the operational status of one source -> target mirror.
type ReplicationEdge struct {
	Source      StoreID    `json:"source"`
	Target      StoreID    `json:"target"`
	RequestedAt time.Time  `json:"requestedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Mirrored    int64      `json:"mirrored"`
	LastError   string     `json:"lastError,omitempty"`
}
