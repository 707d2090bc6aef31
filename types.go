package shiftspace

import (
	"time"
)

const (
	DefaultGravatar = "images/default_user.png"
)

type DestinationKind string

const (
	DestinationUser  DestinationKind = "user"
	DestinationGroup DestinationKind = "group"
)

// Destination is one publish target of a shift, written on the wire as "kind/id".
type Destination struct {
	Kind DestinationKind
	ID   string
}

func UserDestination(id string) Destination {
	return Destination{Kind: DestinationUser, ID: id}
}

func GroupDestination(id string) Destination {
	return Destination{Kind: DestinationGroup, ID: id}
}

func (d Destination) String() string {
	return string(d.Kind) + "/" + d.ID
}

func (d Destination) IsUser() bool  { return d.Kind == DestinationUser }
func (d Destination) IsGroup() bool { return d.Kind == DestinationGroup }

func (d Destination) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Destination) UnmarshalText(text []byte) error {
	parsed, err := ParseDestination(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type Space struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ShiftRequest is the body accepted when creating a shift.
type ShiftRequest struct {
	Href          string         `json:"href"`
	UserName      string         `json:"userName,omitempty"`
	Space         Space          `json:"space"`
	Summary       string         `json:"summary,omitempty"`
	Content       map[string]any `json:"content"`
	CommentStream string         `json:"commentStream,omitempty"`
}

// UpdateRequest carries the only fields an owner may change in place.
type UpdateRequest struct {
	Content map[string]any `json:"content,omitempty"`
	Summary *string        `json:"summary,omitempty"`
	Broken  *bool          `json:"broken,omitempty"`
}

type PublishRequest struct {
	Private *bool     `json:"private,omitempty"`
	Dbs     *[]string `json:"dbs,omitempty"`
}

type PublishResponse struct {
	Shift    any               `json:"shift"`
	Dropped  []DroppedTarget   `json:"dropped"`
	Failures []FailureResponse `json:"failures"`
}

type DroppedTarget struct {
	Destination string `json:"destination"`
	Reason      string `json:"reason"`
}

type FailureResponse struct {
	Operation string    `json:"operation"`
	Target    string    `json:"target"`
	Error     string    `json:"error"`
	At        time.Time `json:"at"`
}
