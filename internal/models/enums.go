package models

import (
	"encoding/json"
	"strings"

	"bugtracker/internal/apperr"
)

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleDeveloper Role = "DEVELOPER"
	RoleUser      Role = "USER"
)

type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusClosed     Status = "CLOSED"
)

type TicketType string

const (
	TypeBug           TicketType = "BUG"
	TypeFeature       TicketType = "FEATURE"
	TypeEnhancement   TicketType = "ENHANCEMENT"
	TypeDocumentation TicketType = "DOCUMENTATION"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

var (
	Roles      = []Role{RoleAdmin, RoleDeveloper, RoleUser}
	Statuses   = []Status{StatusOpen, StatusInProgress, StatusClosed}
	Types      = []TicketType{TypeBug, TypeFeature, TypeEnhancement, TypeDocumentation}
	Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}
)

// -----------------------------------------------------------------------------
// Parsing. Input is trimmed and upper-cased; anything outside the set is a
// validation error. The empty string is returned as-is so callers can default.
// -----------------------------------------------------------------------------

func parseEnum[T ~string](field, s string, set []T) (T, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	for _, v := range set {
		if string(v) == s {
			return v, nil
		}
	}
	return "", apperr.Validation("invalid %s %q", field, s)
}

func ParseRole(s string) (Role, error)         { return parseEnum("role", s, Roles) }
func ParseStatus(s string) (Status, error)     { return parseEnum("status", s, Statuses) }
func ParseType(s string) (TicketType, error)   { return parseEnum("type", s, Types) }
func ParsePriority(s string) (Priority, error) { return parseEnum("priority", s, Priorities) }

func member[T comparable](v T, set []T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func (r Role) Valid() bool       { return member(r, Roles) }
func (s Status) Valid() bool     { return member(s, Statuses) }
func (t TicketType) Valid() bool { return member(t, Types) }
func (p Priority) Valid() bool   { return member(p, Priorities) }

func unmarshalEnum[T ~string](data []byte, dst *T, parse func(string) (T, error)) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := parse(s)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func (r *Role) UnmarshalJSON(b []byte) error       { return unmarshalEnum(b, r, ParseRole) }
func (s *Status) UnmarshalJSON(b []byte) error     { return unmarshalEnum(b, s, ParseStatus) }
func (t *TicketType) UnmarshalJSON(b []byte) error { return unmarshalEnum(b, t, ParseType) }
func (p *Priority) UnmarshalJSON(b []byte) error   { return unmarshalEnum(b, p, ParsePriority) }

// Label renders IN_PROGRESS as "IN PROGRESS".
func (s Status) Label() string { return strings.ReplaceAll(string(s), "_", " ") }
