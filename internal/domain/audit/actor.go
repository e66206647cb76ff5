package audit

import (
	"strings"

	"github.com/rpggio/freightline/internal/domain/access"
)

// systemSentinels are performer strings that denote automation rather than a person.
var systemSentinels = map[string]struct{}{
	"":           {},
	"system":     {},
	"automation": {},
	"auto":       {},
	"cron":       {},
	"scheduler":  {},
	"webhook":    {},
	"null":       {},
}

// IsSystemPerformer reports whether raw names automation rather than a person.
// Blank input is not a system performer.
func IsSystemPerformer(raw string) bool {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return false
	}
	_, ok := systemSentinels[s]
	return ok
}

type referencer interface {
	Ref() string
}

// NormalizeActor turns anything that identifies a performer into a canonical
// actor reference, or nil for system actions.
//
// Accepted inputs: nil, a canonical reference string, a system sentinel string,
// a *string, an access.Actor (or pointer), any value with a Ref() method, and
// maps carrying one of the keys id, _id, actor_id or actorId.
func NormalizeActor(v any) *string {
	switch p := v.(type) {
	case nil:
		return nil
	case string:
		return fromString(p)
	case *string:
		if p == nil {
			return nil
		}
		return fromString(*p)
	case access.Actor:
		return fromString(p.ID)
	case *access.Actor:
		if p == nil {
			return nil
		}
		return fromString(p.ID)
	case referencer:
		return fromString(p.Ref())
	case map[string]string:
		for _, key := range idKeys {
			if id, ok := p[key]; ok {
				return fromString(id)
			}
		}
	case map[string]any:
		for _, key := range idKeys {
			if id, ok := p[key].(string); ok {
				return fromString(id)
			}
		}
	}
	return nil
}

var idKeys = []string{"id", "_id", "actor_id", "actorId"}

func fromString(raw string) *string {
	s := strings.TrimSpace(raw)
	if _, ok := systemSentinels[strings.ToLower(s)]; ok {
		return nil
	}
	return &s
}
