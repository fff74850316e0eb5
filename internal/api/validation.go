package api

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/socialpulse/socialpulse/internal/models"
)

const maxActors = 20

var actorIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// ParseActors splits the comma separated actors parameter of compare charts.
func ParseActors(raw string) ([]string, error) {
	if raw == "" {
		return nil, models.ValidationError{Field: "actors", Message: "at least one account id is required"}
	}

	ids := strings.Split(raw, ",")
	if len(ids) > maxActors {
		return nil, models.ValidationError{Field: "actors", Message: "at most " + strconv.Itoa(maxActors) + " account ids are allowed"}
	}

	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !actorIDPattern.MatchString(id) {
			return nil, models.ValidationError{Field: "actors", Message: "expected comma separated account ids, got " + strconv.Quote(raw)}
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

// ParseLimit reads an optional positive limit parameter.
func ParseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, models.ValidationError{Field: "limit", Message: "must be a positive integer"}
	}
	return n, nil
}
