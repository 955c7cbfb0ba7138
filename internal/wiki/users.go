package wiki

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
)

// DefaultFallbackEmail is used for authors without an email in their account record.
const DefaultFallbackEmail = "an@nymous.com"

var userAssignment = regexp.MustCompile(`(?m)^([a-z_]+)=(.*)$`)

// UserRecord holds the key/value pairs of one account file.
type UserRecord map[string]string

// Users maps account ids to their records.
type Users map[string]UserRecord

// ParseUserRecord parses a flat key=value account file.
// Lines that are not lowercase assignments are ignored; later keys win.
func ParseUserRecord(data string) UserRecord {
	record := UserRecord{}
	for _, m := range userAssignment.FindAllStringSubmatch(data, -1) {
		value := m[2]
		// (?m)$ stops before \n but not before \r.
		if n := len(value); n > 0 && value[n-1] == '\r' {
			value = value[:n-1]
		}
		record[m[1]] = value
	}
	return record
}

// LoadUsers reads every account record in the source.
// Unreadable entries are skipped.
func LoadUsers(source Source) (Users, error) {
	ids, err := source.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	users := make(Users, len(ids))
	for _, id := range ids {
		data, err := source.ReadUser(id)
		if err != nil {
			continue
		}
		users[id] = ParseUserRecord(string(data))
	}
	return users, nil
}

// WriteJSON writes the users as JSON with sorted keys and two-space
// indentation, followed by a newline. Values are written verbatim, without
// HTML escaping.
func (u Users) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(u); err != nil {
		return fmt.Errorf("encoding users: %w", err)
	}
	return nil
}

// Author is a resolved commit identity.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// ResolveAuthor looks up authorID and applies the fallback chain:
// name, then username, then token (usually the editor's address).
// The email falls back to fallbackEmail, or DefaultFallbackEmail when empty.
func ResolveAuthor(users Users, authorID, token, fallbackEmail string) Author {
	if fallbackEmail == "" {
		fallbackEmail = DefaultFallbackEmail
	}
	record := users[authorID]

	name := record["name"]
	if name == "" {
		name = record["username"]
	}
	if name == "" {
		name = token
	}

	email := record["email"]
	if email == "" {
		email = fallbackEmail
	}

	return Author{Name: name, Email: email}
}
