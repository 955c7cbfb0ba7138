package wiki

import (
	"strconv"
	"strings"
	"time"
)

// editLogFields is the number of tab-separated fields in a well-formed log line:
//
//	timestamp, revision, action, pagename, address, hostname, userid, extra, comment
const editLogFields = 9

// microsecondDigits is the fixed-width sub-second suffix of log timestamps.
const microsecondDigits = 6

// RevisionDescriptor is one parsed edit log line.
type RevisionDescriptor struct {
	Timestamp   int64  // seconds since the epoch
	RevisionID  string // revision file name
	AuthorID    string // account id, may be empty for anonymous edits
	AuthorToken string // editor address, used when the account has no name
	Comment     string
}

// Time returns the revision timestamp as a time.Time.
func (d RevisionDescriptor) Time() time.Time {
	return time.Unix(d.Timestamp, 0)
}

// ParseEditLog parses a page edit log, keeping log order.
// Lines without exactly nine fields, or with an unparseable timestamp, are skipped.
func ParseEditLog(data string) []RevisionDescriptor {
	var descriptors []RevisionDescriptor
	for _, line := range strings.Split(data, "\n") {
		fields := strings.Split(line, "\t")
		if len(fields) != editLogFields {
			continue
		}
		ts, ok := parseLogTimestamp(fields[0])
		if !ok {
			continue
		}
		descriptors = append(descriptors, RevisionDescriptor{
			Timestamp:   ts,
			RevisionID:  fields[1],
			AuthorID:    fields[len(fields)-3],
			AuthorToken: fields[len(fields)-5],
			Comment:     strings.TrimSuffix(fields[len(fields)-1], "\r"),
		})
	}
	return descriptors
}

// parseLogTimestamp strips the microsecond suffix and parses the remaining seconds.
func parseLogTimestamp(raw string) (int64, bool) {
	if len(raw) <= microsecondDigits {
		return 0, false
	}
	ts, err := strconv.ParseInt(raw[:len(raw)-microsecondDigits], 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}
