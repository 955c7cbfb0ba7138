package testutil

import (
	"fmt"
	"strings"
)

// EditLogLine formats a well-formed nine-field edit log line.
func EditLogLine(seconds int64, revisionID, pageName, address, userID, comment string) string {
	return strings.Join([]string{
		fmt.Sprintf("%d%06d", seconds, 0),
		revisionID,
		"SAVE",
		pageName,
		address,
		address,
		userID,
		"",
		comment,
	}, "\t")
}

// EditLog joins lines into an edit log with a trailing newline.
func EditLog(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}
