package wiki

import "io"

// Source provides read access to a wiki data directory:
//
//	<data_dir>/
//	  user/<id>                         account records
//	  pages/<encoded>/edit-log          revision log
//	  pages/<encoded>/revisions/<rev>   revision bodies
//	  pages/<encoded>/attachments/*     attachment files
//
// Methods that address a single missing file return an error wrapping
// fs.ErrNotExist so callers can tell "absent" from "broken".
type Source interface {
	// Root returns the absolute path of the data directory.
	Root() string

	// ListUsers returns the account ids found under user/.
	// A missing user directory yields an empty list.
	ListUsers() ([]string, error)

	// ReadUser returns the raw account record for id.
	ReadUser(id string) ([]byte, error)

	// ListPages returns the encoded names of all page directories.
	ListPages() ([]string, error)

	// ReadEditLog returns the raw edit log of a page.
	ReadEditLog(page string) ([]byte, error)

	// ReadRevision returns the stored body of one page revision.
	ReadRevision(page, revisionID string) ([]byte, error)

	// ListAttachments returns the file names under a page's attachments/.
	ListAttachments(page string) ([]string, error)

	// OpenAttachment opens an attachment and returns its size.
	OpenAttachment(page, name string) (io.ReadCloser, int64, error)
}
