package rolodex

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/xid"
)

// TimestampFormat is the layout for the server-generated Timestamp field
const TimestampFormat = "2006-01-02 15:04:05"

// Record is a single entry in the directory. LastName is the unique key it is
// stored under; Timestamp and Revision are rewritten by the server on every
// create or update and cannot be supplied by clients
type Record struct {
	FirstName string   `json:"fname" form:"fname"`
	LastName  string   `json:"lname" form:"lname"`
	Timestamp string   `json:"timestamp,omitempty" form:"-"`
	Revision  Revision `json:"revision" form:"-"`
}

// GetID returns the storage key for the Record, which is its last name
func (rec *Record) GetID() string {
	return rec.LastName
}

// Bind validates the decoded request body:
//   - POST requires lname since it determines the storage key
//   - Timestamp and Revision are server-generated and cannot be set manually
func (rec *Record) Bind(r *http.Request) error {
	if r.Method == http.MethodPost && rec.LastName == "" {
		return errors.New("missing required lname field")
	}

	if rec.Timestamp != "" {
		return errors.New("unable to manually set timestamp")
	}

	return rec.Revision.Bind(r)
}

func (rec *Record) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}

// Merge overlays fields provided in the update onto the receiver, keeping
// existing values for fields the update leaves empty. LastName is the storage
// key so it is never merged
func (rec *Record) Merge(update *Record) {
	if update.FirstName != "" {
		rec.FirstName = update.FirstName
	}
}

// Stamp rewrites the server-generated fields. It must be called before every
// write to storage
func (rec *Record) Stamp(now time.Time) {
	rec.Timestamp = now.Format(TimestampFormat)
	rec.Revision = NewRevision()
}

// Records is the list response type. It renders as a plain JSON array, or as
// the full directory page when the client accepts HTML
type Records []*Record

func (recs Records) Render(w http.ResponseWriter, r *http.Request) error {
	for _, rec := range recs {
		err := rec.Render(w, r)
		if err != nil {
			return err
		}
	}
	return nil
}

// Revision is an opaque token identifying a specific write of a Record. It uses
// xid so tokens are unique and ordered by creation time, which lets clients
// detect that an update replaced what they previously read
type Revision struct {
	xid.ID
}

// NewRevision creates a random Revision for a new write
func NewRevision() Revision {
	return Revision{xid.New()}
}

// Bind rejects client-supplied revisions since they are only created by the server
func (rev *Revision) Bind(r *http.Request) error {
	switch r.Method {
	case http.MethodPost, http.MethodPut:
		if !rev.ID.IsNil() {
			return errors.New("unable to manually set revision")
		}
	}

	return nil
}
