package importer

import (
	"log"
	"strings"

	"github.com/forumbridge/migrator/internal/source"
)

// Resolution says how a user row was settled against the target system.
type Resolution int

const (
	// ResolutionCreated means a new target user was created for the row.
	ResolutionCreated Resolution = iota
	// ResolutionAdopted means creation failed but an existing target user
	// with the same email was adopted and stamped with the import id.
	ResolutionAdopted
	// ResolutionFailed means the row could not be resolved at all.
	ResolutionFailed
)

// FailedRecord captures a user row that could not be imported. The list is
// diagnostic only; failed rows are not retried within a run.
type FailedRecord struct {
	ImportID string
	Email    string
	Reason   string
}

// CreateUsers imports one batch of user rows. total is the source-wide row
// count used for progress reporting; pass 0 when the batch is the whole set.
func (i *Importer) CreateUsers(rows []source.Row, total int, transform UserTransform) {
	if total <= 0 {
		total = len(rows)
	}
	for _, row := range rows {
		rec := transform(row)
		key := importKey(rec.ImportID)

		switch {
		case i.alreadyImported(KindUser, key):
			i.tally.SkippedUsers++
		case strings.TrimSpace(rec.Email) == "":
			i.failUser(key, rec.Email, "missing email")
			i.tally.SkippedUsers++
		default:
			switch i.resolveUser(key, rec) {
			case ResolutionCreated:
				i.tally.CreatedUsers++
			case ResolutionAdopted:
				i.tally.AdoptedUsers++
			case ResolutionFailed:
				i.tally.FailedUsers++
			}
		}

		done := i.tally.CreatedUsers + i.tally.AdoptedUsers + i.tally.SkippedUsers + i.tally.FailedUsers
		i.status.step(done, total)
	}
	if len(rows) > 0 {
		i.status.done()
	}
}

// resolveUser attempts creation and, on failure, falls back to adopting an
// existing target user with the same email. The fallback handles users that
// were seeded on the target outside the migration.
func (i *Importer) resolveUser(key string, rec UserRecord) Resolution {
	rec.Email = strings.ToLower(strings.TrimSpace(rec.Email))
	rec.Username = usernameCandidate(rec)

	userID, err := i.stores.Users.Create(rec)
	if err == nil {
		i.stampAndRecord(KindUser, key, userID, i.stores.Users.StampImportID)
		return ResolutionCreated
	}
	createErr := err

	existingID, lookupErr := i.stores.Users.FindIDByEmail(rec.Email)
	if lookupErr == nil && existingID != 0 {
		i.stampAndRecord(KindUser, key, existingID, i.stores.Users.StampImportID)
		return ResolutionAdopted
	}

	i.failUser(key, rec.Email, createErr.Error())
	return ResolutionFailed
}

// usernameCandidate picks the name the target system should try first:
// the explicit username, else the display name, else the email local part.
// Collision avoidance against existing usernames is the target's job.
func usernameCandidate(rec UserRecord) string {
	if rec.Username != "" {
		return rec.Username
	}
	if rec.Name != "" {
		return rec.Name
	}
	if at := strings.Index(rec.Email, "@"); at > 0 {
		return rec.Email[:at]
	}
	return rec.Email
}

func (i *Importer) failUser(key, email, reason string) {
	i.failed = append(i.failed, FailedRecord{ImportID: key, Email: email, Reason: reason})
	log.Printf("user %s could not be imported: %s", key, reason)
}
