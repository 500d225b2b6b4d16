// Package users provides the target platform's user operations consumed by
// the migration engine: creation with bulk-import validation relaxed,
// username suggestion, email lookup for the adoption fallback, and
// import-id stamping/scan-back.
package users

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/forumbridge/migrator/internal/entities"
	"github.com/forumbridge/migrator/internal/importer"
)

// SystemUsername is the reserved unprivileged account that owns migrated
// content whose author could not be mapped, and migrated categories.
const SystemUsername = "system"

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

var _ importer.UserStore = (*Repository)(nil)

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create creates a target user from migrated attributes. Bulk-import rules
// apply: a blank display name falls back to the username, the username is
// made unique by suffixing, and the account gets a random password since the
// source system's credentials cannot be carried over.
func (r *Repository) Create(rec importer.UserRecord) (uint, error) {
	email := strings.ToLower(strings.TrimSpace(rec.Email))
	if !strings.Contains(email, "@") {
		return 0, fmt.Errorf("invalid email %q", email)
	}

	username, err := r.SuggestUsername(rec.Username)
	if err != nil {
		return 0, err
	}

	name := rec.Name
	if name == "" {
		name = username
	}

	trustLevel := entities.TrustLevel(rec.TrustLevel)
	if trustLevel == entities.TrustLevelNewcomer {
		trustLevel = entities.TrustLevelBasic
	}

	hash, err := randomPasswordHash()
	if err != nil {
		return 0, err
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	user := entities.User{
		Username:     username,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		TrustLevel:   trustLevel,
		Admin:        rec.Admin,
		Moderator:    rec.Moderator,
		Active:       true,
		CreatedAt:    createdAt,
	}
	if err := r.db.Create(&user).Error; err != nil {
		return 0, err
	}
	return user.ID, nil
}

// FindIDByEmail looks a user up by normalized email. Returns 0 with a nil
// error when no user carries the address.
func (r *Repository) FindIDByEmail(email string) (uint, error) {
	var user entities.User
	err := r.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

// EnsureAdmin finds or creates the designated admin account.
func (r *Repository) EnsureAdmin(username, email string) (uint, error) {
	if id, err := r.FindIDByEmail(email); err != nil {
		return 0, err
	} else if id != 0 {
		return id, nil
	}

	id, err := r.Create(importer.UserRecord{
		Username:   username,
		Email:      email,
		TrustLevel: int(entities.TrustLevelLeader),
		Admin:      true,
		Moderator:  true,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create admin account: %w", err)
	}
	return id, nil
}

// EnsureSystem finds or creates the reserved system account. It is inactive
// and unprivileged; it only exists to own content nobody else can.
func (r *Repository) EnsureSystem() (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ?", SystemUsername).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := randomPasswordHash()
	if err != nil {
		return nil, err
	}
	user = entities.User{
		Username:     SystemUsername,
		Name:         SystemUsername,
		Email:        "system@localhost.invalid",
		PasswordHash: hash,
		TrustLevel:   entities.TrustLevelBasic,
		Active:       false,
	}
	if err := r.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create system user: %w", err)
	}
	return &user, nil
}

// SuggestUsername sanitizes the candidate and suffixes it with an increment
// until it no longer collides with an existing username.
func (r *Repository) SuggestUsername(candidate string) (string, error) {
	base := sanitizeUsername(candidate)
	suggestion := base
	for n := 1; ; n++ {
		var count int64
		if err := r.db.Model(&entities.User{}).Where("username = ?", suggestion).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return suggestion, nil
		}
		suggestion = fmt.Sprintf("%s%d", base, n)
	}
}

// StampImportID persists the source record's id as metadata on the user.
func (r *Repository) StampImportID(userID uint, importID string) error {
	field := entities.UserCustomField{
		UserID: userID,
		Name:   entities.ImportIDField,
		Value:  importID,
	}
	return r.db.Create(&field).Error
}

// ImportedIDs scans back every persisted import id as importID -> userID.
func (r *Repository) ImportedIDs() (map[string]uint, error) {
	var fields []entities.UserCustomField
	if err := r.db.Where("name = ?", entities.ImportIDField).Find(&fields).Error; err != nil {
		return nil, err
	}
	ids := make(map[string]uint, len(fields))
	for _, f := range fields {
		ids[f.Value] = f.UserID
	}
	return ids, nil
}

// sanitizeUsername keeps letters, digits, dots, dashes and underscores,
// replacing everything else with underscores.
func sanitizeUsername(candidate string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(candidate) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	s := strings.Trim(b.String(), "._-")
	if s == "" {
		return "user"
	}
	return s
}

// randomPasswordHash generates an unguessable placeholder credential.
// MinCost keeps bulk imports fast; migrated accounts go through a password
// reset before first login anyway.
func randomPasswordHash() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(bytes)), bcrypt.MinCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
