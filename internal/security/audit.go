// Package security audits a deployment for settings that weaken board access control.
package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/boardsync/internal/app"
	"github.com/charlesng35/boardsync/internal/database"
	"github.com/charlesng35/boardsync/internal/models"
)

// CheckStatus captures the outcome of a security audit check.
type CheckStatus string

const (
	StatusPass CheckStatus = "pass"
	StatusWarn CheckStatus = "warn"
	StatusFail CheckStatus = "fail"
)

const (
	minSecretBytes         = 32
	recommendedSecretBytes = 48
	maxRecommendedTokenTTL = 24 * time.Hour
)

// Check contains the result of a single audit verification.
type Check struct {
	ID          string      `json:"id"`
	Status      CheckStatus `json:"status"`
	Message     string      `json:"message"`
	Remediation string      `json:"remediation,omitempty"`
	Details     any         `json:"details,omitempty"`
}

// Result aggregates all checks with a status summary.
type Result struct {
	CheckedAt time.Time      `json:"checked_at"`
	Checks    []Check        `json:"checks"`
	Summary   map[string]int `json:"summary"`
}

// Failed reports whether any check failed.
func (r Result) Failed() bool {
	return r.Summary[string(StatusFail)] > 0
}

// AuditService evaluates the configuration and the seeded access model.
type AuditService struct {
	db  *gorm.DB
	cfg *app.Config
	now func() time.Time
}

// NewAuditService constructs the audit service. Missing inputs degrade the affected checks to warnings.
func NewAuditService(db *gorm.DB, cfg *app.Config) *AuditService {
	return &AuditService{db: db, cfg: cfg, now: time.Now}
}

// WithClock overrides the clock used in results.
func (s *AuditService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Run executes all audit checks and returns their outcome.
func (s *AuditService) Run(ctx context.Context) Result {
	if ctx == nil {
		ctx = context.Background()
	}

	checks := []Check{
		s.checkAdminMembers(ctx),
		s.checkJWTSecret(),
		s.checkTokenTTL(),
		s.checkPublicBoards(ctx),
	}

	summary := map[string]int{
		string(StatusPass): 0,
		string(StatusWarn): 0,
		string(StatusFail): 0,
	}
	for _, check := range checks {
		summary[string(check.Status)]++
	}

	return Result{
		CheckedAt: s.now().UTC(),
		Checks:    checks,
		Summary:   summary,
	}
}

func (s *AuditService) checkAdminMembers(ctx context.Context) Check {
	const id = "admin_member_present"
	if s.db == nil {
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     "Database unavailable, unable to confirm admin membership",
			Remediation: "Ensure database connectivity before running the audit.",
		}
	}

	var group models.Group
	err := s.db.WithContext(ctx).Where("name = ?", database.AdminGroupName).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Check{
			ID:          id,
			Status:      StatusFail,
			Message:     fmt.Sprintf("The %s group does not exist.", database.AdminGroupName),
			Remediation: "Run boardctl migrate to seed it.",
		}
	}

	var count int64
	if err == nil {
		err = s.db.WithContext(ctx).
			Table("user_groups").
			Joins("JOIN users ON users.id = user_groups.user_id").
			Where("user_groups.group_id = ? AND users.is_active = ?", group.ID, true).
			Count(&count).Error
	}
	if err != nil {
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     fmt.Sprintf("Could not verify admin membership: %v", err),
			Remediation: "Run boardctl migrate, then retry.",
		}
	}

	if count == 0 {
		return Check{
			ID:          id,
			Status:      StatusFail,
			Message:     fmt.Sprintf("The %s group has no active members.", database.AdminGroupName),
			Remediation: "Create an administrator with boardctl user add <name> --admin.",
		}
	}

	return Check{
		ID:      id,
		Status:  StatusPass,
		Message: "Admin group has active members.",
		Details: map[string]any{"count": count},
	}
}

func (s *AuditService) checkJWTSecret() Check {
	const id = "jwt_secret_strength"
	if s.cfg == nil {
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     "Configuration not loaded, unable to assess the signing secret.",
			Remediation: "Load configuration before running the security audit.",
		}
	}

	length := len(strings.TrimSpace(s.cfg.Auth.JWT.Secret))
	switch {
	case length == 0:
		return Check{
			ID:          id,
			Status:      StatusFail,
			Message:     "Missing JWT signing secret; the server generates one per start and tokens do not survive a restart.",
			Remediation: fmt.Sprintf("Set BOARDSYNC_AUTH_JWT_SECRET to at least %d random bytes.", recommendedSecretBytes),
		}
	case length < minSecretBytes:
		return Check{
			ID:          id,
			Status:      StatusFail,
			Message:     fmt.Sprintf("JWT signing secret is too short (%d bytes).", length),
			Remediation: fmt.Sprintf("Use a randomly generated secret of at least %d bytes.", minSecretBytes),
		}
	case length < recommendedSecretBytes:
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     fmt.Sprintf("JWT signing secret is %d bytes. Consider %d+ bytes.", length, recommendedSecretBytes),
			Remediation: "Increase the length of BOARDSYNC_AUTH_JWT_SECRET.",
			Details:     map[string]any{"length": length},
		}
	default:
		return Check{
			ID:      id,
			Status:  StatusPass,
			Message: fmt.Sprintf("JWT signing secret length is %d bytes.", length),
			Details: map[string]any{"length": length},
		}
	}
}

func (s *AuditService) checkTokenTTL() Check {
	const id = "access_token_ttl"
	if s.cfg == nil {
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     "Configuration not loaded, unable to evaluate token lifetime.",
			Remediation: "Load configuration before running the security audit.",
		}
	}

	ttl := s.cfg.Auth.JWTServiceConfig().AccessTokenTTL
	if ttl > maxRecommendedTokenTTL {
		return Check{
			ID:          id,
			Status:      StatusWarn,
			Message:     fmt.Sprintf("Access token TTL (%s) exceeds %s; revoked users keep their identity until expiry.", ttl, maxRecommendedTokenTTL),
			Remediation: "Lower auth.jwt.access_token_ttl.",
			Details:     map[string]any{"ttl": ttl.String()},
		}
	}

	return Check{
		ID:      id,
		Status:  StatusPass,
		Message: fmt.Sprintf("Access token TTL is %s.", ttl),
		Details: map[string]any{"ttl": ttl.String()},
	}
}

func (s *AuditService) checkPublicBoards(ctx context.Context) Check {
	const id = "public_boards"
	if s.db == nil {
		return Check{
			ID:      id,
			Status:  StatusWarn,
			Message: "Database unavailable, unable to count public boards.",
		}
	}

	var names []string
	if err := s.db.WithContext(ctx).
		Model(&models.Board{}).
		Where("is_public = ?", true).
		Order("name").
		Pluck("name", &names).Error; err != nil {
		return Check{
			ID:      id,
			Status:  StatusWarn,
			Message: fmt.Sprintf("Could not list public boards: %v", err),
		}
	}

	if len(names) == 0 {
		return Check{ID: id, Status: StatusPass, Message: "No board is visible to anonymous callers."}
	}
	return Check{
		ID:      id,
		Status:  StatusPass,
		Message: fmt.Sprintf("%d board(s) are visible to anonymous callers.", len(names)),
		Details: map[string]any{"boards": names},
	}
}
