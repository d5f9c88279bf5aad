// Package store persists scan results to a local SQLite database, so
// repeated scans of the same tree can be compared: which findings are
// new since the last run, and which have been explicitly suppressed.
package store

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aidanhs/tclscan/internal/scan/result"
)

// ScanRecord is one baseline-recording run against a path.
type ScanRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Path         string    `gorm:"index" json:"path"`
	RanAt        time.Time `json:"ranAt"`
	CommandCount int       `json:"commandCount"`
	Findings     []Finding `json:"findings"`
}

// Finding is one CheckResult as recorded against a ScanRecord. Key is a
// stable fingerprint (severity + message + locus) used to carry a
// suppression across scans even as line numbers and surrounding
// context shift.
type Finding struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	ScanRecordID uint   `gorm:"index" json:"scanRecordId"`
	Key          string `gorm:"index" json:"key"`
	Severity     string `json:"severity"`
	Message      string `json:"message"`
	Locus        string `json:"locus"`
	Ctx          string `json:"ctx"`
	Suppressed   bool   `gorm:"default:false" json:"suppressed"`
}

// FindingKey is the fingerprint used to recognize "the same finding"
// across two scans of a changing file, and what callers pass to
// Suppress to silence one.
func FindingKey(r result.CheckResult) string {
	return fmt.Sprintf("%s|%s|%s", r.Severity, r.Message, r.Locus)
}

// Store wraps a gorm handle open on a tclscan baseline database.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// migrates it to the current schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening baseline database: %w", err)
	}
	if err := db.AutoMigrate(&ScanRecord{}, &Finding{}); err != nil {
		return nil, fmt.Errorf("migrating baseline database: %w", err)
	}
	return &Store{db: db}, nil
}

// Record saves a fresh scan of path, carrying forward the Suppressed
// flag of any finding whose key matches one already suppressed in a
// prior scan of the same path.
func (s *Store) Record(path string, results []result.CheckResult) (*ScanRecord, error) {
	suppressed, err := s.suppressedKeys(path)
	if err != nil {
		return nil, err
	}

	rec := &ScanRecord{
		Path:         path,
		RanAt:        time.Now(),
		CommandCount: len(results),
	}
	for _, r := range results {
		key := FindingKey(r)
		rec.Findings = append(rec.Findings, Finding{
			Key:        key,
			Severity:   r.Severity.String(),
			Message:    r.Message,
			Locus:      r.Locus,
			Ctx:        r.Ctx,
			Suppressed: suppressed[key],
		})
	}

	if err := s.db.Create(rec).Error; err != nil {
		return nil, fmt.Errorf("recording scan: %w", err)
	}
	return rec, nil
}

// Diff reports every result in results whose key was not present in the
// most recent prior ScanRecord for path and has not been suppressed for
// path. A path with no prior record reports every result as new.
func (s *Store) Diff(path string, results []result.CheckResult) ([]result.CheckResult, error) {
	suppressed, err := s.suppressedKeys(path)
	if err != nil {
		return nil, err
	}

	var prev ScanRecord
	err = s.db.Where("path = ?", path).Order("ran_at desc").Preload("Findings").First(&prev).Error
	if err == gorm.ErrRecordNotFound {
		return results, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading prior scan: %w", err)
	}

	seen := suppressed
	for _, f := range prev.Findings {
		seen[f.Key] = true
	}

	var fresh []result.CheckResult
	for _, r := range results {
		if !seen[FindingKey(r)] {
			fresh = append(fresh, r)
		}
	}
	return fresh, nil
}

// Suppress marks every finding matching key, across every recorded scan
// of path, as suppressed. Future Record calls for path carry the
// suppression forward onto matching findings in the new scan.
func (s *Store) Suppress(path, key string) error {
	return s.db.Model(&Finding{}).
		Where("key = ? AND scan_record_id IN (?)",
			key, s.db.Model(&ScanRecord{}).Select("id").Where("path = ?", path)).
		Update("suppressed", true).Error
}

// IsSuppressed reports whether key has been suppressed for path.
func (s *Store) IsSuppressed(path, key string) (bool, error) {
	var count int64
	err := s.db.Model(&Finding{}).
		Where("key = ? AND suppressed = ? AND scan_record_id IN (?)",
			key, true, s.db.Model(&ScanRecord{}).Select("id").Where("path = ?", path)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking suppression: %w", err)
	}
	return count > 0, nil
}

func (s *Store) suppressedKeys(path string) (map[string]bool, error) {
	var findings []Finding
	err := s.db.Model(&Finding{}).
		Where("suppressed = ? AND scan_record_id IN (?)",
			true, s.db.Model(&ScanRecord{}).Select("id").Where("path = ?", path)).
		Find(&findings).Error
	if err != nil {
		return nil, fmt.Errorf("loading suppressions: %w", err)
	}
	out := make(map[string]bool, len(findings))
	for _, f := range findings {
		out[f.Key] = true
	}
	return out, nil
}
