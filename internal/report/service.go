package report

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chanchat/internal/models"
)

// The closed set of labels a report may carry.
const (
	LabelUncomfortable       = "uncomfortable"
	LabelHarassmentSuspected = "harassment_suspected"
)

// Labels lists every known label; summaries are zero-filled over it.
var Labels = []string{LabelUncomfortable, LabelHarassmentSuspected}

var (
	ErrInvalidLabel    = errors.New("invalid report label")
	ErrMessageNotFound = errors.New("message not found")
)

func ValidLabel(label string) bool {
	for _, l := range Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Summary is the aggregate read model for one message. Reporter identities
// never leave this package; only counts do.
type Summary struct {
	MessageID uint             `json:"message_id"`
	Counts    map[string]int64 `json:"counts"`
}

// ViewerSummary adds the label the viewer personally filed, if any.
type ViewerSummary struct {
	Summary
	ViewerLabel string `json:"user_report_label,omitempty"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// File records one report. The first report per (message, user) wins;
// later ones are absorbed by the unique index via ON CONFLICT DO NOTHING,
// so a duplicate filing is a silent no-op even under a race.
func (s *Service) File(messageID, reporterID uint, label string) error {
	if !ValidLabel(label) {
		return ErrInvalidLabel
	}

	var msg models.Message
	if err := s.db.First(&msg, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return err
	}

	rep := models.MessageReport{
		MessageID:      messageID,
		ReporterUserID: reporterID,
		Label:          label,
	}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rep).Error
}

// Summarize returns the per-label report counts for a message, zero-filled
// for labels nobody used yet.
func (s *Service) Summarize(messageID uint) (Summary, error) {
	var msg models.Message
	if err := s.db.First(&msg, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Summary{}, ErrMessageNotFound
		}
		return Summary{}, err
	}

	counts := make(map[string]int64, len(Labels))
	for _, l := range Labels {
		counts[l] = 0
	}

	var rows []struct {
		Label string
		Count int64
	}
	err := s.db.Model(&models.MessageReport{}).
		Select("label, count(id) as count").
		Where("message_id = ?", messageID).
		Group("label").
		Scan(&rows).Error
	if err != nil {
		return Summary{}, err
	}
	for _, r := range rows {
		counts[r.Label] = r.Count
	}

	return Summary{MessageID: messageID, Counts: counts}, nil
}

// SummarizeForViewer is Summarize plus the viewer's own label, so a client
// can render "you already reported this" without seeing anyone else's.
func (s *Service) SummarizeForViewer(messageID, viewerID uint) (ViewerSummary, error) {
	sum, err := s.Summarize(messageID)
	if err != nil {
		return ViewerSummary{}, err
	}

	var rep models.MessageReport
	err = s.db.Where("message_id = ? AND reporter_user_id = ?", messageID, viewerID).
		First(&rep).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ViewerSummary{Summary: sum}, nil
		}
		return ViewerSummary{}, err
	}

	return ViewerSummary{Summary: sum, ViewerLabel: rep.Label}, nil
}

// CountsForMessages returns label counts keyed by message id, for
// decorating a message list in one query instead of one per message.
func (s *Service) CountsForMessages(messageIDs []uint) (map[uint]map[string]int64, error) {
	out := make(map[uint]map[string]int64, len(messageIDs))
	if len(messageIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		MessageID uint
		Label     string
		Count     int64
	}
	err := s.db.Model(&models.MessageReport{}).
		Select("message_id, label, count(id) as count").
		Where("message_id IN ?", messageIDs).
		Group("message_id").
		Group("label").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		if out[r.MessageID] == nil {
			out[r.MessageID] = map[string]int64{}
		}
		out[r.MessageID][r.Label] = r.Count
	}
	return out, nil
}

// LabelsByReporter returns, per message id, the label this reporter filed.
func (s *Service) LabelsByReporter(reporterID uint, messageIDs []uint) (map[uint]string, error) {
	out := make(map[uint]string)
	if len(messageIDs) == 0 {
		return out, nil
	}

	var reps []models.MessageReport
	err := s.db.Where("message_id IN ? AND reporter_user_id = ?", messageIDs, reporterID).
		Find(&reps).Error
	if err != nil {
		return nil, err
	}

	for _, r := range reps {
		out[r.MessageID] = r.Label
	}
	return out, nil
}
