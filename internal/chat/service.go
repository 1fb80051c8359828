package chat

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"chanchat/internal/models"
	"chanchat/internal/report"
	"chanchat/internal/ws"
)

// Service is the only path that creates, edits or deletes messages. It
// persists first and broadcasts after: the store is authoritative, the
// push is best-effort.
type Service struct {
	db      *gorm.DB
	hub     *ws.Hub
	reports *report.Service
}

func NewService(db *gorm.DB, hub *ws.Hub, reports *report.Service) *Service {
	return &Service{db: db, hub: hub, reports: reports}
}

func (s *Service) CreateChannel(name, description string, creatorID uint) (*models.Channel, error) {
	var existing models.Channel
	err := s.db.Where("name = ?", name).First(&existing).Error
	if err == nil {
		return nil, ErrChannelNameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	ch := models.Channel{
		Name:        name,
		Description: description,
		CreatedBy:   creatorID,
	}
	if err := s.db.Create(&ch).Error; err != nil {
		return nil, err
	}
	return &ch, nil
}

func (s *Service) ListChannels() ([]models.Channel, error) {
	var chans []models.Channel
	if err := s.db.Order("created_at desc").Find(&chans).Error; err != nil {
		return nil, err
	}
	return chans, nil
}

// DeleteChannel removes a channel with all its messages and their reports
// in one transaction. Only the creator or an admin may do this.
func (s *Service) DeleteChannel(channelID, requesterID uint, isAdmin bool) error {
	var ch models.Channel
	if err := s.db.First(&ch, channelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChannelNotFound
		}
		return err
	}
	if ch.CreatedBy != requesterID && !isAdmin {
		return ErrForbidden
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		sub := tx.Model(&models.Message{}).Select("id").Where("channel_id = ?", channelID)
		if err := tx.Where("message_id IN (?)", sub).Delete(&models.MessageReport{}).Error; err != nil {
			return err
		}
		if err := tx.Where("channel_id = ?", channelID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&ch).Error
	})
}

// CreateMessage persists a new message and pushes new_message to the
// channel's subscribers.
func (s *Service) CreateMessage(channelID, authorID uint, text string) (*models.Message, error) {
	var ch models.Channel
	if err := s.db.First(&ch, channelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}

	var author models.User
	if err := s.db.First(&author, authorID).Error; err != nil {
		return nil, err
	}

	msg := models.Message{
		ChannelID: channelID,
		UserID:    authorID,
		Text:      text,
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return nil, err
	}

	created := msg.CreatedAt
	s.hub.Broadcast(channelID, ws.Event{
		Kind: ws.EventNewMessage,
		Message: &ws.MessagePayload{
			ID:        msg.ID,
			Text:      msg.Text,
			UserID:    author.ID,
			Username:  author.Username,
			IsEdited:  false,
			CreatedAt: &created,
		},
	})

	return &msg, nil
}

// EditMessage updates the text and sets the edited flag. Only the author
// may edit.
func (s *Service) EditMessage(messageID, requesterID uint, newText string) (*models.Message, error) {
	var msg models.Message
	if err := s.db.First(&msg, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	if msg.UserID != requesterID {
		return nil, ErrForbidden
	}

	now := time.Now()
	msg.Text = newText
	msg.IsEdited = true
	msg.UpdatedAt = &now
	if err := s.db.Save(&msg).Error; err != nil {
		return nil, err
	}

	s.hub.Broadcast(msg.ChannelID, ws.Event{
		Kind: ws.EventUpdateMessage,
		Message: &ws.MessagePayload{
			ID:       msg.ID,
			Text:     msg.Text,
			IsEdited: true,
		},
	})

	return &msg, nil
}

// RemoveMessage deletes a message and its reports. The author or an admin
// may delete.
func (s *Service) RemoveMessage(messageID, requesterID uint, isAdmin bool) error {
	var msg models.Message
	if err := s.db.First(&msg, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	if msg.UserID != requesterID && !isAdmin {
		return ErrForbidden
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", messageID).Delete(&models.MessageReport{}).Error; err != nil {
			return err
		}
		return tx.Delete(&msg).Error
	})
	if err != nil {
		return err
	}

	s.hub.Broadcast(msg.ChannelID, ws.Event{
		Kind:      ws.EventDeleteMessage,
		MessageID: msg.ID,
	})

	return nil
}

// MessageView is one row of a channel's message list, decorated with
// aggregate report counts and the label the viewer personally filed.
type MessageView struct {
	ID              uint             `json:"id"`
	Text            string           `json:"text"`
	UserID          uint             `json:"user_id"`
	Username        string           `json:"username"`
	IsEdited        bool             `json:"is_edited"`
	CreatedAt       time.Time        `json:"created_at"`
	ReportCounts    map[string]int64 `json:"report_counts"`
	UserReportLabel string           `json:"user_report_label,omitempty"`
}

// ListMessages returns a channel's messages in creation order, oldest
// first, with report decoration for the viewer.
func (s *Service) ListMessages(channelID, viewerID uint) ([]MessageView, error) {
	var ch models.Channel
	if err := s.db.First(&ch, channelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}

	var rows []struct {
		ID        uint
		Text      string
		UserID    uint
		Username  string
		IsEdited  bool
		CreatedAt time.Time
	}
	err := s.db.Model(&models.Message{}).
		Select("messages.id, messages.text, messages.user_id, users.username, messages.is_edited, messages.created_at").
		Joins("JOIN users ON users.id = messages.user_id").
		Where("messages.channel_id = ?", channelID).
		Order("messages.created_at asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}

	counts, err := s.reports.CountsForMessages(ids)
	if err != nil {
		return nil, err
	}
	mine, err := s.reports.LabelsByReporter(viewerID, ids)
	if err != nil {
		return nil, err
	}

	views := make([]MessageView, 0, len(rows))
	for _, r := range rows {
		rc := counts[r.ID]
		if rc == nil {
			rc = map[string]int64{}
		}
		views = append(views, MessageView{
			ID:              r.ID,
			Text:            r.Text,
			UserID:          r.UserID,
			Username:        r.Username,
			IsEdited:        r.IsEdited,
			CreatedAt:       r.CreatedAt,
			ReportCounts:    rc,
			UserReportLabel: mine[r.ID],
		})
	}
	return views, nil
}
