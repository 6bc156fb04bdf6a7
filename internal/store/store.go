package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"door-alarm-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	// Event log (append-only).
	AppendEvent(ctx context.Context, event *model.Event) error
	LastEvent(ctx context.Context) (*model.Event, error)
	ListEvents(ctx context.Context, page, perPage int) (EventPage, error)
	EventsForReport(ctx context.Context, filter EventFilter) ([]model.Event, error)
	EventStatistics(ctx context.Context) (Statistics, error)

	// Settings.
	GetSetting(ctx context.Context, key string) (string, error)
	PutSetting(ctx context.Context, key, value string) error
	TimerDuration(ctx context.Context) (time.Duration, error)

	// Mail configuration.
	GetMailConfig(ctx context.Context) (*model.MailConfig, error)
	SaveMailConfig(ctx context.Context, cfg *model.MailConfig) error

	// Users.
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id int64) error

	// Push subscriptions.
	ListPushSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
	DeletePushSubscription(ctx context.Context, endpoint string) error

	DB() *gorm.DB
}

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// AppendEvent inserts an event and fills in its assigned id.
func (s *gormStore) AppendEvent(ctx context.Context, event *model.Event) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// LastEvent returns the newest event, or nil when the log is empty.
func (s *gormStore) LastEvent(ctx context.Context) (*model.Event, error) {
	var event model.Event
	err := s.db.WithContext(ctx).Order("id DESC").First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last event: %w", err)
	}
	return &event, nil
}

// ListEvents returns one page of the log, newest first.
func (s *gormStore) ListEvents(ctx context.Context, page, perPage int) (EventPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Event{}).Count(&total).Error; err != nil {
		return EventPage{}, fmt.Errorf("count events: %w", err)
	}

	var events []model.Event
	err := s.db.WithContext(ctx).
		Order("id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&events).Error
	if err != nil {
		return EventPage{}, fmt.Errorf("list events: %w", err)
	}

	pages := int((total + int64(perPage) - 1) / int64(perPage))
	return EventPage{Events: events, Total: total, Pages: pages, CurrentPage: page}, nil
}

// EventsForReport returns events matching the filter, oldest first.
func (s *gormStore) EventsForReport(ctx context.Context, filter EventFilter) ([]model.Event, error) {
	q := s.db.WithContext(ctx).Model(&model.Event{})
	if filter.Start != nil {
		q = q.Where("timestamp >= ?", *filter.Start)
	}
	if filter.End != nil {
		q = q.Where("timestamp < ?", *filter.End)
	}
	if len(filter.Types) > 0 {
		q = q.Where("event_type IN ?", filter.Types)
	}

	var events []model.Event
	if err := q.Order("id ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("report query: %w", err)
	}
	return events, nil
}

// EventStatistics recomputes the aggregate counts from the full stored log.
func (s *gormStore) EventStatistics(ctx context.Context) (Statistics, error) {
	var stats Statistics

	if err := s.db.WithContext(ctx).Model(&model.Event{}).Count(&stats.TotalEvents).Error; err != nil {
		return Statistics{}, fmt.Errorf("count total events: %w", err)
	}

	type typeCount struct {
		EventType model.EventType
		N         int64
	}
	var rows []typeCount
	err := s.db.WithContext(ctx).
		Model(&model.Event{}).
		Select("event_type, COUNT(*) as n").
		Group("event_type").
		Scan(&rows).Error
	if err != nil {
		return Statistics{}, fmt.Errorf("count events by type: %w", err)
	}

	for _, row := range rows {
		switch row.EventType {
		case model.EventDoorOpen:
			stats.DoorOpenEvents = row.N
		case model.EventDoorClose:
			stats.DoorCloseEvents = row.N
		case model.EventAlarmTriggered:
			stats.AlarmEvents = row.N
		}
	}
	return stats, nil
}

// GetSetting returns the value for key, or ErrNotFound.
func (s *gormStore) GetSetting(ctx context.Context, key string) (string, error) {
	var setting model.Setting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return setting.Value, nil
}

// PutSetting upserts a setting row.
func (s *gormStore) PutSetting(ctx context.Context, key, value string) error {
	setting := model.Setting{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("put setting %q: %w", key, err)
	}
	return nil
}

// TimerDuration reads the configured countdown duration. Missing or invalid
// values fall back to the default.
func (s *gormStore) TimerDuration(ctx context.Context) (time.Duration, error) {
	raw, err := s.GetSetting(ctx, model.SettingTimerDuration)
	if errors.Is(err, ErrNotFound) {
		return model.DefaultTimerDurationSeconds * time.Second, nil
	}
	if err != nil {
		return 0, err
	}

	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return model.DefaultTimerDurationSeconds * time.Second, nil
	}
	return time.Duration(seconds) * time.Second, nil
}

// GetMailConfig returns the mail configuration row, or nil when absent.
func (s *gormStore) GetMailConfig(ctx context.Context) (*model.MailConfig, error) {
	var cfg model.MailConfig
	err := s.db.WithContext(ctx).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mail config: %w", err)
	}
	return &cfg, nil
}

// SaveMailConfig creates or replaces the single mail configuration row.
func (s *gormStore) SaveMailConfig(ctx context.Context, cfg *model.MailConfig) error {
	existing, err := s.GetMailConfig(ctx)
	if err != nil {
		return err
	}
	if existing != nil {
		cfg.ID = existing.ID
	}
	if err := s.db.WithContext(ctx).Save(cfg).Error; err != nil {
		return fmt.Errorf("save mail config: %w", err)
	}
	return nil
}

func (s *gormStore) CreateUser(ctx context.Context, user *model.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *gormStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &user, nil
}

func (s *gormStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return &user, nil
}

func (s *gormStore) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *gormStore) UpdateUser(ctx context.Context, user *model.User) error {
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("update user %d: %w", user.ID, err)
	}
	return nil
}

func (s *gormStore) DeleteUser(ctx context.Context, id int64) error {
	if err := s.db.WithContext(ctx).Delete(&model.User{}, id).Error; err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}

func (s *gormStore) ListPushSubscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("list push subscriptions: %w", err)
	}
	return subs, nil
}

func (s *gormStore) DeletePushSubscription(ctx context.Context, endpoint string) error {
	err := s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
	if err != nil {
		return fmt.Errorf("delete push subscription: %w", err)
	}
	return nil
}
