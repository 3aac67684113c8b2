package ban

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"gorm.io/gorm"

	"github.com/cybercog/ban/database"
	"github.com/cybercog/ban/errors"
	"github.com/cybercog/ban/logger"
	"github.com/cybercog/ban/validation"
)

// Attributes describe a new ban.
type Attributes struct {
	Comment   string     `json:"comment" validate:"max=255"`
	ExpiredAt *time.Time `json:"expired_at"`
	// CreatedBy is the entity applying the ban, if any.
	CreatedBy Bannable `json:"-"`
}

// Service applies and lifts bans.
type Service struct {
	db   *gorm.DB
	user Model
	log  *logger.Logger
	now  func() time.Time
}

// NewService creates a service over db. user is the configured user model.
func NewService(db *gorm.DB, user Model, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		db:   db,
		user: user,
		log:  log.WithComponent("ban"),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// UserModel returns the configured user model.
func (s *Service) UserModel() Model { return s.user }

// FindUser loads the user with id using the configured user model.
func (s *Service) FindUser(ctx context.Context, id uint) (Bannable, error) {
	u := s.user.New()
	if err := s.db.WithContext(ctx).First(u, id).Error; err != nil {
		return nil, database.FromDatabase(err, s.user.Name())
	}
	return u, nil
}

// Ban records a ban on b and stamps its banned_at column.
func (s *Service) Ban(ctx context.Context, b Bannable, attrs Attributes) (*Ban, error) {
	bannableType, err := s.checkBannable(b)
	if err != nil {
		return nil, err
	}
	if err := validation.Validate(attrs); err != nil {
		return nil, err
	}

	now := s.now()
	record := &Ban{BannableType: bannableType, BannableID: b.GetID()}
	if attrs.Comment != "" {
		record.Comment = &attrs.Comment
	}
	if attrs.ExpiredAt != nil {
		if !attrs.ExpiredAt.After(now) {
			return nil, errors.Validation("expired_at: must be in the future")
		}
		expiredAt := attrs.ExpiredAt.UTC()
		record.ExpiredAt = &expiredAt
	}
	if attrs.CreatedBy != nil {
		creatorType, err := s.checkBannable(attrs.CreatedBy)
		if err != nil {
			return nil, fmt.Errorf("created_by: %w", err)
		}
		creatorID := attrs.CreatedBy.GetID()
		record.CreatedByType = &creatorType
		record.CreatedByID = &creatorID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		return tx.Model(b).Update("banned_at", now).Error
	})
	if err != nil {
		return nil, database.FromDatabase(err, "ban")
	}

	s.log.Info("Banned", logger.Fields("bannable_type", bannableType, "bannable_id", b.GetID()))
	return record, nil
}

// Unban removes every ban of b and clears its banned_at column.
func (s *Service) Unban(ctx context.Context, b Bannable) error {
	bannableType, err := s.checkBannable(b)
	if err != nil {
		return err
	}

	var removed int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("bannable_type = ? AND bannable_id = ?", bannableType, b.GetID()).Delete(&Ban{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return tx.Model(b).Update("banned_at", nil).Error
	})
	if err != nil {
		return database.FromDatabase(err, "ban")
	}

	s.log.Info("Unbanned", logger.Fields("bannable_type", bannableType, "bannable_id", b.GetID(), "bans", removed))
	return nil
}

// IsBanned reports whether b has a ban that has not expired.
func (s *Service) IsBanned(ctx context.Context, b Bannable) (bool, error) {
	bannableType, err := s.checkBannable(b)
	if err != nil {
		return false, err
	}

	var count int64
	err = s.db.WithContext(ctx).Model(&Ban{}).
		Where("bannable_type = ? AND bannable_id = ?", bannableType, b.GetID()).
		Where("expired_at IS NULL OR expired_at > ?", s.now()).
		Count(&count).Error
	if err != nil {
		return false, database.FromDatabase(err, "ban")
	}
	return count > 0, nil
}

// Bans returns the bans of b, oldest first. Lifted bans are not included.
func (s *Service) Bans(ctx context.Context, b Bannable) ([]Ban, error) {
	bannableType, err := s.checkBannable(b)
	if err != nil {
		return nil, err
	}

	var bans []Ban
	err = s.db.WithContext(ctx).
		Where("bannable_type = ? AND bannable_id = ?", bannableType, b.GetID()).
		Order("id").
		Find(&bans).Error
	if err != nil {
		return nil, database.FromDatabase(err, "ban")
	}
	return bans, nil
}

func (s *Service) checkBannable(b Bannable) (string, error) {
	if b == nil {
		return "", errors.Validation("bannable is required")
	}
	if v := reflect.ValueOf(b); v.Kind() == reflect.Ptr && v.IsNil() {
		return "", errors.Validation(fmt.Sprintf("bannable %T is nil", b))
	}
	name, err := morphName(b)
	if err != nil {
		return "", err
	}
	if b.GetID() == 0 {
		return "", errors.Validation(fmt.Sprintf("%s must be persisted before it can be banned", name))
	}
	return name, nil
}
