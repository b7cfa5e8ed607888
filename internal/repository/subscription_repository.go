package repository

import (
	"time"

	"viksit_backend/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubscriptionRepository struct {
	DB *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{DB: db}
}

func (r *SubscriptionRepository) Create(sub *model.CourseSubscription) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(sub).Error
	})
}

func (r *SubscriptionRepository) FindByUUID(uuid string) (*model.CourseSubscription, error) {
	var sub model.CourseSubscription
	err := r.DB.Where("uu_id = ?", uuid).First(&sub).Error
	return &sub, err
}

func (r *SubscriptionRepository) activeScope(userID uint, today datatypes.Date) *gorm.DB {
	return r.DB.Model(&model.CourseSubscription{}).
		Where("user_id = ? AND is_paid = ? AND end_date >= ?", userID, true, today)
}

func (r *SubscriptionRepository) HasActive(userID uint, courseSlug string, today datatypes.Date) (bool, error) {
	var count int64
	err := r.activeScope(userID, today).
		Where("course_slug = ?", courseSlug).
		Count(&count).Error
	return count > 0, err
}

// ListActive returns the user's paid, unexpired subscriptions, latest end
// date first.
func (r *SubscriptionRepository) ListActive(userID uint, today datatypes.Date) ([]model.CourseSubscription, error) {
	var subs []model.CourseSubscription
	err := r.activeScope(userID, today).
		Order("end_date DESC").
		Find(&subs).Error
	return subs, err
}

func (r *SubscriptionRepository) ActiveSlugs(userID uint, today datatypes.Date) ([]string, error) {
	var slugs []string
	err := r.activeScope(userID, today).
		Distinct().
		Pluck("course_slug", &slugs).Error
	return slugs, err
}

// MarkPendingRedirect moves a freshly created row to pending_redirect once
// the gateway has issued a checkout URL.
func (r *SubscriptionRepository) MarkPendingRedirect(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&model.CourseSubscription{}).
			Where("id = ? AND is_paid = ? AND status = ?", id, false, model.SubscriptionCreated).
			Update("status", model.SubscriptionPendingRedirect).Error
	})
}

type PaidUpdate struct {
	TransactionID string
	ProviderState string
	Payload       datatypes.JSON
	PaidAt        time.Time
	EndDate       datatypes.Date
}

// MarkPaid flips is_paid from false to true. It reports false when another
// request already did, which callers treat as success.
func (r *SubscriptionRepository) MarkPaid(id uint, u PaidUpdate) (bool, error) {
	var applied bool
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.CourseSubscription{}).
			Where("id = ? AND is_paid = ?", id, false).
			Updates(map[string]interface{}{
				"is_paid":          true,
				"status":           model.SubscriptionPaid,
				"transaction_id":   u.TransactionID,
				"provider_state":   u.ProviderState,
				"provider_payload": u.Payload,
				"paid_at":          u.PaidAt,
				"end_date":         u.EndDate,
			})
		if res.Error != nil {
			return res.Error
		}
		applied = res.RowsAffected == 1
		return nil
	})
	return applied, err
}

// MarkUnpaidState records a non-completed provider answer. Paid rows are left
// alone.
func (r *SubscriptionRepository) MarkUnpaidState(id uint, providerState string, payload datatypes.JSON) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&model.CourseSubscription{}).
			Where("id = ? AND is_paid = ?", id, false).
			Updates(map[string]interface{}{
				"status":           model.SubscriptionFailedOrPending,
				"provider_state":   providerState,
				"provider_payload": payload,
			}).Error
	})
}
