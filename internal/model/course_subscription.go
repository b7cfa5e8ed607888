package model

import (
	"time"

	"gorm.io/datatypes"
)

type SubscriptionStatus string

const (
	SubscriptionCreated         SubscriptionStatus = "created"
	SubscriptionPendingRedirect SubscriptionStatus = "pending_redirect"
	SubscriptionPaid            SubscriptionStatus = "paid"
	SubscriptionFailedOrPending SubscriptionStatus = "failed_or_pending"
)

// CourseSubscription grants a user access to a course while IsPaid is set and
// EndDate has not passed. Rows are never deleted.
type CourseSubscription struct {
	BaseModel
	UserID     uint   `gorm:"index;not null" json:"userId"`
	CourseSlug string `gorm:"size:50;index;not null" json:"courseSlug"`
	Mode       string `gorm:"size:10;default:'online'" json:"mode"`
	// UUID is the merchant order id sent to the payment gateway.
	UUID            string             `gorm:"column:uu_id;size:64;uniqueIndex;not null" json:"orderId"`
	IsPaid          bool               `gorm:"default:false;index" json:"isPaid"`
	Amount          int                `gorm:"not null" json:"amount"`
	EndDate         datatypes.Date     `gorm:"index" json:"endDate"`
	TransactionID   string             `gorm:"size:100" json:"transactionId"`
	Status          SubscriptionStatus `gorm:"size:20;default:'created'" json:"status"`
	ProviderState   string             `gorm:"size:30" json:"providerState"`
	ProviderPayload datatypes.JSON     `json:"-"`
	PaidAt          *time.Time         `json:"paidAt"`
}

func (CourseSubscription) TableName() string {
	return "course_subscriptions"
}
