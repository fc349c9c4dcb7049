package models

import "time"

// Subscription is a directed follow relation from UserID to AuthorID.
// The composite primary key keeps each pair unique.
type Subscription struct {
	UserID    uint `gorm:"primaryKey;check:chk_subscription_not_self,user_id <> author_id"`
	AuthorID  uint `gorm:"primaryKey;index"`
	CreatedAt time.Time

	User   User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Author User `gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
