package models

import (
	"time"
)

// User is the profile document mirrored from the identity provider, keyed by uid.
type User struct {
	ID        string     `json:"uid" gorm:"primaryKey" bson:"_id"`
	FullName  string     `json:"fullName" bson:"fullName"`
	Email     string     `json:"email" gorm:"index" bson:"email"`
	Role      Role       `json:"role" bson:"role"`
	DoctorID  *string    `json:"doctorId" bson:"doctorId"`
	Disabled  bool       `json:"disabled" bson:"disabled"`
	FCMToken  *string    `json:"fcmToken,omitempty" gorm:"column:fcm_token" bson:"fcmToken,omitempty"`
	CreatedAt time.Time  `json:"createdAt" gorm:"autoCreateTime:false" bson:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty" gorm:"autoUpdateTime:false" bson:"updatedAt,omitempty"`
}

// PushToken returns the registered push token, or "" when none is stored.
func (u *User) PushToken() string {
	if u == nil || u.FCMToken == nil {
		return ""
	}
	return *u.FCMToken
}
