package models

import "time"

// Doctor is created inactive. An admin approval step outside this service
// flips Activated before the profile is bookable.
type Doctor struct {
	ID                string       `json:"id" gorm:"primaryKey" bson:"_id"`
	UserID            *string      `json:"userId" bson:"userId"`
	Name              string       `json:"name" bson:"name"`
	Email             string       `json:"email" bson:"email"`
	Experience        string       `json:"experience" bson:"experience"`
	AboutMe           string       `json:"aboutMe" bson:"aboutMe"`
	CategoryID        string       `json:"categoryId" gorm:"index" bson:"categoryId"`
	CategoryName      string       `json:"categoryName" bson:"categoryName"`
	PhotoURL          string       `json:"photoUrl" bson:"photoUrl"`
	ConsultationPrice float64      `json:"consultationPrice" bson:"consultationPrice"`
	Currency          string       `json:"currency" bson:"currency"`
	Availability      Availability `json:"availability" gorm:"serializer:json" bson:"availability"`
	Available         bool         `json:"available" bson:"available"`
	Activated         bool         `json:"activated" bson:"activated"`
	CreatedAt         time.Time    `json:"createdAt" gorm:"autoCreateTime:false" bson:"createdAt"`
}
