package models

import "time"

// User is the minimal owner entity the pipeline needs: pending requests
// and artifacts hang off it. Account management itself lives in another
// service.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:255"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
