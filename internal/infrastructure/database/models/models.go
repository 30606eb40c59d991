package models

import "time"

type Snap struct {
	ID          string    `json:"id" gorm:"primaryKey;type:text"`
	Creator     string    `json:"creator" gorm:"type:text;index"`
	Title       string    `json:"title" gorm:"type:text"`
	Description *string   `json:"description" gorm:"type:text"`
	ImageURL    *string   `json:"imageUrl" gorm:"type:text"`
	Destination string    `json:"destination" gorm:"type:text"`
	Amount      *string   `json:"amount" gorm:"type:text"`
	AssetCode   string    `json:"assetCode" gorm:"type:text"`
	AssetIssuer *string   `json:"assetIssuer" gorm:"type:text"`
	Memo        *string   `json:"memo" gorm:"type:text"`
	MemoType    string    `json:"memoType" gorm:"type:text"`
	Network     string    `json:"network" gorm:"type:text"`
	CDate       time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate       time.Time `json:"mdate" gorm:"autoUpdateTime"`
}

type RegistryDomain struct {
	Domain      string    `json:"domain" gorm:"primaryKey;type:text"`
	Status      string    `json:"status" gorm:"type:text"`
	Name        string    `json:"name" gorm:"type:text"`
	Description string    `json:"description" gorm:"type:text"`
	Icon        string    `json:"icon" gorm:"type:text"`
	CDate       time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate       time.Time `json:"mdate" gorm:"autoUpdateTime"`
}
