// Package model holds the gorm models persisted by the dashboard.
package model

import "time"

// DateLayout is the wire and form format of race dates.
const DateLayout = "2006-01-02"

type User struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Username  string    `json:"username" gorm:"uniqueIndex;size:80;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;size:120;not null"`
	Password  string    `json:"-" gorm:"size:128;not null"` // bcrypt hash
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`

	Sessions    []RaceSession `json:"-" gorm:"foreignKey:UserId"`
	Comparisons []Comparison  `json:"-" gorm:"foreignKey:UserId"`
}

// RaceSession is one simulated race for one driver, owned by one user.
type RaceSession struct {
	Id         int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId     int       `json:"-" gorm:"index;not null"`
	Name       string    `json:"name" gorm:"size:100;not null"`
	DriverName string    `json:"driverName" gorm:"size:100;not null"`
	RaceDate   time.Time `json:"raceDate" gorm:"not null"`
	Laps       int       `json:"laps" gorm:"not null;default:0"`
	Grid       int       `json:"grid"`
	CreatedAt  time.Time `json:"createdAt" gorm:"autoCreateTime"`

	// Driver metadata captured at creation time.
	DriverFullName    string `json:"driverFullName" gorm:"size:120"`
	DriverCode        string `json:"driverCode" gorm:"size:8"`
	DriverNationality string `json:"driverNationality" gorm:"size:60"`
	DriverTeam        string `json:"driverTeam" gorm:"size:80"`

	CarData []CarData `json:"-" gorm:"foreignKey:SessionId"`
}

// CarData is a single synthetic lap sample.
type CarData struct {
	Id         int       `json:"id" gorm:"primaryKey;autoIncrement"`
	SessionId  int       `json:"-" gorm:"index;not null"`
	Lap        int       `json:"lap" gorm:"not null"`
	Timestamp  time.Time `json:"timestamp" gorm:"index;not null"`
	Speed      float64   `json:"speed"` // km/h
	Rpm        int       `json:"rpm"`
	LapTime    float64   `json:"lapTime"`    // seconds
	TireTemp   float64   `json:"tireTemp"`   // celsius
	TireWear   float64   `json:"tireWear"`   // percent
	SectorTime float64   `json:"sectorTime"` // seconds
	Position   int       `json:"position"`
}

// Comparison is a saved side-by-side of two drivers' generated telemetry. The series are
// stored as JSON documents.
type Comparison struct {
	Id          int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId      int       `json:"-" gorm:"index;not null"`
	Driver1Name string    `json:"driver1Name" gorm:"size:100;not null"`
	Driver2Name string    `json:"driver2Name" gorm:"size:100;not null"`
	RaceDate    time.Time `json:"raceDate" gorm:"not null"`
	Data1       string    `json:"-" gorm:"type:text"`
	Data2       string    `json:"-" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

func (RaceSession) TableName() string {
	return "race_sessions"
}

func (CarData) TableName() string {
	return "car_data"
}
