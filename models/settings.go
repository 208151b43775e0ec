package models

const SettingsTable = "sel_settings"

// SettingsID is the fixed primary key of the singleton settings row.
const SettingsID = 1

type Settings struct {
	ID uint `gorm:"primaryKey" json:"-"`

	MinLoanMinutes     int `gorm:"not null;default:5" json:"minLoanMinutes"`
	MaxLoanMinutes     int `gorm:"not null;default:480" json:"maxLoanMinutes"`
	DefaultLoanMinutes int `gorm:"not null;default:60" json:"defaultLoanMinutes"`
	RetentionDays      int `gorm:"not null;default:365" json:"retentionDays"`
}

func (Settings) TableName() string { return SettingsTable }

// ClampDuration forces a requested loan duration into the configured
// bounds. Zero or negative requests fall back to the default.
func (s *Settings) ClampDuration(minutes int) int {
	if minutes <= 0 {
		minutes = s.DefaultLoanMinutes
	}
	if minutes < s.MinLoanMinutes {
		return s.MinLoanMinutes
	}
	if minutes > s.MaxLoanMinutes {
		return s.MaxLoanMinutes
	}
	return minutes
}
