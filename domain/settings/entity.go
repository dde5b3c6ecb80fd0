// Package settings holds the shop configuration singleton.
package settings

import (
	"regexp"
	"strings"
	"time"

	"github.com/example/footwear-pos/domain/apperr"
	"github.com/shopspring/decimal"
)

// SingletonID is the primary key of the only settings row.
const SingletonID uint = 1

// MaxGSTPercent is the highest accepted tax rate.
var MaxGSTPercent = decimal.NewFromInt(28)

var (
	gstNumberPattern     = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[0-9A-Z]{3}$`)
	contactNumberPattern = regexp.MustCompile(`^\d{10}$`)
)

// Settings is the shop configuration printed on invoices.
type Settings struct {
	ID            uint            `gorm:"primarykey" json:"-"`
	ShopName      string          `gorm:"size:255;not null" json:"shop_name"`
	GSTNumber     string          `gorm:"column:gst_number;size:15" json:"gst_number"`
	ContactNumber string          `gorm:"size:10" json:"contact_number"`
	Address       string          `gorm:"size:512" json:"address"`
	GSTPercent    decimal.Decimal `gorm:"column:gst_percent;type:decimal(5,2);not null;default:0" json:"gst_percent"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName returns the table name for Settings model.
func (Settings) TableName() string {
	return "settings"
}

// Defaults returns the record used until an operator saves settings.
func Defaults() Settings {
	return Settings{
		ID:            SingletonID,
		ShopName:      "My Shop",
		GSTNumber:     "33ABCDE1234F1Z5",
		ContactNumber: "9876543210",
		Address:       "Main Street, City",
		GSTPercent:    decimal.NewFromInt(5),
	}
}

// Validate checks the record field by field and reports the first failure.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.ShopName) == "" {
		return apperr.Invalid("shop_name", "is required")
	}
	if s.GSTNumber != "" && !gstNumberPattern.MatchString(s.GSTNumber) {
		return apperr.Invalid("gst_number", "must be a 15 character GSTIN")
	}
	if s.ContactNumber != "" && !contactNumberPattern.MatchString(s.ContactNumber) {
		return apperr.Invalid("contact_number", "must be exactly 10 digits")
	}
	if s.GSTPercent.IsNegative() || s.GSTPercent.GreaterThan(MaxGSTPercent) {
		return apperr.Invalid("gst_percent", "must be between 0 and 28")
	}
	return nil
}

// Normalize trims surrounding whitespace and upper-cases the GST number.
func (s *Settings) Normalize() {
	s.ShopName = strings.TrimSpace(s.ShopName)
	s.GSTNumber = strings.ToUpper(strings.TrimSpace(s.GSTNumber))
	s.ContactNumber = strings.TrimSpace(s.ContactNumber)
	s.Address = strings.TrimSpace(s.Address)
}
