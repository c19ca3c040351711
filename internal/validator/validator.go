package validator

import (
	"errors"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidPassword    = errors.New("password must be 8-100 characters with upper, lower, digit and special characters")
	ErrInvalidName        = errors.New("name must be at least 3 characters")
	ErrInvalidAccountName = errors.New("account name must be 3-50 characters of letters, numbers and spaces")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidTxType      = errors.New("invalid transaction type")
	ErrInvalidDescription = errors.New("description must be 3-100 characters")
	ErrInvalidAmount      = errors.New("amount must be positive with at most two decimal places")
	ErrInvalidCurrency    = errors.New("unsupported currency")
	ErrInvalidDate        = errors.New("invalid date")
)

const DateLayout = "2006-01-02"

var (
	emailRegex       = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	accountNameRegex = regexp.MustCompile(`^[a-zA-Z0-9 ]+$`)
	upperRegex       = regexp.MustCompile(`[A-Z]`)
	lowerRegex       = regexp.MustCompile(`[a-z]`)
	digitRegex       = regexp.MustCompile(`\d`)
	specialRegex     = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

var AccountTypes = []string{"checking", "savings", "credit_card", "investment", "other"}

var TransactionTypes = []string{"income", "expense"}

var Currencies = []string{
	"USD", "EUR", "GBP", "JPY", "AUD", "CAD", "CHF", "CNY", "HKD", "NZD",
	"SEK", "KRW", "SGD", "NOK", "MXN", "INR", "RUB", "ZAR", "TRY", "BRL",
	"TWD", "DKK", "PLN", "THB", "IDR", "HUF", "CZK", "ILS", "CLP", "PHP",
	"AED", "QAR", "SAR",
}

func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 8 || len(password) > 100 {
		return ErrInvalidPassword
	}
	if !upperRegex.MatchString(password) || !lowerRegex.MatchString(password) {
		return ErrInvalidPassword
	}
	if !digitRegex.MatchString(password) || !specialRegex.MatchString(password) {
		return ErrInvalidPassword
	}
	return nil
}

func ValidateName(name string) error {
	if len(name) < 3 {
		return ErrInvalidName
	}
	return nil
}

func ValidateAccountName(name string) error {
	if len(name) < 3 || len(name) > 50 {
		return ErrInvalidAccountName
	}
	if !accountNameRegex.MatchString(name) {
		return ErrInvalidAccountName
	}
	return nil
}

func ValidateAccountType(accountType string) error {
	for _, candidate := range AccountTypes {
		if accountType == candidate {
			return nil
		}
	}
	return ErrInvalidAccountType
}

func ValidateTransactionType(txType string) error {
	for _, candidate := range TransactionTypes {
		if txType == candidate {
			return nil
		}
	}
	return ErrInvalidTxType
}

func ValidateDescription(description string) error {
	if len(description) < 3 || len(description) > 100 {
		return ErrInvalidDescription
	}
	return nil
}

// ValidateAmount accepts a decimal string: strictly positive, no more
// than two decimal places.
func ValidateAmount(amount string) error {
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return ErrInvalidAmount
	}
	if parsed.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if parsed.Exponent() < -2 {
		return ErrInvalidAmount
	}
	return nil
}

func ValidateCurrency(currency string) error {
	for _, candidate := range Currencies {
		if currency == candidate {
			return nil
		}
	}
	return ErrInvalidCurrency
}

func ValidateDate(raw string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return parsed, nil
}
