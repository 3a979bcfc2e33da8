// Package validation holds the side-effect-free input checks run before any write.
package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/ovaphlow/pitchfork/service-veracity/internal/user/entity"
)

// Error is a user-facing validation failure.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(msg string) *Error { return &Error{Message: msg} }

// Messages returned by the validators.
const (
	MsgName             = "enter a valid first and last name"
	MsgBusinessID       = "enter a valid business identifier"
	MsgDepartment       = "invalid department"
	MsgSubdivision      = "invalid subdivision"
	MsgPassword         = "password does not meet the requirements"
	MsgCredentials      = "malformed credentials"
	MsgProgramQuantity  = "invalid planned quantity"
	MsgFactQuantity     = "invalid actual quantity"
	MsgComment          = "invalid comment"
	MsgNoDiscrepancy    = "actual quantity cannot equal planned quantity in a discrepancy report"
	MsgEmptyBatch       = "no items provided"
	MsgProductReference = "invalid product reference"
	MsgItemID           = "item id is required"
	MsgCloseComment     = "closing comment is required"
)

// Field rules, expressed as validator tags. String lengths are counted in runes.
const (
	nameRule            = "min=4,max=30,cyrillic"
	businessIDRule      = "len=8,number,startswith=6"
	passwordRule        = "min=6,max=50"
	departmentRule      = "min=0,max=15"
	programQuantityRule = "gt=-100000,lt=100000"
	factQuantityRule    = "gt=0,lt=100000"
	commentRule         = "max=299"
)

var cyrillicRx = regexp.MustCompile(`^[А-яЁё]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("cyrillic", func(fl validator.FieldLevel) bool {
		return cyrillicRx.MatchString(fl.Field().String())
	})
	return v
}

func ok(value any, rule string) bool {
	return validate.Var(value, rule) == nil
}

// Name checks a first or last name.
func Name(s string) error {
	if !ok(s, nameRule) {
		return newError(MsgName)
	}
	return nil
}

// BusinessID checks the 8-digit personnel identifier.
func BusinessID(s string) error {
	if !ok(s, businessIDRule) {
		return newError(MsgBusinessID)
	}
	return nil
}

// Password checks the plain password length.
func Password(s string) error {
	if !ok(s, passwordRule) {
		return newError(MsgPassword)
	}
	return nil
}

// Subdivision checks the subdivision literal.
func Subdivision(s string) error {
	if s != entity.SubdivisionCommerce && s != entity.SubdivisionLogistics {
		return newError(MsgSubdivision)
	}
	return nil
}

// Department checks the department number; a missing value is invalid.
func Department(d *int) error {
	if d == nil || !ok(*d, departmentRule) {
		return newError(MsgDepartment)
	}
	return nil
}

// ProgramQuantity checks the planned quantity.
func ProgramQuantity(q *float64) error {
	if q == nil || !ok(*q, programQuantityRule) {
		return newError(MsgProgramQuantity)
	}
	return nil
}

// FactQuantity checks the actual quantity.
func FactQuantity(q *float64) error {
	if q == nil || !ok(*q, factQuantityRule) {
		return newError(MsgFactQuantity)
	}
	return nil
}

// Comment checks an optional comment. Empty means absent.
func Comment(s string) error {
	if s == "" {
		return nil
	}
	if !ok(s, commentRule) {
		return newError(MsgComment)
	}
	return nil
}

// Registration is the input of the register operation.
type Registration struct {
	FirstName   string
	LastName    string
	BusinessID  string
	Department  *int
	Subdivision string
	Password    string
}

// ValidateRegistration returns the first failing field in the order
// name/surname, identifier, department, subdivision, password.
func ValidateRegistration(in Registration) error {
	if Name(in.FirstName) != nil || Name(in.LastName) != nil {
		return newError(MsgName)
	}
	checks := []func() error{
		func() error { return BusinessID(in.BusinessID) },
		func() error { return Department(in.Department) },
		func() error { return Subdivision(in.Subdivision) },
		func() error { return Password(in.Password) },
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateLogin only checks that both credentials are present.
func ValidateLogin(businessID, password string) error {
	if businessID == "" || password == "" {
		return newError(MsgCredentials)
	}
	return nil
}

// Item is the quantity part of a discrepancy report.
type Item struct {
	ProgramQuantity *float64
	FactQuantity    *float64
	Comment         string
}

// ValidateItem checks planned and actual quantities, the comment, and that the two
// quantities differ.
func ValidateItem(in Item) error {
	if err := ProgramQuantity(in.ProgramQuantity); err != nil {
		return err
	}
	if err := FactQuantity(in.FactQuantity); err != nil {
		return err
	}
	if err := Comment(in.Comment); err != nil {
		return err
	}
	if *in.ProgramQuantity == *in.FactQuantity {
		return newError(MsgNoDiscrepancy)
	}
	return nil
}
