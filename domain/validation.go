package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Account names are used as storage key segments, hence no ':'.
const accountNameRule = "required,max=64,excludesall=:"

type presenceRequest struct {
	Time        float64 `validate:"required,gt=0"`
	Nested      bool    `validate:"eq=true"`
	AccountName string  `validate:"required,max=64,excludesall=:"`
}

type messageRequest struct {
	Time float64 `validate:"required,gt=0"`
	From string  `validate:"required,max=64,excludesall=:"`
	To   string  `validate:"required,max=64,excludesall=:"`
	Text string  `validate:"required"`
}

type accountRequest struct {
	AccountName string `validate:"required,max=64,excludesall=:"`
}

type userRequest struct {
	User string `validate:"required,max=64,excludesall=:"`
}

type contactRequest struct {
	User        string `validate:"required,max=64,excludesall=:"`
	AccountName string `validate:"required,max=64,excludesall=:"`
}

// Validate checks that a request frame carries the fields its action requires.
func (f Frame) Validate() error {
	switch f.Action {
	case ActionPresence:
		if f.User == nil {
			return fmt.Errorf("presence without user")
		}
		return validate.Struct(presenceRequest{Time: f.Time, Nested: f.User.Nested, AccountName: f.User.AccountName})
	case ActionMessage:
		return validate.Struct(messageRequest{Time: f.Time, From: f.From, To: f.To, Text: f.Text})
	case ActionExit, ActionUsersRequest:
		return validate.Struct(accountRequest{AccountName: f.AccountName})
	case ActionGetContacts:
		return validate.Struct(userRequest{User: f.UserName()})
	case ActionAddContact, ActionRemoveContact:
		return validate.Struct(contactRequest{User: f.UserName(), AccountName: f.AccountName})
	case "":
		return fmt.Errorf("missing action")
	default:
		return fmt.Errorf("unknown action %q", f.Action)
	}
}

// ValidateName applies the account name rule on its own, for CLIs.
func ValidateName(name string) error {
	return validate.Var(name, accountNameRule)
}
