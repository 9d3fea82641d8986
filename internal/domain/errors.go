package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
	ErrSameAccount     = errors.New("cannot transfer to same account")

	// Fund errors
	ErrFundNotFound    = errors.New("fund not found")
	ErrDuplicateFund   = errors.New("fund already exists")
	ErrInvalidFundKind = errors.New("invalid fund kind")

	// Transaction errors
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidTransactionKind = errors.New("invalid transaction kind")
	ErrInvalidDate            = errors.New("invalid date")
	ErrDescriptionTooLong     = errors.New("description too long")
)
