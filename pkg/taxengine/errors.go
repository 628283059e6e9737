package taxengine

import "errors"

var (
	ErrInvalidIncome           = errors.New("income must be a finite, non-negative amount")
	ErrInvalidSchedule         = errors.New("invalid tax schedule")
	ErrInvalidContributionRule = errors.New("invalid contribution rule")
	ErrUnknownYear             = errors.New("unsupported tax year")
)
