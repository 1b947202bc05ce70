package domain

import "errors"

// Error message string constants - single source of truth for error messages.
// Use these in assert.Contains() checks when testing error messages.
const (
	// Validation errors
	ErrMsgInvalidSymbol   = "invalid symbol"
	ErrMsgInvalidAmount   = "amount must be greater than zero"
	ErrMsgInvalidDuration = "duration must be greater than zero"
	ErrMsgInvalidBlock    = "block number must be at least 1"

	// Ledger errors
	ErrMsgInsufficientFunds = "insufficient funds"
	ErrMsgNegativeBalance   = "balance cannot be negative"

	// Grumble errors
	ErrMsgGrumbleNotActive     = "no active grumble"
	ErrMsgGrumbleAlreadyActive = "a grumble is already active"
	ErrMsgGrumbleAlreadyJoined = "you already joined the grumble"

	// Market errors
	ErrMsgNoPacks           = "no packs available"
	ErrMsgNoEligiblePrizes  = "no eligible prizes"
	ErrMsgClaimBelowMinimum = "balance below claim minimum"
	ErrMsgClaimLimitReached = "claim limit reached"
	ErrMsgClaimDisabled     = "claiming is disabled"

	// Auction errors
	ErrMsgAuctionNotFound = "auction not found"
	ErrMsgAuctionEnded    = "auction has ended"
	ErrMsgAlreadyBid      = "you already placed a bid"

	// Engine errors
	ErrMsgEngineStopped        = "engine is stopped"
	ErrMsgResolutionInProgress = "resolution already in progress"
)

// Common domain errors. Wrap with fmt.Errorf("%w: detail", domain.ErrXxx)
// for additional context.
var (
	ErrInvalidSymbol   = errors.New(ErrMsgInvalidSymbol)
	ErrInvalidAmount   = errors.New(ErrMsgInvalidAmount)
	ErrInvalidDuration = errors.New(ErrMsgInvalidDuration)
	ErrInvalidBlock    = errors.New(ErrMsgInvalidBlock)

	ErrInsufficientFunds = errors.New(ErrMsgInsufficientFunds)
	ErrNegativeBalance   = errors.New(ErrMsgNegativeBalance)

	ErrGrumbleNotActive     = errors.New(ErrMsgGrumbleNotActive)
	ErrGrumbleAlreadyActive = errors.New(ErrMsgGrumbleAlreadyActive)
	ErrGrumbleAlreadyJoined = errors.New(ErrMsgGrumbleAlreadyJoined)

	ErrNoPacks           = errors.New(ErrMsgNoPacks)
	ErrNoEligiblePrizes  = errors.New(ErrMsgNoEligiblePrizes)
	ErrClaimBelowMinimum = errors.New(ErrMsgClaimBelowMinimum)
	ErrClaimLimitReached = errors.New(ErrMsgClaimLimitReached)
	ErrClaimDisabled     = errors.New(ErrMsgClaimDisabled)

	ErrAuctionNotFound = errors.New(ErrMsgAuctionNotFound)
	ErrAuctionEnded    = errors.New(ErrMsgAuctionEnded)
	ErrAlreadyBid      = errors.New(ErrMsgAlreadyBid)

	ErrEngineStopped        = errors.New(ErrMsgEngineStopped)
	ErrResolutionInProgress = errors.New(ErrMsgResolutionInProgress)
)
