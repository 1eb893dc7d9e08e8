package game

import "strings"

type codeEffect int

const (
	codeGrantCurrency codeEffect = iota
	codeUnlockAdmin
	codeUnlockMode
)

type redeemCode struct {
	effect codeEffect
	amount float64 // grant codes
	mode   string  // unlock-mode codes
}

// Redeem codes are matched after trimming and upper-casing. Grant codes
// pay out on every redemption; unlock codes report "already active" the
// second time instead of reapplying.
var codeTable = map[string]redeemCode{
	"BORNTOCODE": {effect: codeGrantCurrency, amount: 5000},
	"OPENSESAME": {effect: codeUnlockAdmin},
	"MOONSHINE":  {effect: codeUnlockMode, mode: "midnight"},
}

// RedeemResult is the user-facing outcome of a redeem attempt.
type RedeemResult struct {
	Message       string `json:"message"`
	AlreadyActive bool   `json:"alreadyActive,omitempty"`
}

func normalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
