package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// MinWithdrawal is the policy floor for withdrawals, in minor units.
var MinWithdrawal = decimal.NewFromInt(1000)

// Default configuration values
const (
	DefaultTimeout  = 30 * time.Second
	DefaultPageSize = 10
	MaxPageSize     = 100
)
