/*
Package ledger implements the transaction coordinator: the single component
allowed to mutate account balances and append ledger records.

Every operation (deposit, withdrawal, transfer, gateway deposit) runs as one
atomic unit over the account and ledger tables: all balance adjustments and
the record append commit together or not at all. Within a unit, the accounts
involved are locked with row-level FOR UPDATE locks. For transfers both rows
are locked in ascending account-ID order so two opposing transfers cannot
deadlock. Operations on disjoint accounts do not block each other.

Usage:

	svc := ledger.NewService(store, cacheService, ledger.Config{}, nil)

	record, err := svc.Deposit(ctx, accountID, amount, "salary")
	record, err = svc.Withdraw(ctx, accountID, amount, "cash out")
	record, err = svc.Transfer(ctx, senderID, receiverID, amount, "rent")

Failed units are rolled back silently: no record is created and no balance
change is observable. Each unit runs under a bounded timeout; on expiry the
caller receives ErrRetryable.
*/
package ledger
