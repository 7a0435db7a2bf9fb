package partner

import "context"

// CustomerRepository defines persistence for imported customers
type CustomerRepository interface {
	// InsertIfAbsent inserts the customer unless its customer_code already exists.
	// It reports true when a new row was written.
	InsertIfAbsent(ctx context.Context, customer NormalizedCustomer) (bool, error)

	// ExistsByCode checks whether a customer with the code is stored
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// Count returns the number of stored customers
	Count(ctx context.Context) (int64, error)
}
