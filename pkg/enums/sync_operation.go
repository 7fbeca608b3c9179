package enums

import "fmt"

// SyncOperation names the reconciliation procedures for logs and metrics.
type SyncOperation string

const (
	SyncOperationImportCatalog SyncOperation = "import_catalog"
	SyncOperationApplyOrders   SyncOperation = "apply_orders"
	SyncOperationPushStock     SyncOperation = "push_stock"
)

var validSyncOperations = []SyncOperation{
	SyncOperationImportCatalog,
	SyncOperationApplyOrders,
	SyncOperationPushStock,
}

// String implements fmt.Stringer.
func (s SyncOperation) String() string {
	return string(s)
}

// ParseSyncOperation converts raw input into a SyncOperation.
func ParseSyncOperation(value string) (SyncOperation, error) {
	for _, candidate := range validSyncOperations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sync operation %q", value)
}
