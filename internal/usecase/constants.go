package usecase

const (
	// ReconcileAllLimit is the page size used when reconciling every account.
	ReconcileAllLimit = 10000
)
