package api

// Optimistic applies a tentative local state change, runs the remote call,
// and reverts the local change if the call fails. The caller's panels show
// the tentative state during the round trip, which is what makes toggles
// like publish feel immediate.
func Optimistic(apply, revert func(), call func() error) error {
	apply()
	if err := call(); err != nil {
		revert()
		return err
	}
	return nil
}
