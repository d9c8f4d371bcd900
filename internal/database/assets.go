package database

// ReplacedAsset returns the stored upload that stops being referenced when
// a column moves from current to next.
func ReplacedAsset(current, next *string) []string {
	if current == nil || *current == "" {
		return nil
	}
	if next != nil && *next == *current {
		return nil
	}
	return []string{*current}
}
