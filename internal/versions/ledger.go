package versions

// Find scans entries in ledger order and returns the one with versionID.
func Find(entries []*Entry, versionID string) (*Entry, bool) {
	for _, entry := range entries {
		if entry != nil && entry.ID == versionID {
			return entry, true
		}
	}
	return nil, false
}

// Latest returns the last entry of a ledger slice.
func Latest(entries []*Entry) (*Entry, bool) {
	if len(entries) == 0 {
		return nil, false
	}
	return entries[len(entries)-1], true
}
