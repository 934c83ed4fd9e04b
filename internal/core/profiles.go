package core

// RenameProfile renames a profile and relabels the records it owns. The
// profile store rejects the rename before any record changes.
func (m *Manager) RenameProfile(oldName, newName string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.profiles.Rename(oldName, newName); err != nil {
		return 0, err
	}

	var n int
	for _, rec := range m.mods {
		if rec.Profile == oldName {
			rec.Profile = newName
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	m.logger.Printf("profile: renamed %s to %s, relabeled %d record(s)", oldName, newName, n)
	return n, m.save()
}

// ProfileInUse reports how many records belong to profileName
func (m *Manager) ProfileInUse(profileName string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int
	for _, rec := range m.mods {
		if rec.Profile == profileName {
			n++
		}
	}
	return n
}
