package postgres

// AcquiredConns reports how many pool connections are checked out right now.
func (s *Storage) AcquiredConns() int32 {
	return s.pool.Stat().AcquiredConns()
}
