package relocate

// Stats contains basic metrics for applied relocations
type Stats struct {
	// BytesMoved is the number of content bytes copied by the handler
	BytesMoved int
	// SlotsMoved is the number of moves the handler reported as MoveCopy
	SlotsMoved int
	// SlotsIgnored is the number of moves the handler reported as MoveIgnore
	SlotsIgnored int
	// SlotsUnplaced is the number of slots that had no packed address to move to
	SlotsUnplaced int
}

func (s *Stats) Add(stats Stats) {
	s.BytesMoved += stats.BytesMoved
	s.SlotsMoved += stats.SlotsMoved
	s.SlotsIgnored += stats.SlotsIgnored
	s.SlotsUnplaced += stats.SlotsUnplaced
}
