package multiplex

// SubRange is a contiguous, half-open byte range within a file, as assigned
// to one coordinator or peer serving a coalesced file-retrieval session.
type SubRange struct {
	Offset uint64
	Length uint64
}

// partitionRange splits [offset, offset+length) into numPeers+1 contiguous
// sub-ranges: numPeers "peer" ranges, in the order they'll be handed out
// through the rendezvous queue, and one coordinator range. The first
// length % (numPeers+1) peer ranges get one extra byte; the coordinator's
// own range never does — it always gets the plain share, taken from the
// tail of the partition. With numPeers == 0 the coordinator's range is the
// entire requested length.
func partitionRange(offset, length uint64, numPeers int) (peerRanges []SubRange, coordinator SubRange) {
	total := uint64(numPeers) + 1
	share := length / total
	mod := length % total

	cur := offset
	peerRanges = make([]SubRange, 0, numPeers)
	for i := 0; i < numPeers; i++ {
		sz := share
		if uint64(i) < mod {
			sz++
		}
		peerRanges = append(peerRanges, SubRange{Offset: cur, Length: sz})
		cur += sz
	}
	coordinator = SubRange{Offset: cur, Length: share}
	return peerRanges, coordinator
}
